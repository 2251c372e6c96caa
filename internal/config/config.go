// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the proxy's JSON configuration file and converts
// it into the typed form the rest of the process uses.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is the on-disk, string-typed configuration. It mirrors the JSON
// file layout exactly; Typed converts it into the form the rest of the
// process consumes.
type Config struct {
	// ListenAddress is where the proxy accepts game clients.
	ListenAddress string `json:"listenAddress"`
	// Ygopro describes how to spawn and reach the real game-server binary.
	Ygopro YgoproConfig `json:"ygopro"`
	// IdleTimeout is the per-read idle timeout on a client socket, e.g. "90s".
	IdleTimeout string `json:"idleTimeout"`
	// BusSize is the buffer size of the internal synthetic-event bus.
	BusSize int `json:"busSize"`
	// RoomDrainGrace is how long a destroyed room's player list is given
	// to empty out before a leak warning is logged, e.g. "5s".
	RoomDrainGrace string `json:"roomDrainGrace"`
	// FirstTCGLFList is the banlist index the TO/TCGONLY password token
	// selects; it depends on how the deployed lflist.conf is ordered.
	FirstTCGLFList int32 `json:"firstTcgLflist"`
}

// YgoproConfig describes the spawned game-server binary.
type YgoproConfig struct {
	Binary    string `json:"binary"`
	WorkDir   string `json:"workDir"`
	Address   string `json:"address"`
	WaitStart int64  `json:"waitStartMillis"`
}

// TypedConfig is Config with the real Go types the rest of the process
// needs (durations instead of duration strings).
type TypedConfig struct {
	ListenAddress  string
	Ygopro         YgoproConfig
	IdleTimeout    time.Duration
	BusSize        int
	RoomDrainGrace time.Duration
	FirstTCGLFList int32
}

// Default values used when a config field or the whole file is absent.
const (
	DefaultListenAddress  = ":7911"
	DefaultIdleTimeout    = 90 * time.Second
	DefaultBusSize        = 10000
	DefaultRoomDrainGrace = 5 * time.Second
	DefaultWaitStart      = int64(1000)
)

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}
	return &conf, nil
}

// Typed converts a Config into a TypedConfig, applying defaults for any
// field left unset.
func Typed(conf *Config) (*TypedConfig, error) {
	typed := &TypedConfig{
		ListenAddress:  conf.ListenAddress,
		Ygopro:         conf.Ygopro,
		BusSize:        conf.BusSize,
		FirstTCGLFList: conf.FirstTCGLFList,
	}
	if typed.ListenAddress == "" {
		typed.ListenAddress = DefaultListenAddress
	}
	if typed.BusSize == 0 {
		typed.BusSize = DefaultBusSize
	}
	if typed.Ygopro.WaitStart == 0 {
		typed.Ygopro.WaitStart = DefaultWaitStart
	}

	if conf.IdleTimeout == "" {
		typed.IdleTimeout = DefaultIdleTimeout
	} else {
		d, err := time.ParseDuration(conf.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing idleTimeout: %w", err)
		}
		typed.IdleTimeout = d
	}

	if conf.RoomDrainGrace == "" {
		typed.RoomDrainGrace = DefaultRoomDrainGrace
	} else {
		d, err := time.ParseDuration(conf.RoomDrainGrace)
		if err != nil {
			return nil, fmt.Errorf("parsing roomDrainGrace: %w", err)
		}
		typed.RoomDrainGrace = d
	}
	return typed, nil
}
