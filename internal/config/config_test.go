// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IamIpanda/srvpru/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestTypedAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{}`)
	conf, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	typed, err := config.Typed(conf)
	if err != nil {
		t.Fatalf("Typed: %v", err)
	}
	if typed.ListenAddress != config.DefaultListenAddress {
		t.Fatalf("ListenAddress = %q, want default %q", typed.ListenAddress, config.DefaultListenAddress)
	}
	if typed.IdleTimeout != config.DefaultIdleTimeout {
		t.Fatalf("IdleTimeout = %v, want default %v", typed.IdleTimeout, config.DefaultIdleTimeout)
	}
	if typed.RoomDrainGrace != config.DefaultRoomDrainGrace {
		t.Fatalf("RoomDrainGrace = %v, want default %v", typed.RoomDrainGrace, config.DefaultRoomDrainGrace)
	}
	if typed.BusSize != config.DefaultBusSize {
		t.Fatalf("BusSize = %d, want default %d", typed.BusSize, config.DefaultBusSize)
	}
	if typed.Ygopro.WaitStart != config.DefaultWaitStart {
		t.Fatalf("Ygopro.WaitStart = %d, want default %d", typed.Ygopro.WaitStart, config.DefaultWaitStart)
	}
}

func TestTypedHonorsExplicitValues(t *testing.T) {
	path := writeConfig(t, `{
		"listenAddress": ":9999",
		"idleTimeout": "30s",
		"roomDrainGrace": "1s",
		"busSize": 42
	}`)
	conf, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	typed, err := config.Typed(conf)
	if err != nil {
		t.Fatalf("Typed: %v", err)
	}
	if typed.ListenAddress != ":9999" {
		t.Fatalf("ListenAddress = %q, want :9999", typed.ListenAddress)
	}
	if typed.IdleTimeout != 30*time.Second {
		t.Fatalf("IdleTimeout = %v, want 30s", typed.IdleTimeout)
	}
	if typed.RoomDrainGrace != time.Second {
		t.Fatalf("RoomDrainGrace = %v, want 1s", typed.RoomDrainGrace)
	}
	if typed.BusSize != 42 {
		t.Fatalf("BusSize = %d, want 42", typed.BusSize)
	}
}

func TestTypedRejectsMalformedDuration(t *testing.T) {
	path := writeConfig(t, `{"idleTimeout": "not-a-duration"}`)
	conf, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := config.Typed(conf); err == nil {
		t.Fatalf("expected an error for a malformed idleTimeout")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("expected an error loading a missing config file")
	}
}
