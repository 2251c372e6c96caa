// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"os/exec"
	"sync"

	"github.com/IamIpanda/srvpru/internal/hostinfo"
)

// RoomStatus is a room's coarse lifecycle phase.
type RoomStatus int

const (
	RoomStarting RoomStatus = iota
	RoomEstablished
	RoomDeleted
)

func (s RoomStatus) String() string {
	switch s {
	case RoomEstablished:
		return "established"
	case RoomDeleted:
		return "deleted"
	default:
		return "starting"
	}
}

// Room is one spawned game-server process and the players attached to
// it. OriginName is the room name taken from after the '#' in the join
// password, used to look the room up (find_or_create's canonical key);
// Name is the rendered, normalized name derived from its HostInfo.
type Room struct {
	mu         sync.Mutex
	OriginName string
	Name       string
	Info       hostinfo.HostInfo
	Status     RoomStatus
	ServerAddr string

	cmd         *exec.Cmd
	stderrStop  chan struct{}
	players     []*Player
	attachments map[string]interface{}
}

func newRoom(originName string, info hostinfo.HostInfo, name string) *Room {
	return &Room{
		OriginName:  originName,
		Name:        name,
		Info:        info,
		Status:      RoomStarting,
		attachments: make(map[string]interface{}),
	}
}

func (r *Room) setEstablished(cmd *exec.Cmd, addr string, stop chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmd = cmd
	r.ServerAddr = addr
	r.Status = RoomEstablished
	r.stderrStop = stop
}

func (r *Room) addPlayer(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = append(r.players, p)
}

// removePlayer drops p from the room's player list. handleDestroyRoom
// calls it for every player during room teardown, and onClientGone calls
// it when a player's own connection drops.
func (r *Room) removePlayer(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.players {
		if existing == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return
		}
	}
}

func (r *Room) playerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// snapshotPlayersLocked returns a point-in-time copy of the room's
// player list, safe to range over after the room itself has already been
// marked deleted.
func (r *Room) snapshotPlayersLocked() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Player, len(r.players))
	copy(out, r.players)
	return out
}

// markDeleted flips Status to Deleted and signals the stderr-drain task
// to stop, returning false if the room was already deleted so the caller
// doesn't double-run teardown.
func (r *Room) markDeleted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Status == RoomDeleted {
		return false
	}
	r.Status = RoomDeleted
	if r.stderrStop != nil {
		close(r.stderrStop)
		r.stderrStop = nil
	}
	return true
}

func (r *Room) Attachment(key string) (interface{}, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.attachments[key]
	return v, ok
}

func (r *Room) SetAttachment(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attachments[key] = value
}
