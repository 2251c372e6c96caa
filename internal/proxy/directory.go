// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package proxy implements the connection/room/player lifecycle and the
// accept/forwarding loops that sit behind the wire codec and handler
// pipeline: it owns the global lookup tables, spawns and supervises
// per-room game-server processes, and runs the CTOS/STOC forwarding
// loops.
package proxy

import (
	"net"
	"sync"

	"github.com/IamIpanda/srvpru/internal/fsm"
)

// connLifecycle pairs a connection's tracking FSM with the stop
// function that tears its Run goroutine down.
type connLifecycle struct {
	fsm  *fsm.FSM
	stop func()
}

// directory holds every global lookup table the proxy needs, all behind
// one shared reader-writer lock (there is no lock per table): read paths
// (lookup by address or name) take the read lock, mutation paths
// (lifecycle transitions) take the write lock.
type directory struct {
	mu                sync.RWMutex
	streams           map[string]net.Conn
	precursors        map[string]*Precursor
	players           map[string]*Player
	rooms             map[string]*Room
	roomsByClientAddr map[string]*Room
	roomsByServerAddr map[string]*Room
	lifecycles        map[string]connLifecycle
}

func newDirectory() *directory {
	return &directory{
		streams:           make(map[string]net.Conn),
		precursors:        make(map[string]*Precursor),
		players:           make(map[string]*Player),
		rooms:             make(map[string]*Room),
		roomsByClientAddr: make(map[string]*Room),
		roomsByServerAddr: make(map[string]*Room),
		lifecycles:        make(map[string]connLifecycle),
	}
}

func (d *directory) putLifecycle(addr string, f *fsm.FSM, stop func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lifecycles[addr] = connLifecycle{fsm: f, stop: stop}
}

func (d *directory) getLifecycle(addr string) (*fsm.FSM, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.lifecycles[addr]
	if !ok {
		return nil, false
	}
	return l.fsm, true
}

// deleteLifecycle stops and removes addr's tracking FSM, if one exists.
// Safe to call more than once; only the first call has any effect.
func (d *directory) deleteLifecycle(addr string) {
	d.mu.Lock()
	l, ok := d.lifecycles[addr]
	delete(d.lifecycles, addr)
	d.mu.Unlock()
	if ok {
		l.stop()
	}
}

func (d *directory) putStream(addr string, conn net.Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streams[addr] = conn
}

// getStream returns the raw client connection registered for addr when
// the connection was accepted, before any Player existed for it.
func (d *directory) getStream(addr string) (net.Conn, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.streams[addr]
	return c, ok
}

func (d *directory) deleteStream(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.streams, addr)
}

func (d *directory) putPrecursor(addr string, p *Precursor) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.precursors[addr] = p
}

func (d *directory) getPrecursor(addr string) (*Precursor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.precursors[addr]
	return p, ok
}

// takePrecursor removes and returns the precursor for addr, if any,
// consumed exactly once when a Player is created from it.
func (d *directory) takePrecursor(addr string) (*Precursor, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.precursors[addr]
	if ok {
		delete(d.precursors, addr)
	}
	return p, ok
}

func (d *directory) deletePrecursor(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.precursors, addr)
}

func (d *directory) putPlayer(addr string, p *Player) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.players[addr] = p
}

func (d *directory) getPlayer(addr string) (*Player, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.players[addr]
	return p, ok
}

func (d *directory) deletePlayer(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.players, addr)
}

func (d *directory) putRoom(r *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[r.OriginName] = r
}

func (d *directory) getRoom(originName string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[originName]
	return r, ok
}

func (d *directory) deleteRoom(originName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.rooms, originName)
}

func (d *directory) putRoomByServerAddr(addr string, r *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roomsByServerAddr[addr] = r
}

func (d *directory) getRoomByServerAddr(addr string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.roomsByServerAddr[addr]
	return r, ok
}

func (d *directory) deleteRoomByServerAddr(addr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.roomsByServerAddr, addr)
}

func (d *directory) putRoomByClientAddr(clientAddr string, r *Room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roomsByClientAddr[clientAddr] = r
}

func (d *directory) deleteRoomByClientAddr(clientAddr string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.roomsByClientAddr, clientAddr)
}

// snapshotRooms returns a point-in-time copy of every live room, for
// cmd/srvpru-monitor to poll without holding the directory lock while it
// renders.
func (d *directory) snapshotRooms() []*Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r)
	}
	return out
}

// snapshotPlayers mirrors snapshotRooms for players.
func (d *directory) snapshotPlayers() []*Player {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Player, 0, len(d.players))
	for _, p := range d.players {
		out = append(out, p)
	}
	return out
}
