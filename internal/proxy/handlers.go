// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"fmt"

	"github.com/IamIpanda/srvpru/internal/fsm"
	"github.com/IamIpanda/srvpru/internal/hostinfo"
	"github.com/IamIpanda/srvpru/internal/pipeline"
	"github.com/IamIpanda/srvpru/internal/registry"
	"github.com/IamIpanda/srvpru/internal/wire"
)

const (
	statePlayer = "proxy.player"
	stateRoom   = "proxy.room"
)

// PlayerFromBundle returns the Player a handler is currently running
// against, if the server has already attached one to the bundle's State.
func PlayerFromBundle(b *pipeline.Bundle) (*Player, bool) {
	v, ok := b.State[statePlayer]
	if !ok {
		return nil, false
	}
	p, ok := v.(*Player)
	return p, ok
}

// RoomFromBundle mirrors PlayerFromBundle for a Room.
func RoomFromBundle(b *pipeline.Bundle) (*Room, bool) {
	v, ok := b.State[stateRoom]
	if !ok {
		return nil, false
	}
	r, ok := v.(*Room)
	return r, ok
}

// registerCoreHandlers wires the lifecycle Before-handlers that every
// srvpru deployment needs, regardless of which plugins are loaded on top.
func (s *Server) registerCoreHandlers() {
	s.registry.Add(registry.Before, wire.CTOSPlayerInfo, "proxy.player_info", 0, s.handlePlayerInfo)
	s.registry.Add(registry.Before, wire.CTOSJoinGame, "proxy.join_game", 0, s.handleJoinGame)
	s.registry.Add(registry.Before, wire.SRVPRUDestroyRoom, "proxy.destroy_room", 255, s.handleDestroyRoom)
}

// handlePlayerInfo opens a Precursor for the connecting address: the real
// game client always sends PlayerInfo first, before it knows which room
// (if any) it is joining. The frame itself is never forwarded on its
// own — it is folded into the Precursor's data cache and replayed to the
// real server once a room is resolved in handleJoinGame.
func (s *Server) handlePlayerInfo(raw interface{}) (bool, error) {
	b := raw.(*pipeline.Bundle)
	msg, err := b.Decode()
	if err != nil {
		return false, fmt.Errorf("proxy: decoding PlayerInfo: %w", err)
	}
	info := msg.(wire.CTOSPlayerInfoMsg)

	s.dir.putPrecursor(b.Addr, newPrecursor(info.Name))
	if track, ok := s.dir.getLifecycle(b.Addr); ok {
		track.Write(&fsm.Event{Name: lifecycleEventPlayerInfo})
	}
	b.Response.Verb = pipeline.Drop
	b.Response.Continue = false
	return false, nil
}

// handleJoinGame resolves (or spawns) the Room named by the join
// password, upgrades the connection's Precursor into a full Player,
// replays whatever bytes were buffered while the Precursor existed, and
// finally forwards the JoinGame frame itself, so the room server sees
// the same handshake the client sent.
func (s *Server) handleJoinGame(raw interface{}) (bool, error) {
	b := raw.(*pipeline.Bundle)
	msg, err := b.Decode()
	if err != nil {
		return false, fmt.Errorf("proxy: decoding JoinGame: %w", err)
	}
	join := msg.(wire.CTOSJoinGameMsg)

	precursor, ok := s.dir.takePrecursor(b.Addr)
	if !ok {
		// A JoinGame with no preceding PlayerInfo is not a protocol this
		// server recognizes: no room is resolved and the remaining handlers
		// run; with no Player or Precursor for this address, dispatchCTOS
		// forwards the frame nowhere.
		return true, nil
	}

	info, roomName := hostinfo.Parse(join.Pass)
	room, err := s.findOrCreateRoom(b.Addr, info, roomName)
	if err != nil {
		s.bus.Synthesize(b.Addr, wire.SRVPRUCtosProcessError, wire.CtosProcessError{
			ClientAddr: b.Addr,
			Kind:       wire.KindSpawn,
			Detail:     err.Error(),
		})
		// No room means nothing for this client to join: close its raw
		// stream so handleClient's next read tears the connection down.
		if conn, ok := s.dir.getStream(b.Addr); ok {
			conn.Close()
		}
		b.Response.Verb = pipeline.Drop
		b.Response.Continue = false
		return false, nil
	}

	serverConn, err := s.dialRoomServer(room.ServerAddr)
	if err != nil {
		b.Response.Verb = pipeline.Drop
		b.Response.Continue = false
		return false, fmt.Errorf("proxy: dialing room server at %s: %w", room.ServerAddr, err)
	}

	clientConn, _ := s.dir.getStream(b.Addr)
	player := newPlayer(b.Addr, precursor.Name, room, clientConn, serverConn)

	for _, buffered := range precursor.DataCache {
		if _, err := serverConn.Write(buffered); err != nil {
			b.Response.Verb = pipeline.Drop
			b.Response.Continue = false
			return false, fmt.Errorf("proxy: replaying buffered frames to room server: %w", err)
		}
	}
	// The JoinGame frame is written here rather than left to the forwarding
	// loop (hence Drop below): the replayed PlayerInfo bytes must precede it
	// on the server socket, and both writes happen before the player is
	// visible to any other task.
	if len(b.Raw) > 0 {
		if _, err := serverConn.Write(b.Raw); err != nil {
			b.Response.Verb = pipeline.Drop
			b.Response.Continue = false
			return false, fmt.Errorf("proxy: forwarding JoinGame to room server: %w", err)
		}
	}

	s.dir.putPlayer(b.Addr, player)
	s.dir.putRoomByClientAddr(b.Addr, room)
	room.addPlayer(player)
	s.startServerReader(player)
	if track, ok := s.dir.getLifecycle(b.Addr); ok {
		track.Write(&fsm.Event{Name: lifecycleEventJoinGame})
	}

	b.Response.Verb = pipeline.Drop
	b.Response.Continue = false
	return false, nil
}

// handleDestroyRoom is the synthetic-event counterpart of handleJoinGame's
// room creation: it runs whenever a room's spawned process exits (see
// server.go's watchRoomExit), cleaning up every directory entry that
// pointed at the room.
func (s *Server) handleDestroyRoom(raw interface{}) (bool, error) {
	b := raw.(*pipeline.Bundle)
	msg, err := b.Decode()
	if err != nil {
		return true, fmt.Errorf("proxy: decoding DestroyRoom event: %w", err)
	}
	event := msg.(wire.DestroyRoom)

	room, ok := s.dir.getRoom(event.RoomName)
	if !ok {
		return true, nil
	}
	if !room.markDeleted() {
		return true, nil
	}
	s.dir.deleteRoom(event.RoomName)
	s.dir.deleteRoomByServerAddr(room.ServerAddr)
	for _, p := range room.snapshotPlayersLocked() {
		s.dir.deletePlayer(p.ClientAddr)
		s.dir.deleteRoomByClientAddr(p.ClientAddr)
		// Closing the server-side socket ends the player's forwardSTOC
		// reader; the client-side connection is the client's to close.
		if conn := p.stealServerConn(); conn != nil {
			conn.Close()
		}
		room.removePlayer(p)
		s.bus.Synthesize(p.ClientAddr, wire.SRVPRUDestroyPlayer, wire.DestroyPlayer{ClientAddr: p.ClientAddr})
	}
	go s.watchRoomDrain(room)
	return true, nil
}
