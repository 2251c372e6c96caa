// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

// RoomSnapshot is a point-in-time, read-only view of a Room for operator
// tooling (cmd/srvpru-monitor) that must not hold the proxy's internal
// locks while it renders.
type RoomSnapshot struct {
	Name        string
	Status      string
	ServerAddr  string
	PlayerCount int
}

// PlayerSnapshot mirrors RoomSnapshot for a Player.
type PlayerSnapshot struct {
	ClientAddr string
	Name       string
	Room       string
}

// ConnectionSnapshot reports one accepted connection's lifecycle state,
// per the tracking FSM in lifecycle.go.
type ConnectionSnapshot struct {
	ClientAddr string
	State      string
}

// SnapshotConnections returns the current lifecycle state of every
// connection the proxy still has open (normally raw_stream, precursor or
// player; a tracker that halted on an unexpected event reports
// fsm.Stopped).
func (s *Server) SnapshotConnections() []ConnectionSnapshot {
	s.dir.mu.RLock()
	addrs := make([]string, 0, len(s.dir.lifecycles))
	for addr := range s.dir.lifecycles {
		addrs = append(addrs, addr)
	}
	s.dir.mu.RUnlock()

	out := make([]ConnectionSnapshot, 0, len(addrs))
	for _, addr := range addrs {
		if track, ok := s.dir.getLifecycle(addr); ok {
			out = append(out, ConnectionSnapshot{ClientAddr: addr, State: track.Current()})
		}
	}
	return out
}

// SnapshotRooms returns every live room's current state.
func (s *Server) SnapshotRooms() []RoomSnapshot {
	rooms := s.dir.snapshotRooms()
	out := make([]RoomSnapshot, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		out = append(out, RoomSnapshot{
			Name:        r.Name,
			Status:      r.Status.String(),
			ServerAddr:  r.ServerAddr,
			PlayerCount: len(r.players),
		})
		r.mu.Unlock()
	}
	return out
}

// SnapshotPlayers returns every connected player's current state.
func (s *Server) SnapshotPlayers() []PlayerSnapshot {
	players := s.dir.snapshotPlayers()
	out := make([]PlayerSnapshot, 0, len(players))
	for _, p := range players {
		p.mu.Lock()
		name := p.Name
		room := ""
		if p.Room != nil {
			room = p.Room.OriginName
		}
		p.mu.Unlock()
		out = append(out, PlayerSnapshot{ClientAddr: p.ClientAddr, Name: name, Room: room})
	}
	return out
}
