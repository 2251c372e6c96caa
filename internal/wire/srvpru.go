// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

// ErrorKind enumerates the frame/connection failure categories a
// ProcessError/ListenError synthetic event can carry, so handlers and
// logs can discriminate without string matching.
type ErrorKind int

const (
	KindOversize ErrorKind = iota
	KindOverCount
	KindShortBuffer
	KindDecodeFailed
	KindWriteFailed
	KindTimeout
	KindAbort
	KindUnknownType
	KindSpawn
)

func (k ErrorKind) String() string {
	switch k {
	case KindOversize:
		return "oversize"
	case KindOverCount:
		return "over_count"
	case KindShortBuffer:
		return "short_buffer"
	case KindDecodeFailed:
		return "decode_failed"
	case KindWriteFailed:
		return "write_failed"
	case KindTimeout:
		return "timeout"
	case KindAbort:
		return "abort"
	case KindUnknownType:
		return "unknown_type"
	case KindSpawn:
		return "spawn"
	default:
		return "unknown_kind"
	}
}

// The following payload types never appear on the wire: internal/bus
// synthesizes them as pipeline Bundles with Direction SRVPRU so the pipeline's
// ordinary handler-dispatch machinery can subscribe to lifecycle events
// exactly as it would a CTOS or STOC message.

// ServerStart fires once, after the listener is bound and before the
// accept loop starts taking connections.
type ServerStart struct {
	ListenAddress string
}

// RoomCreated fires once a room's child process has reported its listening
// port and is ready to accept the proxied connection.
type RoomCreated struct {
	RoomName   string
	ServerAddr string
}

// DestroyPlayer fires when a player's connection (and its proxied room
// socket, if any) has been fully torn down.
type DestroyPlayer struct {
	ClientAddr string
}

// DestroyRoom fires when a room's child process has exited; the core
// Before-handler for it in internal/proxy then drops every player still
// attached to the room.
type DestroyRoom struct {
	RoomName string
}

// MovePlayer fires when a player transitions between rooms without its
// underlying TCP connection being closed (e.g. lobby -> duel handoff).
type MovePlayer struct {
	ClientAddr string
	FromRoom   string
	ToRoom     string
}

// LPChange fires when a handler observes an LP delta inside a decoded GM
// message and wants to republish it as a plain, typed fact for other
// handlers (dashboards, logging) that don't want to parse GM bodies
// themselves.
type LPChange struct {
	ClientAddr string
	Player     uint8
	LP         uint32
}

// CtosProcessError fires when DecodeFrames rejects a client's batch, at
// any lifecycle stage, or when a JoinGame's room cannot be created
// (KindSpawn). StocProcessError fires when DecodeFrames rejects a room
// server's batch. CtosListenError fires when a client read hits the idle
// timeout (KindTimeout).
type CtosProcessError struct {
	ClientAddr string
	Kind       ErrorKind
	Detail     string
}

type StocProcessError struct {
	RoomName string
	Kind     ErrorKind
	Detail   string
}

type CtosListenError struct {
	ClientAddr string
	Kind       ErrorKind
	Detail     string
}
