// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package pipeline runs a message's Before-handlers over a Bundle,
// translates the result into a forwarding verb, and fires a detached
// After pass for side effects.
package pipeline

import (
	"sync"

	"github.com/IamIpanda/srvpru/internal/wire"
)

// Verb is the forwarding decision produced by running a message's
// Before-handlers.
type Verb int

const (
	PassThrough Verb = iota
	Rewrite
	Drop
)

// Response is the pipeline's mutable decision, seeded neutral
// (Continue=true, PassThrough) and mutated in place by each handler.
type Response struct {
	Continue      bool
	Verb          Verb
	RewriteBody   wire.Message
	RewriteOpcode uint8
	Err           error
}

func neutralResponse() Response {
	return Response{Continue: true, Verb: PassThrough}
}

// Bundle is the (Request, State, Response) triple handlers operate on.
// State is a plain scratch map: handlers that need a *Player or *Room
// (concepts the pipeline package doesn't know about, to avoid a cyclic
// import with internal/proxy) look them up by a key that internal/proxy
// populates before running the pipeline, using their own typed extractor
// wrapper around State.
type Bundle struct {
	Addr      string
	Direction wire.Direction
	Type      wire.MessageType
	Opcode    uint8
	Raw       []byte
	Body      []byte

	State    map[string]interface{}
	Response Response

	decodeOnce sync.Once
	decoded    interface{}
	decodeErr  error
}

// NewBundle builds a Bundle for one decoded frame, ready to run
// Before-handlers over.
func NewBundle(addr string, dir wire.Direction, f wire.Frame) *Bundle {
	return &Bundle{
		Addr:      addr,
		Direction: dir,
		Type:      f.Type,
		Opcode:    f.Opcode,
		Raw:       f.Raw,
		Body:      f.Body,
		State:     make(map[string]interface{}),
		Response:  neutralResponse(),
	}
}

// NewSynthetic builds a Bundle for an internal SRVPRU event that never
// existed on the wire: Raw/Body are empty and Type carries the synthetic
// MessageType directly (see internal/bus).
func NewSynthetic(addr string, t wire.MessageType, payload interface{}) *Bundle {
	b := &Bundle{
		Addr:      addr,
		Direction: wire.SRVPRU,
		Type:      t,
		State:     make(map[string]interface{}),
		Response:  neutralResponse(),
	}
	b.decoded = payload
	b.decodeOnce.Do(func() {})
	return b
}

// Decode lazily deserializes Body into its typed message exactly once,
// memoizing the result so repeated extractors in the same handler chain
// reuse it instead of re-parsing.
func (b *Bundle) Decode() (interface{}, error) {
	b.decodeOnce.Do(func() {
		b.decoded, b.decodeErr = wire.DecodeBody(b.Type, b.Body)
	})
	return b.decoded, b.decodeErr
}

// fork produces a detached copy of b suitable for the After pass: a fresh
// neutral Response (After's decision is always discarded) sharing the
// same State map, since After-handlers are documented to run for side
// effects and may legitimately want to read what Before left behind.
func (b *Bundle) fork() *Bundle {
	f := &Bundle{
		Addr:      b.Addr,
		Direction: b.Direction,
		Type:      b.Type,
		Opcode:    b.Opcode,
		Raw:       b.Raw,
		Body:      b.Body,
		State:     b.State,
		Response:  neutralResponse(),
		decoded:   b.decoded,
		decodeErr: b.decodeErr,
	}
	f.decodeOnce.Do(func() {})
	return f
}
