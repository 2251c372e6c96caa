// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/IamIpanda/srvpru/internal/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := wire.CTOSChatMsg{Text: "gg"}
	opcode, ok := wire.OpcodeFor(wire.CTOS, wire.CTOSChat)
	if !ok {
		t.Fatalf("expected CTOSChat to have a CTOS opcode")
	}
	raw := wire.Encode(opcode, msg)

	frames, consumed, err := wire.DecodeFrames(raw, wire.CTOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumed != len(raw) {
		t.Fatalf("expected to consume %d bytes, consumed %d", len(raw), consumed)
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	if frames[0].Type != wire.CTOSChat {
		t.Fatalf("expected CTOSChat, got %v", frames[0].Type)
	}
	decoded, err := wire.DecodeBody(frames[0].Type, frames[0].Body)
	if err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.(wire.CTOSChatMsg).Text != "gg" {
		t.Fatalf("expected round-tripped text 'gg', got %q", decoded.(wire.CTOSChatMsg).Text)
	}
}

func TestDecodeFramesIncompleteWaitsForMore(t *testing.T) {
	msg := wire.CTOSHsKickMsg{Pos: 2}
	opcode, _ := wire.OpcodeFor(wire.CTOS, wire.CTOSHsKick)
	raw := wire.Encode(opcode, msg)

	frames, consumed, err := wire.DecodeFrames(raw[:len(raw)-1], wire.CTOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("expected no frames from a truncated buffer, got %d", len(frames))
	}
	if consumed != 0 {
		t.Fatalf("expected to consume nothing from an incomplete frame, consumed %d", consumed)
	}
}

func TestDecodeFramesOversizeExactBoundary(t *testing.T) {
	accepted := frameOfLength(wire.MaxFrameLength)
	if _, _, err := wire.DecodeFrames(accepted, wire.CTOS); err != nil {
		t.Fatalf("expected a frame of exactly MaxFrameLength to be accepted, got %v", err)
	}

	rejected := frameOfLength(wire.MaxFrameLength + 1)
	if _, _, err := wire.DecodeFrames(rejected, wire.CTOS); !errors.Is(err, wire.ErrOversize) {
		t.Fatalf("expected ErrOversize for a frame one byte over the cap, got %v", err)
	}
}

func TestDecodeFramesOverCountExactBoundary(t *testing.T) {
	single := frameOfLength(1)

	accepted := make([]byte, 0, len(single)*wire.MaxFramesPerBatch)
	for i := 0; i < wire.MaxFramesPerBatch; i++ {
		accepted = append(accepted, single...)
	}
	if _, _, err := wire.DecodeFrames(accepted, wire.CTOS); err != nil {
		t.Fatalf("expected a batch of exactly MaxFramesPerBatch frames to be accepted, got %v", err)
	}

	rejected := append(accepted, single...)
	if _, _, err := wire.DecodeFrames(rejected, wire.CTOS); !errors.Is(err, wire.ErrOverCount) {
		t.Fatalf("expected ErrOverCount for one frame over the batch cap, got %v", err)
	}
}

// frameOfLength builds a syntactically valid frame whose declared length
// field is exactly n: a 2-byte LE length, an opcode byte, and n-1 body
// bytes.
func frameOfLength(n int) []byte {
	out := make([]byte, 2+n)
	binary.LittleEndian.PutUint16(out[0:2], uint16(n))
	return out
}

func TestDecodeFramesUnknownOpcodeIsForwardable(t *testing.T) {
	raw := wire.Encode(250, wire.Empty{})
	frames, _, err := wire.DecodeFrames(raw, wire.CTOS)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frames[0].Type != wire.Unknown {
		t.Fatalf("expected Unknown for an unregistered opcode, got %v", frames[0].Type)
	}
	if len(frames[0].Raw) != len(raw) {
		t.Fatalf("expected Raw to carry the whole frame for pass-through forwarding")
	}
}
