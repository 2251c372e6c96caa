// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import "errors"

// Sentinel errors for the frame-level failure modes a reader needs to
// distinguish. A batch that is merely incomplete is not an error at all:
// DecodeFrames stops and reports fewer bytes consumed.
var (
	// ErrShortBuffer means a frame or field is shorter than its layout
	// needs: a body decoder given too few bytes (wrapped), or a frame
	// declaring length 0, with no room for its opcode (returned as-is by
	// DecodeFrames).
	ErrShortBuffer = errors.New("wire: short buffer")
	// ErrOversize means a frame's declared length exceeds MaxFrameLength.
	ErrOversize = errors.New("wire: frame exceeds maximum length")
	// ErrOverCount means a single read produced more than MaxFramesPerBatch
	// frames.
	ErrOverCount = errors.New("wire: too many frames in one batch")
)

// MaxFrameLength is the cap on a frame's declared length field (opcode
// byte plus body): exactly 10240 is accepted, 10241 is rejected.
const MaxFrameLength = 10240

// MaxFramesPerBatch is the cap on frames decoded from a single read:
// exactly 1000 is accepted, 1001 is rejected.
const MaxFramesPerBatch = 1000
