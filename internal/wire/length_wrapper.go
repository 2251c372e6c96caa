// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"
)

// LengthWrapper is a serialization combinator: write a u16 LE length,
// then the wrapped bytes. Every frame already gets
// its own length prefix from Encode/DecodeFrames, so LengthWrapper is
// never used at the frame level — it exists for the rare sub-field that
// needs its own self-describing width (e.g. an opaque inner blob embedded
// in a larger struct). It does not nest: wrapping an already-wrapped value
// is a caller error, not something this type tries to detect.
type LengthWrapper struct {
	Inner []byte
}

func (l LengthWrapper) Size() int { return 2 + len(l.Inner) }

func (l LengthWrapper) Encode() []byte {
	out := make([]byte, 2+len(l.Inner))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(l.Inner)))
	copy(out[2:], l.Inner)
	return out
}

// DecodeLengthWrapper reads a LengthWrapper from the front of b and
// returns it along with the unconsumed remainder of b.
func DecodeLengthWrapper(b []byte) (LengthWrapper, []byte, error) {
	if len(b) < 2 {
		return LengthWrapper{}, nil, errShort("LengthWrapper", 2, len(b))
	}
	n := int(binary.LittleEndian.Uint16(b[0:2]))
	if len(b)-2 < n {
		return LengthWrapper{}, nil, fmt.Errorf("wire: LengthWrapper declares %d bytes, only %d available: %w", n, len(b)-2, ErrShortBuffer)
	}
	return LengthWrapper{Inner: append([]byte(nil), b[2:2+n]...)}, b[2+n:], nil
}
