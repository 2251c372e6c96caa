// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import "encoding/binary"

// Frame is one decoded length-prefixed frame: its numeric opcode, the
// MessageType it resolved to under the direction it was decoded with
// (Unknown if the opcode isn't in that direction's table), the body bytes
// after the opcode, and Raw — the whole frame including its 2-byte length
// prefix, sliced from the original buffer without copying. Raw is what a
// pure pass-through forward writes back out untouched.
type Frame struct {
	Opcode uint8
	Type   MessageType
	Body   []byte
	Raw    []byte
}

// Encode serializes msg under opcode into a single length-prefixed frame:
// u16 LE length (1 + len(body)), the opcode byte, then the body.
func Encode(opcode uint8, msg Message) []byte {
	body := msg.Encode()
	out := make([]byte, 3+len(body))
	binary.LittleEndian.PutUint16(out[0:2], uint16(1+len(body)))
	out[2] = opcode
	copy(out[3:], body)
	return out
}

// DecodeFrames parses as many complete frames as are present in data for
// the given direction. It returns the frames decoded, how many bytes of
// data were consumed, and an error.
//
// A short final frame is not an error: consumed stops short of len(data)
// and the caller is expected to keep the remainder buffered and retry
// once more bytes arrive. Oversize and OverCount are batch-fatal: the
// caller should discard frames entirely and raise a process error rather
// than trust a partially-decoded batch.
func DecodeFrames(data []byte, dir Direction) (frames []Frame, consumed int, err error) {
	offset := 0
	count := 0
	for offset < len(data) {
		if len(data)-offset < 2 {
			break
		}
		length := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		if length == 0 {
			return nil, offset, ErrShortBuffer
		}
		if length > MaxFrameLength {
			return nil, offset, ErrOversize
		}
		if offset+2+length > len(data) {
			break
		}
		opcode := data[offset+2]
		body := data[offset+3 : offset+2+length]
		raw := data[offset : offset+2+length]

		count++
		if count > MaxFramesPerBatch {
			return nil, offset, ErrOverCount
		}

		frames = append(frames, Frame{
			Opcode: opcode,
			Type:   TypeFor(dir, opcode),
			Body:   body,
			Raw:    raw,
		})
		offset += 2 + length
	}
	return frames, offset, nil
}
