// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import "unicode/utf16"

// DecodeFixedString reads a null-padded, fixed-width UTF-16LE string from
// the first n*2 bytes of b (as used by CTOSPlayerInfo.Name and similar
// fields). Trailing NUL code units are dropped.
func DecodeFixedString(b []byte, n int) string {
	units := make([]uint16, 0, n)
	for i := 0; i < n && 2*i+1 < len(b); i++ {
		u := uint16(b[2*i]) | uint16(b[2*i+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

// EncodeFixedString writes s as exactly n*2 bytes of UTF-16LE, truncating
// or NUL-padding as needed.
func EncodeFixedString(s string, n int) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, n*2)
	for i := 0; i < n && i < len(units); i++ {
		out[2*i] = byte(units[i])
		out[2*i+1] = byte(units[i] >> 8)
	}
	return out
}

// DecodeVariableString reads a NUL-terminated UTF-16LE string from b,
// stopping at the first zero code unit or at the end of b, whichever comes
// first. There is no length prefix: the caller already knows the bound of
// b from the enclosing frame.
func DecodeVariableString(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; 2*i+1 < len(b); i++ {
		u := uint16(b[2*i]) | uint16(b[2*i+1])<<8
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

// EncodeVariableString writes s as UTF-16LE followed by a single NUL code
// unit terminator.
func EncodeVariableString(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, 2*(len(units)+1))
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return append(out, 0, 0)
}
