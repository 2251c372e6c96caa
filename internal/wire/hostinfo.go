// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"

	"github.com/IamIpanda/srvpru/internal/hostinfo"
)

// hostInfoWireSize is the packed on-wire width of a HostInfo: lflist(i32) +
// rule(u8) + mode(u8) + duel_rule(u8) + no_check_deck(u8) +
// no_shuffle_deck(u8) + 3 bytes padding + start_lp(u32) + start_hand(u8) +
// draw_count(u8) + time_limit(u16).
const hostInfoWireSize = 20

// EncodeHostInfo packs a HostInfo into its wire representation.
func EncodeHostInfo(info hostinfo.HostInfo) []byte {
	out := make([]byte, hostInfoWireSize)
	binary.LittleEndian.PutUint32(out[0:4], uint32(info.LFList))
	out[4] = info.Rule
	out[5] = byte(info.Mode)
	out[6] = info.DuelRule
	out[7] = boolByte(info.NoCheckDeck)
	out[8] = boolByte(info.NoShuffleDeck)
	// out[9:12] padding
	binary.LittleEndian.PutUint32(out[12:16], info.StartLP)
	out[16] = info.StartHand
	out[17] = info.DrawCount
	binary.LittleEndian.PutUint16(out[18:20], info.TimeLimit)
	return out
}

// DecodeHostInfo unpacks a HostInfo from its wire representation.
func DecodeHostInfo(b []byte) (hostinfo.HostInfo, error) {
	if len(b) < hostInfoWireSize {
		return hostinfo.HostInfo{}, errShort("HostInfo", hostInfoWireSize, len(b))
	}
	return hostinfo.HostInfo{
		LFList:        int32(binary.LittleEndian.Uint32(b[0:4])),
		Rule:          b[4],
		Mode:          hostinfo.Mode(b[5]),
		DuelRule:      b[6],
		NoCheckDeck:   b[7] != 0,
		NoShuffleDeck: b[8] != 0,
		StartLP:       binary.LittleEndian.Uint32(b[12:16]),
		StartHand:     b[16],
		DrawCount:     b[17],
		TimeLimit:     binary.LittleEndian.Uint16(b[18:20]),
	}, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
