// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

// Opcode tables. These cover the messages a default handler set actually
// inspects; they are not the protocol's full tables, and an opcode
// missing here resolves to Unknown and is forwarded as-is.

var ctosOpcodes = map[uint8]MessageType{
	2:  CTOSUpdateDeck,
	3:  CTOSHandResult,
	4:  CTOSTpResult,
	16: CTOSPlayerInfo,
	17: CTOSCreateGame,
	18: CTOSJoinGame,
	19: CTOSLeaveGame,
	20: CTOSSurrender,
	21: CTOSTimeConfirm,
	22: CTOSChat,
	32: CTOSHsToDuelist,
	33: CTOSHsToObserver,
	34: CTOSHsReady,
	35: CTOSHsNotReady,
	36: CTOSHsKick,
	37: CTOSHsStart,
	48: CTOSRequestField,
}

var stocOpcodes = map[uint8]MessageType{
	1:  STOCGameMessage,
	2:  STOCErrorMessage,
	3:  STOCSelectHand,
	9:  STOCDeckCount,
	17: STOCCreateGame,
	18: STOCJoinGame,
	19: STOCTypeChange,
	20: STOCLeaveGame,
	21: STOCDuelStart,
	22: STOCDuelEnd,
	23: STOCReplay,
	24: STOCTimeLimit,
	25: STOCChat,
	32: STOCHsPlayerEnter,
	33: STOCHsPlayerChange,
	34: STOCHsWatchChange,
	48: STOCFieldFinish,
}

// gmOpcodes maps the sub-opcode byte carried inside a STOCGameMessage
// envelope to a MessageType. Only a small illustrative sample is modeled;
// every other GM sub-opcode is forwarded opaquely (see STOCGameMessage).
var gmOpcodes = map[uint8]MessageType{
	1: GMHint,
	2: GMWaiting,
	3: GMDraw,
	4: GMNewTurn,
}

var ctosOpcodesRev = reverse(ctosOpcodes)
var stocOpcodesRev = reverse(stocOpcodes)
var gmOpcodesRev = reverse(gmOpcodes)

func reverse(m map[uint8]MessageType) map[MessageType]uint8 {
	out := make(map[MessageType]uint8, len(m))
	for opcode, t := range m {
		out[t] = opcode
	}
	return out
}

// OpcodeFor returns the wire opcode for a MessageType under dir. ok is
// false for a MessageType with no wire presence (SRVPRU, AnyMessage).
func OpcodeFor(dir Direction, t MessageType) (opcode uint8, ok bool) {
	switch dir {
	case CTOS:
		opcode, ok = ctosOpcodesRev[t]
	case STOC:
		opcode, ok = stocOpcodesRev[t]
	}
	return
}

// TypeFor resolves a wire opcode to a MessageType under dir. It returns
// Unknown when the opcode is not in that direction's table.
func TypeFor(dir Direction, opcode uint8) MessageType {
	var table map[uint8]MessageType
	switch dir {
	case CTOS:
		table = ctosOpcodes
	case STOC:
		table = stocOpcodes
	}
	if t, ok := table[opcode]; ok {
		return t
	}
	return Unknown
}

// GMTypeFor resolves a GameMessage sub-opcode to a MessageType.
func GMTypeFor(subOpcode uint8) MessageType {
	if t, ok := gmOpcodes[subOpcode]; ok {
		return t
	}
	return Unknown
}
