// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the length-prefixed binary frame codec: read
// and write frames, and decode a frame body into one of the fixed set of
// typed messages on demand.
package wire

// Direction selects which opcode table and pipeline a message belongs to.
type Direction int

const (
	CTOS Direction = iota
	STOC
	SRVPRU
)

func (d Direction) String() string {
	switch d {
	case CTOS:
		return "CTOS"
	case STOC:
		return "STOC"
	case SRVPRU:
		return "SRVPRU"
	default:
		return "UNKNOWN"
	}
}

// MessageType identifies a specific typed message, independent of which
// numeric opcode represents it on the wire (CTOS and STOC opcode spaces
// overlap numerically but never share a MessageType).
type MessageType int

const (
	Unknown MessageType = iota

	// CTOS
	CTOSPlayerInfo
	CTOSCreateGame
	CTOSJoinGame
	CTOSLeaveGame
	CTOSSurrender
	CTOSTimeConfirm
	CTOSChat
	CTOSHsToDuelist
	CTOSHsToObserver
	CTOSHsReady
	CTOSHsNotReady
	CTOSHsKick
	CTOSHsStart
	CTOSUpdateDeck
	CTOSHandResult
	CTOSTpResult
	CTOSRequestField

	// STOC
	STOCGameMessage
	STOCErrorMessage
	STOCSelectHand
	STOCCreateGame
	STOCJoinGame
	STOCTypeChange
	STOCLeaveGame
	STOCDuelStart
	STOCDuelEnd
	STOCReplay
	STOCTimeLimit
	STOCChat
	STOCHsPlayerEnter
	STOCHsPlayerChange
	STOCHsWatchChange
	STOCDeckCount
	STOCFieldFinish

	// GM (nested inside a STOCGameMessage envelope)
	GMHint
	GMWaiting
	GMDraw
	GMNewTurn

	// SRVPRU (synthetic, never on the wire)
	SRVPRUServerStart
	SRVPRURoomCreated
	SRVPRUDestroyPlayer
	SRVPRUDestroyRoom
	SRVPRUMovePlayer
	SRVPRULPChange
	SRVPRUCtosProcessError
	SRVPRUCtosListenError
	SRVPRUStocProcessError

	// AnyMessage is the pseudo-type a handler registers against to run for
	// every message of a given Occasion, before the type-specific group.
	AnyMessage
)

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

var messageTypeNames = map[MessageType]string{
	CTOSPlayerInfo:         "CTOSPlayerInfo",
	CTOSCreateGame:         "CTOSCreateGame",
	CTOSJoinGame:           "CTOSJoinGame",
	CTOSLeaveGame:          "CTOSLeaveGame",
	CTOSSurrender:          "CTOSSurrender",
	CTOSTimeConfirm:        "CTOSTimeConfirm",
	CTOSChat:               "CTOSChat",
	CTOSHsToDuelist:        "CTOSHsToDuelist",
	CTOSHsToObserver:       "CTOSHsToObserver",
	CTOSHsReady:            "CTOSHsReady",
	CTOSHsNotReady:         "CTOSHsNotReady",
	CTOSHsKick:             "CTOSHsKick",
	CTOSHsStart:            "CTOSHsStart",
	CTOSUpdateDeck:         "CTOSUpdateDeck",
	CTOSHandResult:         "CTOSHandResult",
	CTOSTpResult:           "CTOSTpResult",
	CTOSRequestField:       "CTOSRequestField",
	STOCGameMessage:        "STOCGameMessage",
	STOCErrorMessage:       "STOCErrorMessage",
	STOCSelectHand:         "STOCSelectHand",
	STOCCreateGame:         "STOCCreateGame",
	STOCJoinGame:           "STOCJoinGame",
	STOCTypeChange:         "STOCTypeChange",
	STOCLeaveGame:          "STOCLeaveGame",
	STOCDuelStart:          "STOCDuelStart",
	STOCDuelEnd:            "STOCDuelEnd",
	STOCReplay:             "STOCReplay",
	STOCTimeLimit:          "STOCTimeLimit",
	STOCChat:               "STOCChat",
	STOCHsPlayerEnter:      "STOCHsPlayerEnter",
	STOCHsPlayerChange:     "STOCHsPlayerChange",
	STOCHsWatchChange:      "STOCHsWatchChange",
	STOCDeckCount:          "STOCDeckCount",
	STOCFieldFinish:        "STOCFieldFinish",
	GMHint:                 "GMHint",
	GMWaiting:              "GMWaiting",
	GMDraw:                 "GMDraw",
	GMNewTurn:              "GMNewTurn",
	SRVPRUServerStart:      "SRVPRUServerStart",
	SRVPRURoomCreated:      "SRVPRURoomCreated",
	SRVPRUDestroyPlayer:    "SRVPRUDestroyPlayer",
	SRVPRUDestroyRoom:      "SRVPRUDestroyRoom",
	SRVPRUMovePlayer:       "SRVPRUMovePlayer",
	SRVPRULPChange:         "SRVPRULPChange",
	SRVPRUCtosProcessError: "SRVPRUCtosProcessError",
	SRVPRUCtosListenError:  "SRVPRUCtosListenError",
	SRVPRUStocProcessError: "SRVPRUStocProcessError",
	AnyMessage:             "AnyMessage",
}
