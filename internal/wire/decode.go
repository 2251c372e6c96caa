// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import "fmt"

// DecodeBody decodes a frame body into its typed Message, given the
// MessageType already resolved from the opcode. Every typed message above
// is wired in here; an entry missing from this switch is a bug, not a
// legitimately-opaque message (those stay Unknown and are never routed
// here in the first place).
func DecodeBody(t MessageType, body []byte) (interface{}, error) {
	switch t {
	case CTOSPlayerInfo:
		return decodeCTOSPlayerInfo(body)
	case CTOSCreateGame:
		return decodeCTOSCreateGame(body)
	case CTOSJoinGame:
		return decodeCTOSJoinGame(body)
	case CTOSLeaveGame, CTOSSurrender, CTOSTimeConfirm, CTOSHsToDuelist,
		CTOSHsToObserver, CTOSHsReady, CTOSHsNotReady, CTOSHsStart, CTOSRequestField:
		return decodeEmpty(body)
	case CTOSHsKick:
		return decodeCTOSHsKick(body)
	case CTOSUpdateDeck:
		return decodeCTOSUpdateDeck(body)
	case CTOSChat:
		return decodeCTOSChat(body)
	case CTOSHandResult:
		return decodeCTOSHandResult(body)
	case CTOSTpResult:
		return decodeCTOSTpResult(body)

	case STOCGameMessage:
		return decodeSTOCGameMessage(body)
	case STOCErrorMessage:
		return decodeSTOCErrorMessage(body)
	case STOCSelectHand, STOCDuelStart, STOCDuelEnd, STOCFieldFinish:
		return decodeEmpty(body)
	case STOCCreateGame:
		return decodeSTOCCreateGame(body)
	case STOCJoinGame:
		return decodeSTOCJoinGame(body)
	case STOCTypeChange:
		return decodeSTOCTypeChange(body)
	case STOCLeaveGame:
		return decodeSTOCLeaveGame(body)
	case STOCReplay:
		return decodeSTOCReplay(body)
	case STOCTimeLimit:
		return decodeSTOCTimeLimit(body)
	case STOCChat:
		return decodeSTOCChat(body)
	case STOCHsPlayerEnter:
		return decodeSTOCHsPlayerEnter(body)
	case STOCHsPlayerChange:
		return decodeSTOCHsPlayerChange(body)
	case STOCHsWatchChange:
		return decodeSTOCHsWatchChange(body)
	case STOCDeckCount:
		return decodeSTOCDeckCount(body)

	case GMHint, GMWaiting, GMDraw, GMNewTurn:
		return decodeEmpty(body)

	default:
		return nil, fmt.Errorf("wire: no decoder registered for %s", t)
	}
}
