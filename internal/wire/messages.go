// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/IamIpanda/srvpru/internal/hostinfo"
)

// Message is any typed payload this package knows how to serialize. Every
// concrete message type satisfies it; Size() must always equal
// len(Encode()).
type Message interface {
	Size() int
	Encode() []byte
}

// Empty is the payload for opcodes that carry no body at all (e.g.
// CTOSRequestField, STOCDuelStart).
type Empty struct{}

func (Empty) Size() int      { return 0 }
func (Empty) Encode() []byte { return nil }

func decodeEmpty(b []byte) (Empty, error) { return Empty{}, nil }

// --- CTOS ---------------------------------------------------------------

// CTOSPlayerInfoMsg carries the player's display name at handshake time.
type CTOSPlayerInfoMsg struct {
	Name string
}

func (m CTOSPlayerInfoMsg) Size() int      { return 40 }
func (m CTOSPlayerInfoMsg) Encode() []byte { return EncodeFixedString(m.Name, 20) }

func decodeCTOSPlayerInfo(b []byte) (CTOSPlayerInfoMsg, error) {
	if len(b) < 40 {
		return CTOSPlayerInfoMsg{}, errShort("CTOSPlayerInfo", 40, len(b))
	}
	return CTOSPlayerInfoMsg{Name: DecodeFixedString(b, 20)}, nil
}

// CTOSCreateGameMsg requests a new room with the given packed HostInfo, host
// display name, and join password.
type CTOSCreateGameMsg struct {
	Info hostinfo.HostInfo
	Name string
	Pass string
}

func (m CTOSCreateGameMsg) Size() int { return 20 + 40 + 40 }
func (m CTOSCreateGameMsg) Encode() []byte {
	out := append([]byte{}, EncodeHostInfo(m.Info)...)
	out = append(out, EncodeFixedString(m.Name, 20)...)
	out = append(out, EncodeFixedString(m.Pass, 20)...)
	return out
}

func decodeCTOSCreateGame(b []byte) (CTOSCreateGameMsg, error) {
	if len(b) < 100 {
		return CTOSCreateGameMsg{}, errShort("CTOSCreateGame", 100, len(b))
	}
	info, err := DecodeHostInfo(b[:20])
	if err != nil {
		return CTOSCreateGameMsg{}, err
	}
	return CTOSCreateGameMsg{
		Info: info,
		Name: DecodeFixedString(b[20:60], 20),
		Pass: DecodeFixedString(b[60:100], 20),
	}, nil
}

// CTOSJoinGameMsg requests joining an existing room by its client-visible
// protocol version and password.
type CTOSJoinGameMsg struct {
	Version uint16
	GameID  uint32
	Pass    string
}

func (m CTOSJoinGameMsg) Size() int { return 2 + 2 + 4 + 40 }
func (m CTOSJoinGameMsg) Encode() []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint16(out[0:2], m.Version)
	binary.LittleEndian.PutUint32(out[4:8], m.GameID)
	return append(out, EncodeFixedString(m.Pass, 20)...)
}

func decodeCTOSJoinGame(b []byte) (CTOSJoinGameMsg, error) {
	if len(b) < 48 {
		return CTOSJoinGameMsg{}, errShort("CTOSJoinGame", 48, len(b))
	}
	return CTOSJoinGameMsg{
		Version: binary.LittleEndian.Uint16(b[0:2]),
		GameID:  binary.LittleEndian.Uint32(b[4:8]),
		Pass:    DecodeFixedString(b[8:48], 20),
	}, nil
}

// CTOSHsKickMsg names the seat position to evict from the pre-duel lobby.
type CTOSHsKickMsg struct{ Pos uint8 }

func (m CTOSHsKickMsg) Size() int      { return 1 }
func (m CTOSHsKickMsg) Encode() []byte { return []byte{m.Pos} }

func decodeCTOSHsKick(b []byte) (CTOSHsKickMsg, error) {
	if len(b) < 1 {
		return CTOSHsKickMsg{}, errShort("CTOSHsKick", 1, len(b))
	}
	return CTOSHsKickMsg{Pos: b[0]}, nil
}

// CTOSUpdateDeckMsg is a greedy-vec message: the main/side counts followed by
// little-endian u32 card codes. The decoder reads codes from the rest of
// the body, not from the counts, capped at 90 entries (the largest legal
// main+extra+side deck) so an oversized body can't be used to read
// unbounded memory.
type CTOSUpdateDeckMsg struct {
	MainCount int32
	SideCount int32
	Codes     []uint32
}

const maxDeckCodes = 90

func (m CTOSUpdateDeckMsg) Size() int { return 8 + 4*len(m.Codes) }
func (m CTOSUpdateDeckMsg) Encode() []byte {
	out := make([]byte, 8+4*len(m.Codes))
	binary.LittleEndian.PutUint32(out[0:4], uint32(m.MainCount))
	binary.LittleEndian.PutUint32(out[4:8], uint32(m.SideCount))
	for i, c := range m.Codes {
		binary.LittleEndian.PutUint32(out[8+4*i:12+4*i], c)
	}
	return out
}

func decodeCTOSUpdateDeck(b []byte) (CTOSUpdateDeckMsg, error) {
	if len(b) < 8 {
		return CTOSUpdateDeckMsg{}, errShort("CTOSUpdateDeck", 8, len(b))
	}
	main := int32(binary.LittleEndian.Uint32(b[0:4]))
	side := int32(binary.LittleEndian.Uint32(b[4:8]))
	rest := b[8:]
	n := len(rest) / 4
	if n > maxDeckCodes {
		n = maxDeckCodes
	}
	codes := make([]uint32, n)
	for i := 0; i < n; i++ {
		codes[i] = binary.LittleEndian.Uint32(rest[4*i : 4*i+4])
	}
	return CTOSUpdateDeckMsg{MainCount: main, SideCount: side, Codes: codes}, nil
}

// CTOSChatMsg is a free-form chat message, UTF-16LE, NUL-terminated, no
// explicit length prefix beyond the enclosing frame.
type CTOSChatMsg struct{ Text string }

func (m CTOSChatMsg) Size() int      { return len(EncodeVariableString(m.Text)) }
func (m CTOSChatMsg) Encode() []byte { return EncodeVariableString(m.Text) }

func decodeCTOSChat(b []byte) (CTOSChatMsg, error) {
	return CTOSChatMsg{Text: DecodeVariableString(b)}, nil
}

// CTOSHandResultMsg / CTOSTpResultMsg carry a single result byte (rock-paper-
// scissors call, or match tiebreak choice).
type CTOSHandResultMsg struct{ Result uint8 }

func (m CTOSHandResultMsg) Size() int      { return 1 }
func (m CTOSHandResultMsg) Encode() []byte { return []byte{m.Result} }

func decodeCTOSHandResult(b []byte) (CTOSHandResultMsg, error) {
	if len(b) < 1 {
		return CTOSHandResultMsg{}, errShort("CTOSHandResult", 1, len(b))
	}
	return CTOSHandResultMsg{Result: b[0]}, nil
}

type CTOSTpResultMsg struct{ Result uint8 }

func (m CTOSTpResultMsg) Size() int      { return 1 }
func (m CTOSTpResultMsg) Encode() []byte { return []byte{m.Result} }

func decodeCTOSTpResult(b []byte) (CTOSTpResultMsg, error) {
	if len(b) < 1 {
		return CTOSTpResultMsg{}, errShort("CTOSTpResult", 1, len(b))
	}
	return CTOSTpResultMsg{Result: b[0]}, nil
}

// --- STOC -----------------------------------------------------------------

// STOCErrorMessageMsg reports a server-side rejection (deck check failure,
// join refusal, and so on) by a numeric code.
type STOCErrorMessageMsg struct {
	Kind uint8
	Code uint32
}

func (m STOCErrorMessageMsg) Size() int { return 4 + 4 }
func (m STOCErrorMessageMsg) Encode() []byte {
	out := make([]byte, 8)
	out[0] = m.Kind
	binary.LittleEndian.PutUint32(out[4:8], m.Code)
	return out
}

func decodeSTOCErrorMessage(b []byte) (STOCErrorMessageMsg, error) {
	if len(b) < 8 {
		return STOCErrorMessageMsg{}, errShort("STOCErrorMessage", 8, len(b))
	}
	return STOCErrorMessageMsg{Kind: b[0], Code: binary.LittleEndian.Uint32(b[4:8])}, nil
}

// STOCCreateGameMsg echoes the freshly assigned room id back to its creator.
type STOCCreateGameMsg struct{ GameID uint32 }

func (m STOCCreateGameMsg) Size() int { return 4 }
func (m STOCCreateGameMsg) Encode() []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, m.GameID)
	return out
}

func decodeSTOCCreateGame(b []byte) (STOCCreateGameMsg, error) {
	if len(b) < 4 {
		return STOCCreateGameMsg{}, errShort("STOCCreateGame", 4, len(b))
	}
	return STOCCreateGameMsg{GameID: binary.LittleEndian.Uint32(b)}, nil
}

// STOCJoinGameMsg echoes the room's packed HostInfo back to a joining client.
type STOCJoinGameMsg struct{ Info hostinfo.HostInfo }

func (m STOCJoinGameMsg) Size() int      { return 20 }
func (m STOCJoinGameMsg) Encode() []byte { return EncodeHostInfo(m.Info) }

func decodeSTOCJoinGame(b []byte) (STOCJoinGameMsg, error) {
	if len(b) < 20 {
		return STOCJoinGameMsg{}, errShort("STOCJoinGame", 20, len(b))
	}
	info, err := DecodeHostInfo(b[:20])
	if err != nil {
		return STOCJoinGameMsg{}, err
	}
	return STOCJoinGameMsg{Info: info}, nil
}

// STOCTypeChangeMsg announces a seat's new duelist/observer/host status.
type STOCTypeChangeMsg struct{ Kind uint8 }

func (m STOCTypeChangeMsg) Size() int      { return 1 }
func (m STOCTypeChangeMsg) Encode() []byte { return []byte{m.Kind} }

func decodeSTOCTypeChange(b []byte) (STOCTypeChangeMsg, error) {
	if len(b) < 1 {
		return STOCTypeChangeMsg{}, errShort("STOCTypeChange", 1, len(b))
	}
	return STOCTypeChangeMsg{Kind: b[0]}, nil
}

// STOCLeaveGameMsg announces that the seat at Pos left the room.
type STOCLeaveGameMsg struct{ Pos uint8 }

func (m STOCLeaveGameMsg) Size() int      { return 1 }
func (m STOCLeaveGameMsg) Encode() []byte { return []byte{m.Pos} }

func decodeSTOCLeaveGame(b []byte) (STOCLeaveGameMsg, error) {
	if len(b) < 1 {
		return STOCLeaveGameMsg{}, errShort("STOCLeaveGame", 1, len(b))
	}
	return STOCLeaveGameMsg{Pos: b[0]}, nil
}

// STOCReplayMsg is an opaque binary replay blob; srvpru has no need to
// understand its contents, only to forward it whole.
type STOCReplayMsg struct{ Data []byte }

func (m STOCReplayMsg) Size() int      { return len(m.Data) }
func (m STOCReplayMsg) Encode() []byte { return m.Data }

func decodeSTOCReplay(b []byte) (STOCReplayMsg, error) {
	return STOCReplayMsg{Data: append([]byte(nil), b...)}, nil
}

// STOCTimeLimitMsg announces a seat's remaining clock time.
type STOCTimeLimitMsg struct {
	Player   uint8
	LeftTime uint16
}

func (m STOCTimeLimitMsg) Size() int { return 3 }
func (m STOCTimeLimitMsg) Encode() []byte {
	out := make([]byte, 3)
	out[0] = m.Player
	binary.LittleEndian.PutUint16(out[1:3], m.LeftTime)
	return out
}

func decodeSTOCTimeLimit(b []byte) (STOCTimeLimitMsg, error) {
	if len(b) < 3 {
		return STOCTimeLimitMsg{}, errShort("STOCTimeLimit", 3, len(b))
	}
	return STOCTimeLimitMsg{Player: b[0], LeftTime: binary.LittleEndian.Uint16(b[1:3])}, nil
}

// STOCChatMsg is the server-relayed counterpart of CTOSChatMsg, prefixed with
// the speaking seat/name code.
type STOCChatMsg struct {
	Name uint16
	Text string
}

func (m STOCChatMsg) Size() int { return 2 + len(EncodeVariableString(m.Text)) }
func (m STOCChatMsg) Encode() []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, m.Name)
	return append(out, EncodeVariableString(m.Text)...)
}

func decodeSTOCChat(b []byte) (STOCChatMsg, error) {
	if len(b) < 2 {
		return STOCChatMsg{}, errShort("STOCChat", 2, len(b))
	}
	return STOCChatMsg{Name: binary.LittleEndian.Uint16(b[0:2]), Text: DecodeVariableString(b[2:])}, nil
}

// STOCHsPlayerEnterMsg announces a new lobby participant's name and seat.
type STOCHsPlayerEnterMsg struct {
	Name string
	Pos  uint8
}

func (m STOCHsPlayerEnterMsg) Size() int { return 41 }
func (m STOCHsPlayerEnterMsg) Encode() []byte {
	out := EncodeFixedString(m.Name, 20)
	return append(out, m.Pos)
}

func decodeSTOCHsPlayerEnter(b []byte) (STOCHsPlayerEnterMsg, error) {
	if len(b) < 41 {
		return STOCHsPlayerEnterMsg{}, errShort("STOCHsPlayerEnter", 41, len(b))
	}
	return STOCHsPlayerEnterMsg{Name: DecodeFixedString(b[:40], 20), Pos: b[40]}, nil
}

// STOCHsPlayerChangeMsg announces a lobby seat's ready/ungone status change.
type STOCHsPlayerChangeMsg struct{ Status uint8 }

func (m STOCHsPlayerChangeMsg) Size() int      { return 1 }
func (m STOCHsPlayerChangeMsg) Encode() []byte { return []byte{m.Status} }

func decodeSTOCHsPlayerChange(b []byte) (STOCHsPlayerChangeMsg, error) {
	if len(b) < 1 {
		return STOCHsPlayerChangeMsg{}, errShort("STOCHsPlayerChange", 1, len(b))
	}
	return STOCHsPlayerChangeMsg{Status: b[0]}, nil
}

// STOCHsWatchChangeMsg announces the current observer count.
type STOCHsWatchChangeMsg struct{ Count uint16 }

func (m STOCHsWatchChangeMsg) Size() int { return 2 }
func (m STOCHsWatchChangeMsg) Encode() []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, m.Count)
	return out
}

func decodeSTOCHsWatchChange(b []byte) (STOCHsWatchChangeMsg, error) {
	if len(b) < 2 {
		return STOCHsWatchChangeMsg{}, errShort("STOCHsWatchChange", 2, len(b))
	}
	return STOCHsWatchChangeMsg{Count: binary.LittleEndian.Uint16(b)}, nil
}

// STOCDeckCountMsg reports both duelists' main/side/extra deck sizes, used by
// spectator-facing UI.
type STOCDeckCountMsg struct {
	MainSelf, SideSelf, ExtraSelf             uint16
	MainOpponent, SideOpponent, ExtraOpponent uint16
}

func (m STOCDeckCountMsg) Size() int { return 12 }
func (m STOCDeckCountMsg) Encode() []byte {
	out := make([]byte, 12)
	vals := []uint16{m.MainSelf, m.SideSelf, m.ExtraSelf, m.MainOpponent, m.SideOpponent, m.ExtraOpponent}
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], v)
	}
	return out
}

func decodeSTOCDeckCount(b []byte) (STOCDeckCountMsg, error) {
	if len(b) < 12 {
		return STOCDeckCountMsg{}, errShort("STOCDeckCount", 12, len(b))
	}
	u16 := func(i int) uint16 { return binary.LittleEndian.Uint16(b[2*i : 2*i+2]) }
	return STOCDeckCountMsg{
		MainSelf: u16(0), SideSelf: u16(1), ExtraSelf: u16(2),
		MainOpponent: u16(3), SideOpponent: u16(4), ExtraOpponent: u16(5),
	}, nil
}

// STOCGameMessageMsg is the envelope around every in-duel "GM" message: a
// single sub-opcode byte followed by a GM-specific body. srvpru decodes
// only a handful of GM sub-types (see gmOpcodes); everything else is kept
// as an opaque Body and forwarded unchanged.
type STOCGameMessageMsg struct {
	SubOpcode uint8
	Body      []byte
}

func (m STOCGameMessageMsg) Size() int      { return 1 + len(m.Body) }
func (m STOCGameMessageMsg) Encode() []byte { return append([]byte{m.SubOpcode}, m.Body...) }

func decodeSTOCGameMessage(b []byte) (STOCGameMessageMsg, error) {
	if len(b) < 1 {
		return STOCGameMessageMsg{}, errShort("STOCGameMessage", 1, len(b))
	}
	return STOCGameMessageMsg{SubOpcode: b[0], Body: append([]byte(nil), b[1:]...)}, nil
}

// GM returns the MessageType and decoded payload for the envelope's inner
// sub-opcode: a second, nested lookup for GameMessages.
func (m STOCGameMessageMsg) GM() (MessageType, interface{}, error) {
	t := GMTypeFor(m.SubOpcode)
	switch t {
	case GMHint, GMWaiting, GMDraw, GMNewTurn:
		v, err := decodeEmpty(m.Body)
		return t, v, err
	default:
		return Unknown, nil, nil
	}
}

func errShort(name string, want, got int) error {
	return fmt.Errorf("wire: %s needs %d bytes, got %d: %w", name, want, got, ErrShortBuffer)
}
