// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package hostinfo parses and renders the packed duel configuration that
// travels inside a room's join password, and derives the argv used to
// spawn the real game-server process for that room.
package hostinfo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
)

// Mode is the duel mode negotiated by the room password.
type Mode uint8

const (
	ModeSingle Mode = 0
	ModeMatch  Mode = 1
	ModeTag    Mode = 2
)

func (m Mode) token() string {
	switch m {
	case ModeMatch:
		return "M"
	case ModeTag:
		return "T"
	default:
		return "S"
	}
}

// HostInfo is the packed duel configuration negotiated through a room's
// join password. Field order and widths mirror the on-wire layout used
// by internal/wire.
type HostInfo struct {
	LFList        int32
	Rule          uint8
	Mode          Mode
	DuelRule      uint8
	NoCheckDeck   bool
	NoShuffleDeck bool
	StartLP       uint32
	StartHand     uint8
	DrawCount     uint8
	TimeLimit     uint16
}

// FirstTCGLFList is the banlist index the TO/TCGONLY token selects.
// Which index holds the first TCG list depends on the lflist.conf the
// spawned server binary ships with, so deployments whose banlist file is
// ordered differently set this once at startup (see the firstTcgLflist
// config key), before any password is parsed.
var FirstTCGLFList int32 = 0

// Default returns the HostInfo used when a password carries no recognized
// controller tokens at all.
func Default() HostInfo {
	return HostInfo{
		LFList:    0,
		Rule:      0,
		Mode:      ModeSingle,
		DuelRule:  5,
		StartLP:   8000,
		StartHand: 5,
		DrawCount: 1,
		TimeLimit: 233,
	}
}

// Parse splits a join password into its leading controller tokens and the
// room name after the '#' separator, applying every recognized token to a
// Default() HostInfo. Unknown tokens are ignored.
func Parse(password string) (HostInfo, string) {
	info := Default()
	controllers, name := password, password
	if idx := strings.IndexByte(password, '#'); idx >= 0 {
		controllers = password[:idx]
		name = password[idx+1:]
	} else {
		controllers = ""
	}
	for _, raw := range strings.Split(controllers, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		applyToken(&info, strings.ToUpper(token))
	}
	return info, name
}

func applyToken(info *HostInfo, token string) {
	switch token {
	case "M", "MATCH":
		info.Mode = ModeMatch
	case "T", "TAG":
		info.Mode = ModeTag
	case "OT", "TCG":
		info.Rule = 5
	case "TO", "TCGONLY":
		info.Rule = 1
		info.LFList = FirstTCGLFList
	case "OO", "OCGONLY":
		info.Rule = 0
		info.LFList = 0
	case "SC", "CN", "CCG", "CHINESE":
		info.Rule = 2
		info.LFList = -1
	case "DIY", "CUSTOM":
		info.Rule = 3
	case "NF", "NOLFLIST":
		info.LFList = -1
	case "NU", "NOUNIQUE":
		info.Rule = 4
	case "NC", "NOCHECK":
		info.NoCheckDeck = true
	case "NS", "NOSHUFFLE":
		info.NoShuffleDeck = true
	default:
		switch {
		case strings.HasPrefix(token, "TIME"):
			info.TimeLimit = parseUint16(token[4:], 180)
		case strings.HasPrefix(token, "LFLIST"):
			info.LFList = parseInt32(token[6:], -1)
		case strings.HasPrefix(token, "LP"):
			info.StartLP = parseUint32(token[2:], 8000)
		case strings.HasPrefix(token, "START"):
			info.StartHand = parseUint8(token[5:], 5)
		case strings.HasPrefix(token, "DRAW"):
			info.DrawCount = parseUint8(token[4:], 1)
		case strings.HasPrefix(token, "MR"):
			info.Rule = parseUint8(token[2:], 5)
		}
	}
}

func parseInt32(s string, fallback int32) int32 {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}

func parseUint32(s string, fallback uint32) uint32 {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(v)
}

func parseUint16(s string, fallback uint16) uint16 {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return fallback
	}
	return uint16(v)
}

func parseUint8(s string, fallback uint8) uint8 {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return fallback
	}
	return uint8(v)
}

// Render renders the controller-token string that would parse back into
// info, the inverse of Parse. The result carries no '#' or room name, so
// it must be followed by "#" and a name before Parsing it:
// Parse(Render(h)+"#"+name) round-trips every field Parse itself touches.
func Render(info HostInfo) string {
	parts := []string{
		info.Mode.token(),
		fmt.Sprintf("TIME%d", info.TimeLimit),
		fmt.Sprintf("START%d", info.StartHand),
		fmt.Sprintf("LP%d", info.StartLP),
		fmt.Sprintf("DRAW%d", info.DrawCount),
		fmt.Sprintf("MR%d", info.Rule),
		fmt.Sprintf("LFLIST%d", info.LFList),
	}
	if info.NoCheckDeck {
		parts = append(parts, "NC")
	}
	if info.NoShuffleDeck {
		parts = append(parts, "NS")
	}
	return strings.Join(parts, ",")
}

// Validate rejects a HostInfo whose parsed fields fall outside the ranges
// the real game-server binary accepts. A room whose password produces an
// invalid HostInfo must never be allowed to spawn a child process.
func Validate(info HostInfo) error {
	if !govalidator.InRange(int(info.TimeLimit), 0, 3000) {
		return fmt.Errorf("hostinfo: time limit %d out of range", info.TimeLimit)
	}
	if !govalidator.InRange(int(info.StartLP), 1, 1000000) {
		return fmt.Errorf("hostinfo: start LP %d out of range", info.StartLP)
	}
	if !govalidator.InRange(int(info.DrawCount), 1, 10) {
		return fmt.Errorf("hostinfo: draw count %d out of range", info.DrawCount)
	}
	if !govalidator.InRange(int(info.StartHand), 1, 20) {
		return fmt.Errorf("hostinfo: start hand %d out of range", info.StartHand)
	}
	return nil
}

// ProcessArgs builds the argv used to spawn the game-server child
// process: [seed, lflist, rule, mode, duel_rule, no_check_deck,
// no_shuffle_deck, start_lp, start_hand, draw_count, time_limit, "0"].
func ProcessArgs(info HostInfo) []string {
	boolToken := func(b bool) string {
		if b {
			return "T"
		}
		return "F"
	}
	return []string{
		"0",
		strconv.FormatInt(int64(info.LFList), 10),
		strconv.FormatUint(uint64(info.Rule), 10),
		strconv.FormatUint(uint64(info.Mode), 10),
		strconv.FormatUint(uint64(info.DuelRule), 10),
		boolToken(info.NoCheckDeck),
		boolToken(info.NoShuffleDeck),
		strconv.FormatUint(uint64(info.StartLP), 10),
		strconv.FormatUint(uint64(info.StartHand), 10),
		strconv.FormatUint(uint64(info.DrawCount), 10),
		strconv.FormatUint(uint64(info.TimeLimit), 10),
		"0",
	}
}
