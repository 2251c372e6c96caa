// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package hostinfo_test

import (
	"testing"

	"github.com/IamIpanda/srvpru/internal/hostinfo"
)

func TestParseControllerTokens(t *testing.T) {
	info, name := hostinfo.Parse("M#room1")
	if name != "room1" {
		t.Fatalf("expected room name 'room1', got %q", name)
	}
	if info.Mode != hostinfo.ModeMatch {
		t.Fatalf("expected match mode, got %v", info.Mode)
	}
}

func TestParseNoHash(t *testing.T) {
	info, name := hostinfo.Parse("justaname")
	if name != "justaname" {
		t.Fatalf("expected passthrough name, got %q", name)
	}
	if info != hostinfo.Default() {
		t.Fatalf("expected default host info, got %+v", info)
	}
}

func TestParseUnknownTokenIgnored(t *testing.T) {
	info, name := hostinfo.Parse("BOGUS,M#room2")
	if name != "room2" {
		t.Fatalf("expected room name 'room2', got %q", name)
	}
	if info.Mode != hostinfo.ModeMatch {
		t.Fatalf("expected unknown token to be ignored and M applied, got %v", info.Mode)
	}
}

func TestParseTCGOnlySetsRuleAndLFList(t *testing.T) {
	info, _ := hostinfo.Parse("TO#room")
	if info.Rule != 1 {
		t.Fatalf("expected rule 1 for TO, got %d", info.Rule)
	}
	if info.LFList != hostinfo.FirstTCGLFList {
		t.Fatalf("expected the first TCG banlist index %d, got %d", hostinfo.FirstTCGLFList, info.LFList)
	}
}

func TestParseTimeLimitFallback(t *testing.T) {
	info, _ := hostinfo.Parse("TIMEbogus#room3")
	if info.TimeLimit != 180 {
		t.Fatalf("expected fallback time limit 180, got %d", info.TimeLimit)
	}
}

func TestParseRenderRoundTrip(t *testing.T) {
	cases := []string{
		"M,TIME300,LP4000,DRAW2,START6,MR1,LFLIST-1,NC,NS#room",
		"T,TCGONLY#room",
		"SC#room",
		"#room",
	}
	for _, password := range cases {
		info, _ := hostinfo.Parse(password)
		rendered := hostinfo.Render(info)
		info2, _ := hostinfo.Parse(rendered + "#room")
		if info2 != info {
			t.Fatalf("round trip mismatch for %q: %+v != %+v", password, info, info2)
		}
	}
}

func TestValidateRejectsOutOfRange(t *testing.T) {
	info := hostinfo.Default()
	info.TimeLimit = 9999
	if err := hostinfo.Validate(info); err == nil {
		t.Fatalf("expected validation error for oversized time limit")
	}
}

func TestValidateAcceptsDefault(t *testing.T) {
	if err := hostinfo.Validate(hostinfo.Default()); err != nil {
		t.Fatalf("expected default host info to validate, got %v", err)
	}
}

func TestProcessArgsShape(t *testing.T) {
	args := hostinfo.ProcessArgs(hostinfo.Default())
	if len(args) != 12 {
		t.Fatalf("expected 12 argv entries, got %d", len(args))
	}
	if args[0] != "0" || args[len(args)-1] != "0" {
		t.Fatalf("expected a leading seed of 0 and a trailing \"0\", got %v", args)
	}
}
