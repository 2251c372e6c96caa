// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"testing"
	"time"

	"github.com/IamIpanda/srvpru/internal/fsm"
	"github.com/IamIpanda/srvpru/internal/log"
)

func waitForState(t *testing.T, track *fsm.FSM, want string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if track.Current() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("lifecycle never reached %q, stuck at %q", want, track.Current())
}

func TestConnLifecycleFollowsJoinSequence(t *testing.T) {
	logger, err := log.NewDevelopment()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	track, stop := newConnLifecycle(logger, "client:1")
	defer stop()

	waitForState(t, track, lifecycleRawStream)
	track.Write(&fsm.Event{Name: lifecycleEventPlayerInfo})
	waitForState(t, track, lifecyclePrecursor)
	track.Write(&fsm.Event{Name: lifecycleEventJoinGame})
	waitForState(t, track, lifecyclePlayer)
	track.Write(&fsm.Event{Name: lifecycleEventDisconnect})
	waitForState(t, track, lifecycleDestroyed)
}

func TestConnLifecycleHaltsOnUnexpectedEventWithoutBlocking(t *testing.T) {
	logger, err := log.NewDevelopment()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	track, stop := newConnLifecycle(logger, "client:2")
	defer stop()

	// join_game before player_info never matches a transition: the
	// tracker halts (logged), but callers writing further events must
	// never block on it.
	track.Write(&fsm.Event{Name: lifecycleEventJoinGame})
	waitForState(t, track, fsm.Stopped)
	track.Write(&fsm.Event{Name: lifecycleEventDisconnect})
}
