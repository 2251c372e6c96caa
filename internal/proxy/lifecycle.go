// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"go.uber.org/zap"

	"github.com/IamIpanda/srvpru/internal/fsm"
)

// Lifecycle states for the per-connection tracking FSM:
// RawStream -> Precursor -> Player -> Destroyed.
const (
	lifecycleRawStream = "raw_stream"
	lifecyclePrecursor = "precursor"
	lifecyclePlayer    = "player"
	lifecycleDestroyed = "destroyed"
)

const (
	lifecycleEventPlayerInfo = "player_info"
	lifecycleEventJoinGame   = "join_game"
	lifecycleEventDisconnect = "disconnect"
)

// lifecycleTransitions is shared by every connection's FSM: the state
// diagram above, expressed with internal/fsm. An event the diagram
// doesn't name from the current state (e.g. a client resending
// PlayerInfo once it already has a Precursor) halts this tracking FSM,
// logged, not fatal: the directory maps in this package remain the
// single source of truth for forwarding, this FSM exists to make the
// lifecycle visible to cmd/srvpru-monitor.
var lifecycleTransitions = []*fsm.Transition{
	fsm.WhenIn(lifecycleRawStream).GotEvent(lifecycleEventPlayerInfo).GoTo(lifecyclePrecursor),
	fsm.WhenIn(lifecyclePrecursor).GotEvent(lifecycleEventJoinGame).GoTo(lifecyclePlayer),
	fsm.WhenInAnyState().GotEvent(lifecycleEventDisconnect).GoTo(lifecycleDestroyed),
}

// newConnLifecycle builds and starts a fresh tracking FSM for a newly
// accepted connection, and returns a stop function the caller must
// invoke exactly once when the connection is torn down.
func newConnLifecycle(logger *zap.SugaredLogger, addr string) (track *fsm.FSM, stop func()) {
	f, err := fsm.New(lifecycleRawStream, lifecycleTransitions, nil)
	if err != nil {
		// Only possible on a malformed callback list, which this package
		// never passes; unreachable in practice.
		panic(err)
	}
	errCh := make(chan error, 1)
	go f.Run(errCh)
	go func() {
		if err, ok := <-errCh; ok {
			logger.Debugw("connection lifecycle tracker halted", "addr", addr, "error", err)
		}
	}()
	return f, f.Stop
}
