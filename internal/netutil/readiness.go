// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"context"
	"fmt"
	"time"
)

// WaitUntilListening probes addr until a TCP connect (made through
// RetryingDialer's DialProxy path) succeeds or timeout elapses; the
// probe connection never carries traffic and is
// torn down as soon as its outcome is known. A freshly spawned room
// server binds its port before it can usefully speak the game protocol,
// so a connect-only probe is enough here: the proxy's own client
// connection is the first real traffic the child process needs to see.
func WaitUntilListening(ctx context.Context, addr string, retry time.Duration, timeout time.Duration) error {
	probe := RetryingDialer(retry, timeout, nil)
	if err := probe(ctx, addr); err != nil {
		return fmt.Errorf("netutil: %s never started listening: %w", addr, err)
	}
	return nil
}
