// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds the small TCP helpers a spawned room's server
// process needs before the proxy can attach a client to it: a retrying
// dialer and a readiness probe. Each connection attempt is routed
// through google/tcpproxy's DialProxy rather than a bare net.Dialer.
package netutil

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/tcpproxy"
)

// dialViaProxy makes one connection attempt to addr using
// google/tcpproxy's DialProxy as the actual dial path. DialProxy has no
// synchronous "dial and hand back a conn" entry point of its own — its
// only exported behavior is HandleConn(src net.Conn), which dials Addr
// and relays bytes between src and the dialed target, reporting a
// failed dial through OnDialError. A net.Pipe stands in for src so the
// probe never carries real game traffic; closing the local half tears
// the relay down once the dial's outcome is known.
func dialViaProxy(addr string, dialTimeout time.Duration) error {
	local, remote := net.Pipe()
	errCh := make(chan error, 1)
	dp := &tcpproxy.DialProxy{
		Addr:        addr,
		DialTimeout: dialTimeout,
		OnDialError: func(_ net.Conn, err error) { errCh <- err },
	}
	done := make(chan struct{})
	go func() {
		dp.HandleConn(remote)
		close(done)
	}()

	select {
	case err := <-errCh:
		local.Close()
		<-done
		return err
	case <-time.After(dialTimeout):
		local.Close()
		<-done
		return nil
	}
}

// RetryingDialer returns a probe function that keeps trying addr until a
// connection attempt succeeds or timeout elapses, sleeping sleep between
// attempts and invoking sideEffect (typically a debug log) before each
// retry.
func RetryingDialer(sleep, timeout time.Duration, sideEffect func()) func(ctx context.Context, addr string) error {
	perAttempt := sleep
	if perAttempt <= 0 {
		perAttempt = 50 * time.Millisecond
	}
	return func(ctx context.Context, addr string) error {
		started := time.Now()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			remaining := timeout - time.Since(started)
			if remaining <= 0 {
				return fmt.Errorf("netutil: dial %s timed out after %s", addr, timeout)
			}
			attemptTimeout := perAttempt
			if attemptTimeout > remaining {
				attemptTimeout = remaining
			}
			if err := dialViaProxy(addr, attemptTimeout); err == nil {
				return nil
			}

			if sideEffect != nil {
				sideEffect()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
		}
	}
}
