// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package netutil_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/IamIpanda/srvpru/internal/netutil"
)

func TestWaitUntilListeningSucceedsOnceBound(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := netutil.WaitUntilListening(ctx, ln.Addr().String(), 10*time.Millisecond, 500*time.Millisecond); err != nil {
		t.Fatalf("expected probe to succeed against a bound listener, got %v", err)
	}
}

func TestWaitUntilListeningTimesOutAgainstNothing(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing is listening here anymore

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := netutil.WaitUntilListening(ctx, addr, 10*time.Millisecond, 100*time.Millisecond); err == nil {
		t.Fatalf("expected probe against a closed port to time out")
	}
}
