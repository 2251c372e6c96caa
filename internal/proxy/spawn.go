// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/IamIpanda/srvpru/internal/config"
	"github.com/IamIpanda/srvpru/internal/hostinfo"
	"github.com/IamIpanda/srvpru/internal/netutil"
)

// spawnRoomServer starts the real game-server binary for a room, reads
// the first stdout line as its listening port, waits the configured
// warm-up period, and starts a background task draining stderr.
func spawnRoomServer(ctx context.Context, cfg *config.TypedConfig, logger *zap.SugaredLogger, info hostinfo.HostInfo) (cmd *exec.Cmd, addr string, stderrDone chan struct{}, err error) {
	args := hostinfo.ProcessArgs(info)
	cmd = exec.CommandContext(ctx, cfg.Ygopro.Binary, args...)
	cmd.Dir = cfg.Ygopro.WorkDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, "", nil, fmt.Errorf("proxy: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, "", nil, fmt.Errorf("proxy: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, "", nil, fmt.Errorf("proxy: start game server: %w", err)
	}

	port, err := readFirstLinePort(stdout)
	if err != nil {
		_ = cmd.Process.Kill()
		return nil, "", nil, err
	}
	addr = fmt.Sprintf("%s:%d", cfg.Ygopro.Address, port)

	if cfg.Ygopro.WaitStart > 0 {
		time.Sleep(time.Duration(cfg.Ygopro.WaitStart) * time.Millisecond)
	}
	// wait_start is a flat sleep per the spawn contract and always runs
	// above; this is a bounded extra grace period for the rare child
	// that is still finishing its own listen() once that sleep elapses.
	// Failure here does not fail the spawn — it only gets logged.
	if err := waitForListening(ctx, addr); err != nil {
		logger.Debugw("room server not yet accepting connections after wait_start, proceeding anyway", "addr", addr, "error", err)
	}

	stop := make(chan struct{})
	go drainStderr(logger, addr, stderr, stop)

	return cmd, addr, stop, nil
}

// readFirstLinePort reads the spawned process's first stdout line and
// parses it as its listening port. Port 0 or an unparseable line is a
// spawn failure.
func readFirstLinePort(stdout io.Reader) (uint16, error) {
	scanner := bufio.NewScanner(stdout)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("proxy: reading spawned server's stdout: %w", err)
		}
		return 0, fmt.Errorf("proxy: spawned server closed stdout before printing a port")
	}
	port, err := strconv.ParseUint(scanner.Text(), 10, 16)
	if err != nil || port == 0 {
		return 0, fmt.Errorf("proxy: cannot determine spawned server's port from %q", scanner.Text())
	}
	return uint16(port), nil
}

// drainStderr logs every stderr line from the spawned server until it
// closes (the server exited) or stop is closed (room already torn down
// from elsewhere).
func drainStderr(logger *zap.SugaredLogger, addr string, stderr io.Reader, stop chan struct{}) {
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			logger.Warnw("game server stderr", "addr", addr, "line", line)
		case <-stop:
			return
		}
	}
}

// waitForListening probes addr every 50ms for up to 5s. spawnRoomServer
// runs it after every wait_start sleep, in addition to that sleep, and
// only logs its failure.
func waitForListening(ctx context.Context, addr string) error {
	return netutil.WaitUntilListening(ctx, addr, 50*time.Millisecond, 5*time.Second)
}
