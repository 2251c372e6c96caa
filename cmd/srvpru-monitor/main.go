// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Command srvpru-monitor is a read-only terminal dashboard for a running
// srvpru process: it polls that process's /debug/snapshot endpoint
// (started with cmd/srvpru's --pprof flag) and renders live rooms,
// players, and connection lifecycle states.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	addr := flag.String("addr", "http://127.0.0.1:6060", "base address of a srvpru process started with --pprof")
	interval := flag.Duration("interval", time.Second, "snapshot poll interval")
	flag.Parse()

	model := newModel(&http.Client{Timeout: 3 * time.Second}, *addr, *interval)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "srvpru-monitor:", err)
		os.Exit(1)
	}
}
