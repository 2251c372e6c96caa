// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// snapshot mirrors cmd/srvpru's /debug/snapshot JSON body.
type snapshot struct {
	Rooms []struct {
		Name        string `json:"Name"`
		Status      string `json:"Status"`
		ServerAddr  string `json:"ServerAddr"`
		PlayerCount int    `json:"PlayerCount"`
	} `json:"rooms"`
	Players []struct {
		ClientAddr string `json:"ClientAddr"`
		Name       string `json:"Name"`
		Room       string `json:"Room"`
	} `json:"players"`
	Connections []struct {
		ClientAddr string `json:"ClientAddr"`
		State      string `json:"State"`
	} `json:"connections"`
}

type tickMsg time.Time

type snapshotMsg struct {
	data snapshot
	err  error
}

// model polls a srvpru process's debug endpoint on a fixed interval and
// renders its most recent snapshot. It never mutates the proxy: a failed
// poll only updates m.err, leaving the last good snapshot on screen.
type model struct {
	client   *http.Client
	addr     string
	interval time.Duration

	data snapshot
	err  error
}

func newModel(client *http.Client, addr string, interval time.Duration) model {
	return model{client: client, addr: addr, interval: interval}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.pollCmd(), tickCmd(m.interval))
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) pollCmd() tea.Cmd {
	client, addr := m.client, m.addr
	return func() tea.Msg {
		resp, err := client.Get(addr + "/debug/snapshot")
		if err != nil {
			return snapshotMsg{err: err}
		}
		defer resp.Body.Close()

		var data snapshot
		if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
			return snapshotMsg{err: err}
		}
		return snapshotMsg{data: data}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		return m, tea.Batch(m.pollCmd(), tickCmd(m.interval))
	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.data = msg.data
	}
	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "srvpru-monitor — %s\n\n", m.addr)

	if m.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("poll failed: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("Rooms (%d)", len(m.data.Rooms))))
	b.WriteString("\n")
	for _, r := range m.data.Rooms {
		fmt.Fprintf(&b, "  %-20s %-10s %-22s players=%d\n", r.Name, r.Status, r.ServerAddr, r.PlayerCount)
	}
	if len(m.data.Rooms) == 0 {
		b.WriteString(dimStyle.Render("  (none)\n"))
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("Players (%d)", len(m.data.Players))))
	b.WriteString("\n")
	for _, p := range m.data.Players {
		fmt.Fprintf(&b, "  %-22s %-12s room=%s\n", p.ClientAddr, p.Name, p.Room)
	}
	if len(m.data.Players) == 0 {
		b.WriteString(dimStyle.Render("  (none)\n"))
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("Connections (%d)", len(m.data.Connections))))
	b.WriteString("\n")
	for _, c := range m.data.Connections {
		fmt.Fprintf(&b, "  %-22s %s\n", c.ClientAddr, c.State)
	}
	if len(m.data.Connections) == 0 {
		b.WriteString(dimStyle.Render("  (none)\n"))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	return b.String()
}
