// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"net"
	"sync"
)

// Player is a client connection that has joined a Room: both socket
// halves exist and CTOS/STOC frames flow through the pipeline in both
// directions.
type Player struct {
	mu             sync.Mutex
	ClientAddr     string
	Name           string
	Room           *Room
	clientConn     net.Conn
	serverConn     net.Conn
	serverReadConn net.Conn
	timeoutExempt  bool
	attachments    map[string]interface{}
}

// newPlayer stores serverConn twice: once behind the steal/return
// mutex for the CTOS write path (dispatchCTOS's flush), and once in
// serverReadConn, an unguarded field set only here and read only by
// forwardSTOC's own goroutine. Both names the same net.Conn — Go's
// net.Conn permits a concurrent Read and Write on one connection from
// different goroutines — so the STOC read loop never has to steal the
// conn out from under the CTOS write path (which is what silently
// stalled every CTOS frame once forwardSTOC started).
func newPlayer(clientAddr, name string, room *Room, clientConn, serverConn net.Conn) *Player {
	return &Player{
		ClientAddr:     clientAddr,
		Name:           name,
		Room:           room,
		clientConn:     clientConn,
		serverConn:     serverConn,
		serverReadConn: serverConn,
		attachments:    make(map[string]interface{}),
	}
}

// stealServerConn removes and returns the server-side connection so the
// caller can perform a blocking write without holding p's mutex for its
// duration. The caller must call returnServerConn afterward, even on a
// write error.
func (p *Player) stealServerConn() net.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.serverConn
	p.serverConn = nil
	return c
}

// returnServerConn puts conn back after a steal. A nil conn (the steal
// found nothing) leaves the field as it is, so the function is safe to
// call whatever the steal returned; it does not check whether the player
// was torn down while conn was out.
func (p *Player) returnServerConn(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn != nil {
		p.serverConn = conn
	}
}

// ServerReadConn returns the room-server connection for forwardSTOC's
// exclusive use as a reader. It is never stolen: only the single
// forwardSTOC goroutine for this player ever reads from it, so no
// locking is needed, and the CTOS write path never observes it as nil.
func (p *Player) ServerReadConn() net.Conn {
	return p.serverReadConn
}

// stealClientConn / returnClientConn are the STOC-direction mirror of
// stealServerConn / returnServerConn.
func (p *Player) stealClientConn() net.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	c := p.clientConn
	p.clientConn = nil
	return c
}

func (p *Player) returnClientConn(conn net.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn != nil {
		p.clientConn = conn
	}
}

// SetTimeoutExempt marks p as exempt from the idle-read timeout (e.g. a
// heartbeat plugin keeping a slow client alive). The idle timeout still
// fires its listen-error event and is still logged, but the exempt
// player's connection is not torn down for it.
func (p *Player) SetTimeoutExempt(exempt bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeoutExempt = exempt
}

func (p *Player) isTimeoutExempt() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timeoutExempt
}

// Attachment returns a plugin's previously stored value for key, if any.
func (p *Player) Attachment(key string) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.attachments[key]
	return v, ok
}

// SetAttachment stores a plugin-owned value against p, purged when the
// player is destroyed.
func (p *Player) SetAttachment(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attachments[key] = value
}
