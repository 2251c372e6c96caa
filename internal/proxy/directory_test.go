// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"net"
	"testing"

	"github.com/IamIpanda/srvpru/internal/hostinfo"
)

func TestDirectoryPrecursorTakeRemovesEntry(t *testing.T) {
	d := newDirectory()
	d.putPrecursor("1.2.3.4:1", newPrecursor("alice"))

	got, ok := d.takePrecursor("1.2.3.4:1")
	if !ok || got.Name != "alice" {
		t.Fatalf("takePrecursor = %+v, %v", got, ok)
	}
	if _, ok := d.getPrecursor("1.2.3.4:1"); ok {
		t.Fatalf("precursor should have been removed by take")
	}
}

func TestDirectoryRoomLookupsByKey(t *testing.T) {
	d := newDirectory()
	r := newRoom("origin", hostinfo.Default(), "rendered")
	d.putRoom(r)
	d.putRoomByServerAddr("127.0.0.1:9000", r)
	d.putRoomByClientAddr("client:1", r)

	if got, ok := d.getRoom("origin"); !ok || got != r {
		t.Fatalf("getRoom = %v, %v", got, ok)
	}
	if got, ok := d.getRoomByServerAddr("127.0.0.1:9000"); !ok || got != r {
		t.Fatalf("getRoomByServerAddr = %v, %v", got, ok)
	}

	d.deleteRoom("origin")
	d.deleteRoomByServerAddr("127.0.0.1:9000")
	d.deleteRoomByClientAddr("client:1")
	if _, ok := d.getRoom("origin"); ok {
		t.Fatalf("room should have been deleted")
	}
}

func TestDirectorySnapshotsAreIndependentCopies(t *testing.T) {
	d := newDirectory()
	d.putRoom(newRoom("a", hostinfo.Default(), "a"))
	d.putRoom(newRoom("b", hostinfo.Default(), "b"))

	snap := d.snapshotRooms()
	if len(snap) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(snap))
	}
	d.deleteRoom("a")
	if len(snap) != 2 {
		t.Fatalf("earlier snapshot should be unaffected by later mutation")
	}
}

func TestRoomMarkDeletedIsIdempotent(t *testing.T) {
	r := newRoom("origin", hostinfo.Default(), "rendered")
	stop := make(chan struct{})
	r.setEstablished(nil, "127.0.0.1:9000", stop)

	if !r.markDeleted() {
		t.Fatalf("first markDeleted should report true")
	}
	if r.markDeleted() {
		t.Fatalf("second markDeleted should report false")
	}
	select {
	case <-stop:
	default:
		t.Fatalf("stderrStop channel should have been closed")
	}
}

func TestRoomPlayerListManagement(t *testing.T) {
	r := newRoom("origin", hostinfo.Default(), "rendered")
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	p := newPlayer("client:1", "alice", r, c1, c2)

	r.addPlayer(p)
	if r.playerCount() != 1 {
		t.Fatalf("expected 1 player, got %d", r.playerCount())
	}
	r.removePlayer(p)
	if r.playerCount() != 0 {
		t.Fatalf("expected 0 players after removal, got %d", r.playerCount())
	}
}

func TestPlayerStealAndReturnServerConn(t *testing.T) {
	clientSide, serverSide := net.Pipe()
	defer clientSide.Close()
	defer serverSide.Close()
	p := newPlayer("client:1", "alice", nil, clientSide, serverSide)

	conn := p.stealServerConn()
	if conn == nil {
		t.Fatalf("expected a non-nil stolen connection")
	}
	if got := p.stealServerConn(); got != nil {
		t.Fatalf("a second steal before return should yield nil, got %v", got)
	}
	p.returnServerConn(conn)
	if p.stealServerConn() == nil {
		t.Fatalf("connection should be available again after return")
	}
}

func TestPlayerAttachments(t *testing.T) {
	p := newPlayer("client:1", "alice", nil, nil, nil)
	if _, ok := p.Attachment("missing"); ok {
		t.Fatalf("expected no attachment before any is set")
	}
	p.SetAttachment("hand", 3)
	v, ok := p.Attachment("hand")
	if !ok || v.(int) != 3 {
		t.Fatalf("Attachment = %v, %v", v, ok)
	}
}
