// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/IamIpanda/srvpru/internal/bus"
	"github.com/IamIpanda/srvpru/internal/config"
	"github.com/IamIpanda/srvpru/internal/fsm"
	"github.com/IamIpanda/srvpru/internal/hostinfo"
	"github.com/IamIpanda/srvpru/internal/pipeline"
	"github.com/IamIpanda/srvpru/internal/registry"
	"github.com/IamIpanda/srvpru/internal/wire"
)

// Server owns the proxy's accept loop and every room it has spawned:
// one goroutine per accepted connection, all sharing the same logger,
// registry, and bus.
type Server struct {
	cfg      *config.TypedConfig
	logger   *zap.SugaredLogger
	registry *registry.Registry
	bus      *bus.Bus
	dir      *directory

	roomSeq uint64
}

// NewServer builds a Server over a not-yet-sealed Registry and an
// already-constructed Bus. Call RegisterCoreHandlers before sealing reg,
// so plugin handlers registered on the same Registry run alongside the
// lifecycle ones this package owns.
func NewServer(cfg *config.TypedConfig, logger *zap.SugaredLogger, reg *registry.Registry, b *bus.Bus) *Server {
	return &Server{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		bus:      b,
		dir:      newDirectory(),
	}
}

// RegisterCoreHandlers exposes registerCoreHandlers to callers assembling
// a Registry before Seal — see cmd/srvpru/main.go.
func (s *Server) RegisterCoreHandlers() {
	s.registerCoreHandlers()
}

// ListenAndServe accepts game clients on cfg.ListenAddress until ctx is
// canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("proxy: listen on %s: %w", s.cfg.ListenAddress, err)
	}
	defer ln.Close()

	s.logger.Infow("listening", "addr", s.cfg.ListenAddress)
	s.bus.Synthesize(s.cfg.ListenAddress, wire.SRVPRUServerStart, wire.ServerStart{ListenAddress: s.cfg.ListenAddress})

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("proxy: accept: %w", err)
			}
		}
		go s.handleClient(ctx, conn)
	}
}

// handleClient owns one client connection's CTOS read loop for its
// entire life: before a Room is resolved it reads into a Precursor; once
// resolved, dispatchCTOS forwards its frames to the player's server
// connection.
func (s *Server) handleClient(ctx context.Context, conn net.Conn) {
	addr := conn.RemoteAddr().String()
	s.dir.putStream(addr, conn)
	track, stopTrack := newConnLifecycle(s.logger, addr)
	s.dir.putLifecycle(addr, track, stopTrack)
	defer s.dir.deleteLifecycle(addr)
	defer s.dir.deleteStream(addr)
	defer conn.Close()

	buf := make([]byte, 0, wire.MaxFrameLength*2)
	read := make([]byte, 4096)

	for {
		if s.cfg.IdleTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
		}
		n, err := conn.Read(read)
		if n > 0 {
			buf = append(buf, read[:n]...)
		}
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				if s.onIdleTimeout(addr) {
					continue
				}
				return
			}
			s.onClientGone(addr)
			return
		}

		frames, consumed, decErr := wire.DecodeFrames(buf, wire.CTOS)
		if decErr != nil {
			s.bus.Synthesize(addr, wire.SRVPRUCtosProcessError, wire.CtosProcessError{
				ClientAddr: addr,
				Kind:       classifyFrameError(decErr),
				Detail:     decErr.Error(),
			})
			s.onClientGone(addr)
			return
		}
		buf = buf[consumed:]

		if len(frames) == 0 {
			continue
		}
		s.dispatchCTOS(addr, frames)
	}
}

// dispatchCTOS runs every accumulated frame through the Before pipeline
// and forwards whatever survives to the player's server connection.
// Frames are processed one at a time because a single read can straddle
// the Precursor→Player transition (PlayerInfo and JoinGame arriving in
// the same read as later, already-routable frames); the common
// steady-state case (an established player, every frame PassThrough)
// is still written as a single batched Write via a contiguous run
// accumulator.
func (s *Server) dispatchCTOS(addr string, frames []wire.Frame) {
	var run []*pipeline.Bundle
	var runRaw []byte

	flush := func() {
		if len(run) == 0 {
			return
		}
		player, ok := s.dir.getPlayer(addr)
		if ok {
			out := pipeline.EncodeBatch(runRaw, run)
			if len(out) > 0 {
				conn := player.stealServerConn()
				if conn != nil {
					if _, err := conn.Write(out); err != nil {
						s.logger.Warnw("writing to room server failed", "addr", addr, "error", err)
					}
				}
				player.returnServerConn(conn)
			}
		}
		run = nil
		runRaw = nil
	}

	for _, f := range frames {
		b := pipeline.NewBundle(addr, wire.CTOS, f)
		player, hadPlayer := s.dir.getPlayer(addr)
		if hadPlayer {
			b.State[statePlayer] = player
			if room, ok2 := s.dir.getRoom(player.Room.OriginName); ok2 {
				b.State[stateRoom] = room
			}
		}

		if err := pipeline.RunBefore(s.registry, b); err != nil {
			s.logger.Warnw("before-handler error, forwarding frame unmodified", "addr", addr, "type", f.Type.String(), "error", err)
			b.Response.Verb = pipeline.PassThrough
		}
		pipeline.RunAfter(s.registry, b, func(err error) {
			s.logger.Warnw("after-handler error", "addr", addr, "type", f.Type.String(), "error", err)
		})

		if _, nowHasPlayer := s.dir.getPlayer(addr); nowHasPlayer {
			// Either the player already existed, or this very frame
			// (JoinGame) just created one: either way it belongs to the
			// contiguous forwardable run.
			run = append(run, b)
			runRaw = append(runRaw, f.Raw...)
			continue
		}

		// No player yet: flush whatever forwardable run preceded this
		// frame, then either buffer it into the connection's Precursor
		// or drop it if there isn't even one of those.
		flush()
		if precursor, ok := s.dir.getPrecursor(addr); ok {
			precursor.buffer(f.Raw)
		}
	}
	flush()
}

func concatRaw(frames []wire.Frame) []byte {
	total := 0
	for _, f := range frames {
		total += len(f.Raw)
	}
	out := make([]byte, 0, total)
	for _, f := range frames {
		out = append(out, f.Raw...)
	}
	return out
}

func classifyFrameError(err error) wire.ErrorKind {
	switch err {
	case wire.ErrOversize:
		return wire.KindOversize
	case wire.ErrOverCount:
		return wire.KindOverCount
	case wire.ErrShortBuffer:
		return wire.KindShortBuffer
	default:
		return wire.KindDecodeFailed
	}
}

// onIdleTimeout handles a read deadline expiring on addr's connection:
// it always synthesizes a CtosListenError, and
// reports whether the caller should keep reading (true) rather than
// tear the connection down — true only when an established Player has
// opted out via SetTimeoutExempt.
func (s *Server) onIdleTimeout(addr string) bool {
	s.bus.Synthesize(addr, wire.SRVPRUCtosListenError, wire.CtosListenError{
		ClientAddr: addr,
		Kind:       wire.KindTimeout,
		Detail:     fmt.Sprintf("no frame received within %s", s.cfg.IdleTimeout),
	})
	if player, ok := s.dir.getPlayer(addr); ok && player.isTimeoutExempt() {
		return true
	}
	s.onClientGone(addr)
	return false
}

// onClientGone tears down whatever state exists for addr when its
// connection drops, whether or not it ever became a full Player.
func (s *Server) onClientGone(addr string) {
	if track, ok := s.dir.getLifecycle(addr); ok {
		track.Write(&fsm.Event{Name: lifecycleEventDisconnect})
	}
	s.dir.deletePrecursor(addr)
	player, ok := s.dir.getPlayer(addr)
	if !ok {
		return
	}
	s.dir.deletePlayer(addr)
	s.dir.deleteRoomByClientAddr(addr)
	if room, ok := s.dir.getRoom(player.Room.OriginName); ok {
		room.removePlayer(player)
	}
	if conn := player.stealServerConn(); conn != nil {
		conn.Close()
	}
	s.bus.Synthesize(addr, wire.SRVPRUDestroyPlayer, wire.DestroyPlayer{ClientAddr: addr})
}

// findOrCreateRoom resolves the room named by a parsed password, spawning
// a new game-server process if it doesn't exist yet.
func (s *Server) findOrCreateRoom(clientAddr string, info hostinfo.HostInfo, name string) (*Room, error) {
	if room, ok := s.dir.getRoom(name); ok {
		return room, nil
	}
	if err := hostinfo.Validate(info); err != nil {
		return nil, err
	}

	room := newRoom(name, info, hostinfo.Render(info))
	s.dir.putRoom(room)

	ctx := context.Background()
	cmd, addr, stop, err := spawnRoomServer(ctx, s.cfg, s.logger, info)
	if err != nil {
		s.dir.deleteRoom(name)
		return nil, err
	}
	room.setEstablished(cmd, addr, stop)
	s.dir.putRoomByServerAddr(addr, room)

	seq := atomic.AddUint64(&s.roomSeq, 1)
	s.logger.Infow("room established", "room", name, "addr", addr, "seq", seq)
	s.bus.Synthesize(clientAddr, wire.SRVPRURoomCreated, wire.RoomCreated{RoomName: name, ServerAddr: addr})

	go s.watchRoomExit(room)
	return room, nil
}

// watchRoomExit waits for a room's spawned process to exit and
// synthesizes DestroyRoom exactly once, whether the process died on its
// own or markDeleted was called first by some other path.
func (s *Server) watchRoomExit(room *Room) {
	room.mu.Lock()
	cmd := room.cmd
	room.mu.Unlock()
	if cmd == nil {
		return
	}
	_ = cmd.Wait()
	s.bus.Synthesize(room.ServerAddr, wire.SRVPRUDestroyRoom, wire.DestroyRoom{RoomName: room.OriginName})
}

// watchRoomDrain gives a destroyed room's player list cfg.RoomDrainGrace
// to empty out, then logs a warning naming how many players still hold a
// reference — the lifecycle's leak guard: every strong reference to a
// dead room should be gone shortly after its teardown. It reports
// whether the list drained in time.
func (s *Server) watchRoomDrain(room *Room) bool {
	deadline := time.Now().Add(s.cfg.RoomDrainGrace)
	for {
		if room.playerCount() == 0 {
			return true
		}
		if !time.Now().Before(deadline) {
			s.logger.Warnw("destroyed room still has attached players", "room", room.OriginName, "players", room.playerCount())
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// dialRoomServer opens a fresh connection to a room's spawned process
// with a single dial attempt; it does not retry. Readiness is handled
// earlier, by spawnRoomServer's wait_start sleep and readiness probe.
func (s *Server) dialRoomServer(addr string) (net.Conn, error) {
	return net.Dial("tcp", addr)
}

// startServerReader launches the STOC-direction read loop for a newly
// created Player: every frame the room server sends back is run through
// the pipeline and forwarded to the client.
func (s *Server) startServerReader(player *Player) {
	go s.forwardSTOC(player)
}

// forwardSTOC mirrors handleClient for the opposite direction: it reads
// from the room server (via ServerReadConn, never stolen — see
// player.go) and forwards to the client, using
// stealClientConn/returnClientConn for the write half per the same
// cross-task handoff CTOS uses. It must not steal the server
// connection for the loop's lifetime: dispatchCTOS's flush needs to
// steal that same conn to write every forwarded CTOS frame, and a
// permanent steal here would starve it for as long as the player stays
// connected.
func (s *Server) forwardSTOC(player *Player) {
	conn := player.ServerReadConn()
	if conn == nil {
		return
	}

	buf := make([]byte, 0, wire.MaxFrameLength*2)
	read := make([]byte, 4096)

	for {
		n, err := conn.Read(read)
		if n > 0 {
			buf = append(buf, read[:n]...)
		}
		if err != nil {
			return
		}

		frames, consumed, decErr := wire.DecodeFrames(buf, wire.STOC)
		if decErr != nil {
			s.bus.Synthesize(player.Room.OriginName, wire.SRVPRUStocProcessError, wire.StocProcessError{
				RoomName: player.Room.OriginName,
				Kind:     classifyFrameError(decErr),
				Detail:   decErr.Error(),
			})
			return
		}
		buf = buf[consumed:]
		if len(frames) == 0 {
			continue
		}

		bundles := make([]*pipeline.Bundle, 0, len(frames))
		for _, f := range frames {
			b := pipeline.NewBundle(player.ClientAddr, wire.STOC, f)
			b.State[statePlayer] = player
			b.State[stateRoom] = player.Room
			if err := pipeline.RunBefore(s.registry, b); err != nil {
				s.logger.Warnw("before-handler error, forwarding frame unmodified", "room", player.Room.OriginName, "type", f.Type.String(), "error", err)
				b.Response.Verb = pipeline.PassThrough
			}
			bundles = append(bundles, b)
			pipeline.RunAfter(s.registry, b, func(err error) {
				s.logger.Warnw("after-handler error", "room", player.Room.OriginName, "type", f.Type.String(), "error", err)
			})
		}

		original := concatRaw(frames)
		out := pipeline.EncodeBatch(original, bundles)
		if len(out) == 0 {
			continue
		}
		clientConn := player.stealClientConn()
		if clientConn == nil {
			continue
		}
		_, writeErr := clientConn.Write(out)
		player.returnClientConn(clientConn)
		if writeErr != nil {
			s.logger.Warnw("writing to client failed", "addr", player.ClientAddr, "error", writeErr)
			return
		}
	}
}
