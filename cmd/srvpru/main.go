// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Command srvpru is the intercepting proxy's entrypoint: it loads a JSON
// config file, wires the core lifecycle handlers, and serves game clients
// until interrupted.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/IamIpanda/srvpru/internal/bus"
	"github.com/IamIpanda/srvpru/internal/config"
	"github.com/IamIpanda/srvpru/internal/hostinfo"
	"github.com/IamIpanda/srvpru/internal/log"
	"github.com/IamIpanda/srvpru/internal/proxy"
	"github.com/IamIpanda/srvpru/internal/registry"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "/etc/srvpru/config.json", "path to the JSON config file")
		listenAddr  = pflag.StringP("listen", "l", "", "override the config file's listenAddress")
		production  = pflag.Bool("production", false, "use the JSON production logger instead of the console development logger")
		enablePprof = pflag.Bool("pprof", false, "serve pprof profiles and the cmd/srvpru-monitor snapshot endpoint")
		debugAddr   = pflag.String("debug-addr", "127.0.0.1:6060", "address for --pprof's HTTP server")
	)
	pflag.Parse()

	logger, err := newLogger(*production)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(*configPath, *listenAddr, *debugAddr, *enablePprof, logger); err != nil {
		logger.Fatalw("srvpru exited", "error", err)
	}
}

func newLogger(production bool) (*zap.SugaredLogger, error) {
	if production {
		return log.NewProduction()
	}
	return log.NewDevelopment()
}

func run(configPath, listenOverride, debugAddr string, enablePprof bool, logger *zap.SugaredLogger) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listenOverride != "" {
		conf.ListenAddress = listenOverride
	}
	typed, err := config.Typed(conf)
	if err != nil {
		return fmt.Errorf("applying config defaults: %w", err)
	}
	hostinfo.FirstTCGLFList = typed.FirstTCGLFList
	logger.Debugw("starting with config", "config", typed)

	reg := registry.New()
	s := proxy.NewServer(typed, logger, reg, bus.New(typed.BusSize, reg, logger))
	s.RegisterCoreHandlers()
	reg.Seal()

	if enablePprof {
		go serveDebug(debugAddr, s, logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return s.ListenAndServe(ctx)
}

// snapshot is the JSON body cmd/srvpru-monitor polls from /debug/snapshot.
type snapshot struct {
	Rooms       []proxy.RoomSnapshot       `json:"rooms"`
	Players     []proxy.PlayerSnapshot     `json:"players"`
	Connections []proxy.ConnectionSnapshot `json:"connections"`
}

// serveDebug runs pprof's standard handlers alongside a JSON snapshot
// endpoint on its own mux, never the DefaultServeMux, so enabling --pprof
// never exposes anything a caller didn't ask for.
func serveDebug(addr string, s *proxy.Server, logger *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/snapshot", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(snapshot{
			Rooms:       s.SnapshotRooms(),
			Players:     s.SnapshotPlayers(),
			Connections: s.SnapshotConnections(),
		})
	})
	logger.Infow("debug endpoint listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warnw("debug endpoint stopped", "error", err)
	}
}
