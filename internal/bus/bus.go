// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package bus is the internal synthetic-event bus: it lets lifecycle
// transitions (room created, player destroyed, ...) and plugin-to-plugin
// signals traverse the exact same handler-dispatch pipeline a wire frame
// does.
package bus

import (
	mb "github.com/vardius/message-bus"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IamIpanda/srvpru/internal/pipeline"
	"github.com/IamIpanda/srvpru/internal/registry"
	"github.com/IamIpanda/srvpru/internal/wire"
)

// Bus owns a vardius/message-bus instance for plain topic pub/sub and
// layers synthetic pipeline dispatch on top of it for SRVPRU-direction
// messages.
type Bus struct {
	mb     mb.MessageBus
	reg    *registry.Registry
	logger *zap.SugaredLogger
}

// New builds a Bus with a topic queue of the given size per subscriber.
func New(size int, reg *registry.Registry, logger *zap.SugaredLogger) *Bus {
	return &Bus{mb: mb.New(size), reg: reg, logger: logger}
}

// Subscribe registers fn against topic on the underlying message bus, for
// plugin code that wants plain pub/sub rather than pipeline dispatch.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.mb.Subscribe(topic, fn)
}

// PublishTopic publishes args to topic on the underlying message bus.
func (b *Bus) PublishTopic(topic string, args ...interface{}) {
	b.mb.Publish(topic, args...)
}

// Synthesize stamps payload with a correlation id and runs it through the
// handler pipeline as a SRVPRU-direction message, exactly as a decoded
// wire frame would be: Before-handlers run synchronously (their
// forwarding decision is meaningless here and discarded), then
// After-handlers run detached for side effects. addr identifies the
// player/room the event concerns, for handlers that need to look one up.
func (b *Bus) Synthesize(addr string, t wire.MessageType, payload interface{}) {
	bundle := pipeline.NewSynthetic(addr, t, payload)
	bundle.State["correlation_id"] = uuid.New().String()

	if err := pipeline.RunBefore(b.reg, bundle); err != nil {
		b.logger.Errorw("synthetic event handler failed", "type", t.String(), "addr", addr, "error", err)
	}
	pipeline.RunAfter(b.reg, bundle, func(err error) {
		b.logger.Errorw("synthetic event after-handler failed", "type", t.String(), "addr", addr, "error", err)
	})
}
