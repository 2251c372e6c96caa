// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package bus_test

import (
	"go.uber.org/zap"

	"github.com/IamIpanda/srvpru/internal/bus"
	"github.com/IamIpanda/srvpru/internal/pipeline"
	"github.com/IamIpanda/srvpru/internal/registry"
	"github.com/IamIpanda/srvpru/internal/wire"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bus", func() {
	It("dispatches a synthesized event through the pipeline", func() {
		reg := registry.New()
		seen := make(chan wire.RoomCreated, 1)
		reg.Add(registry.Before, wire.SRVPRURoomCreated, "record", 0, func(raw interface{}) (bool, error) {
			b := raw.(*pipeline.Bundle)
			payload, err := b.Decode()
			Expect(err).NotTo(HaveOccurred())
			seen <- payload.(wire.RoomCreated)
			return true, nil
		})
		reg.Seal()

		b := bus.New(8, reg, zap.NewNop().Sugar())
		b.Synthesize("room-1", wire.SRVPRURoomCreated, wire.RoomCreated{RoomName: "room-1", ServerAddr: "127.0.0.1:9001"})

		Eventually(seen).Should(Receive(Equal(wire.RoomCreated{RoomName: "room-1", ServerAddr: "127.0.0.1:9001"})))
	})

	It("still supports plain topic pub/sub for plugin-to-plugin signaling", func() {
		reg := registry.New()
		reg.Seal()
		b := bus.New(8, reg, zap.NewNop().Sugar())

		received := make(chan string, 1)
		Expect(b.Subscribe("plugin.topic", func(msg string) { received <- msg })).To(Succeed())
		b.PublishTopic("plugin.topic", "hello")

		Eventually(received).Should(Receive(Equal("hello")))
	})
})
