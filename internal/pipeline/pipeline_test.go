// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package pipeline_test

import (
	"errors"

	"github.com/IamIpanda/srvpru/internal/pipeline"
	"github.com/IamIpanda/srvpru/internal/registry"
	"github.com/IamIpanda/srvpru/internal/wire"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func bundleFor(t wire.MessageType, body []byte) *pipeline.Bundle {
	return pipeline.NewBundle("127.0.0.1:1000", wire.CTOS, wire.Frame{
		Opcode: 22, Type: t, Body: body, Raw: append([]byte{0, 0, 22}, body...),
	})
}

var _ = Describe("pipeline executor", func() {
	It("runs before-handlers in priority order and stops on short-circuit", func() {
		reg := registry.New()
		var order []string
		reg.Add(registry.Before, wire.CTOSChat, "low-prio", 10, func(raw interface{}) (bool, error) {
			order = append(order, "low-prio")
			return true, nil
		})
		reg.Add(registry.Before, wire.CTOSChat, "high-prio-stops", 1, func(raw interface{}) (bool, error) {
			order = append(order, "high-prio-stops")
			b := raw.(*pipeline.Bundle)
			b.Response.Continue = false
			return false, nil
		})
		reg.Seal()

		b := bundleFor(wire.CTOSChat, []byte("hi"))
		err := pipeline.RunBefore(reg, b)
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{"high-prio-stops"}))
		Expect(b.Response.Continue).To(BeFalse())
	})

	It("decodes the body lazily and memoizes it", func() {
		reg := registry.New()
		calls := 0
		reg.Add(registry.Before, wire.CTOSChat, "decode-twice", 0, func(raw interface{}) (bool, error) {
			b := raw.(*pipeline.Bundle)
			b.Decode()
			b.Decode()
			calls++
			return true, nil
		})
		reg.Seal()

		encoded := wire.CTOSChatMsg{Text: "gg"}.Encode()
		b := bundleFor(wire.CTOSChat, encoded)
		Expect(pipeline.RunBefore(reg, b)).To(Succeed())
		decoded, err := b.Decode()
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.(wire.CTOSChatMsg).Text).To(Equal("gg"))
		Expect(calls).To(Equal(1))
	})

	It("surfaces a handler error and stops the chain", func() {
		reg := registry.New()
		boom := errors.New("boom")
		ran := false
		reg.Add(registry.Before, wire.CTOSChat, "fails", 0, func(raw interface{}) (bool, error) {
			return false, boom
		})
		reg.Add(registry.Before, wire.CTOSChat, "never-runs", 1, func(raw interface{}) (bool, error) {
			ran = true
			return true, nil
		})
		reg.Seal()

		b := bundleFor(wire.CTOSChat, []byte("x"))
		err := pipeline.RunBefore(reg, b)
		Expect(err).To(MatchError(boom))
		Expect(ran).To(BeFalse())
	})

	It("runs after-handlers detached and discards their response", func() {
		reg := registry.New()
		done := make(chan struct{}, 1)
		reg.Add(registry.After, wire.CTOSChat, "side-effect", 0, func(raw interface{}) (bool, error) {
			b := raw.(*pipeline.Bundle)
			b.Response.Verb = pipeline.Drop
			done <- struct{}{}
			return true, nil
		})
		reg.Seal()

		b := bundleFor(wire.CTOSChat, []byte("x"))
		b.Response.Verb = pipeline.PassThrough
		pipeline.RunAfter(reg, b, nil)
		Eventually(done).Should(Receive())
		Expect(b.Response.Verb).To(Equal(pipeline.PassThrough))
	})

	Describe("forwarding verbs", func() {
		It("passes through unchanged bytes on the fast path", func() {
			b := bundleFor(wire.CTOSChat, []byte("hi"))
			b.Response.Verb = pipeline.PassThrough
			Expect(b.Frame()).To(Equal(b.Raw))
		})

		It("re-serializes a rewritten body under its own opcode", func() {
			b := bundleFor(wire.CTOSChat, []byte("hi"))
			b.Response.Verb = pipeline.Rewrite
			b.Response.RewriteOpcode = 22
			b.Response.RewriteBody = wire.CTOSChatMsg{Text: "bye"}
			Expect(b.Frame()).To(Equal(wire.Encode(22, wire.CTOSChatMsg{Text: "bye"})))
		})

		It("drops a suppressed frame", func() {
			b := bundleFor(wire.CTOSChat, []byte("hi"))
			b.Response.Verb = pipeline.Drop
			Expect(b.Frame()).To(BeNil())
		})

		It("writes the original buffer unchanged when every frame passes through", func() {
			original := []byte{1, 2, 3, 4}
			a := bundleFor(wire.CTOSChat, []byte("a"))
			b := bundleFor(wire.CTOSChat, []byte("b"))
			a.Response.Verb, b.Response.Verb = pipeline.PassThrough, pipeline.PassThrough
			Expect(pipeline.EncodeBatch(original, []*pipeline.Bundle{a, b})).To(Equal(original))
		})

		It("writes each frame individually, preserving order, when any frame differs", func() {
			original := []byte{1, 2, 3, 4}
			a := bundleFor(wire.CTOSChat, []byte("a"))
			drop := bundleFor(wire.CTOSChat, []byte("b"))
			a.Response.Verb = pipeline.PassThrough
			drop.Response.Verb = pipeline.Drop
			got := pipeline.EncodeBatch(original, []*pipeline.Bundle{a, drop})
			Expect(got).To(Equal(a.Raw))
		})
	})
})
