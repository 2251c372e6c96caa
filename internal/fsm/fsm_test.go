// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package fsm_test

import (
	"errors"

	"github.com/IamIpanda/srvpru/internal/fsm"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("FSM", func() {
	Context("a simple two-state machine", func() {
		It("transitions and records history", func() {
			var entered []string
			trs := []*fsm.Transition{
				fsm.WhenIn("A").GotEvent("go").GoTo("B"),
			}
			cbs := []*fsm.Callback{
				fsm.AfterEnter("B").Do(func(e *fsm.Event) error {
					entered = append(entered, "B")
					return nil
				}),
			}
			f, err := fsm.New("A", trs, cbs)
			Expect(err).NotTo(HaveOccurred())

			errCh := make(chan error, 1)
			go f.Run(errCh)
			f.Write(&fsm.Event{Name: "go"})
			Eventually(func() string { return f.Current() }).Should(Equal("B"))
			Eventually(func() []string { return entered }).Should(Equal([]string{"B"}))
			Expect(f.History().States()).To(Equal([]string{"A", "B"}))
			f.Stop()
		})

		It("rejects an unregistered event and reports it on the error channel", func() {
			f, err := fsm.New("A", nil, nil)
			Expect(err).NotTo(HaveOccurred())
			errCh := make(chan error, 1)
			go f.Run(errCh)
			f.Write(&fsm.Event{Name: "nope"})
			Eventually(errCh).Should(Receive(MatchError(ContainSubstring("unregistered event"))))
			Eventually(func() string { return f.Current() }).Should(Equal(fsm.Stopped))
		})

		It("falls back to a wildcard transition", func() {
			trs := []*fsm.Transition{
				fsm.WhenInAnyState().GotEvent("die").GoTo("Dead"),
			}
			f, err := fsm.New("Anything", trs, nil)
			Expect(err).NotTo(HaveOccurred())
			errCh := make(chan error, 1)
			go f.Run(errCh)
			f.Write(&fsm.Event{Name: "die"})
			Eventually(func() string { return f.Current() }).Should(Equal("Dead"))
			f.Stop()
		})

		It("halts when a callback errors", func() {
			trs := []*fsm.Transition{
				fsm.WhenIn("A").GotEvent("go").GoTo("B"),
			}
			cbs := []*fsm.Callback{
				fsm.AfterEnter("B").Do(func(e *fsm.Event) error {
					return errors.New("boom")
				}),
			}
			f, err := fsm.New("A", trs, cbs)
			Expect(err).NotTo(HaveOccurred())
			errCh := make(chan error, 1)
			go f.Run(errCh)
			f.Write(&fsm.Event{Name: "go"})
			Eventually(errCh).Should(Receive(MatchError("boom")))
			Eventually(func() string { return f.Current() }).Should(Equal(fsm.Stopped))
		})
	})
})
