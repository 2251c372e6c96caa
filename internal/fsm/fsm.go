// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package fsm is a small finite-state machine used to track a client
// connection through its RawStream -> Precursor -> Player -> Destroyed
// lifecycle (see internal/proxy): callbacks and transitions are sealed
// into lookup maps at construction, a FIFO event queue is drained by a
// single Run goroutine, and before/after callbacks fire per destination
// state. Event payloads are a plain interface{}; the machine knows
// nothing about any wire format.
package fsm

import (
	"errors"
	"fmt"
	"sync"
)

// Stopped is the terminal pseudo-state set once the FSM has ended, either
// by Stop() or by a callback returning an error.
const Stopped = "_Stopped"

// Event is a single input consumed by the FSM.
type Event struct {
	Name string
	Data interface{}
}

// TransitionID pairs a source state with the event that fires from it.
type TransitionID struct {
	Source, Event string
}

// Transition describes a single state change.
type Transition struct {
	id       TransitionID
	Src, Dst string
	Event    string
}

// WhenIn starts building a transition from a concrete source state.
func WhenIn(state string) *Transition {
	return &Transition{Src: state}
}

// WhenInAnyState starts building a transition that matches any source
// state not otherwise matched by a more specific transition.
func WhenInAnyState() *Transition {
	return &Transition{Src: "*"}
}

// GotEvent names the triggering event.
func (t *Transition) GotEvent(event string) *Transition {
	t.Event = event
	t.id = TransitionID{Source: t.Src, Event: event}
	return t
}

// GoTo names the destination state.
func (t *Transition) GoTo(dst string) *Transition {
	t.Dst = dst
	return t
}

// CallbackType selects when a Callback runs relative to a state entry.
type CallbackType int

const (
	// CallbackBeforeEnter runs just before the FSM records the new state.
	CallbackBeforeEnter CallbackType = iota
	// CallbackAfterEnter runs just after the FSM records the new state.
	CallbackAfterEnter
)

// Action is user code executed by a Callback.
type Action func(*Event) error

// Callback binds an Action to a state and a CallbackType.
type Callback struct {
	Type   CallbackType
	State  string
	Action Action
}

// BeforeEnter declares a callback that runs before entering state.
func BeforeEnter(state string) *Callback {
	return &Callback{Type: CallbackBeforeEnter, State: state}
}

// AfterEnter declares a callback that runs after entering state.
func AfterEnter(state string) *Callback {
	return &Callback{Type: CallbackAfterEnter, State: state}
}

// Do attaches the Action to run.
func (c *Callback) Do(a Action) *Callback {
	c.Action = a
	return c
}

// History records every event consumed and every state entered, in order.
type History struct {
	mu     sync.Mutex
	events []*Event
	states []string
}

func newHistory(initial string) *History {
	return &History{states: []string{initial}}
}

func (h *History) addEvent(e *Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *History) addState(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, s)
}

// Events returns every event consumed so far.
func (h *History) Events() []*Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Event(nil), h.events...)
}

// States returns every state entered so far, including the initial one.
func (h *History) States() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.states...)
}

// New builds an FSM in initState, with the given transitions and
// callbacks. Registration must be complete before New is called: there is
// no sealing step separate from construction, the lookup maps are built
// once, up front.
func New(initState string, transitions []*Transition, callbacks []*Callback) (*FSM, error) {
	trs := make(map[TransitionID]*Transition, len(transitions))
	for _, t := range transitions {
		trs[t.id] = t
	}
	before := map[string][]*Callback{}
	after := map[string][]*Callback{}
	for _, c := range callbacks {
		switch c.Type {
		case CallbackBeforeEnter:
			before[c.State] = append(before[c.State], c)
		case CallbackAfterEnter:
			after[c.State] = append(after[c.State], c)
		default:
			return nil, errors.New("fsm: unsupported callback type")
		}
	}
	return &FSM{
		current:     initState,
		history:     newHistory(initState),
		transitions: trs,
		before:      before,
		after:       after,
		pingCh:      make(chan struct{}, 1),
		doneCh:      make(chan struct{}, 1),
	}, nil
}

// FSM is a finite state machine driven by a single-writer FIFO queue.
type FSM struct {
	mu          sync.Mutex
	current     string
	history     *History
	transitions map[TransitionID]*Transition
	before      map[string][]*Callback
	after       map[string][]*Callback
	queue       []*Event
	pingCh      chan struct{}
	doneCh      chan struct{}
}

// Current returns the current state.
func (f *FSM) Current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// History returns the FSM's event/state history.
func (f *FSM) History() *History {
	return f.history
}

// Write enqueues an event and wakes the Run loop.
func (f *FSM) Write(e *Event) {
	f.mu.Lock()
	f.queue = append(f.queue, e)
	f.mu.Unlock()
	select {
	case f.pingCh <- struct{}{}:
	default:
	}
}

// Stop ends the Run loop. Safe to call at most once.
func (f *FSM) Stop() {
	select {
	case f.doneCh <- struct{}{}:
	default:
	}
}

// Run drains the event queue until Stop is called or a callback returns an
// error, in which case the error is sent on errCh and the FSM halts in the
// Stopped state.
func (f *FSM) Run(errCh chan<- error) {
	for {
		select {
		case <-f.pingCh:
			for {
				ev, ok := f.pop()
				if !ok {
					break
				}
				if err := f.process(ev); err != nil {
					f.mu.Lock()
					f.current = Stopped
					f.mu.Unlock()
					if errCh != nil {
						errCh <- err
					}
					return
				}
			}
		case <-f.doneCh:
			f.mu.Lock()
			f.current = Stopped
			f.mu.Unlock()
			return
		}
	}
}

func (f *FSM) pop() (*Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return nil, false
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	return ev, true
}

func (f *FSM) process(event *Event) error {
	f.history.addEvent(event)
	f.mu.Lock()
	current := f.current
	f.mu.Unlock()

	id := TransitionID{Source: current, Event: event.Name}
	tr, ok := f.transitions[id]
	if !ok {
		id = TransitionID{Source: "*", Event: event.Name}
		tr, ok = f.transitions[id]
		if !ok {
			return fmt.Errorf("fsm: unregistered event %q in state %q", event.Name, current)
		}
	}
	return f.transitionTo(tr.Dst, event)
}

func (f *FSM) transitionTo(dst string, event *Event) error {
	if err := f.runCallbacks(f.before, dst, event); err != nil {
		return err
	}
	f.mu.Lock()
	f.current = dst
	f.mu.Unlock()
	f.history.addState(dst)
	return f.runCallbacks(f.after, dst, event)
}

func (f *FSM) runCallbacks(set map[string][]*Callback, state string, event *Event) error {
	for _, cb := range set[state] {
		if err := cb.Action(event); err != nil {
			return err
		}
	}
	return nil
}
