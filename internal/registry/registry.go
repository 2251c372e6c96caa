// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

// Package registry is the handler registry: a sealed, priority-ordered
// lookup from (Occasion, MessageType) to the handlers that run for it.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/IamIpanda/srvpru/internal/wire"
)

// Occasion selects whether a handler runs before the pipeline decides how
// to forward a message, or after the decision has already been acted on.
type Occasion int

const (
	// Before handlers run synchronously, in priority order, and may
	// short-circuit the rest of the pipeline for this message.
	Before Occasion = iota
	// After handlers run once the message has already been forwarded (or
	// dropped); they cannot affect that outcome and run detached from the
	// caller.
	After
)

func (o Occasion) String() string {
	if o == After {
		return "after"
	}
	return "before"
}

type key struct {
	Occasion Occasion
	Type     wire.MessageType
}

// Handler is the type every registered callback must satisfy. fn receives
// a *pipeline.Bundle in practice; it is declared as interface{} here to
// avoid registry depending on pipeline (pipeline depends on registry, not
// the other way around).
type Handler func(bundle interface{}) (cont bool, err error)

// Registered pairs a Handler with the metadata the registry sorts and
// reports on.
type Registered struct {
	Name     string
	Priority int
	Handler  Handler
}

// Registry accumulates handler registrations (Add) and, once sealed
// (Seal), resolves a fast, stable-sorted slice per (Occasion, MessageType)
// including the AnyMessage fan-out.
type Registry struct {
	mu       sync.Mutex
	sealed   bool
	staged   map[key][]Registered
	resolved map[key][]Registered
}

// New returns an empty, unsealed Registry.
func New() *Registry {
	return &Registry{staged: make(map[key][]Registered)}
}

// Add registers a handler for (occ, t). Panics if called after Seal:
// every handler must be registered during startup wiring, and the sealed
// lookup maps are built exactly once.
func (r *Registry) Add(occ Occasion, t wire.MessageType, name string, priority int, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic("registry: Add called after Seal")
	}
	k := key{Occasion: occ, Type: t}
	r.staged[k] = append(r.staged[k], Registered{Name: name, Priority: priority, Handler: h})
}

// Seal freezes the registry: every (Occasion, MessageType) handler list is
// sorted by priority (ascending; lower numbers run first) with ties
// broken by insertion order, and the AnyMessage group is prepended ahead
// of the type-specific group for the same Occasion. Seal is idempotent
// but must be called exactly once before Handlers is used concurrently.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return
	}
	resolved := make(map[key][]Registered, len(r.staged))
	for k, list := range r.staged {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority < list[j].Priority })
		resolved[k] = list
	}
	for k := range resolved {
		if k.Type == wire.AnyMessage {
			continue
		}
		anyKey := key{Occasion: k.Occasion, Type: wire.AnyMessage}
		any := resolved[anyKey]
		if len(any) == 0 {
			continue
		}
		combined := make([]Registered, 0, len(any)+len(resolved[k]))
		combined = append(combined, any...)
		combined = append(combined, resolved[k]...)
		resolved[k] = combined
	}
	r.resolved = resolved
	r.staged = nil
	r.sealed = true
}

// Handlers returns the sealed, ordered handler list for (occ, t). Calling
// it before Seal returns an error, enforcing registration-before-use. A
// type that never had its own registrations still gets the AnyMessage
// group: Seal only merges Any into types it actually saw staged, so a
// type nobody registered against directly would otherwise look sealed-empty
// and silently skip every AnyMessage handler.
func (r *Registry) Handlers(occ Occasion, t wire.MessageType) ([]Registered, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		return nil, fmt.Errorf("registry: Handlers called before Seal")
	}
	if list, ok := r.resolved[key{Occasion: occ, Type: t}]; ok {
		return list, nil
	}
	if t == wire.AnyMessage {
		return nil, nil
	}
	return r.resolved[key{Occasion: occ, Type: wire.AnyMessage}], nil
}

// Sealed reports whether Seal has run.
func (r *Registry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}
