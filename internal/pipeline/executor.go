// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"github.com/IamIpanda/srvpru/internal/registry"
)

// RunBefore runs the Before-handler group for b.Type — already merged
// with the AnyMessage group ahead of it by registry.Seal — sequentially
// in priority order, stopping as soon as a handler sets
// b.Response.Continue to false. The handler error returned, if any, is
// also stashed on b.Response.Err.
func RunBefore(reg *registry.Registry, b *Bundle) error {
	handlers, err := reg.Handlers(registry.Before, b.Type)
	if err != nil {
		return err
	}
	for _, h := range handlers {
		cont, err := h.Handler(b)
		if err != nil {
			b.Response.Err = err
			return err
		}
		if !cont {
			b.Response.Continue = false
			break
		}
	}
	return nil
}

// RunAfter spawns a detached goroutine running b's After-handler group
// (any-then-specific, already merged by Seal) on a forked bundle whose
// Response is discarded; onErr, if non-nil, is invoked with any handler
// error instead of silently dropping it.
func RunAfter(reg *registry.Registry, b *Bundle, onErr func(error)) {
	fork := b.fork()
	go func() {
		handlers, err := reg.Handlers(registry.After, fork.Type)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		for _, h := range handlers {
			if _, err := h.Handler(fork); err != nil && onErr != nil {
				onErr(err)
			}
		}
	}()
}
