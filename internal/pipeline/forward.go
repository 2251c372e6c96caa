// Copyright (c) 2022 - for information on the respective copyright owner
// see the NOTICE file and/or the repository https://github.com/IamIpanda/srvpru.
//
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "github.com/IamIpanda/srvpru/internal/wire"

// Frame translates b's final Response into the bytes that should reach
// the peer for this one frame: PassThrough forwards Raw untouched (no
// re-serialization), Rewrite re-encodes RewriteBody under RewriteOpcode,
// Drop yields nothing.
func (b *Bundle) Frame() []byte {
	switch b.Response.Verb {
	case Drop:
		return nil
	case Rewrite:
		return wire.Encode(b.Response.RewriteOpcode, b.Response.RewriteBody)
	default:
		return b.Raw
	}
}

// EncodeBatch keeps an all-pass-through batch a single write: if every
// bundle in the batch produced PassThrough, original is returned
// unchanged and the caller should issue one write of it. Otherwise each
// bundle's own Frame() bytes are concatenated in original order, and
// Dropped frames contribute nothing.
func EncodeBatch(original []byte, bundles []*Bundle) []byte {
	allPassThrough := true
	for _, b := range bundles {
		if b.Response.Verb != PassThrough {
			allPassThrough = false
			break
		}
	}
	if allPassThrough {
		return original
	}
	out := make([]byte, 0, len(original))
	for _, b := range bundles {
		out = append(out, b.Frame()...)
	}
	return out
}
