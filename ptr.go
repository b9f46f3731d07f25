package rcuhash

import "sync/atomic"

// ptr is a typed atomic pointer with an explicit distinction between a
// plain store (used once, before a node is published, to set up its own
// next pointer — spec.md §4.3's "plain store — not yet published") and a
// publishing store (an atomic store with release semantics, used for
// every pointer mutation that a reader might observe concurrently).
// Go's atomic.Pointer provides release/acquire ordering on every
// load/store, so storePlain exists only to make the publish/no-publish
// distinction legible at each call site, not to weaken the ordering.
type ptr[T any] struct {
	v atomic.Pointer[T]
}

func (p *ptr[T]) load() *T { return p.v.Load() }

func (p *ptr[T]) store(val *T) { p.v.Store(val) }

func (p *ptr[T]) storePlain(val *T) { p.v.Store(val) }
