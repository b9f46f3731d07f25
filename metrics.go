package rcuhash

// Stats is a point-in-time, racy snapshot of a HashTable's bookkeeping.
// It exists for tests and observability; nothing in the core reads a
// Stats value back to make a concurrency decision.
//
// Supplements spec.md: the original's HashTable tracked a resize_count_
// field (original_source/src/hash_table.h) that was never surfaced to
// callers. This exposes the equivalent as ResizeGeneration, plus the
// current bucket count and an approximate live-element count, using only
// counters the core already maintains for its own invariant-4 bookkeeping
// (spec.md §8).
type Stats struct {
	Buckets         int
	ApproxLen       int64
	ResizeGeneration int64
	ResizeInFlight  bool
}

// Stats returns a snapshot of h's current bookkeeping.
func (h *HashTable[K, V]) Stats() Stats {
	impl := h.current.Load()
	return Stats{
		Buckets:          len(impl.buckets),
		ApproxLen:        h.count.Load(),
		ResizeGeneration: h.resizeGen.Load(),
		ResizeInFlight:   impl.successor.Load() != nil,
	}
}

// Len returns the approximate number of key/value pairs currently stored.
// It is maintained as a simple atomic counter alongside every successful
// Insert/Remove rather than by traversing buckets, so it is O(1) but can
// be briefly stale relative to a concurrent writer that hasn't updated it
// yet.
func (h *HashTable[K, V]) Len() int {
	return int(h.count.Load())
}

// keys walks every bucket of the live impl and returns every key
// currently reachable from a sentinel. Iteration order is unspecified
// (spec.md §1 Non-goals rule out an order guarantee) and a concurrent
// writer can make the result stale the instant it's returned; this exists
// for the stress suite's post-quiescence reachability checks (spec.md §8
// invariants 4/5), not as part of the public contract.
func (h *HashTable[K, V]) keys() []K {
	impl := h.current.Load()
	var out []K
	for i := range impl.buckets {
		b := &impl.buckets[i]
		b.mu.Lock()
		for n := b.head.next[impl.snapshot].load(); n != nil; n = n.next[impl.snapshot].load() {
			out = append(out, n.key)
		}
		b.mu.Unlock()
	}
	return out
}
