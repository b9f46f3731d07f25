package rcuhash

import (
	"sync"
	"sync/atomic"
)

// HashTable is the user-facing handle: it owns the current HashTableImpl
// under an atomic pointer, coordinates resize exclusion, and wraps every
// Insert, Remove and Lookup in an RCU read-section so the inner pointer
// can't be reclaimed mid-call. Clear, Stats and Len take no read section. Grounded on original_source/src/hash_table.h's
// HashTable, generalized with the resize protocol spec.md §4.5 specifies
// (the original's TryToResize was an empty stub).
//
// A HashTable must not be copied after first use.
type HashTable[K comparable, V any] struct {
	current atomic.Pointer[tableImpl[K, V]]

	// rcu protects the lifetime of the HashTableImpl pointed to by
	// current — not bucket contents, which is bucketRCU's job on each
	// tableImpl. This is RCU-L, the outer/global variant from spec.md
	// §4.2; bucketRCU is RCU-B, the per-bucket variant.
	rcu *EpochLock

	resizeMu            sync.Mutex
	pendingResizeTarget atomic.Int64 // -1 = none pending

	growThreshold int
	shrinkEnabled bool
	maxBuckets    int
	hasher        func(K) uint64

	count     atomic.Int64
	resizeGen atomic.Int64
}

// New creates a HashTable with the given initial bucket count. A count
// below 1 is raised to 1.
func New[K comparable, V any](bucketCount int, opts ...Option[K, V]) *HashTable[K, V] {
	if bucketCount < 1 {
		bucketCount = 1
	}
	c := newConfig[K, V]()
	for _, opt := range opts {
		opt(&c)
	}

	h := &HashTable[K, V]{
		rcu:           NewEpochLock(),
		growThreshold: c.growThreshold,
		shrinkEnabled: c.shrinkEnabled,
		maxBuckets:    c.maxBuckets,
		hasher:        c.hasher,
	}
	if h.hasher == nil {
		h.hasher = defaultHasher[K]()
	}
	h.pendingResizeTarget.Store(-1)
	h.current.Store(newTableImpl(h, bucketCount, 0))
	return h
}

// Insert adds key/value, returning false without modifying the table if
// key is already present (spec.md §6: updates are not supported — that's
// an explicit Non-goal; callers model updates as Remove then Insert).
func (h *HashTable[K, V]) Insert(key K, value V) bool {
	h.rcu.ReadLock()
	impl := h.current.Load()
	ok := impl.insert(key, value, h.hasher(key))
	h.rcu.ReadUnlock()

	if ok {
		h.count.Add(1)
	}
	h.maybeResize()
	return ok
}

// Remove deletes key, returning false if it was absent.
func (h *HashTable[K, V]) Remove(key K) bool {
	h.rcu.ReadLock()
	impl := h.current.Load()
	bucketCount := len(impl.buckets)
	ok := impl.remove(key, h.hasher(key))
	h.rcu.ReadUnlock()

	if ok {
		n := h.count.Add(-1)
		if h.shrinkEnabled && h.growThreshold*bucketCount >= 2*int(n) && bucketCount > 1 {
			h.proposeResize(bucketCount/2 + 1)
		}
	}
	h.maybeResize()
	return ok
}

// Lookup returns a copy of the value stored for key, or false if absent.
// Lookup never triggers a resize itself (spec.md §4.6).
func (h *HashTable[K, V]) Lookup(key K) (V, bool) {
	h.rcu.ReadLock()
	defer h.rcu.ReadUnlock()
	impl := h.current.Load()
	return impl.lookup(key, h.hasher(key))
}

// Clear empties the table back to its current bucket count, in place.
// Per spec.md §9's open question on clearing under concurrency, this
// implementation quiesces readers via rcu.Synchronize rather than
// documenting Clear as single-threaded-only: any Lookup/Insert/Remove
// that loaded the old impl before the swap finishes against that impl
// undisturbed, and Synchronize blocks Clear's return until they have.
func (h *HashTable[K, V]) Clear() {
	h.resizeMu.Lock()
	defer h.resizeMu.Unlock()

	old := h.current.Load()
	fresh := newTableImpl(h, len(old.buckets), 0)
	h.current.Store(fresh)
	h.rcu.Synchronize()

	h.pendingResizeTarget.Store(-1)
	h.count.Store(0)
}

// proposeResize is the only way a resize is ever requested (spec.md
// §4.5): whoever first notices the table needs to grow or shrink CASes
// the target bucket count in; it does not perform the migration itself.
func (h *HashTable[K, V]) proposeResize(target int) {
	h.pendingResizeTarget.CompareAndSwap(-1, int64(target))
}

// maybeResize is called at the end of every Insert and Remove, whether or
// not it succeeded. If
// a resize is pending, it tries to become the resize coordinator via
// TryLock; if another goroutine already holds resizeMu, it simply returns
// — resize runs cooperatively, never blocking writers that didn't
// volunteer for it (spec.md §4.5 "Kickoff").
func (h *HashTable[K, V]) maybeResize() {
	if h.pendingResizeTarget.Load() == -1 {
		return
	}
	if !h.resizeMu.TryLock() {
		return
	}
	defer h.resizeMu.Unlock()

	target := h.pendingResizeTarget.Load()
	if target == -1 {
		return // another goroutine already finished this resize
	}
	if h.maxBuckets > 0 && target > int64(h.maxBuckets) {
		target = int64(h.maxBuckets)
	}
	if target < 1 {
		target = 1
	}

	current := h.current.Load()
	if target == int64(len(current.buckets)) {
		h.pendingResizeTarget.Store(-1)
		return
	}

	successor := current.migrate(int(target))

	h.current.Store(successor) // step 4: swap
	h.rcu.Synchronize()        // step 4: drain readers of the old impl
	h.resizeGen.Add(1)

	h.pendingResizeTarget.Store(-1) // step 5
}
