package rcuhash

import "sync/atomic"

// tableImpl is one snapshot of the table: a fixed-size vector of buckets,
// a snapshot index, a hash function (inherited from owner), a possible
// successor (set exactly once, under owner.resizeMu, when a resize
// begins), a resize frontier, and a back-reference to the outer
// HashTable. Grounded on original_source/src/hash_table.h's HashTable
// (the template there conflates "impl" and "outer handle"; spec.md §3
// splits them, which this module follows).
type tableImpl[K comparable, V any] struct {
	owner   *HashTable[K, V]
	buckets []bucket[K, V]

	// snapshot selects which of each node's two next-pointer slots
	// belongs to this table's chains. Fixed for the impl's lifetime.
	snapshot int

	successor atomic.Pointer[tableImpl[K, V]]

	// resizeIndex is the highest bucket index already fully migrated to
	// successor, -1 before a resize starts. Per spec.md §3 this means
	// "already migrated", not "currently migrating" — see migrate for
	// why that distinction matters.
	resizeIndex atomic.Int32

	// bucketRCU protects the node lifetime of every bucket in this
	// table generation (RCU-B, spec.md §4.2). One instance per
	// generation, shared across all of its buckets and indexed by
	// bucket id, rather than one EpochLock per bucket — that's exactly
	// the "finer-grained variant" spec.md §4.4 references.
	bucketRCU *BucketEpochLock
}

func newTableImpl[K comparable, V any](owner *HashTable[K, V], bucketCount, snapshot int) *tableImpl[K, V] {
	t := &tableImpl[K, V]{
		owner:     owner,
		buckets:   make([]bucket[K, V], bucketCount),
		snapshot:  snapshot,
		bucketRCU: NewBucketEpochLock(),
	}
	t.resizeIndex.Store(-1)
	for i := range t.buckets {
		t.buckets[i].impl = t
		t.buckets[i].index = i
	}
	return t
}

func (t *tableImpl[K, V]) bucketFor(hash uint64) (*bucket[K, V], int) {
	idx := int(hash % uint64(len(t.buckets)))
	return &t.buckets[idx], idx
}

// lockedBucket resolves key's hash to the bucket that should currently
// serve a write, acquires its mutex, and re-validates the choice: the
// migration frontier can advance between resolving and locking, in which
// case the bucket we just locked is being (or has just been) drained out
// from under us and we must retry against the new routing decision. This
// is the same optimistic-then-revalidate-under-lock shape as the
// teacher's processEntry double-check (mapof.go), adapted from "did the
// table pointer change" to "did the resize frontier pass us".
func (t *tableImpl[K, V]) lockedBucket(hash uint64) (*bucket[K, V], int) {
	for {
		b, s := t.resolve(hash)
		b.mu.Lock()
		if cur, curS := t.resolve(hash); cur == b && curS == s {
			return b, s
		}
		b.mu.Unlock()
	}
}

// resolve picks the bucket + snapshot index that should currently serve
// hash, following the migration frontier (spec.md §4.5): buckets not yet
// migrated stay on this table, migrated ones route to the successor.
func (t *tableImpl[K, V]) resolve(hash uint64) (*bucket[K, V], int) {
	b, idx := t.bucketFor(hash)
	succ := t.successor.Load()
	if succ == nil {
		return b, t.snapshot
	}
	if idx > int(t.resizeIndex.Load()) {
		return b, t.snapshot
	}
	nb, _ := succ.bucketFor(hash)
	return nb, succ.snapshot
}

func (t *tableImpl[K, V]) insert(key K, value V, hash uint64) bool {
	b, s := t.lockedBucket(hash)
	defer b.mu.Unlock()
	return b.insert(key, value, s)
}

func (t *tableImpl[K, V]) remove(key K, hash uint64) bool {
	b, s := t.lockedBucket(hash)
	defer b.mu.Unlock()
	return b.remove(key, s)
}

// lookup tries the bucket the migration frontier currently says owns
// hash; on a miss, and only if a successor exists at all, it also tries
// whichever of {old, successor} it didn't already consult. This is the
// reader-side retry spec.md §4.3/§4.5 requires: a lookup can race a
// bucket's cut (the old chain being spliced to nil at the end of that
// bucket's migration) and see neither resize_index reflecting the move
// nor the key in the table it checked — in which case the other table is
// guaranteed to have it, because an old bucket is only ever cut after
// every one of its nodes has already been linked into the successor.
func (t *tableImpl[K, V]) lookup(key K, hash uint64) (value V, ok bool) {
	primary, pIdx := t.bucketFor(hash)
	succ := t.successor.Load()

	var chosen *bucket[K, V]
	var chosenS int
	if succ != nil && pIdx <= int(t.resizeIndex.Load()) {
		chosen, _ = succ.bucketFor(hash)
		chosenS = succ.snapshot
	} else {
		chosen, chosenS = primary, t.snapshot
	}

	if value, ok = chosen.lookup(key, chosenS); ok {
		return value, true
	}
	if succ == nil {
		return value, false
	}

	var alt *bucket[K, V]
	var altS int
	if chosen == primary {
		alt, _ = succ.bucketFor(hash)
		altS = succ.snapshot
	} else {
		alt, altS = primary, t.snapshot
	}
	if alt == chosen {
		return value, false
	}
	return alt.lookup(key, altS)
}

// migrate drains every bucket of t into a freshly allocated successor
// with newBucketCount buckets, implementing spec.md §4.5's steps 1-3.
// Steps 4-5 (swapping outer.current and releasing resizeMu) are the
// caller's (HashTable.maybeResize's) responsibility, since they touch state
// t doesn't own. Caller must already hold owner.resizeMu.
func (t *tableImpl[K, V]) migrate(newBucketCount int) *tableImpl[K, V] {
	succ := newTableImpl(t.owner, newBucketCount, t.snapshot^1)
	t.successor.Store(succ)  // publish the successor (release)
	t.owner.rcu.Synchronize() // anyone loading `current` now also sees successor

	for i := range t.buckets {
		old := &t.buckets[i]
		old.mu.Lock()

		n := old.head.next[t.snapshot].load()
		for n != nil {
			next := n.next[t.snapshot].load()
			dest, _ := succ.bucketFor(t.owner.hasher(n.key))
			linkMigrated(dest, succ.snapshot, n)
			n = next
		}
		old.head.next[t.snapshot].store(nil) // cut the old chain (release)

		// resizeIndex means "already migrated" (spec.md §3): publish it
		// only once bucket i's nodes are all reachable from succ and the
		// old chain is cut, never before. Publishing it earlier (as a
		// literal reading of §4.5 step 2's ordering would do) would let
		// a concurrent writer route to the successor before migrate has
		// moved that bucket's pre-existing keys there, producing lost
		// removes and duplicate inserts. See DESIGN.md.
		t.bucketRCU.Synchronize(i)
		t.resizeIndex.Store(int32(i))

		old.mu.Unlock()
	}
	t.resizeIndex.Store(int32(len(t.buckets))) // past the last bucket

	return succ
}

// linkMigrated appends an already-allocated node (moved verbatim from the
// old table, never reallocated — spec.md §4.5 "why two snapshot
// indices") onto dest's list under snapshot s. dest's mutex is taken here
// because, unlike a fresh bucket.insert, the node being linked was never
// checked against dest's *own* concurrent writers: multiple old buckets
// can map onto the same successor bucket, and a writer already routed to
// dest (because some other, earlier old bucket finished migrating first)
// can be appending to it at the same moment migrate reaches a different
// source bucket.
func linkMigrated[K comparable, V any](dest *bucket[K, V], s int, n *node[K, V]) {
	dest.mu.Lock()
	defer dest.mu.Unlock()
	n.next[s].storePlain(dest.head.next[s].load())
	dest.head.next[s].store(n)
}
