package rcuhash

import "sync"

// node is one key/value pair linked into a bucket's list. next holds one
// pointer per snapshot index (spec.md §3): during a resize a node is
// reachable from both the old table's chain (slot 0 or 1) and the
// successor's chain (the other slot) without ever being copied or
// reallocated. A node's key is immutable once published; its value is
// read-only after publication — updates are always modelled as
// remove+insert, never in-place mutation (spec.md Non-goals).
type node[K comparable, V any] struct {
	key   K
	value V
	next  [2]ptr[node[K, V]]
}

// bucket owns a sentinel-headed singly-linked list of nodes hashing into
// this slot. Readers traverse it lock-free under the owning table's
// BucketEpochLock; writers serialize through mu. The sentinel (head) never
// holds a real key/value and is never deleted while the bucket is live.
//
// Grounded on original_source/src/hash_table.h's Bucket, generalized from
// a single fixed snapshot index to the two-snapshot-index design spec.md
// §4.3-§4.5 requires for online resize.
type bucket[K comparable, V any] struct {
	mu sync.Mutex

	//lint:ignore U1000 prevents false sharing between adjacent buckets
	_ [CacheLineSize]byte

	head  node[K, V]
	impl  *tableImpl[K, V]
	index int
}

// defaultGrowThreshold is the design-recommended node-scan count (spec.md
// §6) past which find proposes a grow. find reads the threshold actually
// in use from the owning table via the bucket's impl, not from this
// constant, so HashTable's WithGrowThreshold option can override it.
const defaultGrowThreshold = 5

// find walks the bucket's list for key under snapshot s, as a writer-side
// helper used inside insert. It additionally counts nodes scanned and, if
// the scan crosses the owning table's grow threshold, proposes a resize —
// this is the only place growth is ever proposed (spec.md §4.3).
func (b *bucket[K, V]) find(key K, s int) bool {
	n := b.head.next[s].load()
	var scanned int
	found := false
	for n != nil {
		scanned++
		if n.key == key {
			found = true
			break
		}
		n = n.next[s].load()
	}
	if scanned >= b.impl.owner.growThreshold {
		b.impl.owner.proposeResize(len(b.impl.buckets)*2 + 1)
	}
	return found
}

// insert adds key/value under snapshot s. The caller must already hold
// mu. Returns false without modifying the list if key is already present.
func (b *bucket[K, V]) insert(key K, value V, s int) bool {
	if b.find(key, s) {
		return false
	}
	n := &node[K, V]{key: key, value: value}
	n.next[s].storePlain(b.head.next[s].load())
	b.head.next[s].store(n) // publish: release
	return true
}

// remove deletes the node with key under snapshot s. The caller must
// already hold mu. Blocks on a grace period (via the table's
// BucketEpochLock, synchronized on this bucket only) before returning, so
// that by the time remove returns no reader can still be traversing the
// unlinked node.
func (b *bucket[K, V]) remove(key K, s int) bool {
	pred := &b.head
	cur := pred.next[s].load()
	for cur != nil && cur.key != key {
		pred = cur
		cur = cur.next[s].load()
	}
	if cur == nil {
		return false
	}
	pred.next[s].store(cur.next[s].load()) // unlink: release
	b.impl.bucketRCU.Synchronize(b.index)
	return true
}

// lookup returns a copy of the value stored for key under snapshot s, or
// false if absent. Lock-free: no mutex, just a BucketEpochLock read
// section around the traversal.
func (b *bucket[K, V]) lookup(key K, s int) (V, bool) {
	b.impl.bucketRCU.ReadLock(b.index)
	defer b.impl.bucketRCU.ReadUnlock(b.index)

	n := b.head.next[s].load()
	for n != nil {
		if n.key == key {
			return n.value, true
		}
		n = n.next[s].load()
	}
	var zero V
	return zero, false
}
