package rcuhash

import (
	"sync"
	"sync/atomic"
)

// bucketEpochs is one goroutine's vector of per-bucket epoch counters,
// indexed by bucket id. The backing slice only ever grows: growing
// reallocates and copies pointers (never the counters themselves, so an
// in-flight ReadLock/ReadUnlock on an existing slot is never disturbed),
// and is itself published with a single atomic pointer swap.
type bucketEpochs struct {
	mu    sync.Mutex
	slots atomic.Pointer[[]*atomic.Uint64]
}

func (b *bucketEpochs) slot(bucket int) *atomic.Uint64 {
	for {
		if s := b.slots.Load(); s != nil && bucket < len(*s) {
			if c := (*s)[bucket]; c != nil {
				return c
			}
		}
		b.grow(bucket)
	}
}

func (b *bucketEpochs) grow(bucket int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var old []*atomic.Uint64
	if s := b.slots.Load(); s != nil {
		old = *s
	}
	if bucket < len(old) && old[bucket] != nil {
		return // someone grew past us while we waited for the lock
	}

	size := bucket + 1
	if size < len(old) {
		size = len(old)
	}
	next := make([]*atomic.Uint64, size)
	copy(next, old)
	if next[bucket] == nil {
		next[bucket] = new(atomic.Uint64)
	}
	b.slots.Store(&next)
}

// BucketEpochLock is the per-bucket, vector-valued variant of EpochLock
// described in spec.md §4.2 (RCU-B): each reader holds one epoch counter
// per bucket it has touched, so Synchronize(b) only has to wait out
// readers of bucket b instead of every reader of the table. HashTableImpl
// uses one BucketEpochLock per table generation to protect the node
// lifetime of every bucket in that generation (the outer table's
// EpochLock is a separate instance, protecting the HashTableImpl pointer
// itself — see hashtable.go).
type BucketEpochLock struct {
	cells *Registry[bucketEpochs]
}

// NewBucketEpochLock creates a BucketEpochLock with no readers registered
// and no buckets yet observed.
func NewBucketEpochLock() *BucketEpochLock {
	return &BucketEpochLock{cells: NewRegistry(func() bucketEpochs { return bucketEpochs{} })}
}

// ReadLock enters a read section for the calling goroutine on the given
// bucket.
func (l *BucketEpochLock) ReadLock(bucket int) {
	c := l.cells.Cell().slot(bucket)
	assertEven(c.Load(), "ReadLock")
	c.Add(1)
}

// ReadUnlock leaves a read section for the calling goroutine on the given
// bucket.
func (l *BucketEpochLock) ReadUnlock(bucket int) {
	c := l.cells.Cell().slot(bucket)
	assertOdd(c.Load(), "ReadUnlock")
	c.Add(1)
}

// Synchronize blocks until every reader that was mid-section on bucket
// when Synchronize began has since left it. Readers of other buckets are
// never inspected, let alone waited on.
func (l *BucketEpochLock) Synchronize(bucket int) {
	type witness struct {
		counter *atomic.Uint64
		seen    uint64
	}
	var witnesses []witness
	l.cells.Iter(func(c *bucketEpochs) {
		s := c.slots.Load()
		if s == nil || bucket >= len(*s) || (*s)[bucket] == nil {
			return
		}
		counter := (*s)[bucket]
		witnesses = append(witnesses, witness{counter: counter, seen: counter.Load()})
	})

	spins := 0
	for _, w := range witnesses {
		if w.seen&1 == 0 {
			continue
		}
		for w.counter.Load() == w.seen {
			delay(&spins)
		}
	}
}
