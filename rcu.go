package rcuhash

import "sync/atomic"

// EpochLock is the scalar RCU epoch lock from spec.md §4.2: every reader
// owns a private 64-bit counter (even = quiescent, odd = in a read
// section); ReadLock/ReadUnlock are a single atomic increment apiece, no
// spinning and no CAS. Synchronize snapshots every reader's counter and
// waits out the ones it caught mid-section, establishing a grace period —
// after which nothing still holds a pointer observed before Synchronize
// began.
//
// Grounded directly on original_source/src/rcu_lock.h's RCULock.
type EpochLock struct {
	epochs *Registry[atomic.Uint64]
}

// NewEpochLock creates an EpochLock with no readers registered yet.
func NewEpochLock() *EpochLock {
	return &EpochLock{epochs: NewRegistry(func() atomic.Uint64 { return atomic.Uint64{} })}
}

// ReadLock enters a read section for the calling goroutine.
func (l *EpochLock) ReadLock() {
	c := l.epochs.Cell()
	assertEven(c.Load(), "ReadLock")
	c.Add(1)
}

// ReadUnlock leaves a read section for the calling goroutine.
func (l *EpochLock) ReadUnlock() {
	c := l.epochs.Cell()
	assertOdd(c.Load(), "ReadUnlock")
	c.Add(1)
}

// Synchronize blocks until every reader that was in a read section when
// Synchronize began has since left it. The caller's own counter is part
// of the snapshot, harmlessly.
func (l *EpochLock) Synchronize() {
	type witness struct {
		counter *atomic.Uint64
		seen    uint64
	}
	var witnesses []witness
	l.epochs.Iter(func(c *atomic.Uint64) {
		witnesses = append(witnesses, witness{counter: c, seen: c.Load()})
	})

	spins := 0
	for _, w := range witnesses {
		if w.seen&1 == 0 {
			continue // was already quiescent
		}
		for w.counter.Load() == w.seen {
			delay(&spins)
		}
	}
}
