package rcuhash

import (
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
)

// registryNode is one link in the intrusive, append-only list of cells
// owned by a Registry. Once linked, a node is never unlinked or relocated;
// it lives for the Registry's lifetime, so a concurrent Iter can never
// observe freed memory.
type registryNode[T any] struct {
	gid  int64
	data T
	next atomic.Pointer[registryNode[T]]
}

// Registry hands every goroutine that calls Cell its own private instance
// of T, creating it on first access, and lets a writer enumerate every
// cell ever created — even after the goroutine that created it has
// exited.
//
// This is the Go stand-in for the original's pthread-keyed ThreadLocal<T>
// (original_source/src/thread_local.h): Go exposes no public per-goroutine
// storage, so cells are keyed by goroutine id instead of a pthread_key_t.
// Goroutine ids are obtained via github.com/petermattis/goid, the
// goroutine-identification package the cockroachdb project (whose swiss
// map also lives in this example pack) commonly relies on for exactly this
// kind of per-goroutine bookkeeping.
//
// A Registry's cells are never relocated and never freed individually;
// cells persist for the Registry's lifetime, matching the invariant that
// the original's intrusive list only ever grows.
type Registry[T any] struct {
	head registryNode[T] // sentinel; data is unused
	tail atomic.Pointer[registryNode[T]]
	zero func() T

	fast sync.Map // int64 goroutine id -> *registryNode[T]
}

// NewRegistry creates an empty Registry. zero, if non-nil, produces the
// initial value for each newly created cell; if nil, cells start at T's
// zero value.
func NewRegistry[T any](zero func() T) *Registry[T] {
	r := &Registry[T]{zero: zero}
	r.tail.Store(&r.head)
	return r
}

// Cell returns the calling goroutine's private cell, creating and linking
// it into the registry on first access from that goroutine. Linking the
// new cell into the list is lock-free: concurrent creators race a CAS on
// the tail node's next pointer, never a mutex. The cell is then recorded
// in the sync.Map keyed by goroutine id that Cell consults first.
func (r *Registry[T]) Cell() *T {
	gid := goid.Get()
	if v, ok := r.fast.Load(gid); ok {
		return &v.(*registryNode[T]).data
	}
	return r.createCell(gid)
}

func (r *Registry[T]) createCell(gid int64) *T {
	var zero T
	if r.zero != nil {
		zero = r.zero()
	}
	n := &registryNode[T]{gid: gid, data: zero}
	for {
		tail := r.tail.Load()
		if tail.next.CompareAndSwap(nil, n) {
			r.tail.CompareAndSwap(tail, n)
			break
		}
		// Someone else linked a node onto tail first (or is racing to);
		// help the tail pointer catch up and retry from there so
		// insertion order is preserved.
		if next := tail.next.Load(); next != nil {
			r.tail.CompareAndSwap(tail, next)
		}
	}
	// A second, concurrently created cell for the same goroutine can't
	// happen: Cell is always called from the owning goroutine itself.
	r.fast.Store(gid, n)
	return &n.data
}

// Iter calls fn for every cell created so far, in creation order. Cells
// created concurrently with Iter may or may not be observed, but Iter
// never reads freed memory and never blocks on a writer.
func (r *Registry[T]) Iter(fn func(*T)) {
	for n := r.head.next.Load(); n != nil; n = n.next.Load() {
		fn(&n.data)
	}
}

// Clear destroys every cell. Only safe to call when no goroutine can still
// reach this Registry concurrently.
func (r *Registry[T]) Clear() {
	r.head.next.Store(nil)
	r.tail.Store(&r.head)
	r.fast = sync.Map{}
}
