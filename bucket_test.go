package rcuhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBucket(t *testing.T) *bucket[int, string] {
	t.Helper()
	impl := newTableImpl(New[int, string](1), 1, 0)
	return &impl.buckets[0]
}

func TestBucketInsertLookupRemove(t *testing.T) {
	b := newTestBucket(t)

	require.True(t, b.insert(1, "one", 0))
	v, ok := b.lookup(1, 0)
	require.True(t, ok)
	require.Equal(t, "one", v)

	require.True(t, b.remove(1, 0))
	_, ok = b.lookup(1, 0)
	require.False(t, ok)
}

func TestBucketInsertDuplicateRejected(t *testing.T) {
	b := newTestBucket(t)
	require.True(t, b.insert(1, "one", 0))
	require.False(t, b.insert(1, "uno", 0))

	v, _ := b.lookup(1, 0)
	require.Equal(t, "one", v, "a rejected insert must not disturb the existing value")
}

func TestBucketRemoveAbsentReturnsFalse(t *testing.T) {
	b := newTestBucket(t)
	require.False(t, b.remove(99, 0))
}

func TestBucketFindProposesResizeAtThreshold(t *testing.T) {
	b := newTestBucket(t)
	b.impl.owner.growThreshold = 2

	for i := 0; i < 3; i++ {
		require.True(t, b.insert(i, "v", 0))
	}
	// The third insert's find() scan should have crossed growThreshold and
	// proposed a resize.
	require.NotEqual(t, int64(-1), b.impl.owner.pendingResizeTarget.Load())
}

func TestBucketMultipleKeysIndependentlyAddressable(t *testing.T) {
	b := newTestBucket(t)
	for i := 0; i < 10; i++ {
		require.True(t, b.insert(i, "v", 0))
	}
	for i := 0; i < 10; i++ {
		v, ok := b.lookup(i, 0)
		require.True(t, ok)
		require.Equal(t, "v", v)
	}
	require.True(t, b.remove(5, 0))
	_, ok := b.lookup(5, 0)
	require.False(t, ok)
	for _, i := range []int{0, 1, 2, 3, 4, 6, 7, 8, 9} {
		_, ok := b.lookup(i, 0)
		require.True(t, ok)
	}
}
