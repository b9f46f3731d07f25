package rcuhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatsReflectsBucketsAndLen(t *testing.T) {
	h := New[int, int](4)
	for i := 0; i < 5; i++ {
		h.Insert(i, i)
	}

	s := h.Stats()
	require.Equal(t, 4, s.Buckets)
	require.Equal(t, int64(5), s.ApproxLen)
	require.False(t, s.ResizeInFlight)
}

func TestStatsResizeGenerationIncrementsOnResize(t *testing.T) {
	h := New[int, int](1, WithGrowThreshold[int, int](2))
	before := h.Stats().ResizeGeneration

	for i := 0; i < 50; i++ {
		h.Insert(i, i)
	}

	require.Greater(t, h.Stats().ResizeGeneration, before)
}

func TestLenTracksInsertsAndRemoves(t *testing.T) {
	h := New[string, int](4)
	require.Equal(t, 0, h.Len())

	h.Insert("a", 1)
	h.Insert("b", 2)
	require.Equal(t, 2, h.Len())

	h.Remove("a")
	require.Equal(t, 1, h.Len())
}

func TestKeysReflectsLiveSet(t *testing.T) {
	h := New[int, int](4)
	want := map[int]bool{}
	for i := 0; i < 20; i++ {
		h.Insert(i, i)
		want[i] = true
	}
	h.Remove(5)
	delete(want, 5)

	got := map[int]bool{}
	for _, k := range h.keys() {
		got[k] = true
	}
	require.Equal(t, want, got)
}
