package rcuhash

import (
	"testing"

	"golang.org/x/exp/rand"
)

func BenchmarkInsert(b *testing.B) {
	h := New[int64, int64](16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Insert(int64(i), int64(i))
	}
}

func BenchmarkLookupHit(b *testing.B) {
	h := New[int64, int64](1024)
	const n = 100_000
	for i := int64(0); i < n; i++ {
		h.Insert(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(1))
		for pb.Next() {
			h.Lookup(rng.Int63n(n))
		}
	})
}

func BenchmarkLookupMiss(b *testing.B) {
	h := New[int64, int64](1024)
	const n = 100_000
	for i := int64(0); i < n; i++ {
		h.Insert(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(1))
		for pb.Next() {
			h.Lookup(n + rng.Int63n(n))
		}
	})
}

func BenchmarkMixedReadHeavy(b *testing.B) {
	h := New[int64, int64](1024)
	const n = 100_000
	for i := int64(0); i < n; i++ {
		h.Insert(i, i)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		rng := rand.New(rand.NewSource(1))
		for pb.Next() {
			k := rng.Int63n(n)
			if rng.Intn(100) == 0 {
				h.Remove(k)
				h.Insert(k, k)
			} else {
				h.Lookup(k)
			}
		}
	})
}

func BenchmarkConcurrentGrowth(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		h := New[int64, int64](1)
		for k := int64(0); k < 10_000; k++ {
			h.Insert(k, k)
		}
	}
}
