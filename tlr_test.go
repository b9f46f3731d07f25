package rcuhash

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryCellPerGoroutine(t *testing.T) {
	r := NewRegistry(func() int { return 0 })

	c := r.Cell()
	*c = 7
	require.Same(t, c, r.Cell(), "repeated Cell from the same goroutine must return the same cell")
	require.Equal(t, 7, *r.Cell())
}

func TestRegistryIterSeesAllGoroutines(t *testing.T) {
	r := NewRegistry(func() int { return 0 })

	const n = 64
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			c := r.Cell()
			*c = i + 1
		}()
	}
	wg.Wait()

	seen := 0
	sum := 0
	r.Iter(func(c *int) {
		seen++
		sum += *c
	})
	require.Equal(t, n, seen)
	require.Equal(t, n*(n+1)/2, sum)
}

func TestRegistryIterSurvivesGoroutineExit(t *testing.T) {
	r := NewRegistry(func() int { return 0 })

	done := make(chan struct{})
	go func() {
		c := r.Cell()
		*c = 42
		close(done)
	}()
	<-done

	found := false
	r.Iter(func(c *int) {
		if *c == 42 {
			found = true
		}
	})
	require.True(t, found, "a cell must remain iterable after its owning goroutine exits")
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry(func() int { return 0 })
	r.Cell()
	r.Clear()

	count := 0
	r.Iter(func(*int) { count++ })
	require.Equal(t, 0, count)
}
