package rcuhash

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEpochLockReadLockUnlockParity(t *testing.T) {
	l := NewEpochLock()
	l.ReadLock()
	l.ReadUnlock()
	l.ReadLock()
	l.ReadUnlock()
}

func TestEpochLockSynchronizeWaitsOutActiveReader(t *testing.T) {
	l := NewEpochLock()

	// ReadLock and ReadUnlock act on the calling goroutine's own cell, so
	// the reader enters and leaves its section on one goroutine.
	entered := make(chan struct{})
	release := make(chan struct{})
	left := make(chan struct{})
	go func() {
		l.ReadLock()
		close(entered)
		<-release
		l.ReadUnlock()
		close(left)
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		l.Synchronize()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Synchronize returned before the active reader left its section")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-left
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Synchronize did not return after the active reader left")
	}
}

func TestEpochLockSynchronizeNoReaders(t *testing.T) {
	l := NewEpochLock()
	l.Synchronize()
}

func TestEpochLockConcurrentReaders(t *testing.T) {
	l := NewEpochLock()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.ReadLock()
				l.ReadUnlock()
			}
		}()
	}
	wg.Wait()
	l.Synchronize()
}

func TestAssertEvenOddPanicOnUnbalancedUse(t *testing.T) {
	require.Panics(t, func() {
		assertOdd(0, "ReadUnlock")
	})
	require.Panics(t, func() {
		assertEven(1, "ReadLock")
	})
}
