// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMutualExclusion(t *testing.T) {
	locks := New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("user:42")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestStripeStable(t *testing.T) {
	locks := New()

	// the same key always maps to the same stripe
	require.Equal(t, locks.stripe("playlist:7"), locks.stripe("playlist:7"))

	// sequential lock/unlock on many distinct keys never wedges
	for i := 0; i < 1000; i++ {
		unlock := locks.Lock(string(rune('a' + i%26)))
		unlock()
	}
}
