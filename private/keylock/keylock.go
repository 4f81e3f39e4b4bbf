// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package keylock provides striped mutexes keyed by string, used to
// serialize mutations per record ID.
package keylock

import (
	"hash/fnv"
	"sync"
)

const defaultStripes = 64

// Locks is a fixed set of mutexes; every key hashes onto one of them. Two
// different keys may share a stripe, which only ever costs extra waiting,
// never lost exclusion.
type Locks struct {
	stripes []sync.Mutex
}

// New creates striped locks with the default stripe count.
func New() *Locks {
	return &Locks{stripes: make([]sync.Mutex, defaultStripes)}
}

// Lock acquires the stripe for key and returns its unlock function.
func (locks *Locks) Lock(key string) (unlock func()) {
	mu := &locks.stripes[locks.stripe(key)]
	mu.Lock()
	return mu.Unlock
}

func (locks *Locks) stripe(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % uint32(len(locks.stripes))
}
