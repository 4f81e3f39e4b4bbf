// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package teststore implements an in-memory kvstore.Store for tests.
package teststore

import (
	"context"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/zeebo/errs"

	"github.com/flowtune/flowtune/private/kvstore"
)

// Error is a teststore error.
var Error = errs.Class("teststore")

type entry struct {
	value    kvstore.Value
	deadline time.Time
}

func (e entry) expired() bool {
	return !e.deadline.IsZero() && time.Now().After(e.deadline)
}

// Client implements an in-memory key value store with native sets.
type Client struct {
	mu sync.Mutex

	values map[string]entry
	sets   map[string]map[string]struct{}

	CallCount struct {
		Get        int
		Put        int
		PutTTL     int
		Delete     int
		Exists     int
		IncrBy     int
		SetAdd     int
		SetMembers int
		SetRemove  int
		Keys       int
		FlushAll   int
		Close      int
	}
}

// New creates a new in-memory key-value store.
func New() *Client {
	return &Client{
		values: map[string]entry{},
		sets:   map[string]map[string]struct{}{},
	}
}

// Put adds a value to store.
func (store *Client) Put(ctx context.Context, key kvstore.Key, value kvstore.Value) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Put++

	return store.put(key, value, 0)
}

// PutTTL adds a value that expires after ttl.
func (store *Client) PutTTL(ctx context.Context, key kvstore.Key, value kvstore.Value, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.PutTTL++

	return store.put(key, value, ttl)
}

func (store *Client) put(key kvstore.Key, value kvstore.Value, ttl time.Duration) error {
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	e := entry{value: kvstore.CloneValue(value)}
	if ttl > 0 {
		e.deadline = time.Now().Add(ttl)
	}
	store.values[key.String()] = e
	delete(store.sets, key.String())
	return nil
}

// Get gets a value from the store.
func (store *Client) Get(ctx context.Context, key kvstore.Key) (kvstore.Value, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Get++

	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	e, ok := store.values[key.String()]
	if !ok || e.expired() {
		delete(store.values, key.String())
		return nil, kvstore.ErrKeyNotFound.New("%q", key)
	}
	return kvstore.CloneValue(e.value), nil
}

// Delete deletes key and the value.
func (store *Client) Delete(ctx context.Context, key kvstore.Key) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Delete++

	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	delete(store.values, key.String())
	delete(store.sets, key.String())
	return nil
}

// Exists reports whether key is present.
func (store *Client) Exists(ctx context.Context, key kvstore.Key) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Exists++

	if key.IsZero() {
		return false, kvstore.ErrEmptyKey.New("")
	}

	if e, ok := store.values[key.String()]; ok && !e.expired() {
		return true, nil
	}
	if members, ok := store.sets[key.String()]; ok && len(members) > 0 {
		return true, nil
	}
	return false, nil
}

// IncrBy increments the integer stored at key.
func (store *Client) IncrBy(ctx context.Context, key kvstore.Key, amount int64) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.IncrBy++

	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}

	var current int64
	if e, ok := store.values[key.String()]; ok && !e.expired() {
		parsed, err := strconv.ParseInt(strings.TrimSpace(string(e.value)), 10, 64)
		if err != nil {
			return 0, Error.New("value at %q is not an integer", key)
		}
		current = parsed
	}

	current += amount
	store.values[key.String()] = entry{value: kvstore.Value(strconv.FormatInt(current, 10))}
	return current, nil
}

// SetAdd adds members to the set stored at key.
func (store *Client) SetAdd(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.SetAdd++

	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}

	set, ok := store.sets[key.String()]
	if !ok {
		set = map[string]struct{}{}
		store.sets[key.String()] = set
	}

	var added int64
	for _, member := range members {
		if _, ok := set[string(member)]; !ok {
			set[string(member)] = struct{}{}
			added++
		}
	}
	return added, nil
}

// SetMembers returns all members of the set stored at key.
func (store *Client) SetMembers(ctx context.Context, key kvstore.Key) (kvstore.Values, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.SetMembers++

	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	values := kvstore.Values{}
	for member := range store.sets[key.String()] {
		values = append(values, kvstore.Value(member))
	}
	return values, nil
}

// SetRemove removes members from the set stored at key.
func (store *Client) SetRemove(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (int64, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.SetRemove++

	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}

	set := store.sets[key.String()]
	var removed int64
	for _, member := range members {
		if _, ok := set[string(member)]; ok {
			delete(set, string(member))
			removed++
		}
	}
	if len(set) == 0 {
		delete(store.sets, key.String())
	}
	return removed, nil
}

// Keys returns all keys matching a glob pattern.
func (store *Client) Keys(ctx context.Context, pattern string) (kvstore.Keys, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Keys++

	var keys kvstore.Keys
	match := func(key string) (bool, error) {
		return path.Match(pattern, key)
	}

	for key, e := range store.values {
		if e.expired() {
			continue
		}
		ok, err := match(key)
		if err != nil {
			return nil, Error.New("bad pattern %q: %v", pattern, err)
		}
		if ok {
			keys = append(keys, kvstore.Key(key))
		}
	}
	for key := range store.sets {
		ok, err := match(key)
		if err != nil {
			return nil, Error.New("bad pattern %q: %v", pattern, err)
		}
		if ok {
			keys = append(keys, kvstore.Key(key))
		}
	}
	return keys, nil
}

// FlushAll wipes all data.
func (store *Client) FlushAll(ctx context.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.FlushAll++

	store.values = map[string]entry{}
	store.sets = map[string]map[string]struct{}{}
	return nil
}

// Close closes the store.
func (store *Client) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.CallCount.Close++
	return nil
}
