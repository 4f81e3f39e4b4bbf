// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package testsuite contains a conformance suite that every kvstore.Store
// implementation must pass.
package testsuite

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/private/kvstore"
)

// RunTests runs common kvstore.Store tests.
func RunTests(t *testing.T, store kvstore.Store) {
	t.Run("CRUD", func(t *testing.T) { testCRUD(t, store) })
	t.Run("Constraints", func(t *testing.T) { testConstraints(t, store) })
	t.Run("Sets", func(t *testing.T) { testSets(t, store) })
	t.Run("Increment", func(t *testing.T) { testIncrement(t, store) })
	t.Run("KeysPattern", func(t *testing.T) { testKeysPattern(t, store) })
	t.Run("Parallel", func(t *testing.T) { testParallel(t, store) })
	t.Run("Flush", func(t *testing.T) { testFlush(t, store) })
}

func testCRUD(t *testing.T, store kvstore.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	key := kvstore.Key("test:crud")
	value := kvstore.Value(`{"hello":"world"}`)

	// missing keys are reported as not found
	_, err := store.Get(ctx, key)
	require.True(t, kvstore.ErrKeyNotFound.Has(err), "expected not found, got %v", err)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, exists)

	// deleting an absent key is not an error
	require.NoError(t, store.Delete(ctx, key))

	require.NoError(t, store.Put(ctx, key, value))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, string(value), string(got))

	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, exists)

	// overwrite
	next := kvstore.Value(`{"hello":"again"}`)
	require.NoError(t, store.Put(ctx, key, next))

	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, string(next), string(got))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	require.True(t, kvstore.ErrKeyNotFound.Has(err))
}

func testConstraints(t *testing.T, store kvstore.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	var empty kvstore.Key
	err := store.Put(ctx, empty, kvstore.Value("xyz"))
	require.True(t, kvstore.ErrEmptyKey.Has(err), "putting empty key should fail")

	_, err = store.Get(ctx, empty)
	require.True(t, kvstore.ErrEmptyKey.Has(err))
}

func testSets(t *testing.T, store kvstore.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	key := kvstore.Key("test:set")
	defer func() { _ = store.Delete(ctx, key) }()

	// absent key yields an empty set
	members, err := store.SetMembers(ctx, key)
	require.NoError(t, err)
	require.Empty(t, members)

	added, err := store.SetAdd(ctx, key, kvstore.Value("a"), kvstore.Value("b"), kvstore.Value("c"))
	require.NoError(t, err)
	require.EqualValues(t, 3, added)

	// membership is idempotent
	added, err = store.SetAdd(ctx, key, kvstore.Value("b"), kvstore.Value("d"))
	require.NoError(t, err)
	require.EqualValues(t, 1, added)

	members, err = store.SetMembers(ctx, key)
	require.NoError(t, err)
	got := members.Strings()
	sort.Strings(got)
	require.Equal(t, []string{"a", "b", "c", "d"}, got)

	removed, err := store.SetRemove(ctx, key, kvstore.Value("b"), kvstore.Value("nope"))
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	members, err = store.SetMembers(ctx, key)
	require.NoError(t, err)
	got = members.Strings()
	sort.Strings(got)
	require.Equal(t, []string{"a", "c", "d"}, got)

	removed, err = store.SetRemove(ctx, key, kvstore.Value("a"), kvstore.Value("c"), kvstore.Value("d"))
	require.NoError(t, err)
	require.EqualValues(t, 3, removed)

	members, err = store.SetMembers(ctx, key)
	require.NoError(t, err)
	require.Empty(t, members)
}

func testIncrement(t *testing.T, store kvstore.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	key := kvstore.Key("test:counter")
	defer func() { _ = store.Delete(ctx, key) }()

	// created at amount when absent
	n, err := store.IncrBy(ctx, key, 3)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = store.IncrBy(ctx, key, 4)
	require.NoError(t, err)
	require.EqualValues(t, 7, n)

	n, err = store.IncrBy(ctx, key, -2)
	require.NoError(t, err)
	require.EqualValues(t, 5, n)

	value, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "5", string(value))
}

func testKeysPattern(t *testing.T, store kvstore.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	seed := map[string]string{
		"pat:user:1": "a",
		"pat:user:2": "b",
		"pat:song:1": "c",
	}
	for key, value := range seed {
		require.NoError(t, store.Put(ctx, kvstore.Key(key), kvstore.Value(value)))
	}
	defer func() {
		for key := range seed {
			_ = store.Delete(ctx, kvstore.Key(key))
		}
	}()

	keys, err := store.Keys(ctx, "pat:user:*")
	require.NoError(t, err)
	got := keys.Strings()
	sort.Strings(got)
	require.Equal(t, []string{"pat:user:1", "pat:user:2"}, got)

	keys, err = store.Keys(ctx, "pat:none:*")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func testFlush(t *testing.T, store kvstore.Store) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	require.NoError(t, store.Put(ctx, kvstore.Key("flush:a"), kvstore.Value("1")))
	_, err := store.SetAdd(ctx, kvstore.Key("flush:b"), kvstore.Value("x"))
	require.NoError(t, err)

	require.NoError(t, store.FlushAll(ctx))

	_, err = store.Get(ctx, kvstore.Key("flush:a"))
	require.True(t, kvstore.ErrKeyNotFound.Has(err))

	members, err := store.SetMembers(ctx, kvstore.Key("flush:b"))
	require.NoError(t, err)
	require.Empty(t, members)
}
