// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/private/kvstore"
)

// RunTTLTests verifies the expiry horizon behavior. advance moves time
// forward: substrates on a wall clock pass time.Sleep, miniredis passes its
// FastForward.
func RunTTLTests(t *testing.T, store kvstore.Store, advance func(time.Duration)) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	ephemeral := kvstore.Key("ttl:ephemeral")
	durable := kvstore.Key("ttl:durable")
	defer func() {
		_ = store.Delete(ctx, ephemeral)
		_ = store.Delete(ctx, durable)
	}()

	require.NoError(t, store.PutTTL(ctx, ephemeral, kvstore.Value("soon gone"), time.Second))
	require.NoError(t, store.Put(ctx, durable, kvstore.Value("stays")))

	got, err := store.Get(ctx, ephemeral)
	require.NoError(t, err)
	require.Equal(t, "soon gone", string(got))

	advance(2 * time.Second)

	// reads past the expiry horizon behave like the key never existed
	_, err = store.Get(ctx, ephemeral)
	require.True(t, kvstore.ErrKeyNotFound.Has(err), "expected not found, got %v", err)

	exists, err := store.Exists(ctx, ephemeral)
	require.NoError(t, err)
	require.False(t, exists)

	got, err = store.Get(ctx, durable)
	require.NoError(t, err)
	require.Equal(t, "stays", string(got))
}
