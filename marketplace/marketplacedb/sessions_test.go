// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/marketplace"
)

func TestSessionsRoundTrip(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	created, err := db.Sessions().Create(ctx, &marketplace.Session{
		UserID: "u1",
		Wallet: "0xabc",
	}, 0)
	require.NoError(t, err)
	require.NotEmpty(t, created.Token)
	require.False(t, created.CreatedAt.IsZero())

	got, err := db.Sessions().Get(ctx, created.Token)
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "0xabc", got.Wallet)

	require.NoError(t, db.Sessions().Delete(ctx, created.Token))

	_, err = db.Sessions().Get(ctx, created.Token)
	require.True(t, marketplace.ErrNotFound.Has(err))

	// deleting again is a no-op success
	require.NoError(t, db.Sessions().Delete(ctx, created.Token))
}

func TestSessionsExpiry(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	created, err := db.Sessions().Create(ctx, &marketplace.Session{
		Token:  "short-lived",
		UserID: "u1",
	}, 50*time.Millisecond)
	require.NoError(t, err)

	_, err = db.Sessions().Get(ctx, created.Token)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)

	_, err = db.Sessions().Get(ctx, created.Token)
	require.True(t, marketplace.ErrNotFound.Has(err))
}

func TestSessionsCallerToken(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	created, err := db.Sessions().Create(ctx, &marketplace.Session{
		Token:  "explicit-token",
		UserID: "u1",
	}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, "explicit-token", created.Token)

	got, err := db.Sessions().Get(ctx, "explicit-token")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)

	_, err = db.Sessions().Get(ctx, "")
	require.True(t, marketplace.ErrNotFound.Has(err))
}
