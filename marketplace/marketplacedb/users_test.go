// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/marketplace"
)

func TestUsersRoundTrip(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.Users().Save(ctx, &marketplace.User{
		Wallet:      "0xabc",
		Username:    "dreamer",
		Email:       "dreamer@example.com",
		DisplayName: "Dreamer",
		Bio:         "late night loops",
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.False(t, saved.CreatedAt.IsZero())
	require.False(t, saved.UpdatedAt.IsZero())

	got, err := db.Users().Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.Username, got.Username)
	require.Equal(t, saved.Wallet, got.Wallet)

	// update keeps the ID and the creation time
	got.Bio = "daytime loops"
	updated, err := db.Users().Save(ctx, got)
	require.NoError(t, err)
	require.Equal(t, saved.ID, updated.ID)
	require.Equal(t, saved.CreatedAt.Unix(), updated.CreatedAt.Unix())

	again, err := db.Users().Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "daytime loops", again.Bio)
}

func TestUsersAliases(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.Users().Save(ctx, &marketplace.User{
		Wallet:   "0xdef",
		Username: "curator",
		Email:    "curator@example.com",
	})
	require.NoError(t, err)

	byEmail, err := db.Users().GetByEmail(ctx, "curator@example.com")
	require.NoError(t, err)
	require.Equal(t, saved.ID, byEmail.ID)

	byUsername, err := db.Users().GetByUsername(ctx, "curator")
	require.NoError(t, err)
	require.Equal(t, saved.ID, byUsername.ID)

	byWallet, err := db.Users().GetByWallet(ctx, "0xdef")
	require.NoError(t, err)
	require.Equal(t, saved.ID, byWallet.ID)

	_, err = db.Users().GetByEmail(ctx, "nobody@example.com")
	require.True(t, marketplace.ErrNotFound.Has(err))
}

func TestUsersDeleteIdempotent(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.Users().Save(ctx, &marketplace.User{Username: "gone", Email: "gone@example.com"})
	require.NoError(t, err)

	require.NoError(t, db.Users().Delete(ctx, saved.ID))

	_, err = db.Users().Get(ctx, saved.ID)
	require.True(t, marketplace.ErrNotFound.Has(err))
	_, err = db.Users().GetByEmail(ctx, "gone@example.com")
	require.True(t, marketplace.ErrNotFound.Has(err))

	listed, err := db.Users().List(ctx, 10, 0)
	require.NoError(t, err)
	require.Empty(t, listed)

	// deleting again, and deleting something that never existed, both succeed
	require.NoError(t, db.Users().Delete(ctx, saved.ID))
	require.NoError(t, db.Users().Delete(ctx, "never-was"))
}

func TestUsersListPagination(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := db.Users().Save(ctx, &marketplace.User{ID: id, Username: id})
		require.NoError(t, err)
	}

	page1, err := db.Users().List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page2, err := db.Users().List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)

	// pages do not overlap and together cover the collection
	seen := map[string]bool{}
	for _, user := range append(page1, page2...) {
		require.False(t, seen[user.ID])
		seen[user.ID] = true
	}
	require.Len(t, seen, 3)

	empty, err := db.Users().List(ctx, 2, 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestUsersSearch(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.Users().Save(ctx, &marketplace.User{ID: "u1", Username: "WaveRider", Bio: "surf rock"})
	require.NoError(t, err)
	_, err = db.Users().Save(ctx, &marketplace.User{ID: "u2", Username: "basshead", DisplayName: "Low End"})
	require.NoError(t, err)

	found, err := db.Users().Search(ctx, "wave", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "u1", found[0].ID)

	found, err = db.Users().Search(ctx, "LOW", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "u2", found[0].ID)

	found, err = db.Users().Search(ctx, "polka", 10)
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestUsersPlaylistIDs(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	user, err := db.Users().Save(ctx, &marketplace.User{ID: "owner", Username: "owner"})
	require.NoError(t, err)

	_, err = db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p1", Owner: user.ID, Name: "morning"})
	require.NoError(t, err)
	_, err = db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p2", Owner: user.ID, Name: "evening"})
	require.NoError(t, err)

	ids, err := db.Users().PlaylistIDs(ctx, user.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2"}, ids)

	require.NoError(t, db.Playlists().Delete(ctx, "p1"))
	ids, err = db.Users().PlaylistIDs(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"p2"}, ids)
}

func TestUsersConcurrentSaves(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	var group sync.WaitGroup
	for i := 0; i < 16; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			_, err := db.Users().Save(ctx, &marketplace.User{ID: "same", Username: "same"})
			require.NoError(t, err)
		}()
	}
	group.Wait()

	got, err := db.Users().Get(ctx, "same")
	require.NoError(t, err)
	require.Equal(t, "same", got.Username)

	listed, err := db.Users().List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
