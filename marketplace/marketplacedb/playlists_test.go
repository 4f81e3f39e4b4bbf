// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/marketplace"
)

func TestPlaylistsRoundTrip(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.Playlists().Save(ctx, &marketplace.Playlist{
		Owner:       "0xabc",
		Name:        "Late Night",
		Description: "for the drive home",
		Category:    "chill",
		Tags:        []string{"night"},
		TrackIDs:    []string{"n1", "n2"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, marketplace.VisibilityPublic, saved.Visibility)

	got, err := db.Playlists().Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Late Night", got.Name)
	require.Equal(t, []string{"n1", "n2"}, got.TrackIDs)

	_, err = db.Playlists().Get(ctx, "missing")
	require.True(t, marketplace.ErrNotFound.Has(err))
}

func TestPlaylistsOwnerSet(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p1", Owner: "u1", Name: "one"})
	require.NoError(t, err)
	_, err = db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p2", Owner: "u1", Name: "two"})
	require.NoError(t, err)
	_, err = db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p3", Owner: "u2", Name: "three"})
	require.NoError(t, err)

	mine, err := db.Playlists().ListByOwner(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	ids, err := db.Users().PlaylistIDs(ctx, "u1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2"}, ids)

	require.NoError(t, db.Playlists().Delete(ctx, "p2"))

	ids, err = db.Users().PlaylistIDs(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"p1"}, ids)
}

func TestPlaylistsRelationships(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p1", Owner: "u1", Name: "mix"})
	require.NoError(t, err)

	require.NoError(t, db.Playlists().Like(ctx, "p1", "u2"))
	require.NoError(t, db.Playlists().Like(ctx, "p1", "u3"))
	require.NoError(t, db.Playlists().Like(ctx, "p1", "u2")) // idempotent

	likes, err := db.Playlists().Likes(ctx, "p1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"u2", "u3"}, likes)

	require.NoError(t, db.Playlists().Unlike(ctx, "p1", "u3"))
	likes, err = db.Playlists().Likes(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, likes)

	require.NoError(t, db.Playlists().Follow(ctx, "p1", "u4"))
	followers, err := db.Playlists().Followers(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"u4"}, followers)

	require.NoError(t, db.Playlists().Unfollow(ctx, "p1", "u4"))
	followers, err = db.Playlists().Followers(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, followers)

	require.NoError(t, db.Playlists().AddListener(ctx, "p1", "u5"))
	require.NoError(t, db.Playlists().AddListener(ctx, "p1", "u5"))
	listeners, err := db.Playlists().Listeners(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, []string{"u5"}, listeners)
}

func TestPlaylistsDeleteStripsRelationships(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.Playlists().Save(ctx, &marketplace.Playlist{
		ID: "p1", Owner: "u1", Name: "mix", Category: "chill", Featured: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.Playlists().Like(ctx, "p1", "u2"))
	require.NoError(t, db.Playlists().Follow(ctx, "p1", "u3"))
	require.NoError(t, db.Playlists().AddListener(ctx, "p1", "u4"))
	_, err = db.Playlists().RecordPlay(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, db.Playlists().Delete(ctx, "p1"))
	require.NoError(t, db.Playlists().Delete(ctx, "p1")) // idempotent

	_, err = db.Playlists().Get(ctx, "p1")
	require.True(t, marketplace.ErrNotFound.Has(err))

	likes, err := db.Playlists().Likes(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, likes)

	followers, err := db.Playlists().Followers(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, followers)

	listeners, err := db.Playlists().Listeners(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, listeners)

	plays, err := db.Playlists().Plays(ctx, "p1")
	require.NoError(t, err)
	require.Zero(t, plays)

	featured, err := db.Playlists().ListFeatured(ctx, 10, 0)
	require.NoError(t, err)
	require.Empty(t, featured)

	chill, err := db.Playlists().ListByCategory(ctx, "chill", 10, 0)
	require.NoError(t, err)
	require.Empty(t, chill)
}

func TestPlaylistsRelationshipsRequireID(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	require.Error(t, db.Playlists().Like(ctx, "", "u1"))
	require.Error(t, db.Playlists().Like(ctx, "p1", ""))
	require.Error(t, db.Playlists().Follow(ctx, "", "u1"))
	require.Error(t, db.Playlists().AddListener(ctx, "", "u1"))
}

func TestPlaylistsSearchAndSortedViews(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p1", Name: "Morning Coffee", Tags: []string{"acoustic"}})
	require.NoError(t, err)
	_, err = db.Playlists().Save(ctx, &marketplace.Playlist{ID: "p2", Name: "Gym", Description: "coffee-free zone"})
	require.NoError(t, err)

	found, err := db.Playlists().Search(ctx, "coffee", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = db.Playlists().Search(ctx, "acoustic", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "p1", found[0].ID)

	for i := 0; i < 3; i++ {
		_, err := db.Playlists().RecordPlay(ctx, "p2")
		require.NoError(t, err)
	}
	top, err := db.Playlists().MostPlayed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "p2", top[0].ID)

	plays, err := db.Playlists().Plays(ctx, "p2")
	require.NoError(t, err)
	require.EqualValues(t, 3, plays)
}
