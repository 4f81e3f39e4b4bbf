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

func TestMusicNFTsRoundTrip(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{
		TokenID:  "42",
		Owner:    "0xabc",
		Creator:  "0xabc",
		Title:    "Night Drive",
		Artist:   "Neon Fox",
		Category: "synthwave",
		Tags:     []string{"retro", "night"},
		AudioCID: "bafyaudio",
		CoverCID: "bafycover",
		Price:    "0.1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Equal(t, marketplace.VisibilityPublic, saved.Visibility)

	got, err := db.MusicNFTs().Get(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Night Drive", got.Title)
	require.Equal(t, []string{"retro", "night"}, got.Tags)

	byToken, err := db.MusicNFTs().GetByToken(ctx, "42")
	require.NoError(t, err)
	require.Equal(t, saved.ID, byToken.ID)
}

func TestMusicNFTsIndexConsistency(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{
		ID:         "n1",
		TokenID:    "7",
		Owner:      "0xabc",
		Title:      "First",
		Category:   "ambient",
		Tags:       []string{"calm"},
		Visibility: marketplace.VisibilityPublic,
		Featured:   true,
	})
	require.NoError(t, err)

	byOwner, err := db.MusicNFTs().ListByOwner(ctx, "0xabc", 10, 0)
	require.NoError(t, err)
	require.Len(t, byOwner, 1)

	byCategory, err := db.MusicNFTs().ListByCategory(ctx, "ambient", 10, 0)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	byTag, err := db.MusicNFTs().ListByTag(ctx, "calm", 10, 0)
	require.NoError(t, err)
	require.Len(t, byTag, 1)

	byVisibility, err := db.MusicNFTs().ListByVisibility(ctx, marketplace.VisibilityPublic, 10, 0)
	require.NoError(t, err)
	require.Len(t, byVisibility, 1)

	featured, err := db.MusicNFTs().ListFeatured(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, featured, 1)

	require.NoError(t, db.MusicNFTs().Delete(ctx, saved.ID))

	for name, list := range map[string]func() ([]*marketplace.MusicNFT, error){
		"global":     func() ([]*marketplace.MusicNFT, error) { return db.MusicNFTs().List(ctx, 10, 0) },
		"owner":      func() ([]*marketplace.MusicNFT, error) { return db.MusicNFTs().ListByOwner(ctx, "0xabc", 10, 0) },
		"category":   func() ([]*marketplace.MusicNFT, error) { return db.MusicNFTs().ListByCategory(ctx, "ambient", 10, 0) },
		"tag":        func() ([]*marketplace.MusicNFT, error) { return db.MusicNFTs().ListByTag(ctx, "calm", 10, 0) },
		"visibility": func() ([]*marketplace.MusicNFT, error) { return db.MusicNFTs().ListByVisibility(ctx, marketplace.VisibilityPublic, 10, 0) },
		"featured":   func() ([]*marketplace.MusicNFT, error) { return db.MusicNFTs().ListFeatured(ctx, 10, 0) },
	} {
		records, err := list()
		require.NoError(t, err, name)
		require.Empty(t, records, name)
	}

	_, err = db.MusicNFTs().GetByToken(ctx, saved.TokenID)
	require.True(t, marketplace.ErrNotFound.Has(err))
}

func TestMusicNFTsCategoryPagination(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{
			ID:       id,
			Title:    "track " + id,
			Category: "ambient",
		})
		require.NoError(t, err)
	}

	page1, err := db.MusicNFTs().ListByCategory(ctx, "ambient", 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)

	page2, err := db.MusicNFTs().ListByCategory(ctx, "ambient", 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)

	// pages are disjoint and enumeration order is stable across calls
	require.NotEqual(t, page1[0].ID, page2[0].ID)
	require.NotEqual(t, page1[1].ID, page2[0].ID)

	again, err := db.MusicNFTs().ListByCategory(ctx, "ambient", 2, 0)
	require.NoError(t, err)
	require.Equal(t, page1[0].ID, again[0].ID)
	require.Equal(t, page1[1].ID, again[1].ID)

	require.NoError(t, db.MusicNFTs().Delete(ctx, "b"))

	remaining, err := db.MusicNFTs().ListByCategory(ctx, "ambient", 10, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, nft := range remaining {
		require.NotEqual(t, "b", nft.ID)
	}

	all, err := db.MusicNFTs().List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestMusicNFTsReindexOnUpdate(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	saved, err := db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{ID: "n1", Title: "Drift", Category: "ambient"})
	require.NoError(t, err)

	saved.Category = "downtempo"
	_, err = db.MusicNFTs().Save(ctx, saved)
	require.NoError(t, err)

	downtempo, err := db.MusicNFTs().ListByCategory(ctx, "downtempo", 10, 0)
	require.NoError(t, err)
	require.Len(t, downtempo, 1)

	// saves only add memberships; the stale category entry lingers until the
	// record is deleted
	ambient, err := db.MusicNFTs().ListByCategory(ctx, "ambient", 10, 0)
	require.NoError(t, err)
	require.Len(t, ambient, 1)
}

func TestMusicNFTsSearch(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{ID: "n1", Title: "Ocean Floor", Artist: "Deep Blue"})
	require.NoError(t, err)
	_, err = db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{ID: "n2", Title: "Skyline", Tags: []string{"ocean", "dusk"}})
	require.NoError(t, err)

	found, err := db.MusicNFTs().Search(ctx, "ocean", 10)
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = db.MusicNFTs().Search(ctx, "ocean", 1)
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = db.MusicNFTs().Search(ctx, "deep blue", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "n1", found[0].ID)
}

func TestMusicNFTsPlaysAndSortedViews(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	_, err := db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{ID: "quiet", Title: "Quiet"})
	require.NoError(t, err)
	_, err = db.MusicNFTs().Save(ctx, &marketplace.MusicNFT{ID: "loud", Title: "Loud"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := db.MusicNFTs().RecordPlay(ctx, "loud")
		require.NoError(t, err)
	}
	n, err := db.MusicNFTs().RecordPlay(ctx, "quiet")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	plays, err := db.MusicNFTs().Plays(ctx, "loud")
	require.NoError(t, err)
	require.EqualValues(t, 5, plays)

	top, err := db.MusicNFTs().MostPlayed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "loud", top[0].ID)

	// plays of a track that was never played read as zero
	plays, err = db.MusicNFTs().Plays(ctx, "never")
	require.NoError(t, err)
	require.Zero(t, plays)
}

func TestMusicNFTsRecent(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()
	db := openDB(t)

	old := &marketplace.MusicNFT{ID: "old", Title: "Old"}
	_, err := db.MusicNFTs().Save(ctx, old)
	require.NoError(t, err)

	fresh := &marketplace.MusicNFT{ID: "fresh", Title: "Fresh"}
	fresh.CreatedAt = old.CreatedAt.Add(time.Second)
	_, err = db.MusicNFTs().Save(ctx, fresh)
	require.NoError(t, err)

	recent, err := db.MusicNFTs().Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, "fresh", recent[0].ID)
}
