// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplace

import (
	"context"
	"time"
)

// MusicNFT is a minted track listed on the marketplace. Audio and cover art
// live on a pinning service and are referenced by content ID.
type MusicNFT struct {
	ID          string     `json:"id"`
	TokenID     string     `json:"tokenId"`
	Owner       string     `json:"owner"`
	Creator     string     `json:"creator"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Visibility  Visibility `json:"visibility"`
	Featured    bool       `json:"featured"`
	AudioCID    string     `json:"audioCid"`
	CoverCID    string     `json:"coverCid"`
	Price       string     `json:"price"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// MusicNFTs exposes methods to manage track records and their indexes.
//
// architecture: Database
type MusicNFTs interface {
	// Save creates or updates a track, assigning an ID when absent.
	Save(ctx context.Context, nft *MusicNFT) (*MusicNFT, error)
	// Get looks the track up by ID.
	Get(ctx context.Context, id string) (*MusicNFT, error)
	// GetByToken resolves the mint token alias.
	GetByToken(ctx context.Context, tokenID string) (*MusicNFT, error)
	// Delete removes the track and all its index memberships. Deleting an
	// absent ID is a no-op success.
	Delete(ctx context.Context, id string) error

	// List enumerates tracks, paginated over the global collection.
	List(ctx context.Context, limit, offset int) ([]*MusicNFT, error)
	// ListByOwner enumerates tracks by owner wallet.
	ListByOwner(ctx context.Context, owner string, limit, offset int) ([]*MusicNFT, error)
	// ListByCategory enumerates tracks in a category.
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]*MusicNFT, error)
	// ListByTag enumerates tracks carrying a tag.
	ListByTag(ctx context.Context, tag string, limit, offset int) ([]*MusicNFT, error)
	// ListByVisibility enumerates tracks in a visibility class.
	ListByVisibility(ctx context.Context, visibility Visibility, limit, offset int) ([]*MusicNFT, error)
	// ListFeatured enumerates featured tracks.
	ListFeatured(ctx context.Context, limit, offset int) ([]*MusicNFT, error)

	// Search scans all tracks for a case-insensitive substring match over
	// title, artist, description and tags.
	Search(ctx context.Context, query string, limit int) ([]*MusicNFT, error)
	// MostPlayed returns up to limit tracks sorted by play count.
	MostPlayed(ctx context.Context, limit int) ([]*MusicNFT, error)
	// Recent returns up to limit tracks sorted by creation time, newest first.
	Recent(ctx context.Context, limit int) ([]*MusicNFT, error)

	// RecordPlay increments the track's play counter and returns it.
	RecordPlay(ctx context.Context, id string) (int64, error)
	// Plays returns the track's play counter.
	Plays(ctx context.Context, id string) (int64, error)
}
