// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplace

import (
	"context"
	"time"
)

// Playlist is a user-curated collection of tracks.
type Playlist struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Visibility  Visibility `json:"visibility"`
	Featured    bool       `json:"featured"`
	CoverURL    string     `json:"coverUrl"`
	TrackIDs    []string   `json:"trackIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Playlists exposes methods to manage playlist records, their indexes and
// their relationship sets.
//
// architecture: Database
type Playlists interface {
	// Save creates or updates a playlist, assigning an ID when absent, and
	// keeps the owner's playlist set current.
	Save(ctx context.Context, playlist *Playlist) (*Playlist, error)
	// Get looks the playlist up by ID.
	Get(ctx context.Context, id string) (*Playlist, error)
	// Delete removes the playlist, its index memberships and its
	// relationship sets. Deleting an absent ID is a no-op success.
	Delete(ctx context.Context, id string) error

	// List enumerates playlists, paginated over the global collection.
	List(ctx context.Context, limit, offset int) ([]*Playlist, error)
	// ListByOwner enumerates playlists by owner.
	ListByOwner(ctx context.Context, owner string, limit, offset int) ([]*Playlist, error)
	// ListByCategory enumerates playlists in a category.
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]*Playlist, error)
	// ListByTag enumerates playlists carrying a tag.
	ListByTag(ctx context.Context, tag string, limit, offset int) ([]*Playlist, error)
	// ListByVisibility enumerates playlists in a visibility class.
	ListByVisibility(ctx context.Context, visibility Visibility, limit, offset int) ([]*Playlist, error)
	// ListFeatured enumerates featured playlists.
	ListFeatured(ctx context.Context, limit, offset int) ([]*Playlist, error)

	// Search scans all playlists for a case-insensitive substring match
	// over name, description and tags.
	Search(ctx context.Context, query string, limit int) ([]*Playlist, error)
	// MostPlayed returns up to limit playlists sorted by play count.
	MostPlayed(ctx context.Context, limit int) ([]*Playlist, error)
	// Recent returns up to limit playlists sorted by creation time, newest first.
	Recent(ctx context.Context, limit int) ([]*Playlist, error)

	// Like records that a user likes the playlist; Unlike removes it.
	Like(ctx context.Context, id, userID string) error
	Unlike(ctx context.Context, id, userID string) error
	// Likes returns the IDs of users who like the playlist.
	Likes(ctx context.Context, id string) ([]string, error)

	// Follow records a follower; Unfollow removes it.
	Follow(ctx context.Context, id, userID string) error
	Unfollow(ctx context.Context, id, userID string) error
	// Followers returns the IDs of users following the playlist.
	Followers(ctx context.Context, id string) ([]string, error)

	// AddListener records that a user has listened to the playlist.
	AddListener(ctx context.Context, id, userID string) error
	// Listeners returns the IDs of users who listened to the playlist.
	Listeners(ctx context.Context, id string) ([]string, error)

	// RecordPlay increments the playlist's play counter and returns it.
	RecordPlay(ctx context.Context, id string) (int64, error)
	// Plays returns the playlist's play counter.
	Plays(ctx context.Context, id string) (int64, error)
}
