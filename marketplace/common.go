// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package marketplace defines the persisted entities of the FlowTune music
// marketplace and the repository interfaces to store and query them.
package marketplace

import (
	"github.com/zeebo/errs"
)

// ErrNotFound is returned when a record does not exist or cannot be read.
var ErrNotFound = errs.Class("not found")

// Visibility is the visibility class of a record.
type Visibility string

// Visibility classes.
const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityUnlisted Visibility = "unlisted"
)

// DB gathers the marketplace repositories over one underlying store.
//
// architecture: Database
type DB interface {
	// Users returns the account repository.
	Users() Users
	// Playlists returns the play-collection repository.
	Playlists() Playlists
	// MusicNFTs returns the track repository.
	MusicNFTs() MusicNFTs
	// Sessions returns the ephemeral session repository.
	Sessions() Sessions
	// Close closes the underlying store.
	Close() error
}
