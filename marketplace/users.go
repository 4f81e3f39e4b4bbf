// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplace

import (
	"context"
	"time"
)

// User is a marketplace account. Wallet, username and email are unique
// alias fields resolvable in O(1).
type User struct {
	ID          string    `json:"id"`
	Wallet      string    `json:"wallet"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatarUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Users exposes methods to manage account records.
//
// architecture: Database
type Users interface {
	// Save creates or updates a user, assigning an ID when absent.
	Save(ctx context.Context, user *User) (*User, error)
	// Get looks the user up by ID.
	Get(ctx context.Context, id string) (*User, error)
	// GetByEmail resolves the email alias.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByUsername resolves the username alias.
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByWallet resolves the wallet-address alias.
	GetByWallet(ctx context.Context, wallet string) (*User, error)
	// Delete removes the user and all its index memberships. Deleting an
	// absent ID is a no-op success.
	Delete(ctx context.Context, id string) error
	// List enumerates users, paginated over the global collection.
	List(ctx context.Context, limit, offset int) ([]*User, error)
	// Search scans all users for a case-insensitive substring match over
	// username, display name and bio.
	Search(ctx context.Context, query string, limit int) ([]*User, error)
	// PlaylistIDs returns the IDs of playlists owned by the user.
	PlaylistIDs(ctx context.Context, id string) ([]string, error)
}
