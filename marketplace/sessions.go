// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplace

import (
	"context"
	"time"
)

// DefaultSessionTTL is how long a session stays valid unless the caller
// specifies otherwise.
const DefaultSessionTTL = 3600 * time.Second

// Session is an ephemeral login session. It disappears automatically once
// its expiry horizon passes.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	Wallet    string    `json:"wallet"`
	CreatedAt time.Time `json:"createdAt"`
}

// Sessions exposes methods to manage ephemeral session records.
//
// architecture: Database
type Sessions interface {
	// Create stores a session with the given time-to-live, assigning a
	// token when absent. A non-positive ttl uses DefaultSessionTTL.
	Create(ctx context.Context, session *Session, ttl time.Duration) (*Session, error)
	// Get looks the session up by token; expired sessions are not found.
	Get(ctx context.Context, token string) (*Session, error)
	// Delete removes the session. Deleting an absent token is a no-op success.
	Delete(ctx context.Context, token string) error
}
