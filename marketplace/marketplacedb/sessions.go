// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/flowtune/flowtune/marketplace"
	"github.com/flowtune/flowtune/private/kvstore"
)

// sessions implements marketplace.Sessions. Session records are ephemeral:
// the store expires them on its own, there is no index to maintain.
type sessions struct {
	db *DB
}

// Create stores a session with the given time-to-live.
func (repo *sessions) Create(ctx context.Context, session *marketplace.Session, ttl time.Duration) (_ *marketplace.Session, err error) {
	defer mon.Task()(&ctx)(&err)
	if session == nil {
		return nil, Error.New("nil session")
	}

	if session.Token == "" {
		session.Token = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if ttl <= 0 {
		ttl = marketplace.DefaultSessionTTL
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	if err := repo.db.kv.PutTTL(ctx, recordKey(kindSession, session.Token), data, ttl); err != nil {
		return nil, Error.Wrap(err)
	}
	return session, nil
}

// Get looks the session up by token; expired sessions are not found.
func (repo *sessions) Get(ctx context.Context, token string) (_ *marketplace.Session, err error) {
	defer mon.Task()(&ctx)(&err)
	if token == "" {
		return nil, marketplace.ErrNotFound.New("session without token")
	}

	data, err := repo.db.kv.Get(ctx, recordKey(kindSession, token))
	if err != nil {
		if !kvstore.ErrKeyNotFound.Has(err) {
			repo.db.log.Error("session read failed", zap.Error(err))
		}
		return nil, marketplace.ErrNotFound.New("session %q", token)
	}

	var session marketplace.Session
	if err := json.Unmarshal(data, &session); err != nil {
		repo.db.log.Error("malformed session record", zap.Error(err))
		return nil, marketplace.ErrNotFound.New("session %q", token)
	}
	return &session, nil
}

// Delete removes the session. Deleting an absent token is a no-op success.
func (repo *sessions) Delete(ctx context.Context, token string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if token == "" {
		return nil
	}
	return Error.Wrap(repo.db.kv.Delete(ctx, recordKey(kindSession, token)))
}
