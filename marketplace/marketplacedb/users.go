// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flowtune/flowtune/marketplace"
)

// users implements marketplace.Users.
type users struct {
	db *DB
}

// Save creates or updates a user. The primary record write is fatal on
// failure; alias and index maintenance is best-effort.
func (repo *users) Save(ctx context.Context, user *marketplace.User) (_ *marketplace.User, err error) {
	defer mon.Task()(&ctx)(&err)
	if user == nil {
		return nil, Error.New("nil user")
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	unlock := repo.db.locks.Lock(recordKey(kindUser, user.ID).String())
	defer unlock()

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if err := repo.db.putRecord(ctx, kindUser, user.ID, user); err != nil {
		return nil, err
	}

	repo.db.putAlias(ctx, kindUser, "email", user.Email, user.ID)
	repo.db.putAlias(ctx, kindUser, "username", user.Username, user.ID)
	repo.db.putAlias(ctx, kindUser, "wallet", user.Wallet, user.ID)
	repo.db.indexAdd(ctx, collectionKey(kindUser), user.ID)

	return user, nil
}

// Get looks the user up by ID.
func (repo *users) Get(ctx context.Context, id string) (_ *marketplace.User, err error) {
	defer mon.Task()(&ctx)(&err)

	var user marketplace.User
	if err := repo.db.getRecord(ctx, kindUser, id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail resolves the email alias.
func (repo *users) GetByEmail(ctx context.Context, email string) (*marketplace.User, error) {
	return repo.getByAlias(ctx, "email", email)
}

// GetByUsername resolves the username alias.
func (repo *users) GetByUsername(ctx context.Context, username string) (*marketplace.User, error) {
	return repo.getByAlias(ctx, "username", username)
}

// GetByWallet resolves the wallet-address alias.
func (repo *users) GetByWallet(ctx context.Context, wallet string) (*marketplace.User, error) {
	return repo.getByAlias(ctx, "wallet", wallet)
}

func (repo *users) getByAlias(ctx context.Context, field, value string) (_ *marketplace.User, err error) {
	defer mon.Task()(&ctx)(&err)

	id, ok := repo.db.resolveAlias(ctx, kindUser, field, value)
	if !ok {
		return nil, marketplace.ErrNotFound.New("user with %s %q", field, value)
	}
	return repo.Get(ctx, id)
}

// Delete removes the user, its aliases and its index memberships. Deleting
// an absent ID is a no-op success.
func (repo *users) Delete(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if id == "" {
		return nil
	}

	unlock := repo.db.locks.Lock(recordKey(kindUser, id).String())
	defer unlock()

	user, err := repo.Get(ctx, id)
	if err != nil {
		// already gone counts as deleted
		return nil
	}

	repo.db.indexRemove(ctx, collectionKey(kindUser), id)
	repo.db.deleteAlias(ctx, kindUser, "email", user.Email, id)
	repo.db.deleteAlias(ctx, kindUser, "username", user.Username, id)
	repo.db.deleteAlias(ctx, kindUser, "wallet", user.Wallet, id)
	repo.db.deleteKey(ctx, relationKey(kindUser, id, relPlaylists))

	return Error.Wrap(repo.db.kv.Delete(ctx, recordKey(kindUser, id)))
}

// List enumerates users, paginating the ID list before hydration.
func (repo *users) List(ctx context.Context, limit, offset int) (_ []*marketplace.User, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, collectionKey(kindUser), limit, offset)), nil
}

// Search scans all users for a case-insensitive substring match.
func (repo *users) Search(ctx context.Context, query string, limit int) (_ []*marketplace.User, err error) {
	defer mon.Task()(&ctx)(&err)

	needle := strings.ToLower(query)
	var found []*marketplace.User
	for _, id := range repo.db.indexIDs(ctx, collectionKey(kindUser)) {
		if limit > 0 && len(found) >= limit {
			break
		}
		user, err := repo.Get(ctx, id)
		if err != nil {
			continue
		}
		if containsFold(user.Username, needle) ||
			containsFold(user.DisplayName, needle) ||
			containsFold(user.Bio, needle) {
			found = append(found, user)
		}
	}
	return found, nil
}

// PlaylistIDs returns the IDs of playlists owned by the user.
func (repo *users) PlaylistIDs(ctx context.Context, id string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.db.members(ctx, relationKey(kindUser, id, relPlaylists)), nil
}

// hydrate resolves IDs into records, filtering out ones that no longer load.
func (repo *users) hydrate(ctx context.Context, ids []string) []*marketplace.User {
	records := make([]*marketplace.User, 0, len(ids))
	for _, id := range ids {
		user, err := repo.Get(ctx, id)
		if err != nil {
			continue
		}
		records = append(records, user)
	}
	return records
}
