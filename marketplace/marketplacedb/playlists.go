// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flowtune/flowtune/marketplace"
	"github.com/flowtune/flowtune/private/kvstore"
)

// playlists implements marketplace.Playlists.
type playlists struct {
	db *DB
}

// Save creates or updates a playlist, re-applies its index memberships and
// keeps the owner's playlist set current.
func (repo *playlists) Save(ctx context.Context, playlist *marketplace.Playlist) (_ *marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	if playlist == nil {
		return nil, Error.New("nil playlist")
	}

	if playlist.ID == "" {
		playlist.ID = uuid.NewString()
	}
	if playlist.Visibility == "" {
		playlist.Visibility = marketplace.VisibilityPublic
	}
	unlock := repo.db.locks.Lock(recordKey(kindPlaylist, playlist.ID).String())
	defer unlock()

	now := time.Now().UTC()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = now
	}
	playlist.UpdatedAt = now

	if err := repo.db.putRecord(ctx, kindPlaylist, playlist.ID, playlist); err != nil {
		return nil, err
	}

	repo.db.indexAdd(ctx, collectionKey(kindPlaylist), playlist.ID)
	if playlist.Owner != "" {
		repo.db.indexAdd(ctx, indexKey(kindPlaylist, dimOwner, playlist.Owner), playlist.ID)
		repo.db.indexAdd(ctx, relationKey(kindUser, playlist.Owner, relPlaylists), playlist.ID)
	}
	if playlist.Category != "" {
		repo.db.indexAdd(ctx, indexKey(kindPlaylist, dimCategory, playlist.Category), playlist.ID)
	}
	for _, tag := range playlist.Tags {
		repo.db.indexAdd(ctx, indexKey(kindPlaylist, dimTag, tag), playlist.ID)
	}
	repo.db.indexAdd(ctx, indexKey(kindPlaylist, dimVisibility, string(playlist.Visibility)), playlist.ID)
	if playlist.Featured {
		repo.db.indexAdd(ctx, featuredKey(kindPlaylist), playlist.ID)
	}

	return playlist, nil
}

// Get looks the playlist up by ID.
func (repo *playlists) Get(ctx context.Context, id string) (_ *marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)

	var playlist marketplace.Playlist
	if err := repo.db.getRecord(ctx, kindPlaylist, id, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// Delete strips the playlist from every index dimension and relationship it
// belongs to before removing the primary record. Idempotent.
func (repo *playlists) Delete(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if id == "" {
		return nil
	}

	unlock := repo.db.locks.Lock(recordKey(kindPlaylist, id).String())
	defer unlock()

	playlist, err := repo.Get(ctx, id)
	if err != nil {
		// already gone counts as deleted
		return nil
	}

	repo.db.indexRemove(ctx, collectionKey(kindPlaylist), id)
	if playlist.Owner != "" {
		repo.db.indexRemove(ctx, indexKey(kindPlaylist, dimOwner, playlist.Owner), id)
		repo.db.indexRemove(ctx, relationKey(kindUser, playlist.Owner, relPlaylists), id)
	}
	if playlist.Category != "" {
		repo.db.indexRemove(ctx, indexKey(kindPlaylist, dimCategory, playlist.Category), id)
	}
	for _, tag := range playlist.Tags {
		repo.db.indexRemove(ctx, indexKey(kindPlaylist, dimTag, tag), id)
	}
	repo.db.indexRemove(ctx, indexKey(kindPlaylist, dimVisibility, string(playlist.Visibility)), id)
	if playlist.Featured {
		repo.db.indexRemove(ctx, featuredKey(kindPlaylist), id)
	}

	// record-scoped relationship sets and counters go with the record
	repo.db.deleteKey(ctx, relationKey(kindPlaylist, id, relLikes))
	repo.db.deleteKey(ctx, relationKey(kindPlaylist, id, relFollowers))
	repo.db.deleteKey(ctx, relationKey(kindPlaylist, id, relListeners))
	repo.db.deleteKey(ctx, relationKey(kindPlaylist, id, relPlays))

	return Error.Wrap(repo.db.kv.Delete(ctx, recordKey(kindPlaylist, id)))
}

// List enumerates playlists, paginating the ID list before hydration.
func (repo *playlists) List(ctx context.Context, limit, offset int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, collectionKey(kindPlaylist), limit, offset)), nil
}

// ListByOwner enumerates playlists by owner.
func (repo *playlists) ListByOwner(ctx context.Context, owner string, limit, offset int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindPlaylist, dimOwner, owner), limit, offset)), nil
}

// ListByCategory enumerates playlists in a category.
func (repo *playlists) ListByCategory(ctx context.Context, category string, limit, offset int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindPlaylist, dimCategory, category), limit, offset)), nil
}

// ListByTag enumerates playlists carrying a tag.
func (repo *playlists) ListByTag(ctx context.Context, tag string, limit, offset int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindPlaylist, dimTag, tag), limit, offset)), nil
}

// ListByVisibility enumerates playlists in a visibility class.
func (repo *playlists) ListByVisibility(ctx context.Context, visibility marketplace.Visibility, limit, offset int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindPlaylist, dimVisibility, string(visibility)), limit, offset)), nil
}

// ListFeatured enumerates featured playlists.
func (repo *playlists) ListFeatured(ctx context.Context, limit, offset int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, featuredKey(kindPlaylist), limit, offset)), nil
}

// Search scans the global collection and keeps substring matches.
func (repo *playlists) Search(ctx context.Context, query string, limit int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)

	needle := strings.ToLower(query)
	var found []*marketplace.Playlist
	for _, id := range repo.db.indexIDs(ctx, collectionKey(kindPlaylist)) {
		if limit > 0 && len(found) >= limit {
			break
		}
		playlist, err := repo.Get(ctx, id)
		if err != nil {
			continue
		}
		if containsFold(playlist.Name, needle) ||
			containsFold(playlist.Description, needle) ||
			anyContainsFold(playlist.Tags, needle) {
			found = append(found, playlist)
		}
	}
	return found, nil
}

// MostPlayed hydrates the global collection and sorts by play counter.
func (repo *playlists) MostPlayed(ctx context.Context, limit int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)

	records := repo.hydrate(ctx, repo.db.indexIDs(ctx, collectionKey(kindPlaylist)))
	plays := make(map[string]int64, len(records))
	for _, playlist := range records {
		plays[playlist.ID] = repo.db.counter(ctx, relationKey(kindPlaylist, playlist.ID, relPlays))
	}
	sort.SliceStable(records, func(i, k int) bool {
		return plays[records[i].ID] > plays[records[k].ID]
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Recent hydrates the global collection and sorts newest first.
func (repo *playlists) Recent(ctx context.Context, limit int) (_ []*marketplace.Playlist, err error) {
	defer mon.Task()(&ctx)(&err)

	records := repo.hydrate(ctx, repo.db.indexIDs(ctx, collectionKey(kindPlaylist)))
	sort.SliceStable(records, func(i, k int) bool {
		return records[i].CreatedAt.After(records[k].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Like records that a user likes the playlist.
func (repo *playlists) Like(ctx context.Context, id, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.relate(ctx, id, relLikes, userID)
}

// Unlike removes a user's like.
func (repo *playlists) Unlike(ctx context.Context, id, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.unrelate(ctx, id, relLikes, userID)
}

// Likes returns the IDs of users who like the playlist.
func (repo *playlists) Likes(ctx context.Context, id string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.db.members(ctx, relationKey(kindPlaylist, id, relLikes)), nil
}

// Follow records a follower.
func (repo *playlists) Follow(ctx context.Context, id, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.relate(ctx, id, relFollowers, userID)
}

// Unfollow removes a follower.
func (repo *playlists) Unfollow(ctx context.Context, id, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.unrelate(ctx, id, relFollowers, userID)
}

// Followers returns the IDs of users following the playlist.
func (repo *playlists) Followers(ctx context.Context, id string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.db.members(ctx, relationKey(kindPlaylist, id, relFollowers)), nil
}

// AddListener records that a user has listened to the playlist.
func (repo *playlists) AddListener(ctx context.Context, id, userID string) (err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.relate(ctx, id, relListeners, userID)
}

// Listeners returns the IDs of users who listened to the playlist.
func (repo *playlists) Listeners(ctx context.Context, id string) (_ []string, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.db.members(ctx, relationKey(kindPlaylist, id, relListeners)), nil
}

// RecordPlay increments the playlist's play counter.
func (repo *playlists) RecordPlay(ctx context.Context, id string) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	n, err := repo.db.kv.IncrBy(ctx, relationKey(kindPlaylist, id, relPlays), 1)
	return n, Error.Wrap(err)
}

// Plays returns the playlist's play counter.
func (repo *playlists) Plays(ctx context.Context, id string) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.db.counter(ctx, relationKey(kindPlaylist, id, relPlays)), nil
}

func (repo *playlists) relate(ctx context.Context, id, rel, userID string) error {
	if id == "" || userID == "" {
		return Error.New("missing id")
	}
	_, err := repo.db.kv.SetAdd(ctx, relationKey(kindPlaylist, id, rel), kvstore.Value(userID))
	return Error.Wrap(err)
}

func (repo *playlists) unrelate(ctx context.Context, id, rel, userID string) error {
	if id == "" || userID == "" {
		return Error.New("missing id")
	}
	_, err := repo.db.kv.SetRemove(ctx, relationKey(kindPlaylist, id, rel), kvstore.Value(userID))
	return Error.Wrap(err)
}

func (repo *playlists) hydrate(ctx context.Context, ids []string) []*marketplace.Playlist {
	records := make([]*marketplace.Playlist, 0, len(ids))
	for _, id := range ids {
		playlist, err := repo.Get(ctx, id)
		if err != nil {
			continue
		}
		records = append(records, playlist)
	}
	return records
}
