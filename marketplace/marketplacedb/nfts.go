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
)

// nfts implements marketplace.MusicNFTs.
type nfts struct {
	db *DB
}

// Save creates or updates a track and re-applies every index membership it
// currently qualifies for.
func (repo *nfts) Save(ctx context.Context, nft *marketplace.MusicNFT) (_ *marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	if nft == nil {
		return nil, Error.New("nil nft")
	}

	if nft.ID == "" {
		nft.ID = uuid.NewString()
	}
	if nft.Visibility == "" {
		nft.Visibility = marketplace.VisibilityPublic
	}
	unlock := repo.db.locks.Lock(recordKey(kindNFT, nft.ID).String())
	defer unlock()

	now := time.Now().UTC()
	if nft.CreatedAt.IsZero() {
		nft.CreatedAt = now
	}
	nft.UpdatedAt = now

	if err := repo.db.putRecord(ctx, kindNFT, nft.ID, nft); err != nil {
		return nil, err
	}

	repo.db.putAlias(ctx, kindNFT, "token", nft.TokenID, nft.ID)
	repo.db.indexAdd(ctx, collectionKey(kindNFT), nft.ID)
	if nft.Owner != "" {
		repo.db.indexAdd(ctx, indexKey(kindNFT, dimOwner, nft.Owner), nft.ID)
	}
	if nft.Category != "" {
		repo.db.indexAdd(ctx, indexKey(kindNFT, dimCategory, nft.Category), nft.ID)
	}
	for _, tag := range nft.Tags {
		repo.db.indexAdd(ctx, indexKey(kindNFT, dimTag, tag), nft.ID)
	}
	repo.db.indexAdd(ctx, indexKey(kindNFT, dimVisibility, string(nft.Visibility)), nft.ID)
	if nft.Featured {
		repo.db.indexAdd(ctx, featuredKey(kindNFT), nft.ID)
	}

	return nft, nil
}

// Get looks the track up by ID.
func (repo *nfts) Get(ctx context.Context, id string) (_ *marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)

	var nft marketplace.MusicNFT
	if err := repo.db.getRecord(ctx, kindNFT, id, &nft); err != nil {
		return nil, err
	}
	return &nft, nil
}

// GetByToken resolves the mint token alias.
func (repo *nfts) GetByToken(ctx context.Context, tokenID string) (_ *marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)

	id, ok := repo.db.resolveAlias(ctx, kindNFT, "token", tokenID)
	if !ok {
		return nil, marketplace.ErrNotFound.New("musicnft with token %q", tokenID)
	}
	return repo.Get(ctx, id)
}

// Delete loads the track to learn its current index memberships, strips it
// from every dimension, then removes the primary record. Idempotent.
func (repo *nfts) Delete(ctx context.Context, id string) (err error) {
	defer mon.Task()(&ctx)(&err)
	if id == "" {
		return nil
	}

	unlock := repo.db.locks.Lock(recordKey(kindNFT, id).String())
	defer unlock()

	nft, err := repo.Get(ctx, id)
	if err != nil {
		// already gone counts as deleted
		return nil
	}

	repo.db.indexRemove(ctx, collectionKey(kindNFT), id)
	if nft.Owner != "" {
		repo.db.indexRemove(ctx, indexKey(kindNFT, dimOwner, nft.Owner), id)
	}
	if nft.Category != "" {
		repo.db.indexRemove(ctx, indexKey(kindNFT, dimCategory, nft.Category), id)
	}
	for _, tag := range nft.Tags {
		repo.db.indexRemove(ctx, indexKey(kindNFT, dimTag, tag), id)
	}
	repo.db.indexRemove(ctx, indexKey(kindNFT, dimVisibility, string(nft.Visibility)), id)
	if nft.Featured {
		repo.db.indexRemove(ctx, featuredKey(kindNFT), id)
	}
	repo.db.deleteAlias(ctx, kindNFT, "token", nft.TokenID, id)
	repo.db.deleteKey(ctx, relationKey(kindNFT, id, relPlays))

	return Error.Wrap(repo.db.kv.Delete(ctx, recordKey(kindNFT, id)))
}

// List enumerates tracks, paginating the ID list before hydration.
func (repo *nfts) List(ctx context.Context, limit, offset int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, collectionKey(kindNFT), limit, offset)), nil
}

// ListByOwner enumerates tracks by owner wallet.
func (repo *nfts) ListByOwner(ctx context.Context, owner string, limit, offset int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindNFT, dimOwner, owner), limit, offset)), nil
}

// ListByCategory enumerates tracks in a category.
func (repo *nfts) ListByCategory(ctx context.Context, category string, limit, offset int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindNFT, dimCategory, category), limit, offset)), nil
}

// ListByTag enumerates tracks carrying a tag.
func (repo *nfts) ListByTag(ctx context.Context, tag string, limit, offset int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindNFT, dimTag, tag), limit, offset)), nil
}

// ListByVisibility enumerates tracks in a visibility class.
func (repo *nfts) ListByVisibility(ctx context.Context, visibility marketplace.Visibility, limit, offset int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, indexKey(kindNFT, dimVisibility, string(visibility)), limit, offset)), nil
}

// ListFeatured enumerates featured tracks.
func (repo *nfts) ListFeatured(ctx context.Context, limit, offset int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.hydrate(ctx, repo.db.indexPage(ctx, featuredKey(kindNFT), limit, offset)), nil
}

// Search scans the global collection and keeps substring matches. There is
// no inverted index; this is O(n) by design.
func (repo *nfts) Search(ctx context.Context, query string, limit int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)

	needle := strings.ToLower(query)
	var found []*marketplace.MusicNFT
	for _, id := range repo.db.indexIDs(ctx, collectionKey(kindNFT)) {
		if limit > 0 && len(found) >= limit {
			break
		}
		nft, err := repo.Get(ctx, id)
		if err != nil {
			continue
		}
		if containsFold(nft.Title, needle) ||
			containsFold(nft.Artist, needle) ||
			containsFold(nft.Description, needle) ||
			anyContainsFold(nft.Tags, needle) {
			found = append(found, nft)
		}
	}
	return found, nil
}

// MostPlayed hydrates the global collection and sorts client-side by play
// counter; there is no precomputed sorted index.
func (repo *nfts) MostPlayed(ctx context.Context, limit int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)

	records := repo.hydrate(ctx, repo.db.indexIDs(ctx, collectionKey(kindNFT)))
	plays := make(map[string]int64, len(records))
	for _, nft := range records {
		plays[nft.ID] = repo.db.counter(ctx, relationKey(kindNFT, nft.ID, relPlays))
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
func (repo *nfts) Recent(ctx context.Context, limit int) (_ []*marketplace.MusicNFT, err error) {
	defer mon.Task()(&ctx)(&err)

	records := repo.hydrate(ctx, repo.db.indexIDs(ctx, collectionKey(kindNFT)))
	sort.SliceStable(records, func(i, k int) bool {
		return records[i].CreatedAt.After(records[k].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// RecordPlay increments the track's play counter.
func (repo *nfts) RecordPlay(ctx context.Context, id string) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	n, err := repo.db.kv.IncrBy(ctx, relationKey(kindNFT, id, relPlays), 1)
	return n, Error.Wrap(err)
}

// Plays returns the track's play counter.
func (repo *nfts) Plays(ctx context.Context, id string) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	return repo.db.counter(ctx, relationKey(kindNFT, id, relPlays)), nil
}

func (repo *nfts) hydrate(ctx context.Context, ids []string) []*marketplace.MusicNFT {
	records := make([]*marketplace.MusicNFT, 0, len(ids))
	for _, id := range ids {
		nft, err := repo.Get(ctx, id)
		if err != nil {
			continue
		}
		records = append(records, nft)
	}
	return records
}
