// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package marketplacedb implements the marketplace repositories over a
// kvstore.Store. Each repository keeps a record's primary key, its alias
// keys and its secondary index sets in lock-step: the primary write is the
// only fatal step of a save, index and alias maintenance is best-effort,
// and reads fail closed.
package marketplacedb

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/flowtune/flowtune/marketplace"
	"github.com/flowtune/flowtune/private/keylock"
	"github.com/flowtune/flowtune/private/kvstore"
)

var (
	// Error is a marketplacedb error.
	Error = errs.Class("marketplacedb")

	mon = monkit.Package()
)

// DB implements marketplace.DB over a kvstore.Store. Mutations on the same
// record ID are serialized through striped locks so concurrent saves cannot
// interleave their index updates.
type DB struct {
	log   *zap.Logger
	kv    kvstore.Store
	locks *keylock.Locks
}

var _ marketplace.DB = (*DB)(nil)

// Open returns a DB over the given store.
func Open(log *zap.Logger, kv kvstore.Store) *DB {
	return &DB{
		log:   log,
		kv:    kv,
		locks: keylock.New(),
	}
}

// Users returns the account repository.
func (db *DB) Users() marketplace.Users { return &users{db} }

// Playlists returns the play-collection repository.
func (db *DB) Playlists() marketplace.Playlists { return &playlists{db} }

// MusicNFTs returns the track repository.
func (db *DB) MusicNFTs() marketplace.MusicNFTs { return &nfts{db} }

// Sessions returns the ephemeral session repository.
func (db *DB) Sessions() marketplace.Sessions { return &sessions{db} }

// Close closes the underlying store.
func (db *DB) Close() error {
	return db.kv.Close()
}

// getRecord loads and decodes a primary record. Substrate errors are logged
// and reported as not found, per the availability-over-consistency choice.
func (db *DB) getRecord(ctx context.Context, kind, id string, target interface{}) error {
	if id == "" {
		return marketplace.ErrNotFound.New("%s without id", kind)
	}

	data, err := db.kv.Get(ctx, recordKey(kind, id))
	if err != nil {
		if !kvstore.ErrKeyNotFound.Has(err) {
			db.log.Error("record read failed",
				zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		}
		return marketplace.ErrNotFound.New("%s %q", kind, id)
	}

	if err := json.Unmarshal(data, target); err != nil {
		db.log.Error("malformed record",
			zap.String("kind", kind), zap.String("id", id), zap.Error(err))
		return marketplace.ErrNotFound.New("%s %q", kind, id)
	}
	return nil
}

// putRecord writes a primary record. This is the only fatal step of a save.
func (db *DB) putRecord(ctx context.Context, kind, id string, record interface{}) error {
	data, err := json.Marshal(record)
	if err != nil {
		return Error.Wrap(err)
	}
	return Error.Wrap(db.kv.Put(ctx, recordKey(kind, id), data))
}

// putAlias writes an alias key, best-effort. Overwriting a record's aliased
// field orphans the previous alias key.
func (db *DB) putAlias(ctx context.Context, kind, field, value, id string) {
	if value == "" {
		return
	}
	if err := db.kv.Put(ctx, aliasKey(kind, field, value), kvstore.Value(id)); err != nil {
		db.log.Warn("alias write failed",
			zap.String("kind", kind), zap.String("field", field), zap.Error(err))
	}
}

// resolveAlias resolves an alias key to a record ID, failing closed.
func (db *DB) resolveAlias(ctx context.Context, kind, field, value string) (string, bool) {
	if value == "" {
		return "", false
	}
	id, err := db.kv.Get(ctx, aliasKey(kind, field, value))
	if err != nil {
		if !kvstore.ErrKeyNotFound.Has(err) {
			db.log.Error("alias read failed",
				zap.String("kind", kind), zap.String("field", field), zap.Error(err))
		}
		return "", false
	}
	return string(id), true
}

// deleteAlias removes an alias key when it still points at id, best-effort.
func (db *DB) deleteAlias(ctx context.Context, kind, field, value, id string) {
	current, ok := db.resolveAlias(ctx, kind, field, value)
	if !ok || current != id {
		return
	}
	if err := db.kv.Delete(ctx, aliasKey(kind, field, value)); err != nil {
		db.log.Warn("alias delete failed",
			zap.String("kind", kind), zap.String("field", field), zap.Error(err))
	}
}

// indexAdd adds id to an index set, best-effort.
func (db *DB) indexAdd(ctx context.Context, key kvstore.Key, id string) {
	if _, err := db.kv.SetAdd(ctx, key, kvstore.Value(id)); err != nil {
		db.log.Warn("index update failed", zap.Stringer("key", key), zap.Error(err))
	}
}

// indexRemove strips id from an index set, best-effort.
func (db *DB) indexRemove(ctx context.Context, key kvstore.Key, id string) {
	if _, err := db.kv.SetRemove(ctx, key, kvstore.Value(id)); err != nil {
		db.log.Warn("index cleanup failed", zap.Stringer("key", key), zap.Error(err))
	}
}

// deleteKey removes a record-scoped auxiliary key, best-effort.
func (db *DB) deleteKey(ctx context.Context, key kvstore.Key) {
	if err := db.kv.Delete(ctx, key); err != nil {
		db.log.Warn("key delete failed", zap.Stringer("key", key), zap.Error(err))
	}
}

// indexIDs reads an index set and returns its member IDs in a stable sorted
// order. Read failures are logged and yield an empty enumeration.
func (db *DB) indexIDs(ctx context.Context, key kvstore.Key) []string {
	members, err := db.kv.SetMembers(ctx, key)
	if err != nil {
		db.log.Error("index read failed", zap.Stringer("key", key), zap.Error(err))
		return nil
	}
	ids := members.Strings()
	sort.Strings(ids)
	return ids
}

// indexPage paginates the ID list before hydration, so a page hydrates at
// most limit records.
func (db *DB) indexPage(ctx context.Context, key kvstore.Key, limit, offset int) []string {
	return paginate(db.indexIDs(ctx, key), limit, offset)
}

func paginate(ids []string, limit, offset int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// counter reads a play counter, failing closed to zero.
func (db *DB) counter(ctx context.Context, key kvstore.Key) int64 {
	value, err := db.kv.Get(ctx, key)
	if err != nil {
		if !kvstore.ErrKeyNotFound.Has(err) {
			db.log.Error("counter read failed", zap.Stringer("key", key), zap.Error(err))
		}
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
	if err != nil {
		db.log.Error("counter is not an integer", zap.Stringer("key", key), zap.Error(err))
		return 0
	}
	return n
}

// members reads a relationship set, failing closed to empty, sorted for
// stable output.
func (db *DB) members(ctx context.Context, key kvstore.Key) []string {
	return db.indexIDs(ctx, key)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func anyContainsFold(haystacks []string, needle string) bool {
	for _, haystack := range haystacks {
		if containsFold(haystack, needle) {
			return true
		}
	}
	return false
}
