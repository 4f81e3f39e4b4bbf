// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"go.uber.org/zap"

	"github.com/flowtune/flowtune/private/kvstore"
)

var mon = monkit.Package()

var id int64

// Logger implements a zap.Logger for kvstore.Store.
type Logger struct {
	log   *zap.Logger
	store kvstore.Store
}

// New creates a new Logger with log and store.
func New(log *zap.Logger, store kvstore.Store) *Logger {
	loggerid := atomic.AddInt64(&id, 1)
	name := strconv.Itoa(int(loggerid))
	return &Logger{log.Named(name), store}
}

// Put adds a value to store.
func (store *Logger) Put(ctx context.Context, key kvstore.Key, value kvstore.Value) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Put", zap.ByteString("key", key), zap.Int("value length", len(value)), zap.Binary("truncated value", truncate(value)))
	return store.store.Put(ctx, key, value)
}

// PutTTL adds a value to store with an expiry horizon.
func (store *Logger) PutTTL(ctx context.Context, key kvstore.Key, value kvstore.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("PutTTL", zap.ByteString("key", key), zap.Duration("ttl", ttl), zap.Int("value length", len(value)), zap.Binary("truncated value", truncate(value)))
	return store.store.PutTTL(ctx, key, value, ttl)
}

// Get gets a value to store.
func (store *Logger) Get(ctx context.Context, key kvstore.Key) (_ kvstore.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Get", zap.ByteString("key", key))
	return store.store.Get(ctx, key)
}

// Delete deletes key and the value.
func (store *Logger) Delete(ctx context.Context, key kvstore.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Delete", zap.ByteString("key", key))
	return store.store.Delete(ctx, key)
}

// Exists reports whether key is present.
func (store *Logger) Exists(ctx context.Context, key kvstore.Key) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("Exists", zap.ByteString("key", key))
	return store.store.Exists(ctx, key)
}

// IncrBy increments the integer stored at key by amount.
func (store *Logger) IncrBy(ctx context.Context, key kvstore.Key, amount int64) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("IncrBy", zap.ByteString("key", key), zap.Int64("amount", amount))
	return store.store.IncrBy(ctx, key, amount)
}

// SetAdd adds members to the set stored at key.
func (store *Logger) SetAdd(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("SetAdd", zap.ByteString("key", key), zap.Int("members", len(members)))
	return store.store.SetAdd(ctx, key, members...)
}

// SetMembers returns all members of the set stored at key.
func (store *Logger) SetMembers(ctx context.Context, key kvstore.Key) (_ kvstore.Values, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("SetMembers", zap.ByteString("key", key))
	return store.store.SetMembers(ctx, key)
}

// SetRemove removes members from the set stored at key.
func (store *Logger) SetRemove(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("SetRemove", zap.ByteString("key", key), zap.Int("members", len(members)))
	return store.store.SetRemove(ctx, key, members...)
}

// Keys returns all keys matching a glob pattern.
func (store *Logger) Keys(ctx context.Context, pattern string) (_ kvstore.Keys, err error) {
	defer mon.Task()(&ctx)(&err)
	keys, err := store.store.Keys(ctx, pattern)
	store.log.Debug("Keys", zap.String("pattern", pattern), zap.Strings("keys", keys.Strings()))
	return keys, err
}

// FlushAll wipes all data.
func (store *Logger) FlushAll(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	store.log.Debug("FlushAll")
	return store.store.FlushAll(ctx)
}

// Close closes the store.
func (store *Logger) Close() error {
	store.log.Debug("Close")
	return store.store.Close()
}

func truncate(v kvstore.Value) (t []byte) {
	if len(v)-1 < 10 {
		t = []byte(v)
	} else {
		t = v[:10]
	}
	return t
}
