// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package redis

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"

	"github.com/flowtune/flowtune/private/kvstore"
)

var (
	// Error is a redis error.
	Error = errs.Class("redis")

	mon = monkit.Package()
)

// Client is the entrypoint into Redis.
type Client struct {
	db *redis.Client
}

// OpenClient returns a configured Client instance, verifying a successful connection to redis.
func OpenClient(ctx context.Context, address, password string, db int) (*Client, error) {
	client := &Client{
		db: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}

	// ping here to verify we are able to connect to redis with the initialized client.
	if err := client.db.Ping(ctx).Err(); err != nil {
		_ = client.db.Close()
		return nil, Error.New("ping failed: %v", err)
	}

	return client, nil
}

// OpenClientFrom returns a configured Client instance from a redis address, verifying a successful connection to redis.
func OpenClientFrom(ctx context.Context, address string) (*Client, error) {
	redisurl, err := url.Parse(address)
	if err != nil {
		return nil, err
	}

	if redisurl.Scheme != "redis" {
		return nil, Error.New("not a redis:// formatted address")
	}

	q := redisurl.Query()

	db := 0
	if dbs := q.Get("db"); dbs != "" {
		db, err = strconv.Atoi(dbs)
		if err != nil {
			return nil, err
		}
	}

	return OpenClient(ctx, redisurl.Host, q.Get("password"), db)
}

// Get looks up the provided key from redis returning either an error or the result.
func (client *Client) Get(ctx context.Context, key kvstore.Key) (_ kvstore.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}
	return get(ctx, client.db, key)
}

// Put adds a value to the provided key in redis with no expiry, returning an error on failure.
func (client *Client) Put(ctx context.Context, key kvstore.Key, value kvstore.Value) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}
	return put(ctx, client.db, key, value, 0)
}

// PutTTL adds a value to the provided key in redis with an expiry horizon.
func (client *Client) PutTTL(ctx context.Context, key kvstore.Key, value kvstore.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}
	return put(ctx, client.db, key, value, ttl)
}

// Delete deletes a key/value pair from redis, for a given the key.
func (client *Client) Delete(ctx context.Context, key kvstore.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}
	err = client.db.Del(ctx, key.String()).Err()
	if err != nil {
		return Error.New("delete error: %v", err)
	}
	return nil
}

// Exists reports whether key is present in redis.
func (client *Client) Exists(ctx context.Context, key kvstore.Key) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return false, kvstore.ErrEmptyKey.New("")
	}
	n, err := client.db.Exists(ctx, key.String()).Result()
	if err != nil {
		return false, Error.New("exists error: %v", err)
	}
	return n > 0, nil
}

// IncrBy increments the value stored in key by the specified amount and
// returns the new value. The key is created at amount when absent.
func (client *Client) IncrBy(ctx context.Context, key kvstore.Key, amount int64) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}
	value, err := client.db.IncrBy(ctx, key.String(), amount).Result()
	if err != nil {
		return 0, Error.New("incrby error: %v", err)
	}
	return value, nil
}

// SetAdd adds members to the set stored at key and returns how many were not
// already present.
func (client *Client) SetAdd(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}
	if len(members) == 0 {
		return 0, nil
	}
	added, err := client.db.SAdd(ctx, key.String(), byteSlices(members)...).Result()
	if err != nil {
		return 0, Error.New("sadd error: %v", err)
	}
	return added, nil
}

// SetMembers returns all members of the set stored at key.
func (client *Client) SetMembers(ctx context.Context, key kvstore.Key) (_ kvstore.Values, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}
	members, err := client.db.SMembers(ctx, key.String()).Result()
	if err != nil {
		return nil, Error.New("smembers error: %v", err)
	}
	values := make(kvstore.Values, 0, len(members))
	for _, member := range members {
		values = append(values, kvstore.Value(member))
	}
	return values, nil
}

// SetRemove removes members from the set stored at key and returns how many
// were present.
func (client *Client) SetRemove(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}
	if len(members) == 0 {
		return 0, nil
	}
	removed, err := client.db.SRem(ctx, key.String(), byteSlices(members)...).Result()
	if err != nil {
		return 0, Error.New("srem error: %v", err)
	}
	return removed, nil
}

// Keys returns all keys matching a redis-style glob pattern.
func (client *Client) Keys(ctx context.Context, pattern string) (_ kvstore.Keys, err error) {
	defer mon.Task()(&ctx)(&err)

	it := client.db.Scan(ctx, 0, pattern, 0).Iterator()

	var keys kvstore.Keys
	seen := make(map[string]struct{})
	for it.Next(ctx) {
		key := it.Val()
		// redis may return duplicates
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, kvstore.Key(key))
	}
	if err := it.Err(); err != nil {
		return nil, Error.New("scan error: %v", err)
	}
	return keys, nil
}

// FlushAll deletes all keys in the currently selected DB.
func (client *Client) FlushAll(ctx context.Context) error {
	_, err := client.db.FlushDB(ctx).Result()
	return Error.Wrap(err)
}

// Close closes a redis client.
func (client *Client) Close() error {
	return client.db.Close()
}

func get(ctx context.Context, cmdable redis.Cmdable, key kvstore.Key) (_ kvstore.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	value, err := cmdable.Get(ctx, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kvstore.ErrKeyNotFound.New("%q", key)
	}
	if err != nil {
		return nil, Error.New("get error: %v", err)
	}
	return value, nil
}

func put(ctx context.Context, cmdable redis.Cmdable, key kvstore.Key, value kvstore.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	if ttl < 0 {
		ttl = 0
	}
	err = cmdable.Set(ctx, key.String(), []byte(value), ttl).Err()
	if err != nil {
		return Error.New("put error: %v", err)
	}
	return nil
}

func byteSlices(members []kvstore.Value) []interface{} {
	args := make([]interface{}, 0, len(members))
	for _, member := range members {
		args = append(args, []byte(member))
	}
	return args
}
