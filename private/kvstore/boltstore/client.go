// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package boltstore implements kvstore.Store on a bbolt database file. It is
// the durable alternative to the file mirror for fallback mode: same expiry
// envelope, same emulated set semantics, single file on disk.
package boltstore

import (
	"context"
	"encoding/json"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/errs"
	bolt "go.etcd.io/bbolt"

	"github.com/flowtune/flowtune/private/kvstore"
)

var (
	// Error is a boltstore error.
	Error = errs.Class("boltstore")

	mon = monkit.Package()
)

var defaultTimeout = 1 * time.Second

const (
	// fileMode sets permissions so owner can read and write.
	fileMode   = 0600
	bucketName = "records"
)

// envelope wraps a stored value with its expiry horizon.
type envelope struct {
	Value   []byte `msgpack:"value"`
	Expires int64  `msgpack:"expires,omitempty"`
}

// Client is the storage interface for the Bolt database.
type Client struct {
	db   *bolt.DB
	Path string
}

// Open instantiates a new boltstore client at path.
func Open(path string) (*Client, error) {
	db, err := bolt.Open(path, fileMode, &bolt.Options{Timeout: defaultTimeout})
	if err != nil {
		return nil, Error.Wrap(err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, Error.Wrap(err)
	}

	return &Client{db: db, Path: path}, nil
}

// Put adds a value to the store with no expiry.
func (client *Client) Put(ctx context.Context, key kvstore.Key, value kvstore.Value) (err error) {
	defer mon.Task()(&ctx)(&err)
	return client.put(key, value, 0)
}

// PutTTL adds a value with an expiry horizon.
func (client *Client) PutTTL(ctx context.Context, key kvstore.Key, value kvstore.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	return client.put(key, value, ttl)
}

// Get looks up key, treating expired entries as absent.
func (client *Client) Get(ctx context.Context, key kvstore.Key) (_ kvstore.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	var value kvstore.Value
	err = client.db.Update(func(tx *bolt.Tx) error {
		env, err := getEnvelope(tx, key)
		if err != nil {
			return err
		}
		value = kvstore.CloneValue(env.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete deletes key and the value. Deleting an absent key is not an error.
func (client *Client) Delete(ctx context.Context, key kvstore.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}
	return Error.Wrap(client.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Delete(key)
	}))
}

// Exists reports whether key is present and unexpired.
func (client *Client) Exists(ctx context.Context, key kvstore.Key) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return false, kvstore.ErrEmptyKey.New("")
	}

	exists := false
	err = client.db.Update(func(tx *bolt.Tx) error {
		_, err := getEnvelope(tx, key)
		if kvstore.ErrKeyNotFound.Has(err) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	return exists, err
}

// IncrBy increments the integer stored at key inside one transaction.
func (client *Client) IncrBy(ctx context.Context, key kvstore.Key, amount int64) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}

	var current int64
	err = client.db.Update(func(tx *bolt.Tx) error {
		env, err := getEnvelope(tx, key)
		switch {
		case err == nil:
			current, err = strconv.ParseInt(strings.TrimSpace(string(env.Value)), 10, 64)
			if err != nil {
				return Error.New("value at %q is not an integer", key)
			}
		case kvstore.ErrKeyNotFound.Has(err):
			current = 0
		default:
			return err
		}

		current += amount
		return putEnvelope(tx, key, envelope{Value: []byte(strconv.FormatInt(current, 10))})
	})
	if err != nil {
		return 0, err
	}
	return current, nil
}

// SetAdd emulates set membership over a serialized list value.
func (client *Client) SetAdd(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}
	if len(members) == 0 {
		return 0, nil
	}

	var added int64
	err = client.db.Update(func(tx *bolt.Tx) error {
		list, err := getList(tx, key)
		if err != nil {
			return err
		}

		present := make(map[string]struct{}, len(list))
		for _, member := range list {
			present[member] = struct{}{}
		}
		for _, member := range members {
			if _, ok := present[string(member)]; ok {
				continue
			}
			present[string(member)] = struct{}{}
			list = append(list, string(member))
			added++
		}

		if added == 0 {
			return nil
		}
		return putList(tx, key, list)
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

// SetMembers returns the emulated set stored at key.
func (client *Client) SetMembers(ctx context.Context, key kvstore.Key) (_ kvstore.Values, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	var values kvstore.Values
	err = client.db.Update(func(tx *bolt.Tx) error {
		list, err := getList(tx, key)
		if err != nil {
			return err
		}
		values = make(kvstore.Values, 0, len(list))
		for _, member := range list {
			values = append(values, kvstore.Value(member))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// SetRemove removes members from the emulated set stored at key.
func (client *Client) SetRemove(ctx context.Context, key kvstore.Key, members ...kvstore.Value) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}
	if len(members) == 0 {
		return 0, nil
	}

	var removed int64
	err = client.db.Update(func(tx *bolt.Tx) error {
		list, err := getList(tx, key)
		if err != nil {
			return err
		}

		drop := make(map[string]struct{}, len(members))
		for _, member := range members {
			drop[string(member)] = struct{}{}
		}

		kept := list[:0]
		for _, member := range list {
			if _, ok := drop[member]; ok {
				removed++
				continue
			}
			kept = append(kept, member)
		}

		if removed == 0 {
			return nil
		}
		if len(kept) == 0 {
			return tx.Bucket([]byte(bucketName)).Delete(key)
		}
		return putList(tx, key, kept)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Keys returns all keys matching a glob pattern, skipping expired entries.
func (client *Client) Keys(ctx context.Context, pattern string) (_ kvstore.Keys, err error) {
	defer mon.Task()(&ctx)(&err)

	now := time.Now().Unix()
	var keys kvstore.Keys
	err = client.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			ok, err := path.Match(pattern, string(k))
			if err != nil {
				return Error.New("bad pattern %q: %v", pattern, err)
			}
			if !ok {
				return nil
			}

			var env envelope
			if err := msgpack.Unmarshal(v, &env); err != nil {
				return Error.New("corrupt record at %q: %v", k, err)
			}
			if env.Expires > 0 && now >= env.Expires {
				return nil
			}
			keys = append(keys, kvstore.CloneKey(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// FlushAll wipes all data. Used only by test harnesses.
func (client *Client) FlushAll(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)
	return Error.Wrap(client.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	}))
}

// Close closes the bolt database.
func (client *Client) Close() error {
	return Error.Wrap(client.db.Close())
}

func (client *Client) put(key kvstore.Key, value kvstore.Value, ttl time.Duration) error {
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	env := envelope{Value: value}
	if ttl > 0 {
		env.Expires = time.Now().Add(ttl).Unix()
	}
	return client.db.Update(func(tx *bolt.Tx) error {
		return putEnvelope(tx, key, env)
	})
}

// getEnvelope loads key inside tx, lazily deleting expired entries. It runs
// in an update transaction so the lazy delete can happen in place.
func getEnvelope(tx *bolt.Tx, key kvstore.Key) (envelope, error) {
	bucket := tx.Bucket([]byte(bucketName))
	data := bucket.Get(key)
	if data == nil {
		return envelope{}, kvstore.ErrKeyNotFound.New("%q", key)
	}

	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return envelope{}, Error.New("corrupt record at %q: %v", key, err)
	}
	if env.Expires > 0 && time.Now().Unix() >= env.Expires {
		if err := bucket.Delete(key); err != nil {
			return envelope{}, Error.Wrap(err)
		}
		return envelope{}, kvstore.ErrKeyNotFound.New("%q", key)
	}
	return env, nil
}

func putEnvelope(tx *bolt.Tx, key kvstore.Key, env envelope) error {
	data, err := msgpack.Marshal(env)
	if err != nil {
		return Error.New("encode error: %v", err)
	}
	return tx.Bucket([]byte(bucketName)).Put(key, data)
}

func getList(tx *bolt.Tx, key kvstore.Key) ([]string, error) {
	env, err := getEnvelope(tx, key)
	if kvstore.ErrKeyNotFound.Has(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(env.Value, &list); err != nil {
		return nil, Error.New("value at %q is not a list", key)
	}
	return list, nil
}

func putList(tx *bolt.Tx, key kvstore.Key, list []string) error {
	value, err := json.Marshal(list)
	if err != nil {
		return Error.New("encode error: %v", err)
	}
	return putEnvelope(tx, key, envelope{Value: value})
}
