// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package filecache implements the local fallback substrate: an in-process
// bounded cache with a default time-to-live in front of a durable per-key
// file mirror. Set-valued keys are not a native primitive here; they are
// emulated on top of single values as a serialized list.
package filecache

import (
	"context"
	"encoding/base32"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/flowtune/flowtune/private/kvstore"
)

var (
	// Error is a filecache error.
	Error = errs.Class("filecache")

	mon = monkit.Package()
)

const (
	// DefaultCacheTTL is how long cached entries stay valid when a write
	// does not specify an expiry of its own.
	DefaultCacheTTL = 600 * time.Second

	// DefaultCapacity bounds the in-process cache.
	DefaultCapacity = 1000

	fileMode = 0600
	dirMode  = 0700
)

// filenames are derived from keys so that any key is a valid path component.
var filenameEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// envelope wraps a stored value with its expiry horizon in the file mirror.
type envelope struct {
	Value   []byte `msgpack:"value"`
	Expires int64  `msgpack:"expires,omitempty"`
}

// Options configures a Client.
type Options struct {
	// Capacity is how many entries the in-process cache keeps.
	Capacity int
	// CacheTTL is the default time-to-live for cache entries.
	CacheTTL time.Duration
}

// Client implements kvstore.Store over a memory cache plus a file mirror
// under a data directory, one file per key.
type Client struct {
	log   *zap.Logger
	dir   string
	cache *memcache
	ttl   time.Duration

	// mu serializes all mirror access: emulated set operations stay
	// read-modify-write safe, and a Get can never re-insert into the cache
	// a value that a concurrent Delete already removed.
	mu sync.Mutex
}

// Open creates the data directory when absent and returns a Client over it.
func Open(log *zap.Logger, dir string, opts Options) (*Client, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, Error.New("unable to create data directory: %v", err)
	}

	return &Client{
		log:   log,
		dir:   dir,
		cache: newMemcache(opts.Capacity),
		ttl:   opts.CacheTTL,
	}, nil
}

// Get reads the in-process cache first, then the file mirror, repopulating
// the cache on a mirror hit.
func (client *Client) Get(ctx context.Context, key kvstore.Key) (_ kvstore.Value, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	if value, ok := client.cache.Get(key.String()); ok {
		return kvstore.CloneValue(value), nil
	}

	value, expires, err := client.readMirror(key)
	if err != nil {
		return nil, err
	}
	client.cache.Put(key.String(), value, client.cacheTTLFor(expires))
	return value, nil
}

// Put writes value to both the cache and the file mirror with no expiry.
func (client *Client) Put(ctx context.Context, key kvstore.Key, value kvstore.Value) (err error) {
	defer mon.Task()(&ctx)(&err)
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.write(key, value, 0)
}

// PutTTL writes value to both tiers with an expiry horizon.
func (client *Client) PutTTL(ctx context.Context, key kvstore.Key, value kvstore.Value, ttl time.Duration) (err error) {
	defer mon.Task()(&ctx)(&err)
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.write(key, value, ttl)
}

// Delete removes key from both tiers. Deleting an absent key is not an error.
func (client *Client) Delete(ctx context.Context, key kvstore.Key) (err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	client.cache.Delete(key.String())
	if err := os.Remove(client.pathFor(key)); err != nil && !os.IsNotExist(err) {
		return Error.New("delete error: %v", err)
	}
	return nil
}

// Exists reports whether key is present and unexpired.
func (client *Client) Exists(ctx context.Context, key kvstore.Key) (_ bool, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return false, kvstore.ErrEmptyKey.New("")
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	if _, ok := client.cache.Get(key.String()); ok {
		return true, nil
	}
	_, _, err = client.readMirror(key)
	if kvstore.ErrKeyNotFound.Has(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IncrBy emulates an atomic counter over the single-value primitive.
func (client *Client) IncrBy(ctx context.Context, key kvstore.Key, amount int64) (_ int64, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return 0, kvstore.ErrEmptyKey.New("")
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	var current int64
	value, _, err := client.readMirror(key)
	switch {
	case err == nil:
		current, err = strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
		if err != nil {
			return 0, Error.New("value at %q is not an integer", key)
		}
	case kvstore.ErrKeyNotFound.Has(err):
		current = 0
	default:
		return 0, err
	}

	current += amount
	if err := client.write(key, kvstore.Value(strconv.FormatInt(current, 10)), 0); err != nil {
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

	client.mu.Lock()
	defer client.mu.Unlock()

	list, err := client.readList(key)
	if err != nil {
		return 0, err
	}

	present := make(map[string]struct{}, len(list))
	for _, member := range list {
		present[member] = struct{}{}
	}

	var added int64
	for _, member := range members {
		if _, ok := present[string(member)]; ok {
			continue
		}
		present[string(member)] = struct{}{}
		list = append(list, string(member))
		added++
	}

	if added == 0 {
		return 0, nil
	}
	return added, client.writeList(key, list)
}

// SetMembers returns the emulated set stored at key.
func (client *Client) SetMembers(ctx context.Context, key kvstore.Key) (_ kvstore.Values, err error) {
	defer mon.Task()(&ctx)(&err)
	if key.IsZero() {
		return nil, kvstore.ErrEmptyKey.New("")
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	list, err := client.readList(key)
	if err != nil {
		return nil, err
	}
	values := make(kvstore.Values, 0, len(list))
	for _, member := range list {
		values = append(values, kvstore.Value(member))
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

	client.mu.Lock()
	defer client.mu.Unlock()

	list, err := client.readList(key)
	if err != nil {
		return 0, err
	}

	drop := make(map[string]struct{}, len(members))
	for _, member := range members {
		drop[string(member)] = struct{}{}
	}

	kept := list[:0]
	var removed int64
	for _, member := range list {
		if _, ok := drop[member]; ok {
			removed++
			continue
		}
		kept = append(kept, member)
	}

	if removed == 0 {
		return 0, nil
	}
	if len(kept) == 0 {
		client.cache.Delete(key.String())
		if err := os.Remove(client.pathFor(key)); err != nil && !os.IsNotExist(err) {
			return 0, Error.New("delete error: %v", err)
		}
		return removed, nil
	}
	return removed, client.writeList(key, kept)
}

// Keys returns all mirrored keys matching a glob pattern. Expired entries are
// skipped and lazily removed.
func (client *Client) Keys(ctx context.Context, pattern string) (_ kvstore.Keys, err error) {
	defer mon.Task()(&ctx)(&err)

	client.mu.Lock()
	defer client.mu.Unlock()

	entries, err := os.ReadDir(client.dir)
	if err != nil {
		return nil, Error.New("keys error: %v", err)
	}

	var keys kvstore.Keys
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".kv") {
			continue
		}
		decoded, err := filenameEncoding.DecodeString(strings.TrimSuffix(entry.Name(), ".kv"))
		if err != nil {
			client.log.Warn("unrecognized file in data directory", zap.String("name", entry.Name()))
			continue
		}
		key := kvstore.Key(decoded)

		ok, err := path.Match(pattern, key.String())
		if err != nil {
			return nil, Error.New("bad pattern %q: %v", pattern, err)
		}
		if !ok {
			continue
		}
		if _, _, err := client.readMirror(key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// FlushAll wipes both tiers. Used only by test harnesses.
func (client *Client) FlushAll(ctx context.Context) (err error) {
	defer mon.Task()(&ctx)(&err)

	client.mu.Lock()
	defer client.mu.Unlock()

	client.cache.Flush()

	entries, err := os.ReadDir(client.dir)
	if err != nil {
		return Error.New("flush error: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".kv") {
			continue
		}
		if err := os.Remove(filepath.Join(client.dir, entry.Name())); err != nil {
			return Error.New("flush error: %v", err)
		}
	}
	return nil
}

// Close releases the in-process cache. Mirror files stay on disk.
func (client *Client) Close() error {
	client.cache.Flush()
	return nil
}

func (client *Client) pathFor(key kvstore.Key) string {
	return filepath.Join(client.dir, filenameEncoding.EncodeToString(key)+".kv")
}

// readMirror loads key from the file mirror, lazily deleting expired files.
// It returns the record's expiry horizon (unix seconds, 0 for none) so that a
// cache repopulation cannot outlive it.
func (client *Client) readMirror(key kvstore.Key) (kvstore.Value, int64, error) {
	data, err := os.ReadFile(client.pathFor(key))
	if os.IsNotExist(err) {
		return nil, 0, kvstore.ErrKeyNotFound.New("%q", key)
	}
	if err != nil {
		return nil, 0, Error.New("read error: %v", err)
	}

	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, 0, Error.New("corrupt mirror file for %q: %v", key, err)
	}
	if env.Expires > 0 && time.Now().Unix() >= env.Expires {
		client.cache.Delete(key.String())
		_ = os.Remove(client.pathFor(key))
		return nil, 0, kvstore.ErrKeyNotFound.New("%q", key)
	}
	return env.Value, env.Expires, nil
}

// cacheTTLFor bounds a repopulated cache entry by the mirrored record's
// remaining lifetime, so a cold-cache read of an ephemeral record cannot keep
// it readable past its expiry horizon.
func (client *Client) cacheTTLFor(expires int64) time.Duration {
	if expires <= 0 {
		return client.ttl
	}
	remaining := time.Until(time.Unix(expires, 0))
	if remaining < client.ttl {
		return remaining
	}
	return client.ttl
}

// write stores value in the cache and mirror. Callers hold client.mu.
func (client *Client) write(key kvstore.Key, value kvstore.Value, ttl time.Duration) error {
	if key.IsZero() {
		return kvstore.ErrEmptyKey.New("")
	}

	env := envelope{Value: value}
	if ttl > 0 {
		env.Expires = time.Now().Add(ttl).Unix()
	}
	data, err := msgpack.Marshal(env)
	if err != nil {
		return Error.New("encode error: %v", err)
	}

	// write-then-rename keeps a crashed write from corrupting the mirror.
	target := client.pathFor(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return Error.New("write error: %v", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return Error.New("write error: %v", err)
	}

	cacheTTL := client.ttl
	if ttl > 0 {
		cacheTTL = ttl
	}
	client.cache.Put(key.String(), value, cacheTTL)
	return nil
}

func (client *Client) readList(key kvstore.Key) ([]string, error) {
	value, _, err := client.readMirror(key)
	if kvstore.ErrKeyNotFound.Has(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []string
	if err := json.Unmarshal(value, &list); err != nil {
		return nil, Error.New("value at %q is not a list", key)
	}
	return list, nil
}

func (client *Client) writeList(key kvstore.Key, list []string) error {
	value, err := json.Marshal(list)
	if err != nil {
		return Error.New("encode error: %v", err)
	}
	return client.write(key, kvstore.Value(value), 0)
}
