// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package kvstore

import (
	"bytes"
	"context"
	"time"

	"github.com/zeebo/errs"
)

// Delimiter separates namespace segments in keys.
const Delimiter = ':'

var (
	// ErrKeyNotFound used when a key doesn't exist.
	ErrKeyNotFound = errs.Class("key not found")

	// ErrEmptyKey is returned when an empty key is used in Put or PutTTL.
	ErrEmptyKey = errs.Class("empty key")
)

// Key is the type for the keys in a `Store`.
type Key []byte

// Value is the type for the values in a `Store`.
type Value []byte

// Keys is the type for a slice of keys in a `Store`.
type Keys []Key

// Values is the type for a slice of Values in a `Store`.
type Values []Value

// Store describes key/value backends like redis, bbolt and the local
// file-mirror cache. Values are opaque documents; set-valued keys hold an
// unordered collection of member strings and back the secondary indexes
// maintained by the entity repositories.
type Store interface {
	// Put adds a value to store with no expiry.
	Put(ctx context.Context, key Key, value Value) error
	// PutTTL adds a value that reads must treat as absent after ttl passes.
	// A non-positive ttl behaves like Put.
	PutTTL(ctx context.Context, key Key, value Value, ttl time.Duration) error
	// Get gets a value from store. Missing keys return ErrKeyNotFound.
	Get(ctx context.Context, key Key) (Value, error)
	// Delete deletes key and the value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error
	// Exists reports whether key is present.
	Exists(ctx context.Context, key Key) (bool, error)
	// IncrBy increments the integer stored at key by amount, creating the
	// key at amount when absent, and returns the new value.
	IncrBy(ctx context.Context, key Key, amount int64) (int64, error)
	// SetAdd adds members to the set stored at key and returns how many
	// were not already present. Membership is idempotent.
	SetAdd(ctx context.Context, key Key, members ...Value) (int64, error)
	// SetMembers returns all members of the set stored at key, in
	// unspecified order. An absent key yields an empty set.
	SetMembers(ctx context.Context, key Key) (Values, error)
	// SetRemove removes members from the set stored at key and returns how
	// many were present.
	SetRemove(ctx context.Context, key Key, members ...Value) (int64, error)
	// Keys returns all keys matching a glob pattern. Only the `*` and `?`
	// wildcards behave identically on every substrate; redis evaluates
	// other glob syntax itself while the local substrates use path.Match,
	// so callers must not rely on character classes or on malformed
	// patterns being reported.
	Keys(ctx context.Context, pattern string) (Keys, error)
	// FlushAll wipes all data. Used only by test harnesses.
	FlushAll(ctx context.Context) error
	// Close closes the store.
	Close() error
}

// IsZero returns true if the value struct is a zero value.
func (value Value) IsZero() bool {
	return len(value) == 0
}

// IsZero returns true if the key struct is a zero value.
func (key Key) IsZero() bool {
	return len(key) == 0
}

// MarshalBinary implements the encoding.BinaryMarshaler interface for the Value type.
func (value Value) MarshalBinary() ([]byte, error) {
	return value, nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface for the Key type.
func (key Key) MarshalBinary() ([]byte, error) {
	return key, nil
}

// ByteSlices converts a `Keys` struct to a slice of byte-slices (i.e. `[][]byte`).
func (keys Keys) ByteSlices() [][]byte {
	result := make([][]byte, len(keys))

	for key, val := range keys {
		result[key] = []byte(val)
	}

	return result
}

// String implements the Stringer interface.
func (key Key) String() string { return string(key) }

// Strings returns everything as strings.
func (keys Keys) Strings() []string {
	strs := make([]string, 0, len(keys))
	for _, key := range keys {
		strs = append(strs, string(key))
	}
	return strs
}

// Strings returns everything as strings.
func (values Values) Strings() []string {
	strs := make([]string, 0, len(values))
	for _, value := range values {
		strs = append(strs, string(value))
	}
	return strs
}

// Less returns whether key should be sorted before b.
func (key Key) Less(b Key) bool { return bytes.Compare([]byte(key), []byte(b)) < 0 }

// Equal returns whether key and b are equal.
func (key Key) Equal(b Key) bool { return bytes.Equal([]byte(key), []byte(b)) }

// CloneValue makes a copy of value.
func CloneValue(value Value) Value { return append(Value{}, value...) }

// CloneKey makes a copy of key.
func CloneKey(key Key) Key { return append(Key{}, key...) }
