// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package marketplacedb

import (
	"github.com/flowtune/flowtune/private/kvstore"
)

// Entity kinds. A kind prefixes every key belonging to it, and the kind's
// pluralized name is its global collection set.
const (
	kindUser     = "user"
	kindPlaylist = "playlist"
	kindNFT      = "musicnft"
	kindSession  = "session"
)

// Index dimensions.
const (
	dimOwner      = "owner"
	dimCategory   = "category"
	dimTag        = "tag"
	dimVisibility = "visibility"
)

// Relationship sets and record-scoped auxiliary keys.
const (
	relPlaylists = "playlists"
	relLikes     = "likes"
	relFollowers = "followers"
	relListeners = "listeners"
	relPlays     = "plays"
)

// recordKey is the primary record key: <kind>:<id>.
func recordKey(kind, id string) kvstore.Key {
	return kvstore.Key(kind + ":" + id)
}

// aliasKey maps an alternate unique field to a record ID: <kind>:<field>:<value>.
func aliasKey(kind, field, value string) kvstore.Key {
	return kvstore.Key(kind + ":" + field + ":" + value)
}

// collectionKey is the kind's global collection set: <kind>s.
func collectionKey(kind string) kvstore.Key {
	return kvstore.Key(kind + "s")
}

// indexKey is a secondary index set: <kind>s:<dimension>:<value>.
func indexKey(kind, dimension, value string) kvstore.Key {
	return kvstore.Key(kind + "s:" + dimension + ":" + value)
}

// featuredKey is the featured-flag index set: <kind>s:featured.
func featuredKey(kind string) kvstore.Key {
	return kvstore.Key(kind + "s:featured")
}

// relationKey is a record-scoped relationship set or counter: <kind>:<id>:<rel>.
func relationKey(kind, id, rel string) kvstore.Key {
	return kvstore.Key(kind + ":" + id + ":" + rel)
}
