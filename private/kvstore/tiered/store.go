// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package tiered selects the key-value substrate at open time: the networked
// redis backend when it is reachable, a local substrate otherwise. The
// transition is one-way; once a process has fallen back it stays on the
// local substrate until restart.
package tiered

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"github.com/flowtune/flowtune/private/kvstore"
	"github.com/flowtune/flowtune/private/kvstore/boltstore"
	"github.com/flowtune/flowtune/private/kvstore/filecache"
	"github.com/flowtune/flowtune/private/kvstore/redis"
	"github.com/flowtune/flowtune/private/kvstore/storelogger"
)

// Error is a tiered store error.
var Error = errs.Class("tiered")

// Config configures the tiered store.
type Config struct {
	RedisAddress  string `help:"address of the redis primary backend; empty uses the local fallback" default:""`
	RedisPassword string `help:"password of the redis primary backend" default:""`
	RedisDB       int    `help:"redis database number" default:"0"`

	FallbackBackend string        `help:"local substrate to use when redis is unreachable: files or bolt" default:"files"`
	DataDir         string        `help:"directory for local fallback data" default:"data"`
	CacheCapacity   int           `help:"entries kept by the fallback in-process cache" default:"1000"`
	CacheTTL        time.Duration `help:"default time-to-live for fallback cache entries" default:"600s"`
}

// Store exposes a kvstore.Store backed by whichever substrate the open
// sequence settled on.
type Store struct {
	kvstore.Store

	log      *zap.Logger
	fallback bool
}

// Open dials the primary substrate and permanently falls back to the local
// one when that fails. Opening the fallback can itself fail, which is
// returned as a hard error.
func Open(ctx context.Context, log *zap.Logger, cfg Config) (*Store, error) {
	if cfg.RedisAddress != "" {
		client, err := redis.OpenClient(ctx, cfg.RedisAddress, cfg.RedisPassword, cfg.RedisDB)
		if err == nil {
			log.Info("connected to primary key-value backend",
				zap.String("address", cfg.RedisAddress))
			return &Store{
				Store: storelogger.New(log.Named("kv"), client),
				log:   log,
			}, nil
		}
		log.Warn("primary key-value backend unreachable, using local fallback",
			zap.String("address", cfg.RedisAddress),
			zap.Error(err))
	} else {
		log.Info("no primary key-value backend configured, using local fallback")
	}

	local, err := openFallback(log, cfg)
	if err != nil {
		return nil, err
	}

	return &Store{
		Store:    storelogger.New(log.Named("kv"), local),
		log:      log,
		fallback: true,
	}, nil
}

func openFallback(log *zap.Logger, cfg Config) (kvstore.Store, error) {
	switch cfg.FallbackBackend {
	case "", "files":
		return filecache.Open(log.Named("filecache"), cfg.DataDir, filecache.Options{
			Capacity: cfg.CacheCapacity,
			CacheTTL: cfg.CacheTTL,
		})
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, Error.New("unable to create data directory: %v", err)
		}
		return boltstore.Open(filepath.Join(cfg.DataDir, "flowtune.db"))
	default:
		return nil, Error.New("unknown fallback backend %q", cfg.FallbackBackend)
	}
}

// Fallback reports whether the store is running on the local substrate.
func (store *Store) Fallback() bool { return store.fallback }
