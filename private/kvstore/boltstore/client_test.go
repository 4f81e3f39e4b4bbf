// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package boltstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/private/kvstore"
	"github.com/flowtune/flowtune/private/kvstore/testsuite"
)

func TestSuite(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client, err := Open(ctx.File("bolt", "flowtune.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	testsuite.RunTests(t, client)
}

func TestTTL(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	client, err := Open(ctx.File("bolt", "flowtune.db"))
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	testsuite.RunTTLTests(t, client, time.Sleep)
}

func TestReopen(t *testing.T) {
	ctx := testcontext.New(t)
	defer ctx.Cleanup()

	path := ctx.File("bolt", "flowtune.db")

	client, err := Open(path)
	require.NoError(t, err)

	key := kvstore.Key("track:1")
	require.NoError(t, client.Put(ctx, key, kvstore.Value("persisted")))
	require.NoError(t, client.Close())

	client, err = Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, client.Close()) }()

	got, err := client.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "persisted", string(got))
}
