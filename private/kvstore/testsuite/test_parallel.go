// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package testsuite

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flowtune/flowtune/internal/testcontext"
	"github.com/flowtune/flowtune/private/kvstore"
)

func testParallel(t *testing.T, store kvstore.Store) {
	for i := 0; i < 3; i++ {
		i := i
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			t.Parallel()

			ctx := testcontext.New(t)
			defer ctx.Cleanup()

			key := kvstore.Key("parallel:" + strconv.Itoa(i))
			value := kvstore.Value(strconv.Itoa(i))

			require.NoError(t, store.Put(ctx, key, value))

			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			require.Equal(t, string(value), string(got))

			next := kvstore.Value(string(value) + "X")
			require.NoError(t, store.Put(ctx, key, next))

			got, err = store.Get(ctx, key)
			require.NoError(t, err)
			require.Equal(t, string(next), string(got))

			require.NoError(t, store.Delete(ctx, key))
		})
	}
}
