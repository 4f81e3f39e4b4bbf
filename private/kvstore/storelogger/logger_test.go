// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package storelogger

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/flowtune/flowtune/private/kvstore/teststore"
	"github.com/flowtune/flowtune/private/kvstore/testsuite"
)

func TestSuite(t *testing.T) {
	store := teststore.New()
	logged := New(zaptest.NewLogger(t), store)
	testsuite.RunTests(t, logged)
}
