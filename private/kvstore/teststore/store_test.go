// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

package teststore

import (
	"testing"
	"time"

	"github.com/flowtune/flowtune/private/kvstore/testsuite"
)

func TestSuite(t *testing.T) {
	testsuite.RunTests(t, New())
}

func TestTTL(t *testing.T) {
	testsuite.RunTTLTests(t, New(), time.Sleep)
}
