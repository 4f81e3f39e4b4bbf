// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package testredis starts an in-process miniredis server for tests.
package testredis

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/zeebo/errs"
)

// Error is a testredis error.
var Error = errs.Class("testredis")

// Server is an in-process redis server for tests.
type Server struct {
	mini *miniredis.Miniredis
}

// Start launches an in-process redis server.
func Start() (*Server, error) {
	mini, err := miniredis.Run()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &Server{mini: mini}, nil
}

// Addr returns the host:port the server listens on.
func (server *Server) Addr() string { return server.mini.Addr() }

// FastForward advances the server clock, expiring TTL'd keys, without
// sleeping in tests.
func (server *Server) FastForward(d time.Duration) { server.mini.FastForward(d) }

// Close shuts the server down.
func (server *Server) Close() error {
	server.mini.Close()
	return nil
}
