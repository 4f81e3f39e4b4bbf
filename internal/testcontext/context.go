// Copyright (C) 2026 FlowTune Labs, Inc.
// See LICENSE for copying information.

// Package testcontext implements a context for testing with a temp
// directory and goroutine tracking.
package testcontext

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Context is a context that tracks goroutines and owns a test temp directory.
type Context struct {
	context.Context
	group *errgroup.Group
	test  testing.TB

	once      sync.Once
	directory string
}

// New creates a new test context.
func New(test testing.TB) *Context {
	group, ctx := errgroup.WithContext(context.Background())
	return &Context{
		Context: ctx,
		group:   group,
		test:    test,
	}
}

// Go runs fn in a goroutine. Call Wait or Cleanup to check the result.
func (ctx *Context) Go(fn func() error) {
	ctx.test.Helper()
	ctx.group.Go(fn)
}

// Check calls fn and fails the test on error.
func (ctx *Context) Check(fn func() error) {
	ctx.test.Helper()
	if err := fn(); err != nil {
		ctx.test.Fatal(err)
	}
}

// Dir returns a directory path inside the test's temp directory.
func (ctx *Context) Dir(subs ...string) string {
	ctx.test.Helper()

	ctx.once.Do(func() {
		var err error
		ctx.directory, err = os.MkdirTemp("", "flowtune-test")
		if err != nil {
			ctx.test.Fatal(err)
		}
	})

	dir := filepath.Join(append([]string{ctx.directory}, subs...)...)
	if err := os.MkdirAll(dir, 0744); err != nil {
		ctx.test.Fatal(err)
	}
	return dir
}

// File returns a file path inside the test's temp directory.
func (ctx *Context) File(elem ...string) string {
	ctx.test.Helper()

	if len(elem) == 0 {
		ctx.test.Fatal("expected at least one path element")
	}
	dir := ctx.Dir(elem[:len(elem)-1]...)
	return filepath.Join(dir, elem[len(elem)-1])
}

// Cleanup waits for tracked goroutines and removes the temp directory.
func (ctx *Context) Cleanup() {
	ctx.test.Helper()

	if err := ctx.group.Wait(); err != nil {
		ctx.test.Fatal(err)
	}
	if ctx.directory != "" {
		if err := os.RemoveAll(ctx.directory); err != nil {
			ctx.test.Fatal(err)
		}
	}
}

// Wait blocks until all tracked goroutines finish and returns their error.
func (ctx *Context) Wait() error {
	return ctx.group.Wait()
}
