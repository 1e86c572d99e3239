// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Settled is the outcome of one of several independent fetches. Each
// outcome stands alone: a failed fetch never hides a sibling's value.
type Settled[T any] struct {
	Value T
	Err   error
}

// OK reports whether the fetch succeeded.
func (s Settled[T]) OK() bool { return s.Err == nil }

// settle runs fetch and captures its outcome.
func settle[T any](ctx context.Context, fetch func(context.Context) (T, error)) Settled[T] {
	value, err := fetch(ctx)
	return Settled[T]{Value: value, Err: err}
}

// Both runs first and second concurrently and waits for both. Neither
// cancels the other: the group never sees an error.
func Both[A, B any](ctx context.Context, first func(context.Context) (A, error), second func(context.Context) (B, error)) (Settled[A], Settled[B]) {
	var group errgroup.Group
	var firstResult Settled[A]
	var secondResult Settled[B]
	group.Go(func() error {
		firstResult = settle(ctx, first)
		return nil
	})
	group.Go(func() error {
		secondResult = settle(ctx, second)
		return nil
	})
	group.Wait()
	return firstResult, secondResult
}
