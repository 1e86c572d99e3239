// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credstore persists the session record that survives process
// restarts: the bearer token, the logged-in marker and the role tag.
//
// Every backend implements [Store]. Failures wrap
// [ErrStorageUnavailable]; callers that only read treat such a failure
// as "absent", so session resolution always lands in a deterministic
// state (logged out) instead of crashing.
//
// Backends:
//   - [File]: JSON object, file mode 0600 inside a 0700 directory
//   - [File] via [NewSealedFile]: CBOR record encrypted with age
//   - [SQLite]: one key/value table through lib/sqlitepool
//   - [Memory]: process-local, for tests and --ephemeral runs
package credstore

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Logical session keys.
const (
	KeyToken    = "token"
	KeyLoggedIn = "isLoggedIn"
	KeyUserType = "userType"
)

// LoggedInMarker is the only value of KeyLoggedIn that means logged in.
const LoggedInMarker = "true"

// SessionKeys returns the keys cleared on logout and invalidation.
func SessionKeys() []string {
	return []string{KeyToken, KeyLoggedIn, KeyUserType}
}

// ErrStorageUnavailable marks any failure to read or write the backing
// storage. Test with errors.Is.
var ErrStorageUnavailable = errors.New("credstore: storage unavailable")

// Store is durable key/value persistence for the session record.
type Store interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetAll writes every pair. Backends apply the pairs together where
	// the storage allows it.
	SetAll(ctx context.Context, pairs map[string]string) error

	// Clear removes the given keys. Absent keys are ignored.
	Clear(ctx context.Context, keys ...string) error
}

// Backend is a Store that holds resources until closed.
type Backend interface {
	Store
	io.Closer
}

func unavailable(operation string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, operation, err)
}
