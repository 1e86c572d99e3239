// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session turns the persisted credential record into the one
// active session and owns every change to it.
//
// [Resolve] is the single source of truth for "who is using the client":
// it is fail-closed (anything other than isLoggedIn == "true" is logged
// out) and defaults an absent or unknown role to [Student]. [Manager]
// performs login, logout and forced invalidation, and publishes each
// change to its observers (the workspace router, the interactive shell)
// synchronously, in subscription order.
package session

import (
	"context"
	"log/slog"

	"github.com/bureau-foundation/outpass/lib/credstore"
)

// Session is the resolved authentication state. Role is meaningful only
// when LoggedIn is true.
type Session struct {
	Token    string
	LoggedIn bool
	Role     Role
}

// Unauthenticated is the logged-out session.
func Unauthenticated() Session {
	return Session{}
}

// Resolver reads a Session from a credential store.
type Resolver struct {
	Store credstore.Store

	// Logger receives storage failures at warn level. Optional.
	Logger *slog.Logger
}

// Resolve reads the session using store.
func Resolve(ctx context.Context, store credstore.Store) Session {
	return Resolver{Store: store}.Resolve(ctx)
}

// Resolve is idempotent and never writes. Storage failures count as
// absent values.
func (r Resolver) Resolve(ctx context.Context) Session {
	loggedIn := r.read(ctx, credstore.KeyLoggedIn)
	if loggedIn != credstore.LoggedInMarker {
		return Unauthenticated()
	}

	role := Role(r.read(ctx, credstore.KeyUserType))
	if !role.Valid() {
		role = Student
	}

	return Session{
		Token:    r.read(ctx, credstore.KeyToken),
		LoggedIn: true,
		Role:     role,
	}
}

func (r Resolver) read(ctx context.Context, key string) string {
	value, present, err := r.Store.Get(ctx, key)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("credential store read failed, treating as absent",
				"key", key,
				"error", err,
			)
		}
		return ""
	}
	if !present {
		return ""
	}
	return value
}
