// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/outpass/lib/sealed"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSealed = "sealed"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and locates a backend.
type Options struct {
	Backend string

	// Path is the store file (file, sealed) or database (sqlite).
	Path string

	// IdentityPath is the age identity for the sealed backend. It is
	// created on first use.
	IdentityPath string

	Logger *slog.Logger
}

// Open returns the configured backend. The caller must Close it.
func Open(options Options) (Backend, error) {
	switch options.Backend {
	case BackendFile, "":
		return NewFile(options.Path), nil
	case BackendSealed:
		identity, err := sealed.LoadOrCreateIdentity(options.IdentityPath)
		if err != nil {
			return nil, unavailable("loading sealing identity", err)
		}
		store := NewSealedFile(options.Path, identity)
		store.release = identity.Close
		return store, nil
	case BackendSQLite:
		return OpenSQLite(options.Path, options.Logger)
	case BackendMemory:
		return NewMemory(nil), nil
	default:
		return nil, fmt.Errorf("credstore: unknown backend %q", options.Backend)
	}
}
