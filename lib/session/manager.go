// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/outpass/lib/credstore"
)

// Cause says why a session changed.
type Cause string

const (
	CauseLogin       Cause = "login"
	CauseLogout      Cause = "logout"
	CauseInvalidated Cause = "invalidated"
)

// Change is delivered to observers after every session mutation.
type Change struct {
	Session Session
	Cause   Cause

	// Reason is set for CauseInvalidated: the status or message that
	// triggered it.
	Reason string
}

// Observer receives session changes. Observers run synchronously on the
// goroutine that caused the change and must not block.
type Observer func(Change)

// Manager owns every mutation of the stored session.
type Manager struct {
	store  credstore.Store
	logger *slog.Logger

	// mutate serializes login, logout and invalidation so concurrent
	// authorization failures collapse into a single clear.
	mutate sync.Mutex

	observersMu  sync.Mutex
	observers    []observerEntry
	nextObserver int
}

type observerEntry struct {
	id       int
	observer Observer
}

// NewManager returns a Manager over store. A nil logger discards.
func NewManager(store credstore.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{store: store, logger: logger}
}

// Current resolves the stored session.
func (m *Manager) Current(ctx context.Context) Session {
	return Resolver{Store: m.store, Logger: m.logger}.Resolve(ctx)
}

// Login persists a new session for role and publishes it.
func (m *Manager) Login(ctx context.Context, role Role, token string) (Session, error) {
	if !role.Valid() {
		return Session{}, fmt.Errorf("session: login with unknown role %q", role)
	}
	if token == "" {
		return Session{}, errors.New("session: login response carried no token")
	}

	m.mutate.Lock()
	err := m.store.SetAll(ctx, map[string]string{
		credstore.KeyToken:    token,
		credstore.KeyLoggedIn: credstore.LoggedInMarker,
		credstore.KeyUserType: string(role),
	})
	m.mutate.Unlock()
	if err != nil {
		return Session{}, fmt.Errorf("session: persisting login: %w", err)
	}

	current := m.Current(ctx)
	m.logger.Info("logged in",
		"role", current.Role,
		"token", Fingerprint(current.Token),
	)
	m.publish(Change{Session: current, Cause: CauseLogin})
	return current, nil
}

// Logout clears the stored session. Observers are notified even when
// the store fails, so navigation still leaves the authenticated
// workspace; the storage error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.mutate.Lock()
	err := m.store.Clear(ctx, credstore.SessionKeys()...)
	m.mutate.Unlock()

	if err != nil {
		m.logger.Warn("clearing credentials on logout failed", "error", err)
	} else {
		m.logger.Info("logged out")
	}
	m.publish(Change{Session: Unauthenticated(), Cause: CauseLogout})
	if err != nil {
		return fmt.Errorf("session: logout: %w", err)
	}
	return nil
}

// InvalidateSession is the transport's authorization-failure hook.
func (m *Manager) InvalidateSession(ctx context.Context, reason string) {
	m.Invalidate(ctx, reason)
}

// Invalidate clears the stored session after an authorization failure
// and reports whether anything was cleared. When no session key is
// stored it does nothing and notifies nobody, so repeated failures
// while logged out are no-ops. An unreadable store is treated as
// holding a session: the clear is attempted.
func (m *Manager) Invalidate(ctx context.Context, reason string) bool {
	m.mutate.Lock()
	if !m.holdsSession(ctx) {
		m.mutate.Unlock()
		m.logger.Debug("session invalidation ignored, already logged out", "reason", reason)
		return false
	}
	err := m.store.Clear(ctx, credstore.SessionKeys()...)
	m.mutate.Unlock()

	if err != nil {
		m.logger.Warn("clearing credentials on invalidation failed", "reason", reason, "error", err)
	} else {
		m.logger.Info("session invalidated", "reason", reason)
	}
	m.publish(Change{Session: Unauthenticated(), Cause: CauseInvalidated, Reason: reason})
	return true
}

func (m *Manager) holdsSession(ctx context.Context) bool {
	for _, key := range credstore.SessionKeys() {
		_, present, err := m.store.Get(ctx, key)
		if err != nil || present {
			return true
		}
	}
	return false
}

// Subscribe registers observer and returns a function that removes it.
func (m *Manager) Subscribe(observer Observer) (cancel func()) {
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	id := m.nextObserver
	m.nextObserver++
	m.observers = append(m.observers, observerEntry{id: id, observer: observer})

	return func() {
		m.observersMu.Lock()
		defer m.observersMu.Unlock()
		for index, entry := range m.observers {
			if entry.id == id {
				m.observers = append(m.observers[:index], m.observers[index+1:]...)
				return
			}
		}
	}
}

func (m *Manager) publish(change Change) {
	m.observersMu.Lock()
	observers := make([]Observer, 0, len(m.observers))
	for _, entry := range m.observers {
		observers = append(observers, entry.observer)
	}
	m.observersMu.Unlock()

	for _, observer := range observers {
		observer(change)
	}
}
