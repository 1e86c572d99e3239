// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package outpass

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/session"
)

var (
	// ErrDeclined is returned by Act when the user does not confirm.
	ErrDeclined = errors.New("outpass: action not confirmed")

	// ErrNoAffordance is returned by Act for a record the role may not
	// act on in its current status.
	ErrNoAffordance = errors.New("outpass: action not available for this outpass")

	// ErrUnknownOutpass is returned by Act for an id missing from the
	// current list.
	ErrUnknownOutpass = errors.New("outpass: not in the current list")
)

// ActionError is an approve or reject call the service refused or that
// never reached it. The list is left as it was.
type ActionError struct {
	ID     string
	Action Action
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("outpass: %s %s: %v", e.Action, e.ID, e.Err)
}

func (e *ActionError) Unwrap() error { return e.Err }

// Fetcher loads the authoritative list for the current view.
type Fetcher func(ctx context.Context) ([]Request, error)

// Actor submits an intent for one record.
type Actor func(ctx context.Context, id string, action Action) error

// Prompt is the confirmation shown before an action is issued.
type Prompt struct {
	Title   string
	Message string
	Action  Action
	Record  Request
}

// Confirmer asks the user to confirm a state-changing action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt Prompt) (bool, error)

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	return f(ctx, prompt)
}

// QueueConfig configures a Queue.
type QueueConfig struct {
	// Role is the acting role; it decides the affordances.
	Role session.Role

	// Fetch loads the list. Required.
	Fetch Fetcher

	// Act submits an action. May be nil for roles that never act.
	Act Actor

	// Confirm is consulted before every action. Required when Act is
	// set.
	Confirm Confirmer

	// Notify receives success and failure notifications. Optional.
	Notify notify.Sink

	// Logger is optional.
	Logger *slog.Logger
}

// Queue is one outpass list view: the sorted records, whether they are
// known to be stale, and the confirm-act-refetch cycle.
type Queue struct {
	role    session.Role
	fetch   Fetcher
	act     Actor
	confirm Confirmer
	notify  notify.Sink
	logger  *slog.Logger

	mu       sync.Mutex
	items    []Request
	loaded   bool
	stale    bool
	detached bool
}

// NewQueue validates config and returns an empty queue.
func NewQueue(config QueueConfig) (*Queue, error) {
	if config.Fetch == nil {
		return nil, errors.New("outpass: queue requires a Fetch function")
	}
	if config.Act != nil && config.Confirm == nil {
		return nil, errors.New("outpass: queue with Act requires a Confirmer")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Queue{
		role:    config.Role,
		fetch:   config.Fetch,
		act:     config.Act,
		confirm: config.Confirm,
		notify:  notify.OrDiscard(config.Notify),
		logger:  logger,
	}, nil
}

// Refresh replaces the list with a freshly fetched, sorted one. On
// failure the previous list stays and is marked stale.
func (q *Queue) Refresh(ctx context.Context) error {
	records, err := q.fetch(ctx)

	q.mu.Lock()
	if q.detached {
		q.mu.Unlock()
		q.logger.Debug("late outpass fetch ignored after detach")
		return nil
	}
	if err != nil {
		q.stale = true
		q.mu.Unlock()
		q.notify.Notify(notify.Notification{
			Level:   notify.Error,
			Title:   "Failed to fetch outpasses",
			Message: err.Error(),
		})
		return fmt.Errorf("outpass: fetching list: %w", err)
	}
	q.items = SortForDisplay(records)
	q.loaded = true
	q.stale = false
	count := len(q.items)
	q.mu.Unlock()

	q.logger.Debug("outpass list refreshed", "role", q.role, "count", count)
	return nil
}

// Act confirms, submits action for id, and re-fetches on success. The
// local list is never edited: a failed call leaves it untouched and
// marks it stale.
func (q *Queue) Act(ctx context.Context, id string, action Action) error {
	q.mu.Lock()
	index := slices.IndexFunc(q.items, func(record Request) bool { return record.ID == id })
	var record Request
	if index >= 0 {
		record = q.items[index]
	}
	q.mu.Unlock()

	if index < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownOutpass, id)
	}
	if q.act == nil || !Allows(record, q.role, action) {
		return fmt.Errorf("%w: %s is %s", ErrNoAffordance, id, record.Status.Label())
	}

	confirmed, err := q.confirm.Confirm(ctx, Prompt{
		Title:   confirmTitle(action),
		Message: "Are you sure?",
		Action:  action,
		Record:  record,
	})
	if err != nil {
		return fmt.Errorf("outpass: confirmation: %w", err)
	}
	if !confirmed {
		return ErrDeclined
	}

	err = q.act(ctx, id, action)

	q.mu.Lock()
	detached := q.detached
	if err != nil && !detached {
		q.stale = true
	}
	q.mu.Unlock()

	if detached {
		q.logger.Debug("late outpass action result ignored after detach", "id", id, "action", action)
		if err != nil {
			return &ActionError{ID: id, Action: action, Err: err}
		}
		return nil
	}
	if err != nil {
		q.notify.Notify(notify.Notification{
			Level:   notify.Error,
			Title:   "Failed to " + string(action),
			Message: err.Error(),
		})
		return &ActionError{ID: id, Action: action, Err: err}
	}

	q.logger.Info("outpass action submitted", "id", id, "action", action, "role", q.role)
	q.notify.Notify(notify.Notification{
		Level: notify.Success,
		Title: "Outpass " + action.Verb() + " successfully",
	})
	if err := q.Refresh(ctx); err != nil {
		q.logger.Warn("re-fetch after action failed", "error", err)
	}
	return nil
}

func confirmTitle(action Action) string {
	switch action {
	case Approve:
		return "Approve Outpass"
	case Reject:
		return "Reject Outpass"
	default:
		return string(action)
	}
}

// Items returns a copy of the current sorted list.
func (q *Queue) Items() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Loaded reports whether any fetch has succeeded.
func (q *Queue) Loaded() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loaded
}

// NeedsRefresh reports whether the list is known to be out of date.
func (q *Queue) NeedsRefresh() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stale
}

// Detach marks the view as gone. Completions that arrive afterwards
// change nothing and notify nobody.
func (q *Queue) Detach() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.detached = true
}

// Affordances returns the actions the queue's role may take on record.
func (q *Queue) Affordances(record Request) []Action {
	if q.act == nil {
		return nil
	}
	return Affordances(record, q.role)
}
