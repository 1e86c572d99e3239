// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package profile

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bureau-foundation/outpass/lib/workspace"
)

// Action is a student action that needs a complete profile.
type Action string

const (
	LocateStaff   Action = "locate staff"
	ViewSubjects  Action = "view subjects"
	CreateOutpass Action = "create an outpass"
)

// IncompleteError refuses an action until the profile is complete.
type IncompleteError struct {
	Action  Action
	Missing []Field
}

func (e *IncompleteError) Error() string {
	if len(e.Missing) == 0 {
		return "Complete your profile first"
	}
	labels := make([]string, len(e.Missing))
	for index, field := range e.Missing {
		labels[index] = field.Label()
	}
	return fmt.Sprintf("Complete your profile first (missing: %s)", strings.Join(labels, ", "))
}

// Hint is the secondary line shown with the refusal.
func (e *IncompleteError) Hint() string {
	return "Fill all required fields to unlock this feature."
}

// Gate holds the most recently fetched profile of the logged-in student.
// Until a profile is set every gated action is refused.
type Gate struct {
	mu      sync.RWMutex
	profile Student
}

// NewGate returns a gate with no profile.
func NewGate() *Gate {
	return &Gate{}
}

// SetProfile replaces the profile the gate evaluates.
func (g *Gate) SetProfile(profile Student) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.profile = profile
}

// Profile returns the current profile, or nil.
func (g *Gate) Profile() Student {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.profile
}

// Check returns an *IncompleteError when action is not yet allowed. It
// has no side effects.
func (g *Gate) Check(action Action) error {
	g.mu.RLock()
	current := g.profile
	g.mu.RUnlock()

	if current == nil {
		return &IncompleteError{Action: action}
	}
	if missing := Missing(current); len(missing) > 0 {
		return &IncompleteError{Action: action, Missing: missing}
	}
	return nil
}

// ActionFor maps a gated student screen to its action.
func ActionFor(screen workspace.Screen) (Action, bool) {
	switch screen {
	case workspace.StudentStaffs, workspace.StudentStaffProfile:
		return LocateStaff, true
	case workspace.StudentSubjects, workspace.StudentSubjectDetails:
		return ViewSubjects, true
	case workspace.StudentOutpass, workspace.StudentNewOutpass:
		return CreateOutpass, true
	default:
		return "", false
	}
}

// Guard adapts the gate to workspace.Guard: gated screens are refused
// while the profile is incomplete, everything else passes.
func (g *Gate) Guard(screen workspace.Screen) error {
	action, gated := ActionFor(screen)
	if !gated {
		return nil
	}
	return g.Check(action)
}
