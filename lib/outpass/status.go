// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package outpass is the client view of the outpass approval workflow.
//
// The service owns every transition. This package only knows enough of
// the chain to decide what to show: which statuses are terminal, which
// role the record is waiting on, which actions a role may offer, and
// the display order of a list. [Queue] implements the act contract:
// confirm, issue the intent, then re-fetch the authoritative list. It
// never edits a record locally.
//
// The documented chain:
//
//	pending --staff:approve--> staff-approved --warden:approve--> warden-approved --year_incharge:approve--> approved
//	pending --staff:reject--> rejected
//	staff-approved --warden:reject--> rejected
//	warden-approved --year_incharge:reject--> rejected
package outpass

import (
	"fmt"

	"github.com/bureau-foundation/outpass/lib/session"
)

// Status is the service-reported state of an outpass. Unknown values
// are kept verbatim.
type Status string

const (
	StatusPending        Status = "pending"
	StatusStaffApproved  Status = "staff-approved"
	StatusWardenApproved Status = "warden-approved"
	StatusApproved       Status = "approved"
	StatusRejected       Status = "rejected"
)

// Known reports whether s is one of the documented statuses.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusStaffApproved, StatusWardenApproved, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further action is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Label is the display text for s. Unknown statuses display verbatim.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusStaffApproved:
		return "Staff Approved"
	case StatusWardenApproved:
		return "Warden Approved"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// Action is an intent a role may submit for a record.
type Action string

const (
	Approve Action = "approve"
	Reject  Action = "reject"
)

// ParseAction accepts "approve" or "reject".
func ParseAction(value string) (Action, error) {
	switch Action(value) {
	case Approve, Reject:
		return Action(value), nil
	default:
		return "", fmt.Errorf("outpass: unknown action %q (want approve or reject)", value)
	}
}

// Verb is the past tense used in notifications ("approved").
func (a Action) Verb() string {
	switch a {
	case Approve:
		return "approved"
	case Reject:
		return "rejected"
	default:
		return string(a)
	}
}

// AwaitingRole returns the role whose sign-off the status is waiting
// for. Terminal and unknown statuses wait on nobody.
func AwaitingRole(s Status) (session.Role, bool) {
	switch s {
	case StatusPending:
		return session.Staff, true
	case StatusStaffApproved:
		return session.Warden, true
	case StatusWardenApproved:
		return session.YearIncharge, true
	default:
		return "", false
	}
}

// Expected returns the status the documented chain predicts after role
// submits action on a record in status s. It is a display hint only;
// the list is always re-fetched after an action.
func Expected(s Status, role session.Role, action Action) (Status, bool) {
	awaiting, ok := AwaitingRole(s)
	if !ok || awaiting != role {
		return "", false
	}
	switch action {
	case Reject:
		return StatusRejected, true
	case Approve:
		switch s {
		case StatusPending:
			return StatusStaffApproved, true
		case StatusStaffApproved:
			return StatusWardenApproved, true
		case StatusWardenApproved:
			return StatusApproved, true
		}
	}
	return "", false
}

// Acts reports whether role ever approves or rejects outpasses.
func Acts(role session.Role) bool {
	switch role {
	case session.Staff, session.Warden, session.YearIncharge:
		return true
	case session.Student, session.Watchman, session.Admin:
		return false
	default:
		return false
	}
}

// Affordances returns the actions role may offer for record. Terminal
// and unknown statuses offer nothing, and neither do roles that never
// act. The service decides whether the record is actually the role's to
// act on; a pending-list entry is offered both actions.
func Affordances(record Request, role session.Role) []Action {
	if record.Status.Terminal() || !record.Status.Known() || !Acts(role) {
		return nil
	}
	return []Action{Approve, Reject}
}

// Allows reports whether action is among the affordances of record for
// role.
func Allows(record Request, role session.Role, action Action) bool {
	for _, offered := range Affordances(record, role) {
		if offered == action {
			return true
		}
	}
	return false
}
