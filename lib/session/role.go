// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import "fmt"

// Role is one of the six mutually exclusive actor roles. The set is
// closed: switches that select behavior by role (workspace graphs, API
// path prefixes) name all six values and panic on anything else, and
// their tests iterate [AllRoles].
type Role string

const (
	Student      Role = "student"
	Staff        Role = "staff"
	Warden       Role = "warden"
	Watchman     Role = "watchman"
	YearIncharge Role = "year_incharge"
	Admin        Role = "admin"
)

// AllRoles returns every role in display order.
func AllRoles() []Role {
	return []Role{Student, Staff, Warden, Watchman, YearIncharge, Admin}
}

// Valid reports whether r is one of the six roles.
func (r Role) Valid() bool {
	switch r {
	case Student, Staff, Warden, Watchman, YearIncharge, Admin:
		return true
	}
	return false
}

// ParseRole accepts a role tag, also tolerating the hyphenated form
// used in URL paths ("year-incharge").
func ParseRole(value string) (Role, error) {
	if value == "year-incharge" {
		return YearIncharge, nil
	}
	role := Role(value)
	if !role.Valid() {
		return "", fmt.Errorf("session: unknown role %q (want one of %v)", value, AllRoles())
	}
	return role, nil
}

// DisplayName is the human label for r.
func (r Role) DisplayName() string {
	switch r {
	case Student:
		return "Student"
	case Staff:
		return "Staff"
	case Warden:
		return "Warden"
	case Watchman:
		return "Watchman"
	case YearIncharge:
		return "Year Incharge"
	case Admin:
		return "Admin"
	default:
		return string(r)
	}
}
