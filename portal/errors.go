// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"errors"
	"fmt"
)

// Kind classifies a transport failure.
type Kind string

const (
	// KindNetwork: no response arrived (dial failure, timeout,
	// cancellation, truncated body).
	KindNetwork Kind = "network"

	// KindHTTP: the service answered with an error.
	KindHTTP Kind = "http"
)

// Error is every failure returned by Client.Request.
type Error struct {
	Kind   Kind
	Status int

	// Message is the service-provided message verbatim, or a
	// description of the network failure.
	Message string

	Method string
	Path   string

	// Invalidated is set when the response triggered session
	// invalidation. A 2xx response can set it.
	Invalidated bool

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNetwork:
		if e.Err != nil {
			return fmt.Sprintf("portal: %s %s: %s: %v", e.Method, e.Path, e.Message, e.Err)
		}
		return fmt.Sprintf("portal: %s %s: %s", e.Method, e.Path, e.Message)
	default:
		return fmt.Sprintf("portal: %s %s: HTTP %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// AsError returns the *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var portalErr *Error
	if errors.As(err, &portalErr) {
		return portalErr, true
	}
	return nil, false
}

// IsNetwork reports whether err is a network failure.
func IsNetwork(err error) bool {
	portalErr, ok := AsError(err)
	return ok && portalErr.Kind == KindNetwork
}

// IsHTTP reports whether err is a service error response.
func IsHTTP(err error) bool {
	portalErr, ok := AsError(err)
	return ok && portalErr.Kind == KindHTTP
}

// IsInvalidated reports whether err invalidated the session.
func IsInvalidated(err error) bool {
	portalErr, ok := AsError(err)
	return ok && portalErr.Invalidated
}

// StatusOf returns the HTTP status of err, or 0.
func StatusOf(err error) int {
	if portalErr, ok := AsError(err); ok {
		return portalErr.Status
	}
	return 0
}

// MessageOf returns the user-facing message of err: the service message
// for portal errors, err.Error() otherwise.
func MessageOf(err error) string {
	if portalErr, ok := AsError(err); ok {
		return portalErr.Message
	}
	return err.Error()
}
