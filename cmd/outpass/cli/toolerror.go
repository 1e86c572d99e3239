// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/outpass/lib/credstore"
	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/shell"
	"github.com/bureau-foundation/outpass/portal"
)

// ErrorCategory classifies command errors so that scripts can decide
// (retry, fix input, log in again) without parsing message text.
type ErrorCategory string

const (
	// CategoryValidation: the caller provided invalid input. Fix the
	// input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced record does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: no session, an expired session, or a role
	// without the operation.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the operation conflicts with the record's state.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: network failure, timeout, or a 5xx. Retry.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: an unexpected failure. Report it.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized error returned by CLI commands. It wraps
// the inner error, preserving the chain for errors.Is and errors.As.
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is an optional next step printed after the message.
	Hint string
}

// Error returns the message, followed by the hint when one is set.
func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// FromError categorizes an error from the client core. Errors that are
// already a *ToolError, and nil, are returned unchanged.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return err
	}

	var incomplete *profile.IncompleteError
	var loginError *portal.LoginError
	switch {
	case errors.As(err, &incomplete):
		return (&ToolError{Category: CategoryValidation, Err: err}).
			WithHint(incomplete.Hint() + " Run 'outpass profile check' to list the missing fields.")
	case errors.As(err, &loginError):
		return &ToolError{Category: CategoryForbidden, Err: err}
	case errors.Is(err, portal.ErrBlankCredentials):
		return &ToolError{Category: CategoryValidation, Err: err}
	case errors.Is(err, shell.ErrLoggedOut):
		return (&ToolError{Category: CategoryForbidden, Err: err}).
			WithHint("Run 'outpass login --role <role>' first.")
	case errors.Is(err, portal.ErrNotAvailable):
		return &ToolError{Category: CategoryForbidden, Err: err}
	case errors.Is(err, outpass.ErrDeclined):
		return &ToolError{Category: CategoryValidation, Err: err}
	case errors.Is(err, outpass.ErrNoAffordance):
		return &ToolError{Category: CategoryConflict, Err: err}
	case errors.Is(err, outpass.ErrUnknownOutpass):
		return &ToolError{Category: CategoryNotFound, Err: err}
	case errors.Is(err, credstore.ErrStorageUnavailable):
		return &ToolError{Category: CategoryInternal, Err: err}
	}

	if portal.IsInvalidated(err) {
		return (&ToolError{Category: CategoryForbidden, Err: fmt.Errorf("session expired: %w", serviceError{err})}).
			WithHint("Run 'outpass login' to sign in again.")
	}
	if portal.IsNetwork(err) {
		return &ToolError{Category: CategoryTransient, Err: serviceError{err}}
	}
	if portal.IsHTTP(err) {
		message := serviceError{err}
		status := portal.StatusOf(err)
		switch {
		case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
			return &ToolError{Category: CategoryValidation, Err: message}
		case status == http.StatusNotFound:
			return &ToolError{Category: CategoryNotFound, Err: message}
		case status == http.StatusConflict:
			return &ToolError{Category: CategoryConflict, Err: message}
		case status >= 500:
			return &ToolError{Category: CategoryTransient, Err: message}
		default:
			return &ToolError{Category: CategoryInternal, Err: message}
		}
	}
	return &ToolError{Category: CategoryInternal, Err: err}
}

// serviceError shows only the service's message while keeping the
// portal error in the chain.
type serviceError struct{ err error }

func (e serviceError) Error() string { return portal.MessageOf(e.err) }

func (e serviceError) Unwrap() error { return e.err }
