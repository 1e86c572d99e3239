// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bureau-foundation/outpass/lib/session"
)

// Prefix is the path prefix of role's endpoints.
func Prefix(role session.Role) string {
	switch role {
	case session.Student:
		return "api"
	case session.Staff:
		return "staff"
	case session.Warden:
		return "warden"
	case session.Watchman:
		return "watchman"
	case session.YearIncharge:
		return "year-incharge"
	case session.Admin:
		return "admin"
	default:
		panic(fmt.Sprintf("portal: unhandled role %q", role))
	}
}

// LoginPath is the login endpoint of role.
func LoginPath(role session.Role) string {
	return "/" + Prefix(role) + "/login"
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// ErrBlankCredentials is returned before any call when email or
// password is blank.
var ErrBlankCredentials = errors.New("please enter email and password")

// LoginError is a refused login, with the message shown to the user.
type LoginError struct {
	Role    session.Role
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

// Login exchanges credentials for a token. It does not persist
// anything; the session manager does.
func (c *Client) Login(ctx context.Context, role session.Role, credentials Credentials) (string, error) {
	if !role.Valid() {
		return "", fmt.Errorf("portal: login for unknown role %q", role)
	}
	if strings.TrimSpace(credentials.Email) == "" || strings.TrimSpace(credentials.Password) == "" {
		return "", ErrBlankCredentials
	}
	credentials.Email = strings.TrimSpace(credentials.Email)

	response, err := c.Request(ctx, http.MethodPost, LoginPath(role), credentials, nil)
	if err != nil {
		return "", loginError(role, err)
	}
	body, err := decodeObject[tokenResponse](response.Data)
	if err != nil {
		return "", fmt.Errorf("portal: login response: %w", err)
	}
	if body.Token == "" {
		return "", errors.New("portal: login response carried no token")
	}
	return body.Token, nil
}

func loginError(role session.Role, err error) error {
	switch StatusOf(err) {
	case http.StatusUnauthorized:
		return &LoginError{Role: role, Message: "invalid credentials", Err: err}
	case http.StatusNotFound:
		return &LoginError{Role: role, Message: "user not found", Err: err}
	}
	if IsNetwork(err) {
		return err
	}
	return &LoginError{Role: role, Message: MessageOf(err), Err: err}
}
