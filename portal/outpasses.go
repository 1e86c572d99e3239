// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/session"
)

// ErrNotAvailable is returned for an endpoint the role does not have.
var ErrNotAvailable = errors.New("portal: not available for this role")

// MyOutpasses lists the logged-in student's own outpasses.
func (c *Client) MyOutpasses(ctx context.Context) ([]outpass.Request, error) {
	response, err := c.Request(ctx, http.MethodGet, "/api/outpass", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[outpass.Request](response.Data, "outpasses")
}

// SubmitOutpass files a new outpass request for the logged-in student.
func (c *Client) SubmitOutpass(ctx context.Context, request outpass.NewRequest) error {
	request = request.Normalize()
	if err := request.Validate(); err != nil {
		return fmt.Errorf("portal: outpass request: %w", err)
	}
	_, err := c.Request(ctx, http.MethodPost, "/api/outpass", request, nil)
	return err
}

// PendingOutpasses lists the outpasses awaiting role's sign-off.
func (c *Client) PendingOutpasses(ctx context.Context, role session.Role) ([]outpass.Request, error) {
	if !outpass.Acts(role) {
		return nil, fmt.Errorf("%w: %s has no pending outpasses", ErrNotAvailable, role)
	}
	response, err := c.Request(ctx, http.MethodGet, "/"+Prefix(role)+"/outpass/pending", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[outpass.Request](response.Data, "outpasses")
}

// OutpassHistory lists every outpass visible to role.
func (c *Client) OutpassHistory(ctx context.Context, role session.Role) ([]outpass.Request, error) {
	var path string
	switch role {
	case session.Warden, session.Watchman, session.YearIncharge:
		path = "/" + Prefix(role) + "/outpass/all"
	case session.Admin:
		path = "/admin/outpasses"
	case session.Student:
		return c.MyOutpasses(ctx)
	default:
		return nil, fmt.Errorf("%w: %s has no outpass history", ErrNotAvailable, role)
	}
	response, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[outpass.Request](response.Data, "outpasses")
}

// ActOnOutpass submits approve or reject for one outpass as role.
func (c *Client) ActOnOutpass(ctx context.Context, role session.Role, id string, action outpass.Action) error {
	if !outpass.Acts(role) {
		return fmt.Errorf("%w: %s cannot %s outpasses", ErrNotAvailable, role, action)
	}
	if _, err := outpass.ParseAction(string(action)); err != nil {
		return err
	}
	path := "/" + Prefix(role) + "/outpass/" + url.PathEscape(id) + "/" + string(action)
	_, err := c.Request(ctx, http.MethodPut, path, nil, nil)
	return err
}

// PendingFetcher binds PendingOutpasses to role for an outpass.Queue.
func (c *Client) PendingFetcher(role session.Role) outpass.Fetcher {
	return func(ctx context.Context) ([]outpass.Request, error) {
		return c.PendingOutpasses(ctx, role)
	}
}

// HistoryFetcher binds OutpassHistory to role for an outpass.Queue.
func (c *Client) HistoryFetcher(role session.Role) outpass.Fetcher {
	return func(ctx context.Context) ([]outpass.Request, error) {
		return c.OutpassHistory(ctx, role)
	}
}

// Actor binds ActOnOutpass to role for an outpass.Queue.
func (c *Client) Actor(role session.Role) outpass.Actor {
	return func(ctx context.Context, id string, action outpass.Action) error {
		return c.ActOnOutpass(ctx, role, id, action)
	}
}
