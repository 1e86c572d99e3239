// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// ManagedKind is a collection the admin manages.
type ManagedKind string

const (
	ManagedStaff        ManagedKind = "staff"
	ManagedWardens      ManagedKind = "wardens"
	ManagedYearIncharge ManagedKind = "year-incharge"
	ManagedSecurity     ManagedKind = "security"
	ManagedBus          ManagedKind = "bus"
)

// ManagedKinds lists every managed collection.
func ManagedKinds() []ManagedKind {
	return []ManagedKind{ManagedStaff, ManagedWardens, ManagedYearIncharge, ManagedSecurity, ManagedBus}
}

// ParseManagedKind accepts a collection name.
func ParseManagedKind(value string) (ManagedKind, error) {
	kind := ManagedKind(value)
	if !slices.Contains(ManagedKinds(), kind) {
		return "", fmt.Errorf("portal: unknown collection %q (want one of %v)", value, ManagedKinds())
	}
	return kind, nil
}

func (kind ManagedKind) listPath() string {
	if kind == ManagedBus {
		return "/api/bus/routes"
	}
	return "/admin/" + string(kind)
}

func (kind ManagedKind) envelopeKeys() []string {
	switch kind {
	case ManagedStaff:
		return []string{"staff"}
	case ManagedWardens:
		return []string{"wardens"}
	case ManagedYearIncharge:
		return []string{"yearIncharges"}
	case ManagedSecurity:
		return []string{"security"}
	case ManagedBus:
		return []string{"bus", "routes"}
	default:
		return nil
	}
}

// Deletable reports whether records of kind can be deleted.
func (kind ManagedKind) Deletable() bool {
	return kind != ManagedBus
}

// Record is one managed record, kept as the service sent it.
type Record map[string]any

// ID returns the record's "_id" (or "id").
func (r Record) ID() string {
	for _, key := range []string{"_id", "id"} {
		if value, ok := r[key].(string); ok {
			return value
		}
	}
	return ""
}

// Text returns field as display text, or "".
func (r Record) Text(field string) string {
	switch value := r[field].(type) {
	case nil:
		return ""
	case string:
		return value
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(encoded)
	}
}

// Title is the record's primary display text: its name, route number
// or register number, whichever is set first.
func (r Record) Title() string {
	return r.first("name", "routeNumber", "registerNumber")
}

// Subtitle is the secondary display text: email, department or status.
func (r Record) Subtitle() string {
	return r.first("email", "department", "status")
}

func (r Record) first(fields ...string) string {
	for _, field := range fields {
		if text := r.Text(field); text != "" {
			return text
		}
	}
	return ""
}

// Stats is the admin dashboard's counts, keyed as the service names
// them.
type Stats map[string]any

// AdminStats fetches the dashboard counts.
func (c *Client) AdminStats(ctx context.Context) (Stats, error) {
	response, err := c.Request(ctx, http.MethodGet, "/admin/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[Stats](response.Data, "stats")
}

// ManagedList lists one managed collection.
func (c *Client) ManagedList(ctx context.Context, kind ManagedKind) ([]Record, error) {
	response, err := c.Request(ctx, http.MethodGet, kind.listPath(), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Record](response.Data, kind.envelopeKeys()...)
}

// DeleteManaged deletes one record of a managed collection.
func (c *Client) DeleteManaged(ctx context.Context, kind ManagedKind, id string) error {
	if !kind.Deletable() {
		return fmt.Errorf("%w: %s records cannot be deleted", ErrNotAvailable, kind)
	}
	_, err := c.Request(ctx, http.MethodDelete, kind.listPath()+"/"+url.PathEscape(id), nil, nil)
	return err
}
