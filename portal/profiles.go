// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/session"
)

// Member is the profile of a staff member, warden, watchman, year
// incharge or admin.
type Member struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Department  string `json:"department,omitempty"`
	Designation string `json:"designation,omitempty"`
	Photo       string `json:"photo,omitempty"`
	Gender      string `json:"gender,omitempty"`

	HandlingYear       []string `json:"handlingyear,omitempty"`
	HandlingBatch      []string `json:"handlingbatch,omitempty"`
	HandlingDepartment []string `json:"handlingdepartment,omitempty"`
}

// memberKeys are the envelope keys a member profile may arrive under.
var memberKeys = []string{"staff", "warden", "watchman", "yearIncharge", "admin", "user"}

// StudentProfile fetches the logged-in student's profile.
func (c *Client) StudentProfile(ctx context.Context) (profile.Student, error) {
	response, err := c.Request(ctx, http.MethodGet, "/api/profile", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject[profile.Student](response.Data, "user")
}

// UpdateStudentProfile sends the changed fields of the student profile.
func (c *Client) UpdateStudentProfile(ctx context.Context, changes map[string]any) error {
	_, err := c.Request(ctx, http.MethodPut, "/api/profile/update", changes, nil)
	return err
}

// MemberProfile fetches the profile of a non-student role.
func (c *Client) MemberProfile(ctx context.Context, role session.Role) (Member, error) {
	if role == session.Student {
		return Member{}, fmt.Errorf("portal: students use StudentProfile")
	}
	response, err := c.Request(ctx, http.MethodGet, "/"+Prefix(role)+"/profile", nil, nil)
	if err != nil {
		return Member{}, err
	}
	return decodeObject[Member](response.Data, memberKeys...)
}

// UpdateMemberProfile sends the changed fields of a member profile.
func (c *Client) UpdateMemberProfile(ctx context.Context, role session.Role, changes map[string]any) error {
	if role == session.Student {
		return fmt.Errorf("portal: students use UpdateStudentProfile")
	}
	_, err := c.Request(ctx, http.MethodPut, "/"+Prefix(role)+"/profile/update", changes, nil)
	return err
}
