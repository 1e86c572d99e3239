// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/session"
)

// Notice is a notice-board post.
type Notice struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
	Staff     *struct {
		Name string `json:"name"`
	} `json:"staffId,omitempty"`
}

// Author returns the posting staff member's name, or "".
func (n Notice) Author() string {
	if n.Staff == nil {
		return ""
	}
	return n.Staff.Name
}

// Subject is a course the student is enrolled in.
type Subject struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Department string `json:"department"`
	Semester   int    `json:"semester,omitempty"`
	Staff      *struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	} `json:"staffId,omitempty"`
}

// SubjectFile is a course material attached to a subject.
type SubjectFile struct {
	ID         string `json:"_id"`
	Filename   string `json:"filename"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploadedAt"`
}

// Notices lists the notice board. Staff read their own board; every
// other role reads the student board.
func (c *Client) Notices(ctx context.Context, role session.Role) ([]Notice, error) {
	path := "/api/notices"
	if role == session.Staff {
		path = "/staff/notices"
	}
	response, err := c.Request(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Notice](response.Data, "notices")
}

// Subjects lists the student's subjects.
func (c *Client) Subjects(ctx context.Context) ([]Subject, error) {
	response, err := c.Request(ctx, http.MethodGet, "/api/subjects", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Subject](response.Data, "subjects")
}

// SubjectFiles lists the materials of one subject. URLs are resolved
// against the content origin.
func (c *Client) SubjectFiles(ctx context.Context, subjectID string) ([]SubjectFile, error) {
	response, err := c.Request(ctx, http.MethodGet, "/api/subjects/"+url.PathEscape(subjectID)+"/files", nil, nil)
	if err != nil {
		return nil, err
	}
	files, err := decodeList[SubjectFile](response.Data, "files")
	if err != nil {
		return nil, err
	}
	for index := range files {
		files[index].URL = c.ResolveAssetURL(files[index].URL)
	}
	return files, nil
}

// StaffDirectory lists teaching staff for students locating a staff
// member.
func (c *Client) StaffDirectory(ctx context.Context) ([]Member, error) {
	response, err := c.Request(ctx, http.MethodGet, "/staff/all", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Member](response.Data, "staffs", "staff")
}

// Students lists the students visible to role.
func (c *Client) Students(ctx context.Context, role session.Role) ([]profile.Student, error) {
	if role == session.Student {
		return nil, fmt.Errorf("%w: students cannot list students", ErrNotAvailable)
	}
	response, err := c.Request(ctx, http.MethodGet, "/"+Prefix(role)+"/students", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[profile.Student](response.Data, "students")
}

// RegisterStudent creates a student account as staff or admin.
func (c *Client) RegisterStudent(ctx context.Context, role session.Role, student map[string]any) error {
	switch role {
	case session.Staff, session.Admin:
	default:
		return fmt.Errorf("%w: %s cannot register students", ErrNotAvailable, role)
	}
	_, err := c.Request(ctx, http.MethodPost, "/"+Prefix(role)+"/register-student", student, nil)
	return err
}
