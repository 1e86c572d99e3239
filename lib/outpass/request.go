// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package outpass

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Type is the kind of leave requested.
type Type string

const (
	TypeRegular   Type = "regular"
	TypeEmergency Type = "emergency"
	TypeMedical   Type = "medical"
)

// Types lists the kinds of leave a student may request.
func Types() []Type {
	return []Type{TypeRegular, TypeEmergency, TypeMedical}
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return slices.Contains(Types(), t)
}

// StudentRef is the student summary embedded in an outpass record.
type StudentRef struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	RegisterNumber string `json:"registerNumber"`
	Department     string `json:"department"`
	Year           string `json:"year"`
	Email          string `json:"email"`
	Photo          string `json:"photo,omitempty"`
	ResidenceType  string `json:"residencetype,omitempty"`
	ParentNumber   string `json:"parentnumber,omitempty"`
}

// Request is one outpass record as the service reports it. The client
// never modifies a Request.
type Request struct {
	ID       string     `json:"_id"`
	Student  StudentRef `json:"studentId"`
	Reason   string     `json:"reason"`
	Type     Type       `json:"outpassType"`
	FromDate string     `json:"fromDate"`
	ToDate   string     `json:"toDate"`
	FromTime string     `json:"fromTime,omitempty"`
	ToTime   string     `json:"toTime,omitempty"`
	Status   Status     `json:"status"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`

	StaffApproval        string `json:"staffApproval,omitempty"`
	WardenApproval       string `json:"wardenApproval,omitempty"`
	YearInchargeApproval string `json:"yearInchargeApproval,omitempty"`

	StaffComment        string `json:"staffComment,omitempty"`
	WardenComment       string `json:"wardenComment,omitempty"`
	YearInchargeComment string `json:"yearInchargeComment,omitempty"`
}

// Emergency reports whether the record sorts ahead of the rest.
func (r Request) Emergency() bool {
	return r.Type == TypeEmergency
}

// Window is the requested leave window for display, times included
// when present.
func (r Request) Window() string {
	from := strings.TrimSpace(r.FromDate + " " + r.FromTime)
	to := strings.TrimSpace(r.ToDate + " " + r.ToTime)
	return from + " to " + to
}

// NewRequest is a student's submission.
type NewRequest struct {
	Reason   string `json:"reason"`
	Type     Type   `json:"outpassType"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	FromTime string `json:"fromTime,omitempty"`
	ToTime   string `json:"toTime,omitempty"`
}

// Normalize trims the fields and defaults an empty type to regular.
func (n NewRequest) Normalize() NewRequest {
	n.Reason = strings.TrimSpace(n.Reason)
	n.FromDate = strings.TrimSpace(n.FromDate)
	n.ToDate = strings.TrimSpace(n.ToDate)
	n.FromTime = strings.TrimSpace(n.FromTime)
	n.ToTime = strings.TrimSpace(n.ToTime)
	if n.Type == "" {
		n.Type = TypeRegular
	}
	return n
}

// Validate checks a normalized submission and reports every problem.
func (n NewRequest) Validate() error {
	var errs []error
	if n.Reason == "" {
		errs = append(errs, errors.New("reason is required"))
	}
	if n.FromDate == "" {
		errs = append(errs, errors.New("from date is required"))
	}
	if n.ToDate == "" {
		errs = append(errs, errors.New("to date is required"))
	}
	if !n.Type.Valid() {
		errs = append(errs, fmt.Errorf("outpass type %q is not one of regular, emergency, medical", n.Type))
	}
	return errors.Join(errs...)
}
