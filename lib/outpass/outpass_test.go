// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package outpass

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/bureau-foundation/outpass/lib/session"
)

func ids(records []Request) []string {
	result := make([]string, len(records))
	for index, record := range records {
		result[index] = record.ID
	}
	return result
}

func TestSortForDisplayEmergencyFirst(t *testing.T) {
	t.Parallel()
	input := []Request{
		{ID: "e1", Type: TypeEmergency},
		{ID: "r1", Type: TypeRegular},
		{ID: "e2", Type: TypeEmergency},
	}
	got := ids(SortForDisplay(input))
	want := []string{"e1", "e2", "r1"}
	if !slices.Equal(got, want) {
		t.Errorf("SortForDisplay = %v, want %v", got, want)
	}
	if input[1].ID != "r1" {
		t.Error("SortForDisplay modified its input")
	}
}

func TestSortForDisplayIsStable(t *testing.T) {
	t.Parallel()
	input := []Request{
		{ID: "m1", Type: TypeMedical},
		{ID: "r1", Type: TypeRegular},
		{ID: "e1", Type: TypeEmergency},
		{ID: "u1", Type: Type("weekend")},
		{ID: "r2", Type: TypeRegular},
		{ID: "e2", Type: TypeEmergency},
		{ID: "m2", Type: TypeMedical},
	}
	got := ids(SortForDisplay(input))
	want := []string{"e1", "e2", "m1", "r1", "u1", "r2", "m2"}
	if !slices.Equal(got, want) {
		t.Errorf("SortForDisplay = %v, want %v", got, want)
	}

	// Property: no emergency appears after a non-emergency.
	sorted := SortForDisplay(input)
	seenOther := false
	for _, record := range sorted {
		if !record.Emergency() {
			seenOther = true
		} else if seenOther {
			t.Errorf("emergency %s sorted after a non-emergency record", record.ID)
		}
	}
}

func TestTerminalStatusesHaveNoAffordances(t *testing.T) {
	t.Parallel()
	for _, status := range []Status{StatusApproved, StatusRejected} {
		if !status.Terminal() {
			t.Errorf("%q not terminal", status)
		}
		for _, role := range session.AllRoles() {
			record := Request{ID: "x", Status: status}
			if got := Affordances(record, role); len(got) != 0 {
				t.Errorf("Affordances(%s, %s) = %v, want none", status, role, got)
			}
		}
	}
}

func TestAffordancesByRole(t *testing.T) {
	t.Parallel()
	pending := Request{ID: "x", Status: StatusPending}
	for _, role := range []session.Role{session.Staff, session.Warden, session.YearIncharge} {
		got := Affordances(pending, role)
		if !slices.Equal(got, []Action{Approve, Reject}) {
			t.Errorf("Affordances(pending, %s) = %v", role, got)
		}
	}
	for _, role := range []session.Role{session.Student, session.Watchman, session.Admin} {
		if got := Affordances(pending, role); len(got) != 0 {
			t.Errorf("Affordances(pending, %s) = %v, want none", role, got)
		}
	}
	unknown := Request{ID: "x", Status: Status("on-hold")}
	if got := Affordances(unknown, session.Staff); len(got) != 0 {
		t.Errorf("Affordances(unknown status) = %v, want none", got)
	}
}

func TestExpectedFollowsChain(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status Status
		role   session.Role
		action Action
		want   Status
		ok     bool
	}{
		{StatusPending, session.Staff, Approve, StatusStaffApproved, true},
		{StatusPending, session.Staff, Reject, StatusRejected, true},
		{StatusStaffApproved, session.Warden, Approve, StatusWardenApproved, true},
		{StatusStaffApproved, session.Warden, Reject, StatusRejected, true},
		{StatusWardenApproved, session.YearIncharge, Approve, StatusApproved, true},
		{StatusWardenApproved, session.YearIncharge, Reject, StatusRejected, true},
		{StatusPending, session.Warden, Approve, "", false},
		{StatusApproved, session.YearIncharge, Approve, "", false},
		{StatusRejected, session.Staff, Reject, "", false},
	}
	for _, test := range tests {
		got, ok := Expected(test.status, test.role, test.action)
		if got != test.want || ok != test.ok {
			t.Errorf("Expected(%s, %s, %s) = %q, %v; want %q, %v",
				test.status, test.role, test.action, got, ok, test.want, test.ok)
		}
	}
}

func TestStatusLabel(t *testing.T) {
	t.Parallel()
	if got := StatusStaffApproved.Label(); got != "Staff Approved" {
		t.Errorf("Label = %q, want %q", got, "Staff Approved")
	}
	if got := Status("on-hold").Label(); got != "on-hold" {
		t.Errorf("unknown Label = %q, want verbatim", got)
	}
}

func TestRequestDecodesServiceShape(t *testing.T) {
	t.Parallel()
	payload := `{
		"_id": "665f",
		"studentId": {"_id": "s1", "name": "Asha", "registerNumber": "21CS001", "department": "CSE", "year": "3", "email": "asha@example.com"},
		"reason": "Family function",
		"outpassType": "emergency",
		"fromDate": "2026-10-20",
		"toDate": "2026-10-21",
		"fromTime": "09:00",
		"status": "staff-approved",
		"createdAt": "2026-10-16T08:00:00Z",
		"staffComment": "ok"
	}`
	var record Request
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if record.ID != "665f" || record.Student.RegisterNumber != "21CS001" {
		t.Errorf("decoded ids = %q / %q", record.ID, record.Student.RegisterNumber)
	}
	if !record.Emergency() || record.Status != StatusStaffApproved {
		t.Errorf("decoded type/status = %q / %q", record.Type, record.Status)
	}
	if got := record.Window(); got != "2026-10-20 09:00 to 2026-10-21" {
		t.Errorf("Window = %q", got)
	}
}

func TestNewRequestValidate(t *testing.T) {
	t.Parallel()
	valid := NewRequest{Reason: " Medical visit ", FromDate: "2026-10-20", ToDate: "2026-10-20"}.Normalize()
	if valid.Type != TypeRegular || valid.Reason != "Medical visit" {
		t.Errorf("Normalize = %+v", valid)
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate(valid) = %v", err)
	}

	invalid := NewRequest{Type: Type("vacation")}.Normalize()
	if err := invalid.Validate(); err == nil {
		t.Error("Validate(empty) succeeded")
	}
}

func TestParseAction(t *testing.T) {
	t.Parallel()
	if action, err := ParseAction("reject"); err != nil || action != Reject {
		t.Errorf("ParseAction(reject) = %q, %v", action, err)
	}
	if _, err := ParseAction("escalate"); err == nil {
		t.Error("ParseAction(escalate) succeeded")
	}
}
