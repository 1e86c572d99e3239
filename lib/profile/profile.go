// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package profile decides whether a student profile is complete enough
// to unlock locating staff, viewing subjects and creating outpasses.
//
// A profile is kept as the flat object the service returns, so the
// completeness predicate can tell an absent field from an empty string
// from a numeric zero: all three count as unfilled.
package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names a profile attribute as the service spells it.
type Field string

const (
	FieldName           Field = "name"
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldParentNumber   Field = "parentnumber"
	FieldRegisterNumber Field = "registerNumber"
	FieldDepartment     Field = "department"
	FieldYear           Field = "year"
	FieldSemester       Field = "semester"
	FieldBatch          Field = "batch"
	FieldGender         Field = "gender"
	FieldPhoto          Field = "photo"
	FieldResidenceType  Field = "residencetype"
	FieldHostelName     Field = "hostelname"
	FieldHostelRoomNo   Field = "hostelroomno"
	FieldBusNo          Field = "busno"
	FieldBoardingPoint  Field = "boardingpoint"
	FieldCGPA           Field = "cgpa"
	FieldArrears        Field = "arrears"
	FieldStaff          Field = "staffid"
)

// Residence types with conditional required fields.
const (
	ResidenceHostel     = "hostel"
	ResidenceDayScholar = "day scholar"
)

// commonFields are required of every student.
var commonFields = []Field{
	FieldName, FieldEmail, FieldPhone, FieldParentNumber, FieldRegisterNumber,
	FieldDepartment, FieldYear, FieldSemester, FieldBatch, FieldGender,
	FieldPhoto, FieldResidenceType,
}

// Label is the display name of a field.
func (f Field) Label() string {
	switch f {
	case FieldParentNumber:
		return "Parent number"
	case FieldRegisterNumber:
		return "Register number"
	case FieldResidenceType:
		return "Residence type"
	case FieldHostelName:
		return "Hostel name"
	case FieldHostelRoomNo:
		return "Hostel room number"
	case FieldBusNo:
		return "Bus number"
	case FieldBoardingPoint:
		return "Boarding point"
	case FieldCGPA:
		return "CGPA"
	case FieldStaff:
		return "Staff advisor"
	default:
		name := string(f)
		return strings.ToUpper(name[:1]) + name[1:]
	}
}

// Student is a student profile as decoded from the service.
type Student map[string]any

// Filled reports whether field holds a value: not absent, not null,
// not "" and not numeric 0.
func (s Student) Filled(field Field) bool {
	value, ok := s[string(field)]
	if !ok {
		return false
	}
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed != ""
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case int64:
		return typed != 0
	default:
		return true
	}
}

// Text returns field formatted for display, or "" when absent.
func (s Student) Text(field Field) string {
	switch typed := s[string(field)].(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case map[string]any:
		if name, ok := typed["name"].(string); ok {
			return name
		}
		return ""
	case []any:
		parts := make([]string, 0, len(typed))
		for _, element := range typed {
			parts = append(parts, fmt.Sprint(element))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(typed)
	}
}

// Name returns the student's name.
func (s Student) Name() string { return s.Text(FieldName) }

// ResidenceType returns the residence type verbatim.
func (s Student) ResidenceType() string { return s.Text(FieldResidenceType) }

// Required returns the fields a complete profile must fill: the common
// set plus the residence-specific extension.
func Required(s Student) []Field {
	required := append([]Field(nil), commonFields...)
	switch s.ResidenceType() {
	case ResidenceHostel:
		required = append(required, FieldHostelName, FieldHostelRoomNo)
	case ResidenceDayScholar:
		required = append(required, FieldBusNo, FieldBoardingPoint)
	}
	return required
}

// Missing returns the required fields that are not filled, in
// declaration order. A nil profile is missing everything common.
func Missing(s Student) []Field {
	var missing []Field
	for _, field := range Required(s) {
		if !s.Filled(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// IsComplete reports whether every required field is filled.
func IsComplete(s Student) bool {
	return len(Missing(s)) == 0
}

// Completion is the percentage of required fields filled, rounded down.
func Completion(s Student) int {
	required := Required(s)
	filled := len(required) - len(Missing(s))
	return filled * 100 / len(required)
}
