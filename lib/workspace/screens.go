// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

// Unauthenticated screens.
const (
	AuthWelcome           Screen = "auth/Welcome"
	AuthLogin             Screen = "auth/Login"
	AuthWardenLogin       Screen = "auth/WardenLogin"
	AuthWatchmanLogin     Screen = "auth/WatchmanLogin"
	AuthYearInchargeLogin Screen = "auth/YearInchargeLogin"
	AuthAdminLogin        Screen = "auth/AdminLogin"
)

// Student screens, grouped by tab.
const (
	StudentDashboard    Screen = "student/Dashboard"
	StudentNotices      Screen = "student/Notices"
	StudentStaffs       Screen = "student/Staffs"
	StudentStaffProfile Screen = "student/StaffProfile"

	StudentSubjects       Screen = "student/Subjects"
	StudentSubjectDetails Screen = "student/SubjectDetails"

	StudentOutpass    Screen = "student/Outpass"
	StudentNewOutpass Screen = "student/NewOutpass"

	StudentProfile Screen = "student/Profile"
)

const (
	StaffDashboard           Screen = "staff/StaffDashboard"
	StaffProfile             Screen = "staff/StaffProfile"
	StaffNotices             Screen = "staff/StaffNotices"
	StaffPassApproval        Screen = "staff/PassApproval"
	StaffStudentDetails      Screen = "staff/StudentDetails"
	StaffStudentRegistration Screen = "staff/StudentRegistration"
)

const (
	WardenDashboard      Screen = "warden/WardenDashboard"
	WardenProfile        Screen = "warden/WardenProfile"
	WardenPendingOutpass Screen = "warden/PendingOutpass"
	WardenOutpassList    Screen = "warden/OutpassList"
	WardenStudentView    Screen = "warden/WardenStudentView"
)

const (
	WatchmanDashboard   Screen = "watchman/WatchmanDashboard"
	WatchmanProfile     Screen = "watchman/WatchmanProfile"
	WatchmanOutpassList Screen = "watchman/WatchmanOutpassList"
	WatchmanStudentView Screen = "watchman/WatchmanStudentView"
)

const (
	YearInchargeDashboard      Screen = "year_incharge/YearInchargeDashboard"
	YearInchargeProfile        Screen = "year_incharge/YearInchargeProfile"
	YearInchargePendingOutpass Screen = "year_incharge/YIPendingOutpass"
	YearInchargeOutpassList    Screen = "year_incharge/YIOutpassList"
	YearInchargeStudentView    Screen = "year_incharge/YIStudentView"
)

const (
	AdminDashboard           Screen = "admin/AdminDashboard"
	AdminProfile             Screen = "admin/AdminProfile"
	AdminManageStudents      Screen = "admin/ManageStudents"
	AdminStudentRegistration Screen = "admin/StudentRegistration"
	AdminManageStaff         Screen = "admin/ManageStaff"
	AdminManageWarden        Screen = "admin/ManageWarden"
	AdminManageYearIncharge  Screen = "admin/ManageYearIncharge"
	AdminManageSecurity      Screen = "admin/ManageSecurity"
	AdminManageBus           Screen = "admin/ManageBus"
	AdminOutpasses           Screen = "admin/OutpassAdmin"
)
