// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bureau-foundation/outpass/lib/session"
)

// Workspace is the unauthenticated workspace or one of the six role
// workspaces.
type Workspace string

// Auth is the unauthenticated workspace.
const Auth Workspace = "auth"

// ForRole maps a role to its workspace.
func ForRole(role session.Role) Workspace {
	switch role {
	case session.Student, session.Staff, session.Warden,
		session.Watchman, session.YearIncharge, session.Admin:
		return Workspace(role)
	default:
		panic(fmt.Sprintf("workspace: unhandled role %q", role))
	}
}

// For returns the workspace a resolved session may use.
func For(current session.Session) Workspace {
	if !current.LoggedIn {
		return Auth
	}
	return ForRole(current.Role)
}

// Role returns the role owning w, or false for Auth.
func (w Workspace) Role() (session.Role, bool) {
	if w == Auth {
		return "", false
	}
	return session.Role(w), true
}

// Screen identifies one screen. Identifiers are qualified by workspace
// ("warden/PendingOutpass"), so no two graphs share a screen.
type Screen string

// Workspace returns the workspace qualifier of s.
func (s Screen) Workspace() Workspace {
	qualifier, _, _ := strings.Cut(string(s), "/")
	return Workspace(qualifier)
}

// Name returns the unqualified route name.
func (s Screen) Name() string {
	_, name, _ := strings.Cut(string(s), "/")
	return name
}

// TabName names a student tab.
type TabName string

const (
	TabHome     TabName = "HomeTab"
	TabSubjects TabName = "SubjectsTab"
	TabOutpass  TabName = "OutpassTab"
	TabProfile  TabName = "ProfileTab"
)

// Tab is one tab of a tabbed workspace. Each tab keeps its own stack.
type Tab struct {
	Name    TabName
	Root    Screen
	Screens []Screen
}

// Graph is the static set of screens reachable inside one workspace.
type Graph struct {
	Workspace Workspace

	// Landing is where every entry into the workspace starts.
	Landing Screen

	// Tabs is non-empty only for tabbed workspaces (student).
	Tabs []Tab

	screens []Screen
}

// Screens lists every screen of the graph, landing first.
func (g Graph) Screens() []Screen {
	return slices.Clone(g.screens)
}

// Contains reports whether s belongs to the graph.
func (g Graph) Contains(s Screen) bool {
	return slices.Contains(g.screens, s)
}

// Tabbed reports whether the workspace uses tabs.
func (g Graph) Tabbed() bool {
	return len(g.Tabs) > 0
}

// TabOf returns the tab holding s.
func (g Graph) TabOf(s Screen) (Tab, bool) {
	for _, tab := range g.Tabs {
		if slices.Contains(tab.Screens, s) {
			return tab, true
		}
	}
	return Tab{}, false
}

// Tab returns the named tab.
func (g Graph) Tab(name TabName) (Tab, bool) {
	for _, tab := range g.Tabs {
		if tab.Name == name {
			return tab, true
		}
	}
	return Tab{}, false
}

func flat(workspace Workspace, screens ...Screen) Graph {
	return Graph{Workspace: workspace, Landing: screens[0], screens: screens}
}

func tabbed(workspace Workspace, tabs ...Tab) Graph {
	graph := Graph{Workspace: workspace, Landing: tabs[0].Root, Tabs: tabs}
	for _, tab := range tabs {
		graph.screens = append(graph.screens, tab.Screens...)
	}
	return graph
}

// ScreensFor returns the screen graph of w. It panics for a workspace
// outside the closed set.
func ScreensFor(w Workspace) Graph {
	switch w {
	case Auth:
		return flat(Auth,
			AuthWelcome, AuthLogin, AuthWardenLogin,
			AuthWatchmanLogin, AuthYearInchargeLogin, AuthAdminLogin)
	case Workspace(session.Student):
		return tabbed(w,
			Tab{Name: TabHome, Root: StudentDashboard,
				Screens: []Screen{StudentDashboard, StudentNotices, StudentStaffs, StudentStaffProfile}},
			Tab{Name: TabSubjects, Root: StudentSubjects,
				Screens: []Screen{StudentSubjects, StudentSubjectDetails}},
			Tab{Name: TabOutpass, Root: StudentOutpass,
				Screens: []Screen{StudentOutpass, StudentNewOutpass}},
			Tab{Name: TabProfile, Root: StudentProfile,
				Screens: []Screen{StudentProfile}},
		)
	case Workspace(session.Staff):
		return flat(w,
			StaffDashboard, StaffProfile, StaffNotices,
			StaffPassApproval, StaffStudentDetails, StaffStudentRegistration)
	case Workspace(session.Warden):
		return flat(w,
			WardenDashboard, WardenProfile, WardenPendingOutpass,
			WardenOutpassList, WardenStudentView)
	case Workspace(session.Watchman):
		return flat(w,
			WatchmanDashboard, WatchmanProfile, WatchmanOutpassList, WatchmanStudentView)
	case Workspace(session.YearIncharge):
		return flat(w,
			YearInchargeDashboard, YearInchargeProfile, YearInchargePendingOutpass,
			YearInchargeOutpassList, YearInchargeStudentView)
	case Workspace(session.Admin):
		return flat(w,
			AdminDashboard, AdminProfile, AdminManageStudents, AdminStudentRegistration,
			AdminManageStaff, AdminManageWarden, AdminManageYearIncharge,
			AdminManageSecurity, AdminManageBus, AdminOutpasses)
	default:
		panic(fmt.Sprintf("workspace: unhandled workspace %q", w))
	}
}
