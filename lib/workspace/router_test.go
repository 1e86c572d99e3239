// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"errors"
	"slices"
	"testing"

	"github.com/bureau-foundation/outpass/lib/session"
)

func allWorkspaces() []Workspace {
	workspaces := []Workspace{Auth}
	for _, role := range session.AllRoles() {
		workspaces = append(workspaces, ForRole(role))
	}
	return workspaces
}

func TestEveryRoleHasAGraph(t *testing.T) {
	t.Parallel()
	for _, w := range allWorkspaces() {
		graph := ScreensFor(w)
		if graph.Workspace != w {
			t.Errorf("ScreensFor(%q).Workspace = %q", w, graph.Workspace)
		}
		if !graph.Contains(graph.Landing) {
			t.Errorf("%s landing %q not in its own graph", w, graph.Landing)
		}
		for _, screen := range graph.Screens() {
			if screen.Workspace() != w {
				t.Errorf("screen %q in graph %q is qualified for %q", screen, w, screen.Workspace())
			}
		}
	}
}

func TestGraphsAreDisjoint(t *testing.T) {
	t.Parallel()
	owner := make(map[Screen]Workspace)
	for _, w := range allWorkspaces() {
		for _, screen := range ScreensFor(w).Screens() {
			if previous, ok := owner[screen]; ok {
				t.Errorf("screen %q in both %q and %q", screen, previous, w)
			}
			owner[screen] = w
		}
	}
}

func TestLandingScreens(t *testing.T) {
	t.Parallel()
	want := map[Workspace]Screen{
		Auth:                               AuthWelcome,
		Workspace(session.Student):         StudentDashboard,
		Workspace(session.Staff):           StaffDashboard,
		Workspace(session.Warden):          WardenDashboard,
		Workspace(session.Watchman):        WatchmanDashboard,
		Workspace(session.YearIncharge):    YearInchargeDashboard,
		Workspace(session.Admin):           AdminDashboard,
	}
	for w, landing := range want {
		if got := ScreensFor(w).Landing; got != landing {
			t.Errorf("landing of %q = %q, want %q", w, got, landing)
		}
	}
}

func TestStudentTabs(t *testing.T) {
	t.Parallel()
	graph := ScreensFor(Workspace(session.Student))
	var names []TabName
	for _, tab := range graph.Tabs {
		names = append(names, tab.Name)
	}
	want := []TabName{TabHome, TabSubjects, TabOutpass, TabProfile}
	if !slices.Equal(names, want) {
		t.Errorf("student tabs = %v, want %v", names, want)
	}
	for _, w := range allWorkspaces() {
		if w != Workspace(session.Student) && ScreensFor(w).Tabbed() {
			t.Errorf("%q is tabbed", w)
		}
	}
}

func TestForSession(t *testing.T) {
	t.Parallel()
	if got := For(session.Unauthenticated()); got != Auth {
		t.Errorf("For(unauthenticated) = %q, want auth", got)
	}
	loggedIn := session.Session{Token: "t", LoggedIn: true, Role: session.Warden}
	if got := For(loggedIn); got != Workspace(session.Warden) {
		t.Errorf("For(warden) = %q", got)
	}
}

func TestScreensForPanicsOutsideClosedSet(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("ScreensFor(principal) did not panic")
		}
	}()
	ScreensFor(Workspace("principal"))
}

func TestNavigateBeforeMount(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	if err := router.Navigate(AuthLogin); !errors.Is(err, ErrNotMounted) {
		t.Errorf("Navigate before Mount = %v, want ErrNotMounted", err)
	}
	if router.Back() {
		t.Error("Back before Mount returned true")
	}
	if router.Current() != "" {
		t.Errorf("Current before Mount = %q", router.Current())
	}
}

func TestNavigateRefusesCrossWorkspace(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	router.Mount(Workspace(session.Student))

	err := router.Navigate(WardenPendingOutpass)
	if !errors.Is(err, ErrCrossWorkspace) {
		t.Fatalf("Navigate(warden screen) = %v, want ErrCrossWorkspace", err)
	}
	if router.Current() != StudentDashboard {
		t.Errorf("Current after refused navigation = %q", router.Current())
	}
}

func TestNavigatePushAndBack(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	router.Mount(Workspace(session.Warden))

	for _, screen := range []Screen{WardenPendingOutpass, WardenStudentView} {
		if err := router.Navigate(screen); err != nil {
			t.Fatalf("Navigate(%q): %v", screen, err)
		}
	}
	want := []Screen{WardenDashboard, WardenPendingOutpass, WardenStudentView}
	if got := router.History(); !slices.Equal(got, want) {
		t.Errorf("History = %v, want %v", got, want)
	}

	// Navigating to a screen already on the stack pops back to it.
	if err := router.Navigate(WardenDashboard); err != nil {
		t.Fatal(err)
	}
	if got := router.History(); !slices.Equal(got, []Screen{WardenDashboard}) {
		t.Errorf("History after returning to landing = %v", got)
	}
	if router.Back() {
		t.Error("Back at landing returned true")
	}
}

func TestResetDiscardsHistory(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	router.Mount(Workspace(session.Staff))
	router.Navigate(StaffPassApproval)
	router.Navigate(StaffStudentDetails)

	router.OnSessionChange(session.Change{
		Session: session.Unauthenticated(),
		Cause:   session.CauseInvalidated,
		Reason:  "status 403",
	})

	if router.Workspace() != Auth {
		t.Errorf("Workspace after invalidation = %q, want auth", router.Workspace())
	}
	if router.Current() != AuthWelcome {
		t.Errorf("Current after invalidation = %q, want %q", router.Current(), AuthWelcome)
	}
	if router.Back() {
		t.Error("Back after reset returned true")
	}
	if err := router.Navigate(StaffPassApproval); !errors.Is(err, ErrCrossWorkspace) {
		t.Errorf("Navigate to previous workspace = %v, want ErrCrossWorkspace", err)
	}
}

func TestResetBeforeMountIsQueued(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	router.Reset(Workspace(session.Admin))
	if router.Mounted() {
		t.Fatal("Reset mounted the router")
	}
	router.Reset(Auth)
	router.Mount(Workspace(session.Admin))

	if router.Workspace() != Auth {
		t.Errorf("Workspace = %q, want the queued auth reset", router.Workspace())
	}

	// The queue is consumed by Mount.
	router.Mount(Workspace(session.Admin))
	if router.Workspace() != Workspace(session.Admin) {
		t.Errorf("second Mount landed in %q", router.Workspace())
	}
}

func TestStudentTabsKeepIndependentStacks(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	router.Mount(Workspace(session.Student))

	router.Navigate(StudentNotices)
	if err := router.Navigate(StudentNewOutpass); err != nil {
		t.Fatal(err)
	}
	if router.ActiveTab() != TabOutpass {
		t.Errorf("ActiveTab = %q, want %q", router.ActiveTab(), TabOutpass)
	}
	if got := router.History(); !slices.Equal(got, []Screen{StudentOutpass, StudentNewOutpass}) {
		t.Errorf("outpass tab history = %v", got)
	}

	if err := router.SwitchTab(TabHome); err != nil {
		t.Fatal(err)
	}
	if router.Current() != StudentNotices {
		t.Errorf("home tab current = %q, want %q", router.Current(), StudentNotices)
	}
	if err := router.SwitchTab(TabName("SettingsTab")); !errors.Is(err, ErrUnknownTab) {
		t.Errorf("SwitchTab(unknown) = %v, want ErrUnknownTab", err)
	}
}

func TestGuardRefusalLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	errIncomplete := errors.New("incomplete")
	router := NewRouter(nil)
	router.Mount(Workspace(session.Student))
	router.SetGuard(func(screen Screen) error {
		if screen == StudentSubjects || screen == StudentNewOutpass {
			return errIncomplete
		}
		return nil
	})

	if err := router.Navigate(StudentNewOutpass); !errors.Is(err, errIncomplete) {
		t.Errorf("Navigate = %v, want guard error", err)
	}
	if err := router.SwitchTab(TabSubjects); !errors.Is(err, errIncomplete) {
		t.Errorf("SwitchTab = %v, want guard error", err)
	}
	if router.Current() != StudentDashboard || router.ActiveTab() != TabHome {
		t.Errorf("state changed after refusal: %q on %q", router.Current(), router.ActiveTab())
	}
	if err := router.Navigate(StudentProfile); err != nil {
		t.Errorf("Navigate(profile) = %v", err)
	}
}

func TestOnNavigateListener(t *testing.T) {
	t.Parallel()
	router := NewRouter(nil)
	var seen []Screen
	router.OnNavigate(func(screen Screen) { seen = append(seen, screen) })

	router.Mount(Auth)
	router.Navigate(AuthLogin)
	router.Back()

	want := []Screen{AuthWelcome, AuthLogin, AuthWelcome}
	if !slices.Equal(seen, want) {
		t.Errorf("listener saw %v, want %v", seen, want)
	}
}
