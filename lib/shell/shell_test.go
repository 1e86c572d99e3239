// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/outpass/lib/credstore"
	"github.com/bureau-foundation/outpass/lib/notify"
	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/profile"
	"github.com/bureau-foundation/outpass/lib/session"
	"github.com/bureau-foundation/outpass/lib/workspace"
	"github.com/bureau-foundation/outpass/portal"
)

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}

func loggedIn(role session.Role) map[string]string {
	return map[string]string{
		credstore.KeyToken:    "tok-" + string(role),
		credstore.KeyLoggedIn: credstore.LoggedInMarker,
		credstore.KeyUserType: string(role),
	}
}

func completeDayScholar() map[string]any {
	return map[string]any{
		"name":           "Asha",
		"email":          "asha@example.com",
		"phone":          "9000000001",
		"parentnumber":   "9000000002",
		"registerNumber": "21CS001",
		"department":     "CSE",
		"year":           "3",
		"semester":       5,
		"batch":          "2021-2025",
		"gender":         "female",
		"photo":          "uploads/asha.jpg",
		"residencetype":  "day scholar",
		"busno":          "12",
		"boardingpoint":  "Central",
	}
}

type harness struct {
	shell    *Shell
	store    *credstore.Memory
	recorder *notify.Recorder
}

func newHarness(t *testing.T, handler http.Handler, initial map[string]string) *harness {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := credstore.NewMemory(initial)
	recorder := &notify.Recorder{}
	shell, err := New(context.Background(), Config{
		Store:   store,
		BaseURL: server.URL,
		Notify:  recorder,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(shell.Close)
	return &harness{shell: shell, store: store, recorder: recorder}
}

func TestNewRequiresStore(t *testing.T) {
	t.Parallel()
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("New without Store succeeded, want error")
	}
}

func TestStartupMountsStoredWorkspace(t *testing.T) {
	t.Parallel()
	for _, test := range []struct {
		name    string
		initial map[string]string
		landing workspace.Screen
	}{
		{"logged out", nil, workspace.AuthWelcome},
		{"admin", loggedIn(session.Admin), workspace.AdminDashboard},
		{"unknown role defaults to student", map[string]string{
			credstore.KeyLoggedIn: "true",
			credstore.KeyUserType: "principal",
		}, workspace.StudentDashboard},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t, http.NotFoundHandler(), test.initial)
			if got := h.shell.Router.Current(); got != test.landing {
				t.Errorf("Current = %q, want %q", got, test.landing)
			}
		})
	}
}

func TestStudentLoginLandsOnTabbedWorkspace(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]string{"token": "student-token"})
	})
	h := newHarness(t, mux, nil)

	current, err := h.shell.Login(context.Background(), session.Student,
		portal.Credentials{Email: "asha@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !current.LoggedIn || current.Role != session.Student {
		t.Errorf("session = %+v, want logged-in student", current)
	}
	if got := h.shell.Router.Current(); got != workspace.StudentDashboard {
		t.Errorf("Current = %q, want %q", got, workspace.StudentDashboard)
	}
	tabs := h.shell.Router.Graph().Tabs
	if len(tabs) != 4 {
		t.Fatalf("tabs = %d, want 4", len(tabs))
	}
	if h.store.Snapshot()[credstore.KeyToken] != "student-token" {
		t.Errorf("stored token = %q, want student-token", h.store.Snapshot()[credstore.KeyToken])
	}
}

func TestFailedLoginLeavesAuthWorkspace(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/login", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "nope"})
	})
	h := newHarness(t, mux, nil)

	_, err := h.shell.Login(context.Background(), session.Admin,
		portal.Credentials{Email: "admin@example.com", Password: "wrong"})
	var loginError *portal.LoginError
	if !errors.As(err, &loginError) || loginError.Message != "invalid credentials" {
		t.Fatalf("Login error = %v, want invalid credentials", err)
	}
	if got := h.shell.Router.Current(); got != workspace.AuthWelcome {
		t.Errorf("Current = %q, want %q", got, workspace.AuthWelcome)
	}
	if len(h.recorder.All()) != 0 {
		t.Errorf("notifications = %v, want none (nothing to invalidate)", h.recorder.All())
	}
}

func TestTokenExpiredReturnsToAuthWithoutHistory(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /warden/outpass/pending", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusForbidden, map[string]string{"message": "Token expired"})
	})
	h := newHarness(t, mux, loggedIn(session.Warden))
	ctx := context.Background()

	if err := h.shell.Router.Navigate(workspace.WardenPendingOutpass); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	queue, err := h.shell.PendingQueue(session.Warden, outpass.ConfirmerFunc(
		func(context.Context, outpass.Prompt) (bool, error) { return true, nil }))
	if err != nil {
		t.Fatalf("PendingQueue: %v", err)
	}
	if err := queue.Refresh(ctx); !portal.IsInvalidated(err) {
		t.Fatalf("Refresh error = %v, want invalidated", err)
	}

	if got := h.shell.Router.Current(); got != workspace.AuthWelcome {
		t.Errorf("Current = %q, want %q", got, workspace.AuthWelcome)
	}
	if history := h.shell.Router.History(); len(history) != 1 {
		t.Errorf("History = %v, want only the auth landing", history)
	}
	if h.shell.Router.Back() {
		t.Error("Back after invalidation = true, want false")
	}
	if len(h.store.Snapshot()) != 0 {
		t.Errorf("store = %v, want cleared", h.store.Snapshot())
	}
	if h.shell.Session(ctx).LoggedIn {
		t.Error("session still logged in after invalidation")
	}

	var expired bool
	for _, notification := range h.recorder.All() {
		if notification.Title == "Session expired" {
			expired = true
		}
	}
	if !expired {
		t.Errorf("notifications = %v, want a session-expired notice", h.recorder.All())
	}
}

func TestLogoutResetsRouter(t *testing.T) {
	t.Parallel()

	h := newHarness(t, http.NotFoundHandler(), loggedIn(session.Staff))
	if err := h.shell.Router.Navigate(workspace.StaffPassApproval); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if err := h.shell.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := h.shell.Router.Current(); got != workspace.AuthWelcome {
		t.Errorf("Current = %q, want %q", got, workspace.AuthWelcome)
	}
	if _, err := h.shell.Role(context.Background()); !errors.Is(err, ErrLoggedOut) {
		t.Errorf("Role error = %v, want ErrLoggedOut", err)
	}
}

func TestGateGuardsStudentScreens(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"user": completeDayScholar()})
	})
	h := newHarness(t, mux, loggedIn(session.Student))

	var incomplete *profile.IncompleteError
	if err := h.shell.Router.Navigate(workspace.StudentNewOutpass); !errors.As(err, &incomplete) {
		t.Fatalf("Navigate before profile error = %v, want *profile.IncompleteError", err)
	}
	if got := h.shell.Router.Current(); got != workspace.StudentDashboard {
		t.Errorf("Current after refusal = %q, want %q", got, workspace.StudentDashboard)
	}

	if _, err := h.shell.LoadStudentProfile(context.Background()); err != nil {
		t.Fatalf("LoadStudentProfile: %v", err)
	}
	if err := h.shell.Router.Navigate(workspace.StudentNewOutpass); err != nil {
		t.Fatalf("Navigate with complete profile: %v", err)
	}
	if got := h.shell.Router.ActiveTab(); got != workspace.TabOutpass {
		t.Errorf("ActiveTab = %q, want %q", got, workspace.TabOutpass)
	}
}

func TestSubmitOutpassBlockedByIncompleteProfile(t *testing.T) {
	t.Parallel()

	var submitted atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		incomplete := completeDayScholar()
		incomplete["busno"] = ""
		writeJSON(writer, http.StatusOK, incomplete)
	})
	mux.HandleFunc("POST /api/outpass", func(writer http.ResponseWriter, request *http.Request) {
		submitted.Add(1)
		writeJSON(writer, http.StatusCreated, map[string]string{"message": "created"})
	})
	h := newHarness(t, mux, loggedIn(session.Student))

	err := h.shell.SubmitOutpass(context.Background(), outpass.NewRequest{
		Reason: "home", FromDate: "2026-10-20", ToDate: "2026-10-21",
	})
	var incomplete *profile.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("SubmitOutpass error = %v, want *profile.IncompleteError", err)
	}
	if len(incomplete.Missing) != 1 || incomplete.Missing[0] != profile.FieldBusNo {
		t.Errorf("Missing = %v, want [busno]", incomplete.Missing)
	}
	if submitted.Load() != 0 {
		t.Errorf("submissions = %d, want 0", submitted.Load())
	}
}

func TestSubmitOutpassWithCompleteProfile(t *testing.T) {
	t.Parallel()

	var submitted atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, completeDayScholar())
	})
	mux.HandleFunc("POST /api/outpass", func(writer http.ResponseWriter, request *http.Request) {
		submitted.Add(1)
		writeJSON(writer, http.StatusCreated, map[string]string{"message": "created"})
	})
	h := newHarness(t, mux, loggedIn(session.Student))

	err := h.shell.SubmitOutpass(context.Background(), outpass.NewRequest{
		Reason: "home", FromDate: "2026-10-20", ToDate: "2026-10-21",
	})
	if err != nil {
		t.Fatalf("SubmitOutpass: %v", err)
	}
	if submitted.Load() != 1 {
		t.Errorf("submissions = %d, want 1", submitted.Load())
	}
	levels := h.recorder.Levels()
	if len(levels) != 1 || levels[0] != notify.Success {
		t.Errorf("notification levels = %v, want [success]", levels)
	}
}

func TestAdminDashboardSettlesIndependently(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"admin": map[string]any{"_id": "a1", "name": "Root"}})
	})
	mux.HandleFunc("GET /admin/stats", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusInternalServerError, map[string]string{"message": "stats unavailable"})
	})
	h := newHarness(t, mux, loggedIn(session.Admin))

	dashboard := h.shell.LoadAdminDashboard(context.Background())
	if !dashboard.Profile.OK() || dashboard.Profile.Value.Name != "Root" {
		t.Errorf("Profile = %+v, want Root", dashboard.Profile)
	}
	if dashboard.Stats.OK() {
		t.Error("Stats succeeded, want failure")
	}
	if got := portal.MessageOf(dashboard.Stats.Err); got != "stats unavailable" {
		t.Errorf("Stats message = %q, want %q", got, "stats unavailable")
	}
	if len(h.recorder.All()) != 1 {
		t.Errorf("notifications = %v, want one failure", h.recorder.All())
	}
}

func TestStudentDashboardFeedsGate(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"user": completeDayScholar()})
	})
	mux.HandleFunc("GET /api/notices", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"notices": []map[string]string{
			{"_id": "n1", "title": "Holiday", "content": "**Friday** off"},
		}})
	})
	h := newHarness(t, mux, loggedIn(session.Student))

	dashboard := h.shell.LoadStudentDashboard(context.Background())
	if !dashboard.Profile.OK() || !dashboard.Notices.OK() {
		t.Fatalf("dashboard = %+v, want both fetches ok", dashboard)
	}
	if len(dashboard.Notices.Value) != 1 {
		t.Errorf("notices = %d, want 1", len(dashboard.Notices.Value))
	}
	if err := h.shell.Gate.Check(profile.ViewSubjects); err != nil {
		t.Errorf("Gate.Check after dashboard: %v", err)
	}
}

func TestBothRunsConcurrently(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	first := func(ctx context.Context) (int, error) {
		<-release
		return 1, nil
	}
	second := func(ctx context.Context) (string, error) {
		close(release)
		return "", errors.New("boom")
	}
	a, b := Both(context.Background(), first, second)
	if !a.OK() || a.Value != 1 {
		t.Errorf("first = %+v, want 1", a)
	}
	if b.OK() {
		t.Error("second succeeded, want error")
	}
}
