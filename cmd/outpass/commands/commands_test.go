// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/outpass/cmd/outpass/cli"
	"github.com/bureau-foundation/outpass/lib/config"
	"github.com/bureau-foundation/outpass/lib/credstore"
	"github.com/bureau-foundation/outpass/lib/session"
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

type harness struct {
	app    *App
	store  *credstore.Memory
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, handler http.Handler, initial map[string]string) *harness {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.API.BaseURL = server.URL
	cfg.Store.Backend = config.BackendMemory

	h := &harness{
		store:  credstore.NewMemory(initial),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.app = &App{
		Context: context.Background(),
		Stdin:   strings.NewReader(""),
		Stdout:  h.stdout,
		Stderr:  h.stderr,
		Config:  cfg,
		Store:   h.store,
		Logger:  slog.New(slog.DiscardHandler),
	}
	return h
}

func (h *harness) run(args ...string) error {
	return Root(h.app).Execute(args)
}

func categoryOf(err error) cli.ErrorCategory {
	var toolError *cli.ToolError
	if errors.As(err, &toolError) {
		return toolError.Category
	}
	return ""
}

func TestLoginStoresSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /warden/login", func(writer http.ResponseWriter, request *http.Request) {
		var body map[string]string
		json.NewDecoder(request.Body).Decode(&body)
		if body["email"] != "warden@example.com" || body["password"] != "hunter2" {
			writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "bad"})
			return
		}
		writeJSON(writer, http.StatusOK, map[string]string{"token": "warden-token"})
	})
	h := newHarness(t, mux, nil)

	passwordFile := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(passwordFile, []byte("hunter2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	err := h.run("login", "--role", "warden", "--email", "warden@example.com", "--password-file", passwordFile)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := h.stdout.String(); got != "Logged in as Warden.\n" {
		t.Errorf("stdout = %q, want %q", got, "Logged in as Warden.\n")
	}
	stored := h.store.Snapshot()
	if stored[credstore.KeyToken] != "warden-token" {
		t.Errorf("stored token = %q, want warden-token", stored[credstore.KeyToken])
	}
	if stored[credstore.KeyUserType] != string(session.Warden) {
		t.Errorf("stored role = %q, want warden", stored[credstore.KeyUserType])
	}
}

func TestLoginRejectedCredentials(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "nope"})
	})
	h := newHarness(t, mux, nil)

	passwordFile := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(passwordFile, []byte("wrong"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := h.run("login", "--email", "asha@example.com", "--password-file", passwordFile)
	if categoryOf(err) != cli.CategoryForbidden {
		t.Fatalf("login error = %v, want forbidden", err)
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Errorf("error = %q, want invalid credentials", err)
	}
	if len(h.store.Snapshot()) != 0 {
		t.Errorf("store = %v, want empty", h.store.Snapshot())
	}
}

func TestLoginRoleTypoSuggests(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NotFoundHandler(), nil)

	err := h.run("login", "--role", "wardn", "--email", "x@example.com")
	if categoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), `did you mean "warden"`) {
		t.Errorf("error = %q, want a suggestion", err)
	}
}

func TestWhoami(t *testing.T) {
	t.Parallel()

	t.Run("logged out exits 1", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, http.NotFoundHandler(), nil)
		err := h.run("whoami")
		var exitError *cli.ExitError
		if !errors.As(err, &exitError) || exitError.Code != 1 {
			t.Fatalf("whoami error = %v, want exit code 1", err)
		}
		if got := h.stdout.String(); got != "Not logged in.\n" {
			t.Errorf("stdout = %q, want %q", got, "Not logged in.\n")
		}
	})

	t.Run("year incharge", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t, http.NotFoundHandler(), loggedIn(session.YearIncharge))
		if err := h.run("whoami", "--json"); err != nil {
			t.Fatalf("whoami: %v", err)
		}
		var result sessionResult
		if err := json.Unmarshal(h.stdout.Bytes(), &result); err != nil {
			t.Fatalf("decoding %q: %v", h.stdout.String(), err)
		}
		if !result.LoggedIn || result.Role != session.YearIncharge {
			t.Errorf("result = %+v, want logged-in year incharge", result)
		}
		if result.Landing.Name() != "Dashboard" {
			t.Errorf("landing = %q, want Dashboard", result.Landing)
		}
		if result.Fingerprint == "" || strings.Contains(h.stdout.String(), "tok-") {
			t.Errorf("output = %q, want a fingerprint and no token", h.stdout.String())
		}
	})
}

func TestLogoutClearsStore(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NotFoundHandler(), loggedIn(session.Admin))
	if err := h.run("logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(h.store.Snapshot()) != 0 {
		t.Errorf("store = %v, want cleared", h.store.Snapshot())
	}
}

func TestApproveWithYes(t *testing.T) {
	t.Parallel()

	var approved atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /staff/outpass/pending", func(writer http.ResponseWriter, request *http.Request) {
		outpasses := []any{map[string]any{
			"_id":         "7",
			"reason":      "medical checkup",
			"outpassType": "medical",
			"fromDate":    "2026-10-20",
			"toDate":      "2026-10-20",
			"status":      "pending",
			"studentId":   map[string]any{"_id": "s7", "name": "Ravi", "registerNumber": "21CS007"},
		}}
		if approved.Load() {
			outpasses = []any{}
		}
		writeJSON(writer, http.StatusOK, map[string]any{"outpasses": outpasses})
	})
	mux.HandleFunc("PUT /staff/outpass/7/approve", func(writer http.ResponseWriter, request *http.Request) {
		approved.Store(true)
		writeJSON(writer, http.StatusOK, map[string]string{"message": "ok"})
	})
	h := newHarness(t, mux, loggedIn(session.Staff))

	if err := h.run("outpass", "approve", "--yes", "7"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !approved.Load() {
		t.Error("approve was not submitted")
	}
	if !strings.Contains(h.stderr.String(), "Outpass approved successfully") {
		t.Errorf("stderr = %q, want success notification", h.stderr.String())
	}
}

func TestApproveDeclinedAtPrompt(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /staff/outpass/pending", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"outpasses": []any{map[string]any{
			"_id": "7", "status": "pending", "reason": "x", "outpassType": "regular",
		}}})
	})
	mux.HandleFunc("PUT /staff/outpass/7/approve", func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
	})
	h := newHarness(t, mux, loggedIn(session.Staff))
	h.app.Stdin = strings.NewReader("n\n")

	if err := h.run("outpass", "approve", "7"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("approve calls = %d, want 0", calls.Load())
	}
	if !strings.Contains(h.stderr.String(), "Skipped 7.") {
		t.Errorf("stderr = %q, want skip notice", h.stderr.String())
	}
}

func TestApproveForbiddenForStudent(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NotFoundHandler(), loggedIn(session.Student))

	err := h.run("outpass", "approve", "--yes", "7")
	if categoryOf(err) != cli.CategoryForbidden {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func incompleteStudent() map[string]any {
	return map[string]any{
		"name":           "Asha",
		"email":          "asha@example.com",
		"registerNumber": "21CS001",
		"residencetype":  "hostel",
	}
}

func TestProfileCheckIncomplete(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"user": incompleteStudent()})
	})
	h := newHarness(t, mux, loggedIn(session.Student))

	err := h.run("profile", "check")
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Fatalf("profile check error = %v, want exit code 1", err)
	}
	output := h.stdout.String()
	if !strings.Contains(output, "Missing:") || !strings.Contains(output, "Hostel name") {
		t.Errorf("stdout = %q, want missing hostel name", output)
	}
}

func TestNewOutpassGatedOnProfile(t *testing.T) {
	t.Parallel()

	var submitted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"user": incompleteStudent()})
	})
	mux.HandleFunc("POST /api/outpass", func(writer http.ResponseWriter, request *http.Request) {
		submitted.Store(true)
	})
	h := newHarness(t, mux, loggedIn(session.Student))

	err := h.run("outpass", "new", "--reason", "home visit", "--from", "2026-10-24", "--to", "2026-10-25")
	if categoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
	if !strings.Contains(err.Error(), "Complete your profile first") {
		t.Errorf("error = %q, want profile refusal", err)
	}
	if submitted.Load() {
		t.Error("outpass submitted with an incomplete profile")
	}
}

func TestNewOutpassValidatesLocally(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NotFoundHandler(), loggedIn(session.Student))

	err := h.run("outpass", "new", "--from", "2026-10-24", "--to", "2026-10-25")
	if categoryOf(err) != cli.CategoryValidation {
		t.Fatalf("error = %v, want validation", err)
	}
}

func TestManageDeleteBusRefused(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	h := newHarness(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
	}), loggedIn(session.Admin))

	err := h.run("admin", "manage", "delete", "--yes", "bus", "route-1")
	if categoryOf(err) != cli.CategoryForbidden {
		t.Fatalf("error = %v, want forbidden", err)
	}
	if calls.Load() != 0 {
		t.Errorf("service calls = %d, want 0", calls.Load())
	}
}

func TestManageDeleteWarden(t *testing.T) {
	t.Parallel()

	var deleted atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /admin/wardens/w1", func(writer http.ResponseWriter, request *http.Request) {
		deleted.Store(true)
		writeJSON(writer, http.StatusOK, map[string]string{"message": "deleted"})
	})
	h := newHarness(t, mux, loggedIn(session.Admin))

	if err := h.run("admin", "manage", "delete", "--yes", "wardens", "w1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted.Load() {
		t.Error("delete was not submitted")
	}
	if got := h.stdout.String(); got != "Deleted successfully.\n" {
		t.Errorf("stdout = %q, want %q", got, "Deleted successfully.\n")
	}
}

func TestWorkspaceScreensForRole(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NotFoundHandler(), nil)

	if err := h.run("workspace", "screens", "--role", "student"); err != nil {
		t.Fatalf("workspace screens: %v", err)
	}
	output := h.stdout.String()
	for _, want := range []string{"Workspace student", "Dashboard (landing)", "[needs complete profile to create an outpass]"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestUnknownSubcommandSuggests(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NotFoundHandler(), nil)

	err := h.run("whoamy")
	if err == nil || !strings.Contains(err.Error(), `did you mean "whoami"`) {
		t.Errorf("error = %v, want a suggestion", err)
	}
}
