// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/outpass/lib/outpass"
	"github.com/bureau-foundation/outpass/lib/session"
)

func validSubmission() outpass.NewRequest {
	return outpass.NewRequest{
		Reason:   "family function",
		FromDate: "2026-10-20",
		ToDate:   "2026-10-22",
	}
}

func TestPrefixCoversEveryRole(t *testing.T) {
	t.Parallel()
	want := map[session.Role]string{
		session.Student:      "/api/login",
		session.Staff:        "/staff/login",
		session.Warden:       "/warden/login",
		session.Watchman:     "/watchman/login",
		session.YearIncharge: "/year-incharge/login",
		session.Admin:        "/admin/login",
	}
	for _, role := range session.AllRoles() {
		if got := LoginPath(role); got != want[role] {
			t.Errorf("LoginPath(%s) = %q, want %q", role, got, want[role])
		}
	}
}

func TestLoginReturnsToken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /warden/login", func(writer http.ResponseWriter, request *http.Request) {
		var credentials Credentials
		if err := json.NewDecoder(request.Body).Decode(&credentials); err != nil {
			t.Errorf("decoding login body: %v", err)
		}
		if credentials.Email != "w@jit.test" || credentials.Password != "pw" {
			t.Errorf("credentials = %+v, want trimmed email and password", credentials)
		}
		if request.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", request.Header.Get("Content-Type"))
		}
		writeJSON(writer, http.StatusOK, map[string]string{"token": "fresh"})
	})
	env := newTestEnv(t, mux, nil)

	token, err := env.client.Login(context.Background(), session.Warden, Credentials{Email: "  w@jit.test ", Password: "pw"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "fresh" {
		t.Errorf("token = %q, want %q", token, "fresh")
	}
}

func TestLoginBlankCredentialsMakesNoCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
	})
	env := newTestEnv(t, mux, nil)

	for _, credentials := range []Credentials{
		{Email: "", Password: "pw"},
		{Email: "a@b.c", Password: ""},
		{Email: "   ", Password: "  "},
	} {
		_, err := env.client.Login(context.Background(), session.Student, credentials)
		if !errors.Is(err, ErrBlankCredentials) {
			t.Errorf("Login(%+v) error = %v, want ErrBlankCredentials", credentials, err)
		}
	}
	if calls.Load() != 0 {
		t.Errorf("server calls = %d, want 0", calls.Load())
	}
}

func TestLoginErrorMapping(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		status  int
		body    map[string]string
		message string
	}{
		{http.StatusUnauthorized, map[string]string{"message": "bad password"}, "invalid credentials"},
		{http.StatusNotFound, nil, "user not found"},
		{http.StatusBadRequest, map[string]string{"message": "Account disabled"}, "Account disabled"},
	} {
		mux := http.NewServeMux()
		mux.HandleFunc("POST /api/login", func(writer http.ResponseWriter, request *http.Request) {
			writeJSON(writer, test.status, test.body)
		})
		env := newTestEnv(t, mux, nil)

		_, err := env.client.Login(context.Background(), session.Student, Credentials{Email: "s@jit.test", Password: "pw"})
		var loginError *LoginError
		if !errors.As(err, &loginError) {
			t.Fatalf("status %d: error = %v, want *LoginError", test.status, err)
		}
		if loginError.Message != test.message {
			t.Errorf("status %d: Message = %q, want %q", test.status, loginError.Message, test.message)
		}
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]string{"message": "ok"})
	})
	env := newTestEnv(t, mux, nil)

	if _, err := env.client.Login(context.Background(), session.Student, Credentials{Email: "s@jit.test", Password: "pw"}); err == nil {
		t.Fatal("Login with tokenless response succeeded, want error")
	}
}

func TestListEnvelopeShapes(t *testing.T) {
	t.Parallel()

	records := []map[string]any{
		{"_id": "e1", "outpassType": "emergency", "status": "pending"},
		{"_id": "r1", "outpassType": "regular", "status": "pending"},
	}
	for _, test := range []struct {
		name string
		body any
		want int
	}{
		{"bare array", records, 2},
		{"keyed envelope", map[string]any{"outpasses": records}, 2},
		{"null", nil, 0},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			mux := http.NewServeMux()
			mux.HandleFunc("GET /year-incharge/outpass/pending", func(writer http.ResponseWriter, request *http.Request) {
				writeJSON(writer, http.StatusOK, test.body)
			})
			env := newTestEnv(t, mux, nil)
			list, err := env.client.PendingOutpasses(context.Background(), session.YearIncharge)
			if err != nil {
				t.Fatalf("PendingOutpasses: %v", err)
			}
			if len(list) != test.want {
				t.Fatalf("len = %d, want %d", len(list), test.want)
			}
			if test.want > 0 && list[0].ID != "e1" {
				t.Errorf("list[0].ID = %q, want e1", list[0].ID)
			}
		})
	}
}

func TestEnvelopeMissingKeyFails(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notices", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"items": []any{}})
	})
	env := newTestEnv(t, mux, nil)
	if _, err := env.client.Notices(context.Background(), session.Student); err == nil {
		t.Fatal("Notices with unknown envelope succeeded, want error")
	}
}

func TestRoleGatedEndpointsRefuseWithoutCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(writer http.ResponseWriter, request *http.Request) {
		calls.Add(1)
	})
	env := newTestEnv(t, mux, nil)
	ctx := context.Background()

	if _, err := env.client.PendingOutpasses(ctx, session.Watchman); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("watchman PendingOutpasses error = %v, want ErrNotAvailable", err)
	}
	if err := env.client.ActOnOutpass(ctx, session.Admin, "x", outpass.Approve); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("admin ActOnOutpass error = %v, want ErrNotAvailable", err)
	}
	if _, err := env.client.OutpassHistory(ctx, session.Staff); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("staff OutpassHistory error = %v, want ErrNotAvailable", err)
	}
	if _, err := env.client.Students(ctx, session.Student); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("student Students error = %v, want ErrNotAvailable", err)
	}
	if err := env.client.DeleteManaged(ctx, ManagedBus, "b1"); !errors.Is(err, ErrNotAvailable) {
		t.Errorf("DeleteManaged(bus) error = %v, want ErrNotAvailable", err)
	}
	if calls.Load() != 0 {
		t.Errorf("server calls = %d, want 0", calls.Load())
	}
}

func TestActOnOutpassPath(t *testing.T) {
	t.Parallel()

	var path atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /warden/outpass/{id}/{action}", func(writer http.ResponseWriter, request *http.Request) {
		path.Store(request.PathValue("id") + " " + request.PathValue("action"))
		writeJSON(writer, http.StatusOK, map[string]string{"message": "updated"})
	})
	env := newTestEnv(t, mux, nil)

	if err := env.client.ActOnOutpass(context.Background(), session.Warden, "abc", outpass.Reject); err != nil {
		t.Fatalf("ActOnOutpass: %v", err)
	}
	if got := path.Load(); got != "abc reject" {
		t.Errorf("path values = %q, want %q", got, "abc reject")
	}
}

func TestQueueOverPortal(t *testing.T) {
	t.Parallel()

	var approved atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /staff/outpass/pending", func(writer http.ResponseWriter, request *http.Request) {
		if approved.Load() {
			writeJSON(writer, http.StatusOK, map[string]any{"outpasses": []any{}})
			return
		}
		writeJSON(writer, http.StatusOK, map[string]any{"outpasses": []map[string]any{
			{"_id": "p1", "outpassType": "regular", "status": "pending"},
		}})
	})
	mux.HandleFunc("PUT /staff/outpass/p1/approve", func(writer http.ResponseWriter, request *http.Request) {
		approved.Store(true)
		writeJSON(writer, http.StatusOK, map[string]string{"message": "approved"})
	})
	env := newTestEnv(t, mux, nil)

	queue, err := outpass.NewQueue(outpass.QueueConfig{
		Role:  session.Staff,
		Fetch: env.client.PendingFetcher(session.Staff),
		Act:   env.client.Actor(session.Staff),
		Confirm: outpass.ConfirmerFunc(func(context.Context, outpass.Prompt) (bool, error) {
			return true, nil
		}),
	})
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	ctx := context.Background()
	if err := queue.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(queue.Items()) != 1 {
		t.Fatalf("items = %d, want 1", len(queue.Items()))
	}
	if err := queue.Act(ctx, "p1", outpass.Approve); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if len(queue.Items()) != 0 {
		t.Errorf("items after approve = %d, want 0 (re-fetched)", len(queue.Items()))
	}
}

func TestMemberProfileEnvelope(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /year-incharge/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"yearIncharge": map[string]any{
			"_id":          "y1",
			"name":         "Priya",
			"handlingyear": []string{"III"},
		}})
	})
	env := newTestEnv(t, mux, nil)

	member, err := env.client.MemberProfile(context.Background(), session.YearIncharge)
	if err != nil {
		t.Fatalf("MemberProfile: %v", err)
	}
	if member.ID != "y1" || member.Name != "Priya" {
		t.Errorf("member = %+v, want y1/Priya", member)
	}
	if len(member.HandlingYear) != 1 || member.HandlingYear[0] != "III" {
		t.Errorf("HandlingYear = %v, want [III]", member.HandlingYear)
	}
}

func TestStudentProfileBareObject(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"name": "Asha", "residencetype": "hostel"})
	})
	env := newTestEnv(t, mux, nil)

	student, err := env.client.StudentProfile(context.Background())
	if err != nil {
		t.Fatalf("StudentProfile: %v", err)
	}
	if student.Name() != "Asha" || student.ResidenceType() != "hostel" {
		t.Errorf("student = %v, want Asha/hostel", student)
	}
}

func TestSubjectFilesResolveURLs(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/subjects/s1/files", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"files": []map[string]string{
			{"_id": "f1", "filename": "unit1.pdf", "url": "files/unit1.pdf"},
		}})
	})
	env := newTestEnv(t, mux, nil)

	files, err := env.client.SubjectFiles(context.Background(), "s1")
	if err != nil {
		t.Fatalf("SubjectFiles: %v", err)
	}
	if len(files) != 1 || files[0].URL != "https://content.test/files/unit1.pdf" {
		t.Errorf("files = %+v, want resolved URL", files)
	}
}

func TestManagedList(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/year-incharge", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]any{"yearIncharges": []map[string]any{
			{"_id": "y1", "name": "Priya", "handlingyear": []string{"III"}},
		}})
	})
	mux.HandleFunc("GET /api/bus/routes", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, []map[string]any{{"id": "b7", "busno": "7"}})
	})
	env := newTestEnv(t, mux, nil)
	ctx := context.Background()

	incharges, err := env.client.ManagedList(ctx, ManagedYearIncharge)
	if err != nil {
		t.Fatalf("ManagedList(year-incharge): %v", err)
	}
	if len(incharges) != 1 || incharges[0].ID() != "y1" {
		t.Fatalf("incharges = %v, want one record y1", incharges)
	}
	if got := incharges[0].Text("handlingyear"); got != `["III"]` {
		t.Errorf("Text(handlingyear) = %q, want %q", got, `["III"]`)
	}

	buses, err := env.client.ManagedList(ctx, ManagedBus)
	if err != nil {
		t.Fatalf("ManagedList(bus): %v", err)
	}
	if len(buses) != 1 || buses[0].ID() != "b7" {
		t.Errorf("buses = %v, want one record b7", buses)
	}
}

func TestParseManagedKind(t *testing.T) {
	t.Parallel()
	if kind, err := ParseManagedKind("wardens"); err != nil || kind != ManagedWardens {
		t.Errorf("ParseManagedKind(wardens) = %q, %v", kind, err)
	}
	if _, err := ParseManagedKind("janitors"); err == nil {
		t.Error("ParseManagedKind(janitors) succeeded, want error")
	}
}

func TestRecordDisplayText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		record   Record
		title    string
		subtitle string
	}{
		{Record{"name": "Priya", "email": "priya@jit.college"}, "Priya", "priya@jit.college"},
		{Record{"routeNumber": "R12", "status": "active"}, "R12", "active"},
		{Record{"registerNumber": "21CS041", "department": "CSE"}, "21CS041", "CSE"},
		{Record{"_id": "x"}, "", ""},
	}
	for _, test := range tests {
		if got := test.record.Title(); got != test.title {
			t.Errorf("Title(%v) = %q, want %q", test.record, got, test.title)
		}
		if got := test.record.Subtitle(); got != test.subtitle {
			t.Errorf("Subtitle(%v) = %q, want %q", test.record, got, test.subtitle)
		}
	}
}
