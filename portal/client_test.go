// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/outpass/lib/credstore"
)

// recordingInvalidation counts InvalidateSession calls.
type recordingInvalidation struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingInvalidation) InvalidateSession(_ context.Context, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

func (r *recordingInvalidation) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reasons)
}

// failingStore fails every read.
type failingStore struct{ credstore.Memory }

func (*failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.Join(credstore.ErrStorageUnavailable, errors.New("locked"))
}

type testEnv struct {
	client       *Client
	store        credstore.Store
	invalidation *recordingInvalidation
}

// newTestEnv starts a test server for handler and returns a Client
// pointed at it. The server is closed when the test completes.
func newTestEnv(t *testing.T, handler http.Handler, store credstore.Store) *testEnv {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	if store == nil {
		store = credstore.NewMemory(nil)
	}
	invalidation := &recordingInvalidation{}
	client, err := New(Config{
		BaseURL:      server.URL,
		ContentURL:   "https://content.test/",
		Store:        store,
		Timeout:      2 * time.Second,
		Invalidation: invalidation,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testEnv{client: client, store: store, invalidation: invalidation}
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(value)
}

func TestNewRequiresStore(t *testing.T) {
	t.Parallel()
	if _, err := New(Config{}); err == nil {
		t.Fatal("New without Store succeeded, want error")
	}
}

func TestNewRejectsNonHTTPOrigin(t *testing.T) {
	t.Parallel()
	_, err := New(Config{BaseURL: "ftp://portal.test", Store: credstore.NewMemory(nil)})
	if err == nil {
		t.Fatal("New with ftp origin succeeded, want error")
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	client, err := New(Config{Store: credstore.NewMemory(nil)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.Timeout() != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", client.Timeout())
	}
}

func TestBearerAttachedWhenTokenStored(t *testing.T) {
	t.Parallel()

	var authorization atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notices", func(writer http.ResponseWriter, request *http.Request) {
		authorization.Store(request.Header.Get("Authorization"))
		if request.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}
		writeJSON(writer, http.StatusOK, map[string]any{"notices": []any{}})
	})

	store := credstore.NewMemory(map[string]string{credstore.KeyToken: "tok-123"})
	env := newTestEnv(t, mux, store)
	if _, err := env.client.Notices(context.Background(), "student"); err != nil {
		t.Fatalf("Notices: %v", err)
	}
	if got := authorization.Load(); got != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer tok-123")
	}
}

func TestNoBearerWithoutToken(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name  string
		store credstore.Store
	}{
		{"empty store", credstore.NewMemory(nil)},
		{"unreadable store", &failingStore{}},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			var authorization atomic.Value
			mux := http.NewServeMux()
			mux.HandleFunc("GET /api/subjects", func(writer http.ResponseWriter, request *http.Request) {
				authorization.Store(request.Header.Get("Authorization"))
				writeJSON(writer, http.StatusOK, []any{})
			})
			env := newTestEnv(t, mux, test.store)
			if _, err := env.client.Subjects(context.Background()); err != nil {
				t.Fatalf("Subjects: %v", err)
			}
			if got := authorization.Load(); got != "" {
				t.Errorf("Authorization = %q, want none", got)
			}
		})
	}
}

func TestForbiddenTokenExpiredInvalidatesOnce(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /warden/outpass/pending", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusForbidden, map[string]string{"message": "Token expired"})
	})
	env := newTestEnv(t, mux, credstore.NewMemory(map[string]string{credstore.KeyToken: "stale"}))

	_, err := env.client.PendingOutpasses(context.Background(), "warden")
	if err == nil {
		t.Fatal("PendingOutpasses succeeded, want error")
	}
	if !IsInvalidated(err) {
		t.Errorf("IsInvalidated(%v) = false, want true", err)
	}
	if StatusOf(err) != http.StatusForbidden {
		t.Errorf("StatusOf = %d, want 403", StatusOf(err))
	}
	if MessageOf(err) != "Token expired" {
		t.Errorf("MessageOf = %q, want %q", MessageOf(err), "Token expired")
	}
	if got := env.invalidation.count(); got != 1 {
		t.Errorf("invalidation calls = %d, want 1", got)
	}
}

func TestUnauthorizedStatusInvalidates(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/profile", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	})
	env := newTestEnv(t, mux, nil)

	_, err := env.client.StudentProfile(context.Background())
	if !IsInvalidated(err) {
		t.Fatalf("StudentProfile error = %v, want invalidated", err)
	}
	if MessageOf(err) != "Unauthorized" {
		t.Errorf("MessageOf = %q, want %q", MessageOf(err), "Unauthorized")
	}
}

func TestSuccessBodyInvalidTokenInvalidates(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/outpass", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusOK, map[string]string{"message": "Invalid token"})
	})
	env := newTestEnv(t, mux, nil)

	_, err := env.client.MyOutpasses(context.Background())
	if !IsInvalidated(err) {
		t.Fatalf("MyOutpasses error = %v, want invalidated", err)
	}
	if env.invalidation.count() != 1 {
		t.Errorf("invalidation calls = %d, want 1", env.invalidation.count())
	}
}

func TestParallelFailuresEachInvalidate(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/notices", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
	})
	env := newTestEnv(t, mux, nil)

	var group sync.WaitGroup
	for range 4 {
		group.Add(1)
		go func() {
			defer group.Done()
			env.client.Notices(context.Background(), "student")
		}()
	}
	group.Wait()
	if got := env.invalidation.count(); got != 4 {
		t.Errorf("invalidation calls = %d, want 4 (one per response)", got)
	}
}

func TestTimeoutIsNetworkErrorWithoutInvalidation(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/subjects", func(writer http.ResponseWriter, request *http.Request) {
		select {
		case <-request.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	invalidation := &recordingInvalidation{}
	client, err := New(Config{
		BaseURL:      server.URL,
		Store:        credstore.NewMemory(nil),
		Timeout:      50 * time.Millisecond,
		Invalidation: invalidation,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = client.Subjects(context.Background())
	if !IsNetwork(err) {
		t.Fatalf("Subjects error = %v, want network error", err)
	}
	if MessageOf(err) != "request timed out" {
		t.Errorf("MessageOf = %q, want %q", MessageOf(err), "request timed out")
	}
	if IsInvalidated(err) {
		t.Error("timeout reported as invalidated")
	}
	if invalidation.count() != 0 {
		t.Errorf("invalidation calls = %d, want 0", invalidation.count())
	}
}

func TestServerErrorMessageVerbatim(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/outpass", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusInternalServerError, map[string]string{"message": "You already have a pending outpass"})
	})
	env := newTestEnv(t, mux, nil)

	err := env.client.SubmitOutpass(context.Background(), validSubmission())
	if !IsHTTP(err) {
		t.Fatalf("SubmitOutpass error = %v, want HTTP error", err)
	}
	if MessageOf(err) != "You already have a pending outpass" {
		t.Errorf("MessageOf = %q, want service message", MessageOf(err))
	}
	if IsInvalidated(err) {
		t.Error("500 reported as invalidated")
	}
	if env.invalidation.count() != 0 {
		t.Errorf("invalidation calls = %d, want 0", env.invalidation.count())
	}
}

func TestErrorFieldUsedWhenMessageAbsent(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/subjects", func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"error": "bad semester"})
	})
	env := newTestEnv(t, mux, nil)

	_, err := env.client.Subjects(context.Background())
	if MessageOf(err) != "bad semester" {
		t.Errorf("MessageOf = %q, want %q", MessageOf(err), "bad semester")
	}
}

func TestResolveAssetURL(t *testing.T) {
	t.Parallel()

	client, err := New(Config{Store: credstore.NewMemory(nil), ContentURL: "https://content.test/"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, test := range []struct {
		reference string
		want      string
	}{
		{"", ""},
		{"https://cdn.test/a.png", "https://cdn.test/a.png"},
		{"http://cdn.test/a.png", "http://cdn.test/a.png"},
		{"uploads/a.png", "https://content.test/uploads/a.png"},
		{"/uploads/a.png", "https://content.test/uploads/a.png"},
	} {
		if got := client.ResolveAssetURL(test.reference); got != test.want {
			t.Errorf("ResolveAssetURL(%q) = %q, want %q", test.reference, got, test.want)
		}
	}
}
