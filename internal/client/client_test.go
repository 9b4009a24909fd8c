package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/mutation"
)

func quietClient(url string) *Client {
	return New(url, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status >= 400 {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": data, "field": "role", "tab": "profile"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": data})
}

func TestResourceRefetchReplacesData(t *testing.T) {
	var (
		mu    sync.Mutex
		users = []domain.UserRole{{ID: 1, Name: "Ana", Role: "admin"}, {ID: 2, Name: "Ben", Role: "staff"}}
		fail  bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			writeEnvelope(w, http.StatusInternalServerError, "database unavailable")
			return
		}
		writeEnvelope(w, http.StatusOK, users)
	}))
	defer srv.Close()

	res := NewResource[[]domain.UserRole](quietClient(srv.URL), "/api/user-role", nil)
	if !res.IsInitialLoading() {
		t.Fatalf("resource should start in initial loading")
	}
	if err := res.Refetch(context.Background()); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if res.IsInitialLoading() || len(res.Data()) != 2 {
		t.Fatalf("unexpected state after first fetch: %+v", res.Data())
	}

	mu.Lock()
	users = []domain.UserRole{{ID: 3, Name: "Cy", Role: "viewer"}}
	mu.Unlock()
	if err := res.Refetch(context.Background()); err != nil {
		t.Fatalf("Refetch: %v", err)
	}
	if got := res.Data(); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("refetch should replace data, got %+v", got)
	}

	mu.Lock()
	fail = true
	mu.Unlock()
	err := res.Refetch(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "database unavailable" {
		t.Fatalf("expected api error, got %v", err)
	}
	if res.Err() == nil || len(res.Data()) != 1 {
		t.Fatalf("failed refetch should keep data and record the error")
	}
}

func usersServer(t *testing.T, patch http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/user-role":
			writeEnvelope(w, http.StatusOK, []domain.UserRole{{ID: 5, Name: "Dee", Email: "dee@example.com", Role: "staff"}})
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/user-role/"):
			patch(w, r)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestSyncUsersChangeRoleCommits(t *testing.T) {
	srv := usersServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeEnvelope(w, http.StatusOK, domain.UserRole{ID: 5, Role: body["role"]})
	})
	defer srv.Close()

	dir := NewSyncUsers(quietClient(srv.URL))
	if err := dir.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := dir.ChangeRole(context.Background(), 5, "manager"); err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if got := dir.Users()[0].Role; got != "manager" {
		t.Fatalf("expected manager, got %q", got)
	}
	if dir.Pending() != 0 {
		t.Fatalf("no mutation should stay pending")
	}
}

func TestSyncUsersChangeRoleRevertsOnFailure(t *testing.T) {
	srv := usersServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusBadRequest, "role must be one of admin, manager, staff, viewer")
	})
	defer srv.Close()

	dir := NewSyncUsers(quietClient(srv.URL))
	if err := dir.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	err := dir.ChangeRole(context.Background(), 5, "owner")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Field != "role" {
		t.Fatalf("expected api error on role, got %v", err)
	}
	if got := dir.Users()[0].Role; got != "staff" {
		t.Fatalf("role should be reverted to staff, got %q", got)
	}
}

func TestSyncUsersRejectsConcurrentChange(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := usersServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeEnvelope(w, http.StatusOK, domain.UserRole{ID: 5, Role: "admin"})
	})
	defer srv.Close()

	dir := NewSyncUsers(quietClient(srv.URL))
	if err := dir.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- dir.ChangeRole(context.Background(), 5, "admin") }()
	<-entered

	if got := dir.Users()[0].Role; got != "admin" {
		t.Fatalf("optimistic role should be visible while pending, got %q", got)
	}
	if err := dir.ChangeRole(context.Background(), 5, "viewer"); !errors.Is(err, mutation.ErrPending) {
		t.Fatalf("expected ErrPending, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first change failed: %v", err)
	}
	if got := dir.Users()[0].Role; got != "admin" {
		t.Fatalf("expected admin, got %q", got)
	}
}

func TestRenderInvoiceReadsDisposition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "pdf" {
			t.Errorf("format not forwarded: %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=Invoice-9.pdf")
		_, _ = w.Write([]byte("%PDF-1.3 test"))
	}))
	defer srv.Close()

	doc, err := quietClient(srv.URL).RenderInvoice(context.Background(), domain.InvoiceData{InvoiceNumber: "9"}, "pdf")
	if err != nil {
		t.Fatalf("RenderInvoice: %v", err)
	}
	if doc.Filename != "Invoice-9.pdf" || doc.ContentType != "application/pdf" || string(doc.Data) != "%PDF-1.3 test" || doc.Fallback {
		t.Fatalf("unexpected document %+v", doc)
	}
}
