package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu        sync.Mutex
	outcomes  []string
	fallbacks int
}

func (r *recorder) ObserveExport(_, _, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recorder) Fallback(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks++
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, m *Manager, id string) Status {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := m.Wait(ctx, id)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return status
}

func TestSubmitCompletes(t *testing.T) {
	rec := &recorder{}
	m := NewManager(time.Minute, rec, quietLogger())
	defer m.Close()

	status := m.Submit("invoice", "pdf", func(ctx context.Context) (Result, error) {
		return Result{Filename: "Invoice-1.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}, nil
	})
	if status.ID == "" || status.State != StatePending {
		t.Fatalf("submit status = %+v", status)
	}
	final := waitFor(t, m, status.ID)
	if final.State != StateDone || final.Filename != "Invoice-1.pdf" || final.Size != 8 {
		t.Fatalf("final status = %+v", final)
	}
	result, err := m.Result(status.ID)
	if err != nil || string(result.Data) != "%PDF-1.3" {
		t.Fatalf("Result = %+v, %v", result, err)
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0] != "done" {
		t.Fatalf("recorded = %v", rec.outcomes)
	}
}

func TestCancelStopsRunningJob(t *testing.T) {
	m := NewManager(time.Minute, nil, quietLogger())
	defer m.Close()

	started := make(chan struct{})
	status := m.Submit("category_report", "pdf", func(ctx context.Context) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	<-started

	final, err := m.Cancel(status.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if final.State != StateCancelled {
		t.Fatalf("state = %s", final.State)
	}
	if _, err := m.Result(status.ID); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Result after cancel = %v", err)
	}
	if _, err := m.Cancel(status.ID); !errors.Is(err, ErrFinished) {
		t.Fatalf("second cancel = %v", err)
	}
}

func TestFailedJob(t *testing.T) {
	rec := &recorder{}
	m := NewManager(time.Minute, rec, quietLogger())
	defer m.Close()

	status := m.Submit("invoice", "pdf", func(context.Context) (Result, error) {
		return Result{}, errors.New("font missing")
	})
	final := waitFor(t, m, status.ID)
	if final.State != StateFailed || final.Error != "font missing" {
		t.Fatalf("final = %+v", final)
	}
}

func TestFallbackIsRecorded(t *testing.T) {
	rec := &recorder{}
	m := NewManager(time.Minute, rec, quietLogger())
	defer m.Close()

	status := m.Submit("category_report", "pdf", func(context.Context) (Result, error) {
		return Result{Filename: "a.pdf.html", Data: []byte("<html>"), Fallback: true}, nil
	})
	final := waitFor(t, m, status.ID)
	if !final.Fallback {
		t.Fatalf("fallback flag not set: %+v", final)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.fallbacks != 1 {
		t.Fatalf("fallbacks = %d", rec.fallbacks)
	}
}

func TestFinishedTasksExpire(t *testing.T) {
	m := NewManager(time.Minute, nil, quietLogger())
	defer m.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	m.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	status := m.Submit("invoice", "html", func(context.Context) (Result, error) {
		return Result{Filename: "x.html"}, nil
	})
	waitFor(t, m, status.ID)

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()
	if _, err := m.Get(status.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired task, got %v", err)
	}
}

func TestCloseCancelsEverything(t *testing.T) {
	m := NewManager(time.Minute, nil, quietLogger())
	started := make(chan struct{})
	status := m.Submit("invoice", "pdf", func(ctx context.Context) (Result, error) {
		close(started)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})
	<-started
	m.Close()
	final, err := m.Get(status.ID)
	if err != nil || final.State != StateCancelled {
		t.Fatalf("after close = %+v, %v", final, err)
	}
}

func TestUnknownID(t *testing.T) {
	m := NewManager(time.Minute, nil, quietLogger())
	defer m.Close()
	if _, err := m.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v", err)
	}
	if _, err := m.Cancel("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Cancel = %v", err)
	}
}
