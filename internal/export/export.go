package export

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("export not found")
	ErrNotReady = errors.New("export is not finished")
	ErrFinished = errors.New("export already finished")
)

type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateDone      State = "done"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	// Fallback is set when the requested format could not be produced and a
	// degraded document was returned instead.
	Fallback bool
}

type Job func(ctx context.Context) (Result, error)

type Status struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Format     string     `json:"format"`
	State      State      `json:"state"`
	Error      string     `json:"error,omitempty"`
	Filename   string     `json:"filename,omitempty"`
	Fallback   bool       `json:"fallback,omitempty"`
	Size       int        `json:"size,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type Recorder interface {
	ObserveExport(kind, format, outcome string, elapsed time.Duration)
	Fallback(kind string)
}

type task struct {
	status Status
	result Result
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager runs export jobs on their own goroutines. Each job gets a context
// that Cancel (or Close) aborts; finished tasks are dropped after ttl.
type Manager struct {
	mu       sync.Mutex
	tasks    map[string]*task
	ttl      time.Duration
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	base     context.Context
	stop     context.CancelFunc
	wg       sync.WaitGroup
}

func NewManager(ttl time.Duration, recorder Recorder, logger *slog.Logger) *Manager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	base, stop := context.WithCancel(context.Background())
	return &Manager{
		tasks:    make(map[string]*task),
		ttl:      ttl,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		base:     base,
		stop:     stop,
	}
}

func (m *Manager) Submit(kind, format string, job Job) Status {
	ctx, cancel := context.WithCancel(m.base)
	t := &task{
		status: Status{
			ID:        uuid.NewString(),
			Kind:      kind,
			Format:    format,
			State:     StatePending,
			CreatedAt: m.now(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	m.mu.Lock()
	m.sweepLocked()
	m.tasks[t.status.ID] = t
	snapshot := t.status
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx, t, job)
	return snapshot
}

func (m *Manager) run(ctx context.Context, t *task, job Job) {
	defer m.wg.Done()
	defer close(t.done)
	defer t.cancel()

	m.mu.Lock()
	if t.status.State == StatePending {
		t.status.State = StateRunning
	}
	m.mu.Unlock()

	start := m.now()
	var (
		result Result
		err    error
	)
	if ctx.Err() == nil {
		result, err = job(ctx)
	} else {
		err = ctx.Err()
	}
	elapsed := m.now().Sub(start)

	m.mu.Lock()
	finished := m.now()
	t.status.FinishedAt = &finished
	switch {
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		t.status.State = StateCancelled
	case err != nil:
		t.status.State = StateFailed
		t.status.Error = err.Error()
	default:
		t.status.State = StateDone
		t.status.Filename = result.Filename
		t.status.Fallback = result.Fallback
		t.status.Size = len(result.Data)
		t.result = result
	}
	status := t.status
	m.mu.Unlock()

	if m.recorder != nil {
		m.recorder.ObserveExport(status.Kind, status.Format, string(status.State), elapsed)
		if status.Fallback {
			m.recorder.Fallback(status.Kind)
		}
	}
	attrs := []any{"id", status.ID, "kind", status.Kind, "format", status.Format, "state", status.State, "duration_ms", elapsed.Milliseconds()}
	if status.State == StateFailed {
		m.logger.Error("export failed", append(attrs, "error", status.Error)...)
		return
	}
	m.logger.Info("export finished", attrs...)
}

func (m *Manager) Get(id string) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	t, ok := m.tasks[id]
	if !ok {
		return Status{}, ErrNotFound
	}
	return t.status, nil
}

func (m *Manager) Result(id string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return Result{}, ErrNotFound
	}
	if t.status.State != StateDone {
		return Result{}, ErrNotReady
	}
	return t.result, nil
}

// Cancel aborts a pending or running export.
func (m *Manager) Cancel(id string) (Status, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return Status{}, ErrNotFound
	}
	state := t.status.State
	m.mu.Unlock()

	if state != StatePending && state != StateRunning {
		return Status{}, ErrFinished
	}
	t.cancel()
	<-t.done
	return m.Get(id)
}

// Wait blocks until the export finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) (Status, error) {
	m.mu.Lock()
	t, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return Status{}, ErrNotFound
	}
	select {
	case <-t.done:
		return m.Get(id)
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

// Close cancels every running export and waits for the goroutines to exit.
func (m *Manager) Close() {
	m.stop()
	m.wg.Wait()
}

func (m *Manager) sweepLocked() {
	cutoff := m.now().Add(-m.ttl)
	for id, t := range m.tasks {
		if t.status.FinishedAt != nil && t.status.FinishedAt.Before(cutoff) {
			delete(m.tasks, id)
		}
	}
}
