package mutation

import (
	"errors"
	"sync"
)

var (
	ErrPending   = errors.New("a mutation is already pending for this key")
	ErrNoPending = errors.New("no pending mutation for this key")
)

type State string

const (
	StatePending   State = "pending"
	StateCommitted State = "committed"
	StateFailed    State = "failed"
)

type Mutation[V any] struct {
	State    State
	Previous V
	Next     V
	Err      error
}

// Tracker records optimistic changes per key. A key holds at most one pending
// mutation; a failed one hands back the previous value so the caller can
// revert its local copy.
type Tracker[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*Mutation[V]
}

func NewTracker[K comparable, V any]() *Tracker[K, V] {
	return &Tracker[K, V]{entries: make(map[K]*Mutation[V])}
}

func (t *Tracker[K, V]) Begin(key K, previous, next V) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.entries[key]; ok && existing.State == StatePending {
		return ErrPending
	}
	t.entries[key] = &Mutation[V]{State: StatePending, Previous: previous, Next: next}
	return nil
}

func (t *Tracker[K, V]) Commit(key K) (V, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.entries[key]
	if !ok || m.State != StatePending {
		var zero V
		return zero, ErrNoPending
	}
	m.State = StateCommitted
	return m.Next, nil
}

// Fail marks the pending mutation failed and returns the value to restore.
func (t *Tracker[K, V]) Fail(key K, cause error) (V, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.entries[key]
	if !ok || m.State != StatePending {
		var zero V
		return zero, ErrNoPending
	}
	m.State = StateFailed
	m.Err = cause
	return m.Previous, nil
}

func (t *Tracker[K, V]) Get(key K) (Mutation[V], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.entries[key]
	if !ok {
		return Mutation[V]{}, false
	}
	return *m, true
}

func (t *Tracker[K, V]) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	count := 0
	for _, m := range t.entries {
		if m.State == StatePending {
			count++
		}
	}
	return count
}

// Do runs the full cycle: Begin, apply next locally, call remote, then Commit
// or Fail and restore the previous value.
func Do[K comparable, V any](t *Tracker[K, V], key K, previous, next V, apply func(V), remote func() error) error {
	if err := t.Begin(key, previous, next); err != nil {
		return err
	}
	apply(next)
	if err := remote(); err != nil {
		restore, failErr := t.Fail(key, err)
		if failErr == nil {
			apply(restore)
		}
		return err
	}
	_, err := t.Commit(key)
	return err
}
