package client

import (
	"context"
	"sync"
)

// Resource is a GET endpoint whose last good answer is kept in memory.
// Refetch replaces the data wholesale.
type Resource[T any] struct {
	client *Client
	path   string
	query  map[string]string

	mu      sync.RWMutex
	data    T
	loaded  bool
	loading bool
	err     error
}

func NewResource[T any](c *Client, path string, query map[string]string) *Resource[T] {
	return &Resource[T]{client: c, path: path, query: query}
}

func (r *Resource[T]) Data() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

// IsInitialLoading is true while the first fetch has not completed.
func (r *Resource[T]) IsInitialLoading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.loaded
}

func (r *Resource[T]) IsFetching() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Refetch loads the resource again. A failed fetch keeps the previous data
// and records the error.
func (r *Resource[T]) Refetch(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()

	data, err := getData[T](ctx, r.client, r.path, r.query)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	r.loaded = true
	r.err = err
	if err != nil {
		r.client.logger.Warn("refetch failed", "path", r.path, "error", err)
		return err
	}
	r.data = data
	return nil
}

// Set replaces the local copy without a request.
func (r *Resource[T]) Set(data T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
}

// Update applies fn to the local copy under the lock.
func (r *Resource[T]) Update(fn func(T) T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = fn(r.data)
}
