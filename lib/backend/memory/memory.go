// Package memory provides an in-process backend.Backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/pthm/txui/lib/backend"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Backend keeps values in a map. Safe for concurrent use.
type Backend struct {
	mu   sync.RWMutex
	data map[string]entry
	now  func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// New creates an empty in-memory backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Get returns a copy of the stored value so callers cannot alias it.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	e, ok := b.data[key]
	b.mu.RUnlock()

	if !ok {
		return nil, backend.ErrNotFound
	}
	if b.expired(e, b.now()) {
		return b.dropExpired(key)
	}
	return clone(e.value), nil
}

// dropExpired evicts key unless a Set replaced it since it was read.
func (b *Backend) dropExpired(key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.data[key]
	if !ok {
		return nil, backend.ErrNotFound
	}
	if b.expired(e, b.now()) {
		delete(b.data, key)
		return nil, backend.ErrNotFound
	}
	return clone(e.value), nil
}

func (b *Backend) expired(e entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func clone(v []byte) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// Set stores a copy of value.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: clone(value)}
	if ttl > 0 {
		e.expiresAt = b.now().Add(ttl)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = e
	return nil
}

// Delete removes key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// Len reports the number of stored keys, expired ones included.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

var _ backend.Backend = (*Backend)(nil)
