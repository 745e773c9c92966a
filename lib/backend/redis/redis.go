// Package redis provides a backend.Backend on top of go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pthm/txui/lib/backend"
	goredis "github.com/redis/go-redis/v9"
)

// Backend stores values as plain redis strings under a key prefix.
type Backend struct {
	client *goredis.Client
	prefix string
}

// Option configures a Backend.
type Option func(*Backend)

// WithPrefix sets the key prefix. Defaults to "txui:tx:".
func WithPrefix(prefix string) Option {
	return func(b *Backend) {
		b.prefix = prefix
	}
}

// New connects to a redis server.
func New(address, password string, db int, opts ...Option) *Backend {
	client := goredis.NewClient(&goredis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *goredis.Client, opts ...Option) *Backend {
	b := &Backend{
		client: client,
		prefix: "txui:tx:",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) key(k string) string {
	return b.prefix + k
}

// Get reads key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := b.client.Get(ctx, b.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, backend.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set writes key with the given ttl (0 keeps it forever).
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close closes the redis client.
func (b *Backend) Close() error {
	return b.client.Close()
}

var _ backend.Backend = (*Backend)(nil)
