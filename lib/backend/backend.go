// Package backend defines the key-value contract transaction stores persist
// through. Implementations live in the memory, redis and bolt subpackages.
package backend

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("backend: key not found")

// Backend is a byte-oriented key-value store with optional expiry.
//
// Implementations must be safe for concurrent use. They do not coordinate
// writers: the last Set for a key wins.
type Backend interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
