// Package bolt provides a file-backed backend.Backend using bbolt.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/pthm/txui/lib/backend"
	bolt "go.etcd.io/bbolt"
)

// Bucket holds all transaction records.
const Bucket = "transactions"

// headerSize is the expiry timestamp prefixed to every stored value.
const headerSize = 8

// Backend persists values in a single bbolt bucket. Each value is stored as
// an 8-byte big-endian expiry (unix nanoseconds, 0 for none) followed by the
// payload. Expired entries are dropped lazily on read.
type Backend struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Backend, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(Bucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize bucket: %w", err)
	}

	return &Backend{db: db, now: time.Now}, nil
}

// Get reads key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	now := b.now()
	var out []byte
	expired := false

	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(Bucket)).Get([]byte(key))
		if raw == nil || len(raw) < headerSize {
			return backend.ErrNotFound
		}
		if expiredAt(raw, now) {
			expired = true
			return nil
		}
		out = payload(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expired {
		return b.dropExpired(key, now)
	}
	return out, nil
}

// dropExpired deletes key if it is still expired at now. The value is read
// again inside the write transaction, so a Set that landed after the first
// read is kept and returned.
func (b *Backend) dropExpired(key string, now time.Time) ([]byte, error) {
	var out []byte
	found := false

	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(Bucket))
		raw := bkt.Get([]byte(key))
		if raw == nil || len(raw) < headerSize {
			return nil
		}
		if expiredAt(raw, now) {
			return bkt.Delete([]byte(key))
		}
		out = payload(raw)
		found = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, backend.ErrNotFound
	}
	return out, nil
}

func expiredAt(raw []byte, now time.Time) bool {
	exp := int64(binary.BigEndian.Uint64(raw[:headerSize]))
	return exp != 0 && !now.Before(time.Unix(0, exp))
}

// payload copies the value out of raw; bbolt memory is only valid inside
// the transaction.
func payload(raw []byte) []byte {
	out := make([]byte, len(raw)-headerSize)
	copy(out, raw[headerSize:])
	return out
}

// Set writes key.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, headerSize+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf[:headerSize], uint64(b.now().Add(ttl).UnixNano()))
	}
	copy(buf[headerSize:], value)

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(Bucket)).Put([]byte(key), buf)
	})
}

// Delete removes key.
func (b *Backend) Delete(ctx context.Context, key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(Bucket)).Delete([]byte(key))
	})
}

// Close closes the database file.
func (b *Backend) Close() error {
	return b.db.Close()
}

var _ backend.Backend = (*Backend)(nil)
