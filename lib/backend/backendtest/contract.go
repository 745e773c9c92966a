// Package backendtest holds a reusable contract suite for backend.Backend
// implementations.
package backendtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pthm/txui/lib/backend"
)

// RunContract verifies that b behaves like a backend.Backend.
func RunContract(t *testing.T, b backend.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := b.Get(ctx, "missing")
		if !errors.Is(err, backend.ErrNotFound) {
			t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Set_Get", func(t *testing.T) {
		if err := b.Set(ctx, "k1", []byte("v1"), 0); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		got, err := b.Get(ctx, "k1")
		if err != nil {
			t.Fatalf("Get error = %v", err)
		}
		if string(got) != "v1" {
			t.Errorf("Get = %q, want %q", got, "v1")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := b.Set(ctx, "k2", []byte("first"), 0); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		if err := b.Set(ctx, "k2", []byte("second"), time.Hour); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		got, err := b.Get(ctx, "k2")
		if err != nil {
			t.Fatalf("Get error = %v", err)
		}
		if string(got) != "second" {
			t.Errorf("Get = %q, want last write", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := b.Set(ctx, "k3", []byte("v"), 0); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		if err := b.Delete(ctx, "k3"); err != nil {
			t.Fatalf("Delete error = %v", err)
		}
		if _, err := b.Get(ctx, "k3"); !errors.Is(err, backend.ErrNotFound) {
			t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
		}
		if err := b.Delete(ctx, "never-existed"); err != nil {
			t.Errorf("Delete(missing) error = %v", err)
		}
	})

	t.Run("ValueIsolation", func(t *testing.T) {
		v := []byte("abc")
		if err := b.Set(ctx, "k4", v, 0); err != nil {
			t.Fatalf("Set error = %v", err)
		}
		v[0] = 'z'
		got, err := b.Get(ctx, "k4")
		if err != nil {
			t.Fatalf("Get error = %v", err)
		}
		if string(got) != "abc" {
			t.Errorf("stored value aliased caller slice: %q", got)
		}
		got[1] = 'z'
		again, _ := b.Get(ctx, "k4")
		if string(again) != "abc" {
			t.Errorf("returned value aliased stored value: %q", again)
		}
	})
}
