package txui

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/txui/lib/backend/memory"
)

func newTestStore(opts ...StoreOption) (*Store, *Kinds) {
	kinds := NewKinds()
	kinds.Register(newTestBox)
	kinds.Register(newTestCounter)
	return NewStore(memory.New(), opts...), kinds
}

func TestStore_CreateCommitLoad(t *testing.T) {
	ctx := context.Background()
	store, kinds := newTestStore()

	tx := store.Create("home")
	require.False(t, tx.Lost())

	reg := newRegistry(tx, kinds, nil)
	require.NoError(t, reg.Add("root", "box"))
	require.NoError(t, reg.Add("c", "counter", Under("root"), WithState(counterState{Count: 4})))
	tx.Set("answer", int64(42))
	tx.markInitialized("root")
	tx.deliver("/static/a.js")

	w, err := reg.Get("c")
	require.NoError(t, err)
	w.(*testCounter).State().Count = 5

	require.NoError(t, store.Commit(ctx, tx))

	loaded, err := store.Load(ctx, tx.ID())
	require.NoError(t, err)
	assert.Equal(t, "home", loaded.Route())
	assert.Equal(t, []string{"root"}, loaded.Initialized())
	assert.Equal(t, []string{"/static/a.js"}, loaded.Delivered())
	assert.True(t, loaded.HasComponent("c"))

	v, ok := loaded.Get("answer")
	require.True(t, ok)
	assert.EqualValues(t, 42, v)

	w, err = newRegistry(loaded, kinds, nil).Get("c")
	require.NoError(t, err)
	assert.Equal(t, 5, w.(*testCounter).State().Count)
	assert.Equal(t, "root", w.node().ContainerID())
}

func TestStore_LoadNotFound(t *testing.T) {
	store, _ := newTestStore()

	_, err := store.Load(context.Background(), "nope")
	assert.True(t, IsNotFound(err))
}

func TestStore_LoadRoute(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	tx := store.Create("home")
	require.NoError(t, store.Commit(ctx, tx))

	_, err := store.LoadRoute(ctx, tx.ID(), "home")
	assert.NoError(t, err)

	_, err = store.LoadRoute(ctx, tx.ID(), "other")
	assert.ErrorIs(t, err, ErrTransactionRouteViolation)
}

func TestStore_ForkLeavesOriginalUntouched(t *testing.T) {
	ctx := context.Background()
	store, kinds := newTestStore()

	tx := store.Create("home")
	require.NoError(t, newRegistry(tx, kinds, nil).Add("c", "counter"))
	tx.Set("k", "v")
	require.NoError(t, store.Commit(ctx, tx))
	before, err := store.Inspect(ctx, tx.ID())
	require.NoError(t, err)

	fork := store.Fork(tx)
	assert.NotEqual(t, tx.ID(), fork.ID())
	assert.Equal(t, tx.ID(), fork.ParentID())
	assert.Equal(t, "home", fork.Route())
	assert.False(t, fork.HasComponent("c"))
	_, ok := fork.Get("k")
	assert.False(t, ok)

	require.NoError(t, store.Commit(ctx, fork))
	after, err := store.Inspect(ctx, tx.ID())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_MarkForNewID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	tx := store.Create("home")
	tx.Set("n", int64(1))
	require.NoError(t, store.Commit(ctx, tx))

	newID := store.MarkForNewID(tx)
	assert.Equal(t, newID, store.MarkForNewID(tx), "second call keeps the first id")
	assert.Equal(t, newID, tx.EffectiveID())

	tx.Set("n", int64(2))
	require.NoError(t, store.Commit(ctx, tx))

	old, err := store.Load(ctx, tx.ID())
	require.NoError(t, err)
	n, _ := old.Get("n")
	assert.EqualValues(t, 1, n)

	copied, err := store.Load(ctx, newID)
	require.NoError(t, err)
	n, _ = copied.Get("n")
	assert.EqualValues(t, 2, n)
	assert.Equal(t, tx.ID(), copied.ParentID())
}

func TestStore_Encoder(t *testing.T) {
	ctx := context.Background()
	enc, err := NewEncoder([]byte("test-secret"))
	require.NoError(t, err)

	for _, sensitive := range []bool{false, true} {
		b := memory.New()
		store := NewStore(b, WithEncoder(enc, sensitive))

		tx := store.Create("home")
		tx.Set("secret", "value")
		require.NoError(t, store.Commit(ctx, tx))

		loaded, err := store.Load(ctx, tx.ID())
		require.NoError(t, err)
		v, _ := loaded.Get("secret")
		assert.Equal(t, "value", v)

		raw, err := b.Get(ctx, tx.ID())
		require.NoError(t, err)
		assert.Equal(t, !sensitive, bytes.Contains(raw, []byte(".")), "signed records carry a signature suffix")

		other, err := NewEncoder([]byte("other-secret"))
		require.NoError(t, err)
		_, err = NewStore(b, WithEncoder(other, sensitive)).Load(ctx, tx.ID())
		assert.True(t, IsDecryptionError(err), "wrong key: %v", err)
	}
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := NewStore(memory.New(memory.WithClock(clock)), WithTTL(time.Minute), WithStoreClock(clock))
	tx := store.Create("home")
	require.NoError(t, store.Commit(ctx, tx))

	_, err := store.Load(ctx, tx.ID())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Load(ctx, tx.ID())
	assert.True(t, IsNotFound(err))
}

type failingBackend struct {
	*memory.Backend
	err error
}

func (f failingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, f.err
}

func TestStore_BackendErrorsSurface(t *testing.T) {
	boom := errors.New("connection refused")
	store := NewStore(failingBackend{Backend: memory.New(), err: boom})

	_, err := store.Load(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsNotFound(err))
}

func TestStore_Inspect(t *testing.T) {
	ctx := context.Background()
	store, kinds := newTestStore()

	tx := store.Create("home")
	require.NoError(t, newRegistry(tx, kinds, nil).Add("c", "counter", WithState(counterState{Count: 3})))
	require.NoError(t, store.Commit(ctx, tx))

	info, err := store.Inspect(ctx, tx.ID())
	require.NoError(t, err)
	assert.Equal(t, "home", info.Route)
	assert.Equal(t, []string{"c"}, info.Order)
	assert.Equal(t, "counter", info.Components["c"].Kind)
	assert.EqualValues(t, 3, info.Components["c"].State["count"])
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore()

	tx := store.Create("home")
	require.NoError(t, store.Commit(ctx, tx))
	require.NoError(t, store.Delete(ctx, tx.ID()))

	_, err := store.Load(ctx, tx.ID())
	assert.True(t, IsNotFound(err))
}
