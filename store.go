package txui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pthm/txui/lib/backend"
	"github.com/pthm/txui/lib/encoding"
)

// Store persists transactions through a backend.Backend.
//
// The store is the single source of truth for cross-request state. It does
// not serialize requests that share a tid: two requests may load the same
// transaction and the later Commit overwrites the earlier one.
type Store struct {
	backend   backend.Backend
	encoder   *Encoder
	sensitive bool
	ttl       time.Duration
	newID     func() string
	now       func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the expiry applied on every commit. Zero keeps transactions
// until the backend evicts them.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithEncoder signs stored records with enc, or encrypts them when
// sensitive is true. Without an encoder records are stored as plain msgpack.
func WithEncoder(enc *Encoder, sensitive bool) StoreOption {
	return func(s *Store) {
		s.encoder = enc
		s.sensitive = sensitive
	}
}

// WithIDGenerator overrides the tid generator.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithStoreClock overrides the time source.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store on top of b.
func NewStore(b backend.Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: b,
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying key-value backend.
func (s *Store) Backend() backend.Backend {
	return s.backend
}

// Create returns a new, bound, empty transaction for route. Nothing is
// written until Commit.
func (s *Store) Create(route string) *Transaction {
	tx := newTransaction(s.newID(), route, s.now())
	tx.bind()
	return tx
}

// Load reads the transaction stored under tid. A missing or expired record
// yields ErrTransactionNotFound; backend failures are returned wrapped.
func (s *Store) Load(ctx context.Context, tid string) (*Transaction, error) {
	rec, err := s.loadRecord(ctx, tid)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec), nil
}

// LoadRoute is Load restricted to transactions bound to route. A transaction
// created by another page type yields ErrTransactionRouteViolation.
func (s *Store) LoadRoute(ctx context.Context, tid, route string) (*Transaction, error) {
	tx, err := s.Load(ctx, tid)
	if err != nil {
		return nil, err
	}
	if tx.route != route {
		return nil, fmt.Errorf("%w: %s belongs to %q, not %q", ErrTransactionRouteViolation, tid, tx.route, route)
	}
	return tx, nil
}

// unbound returns an empty transaction without an initialized set. It stands
// in for a transaction that could not be found so the lifecycle can detect
// the loss.
func (s *Store) unbound(tid, route string) *Transaction {
	return newTransaction(tid, route, s.now())
}

func (s *Store) loadRecord(ctx context.Context, tid string) (*record, error) {
	data, err := s.backend.Get(ctx, tid)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, tid)
		}
		return nil, fmt.Errorf("load transaction %s: %w", tid, err)
	}

	var rec record
	if s.encoder != nil {
		err = s.encoder.Decode(string(data), s.sensitive, &rec)
	} else {
		err = encoding.Unmarshal(data, &rec)
	}
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", tid, wrapEncodingError(err))
	}
	return &rec, nil
}

// Fork creates a new transaction on the same route whose parent is tx.
// No component state is copied and tx is not modified; the caller decides
// what to carry over.
func (s *Store) Fork(tx *Transaction) *Transaction {
	fork := s.Create(tx.route)
	fork.parentID = tx.id
	return fork
}

// MarkForNewID makes the next Commit of tx write a copy under a fresh id,
// leaving the record stored under the current id untouched. It returns the
// new id. Calling it again keeps the first id.
func (s *Store) MarkForNewID(tx *Transaction) string {
	if tx.newID == "" {
		tx.newID = s.newID()
	}
	return tx.newID
}

// Commit captures the state of every live component and writes the
// transaction. It must run once per request, after all handlers.
func (s *Store) Commit(ctx context.Context, tx *Transaction) error {
	for cid, w := range tx.live {
		info, ok := tx.infos[cid]
		if !ok {
			continue
		}
		state, err := encoding.Marshal(w.statePtr())
		if err != nil {
			return fmt.Errorf("encode state of %s: %w", cid, err)
		}
		info.State = state
	}

	tx.updatedAt = s.now()
	rec := tx.toRecord()
	if tx.newID != "" {
		rec.ID = tx.newID
		rec.ParentID = tx.id
	}

	var data []byte
	if s.encoder != nil {
		encoded, err := s.encoder.Encode(rec, s.sensitive)
		if err != nil {
			return fmt.Errorf("encode transaction %s: %w", rec.ID, err)
		}
		data = []byte(encoded)
	} else {
		var err error
		data, err = encoding.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode transaction %s: %w", rec.ID, err)
		}
	}

	if err := s.backend.Set(ctx, rec.ID, data, s.ttl); err != nil {
		return fmt.Errorf("store transaction %s: %w", rec.ID, err)
	}
	return nil
}

// Delete removes the transaction stored under tid.
func (s *Store) Delete(ctx context.Context, tid string) error {
	if err := s.backend.Delete(ctx, tid); err != nil {
		return fmt.Errorf("delete transaction %s: %w", tid, err)
	}
	return nil
}

// TransactionInfo is a read-only snapshot used by tooling.
type TransactionInfo struct {
	ID          string                   `yaml:"id"`
	ParentID    string                   `yaml:"parent_id,omitempty"`
	Route       string                   `yaml:"route"`
	Bound       bool                     `yaml:"bound"`
	Initialized []string                 `yaml:"initialized"`
	Components  map[string]ComponentInfo `yaml:"components"`
	Order       []string                 `yaml:"order"`
	Values      map[string]any           `yaml:"values,omitempty"`
	Delivered   []string                 `yaml:"delivered,omitempty"`
	CreatedAt   time.Time                `yaml:"created_at"`
	UpdatedAt   time.Time                `yaml:"updated_at"`
}

// ComponentInfo describes one stored component.
type ComponentInfo struct {
	Kind      string         `yaml:"kind"`
	Container string         `yaml:"container,omitempty"`
	State     map[string]any `yaml:"state,omitempty"`
}

// Inspect loads the raw record under tid without building a transaction.
func (s *Store) Inspect(ctx context.Context, tid string) (*TransactionInfo, error) {
	rec, err := s.loadRecord(ctx, tid)
	if err != nil {
		return nil, err
	}

	info := &TransactionInfo{
		ID:          rec.ID,
		ParentID:    rec.ParentID,
		Route:       rec.Route,
		Bound:       rec.Bound,
		Initialized: rec.Initialized,
		Components:  make(map[string]ComponentInfo, len(rec.Components)),
		Order:       rec.Order,
		Values:      rec.Values,
		Delivered:   rec.Delivered,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	for cid, c := range rec.Components {
		ci := ComponentInfo{Kind: c.Kind, Container: c.Container}
		if len(c.State) > 0 {
			var state map[string]any
			if err := encoding.Unmarshal(c.State, &state); err == nil {
				ci.State = state
			}
		}
		info.Components[cid] = ci
	}
	return info, nil
}
