package txui

import (
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Page-level keys reserved by the request lifecycle.
const (
	keyComponentsAssigned = "components_assigned"
)

// componentInfo is the persisted description of one component: enough to
// rebuild the instance lazily on a later request.
type componentInfo struct {
	Kind      string             `msgpack:"k"`
	Container string             `msgpack:"c,omitempty"`
	State     msgpack.RawMessage `msgpack:"s,omitempty"`
}

// record is the serialized form of a Transaction.
type record struct {
	ID          string                    `msgpack:"id"`
	ParentID    string                    `msgpack:"pid,omitempty"`
	Route       string                    `msgpack:"route"`
	Bound       bool                      `msgpack:"bound"`
	Initialized []string                  `msgpack:"init,omitempty"`
	Components  map[string]*componentInfo `msgpack:"components,omitempty"`
	Order       []string                  `msgpack:"order,omitempty"`
	Values      map[string]any            `msgpack:"values,omitempty"`
	Delivered   []string                  `msgpack:"delivered,omitempty"`
	CreatedAt   time.Time                 `msgpack:"created"`
	UpdatedAt   time.Time                 `msgpack:"updated"`
}

// Transaction is the server-side state of one logical page across requests.
//
// It owns the component tree: the persisted component descriptions, the set
// of cids whose InitTransaction already ran, and the live instances built
// during the current request. Pages only reference it.
//
// A Transaction is not safe for concurrent use. Concurrent requests carrying
// the same tid each load their own copy and the last commit wins.
type Transaction struct {
	id       string
	parentID string
	route    string
	newID    string

	// initialized is nil when the transaction lost its tree (never bound or
	// expired in the middle of a page); see Page.preventTransactionLoss.
	initialized map[string]struct{}

	infos     map[string]*componentInfo
	order     []string
	values    map[string]any
	delivered map[string]struct{}
	live      map[string]Widget

	createdAt time.Time
	updatedAt time.Time
}

func newTransaction(id, route string, now time.Time) *Transaction {
	return &Transaction{
		id:        id,
		route:     route,
		infos:     make(map[string]*componentInfo),
		values:    make(map[string]any),
		delivered: make(map[string]struct{}),
		live:      make(map[string]Widget),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the transaction id.
func (tx *Transaction) ID() string {
	return tx.id
}

// ParentID returns the id of the transaction this one was forked from.
func (tx *Transaction) ParentID() string {
	return tx.parentID
}

// Route returns the name of the page type the transaction is bound to.
func (tx *Transaction) Route() string {
	return tx.route
}

// NewID returns the id the transaction will be committed under after a
// fork was requested, or "".
func (tx *Transaction) NewID() string {
	return tx.newID
}

// EffectiveID is the id the next commit writes to.
func (tx *Transaction) EffectiveID() string {
	if tx.newID != "" {
		return tx.newID
	}
	return tx.id
}

// CreatedAt returns when the transaction was first created.
func (tx *Transaction) CreatedAt() time.Time {
	return tx.createdAt
}

// Lost reports whether the initialized-id set is missing.
func (tx *Transaction) Lost() bool {
	return tx.initialized == nil
}

func (tx *Transaction) bind() {
	if tx.initialized == nil {
		tx.initialized = make(map[string]struct{})
	}
}

// Get returns a page-level value.
func (tx *Transaction) Get(key string) (any, bool) {
	v, ok := tx.values[key]
	return v, ok
}

// Bool returns a page-level value as bool, false when absent.
func (tx *Transaction) Bool(key string) bool {
	b, _ := tx.values[key].(bool)
	return b
}

// Set stores a page-level value. Values must be msgpack-serializable.
func (tx *Transaction) Set(key string, value any) {
	tx.values[key] = value
}

// Delete removes a page-level value.
func (tx *Transaction) Delete(key string) {
	delete(tx.values, key)
}

// HasComponent reports whether cid is registered.
func (tx *Transaction) HasComponent(cid string) bool {
	_, ok := tx.infos[cid]
	return ok
}

// IsInitialized reports whether InitTransaction already ran for cid.
func (tx *Transaction) IsInitialized(cid string) bool {
	_, ok := tx.initialized[cid]
	return ok
}

// Initialized returns the initialized cids in sorted order.
func (tx *Transaction) Initialized() []string {
	return sortedKeys(tx.initialized)
}

func (tx *Transaction) markInitialized(cid string) {
	tx.bind()
	tx.initialized[cid] = struct{}{}
}

// Delivered returns the asset URLs already sent to the client for this
// transaction, sorted.
func (tx *Transaction) Delivered() []string {
	return sortedKeys(tx.delivered)
}

func (tx *Transaction) isDelivered(url string) bool {
	_, ok := tx.delivered[url]
	return ok
}

func (tx *Transaction) deliver(urls ...string) {
	for _, u := range urls {
		tx.delivered[u] = struct{}{}
	}
}

// resetDelivered forgets delivered assets. Only a full page load may do
// this, since the browser starts from an empty document.
func (tx *Transaction) resetDelivered() {
	tx.delivered = make(map[string]struct{})
}

func (tx *Transaction) toRecord() *record {
	rec := &record{
		ID:         tx.id,
		ParentID:   tx.parentID,
		Route:      tx.route,
		Bound:      tx.initialized != nil,
		Components: tx.infos,
		Order:      tx.order,
		Values:     tx.values,
		Delivered:  tx.Delivered(),
		CreatedAt:  tx.createdAt,
		UpdatedAt:  tx.updatedAt,
	}
	if tx.initialized != nil {
		rec.Initialized = tx.Initialized()
	}
	return rec
}

func fromRecord(rec *record) *Transaction {
	tx := newTransaction(rec.ID, rec.Route, rec.CreatedAt)
	tx.parentID = rec.ParentID
	tx.updatedAt = rec.UpdatedAt
	if rec.Bound {
		tx.initialized = make(map[string]struct{}, len(rec.Initialized))
		for _, cid := range rec.Initialized {
			tx.initialized[cid] = struct{}{}
		}
	}
	if rec.Components != nil {
		tx.infos = rec.Components
	}
	tx.order = rec.Order
	if rec.Values != nil {
		tx.values = rec.Values
	}
	tx.deliver(rec.Delivered...)
	return tx
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
