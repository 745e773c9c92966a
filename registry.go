package txui

import (
	"fmt"
	"sort"

	"github.com/pthm/txui/lib/encoding"
)

// Registry resolves component ids of one transaction to live instances.
//
// Components are registered explicitly with Add (lazy) or Set (eager). A
// lazily added component exists only as a persisted description until the
// first Get, which builds it through its kind factory, restores its state
// and caches the instance in the transaction for the rest of the request.
type Registry struct {
	tx    *Transaction
	kinds *Kinds
	page  *Page
}

func newRegistry(tx *Transaction, kinds *Kinds, page *Page) *Registry {
	return &Registry{tx: tx, kinds: kinds, page: page}
}

// AddOption configures Add.
type AddOption func(*addOptions)

type addOptions struct {
	container string
	state     any
	overwrite bool
}

// Under places the component below the container cid.
func Under(container string) AddOption {
	return func(o *addOptions) {
		o.container = container
	}
}

// WithState seeds the component's persisted state. v must serialize to the
// kind's state type, typically a value of that type.
func WithState(v any) AddOption {
	return func(o *addOptions) {
		o.state = v
	}
}

// Overwrite replaces an existing component with the same cid instead of
// failing with *DuplicateComponentError.
func Overwrite() AddOption {
	return func(o *addOptions) {
		o.overwrite = true
	}
}

// Has reports whether cid is registered.
func (r *Registry) Has(cid string) bool {
	return r.tx.HasComponent(cid)
}

// Get returns the instance for cid, building it on first access.
func (r *Registry) Get(cid string) (Widget, error) {
	if w, ok := r.tx.live[cid]; ok {
		return w, nil
	}

	info, ok := r.tx.infos[cid]
	if !ok {
		return nil, &UnknownComponentError{CID: cid}
	}

	w, err := r.kinds.build(info.Kind)
	if err != nil {
		return nil, err
	}
	if len(info.State) > 0 {
		if err := encoding.Unmarshal(info.State, w.statePtr()); err != nil {
			return nil, fmt.Errorf("restore state of %s: %w", cid, err)
		}
	}

	r.bind(w, cid, info.Container)
	r.tx.live[cid] = w
	return w, nil
}

// Add registers a component of the given kind without building it.
func (r *Registry) Add(cid, kind string, opts ...AddOption) error {
	o := &addOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if _, ok := r.kinds.Lookup(kind); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := r.checkDuplicate(cid, kind, o.overwrite); err != nil {
		return err
	}
	if o.container != "" && !r.Has(o.container) {
		return &UnknownComponentError{CID: o.container}
	}

	info := &componentInfo{Kind: kind, Container: o.container}
	if o.state != nil {
		data, err := encoding.Marshal(o.state)
		if err != nil {
			return fmt.Errorf("encode initial state of %s: %w", cid, err)
		}
		info.State = data
	}

	r.register(cid, info)
	return nil
}

// Set registers an already constructed instance. The instance's kind must be
// registered so it can be rebuilt on later requests.
func (r *Registry) Set(cid string, w Widget, overwrite bool, opts ...AddOption) error {
	o := &addOptions{overwrite: overwrite}
	for _, opt := range opts {
		opt(o)
	}

	kind := w.node().kind
	if _, ok := r.kinds.Lookup(kind); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := r.checkDuplicate(cid, kind, o.overwrite); err != nil {
		return err
	}
	if o.container != "" && !r.Has(o.container) {
		return &UnknownComponentError{CID: o.container}
	}

	r.register(cid, &componentInfo{Kind: kind, Container: o.container})
	r.bind(w, cid, o.container)
	r.tx.live[cid] = w
	return nil
}

func (r *Registry) checkDuplicate(cid, kind string, overwrite bool) error {
	existing, ok := r.tx.infos[cid]
	if !ok {
		return nil
	}
	if !overwrite {
		return &DuplicateComponentError{CID: cid, Existing: existing.Kind, New: kind}
	}
	// The replacement is a new instance and gets its own initialization.
	delete(r.tx.live, cid)
	delete(r.tx.initialized, cid)
	return nil
}

func (r *Registry) register(cid string, info *componentInfo) {
	if _, exists := r.tx.infos[cid]; !exists {
		r.tx.order = append(r.tx.order, cid)
	}
	r.tx.infos[cid] = info
}

func (r *Registry) bind(w Widget, cid, container string) {
	b := w.node()
	b.cid = cid
	b.container = container
	b.page = r.page
	if b.handlers == nil {
		b.handlers = make(map[string]Handler)
	}
}

// Remove deletes cid and its whole subtree.
func (r *Registry) Remove(cid string) error {
	if !r.Has(cid) {
		return &UnknownComponentError{CID: cid}
	}

	doomed := map[string]bool{cid: true}
	for _, id := range r.subtree(cid) {
		doomed[id] = true
	}

	kept := r.tx.order[:0:0]
	for _, id := range r.tx.order {
		if doomed[id] {
			delete(r.tx.infos, id)
			delete(r.tx.live, id)
			delete(r.tx.initialized, id)
			continue
		}
		kept = append(kept, id)
	}
	r.tx.order = kept
	return nil
}

// CIDs returns every registered cid in registration order.
func (r *Registry) CIDs() []string {
	out := make([]string, len(r.tx.order))
	copy(out, r.tx.order)
	return out
}

// Children returns the direct children of cid in registration order.
func (r *Registry) Children(cid string) []string {
	var out []string
	for _, id := range r.tx.order {
		if r.tx.infos[id].Container == cid {
			out = append(out, id)
		}
	}
	return out
}

// Roots returns components without a (registered) container.
func (r *Registry) Roots() []string {
	var out []string
	for _, id := range r.tx.order {
		c := r.tx.infos[id].Container
		if c == "" || !r.Has(c) {
			out = append(out, id)
		}
	}
	return out
}

// subtree returns all descendants of cid, depth-first.
func (r *Registry) subtree(cid string) []string {
	var out []string
	for _, child := range r.Children(cid) {
		out = append(out, child)
		out = append(out, r.subtree(child)...)
	}
	return out
}

// Depth returns the number of ancestors of cid. Roots have depth 0.
func (r *Registry) Depth(cid string) int {
	depth := 0
	seen := map[string]bool{cid: true}
	for {
		info, ok := r.tx.infos[cid]
		if !ok || info.Container == "" || seen[info.Container] {
			return depth
		}
		if !r.Has(info.Container) {
			return depth
		}
		seen[info.Container] = true
		cid = info.Container
		depth++
	}
}

// Active returns every registered component, building those not yet live.
// With sortedByDepth the result is ordered parents first; components of
// equal depth keep registration order.
func (r *Registry) Active(sortedByDepth bool) ([]Widget, error) {
	cids := r.CIDs()
	if sortedByDepth {
		cids = r.sortedByDepth(cids)
	}

	out := make([]Widget, 0, len(cids))
	for _, cid := range cids {
		w, err := r.Get(cid)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// withHook returns the components whose kind implements hook, parents first.
// Components of other kinds are not built.
func (r *Registry) withHook(hook kindHooks) ([]Widget, error) {
	var out []Widget
	for _, cid := range r.sortedByDepth(r.CIDs()) {
		kind, ok := r.kinds.Lookup(r.tx.infos[cid].Kind)
		if !ok || !kind.hooks.has(hook) {
			continue
		}
		w, err := r.Get(cid)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// live returns the instances built during this request, parents first.
func (r *Registry) live() []Widget {
	var out []Widget
	for _, cid := range r.sortedByDepth(r.CIDs()) {
		if w, ok := r.tx.live[cid]; ok {
			out = append(out, w)
		}
	}
	return out
}

func (r *Registry) sortedByDepth(cids []string) []string {
	depths := make(map[string]int, len(cids))
	for _, cid := range cids {
		depths[cid] = r.Depth(cid)
	}
	sort.SliceStable(cids, func(i, j int) bool {
		return depths[cids[i]] < depths[cids[j]]
	})
	return cids
}
