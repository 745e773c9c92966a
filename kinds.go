package txui

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Factory builds a fresh, unbound component instance.
type Factory func() Widget

// Kind describes a registered component type.
type Kind struct {
	Name string
	New  Factory

	// StateFields lists the persisted field names of the kind's state type.
	// It is computed once at registration.
	StateFields []string

	hooks kindHooks
}

// kindHooks records which optional per-request hooks a kind implements, so
// the lifecycle only builds instances that have work to do.
type kindHooks uint8

const (
	hookSetup kindHooks = 1 << iota
	hookAfterEvents
	hookFinalize
)

func (h kindHooks) has(hook kindHooks) bool {
	return h&hook != 0
}

func probeHooks(w Widget) kindHooks {
	var h kindHooks
	if _, ok := w.(Setuper); ok {
		h |= hookSetup
	}
	if _, ok := w.(AfterEventHandler); ok {
		h |= hookAfterEvents
	}
	if _, ok := w.(Finalizer); ok {
		h |= hookFinalize
	}
	return h
}

// Kinds maps kind names to factories. Components are rebuilt through it
// whenever a transaction is loaded, so every kind used on a page must be
// registered before the first request.
type Kinds struct {
	mu    sync.RWMutex
	kinds map[string]*Kind
}

// NewKinds creates an empty kind table.
func NewKinds() *Kinds {
	return &Kinds{kinds: make(map[string]*Kind)}
}

// Register adds a factory. The kind name is taken from a probe instance.
// Panics on an empty or duplicate kind name.
func (k *Kinds) Register(f Factory) *Kind {
	probe := f()
	name := probe.node().kind
	if name == "" {
		panic(fmt.Sprintf("txui: %T has an empty kind name", probe))
	}

	kind := &Kind{
		Name:        name,
		New:         f,
		StateFields: stateFields(reflect.TypeOf(probe.statePtr()).Elem()),
		hooks:       probeHooks(probe),
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.kinds[name]; exists {
		panic(fmt.Sprintf("txui: kind %q registered twice", name))
	}
	k.kinds[name] = kind
	return kind
}

// Lookup returns the kind registered under name.
func (k *Kinds) Lookup(name string) (*Kind, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	kind, ok := k.kinds[name]
	return kind, ok
}

// Names returns all registered kind names.
func (k *Kinds) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	names := make([]string, 0, len(k.kinds))
	for name := range k.kinds {
		names = append(names, name)
	}
	return names
}

func (k *Kinds) build(name string) (Widget, error) {
	kind, ok := k.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	w := kind.New()
	if got := w.node().kind; got != name {
		return nil, fmt.Errorf("txui: factory for %q built a %q", name, got)
	}
	return w, nil
}

// stateFields returns the msgpack names of the exported fields of t.
func stateFields(t reflect.Type) []string {
	if t.Kind() != reflect.Struct {
		return nil
	}
	var fields []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("msgpack"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		fields = append(fields, name)
	}
	return fields
}
