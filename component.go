package txui

import (
	"context"
	"io"
	"sort"

	"github.com/a-h/templ"
)

// Handler handles one named component event.
type Handler func(ctx context.Context, params Params) error

// UploadEvent is the handler name upload events are routed to.
const UploadEvent = "upload_file"

// Base holds the per-instance bookkeeping shared by every component: its
// identity within the transaction, the owning page, its named event handlers
// and the redraw flags of the current request.
//
// The redraw flags are not persisted. Every request starts with a clean
// slate, so a redraw requested in one request never leaks into the next.
type Base struct {
	cid       string
	kind      string
	container string
	page      *Page
	handlers  map[string]Handler
	redraw    bool
	rendered  bool
}

// Component[S] is the base type embedded by user components. S is the state
// type: every exported field of S is persisted in the transaction and
// restored before the component is used again in a later request.
//
// Example:
//
//	type CounterState struct {
//	    Count int `msgpack:"count"`
//	}
//
//	type Counter struct {
//	    *txui.Component[CounterState]
//	}
//
//	func NewCounter() *Counter {
//	    c := &Counter{Component: txui.New[CounterState]("counter")}
//	    c.On("increment", c.handleIncrement)
//	    return c
//	}
//
// The kind name identifies the factory used to rebuild the component on
// later requests; it must match the name the factory is registered under.
type Component[S any] struct {
	Base
	state S
}

// New creates a component of the given kind with zero state.
func New[S any](kind string) *Component[S] {
	return &Component[S]{
		Base: Base{
			kind:     kind,
			handlers: make(map[string]Handler),
		},
	}
}

// State returns a pointer to the persisted state.
func (c *Component[S]) State() *S {
	return &c.state
}

func (c *Component[S]) node() *Base {
	return &c.Base
}

func (c *Component[S]) statePtr() any {
	return &c.state
}

// CID returns the component identifier, unique within its transaction.
func (b *Base) CID() string {
	return b.cid
}

// Kind returns the registered kind name.
func (b *Base) Kind() string {
	return b.kind
}

// ContainerID returns the cid of the parent component, or "" for roots.
func (b *Base) ContainerID() string {
	return b.container
}

// Page returns the page driving the current request.
func (b *Base) Page() *Page {
	return b.page
}

// Container resolves the parent component. It returns nil for roots.
func (b *Base) Container() (Widget, error) {
	if b.container == "" || b.page == nil {
		return nil, nil
	}
	return b.page.registry.Get(b.container)
}

// On registers the handler for a named event. Registering the same name
// twice replaces the earlier handler.
func (b *Base) On(event string, h Handler) {
	if b.handlers == nil {
		b.handlers = make(map[string]Handler)
	}
	b.handlers[event] = h
}

// Handles reports whether a handler exists for event.
func (b *Base) Handles(event string) bool {
	_, ok := b.handlers[event]
	return ok
}

// Events returns the registered event names in sorted order.
func (b *Base) Events() []string {
	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandleEvent invokes the handler registered for event.
func (b *Base) HandleEvent(ctx context.Context, event string, params Params) error {
	h, ok := b.handlers[event]
	if !ok {
		return &UnknownEventError{CID: b.cid, Event: event}
	}
	if params == nil {
		params = Params{}
	}
	return h(ctx, params)
}

// Redraw flags the component as stale. Flags are level-triggered: several
// calls before the next render collapse into one patch. A component already
// rendered in the current pass ignores the request.
func (b *Base) Redraw() {
	if b.rendered {
		return
	}
	b.redraw = true
}

// RedrawRequested reports whether Redraw was called in this request.
func (b *Base) RedrawRequested() bool {
	return b.redraw
}

// IsRendered reports whether the component's markup was produced in this
// request, either directly or as part of an ancestor.
func (b *Base) IsRendered() bool {
	return b.rendered
}

// Children returns the direct children in registration order.
func (b *Base) Children() ([]Widget, error) {
	if b.page == nil {
		return nil, nil
	}
	var out []Widget
	for _, cid := range b.page.registry.Children(b.cid) {
		w, err := b.page.registry.Get(cid)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// AddChild registers a lazily instantiated child of the given kind.
func (b *Base) AddChild(cid, kind string, opts ...AddOption) error {
	opts = append([]AddOption{Under(b.cid)}, opts...)
	return b.page.registry.Add(cid, kind, opts...)
}

// RemoveChild removes a child and its subtree and redraws this component.
func (b *Base) RemoveChild(cid string) error {
	if err := b.page.registry.Remove(cid); err != nil {
		return err
	}
	b.Redraw()
	return nil
}

// RenderChildren renders every direct child in order. Use it from a
// container's template.
func (b *Base) RenderChildren() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		children, err := b.Children()
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := b.page.renderInto(ctx, w, child); err != nil {
				return err
			}
		}
		return nil
	})
}

// RenderChild renders one child by cid.
func (b *Base) RenderChild(cid string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		child, err := b.page.registry.Get(cid)
		if err != nil {
			return err
		}
		return b.page.renderInto(ctx, w, child)
	})
}

// Attrs returns the client attributes that send event to this component.
func (b *Base) Attrs(event string, params map[string]any) templ.Attributes {
	return EventAttrs(b.cid, event, params)
}
