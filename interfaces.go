package txui

import (
	"context"

	"github.com/a-h/templ"
)

// Widget is the single contract every component satisfies.
//
// User components embed *Component[S], which supplies the identity, state and
// redraw bookkeeping; they only implement Render:
//
//	type Counter struct {
//	    *txui.Component[CounterState]
//	}
//
//	func (c *Counter) Render(ctx context.Context) templ.Component {
//	    return counterTemplate(c.CID(), c.State().Count)
//	}
//
// Render must be pure with respect to component state. It is called once per
// full page request and once per redraw in a partial request.
type Widget interface {
	node() *Base
	statePtr() any
	Render(ctx context.Context) templ.Component
}

// Scripter is implemented by components that emit client-side script along
// with their markup. The script is delivered with the full page and with
// every patch that replaces the component.
type Scripter interface {
	Script(ctx context.Context) string
}

// Initializer is implemented by components with one-time per-transaction
// setup. InitTransaction runs exactly once for a cid within a transaction,
// parents before children, so a parent may still create or adjust children
// before their own InitTransaction runs.
type Initializer interface {
	InitTransaction(ctx context.Context) error
}

// Setuper is implemented by components that need per-request preparation
// after the tree is initialized and before events are applied.
type Setuper interface {
	SetupComponent(ctx context.Context) error
}

// AfterEventHandler is called on every active component once all events of
// a partial request (or none, for full pages) have been applied.
type AfterEventHandler interface {
	AfterEventHandling(ctx context.Context) error
}

// Finalizer is the end-of-request hook. It runs for every component still
// present in the transaction, before the transaction is committed.
type Finalizer interface {
	Finalize(ctx context.Context) error
}

// AssetProvider is implemented by components that need static files. Assets
// of rendered components are collected into the page imports.
type AssetProvider interface {
	Assets() Assets
}

// The following capability interfaces let widgets opt into orthogonal
// behaviors instead of inheriting them. Nothing in the request lifecycle
// requires them.

// Searchable widgets filter their content by a free-text query.
type Searchable interface {
	Search(ctx context.Context, query string) error
}

// Paginated widgets expose page-wise navigation.
type Paginated interface {
	CurrentPage() int
	PageCount() int
	SetPage(n int)
}

// Groupable widgets partition their rows into named groups.
type Groupable interface {
	Groups() []string
}

// FormBindable widgets hold a single named form value. Page.FormValues
// collects them.
type FormBindable interface {
	FieldName() string
	FieldValue() any
	SetFieldValue(v any) error
}
