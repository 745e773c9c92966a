// Package txui provides a server-driven component framework: a page is a
// tree of stateful components whose state survives across independent HTTP
// requests in a server-side transaction.
//
// The browser keeps a transaction id (tid). Every request loads the
// transaction, rebuilds the components it touches, applies the client's
// events and answers with either a full document or a short stream of
// client statements that patch only the components that changed.
//
// # Core Concepts
//
// Components embed *Component[S] where S is the state type. Every exported
// field of S is persisted with the transaction:
//
//	type CounterState struct {
//	    Count int `msgpack:"count"`
//	}
//
//	type Counter struct {
//	    *txui.Component[CounterState]
//	}
//
//	func NewCounter() txui.Widget {
//	    c := &Counter{Component: txui.New[CounterState]("counter")}
//	    c.On("increment", func(ctx context.Context, p txui.Params) error {
//	        c.State().Count++
//	        c.Redraw()
//	        return nil
//	    })
//	    return c
//	}
//
// Kinds are registered once per App and rebuild components on later
// requests. Components are registered explicitly in a transaction with
// Registry.Add (lazy) or Registry.Set (eager) and resolved with
// Registry.Get, which builds the instance on first access.
//
// # Lifecycle
//
// Each request moves a Page through these phases:
//
//  1. The transaction is resolved. A missing tid creates one; an unknown or
//     expired tid makes a partial request answer with a reload and a full
//     page start over; a tid from another page type is replaced.
//  2. The page type's Setup builds the tree, once per transaction.
//  3. InitTransaction runs exactly once per component, parents first, so a
//     parent can still add or adjust children before their own init.
//  4. Partial requests apply their events in submission order. Components
//     registered by a handler are initialized before the next event.
//  5. Full pages render the whole tree. Partial requests emit one patch per
//     component that called Redraw and was not already rendered as part of
//     an ancestor, plus the static imports the client has not seen yet.
//  6. Finalize hooks run and the transaction is committed.
//
// A failing request commits nothing, so the stored tree and the stored set
// of initialized components always agree.
//
// # Concurrency
//
// Requests are handled without internal parallelism. Requests sharing a tid
// are not serialized: each loads its own copy of the transaction and the
// last commit wins.
//
// # Storage
//
// Transactions are msgpack records, signed or encrypted with the App's
// secret, kept in a lib/backend.Backend: in memory, in redis or in a bbolt
// file. Records expire with the store's TTL.
//
// # Serving
//
// App.Handler routes every page type on GET and POST; adapters/echo does the
// same for Echo. The widgets package holds a demo set of components, served
// by `txui serve` together with the embedded client runtime (RuntimeFS).
package txui
