package txui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
)

// RootCID is the cid of the component created by PageType.Root.
const RootCID = "root_node"

// PageHandler handles a named page event.
type PageHandler func(ctx context.Context, p *Page, params Params) error

// SetupFunc builds the initial component tree of a new transaction. It runs
// once per transaction, on the first request that finds no tree.
type SetupFunc func(ctx context.Context, p *Page) error

// PageType declares a page: its route, its component tree and its page-level
// event handlers. A PageType is immutable once added to an App.
//
//	home := txui.NewPage("home", "/").
//	    Title("Home").
//	    Root("box").
//	    Setup(func(ctx context.Context, p *txui.Page) error {
//	        return p.Registry().Add("counter", "counter", txui.Under(txui.RootCID))
//	    })
type PageType struct {
	name       string
	path       string
	title      string
	layout     Layout
	assets     Assets
	setup      SetupFunc
	root       string
	handlers   map[string]PageHandler
	permission string
}

// NewPage declares a page type served at path. The name identifies the
// route transactions are bound to.
func NewPage(name, path string) *PageType {
	return &PageType{
		name:       name,
		path:       path,
		title:      name,
		handlers:   make(map[string]PageHandler),
		permission: PermissionAccess,
	}
}

// Name returns the route name.
func (pt *PageType) Name() string { return pt.name }

// Path returns the URL path.
func (pt *PageType) Path() string { return pt.path }

// Title sets the document title.
func (pt *PageType) Title(title string) *PageType {
	pt.title = title
	return pt
}

// Layout replaces the default document layout.
func (pt *PageType) Layout(l Layout) *PageType {
	pt.layout = l
	return pt
}

// Assets adds page-level static files, delivered with every full page.
func (pt *PageType) Assets(a Assets) *PageType {
	pt.assets = pt.assets.Merge(a)
	return pt
}

// Setup sets the tree builder.
func (pt *PageType) Setup(fn SetupFunc) *PageType {
	pt.setup = fn
	return pt
}

// Root makes a component of kind the root of the tree, registered as
// RootCID before Setup runs.
func (pt *PageType) Root(kind string) *PageType {
	pt.root = kind
	return pt
}

// On registers a page event handler. It takes precedence over the built-in
// redraw_all and log_time handlers.
func (pt *PageType) On(event string, h PageHandler) *PageType {
	pt.handlers[event] = h
	return pt
}

// Permission sets the capability checked before the page is served.
// The empty string disables the check.
func (pt *PageType) Permission(capability string) *PageType {
	pt.permission = capability
	return pt
}

// Page is one page type driven through one request. It references the
// transaction and never owns component instances.
type Page struct {
	app      *App
	typ      *PageType
	req      *PageRequest
	tx       *Transaction
	registry *Registry
	resp     *Response
	parent   *Page
	subpages []*Page
	phase    Phase
	log      *slog.Logger

	// cids rendered in this request, in render order
	rendered []string
}

func (a *App) newPage(pt *PageType, req *PageRequest, parent *Page) *Page {
	return &Page{
		app:    a,
		typ:    pt,
		req:    req,
		resp:   newResponse(),
		parent: parent,
		log:    a.log.With("route", pt.name),
	}
}

// run drives the full lifecycle. On error nothing is committed and the
// in-memory transaction is dropped.
func (p *Page) run(ctx context.Context) error {
	reload, err := p.prepare(ctx)
	if err != nil || reload {
		return err
	}
	if err := p.step(ctx, PhaseEventsApplied, p.applyEvents); err != nil {
		return err
	}
	if err := p.step(ctx, PhaseRendered, p.render); err != nil {
		return err
	}
	return p.step(ctx, PhaseCleanedUp, p.cleanup)
}

// prepare resolves the transaction and brings the tree up to date. It
// reports true when the request was answered with a reload.
func (p *Page) prepare(ctx context.Context) (bool, error) {
	if err := p.step(ctx, PhaseTransactionResolved, p.resolveTransaction); err != nil {
		return false, err
	}
	if p.preventTransactionLoss() {
		return true, nil
	}
	if err := p.step(ctx, PhaseTreeAssigned, p.assignTree); err != nil {
		return false, err
	}
	if err := p.step(ctx, PhaseComponentsInitialized, p.initComponents); err != nil {
		return false, err
	}
	return false, nil
}

func (p *Page) resolveTransaction(ctx context.Context) error {
	store := p.app.store
	route := p.typ.name
	tid := p.req.TID()

	if tid == "" {
		p.tx = store.Create(route)
		p.tx.parentID = p.req.Get("ptid")
		p.countTx("created")
	} else {
		tx, err := store.LoadRoute(ctx, tid, route)
		switch {
		case err == nil:
			p.tx = tx
			p.countTx("loaded")

		case IsNotFound(err):
			p.countTx("lost")
			if p.req.IsPartial() {
				p.tx = store.unbound(tid, route)
				break
			}
			p.log.Warn("transaction not found, starting a new one", "tid", tid)
			p.tx = store.Create(route)

		case errors.Is(err, ErrTransactionRouteViolation):
			p.log.Warn("transaction bound to another route", "tid", tid, "error", err)
			p.tx = store.Create(route)
			p.countTx("route_violation")

		default:
			return err
		}
	}

	p.registry = newRegistry(p.tx, p.app.kinds, p)
	p.log = p.log.With("tid", p.tx.ID())
	return nil
}

func (p *Page) countTx(outcome string) {
	p.app.metrics.Transactions.WithLabelValues(p.typ.name, outcome).Inc()
}

// preventTransactionLoss handles a transaction without an initialized set.
// A partial request cannot be answered with patches for a tree the browser
// has and the server lost, so it gets a reload directive and no event is
// applied. A full page simply starts over.
func (p *Page) preventTransactionLoss() bool {
	if !p.tx.Lost() {
		return false
	}
	if p.req.IsPartial() {
		p.log.Warn("transaction lost, asking the client to reload")
		p.resp.reload()
		return true
	}
	p.tx.bind()
	return false
}

func (p *Page) assignTree(ctx context.Context) error {
	if p.tx.Bool(keyComponentsAssigned) {
		return nil
	}
	if p.typ.root != "" {
		if err := p.registry.Add(RootCID, p.typ.root); err != nil {
			return err
		}
	}
	if p.typ.setup != nil {
		if err := p.typ.setup(ctx, p); err != nil {
			return fmt.Errorf("setup %s: %w", p.typ.name, err)
		}
	}
	p.tx.Set(keyComponentsAssigned, true)
	return nil
}

// initComponents runs InitTransaction for every component that has not had
// it yet, then SetupComponent on every component that implements it.
func (p *Page) initComponents(ctx context.Context) error {
	if _, err := p.initTree(ctx); err != nil {
		return err
	}

	ws, err := p.registry.withHook(hookSetup)
	if err != nil {
		return err
	}
	for _, w := range ws {
		if err := w.(Setuper).SetupComponent(ctx); err != nil {
			return fmt.Errorf("setup component %s: %w", w.node().cid, err)
		}
	}
	return nil
}

// initTree walks depth-first from the roots and initializes what is not
// initialized yet. A parent's init may register children; the walk repeats
// until a pass initializes nothing. It returns the initialized cids in
// order.
func (p *Page) initTree(ctx context.Context) ([]string, error) {
	var done []string
	for {
		n := len(done)
		for _, cid := range p.registry.Roots() {
			var err error
			if done, err = p.initSubtree(ctx, cid, done); err != nil {
				return nil, err
			}
		}
		if len(done) == n {
			return done, nil
		}
	}
}

// initLate initializes components registered after the init phase, by an
// event handler or a hook, so they are complete before their next use. They
// also get SetupComponent, which the others already had in this request.
func (p *Page) initLate(ctx context.Context) error {
	if p.phase < PhaseComponentsInitialized {
		return nil
	}
	cids, err := p.initTree(ctx)
	if err != nil {
		return err
	}
	for _, cid := range cids {
		if !p.registry.Has(cid) {
			continue
		}
		w, err := p.registry.Get(cid)
		if err != nil {
			return err
		}
		if s, ok := w.(Setuper); ok {
			if err := s.SetupComponent(ctx); err != nil {
				return fmt.Errorf("setup component %s: %w", cid, err)
			}
		}
	}
	return nil
}

func (p *Page) initSubtree(ctx context.Context, cid string, done []string) ([]string, error) {
	if !p.registry.Has(cid) {
		// removed by an ancestor's init
		return done, nil
	}

	if !p.tx.IsInitialized(cid) {
		w, err := p.registry.Get(cid)
		if err != nil {
			return nil, err
		}
		if in, ok := w.(Initializer); ok {
			if err := in.InitTransaction(ctx); err != nil {
				return nil, fmt.Errorf("init %s: %w", cid, err)
			}
		}
		p.tx.markInitialized(cid)
		done = append(done, cid)
	}

	for _, child := range p.registry.Children(cid) {
		var err error
		if done, err = p.initSubtree(ctx, child, done); err != nil {
			return nil, err
		}
	}
	return done, nil
}

func (p *Page) applyEvents(ctx context.Context) error {
	if p.req.IsPartial() {
		if err := p.Dispatch(ctx, p.req.Queue()); err != nil {
			return err
		}
	} else {
		// The browser starts from an empty document.
		p.tx.resetDelivered()
	}

	ws, err := p.registry.withHook(hookAfterEvents)
	if err != nil {
		return err
	}
	for _, w := range ws {
		if err := w.(AfterEventHandler).AfterEventHandling(ctx); err != nil {
			return fmt.Errorf("after events %s: %w", w.node().cid, err)
		}
	}
	return p.initLate(ctx)
}

func (p *Page) cleanup(ctx context.Context) error {
	if err := p.done(ctx); err != nil {
		return err
	}
	if p.req.Unqueued() {
		return nil
	}
	if err := p.commit(ctx); err != nil {
		return err
	}
	if p.tx.NewID() == "" {
		return nil
	}
	p.countTx("forked")
	if p.req.IsPartial() {
		p.resp.writeStatement(Call(fnNewTID, p.tx.NewID()))
	}
	return nil
}

// done runs Finalize on every component still in the transaction, then on
// the sub-pages driven in this request.
func (p *Page) done(ctx context.Context) error {
	ws, err := p.registry.withHook(hookFinalize)
	if err != nil {
		return err
	}
	for _, w := range ws {
		if !p.tx.HasComponent(w.node().cid) {
			continue
		}
		if err := w.(Finalizer).Finalize(ctx); err != nil {
			return fmt.Errorf("finalize %s: %w", w.node().cid, err)
		}
	}
	for _, sp := range p.subpages {
		if err := sp.done(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (p *Page) commit(ctx context.Context) error {
	for _, sp := range p.subpages {
		if err := sp.commit(ctx); err != nil {
			return err
		}
	}
	return p.app.store.Commit(ctx, p.tx)
}

// SubPage drives another page type within the current request. The
// sub-page's transaction is resolved from tid (a new one is created when tid
// is empty or unknown) and its tree is initialized. Its components can then
// be used directly; finalization and commit follow the outer page.
func (p *Page) SubPage(ctx context.Context, pt *PageType, tid string) (*Page, error) {
	sp := p.app.newPage(pt, p.req.withTID(tid), p)
	if _, err := sp.prepare(ctx); err != nil {
		return nil, fmt.Errorf("sub-page %s: %w", pt.name, err)
	}
	p.subpages = append(p.subpages, sp)
	return sp, nil
}

// Name returns the route name of the page type.
func (p *Page) Name() string { return p.typ.name }

// Type returns the page type.
func (p *Page) Type() *PageType { return p.typ }

// Phase returns the last completed lifecycle phase.
func (p *Page) Phase() Phase { return p.phase }

// Parent returns the page that drives this one as a sub-page, or nil.
func (p *Page) Parent() *Page { return p.parent }

// Transaction returns the transaction of this request.
func (p *Page) Transaction() *Transaction { return p.tx }

// Registry returns the component registry of the transaction.
func (p *Page) Registry() *Registry { return p.registry }

// Request returns the decoded request.
func (p *Page) Request() *PageRequest { return p.req }

// Response returns the response being built.
func (p *Page) Response() *Response { return p.resp }

// Logger returns the page's logger, carrying route and tid.
func (p *Page) Logger() *slog.Logger { return p.log }

// Component resolves cid, building the instance on first access.
func (p *Page) Component(cid string) (Widget, error) {
	return p.registry.Get(cid)
}

// Components returns every component of the transaction.
func (p *Page) Components(sortedByDepth bool) ([]Widget, error) {
	return p.registry.Active(sortedByDepth)
}

// ParentTransaction loads the transaction this one was forked or chained
// from. It returns ErrTransactionNotFound when there is none.
func (p *Page) ParentTransaction(ctx context.Context) (*Transaction, error) {
	if p.tx.parentID == "" {
		return nil, fmt.Errorf("%w: %s has no parent", ErrTransactionNotFound, p.tx.id)
	}
	return p.app.store.Load(ctx, p.tx.parentID)
}

// RedrawAll redraws the root component, or every root when the page has no
// single root.
func (p *Page) RedrawAll() error {
	cids := p.registry.Roots()
	if p.registry.Has(RootCID) {
		cids = []string{RootCID}
	}
	for _, cid := range cids {
		w, err := p.registry.Get(cid)
		if err != nil {
			return err
		}
		w.node().Redraw()
	}
	return nil
}

// FormValues collects the values of all FormBindable components keyed by
// their field name.
func (p *Page) FormValues() (map[string]any, error) {
	ws, err := p.registry.Active(true)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	for _, w := range ws {
		if fb, ok := w.(FormBindable); ok {
			out[fb.FieldName()] = fb.FieldValue()
		}
	}
	return out, nil
}

// Uploads returns the files of the current upload event for widgetName.
func (p *Page) Uploads(widgetName string) []*multipart.FileHeader {
	return p.req.Uploads(widgetName)
}

// AddJS queues a client statement. Partial responses run it after the
// patches; full pages run it once the document is initialized.
func (p *Page) AddJS(stmt string) {
	p.resp.add(stmt)
}

// MakeNewTID makes this request commit the transaction under a new id. The
// state under the old id stays as it was, so browser history can move
// between both. It returns the new id.
func (p *Page) MakeNewTID() string {
	return p.app.store.MarkForNewID(p.tx)
}
