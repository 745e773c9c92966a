package txui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pthm/txui/internal/logging"
	"github.com/pthm/txui/lib/backend/memory"
)

// App holds the page types, the component kinds and the transaction store
// of one application, and serves its pages over HTTP.
type App struct {
	kinds        *Kinds
	store        *Store
	authorizer   Authorizer
	principals   func(*http.Request) []string
	log          *slog.Logger
	metrics      *Metrics
	staticPrefix string
	assetURLFunc func(string) string
	runtime      Assets
	perfLog      bool

	mu    sync.RWMutex
	pages map[string]*PageType
	paths map[string]*PageType
	order []*PageType

	// OnError is called when a request fails. Nothing has been committed at
	// that point. Customize this to render error pages.
	OnError func(http.ResponseWriter, *http.Request, error)
}

// Option configures an App.
type Option func(*App)

// WithStore sets the transaction store. The default keeps transactions in
// memory.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.store = s
	}
}

// WithAuthorizer sets the capability checker. The default allows everything.
func WithAuthorizer(auth Authorizer) Option {
	return func(a *App) {
		a.authorizer = auth
	}
}

// WithPrincipalsFunc extracts the principals of a request for ACL checks.
func WithPrincipalsFunc(fn func(*http.Request) []string) Option {
	return func(a *App) {
		a.principals = fn
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.log = l
	}
}

// WithMetrics shares a Metrics between apps.
func WithMetrics(m *Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithStaticPrefix sets the URL prefix relative asset paths resolve to.
func WithStaticPrefix(prefix string) Option {
	return func(a *App) {
		a.staticPrefix = prefix
	}
}

// WithAssetURL replaces asset URL generation entirely, for example to add
// cache-busting hashes.
func WithAssetURL(fn func(path string) string) Option {
	return func(a *App) {
		a.assetURLFunc = fn
	}
}

// WithRuntime sets the client runtime files included in every full page.
func WithRuntime(assets Assets) Option {
	return func(a *App) {
		a.runtime = assets
	}
}

// WithPerformanceLog logs lifecycle phase timings at Info and asks the
// client to report its parse time.
func WithPerformanceLog(enabled bool) Option {
	return func(a *App) {
		a.perfLog = enabled
	}
}

// NewApp creates an App.
func NewApp(opts ...Option) *App {
	a := &App{
		kinds:        NewKinds(),
		authorizer:   AllowAll(),
		log:          logging.NewNop(),
		staticPrefix: "/static",
		runtime:      Assets{JS: []string{"txui.js"}},
		pages:        make(map[string]*PageType),
		paths:        make(map[string]*PageType),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = NewStore(memory.New())
	}
	if a.metrics == nil {
		a.metrics = NewMetrics()
	}
	if a.OnError == nil {
		a.OnError = DefaultOnError
	}
	return a
}

// DefaultOnError maps errors to status codes: 403 for denied access, 400
// for malformed requests and events naming unknown components or handlers,
// 500 otherwise.
func DefaultOnError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case IsClientError(err):
		http.Error(w, "Bad request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// Kinds returns the component kind table.
func (a *App) Kinds() *Kinds {
	return a.kinds
}

// RegisterKind registers component factories.
func (a *App) RegisterKind(factories ...Factory) {
	for _, f := range factories {
		a.kinds.Register(f)
	}
}

// Store returns the transaction store.
func (a *App) Store() *Store {
	return a.store
}

// Metrics returns the app's collectors.
func (a *App) Metrics() *Metrics {
	return a.metrics
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.log
}

// Add registers page types. Panics on a name or path collision.
func (a *App) Add(pages ...*PageType) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, pt := range pages {
		if _, exists := a.pages[pt.name]; exists {
			panic(fmt.Sprintf("txui: page name collision for %q", pt.name))
		}
		if _, exists := a.paths[pt.path]; exists {
			panic(fmt.Sprintf("txui: page path collision for %q", pt.path))
		}
		a.pages[pt.name] = pt
		a.paths[pt.path] = pt
		a.order = append(a.order, pt)
	}
}

// Page returns the page type registered under name.
func (a *App) Page(name string) (*PageType, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	pt, ok := a.pages[name]
	return pt, ok
}

// Pages returns the page types in registration order.
func (a *App) Pages() []*PageType {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*PageType(nil), a.order...)
}

// Handler returns a router serving every page added so far on GET (full
// page) and POST (full page forms, partial requests and uploads).
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	for _, pt := range a.Pages() {
		h := a.ServePage(pt)
		r.Method(http.MethodGet, pt.path, h)
		r.Method(http.MethodPost, pt.path, h)
	}
	return r
}

// MetricsHandler serves the app's Prometheus collectors.
func (a *App) MetricsHandler() http.Handler {
	return a.metrics.Handler()
}

// ServePage returns the handler of one page type.
func (a *App) ServePage(pt *PageType) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		mode := "full"
		if IsPartial(r) || IsUpload(r) {
			mode = "partial"
		}

		resp, err := a.Run(r.Context(), pt, r)
		if err != nil {
			a.metrics.Requests.WithLabelValues(pt.name, mode, "error").Inc()
			if errors.Is(err, ErrForbidden) || IsClientError(err) {
				a.log.Warn("request rejected", "route", pt.name, "error", err)
			} else {
				a.log.Error("request failed, transaction discarded", "route", pt.name, "error", err)
			}
			a.OnError(w, r, err)
			return
		}

		outcome := "ok"
		if string(resp.Body()) == ReloadDirective {
			outcome = "reload"
		}
		a.metrics.Requests.WithLabelValues(pt.name, mode, outcome).Inc()

		if err := resp.WriteTo(w); err != nil {
			a.log.Debug("write response", "route", pt.name, "error", err)
		}
		a.log.Debug("request served",
			"route", pt.name,
			"mode", mode,
			"outcome", outcome,
			"duration", time.Since(start),
		)
	})
}

// Run handles one request for pt and returns the response to send. On
// error nothing was committed.
func (a *App) Run(ctx context.Context, pt *PageType, r *http.Request) (*Response, error) {
	if a.principals != nil {
		ctx = WithPrincipals(ctx, a.principals(r)...)
	}
	if pt.permission != "" && !a.authorizer.HasPermission(ctx, pt.permission, pt) {
		return nil, fmt.Errorf("%w: %s on page %s", ErrForbidden, pt.permission, pt.name)
	}

	req, err := ParseRequest(r)
	if err != nil {
		return nil, err
	}

	p := a.newPage(pt, req, nil)
	if err := p.run(ctx); err != nil {
		return nil, err
	}
	return p.resp, nil
}

// Close releases the store backend.
func (a *App) Close() error {
	return a.store.Backend().Close()
}
