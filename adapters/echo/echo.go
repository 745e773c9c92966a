// Package txuiecho mounts txui pages on the Echo framework.
//
//	e := echo.New()
//	txuiecho.Mount(e, app)
//
// Or mount on a group with middleware:
//
//	g := e.Group("/app", authMiddleware)
//	txuiecho.MountGroup(g, app, txuiecho.WithPrincipals(principalsOf))
package txuiecho

import (
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/txui"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	principals func(echo.Context) []string
}

// WithPrincipals extracts the ACL principals of a request from the Echo
// context, typically from values set by an authentication middleware.
func WithPrincipals(fn func(c echo.Context) []string) Option {
	return func(o *options) {
		o.principals = fn
	}
}

// router is what Mount needs from *echo.Echo and *echo.Group.
type router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Mount serves every page type added to app so far on GET and POST.
func Mount(e *echo.Echo, app *txui.App, opts ...Option) {
	mount(e, app, opts)
}

// MountGroup serves the pages of app below an Echo group, sharing the
// group's middleware (auth, logging, etc.).
func MountGroup(g *echo.Group, app *txui.App, opts ...Option) {
	mount(g, app, opts)
}

func mount(r router, app *txui.App, opts []Option) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	for _, pt := range app.Pages() {
		h := Handler(app, pt, o.principals)
		r.GET(pt.Path(), h)
		r.POST(pt.Path(), h)
	}
}

// Handler serves one page type. Failed requests go through app.OnError,
// like with the app's own router.
func Handler(app *txui.App, pt *txui.PageType, principals func(echo.Context) []string) echo.HandlerFunc {
	serve := app.ServePage(pt)
	return func(c echo.Context) error {
		if principals != nil {
			ctx := txui.WithPrincipals(c.Request().Context(), principals(c)...)
			c.SetRequest(c.Request().WithContext(ctx))
		}
		serve.ServeHTTP(c.Response(), c.Request())
		return nil
	}
}

// Render writes a templ component to the Echo response.
//
//	func handler(c echo.Context) error {
//	    return txuiecho.Render(c, myTemplate())
//	}
func Render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, txui.ContentTypeHTML)
	return component.Render(c.Request().Context(), c.Response())
}
