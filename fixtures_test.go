package txui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/a-h/templ"

	"github.com/pthm/txui/lib/backend/memory"
)

type boxState struct {
	Label string `msgpack:"label"`
}

// testBox is a container rendering its children.
type testBox struct {
	*Component[boxState]
}

func newTestBox() Widget {
	b := &testBox{Component: New[boxState]("box")}
	b.On("touch", func(ctx context.Context, p Params) error {
		b.Redraw()
		return nil
	})
	return b
}

func (b *testBox) Render(ctx context.Context) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="`+b.CID()+`">`); err != nil {
			return err
		}
		if err := b.RenderChildren().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

type counterState struct {
	Count int `msgpack:"count"`
	Inits int `msgpack:"inits"`
}

// testCounter counts increments and its own InitTransaction calls.
type testCounter struct {
	*Component[counterState]
}

var errCounterFailed = errors.New("counter failed")

func newTestCounter() Widget {
	c := &testCounter{Component: New[counterState]("counter")}
	c.On("increment", func(ctx context.Context, p Params) error {
		by, ok := p.Int("by")
		if !ok {
			by = 1
		}
		c.State().Count += by
		c.Redraw()
		return nil
	})
	c.On("fail", func(ctx context.Context, p Params) error {
		return errCounterFailed
	})
	c.On(UploadEvent, func(ctx context.Context, p Params) error {
		c.State().Count = len(c.Page().Uploads(p.String("widget_name")))
		c.Redraw()
		return nil
	})
	return c
}

func (c *testCounter) InitTransaction(ctx context.Context) error {
	c.State().Inits++
	return nil
}

func (c *testCounter) Render(ctx context.Context) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span id="`+c.CID()+`">`+strconv.Itoa(c.State().Count)+`</span>`)
		return err
	})
}

func (c *testCounter) Script(ctx context.Context) string {
	return fmt.Sprintf("counter_init(%q);", c.CID())
}

func (c *testCounter) Assets() Assets {
	return Assets{JS: []string{"counter.js"}}
}

// testBadge brings its own stylesheet.
type testBadge struct {
	*Component[struct{}]
}

func newTestBadge() Widget {
	return &testBadge{Component: New[struct{}]("badge")}
}

func (b *testBadge) Render(ctx context.Context) templ.Component {
	return templ.Raw(`<b id="` + b.CID() + `">new</b>`)
}

func (b *testBadge) Assets() Assets {
	return Assets{CSS: []string{"badge.css"}}
}

type formState struct {
	Inits int `msgpack:"inits"`
}

// testForm creates its title child in InitTransaction and renders it.
type testForm struct {
	*Component[formState]
}

func newTestForm() Widget {
	return &testForm{Component: New[formState]("form")}
}

func (f *testForm) InitTransaction(ctx context.Context) error {
	f.State().Inits++
	return f.AddChild(f.CID()+"_title", "counter")
}

func (f *testForm) Render(ctx context.Context) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<form id="`+f.CID()+`">`); err != nil {
			return err
		}
		if err := f.RenderChild(f.CID()+"_title").Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</form>`)
		return err
	})
}

// newTestApp returns an app serving the page {root_node: box, a, b}, with
// a few page events used across tests.
func newTestApp(t *testing.T, opts ...Option) (*App, *PageType) {
	t.Helper()

	seq := 0
	store := NewStore(memory.New(), WithIDGenerator(func() string {
		seq++
		return "tx" + strconv.Itoa(seq)
	}))

	app := NewApp(append([]Option{WithStore(store)}, opts...)...)
	app.RegisterKind(newTestBox, newTestCounter, newTestBadge, newTestForm)

	other := NewPage("other", "/other").Root("box")

	home := NewPage("home", "/").
		Title("Home").
		Root("box").
		Setup(func(ctx context.Context, p *Page) error {
			reg := p.Registry()
			if err := reg.Add("a", "counter", Under(RootCID)); err != nil {
				return err
			}
			return reg.Add("b", "counter", Under(RootCID))
		}).
		On("add_badge", func(ctx context.Context, p *Page, params Params) error {
			if err := p.Registry().Add("badge", "badge", Under(RootCID)); err != nil {
				return err
			}
			return p.RedrawAll()
		}).
		On("add_form", func(ctx context.Context, p *Page, params Params) error {
			if err := p.Registry().Add("f", "form", Under(RootCID)); err != nil {
				return err
			}
			return p.RedrawAll()
		}).
		On("drop_title", func(ctx context.Context, p *Page, params Params) error {
			if err := p.Registry().Remove("f_title"); err != nil {
				return err
			}
			w, err := p.Registry().Get("f")
			if err != nil {
				return err
			}
			w.node().Redraw()
			return nil
		}).
		On("fork", func(ctx context.Context, p *Page, params Params) error {
			p.MakeNewTID()
			return nil
		}).
		On("notify", func(ctx context.Context, p *Page, params Params) error {
			p.ShowFadingMessage(params.String("msg"), "")
			return nil
		}).
		On("sub", func(ctx context.Context, p *Page, params Params) error {
			sp, err := p.SubPage(ctx, other, params.String("tid"))
			if err != nil {
				return err
			}
			p.Transaction().Set("sub_tid", sp.Transaction().ID())
			return nil
		})

	app.Add(home, other)
	return app, home
}

// loadCounter reads the committed state of a counter.
func loadCounter(t *testing.T, app *App, tid, cid string) counterState {
	t.Helper()
	tx, err := app.Store().Load(context.Background(), tid)
	if err != nil {
		t.Fatalf("load %s: %v", tid, err)
	}
	w, err := newRegistry(tx, app.Kinds(), nil).Get(cid)
	if err != nil {
		t.Fatalf("get %s: %v", cid, err)
	}
	return *w.(*testCounter).State()
}

// startPage loads the page once and returns its tid.
func startPage(t *testing.T, app *App, pt *PageType) string {
	t.Helper()
	res, err := TestFullPage(app, pt, "")
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsOK() {
		t.Fatalf("full page status %d: %s", res.StatusCode, res.Body)
	}
	tid := res.InitTID()
	if tid == "" {
		t.Fatalf("no tid in page:\n%s", res.Body)
	}
	return tid
}
