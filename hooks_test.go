package txui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookedState struct {
	Calls []string `msgpack:"calls"`
}

// testHooked records every lifecycle hook it receives.
type testHooked struct {
	*Component[hookedState]
}

func newTestHooked() Widget {
	h := &testHooked{Component: New[hookedState]("hooked")}
	h.On("poke", func(ctx context.Context, p Params) error {
		h.record("poke")
		return nil
	})
	return h
}

func (h *testHooked) record(call string) {
	h.State().Calls = append(h.State().Calls, call)
}

func (h *testHooked) InitTransaction(ctx context.Context) error {
	h.record("init")
	return nil
}

func (h *testHooked) SetupComponent(ctx context.Context) error {
	h.record("setup")
	return nil
}

func (h *testHooked) AfterEventHandling(ctx context.Context) error {
	h.record("after")
	return nil
}

func (h *testHooked) Finalize(ctx context.Context) error {
	h.record("finalize")
	return nil
}

func (h *testHooked) Render(ctx context.Context) templ.Component {
	return templ.Raw(`<i id="` + h.CID() + `"></i>`)
}

func newHookedApp(t *testing.T) (*App, *PageType) {
	t.Helper()
	app, _ := newTestApp(t)
	app.RegisterKind(newTestHooked)

	hp := NewPage("hooks", "/hooks").Setup(func(ctx context.Context, p *Page) error {
		if err := p.Registry().Add("h", "hooked"); err != nil {
			return err
		}
		return p.Registry().Add("c", "counter")
	})
	app.Add(hp)
	return app, hp
}

func runPartial(t *testing.T, app *App, pt *PageType, tid string, events ...Event) *Page {
	t.Helper()
	body, err := json.Marshal(queueBody{TID: tid, Queue: events})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodPost, pt.path, bytes.NewReader(body))
	r.Header.Set("X-Requested-With", "XMLHttpRequest")

	req, err := ParseRequest(r)
	require.NoError(t, err)
	p := app.newPage(pt, req, nil)
	require.NoError(t, p.run(context.Background()))
	return p
}

func hookCalls(t *testing.T, app *App, tid string) []string {
	t.Helper()
	tx, err := app.Store().Load(context.Background(), tid)
	require.NoError(t, err)
	w, err := newRegistry(tx, app.Kinds(), nil).Get("h")
	require.NoError(t, err)
	return w.(*testHooked).State().Calls
}

func TestHooks_Order(t *testing.T) {
	app, hp := newHookedApp(t)
	tid := startPage(t, app, hp)
	assert.Equal(t, []string{"init", "setup", "after", "finalize"}, hookCalls(t, app, tid))

	runPartial(t, app, hp, tid, ComponentEvent("h", "poke", nil))
	assert.Equal(t, []string{
		"init", "setup", "after", "finalize",
		"setup", "poke", "after", "finalize",
	}, hookCalls(t, app, tid))
}

func TestHooks_OnlyBuildKindsWithHooks(t *testing.T) {
	app, hp := newHookedApp(t)
	tid := startPage(t, app, hp)

	p := runPartial(t, app, hp, tid)
	assert.Contains(t, p.tx.live, "h")
	assert.NotContains(t, p.tx.live, "c", "counter has no per-request hooks and must stay unbuilt")
	assert.Equal(t, PhaseCleanedUp, p.Phase())
}

func TestHooks_KindFlags(t *testing.T) {
	kinds := NewKinds()
	hooked := kinds.Register(newTestHooked)
	counter := kinds.Register(newTestCounter)

	assert.True(t, hooked.hooks.has(hookSetup))
	assert.True(t, hooked.hooks.has(hookAfterEvents))
	assert.True(t, hooked.hooks.has(hookFinalize))
	assert.Zero(t, counter.hooks)
}

func TestHooks_FinalizeSkipsRemoved(t *testing.T) {
	app, hp := newHookedApp(t)
	var dropped *testHooked
	hp.On("drop", func(ctx context.Context, p *Page, params Params) error {
		w, err := p.Component("h")
		if err != nil {
			return err
		}
		dropped = w.(*testHooked)
		return p.Registry().Remove("h")
	})
	tid := startPage(t, app, hp)

	p := runPartial(t, app, hp, tid, PageEvent("drop", nil))
	require.NotNil(t, dropped)
	assert.Equal(t, []string{"init", "setup", "after", "finalize", "setup"}, dropped.State().Calls)
	assert.False(t, p.tx.HasComponent("h"))
}
