package widgets

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/txui"
)

func newDemo(t *testing.T) (*txui.App, *txui.PageType, *MemoryTodos) {
	t.Helper()
	store := NewSampleTodos()
	app := txui.NewApp()
	Register(app, store)
	page := DemoPage("demo", "/")
	app.Add(page)
	return app, page, store
}

func startDemo(t *testing.T, app *txui.App, page *txui.PageType) string {
	t.Helper()
	res, err := txui.TestFullPage(app, page, "")
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.Body)
	tid := res.InitTID()
	require.NotEmpty(t, tid)
	return tid
}

func TestDemoPage_FullRender(t *testing.T) {
	app, page, _ := newDemo(t)

	res, err := txui.TestFullPage(app, page, "")
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.Body)

	assert.True(t, res.BodyContainsAll(
		`<title>txui demo</title>`,
		`<div class="txui-box" id="root_node">`,
		`<div class="txui-counter" id="counter">`,
		`id="add_title"`,
		`placeholder="What needs doing?"`,
		`<div class="txui-list" id="todos">`,
		`Buy groceries`,
		`<dl class="txui-stats" id="stats">`,
		`txui_widgets.list_init("todos");`,
		`href="/static/widgets.css"`,
		`src="/static/widgets.js"`,
	), res.Body)
	assert.Equal(t, 1, strings.Count(res.Body, "widgets.css"))
}

func TestDemoPage_Counter(t *testing.T) {
	app, page, _ := newDemo(t)
	tid := startDemo(t, app, page)

	res, err := txui.TestEvents(app, page, tid,
		txui.ComponentEvent("counter", "increment", nil),
		txui.ComponentEvent("counter", "increment", txui.Params{"by": 4}),
	)
	require.NoError(t, err)
	require.Equal(t, []string{"counter"}, res.PatchedCIDs())
	p, _ := res.Patch("counter")
	assert.Contains(t, p.Main, `<span class="count">5</span>`)

	res, _ = txui.TestEvents(app, page, tid, txui.ComponentEvent("counter", "reset", nil))
	p, _ = res.Patch("counter")
	assert.Contains(t, p.Main, `<span class="count">0</span>`)
	assert.True(t, res.BodyContains(`"msg":"Counter reset!"`))
}

func TestDemoPage_AddTodo(t *testing.T) {
	app, page, store := newDemo(t)
	tid := startDemo(t, app, page)
	before := store.Stats().Total

	res, err := txui.TestEvents(app, page, tid,
		txui.ComponentEvent("add_title", "change", txui.Params{"value": "  Write tests "}),
		txui.ComponentEvent("add", "add", txui.Params{"tag": "work"}),
	)
	require.NoError(t, err)
	require.True(t, res.IsOK(), res.Body)

	assert.Equal(t, before+1, store.Stats().Total)
	assert.Len(t, store.List(nil, nil)[before].Tags, 1)
	assert.Equal(t, "Write tests", store.List(nil, nil)[before].Title)

	assert.Equal(t, []string{"todos", "stats", "add_title"}, res.PatchedCIDs())
	input, _ := res.Patch("add_title")
	assert.Contains(t, input.Main, `value=""`)
	assert.True(t, res.BodyContains(`"msg":"Todo added!"`))
}

func TestDemoPage_AddTodoRequiresTitle(t *testing.T) {
	app, page, store := newDemo(t)
	tid := startDemo(t, app, page)
	before := store.Version()

	res, _ := txui.TestEvents(app, page, tid, txui.ComponentEvent("add", "add", nil))
	assert.True(t, res.IsOK())
	assert.Equal(t, before, store.Version())
	assert.Empty(t, res.Patches)
	assert.True(t, res.BodyContains(`"msg":"Title is required","typ":"error"`))
}

func TestDemoPage_TitleSurvivesRequests(t *testing.T) {
	app, page, store := newDemo(t)
	tid := startDemo(t, app, page)

	txui.TestEvents(app, page, tid, txui.ComponentEvent("add_title", "change", txui.Params{"value": "Later"}))
	res, _ := txui.TestEvents(app, page, tid, txui.ComponentEvent("add", "add", nil))
	require.True(t, res.IsOK(), res.Body)

	todos := store.List(nil, nil)
	assert.Equal(t, "Later", todos[len(todos)-1].Title)
}

func TestDemoPage_FormValues(t *testing.T) {
	app, page, _ := newDemo(t)
	var got map[string]any
	page.On("peek", func(ctx context.Context, p *txui.Page, params txui.Params) error {
		var err error
		got, err = p.FormValues()
		return err
	})
	tid := startDemo(t, app, page)

	txui.TestEvents(app, page, tid,
		txui.ComponentEvent("add_title", "change", txui.Params{"value": "abc"}),
		txui.PageEvent("peek", nil),
	)
	assert.Equal(t, map[string]any{"title": "abc"}, got)
}

func TestDemoPage_ClearCompleted(t *testing.T) {
	app, page, store := newDemo(t)
	tid := startDemo(t, app, page)

	res, _ := txui.TestEvents(app, page, tid,
		txui.ComponentEvent("todos", "toggle", txui.Params{"id": "todo-1"}),
		txui.PageEvent("clear_completed", nil),
	)
	require.True(t, res.IsOK(), res.Body)
	assert.Nil(t, store.Get("todo-1"))
	assert.Equal(t, []string{"todos", "stats"}, res.PatchedCIDs())
}

func TestDemoPage_StatsFollowOtherSessions(t *testing.T) {
	app, page, store := newDemo(t)
	tid := startDemo(t, app, page)

	store.Add("from elsewhere", "", nil)
	res, _ := txui.TestEvents(app, page, tid, txui.ComponentEvent("counter", "increment", nil))
	assert.Equal(t, []string{"counter", "stats"}, res.PatchedCIDs())
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"widgets.css", "widgets.js"} {
		_, err := fs.Stat(Static(), name)
		assert.NoError(t, err, name)
	}
	_, err := fs.Stat(txui.RuntimeFS(), "txui.js")
	assert.NoError(t, err)
}
