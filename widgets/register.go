// Package widgets contains demo components built on txui: a container, a
// counter, a text field and a small todo application with a searchable,
// paginated list.
package widgets

import (
	"context"
	"embed"
	"io/fs"

	"github.com/pthm/txui"
)

//go:embed static
var static embed.FS

// Static returns the stylesheet and script the widgets reference.
func Static() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Register registers every widget kind with app.
func Register(app *txui.App, store TodoStore) {
	app.RegisterKind(
		func() txui.Widget { return NewBox() },
		func() txui.Widget { return NewCounter() },
		func() txui.Widget { return NewTextInput() },
		func() txui.Widget { return NewTodoList(store) },
		func() txui.Widget { return NewAddTodo(store) },
		func() txui.Widget { return NewStats(store) },
	)
}

// DemoPage returns the demo page: a counter and the todo application under
// one box.
func DemoPage(name, path string) *txui.PageType {
	return txui.NewPage(name, path).
		Title("txui demo").
		Root("box").
		Setup(func(ctx context.Context, p *txui.Page) error {
			reg := p.Registry()
			under := txui.Under(txui.RootCID)
			if err := reg.Add("counter", "counter", under); err != nil {
				return err
			}
			if err := reg.Add("add", "addtodo", under, txui.WithState(AddTodoState{List: "todos"})); err != nil {
				return err
			}
			if err := reg.Add("todos", "todolist", under); err != nil {
				return err
			}
			return reg.Add("stats", "stats", under)
		}).
		On("clear_completed", func(ctx context.Context, p *txui.Page, params txui.Params) error {
			w, err := p.Component("todos")
			if err != nil {
				return err
			}
			list := w.(*TodoList)
			done := StatusCompleted
			for _, t := range list.store.List(&done, nil) {
				list.store.Delete(t.ID)
			}
			list.SetPage(list.CurrentPage())
			list.Redraw()
			return nil
		})
}
