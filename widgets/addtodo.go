package widgets

import (
	"context"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/txui"
)

// AddTodoState names the list refreshed after an add.
type AddTodoState struct {
	List string `msgpack:"list,omitempty"`
}

// AddTodo handles adding new todos. It owns a TextInput child for the
// title, created when the transaction first initializes the form.
type AddTodo struct {
	*txui.Component[AddTodoState]
	store TodoStore
}

// NewAddTodo creates a new AddTodo component.
func NewAddTodo(store TodoStore) *AddTodo {
	c := &AddTodo{
		Component: txui.New[AddTodoState]("addtodo"),
		store:     store,
	}
	c.On("add", c.handleAdd)
	return c
}

func (c *AddTodo) titleCID() string {
	return c.CID() + "_title"
}

// InitTransaction creates the title field.
func (c *AddTodo) InitTransaction(ctx context.Context) error {
	return c.AddChild(c.titleCID(), "text_input", txui.WithState(TextInputState{
		Name:        "title",
		Placeholder: "What needs doing?",
	}))
}

func (c *AddTodo) title() (*TextInput, error) {
	w, err := c.Page().Component(c.titleCID())
	if err != nil {
		return nil, err
	}
	return w.(*TextInput), nil
}

// handleAdd creates a new todo from the title field.
func (c *AddTodo) handleAdd(ctx context.Context, p txui.Params) error {
	input, err := c.title()
	if err != nil {
		return err
	}

	title := strings.TrimSpace(input.State().Value)
	if title == "" {
		c.Page().ShowFadingMessage("Title is required", txui.MessageError)
		return nil
	}

	var tags []Tag
	if t := p.String("tag"); t != "" {
		tags = append(tags, Tag(t))
	}
	c.store.Add(title, "", tags)

	if err := input.SetFieldValue(""); err != nil {
		return err
	}
	if list := c.State().List; list != "" {
		w, err := c.Page().Component(list)
		if err != nil {
			return err
		}
		w.(*TodoList).Redraw()
	}
	c.Page().ShowFadingMessage("Todo added!", txui.MessageSuccess)
	return nil
}

// Render produces the HTML output.
func (c *AddTodo) Render(ctx context.Context) templ.Component {
	return render(func(m *markup) {
		m.open("div", templ.Attributes{"id": c.CID(), "class": "txui-addtodo"})
		m.component(c.RenderChild(c.titleCID()))
		m.elem("button", c.Attrs("add", nil), "Add")
		m.close("div")
	})
}
