package widgets

import (
	"context"

	"github.com/a-h/templ"

	"github.com/pthm/txui"
)

// DefaultPageSize is the number of todos per list page.
const DefaultPageSize = 10

// TodoListState is the view state of a TodoList. The todos themselves stay
// in the TodoStore.
type TodoListState struct {
	Query    string `msgpack:"query,omitempty"`
	Group    string `msgpack:"group,omitempty"`
	Page     int    `msgpack:"page"`
	PageSize int    `msgpack:"page_size"`
}

// TodoList displays the todos page by page, filtered by a search query and
// an optional tag group.
type TodoList struct {
	*txui.Component[TodoListState]
	store TodoStore
}

var (
	_ txui.Searchable  = (*TodoList)(nil)
	_ txui.Paginated   = (*TodoList)(nil)
	_ txui.Groupable   = (*TodoList)(nil)
	_ txui.Initializer = (*TodoList)(nil)
)

// NewTodoList creates a new TodoList component.
func NewTodoList(store TodoStore) *TodoList {
	c := &TodoList{
		Component: txui.New[TodoListState]("todolist"),
		store:     store,
	}
	c.On("search", func(ctx context.Context, p txui.Params) error {
		return c.Search(ctx, p.String("q"))
	})
	c.On("page", func(ctx context.Context, p txui.Params) error {
		n, ok := p.Int("n")
		if !ok {
			return nil
		}
		c.SetPage(n)
		return nil
	})
	c.On("group", func(ctx context.Context, p txui.Params) error {
		c.State().Group = p.String("tag")
		c.State().Page = 0
		c.Redraw()
		return nil
	})
	c.On("toggle", func(ctx context.Context, p txui.Params) error {
		if c.store.Toggle(p.String("id")) {
			c.Redraw()
		}
		return nil
	})
	c.On("delete", func(ctx context.Context, p txui.Params) error {
		if c.store.Delete(p.String("id")) {
			c.SetPage(c.State().Page)
			c.Redraw()
		}
		return nil
	})
	return c
}

// InitTransaction applies the default page size.
func (c *TodoList) InitTransaction(ctx context.Context) error {
	if c.State().PageSize <= 0 {
		c.State().PageSize = DefaultPageSize
	}
	return nil
}

// Search implements txui.Searchable and goes back to the first page.
func (c *TodoList) Search(ctx context.Context, query string) error {
	c.State().Query = query
	c.State().Page = 0
	c.Redraw()
	return nil
}

// Groups implements txui.Groupable.
func (c *TodoList) Groups() []string {
	tags := AllTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

// CurrentPage implements txui.Paginated. Pages are counted from zero.
func (c *TodoList) CurrentPage() int {
	return c.State().Page
}

// PageCount implements txui.Paginated. An empty list has one page.
func (c *TodoList) PageCount() int {
	size := c.pageSize()
	n := (len(c.filtered()) + size - 1) / size
	if n == 0 {
		return 1
	}
	return n
}

// SetPage implements txui.Paginated, clamping n to the existing pages.
func (c *TodoList) SetPage(n int) {
	if last := c.PageCount() - 1; n > last {
		n = last
	}
	if n < 0 {
		n = 0
	}
	if n != c.State().Page {
		c.State().Page = n
		c.Redraw()
	}
}

// Visible returns the todos of the current page.
func (c *TodoList) Visible() []*Todo {
	all := c.filtered()
	size := c.pageSize()
	start := c.State().Page * size
	if start >= len(all) {
		return nil
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (c *TodoList) pageSize() int {
	if s := c.State().PageSize; s > 0 {
		return s
	}
	return DefaultPageSize
}

func (c *TodoList) filtered() []*Todo {
	var tags []Tag
	if g := c.State().Group; g != "" {
		tags = []Tag{Tag(g)}
	}
	var out []*Todo
	for _, t := range c.store.List(nil, tags) {
		if t.Matches(c.State().Query) {
			out = append(out, t)
		}
	}
	return out
}

// Render produces the HTML output.
func (c *TodoList) Render(ctx context.Context) templ.Component {
	st := c.State()
	return render(func(m *markup) {
		m.open("div", templ.Attributes{"id": c.CID(), "class": "txui-list"})

		m.open("input", attrs(c.Attrs("search", nil), templ.Attributes{
			"type":        "search",
			"name":        "q",
			"value":       st.Query,
			"placeholder": "Search",
		}))

		m.open("nav", templ.Attributes{"class": "groups"})
		m.elem("button", attrs(c.Attrs("group", map[string]any{"tag": ""}), templ.Attributes{"class": selected(st.Group == "")}), "all")
		for _, g := range c.Groups() {
			m.elem("button", attrs(c.Attrs("group", map[string]any{"tag": g}), templ.Attributes{"class": selected(st.Group == g)}), g)
		}
		m.close("nav")

		m.open("ul", nil)
		for _, t := range c.Visible() {
			class := "todo"
			if t.IsCompleted() {
				class += " done"
			}
			m.open("li", templ.Attributes{"class": class})
			m.open("input", attrs(c.Attrs("toggle", map[string]any{"id": t.ID}), templ.Attributes{
				"type":    "checkbox",
				"checked": t.IsCompleted(),
			}))
			m.elem("span", templ.Attributes{"class": "title"}, t.Title)
			for _, tag := range t.Tags {
				m.elem("span", templ.Attributes{"class": "tag"}, string(tag))
			}
			m.elem("button", c.Attrs("delete", map[string]any{"id": t.ID}), "×")
			m.close("li")
		}
		m.close("ul")

		m.open("div", templ.Attributes{"class": "pager"})
		m.elem("button", attrs(c.Attrs("page", map[string]any{"n": st.Page - 1}), templ.Attributes{"disabled": st.Page == 0}), "‹")
		m.open("span", templ.Attributes{"class": "position"})
		m.textf("%d / %d", st.Page+1, c.PageCount())
		m.close("span")
		m.elem("button", attrs(c.Attrs("page", map[string]any{"n": st.Page + 1}), templ.Attributes{"disabled": st.Page >= c.PageCount()-1}), "›")
		m.close("div")

		m.close("div")
	})
}

// Script implements txui.Scripter.
func (c *TodoList) Script(ctx context.Context) string {
	return txui.Call("txui_widgets.list_init", c.CID())
}

// Assets implements txui.AssetProvider.
func (c *TodoList) Assets() txui.Assets {
	return txui.Assets{JS: []string{"widgets.js"}, CSS: []string{"widgets.css"}}
}

func selected(on bool) string {
	if on {
		return "selected"
	}
	return ""
}
