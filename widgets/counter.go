package widgets

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/pthm/txui"
)

// CounterState holds the counter value.
type CounterState struct {
	Count int `msgpack:"count"`
}

// Counter is a simple counter. Its state lives in the transaction.
type Counter struct {
	*txui.Component[CounterState]
}

// NewCounter creates a new Counter component.
func NewCounter() *Counter {
	c := &Counter{Component: txui.New[CounterState]("counter")}
	c.On("increment", c.handleIncrement)
	c.On("decrement", c.handleDecrement)
	c.On("reset", c.handleReset)
	return c
}

// Render produces the HTML output.
func (c *Counter) Render(ctx context.Context) templ.Component {
	return render(func(m *markup) {
		m.open("div", templ.Attributes{"id": c.CID(), "class": "txui-counter"})
		m.elem("button", c.Attrs("decrement", nil), "-")
		m.elem("span", templ.Attributes{"class": "count"}, strconv.Itoa(c.State().Count))
		m.elem("button", c.Attrs("increment", nil), "+")
		m.elem("button", c.Attrs("reset", nil), "Reset")
		m.close("div")
	})
}

func (c *Counter) handleIncrement(ctx context.Context, p txui.Params) error {
	by, ok := p.Int("by")
	if !ok {
		by = 1
	}
	c.State().Count += by
	c.Redraw()
	return nil
}

func (c *Counter) handleDecrement(ctx context.Context, p txui.Params) error {
	c.State().Count--
	c.Redraw()
	return nil
}

func (c *Counter) handleReset(ctx context.Context, p txui.Params) error {
	c.State().Count = 0
	c.Redraw()
	c.Page().ShowFadingMessage("Counter reset!", txui.MessageSuccess)
	return nil
}
