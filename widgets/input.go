package widgets

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/pthm/txui"
)

// TextInputState holds the field name and its current value.
type TextInputState struct {
	Name        string `msgpack:"name"`
	Value       string `msgpack:"value"`
	Placeholder string `msgpack:"placeholder,omitempty"`
}

// TextInput is a single-line text field. The browser reports edits with a
// change event; the field keeps the value without redrawing since the
// browser already shows it.
type TextInput struct {
	*txui.Component[TextInputState]
}

var _ txui.FormBindable = (*TextInput)(nil)

// NewTextInput creates a TextInput.
func NewTextInput() *TextInput {
	c := &TextInput{Component: txui.New[TextInputState]("text_input")}
	c.On("change", func(ctx context.Context, p txui.Params) error {
		c.State().Value = p.String("value")
		return nil
	})
	return c
}

// FieldName implements txui.FormBindable.
func (c *TextInput) FieldName() string {
	if n := c.State().Name; n != "" {
		return n
	}
	return c.CID()
}

// FieldValue implements txui.FormBindable.
func (c *TextInput) FieldValue() any {
	return c.State().Value
}

// SetFieldValue implements txui.FormBindable.
func (c *TextInput) SetFieldValue(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("text input %s: want string, got %T", c.CID(), v)
	}
	if s != c.State().Value {
		c.State().Value = s
		c.Redraw()
	}
	return nil
}

// Render produces the HTML output.
func (c *TextInput) Render(ctx context.Context) templ.Component {
	st := c.State()
	return render(func(m *markup) {
		m.open("input", attrs(c.Attrs("change", nil), templ.Attributes{
			"id":          c.CID(),
			"type":        "text",
			"name":        c.FieldName(),
			"value":       st.Value,
			"placeholder": st.Placeholder,
		}))
	})
}
