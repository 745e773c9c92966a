package widgets

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/a-h/templ"
)

// markup writes HTML and keeps the first write error.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newMarkup(ctx context.Context, w io.Writer) *markup {
	return &markup{ctx: ctx, w: w}
}

func (m *markup) raw(s string) {
	if m.err == nil {
		_, m.err = io.WriteString(m.w, s)
	}
}

func (m *markup) text(s string) {
	m.raw(templ.EscapeString(s))
}

func (m *markup) textf(format string, args ...any) {
	m.text(fmt.Sprintf(format, args...))
}

// open writes a start tag. Attribute names are written in sorted order;
// a true bool is written bare and a false bool is skipped.
func (m *markup) open(tag string, attrs templ.Attributes) {
	m.raw("<" + tag)
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case bool:
			if v {
				m.raw(" " + k)
			}
		case string:
			m.raw(" " + k + `="` + templ.EscapeString(v) + `"`)
		default:
			m.raw(" " + k + `="` + templ.EscapeString(fmt.Sprint(v)) + `"`)
		}
	}
	m.raw(">")
}

func (m *markup) close(tag string) {
	m.raw("</" + tag + ">")
}

// elem writes <tag attrs>text</tag>.
func (m *markup) elem(tag string, attrs templ.Attributes, text string) {
	m.open(tag, attrs)
	m.text(text)
	m.close(tag)
}

func (m *markup) component(c templ.Component) {
	if m.err == nil {
		m.err = c.Render(m.ctx, m.w)
	}
}

// attrs merges attribute sets, later ones winning.
func attrs(sets ...templ.Attributes) templ.Attributes {
	out := templ.Attributes{}
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// render adapts a markup writer function to templ.Component.
func render(fn func(m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := newMarkup(ctx, w)
		fn(m)
		return m.err
	})
}
