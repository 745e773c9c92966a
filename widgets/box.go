package widgets

import (
	"context"

	"github.com/a-h/templ"

	"github.com/pthm/txui"
)

// BoxState holds the box title.
type BoxState struct {
	Title string `msgpack:"title,omitempty"`
}

// Box is a container rendering its children in order.
type Box struct {
	*txui.Component[BoxState]
}

// NewBox creates a Box.
func NewBox() *Box {
	return &Box{Component: txui.New[BoxState]("box")}
}

// Render produces the HTML output.
func (b *Box) Render(ctx context.Context) templ.Component {
	return render(func(m *markup) {
		m.open("div", templ.Attributes{"id": b.CID(), "class": "txui-box"})
		if t := b.State().Title; t != "" {
			m.elem("h2", nil, t)
		}
		m.component(b.RenderChildren())
		m.close("div")
	})
}

// Assets implements txui.AssetProvider.
func (b *Box) Assets() txui.Assets {
	return txui.Assets{CSS: []string{"widgets.css"}}
}
