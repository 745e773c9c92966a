package widgets

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/pthm/txui"
)

// StatsState remembers which store version was last shown.
type StatsState struct {
	Version uint64 `msgpack:"version"`
}

// Stats displays statistics about todos. It redraws itself after any
// request that changed the store, whichever widget made the change.
type Stats struct {
	*txui.Component[StatsState]
	store TodoStore
}

// NewStats creates a new Stats component.
func NewStats(store TodoStore) *Stats {
	return &Stats{
		Component: txui.New[StatsState]("stats"),
		store:     store,
	}
}

// AfterEventHandling implements txui.AfterEventHandler.
func (c *Stats) AfterEventHandling(ctx context.Context) error {
	if v := c.store.Version(); v != c.State().Version {
		c.State().Version = v
		c.Redraw()
	}
	return nil
}

// Render produces the HTML output.
func (c *Stats) Render(ctx context.Context) templ.Component {
	s := c.store.Stats()
	return render(func(m *markup) {
		m.open("dl", templ.Attributes{"id": c.CID(), "class": "txui-stats"})
		m.elem("dt", nil, "Total")
		m.elem("dd", nil, strconv.Itoa(s.Total))
		m.elem("dt", nil, "Pending")
		m.elem("dd", nil, strconv.Itoa(s.Pending))
		m.elem("dt", nil, "Completed")
		m.elem("dd", nil, strconv.Itoa(s.Completed))
		m.close("dl")
	})
}
