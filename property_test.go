package txui

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// opsToEvents turns generated ints into increments: even values hit a, odd
// values hit b, by v/2+1.
func opsToEvents(ops []int) []Event {
	events := make([]Event, len(ops))
	for i, v := range ops {
		cid := "a"
		if v%2 == 1 {
			cid = "b"
		}
		events[i] = ComponentEvent(cid, "increment", Params{"by": v/2 + 1})
	}
	return events
}

func TestProperty_BatchedEqualsOneByOne(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("a queue applied at once equals the same events one per request", prop.ForAll(
		func(ops []int) bool {
			batched, home := newTestApp(t)
			tid1 := startPage(t, batched, home)
			if res, _ := TestEvents(batched, home, tid1, opsToEvents(ops)...); !res.IsOK() {
				return false
			}

			single, home2 := newTestApp(t)
			tid2 := startPage(t, single, home2)
			for _, ev := range opsToEvents(ops) {
				if res, _ := TestEvents(single, home2, tid2, ev); !res.IsOK() {
					return false
				}
			}

			for _, cid := range []string{"a", "b"} {
				if loadCounter(t, batched, tid1, cid) != loadCounter(t, single, tid2, cid) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 9)),
	))

	properties.TestingRun(t)
}

func TestProperty_InitRunsOnce(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("InitTransaction runs once per cid whatever the request mix", prop.ForAll(
		func(full []bool) bool {
			app, home := newTestApp(t)
			tid := startPage(t, app, home)
			for _, f := range full {
				if f {
					TestFullPage(app, home, tid)
				} else {
					TestEvents(app, home, tid, PageEvent("redraw_all", nil))
				}
			}
			return loadCounter(t, app, tid, "a").Inits == 1 && loadCounter(t, app, tid, "b").Inits == 1
		},
		gen.SliceOfN(5, gen.Bool()),
	))

	properties.TestingRun(t)
}

func TestProperty_NewIDLeavesOriginal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("committing under a new id never touches the original record", prop.ForAll(
		func(n int) bool {
			app, home := newTestApp(t)
			tid := startPage(t, app, home)

			events := []Event{PageEvent("fork", nil)}
			for i := 0; i < n; i++ {
				events = append(events, ComponentEvent("a", "increment", nil))
			}
			res, _ := TestEvents(app, home, tid, events...)
			next := res.NewTID()
			if next == "" || next == tid {
				return false
			}
			return loadCounter(t, app, tid, "a").Count == 0 && loadCounter(t, app, next, "a").Count == n
		},
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}
