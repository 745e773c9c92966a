package txui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// EventType tags an entry of the client event queue.
type EventType string

const (
	// ComponentEventType addresses a handler of one component.
	ComponentEventType EventType = "ce"
	// PageEventType addresses a page-level handler.
	PageEventType EventType = "pe"
	// UploadEventType carries a file upload for one component.
	UploadEventType EventType = "upl"
)

// Event is one entry of the ordered client event queue.
type Event struct {
	Type       EventType `json:"t"`
	ID         any       `json:"id,omitempty"`
	CID        string    `json:"cid,omitempty"`
	Name       string    `json:"e,omitempty"`
	Params     Params    `json:"p,omitempty"`
	WidgetName string    `json:"widget_name,omitempty"`
}

// ComponentEvent builds a component event.
func ComponentEvent(cid, name string, params Params) Event {
	return Event{Type: ComponentEventType, CID: cid, Name: name, Params: params}
}

// PageEvent builds a page event.
func PageEvent(name string, params Params) Event {
	return Event{Type: PageEventType, Name: name, Params: params}
}

// UploadEventFor builds an upload event for the widget field widgetName of
// component cid.
func UploadEventFor(cid, widgetName string) Event {
	return Event{Type: UploadEventType, CID: cid, WidgetName: widgetName}
}

// Params carries the parameters of one event as decoded from JSON.
type Params map[string]any

// String returns the value under key formatted as a string.
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value under key as an int. JSON numbers and numeric
// strings are accepted.
func (p Params) Int(key string) (int, bool) {
	switch v := p[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

// Bool returns the value under key as a bool.
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

// Bind decodes the parameters into the struct pointed to by dst. Fields are
// matched by their `param` tag or, failing that, by name. Scalar types are
// converted where possible ("3" into an int field, for example).
func (p Params) Bind(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "param",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(map[string]any(p)); err != nil {
		return fmt.Errorf("%w: bind params: %v", ErrMalformedRequest, err)
	}
	return nil
}

// Dispatch applies events strictly in order. Each handler sees the state left
// by the previous ones. The first failing event aborts the rest. Components
// registered by a handler are initialized before the next event runs.
func (p *Page) Dispatch(ctx context.Context, queue []Event) error {
	for i, ev := range queue {
		if err := p.dispatchOne(ctx, i, ev); err != nil {
			var ee *EventError
			if errors.As(err, &ee) {
				return err
			}
			return fmt.Errorf("event %d (%s %s): %w", i, ev.Type, ev.Name, err)
		}
		if err := p.initLate(ctx); err != nil {
			return fmt.Errorf("event %d (%s %s): %w", i, ev.Type, ev.Name, err)
		}
		p.app.metrics.Events.WithLabelValues(p.typ.name, string(ev.Type)).Inc()
	}
	return nil
}

// dispatchOne resolves the target of ev before calling its handler. Only
// resolution failures become *EventError; errors returned by the handler
// itself are passed through.
func (p *Page) dispatchOne(ctx context.Context, i int, ev Event) error {
	unroutable := func(err error) error {
		return &EventError{Index: i, Event: ev, Err: err}
	}

	switch ev.Type {
	case ComponentEventType, UploadEventType:
		if !p.registry.Has(ev.CID) {
			return unroutable(&UnknownComponentError{CID: ev.CID})
		}
		w, err := p.registry.Get(ev.CID)
		if err != nil {
			return err
		}
		name, params := ev.Name, ev.Params
		if ev.Type == UploadEventType {
			name, params = UploadEvent, Params{"widget_name": ev.WidgetName}
		}
		b := w.node()
		if !b.Handles(name) {
			return unroutable(&UnknownEventError{CID: ev.CID, Event: name})
		}
		return b.HandleEvent(ctx, name, params)

	case PageEventType:
		h, ok := p.pageHandler(ev.Name)
		if !ok {
			return unroutable(&UnknownEventError{Event: ev.Name})
		}
		params := ev.Params
		if params == nil {
			params = Params{}
		}
		return h(ctx, p, params)

	default:
		return fmt.Errorf("%w: unknown event type %q", ErrMalformedRequest, ev.Type)
	}
}

func (p *Page) pageHandler(name string) (PageHandler, bool) {
	if h, ok := p.typ.handlers[name]; ok {
		return h, true
	}
	h, ok := builtinPageHandlers[name]
	return h, ok
}

// builtinPageHandlers are available on every page unless overridden.
var builtinPageHandlers = map[string]PageHandler{
	"redraw_all": func(ctx context.Context, p *Page, params Params) error {
		return p.RedrawAll()
	},
	"log_time": func(ctx context.Context, p *Page, params Params) error {
		var in struct {
			TimeUsed float64 `param:"time_used"`
		}
		if err := params.Bind(&in); err != nil {
			return err
		}
		p.app.metrics.ClientParse.WithLabelValues(p.typ.name).Observe(in.TimeUsed / 1000)
		p.log.Debug("client parse time", "time_used_ms", in.TimeUsed)
		return nil
	},
}
