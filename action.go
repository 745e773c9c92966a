package txui

import (
	"encoding/json"

	"github.com/a-h/templ"
)

// Attribute names read by the client runtime to queue events.
const (
	AttrCID    = "data-txui-cid"
	AttrEvent  = "data-txui-event"
	AttrParams = "data-txui-params"
	AttrPage   = "data-txui-page-event"
)

// EventAttrs builds the attributes that make an element queue a component
// event on click (or change, for form controls):
//
//	<button { txui.EventAttrs(c.CID(), "increment", nil)... }>+</button>
//
// Parameters are encoded as JSON and arrive as the event's Params.
func EventAttrs(cid, event string, params map[string]any) templ.Attributes {
	attrs := templ.Attributes{
		AttrCID:   cid,
		AttrEvent: event,
	}
	if len(params) > 0 {
		attrs[AttrParams] = encodeParams(params)
	}
	return attrs
}

// PageEventAttrs builds the attributes for a page event.
func PageEventAttrs(event string, params map[string]any) templ.Attributes {
	attrs := templ.Attributes{
		AttrPage: event,
	}
	if len(params) > 0 {
		attrs[AttrParams] = encodeParams(params)
	}
	return attrs
}

func encodeParams(params map[string]any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return "{}"
	}
	return string(data)
}
