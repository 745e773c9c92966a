package txui

import (
	"encoding/json"
	"strings"
)

// Client runtime functions addressed by partial responses and page scripts.
const (
	fnReplaceComponent = "txui.replace_component"
	fnExtraContent     = "txui.handle_dynamic_extra_content"
	fnNewTID           = "txui.new_tid"
	fnInitPage         = "txui.init_page"
	fnShowMessage      = "txui.show_message"
	fnReloadPage       = "txui.reload_page"
	fnJump             = "txui.jump"
	fnJumpExtern       = "txui.jump_extern"
	fnGoNext           = "txui.go_next"
)

// ReloadDirective is the whole body of a partial response whose transaction
// was lost.
const ReloadDirective = "window.location.reload();"

// Call formats a client statement calling fn with JSON-encoded arguments:
//
//	Call("txui.new_tid", "abc") // txui.new_tid("abc");
//
// Arguments that cannot be encoded are sent as null.
func Call(fn string, args ...any) string {
	var sb strings.Builder
	sb.WriteString(fn)
	sb.WriteByte('(')
	for i, arg := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		data, err := json.Marshal(arg)
		if err != nil {
			data = []byte("null")
		}
		sb.Write(data)
	}
	sb.WriteString(");")
	return sb.String()
}

// Patch is the payload of one replace_component statement.
type Patch struct {
	CID  string `json:"-"`
	JS   string `json:"js"`
	Main string `json:"main"`
}

func (pt Patch) statement() string {
	return Call(fnReplaceComponent, pt.CID, pt)
}
