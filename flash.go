package txui

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Message levels understood by the client runtime.
const (
	MessageInfo    = "info"
	MessageOK      = "ok"
	MessageSuccess = "success"
	MessageWarning = "warning"
	MessageError   = "error"
	MessageAlert   = "alert"
)

// Message is a notification shown by the client runtime.
//
// A fading message shows up and fades away on its own; other messages stay
// until dismissed.
type Message struct {
	Msg    string `json:"msg"`
	Typ    string `json:"typ,omitempty"`
	Fading bool   `json:"fading"`
}

// ShowMessage displays msg to the user. level is one of the Message*
// constants, empty for the client default.
func (p *Page) ShowMessage(msg, level string) {
	p.AddJS(Call(fnShowMessage, Message{Msg: msg, Typ: level}))
}

// ShowFadingMessage displays a non-intrusive message. An empty level means
// MessageInfo.
func (p *Page) ShowFadingMessage(msg, level string) {
	if level == "" {
		level = MessageInfo
	}
	p.AddJS(Call(fnShowMessage, Message{Msg: msg, Typ: level, Fading: true}))
}

// MessageContainer returns the element messages are shown in.
//
// The default layout includes it. Custom layouts should render it once,
// typically near the end of <body>.
func MessageContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="txui-messages" class="txui-messages"></div>`)
		return err
	})
}
