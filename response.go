package txui

import (
	"bytes"
	"net/http"
)

// Content types of the two response modes.
const (
	ContentTypeHTML       = "text/html; charset=utf-8"
	ContentTypeJavaScript = "text/javascript; charset=utf-8"
)

// Response collects what a page sends back: the body produced by the
// renderer, the statements queued by handlers, and optional headers and
// status set by page code.
//
// Handlers reach it through Page.Response:
//
//	p.Response().Header("Cache-Control", "no-store")
//
// Statements are added through the Page helpers (ShowMessage, Jump, ...) and
// are placed by the renderer according to the request mode.
type Response struct {
	status      int
	contentType string
	headers     http.Header
	body        bytes.Buffer
	statements  []string
}

func newResponse() *Response {
	return &Response{headers: make(http.Header)}
}

// Header sets a response header.
func (r *Response) Header(key, value string) *Response {
	r.headers.Set(key, value)
	return r
}

// Status sets the HTTP status code. The default is 200.
func (r *Response) Status(code int) *Response {
	r.status = code
	return r
}

// StatusCode returns the status, 200 when unset.
func (r *Response) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// ContentType returns the body's content type.
func (r *Response) ContentType() string {
	return r.contentType
}

// Headers returns the headers set by page code.
func (r *Response) Headers() http.Header {
	return r.headers
}

// Body returns the rendered body.
func (r *Response) Body() []byte {
	return r.body.Bytes()
}

// Statements returns the queued client statements.
func (r *Response) Statements() []string {
	return r.statements
}

func (r *Response) add(stmt string) {
	r.statements = append(r.statements, stmt)
}

func (r *Response) writeStatement(stmt string) {
	r.body.WriteString(stmt)
	r.body.WriteByte('\n')
}

func (r *Response) reload() {
	r.contentType = ContentTypeJavaScript
	r.body.Reset()
	r.body.WriteString(ReloadDirective)
}

// WriteTo writes headers, status and body to w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	for k, vs := range r.headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if r.contentType != "" {
		w.Header().Set("Content-Type", r.contentType)
	}
	w.WriteHeader(r.StatusCode())
	_, err := w.Write(r.body.Bytes())
	return err
}
