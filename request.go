package txui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// maxUploadMemory bounds the in-memory part of multipart uploads.
const maxUploadMemory = 32 << 20

// PageRequest is the decoded inbound request of one page. It abstracts the
// three transports the client runtime uses:
//   - full page navigation with form or query parameters,
//   - partial requests with a JSON body {tid, q, unqueued},
//   - multipart uploads carrying exactly one upload event.
type PageRequest struct {
	r        *http.Request
	partial  bool
	upload   bool
	tid      string
	queue    []Event
	unqueued bool
	form     url.Values
	files    map[string][]*multipart.FileHeader
}

type queueBody struct {
	TID      string  `json:"tid"`
	Queue    []Event `json:"q"`
	Unqueued bool    `json:"unqueued,omitempty"`
}

// ParseRequest decodes r.
func ParseRequest(r *http.Request) (*PageRequest, error) {
	pr := &PageRequest{r: r, partial: IsPartial(r)}

	switch {
	case IsUpload(r):
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		pr.upload = true
		pr.partial = true
		pr.form = r.Form
		pr.tid = r.FormValue("tid")
		pr.unqueued = r.FormValue("unqueued") != ""
		pr.files = r.MultipartForm.File

		widget := r.FormValue("widget_name")
		pr.queue = []Event{{
			Type:       UploadEventType,
			ID:         r.FormValue("id"),
			CID:        r.FormValue("cid"),
			WidgetName: widget,
		}}

	case pr.partial:
		var body queueBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		pr.tid = body.TID
		pr.queue = body.Queue
		pr.unqueued = body.Unqueued

	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
		}
		pr.form = r.Form
		pr.tid = r.Form.Get("tid")
		pr.unqueued = r.Form.Get("unqueued") != ""
	}

	return pr, nil
}

// HTTP returns the underlying request.
func (pr *PageRequest) HTTP() *http.Request {
	return pr.r
}

// IsPartial reports whether a patch stream is expected.
func (pr *PageRequest) IsPartial() bool {
	return pr.partial
}

// IsUpload reports whether the request is a multipart upload.
func (pr *PageRequest) IsUpload() bool {
	return pr.upload
}

// TID returns the transaction id sent by the client.
func (pr *PageRequest) TID() string {
	return pr.tid
}

// Queue returns the events in submission order.
func (pr *PageRequest) Queue() []Event {
	return pr.queue
}

// Unqueued reports whether the client asked to skip the commit.
func (pr *PageRequest) Unqueued() bool {
	return pr.unqueued
}

// Form returns form parameters of full page and upload requests.
func (pr *PageRequest) Form() url.Values {
	return pr.form
}

// Get returns one form parameter.
func (pr *PageRequest) Get(key string) string {
	return pr.form.Get(key)
}

// Uploads returns the files sent for widgetName. Browsers post multi-file
// inputs as "<name>[]", both spellings are accepted.
func (pr *PageRequest) Uploads(widgetName string) []*multipart.FileHeader {
	if pr.files == nil {
		return nil
	}
	if fh := pr.files[widgetName+"[]"]; len(fh) > 0 {
		return fh
	}
	return pr.files[widgetName]
}

// withTID returns a shallow copy carrying another tid and no events, used to
// drive sub-pages in the same request. Sub-pages behave like full page loads
// so a lost transaction is recreated instead of reloading the browser.
func (pr *PageRequest) withTID(tid string) *PageRequest {
	cp := *pr
	cp.tid = tid
	cp.queue = nil
	cp.partial = false
	cp.upload = false
	cp.unqueued = false
	return &cp
}
