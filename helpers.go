package txui

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response.
//
// Sets Content-Type to text/html and renders the component using the
// request's context. Use this for plain pages outside the component
// lifecycle:
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    txui.Render(w, r, myTemplate())
//	}
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", ContentTypeHTML)
	return component.Render(r.Context(), w)
}

// IsPartial returns true if r expects a patch stream instead of a document.
//
// The client runtime marks its requests with X-Requested-With, the way
// XMLHttpRequest based libraries always have.
func IsPartial(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// IsUpload returns true for multipart uploads.
func IsUpload(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}
