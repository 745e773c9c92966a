package txui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// TestResult holds the response of a simulated page request.
//
// Provides convenience methods for asserting on the document, the patch
// stream and the transaction id the client would continue with.
type TestResult struct {
	Body       string
	StatusCode int
	Headers    http.Header
	// Statements are the lines of a partial response.
	Statements []string
	// Patches are the replace_component statements, in order.
	Patches []Patch
}

// TestFullPage simulates a full page load of pt. An empty tid starts a new
// transaction; use InitTID on the result to continue with it.
//
//	res, err := txui.TestFullPage(app, home, "")
//	tid := res.InitTID()
func TestFullPage(app *App, pt *PageType, tid string) (*TestResult, error) {
	target := pt.path
	if tid != "" {
		target += "?" + url.Values{"tid": {tid}}.Encode()
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return serveTest(app, pt, req), nil
}

// TestEvents simulates a partial request carrying events for tid.
//
//	res, err := txui.TestEvents(app, home, tid,
//	    txui.ComponentEvent("counter", "increment", nil))
//	if !res.HasPatch("counter") { ... }
func TestEvents(app *App, pt *PageType, tid string, events ...Event) (*TestResult, error) {
	for i := range events {
		if events[i].ID == nil {
			events[i].ID = i
		}
	}
	body, err := json.Marshal(queueBody{TID: tid, Queue: events})
	if err != nil {
		return nil, err
	}
	req := httptest.NewRequest(http.MethodPost, pt.path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return serveTest(app, pt, req), nil
}

func serveTest(app *App, pt *PageType, req *http.Request) *TestResult {
	rec := httptest.NewRecorder()
	app.ServePage(pt).ServeHTTP(rec, req)

	res := &TestResult{
		Body:       rec.Body.String(),
		StatusCode: rec.Code,
		Headers:    rec.Header(),
	}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "text/javascript") {
		res.Statements = splitStatements(res.Body)
		res.Patches = ParsePatches(res.Body)
	}
	return res
}

func splitStatements(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParsePatches extracts the replace_component statements of a partial
// response body.
func ParsePatches(body string) []Patch {
	var out []Patch
	for _, stmt := range splitStatements(body) {
		args, ok := parseCall(stmt, fnReplaceComponent)
		if !ok || len(args) != 2 {
			continue
		}
		var p Patch
		if json.Unmarshal(args[0], &p.CID) != nil || json.Unmarshal(args[1], &p) != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}

// parseCall splits a statement produced by Call back into its arguments.
func parseCall(stmt, fn string) ([]json.RawMessage, bool) {
	if !strings.HasPrefix(stmt, fn+"(") || !strings.HasSuffix(stmt, ");") {
		return nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(stmt, fn+"("), ");")
	var args []json.RawMessage
	if err := json.Unmarshal([]byte("["+inner+"]"), &args); err != nil {
		return nil, false
	}
	return args, true
}

// findCall returns the arguments of the first statement calling fn.
func (r *TestResult) findCall(fn string) ([]json.RawMessage, bool) {
	for _, line := range strings.Split(r.Body, "\n") {
		if args, ok := parseCall(strings.TrimSpace(line), fn); ok {
			return args, true
		}
	}
	return nil, false
}

// InitTID returns the tid announced by the page-init statement of a full
// page, or "".
func (r *TestResult) InitTID() string {
	args, ok := r.findCall(fnInitPage)
	if !ok || len(args) != 1 {
		return ""
	}
	var init pageInit
	if err := json.Unmarshal(args[0], &init); err != nil {
		return ""
	}
	return init.TID
}

// NewTID returns the tid announced by a new_tid statement, or "".
func (r *TestResult) NewTID() string {
	args, ok := r.findCall(fnNewTID)
	if !ok || len(args) != 1 {
		return ""
	}
	var tid string
	_ = json.Unmarshal(args[0], &tid)
	return tid
}

// ExtraContent returns the imports of a handle_dynamic_extra_content
// statement.
func (r *TestResult) ExtraContent() []string {
	args, ok := r.findCall(fnExtraContent)
	if !ok || len(args) != 1 {
		return nil
	}
	var tags []string
	_ = json.Unmarshal(args[0], &tags)
	return tags
}

// IsReload checks if the response only asks the client to reload.
func (r *TestResult) IsReload() bool {
	return strings.TrimSpace(r.Body) == ReloadDirective
}

// HasPatch checks if a patch was emitted for cid.
func (r *TestResult) HasPatch(cid string) bool {
	_, ok := r.Patch(cid)
	return ok
}

// Patch returns the patch emitted for cid.
func (r *TestResult) Patch(cid string) (Patch, bool) {
	for _, p := range r.Patches {
		if p.CID == cid {
			return p, true
		}
	}
	return Patch{}, false
}

// PatchedCIDs returns the cids of all patches, in order.
func (r *TestResult) PatchedCIDs() []string {
	out := make([]string, 0, len(r.Patches))
	for _, p := range r.Patches {
		out = append(out, p.CID)
	}
	return out
}

// BodyContains checks if the body contains a substring.
func (r *TestResult) BodyContains(substr string) bool {
	return strings.Contains(r.Body, substr)
}

// BodyContainsAll checks if the body contains all the given substrings.
func (r *TestResult) BodyContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.Body, s) {
			return false
		}
	}
	return true
}

// HasStatement checks if a statement calling fn was emitted.
func (r *TestResult) HasStatement(fn string) bool {
	_, ok := r.findCall(fn)
	return ok
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}
