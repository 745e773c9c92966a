package txui

// Navigation helpers. Each queues a client statement; the browser leaves the
// page once the response has been applied.

// Reload reloads the whole page. Redrawing components is usually enough.
func (p *Page) Reload() {
	p.AddJS(Call(fnReloadPage))
}

// Jump navigates to url. The transactions of both pages are unrelated; use
// GoNext to chain them.
func (p *Page) Jump(url string) {
	p.AddJS(Call(fnJump, url))
}

// JumpExtern opens an external url in target ("_blank" when empty).
func (p *Page) JumpExtern(url, target string) {
	if target == "" {
		target = "_blank"
	}
	p.AddJS(Call(fnJumpExtern, url, target))
}

// GoNext navigates to url and makes the current transaction the parent of
// the next page's one. The client sends it as the ptid parameter; the next
// page reaches it through Page.ParentTransaction.
func (p *Page) GoNext(url string) {
	p.AddJS(Call(fnGoNext, url))
}
