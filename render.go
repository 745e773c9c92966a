package txui

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Layout wraps the rendered component tree into a document.
type Layout func(env PageEnv) templ.Component

// PageEnv is what a Layout receives for a full page render.
type PageEnv struct {
	Title string
	// Imports are ready-made <link> and <script> tags, stylesheets first.
	Imports []string
	// Body is the markup of the component tree.
	Body templ.Component
	// Script must run once the document is loaded. It starts with the
	// page-init statement.
	Script string
}

// DefaultLayout is the document used when a page type sets none.
func DefaultLayout(env PageEnv) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var sb strings.Builder
		sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
		sb.WriteString(html.EscapeString(env.Title))
		sb.WriteString("</title>\n")
		for _, tag := range env.Imports {
			sb.WriteString(tag)
			sb.WriteByte('\n')
		}
		sb.WriteString("</head>\n<body>\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
		if err := env.Body.Render(ctx, w); err != nil {
			return err
		}
		if err := MessageContainer().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n<script type=\"text/javascript\">\n"+env.Script+"</script>\n</body>\n</html>\n")
		return err
	})
}

type pageInit struct {
	TID     string `json:"tid"`
	PTID    string `json:"ptid,omitempty"`
	LogTime bool   `json:"log_time"`
}

func (p *Page) render(ctx context.Context) error {
	if p.req.IsPartial() {
		return p.renderPartial(ctx)
	}
	return p.renderFull(ctx)
}

// renderFull renders the roots depth-first into one document. Every import
// needed by the rendered components is emitted and recorded as delivered.
func (p *Page) renderFull(ctx context.Context) error {
	var body bytes.Buffer
	for _, cid := range p.registry.Roots() {
		w, err := p.registry.Get(cid)
		if err != nil {
			return err
		}
		if err := p.renderInto(ctx, &body, w); err != nil {
			return err
		}
	}

	rendered := p.registry.sortedByDepth(append([]string(nil), p.rendered...))

	assets := p.app.runtime.Merge(p.typ.assets).Merge(p.assetsOf(rendered))
	var tags []string
	for _, imp := range p.app.imports(assets) {
		p.tx.deliver(imp.url)
		tags = append(tags, imp.tag)
	}

	ptid := p.tx.ParentID()
	if p.tx.NewID() != "" {
		ptid = p.tx.ID()
	}

	var script strings.Builder
	script.WriteString(Call(fnInitPage, pageInit{
		TID:     p.tx.EffectiveID(),
		PTID:    ptid,
		LogTime: p.app.perfLog,
	}))
	script.WriteByte('\n')
	for _, js := range p.scripts(ctx, rendered) {
		script.WriteString(js)
		script.WriteByte('\n')
	}
	for _, stmt := range p.resp.statements {
		script.WriteString(stmt)
		script.WriteByte('\n')
	}

	layout := p.typ.layout
	if layout == nil {
		layout = DefaultLayout
	}
	env := PageEnv{
		Title:   p.typ.title,
		Imports: tags,
		Body:    templ.Raw(body.String()),
		Script:  script.String(),
	}

	p.resp.contentType = ContentTypeHTML
	return layout(env).Render(ctx, &p.resp.body)
}

// renderPartial emits one replace_component statement per component that
// requested a redraw and was not already rendered by an ancestor, parents
// first. Imports the client has not seen yet come first.
func (p *Page) renderPartial(ctx context.Context) error {
	var patches []string
	for _, w := range p.registry.live() {
		b := w.node()
		if !b.redraw || b.rendered {
			continue
		}

		start := len(p.rendered)
		var main bytes.Buffer
		if err := p.renderInto(ctx, &main, w); err != nil {
			return err
		}
		patch := Patch{
			CID:  b.cid,
			JS:   strings.Join(p.scripts(ctx, p.rendered[start:]), "\n"),
			Main: main.String(),
		}
		patches = append(patches, patch.statement())
	}

	var fresh []string
	for _, imp := range p.app.imports(p.assetsOf(p.rendered)) {
		if p.tx.isDelivered(imp.url) {
			continue
		}
		p.tx.deliver(imp.url)
		fresh = append(fresh, imp.tag)
	}

	p.resp.contentType = ContentTypeJavaScript
	if len(fresh) > 0 {
		p.resp.writeStatement(Call(fnExtraContent, fresh))
	}
	for _, stmt := range patches {
		p.resp.writeStatement(stmt)
	}
	for _, stmt := range p.resp.statements {
		p.resp.writeStatement(stmt)
	}
	return nil
}

// renderInto renders one component and marks its whole subtree rendered, so
// no descendant gets a patch of its own in the same pass.
func (p *Page) renderInto(ctx context.Context, w io.Writer, wd Widget) error {
	b := wd.node()
	b.rendered = true
	p.rendered = append(p.rendered, b.cid)

	if err := wd.Render(ctx).Render(ctx, w); err != nil {
		return fmt.Errorf("render %s: %w", b.cid, err)
	}

	for _, cid := range p.registry.subtree(b.cid) {
		if child, ok := p.tx.live[cid]; ok {
			child.node().rendered = true
		}
	}
	return nil
}

func (p *Page) scripts(ctx context.Context, cids []string) []string {
	var out []string
	for _, cid := range cids {
		w, ok := p.tx.live[cid]
		if !ok {
			continue
		}
		if s, ok := w.(Scripter); ok {
			if js := s.Script(ctx); js != "" {
				out = append(out, js)
			}
		}
	}
	return out
}

func (p *Page) assetsOf(cids []string) Assets {
	var out Assets
	for _, cid := range cids {
		w, ok := p.tx.live[cid]
		if !ok {
			continue
		}
		if ap, ok := w.(AssetProvider); ok {
			out = out.Merge(ap.Assets())
		}
	}
	return out
}
