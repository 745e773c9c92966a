package txui

import (
	"html"
	"strings"
)

// Assets lists the static files a component or page needs. Paths are
// relative to the app's static prefix unless they are absolute URLs.
type Assets struct {
	JS  []string
	CSS []string
}

// Merge returns a plus the entries of b not already present.
func (a Assets) Merge(b Assets) Assets {
	return Assets{
		JS:  appendNew(a.JS, b.JS...),
		CSS: appendNew(a.CSS, b.CSS...),
	}
}

// IsZero reports whether no file is listed.
func (a Assets) IsZero() bool {
	return len(a.JS) == 0 && len(a.CSS) == 0
}

func appendNew(dst []string, src ...string) []string {
	out := append([]string(nil), dst...)
	for _, s := range src {
		dup := false
		for _, d := range out {
			if d == s {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}

// assetURL resolves path against the static prefix.
func (a *App) assetURL(path string) string {
	if a.assetURLFunc != nil {
		return a.assetURLFunc(path)
	}
	if strings.HasPrefix(path, "/") || strings.Contains(path, "://") {
		return path
	}
	return strings.TrimSuffix(a.staticPrefix, "/") + "/" + path
}

// imports turns assets into import tags, stylesheets first. Each tag is
// keyed by its URL for the delivered set.
func (a *App) imports(assets Assets) []assetImport {
	out := make([]assetImport, 0, len(assets.CSS)+len(assets.JS))
	for _, p := range assets.CSS {
		u := a.assetURL(p)
		out = append(out, assetImport{url: u, tag: `<link rel="stylesheet" type="text/css" href="` + html.EscapeString(u) + `">`})
	}
	for _, p := range assets.JS {
		u := a.assetURL(p)
		out = append(out, assetImport{url: u, tag: `<script type="text/javascript" src="` + html.EscapeString(u) + `"></script>`})
	}
	return out
}

type assetImport struct {
	url string
	tag string
}
