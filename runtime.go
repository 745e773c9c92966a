package txui

import (
	"embed"
	"io/fs"
)

//go:embed static
var static embed.FS

// RuntimeFS returns the client runtime (txui.js) referenced by the default
// runtime assets. Serve it under the app's static prefix.
func RuntimeFS() fs.FS {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
