package templating

import (
	"embed"
	"io/fs"
)

//go:embed assets/templates/* assets/static/*
var assets embed.FS

// StaticFiles returns the embedded static assets (base.js, base.css) that
// every generated site needs next to its pages.
func StaticFiles() fs.FS {
	sub, err := fs.Sub(assets, "assets/static")
	if err != nil {
		panic(err)
	}
	return sub
}

func embeddedTemplates() fs.FS {
	sub, err := fs.Sub(assets, "assets/templates")
	if err != nil {
		panic(err)
	}
	return sub
}
