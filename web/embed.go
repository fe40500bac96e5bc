// Package web embeds the storefront templates, static assets and locale files.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl static locales/*.json
var content embed.FS

// Templates returns the html/template sources rooted at the templates directory.
func Templates() (fs.FS, error) {
	return fs.Sub(content, "templates")
}

// StaticFS returns the assets served under /assets/.
func StaticFS() (fs.FS, error) {
	return fs.Sub(content, "static")
}

// Locales returns the translation files; callers read "<lang>.json" entries.
func Locales() (fs.FS, error) {
	return fs.Sub(content, "locales")
}
