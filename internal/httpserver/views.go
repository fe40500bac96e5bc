package httpserver

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"sync"

	"github.com/a-h/templ"

	"finitefield.org/storefront-web/internal/format"
	"finitefield.org/storefront-web/internal/i18n"
)

// views renders the html/template set as templ components. In dev mode the
// templates are reparsed on every render.
type views struct {
	fsys    fs.FS
	funcs   template.FuncMap
	devMode bool

	once   sync.Once
	cached *template.Template
	err    error
}

type addFormData struct {
	Lang  string
	Name  string
	Price int64
}

func newViews(fsys fs.FS, bundle *i18n.Bundle, formatter format.Formatter, devMode bool) (*views, error) {
	v := &views{
		fsys:    fsys,
		devMode: devMode,
		funcs: template.FuncMap{
			"t": func(lang, key string) string {
				if bundle == nil {
					return key
				}
				return bundle.T(lang, key)
			},
			"rupees":     formatter.Rupees,
			"pathEscape": url.PathEscape,
			"addForm": func(lang, name string, price int64) addFormData {
				return addFormData{Lang: lang, Name: name, Price: price}
			},
		},
	}
	// fail fast on syntax errors even in dev mode
	if _, err := v.parse(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *views) parse() (*template.Template, error) {
	t, err := template.New("_root").Funcs(v.funcs).ParseFS(v.fsys, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

func (v *views) lookup() (*template.Template, error) {
	if v.devMode {
		return v.parse()
	}
	v.once.Do(func() { v.cached, v.err = v.parse() })
	return v.cached, v.err
}

// component wraps one named template as a templ component.
func (v *views) component(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, err := v.lookup()
		if err != nil {
			return err
		}
		if err := t.ExecuteTemplate(w, name, data); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		return nil
	})
}
