package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileCatalog struct {
	Products []fileProduct `yaml:"products"`
}

type fileProduct struct {
	Name        string `yaml:"name"`
	Price       int64  `yaml:"price"`
	Icon        string `yaml:"icon"`
	Category    string `yaml:"category"`
	Collection  bool   `yaml:"collection"`
	QuickView   bool   `yaml:"quick_view"`
	Tagline     string `yaml:"tagline"`
	Description string `yaml:"description"`
}

// Load reads a YAML catalog file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Decode parses a YAML catalog document.
func Decode(r io.Reader) (*Catalog, error) {
	var doc fileCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidProduct)
		}
		return nil, err
	}
	products := make([]Product, 0, len(doc.Products))
	for _, fp := range doc.Products {
		products = append(products, Product{
			Name:        fp.Name,
			Price:       fp.Price,
			Icon:        fp.Icon,
			Category:    fp.Category,
			Collection:  fp.Collection,
			QuickView:   fp.QuickView,
			Tagline:     fp.Tagline,
			Description: fp.Description,
		})
	}
	return New(products)
}
