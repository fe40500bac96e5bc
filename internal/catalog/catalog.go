package catalog

import (
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// DefaultIcon is shown for products missing from the icon table.
const DefaultIcon = "👗"

var (
	// ErrDuplicateProduct indicates two catalog entries share a name.
	ErrDuplicateProduct = errors.New("catalog: duplicate product")
	// ErrInvalidProduct indicates an entry without a name or with a negative price.
	ErrInvalidProduct = errors.New("catalog: invalid product")
)

// Product is immutable reference data for a sellable item.
type Product struct {
	Name        string
	Price       int64
	Icon        string
	Category    string
	Collection  bool
	QuickView   bool
	Tagline     string
	Description string
	// DescriptionHTML is Description rendered from markdown and sanitized.
	DescriptionHTML template.HTML
}

// Catalog is a read-only product lookup keyed by exact product name.
type Catalog struct {
	products []Product
	byName   map[string]int
}

// New validates products and renders their descriptions. Order is preserved.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]Product, 0, len(products)),
		byName:   make(map[string]int, len(products)),
	}
	for _, p := range products {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" || p.Price < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProduct, p.Name)
		}
		if _, ok := c.byName[p.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProduct, p.Name)
		}
		if strings.TrimSpace(p.Icon) == "" {
			p.Icon = DefaultIcon
		}
		p.Category = strings.ToLower(strings.TrimSpace(p.Category))
		html, err := RenderDescription(p.Description)
		if err != nil {
			return nil, fmt.Errorf("catalog: render description for %q: %w", p.Name, err)
		}
		p.DescriptionHTML = html
		c.byName[p.Name] = len(c.products)
		c.products = append(c.products, p)
	}
	return c, nil
}

// Lookup returns the product with the exact name.
func (c *Catalog) Lookup(name string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byName[name]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Icon resolves the display glyph for name, falling back to DefaultIcon.
func (c *Catalog) Icon(name string) string {
	if p, ok := c.Lookup(name); ok {
		return p.Icon
	}
	return DefaultIcon
}

// QuickView returns the product when it is offered in the quick view modal.
func (c *Catalog) QuickView(name string) (Product, bool) {
	p, ok := c.Lookup(name)
	if !ok || !p.QuickView {
		return Product{}, false
	}
	return p, true
}

// Products returns every product in catalog order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Collections returns the featured collection entries.
func (c *Catalog) Collections() []Product {
	return c.filter(func(p Product) bool { return p.Collection })
}

// Gallery returns products shown in the filterable gallery.
func (c *Catalog) Gallery() []Product {
	return c.filter(func(p Product) bool { return p.Category != "" })
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	if c == nil {
		return nil
	}
	var out []Product
	for _, p := range c.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
