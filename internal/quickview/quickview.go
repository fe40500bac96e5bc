// Package quickview tracks the product shown in the quick-view modal of a
// session. Only one product is previewed at a time; opening another replaces it.
package quickview

import (
	"errors"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/cart"
	"finitefield.org/storefront-web/internal/catalog"
)

// ErrUnknownProduct indicates the name has no quick-view entry.
var ErrUnknownProduct = errors.New("quickview: unknown product")

// Finder resolves quick-view products by name.
type Finder interface {
	QuickView(name string) (catalog.Product, bool)
}

// Cart receives confirmed products.
type Cart interface {
	Add(productName string, price int64) cart.Item
}

// View is the modal projection.
type View struct {
	Open        bool
	Name        string
	Icon        string
	Tagline     string
	Price       int64
	Description template.HTML
}

// Modal is the quick-view state of one session. Not safe for concurrent use.
type Modal struct {
	finder  Finder
	cart    Cart
	logger  *zap.Logger
	current *catalog.Product
}

// New builds a closed modal. A nil logger is replaced by a no-op logger.
func New(finder Finder, target Cart, logger *zap.Logger) *Modal {
	if finder == nil {
		finder = catalog.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Modal{finder: finder, cart: target, logger: logger}
}

// Open shows name in the modal. An unknown name clears the previewed product,
// so a later Confirm adds nothing.
func (m *Modal) Open(name string) (catalog.Product, error) {
	p, ok := m.finder.QuickView(name)
	if !ok {
		m.current = nil
		return catalog.Product{}, fmt.Errorf("open %q: %w", name, ErrUnknownProduct)
	}
	m.current = &p
	return p, nil
}

// Confirm adds the previewed product to the cart and closes the modal.
// It reports false when nothing was open.
func (m *Modal) Confirm() (catalog.Product, bool) {
	if m.current == nil {
		return catalog.Product{}, false
	}
	p := *m.current
	m.current = nil
	if m.cart != nil {
		m.cart.Add(p.Name, p.Price)
	}
	m.logger.Debug("quick view confirmed", zap.String("product", p.Name))
	return p, true
}

// Close hides the modal without touching the cart.
func (m *Modal) Close() {
	m.current = nil
}

// IsOpen reports whether a product is being previewed.
func (m *Modal) IsOpen() bool { return m.current != nil }

// Current returns the previewed product.
func (m *Modal) Current() (catalog.Product, bool) {
	if m.current == nil {
		return catalog.Product{}, false
	}
	return *m.current, true
}

// View projects the modal for rendering.
func (m *Modal) View() View {
	if m.current == nil {
		return View{}
	}
	p := m.current
	return View{
		Open:        true,
		Name:        p.Name,
		Icon:        p.Icon,
		Tagline:     p.Tagline,
		Price:       p.Price,
		Description: p.DescriptionHTML,
	}
}
