// Package cart holds the session shopping cart: an ordered list of lines, the
// quantity rules applied on every change, and the projection used to render
// the sidebar, badge and total.
//
// A Manager is not safe for concurrent use. All calls, including scheduler
// callbacks, must be serialized by the owner (see session.State).
package cart

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/catalog"
	"finitefield.org/storefront-web/internal/format"
	"finitefield.org/storefront-web/internal/schedule"
)

const (
	// MaxQuantity caps a single line.
	MaxQuantity = 10
	// MaxUnitPrice caps the unit price of a line, in rupees.
	MaxUnitPrice int64 = 10_000_000
	// DefaultAutoClose is how long the panel stays open after an add.
	DefaultAutoClose = 2 * time.Second
)

// Item is one cart line.
type Item struct {
	ID        int64
	Name      string
	UnitPrice int64
	Quantity  int
	Icon      string
}

// IconResolver maps product names to display glyphs.
type IconResolver interface {
	Icon(name string) string
}

// Notifier receives user-facing messages.
type Notifier interface {
	Notify(text string)
}

// Deps wires the collaborators of a Manager. Zero values select defaults.
type Deps struct {
	Icons          IconResolver
	Notifier       Notifier
	Scheduler      schedule.Scheduler
	Formatter      format.Formatter
	AutoCloseDelay time.Duration
	Logger         *zap.Logger
	// OnRender is called with the fresh projection after every mutation.
	OnRender func(View)
}

// Manager owns the cart lines and the sidebar panel state.
type Manager struct {
	items   []Item
	nextID  int64
	version uint64

	icons     IconResolver
	notifier  Notifier
	sched     schedule.Scheduler
	formatter format.Formatter
	autoDelay time.Duration
	logger    *zap.Logger
	onRender  func(View)

	panelOpen bool
	autoClose schedule.Task
}

// New constructs an empty cart.
func New(deps Deps) *Manager {
	m := &Manager{
		icons:     deps.Icons,
		notifier:  deps.Notifier,
		sched:     deps.Scheduler,
		formatter: deps.Formatter,
		autoDelay: deps.AutoCloseDelay,
		logger:    deps.Logger,
		onRender:  deps.OnRender,
	}
	if m.icons == nil {
		m.icons = catalog.Default()
	}
	if m.sched == nil {
		m.sched = schedule.System()
	}
	if m.autoDelay <= 0 {
		m.autoDelay = DefaultAutoClose
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	return m
}

// Add puts one unit of productName in the cart. An existing line with the same
// name is incremented up to MaxQuantity; otherwise a new line is appended.
// The panel is opened and scheduled to close after the auto-close delay.
func (m *Manager) Add(productName string, price int64) Item {
	price = clampPrice(price)
	var line Item
	if i := m.indexByName(productName); i >= 0 {
		if m.items[i].Quantity < MaxQuantity {
			m.items[i].Quantity++
		}
		line = m.items[i]
	} else {
		m.nextID++
		line = Item{
			ID:        m.nextID,
			Name:      productName,
			UnitPrice: price,
			Quantity:  1,
			Icon:      m.icons.Icon(productName),
		}
		m.items = append(m.items, line)
	}
	m.logger.Debug("cart line added",
		zap.Int64("item_id", line.ID),
		zap.String("product", line.Name),
		zap.Int("quantity", line.Quantity),
	)

	m.revealPanel()
	m.rerender()
	if m.notifier != nil {
		m.notifier.Notify(fmt.Sprintf("%s added to cart!", productName))
	}
	return line
}

// UpdateQuantity applies delta to the line with itemID. Lines that drop to zero
// or below are removed; quantities above MaxQuantity are clamped. Unknown ids
// leave the cart unchanged. The views are re-rendered in every case.
func (m *Manager) UpdateQuantity(itemID int64, delta int) (Item, bool) {
	defer m.rerender()

	i := m.indexByID(itemID)
	if i < 0 {
		return Item{}, false
	}
	q := m.items[i].Quantity + clampDelta(delta)
	switch {
	case q <= 0:
		removed := m.items[i]
		m.items = append(m.items[:i], m.items[i+1:]...)
		removed.Quantity = 0
		return removed, true
	case q > MaxQuantity:
		q = MaxQuantity
	}
	m.items[i].Quantity = q
	return m.items[i], true
}

// Items returns a copy of the lines in display order.
func (m *Manager) Items() []Item {
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Len reports the number of lines.
func (m *Manager) Len() int { return len(m.items) }

// BadgeCount is the sum of all quantities.
func (m *Manager) BadgeCount() int {
	n := 0
	for _, it := range m.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice is the sum of unit price times quantity over all lines. It
// saturates at math.MaxInt64.
func (m *Manager) TotalPrice() int64 {
	var total int64
	for _, it := range m.items {
		line := it.UnitPrice * int64(it.Quantity)
		if total > math.MaxInt64-line {
			return math.MaxInt64
		}
		total += line
	}
	return total
}

// TotalLabel formats TotalPrice for the sidebar footer.
func (m *Manager) TotalLabel() string {
	return m.formatter.TotalLabel(m.TotalPrice())
}

// Version increases on every re-render.
func (m *Manager) Version() uint64 { return m.version }

// Reset empties the cart, closes the panel and cancels the pending auto-close.
// Line ids keep increasing across resets.
func (m *Manager) Reset() {
	m.items = nil
	m.cancelAutoClose()
	m.panelOpen = false
	m.rerender()
}

func (m *Manager) rerender() {
	m.version++
	if m.onRender != nil {
		m.onRender(m.Render())
	}
}

func (m *Manager) indexByName(name string) int {
	for i := range m.items {
		if m.items[i].Name == name {
			return i
		}
	}
	return -1
}

func (m *Manager) indexByID(id int64) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

// clampPrice bounds a unit price to [0, MaxUnitPrice].
func clampPrice(price int64) int64 {
	switch {
	case price < 0:
		return 0
	case price > MaxUnitPrice:
		return MaxUnitPrice
	}
	return price
}

// clampDelta bounds a quantity change to [-MaxQuantity, MaxQuantity]; no
// wider step can change the outcome.
func clampDelta(delta int) int {
	switch {
	case delta > MaxQuantity:
		return MaxQuantity
	case delta < -MaxQuantity:
		return -MaxQuantity
	}
	return delta
}
