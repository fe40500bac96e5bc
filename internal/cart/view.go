package cart

// EmptyMessage is shown in place of rows when the cart has no lines.
const EmptyMessage = "Your cart is empty"

// Row is one rendered cart line with its quantity controls.
type Row struct {
	ID           int64
	Name         string
	Icon         string
	Price        string
	LineTotal    string
	Quantity     int
	CanIncrement bool
	CanDecrement bool
}

// View is the display projection of the cart.
type View struct {
	Empty        bool
	EmptyMessage string
	Rows         []Row
	Badge        int
	TotalAmount  int64
	Total        string
	PanelOpen    bool
	Version      uint64
}

// Render projects the current state without mutating it.
func (m *Manager) Render() View {
	v := View{
		Empty:       len(m.items) == 0,
		Badge:       m.BadgeCount(),
		TotalAmount: m.TotalPrice(),
		PanelOpen:   m.panelOpen,
		Version:     m.version,
	}
	v.Total = m.formatter.TotalLabel(v.TotalAmount)
	if v.Empty {
		v.EmptyMessage = EmptyMessage
		return v
	}
	v.Rows = make([]Row, 0, len(m.items))
	for _, it := range m.items {
		v.Rows = append(v.Rows, Row{
			ID:           it.ID,
			Name:         it.Name,
			Icon:         it.Icon,
			Price:        m.formatter.Rupees(it.UnitPrice),
			LineTotal:    m.formatter.Rupees(it.UnitPrice * int64(it.Quantity)),
			Quantity:     it.Quantity,
			CanIncrement: it.Quantity < MaxQuantity,
			CanDecrement: true,
		})
	}
	return v
}
