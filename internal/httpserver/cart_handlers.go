package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/cart"
	"finitefield.org/storefront-web/internal/observability"
	"finitefield.org/storefront-web/internal/session"
)

// CartPanel renders the cart sidebar fragment.
func (h *handlers) CartPanel(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, "cart_panel", h.data(r, st.Snapshot()))
}

// CartBadge renders the navbar badge fragment.
func (h *handlers) CartBadge(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, "cart_badge", h.data(r, st.Snapshot()))
}

// AddItem adds one unit of a product and opens the panel.
func (h *handlers) AddItem(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	price, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("price")), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "price must be an integer")
		return
	}
	if price > cart.MaxUnitPrice {
		writeError(w, r, http.StatusBadRequest, "price is out of range")
		return
	}

	snap := st.Update(func(st *session.State) {
		item := st.Cart.Add(name, price)
		observability.FromContext(r.Context()).Debug("cart item added",
			zap.Int64("item_id", item.ID),
			zap.Int("quantity", item.Quantity),
		)
	})
	h.respondCart(w, r, snap, true)
}

// UpdateQuantity applies a delta of +1 or -1 to one cart line.
func (h *handlers) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	delta, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("delta")))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "delta must be an integer")
		return
	}
	if delta != 1 && delta != -1 {
		writeError(w, r, http.StatusBadRequest, "delta must be 1 or -1")
		return
	}

	snap := st.Update(func(st *session.State) { st.Cart.UpdateQuantity(id, delta) })
	h.respondCart(w, r, snap, false)
}

// OpenPanel, ClosePanel and TogglePanel are explicit user panel actions; each
// cancels a pending auto-close.
func (h *handlers) OpenPanel(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, func(st *session.State) { st.Cart.OpenPanel() })
}

func (h *handlers) ClosePanel(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, func(st *session.State) { st.Cart.ClosePanel() })
}

func (h *handlers) TogglePanel(w http.ResponseWriter, r *http.Request) {
	h.panelAction(w, r, func(st *session.State) { st.Cart.TogglePanel() })
}

func (h *handlers) panelAction(w http.ResponseWriter, r *http.Request, fn func(*session.State)) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	snap := st.Update(fn)
	h.render(w, r, "cart_panel", h.data(r, snap))
}

func (h *handlers) respondCart(w http.ResponseWriter, r *http.Request, snap session.Snapshot, announce bool) {
	t := triggers{}.cartUpdated(snap.Cart)
	if announce {
		if msg, ok := latest(snap.Notices); ok {
			t.notify(msg)
		}
	}
	t.write(w)
	h.render(w, r, "cart_panel", h.data(r, snap))
}
