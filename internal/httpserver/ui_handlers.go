package httpserver

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/contact"
	"finitefield.org/storefront-web/internal/gallery"
	"finitefield.org/storefront-web/internal/observability"
	"finitefield.org/storefront-web/internal/quickview"
	"finitefield.org/storefront-web/internal/requestctx"
	"finitefield.org/storefront-web/internal/session"
)

// OpenQuickView shows the modal for a catalog product.
func (h *handlers) OpenQuickView(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeError(w, r, http.StatusBadRequest, "invalid product name")
		return
	}

	var openErr error
	snap := st.Update(func(st *session.State) { _, openErr = st.QuickView.Open(name) })
	if errors.Is(openErr, quickview.ErrUnknownProduct) {
		observability.FromContext(r.Context()).Info("quick view for unknown product", zap.String("product", name))
		writeError(w, r, http.StatusNotFound, "product not found")
		return
	}
	h.render(w, r, "quickview", h.data(r, snap))
}

// ConfirmQuickView adds the shown product to the cart and closes the modal.
func (h *handlers) ConfirmQuickView(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	var added bool
	snap := st.Update(func(st *session.State) { _, added = st.QuickView.Confirm() })

	if added {
		t := triggers{}.cartUpdated(snap.Cart)
		if msg, ok := latest(snap.Notices); ok {
			t.notify(msg)
		}
		t.write(w)
	}
	h.render(w, r, "quickview", h.data(r, snap))
}

// CloseQuickView hides the modal without touching the cart.
func (h *handlers) CloseQuickView(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	snap := st.Update(func(st *session.State) { st.QuickView.Close() })
	h.render(w, r, "quickview", h.data(r, snap))
}

// Escape closes the modal and the cart panel.
func (h *handlers) Escape(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	snap := st.Update(func(st *session.State) {
		st.QuickView.Close()
		st.Cart.ClosePanel()
	})
	triggers{}.cartUpdated(snap.Cart).write(w)
	h.render(w, r, "quickview", h.data(r, snap))
}

// Gallery renders the filtered gallery. Filtering keeps no session state.
func (h *handlers) Gallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pageData{Lang: requestctx.Locale(r.Context(), h.fallbackLang)}
	data.Gallery = gallery.Filter(h.store.Catalog().Gallery(), h.buttons, q.Get("category"), q.Get("trigger"))
	h.render(w, r, "gallery", data)
}

// ContactForm renders the contact form, polled while a submission is pending.
func (h *handlers) ContactForm(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, "contact_form", h.data(r, st.Snapshot()))
}

// SubmitContact validates the form and starts the simulated submission.
// Rejected input is echoed back with an error notice.
func (h *handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	form := contact.Form{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}

	var submitErr error
	snap := st.Update(func(st *session.State) { _, submitErr = st.Contact.Submit(form) })

	data := h.data(r, snap)
	if submitErr != nil {
		observability.FromContext(r.Context()).Info("contact submission rejected", zap.Error(submitErr))
		data.Contact.Form = form.Normalize()
		if msg, ok := latest(snap.Notices); ok {
			triggers{}.notify(msg).write(w)
		}
	}
	h.render(w, r, "contact_form", data)
}

// Notifications renders the active notices.
func (h *handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	h.render(w, r, "notifications", h.data(r, st.Snapshot()))
}

// DismissNotification removes one notice before it expires.
func (h *handlers) DismissNotification(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	snap := st.Update(func(st *session.State) { st.Notices.Dismiss(id) })
	h.render(w, r, "notifications", h.data(r, snap))
}
