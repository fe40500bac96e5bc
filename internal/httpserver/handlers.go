package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/cart"
	"finitefield.org/storefront-web/internal/catalog"
	"finitefield.org/storefront-web/internal/contact"
	"finitefield.org/storefront-web/internal/gallery"
	"finitefield.org/storefront-web/internal/i18n"
	custommw "finitefield.org/storefront-web/internal/middleware"
	"finitefield.org/storefront-web/internal/nav"
	"finitefield.org/storefront-web/internal/notify"
	"finitefield.org/storefront-web/internal/observability"
	"finitefield.org/storefront-web/internal/quickview"
	"finitefield.org/storefront-web/internal/requestctx"
	"finitefield.org/storefront-web/internal/seo"
	"finitefield.org/storefront-web/internal/session"
)

const (
	eventCartUpdated = "cart:updated"
	eventNotify      = "notify"
)

// pageData feeds the page layout and every fragment.
type pageData struct {
	Lang        string
	CSRFToken   string
	Nav         []nav.Link
	Collections []catalog.Product
	Gallery     gallery.Result
	Cart        cart.View
	QuickView   quickview.View
	Notices     []notify.Message
	Contact     contactView
	SEO         seo.Meta
}

type contactView struct {
	Form    contact.Form
	Pending bool
}

type handlers struct {
	store        *session.Store
	bundle       *i18n.Bundle
	views        *views
	buttons      []gallery.Button
	fallbackLang string
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) (*session.State, bool) {
	st, ok := custommw.SessionFromContext(r.Context())
	if !ok {
		observability.FromContext(r.Context()).Error("session missing from context")
		writeError(w, r, http.StatusInternalServerError, "session unavailable")
		return nil, false
	}
	return st, true
}

// data builds the view model from a snapshot taken under the session lock.
func (h *handlers) data(r *http.Request, snap session.Snapshot) pageData {
	return pageData{
		Lang:      requestctx.Locale(r.Context(), h.fallbackLang),
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
		Cart:      snap.Cart,
		QuickView: snap.QuickView,
		Notices:   snap.Notices,
		Contact:   contactView{Pending: snap.Contact.Pending},
	}
}

func (h *handlers) render(w http.ResponseWriter, r *http.Request, name string, data pageData, opts ...func(*templ.ComponentHandler)) {
	opts = append(opts, templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			observability.FromContext(r.Context()).Error("render failed", zap.String("template", name), zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "render failed")
		})
	}))
	templ.Handler(h.views.component(name, data), opts...).ServeHTTP(w, r)
}

// Page renders the full storefront.
func (h *handlers) Page(w http.ResponseWriter, r *http.Request) {
	st, ok := h.state(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	data := h.data(r, st.Snapshot())
	data.Nav = nav.Build(q.Get("section"))
	data.Collections = h.store.Catalog().Collections()
	data.Gallery = gallery.Filter(h.store.Catalog().Gallery(), h.buttons, q.Get("category"), q.Get("trigger"))
	data.SEO = seo.Landing(
		h.bundle.T(data.Lang, "brand.name"),
		h.bundle.T(data.Lang, "page.title"),
		h.bundle.T(data.Lang, "page.description"),
		absoluteURL(r),
		h.store.Catalog().Products(),
	)
	h.render(w, r, "page", data)
}

func absoluteURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path}
	return u.String()
}

// Health reports liveness.
func (h *handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	custommw.WriteError(w, r, code, msg)
}

// triggers collects HX-Trigger events for one response.
type triggers map[string]any

func (t triggers) cartUpdated(v cart.View) triggers {
	t[eventCartUpdated] = map[string]any{"badge": v.Badge, "total": v.Total}
	return t
}

func (t triggers) notify(msg notify.Message) triggers {
	t[eventNotify] = map[string]string{"id": msg.ID, "text": msg.Text, "tone": string(msg.Tone)}
	return t
}

func (t triggers) write(w http.ResponseWriter) {
	if len(t) == 0 {
		return
	}
	if raw, err := json.Marshal(t); err == nil {
		w.Header().Set("HX-Trigger", string(raw))
	}
}

func latest(messages []notify.Message) (notify.Message, bool) {
	if len(messages) == 0 {
		return notify.Message{}, false
	}
	return messages[len(messages)-1], true
}
