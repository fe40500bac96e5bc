package httpserver

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/gallery"
	"finitefield.org/storefront-web/internal/i18n"
	custommw "finitefield.org/storefront-web/internal/middleware"
	"finitefield.org/storefront-web/internal/observability"
	"finitefield.org/storefront-web/internal/session"
	"finitefield.org/storefront-web/web"
)

const (
	defaultReadTimeout    = 15 * time.Second
	defaultWriteTimeout   = 15 * time.Second
	defaultIdleTimeout    = 60 * time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultLocale         = "en"
)

// SupportedLocales lists the bundled translation files.
var SupportedLocales = []string{"en", "hi"}

// Config holds runtime options for the storefront HTTP server.
type Config struct {
	Address string
	Store   *session.Store
	Bundle  *i18n.Bundle
	Logger  *zap.Logger

	// Templates and Static default to the embedded web assets.
	Templates fs.FS
	Static    fs.FS
	DevMode   bool

	SessionCookieName string
	SessionHashKey    []byte
	SessionMaxAge     time.Duration
	CookieSecure      bool
	CSRFCookieName    string
	CSRFHeaderName    string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// New constructs the HTTP server with its middleware stack and routes.
func New(cfg Config) (*http.Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	templates := cfg.Templates
	if templates == nil {
		var err error
		if templates, err = web.Templates(); err != nil {
			return nil, fmt.Errorf("embed templates: %w", err)
		}
	}
	static := cfg.Static
	if static == nil {
		var err error
		if static, err = web.StaticFS(); err != nil {
			return nil, fmt.Errorf("embed static: %w", err)
		}
	}
	bundle := cfg.Bundle
	if bundle == nil {
		locales, err := web.Locales()
		if err != nil {
			return nil, fmt.Errorf("embed locales: %w", err)
		}
		if bundle, err = i18n.Load(locales, ".", defaultLocale, SupportedLocales); err != nil {
			return nil, err
		}
	}

	v, err := newViews(templates, bundle, cfg.Store.Formatter(), cfg.DevMode)
	if err != nil {
		return nil, err
	}
	h := &handlers{
		store:        cfg.Store,
		bundle:       bundle,
		views:        v,
		buttons:      gallery.DefaultButtons(),
		fallbackLang: bundle.Fallback(),
	}

	requestTimeout := durationOr(cfg.RequestTimeout, defaultRequestTimeout)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.TraceMiddleware())
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Compress(5))
	router.Use(chimw.Timeout(requestTimeout))

	router.Get("/healthz", h.Health)
	router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(static))))

	router.Group(func(r chi.Router) {
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Locale(bundle))
		r.Use(custommw.Session(custommw.SessionConfig{
			Store:      cfg.Store,
			CookieName: cfg.SessionCookieName,
			HashKey:    cfg.SessionHashKey,
			Secure:     cfg.CookieSecure,
			MaxAge:     cfg.SessionMaxAge,
		}))
		r.Use(custommw.CSRF(custommw.CSRFConfig{
			CookieName: cfg.CSRFCookieName,
			HeaderName: cfg.CSRFHeaderName,
			Secure:     cfg.CookieSecure,
		}))
		mountRoutes(r, h)
	})

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       durationOr(cfg.ReadTimeout, defaultReadTimeout),
		WriteTimeout:      durationOr(cfg.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:       durationOr(cfg.IdleTimeout, defaultIdleTimeout),
	}, nil
}

func mountRoutes(r chi.Router, h *handlers) {
	r.Get("/", h.Page)

	RegisterFragment(r, "/cart", h.CartPanel)
	RegisterFragment(r, "/cart/badge", h.CartBadge)
	r.Post("/cart/items", h.AddItem)
	r.Post("/cart/items/{id}/quantity", h.UpdateQuantity)
	r.Post("/cart/panel/open", h.OpenPanel)
	r.Post("/cart/panel/close", h.ClosePanel)
	r.Post("/cart/panel/toggle", h.TogglePanel)

	RegisterFragment(r, "/quickview/{name}", h.OpenQuickView)
	r.Post("/quickview/confirm", h.ConfirmQuickView)
	r.Post("/quickview/close", h.CloseQuickView)

	RegisterFragment(r, "/gallery", h.Gallery)

	RegisterFragment(r, "/contact", h.ContactForm)
	r.Post("/contact", h.SubmitContact)

	RegisterFragment(r, "/notifications", h.Notifications)
	r.Post("/notifications/{id}/dismiss", h.DismissNotification)

	r.Post("/ui/escape", h.Escape)
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
