package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"finitefield.org/storefront-web/internal/format"
	"finitefield.org/storefront-web/internal/httpserver"
	"finitefield.org/storefront-web/internal/schedule"
	"finitefield.org/storefront-web/internal/session"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithStore overrides the session store.
func WithStore(store *session.Store) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Store = store
	}
}

// WithScheduler builds the session store on sched, typically a *schedule.Fake.
func WithScheduler(sched schedule.Scheduler) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Store = session.NewStore(session.Options{
			Formatter: format.New("en"),
			Scheduler: sched,
		})
	}
}

// NewServer constructs an httptest server running the storefront HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:        ":0",
		SessionHashKey: []byte("test-session-signing-key-0123456789"),
		SessionMaxAge:  time.Hour,
		CSRFCookieName: "csrf_token",
		CSRFHeaderName: "X-CSRF-Token",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Store == nil {
		cfg.Store = session.NewStore(session.Options{Formatter: format.New("en")})
	}
	t.Cleanup(cfg.Store.Close)

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
