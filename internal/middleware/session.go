package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/observability"
	"finitefield.org/storefront-web/internal/session"
)

const defaultSessionCookie = "storefront_session"

// SessionConfig controls how the visitor's session id travels in a cookie.
type SessionConfig struct {
	Store      *session.Store
	CookieName string
	HashKey    []byte
	BlockKey   []byte
	Secure     bool
	MaxAge     time.Duration
}

// Session resolves the visitor's state from a signed cookie, creating a fresh
// session when the cookie is missing, tampered or names an evicted session.
func Session(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Store == nil {
		panic("session store is required")
	}
	name := firstNonEmpty(cfg.CookieName, defaultSessionCookie)
	hashKey := cfg.HashKey
	if len(hashKey) == 0 {
		// process-local key; cookies do not survive a restart
		hashKey = securecookie.GenerateRandomKey(32)
	}
	codec := securecookie.New(hashKey, cfg.BlockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	if cfg.MaxAge > 0 {
		codec.MaxAge(int(cfg.MaxAge.Seconds()))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := observability.FromContext(r.Context())

			var id string
			if c, err := r.Cookie(name); err == nil && c.Value != "" {
				if err := codec.Decode(name, c.Value, &id); err != nil {
					logger.Info("session cookie rejected", zap.Error(err))
					id = ""
				}
			}

			st, created := cfg.Store.GetOrCreate(id)
			if created {
				encoded, err := codec.Encode(name, st.ID)
				if err != nil {
					logger.Error("encode session cookie", zap.Error(err))
					WriteError(w, r, http.StatusInternalServerError, "session error")
					return
				}
				cookie := &http.Cookie{
					Name:     name,
					Value:    encoded,
					Path:     "/",
					HttpOnly: true,
					Secure:   cfg.Secure || r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				}
				if cfg.MaxAge > 0 {
					cookie.MaxAge = int(cfg.MaxAge.Seconds())
				}
				http.SetCookie(w, cookie)
			}

			logger = logger.With(zap.String("session", observability.SanitizeSessionID(st.ID)))
			ctx := observability.WithLogger(r.Context(), logger)
			ctx = context.WithValue(ctx, sessionContextKey, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext retrieves the state attached to this request.
func SessionFromContext(ctx context.Context) (*session.State, bool) {
	st, ok := ctx.Value(sessionContextKey).(*session.State)
	return st, ok && st != nil
}
