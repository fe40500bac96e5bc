package middleware

import (
	"net/http"
	"strings"
	"time"

	"finitefield.org/storefront-web/internal/i18n"
	"finitefield.org/storefront-web/internal/requestctx"
)

const localeCookie = "storefront_lang"

// Locale negotiates the page language: ?lang= wins and is remembered in a
// cookie, then the cookie, then Accept-Language.
func Locale(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Accept-Language")
			if bundle == nil {
				next.ServeHTTP(w, r)
				return
			}

			lang := ""
			if q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("lang"))); q != "" && bundle.IsSupported(q) {
				lang = q
				http.SetCookie(w, &http.Cookie{
					Name:     localeCookie,
					Value:    q,
					Path:     "/",
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
				})
			}
			if lang == "" {
				if c, err := r.Cookie(localeCookie); err == nil && bundle.IsSupported(c.Value) {
					lang = strings.ToLower(c.Value)
				}
			}
			if lang == "" {
				lang = bundle.Resolve(r.Header.Get("Accept-Language"))
			}

			ctx := requestctx.WithLocale(r.Context(), lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
