package middleware

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// NonceMiddleware stores a fresh CSP nonce in templ's context slot. Pages
// stamp it on their script tags, SecurityHeaders allows it in script-src.
func NonceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := randomToken(16)
		if err != nil {
			// Scripts are blocked without a nonce, the page still renders
			slog.Error("failed to generate csp nonce", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(templ.WithNonce(r.Context(), nonce)))
	})
}
