package middleware

import (
	"net/http"

	"github.com/templui/pixaro/internal/ctxkeys"
)

// WithURLPath adds the current URL's path to the context for nav highlighting
func WithURLPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxkeys.WithURLPath(r.Context(), r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
