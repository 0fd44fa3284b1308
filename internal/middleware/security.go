package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/templui/pixaro/internal/ctxkeys"
)

// SecurityHeaders sets CSP and the usual hardening headers.
// Must run after Config and NonceMiddleware.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", contentSecurityPolicy(r))
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		cfg := ctxkeys.Config(r.Context())
		if cfg != nil && cfg.IsProduction() {
			h.Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func contentSecurityPolicy(r *http.Request) string {
	scriptSrc := "'self'"
	if nonce := templ.GetNonce(r.Context()); nonce != "" {
		scriptSrc += " 'nonce-" + nonce + "'"
	}

	imgSrc := "'self' data: blob:"
	if cfg := ctxkeys.Config(r.Context()); cfg != nil && cfg.StorageDriver == "s3" {
		if origin := originOf(cfg.S3Endpoint); origin != "" {
			imgSrc += " " + origin
		} else if cfg.S3Endpoint == "" {
			// presigned AWS URLs
			imgSrc += " https://*.amazonaws.com"
		}
	}

	directives := []string{
		"default-src 'self'",
		"script-src " + scriptSrc,
		"style-src 'self' 'unsafe-inline'",
		"img-src " + imgSrc,
		"font-src 'self'",
		"connect-src 'self'",
		"form-action 'self'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"object-src 'none'",
	}
	return strings.Join(directives, "; ")
}

func originOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
