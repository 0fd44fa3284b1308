package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/templui/pixaro/internal/ctxkeys"
)

// statusWriter records the status code and body size of a response.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status != 0 {
		return
	}
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// quietPath reports requests too frequent or too boring to log.
func quietPath(path string) bool {
	switch path {
	case "/favicon.ico", "/healthz", "/metrics":
		return true
	}
	return strings.HasPrefix(path, "/assets/") || strings.HasPrefix(path, "/uploads/")
}

// RequestLogging logs one line per request: info for success, warn for
// client errors, error for server errors. Runs after AuthMiddleware so the
// user id is known.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if quietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", sw.status),
			slog.Int("bytes", sw.bytes),
			slog.Duration("duration", time.Since(start)),
			slog.String("ip", getClientIP(r)),
		}
		if user := ctxkeys.User(r.Context()); user != nil {
			attrs = append(attrs, slog.String("user_id", user.ID))
		}

		level := slog.LevelInfo
		switch {
		case sw.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case sw.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		slog.LogAttrs(r.Context(), level, "http request", attrs...)
	})
}
