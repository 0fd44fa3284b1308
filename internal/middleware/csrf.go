package middleware

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/templui/pixaro/internal/ctxkeys"
)

const (
	csrfCookieName  = "csrf_token"
	csrfFormField   = "csrf_token"
	csrfHeader      = "X-CSRF-Token"
	csrfTokenBytes  = 32
	csrfTokenLength = (csrfTokenBytes*8 + 5) / 6 // unpadded base64
	csrfCookieAge   = 7 * 24 * 60 * 60

	// same as net/http's default for ParseMultipartForm
	multipartMemory = 32 << 20
)

// CSRFProtection implements the double submit pattern. Every request gets
// a token cookie (exposed to pages via ctx), and unsafe methods must echo
// it back in the X-CSRF-Token header (app.js) or the csrf_token form field.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := ensureCSRFCookie(w, r)
		if err != nil {
			slog.Error("failed to issue csrf token", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		r = r.WithContext(ctxkeys.WithCSRFToken(r.Context(), token))

		if safeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		submitted, err := submittedCSRFToken(r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			slog.Warn("request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
			jsonMessage(w, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}

		if !tokensMatch(token, submitted) {
			slog.Warn("csrf validation failed", "method", r.Method, "path", r.URL.Path, "ip", getClientIP(r))
			if WantsJSON(r) {
				jsonMessage(w, http.StatusForbidden, "Invalid CSRF token")
				return
			}
			http.Error(w, "Invalid CSRF token", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// ensureCSRFCookie returns the token from a well-formed cookie, or sets a new one.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request) (string, error) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && len(cookie.Value) == csrfTokenLength {
		return cookie.Value, nil
	}

	token, err := randomToken(csrfTokenBytes)
	if err != nil {
		return "", err
	}

	cfg := ctxkeys.Config(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   csrfCookieAge,
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// submittedCSRFToken reads the header first, then the form. The body is
// parsed here, so a body over the LimitBody cap surfaces as a
// *http.MaxBytesError.
func submittedCSRFToken(r *http.Request) (string, error) {
	if token := r.Header.Get(csrfHeader); token != "" {
		return token, nil
	}

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	return r.PostForm.Get(csrfFormField), err
}

func tokensMatch(expected, actual string) bool {
	return expected != "" && actual != "" &&
		subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
