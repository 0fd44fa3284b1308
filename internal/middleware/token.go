package middleware

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// randomToken returns n random bytes in URL-safe base64.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// jsonMessage writes the {"message": ...} body the frontend expects on errors.
func jsonMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
