package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/pixaro/internal/service"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode json response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps service errors to a status and a user-facing message.
// Anything unexpected is logged and answered with fallback.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, capitalize(verr.Error()))
	case errors.Is(err, service.ErrFileRequired):
		writeMessage(w, http.StatusBadRequest, "Please select a file")
	case errors.Is(err, service.ErrCommentRequired):
		writeMessage(w, http.StatusBadRequest, "Comment text is required")
	case errors.Is(err, service.ErrCannotFollowSelf):
		writeMessage(w, http.StatusBadRequest, "You cannot follow yourself")
	case errors.Is(err, service.ErrNotPostOwner):
		writeMessage(w, http.StatusForbidden, "You can only delete your own posts")
	case errors.Is(err, service.ErrNotCommentOwner):
		writeMessage(w, http.StatusForbidden, "You can only delete your own comments")
	case errors.Is(err, service.ErrPostNotFound):
		writeMessage(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, service.ErrCommentNotFound):
		writeMessage(w, http.StatusNotFound, "Comment not found")
	case errors.Is(err, service.ErrTargetUserNotFound):
		writeMessage(w, http.StatusNotFound, "Target user not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, "User not found")
	default:
		slog.Error(fallback, "error", err, "method", r.Method, "path", r.URL.Path)
		writeMessage(w, http.StatusInternalServerError, fallback)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
