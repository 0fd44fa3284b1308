package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/templui/pixaro/internal/ctxkeys"
	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type addCommentResponse struct {
	Message      string         `json:"message"`
	Comment      *model.Comment `json:"comment"`
	CommentCount int            `json:"commentCount"`
}

// AddComment accepts commentText as JSON or as a form field.
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var text string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			CommentText string `json:"commentText"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Comment text is required")
			return
		}
		text = body.CommentText
	} else {
		text = r.FormValue("commentText")
	}

	comment, count, err := h.commentService.Add(user.ID, r.PathValue("postId"), text)
	if err != nil {
		writeError(w, r, err, "Error adding comment")
		return
	}

	writeJSON(w, http.StatusOK, addCommentResponse{
		Message:      "Comment added successfully",
		Comment:      comment,
		CommentCount: count,
	})
}

type commentsResponse struct {
	Comments     []*model.Comment `json:"comments"`
	CommentCount int              `json:"commentCount"`
}

func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.commentService.List(r.PathValue("postId"))
	if err != nil {
		writeError(w, r, err, "Error fetching comments")
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	writeJSON(w, http.StatusOK, commentsResponse{
		Comments:     comments,
		CommentCount: len(comments),
	})
}

type deleteCommentResponse struct {
	Message      string `json:"message"`
	CommentCount int    `json:"commentCount"`
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	count, err := h.commentService.Delete(user.ID, r.PathValue("commentId"))
	if err != nil {
		writeError(w, r, err, "Error deleting comment")
		return
	}

	writeJSON(w, http.StatusOK, deleteCommentResponse{
		Message:      "Comment deleted successfully",
		CommentCount: count,
	})
}
