package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/templui/pixaro/internal/ctxkeys"
	"github.com/templui/pixaro/internal/service"
	"github.com/templui/pixaro/internal/ui"
	"github.com/templui/pixaro/internal/ui/pages"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// FeedPage shows every post, newest first. ?page=N selects the page.
func (h *PostHandler) FeedPage(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	feed, err := h.postService.Page(r.Context(), page)
	if err != nil {
		slog.Error("failed to load feed", "error", err, "page", page)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Error(pages.ErrorView{
			Status:  http.StatusInternalServerError,
			Heading: "Something went wrong",
			Message: "Error loading feed",
		}))
		return
	}

	ui.Render(w, r, pages.Feed(pages.FeedView{
		Posts:   feed.Posts,
		Page:    feed.Page,
		HasPrev: feed.HasPrev,
		HasNext: feed.HasNext,
	}))
}

func (h *PostHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	header, ok := formFile(w, r, "file", "Please select a file")
	if !ok {
		return
	}

	_, err := h.postService.Create(r.Context(), user.ID, r.FormValue("filecaption"), header)
	if err != nil {
		writeError(w, r, err, "Error uploading post")
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.postService.Delete(r.Context(), user.ID, r.PathValue("postId"))
	if err != nil {
		writeError(w, r, err, "Error deleting post")
		return
	}

	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

type likeResponse struct {
	Message   string `json:"message"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
}

func (h *PostHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	result, err := h.postService.ToggleLike(user.ID, r.PathValue("postId"))
	if err != nil {
		writeError(w, r, err, "Error processing like")
		return
	}

	message := "Post unliked successfully"
	if result.Liked {
		message = "Post liked successfully"
	}
	writeJSON(w, http.StatusOK, likeResponse{
		Message:   message,
		Liked:     result.Liked,
		LikeCount: result.LikeCount,
	})
}

// formFile returns the uploaded file header for field. A missing file
// answers 400 with missingMessage, an oversized body 413.
func formFile(w http.ResponseWriter, r *http.Request, field, missingMessage string) (*multipart.FileHeader, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File is too large")
			return nil, false
		}
		writeMessage(w, http.StatusBadRequest, missingMessage)
		return nil, false
	}
	// ImageService reopens the header itself
	_ = file.Close()
	return header, true
}
