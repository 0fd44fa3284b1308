package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"

	"github.com/templui/pixaro/internal/ctxkeys"
	"github.com/templui/pixaro/internal/service"
	"github.com/templui/pixaro/internal/ui"
	"github.com/templui/pixaro/internal/ui/pages"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type followResponse struct {
	Message        string `json:"message"`
	IsFollowing    bool   `json:"isFollowing"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

func (h *UserHandler) FollowUser(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	result, err := h.userService.ToggleFollow(r.Context(), user.ID, r.PathValue("userId"))
	if err != nil {
		writeError(w, r, err, "Error processing follow request")
		return
	}

	message := "User unfollowed successfully"
	if result.IsFollowing {
		message = "User followed successfully"
	}
	writeJSON(w, http.StatusOK, followResponse{
		Message:        message,
		IsFollowing:    result.IsFollowing,
		FollowersCount: result.FollowersCount,
		FollowingCount: result.FollowingCount,
	})
}

// UserPage shows another user's profile. Visiting your own id renders it as your profile.
func (h *UserHandler) UserPage(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, r.PathValue("userId"))
}

func (h *UserHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, ctxkeys.User(r.Context()).ID)
}

func (h *UserHandler) renderProfile(w http.ResponseWriter, r *http.Request, userID string) {
	current := ctxkeys.User(r.Context())

	user, posts, err := h.userService.Profile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			ui.RenderStatus(w, r, http.StatusNotFound, pages.Error(pages.ErrorView{
				Status:  http.StatusNotFound,
				Heading: "User not found",
				Message: "This account does not exist.",
			}))
			return
		}
		slog.Error("failed to load profile", "error", err, "user_id", userID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Error(pages.ErrorView{
			Status:  http.StatusInternalServerError,
			Heading: "Something went wrong",
			Message: "Error loading user profile",
		}))
		return
	}

	ui.Render(w, r, pages.Profile(pages.ProfileView{
		User:         user,
		Posts:        posts,
		IsOwnProfile: user.ID == current.ID,
		IsFollowing:  slices.Contains(user.Followers, current.ID),
	}))
}

func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	header, ok := formFile(w, r, "profilePicture", "Please select a profile picture")
	if !ok {
		return
	}

	_, err := h.userService.UpdateProfilePicture(r.Context(), user.ID, header)
	if err != nil {
		writeError(w, r, err, "Error uploading profile picture")
		return
	}

	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
