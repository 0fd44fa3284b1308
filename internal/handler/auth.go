package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/pixaro/internal/config"
	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/service"
	"github.com/templui/pixaro/internal/ui"
	"github.com/templui/pixaro/internal/ui/pages"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const oauthStateCookie = "oauth_state"

const oauthFailed = "OAuth authentication failed. Please try again."

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type AuthHandler struct {
	authService       *service.AuthService
	isProduction      bool
	googleOAuthConfig *oauth2.Config
	githubOAuthConfig *oauth2.Config
	googleUserInfoURL string
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		isProduction: cfg.IsProduction(),
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		githubOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		googleUserInfoURL: googleUserInfoURL,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Login(pages.LoginForm{}))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	form := pages.RegisterForm{
		Username: r.FormValue("username"),
		Fullname: r.FormValue("fullname"),
		Email:    r.FormValue("email"),
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: form.Username,
		Fullname: form.Fullname,
		Email:    form.Email,
		Password: r.FormValue("password"),
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			form.Errors = map[string]string{verr.Field: capitalize(verr.Error())}
			ui.RenderStatus(w, r, http.StatusBadRequest, pages.Register(form))
			return
		}
		slog.Error("registration failed", "error", err)
		form.Errors = map[string]string{"form": "An error occurred. Please try again."}
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Register(form))
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")

	user, err := h.authService.Login(username, r.FormValue("password"))
	if err != nil {
		form := pages.LoginForm{Username: username}
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			form.Error = "Invalid username or password"
		case errors.Is(err, service.ErrPasswordlessAccount):
			form.Error = "This account signs in with Google or GitHub"
		default:
			slog.Error("login failed", "error", err)
			form.Error = "An error occurred. Please try again."
		}
		slog.Warn("login rejected", "username", username, "reason", err)
		ui.RenderStatus(w, r, http.StatusUnauthorized, pages.Login(form))
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	slog.Info("user logged in", "user_id", user.ID)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(service.SessionCookieName)
	if err == nil && cookie.Value != "" {
		err = h.authService.EndSession(cookie.Value)
		if err != nil {
			slog.Error("failed to end session", "error", err)
		}
	}
	h.authService.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// startSession writes the session cookie. On failure it renders the login
// page and returns false.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	token, expires, err := h.authService.StartSession(user)
	if err != nil {
		slog.Error("failed to start session", "error", err, "user_id", user.ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Login(pages.LoginForm{Error: "An error occurred. Please try again."}))
		return false
	}
	h.authService.SetSessionCookie(w, token, expires)
	return true
}

// GoogleAuth redirects user to Google OAuth consent screen
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.googleOAuthConfig)
}

// GitHubAuth redirects user to GitHub OAuth consent screen
func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, h.githubOAuthConfig)
}

func (h *AuthHandler) redirectToProvider(w http.ResponseWriter, r *http.Request, cfg *oauth2.Config) {
	state := generateOAuthState()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles the OAuth callback from Google
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	client, ok := h.exchange(w, r, h.googleOAuthConfig, "google")
	if !ok {
		return
	}

	var info struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
	}
	err := getJSON(r.Context(), client, h.googleUserInfoURL, &info)
	if err != nil {
		slog.Error("failed to get google user info", "error", err)
		h.oauthError(w, r, oauthFailed)
		return
	}

	// Existing accounts are matched by email
	if !info.VerifiedEmail {
		slog.Warn("google oauth: email not verified")
		h.oauthError(w, r, "Your Google email address is not verified.")
		return
	}

	h.finishOAuth(w, r, info.Email, info.Name, "google")
}

// GitHubCallback handles the OAuth callback from GitHub
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	client, ok := h.exchange(w, r, h.githubOAuthConfig, "github")
	if !ok {
		return
	}

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Login string `json:"login"`
	}
	err := getJSON(r.Context(), client, "https://api.github.com/user", &info)
	if err != nil {
		slog.Error("failed to get github user info", "error", err)
		h.oauthError(w, r, oauthFailed)
		return
	}

	// Private emails are only listed on /user/emails
	if info.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		err = getJSON(r.Context(), client, "https://api.github.com/user/emails", &emails)
		if err != nil {
			slog.Error("failed to get github user emails", "error", err)
			h.oauthError(w, r, oauthFailed)
			return
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				info.Email = e.Email
				break
			}
		}
	}

	if info.Email == "" {
		slog.Warn("github oauth: no email found")
		h.oauthError(w, r, "Could not retrieve email from GitHub. Please make sure your email is verified.")
		return
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}
	h.finishOAuth(w, r, info.Email, name, "github")
}

// exchange validates the state cookie and trades the code for an HTTP client.
func (h *AuthHandler) exchange(w http.ResponseWriter, r *http.Request, cfg *oauth2.Config, provider string) (*http.Client, bool) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("oauth state validation failed", "provider", provider, "error", err)
		h.oauthError(w, r, oauthFailed)
		return nil, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		h.oauthError(w, r, oauthFailed)
		return nil, false
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", provider, "error", err)
		h.oauthError(w, r, oauthFailed)
		return nil, false
	}

	return cfg.Client(r.Context(), token), true
}

func (h *AuthHandler) finishOAuth(w http.ResponseWriter, r *http.Request, email, name, provider string) {
	user, err := h.authService.AuthenticateOAuth(r.Context(), email, name, provider)
	if err != nil {
		slog.Error("oauth authentication failed", "error", err, "provider", provider)
		h.oauthError(w, r, "Authentication failed. Please try again.")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}

	slog.Info("user logged in with oauth", "user_id", user.ID, "provider", provider)
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *AuthHandler) oauthError(w http.ResponseWriter, r *http.Request, message string) {
	ui.RenderStatus(w, r, http.StatusBadRequest, pages.Login(pages.LoginForm{Error: message}))
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
