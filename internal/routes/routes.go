package routes

import (
	"net/http"
	"strings"

	"github.com/templui/pixaro/assets"
	"github.com/templui/pixaro/internal/app"
	"github.com/templui/pixaro/internal/handler"
	"github.com/templui/pixaro/internal/middleware"
	"github.com/templui/pixaro/internal/storage"
)

// multipart overhead allowed on top of MAX_UPLOAD_SIZE
const formOverhead = 1 << 20

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler()
	seo := handler.NewSEOHandler(app.PageService, app.Cfg.AppURL)
	pages := handler.NewPageHandler(app.PageService)
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	posts := handler.NewPostHandler(app.PostService)
	comments := handler.NewCommentHandler(app.CommentService)
	users := handler.NewUserHandler(app.UserService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", noDirListing(http.FileServer(http.FS(assets.AssetsFS)))))

	// Uploaded images (S3 serves its own URLs)
	if local, ok := app.Storage.(*storage.LocalStorage); ok {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", noDirListing(http.FileServer(http.Dir(local.Root())))))
	}

	// Operations
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.Handle("GET /metrics", app.Metrics.Handler())

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// Content
	mux.HandleFunc("GET /pages/{page}", pages.ShowPage)

	// ============================================================================
	// AUTH (rate limited)
	// ============================================================================

	rateLimiter := middleware.RateLimitAuth(app.Cfg.RateLimitAuth)

	mux.HandleFunc("GET /{$}", middleware.RequireGuest(home.RegisterPage))
	mux.HandleFunc("GET /login", middleware.RequireGuest(auth.LoginPage))
	mux.HandleFunc("POST /register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("GET /logout", auth.Logout)

	if app.Cfg.GoogleEnabled() {
		mux.HandleFunc("GET /auth/google", rateLimiter(middleware.RequireGuest(auth.GoogleAuth)))
		mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	}
	if app.Cfg.GitHubEnabled() {
		mux.HandleFunc("GET /auth/github", rateLimiter(middleware.RequireGuest(auth.GitHubAuth)))
		mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))
	}

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	// Feed & posts
	mux.HandleFunc("GET /feed", middleware.RequireAuth(posts.FeedPage))
	mux.HandleFunc("POST /upload", middleware.RequireAuth(posts.Upload))
	mux.HandleFunc("DELETE /delete-post/{postId}", middleware.RequireAuth(posts.DeletePost))
	mux.HandleFunc("POST /like-post/{postId}", middleware.RequireAuth(posts.LikePost))

	// Comments
	mux.HandleFunc("POST /add-comment/{postId}", middleware.RequireAuth(comments.AddComment))
	mux.HandleFunc("GET /get-comments/{postId}", middleware.RequireAuth(comments.GetComments))
	mux.HandleFunc("DELETE /delete-comment/{commentId}", middleware.RequireAuth(comments.DeleteComment))

	// Users
	mux.HandleFunc("POST /follow-user/{userId}", middleware.RequireAuth(users.FollowUser))
	mux.HandleFunc("GET /user/{userId}", middleware.RequireAuth(users.UserPage))
	mux.HandleFunc("GET /profile", middleware.RequireAuth(users.ProfilePage))
	mux.HandleFunc("POST /upload-profile-picture", middleware.RequireAuth(users.UploadProfilePicture))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", home.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (needed by SecurityHeaders for S3 endpoint)
		middleware.NonceMiddleware, // Must be before SecurityHeaders
		middleware.SecurityHeaders,
		app.Metrics.Middleware(mux),
		middleware.LimitBody(app.Cfg.MaxUploadSize+formOverhead),
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService),
		middleware.RequestLogging, // After auth so the user id is logged
		middleware.WithURLPath,
	)
}

// noDirListing answers 404 for directory paths instead of an index page.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
