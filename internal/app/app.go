package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/templui/pixaro/internal/cache"
	"github.com/templui/pixaro/internal/config"
	"github.com/templui/pixaro/internal/db"
	"github.com/templui/pixaro/internal/markdown"
	"github.com/templui/pixaro/internal/monitoring"
	"github.com/templui/pixaro/internal/repository"
	"github.com/templui/pixaro/internal/service"
	"github.com/templui/pixaro/internal/storage"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.Storage
	Timeline       *cache.RedisTimeline // nil without REDIS_URL
	Metrics        *monitoring.Metrics
	AuthService    *service.AuthService
	UserService    *service.UserService
	PostService    *service.PostService
	CommentService *service.CommentService
	EmailService   *service.EmailService
	PageService    *service.PageService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.Migrate(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	postRepository := repository.NewPostRepository(database)
	commentRepository := repository.NewCommentRepository(database)
	sessionRepository := repository.NewSessionRepository(database)

	// Storage
	imageStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Feed cache is optional, the feed falls back to the database
	var timeline cache.Timeline
	var redisTimeline *cache.RedisTimeline
	if cfg.RedisURL != "" {
		redisTimeline, err = cache.NewRedisTimeline(ctx, cfg.RedisURL)
		if err != nil {
			slog.Warn("timeline cache disabled", "error", err)
		} else {
			timeline = redisTimeline
			slog.Info("timeline cache enabled")
		}
	}

	metrics := monitoring.New()

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	imageService := service.NewImageService(imageStorage, cfg.MaxUploadSize)
	postService := service.NewPostService(
		postRepository,
		imageService,
		markdown.NewCaptionRenderer(),
		timeline,
		metrics,
		cfg.FeedPageSize,
	)
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		emailService,
		cfg.SessionSecret,
		cfg.IsProduction(),
		cfg.SessionExpiry,
	)
	userService := service.NewUserService(userRepository, postService, imageService, emailService, metrics)
	commentService := service.NewCommentService(commentRepository, postRepository, imageService)

	pageService := service.NewPageService(cfg.ContentPath, cfg.IsDevelopment())
	err = pageService.LoadPages()
	if err != nil {
		// Pages are optional content
		slog.Warn("failed to load content pages", "error", err)
	}

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        imageStorage,
		Timeline:       redisTimeline,
		Metrics:        metrics,
		AuthService:    authService,
		UserService:    userService,
		PostService:    postService,
		CommentService: commentService,
		EmailService:   emailService,
		PageService:    pageService,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Timeline != nil {
		errs = append(errs, a.Timeline.Close())
	}
	errs = append(errs, db.Close(a.DB))
	return errors.Join(errs...)
}
