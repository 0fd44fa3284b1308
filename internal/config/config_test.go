package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/templui/pixaro/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("SESSION_SECRET", "dev-secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg := config.Load()

	assert.Equal(t, "Pixaro", cfg.AppName)
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
	assert.Equal(t, 20, cfg.FeedPageSize)
	assert.Equal(t, 24*time.Hour, cfg.SessionExpiry)
	assert.True(t, cfg.RateLimitAuth)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.GoogleEnabled())
	assert.False(t, cfg.GitHubEnabled())
}

func TestLoadOverridesAndInvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9000")
	t.Setenv("FEED_PAGE_SIZE", "50")
	t.Setenv("SESSION_EXPIRY", "2h")
	t.Setenv("RATE_LIMIT_AUTH", "false")
	t.Setenv("MAX_UPLOAD_SIZE", "-1")
	t.Setenv("S3_PRESIGN_EXPIRY_PUBLIC", "soon")

	cfg := config.Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 50, cfg.FeedPageSize)
	assert.Equal(t, 2*time.Hour, cfg.SessionExpiry)
	assert.False(t, cfg.RateLimitAuth)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadSize)
	assert.Equal(t, 168*time.Hour, cfg.S3PresignExpiryPublic)
}

func TestOAuthEnabledNeedsIDAndSecret(t *testing.T) {
	cfg := &config.Config{GoogleClientID: "id", GitHubClientID: "id", GitHubClientSecret: "secret"}

	assert.False(t, cfg.GoogleEnabled())
	assert.True(t, cfg.GitHubEnabled())
}

func TestSanitizedDropsSecrets(t *testing.T) {
	cfg := &config.Config{
		AppName:            "Pixaro",
		SessionSecret:      "super-secret",
		DBConnection:       "postgres://user:pass@db/pixaro",
		ResendAPIKey:       "re_123",
		GoogleClientID:     "google-id",
		GoogleClientSecret: "google-secret",
		S3AccessKey:        "AKIA",
		S3SecretKey:        "s3-secret",
		StorageDriver:      "s3",
		S3Endpoint:         "https://minio.example.com",
		MaxUploadSize:      1 << 20,
	}

	s := cfg.Sanitized()

	assert.Equal(t, "Pixaro", s.AppName)
	assert.Empty(t, s.SessionSecret)
	assert.Empty(t, s.DBConnection)
	assert.Empty(t, s.ResendAPIKey)
	assert.Empty(t, s.S3AccessKey)
	assert.Empty(t, s.S3SecretKey)
	assert.Equal(t, "google-id", s.GoogleClientID)
	assert.Equal(t, "set", s.GoogleClientSecret)
	assert.Empty(t, s.GitHubClientSecret)
	assert.True(t, s.GoogleEnabled())
	assert.Equal(t, "s3", s.StorageDriver)
	assert.Equal(t, "https://minio.example.com", s.S3Endpoint)
	assert.Equal(t, int64(1<<20), s.MaxUploadSize)
}
