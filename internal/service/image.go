package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"

	"github.com/google/uuid"
	"github.com/templui/pixaro/internal/storage"
	"github.com/templui/pixaro/internal/validation"
)

const (
	FolderPosts           = "posts"
	FolderProfilePictures = "profile-pictures"
)

// ImageService validates uploaded images and moves them into storage.
type ImageService struct {
	storage     storage.Storage
	constraints validation.FileConstraints
}

func NewImageService(storage storage.Storage, maxSize int64) *ImageService {
	return &ImageService{
		storage:     storage,
		constraints: validation.ImageConstraints.WithMaxSize(maxSize),
	}
}

// Store validates the upload and saves it under folder with a random name.
// It returns the storage key.
func (s *ImageService) Store(ctx context.Context, folder string, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", ErrFileRequired
	}

	detected, err := validation.ValidateFile(header, s.constraints)
	if err != nil {
		return "", invalid("file", err)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	key := path.Join(folder, uuid.New().String()+detected.Extension)
	err = s.storage.Save(ctx, key, file, detected.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

// Delete removes an image. Failures are logged, the caller carries on.
func (s *ImageService) Delete(ctx context.Context, key string) {
	if key == "" {
		return
	}
	err := s.storage.Delete(ctx, key)
	if err != nil {
		slog.Error("failed to delete file from storage", "error", err, "key", key)
	}
}

// URL returns the public URL of a stored image, or "" for an empty key.
func (s *ImageService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.storage.URL(key)
}
