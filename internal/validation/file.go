package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrFileTooLarge = errors.New("file too large")

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	// AllowedTypes maps a detected MIME type to the extension files are stored with.
	AllowedTypes      map[string]string
	AllowedExtensions map[string]bool
	MaxSize           int64
}

// ImageConstraints are used for post images and profile pictures.
var ImageConstraints = FileConstraints{
	AllowedTypes: map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	},
	AllowedExtensions: map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".gif":  true,
	},
	MaxSize: 5 << 20, // 5MB
}

// WithMaxSize returns a copy of the constraints with a different size limit.
func (c FileConstraints) WithMaxSize(size int64) FileConstraints {
	if size > 0 {
		c.MaxSize = size
	}
	return c
}

// DetectedFile is the result of a successful validation.
type DetectedFile struct {
	ContentType string
	Extension   string
}

// ValidateFile checks size, magic number and extension of an upload.
// The content type is detected from the file content, so a renamed or
// mislabelled file is rejected.
func ValidateFile(header *multipart.FileHeader, constraints FileConstraints) (*DetectedFile, error) {
	if header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return nil, fmt.Errorf("%w: maximum size is %d MB", ErrFileTooLarge, maxMB)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// http.DetectContentType reads max 512 bytes
	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	detectedType := http.DetectContentType(buffer[:n])
	storedExt, ok := constraints.AllowedTypes[detectedType]
	if !ok {
		return nil, fmt.Errorf("invalid file type (detected: %s)", detectedType)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !constraints.AllowedExtensions[ext] {
		return nil, fmt.Errorf("invalid file extension: %s", ext)
	}

	return &DetectedFile{ContentType: detectedType, Extension: storedExt}, nil
}
