package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	CaptionMaxLength = 2200
	CommentMaxLength = 1000
)

var (
	ErrCaptionRequired = errors.New("caption is required")
	ErrCommentRequired = errors.New("comment text is required")
)

// ValidateCaption checks a post caption after trimming.
func ValidateCaption(caption string) error {
	return validateText(caption, CaptionMaxLength, ErrCaptionRequired, "caption")
}

// ValidateComment checks comment text after trimming.
func ValidateComment(text string) error {
	return validateText(text, CommentMaxLength, ErrCommentRequired, "comment")
}

func validateText(s string, max int, required error, what string) error {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return required
	}
	if utf8.RuneCountInString(trimmed) > max {
		return fmt.Errorf("%s is too long (max %d characters)", what, max)
	}
	return nil
}
