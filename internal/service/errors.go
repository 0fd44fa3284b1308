package service

import (
	"errors"

	"github.com/templui/pixaro/internal/repository"
	"github.com/templui/pixaro/internal/validation"
)

var (
	ErrUserNotFound    = repository.ErrUserNotFound
	ErrPostNotFound    = repository.ErrPostNotFound
	ErrCommentNotFound = repository.ErrCommentNotFound
	ErrCommentRequired = validation.ErrCommentRequired
	ErrCaptionRequired = validation.ErrCaptionRequired

	ErrNotPostOwner       = errors.New("you can only delete your own posts")
	ErrNotCommentOwner    = errors.New("you can only delete your own comments")
	ErrCannotFollowSelf   = errors.New("you cannot follow yourself")
	ErrTargetUserNotFound = errors.New("target user not found")
	ErrFileRequired       = errors.New("please select a file")
)

// ValidationError carries a user-facing message for a rejected input field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Err: err}
}
