package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/repository"
	"github.com/templui/pixaro/internal/validation"
)

type CommentService struct {
	commentRepository repository.CommentRepository
	postRepository    repository.PostRepository
	images            *ImageService
}

func NewCommentService(
	commentRepository repository.CommentRepository,
	postRepository repository.PostRepository,
	images *ImageService,
) *CommentService {
	return &CommentService{
		commentRepository: commentRepository,
		postRepository:    postRepository,
		images:            images,
	}
}

// Add creates a comment on a post and returns it with the post's new comment count.
func (s *CommentService) Add(userID, postID, text string) (*model.Comment, int, error) {
	text = strings.TrimSpace(text)
	err := validation.ValidateComment(text)
	if err != nil {
		if err == validation.ErrCommentRequired {
			return nil, 0, ErrCommentRequired
		}
		return nil, 0, invalid("commentText", err)
	}

	_, err = s.postRepository.ByID(postID)
	if err != nil {
		return nil, 0, err
	}

	comment := &model.Comment{
		ID:     uuid.New().String(),
		PostID: postID,
		UserID: userID,
		Text:   text,
	}
	err = s.commentRepository.Create(comment)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create comment: %w", err)
	}

	created, err := s.commentRepository.ByID(comment.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load comment: %w", err)
	}
	s.decorate(created)

	count, err := s.commentRepository.CountByPost(postID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return created, count, nil
}

// List returns the comments of a post, newest first.
func (s *CommentService) List(postID string) ([]*model.Comment, error) {
	comments, err := s.commentRepository.ByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load comments: %w", err)
	}
	s.decorate(comments...)
	return comments, nil
}

// Delete removes a comment owned by userID and returns the remaining count of its post.
func (s *CommentService) Delete(userID, commentID string) (int, error) {
	comment, err := s.commentRepository.ByID(commentID)
	if err != nil {
		return 0, err
	}

	if comment.UserID != userID {
		return 0, ErrNotCommentOwner
	}

	err = s.commentRepository.Delete(commentID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}

	count, err := s.commentRepository.CountByPost(comment.PostID)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}
	return count, nil
}

func (s *CommentService) decorate(comments ...*model.Comment) {
	for _, c := range comments {
		if c.Author != nil {
			c.Author.ProfilePictureURL = s.images.URL(c.Author.ProfilePicture)
		}
	}
}
