package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"time"

	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/monitoring"
	"github.com/templui/pixaro/internal/repository"
)

type UserService struct {
	userRepository repository.UserRepository
	postService    *PostService
	images         *ImageService
	emailService   *EmailService
	metrics        *monitoring.Metrics
}

func NewUserService(
	userRepository repository.UserRepository,
	postService *PostService,
	images *ImageService,
	emailService *EmailService,
	metrics *monitoring.Metrics,
) *UserService {
	return &UserService{
		userRepository: userRepository,
		postService:    postService,
		images:         images,
		emailService:   emailService,
		metrics:        metrics,
	}
}

// ByID returns the user with relationship arrays and picture URL filled in.
func (s *UserService) ByID(id string) (*model.User, error) {
	user, err := s.userRepository.ByID(id)
	if err != nil {
		return nil, err
	}
	return s.withRelations(user)
}

func (s *UserService) ByUsername(username string) (*model.User, error) {
	user, err := s.userRepository.ByUsername(username)
	if err != nil {
		return nil, err
	}
	return s.withRelations(user)
}

func (s *UserService) withRelations(user *model.User) (*model.User, error) {
	err := s.userRepository.LoadRelations(user)
	if err != nil {
		return nil, err
	}
	user.ProfilePictureURL = s.images.URL(user.ProfilePicture)
	return user, nil
}

// Profile returns a user together with their posts, newest first.
func (s *UserService) Profile(userID string) (*model.User, []*model.Post, error) {
	user, err := s.ByID(userID)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.postService.ByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	return user, posts, nil
}

// ToggleFollow follows target, or unfollows it if currentID already follows it.
func (s *UserService) ToggleFollow(ctx context.Context, currentID, targetID string) (*model.FollowResult, error) {
	if currentID == targetID {
		return nil, ErrCannotFollowSelf
	}

	follower, err := s.userRepository.ByID(currentID)
	if err != nil {
		return nil, err
	}

	target, err := s.userRepository.ByID(targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrTargetUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	result, err := s.userRepository.ToggleFollow(currentID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle follow: %w", err)
	}

	s.metrics.FollowToggledTo(result.IsFollowing)

	if result.IsFollowing {
		go s.notifyNewFollower(context.WithoutCancel(ctx), target, follower)
	}

	return result, nil
}

func (s *UserService) notifyNewFollower(ctx context.Context, target, follower *model.User) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.emailService.SendNewFollowerEmail(ctx, target.Email, target.Fullname, follower.Fullname, follower.ID)
	if err != nil {
		slog.Warn("failed to send new follower email", "error", err, "user_id", target.ID)
	}
}

// UpdateProfilePicture stores a new picture and removes the previous one.
func (s *UserService) UpdateProfilePicture(ctx context.Context, userID string, header *multipart.FileHeader) (*model.User, error) {
	user, err := s.userRepository.ByID(userID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Store(ctx, FolderProfilePictures, header)
	if err != nil {
		return nil, err
	}

	err = s.userRepository.UpdateProfilePicture(userID, key)
	if err != nil {
		s.images.Delete(ctx, key)
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}

	s.images.Delete(ctx, user.ProfilePicture)

	user.ProfilePicture = key
	user.ProfilePictureURL = s.images.URL(key)
	slog.Info("profile picture updated", "user_id", userID)
	return user, nil
}
