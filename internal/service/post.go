package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/templui/pixaro/internal/cache"
	"github.com/templui/pixaro/internal/markdown"
	"github.com/templui/pixaro/internal/model"
	"github.com/templui/pixaro/internal/monitoring"
	"github.com/templui/pixaro/internal/repository"
	"github.com/templui/pixaro/internal/validation"
)

// timelineCapacity bounds how many post ids a rebuild loads into the cache.
const timelineCapacity = 1000

type PostService struct {
	postRepository repository.PostRepository
	images         *ImageService
	captions       *markdown.CaptionRenderer
	timeline       cache.Timeline // nil when Redis is not configured
	metrics        *monitoring.Metrics
	pageSize       int

	// timelineStale is set when a cache write failed. Feed reads rebuild
	// before trusting the cache again.
	timelineStale atomic.Bool
}

func NewPostService(
	postRepository repository.PostRepository,
	images *ImageService,
	captions *markdown.CaptionRenderer,
	timeline cache.Timeline,
	metrics *monitoring.Metrics,
	pageSize int,
) *PostService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &PostService{
		postRepository: postRepository,
		images:         images,
		captions:       captions,
		timeline:       timeline,
		metrics:        metrics,
		pageSize:       pageSize,
	}
}

// FeedPage is one page of the global feed.
type FeedPage struct {
	Posts    []*model.Post
	Page     int
	HasPrev  bool
	HasNext  bool
	PageSize int
}

// Page returns the 1-based page of the feed.
func (s *PostService) Page(ctx context.Context, page int) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}

	// Fetch one extra post to know whether a next page exists.
	posts, err := s.Feed(ctx, s.pageSize+1, (page-1)*s.pageSize)
	if err != nil {
		return nil, err
	}

	hasNext := len(posts) > s.pageSize
	if hasNext {
		posts = posts[:s.pageSize]
	}

	return &FeedPage{
		Posts:    posts,
		Page:     page,
		HasPrev:  page > 1,
		HasNext:  hasNext,
		PageSize: s.pageSize,
	}, nil
}

// Feed returns posts of all users, newest first.
func (s *PostService) Feed(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	if s.timeline != nil {
		posts, ok := s.cachedFeed(ctx, limit, offset)
		if ok {
			return posts, nil
		}
	}

	posts, err := s.postRepository.Feed(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	s.decorate(posts...)
	return posts, nil
}

// cachedFeed serves the page from the timeline cache. It reports false when
// the caller should read from the database instead.
func (s *PostService) cachedFeed(ctx context.Context, limit, offset int) ([]*model.Post, bool) {
	if s.timelineStale.Load() && !s.rebuildTimeline(ctx) {
		return nil, false
	}

	ids, err := s.timeline.Page(ctx, limit, offset)
	if errors.Is(err, cache.ErrMiss) {
		s.rebuildTimeline(ctx)
		return nil, false
	}
	if err != nil {
		slog.Warn("timeline cache unavailable, using database", "error", err)
		return nil, false
	}

	// A short page may be the end of the feed or the end of the cached window.
	if len(ids) < limit {
		return nil, false
	}

	posts, err := s.postRepository.ByIDs(ids)
	if err != nil || len(posts) != len(ids) {
		// A post vanished without its cache entry being removed.
		s.rebuildTimeline(ctx)
		return nil, false
	}

	s.decorate(posts...)
	return posts, true
}

// rebuildTimeline reloads the cache from the database and reports whether
// it can be trusted again.
func (s *PostService) rebuildTimeline(ctx context.Context) bool {
	s.timelineStale.Store(false)

	var count int
	err := s.timeline.Rebuild(ctx, func() ([]repository.TimelineEntry, error) {
		entries, err := s.postRepository.Timeline(timelineCapacity)
		count = len(entries)
		return entries, err
	})
	if err != nil {
		s.timelineStale.Store(true)
		if errors.Is(err, cache.ErrRebuildConflict) {
			slog.Debug("timeline cache changed during rebuild, retrying on next read")
		} else {
			slog.Warn("failed to rebuild timeline cache", "error", err)
		}
		return false
	}

	slog.Debug("timeline cache rebuilt", "posts", count)
	return true
}

// timelineWriteFailed marks the cache stale after a lost Add or Remove.
// The marker is dropped too, so other instances rebuild as well.
func (s *PostService) timelineWriteFailed(ctx context.Context, err error, postID string) {
	slog.Warn("timeline cache write failed", "error", err, "post_id", postID)
	s.timelineStale.Store(true)
	if err := s.timeline.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate timeline cache", "error", err)
	}
}

func (s *PostService) ByID(postID string) (*model.Post, error) {
	post, err := s.postRepository.ByID(postID)
	if err != nil {
		return nil, err
	}
	s.decorate(post)
	return post, nil
}

// ByUser returns the posts of a user, newest first.
func (s *PostService) ByUser(userID string) ([]*model.Post, error) {
	posts, err := s.postRepository.ByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	s.decorate(posts...)
	return posts, nil
}

// Create stores the image and inserts the post.
func (s *PostService) Create(ctx context.Context, userID, caption string, header *multipart.FileHeader) (*model.Post, error) {
	if header == nil {
		return nil, ErrFileRequired
	}

	caption = strings.TrimSpace(caption)
	err := validation.ValidateCaption(caption)
	if err != nil {
		return nil, invalid("filecaption", err)
	}

	key, err := s.images.Store(ctx, FolderPosts, header)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    userID,
		Image:     key,
		ImageText: caption,
	}

	err = s.postRepository.Create(post)
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded file
		s.images.Delete(ctx, key)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.timeline != nil {
		err = s.timeline.Add(ctx, post.ID, post.CreatedAt)
		if err != nil {
			s.timelineWriteFailed(ctx, err, post.ID)
		}
	}

	s.metrics.PostCreated()
	slog.Info("post created", "post_id", post.ID, "user_id", userID)

	created, err := s.ByID(post.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes a post owned by userID together with its image.
func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.postRepository.ByID(postID)
	if err != nil {
		return err
	}

	if !post.OwnedBy(userID) {
		return ErrNotPostOwner
	}

	err = s.postRepository.Delete(postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.images.Delete(ctx, post.Image)

	if s.timeline != nil {
		err = s.timeline.Remove(ctx, postID)
		if err != nil {
			s.timelineWriteFailed(ctx, err, postID)
		}
	}

	slog.Info("post deleted", "post_id", postID, "user_id", userID)
	return nil
}

// ToggleLike likes the post, or unlikes it if userID already liked it.
func (s *PostService) ToggleLike(userID, postID string) (*model.LikeResult, error) {
	_, err := s.postRepository.ByID(postID)
	if err != nil {
		return nil, err
	}

	result, err := s.postRepository.ToggleLike(postID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	s.metrics.LikeToggled(result.Liked)
	return result, nil
}

// decorate fills the computed URL and caption fields.
func (s *PostService) decorate(posts ...*model.Post) {
	for _, post := range posts {
		post.ImageURL = s.images.URL(post.Image)
		post.CaptionHTML = s.captions.Render(post.ImageText)
		if post.Author != nil {
			post.Author.ProfilePictureURL = s.images.URL(post.Author.ProfilePicture)
		}
	}
}
