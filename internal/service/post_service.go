package service

import (
	"context"
	"errors"
	"strings"

	dom "Feedgram/internal/domain"
	"Feedgram/internal/cache"
	"Feedgram/internal/repo"

	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = errors.New("post not found")
	ErrEmptyPost    = errors.New("post must contain text or image")
	ErrEmptyComment = errors.New("comment text required")
)

// PostService orchestrates authenticated mutations against the post store:
// create, like toggle, comment append. Every successful write invalidates the
// feed cache.
type PostService struct {
	posts repo.PostRepo
	cache *cache.FeedCache
	log   *logrus.Logger
}

// NewPostService creates a PostService. If c is nil, caching is disabled.
func NewPostService(posts repo.PostRepo, c *cache.FeedCache, log *logrus.Logger) *PostService {
	return &PostService{posts: posts, cache: c, log: log}
}

// Create publishes a post. At least one of text or imageURL must be non-empty.
func (s *PostService) Create(ctx context.Context, authorID int64, text, imageURL string) (dom.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" && imageURL == "" {
		return dom.Post{}, ErrEmptyPost
	}
	p, err := s.posts.Create(ctx, dom.Post{
		AuthorID: authorID,
		Text:     text,
		ImageURL: imageURL,
	})
	if err != nil {
		return dom.Post{}, err
	}
	s.invalidateFeed(ctx)
	s.log.WithFields(logrus.Fields{"post_id": p.ID, "author_id": authorID}).Info("post created")
	return p, nil
}

// ToggleLike flips the caller's membership in the post's like-set and returns
// the new like count. Repeated toggles round-trip: two calls restore the
// original state.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID int64) (int, error) {
	_, count, err := s.posts.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	s.invalidateFeed(ctx)
	return count, nil
}

// Comment appends a comment and returns the post's full comment list with
// usernames resolved. Callers treat the response as the authoritative list,
// not a delta.
func (s *PostService) Comment(ctx context.Context, postID, authorID int64, text string) ([]dom.FeedComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if _, err := s.posts.AppendComment(ctx, postID, authorID, text); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidateFeed(ctx)
	return s.posts.ListComments(ctx, postID)
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("feed cache invalidation failed")
	}
}
