package service

import (
	"context"
	"time"

	dom "Feedgram/internal/domain"
	"Feedgram/internal/cache"
	"Feedgram/internal/repo"

	"golang.org/x/sync/singleflight"
)

// PostView is the client-facing projection of a post, relative to a viewer.
type PostView struct {
	ID           int64
	Text         string
	Image        string
	Author       string
	LikeCount    int
	Likes        []string
	LikedByMe    bool
	CommentCount int
	Comments     []dom.FeedComment
	CreatedAt    time.Time
}

// FeedService joins stored posts with an optional viewer identity to produce
// the shaped read model. viewerID 0 means anonymous; anonymous viewers always
// see LikedByMe false.
type FeedService struct {
	posts repo.PostRepo
	cache *cache.FeedCache
	sf    singleflight.Group
}

// NewFeedService creates a FeedService. If c is nil, caching is disabled.
func NewFeedService(posts repo.PostRepo, c *cache.FeedCache) *FeedService {
	return &FeedService{posts: posts, cache: c}
}

// Project returns all posts shaped for the given viewer, most recent first.
// Within each post, comments keep append order (oldest first).
func (s *FeedService) Project(ctx context.Context, viewerID int64) ([]PostView, error) {
	feed, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]PostView, 0, len(feed))
	for _, fp := range feed {
		views = append(views, shapePost(fp, viewerID))
	}
	return views, nil
}

func shapePost(fp dom.FeedPost, viewerID int64) PostView {
	return PostView{
		ID:           fp.ID,
		Text:         fp.Text,
		Image:        fp.ImageURL,
		Author:       fp.AuthorUsername,
		LikeCount:    len(fp.LikeUserIDs),
		Likes:        fp.LikeUsernames,
		LikedByMe:    fp.LikedBy(viewerID),
		CommentCount: len(fp.Comments),
		Comments:     fp.Comments,
		CreatedAt:    fp.CreatedAt,
	}
}

// load fetches the viewer-independent feed rows, through the cache when
// available. Singleflight collapses concurrent fills after an invalidation.
func (s *FeedService) load(ctx context.Context) ([]dom.FeedPost, error) {
	if s.cache == nil {
		return s.posts.ListFeed(ctx)
	}
	v, err, _ := s.sf.Do("feed", func() (interface{}, error) {
		if feed, err := s.cache.Get(ctx); err == nil && feed != nil {
			return feed, nil
		}
		feed, err := s.posts.ListFeed(ctx)
		if err != nil {
			return nil, err
		}
		_ = s.cache.Set(ctx, feed)
		return feed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.FeedPost), nil
}
