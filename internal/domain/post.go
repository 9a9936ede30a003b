package domain

import "time"

// Domain entities for the feed. Independent of Gin, Postgres, Redis.

// Post is a published unit of content. Text and ImageURL are both optional
// individually, but at least one must be set (enforced by the service).
type Post struct {
	ID        int64
	AuthorID  int64
	Text      string
	ImageURL  string
	CreatedAt time.Time
}

// Comment belongs to exactly one post. Comments are append-only.
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}

// FeedPost is a post joined with its author, like-set and comments —
// everything the feed needs except the viewer. It carries no viewer-relative
// fields, so it is safe to cache and share between viewers.
type FeedPost struct {
	Post
	AuthorUsername string
	LikeUserIDs    []int64
	LikeUsernames  []string
	Comments       []FeedComment
}

// FeedComment is a comment with its author's username resolved.
type FeedComment struct {
	ID        int64
	Username  string
	Text      string
	CreatedAt time.Time
}

// LikedBy reports membership of userID in the post's like-set.
// Always false for userID 0 (anonymous viewer).
func (p FeedPost) LikedBy(userID int64) bool {
	if userID == 0 {
		return false
	}
	for _, id := range p.LikeUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
