package dto

import "time"

// CommentRequest is the JSON body for POST /posts/:id/comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// PostResponse is a feed entry shaped for the requesting viewer.
type PostResponse struct {
	ID           int64             `json:"id"`
	Text         string            `json:"text,omitempty"`
	Image        string            `json:"image,omitempty"`
	Author       string            `json:"author"`
	LikeCount    int               `json:"likeCount"`
	Likes        []string          `json:"likes"`
	LikedByMe    bool              `json:"likedByMe"`
	CommentCount int               `json:"commentCount"`
	Comments     []CommentResponse `json:"comments"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// CommentResponse is a comment with its author's username resolved.
type CommentResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreatedPostResponse is returned after a successful post creation.
type CreatedPostResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikeResponse reports the new like count after a toggle.
type LikeResponse struct {
	LikeCount int `json:"likeCount"`
}
