package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"Feedgram/internal/auth"
	"Feedgram/internal/blob"
	dom "Feedgram/internal/domain"
	"Feedgram/internal/dto"
	"Feedgram/internal/service"

	"github.com/gin-gonic/gin"
)

// PostsHandler handles the feed and post interactions.
type PostsHandler struct {
	postSvc *service.PostService
	feedSvc *service.FeedService
	blobs   *blob.DiskStore
}

// NewPostsHandler returns a new PostsHandler.
func NewPostsHandler(postSvc *service.PostService, feedSvc *service.FeedService, blobs *blob.DiskStore) *PostsHandler {
	return &PostsHandler{postSvc: postSvc, feedSvc: feedSvc, blobs: blobs}
}

// Feed godoc
// @Summary      List the feed
// @Description  Public. A bearer token, when present and valid, marks posts the viewer liked.
// @Tags         posts
// @Produce      json
// @Success      200  {array}  dto.PostResponse
// @Failure      500  {object}  map[string]string
// @Router       /posts [get]
func (h *PostsHandler) Feed(c *gin.Context) {
	viewerID := auth.UserIDFromContext(c)
	views, err := h.feedSvc.Project(c.Request.Context(), viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch posts"})
		return
	}
	c.JSON(http.StatusOK, postsToResponses(views))
}

// Create godoc
// @Summary      Publish a post
// @Description  Multipart form with a text field and/or an image file. One of the two is required.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        text   formData  string  false  "Post text"
// @Param        image  formData  file    false  "Image file"
// @Success      201  {object}  dto.CreatedPostResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /posts [post]
func (h *PostsHandler) Create(c *gin.Context) {
	text := c.PostForm("text")

	var imageURL string
	if fh, err := c.FormFile("image"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image"})
			return
		}
		defer src.Close()
		imageURL, err = h.blobs.Store(src, fh.Filename)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}
	}

	p, err := h.postSvc.Create(c.Request.Context(), auth.UserIDFromContext(c), text, imageURL)
	if err != nil {
		if errors.Is(err, service.ErrEmptyPost) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, dto.CreatedPostResponse{
		ID:        p.ID,
		Text:      p.Text,
		Image:     p.ImageURL,
		CreatedAt: p.CreatedAt,
	})
}

// Like godoc
// @Summary      Toggle a like
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  dto.LikeResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/like [post]
func (h *PostsHandler) Like(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	count, err := h.postSvc.ToggleLike(c.Request.Context(), id, auth.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.LikeResponse{LikeCount: count})
}

// Comment godoc
// @Summary      Comment on a post
// @Description  Returns the post's full comment list, not just the new comment.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true  "Post ID"
// @Param        body  body      dto.CommentRequest  true  "Comment body"
// @Success      200  {array}  dto.CommentResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id}/comment [post]
func (h *PostsHandler) Comment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment text required"})
		return
	}
	comments, err := h.postSvc.Comment(c.Request.Context(), id, auth.UserIDFromContext(c), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		case errors.Is(err, service.ErrEmptyComment):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, commentsToResponses(comments))
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func postToResponse(v service.PostView) dto.PostResponse {
	return dto.PostResponse{
		ID:           v.ID,
		Text:         v.Text,
		Image:        v.Image,
		Author:       v.Author,
		LikeCount:    v.LikeCount,
		Likes:        orEmpty(v.Likes),
		LikedByMe:    v.LikedByMe,
		CommentCount: v.CommentCount,
		Comments:     commentsToResponses(v.Comments),
		CreatedAt:    v.CreatedAt,
	}
}

func postsToResponses(views []service.PostView) []dto.PostResponse {
	out := make([]dto.PostResponse, 0, len(views))
	for _, v := range views {
		out = append(out, postToResponse(v))
	}
	return out
}

func commentsToResponses(comments []dom.FeedComment) []dto.CommentResponse {
	out := make([]dto.CommentResponse, 0, len(comments))
	for _, fc := range comments {
		out = append(out, dto.CommentResponse{
			ID:        fc.ID,
			Username:  fc.Username,
			Text:      fc.Text,
			CreatedAt: fc.CreatedAt,
		})
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
