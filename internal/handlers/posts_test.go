package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Feedgram/internal/auth"
	"Feedgram/internal/dto"
	"Feedgram/internal/repo"
	"Feedgram/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// newTestAPI wires the full request surface against in-memory stores.
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	users := repo.NewMemoryUserRepo()
	posts := repo.NewMemoryPostRepo(users)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	userSvc := service.NewUserService(users, log)
	postSvc := service.NewPostService(posts, nil, log)
	feedSvc := service.NewFeedService(posts, nil)

	authHandler := NewAuthHandler(tokens, userSvc)
	postsHandler := NewPostsHandler(postSvc, feedSvc, nil)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/posts", auth.OptionalAuth(tokens), postsHandler.Feed)
	protected := api.Group("", auth.RequireAuth(tokens))
	protected.POST("/posts", postsHandler.Create)
	protected.POST("/posts/:id/like", postsHandler.Like)
	protected.POST("/posts/:id/comment", postsHandler.Comment)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doMultipartText(t *testing.T, r *gin.Engine, path, token, text string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signupAndLogin(t *testing.T, r *gin.Engine, email, username string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"email": email, "username": username, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/login", "", gin.H{
		"email": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, username, resp.Username)
	return resp.Token
}

func TestSignupConflictAndBadLogin(t *testing.T) {
	r := newTestAPI(t)
	_ = signupAndLogin(t, r, "a@x.com", "alice")

	// Same email again.
	w := doJSON(t, r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"email": "a@x.com", "username": "alice2", "password": "secret1",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Wrong password.
	w = doJSON(t, r, http.MethodPost, "/api/v1/login", "", gin.H{
		"email": "a@x.com", "password": "wrong00",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupValidation(t *testing.T) {
	r := newTestAPI(t)

	// Bad email syntax.
	w := doJSON(t, r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"email": "not-an-email", "username": "alice", "password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Short password.
	w = doJSON(t, r, http.MethodPost, "/api/v1/signup", "", gin.H{
		"email": "a@x.com", "username": "alice", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedScenario(t *testing.T) {
	r := newTestAPI(t)
	aliceToken := signupAndLogin(t, r, "a@x.com", "alice")
	bobToken := signupAndLogin(t, r, "b@x.com", "bob")

	// Writes require auth.
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", "", gin.H{})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Alice posts "hello" (multipart with text only).
	w = doMultipartText(t, r, "/api/v1/posts", aliceToken, "hello")
	require.Equal(t, http.StatusCreated, w.Code)
	var created dto.CreatedPostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "hello", created.Text)

	// Empty post rejected.
	w = doMultipartText(t, r, "/api/v1/posts", aliceToken, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Anonymous feed: one post, no likes, no comments.
	w = doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []dto.PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Len(t, feed, 1)
	require.Equal(t, "alice", feed[0].Author)
	require.Equal(t, 0, feed[0].LikeCount)
	require.False(t, feed[0].LikedByMe)
	require.Equal(t, 0, feed[0].CommentCount)

	postID := feed[0].ID
	likePath := "/api/v1/posts/1/like"

	// Alice toggles like on, then off.
	w = doJSON(t, r, http.MethodPost, likePath, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var like dto.LikeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &like))
	require.Equal(t, 1, like.LikeCount)

	w = doJSON(t, r, http.MethodPost, likePath, aliceToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &like))
	require.Equal(t, 0, like.LikeCount)

	// Like again so the viewer-relative flag has something to show.
	w = doJSON(t, r, http.MethodPost, likePath, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Alice sees likedByMe true, Bob false, anonymous false.
	w = doJSON(t, r, http.MethodGet, "/api/v1/posts", aliceToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.True(t, feed[0].LikedByMe)

	w = doJSON(t, r, http.MethodGet, "/api/v1/posts", bobToken, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.False(t, feed[0].LikedByMe)
	require.Equal(t, 1, feed[0].LikeCount)

	// Expired/garbage token on the read path degrades to anonymous.
	w = doJSON(t, r, http.MethodGet, "/api/v1/posts", "garbage", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.False(t, feed[0].LikedByMe)

	// Bob comments; response is the full shaped list.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/1/comment", bobToken, gin.H{"text": "nice!"})
	require.Equal(t, http.StatusOK, w.Code)
	var comments []dto.CommentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	require.Equal(t, "bob", comments[0].Username)
	require.Equal(t, "nice!", comments[0].Text)

	// Feed reflects the comment.
	w = doJSON(t, r, http.MethodGet, "/api/v1/posts", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &feed))
	require.Equal(t, 1, feed[0].CommentCount)
	require.Equal(t, "bob", feed[0].Comments[0].Username)
	require.Equal(t, postID, feed[0].ID)

	// Unknown post.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/999/like", aliceToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/999/comment", aliceToken, gin.H{"text": "hi"})
	require.Equal(t, http.StatusNotFound, w.Code)

	// Empty comment.
	w = doJSON(t, r, http.MethodPost, "/api/v1/posts/1/comment", bobToken, gin.H{"text": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
