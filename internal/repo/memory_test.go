package repo

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dom "Feedgram/internal/domain"

	"github.com/stretchr/testify/require"
)

func seedUserAndPost(t *testing.T) (*MemoryUserRepo, *MemoryPostRepo, dom.User, dom.Post) {
	t.Helper()
	ctx := context.Background()
	users := NewMemoryUserRepo()
	posts := NewMemoryPostRepo(users)
	u, err := users.Create(ctx, "a@x.com", "alice", "hash")
	require.NoError(t, err)
	p, err := posts.Create(ctx, dom.Post{AuthorID: u.ID, Text: "hello"})
	require.NoError(t, err)
	return users, posts, u, p
}

func TestToggleLikeRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, posts, u, p := seedUserAndPost(t)

	liked, count, err := posts.ToggleLike(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.True(t, liked)
	require.Equal(t, 1, count)

	liked, count, err = posts.ToggleLike(ctx, p.ID, u.ID)
	require.NoError(t, err)
	require.False(t, liked)
	require.Equal(t, 0, count)
}

func TestToggleLikeUnknownPost(t *testing.T) {
	ctx := context.Background()
	_, posts, u, _ := seedUserAndPost(t)

	_, _, err := posts.ToggleLike(ctx, 9999, u.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestToggleLikeConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	_, posts, u, p := seedUserAndPost(t)

	// An even number of toggles by one user must land back on "not liked",
	// no matter how they interleave.
	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := posts.ToggleLike(ctx, p.ID, u.ID)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	feed, err := posts.ListFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	require.Equal(t, 0, len(feed[0].LikeUserIDs))
}

func TestToggleLikeConcurrentDistinctUsers(t *testing.T) {
	ctx := context.Background()
	users, posts, _, p := seedUserAndPost(t)

	const n = 50
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		u, err := users.Create(ctx, fmt.Sprintf("user%d@x.com", i), fmt.Sprintf("user%d", i), "hash")
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, _, err := posts.ToggleLike(ctx, p.ID, userID)
			require.NoError(t, err)
		}(id)
	}
	wg.Wait()

	feed, err := posts.ListFeed(ctx)
	require.NoError(t, err)
	require.Equal(t, n, len(feed[0].LikeUserIDs))
}

func TestAppendCommentConcurrent(t *testing.T) {
	ctx := context.Background()
	_, posts, u, p := seedUserAndPost(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := posts.AppendComment(ctx, p.ID, u.ID, "nice!")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	comments, err := posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, n)
}

func TestAppendCommentUnknownPost(t *testing.T) {
	ctx := context.Background()
	_, posts, u, _ := seedUserAndPost(t)

	_, err := posts.AppendComment(ctx, 9999, u.ID, "nice!")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFeedNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, posts, u, first := seedUserAndPost(t)

	second, err := posts.Create(ctx, dom.Post{AuthorID: u.ID, Text: "later"})
	require.NoError(t, err)

	feed, err := posts.ListFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, second.ID, feed[0].ID)
	require.Equal(t, first.ID, feed[1].ID)
	require.Equal(t, "alice", feed[0].AuthorUsername)
}

func TestListCommentsKeepsAppendOrder(t *testing.T) {
	ctx := context.Background()
	_, posts, u, p := seedUserAndPost(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := posts.AppendComment(ctx, p.ID, u.ID, text)
		require.NoError(t, err)
	}

	comments, err := posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	require.Equal(t, "one", comments[0].Text)
	require.Equal(t, "two", comments[1].Text)
	require.Equal(t, "three", comments[2].Text)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	_, posts, _, p := seedUserAndPost(t)

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Text)

	_, err = posts.GetByID(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepoUniqueness(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserRepo()

	_, err := users.Create(ctx, "a@x.com", "alice", "hash")
	require.NoError(t, err)

	_, err = users.Create(ctx, "a@x.com", "other", "hash")
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = users.Create(ctx, "b@x.com", "alice", "hash")
	require.ErrorIs(t, err, ErrDuplicate)

	_, err = users.GetByEmail(ctx, "missing@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}
