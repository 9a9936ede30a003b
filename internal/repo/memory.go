package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	dom "Feedgram/internal/domain"
)

// In-memory implementations of UserRepo and PostRepo. They back the test
// suites and mirror the PG contracts: not-found and duplicate sentinels,
// created_at-descending feed order, and per-store serialization so toggle
// and append stay atomic under concurrent callers.

// MemoryUserRepo is an in-memory UserRepo.
type MemoryUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  []dom.User
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{nextID: 1}
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r *MemoryUserRepo) GetByUsername(_ context.Context, username string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r *MemoryUserRepo) Create(_ context.Context, email, username, passwordHash string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return dom.User{}, ErrDuplicate
		}
	}
	u := dom.User{
		ID:           r.nextID,
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.users = append(r.users, u)
	return u, nil
}

// MemoryPostRepo is an in-memory PostRepo. Usernames for feed joins are
// resolved against the given MemoryUserRepo.
type MemoryPostRepo struct {
	mu       sync.Mutex
	users    *MemoryUserRepo
	nextID   int64
	posts    []dom.Post
	likes    map[int64][]int64      // postID -> liker user IDs, oldest first
	comments map[int64][]dom.Comment // postID -> comments, append order
}

func NewMemoryPostRepo(users *MemoryUserRepo) *MemoryPostRepo {
	return &MemoryPostRepo{
		users:    users,
		nextID:   1,
		likes:    make(map[int64][]int64),
		comments: make(map[int64][]dom.Comment),
	}
}

func (r *MemoryPostRepo) Create(_ context.Context, p dom.Post) (dom.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.nextID
	r.nextID++
	p.CreatedAt = time.Now().UTC()
	r.posts = append(r.posts, p)
	return p, nil
}

func (r *MemoryPostRepo) GetByID(_ context.Context, id int64) (dom.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return dom.Post{}, ErrNotFound
}

func (r *MemoryPostRepo) ListFeed(ctx context.Context) ([]dom.FeedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	feed := make([]dom.FeedPost, 0, len(r.posts))
	for _, p := range r.posts {
		fp := dom.FeedPost{Post: p}
		fp.AuthorUsername = r.username(ctx, p.AuthorID)
		for _, uid := range r.likes[p.ID] {
			fp.LikeUserIDs = append(fp.LikeUserIDs, uid)
			fp.LikeUsernames = append(fp.LikeUsernames, r.username(ctx, uid))
		}
		for _, c := range r.comments[p.ID] {
			fp.Comments = append(fp.Comments, dom.FeedComment{
				ID:        c.ID,
				Username:  r.username(ctx, c.AuthorID),
				Text:      c.Text,
				CreatedAt: c.CreatedAt,
			})
		}
		feed = append(feed, fp)
	}
	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].CreatedAt.Equal(feed[j].CreatedAt) {
			return feed[i].CreatedAt.After(feed[j].CreatedAt)
		}
		return feed[i].ID > feed[j].ID
	})
	return feed, nil
}

func (r *MemoryPostRepo) ToggleLike(_ context.Context, postID, userID int64) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.postExists(postID) {
		return false, 0, ErrNotFound
	}
	set := r.likes[postID]
	for i, uid := range set {
		if uid == userID {
			r.likes[postID] = append(set[:i:i], set[i+1:]...)
			return false, len(r.likes[postID]), nil
		}
	}
	r.likes[postID] = append(set, userID)
	return true, len(r.likes[postID]), nil
}

func (r *MemoryPostRepo) AppendComment(_ context.Context, postID, authorID int64, text string) (dom.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.postExists(postID) {
		return dom.Comment{}, ErrNotFound
	}
	c := dom.Comment{
		ID:        r.nextID,
		PostID:    postID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.comments[postID] = append(r.comments[postID], c)
	return c, nil
}

func (r *MemoryPostRepo) ListComments(ctx context.Context, postID int64) ([]dom.FeedComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []dom.FeedComment
	for _, c := range r.comments[postID] {
		list = append(list, dom.FeedComment{
			ID:        c.ID,
			Username:  r.username(ctx, c.AuthorID),
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	return list, nil
}

func (r *MemoryPostRepo) postExists(id int64) bool {
	for _, p := range r.posts {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (r *MemoryPostRepo) username(ctx context.Context, userID int64) string {
	if r.users == nil {
		return ""
	}
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Username
}
