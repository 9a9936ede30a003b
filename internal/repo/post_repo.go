package repo

import (
	"context"
	"errors"

	dom "Feedgram/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a uniqueness rule.
	ErrDuplicate = errors.New("duplicate key")
)

// PostRepo is the authoritative record keeper for posts, their like-sets
// and comment lists.
type PostRepo interface {
	Create(ctx context.Context, p dom.Post) (dom.Post, error)
	GetByID(ctx context.Context, id int64) (dom.Post, error)
	// ListFeed returns all posts joined with author usernames, like-sets and
	// shaped comments, ordered by created_at descending. Comments within a
	// post keep insertion order (oldest first).
	ListFeed(ctx context.Context) ([]dom.FeedPost, error)
	// ToggleLike flips membership of userID in the post's like-set and
	// reports the new state. The membership test and mutation are atomic per
	// (postID, userID): two concurrent toggles by the same user never both add.
	ToggleLike(ctx context.Context, postID, userID int64) (liked bool, likeCount int, err error)
	AppendComment(ctx context.Context, postID, authorID int64, text string) (dom.Comment, error)
	ListComments(ctx context.Context, postID int64) ([]dom.FeedComment, error)
}

type PGPostRepo struct {
	db *pgxpool.Pool
}

func NewPGPostRepo(db *pgxpool.Pool) *PGPostRepo {
	return &PGPostRepo{db: db}
}

func (r *PGPostRepo) Create(ctx context.Context, p dom.Post) (dom.Post, error) {
	query := `
		INSERT INTO posts (author_id, text, image_url)
		VALUES ($1, $2, $3)
		RETURNING id, author_id, text, image_url, created_at`
	var out dom.Post
	err := r.db.QueryRow(ctx, query, p.AuthorID, p.Text, p.ImageURL).Scan(
		&out.ID, &out.AuthorID, &out.Text, &out.ImageURL, &out.CreatedAt,
	)
	return out, err
}

func (r *PGPostRepo) GetByID(ctx context.Context, id int64) (dom.Post, error) {
	query := `
		SELECT id, author_id, text, image_url, created_at
		FROM posts WHERE id = $1`
	var p dom.Post
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.AuthorID, &p.Text, &p.ImageURL, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Post{}, ErrNotFound
	}
	return p, err
}

func (r *PGPostRepo) ListFeed(ctx context.Context) ([]dom.FeedPost, error) {
	query := `
		SELECT p.id, p.author_id, p.text, p.image_url, p.created_at, u.username
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feed []dom.FeedPost
	index := make(map[int64]int)
	for rows.Next() {
		var fp dom.FeedPost
		if err := rows.Scan(&fp.ID, &fp.AuthorID, &fp.Text, &fp.ImageURL,
			&fp.CreatedAt, &fp.AuthorUsername); err != nil {
			return nil, err
		}
		index[fp.ID] = len(feed)
		feed = append(feed, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(feed) == 0 {
		return feed, nil
	}

	if err := r.attachLikes(ctx, feed, index); err != nil {
		return nil, err
	}
	if err := r.attachComments(ctx, feed, index); err != nil {
		return nil, err
	}
	return feed, nil
}

func (r *PGPostRepo) attachLikes(ctx context.Context, feed []dom.FeedPost, index map[int64]int) error {
	query := `
		SELECT l.post_id, l.user_id, u.username
		FROM post_likes l
		JOIN users u ON u.id = l.user_id
		ORDER BY l.post_id, l.created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID, userID int64
		var username string
		if err := rows.Scan(&postID, &userID, &username); err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			feed[i].LikeUserIDs = append(feed[i].LikeUserIDs, userID)
			feed[i].LikeUsernames = append(feed[i].LikeUsernames, username)
		}
	}
	return rows.Err()
}

func (r *PGPostRepo) attachComments(ctx context.Context, feed []dom.FeedPost, index map[int64]int) error {
	query := `
		SELECT c.post_id, c.id, u.username, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		ORDER BY c.post_id, c.created_at, c.id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var postID int64
		var fc dom.FeedComment
		if err := rows.Scan(&postID, &fc.ID, &fc.Username, &fc.Text, &fc.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[postID]; ok {
			feed[i].Comments = append(feed[i].Comments, fc)
		}
	}
	return rows.Err()
}

// ToggleLike runs the membership flip and the count inside one transaction.
// The delete-then-insert pair against the (post_id, user_id) primary key makes
// concurrent toggles by the same user serialize on the index instead of
// racing through a read-modify-write.
func (r *PGPostRepo) ToggleLike(ctx context.Context, postID, userID int64) (bool, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback(ctx)

	var exists int64
	err = tx.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1`, postID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, 0, err
	}
	liked := false
	if tag.RowsAffected() == 0 {
		// Not a member: add. ON CONFLICT covers the case where a concurrent
		// toggle by the same user commits between our delete and insert.
		if _, err := tx.Exec(ctx,
			`INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
			 ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID); err != nil {
			return false, 0, err
		}
		liked = true
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return false, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, 0, err
	}
	return liked, count, nil
}

func (r *PGPostRepo) AppendComment(ctx context.Context, postID, authorID int64, text string) (dom.Comment, error) {
	var exists int64
	err := r.db.QueryRow(ctx, `SELECT id FROM posts WHERE id = $1`, postID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Comment{}, ErrNotFound
	}
	if err != nil {
		return dom.Comment{}, err
	}

	query := `
		INSERT INTO comments (post_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, text, created_at`
	var c dom.Comment
	err = r.db.QueryRow(ctx, query, postID, authorID, text).Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.CreatedAt,
	)
	return c, err
}

func (r *PGPostRepo) ListComments(ctx context.Context, postID int64) ([]dom.FeedComment, error) {
	query := `
		SELECT c.id, u.username, c.text, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at, c.id`
	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.FeedComment
	for rows.Next() {
		var fc dom.FeedComment
		if err := rows.Scan(&fc.ID, &fc.Username, &fc.Text, &fc.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, fc)
	}
	return list, rows.Err()
}
