package repo

import (
	"context"
	"errors"

	dom "Feedgram/internal/domain"
	"Feedgram/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	GetByID(ctx context.Context, id int64) (dom.User, error)
	Create(ctx context.Context, email, username, passwordHash string) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	return r.get(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE email = $1`,
		email)
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	return r.get(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE username = $1`,
		username)
}

// GetByID returns the user by ID.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return r.get(ctx,
		`SELECT id, email, username, password_hash, created_at FROM users WHERE id = $1`,
		id)
}

func (r *PGUserRepo) get(ctx context.Context, query string, arg any) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a new user and returns it. A race past the caller's
// uniqueness pre-check surfaces as ErrDuplicate via the unique indexes.
func (r *PGUserRepo) Create(ctx context.Context, email, username, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, username, password_hash, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, email, username, passwordHash).Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	if utils.IsPGUniqueViolation(err) {
		return dom.User{}, ErrDuplicate
	}
	return u, err
}
