package service

import (
	"context"
	"errors"
	"strings"

	dom "Feedgram/internal/domain"
	"Feedgram/internal/repo"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username already exists")
)

// UserService handles signup and login.
type UserService struct {
	repo repo.UserRepo
	log  *logrus.Logger
}

// NewUserService returns a new UserService.
func NewUserService(r repo.UserRepo, log *logrus.Logger) *UserService {
	return &UserService{repo: r, log: log}
}

// Signup creates a new account with a hashed password. Email and username
// uniqueness is checked up front; the unique indexes catch any race past the
// check and surface it as a conflict too.
func (s *UserService) Signup(ctx context.Context, email, username, password string) (dom.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return dom.User{}, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return dom.User{}, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return dom.User{}, ErrUsernameTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return dom.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return dom.User{}, err
	}
	u, err := s.repo.Create(ctx, email, username, string(hash))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	s.log.WithField("username", u.Username).Info("user registered")
	return u, nil
}

// ValidateCredentials checks email and password; returns the user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}
