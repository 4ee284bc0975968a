package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/basetutor/internal/models"
	"github.com/atinyakov/basetutor/internal/passwordhash"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser inserts a user and returns its ID, or models.ErrAlreadyExists
	// when the username or email is taken.
	CreateUser(ctx context.Context, u models.User) (int64, error)
	// GetUser returns the user or models.ErrNotFound.
	GetUser(ctx context.Context, username string) (models.User, error)
	// UserExists checks username and email independently.
	UserExists(ctx context.Context, username, email string) (bool, bool, error)
}

// AuthService implements credential storage and verification.
type AuthService struct {
	repo   AuthRepository
	hasher passwordhash.Hasher
	log    *zap.Logger
	now    func() time.Time
}

// NewAuthService constructs an AuthService that stores digests produced by hasher.
func NewAuthService(repo AuthRepository, hasher passwordhash.Hasher, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// Register creates an account holding only the digest of password. An empty
// role registers a student. Registration fails with models.ErrAlreadyExists
// when username or email is already in use.
func (s *AuthService) Register(ctx context.Context, username, email, password string, role models.Role) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if role == "" {
		role = models.RoleStudent
	}
	if username == "" || password == "" || !strings.Contains(email, "@") || !role.Valid() {
		return models.User{}, models.ErrInvalidInput
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, classify(s.log, "Register", fmt.Errorf("hash password: %w", err))
	}

	u := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: digest,
		Role:         role,
		CreatedAt:    s.now().UnixMilli(),
	}
	id, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return models.User{}, classify(s.log, "Register", err)
	}
	u.ID = id

	s.log.Info("user registered", zap.String("username", username), zap.String("role", string(role)))
	return u, nil
}

// Login verifies password against the stored digest. An unknown username and
// a wrong password both yield models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.User, error) {
	u, err := s.repo.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, models.ErrInvalidCredentials
		}
		return models.User{}, classify(s.log, "Login", err)
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return models.User{}, models.ErrInvalidCredentials
	}
	u.PasswordHash = ""
	return u, nil
}

// UserExists reports whether the username and the email are taken.
func (s *AuthService) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	usernameTaken, emailTaken, err := s.repo.UserExists(ctx, strings.TrimSpace(username), strings.TrimSpace(email))
	if err != nil {
		return false, false, classify(s.log, "UserExists", err)
	}
	return usernameTaken, emailTaken, nil
}

// UserDetails returns the user's public profile or models.ErrNotFound.
func (s *AuthService) UserDetails(ctx context.Context, username string) (models.User, error) {
	u, err := s.repo.GetUser(ctx, username)
	if err != nil {
		return models.User{}, classify(s.log, "UserDetails", err)
	}
	u.PasswordHash = ""
	return u, nil
}
