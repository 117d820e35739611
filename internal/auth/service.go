// Package auth handles account registration, login, and JWT issuance.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/filelink/service/internal/config"
	"github.com/filelink/service/internal/password"
	"github.com/filelink/service/internal/user"
)

// ErrInvalidCredentials is returned when the email or password is wrong. One
// error for both cases, so a response cannot reveal which part failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrEmailTaken is returned when registering an email or username that exists.
var ErrEmailTaken = errors.New("email or username already registered")

// Service contains the business logic for password-based authentication.
type Service struct {
	userSvc *user.Service
	cfg     *config.Config
}

// NewService creates a new auth Service.
func NewService(userSvc *user.Service, cfg *config.Config) *Service {
	return &Service{userSvc: userSvc, cfg: cfg}
}

// Register creates a new account and issues a JWT token.
func (s *Service) Register(ctx context.Context, email, username, fullName, plainPassword string) (string, *user.User, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.userSvc.Create(ctx, email, username, fullName, hash)
	if errors.Is(err, user.ErrAlreadyExists) {
		return "", nil, ErrEmailTaken
	}
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Login verifies the credentials and issues a JWT token.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (string, *user.User, error) {
	u, err := s.userSvc.GetByEmail(ctx, email)
	if s.userSvc.IsNotFound(err) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := password.Verify(plainPassword, u.PasswordHash)
	if err != nil {
		return "", nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// issueToken creates a signed JWT for the given user.
func (s *Service) issueToken(u *user.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      u.ID,
		"username": u.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(7 * 24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
