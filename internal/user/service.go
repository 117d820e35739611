package user

import (
	"context"
	"errors"
)

// Service contains business logic for user management.
type Service struct {
	repo *Repository
}

// NewService creates a new user Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new user account with an already-hashed password.
func (s *Service) Create(ctx context.Context, email, username, fullName, passwordHash string) (*User, error) {
	return s.repo.Create(ctx, email, username, fullName, passwordHash)
}

// GetByID returns a user by their UUID.
func (s *Service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a user by their email address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// ChargeStorage records size more bytes against the user's quota.
func (s *Service) ChargeStorage(ctx context.Context, id string, size int64) error {
	return s.repo.AddStorageUsed(ctx, id, size)
}

// IsNotFound returns true when the error indicates a user was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
