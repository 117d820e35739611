package link

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/filelink/service/internal/password"
	"github.com/filelink/service/internal/storage"
)

const (
	slugLength      = 8
	slugAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxSlugAttempts = 5
)

// CreateParams carries everything needed to mint a link for a placed file.
type CreateParams struct {
	Bucket           storage.Bucket
	OwnerNamespace   string
	StoragePath      string
	OriginalFilename string
	MimeType         string // declared by the uploader, used only for extension inference
	SizeBytes        int64
	Password         string // empty means no protection
	ExpiryDays       int    // <= 0 means permanent
}

// Service contains the registry business logic: slug minting, password
// hashing, and the resolve outcome ladder.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a link Service over the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create mints a unique slug and stores the record. The plaintext password is
// never persisted; only its argon2id hash is.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Link, error) {
	if _, err := storage.ParseBucket(string(p.Bucket)); err != nil {
		return nil, err
	}
	if p.StoragePath == "" || p.OwnerNamespace == "" {
		return nil, fmt.Errorf("storage path and owner namespace are required")
	}
	if p.SizeBytes < 0 {
		return nil, fmt.Errorf("negative size")
	}

	l := &Link{
		OwnerNamespace:   p.OwnerNamespace,
		Bucket:           p.Bucket,
		StoragePath:      p.StoragePath,
		OriginalFilename: p.OriginalFilename,
		MimeType:         p.MimeType,
		SizeBytes:        p.SizeBytes,
	}
	if p.Password != "" {
		hash, err := password.Hash(p.Password)
		if err != nil {
			return nil, fmt.Errorf("hash link password: %w", err)
		}
		l.PasswordHash = &hash
	}
	if p.ExpiryDays > 0 {
		expires := s.now().UTC().Add(time.Duration(p.ExpiryDays) * 24 * time.Hour)
		l.ExpiresAt = &expires
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		slug, err := generateSlug()
		if err != nil {
			return nil, fmt.Errorf("generate slug: %w", err)
		}
		l.Slug = slug
		err = s.repo.Insert(ctx, l)
		if errors.Is(err, ErrSlugTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return nil, ErrSlugExhausted
}

// Resolve returns the record for slug after walking the outcome ladder:
// unknown or inactive → ErrNotFound, past expiry → ErrExpired, protected
// without a password → ErrPasswordRequired, wrong password →
// ErrPasswordMismatch. A successful resolve is the only way callers learn the
// storage path. The expiry boundary is inclusive: a link expiring exactly now
// is already expired.
func (s *Service) Resolve(ctx context.Context, slug, pass string) (*Link, error) {
	l, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !l.IsActive {
		return nil, ErrNotFound
	}
	if l.ExpiresAt != nil && !s.now().UTC().Before(*l.ExpiresAt) {
		return nil, ErrExpired
	}
	if l.PasswordHash != nil {
		if pass == "" {
			return nil, ErrPasswordRequired
		}
		ok, err := password.Verify(pass, *l.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("verify link password: %w", err)
		}
		if !ok {
			return nil, ErrPasswordMismatch
		}
	}
	return l, nil
}

// Describe returns metadata for an active slug without walking the password
// or expiry gates, for the public info endpoint. Callers must not expose the
// storage path from the returned record.
func (s *Service) Describe(ctx context.Context, slug string) (*Link, error) {
	l, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !l.IsActive {
		return nil, ErrNotFound
	}
	return l, nil
}

// Deactivate turns the link off for its owner. The record stays in the
// registry; the stored file is untouched (housekeeping is a separate concern).
func (s *Service) Deactivate(ctx context.Context, slug, ownerNamespace string) error {
	l, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if l.OwnerNamespace != ownerNamespace {
		return ErrForbidden
	}
	return s.repo.Deactivate(ctx, slug)
}

// Stats exposes registry-wide counters.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// generateSlug returns a cryptographically random URL-safe identifier.
func generateSlug() (string, error) {
	max := big.NewInt(int64(len(slugAlphabet)))
	b := make([]byte, slugLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = slugAlphabet[n.Int64()]
	}
	return string(b), nil
}
