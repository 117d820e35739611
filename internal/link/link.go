// Package link is the authoritative registry binding public slugs to stored
// files and their access policy (password, expiry).
package link

import (
	"errors"
	"time"

	"github.com/filelink/service/internal/storage"
)

// Link is one slug-to-file binding. Identity fields are immutable once the
// record is created; only deactivation changes resolvability.
type Link struct {
	ID               string         `json:"id"`
	Slug             string         `json:"slug"`
	OwnerNamespace   string         `json:"ownerNamespace"`
	Bucket           storage.Bucket `json:"bucket"`
	StoragePath      string         `json:"-"`
	OriginalFilename string         `json:"originalFilename"`
	MimeType         string         `json:"mimeType,omitempty"`
	SizeBytes        int64          `json:"sizeBytes"`
	PasswordHash     *string        `json:"-"`
	ExpiresAt        *time.Time     `json:"expiresAt,omitempty"`
	IsActive         bool           `json:"-"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// PasswordProtected reports whether resolving the link requires a password.
func (l *Link) PasswordProtected() bool { return l.PasswordHash != nil }

// Stats summarizes the registry for the public stats endpoint.
type Stats struct {
	TotalLinks  int64 `json:"totalLinks"`
	ActiveLinks int64 `json:"activeLinks"`
	TotalBytes  int64 `json:"totalBytes"`
}

// ErrNotFound is returned when no active link exists for a slug.
var ErrNotFound = errors.New("link not found")

// ErrExpired is returned when the link's expiry time has passed.
var ErrExpired = errors.New("link expired")

// ErrPasswordRequired is returned when the link is protected and no password
// was supplied.
var ErrPasswordRequired = errors.New("password required")

// ErrPasswordMismatch is returned when the supplied password is wrong.
var ErrPasswordMismatch = errors.New("password mismatch")

// ErrSlugTaken is returned by a repository when inserting a duplicate slug.
var ErrSlugTaken = errors.New("slug already taken")

// ErrSlugExhausted is returned when the slug generation retry budget runs out.
var ErrSlugExhausted = errors.New("could not generate a unique slug")

// ErrForbidden is returned when a caller tries to manage a link they do not own.
var ErrForbidden = errors.New("link owned by someone else")
