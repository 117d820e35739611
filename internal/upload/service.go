// Package upload implements the upload boundary: placing a byte stream into
// organized storage and minting a shareable link for it.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/filelink/service/internal/link"
	"github.com/filelink/service/internal/storage"
	"github.com/filelink/service/internal/user"
)

// ErrQuotaExceeded is returned when the upload would push an account past its
// storage quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Params describes one upload request.
type Params struct {
	Bucket     storage.Bucket
	Identity   storage.Identity
	Filename   string
	MimeType   string // Content-Type declared for the part, may be empty
	Body       io.Reader
	Password   string // optional link password
	ExpiryDays int    // optional; <= 0 means permanent
}

// Result is returned for a successful upload.
type Result struct {
	Link           *link.Link
	URL            string
	DirectDownload string
}

// Service wires the namespace resolver, the path organizer, and the link
// registry behind the upload boundary.
type Service struct {
	links     *link.Service
	organizer *storage.Organizer
	users     *user.Service
	baseURL   string
	log       *logrus.Logger
}

// NewService creates an upload Service. users may be nil when accounts are
// not wired in (anonymous-only deployments and tests).
func NewService(links *link.Service, organizer *storage.Organizer, users *user.Service, baseURL string, log *logrus.Logger) *Service {
	return &Service{links: links, organizer: organizer, users: users, baseURL: baseURL, log: log}
}

// Upload places the byte stream and registers a link for it. The file is only
// visible in storage once complete, and no registry record is created unless
// the placement succeeded; conversely a failed registry insert removes the
// placed file so storage and registry never drift apart.
func (s *Service) Upload(ctx context.Context, p Params) (*Result, error) {
	ns := storage.ResolveNamespace(p.Identity)

	var account *user.User
	if s.users != nil && p.Identity.UserID != "" {
		u, err := s.users.GetByID(ctx, p.Identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("load uploader account: %w", err)
		}
		account = u
	}

	placement, err := s.organizer.Place(ctx, p.Bucket, ns, p.Filename, p.Body)
	if err != nil {
		return nil, err
	}

	if account != nil && !account.CanStore(placement.Size) {
		s.undoPlacement(placement.RelPath)
		return nil, ErrQuotaExceeded
	}

	l, err := s.links.Create(ctx, link.CreateParams{
		Bucket:           p.Bucket,
		OwnerNamespace:   ns,
		StoragePath:      placement.RelPath,
		OriginalFilename: displayName(p.Filename),
		MimeType:         p.MimeType,
		SizeBytes:        placement.Size,
		Password:         p.Password,
		ExpiryDays:       p.ExpiryDays,
	})
	if err != nil {
		s.undoPlacement(placement.RelPath)
		return nil, err
	}

	if account != nil {
		if err := s.users.ChargeStorage(ctx, account.ID, placement.Size); err != nil {
			// The upload itself succeeded; a stale quota counter is repairable.
			s.log.WithError(err).WithField("user", account.ID).Warn("could not update storage quota")
		}
	}

	s.log.WithFields(logrus.Fields{
		"slug":      l.Slug,
		"namespace": ns,
		"bucket":    string(p.Bucket),
		"size":      placement.Size,
	}).Info("file uploaded")

	return &Result{
		Link:           l,
		URL:            fmt.Sprintf("%s/r/%s", s.baseURL, l.Slug),
		DirectDownload: fmt.Sprintf("%s/r/%s/download", s.baseURL, l.Slug),
	}, nil
}

func (s *Service) undoPlacement(rel string) {
	if err := s.organizer.Remove(rel); err != nil {
		s.log.WithError(err).WithField("path", rel).Warn("could not remove orphaned upload")
	}
}

// displayName reduces the client-supplied filename to a safe display string.
// Browsers on Windows send full paths with backslashes; treat both separators.
func displayName(filename string) string {
	name := filepath.Base(filepath.FromSlash(strings.ReplaceAll(filename, `\`, "/")))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "unnamed_file"
	}
	return name
}
