// Package share resolves public slugs back to bytes and a preview decision.
package share

import (
	"context"
	"os"
	"path"

	"github.com/sirupsen/logrus"

	"github.com/filelink/service/internal/link"
	"github.com/filelink/service/internal/preview"
	"github.com/filelink/service/internal/storage"
)

// Resolved is everything needed to serve a fetched file.
type Resolved struct {
	Link         *link.Link
	Path         string // absolute filesystem path
	Policy       preview.Policy
	ContentType  string // header used for inline previews
	DownloadName string // suggested filename for attachment downloads
}

// Service ties the registry, the storage tree, and the preview classifier
// together behind the fetch boundary.
type Service struct {
	links     *link.Service
	organizer *storage.Organizer
	legacy    *storage.LegacyLocator
	log       *logrus.Logger
}

// NewService creates a share Service.
func NewService(links *link.Service, organizer *storage.Organizer, legacy *storage.LegacyLocator, log *logrus.Logger) *Service {
	return &Service{links: links, organizer: organizer, legacy: legacy, log: log}
}

// Fetch resolves slug (enforcing expiry and password), locates the stored
// bytes, and decides the preview policy. When the recorded path does not
// resolve to a file, the legacy locator is consulted; a legacy miss surfaces
// as link.ErrNotFound, indistinguishable from an unknown slug.
func (s *Service) Fetch(ctx context.Context, slug, pass string) (*Resolved, error) {
	l, err := s.links.Resolve(ctx, slug, pass)
	if err != nil {
		return nil, err
	}

	abs := s.organizer.Abs(l.StoragePath)
	if _, statErr := os.Stat(abs); statErr != nil {
		found, ok := s.legacy.Locate(path.Base(l.StoragePath))
		if !ok {
			s.log.WithFields(logrus.Fields{
				"slug": slug,
				"path": l.StoragePath,
			}).Debug("recorded path missing and legacy lookup missed")
			return nil, link.ErrNotFound
		}
		abs = found
	}

	ext := preview.Extension(l.OriginalFilename, l.MimeType)
	if ext == "" {
		ext = preview.Extension(l.StoragePath, "")
	}

	name := l.OriginalFilename
	if name == "" {
		name = path.Base(l.StoragePath)
	}

	return &Resolved{
		Link:         l,
		Path:         abs,
		Policy:       preview.Classify(ext),
		ContentType:  preview.ContentType(ext),
		DownloadName: name,
	}, nil
}

// Describe returns public link metadata without password or expiry gating.
func (s *Service) Describe(ctx context.Context, slug string) (*link.Link, error) {
	return s.links.Describe(ctx, slug)
}
