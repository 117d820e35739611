package upload

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filelink/service/internal/link"
	"github.com/filelink/service/internal/storage"
)

func newTestService(t *testing.T, maxBytes int64) (*Service, *storage.Organizer, *link.Service) {
	t.Helper()
	organizer := storage.NewOrganizer(t.TempDir(), maxBytes)
	require.NoError(t, organizer.EnsureTree())

	log := logrus.New()
	log.SetOutput(io.Discard)

	links := link.NewService(link.NewMemoryRepository())
	return NewService(links, organizer, nil, "http://localhost:8080", log), organizer, links
}

func TestUploadAnonymous(t *testing.T) {
	svc, organizer, links := newTestService(t, 0)
	ctx := context.Background()

	result, err := svc.Upload(ctx, Params{
		Bucket:   storage.BucketShared,
		Filename: "report.pdf",
		MimeType: "application/pdf",
		Body:     strings.NewReader("pdf-bytes"),
	})
	require.NoError(t, err)

	assert.Equal(t, "anonymous", result.Link.OwnerNamespace)
	assert.Equal(t, "report.pdf", result.Link.OriginalFilename)
	assert.Equal(t, "application/pdf", result.Link.MimeType)
	assert.Equal(t, "http://localhost:8080/r/"+result.Link.Slug, result.URL)
	assert.Contains(t, result.DirectDownload, "/download")

	// The placed file round-trips through the registry.
	resolved, err := links.Resolve(ctx, result.Link.Slug, "")
	require.NoError(t, err)
	data, err := os.ReadFile(organizer.Abs(resolved.StoragePath))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestUploadUsesUsernameNamespace(t *testing.T) {
	svc, _, _ := newTestService(t, 0)

	result, err := svc.Upload(context.Background(), Params{
		Bucket:   storage.BucketSite,
		Identity: storage.Identity{Username: "alice", UserID: "ignored-here"},
		Filename: "index.html",
		Body:     strings.NewReader("<h1>hi</h1>"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Link.OwnerNamespace)
	assert.True(t, strings.HasPrefix(result.Link.StoragePath, "websitefiles/alice/"))
}

func TestUploadPasswordAndExpiry(t *testing.T) {
	svc, _, links := newTestService(t, 0)
	ctx := context.Background()

	result, err := svc.Upload(ctx, Params{
		Bucket:     storage.BucketShared,
		Filename:   "secret.txt",
		Body:       strings.NewReader("s3cret"),
		Password:   "hunter2",
		ExpiryDays: 7,
	})
	require.NoError(t, err)
	assert.True(t, result.Link.PasswordProtected())
	require.NotNil(t, result.Link.ExpiresAt)

	_, err = links.Resolve(ctx, result.Link.Slug, "")
	assert.ErrorIs(t, err, link.ErrPasswordRequired)
	_, err = links.Resolve(ctx, result.Link.Slug, "hunter2")
	assert.NoError(t, err)
}

func TestUploadTooLargeLeavesNothingBehind(t *testing.T) {
	svc, organizer, links := newTestService(t, 8)
	ctx := context.Background()

	_, err := svc.Upload(ctx, Params{
		Bucket:   storage.BucketShared,
		Filename: "big.bin",
		Body:     strings.NewReader("way more than eight bytes"),
	})
	require.ErrorIs(t, err, storage.ErrTooLarge)

	entries, err := os.ReadDir(organizer.Abs("sharedfiles/anonymous"))
	if err == nil {
		assert.Empty(t, entries)
	} else {
		assert.True(t, os.IsNotExist(err))
	}

	stats, err := links.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalLinks)
}

func TestUploadRemovesFileWhenRegistryFails(t *testing.T) {
	organizer := storage.NewOrganizer(t.TempDir(), 0)
	require.NoError(t, organizer.EnsureTree())
	log := logrus.New()
	log.SetOutput(io.Discard)

	links := link.NewService(&failingRepo{})
	svc := NewService(links, organizer, nil, "http://localhost:8080", log)

	_, err := svc.Upload(context.Background(), Params{
		Bucket:   storage.BucketShared,
		Filename: "doomed.txt",
		Body:     strings.NewReader("bytes"),
	})
	require.Error(t, err)

	entries, readErr := os.ReadDir(organizer.Abs("sharedfiles/anonymous"))
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.pdf", "report.pdf"},
		{"dir/inner/name.txt", "name.txt"},
		{"..\\windows\\path.doc", "path.doc"},
		{"", "unnamed_file"},
		{".", "unnamed_file"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displayName(tt.in), "input %q", tt.in)
	}
}

// failingRepo rejects every insert, simulating a registry outage.
type failingRepo struct{}

func (r *failingRepo) Insert(context.Context, *link.Link) error {
	return context.DeadlineExceeded
}

func (r *failingRepo) GetBySlug(context.Context, string) (*link.Link, error) {
	return nil, link.ErrNotFound
}

func (r *failingRepo) Deactivate(context.Context, string) error {
	return link.ErrNotFound
}

func (r *failingRepo) Stats(context.Context) (*link.Stats, error) {
	return &link.Stats{}, nil
}
