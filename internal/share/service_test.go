package share

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filelink/service/internal/link"
	"github.com/filelink/service/internal/preview"
	"github.com/filelink/service/internal/storage"
)

type fixture struct {
	svc       *Service
	links     *link.Service
	organizer *storage.Organizer
	root      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	organizer := storage.NewOrganizer(root, 0)
	require.NoError(t, organizer.EnsureTree())

	log := logrus.New()
	log.SetOutput(io.Discard)

	links := link.NewService(link.NewMemoryRepository())
	return &fixture{
		svc:       NewService(links, organizer, storage.NewLegacyLocator(root), log),
		links:     links,
		organizer: organizer,
		root:      root,
	}
}

// place uploads body and registers a link for it, returning the slug.
func (f *fixture) place(t *testing.T, bucket storage.Bucket, ns, filename, body, pass string, expiryDays int) string {
	t.Helper()
	p, err := f.organizer.Place(context.Background(), bucket, ns, filename, strings.NewReader(body))
	require.NoError(t, err)
	l, err := f.links.Create(context.Background(), link.CreateParams{
		Bucket:           bucket,
		OwnerNamespace:   ns,
		StoragePath:      p.RelPath,
		OriginalFilename: filename,
		SizeBytes:        p.Size,
		Password:         pass,
		ExpiryDays:       expiryDays,
	})
	require.NoError(t, err)
	return l.Slug
}

func TestFetchPDFDocument(t *testing.T) {
	f := newFixture(t)
	slug := f.place(t, storage.BucketShared, "anonymous", "report.pdf", "pdf-bytes", "", 0)

	res, err := f.svc.Fetch(context.Background(), slug, "")
	require.NoError(t, err)
	assert.Equal(t, preview.PolicyDocument, res.Policy)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, "report.pdf", res.DownloadName)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestFetchHTMLServedAsPlainText(t *testing.T) {
	f := newFixture(t)
	slug := f.place(t, storage.BucketSite, "alice", "index.html", "<h1>hi</h1>", "hunter2", 0)
	ctx := context.Background()

	_, err := f.svc.Fetch(ctx, slug, "")
	assert.ErrorIs(t, err, link.ErrPasswordRequired)

	res, err := f.svc.Fetch(ctx, slug, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, preview.PolicySource, res.Policy)
	assert.Equal(t, "text/plain; charset=utf-8", res.ContentType)
}

func TestFetchFallsBackToLegacyFlatRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A record whose file only ever existed in the legacy flat root.
	legacyPath := filepath.Join(f.root, "20190101_oldstyle.txt")
	require.NoError(t, os.WriteFile(legacyPath, []byte("legacy bytes"), 0o644))
	l, err := f.links.Create(ctx, link.CreateParams{
		Bucket:           storage.BucketShared,
		OwnerNamespace:   "anonymous",
		StoragePath:      "sharedfiles/anonymous/20190101_oldstyle.txt",
		OriginalFilename: "notes.txt",
		SizeBytes:        12,
	})
	require.NoError(t, err)

	res, err := f.svc.Fetch(ctx, l.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, legacyPath, res.Path)
	assert.Equal(t, preview.PolicySource, res.Policy)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "legacy bytes", string(data))
}

func TestFetchLegacyMissLooksLikeNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.links.Create(ctx, link.CreateParams{
		Bucket:           storage.BucketShared,
		OwnerNamespace:   "anonymous",
		StoragePath:      "sharedfiles/anonymous/vanished.bin",
		OriginalFilename: "vanished.bin",
		SizeBytes:        1,
	})
	require.NoError(t, err)

	_, err = f.svc.Fetch(ctx, l.Slug, "")
	assert.ErrorIs(t, err, link.ErrNotFound)
}

func TestFetchUnknownExtensionIsUnsupported(t *testing.T) {
	f := newFixture(t)
	slug := f.place(t, storage.BucketShared, "bob", "data.xyz", "???", "", 0)

	res, err := f.svc.Fetch(context.Background(), slug, "")
	require.NoError(t, err)
	assert.Equal(t, preview.PolicyUnsupported, res.Policy)
	assert.False(t, res.Policy.Previewable())
	assert.Equal(t, "application/octet-stream", res.ContentType)
}

func TestFetchExtensionlessFileClassifiedByMimeType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name        string
		mimeType    string
		policy      preview.Policy
		contentType string
	}{
		{"screenshot", "image/png", preview.PolicyImage, "image/png"},
		{"notes", "text/plain", preview.PolicySource, "text/plain; charset=utf-8"},
		{"recording", "audio/mpeg", preview.PolicyAudio, "audio/mpeg"},
	}
	for _, tc := range cases {
		p, err := f.organizer.Place(ctx, storage.BucketShared, "bob", tc.name, strings.NewReader("bytes"))
		require.NoError(t, err)
		l, err := f.links.Create(ctx, link.CreateParams{
			Bucket:           storage.BucketShared,
			OwnerNamespace:   "bob",
			StoragePath:      p.RelPath,
			OriginalFilename: tc.name,
			MimeType:         tc.mimeType,
			SizeBytes:        p.Size,
		})
		require.NoError(t, err)

		res, err := f.svc.Fetch(ctx, l.Slug, "")
		require.NoError(t, err)
		assert.Equal(t, tc.policy, res.Policy, tc.name)
		assert.Equal(t, tc.contentType, res.ContentType, tc.name)
	}
}

func TestFetchFilenameExtensionBeatsMimeType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// The filename's own suffix wins; the declared type is only a fallback.
	p, err := f.organizer.Place(ctx, storage.BucketShared, "bob", "poster.jpg", strings.NewReader("img"))
	require.NoError(t, err)
	l, err := f.links.Create(ctx, link.CreateParams{
		Bucket:           storage.BucketShared,
		OwnerNamespace:   "bob",
		StoragePath:      p.RelPath,
		OriginalFilename: "poster.jpg",
		MimeType:         "application/pdf",
		SizeBytes:        p.Size,
	})
	require.NoError(t, err)

	res, err := f.svc.Fetch(ctx, l.Slug, "")
	require.NoError(t, err)
	assert.Equal(t, preview.PolicyImage, res.Policy)
	assert.Equal(t, "image/jpeg", res.ContentType)
}

func TestFetchExtensionFallsBackToStoredName(t *testing.T) {
	f := newFixture(t)
	// Original name has no extension, but the stored name kept none either;
	// classification must come out unsupported rather than panicking.
	slug := f.place(t, storage.BucketShared, "bob", "README", "text", "", 0)

	res, err := f.svc.Fetch(context.Background(), slug, "")
	require.NoError(t, err)
	assert.Equal(t, preview.PolicyUnsupported, res.Policy)
}
