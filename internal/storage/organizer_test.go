package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceWritesFileUnderBucketAndNamespace(t *testing.T) {
	o := NewOrganizer(t.TempDir(), 0)

	p, err := o.Place(context.Background(), BucketShared, "alice", "report.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, int64(len("pdf-bytes")), p.Size)
	assert.True(t, strings.HasPrefix(p.RelPath, "sharedfiles/alice/"), p.RelPath)
	assert.True(t, strings.HasSuffix(p.RelPath, ".pdf"), p.RelPath)

	data, err := os.ReadFile(o.Abs(p.RelPath))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))
}

func TestPlaceRejectsBadInput(t *testing.T) {
	o := NewOrganizer(t.TempDir(), 0)
	ctx := context.Background()

	_, err := o.Place(ctx, Bucket("attachments"), "alice", "a.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = o.Place(ctx, BucketShared, "../alice", "a.txt", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = o.Place(ctx, BucketShared, "", "a.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestPlaceEnforcesSizeLimit(t *testing.T) {
	root := t.TempDir()
	o := NewOrganizer(root, 10)

	_, err := o.Place(context.Background(), BucketShared, "bob", "big.bin", bytes.NewReader(make([]byte, 11)))
	require.ErrorIs(t, err, ErrTooLarge)

	assertNoStrayFiles(t, filepath.Join(root, "sharedfiles", "bob"))
}

func TestPlaceCleansUpOnCancel(t *testing.T) {
	root := t.TempDir()
	o := NewOrganizer(root, 0)

	ctx, cancel := context.WithCancel(context.Background())
	r := &cancelAfterReader{cancel: cancel, data: make([]byte, 256*1024)}

	_, err := o.Place(ctx, BucketShared, "bob", "partial.bin", r)
	require.ErrorIs(t, err, context.Canceled)

	assertNoStrayFiles(t, filepath.Join(root, "sharedfiles", "bob"))
}

func TestPlaceConcurrentSameNamespace(t *testing.T) {
	const n = 20
	root := t.TempDir()
	o := NewOrganizer(root, 0)

	var wg sync.WaitGroup
	paths := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf("payload-%03d", i)
			p, err := o.Place(context.Background(), BucketShared, "crowd", "file.txt", strings.NewReader(body))
			errs[i] = err
			if err == nil {
				paths[i] = p.RelPath
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[paths[i]], "duplicate path %s", paths[i])
		seen[paths[i]] = true

		data, err := os.ReadFile(o.Abs(paths[i]))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("payload-%03d", i), string(data))
	}

	entries, err := os.ReadDir(filepath.Join(root, "sharedfiles", "crowd"))
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestEnsureDirIsIdempotent(t *testing.T) {
	o := NewOrganizer(t.TempDir(), 0)

	first, err := o.ensureDir(BucketSite, "alice")
	require.NoError(t, err)
	second, err := o.ensureDir(BucketSite, "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	fi, err := os.Stat(first)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}

func TestEnsureTreeCreatesBuckets(t *testing.T) {
	root := t.TempDir()
	o := NewOrganizer(root, 0)
	require.NoError(t, o.EnsureTree())

	for _, b := range Buckets {
		fi, err := os.Stat(filepath.Join(root, string(b)))
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestStoredExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.PDF", ".pdf"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{"trailing.", ""},
		{"../sneaky/../../name.txt", ".txt"},
		{"weird.t x t", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, storedExtension(tt.in), "input %q", tt.in)
	}
}

// assertNoStrayFiles fails if dir contains any entries (leftover temp files).
func assertNoStrayFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// cancelAfterReader cancels its context after the first read, then keeps
// returning data so Place sees the cancellation mid-stream.
type cancelAfterReader struct {
	cancel context.CancelFunc
	data   []byte
	calls  int
}

func (r *cancelAfterReader) Read(p []byte) (int, error) {
	r.calls++
	if r.calls > 1 {
		r.cancel()
	}
	n := copy(p, r.data)
	if n == 0 {
		return 0, io.EOF
	}
	r.data = r.data[n:]
	return n, nil
}
