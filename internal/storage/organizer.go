package storage

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// namePlacementAttempts bounds the retries when publishing a stored filename.
// A fresh 128-bit token per attempt makes exhaustion effectively impossible;
// the bound exists so a broken filesystem fails loudly instead of looping.
const namePlacementAttempts = 5

// Placement describes a successfully stored file.
type Placement struct {
	// RelPath is "{bucket}/{namespace}/{storedName}", relative to the root.
	RelPath    string
	StoredName string
	Size       int64
}

// Organizer places uploaded byte streams into the organized storage tree.
// Once Place returns, the file at the returned path is complete and is never
// edited in place.
type Organizer struct {
	root     string
	maxBytes int64

	mu       sync.Mutex
	dirLocks map[string]*sync.Mutex
}

// NewOrganizer creates an Organizer rooted at root. maxBytes caps a single
// upload; zero or negative means no cap.
func NewOrganizer(root string, maxBytes int64) *Organizer {
	return &Organizer{
		root:     root,
		maxBytes: maxBytes,
		dirLocks: make(map[string]*sync.Mutex),
	}
}

// Root returns the storage root directory.
func (o *Organizer) Root() string { return o.root }

// Abs resolves a relative storage path against the root.
func (o *Organizer) Abs(rel string) string {
	return filepath.Join(o.root, filepath.FromSlash(rel))
}

// EnsureTree creates the top-level bucket directories. Called once at startup;
// namespace directories are created lazily on first upload.
func (o *Organizer) EnsureTree() error {
	for _, b := range Buckets {
		if err := os.MkdirAll(filepath.Join(o.root, string(b)), 0o755); err != nil {
			return fmt.Errorf("create bucket dir %s: %w", b, err)
		}
	}
	return nil
}

// Place streams r into "{bucket}/{namespace}/" under a freshly minted unique
// filename that keeps the original extension. The bytes are written to a
// temporary file in the target directory and published with a link that fails
// if the final name already exists, so a partially written or colliding file
// is never visible under the final name. On any error, including context
// cancellation mid-stream, the temporary file is removed and nothing is
// published.
func (o *Organizer) Place(ctx context.Context, bucket Bucket, namespace, originalFilename string, r io.Reader) (*Placement, error) {
	if _, err := ParseBucket(string(bucket)); err != nil {
		return nil, err
	}
	if namespace == "" || disallowedNamespaceChars.MatchString(namespace) {
		return nil, fmt.Errorf("invalid namespace %q", namespace)
	}

	dir, err := o.ensureDir(bucket, namespace)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	published := false
	defer func() {
		if !published {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	size, err := o.copyBody(ctx, tmp, r)
	if err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	ext := storedExtension(originalFilename)
	for attempt := 0; attempt < namePlacementAttempts; attempt++ {
		name := newStoredName(ext)
		final := filepath.Join(dir, name)
		// Hard-link the temp file to the final name: succeeds atomically and
		// refuses to clobber an existing file, unlike rename.
		if err := os.Link(tmpName, final); err != nil {
			if os.IsExist(err) {
				continue
			}
			return nil, fmt.Errorf("publish %s: %w", name, err)
		}
		published = true
		_ = os.Remove(tmpName)
		return &Placement{
			RelPath:    strings.Join([]string{string(bucket), namespace, name}, "/"),
			StoredName: name,
			Size:       size,
		}, nil
	}
	return nil, ErrNameExhausted
}

// Remove deletes a previously placed file. Used to undo an upload whose
// registry record could not be created.
func (o *Organizer) Remove(rel string) error {
	err := os.Remove(o.Abs(rel))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ensureDir creates "{root}/{bucket}/{namespace}" if absent. A per-directory
// mutex serializes first-time creators for the same namespace; creation itself
// is idempotent, so losing the race to another process is not an error.
func (o *Organizer) ensureDir(bucket Bucket, namespace string) (string, error) {
	dir := filepath.Join(o.root, string(bucket), namespace)

	o.mu.Lock()
	lock, ok := o.dirLocks[dir]
	if !ok {
		lock = &sync.Mutex{}
		o.dirLocks[dir] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create namespace dir: %w", err)
	}
	return dir, nil
}

// copyBody streams r into w, honoring the size cap and context cancellation.
func (o *Organizer) copyBody(ctx context.Context, w io.Writer, r io.Reader) (int64, error) {
	limit := o.maxBytes
	if limit <= 0 {
		limit = 1<<63 - 1
	}
	var written int64
	buf := make([]byte, 64*1024)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := r.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > limit {
				return written, ErrTooLarge
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("write upload: %w", werr)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("read upload: %w", rerr)
		}
	}
}

// newStoredName mints a stored filename from a timestamp and a random 128-bit
// token, keeping only the original extension so the original name never leaks
// into the storage tree.
func newStoredName(ext string) string {
	id := uuid.New()
	token := hex.EncodeToString(id[:])
	return time.Now().UTC().Format("20060102_150405") + "_" + token + ext
}

var disallowedExt = regexp.MustCompile(`[^a-z0-9.]`)

// storedExtension extracts a lower-cased extension (with dot) safe to append
// to a stored name. Anything but the final dot-suffix of the base name is
// discarded.
func storedExtension(filename string) string {
	base := filepath.Base(filepath.FromSlash(filename))
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "." || disallowedExt.MatchString(ext) {
		return ""
	}
	return ext
}
