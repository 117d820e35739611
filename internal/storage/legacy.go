package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LegacyLocator finds files by stored name when the path recorded for them no
// longer resolves, covering records written before the organized tree (and
// files moved by hand since). It is a best-effort compatibility shim: a miss
// means NotFound, nothing more.
type LegacyLocator struct {
	root string
}

// NewLegacyLocator creates a locator over the same root as the organizer.
// The legacy flat layout lived directly in the root, next to the bucket dirs.
func NewLegacyLocator(root string) *LegacyLocator {
	return &LegacyLocator{root: root}
}

// Locate searches for name, first across every bucket/namespace directory of
// the organized tree, then in the legacy flat root. Among organized matches
// the most recently modified file wins, since legacy-era data was never
// disambiguated by namespace. Returns the absolute path and whether a file
// was found.
func (l *LegacyLocator) Locate(name string) (string, bool) {
	name = filepath.Base(filepath.FromSlash(name))
	if name == "" || name == "." || strings.HasPrefix(name, ".") {
		return "", false
	}

	if path, ok := l.newestOrganizedMatch(name); ok {
		return path, true
	}

	flat := filepath.Join(l.root, name)
	if fi, err := os.Stat(flat); err == nil && fi.Mode().IsRegular() {
		return flat, true
	}
	return "", false
}

func (l *LegacyLocator) newestOrganizedMatch(name string) (string, bool) {
	var (
		best     string
		bestTime time.Time
	)
	for _, bucket := range Buckets {
		bucketDir := filepath.Join(l.root, string(bucket))
		entries, err := os.ReadDir(bucketDir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			candidate := filepath.Join(bucketDir, entry.Name(), name)
			fi, err := os.Stat(candidate)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			if best == "" || fi.ModTime().After(bestTime) {
				best = candidate
				bestTime = fi.ModTime()
			}
		}
	}
	return best, best != ""
}
