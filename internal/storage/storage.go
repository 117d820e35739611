// Package storage owns the on-disk layout of uploaded files: the organized
// bucket/namespace tree, unique stored filenames, and the legacy flat-layout
// fallback kept for files written before the tree existed.
package storage

import (
	"errors"
	"fmt"
)

// Bucket is a top-level storage category.
type Bucket string

const (
	// BucketShared holds files uploaded for direct link sharing.
	BucketShared Bucket = "sharedfiles"
	// BucketSite holds files belonging to user site projects.
	BucketSite Bucket = "websitefiles"
)

// Buckets lists every known bucket in a fixed order.
var Buckets = []Bucket{BucketShared, BucketSite}

// ErrTooLarge is returned when an upload exceeds the configured size limit.
var ErrTooLarge = errors.New("file exceeds maximum allowed size")

// ErrNameExhausted is returned when the retry budget for minting a unique
// stored filename runs out.
var ErrNameExhausted = errors.New("could not generate a unique stored filename")

// ParseBucket validates a bucket name supplied by a caller.
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(s) {
	case BucketShared, BucketSite:
		return Bucket(s), nil
	}
	return "", fmt.Errorf("unknown bucket %q", s)
}
