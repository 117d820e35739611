package storage

import (
	"regexp"
	"strings"
)

// AnonymousNamespace is the namespace used for uploads without an
// authenticated identity.
const AnonymousNamespace = "anonymous"

// Identity describes the uploader as known to the request layer. Both fields
// may be empty for anonymous uploads.
type Identity struct {
	Username string
	UserID   string
}

var disallowedNamespaceChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ResolveNamespace derives the per-uploader storage directory segment.
// Resolution order: sanitized username, then user_{id}, then "anonymous".
// The result is always safe to use as a single path segment.
func ResolveNamespace(id Identity) string {
	if ns := sanitizeSegment(id.Username); ns != "" {
		return ns
	}
	if id.UserID != "" {
		if ns := sanitizeSegment("user_" + id.UserID); ns != "" {
			return ns
		}
	}
	return AnonymousNamespace
}

// sanitizeSegment collapses runs of characters outside [A-Za-z0-9_-] into a
// single underscore and trims the result. An input that sanitizes to nothing
// but separators yields "".
func sanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = disallowedNamespaceChars.ReplaceAllString(s, "_")
	if strings.Trim(s, "_") == "" {
		return ""
	}
	return s
}
