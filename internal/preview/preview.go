// Package preview decides how a resolved file is presented to a viewer and
// which Content-Type header it is served with. The decision is a pure lookup
// on the lower-cased file extension.
package preview

import (
	"path/filepath"
	"strings"
)

// Policy is the presentation decision for a file.
type Policy string

const (
	// PolicyImage renders the bytes as an inline image.
	PolicyImage Policy = "image"
	// PolicyVideo streams the bytes through a video player.
	PolicyVideo Policy = "video"
	// PolicyAudio streams the bytes through an audio player.
	PolicyAudio Policy = "audio"
	// PolicyDocument embeds the bytes as a PDF document.
	PolicyDocument Policy = "document"
	// PolicySource shows the bytes as plain source text. This includes HTML:
	// uploaded markup is shown as code, never executed.
	PolicySource Policy = "source"
	// PolicyUnsupported means the file has no inline preview, download only.
	PolicyUnsupported Policy = "unsupported"
)

// Previewable reports whether the policy has an inline presentation.
func (p Policy) Previewable() bool { return p != PolicyUnsupported }

var policyByExt = map[string]Policy{
	// Images
	"jpg": PolicyImage, "jpeg": PolicyImage, "png": PolicyImage,
	"gif": PolicyImage, "bmp": PolicyImage, "svg": PolicyImage, "webp": PolicyImage,
	// Documents
	"pdf": PolicyDocument,
	// Audio
	"mp3": PolicyAudio, "wav": PolicyAudio, "ogg": PolicyAudio, "m4a": PolicyAudio,
	// Video
	"mp4": PolicyVideo, "webm": PolicyVideo, "avi": PolicyVideo, "mov": PolicyVideo,
	// Web and source files, shown as text
	"html": PolicySource, "htm": PolicySource, "css": PolicySource,
	"js": PolicySource, "json": PolicySource, "xml": PolicySource,
	"txt": PolicySource, "md": PolicySource, "py": PolicySource,
	"java": PolicySource, "cpp": PolicySource, "c": PolicySource,
	"h": PolicySource, "cs": PolicySource, "php": PolicySource,
	"rb": PolicySource, "go": PolicySource, "rs": PolicySource,
}

// Classify maps a file extension (lower-cased, no dot) to its preview policy.
// Unknown extensions are Unsupported.
func Classify(ext string) Policy {
	if p, ok := policyByExt[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return p
	}
	return PolicyUnsupported
}

var contentTypeByExt = map[string]string{
	"jpg": "image/jpeg", "jpeg": "image/jpeg", "png": "image/png",
	"gif": "image/gif", "bmp": "image/bmp", "svg": "image/svg+xml",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"mp3":  "audio/mpeg", "wav": "audio/wav", "ogg": "audio/ogg",
	"m4a": "audio/mp4",
	"mp4": "video/mp4", "webm": "video/webm", "avi": "video/x-msvideo",
	"mov": "video/quicktime",
	// html/htm are deliberately text/plain: show code, don't execute it.
	"html": "text/plain; charset=utf-8", "htm": "text/plain; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"js":   "application/javascript",
	"json": "application/json",
	"xml":  "text/xml; charset=utf-8",
}

// ContentType returns the header value used when serving a preview of the
// given extension. Source files without a dedicated type, and everything
// unknown, are served as plain text or a generic byte stream respectively.
func ContentType(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ct, ok := contentTypeByExt[ext]; ok {
		return ct
	}
	if Classify(ext) == PolicySource {
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

var extByMIME = map[string]string{
	"image/png": "png", "image/jpeg": "jpg", "image/jpg": "jpg",
	"image/gif": "gif", "image/bmp": "bmp", "image/svg+xml": "svg",
	"image/webp": "webp",
	"text/html":  "html", "text/css": "css",
	"text/javascript": "js", "application/javascript": "js",
	"application/json": "json", "application/xml": "xml", "text/xml": "xml",
	"text/plain":      "txt",
	"application/pdf": "pdf",
	"audio/mpeg":      "mp3", "audio/wav": "wav", "audio/ogg": "ogg",
	"audio/mp4": "m4a",
	"video/mp4": "mp4", "video/webm": "webm", "video/ogg": "ogg",
	"video/avi": "avi", "video/quicktime": "mov",
}

// Extension infers the extension used for classification: the filename's own
// suffix when present, otherwise a lookup from the declared MIME type. Returns
// "" when neither yields anything.
func Extension(filename, mimeType string) string {
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."); ext != "" {
		return ext
	}
	if mimeType == "" {
		return ""
	}
	mimeType = strings.ToLower(mimeType)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return extByMIME[mimeType]
}
