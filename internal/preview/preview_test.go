package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		ext  string
		want Policy
	}{
		{"png", PolicyImage},
		{"JPEG", PolicyImage},
		{".gif", PolicyImage},
		{"pdf", PolicyDocument},
		{"mp3", PolicyAudio},
		{"ogg", PolicyAudio},
		{"mp4", PolicyVideo},
		{"mov", PolicyVideo},
		{"html", PolicySource},
		{"htm", PolicySource},
		{"go", PolicySource},
		{"md", PolicySource},
		{"exe", PolicyUnsupported},
		{"docx", PolicyUnsupported},
		{"", PolicyUnsupported},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.ext), "ext %q", tt.ext)
	}
}

func TestPreviewable(t *testing.T) {
	assert.True(t, PolicyImage.Previewable())
	assert.True(t, PolicySource.Previewable())
	assert.False(t, PolicyUnsupported.Previewable())
}

func TestContentTypeNeverServesMarkupForHTML(t *testing.T) {
	for _, ext := range []string{"html", "htm", "HTML", ".htm"} {
		ct := ContentType(ext)
		assert.Equal(t, "text/plain; charset=utf-8", ct, "ext %q", ext)
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		ext, want string
	}{
		{"pdf", "application/pdf"},
		{"png", "image/png"},
		{"css", "text/css; charset=utf-8"},
		{"js", "application/javascript"},
		{"json", "application/json"},
		{"xml", "text/xml; charset=utf-8"},
		{"go", "text/plain; charset=utf-8"},
		{"md", "text/plain; charset=utf-8"},
		{"zip", "application/octet-stream"},
		{"", "application/octet-stream"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentType(tt.ext), "ext %q", tt.ext)
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		filename, mimeType, want string
	}{
		{"report.pdf", "", "pdf"},
		{"INDEX.HTML", "application/octet-stream", "html"},
		{"noext", "image/png", "png"},
		{"noext", "text/plain; charset=utf-8", "txt"},
		{"noext", "application/x-mystery", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Extension(tt.filename, tt.mimeType), "%q / %q", tt.filename, tt.mimeType)
	}
}
