package share

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filelink/service/internal/link"
	"github.com/filelink/service/internal/response"
)

// Handler holds the public fetch endpoints under /r/{slug}.
type Handler struct {
	svc *Service
}

// NewHandler creates a new share Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// writeResolveError maps the resolve outcome ladder onto HTTP statuses. A
// wrong password never reveals whether the slug would resolve with another
// one, and a legacy miss is presented exactly like an unknown slug.
func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, link.ErrNotFound):
		response.NotFound(w, "link not found")
	case errors.Is(err, link.ErrExpired):
		response.Gone(w, "link expired")
	case errors.Is(err, link.ErrPasswordRequired):
		response.Unauthorized(w, "password required")
	case errors.Is(err, link.ErrPasswordMismatch):
		response.Forbidden(w, "invalid password")
	default:
		response.InternalError(w)
	}
}

type viewData struct {
	Slug              string `json:"slug"`
	Filename          string `json:"filename"`
	SizeBytes         int64  `json:"sizeBytes"`
	Preview           bool   `json:"preview"`
	PreviewType       string `json:"previewType,omitempty"`
	PasswordProtected bool   `json:"passwordProtected"`
	DownloadURL       string `json:"downloadUrl"`
	PreviewURL        string `json:"previewUrl,omitempty"`
}

// View godoc
//
//	@Summary		Resolve a shared link
//	@Description	Returns file metadata and the preview decision for a slug. Password-protected links require the password query parameter.
//	@Tags			share
//	@Produce		json
//	@Param			slug		path	string	true	"Link slug"
//	@Param			password	query	string	false	"Link password"
//	@Success		200	{object}	response.Envelope{data=viewData}
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		410	{object}	response.Envelope
//	@Router			/r/{slug} [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	res, err := h.svc.Fetch(r.Context(), slug, r.URL.Query().Get("password"))
	if err != nil {
		writeResolveError(w, err)
		return
	}

	data := viewData{
		Slug:              slug,
		Filename:          res.DownloadName,
		SizeBytes:         res.Link.SizeBytes,
		Preview:           res.Policy.Previewable(),
		PasswordProtected: res.Link.PasswordProtected(),
		DownloadURL:       fmt.Sprintf("/r/%s/download", slug),
	}
	if res.Policy.Previewable() {
		data.PreviewType = string(res.Policy)
		data.PreviewURL = fmt.Sprintf("/r/%s/preview", slug)
	}
	response.OK(w, data)
}

// Download godoc
//
//	@Summary		Download a shared file
//	@Description	Streams the file as an attachment under its original filename.
//	@Tags			share
//	@Produce		octet-stream
//	@Param			slug		path	string	true	"Link slug"
//	@Param			password	query	string	false	"Link password"
//	@Success		200	{file}		file
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		410	{object}	response.Envelope
//	@Router			/r/{slug}/download [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	res, err := h.svc.Fetch(r.Context(), slug, r.URL.Query().Get("password"))
	if err != nil {
		writeResolveError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.DownloadName))
	http.ServeFile(w, r, res.Path)
}

// Preview godoc
//
//	@Summary		Preview a shared file inline
//	@Description	Serves the bytes with the classifier's content type. HTML files are served as plain text, never as renderable markup.
//	@Tags			share
//	@Param			slug		path	string	true	"Link slug"
//	@Param			password	query	string	false	"Link password"
//	@Success		200	{file}		file
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		410	{object}	response.Envelope
//	@Router			/r/{slug}/preview [get]
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	res, err := h.svc.Fetch(r.Context(), slug, r.URL.Query().Get("password"))
	if err != nil {
		writeResolveError(w, err)
		return
	}
	if !res.Policy.Previewable() {
		response.NotFound(w, "no preview available for this file type")
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, res.Path)
}

type infoData struct {
	Slug              string `json:"slug"`
	Filename          string `json:"filename"`
	SizeBytes         int64  `json:"sizeBytes"`
	PasswordProtected bool   `json:"passwordProtected"`
	ExpiresAt         string `json:"expiresAt,omitempty"`
	CreatedAt         string `json:"createdAt"`
}

// Info godoc
//
//	@Summary		Link metadata
//	@Description	Returns public metadata for a slug without requiring the password. Never reveals the storage location.
//	@Tags			share
//	@Produce		json
//	@Param			slug	path	string	true	"Link slug"
//	@Success		200	{object}	response.Envelope{data=infoData}
//	@Failure		404	{object}	response.Envelope
//	@Router			/r/{slug}/info [get]
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	l, err := h.svc.Describe(r.Context(), slug)
	if err != nil {
		if errors.Is(err, link.ErrNotFound) {
			response.NotFound(w, "link not found")
			return
		}
		response.InternalError(w)
		return
	}

	data := infoData{
		Slug:              l.Slug,
		Filename:          l.OriginalFilename,
		SizeBytes:         l.SizeBytes,
		PasswordProtected: l.PasswordProtected(),
		CreatedAt:         l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if l.ExpiresAt != nil {
		data.ExpiresAt = l.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
	}
	response.OK(w, data)
}
