package link

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filelink/service/internal/middleware"
	"github.com/filelink/service/internal/response"
	"github.com/filelink/service/internal/storage"
)

// Handler holds the authenticated link-management endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new link Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Deactivate godoc
//
//	@Summary		Deactivate a link
//	@Description	Turns the link off without deleting the stored file. Only the owner can deactivate a link; an anonymous upload has no owner and cannot be deactivated through the API.
//	@Tags			links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			slug	path	string	true	"Link slug"
//	@Success		200	{object}	response.Envelope
//	@Failure		401	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/links/{slug} [delete]
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	username, _ := r.Context().Value(middleware.UsernameKey).(string)
	userID, _ := r.Context().Value(middleware.UserIDKey).(string)
	if userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}
	ns := storage.ResolveNamespace(storage.Identity{Username: username, UserID: userID})

	slug := chi.URLParam(r, "slug")
	err := h.svc.Deactivate(r.Context(), slug, ns)
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "link not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "you do not own this link")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, map[string]string{"slug": slug, "status": "deactivated"})
	}
}

// GetStats godoc
//
//	@Summary		Registry statistics
//	@Description	Returns platform-wide counters: total links, active links, stored bytes.
//	@Tags			links
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=Stats}
//	@Failure		500	{object}	response.Envelope
//	@Router			/stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}
