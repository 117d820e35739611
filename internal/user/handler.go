package user

import (
	"net/http"

	"github.com/filelink/service/internal/middleware"
	"github.com/filelink/service/internal/response"
	"github.com/filelink/service/internal/storage"
)

// Handler holds the account HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a user Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// profileData is the account view returned to its owner: the record plus the
// storage namespace uploads land in and the quota still available.
type profileData struct {
	*User
	Namespace        string `json:"namespace"`
	StorageRemaining int64  `json:"storageRemaining"`
}

// GetMe godoc
//
//	@Summary		Get current account
//	@Description	Returns the authenticated account: profile, upload namespace, and storage quota usage.
//	@Tags			users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	response.Envelope{data=profileData}
//	@Failure		401	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/users/me [get]
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetByID(r.Context(), userID)
	if err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "user not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, profileData{
		User:             u,
		Namespace:        storage.ResolveNamespace(storage.Identity{Username: u.Username, UserID: u.ID}),
		StorageRemaining: u.StorageRemaining(),
	})
}
