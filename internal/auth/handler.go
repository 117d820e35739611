package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/filelink/service/internal/response"
)

// emailRegex is a permissive sanity check, not full RFC validation.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// usernameRegex restricts usernames to characters that are safe as a storage
// namespace segment.
var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{3,32}$`)

// Handler holds HTTP handlers for auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new auth Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"    example:"alice@example.com"`
	Username string `json:"username" example:"alice"`
	FullName string `json:"fullName" example:"Alice Doe"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type loginRequest struct {
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"hunter2hunter2"`
}

type tokenData struct {
	Token string      `json:"token" example:"eyJhbGci..."`
	User  interface{} `json:"user"`
}

// Register godoc
//
//	@Summary		Register new user
//	@Description	Create a new account. The username becomes the storage namespace for the user's uploads. Issues a JWT token on success.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerRequest	true	"Registration details"
//	@Success		201		{object}	response.Envelope{data=tokenData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !emailRegex.MatchString(req.Email) {
		response.BadRequest(w, "invalid email address")
		return
	}
	if !usernameRegex.MatchString(req.Username) {
		response.BadRequest(w, "username must be 3-32 characters from [A-Za-z0-9_-]")
		return
	}
	if len(req.Password) < 6 {
		response.BadRequest(w, "password must be at least 6 characters long")
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Email, req.Username, req.FullName, req.Password)
	if errors.Is(err, ErrEmailTaken) {
		response.Conflict(w, "email or username already registered")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.Created(w, tokenData{Token: token, User: u})
}

// Login godoc
//
//	@Summary		Login
//	@Description	Verify email and password, returning a JWT token.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=tokenData}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "email and password are required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.Unauthorized(w, "invalid email or password")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, tokenData{Token: token, User: u})
}
