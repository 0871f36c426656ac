package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/service"
)

// AuthHandler handles authentication and profile HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: {"accessToken":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password.")
			return
		}
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponseDTO(res))
}

// HandleRegister processes a JSON registration request. A successful
// registration signs the new user in.
// POST /api/auth/register
// Request:  {"name":"...","email":"...","password":"..."}
// Response: {"accessToken":"...","user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeAuthError(w, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponseDTO(res))
}

// HandleGetProfile returns the authenticated user.
// GET /api/auth/profile
func (h *AuthHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleUpdateProfile applies a partial profile update.
// PATCH /api/auth/profile
// Request:  {"name":"...","email":"...","avatar":"..."} (all optional)
// Response: the full updated user
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req profileRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, err := h.auth.UpdateProfile(r.Context(), user.ID, req.toDomain())
	if err != nil {
		writeAuthError(w, "update profile", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

func writeAuthError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "An account with that email already exists.")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusUnprocessableEntity, validationText(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
	}
}
