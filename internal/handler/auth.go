package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shoply/shoply/internal/auth"
	"github.com/shoply/shoply/internal/model"
	"github.com/shoply/shoply/internal/repository"
	"github.com/shoply/shoply/internal/service"
)

// UserGetter is the slice of the repository the role endpoint needs.
type UserGetter interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler handles registration, login and role lookup.
type AuthHandler struct {
	logger  *slog.Logger
	service *service.AuthService
	users   UserGetter
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(logger *slog.Logger, svc *service.AuthService, users UserGetter) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		service: svc,
		users:   users,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, service.ErrInvalidRole):
			writeError(w, http.StatusBadRequest, "Invalid role")
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already registered")
		default:
			h.logger.Error("failed to register user", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			writeError(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			// Unknown email and wrong password are reported identically.
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		default:
			h.logger.Error("failed to log in user", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Role handles GET /auth/role. It reports the caller's current role from the
// store, not the one frozen into the token, so a role change is visible
// before the old token expires.
func (h *AuthHandler) Role(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusForbidden, "Token required")
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to fetch role", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.Role{"role": user.Role})
}
