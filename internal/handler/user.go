package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shoply/shoply/internal/model"
	"github.com/shoply/shoply/internal/repository"
)

// UserStore is the slice of the repository the user admin endpoints need.
type UserStore interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserHandler handles the admin-only user management endpoints.
type UserHandler struct {
	logger *slog.Logger
	users  UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(logger *slog.Logger, users UserStore) *UserHandler {
	return &UserHandler{
		logger: logger,
		users:  users,
	}
}

// List handles GET /users.
// model.User never serializes the password hash, so rows go out as-is.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if users == nil {
		users = []*model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("failed to delete user", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("user deleted", slog.String("user_id", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
