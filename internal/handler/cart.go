package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shoply/shoply/internal/auth"
	"github.com/shoply/shoply/internal/model"
	"github.com/shoply/shoply/internal/repository"
)

// CartStore is the slice of the repository the cart endpoints need.
type CartStore interface {
	AddCartItem(ctx context.Context, item *model.CartItem) error
	ListCartItems(ctx context.Context, userID string) ([]*model.CartItemDetail, error)
	DeleteCartItem(ctx context.Context, id, userID string) error
}

// CartHandler handles the per-account shopping cart endpoints.
// All operations are scoped to the account asserted by the verified token.
type CartHandler struct {
	logger *slog.Logger
	cart   CartStore
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(logger *slog.Logger, cart CartStore) *CartHandler {
	return &CartHandler{
		logger: logger,
		cart:   cart,
	}
}

// Add handles POST /api/cart.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusForbidden, "Token required")
		return
	}

	var req model.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "Product ID and a positive quantity are required")
		return
	}

	item := &model.CartItem{
		ID:        ulid.Make().String(),
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		CreatedAt: time.Now(),
	}

	if err := h.cart.AddCartItem(r.Context(), item); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to add cart item", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("cart item added",
		slog.String("user_id", userID),
		slog.String("product_id", req.ProductID),
	)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
}

// List handles GET /api/cart.
func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusForbidden, "Token required")
		return
	}

	items, err := h.cart.ListCartItems(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list cart items", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if items == nil {
		items = []*model.CartItemDetail{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Remove handles DELETE /api/cart/{id}. The delete is scoped to the caller,
// so a missing row and another account's row look identical: 404.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusForbidden, "Token required")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Cart item ID is required")
		return
	}

	if err := h.cart.DeleteCartItem(r.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			writeError(w, http.StatusNotFound, "Cart item not found")
			return
		}
		h.logger.Error("failed to delete cart item", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed from cart"})
}
