package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shoply/shoply/internal/metrics"
	"github.com/shoply/shoply/internal/model"
	"github.com/shoply/shoply/internal/repository"
)

// ProductStore is the slice of the repository the catalog endpoints need.
type ProductStore interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ProductCache is a read-through cache for single-product lookups.
// A nil result with nil error is a miss.
type ProductCache interface {
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	SetProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ProductHandler handles the catalog CRUD endpoints.
type ProductHandler struct {
	logger   *slog.Logger
	products ProductStore
	cache    ProductCache
	metrics  metrics.Recorder
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(logger *slog.Logger, products ProductStore, cache ProductCache, recorder metrics.Recorder) *ProductHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProductHandler{
		logger:   logger,
		products: products,
		cache:    cache,
		metrics:  recorder,
	}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if products == nil {
		products = []*model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	if h.cache != nil {
		if cached, _ := h.cache.GetProduct(ctx, id); cached != nil {
			h.metrics.IncProductCacheHit()
			writeJSON(w, http.StatusOK, cached)
			return
		}
		h.metrics.IncProductCacheMiss()
	}

	product, err := h.products.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to get product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if h.cache != nil {
		if err := h.cache.SetProduct(ctx, product); err != nil {
			h.logger.Warn("failed to cache product", slog.String("error", err.Error()))
		}
	}

	writeJSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Price == nil || req.Stock == nil {
		writeError(w, http.StatusBadRequest, "Name, price, and stock are required")
		return
	}

	now := time.Now()
	product := &model.Product{
		ID:          ulid.Make().String(),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.products.CreateProduct(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.metrics.IncProductCreated()
	h.logger.Info("product created", slog.String("product_id", product.ID))
	writeJSON(w, http.StatusCreated, product)
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	var req model.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" || req.Price == nil || req.Stock == nil {
		writeError(w, http.StatusBadRequest, "Name, price, and stock are required")
		return
	}

	product := &model.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
	}

	if err := h.products.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to update product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.invalidate(ctx, id)
	h.metrics.IncProductUpdated()

	// Re-read so the response carries the stored timestamps.
	updated, err := h.products.GetProductByID(ctx, id)
	if err != nil {
		h.logger.Error("failed to reload product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Product ID is required")
		return
	}

	if err := h.products.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to delete product", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.invalidate(ctx, id)
	h.metrics.IncProductDeleted()
	h.logger.Info("product deleted", slog.String("product_id", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// invalidate drops the cached copy after a write.
func (h *ProductHandler) invalidate(ctx context.Context, id string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteProduct(ctx, id); err != nil {
		h.logger.Warn("failed to invalidate product cache", slog.String("error", err.Error()))
	}
}
