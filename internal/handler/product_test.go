package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shoply/shoply/internal/metrics"
	"github.com/shoply/shoply/internal/model"
	"github.com/shoply/shoply/internal/repository"
)

// fakeProductStore is an in-memory ProductStore.
type fakeProductStore struct {
	products map[string]*model.Product
	getCalls int
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: make(map[string]*model.Product)}
}

func (f *fakeProductStore) CreateProduct(_ context.Context, p *model.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductStore) GetProductByID(_ context.Context, id string) (*model.Product, error) {
	f.getCalls++
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductStore) ListProducts(context.Context) ([]*model.Product, error) {
	var products []*model.Product
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeProductStore) UpdateProduct(_ context.Context, p *model.Product) error {
	existing, ok := f.products[p.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductStore) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

// fakeProductCache is an in-memory ProductCache.
type fakeProductCache struct {
	entries map[string]*model.Product
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: make(map[string]*model.Product)}
}

func (f *fakeProductCache) GetProduct(_ context.Context, id string) (*model.Product, error) {
	return f.entries[id], nil
}

func (f *fakeProductCache) SetProduct(_ context.Context, p *model.Product) error {
	f.entries[p.ID] = p
	return nil
}

func (f *fakeProductCache) DeleteProduct(_ context.Context, id string) error {
	delete(f.entries, id)
	return nil
}

func seedProduct(store *fakeProductStore) *model.Product {
	now := time.Now()
	p := &model.Product{
		ID:          "01HVZPROD0000000000000001X",
		Name:        "Keyboard",
		Description: "Tenkeyless",
		Price:       79.99,
		Stock:       12,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	store.products[p.ID] = p
	return p
}

func TestProductHandler_Create(t *testing.T) {
	store := newFakeProductStore()
	h := NewProductHandler(testLogger(), store, nil, nil)

	rec := postJSON(t, h.Create, "/api/products",
		`{"name":"Mouse","description":"Wireless","price":29.5,"stock":40}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var product model.Product
	if err := json.NewDecoder(rec.Body).Decode(&product); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if product.ID == "" {
		t.Error("expected a generated id")
	}
	if product.Price != 29.5 || product.Stock != 40 {
		t.Errorf("unexpected product fields: %+v", product)
	}
	if len(store.products) != 1 {
		t.Errorf("expected 1 stored product, got %d", len(store.products))
	}
}

func TestProductHandler_Create_ZeroValuesAllowed(t *testing.T) {
	h := NewProductHandler(testLogger(), newFakeProductStore(), nil, nil)

	// Zero is a legal price and stock; only absence is rejected.
	rec := postJSON(t, h.Create, "/api/products",
		`{"name":"Sticker","price":0,"stock":0}`)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201 for zero price and stock, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProductHandler_Create_MissingFields(t *testing.T) {
	h := NewProductHandler(testLogger(), newFakeProductStore(), nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"no name", `{"price":10,"stock":5}`},
		{"no price", `{"name":"Mouse","stock":5}`},
		{"no stock", `{"name":"Mouse","price":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Create, "/api/products", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if body := decodeBody(t, rec); body["error"] != "Name, price, and stock are required" {
				t.Errorf("unexpected error message: %q", body["error"])
			}
		})
	}
}

func TestProductHandler_Get_CacheMissThenHit(t *testing.T) {
	store := newFakeProductStore()
	cache := newFakeProductCache()
	recorder := metrics.NewInMemory()
	h := NewProductHandler(testLogger(), store, cache, recorder)
	p := seedProduct(store)

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/products/"+p.ID, nil)
		req.SetPathValue("id", p.ID)
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		return rec
	}

	first := get()
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", first.Code)
	}

	second := get()
	if second.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", second.Code)
	}

	if store.getCalls != 1 {
		t.Errorf("expected 1 store read, got %d", store.getCalls)
	}
	snap := recorder.Snapshot()
	if snap.ProductCacheMisses != 1 || snap.ProductCacheHits != 1 {
		t.Errorf("expected 1 miss and 1 hit, got %d misses %d hits",
			snap.ProductCacheMisses, snap.ProductCacheHits)
	}
}

func TestProductHandler_Get_NotFound(t *testing.T) {
	h := NewProductHandler(testLogger(), newFakeProductStore(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products/01HVZMISSING00000000000000", nil)
	req.SetPathValue("id", "01HVZMISSING00000000000000")
	rec := httptest.NewRecorder()

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Product not found" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestProductHandler_Update(t *testing.T) {
	store := newFakeProductStore()
	cache := newFakeProductCache()
	h := NewProductHandler(testLogger(), store, cache, nil)
	p := seedProduct(store)
	cache.entries[p.ID] = p

	req := httptest.NewRequest(http.MethodPut, "/api/products/"+p.ID,
		strings.NewReader(`{"name":"Keyboard v2","price":89.99,"stock":8}`))
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var updated model.Product
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if updated.Name != "Keyboard v2" || updated.Price != 89.99 {
		t.Errorf("unexpected product fields: %+v", updated)
	}
	// The write must evict the stale cached copy.
	if _, cached := cache.entries[p.ID]; cached {
		t.Error("cache entry was not invalidated on update")
	}
}

func TestProductHandler_Update_NotFound(t *testing.T) {
	h := NewProductHandler(testLogger(), newFakeProductStore(), nil, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/products/01HVZMISSING00000000000000",
		strings.NewReader(`{"name":"Ghost","price":1,"stock":1}`))
	req.SetPathValue("id", "01HVZMISSING00000000000000")
	rec := httptest.NewRecorder()

	h.Update(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Product not found" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestProductHandler_Delete(t *testing.T) {
	store := newFakeProductStore()
	cache := newFakeProductCache()
	h := NewProductHandler(testLogger(), store, cache, nil)
	p := seedProduct(store)
	cache.entries[p.ID] = p

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+p.ID, nil)
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["message"] != "Product deleted successfully" {
		t.Errorf("unexpected message: %q", body["message"])
	}
	if len(store.products) != 0 {
		t.Error("product was not removed from the store")
	}
	if _, cached := cache.entries[p.ID]; cached {
		t.Error("cache entry was not invalidated on delete")
	}
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	h := NewProductHandler(testLogger(), newFakeProductStore(), nil, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/01HVZMISSING00000000000000", nil)
	req.SetPathValue("id", "01HVZMISSING00000000000000")
	rec := httptest.NewRecorder()

	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "Product not found" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestProductHandler_List_Empty(t *testing.T) {
	h := NewProductHandler(testLogger(), newFakeProductStore(), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("expected empty array, got %q", got)
	}
}
