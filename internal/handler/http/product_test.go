package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/event"
	"github.com/yahyahetari/electronics-admin/internal/repository"
	"github.com/yahyahetari/electronics-admin/internal/service"
	apperrors "github.com/yahyahetari/electronics-admin/pkg/errors"
	"github.com/yahyahetari/electronics-admin/pkg/httputil"
	pkgkafka "github.com/yahyahetari/electronics-admin/pkg/kafka"
)

// =============================================================================
// Mock ProductRepository
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockProductRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

// =============================================================================
// Test helpers
// =============================================================================

func handlerTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func handlerTestEventProducer() *event.Producer {
	logger := handlerTestLogger()
	// Kafka producer pointed at a dead broker; publishes fail silently in tests.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:9092"})
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg, logger)
	return event.NewProducer(kafkaProducer, logger)
}

func productTestHandler(repo *mockProductRepo) *ProductHandler {
	svc := service.NewProductService(repo, handlerTestEventProducer(), handlerTestLogger())
	return NewProductHandler(svc, handlerTestLogger())
}

func productRouter(handler *ProductHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Get("/{idOrSlug}", handler.GetProduct)
		r.Get("/{id}/variant-groups", handler.GetVariantGroups)
		r.Post("/", handler.CreateProduct)
		r.Put("/{id}", handler.UpdateProduct)
		r.Delete("/{id}", handler.DeleteProduct)
	})
	return r
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func requestProps(pairs ...string) domain.PropertyMap {
	var m domain.PropertyMap
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func sampleStoredProduct() *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:          "550e8400-e29b-41d4-a716-446655440001",
		Title:       "Galaxy S24",
		Slug:        "galaxy-s24",
		Description: "Flagship phone",
		Properties:  requestProps("color", "black"),
		Tags:        []string{"phones"},
		Images:      []string{},
		Variants: []domain.Variant{
			{Properties: requestProps("storage", "256GB"), Price: 999, Cost: 700, Stock: 5},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// =============================================================================
// POST /api/v1/products - CreateProduct
// =============================================================================

func TestCreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	repo.On("SlugExists", mock.Anything, "galaxy-s24", "").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	body := CreateProductRequest{
		Title:       "Galaxy S24",
		Description: "Flagship phone",
		Properties:  requestProps("color", "black"),
		Variants: []VariantRequest{
			{Properties: requestProps("storage", "256GB"), Price: 999, Cost: 700, Stock: 5},
		},
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
	repo.AssertExpectations(t)
}

func TestCreateProduct_InvalidJSON(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "invalid request body")
}

func TestCreateProduct_ValidationError(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	// Missing required title
	body := CreateProductRequest{Description: "no title"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCreateProduct_DuplicateVariantsConflict(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	body := CreateProductRequest{
		Title: "Galaxy S24",
		Variants: []VariantRequest{
			{Properties: requestProps("storage", "256GB"), Price: 999, Cost: 700, Stock: 5},
			{Properties: requestProps("storage", "256GB"), Price: 899, Cost: 600, Stock: 2},
		},
	}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =============================================================================
// GET /api/v1/products - ListProducts
// =============================================================================

func TestListProducts_Success(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	repo.On("List", mock.Anything, mock.AnythingOfType("repository.ProductFilter")).
		Return([]domain.Product{*sampleStoredProduct()}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=1&per_page=20", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp httputil.PaginatedResponse[domain.Product]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.TotalCount)
	assert.False(t, resp.HasNext)
	repo.AssertExpectations(t)
}

func TestListProducts_InvalidPage(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?page=zero", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PARAMETER", resp.Error.Code)
}

func TestListProducts_InvalidCategoryID(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category_id=not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListProducts_TagFilterPassedThrough(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	repo.On("List", mock.Anything, mock.MatchedBy(func(f repository.ProductFilter) bool {
		return f.Tag != nil && *f.Tag == "phones"
	})).Return([]domain.Product{}, 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?tag=phones", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

// =============================================================================
// GET /api/v1/products/{idOrSlug} - GetProduct
// =============================================================================

func TestGetProduct_ByID(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	product := sampleStoredProduct()
	repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)
	repo.AssertNotCalled(t, "GetBySlug", mock.Anything, mock.Anything)
}

func TestGetProduct_BySlug(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	product := sampleStoredProduct()
	repo.On("GetBySlug", mock.Anything, "galaxy-s24").Return(product, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/galaxy-s24", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetProduct_ArabicSlug(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	product := sampleStoredProduct()
	product.Slug = "هاتف-ذكي"
	repo.On("GetBySlug", mock.Anything, "هاتف-ذكي").Return(product, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+"هاتف-ذكي", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	repo.On("GetBySlug", mock.Anything, "ghost").Return(nil, apperrors.NotFound("product", "ghost"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/ghost", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

// =============================================================================
// PUT /api/v1/products/{id} - UpdateProduct
// =============================================================================

func TestUpdateProduct_Success(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	product := sampleStoredProduct()
	repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	body := UpdateProductRequest{Description: strPtrH("Updated description")}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+product.ID, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestUpdateProduct_InvalidID(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/not-a-uuid", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

// =============================================================================
// DELETE /api/v1/products/{id} - DeleteProduct
// =============================================================================

func TestDeleteProduct_Success(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	product := sampleStoredProduct()
	repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Delete", mock.Anything, product.ID).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+product.ID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	id := "550e8400-e29b-41d4-a716-446655440099"
	repo.On("GetByID", mock.Anything, id).Return(nil, apperrors.NotFound("product", id))

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+id, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

// =============================================================================
// GET /api/v1/products/{id}/variant-groups - GetVariantGroups
// =============================================================================

func TestGetVariantGroups_Success(t *testing.T) {
	repo := new(mockProductRepo)
	handler := productTestHandler(repo)
	router := productRouter(handler)

	product := sampleStoredProduct()
	product.Variants = []domain.Variant{
		{Properties: requestProps("color", "black", "storage", "128GB"), Price: 899, Cost: 600, Stock: 3},
		{Properties: requestProps("color", "black", "storage", "256GB"), Price: 899, Cost: 600, Stock: 2},
		{Properties: requestProps("color", "white", "storage", "128GB"), Price: 949, Cost: 620, Stock: 1},
	}
	repo.On("GetByID", mock.Anything, product.ID).Return(product, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+product.ID+"/variant-groups", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Nil(t, resp.Error)

	groups, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, groups, 2)
}

func strPtrH(s string) *string {
	return &s
}
