package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/yahyahetari/electronics-admin/internal/domain"
	"github.com/yahyahetari/electronics-admin/internal/media"
	"github.com/yahyahetari/electronics-admin/internal/service"
	"github.com/yahyahetari/electronics-admin/pkg/health"
	"github.com/yahyahetari/electronics-admin/pkg/httpclient"
	"github.com/yahyahetari/electronics-admin/pkg/middleware"
)

// ============================================================================
// Test Setup
// ============================================================================

func testRouter(t *testing.T, auth func(http.Handler) http.Handler) (http.Handler, *mockCategoryRepo) {
	t.Helper()

	logger := handlerTestLogger()
	producer := handlerTestEventProducer()

	categoryRepo := new(mockCategoryRepo)
	productRepo := new(mockProductRepo)
	orderRepo := new(mockOrderRepo)

	mediaClient := media.NewClient(httpclient.New(httpclient.DefaultConfig()), "http://localhost:0", logger)

	router := NewRouter(RouterDeps{
		Categories: service.NewCategoryService(categoryRepo, producer, logger),
		Products:   service.NewProductService(productRepo, producer, logger),
		Orders:     service.NewOrderService(orderRepo, logger),
		Dashboard:  service.NewDashboardService(orderRepo, productRepo, nil, time.Minute, logger),
		Media:      mediaClient,
		Health:     health.NewHandler(),
		CORS:       middleware.CORSConfig{AllowedOrigins: []string{"*"}, Environment: "development"},
		Auth:       auth,
		Logger:     logger,
	})

	return router, categoryRepo
}

func testTokenAuth(valid string) func(http.Handler) http.Handler {
	return middleware.Auth(func(token string) (*middleware.Claims, error) {
		if token != valid {
			return nil, errors.New("invalid token")
		}
		return &middleware.Claims{UserID: "admin"}, nil
	})
}

// ============================================================================
// Auth Gating Tests
// ============================================================================

func TestRouter_MissingTokenRejected(t *testing.T) {
	router, _ := testRouter(t, testTokenAuth("admin-token"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ValidTokenAccepted(t *testing.T) {
	router, categoryRepo := testRouter(t, testTokenAuth("admin-token"))
	categoryRepo.On("ListAll", mock.Anything).Return([]domain.Category{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_HealthBypassesAuth(t *testing.T) {
	router, _ := testRouter(t, testTokenAuth("admin-token"))

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_NoAuthConfigured(t *testing.T) {
	router, categoryRepo := testRouter(t, nil)
	categoryRepo.On("ListAll", mock.Anything).Return([]domain.Category{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
