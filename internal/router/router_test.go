package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ikkim/catalog-backend/config"
	"github.com/ikkim/catalog-backend/internal/app/controller"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/ikkim/catalog-backend/internal/cache"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, origins []string) http.Handler {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	categoryRepo := repository.NewCategoryRepository(testDB)
	filterRepo := repository.NewFilterRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: "test"},
		CORS:   config.CORSConfig{AllowedOrigins: origins},
	}

	return NewRouter(
		controller.NewCategoryController(service.NewCategoryService(categoryRepo, nil, nil)),
		controller.NewFilterController(service.NewFilterService(filterRepo, categoryRepo, productRepo, nil)),
		controller.NewProductController(service.NewProductService(productRepo, nil, nil)),
		controller.NewProductViewController(service.NewProductViewService(productRepo, cache.NewViewCounter(nil))),
		cfg,
	).Setup()
}

func TestRouter_Health(t *testing.T) {
	r := setupRouter(t, []string{"http://localhost:3000"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestRouter_Routes(t *testing.T) {
	r := setupRouter(t, []string{"http://localhost:3000"})

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/main-categories", http.StatusOK},
		{http.MethodGet, "/api/sub-categories", http.StatusOK},
		{http.MethodGet, "/api/sub-sub-categories", http.StatusOK},
		{http.MethodGet, "/api/products", http.StatusOK},
		{http.MethodGet, "/api/products?sortBy=rating", http.StatusBadRequest},
		{http.MethodGet, "/api/products/1", http.StatusNotFound},
		{http.MethodGet, "/api/7/filters", http.StatusNotFound},
		{http.MethodGet, "/api/filter-options/7/values", http.StatusNotFound},
		{http.MethodDelete, "/api/filter-values/7", http.StatusNotFound},
		{http.MethodGet, "/api/product/view/7", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRouter_CORS(t *testing.T) {
	r := setupRouter(t, []string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
