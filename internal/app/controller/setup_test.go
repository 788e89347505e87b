package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	"github.com/ikkim/catalog-backend/internal/cache"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	db       *gorm.DB
	router   *gin.Engine
	recorder *events.Recorder

	categories service.CategoryService
	filters    service.FilterService
	products   service.ProductService
}

type stubUploader struct{}

func (stubUploader) Upload(_ context.Context, filename, _ string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	return "https://cdn.example.com/images/" + filename, nil
}

func setupTestServer(t *testing.T) *testServer {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	categoryRepo := repository.NewCategoryRepository(testDB)
	filterRepo := repository.NewFilterRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	recorder := events.NewRecorder()

	s := &testServer{
		db:         testDB,
		recorder:   recorder,
		categories: service.NewCategoryService(categoryRepo, nil, recorder),
		filters:    service.NewFilterService(filterRepo, categoryRepo, productRepo, recorder),
		products:   service.NewProductService(productRepo, stubUploader{}, recorder),
	}

	categoryController := NewCategoryController(s.categories)
	filterController := NewFilterController(s.filters)
	productController := NewProductController(s.products)
	viewController := NewProductViewController(service.NewProductViewService(productRepo, cache.NewViewCounter(nil)))

	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/main-category", categoryController.CreateMainCategory)
	r.GET("/main-categories", categoryController.ListMainCategories)
	r.PUT("/main-category/:id", categoryController.UpdateMainCategory)
	r.DELETE("/main-category/:id", categoryController.DeleteMainCategory)
	r.POST("/sub-category", categoryController.CreateSubCategory)
	r.GET("/sub-categories", categoryController.ListSubCategories)
	r.PUT("/sub-category/:id", categoryController.UpdateSubCategory)
	r.DELETE("/sub-category/:id", categoryController.DeleteSubCategory)
	r.POST("/sub-sub-category", categoryController.CreateSubSubCategory)
	r.GET("/sub-sub-categories", categoryController.ListSubSubCategories)
	r.PUT("/sub-sub-category/:id", categoryController.UpdateSubSubCategory)
	r.DELETE("/sub-sub-category/:id", categoryController.DeleteSubSubCategory)

	r.POST("/:subSubCategoryId/filters", filterController.CreateFilter)
	r.GET("/:subSubCategoryId/filters", filterController.GetFilters)
	r.POST("/filter-values", filterController.CreateFilterValue)
	r.PUT("/filter-values/:filterValueId", filterController.UpdateFilterValue)
	r.DELETE("/filter-values/:filterValueId", filterController.DeleteFilterValue)
	r.GET("/filter-options/:filterOptionId/values", filterController.GetFilterValues)
	r.PUT("/filter-options/:filterOptionId", filterController.UpdateFilterOption)
	r.DELETE("/filter-options/:filterOptionId", filterController.DeleteFilterOption)
	r.POST("/product-filters", filterController.CreateProductFilter)

	r.GET("/products", productController.ListProducts)
	r.POST("/products", productController.CreateProduct)
	r.GET("/products/:id", productController.GetProductByID)
	r.PUT("/products/:id", productController.UpdateProduct)
	r.DELETE("/products/:id", productController.DeleteProduct)
	r.GET("/product/view/:id", viewController.ViewProduct)

	s.router = r
	return s
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) leaf(t *testing.T, name string) *model.SubSubCategory {
	t.Helper()
	ctx := context.Background()
	main, err := s.categories.CreateMainCategory(ctx, name)
	require.NoError(t, err)
	sub, err := s.categories.CreateSubCategory(ctx, name+" sub", main.ID)
	require.NoError(t, err)
	leaf, err := s.categories.CreateSubSubCategory(ctx, name+" leaf", sub.ID)
	require.NoError(t, err)
	return leaf
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}
