package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/products", ValidateProductQuery(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": c.GetString("request_id")})
	})
	return router
}

func TestLoggingMiddleware_AssignsRequestID(t *testing.T) {
	router := setupRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, id, body["request_id"])
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	router := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set(RequestIDHeader, "upstream-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "upstream-42", w.Header().Get(RequestIDHeader))
}

func TestGetLoggerFromContext_FallsBackToGlobal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetLoggerFromContext(c))
}

func TestValidateProductQuery(t *testing.T) {
	router := setupRouter()

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"no sort", "", http.StatusOK},
		{"valid sort", "?sortBy=mostSold&sortOrder=desc", http.StatusOK},
		{"unknown sortBy", "?sortBy=rating", http.StatusBadRequest},
		{"unknown sortOrder", "?sortBy=price&sortOrder=up", http.StatusBadRequest},
		{"sortOrder only", "?sortOrder=asc", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusBadRequest {
				var resp apperrors.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, apperrors.ValidationInvalidSort, resp.Error)
			}
		})
	}
}
