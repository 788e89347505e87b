package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type ProductViewController struct {
	viewService service.ProductViewService
}

func NewProductViewController(viewService service.ProductViewService) *ProductViewController {
	return &ProductViewController{
		viewService: viewService,
	}
}

// ViewProduct counts a view and returns related products.
// GET /product/view/:id
func (ctrl *ProductViewController) ViewProduct(c *gin.Context) {
	id, ok := idParam(c, "id", "product ID")
	if !ok {
		return
	}

	related, err := ctrl.viewService.RecordView(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to record product view", err, map[string]interface{}{
			"product_id": id,
		})
		apperrors.InternalError(c, "Failed to record product view")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"relatedProducts": related,
	})
}
