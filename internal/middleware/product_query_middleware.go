package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
)

// ValidateProductQuery rejects unknown sortBy and sortOrder values before
// the listing handler runs.
func ValidateProductQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sortBy := c.Query("sortBy"); sortBy != "" && !repository.ProductSort(sortBy).Valid() {
			GetLoggerFromContext(c).Warn("Rejected product query", map[string]interface{}{
				"sort_by": sortBy,
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidSort,
				"Invalid sortBy value. Allowed: price, name, reviews, discount, mostSold")
			c.Abort()
			return
		}

		if sortOrder := c.Query("sortOrder"); sortOrder != "" && !repository.SortOrder(sortOrder).Valid() {
			GetLoggerFromContext(c).Warn("Rejected product query", map[string]interface{}{
				"sort_order": sortOrder,
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidSort,
				"Invalid sortOrder value. Allowed: asc, desc")
			c.Abort()
			return
		}

		c.Next()
	}
}
