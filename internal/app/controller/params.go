package controller

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

// idParam parses a positive numeric path parameter. On failure it writes a
// 400 and returns false.
func idParam(c *gin.Context, name, label string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid "+label+" format", map[string]interface{}{
			name: raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+label)
		return 0, false
	}
	return uint(id), true
}

// paramError reports a query or form value that is present but unusable.
type paramError struct {
	name string
	code string
}

func (e *paramError) Error() string {
	return "invalid " + e.name
}

// optionalUint parses the named value as a positive id. Empty input yields nil.
func optionalUint(name, raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return nil, &paramError{name: name, code: apperrors.ValidationInvalidID}
	}
	v := uint(id)
	return &v, nil
}

// optionalFloat parses the named value as a finite number. Empty input yields nil.
func optionalFloat(name, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &paramError{name: name, code: apperrors.ValidationInvalidRange}
	}
	return &v, nil
}
