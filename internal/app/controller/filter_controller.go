package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type FilterController struct {
	filterService service.FilterService
}

func NewFilterController(filterService service.FilterService) *FilterController {
	return &FilterController{
		filterService: filterService,
	}
}

type CreateFilterRequest struct {
	FilterName   string   `json:"filterName"`
	FilterValues []string `json:"filterValues"`
	FilterType   string   `json:"filterType"`
}

type UpdateFilterOptionRequest struct {
	Name   *string   `json:"name"`
	Type   *string   `json:"type"`
	Values *[]string `json:"values"`
}

type CreateFilterValueRequest struct {
	FilterOptionID uint   `json:"filterOptionId" binding:"required"`
	FilterValue    string `json:"filterValue"`
}

type UpdateFilterValueRequest struct {
	Value string `json:"value"`
}

type CreateProductFilterRequest struct {
	ProductID     uint `json:"productId" binding:"required"`
	FilterValueID uint `json:"filterValueId" binding:"required"`
}

func (ctrl *FilterController) respondError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrFilterNameRequired),
		errors.Is(err, service.ErrInvalidFilterValues),
		errors.Is(err, service.ErrEmptyFilterValue):
		apperrors.BadRequest(c, apperrors.ValidationRequired, err.Error())
	case errors.Is(err, service.ErrInvalidFilterType),
		errors.Is(err, service.ErrSliderFilterValues):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	case errors.Is(err, service.ErrSubSubCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Sub-sub category not found")
	case errors.Is(err, service.ErrFilterOptionNotFound):
		apperrors.NotFound(c, apperrors.FilterOptionNotFound, "Filter option not found")
	case errors.Is(err, service.ErrFilterValueNotFound):
		apperrors.NotFound(c, apperrors.FilterValueNotFound, "Filter value not found")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	default:
		middleware.GetLoggerFromContext(c).Error("Failed to "+context, err, nil)
		apperrors.InternalError(c, "Failed to "+context)
	}
}

// CreateFilter defines a new filter on a leaf category.
// POST /:subSubCategoryId/filters
func (ctrl *FilterController) CreateFilter(c *gin.Context) {
	subSubCategoryID, ok := idParam(c, "subSubCategoryId", "sub-sub category ID")
	if !ok {
		return
	}
	var req CreateFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	option, err := ctrl.filterService.CreateFilter(c.Request.Context(), service.CreateFilterInput{
		SubSubCategoryID: subSubCategoryID,
		Name:             req.FilterName,
		Type:             req.FilterType,
		Values:           req.FilterValues,
	})
	if err != nil {
		ctrl.respondError(c, err, "create filter")
		return
	}
	c.JSON(http.StatusCreated, option)
}

// GetFilters lists the filters available on a leaf category.
// GET /:subSubCategoryId/filters
func (ctrl *FilterController) GetFilters(c *gin.Context) {
	subSubCategoryID, ok := idParam(c, "subSubCategoryId", "sub-sub category ID")
	if !ok {
		return
	}

	options, err := ctrl.filterService.GetFiltersForSubSubCategory(c.Request.Context(), subSubCategoryID)
	if err != nil {
		ctrl.respondError(c, err, "fetch filters")
		return
	}
	c.JSON(http.StatusOK, options)
}

// PUT /filter-options/:filterOptionId
func (ctrl *FilterController) UpdateFilterOption(c *gin.Context) {
	id, ok := idParam(c, "filterOptionId", "filter option ID")
	if !ok {
		return
	}
	var req UpdateFilterOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	option, err := ctrl.filterService.UpdateFilterOption(c.Request.Context(), id, service.UpdateFilterOptionInput{
		Name:   req.Name,
		Type:   req.Type,
		Values: req.Values,
	})
	if err != nil {
		ctrl.respondError(c, err, "update filter option")
		return
	}
	c.JSON(http.StatusOK, option)
}

// DeleteFilterOption removes the option and everything that references it.
// DELETE /filter-options/:filterOptionId
func (ctrl *FilterController) DeleteFilterOption(c *gin.Context) {
	id, ok := idParam(c, "filterOptionId", "filter option ID")
	if !ok {
		return
	}

	deleted, err := ctrl.filterService.DeleteFilterOption(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "delete filter option")
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// POST /filter-values
func (ctrl *FilterController) CreateFilterValue(c *gin.Context) {
	var req CreateFilterValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	value, err := ctrl.filterService.CreateFilterValue(c.Request.Context(), req.FilterOptionID, req.FilterValue)
	if err != nil {
		ctrl.respondError(c, err, "create filter value")
		return
	}
	c.JSON(http.StatusCreated, value)
}

// GET /filter-options/:filterOptionId/values
func (ctrl *FilterController) GetFilterValues(c *gin.Context) {
	id, ok := idParam(c, "filterOptionId", "filter option ID")
	if !ok {
		return
	}

	values, err := ctrl.filterService.GetFilterValues(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "fetch filter values")
		return
	}
	c.JSON(http.StatusOK, values)
}

// PUT /filter-values/:filterValueId
func (ctrl *FilterController) UpdateFilterValue(c *gin.Context) {
	id, ok := idParam(c, "filterValueId", "filter value ID")
	if !ok {
		return
	}
	var req UpdateFilterValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	value, err := ctrl.filterService.UpdateFilterValue(c.Request.Context(), id, req.Value)
	if err != nil {
		ctrl.respondError(c, err, "update filter value")
		return
	}
	c.JSON(http.StatusOK, value)
}

// DELETE /filter-values/:filterValueId
func (ctrl *FilterController) DeleteFilterValue(c *gin.Context) {
	id, ok := idParam(c, "filterValueId", "filter value ID")
	if !ok {
		return
	}

	deleted, err := ctrl.filterService.DeleteFilterValue(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "delete filter value")
		return
	}
	c.JSON(http.StatusOK, deleted)
}

// CreateProductFilter attaches a filter value to a product. Repeating a
// pair returns the existing link.
// POST /product-filters
func (ctrl *FilterController) CreateProductFilter(c *gin.Context) {
	var req CreateProductFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	link, err := ctrl.filterService.CreateProductFilter(c.Request.Context(), req.ProductID, req.FilterValueID)
	if err != nil {
		ctrl.respondError(c, err, "create product filter")
		return
	}
	c.JSON(http.StatusCreated, link)
}
