package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type MainCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateSubCategoryRequest struct {
	Name           string `json:"name" binding:"required"`
	MainCategoryID uint   `json:"mainCategoryId" binding:"required"`
}

type UpdateSubCategoryRequest struct {
	Name           string `json:"name" binding:"required"`
	MainCategoryID *uint  `json:"mainCategoryId"`
}

type CreateSubSubCategoryRequest struct {
	Name          string `json:"name" binding:"required"`
	SubCategoryID uint   `json:"subCategoryId" binding:"required"`
}

type UpdateSubSubCategoryRequest struct {
	Name          string `json:"name" binding:"required"`
	SubCategoryID *uint  `json:"subCategoryId"`
}

func (ctrl *CategoryController) respondError(c *gin.Context, err error, context string) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrCategoryNameRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Category name is required")
	case errors.Is(err, service.ErrMainCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Main category not found")
	case errors.Is(err, service.ErrSubCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Sub category not found")
	case errors.Is(err, service.ErrSubSubCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Sub-sub category not found")
	default:
		log.Error("Failed to "+context, err, nil)
		apperrors.InternalError(c, "Failed to "+context)
	}
}

func bindFailed(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
}

// ==================== Main ====================

// CreateMainCategory
// POST /main-category
func (ctrl *CategoryController) CreateMainCategory(c *gin.Context) {
	var req MainCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	category, err := ctrl.categoryService.CreateMainCategory(c.Request.Context(), req.Name)
	if err != nil {
		ctrl.respondError(c, err, "create main category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// ListMainCategories
// GET /main-categories
func (ctrl *CategoryController) ListMainCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListMainCategories(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "fetch main categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// UpdateMainCategory
// PUT /main-category/:id
func (ctrl *CategoryController) UpdateMainCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "main category ID")
	if !ok {
		return
	}
	var req MainCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	category, err := ctrl.categoryService.UpdateMainCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		ctrl.respondError(c, err, "update main category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteMainCategory removes the category with its subtree.
// DELETE /main-category/:id
func (ctrl *CategoryController) DeleteMainCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "main category ID")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.DeleteMainCategory(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "delete main category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// ==================== Sub ====================

// POST /sub-category
func (ctrl *CategoryController) CreateSubCategory(c *gin.Context) {
	var req CreateSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	category, err := ctrl.categoryService.CreateSubCategory(c.Request.Context(), req.Name, req.MainCategoryID)
	if err != nil {
		ctrl.respondError(c, err, "create sub category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GET /sub-categories
func (ctrl *CategoryController) ListSubCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListSubCategories(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "fetch sub categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// PUT /sub-category/:id
func (ctrl *CategoryController) UpdateSubCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "sub category ID")
	if !ok {
		return
	}
	var req UpdateSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	category, err := ctrl.categoryService.UpdateSubCategory(c.Request.Context(), id, req.Name, req.MainCategoryID)
	if err != nil {
		ctrl.respondError(c, err, "update sub category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DELETE /sub-category/:id
func (ctrl *CategoryController) DeleteSubCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "sub category ID")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.DeleteSubCategory(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "delete sub category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// ==================== SubSub ====================

// POST /sub-sub-category
func (ctrl *CategoryController) CreateSubSubCategory(c *gin.Context) {
	var req CreateSubSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	category, err := ctrl.categoryService.CreateSubSubCategory(c.Request.Context(), req.Name, req.SubCategoryID)
	if err != nil {
		ctrl.respondError(c, err, "create sub-sub category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GET /sub-sub-categories
func (ctrl *CategoryController) ListSubSubCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListSubSubCategories(c.Request.Context())
	if err != nil {
		ctrl.respondError(c, err, "fetch sub-sub categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// PUT /sub-sub-category/:id
func (ctrl *CategoryController) UpdateSubSubCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "sub-sub category ID")
	if !ok {
		return
	}
	var req UpdateSubSubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	category, err := ctrl.categoryService.UpdateSubSubCategory(c.Request.Context(), id, req.Name, req.SubCategoryID)
	if err != nil {
		ctrl.respondError(c, err, "update sub-sub category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DELETE /sub-sub-category/:id
func (ctrl *CategoryController) DeleteSubSubCategory(c *gin.Context) {
	id, ok := idParam(c, "id", "sub-sub category ID")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.DeleteSubSubCategory(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "delete sub-sub category")
		return
	}
	c.JSON(http.StatusOK, category)
}
