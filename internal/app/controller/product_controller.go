package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/middleware"
	"github.com/ikkim/catalog-backend/internal/storage"
)

var (
	errInvalidFiltersFormat = errors.New("invalid filters format")
	errInvalidImage         = errors.New("invalid image")
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

func (ctrl *ProductController) respondError(c *gin.Context, err error, context string) {
	var invalidParam *paramError
	switch {
	case errors.As(err, &invalidParam):
		apperrors.BadRequest(c, invalidParam.code, "Invalid "+invalidParam.name)
	case errors.Is(err, errInvalidFiltersFormat):
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid filters format. Must be a valid JSON array.")
	case errors.Is(err, errInvalidImage):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
	case errors.Is(err, service.ErrInvalidProductFilters):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "One or more filters are invalid")
	case errors.Is(err, service.ErrInvalidProductStatus),
		errors.Is(err, service.ErrInvalidProductQuery):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	default:
		middleware.GetLoggerFromContext(c).Error("Failed to "+context, err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}

func formFloat(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.PostForm(key), 64)
	return v
}

func formInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.PostForm(key))
	return v
}

// parseProductForm reads a multipart (or urlencoded) product payload.
// Scalar numeric fields that do not parse are zero; malformed ids are
// rejected. The returned closer releases any opened upload.
func parseProductForm(c *gin.Context) (service.ProductInput, func(), error) {
	input := service.ProductInput{
		Name:           c.PostForm("name"),
		Description:    c.PostForm("description"),
		Price:          formFloat(c, "price"),
		Stock:          formInt(c, "stock"),
		Brand:          c.PostForm("brand"),
		Weight:         formFloat(c, "weight"),
		Length:         formFloat(c, "length"),
		Width:          formFloat(c, "width"),
		Height:         formFloat(c, "height"),
		Status:         c.PostForm("status"),
		SeoTitle:       c.PostForm("seoTitle"),
		SeoDescription: c.PostForm("seoDescription"),
		MetaKeywords:   c.PostForm("metaKeywords"),
	}
	noop := func() {}

	var err error
	if input.SubSubCategoryID, err = optionalUint("subSubCategoryId", c.PostForm("subSubCategoryId")); err != nil {
		return input, noop, err
	}
	if input.DiscountID, err = optionalUint("discountId", c.PostForm("discountId")); err != nil {
		return input, noop, err
	}

	if raw := c.PostForm("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Filters); err != nil {
			return input, noop, errInvalidFiltersFormat
		}
	}

	for _, url := range c.PostFormArray("imageUrls") {
		if url != "" {
			input.Images = append(input.Images, service.ImageSource{URL: url})
		}
	}

	form, formErr := c.MultipartForm()
	if formErr != nil {
		return input, noop, nil
	}

	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, header := range form.File["images"] {
		contentType := header.Header.Get("Content-Type")
		if err := storage.ValidateImage(header.Size, contentType); err != nil {
			closeAll()
			return input, noop, fmt.Errorf("%w: %v", errInvalidImage, err)
		}
		file, err := header.Open()
		if err != nil {
			closeAll()
			return input, noop, err
		}
		opened = append(opened, file)
		input.Images = append(input.Images, service.ImageSource{
			Filename:    header.Filename,
			ContentType: contentType,
			Body:        file,
		})
	}
	return input, closeAll, nil
}

// parseProductQuery reads the query-engine parameters. An id or range bound
// that is present but malformed is an error rather than a dropped scope.
func parseProductQuery(c *gin.Context) (repository.ProductQuery, error) {
	query := repository.ProductQuery{
		RangeField: c.Query("rangeField"),
		SortBy:     repository.ProductSort(c.Query("sortBy")),
		SortOrder:  repository.SortOrder(c.Query("sortOrder")),
	}

	ids := []struct {
		name string
		dest **uint
	}{
		{"mainCategoryId", &query.MainCategoryID},
		{"subCategoryId", &query.SubCategoryID},
		{"subSubCategoryId", &query.SubSubCategoryID},
		{"filterValueId", &query.FilterValueID},
	}
	for _, id := range ids {
		v, err := optionalUint(id.name, c.Query(id.name))
		if err != nil {
			return query, err
		}
		*id.dest = v
	}

	bounds := []struct {
		name string
		dest **float64
	}{
		{"minRange", &query.MinRange},
		{"maxRange", &query.MaxRange},
	}
	for _, bound := range bounds {
		v, err := optionalFloat(bound.name, c.Query(bound.name))
		if err != nil {
			return query, err
		}
		*bound.dest = v
	}

	return query, nil
}

// ListProducts runs the product query engine.
// GET /products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	query, err := parseProductQuery(c)
	if err != nil {
		log.Warn("Invalid product query", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.respondError(c, err, "fetch products")
		return
	}

	products, err := ctrl.productService.ListProducts(c.Request.Context(), query)
	if err != nil {
		ctrl.respondError(c, err, "fetch products")
		return
	}

	log.Info("Products fetched successfully", map[string]interface{}{
		"count": len(products),
	})
	c.JSON(http.StatusOK, products)
}

// GetProductByID
// GET /products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := idParam(c, "id", "product ID")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		ctrl.respondError(c, err, "fetch product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct accepts multipart form data with `images` files.
// POST /products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	input, release, err := parseProductForm(c)
	defer release()
	if err != nil {
		log.Warn("Invalid product creation request", map[string]interface{}{
			"error": err.Error(),
		})
		ctrl.respondError(c, err, "create product")
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		ctrl.respondError(c, err, "create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct overwrites scalar fields and replaces images and filters.
// PUT /products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := idParam(c, "id", "product ID")
	if !ok {
		return
	}

	input, release, err := parseProductForm(c)
	defer release()
	if err != nil {
		log.Warn("Invalid product update request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		ctrl.respondError(c, err, "update product")
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		ctrl.respondError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DELETE /products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id", "product ID")
	if !ok {
		return
	}

	if _, err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		ctrl.respondError(c, err, "delete product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted successfully",
	})
}
