package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound         = errors.New("product not found")
	ErrInvalidProductFilters   = errors.New("one or more filters are invalid")
	ErrInvalidProductStatus    = errors.New("product status must be active, inactive or draft")
	ErrInvalidProductQuery     = errors.New("invalid product query")
	ErrInvalidStockUpdate      = errors.New("invalid stock update")
	ErrImageUploadNotAvailable = errors.New("image upload is not configured")
)

// ImageUploader stores raw image bytes and returns their public URL.
type ImageUploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

// ImageSource is either an existing URL or an uploaded file.
type ImageSource struct {
	URL         string
	Filename    string
	ContentType string
	Body        io.Reader
}

// FilterSelection assigns one filter value to a product.
type FilterSelection struct {
	FilterOptionID uint `json:"filterOptionId"`
	FilterValueID  uint `json:"filterValueId"`
}

type ProductInput struct {
	Name             string
	Description      string
	Price            float64
	Stock            int
	Brand            string
	Weight           float64
	Length           float64
	Width            float64
	Height           float64
	Status           string
	SeoTitle         string
	SeoDescription   string
	MetaKeywords     string
	SubSubCategoryID *uint
	DiscountID       *uint
	Images           []ImageSource
	Filters          []FilterSelection
}

// ProductDeletedEvent is the payload announced when a product is removed.
type ProductDeletedEvent struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error)
	GetProductByID(ctx context.Context, id uint) (*model.Product, error)
	ListProducts(ctx context.Context, query repository.ProductQuery) ([]model.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) (*model.Product, error)
	UpdateStock(ctx context.Context, productID uint, newStock int) error
}

type productService struct {
	productRepo repository.ProductRepository
	uploader    ImageUploader
	publisher   events.Publisher
}

// NewProductService wires the product store. uploader may be nil, in
// which case only URL images are accepted.
func NewProductService(productRepo repository.ProductRepository, uploader ImageUploader, publisher events.Publisher) ProductService {
	return &productService{
		productRepo: productRepo,
		uploader:    uploader,
		publisher:   orNoop(publisher),
	}
}

// filterValueIDs validates every selection and returns the distinct value ids.
func filterValueIDs(filters []FilterSelection) ([]uint, error) {
	ids := make([]uint, 0, len(filters))
	seen := make(map[uint]bool, len(filters))
	for _, f := range filters {
		if f.FilterOptionID == 0 || f.FilterValueID == 0 {
			return nil, ErrInvalidProductFilters
		}
		if seen[f.FilterValueID] {
			continue
		}
		seen[f.FilterValueID] = true
		ids = append(ids, f.FilterValueID)
	}
	return ids, nil
}

func (in ProductInput) toModel() (*model.Product, error) {
	status, err := model.ParseProductStatus(in.Status)
	if err != nil {
		return nil, ErrInvalidProductStatus
	}
	return &model.Product{
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price,
		Stock:            in.Stock,
		Brand:            in.Brand,
		Weight:           in.Weight,
		Length:           in.Length,
		Width:            in.Width,
		Height:           in.Height,
		Status:           status,
		SeoTitle:         in.SeoTitle,
		SeoDescription:   in.SeoDescription,
		MetaKeywords:     in.MetaKeywords,
		SubSubCategoryID: in.SubSubCategoryID,
		DiscountID:       in.DiscountID,
	}, nil
}

// resolveImages uploads file sources and keeps URL sources as they are.
func (s *productService) resolveImages(ctx context.Context, images []ImageSource) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		if image.Body == nil {
			if image.URL != "" {
				urls = append(urls, image.URL)
			}
			continue
		}
		if s.uploader == nil {
			return nil, ErrImageUploadNotAvailable
		}
		url, err := s.uploader.Upload(ctx, image.Filename, image.ContentType, image.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image %s: %w", image.Filename, err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.Product, error) {
	product, err := input.toModel()
	if err != nil {
		return nil, err
	}
	valueIDs, err := filterValueIDs(input.Filters)
	if err != nil {
		logger.Warn("Rejected product with invalid filters", map[string]interface{}{
			"name":    input.Name,
			"filters": len(input.Filters),
		})
		return nil, err
	}

	imageURLs, err := s.resolveImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.CreateWithRelations(product, imageURLs, valueIDs); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	created, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created product: %w", err)
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": created.ID,
		"name":       created.Name,
		"images":     len(created.Images),
		"filters":    len(created.Filters),
	})
	notify(ctx, s.publisher, events.ProductAdded, created)
	return created, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, query repository.ProductQuery) ([]model.Product, error) {
	if query.SortBy != "" && !query.SortBy.Valid() {
		return nil, fmt.Errorf("%w: unknown sortBy %q", ErrInvalidProductQuery, query.SortBy)
	}
	if query.SortOrder == "" {
		query.SortOrder = repository.SortOrderAsc
	}
	if !query.SortOrder.Valid() {
		return nil, fmt.Errorf("%w: unknown sortOrder %q", ErrInvalidProductQuery, query.SortOrder)
	}
	if query.RangeField != "" && !repository.IsRangeField(query.RangeField) {
		return nil, fmt.Errorf("%w: unknown rangeField %q", ErrInvalidProductQuery, query.RangeField)
	}

	products, err := s.productRepo.FindWithQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*model.Product, error) {
	product, err := input.toModel()
	if err != nil {
		return nil, err
	}
	valueIDs, err := filterValueIDs(input.Filters)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetProductByID(ctx, id); err != nil {
		return nil, err
	}

	imageURLs, err := s.resolveImages(ctx, input.Images)
	if err != nil {
		return nil, err
	}

	product.ID = id
	if err := s.productRepo.UpdateWithRelations(product, imageURLs, valueIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated product: %w", err)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": id,
		"images":     len(updated.Images),
		"filters":    len(updated.Filters),
	})
	notify(ctx, s.publisher, events.ProductUpdated, updated)
	return updated, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) (*model.Product, error) {
	deleted, err := s.productRepo.Delete(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for delete", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	notify(ctx, s.publisher, events.ProductDeleted, ProductDeletedEvent{ID: deleted.ID, Name: deleted.Name})
	return deleted, nil
}

// UpdateStock overwrites the stock level. The last write wins.
func (s *productService) UpdateStock(ctx context.Context, productID uint, newStock int) error {
	if productID == 0 || newStock < 0 {
		return ErrInvalidStockUpdate
	}

	if err := s.productRepo.UpdateStock(productID, newStock); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for stock update", map[string]interface{}{
				"product_id": productID,
			})
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to update stock: %w", err)
	}

	logger.Info("Product stock updated", map[string]interface{}{
		"product_id": productID,
		"new_stock":  newStock,
	})
	return nil
}
