package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/cache"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// RelatedProductsLimit caps the products returned with a view.
const RelatedProductsLimit = 10

type ProductViewService interface {
	// RecordView counts a view of productID and returns related products.
	RecordView(ctx context.Context, productID uint) ([]model.Product, error)
	// SyncViewCounts moves buffered views into the database and returns
	// how many products were touched.
	SyncViewCounts(ctx context.Context) (int, error)
}

type productViewService struct {
	productRepo repository.ProductRepository
	counter     *cache.ViewCounter
}

func NewProductViewService(productRepo repository.ProductRepository, counter *cache.ViewCounter) ProductViewService {
	return &productViewService{productRepo: productRepo, counter: counter}
}

func (s *productViewService) RecordView(ctx context.Context, productID uint) ([]model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to record product view: %w", err)
	}

	if err := s.counter.Increment(ctx, productID); err != nil {
		logger.Warn("Failed to count product view", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
	}

	related, err := s.productRepo.FindRelated(product, RelatedProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch related products: %w", err)
	}
	return related, nil
}

func (s *productViewService) SyncViewCounts(ctx context.Context) (int, error) {
	counts, err := s.counter.Drain(ctx)
	if err != nil && len(counts) == 0 {
		return 0, err
	}
	if err != nil {
		logger.Warn("Partial view counter drain", map[string]interface{}{
			"error":    err.Error(),
			"products": len(counts),
		})
	}
	if len(counts) == 0 {
		return 0, nil
	}

	if err := s.productRepo.AddViewCounts(counts); err != nil {
		if restoreErr := s.counter.Restore(ctx, counts); restoreErr != nil {
			logger.Error("Failed to restore view counters", restoreErr, map[string]interface{}{
				"products": len(counts),
			})
		}
		return 0, fmt.Errorf("failed to persist view counts: %w", err)
	}

	logger.Info("Product view counts synced", map[string]interface{}{
		"products": len(counts),
	})
	return len(counts), nil
}
