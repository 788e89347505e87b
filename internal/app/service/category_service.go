package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/cache"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrMainCategoryNotFound   = errors.New("main category not found")
	ErrSubCategoryNotFound    = errors.New("sub category not found")
	ErrSubSubCategoryNotFound = errors.New("sub-sub category not found")
	ErrCategoryNameRequired   = errors.New("category name is required")
)

type CategoryService interface {
	CreateMainCategory(ctx context.Context, name string) (*model.MainCategory, error)
	ListMainCategories(ctx context.Context) ([]model.MainCategory, error)
	UpdateMainCategory(ctx context.Context, id uint, name string) (*model.MainCategory, error)
	DeleteMainCategory(ctx context.Context, id uint) (*model.MainCategory, error)

	CreateSubCategory(ctx context.Context, name string, mainCategoryID uint) (*model.SubCategory, error)
	ListSubCategories(ctx context.Context) ([]model.SubCategory, error)
	UpdateSubCategory(ctx context.Context, id uint, name string, mainCategoryID *uint) (*model.SubCategory, error)
	DeleteSubCategory(ctx context.Context, id uint) (*model.SubCategory, error)

	CreateSubSubCategory(ctx context.Context, name string, subCategoryID uint) (*model.SubSubCategory, error)
	ListSubSubCategories(ctx context.Context) ([]model.SubSubCategory, error)
	UpdateSubSubCategory(ctx context.Context, id uint, name string, subCategoryID *uint) (*model.SubSubCategory, error)
	DeleteSubSubCategory(ctx context.Context, id uint) (*model.SubSubCategory, error)
}

type categoryService struct {
	repo      repository.CategoryRepository
	cache     *cache.CategoryCache
	publisher events.Publisher
}

// NewCategoryService wires the category store. categoryCache and
// publisher may be nil.
func NewCategoryService(repo repository.CategoryRepository, categoryCache *cache.CategoryCache, publisher events.Publisher) CategoryService {
	return &categoryService{
		repo:      repo,
		cache:     categoryCache,
		publisher: orNoop(publisher),
	}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrCategoryNameRequired
	}
	return name, nil
}

// changed invalidates the cached lists and announces the mutation.
func (s *categoryService) changed(ctx context.Context, kind events.Kind, level string, category interface{}) {
	s.cache.Invalidate(ctx)
	notify(ctx, s.publisher, kind, events.CategoryChange{Level: level, Category: category})
}

// ==================== Main ====================

func (s *categoryService) CreateMainCategory(ctx context.Context, name string) (*model.MainCategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	category := &model.MainCategory{Name: name}
	if err := s.repo.CreateMain(category); err != nil {
		return nil, fmt.Errorf("failed to create main category: %w", err)
	}

	logger.Info("Main category created", map[string]interface{}{
		"main_category_id": category.ID,
		"name":             category.Name,
	})
	s.changed(ctx, events.CategoryCreated, events.LevelMain, category)
	return category, nil
}

func (s *categoryService) ListMainCategories(ctx context.Context) ([]model.MainCategory, error) {
	var categories []model.MainCategory
	if s.cache.Get(ctx, cache.KeyMainCategories, &categories) {
		return categories, nil
	}

	categories, err := s.repo.ListMain()
	if err != nil {
		return nil, fmt.Errorf("failed to list main categories: %w", err)
	}
	s.cache.Set(ctx, cache.KeyMainCategories, categories)
	return categories, nil
}

func (s *categoryService) UpdateMainCategory(ctx context.Context, id uint, name string) (*model.MainCategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.FindMainByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Main category not found for update", map[string]interface{}{
				"main_category_id": id,
			})
			return nil, ErrMainCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update main category: %w", err)
	}

	category.Name = name
	if err := s.repo.UpdateMain(category); err != nil {
		return nil, fmt.Errorf("failed to update main category: %w", err)
	}

	logger.Info("Main category updated", map[string]interface{}{
		"main_category_id": id,
	})
	s.changed(ctx, events.CategoryUpdated, events.LevelMain, category)
	return category, nil
}

func (s *categoryService) DeleteMainCategory(ctx context.Context, id uint) (*model.MainCategory, error) {
	deleted, err := s.repo.DeleteMainCascade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Main category not found for delete", map[string]interface{}{
				"main_category_id": id,
			})
			return nil, ErrMainCategoryNotFound
		}
		return nil, fmt.Errorf("failed to delete main category: %w", err)
	}

	logger.Info("Main category deleted", map[string]interface{}{
		"main_category_id": id,
	})
	s.changed(ctx, events.CategoryDeleted, events.LevelMain, deleted)
	return deleted, nil
}

// ==================== Sub ====================

func (s *categoryService) CreateSubCategory(ctx context.Context, name string, mainCategoryID uint) (*model.SubCategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	category := &model.SubCategory{Name: name, MainCategoryID: mainCategoryID}
	if err := s.repo.CreateSub(category); err != nil {
		if apperrors.IsForeignKeyViolation(err) {
			return nil, ErrMainCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create sub category: %w", err)
	}

	logger.Info("Sub category created", map[string]interface{}{
		"sub_category_id":  category.ID,
		"main_category_id": mainCategoryID,
	})
	s.changed(ctx, events.CategoryCreated, events.LevelSub, category)
	return category, nil
}

func (s *categoryService) ListSubCategories(ctx context.Context) ([]model.SubCategory, error) {
	var categories []model.SubCategory
	if s.cache.Get(ctx, cache.KeySubCategories, &categories) {
		return categories, nil
	}

	categories, err := s.repo.ListSub()
	if err != nil {
		return nil, fmt.Errorf("failed to list sub categories: %w", err)
	}
	s.cache.Set(ctx, cache.KeySubCategories, categories)
	return categories, nil
}

func (s *categoryService) UpdateSubCategory(ctx context.Context, id uint, name string, mainCategoryID *uint) (*model.SubCategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.FindSubByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update sub category: %w", err)
	}

	category.Name = name
	if mainCategoryID != nil {
		category.MainCategoryID = *mainCategoryID
	}
	if err := s.repo.UpdateSub(category); err != nil {
		if apperrors.IsForeignKeyViolation(err) {
			return nil, ErrMainCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update sub category: %w", err)
	}

	logger.Info("Sub category updated", map[string]interface{}{
		"sub_category_id":  id,
		"main_category_id": category.MainCategoryID,
	})
	s.changed(ctx, events.CategoryUpdated, events.LevelSub, category)
	return category, nil
}

func (s *categoryService) DeleteSubCategory(ctx context.Context, id uint) (*model.SubCategory, error) {
	deleted, err := s.repo.DeleteSubCascade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Sub category not found for delete", map[string]interface{}{
				"sub_category_id": id,
			})
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to delete sub category: %w", err)
	}

	logger.Info("Sub category deleted", map[string]interface{}{
		"sub_category_id": id,
	})
	s.changed(ctx, events.CategoryDeleted, events.LevelSub, deleted)
	return deleted, nil
}

// ==================== SubSub ====================

func (s *categoryService) CreateSubSubCategory(ctx context.Context, name string, subCategoryID uint) (*model.SubSubCategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	category := &model.SubSubCategory{Name: name, SubCategoryID: subCategoryID}
	if err := s.repo.CreateSubSub(category); err != nil {
		if apperrors.IsForeignKeyViolation(err) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create sub-sub category: %w", err)
	}

	logger.Info("Sub-sub category created", map[string]interface{}{
		"sub_sub_category_id": category.ID,
		"sub_category_id":     subCategoryID,
	})
	s.changed(ctx, events.CategoryCreated, events.LevelSubSub, category)
	return category, nil
}

func (s *categoryService) ListSubSubCategories(ctx context.Context) ([]model.SubSubCategory, error) {
	var categories []model.SubSubCategory
	if s.cache.Get(ctx, cache.KeySubSubCategories, &categories) {
		return categories, nil
	}

	categories, err := s.repo.ListSubSub()
	if err != nil {
		return nil, fmt.Errorf("failed to list sub-sub categories: %w", err)
	}
	s.cache.Set(ctx, cache.KeySubSubCategories, categories)
	return categories, nil
}

func (s *categoryService) UpdateSubSubCategory(ctx context.Context, id uint, name string, subCategoryID *uint) (*model.SubSubCategory, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.FindSubSubByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update sub-sub category: %w", err)
	}

	category.Name = name
	if subCategoryID != nil {
		category.SubCategoryID = *subCategoryID
	}
	if err := s.repo.UpdateSubSub(category); err != nil {
		if apperrors.IsForeignKeyViolation(err) {
			return nil, ErrSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update sub-sub category: %w", err)
	}

	logger.Info("Sub-sub category updated", map[string]interface{}{
		"sub_sub_category_id": id,
		"sub_category_id":     category.SubCategoryID,
	})
	s.changed(ctx, events.CategoryUpdated, events.LevelSubSub, category)
	return category, nil
}

func (s *categoryService) DeleteSubSubCategory(ctx context.Context, id uint) (*model.SubSubCategory, error) {
	deleted, err := s.repo.DeleteSubSubCascade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Sub-sub category not found for delete", map[string]interface{}{
				"sub_sub_category_id": id,
			})
			return nil, ErrSubSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to delete sub-sub category: %w", err)
	}

	logger.Info("Sub-sub category deleted", map[string]interface{}{
		"sub_sub_category_id": id,
	})
	s.changed(ctx, events.CategoryDeleted, events.LevelSubSub, deleted)
	return deleted, nil
}
