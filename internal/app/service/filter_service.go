package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/repository"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrFilterOptionNotFound = errors.New("filter option not found")
	ErrFilterValueNotFound  = errors.New("filter value not found")
	ErrFilterNameRequired   = errors.New("filter name is required")
	ErrEmptyFilterValue     = errors.New("filter value must not be empty")
	ErrInvalidFilterType    = errors.New("filter type must be checkbox, dropdown or slider")
	ErrInvalidFilterValues  = errors.New("filter values must be a non-empty list")
	ErrSliderFilterValues   = errors.New("slider filters do not have values")
)

type CreateFilterInput struct {
	SubSubCategoryID uint
	Name             string
	Type             string
	Values           []string
}

// UpdateFilterOptionInput changes only the fields that are set. A non-nil
// Values replaces every existing value.
type UpdateFilterOptionInput struct {
	Name   *string
	Type   *string
	Values *[]string
}

type FilterService interface {
	CreateFilter(ctx context.Context, input CreateFilterInput) (*model.FilterOption, error)
	GetFiltersForSubSubCategory(ctx context.Context, subSubCategoryID uint) ([]model.FilterOption, error)
	UpdateFilterOption(ctx context.Context, id uint, input UpdateFilterOptionInput) (*model.FilterOption, error)
	DeleteFilterOption(ctx context.Context, id uint) (*repository.DeletedFilterOption, error)

	CreateFilterValue(ctx context.Context, filterOptionID uint, value string) (*model.FilterValue, error)
	GetFilterValues(ctx context.Context, filterOptionID uint) ([]model.FilterValue, error)
	UpdateFilterValue(ctx context.Context, id uint, value string) (*model.FilterValue, error)
	DeleteFilterValue(ctx context.Context, id uint) (*repository.DeletedFilterValue, error)

	CreateProductFilter(ctx context.Context, productID, filterValueID uint) (*model.ProductFilter, error)
}

type filterService struct {
	filterRepo   repository.FilterRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	publisher    events.Publisher
}

func NewFilterService(
	filterRepo repository.FilterRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	publisher events.Publisher,
) FilterService {
	return &filterService{
		filterRepo:   filterRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		publisher:    orNoop(publisher),
	}
}

// cleanValues trims every entry and drops the empty ones.
func cleanValues(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

func parseFilterType(raw string) (model.FilterType, error) {
	filterType, err := model.ParseFilterType(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidFilterType
	}
	return filterType, nil
}

func (s *filterService) CreateFilter(ctx context.Context, input CreateFilterInput) (*model.FilterOption, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrFilterNameRequired
	}
	filterType, err := parseFilterType(input.Type)
	if err != nil {
		return nil, err
	}

	var values []string
	switch filterType {
	case model.FilterTypeSlider:
		values = nil
	case model.FilterTypeCheckbox, model.FilterTypeDropdown:
		if len(input.Values) == 0 {
			return nil, ErrInvalidFilterValues
		}
		values = cleanValues(input.Values)
	}

	if _, err := s.categoryRepo.FindSubSubByID(input.SubSubCategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Sub-sub category not found for filter", map[string]interface{}{
				"sub_sub_category_id": input.SubSubCategoryID,
			})
			return nil, ErrSubSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}

	option := &model.FilterOption{Name: name, Type: filterType}
	for _, v := range values {
		option.Values = append(option.Values, model.FilterValue{Value: v})
	}
	if err := s.filterRepo.CreateForSubSubCategory(option, input.SubSubCategoryID); err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}

	created, err := s.filterRepo.FindOptionByID(option.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created filter: %w", err)
	}

	logger.Info("Filter option created", map[string]interface{}{
		"filter_option_id":    created.ID,
		"type":                created.Type,
		"values":              len(created.Values),
		"sub_sub_category_id": input.SubSubCategoryID,
	})
	notify(ctx, s.publisher, events.FilterCreated, created)
	return created, nil
}

func (s *filterService) GetFiltersForSubSubCategory(ctx context.Context, subSubCategoryID uint) ([]model.FilterOption, error) {
	if _, err := s.categoryRepo.FindSubSubByID(subSubCategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubSubCategoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch filters: %w", err)
	}

	options, err := s.filterRepo.FindOptionsBySubSubCategory(subSubCategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filters: %w", err)
	}
	return options, nil
}

func (s *filterService) findOption(id uint) (*model.FilterOption, error) {
	option, err := s.filterRepo.FindOptionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Filter option not found", map[string]interface{}{
				"filter_option_id": id,
			})
			return nil, ErrFilterOptionNotFound
		}
		return nil, fmt.Errorf("failed to fetch filter option: %w", err)
	}
	return option, nil
}

func (s *filterService) UpdateFilterOption(ctx context.Context, id uint, input UpdateFilterOptionInput) (*model.FilterOption, error) {
	var name string
	if input.Name != nil {
		if name = strings.TrimSpace(*input.Name); name == "" {
			return nil, ErrFilterNameRequired
		}
	}
	var filterType model.FilterType
	if input.Type != nil {
		parsed, err := parseFilterType(*input.Type)
		if err != nil {
			return nil, err
		}
		filterType = parsed
	}

	option, err := s.findOption(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		option.Name = name
	}
	if input.Type != nil {
		option.Type = filterType
	}

	var values []string
	replace := false
	switch option.Type {
	case model.FilterTypeSlider:
		if input.Values != nil && len(cleanValues(*input.Values)) > 0 {
			logger.Warn("Values sent for slider filter option", map[string]interface{}{
				"filter_option_id": id,
			})
			return nil, ErrSliderFilterValues
		}
		// Sliders never own values; switching to slider drops any left over.
		replace = input.Values != nil || len(option.Values) > 0
	case model.FilterTypeCheckbox, model.FilterTypeDropdown:
		if input.Values != nil {
			replace = true
			values = cleanValues(*input.Values)
		}
	}

	if err := s.filterRepo.UpdateOption(option, values, replace); err != nil {
		return nil, fmt.Errorf("failed to update filter option: %w", err)
	}

	updated, err := s.filterRepo.FindOptionByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated filter option: %w", err)
	}

	logger.Info("Filter option updated", map[string]interface{}{
		"filter_option_id": id,
		"values_replaced":  replace,
	})
	notify(ctx, s.publisher, events.FilterUpdated, updated)
	return updated, nil
}

func (s *filterService) DeleteFilterOption(ctx context.Context, id uint) (*repository.DeletedFilterOption, error) {
	deleted, err := s.filterRepo.DeleteOptionCascade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Filter option not found for delete", map[string]interface{}{
				"filter_option_id": id,
			})
			return nil, ErrFilterOptionNotFound
		}
		return nil, fmt.Errorf("failed to delete filter option: %w", err)
	}

	logger.Info("Filter option deleted", map[string]interface{}{
		"filter_option_id": id,
		"values":           len(deleted.Values),
		"product_filters":  len(deleted.ProductFilters),
	})
	notify(ctx, s.publisher, events.FilterDeleted, deleted)
	return deleted, nil
}

func (s *filterService) CreateFilterValue(ctx context.Context, filterOptionID uint, value string) (*model.FilterValue, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyFilterValue
	}

	option, err := s.findOption(filterOptionID)
	if err != nil {
		return nil, err
	}
	if !option.Type.HasValues() {
		return nil, ErrSliderFilterValues
	}

	created := &model.FilterValue{Value: value, FilterOptionID: filterOptionID}
	if err := s.filterRepo.CreateValue(created); err != nil {
		return nil, fmt.Errorf("failed to create filter value: %w", err)
	}

	withOption, err := s.filterRepo.FindValueByID(created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created filter value: %w", err)
	}

	logger.Info("Filter value created", map[string]interface{}{
		"filter_value_id":  withOption.ID,
		"filter_option_id": filterOptionID,
	})
	notify(ctx, s.publisher, events.FilterValueCreated, withOption)
	return withOption, nil
}

func (s *filterService) GetFilterValues(ctx context.Context, filterOptionID uint) ([]model.FilterValue, error) {
	if _, err := s.findOption(filterOptionID); err != nil {
		return nil, err
	}

	values, err := s.filterRepo.FindValuesByOption(filterOptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filter values: %w", err)
	}
	return values, nil
}

func (s *filterService) UpdateFilterValue(ctx context.Context, id uint, value string) (*model.FilterValue, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmptyFilterValue
	}

	existing, err := s.filterRepo.FindValueByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Filter value not found for update", map[string]interface{}{
				"filter_value_id": id,
			})
			return nil, ErrFilterValueNotFound
		}
		return nil, fmt.Errorf("failed to update filter value: %w", err)
	}

	existing.Value = value
	if err := s.filterRepo.UpdateValue(existing); err != nil {
		return nil, fmt.Errorf("failed to update filter value: %w", err)
	}

	logger.Info("Filter value updated", map[string]interface{}{
		"filter_value_id": id,
	})
	notify(ctx, s.publisher, events.FilterValueUpdated, existing)
	return existing, nil
}

func (s *filterService) DeleteFilterValue(ctx context.Context, id uint) (*repository.DeletedFilterValue, error) {
	deleted, err := s.filterRepo.DeleteValueCascade(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFilterValueNotFound
		}
		return nil, fmt.Errorf("failed to delete filter value: %w", err)
	}

	logger.Info("Filter value deleted", map[string]interface{}{
		"filter_value_id": id,
		"product_filters": len(deleted.ProductFilters),
	})
	notify(ctx, s.publisher, events.FilterValueDeleted, deleted)
	return deleted, nil
}

func (s *filterService) CreateProductFilter(ctx context.Context, productID, filterValueID uint) (*model.ProductFilter, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found for product filter", map[string]interface{}{
				"product_id": productID,
			})
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to create product filter: %w", err)
	}

	if _, err := s.filterRepo.FindValueByID(filterValueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Filter value not found for product filter", map[string]interface{}{
				"filter_value_id": filterValueID,
			})
			return nil, ErrFilterValueNotFound
		}
		return nil, fmt.Errorf("failed to create product filter: %w", err)
	}

	link, err := s.filterRepo.CreateProductFilter(productID, filterValueID)
	if err != nil {
		return nil, fmt.Errorf("failed to create product filter: %w", err)
	}

	logger.Info("Product filter created", map[string]interface{}{
		"product_filter_id": link.ID,
		"product_id":        productID,
		"filter_value_id":   filterValueID,
	})
	notify(ctx, s.publisher, events.ProductFilterAdded, link)
	return link, nil
}
