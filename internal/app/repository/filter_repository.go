package repository

import (
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeletedFilterOption holds every row removed by a filter option delete.
type DeletedFilterOption struct {
	Option                         model.FilterOption                   `json:"filterOption"`
	Values                         []model.FilterValue                  `json:"filterValues"`
	ProductFilters                 []model.ProductFilter                `json:"productFilters"`
	CategoryFilterOptions          []model.CategoryFilterOption         `json:"categoryFilterOptions"`
	CategoryFilterOptionCategories []model.CategoryFilterOptionCategory `json:"categoryFilterOptionCategories"`
}

// DeletedFilterValue holds a removed value and the product links removed with it.
type DeletedFilterValue struct {
	Value          model.FilterValue     `json:"filterValue"`
	ProductFilters []model.ProductFilter `json:"productFilters"`
}

type FilterRepository interface {
	CreateForSubSubCategory(option *model.FilterOption, subSubCategoryID uint) error
	FindOptionByID(id uint) (*model.FilterOption, error)
	FindOptionsBySubSubCategory(subSubCategoryID uint) ([]model.FilterOption, error)
	UpdateOption(option *model.FilterOption, values []string, replaceValues bool) error
	DeleteOptionCascade(id uint) (*DeletedFilterOption, error)

	CreateValue(value *model.FilterValue) error
	FindValueByID(id uint) (*model.FilterValue, error)
	FindValuesByOption(optionID uint) ([]model.FilterValue, error)
	UpdateValue(value *model.FilterValue) error
	DeleteValueCascade(id uint) (*DeletedFilterValue, error)

	CreateProductFilter(productID, filterValueID uint) (*model.ProductFilter, error)
}

type filterRepository struct {
	db *gorm.DB
}

func NewFilterRepository(db *gorm.DB) FilterRepository {
	return &filterRepository{db: db}
}

// CreateForSubSubCategory inserts the option, its values, the category
// wrapper and the leaf binding in one transaction.
func (r *filterRepository) CreateForSubSubCategory(option *model.FilterOption, subSubCategoryID uint) error {
	logger.Debug("Creating filter option in database", map[string]interface{}{
		"name":                option.Name,
		"type":                option.Type,
		"values":              len(option.Values),
		"sub_sub_category_id": subSubCategoryID,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		values := option.Values
		if err := tx.Omit(clause.Associations).Create(option).Error; err != nil {
			return err
		}

		if len(values) > 0 {
			for i := range values {
				values[i].FilterOptionID = option.ID
			}
			if err := tx.Omit(clause.Associations).Create(&values).Error; err != nil {
				return err
			}
			option.Values = values
		}

		wrapper := model.CategoryFilterOption{FilterOptionID: option.ID}
		if err := tx.Omit(clause.Associations).Create(&wrapper).Error; err != nil {
			return err
		}

		binding := model.CategoryFilterOptionCategory{
			SubSubCategoryID:       subSubCategoryID,
			CategoryFilterOptionID: wrapper.ID,
		}
		return tx.Omit(clause.Associations).Create(&binding).Error
	})
	if err != nil {
		logger.Error("Failed to create filter option in database", err, map[string]interface{}{
			"name":                option.Name,
			"sub_sub_category_id": subSubCategoryID,
		})
		return err
	}

	logger.Debug("Filter option created in database", map[string]interface{}{
		"filter_option_id": option.ID,
	})
	return nil
}

func (r *filterRepository) FindOptionByID(id uint) (*model.FilterOption, error) {
	var option model.FilterOption
	err := r.db.
		Preload("Values", func(db *gorm.DB) *gorm.DB {
			return db.Order("filter_values.id ASC")
		}).
		Preload("CategoryFilterOptions.Categories").
		First(&option, id).Error
	if err != nil {
		logger.Error("Failed to find filter option by ID", err, map[string]interface{}{
			"filter_option_id": id,
		})
		return nil, err
	}
	return &option, nil
}

// FindOptionsBySubSubCategory resolves options through the two join
// tables, then attaches values fetched in a single query.
func (r *filterRepository) FindOptionsBySubSubCategory(subSubCategoryID uint) ([]model.FilterOption, error) {
	logger.Debug("Finding filter options by sub-sub category", map[string]interface{}{
		"sub_sub_category_id": subSubCategoryID,
	})

	options := []model.FilterOption{}

	var wrapperIDs []uint
	if err := r.db.Model(&model.CategoryFilterOptionCategory{}).
		Where("sub_sub_category_id = ?", subSubCategoryID).
		Pluck("category_filter_option_id", &wrapperIDs).Error; err != nil {
		logger.Error("Failed to resolve category filter bindings", err, map[string]interface{}{
			"sub_sub_category_id": subSubCategoryID,
		})
		return nil, err
	}
	if len(wrapperIDs) == 0 {
		return options, nil
	}

	var optionIDs []uint
	if err := r.db.Model(&model.CategoryFilterOption{}).
		Where("id IN ?", wrapperIDs).
		Distinct().
		Pluck("filter_option_id", &optionIDs).Error; err != nil {
		logger.Error("Failed to resolve category filter options", err, map[string]interface{}{
			"sub_sub_category_id": subSubCategoryID,
		})
		return nil, err
	}
	if len(optionIDs) == 0 {
		return options, nil
	}

	if err := r.db.Where("id IN ?", optionIDs).Order("id ASC").Find(&options).Error; err != nil {
		logger.Error("Failed to load filter options", err, map[string]interface{}{
			"sub_sub_category_id": subSubCategoryID,
		})
		return nil, err
	}

	var values []model.FilterValue
	if err := r.db.Where("filter_option_id IN ?", optionIDs).Order("id ASC").Find(&values).Error; err != nil {
		logger.Error("Failed to load filter values", err, map[string]interface{}{
			"sub_sub_category_id": subSubCategoryID,
		})
		return nil, err
	}

	byOption := make(map[uint][]model.FilterValue, len(options))
	for _, value := range values {
		byOption[value.FilterOptionID] = append(byOption[value.FilterOptionID], value)
	}
	for i := range options {
		options[i].Values = byOption[options[i].ID]
		if options[i].Values == nil {
			options[i].Values = []model.FilterValue{}
		}
	}

	logger.Debug("Filter options found by sub-sub category", map[string]interface{}{
		"sub_sub_category_id": subSubCategoryID,
		"count":               len(options),
	})
	return options, nil
}

// UpdateOption writes name and type. When replaceValues is set, the
// option's values (and product links to them) are replaced by values.
func (r *filterRepository) UpdateOption(option *model.FilterOption, values []string, replaceValues bool) error {
	logger.Debug("Updating filter option in database", map[string]interface{}{
		"filter_option_id": option.ID,
		"replace_values":   replaceValues,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(option).Select("name", "type", "updated_at").Updates(option).Error; err != nil {
			return err
		}
		if !replaceValues {
			return nil
		}

		if err := deleteValuesOfOption(tx, option.ID); err != nil {
			return err
		}

		if len(values) == 0 {
			return nil
		}
		rows := make([]model.FilterValue, 0, len(values))
		for _, v := range values {
			rows = append(rows, model.FilterValue{Value: v, FilterOptionID: option.ID})
		}
		return tx.Omit(clause.Associations).Create(&rows).Error
	})
	if err != nil {
		logger.Error("Failed to update filter option in database", err, map[string]interface{}{
			"filter_option_id": option.ID,
		})
		return err
	}
	return nil
}

// deleteValuesOfOption removes product links first, then the values.
func deleteValuesOfOption(tx *gorm.DB, optionID uint) error {
	var valueIDs []uint
	if err := tx.Model(&model.FilterValue{}).
		Where("filter_option_id = ?", optionID).
		Pluck("id", &valueIDs).Error; err != nil {
		return err
	}
	if len(valueIDs) == 0 {
		return nil
	}
	if err := tx.Where("filter_value_id IN ?", valueIDs).Delete(&model.ProductFilter{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", valueIDs).Delete(&model.FilterValue{}).Error
}

func (r *filterRepository) DeleteOptionCascade(id uint) (*DeletedFilterOption, error) {
	logger.Debug("Deleting filter option with cascade", map[string]interface{}{
		"filter_option_id": id,
	})

	deleted := &DeletedFilterOption{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted.Option, id).Error; err != nil {
			return err
		}

		if err := tx.Where("filter_option_id = ?", id).Find(&deleted.Values).Error; err != nil {
			return err
		}
		valueIDs := make([]uint, 0, len(deleted.Values))
		for _, v := range deleted.Values {
			valueIDs = append(valueIDs, v.ID)
		}

		if len(valueIDs) > 0 {
			if err := tx.Where("filter_value_id IN ?", valueIDs).Find(&deleted.ProductFilters).Error; err != nil {
				return err
			}
			if err := tx.Where("filter_value_id IN ?", valueIDs).Delete(&model.ProductFilter{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", valueIDs).Delete(&model.FilterValue{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("filter_option_id = ?", id).Find(&deleted.CategoryFilterOptions).Error; err != nil {
			return err
		}
		wrapperIDs := make([]uint, 0, len(deleted.CategoryFilterOptions))
		for _, w := range deleted.CategoryFilterOptions {
			wrapperIDs = append(wrapperIDs, w.ID)
		}

		if len(wrapperIDs) > 0 {
			if err := tx.Where("category_filter_option_id IN ?", wrapperIDs).
				Find(&deleted.CategoryFilterOptionCategories).Error; err != nil {
				return err
			}
			if err := tx.Where("category_filter_option_id IN ?", wrapperIDs).
				Delete(&model.CategoryFilterOptionCategory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", wrapperIDs).Delete(&model.CategoryFilterOption{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.FilterOption{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete filter option", err, map[string]interface{}{
			"filter_option_id": id,
		})
		return nil, err
	}

	logger.Debug("Filter option deleted", map[string]interface{}{
		"filter_option_id": id,
		"values":           len(deleted.Values),
		"product_filters":  len(deleted.ProductFilters),
	})
	return deleted, nil
}

func (r *filterRepository) CreateValue(value *model.FilterValue) error {
	if err := r.db.Omit(clause.Associations).Create(value).Error; err != nil {
		logger.Error("Failed to create filter value in database", err, map[string]interface{}{
			"filter_option_id": value.FilterOptionID,
		})
		return err
	}
	return nil
}

func (r *filterRepository) FindValueByID(id uint) (*model.FilterValue, error) {
	var value model.FilterValue
	if err := r.db.Preload("FilterOption").First(&value, id).Error; err != nil {
		logger.Error("Failed to find filter value by ID", err, map[string]interface{}{
			"filter_value_id": id,
		})
		return nil, err
	}
	return &value, nil
}

func (r *filterRepository) FindValuesByOption(optionID uint) ([]model.FilterValue, error) {
	values := []model.FilterValue{}
	if err := r.db.Where("filter_option_id = ?", optionID).Order("id ASC").Find(&values).Error; err != nil {
		logger.Error("Failed to find filter values by option", err, map[string]interface{}{
			"filter_option_id": optionID,
		})
		return nil, err
	}
	return values, nil
}

func (r *filterRepository) UpdateValue(value *model.FilterValue) error {
	if err := r.db.Model(value).Select("value", "updated_at").Updates(value).Error; err != nil {
		logger.Error("Failed to update filter value in database", err, map[string]interface{}{
			"filter_value_id": value.ID,
		})
		return err
	}
	return nil
}

func (r *filterRepository) DeleteValueCascade(id uint) (*DeletedFilterValue, error) {
	deleted := &DeletedFilterValue{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted.Value, id).Error; err != nil {
			return err
		}
		if err := tx.Where("filter_value_id = ?", id).Find(&deleted.ProductFilters).Error; err != nil {
			return err
		}
		if err := tx.Where("filter_value_id = ?", id).Delete(&model.ProductFilter{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.FilterValue{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete filter value", err, map[string]interface{}{
			"filter_value_id": id,
		})
		return nil, err
	}
	return deleted, nil
}

// CreateProductFilter links a product to a value. An existing link is
// returned unchanged.
func (r *filterRepository) CreateProductFilter(productID, filterValueID uint) (*model.ProductFilter, error) {
	logger.Debug("Creating product filter in database", map[string]interface{}{
		"product_id":      productID,
		"filter_value_id": filterValueID,
	})

	link := model.ProductFilter{ProductID: productID, FilterValueID: filterValueID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&link).Error; err != nil {
		logger.Error("Failed to create product filter in database", err, map[string]interface{}{
			"product_id":      productID,
			"filter_value_id": filterValueID,
		})
		return nil, err
	}

	var stored model.ProductFilter
	if err := r.db.
		Preload("Product").
		Preload("FilterValue.FilterOption").
		Where("product_id = ? AND filter_value_id = ?", productID, filterValueID).
		First(&stored).Error; err != nil {
		logger.Error("Failed to load product filter", err, map[string]interface{}{
			"product_id":      productID,
			"filter_value_id": filterValueID,
		})
		return nil, err
	}
	return &stored, nil
}
