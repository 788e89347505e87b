package repository

import (
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	CreateMain(category *model.MainCategory) error
	FindMainByID(id uint) (*model.MainCategory, error)
	ListMain() ([]model.MainCategory, error)
	UpdateMain(category *model.MainCategory) error
	DeleteMainCascade(id uint) (*model.MainCategory, error)

	CreateSub(category *model.SubCategory) error
	FindSubByID(id uint) (*model.SubCategory, error)
	ListSub() ([]model.SubCategory, error)
	UpdateSub(category *model.SubCategory) error
	DeleteSubCascade(id uint) (*model.SubCategory, error)

	CreateSubSub(category *model.SubSubCategory) error
	FindSubSubByID(id uint) (*model.SubSubCategory, error)
	ListSubSub() ([]model.SubSubCategory, error)
	UpdateSubSub(category *model.SubSubCategory) error
	DeleteSubSubCascade(id uint) (*model.SubSubCategory, error)

	UpsertTree(paths []model.CategoryPath) (int, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// ==================== Main ====================

func (r *categoryRepository) CreateMain(category *model.MainCategory) error {
	logger.Debug("Creating main category in database", map[string]interface{}{
		"name": category.Name,
	})

	if err := r.db.Omit("SubCategories").Create(category).Error; err != nil {
		logger.Error("Failed to create main category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) FindMainByID(id uint) (*model.MainCategory, error) {
	var category model.MainCategory
	if err := r.db.First(&category, id).Error; err != nil {
		logger.Error("Failed to find main category by ID", err, map[string]interface{}{
			"main_category_id": id,
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListMain() ([]model.MainCategory, error) {
	var categories []model.MainCategory
	if err := r.db.Preload("SubCategories", func(db *gorm.DB) *gorm.DB {
		return db.Order("sub_categories.id ASC")
	}).Order("main_categories.id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list main categories", err)
		return nil, err
	}

	logger.Debug("Main categories listed", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) UpdateMain(category *model.MainCategory) error {
	if err := r.db.Model(category).Select("name", "updated_at").Updates(category).Error; err != nil {
		logger.Error("Failed to update main category in database", err, map[string]interface{}{
			"main_category_id": category.ID,
		})
		return err
	}
	return nil
}

// DeleteMainCascade removes the main category with all of its sub and
// sub-sub categories. Products in the removed leaves are kept with a
// cleared category reference.
func (r *categoryRepository) DeleteMainCascade(id uint) (*model.MainCategory, error) {
	logger.Debug("Deleting main category with cascade", map[string]interface{}{
		"main_category_id": id,
	})

	var deleted model.MainCategory
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}

		var subIDs []uint
		if err := tx.Model(&model.SubCategory{}).
			Where("main_category_id = ?", id).
			Pluck("id", &subIDs).Error; err != nil {
			return err
		}

		var subSubIDs []uint
		if len(subIDs) > 0 {
			if err := tx.Model(&model.SubSubCategory{}).
				Where("sub_category_id IN ?", subIDs).
				Pluck("id", &subSubIDs).Error; err != nil {
				return err
			}
		}

		if err := detachAndDeleteSubSubs(tx, subSubIDs); err != nil {
			return err
		}

		if len(subIDs) > 0 {
			if err := tx.Where("id IN ?", subIDs).Delete(&model.SubCategory{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.MainCategory{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete main category", err, map[string]interface{}{
			"main_category_id": id,
		})
		return nil, err
	}

	logger.Debug("Main category deleted", map[string]interface{}{
		"main_category_id": id,
	})
	return &deleted, nil
}

// ==================== Sub ====================

func (r *categoryRepository) CreateSub(category *model.SubCategory) error {
	logger.Debug("Creating sub category in database", map[string]interface{}{
		"name":             category.Name,
		"main_category_id": category.MainCategoryID,
	})

	if err := r.db.Omit("MainCategory", "SubSubCategories").Create(category).Error; err != nil {
		logger.Error("Failed to create sub category in database", err, map[string]interface{}{
			"name":             category.Name,
			"main_category_id": category.MainCategoryID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) FindSubByID(id uint) (*model.SubCategory, error) {
	var category model.SubCategory
	if err := r.db.First(&category, id).Error; err != nil {
		logger.Error("Failed to find sub category by ID", err, map[string]interface{}{
			"sub_category_id": id,
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListSub() ([]model.SubCategory, error) {
	var categories []model.SubCategory
	if err := r.db.
		Preload("MainCategory").
		Preload("SubSubCategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("sub_sub_categories.id ASC")
		}).
		Order("sub_categories.id ASC").
		Find(&categories).Error; err != nil {
		logger.Error("Failed to list sub categories", err)
		return nil, err
	}

	logger.Debug("Sub categories listed", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) UpdateSub(category *model.SubCategory) error {
	if err := r.db.Model(category).Select("name", "main_category_id", "updated_at").Updates(category).Error; err != nil {
		logger.Error("Failed to update sub category in database", err, map[string]interface{}{
			"sub_category_id": category.ID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) DeleteSubCascade(id uint) (*model.SubCategory, error) {
	logger.Debug("Deleting sub category with cascade", map[string]interface{}{
		"sub_category_id": id,
	})

	var deleted model.SubCategory
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}

		var subSubIDs []uint
		if err := tx.Model(&model.SubSubCategory{}).
			Where("sub_category_id = ?", id).
			Pluck("id", &subSubIDs).Error; err != nil {
			return err
		}

		if err := detachAndDeleteSubSubs(tx, subSubIDs); err != nil {
			return err
		}

		return tx.Delete(&model.SubCategory{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete sub category", err, map[string]interface{}{
			"sub_category_id": id,
		})
		return nil, err
	}
	return &deleted, nil
}

// ==================== SubSub ====================

func (r *categoryRepository) CreateSubSub(category *model.SubSubCategory) error {
	logger.Debug("Creating sub-sub category in database", map[string]interface{}{
		"name":            category.Name,
		"sub_category_id": category.SubCategoryID,
	})

	if err := r.db.Omit("SubCategory").Create(category).Error; err != nil {
		logger.Error("Failed to create sub-sub category in database", err, map[string]interface{}{
			"name":            category.Name,
			"sub_category_id": category.SubCategoryID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) FindSubSubByID(id uint) (*model.SubSubCategory, error) {
	var category model.SubSubCategory
	if err := r.db.First(&category, id).Error; err != nil {
		logger.Error("Failed to find sub-sub category by ID", err, map[string]interface{}{
			"sub_sub_category_id": id,
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListSubSub() ([]model.SubSubCategory, error) {
	var categories []model.SubSubCategory
	if err := r.db.
		Preload("SubCategory.MainCategory").
		Order("sub_sub_categories.id ASC").
		Find(&categories).Error; err != nil {
		logger.Error("Failed to list sub-sub categories", err)
		return nil, err
	}

	logger.Debug("Sub-sub categories listed", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) UpdateSubSub(category *model.SubSubCategory) error {
	if err := r.db.Model(category).Select("name", "sub_category_id", "updated_at").Updates(category).Error; err != nil {
		logger.Error("Failed to update sub-sub category in database", err, map[string]interface{}{
			"sub_sub_category_id": category.ID,
		})
		return err
	}
	return nil
}

func (r *categoryRepository) DeleteSubSubCascade(id uint) (*model.SubSubCategory, error) {
	var deleted model.SubSubCategory
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}
		return detachAndDeleteSubSubs(tx, []uint{id})
	})
	if err != nil {
		logger.Error("Failed to delete sub-sub category", err, map[string]interface{}{
			"sub_sub_category_id": id,
		})
		return nil, err
	}
	return &deleted, nil
}

// detachAndDeleteSubSubs clears product references and filter bindings
// pointing at the given leaves, then removes the leaves themselves.
// Filter options left without any bound leaf are removed with their values.
func detachAndDeleteSubSubs(tx *gorm.DB, subSubIDs []uint) error {
	if len(subSubIDs) == 0 {
		return nil
	}

	if err := tx.Model(&model.Product{}).
		Where("sub_sub_category_id IN ?", subSubIDs).
		Update("sub_sub_category_id", nil).Error; err != nil {
		return err
	}

	var wrapperIDs []uint
	if err := tx.Model(&model.CategoryFilterOptionCategory{}).
		Where("sub_sub_category_id IN ?", subSubIDs).
		Distinct().
		Pluck("category_filter_option_id", &wrapperIDs).Error; err != nil {
		return err
	}

	if err := tx.Where("sub_sub_category_id IN ?", subSubIDs).
		Delete(&model.CategoryFilterOptionCategory{}).Error; err != nil {
		return err
	}

	if err := deleteUnboundFilterOptions(tx, wrapperIDs); err != nil {
		return err
	}

	return tx.Where("id IN ?", subSubIDs).Delete(&model.SubSubCategory{}).Error
}

// deleteUnboundFilterOptions removes the given CategoryFilterOptions that no
// longer bind any leaf, then every FilterOption left with no wrapper.
func deleteUnboundFilterOptions(tx *gorm.DB, wrapperIDs []uint) error {
	if len(wrapperIDs) == 0 {
		return nil
	}

	var orphanWrapperIDs, optionIDs []uint
	if err := tx.Model(&model.CategoryFilterOption{}).
		Where("id IN ?", wrapperIDs).
		Where("NOT EXISTS (SELECT 1 FROM category_filter_option_categories b WHERE b.category_filter_option_id = category_filter_options.id)").
		Pluck("id", &orphanWrapperIDs).Error; err != nil {
		return err
	}
	if len(orphanWrapperIDs) == 0 {
		return nil
	}
	if err := tx.Model(&model.CategoryFilterOption{}).
		Where("id IN ?", orphanWrapperIDs).
		Distinct().
		Pluck("filter_option_id", &optionIDs).Error; err != nil {
		return err
	}
	if err := tx.Where("id IN ?", orphanWrapperIDs).Delete(&model.CategoryFilterOption{}).Error; err != nil {
		return err
	}

	var orphanOptionIDs []uint
	if err := tx.Model(&model.FilterOption{}).
		Where("id IN ?", optionIDs).
		Where("NOT EXISTS (SELECT 1 FROM category_filter_options w WHERE w.filter_option_id = filter_options.id)").
		Pluck("id", &orphanOptionIDs).Error; err != nil {
		return err
	}
	for _, optionID := range orphanOptionIDs {
		if err := deleteValuesOfOption(tx, optionID); err != nil {
			return err
		}
	}
	if len(orphanOptionIDs) == 0 {
		return nil
	}

	logger.Debug("Removing filter options left without a category", map[string]interface{}{
		"filter_option_ids": orphanOptionIDs,
	})
	return tx.Where("id IN ?", orphanOptionIDs).Delete(&model.FilterOption{}).Error
}

// UpsertTree creates every missing node along each path, matching
// existing nodes by name within their parent. It returns the number of
// leaves created.
func (r *categoryRepository) UpsertTree(paths []model.CategoryPath) (int, error) {
	created := 0
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, path := range paths {
			var main model.MainCategory
			if err := tx.Where(model.MainCategory{Name: path.MainCategory}).
				FirstOrCreate(&main).Error; err != nil {
				return err
			}

			var sub model.SubCategory
			if err := tx.Where(model.SubCategory{Name: path.SubCategory, MainCategoryID: main.ID}).
				FirstOrCreate(&sub).Error; err != nil {
				return err
			}

			var count int64
			leaf := model.SubSubCategory{Name: path.SubSubCategory, SubCategoryID: sub.ID}
			if err := tx.Model(&model.SubSubCategory{}).Where(&leaf).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Omit("SubCategory").Create(&leaf).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to upsert category tree", err, map[string]interface{}{
			"paths": len(paths),
		})
		return 0, err
	}

	logger.Info("Category tree upserted", map[string]interface{}{
		"paths":   len(paths),
		"created": created,
	})
	return created, nil
}
