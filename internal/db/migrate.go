package db

import (
	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every catalog table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.MainCategory{},
		&model.SubCategory{},
		&model.SubSubCategory{},
		&model.Discount{},
		&model.Product{},
		&model.Image{},
		&model.Review{},
		&model.FilterOption{},
		&model.FilterValue{},
		&model.CategoryFilterOption{},
		&model.CategoryFilterOptionCategory{},
		&model.ProductFilter{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

func MigrateDB(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
