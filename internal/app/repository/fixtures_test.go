package repository

import (
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

type categoryTree struct {
	Main   model.MainCategory
	Sub    model.SubCategory
	SubSub model.SubSubCategory
}

func seedCategoryTree(t *testing.T, testDB *gorm.DB, name string) categoryTree {
	t.Helper()

	tree := categoryTree{Main: model.MainCategory{Name: name}}
	require.NoError(t, testDB.Create(&tree.Main).Error)

	tree.Sub = model.SubCategory{Name: name + " sub", MainCategoryID: tree.Main.ID}
	require.NoError(t, testDB.Create(&tree.Sub).Error)

	tree.SubSub = model.SubSubCategory{Name: name + " leaf", SubCategoryID: tree.Sub.ID}
	require.NoError(t, testDB.Create(&tree.SubSub).Error)

	return tree
}

func seedProduct(t *testing.T, testDB *gorm.DB, product model.Product) model.Product {
	t.Helper()
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	require.NoError(t, testDB.Create(&product).Error)
	return product
}

func seedFilterOption(t *testing.T, testDB *gorm.DB, subSubCategoryID uint, name string, values ...string) model.FilterOption {
	t.Helper()

	option := model.FilterOption{Name: name, Type: model.FilterTypeCheckbox}
	for _, v := range values {
		option.Values = append(option.Values, model.FilterValue{Value: v})
	}
	require.NoError(t, NewFilterRepository(testDB).CreateForSubSubCategory(&option, subSubCategoryID))
	return option
}

func uintPtr(v uint) *uint {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
