package repository

import (
	"sort"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortPrice    ProductSort = "price"
	ProductSortName     ProductSort = "name"
	ProductSortReviews  ProductSort = "reviews"
	ProductSortDiscount ProductSort = "discount"
	ProductSortMostSold ProductSort = "mostSold"
)

func (s ProductSort) Valid() bool {
	switch s {
	case ProductSortPrice, ProductSortName, ProductSortReviews, ProductSortDiscount, ProductSortMostSold:
		return true
	default:
		return false
	}
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}

// rangeColumns maps the numeric fields a range filter may target.
var rangeColumns = map[string]string{
	"price":  "products.price",
	"stock":  "products.stock",
	"weight": "products.weight",
	"length": "products.length",
	"width":  "products.width",
	"height": "products.height",
	"sales":  "products.sales",
}

// IsRangeField reports whether field can be used as ProductQuery.RangeField.
func IsRangeField(field string) bool {
	_, ok := rangeColumns[field]
	return ok
}

// ProductQuery selects and orders products. Only the most specific
// category id is applied. ProductSortMostSold is applied in memory to
// the fetched rows; results are not paginated, so the order holds for
// the whole set. Paginating would require moving it into the query.
type ProductQuery struct {
	MainCategoryID   *uint
	SubCategoryID    *uint
	SubSubCategoryID *uint
	FilterValueID    *uint
	RangeField       string
	MinRange         *float64
	MaxRange         *float64
	SortBy           ProductSort
	SortOrder        SortOrder
}

type ProductRepository interface {
	CreateWithRelations(product *model.Product, imageURLs []string, filterValueIDs []uint) error
	FindByID(id uint) (*model.Product, error)
	FindWithQuery(query ProductQuery) ([]model.Product, error)
	FindRelated(product *model.Product, limit int) ([]model.Product, error)
	UpdateWithRelations(product *model.Product, imageURLs []string, filterValueIDs []uint) error
	Delete(id uint) (*model.Product, error)
	UpdateStock(id uint, stock int) error
	AddViewCounts(counts map[uint]int64) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// productColumns are overwritten on every update.
var productColumns = []string{
	"name", "description", "price", "stock", "brand",
	"weight", "length", "width", "height", "status",
	"seo_title", "seo_description", "meta_keywords",
	"sub_sub_category_id", "discount_id", "updated_at",
}

func (r *productRepository) CreateWithRelations(product *model.Product, imageURLs []string, filterValueIDs []uint) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":                product.Name,
		"sub_sub_category_id": product.SubSubCategoryID,
		"images":              len(imageURLs),
		"filters":             len(filterValueIDs),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		if err := insertImages(tx, product.ID, imageURLs); err != nil {
			return err
		}
		return insertProductFilters(tx, product.ID, filterValueIDs)
	})
	if err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func insertImages(tx *gorm.DB, productID uint, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	images := make([]model.Image, 0, len(urls))
	for _, url := range urls {
		images = append(images, model.Image{ProductID: productID, URL: url})
	}
	return tx.Create(&images).Error
}

// insertProductFilters skips pairs that already exist.
func insertProductFilters(tx *gorm.DB, productID uint, filterValueIDs []uint) error {
	if len(filterValueIDs) == 0 {
		return nil
	}
	links := make([]model.ProductFilter, 0, len(filterValueIDs))
	for _, id := range filterValueIDs {
		links = append(links, model.ProductFilter{ProductID: productID, FilterValueID: id})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&links).Error
}

func (r *productRepository) baseQuery(filterValueID *uint) *gorm.DB {
	query := r.db.Model(&model.Product{}).
		Preload("Discount").
		Preload("Reviews").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.id ASC")
		})
	if filterValueID != nil {
		query = query.Preload("Filters", "filter_value_id = ?", *filterValueID)
	} else {
		query = query.Preload("Filters")
	}
	return query.Preload("Filters.FilterValue.FilterOption")
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.baseQuery(nil).First(&product, id).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindWithQuery(q ProductQuery) ([]model.Product, error) {
	logger.Debug("Finding products with query", map[string]interface{}{
		"main_category_id":    q.MainCategoryID,
		"sub_category_id":     q.SubCategoryID,
		"sub_sub_category_id": q.SubSubCategoryID,
		"filter_value_id":     q.FilterValueID,
		"range_field":         q.RangeField,
		"sort_by":             q.SortBy,
		"sort_order":          q.SortOrder,
	})

	query := r.baseQuery(q.FilterValueID).Select("products.*")

	switch {
	case q.SubSubCategoryID != nil:
		query = query.Where("products.sub_sub_category_id = ?", *q.SubSubCategoryID)
	case q.SubCategoryID != nil:
		query = query.Where("products.sub_sub_category_id IN (?)",
			r.db.Model(&model.SubSubCategory{}).Select("id").Where("sub_category_id = ?", *q.SubCategoryID))
	case q.MainCategoryID != nil:
		subs := r.db.Model(&model.SubCategory{}).Select("id").Where("main_category_id = ?", *q.MainCategoryID)
		query = query.Where("products.sub_sub_category_id IN (?)",
			r.db.Model(&model.SubSubCategory{}).Select("id").Where("sub_category_id IN (?)", subs))
	}

	if q.FilterValueID != nil {
		query = query.Where("products.id IN (?)",
			r.db.Model(&model.ProductFilter{}).Select("product_id").Where("filter_value_id = ?", *q.FilterValueID))
	}

	if column, ok := rangeColumns[q.RangeField]; ok {
		if q.MinRange != nil {
			query = query.Where(column+" >= ?", *q.MinRange)
		}
		if q.MaxRange != nil {
			query = query.Where(column+" <= ?", *q.MaxRange)
		}
	}

	direction := "ASC"
	if q.SortOrder == SortOrderDesc {
		direction = "DESC"
	}

	switch q.SortBy {
	case ProductSortPrice:
		query = query.Order("products.price " + direction)
	case ProductSortName:
		query = query.Order("products.name " + direction)
	case ProductSortReviews:
		query = query.Order("(SELECT COUNT(*) FROM reviews WHERE reviews.product_id = products.id) " + direction)
	case ProductSortDiscount:
		query = query.Joins("LEFT JOIN discounts ON discounts.id = products.discount_id").
			Order("COALESCE(discounts.percentage, 0) " + direction)
	}
	query = query.Order("products.id ASC")

	products := []model.Product{}
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with query", err, map[string]interface{}{
			"sort_by": q.SortBy,
		})
		return nil, err
	}

	if q.SortBy == ProductSortMostSold {
		sort.SliceStable(products, func(i, j int) bool {
			if q.SortOrder == SortOrderDesc {
				return products[i].Sales > products[j].Sales
			}
			return products[i].Sales < products[j].Sales
		})
	}

	logger.Debug("Products found with query", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

// FindRelated returns other products of the same leaf category, best sellers first.
func (r *productRepository) FindRelated(product *model.Product, limit int) ([]model.Product, error) {
	related := []model.Product{}
	if product.SubSubCategoryID == nil {
		return related, nil
	}

	if err := r.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_images.id ASC")
		}).
		Where("sub_sub_category_id = ? AND id <> ?", *product.SubSubCategoryID, product.ID).
		Order("sales DESC").
		Order("id ASC").
		Limit(limit).
		Find(&related).Error; err != nil {
		logger.Error("Failed to find related products", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return nil, err
	}
	return related, nil
}

// UpdateWithRelations overwrites scalar columns, reconciles images by URL
// and replaces the product's filter links.
func (r *productRepository) UpdateWithRelations(product *model.Product, imageURLs []string, filterValueIDs []uint) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"images":     len(imageURLs),
		"filters":    len(filterValueIDs),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(product).Select(productColumns).Updates(product)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := reconcileImages(tx, product.ID, imageURLs); err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductFilter{}).Error; err != nil {
			return err
		}
		return insertProductFilters(tx, product.ID, filterValueIDs)
	})
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

// reconcileImages deletes images whose URL is no longer wanted and adds
// the wanted URLs that are missing.
func reconcileImages(tx *gorm.DB, productID uint, urls []string) error {
	var existing []model.Image
	if err := tx.Where("product_id = ?", productID).Find(&existing).Error; err != nil {
		return err
	}

	wanted := make(map[string]bool, len(urls))
	for _, url := range urls {
		wanted[url] = true
	}

	present := make(map[string]bool, len(existing))
	var stale []uint
	for _, image := range existing {
		if wanted[image.URL] && !present[image.URL] {
			present[image.URL] = true
			continue
		}
		stale = append(stale, image.ID)
	}

	if len(stale) > 0 {
		if err := tx.Where("id IN ?", stale).Delete(&model.Image{}).Error; err != nil {
			return err
		}
	}

	var missing []string
	for _, url := range urls {
		if !present[url] {
			present[url] = true
			missing = append(missing, url)
		}
	}
	return insertImages(tx, productID, missing)
}

// Delete removes the product after its filter links, reviews and images.
func (r *productRepository) Delete(id uint) (*model.Product, error) {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	var deleted model.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&deleted, id).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductFilter{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.Image{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return &deleted, nil
}

func (r *productRepository) UpdateStock(id uint, stock int) error {
	logger.Debug("Updating product stock in database", map[string]interface{}{
		"product_id": id,
		"stock":      stock,
	})

	result := r.db.Model(&model.Product{}).Where("id = ?", id).Update("stock", stock)
	if result.Error != nil {
		logger.Error("Failed to update product stock in database", result.Error, map[string]interface{}{
			"product_id": id,
			"stock":      stock,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddViewCounts adds the buffered view counts to each product. Unknown
// product ids are skipped.
func (r *productRepository) AddViewCounts(counts map[uint]int64) error {
	if len(counts) == 0 {
		return nil
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for id, n := range counts {
			if err := tx.Model(&model.Product{}).Where("id = ?", id).
				UpdateColumn("view_count", gorm.Expr("view_count + ?", n)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to add product view counts", err, map[string]interface{}{
			"products": len(counts),
		})
		return err
	}

	logger.Debug("Product view counts added", map[string]interface{}{
		"products": len(counts),
	})
	return nil
}
