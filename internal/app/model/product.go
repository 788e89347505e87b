package model

import (
	"fmt"
	"time"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
	ProductStatusDraft    ProductStatus = "draft"
)

func ParseProductStatus(raw string) (ProductStatus, error) {
	switch s := ProductStatus(raw); s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDraft:
		return s, nil
	case "":
		return ProductStatusActive, nil
	default:
		return "", fmt.Errorf("unknown product status %q", raw)
	}
}

type Product struct {
	ID               uint          `gorm:"primarykey" json:"id"`
	Name             string        `gorm:"not null" json:"name"`
	Description      string        `gorm:"type:text" json:"description"`
	Price            float64       `gorm:"not null;default:0" json:"price"`
	Stock            int           `gorm:"not null;default:0" json:"stock"`
	Brand            string        `json:"brand"`
	Weight           float64       `json:"weight"`
	Length           float64       `json:"length"`
	Width            float64       `json:"width"`
	Height           float64       `json:"height"`
	Status           ProductStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	SeoTitle         string        `json:"seoTitle"`
	SeoDescription   string        `gorm:"type:text" json:"seoDescription"`
	MetaKeywords     string        `json:"metaKeywords"`
	SubSubCategoryID *uint         `gorm:"index" json:"subSubCategoryId"`
	DiscountID       *uint         `gorm:"index" json:"discountId"`
	Sales            int           `gorm:"not null;default:0" json:"sales"`
	ViewCount        int64         `gorm:"not null;default:0" json:"viewCount"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`

	SubSubCategory *SubSubCategory `gorm:"foreignKey:SubSubCategoryID" json:"subSubCategory,omitempty"`
	Discount       *Discount       `gorm:"foreignKey:DiscountID" json:"discount"`
	Images         []Image         `gorm:"foreignKey:ProductID" json:"images"`
	Reviews        []Review        `gorm:"foreignKey:ProductID" json:"reviews"`
	Filters        []ProductFilter `gorm:"foreignKey:ProductID" json:"filters"`
}

func (Product) TableName() string {
	return "products"
}

// Image is owned by exactly one product and removed with it.
type Image struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	URL       string    `gorm:"not null" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Image) TableName() string {
	return "product_images"
}

type Review struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Review) TableName() string {
	return "reviews"
}

type Discount struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Percentage float64   `gorm:"not null;default:0" json:"percentage"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Discount) TableName() string {
	return "discounts"
}
