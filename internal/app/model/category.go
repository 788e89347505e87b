package model

import "time"

// MainCategory is the root level of the three-level catalog taxonomy.
type MainCategory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SubCategories []SubCategory `gorm:"foreignKey:MainCategoryID" json:"subCategories,omitempty"`
}

func (MainCategory) TableName() string {
	return "main_categories"
}

type SubCategory struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Name           string    `gorm:"not null" json:"name"`
	MainCategoryID uint      `gorm:"index;not null" json:"mainCategoryId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	MainCategory     *MainCategory    `gorm:"foreignKey:MainCategoryID" json:"mainCategory,omitempty"`
	SubSubCategories []SubSubCategory `gorm:"foreignKey:SubCategoryID" json:"subSubCategories,omitempty"`
}

func (SubCategory) TableName() string {
	return "sub_categories"
}

// SubSubCategory is the leaf of the taxonomy. Products and filter
// definitions attach here.
type SubSubCategory struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	SubCategoryID uint      `gorm:"index;not null" json:"subCategoryId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	SubCategory *SubCategory `gorm:"foreignKey:SubCategoryID" json:"subCategory,omitempty"`
}

func (SubSubCategory) TableName() string {
	return "sub_sub_categories"
}

// CategoryPath names one leaf of the tree by its three level names.
type CategoryPath struct {
	MainCategory   string
	SubCategory    string
	SubSubCategory string
}
