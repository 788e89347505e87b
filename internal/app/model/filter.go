package model

import (
	"fmt"
	"time"
)

// FilterType is the closed set of widgets a filter option renders as.
type FilterType string

const (
	FilterTypeCheckbox FilterType = "checkbox"
	FilterTypeDropdown FilterType = "dropdown"
	FilterTypeSlider   FilterType = "slider"
)

// ParseFilterType converts raw input into a FilterType.
func ParseFilterType(raw string) (FilterType, error) {
	t := FilterType(raw)
	if !t.Valid() {
		return "", fmt.Errorf("unknown filter type %q", raw)
	}
	return t, nil
}

func (t FilterType) Valid() bool {
	switch t {
	case FilterTypeCheckbox, FilterTypeDropdown, FilterTypeSlider:
		return true
	default:
		return false
	}
}

// HasValues reports whether options of this type own enumerable values.
// Sliders filter on raw product columns instead.
func (t FilterType) HasValues() bool {
	switch t {
	case FilterTypeCheckbox, FilterTypeDropdown:
		return true
	case FilterTypeSlider:
		return false
	default:
		return false
	}
}

// FilterOption is one filterable attribute, e.g. "Color".
type FilterOption struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	Name      string     `gorm:"not null" json:"name"`
	Type      FilterType `gorm:"type:varchar(20);not null" json:"type"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Values                []FilterValue          `gorm:"foreignKey:FilterOptionID" json:"values"`
	CategoryFilterOptions []CategoryFilterOption `gorm:"foreignKey:FilterOptionID" json:"categoryFilterOptions,omitempty"`
}

func (FilterOption) TableName() string {
	return "filter_options"
}

// FilterValue is one enumerable value of a FilterOption, e.g. "Red".
type FilterValue struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Value          string    `gorm:"not null" json:"value"`
	FilterOptionID uint      `gorm:"index;not null" json:"filterOptionId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	FilterOption *FilterOption `gorm:"foreignKey:FilterOptionID" json:"filterOption,omitempty"`
}

func (FilterValue) TableName() string {
	return "filter_values"
}

// CategoryFilterOption wraps a FilterOption so that it can be bound to
// more than one SubSubCategory.
type CategoryFilterOption struct {
	ID             uint `gorm:"primarykey" json:"id"`
	FilterOptionID uint `gorm:"index;not null" json:"filterOptionId"`

	FilterOption *FilterOption                  `gorm:"foreignKey:FilterOptionID" json:"filterOption,omitempty"`
	Categories   []CategoryFilterOptionCategory `gorm:"foreignKey:CategoryFilterOptionID" json:"categories,omitempty"`
}

func (CategoryFilterOption) TableName() string {
	return "category_filter_options"
}

// CategoryFilterOptionCategory binds a CategoryFilterOption to a leaf category.
type CategoryFilterOptionCategory struct {
	ID                     uint `gorm:"primarykey" json:"id"`
	SubSubCategoryID       uint `gorm:"index;not null" json:"subSubCategoryId"`
	CategoryFilterOptionID uint `gorm:"index;not null" json:"categoryFilterOptionId"`

	SubSubCategory       *SubSubCategory       `gorm:"foreignKey:SubSubCategoryID" json:"subSubCategory,omitempty"`
	CategoryFilterOption *CategoryFilterOption `gorm:"foreignKey:CategoryFilterOptionID" json:"categoryFilterOption,omitempty"`
}

func (CategoryFilterOptionCategory) TableName() string {
	return "category_filter_option_categories"
}

// ProductFilter records that a product carries a filter value.
// A (product, value) pair is stored at most once.
type ProductFilter struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ProductID     uint      `gorm:"not null;uniqueIndex:idx_product_filters_pair" json:"productId"`
	FilterValueID uint      `gorm:"not null;uniqueIndex:idx_product_filters_pair;index" json:"filterValueId"`
	CreatedAt     time.Time `json:"createdAt"`

	Product     *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	FilterValue *FilterValue `gorm:"foreignKey:FilterValueID" json:"filterValue,omitempty"`
}

func (ProductFilter) TableName() string {
	return "product_filters"
}
