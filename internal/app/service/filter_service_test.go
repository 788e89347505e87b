package service

import (
	"context"
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func valueNames(values []model.FilterValue) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, v.Value)
	}
	return names
}

func TestFilterService_CreateFilter(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	_, _, leaf := env.leaf(t, "Apparel")

	t.Run("checkbox values are trimmed and blanks dropped", func(t *testing.T) {
		option, err := env.filters.CreateFilter(ctx, CreateFilterInput{
			SubSubCategoryID: leaf.ID,
			Name:             "Color",
			Type:             "checkbox",
			Values:           []string{"Red", " ", "Blue "},
		})
		require.NoError(t, err)
		assert.Equal(t, model.FilterTypeCheckbox, option.Type)
		assert.ElementsMatch(t, []string{"Red", "Blue"}, valueNames(option.Values))
	})

	t.Run("slider ignores values", func(t *testing.T) {
		option, err := env.filters.CreateFilter(ctx, CreateFilterInput{
			SubSubCategoryID: leaf.ID,
			Name:             "Price",
			Type:             "slider",
			Values:           []string{"1", "2"},
		})
		require.NoError(t, err)
		assert.Empty(t, option.Values)
	})

	t.Run("rejections", func(t *testing.T) {
		cases := []struct {
			name  string
			input CreateFilterInput
			want  error
		}{
			{"blank name", CreateFilterInput{SubSubCategoryID: leaf.ID, Name: " ", Type: "checkbox", Values: []string{"a"}}, ErrFilterNameRequired},
			{"unknown type", CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Size", Type: "radio", Values: []string{"a"}}, ErrInvalidFilterType},
			{"missing values", CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Size", Type: "dropdown"}, ErrInvalidFilterValues},
			{"unknown category", CreateFilterInput{SubSubCategoryID: 999, Name: "Size", Type: "dropdown", Values: []string{"S"}}, ErrSubSubCategoryNotFound},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := env.filters.CreateFilter(ctx, tc.input)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})

	filters, err := env.filters.GetFiltersForSubSubCategory(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Len(t, filters, 2)
	assert.Len(t, env.recorder.Kinds(), 5)
	_, ok := env.recorder.Last(events.FilterCreated)
	assert.True(t, ok)
}

func TestFilterService_GetFilters(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	_, _, leaf := env.leaf(t, "Audio")
	_, _, other := env.leaf(t, "Video")

	_, err := env.filters.CreateFilter(ctx, CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Brand", Type: "dropdown", Values: []string{"Sony", "Bose"}})
	require.NoError(t, err)

	filters, err := env.filters.GetFiltersForSubSubCategory(ctx, leaf.ID)
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, "Brand", filters[0].Name)
	assert.ElementsMatch(t, []string{"Sony", "Bose"}, valueNames(filters[0].Values))

	empty, err := env.filters.GetFiltersForSubSubCategory(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = env.filters.GetFiltersForSubSubCategory(ctx, 999)
	assert.ErrorIs(t, err, ErrSubSubCategoryNotFound)
}

func TestFilterService_UpdateFilterOption(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	_, _, leaf := env.leaf(t, "Shoes")

	option, err := env.filters.CreateFilter(ctx, CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Size", Type: "checkbox", Values: []string{"40", "41"}})
	require.NoError(t, err)

	renamed, err := env.filters.UpdateFilterOption(ctx, option.ID, UpdateFilterOptionInput{Name: strPtr("EU Size")})
	require.NoError(t, err)
	assert.Equal(t, "EU Size", renamed.Name)
	assert.Len(t, renamed.Values, 2)

	values := []string{"42", " ", "43", "44"}
	replaced, err := env.filters.UpdateFilterOption(ctx, option.ID, UpdateFilterOptionInput{Values: &values})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"42", "43", "44"}, valueNames(replaced.Values))

	sliderValues := []string{"1", "2"}
	_, err = env.filters.UpdateFilterOption(ctx, option.ID, UpdateFilterOptionInput{Type: strPtr("slider"), Values: &sliderValues})
	assert.ErrorIs(t, err, ErrSliderFilterValues)
	assert.Equal(t, int64(3), env.count(t, &model.FilterValue{}))

	slider, err := env.filters.UpdateFilterOption(ctx, option.ID, UpdateFilterOptionInput{Type: strPtr("slider")})
	require.NoError(t, err)
	assert.Equal(t, model.FilterTypeSlider, slider.Type)
	assert.Empty(t, slider.Values)
	assert.Zero(t, env.count(t, &model.FilterValue{}))

	_, err = env.filters.UpdateFilterOption(ctx, option.ID, UpdateFilterOptionInput{Type: strPtr("toggle")})
	assert.ErrorIs(t, err, ErrInvalidFilterType)

	_, err = env.filters.UpdateFilterOption(ctx, 999, UpdateFilterOptionInput{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrFilterOptionNotFound)

	_, ok := env.recorder.Last(events.FilterUpdated)
	assert.True(t, ok)
}

func TestFilterService_DeleteFilterOptionCascades(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	_, _, leaf := env.leaf(t, "Bags")

	option, err := env.filters.CreateFilter(ctx, CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Material", Type: "checkbox", Values: []string{"Leather", "Canvas"}})
	require.NoError(t, err)

	product, err := env.products.CreateProduct(ctx, ProductInput{
		Name:             "Tote",
		SubSubCategoryID: &leaf.ID,
		Filters:          []FilterSelection{{FilterOptionID: option.ID, FilterValueID: option.Values[0].ID}},
	})
	require.NoError(t, err)
	require.Len(t, product.Filters, 1)

	deleted, err := env.filters.DeleteFilterOption(ctx, option.ID)
	require.NoError(t, err)
	assert.Equal(t, option.ID, deleted.Option.ID)
	assert.Len(t, deleted.Values, 2)
	assert.Len(t, deleted.ProductFilters, 1)

	assert.Zero(t, env.count(t, &model.FilterOption{}))
	assert.Zero(t, env.count(t, &model.FilterValue{}))
	assert.Zero(t, env.count(t, &model.ProductFilter{}))
	assert.Zero(t, env.count(t, &model.CategoryFilterOption{}))
	assert.Zero(t, env.count(t, &model.CategoryFilterOptionCategory{}))

	survivor, err := env.products.GetProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Empty(t, survivor.Filters)

	_, err = env.filters.DeleteFilterOption(ctx, option.ID)
	assert.ErrorIs(t, err, ErrFilterOptionNotFound)
}

func TestFilterService_Values(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	_, _, leaf := env.leaf(t, "Watches")

	option, err := env.filters.CreateFilter(ctx, CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Strap", Type: "dropdown", Values: []string{"Metal"}})
	require.NoError(t, err)
	slider, err := env.filters.CreateFilter(ctx, CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "Diameter", Type: "slider"})
	require.NoError(t, err)

	value, err := env.filters.CreateFilterValue(ctx, option.ID, "  Rubber ")
	require.NoError(t, err)
	assert.Equal(t, "Rubber", value.Value)
	require.NotNil(t, value.FilterOption)
	assert.Equal(t, "Strap", value.FilterOption.Name)

	_, err = env.filters.CreateFilterValue(ctx, option.ID, "  ")
	assert.ErrorIs(t, err, ErrEmptyFilterValue)
	_, err = env.filters.CreateFilterValue(ctx, 999, "Silk")
	assert.ErrorIs(t, err, ErrFilterOptionNotFound)
	_, err = env.filters.CreateFilterValue(ctx, slider.ID, "42mm")
	assert.ErrorIs(t, err, ErrSliderFilterValues)

	values, err := env.filters.GetFilterValues(ctx, option.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Metal", "Rubber"}, valueNames(values))

	updated, err := env.filters.UpdateFilterValue(ctx, value.ID, "Silicone")
	require.NoError(t, err)
	assert.Equal(t, "Silicone", updated.Value)
	_, err = env.filters.UpdateFilterValue(ctx, 999, "Silicone")
	assert.ErrorIs(t, err, ErrFilterValueNotFound)

	product, err := env.products.CreateProduct(ctx, ProductInput{Name: "Diver", SubSubCategoryID: &leaf.ID})
	require.NoError(t, err)
	_, err = env.filters.CreateProductFilter(ctx, product.ID, value.ID)
	require.NoError(t, err)

	deleted, err := env.filters.DeleteFilterValue(ctx, value.ID)
	require.NoError(t, err)
	assert.Equal(t, value.ID, deleted.Value.ID)
	assert.Len(t, deleted.ProductFilters, 1)
	assert.Zero(t, env.count(t, &model.ProductFilter{}))

	_, err = env.filters.DeleteFilterValue(ctx, value.ID)
	assert.ErrorIs(t, err, ErrFilterValueNotFound)

	kinds := env.recorder.Kinds()
	assert.Contains(t, kinds, events.FilterValueCreated)
	assert.Contains(t, kinds, events.FilterValueUpdated)
	assert.Contains(t, kinds, events.FilterValueDeleted)
}

func TestFilterService_CreateProductFilter(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	_, _, leaf := env.leaf(t, "Laptops")

	option, err := env.filters.CreateFilter(ctx, CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "RAM", Type: "checkbox", Values: []string{"16GB"}})
	require.NoError(t, err)
	product, err := env.products.CreateProduct(ctx, ProductInput{Name: "Notebook", SubSubCategoryID: &leaf.ID})
	require.NoError(t, err)

	_, err = env.filters.CreateProductFilter(ctx, product.ID, 999)
	assert.ErrorIs(t, err, ErrFilterValueNotFound)
	_, err = env.filters.CreateProductFilter(ctx, 999, option.Values[0].ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Zero(t, env.count(t, &model.ProductFilter{}))

	first, err := env.filters.CreateProductFilter(ctx, product.ID, option.Values[0].ID)
	require.NoError(t, err)
	second, err := env.filters.CreateProductFilter(ctx, product.ID, option.Values[0].ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1), env.count(t, &model.ProductFilter{}))

	require.NotNil(t, first.FilterValue)
	require.NotNil(t, first.FilterValue.FilterOption)
	assert.Equal(t, "RAM", first.FilterValue.FilterOption.Name)

	last, ok := env.recorder.Last(events.ProductFilterAdded)
	require.True(t, ok)
	assert.Equal(t, "create", events.ProductFilterAdded.Action())
	assert.NotNil(t, last.Data)
}
