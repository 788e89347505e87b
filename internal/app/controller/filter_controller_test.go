package controller

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	"github.com/ikkim/catalog-backend/internal/app/service"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/ikkim/catalog-backend/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterController_CreateAndGetFilters(t *testing.T) {
	s := setupTestServer(t)
	leaf := s.leaf(t, "Apparel")
	path := fmt.Sprintf("/%d/filters", leaf.ID)

	w := s.doJSON(t, http.MethodPost, path, map[string]interface{}{
		"filterName":   "Color",
		"filterType":   "checkbox",
		"filterValues": []string{"Red", " ", "Blue"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var option model.FilterOption
	decode(t, w, &option)
	assert.Len(t, option.Values, 2)

	w = s.doJSON(t, http.MethodPost, path, map[string]interface{}{
		"filterName":   "Price",
		"filterType":   "slider",
		"filterValues": []string{"10", "20"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.doJSON(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var options []model.FilterOption
	decode(t, w, &options)
	require.Len(t, options, 2)
	for _, o := range options {
		if o.Type == model.FilterTypeSlider {
			assert.Empty(t, o.Values)
		} else {
			assert.Len(t, o.Values, 2)
		}
	}

	_, ok := s.recorder.Last(events.FilterCreated)
	assert.True(t, ok)
}

func TestFilterController_CreateFilterErrors(t *testing.T) {
	s := setupTestServer(t)
	leaf := s.leaf(t, "Books")

	tests := []struct {
		name       string
		path       string
		body       map[string]interface{}
		wantStatus int
		wantCode   string
	}{
		{"bad category id", "/abc/filters", map[string]interface{}{"filterName": "x", "filterType": "slider"}, http.StatusBadRequest, apperrors.ValidationInvalidID},
		{"missing name", fmt.Sprintf("/%d/filters", leaf.ID), map[string]interface{}{"filterType": "slider"}, http.StatusBadRequest, apperrors.ValidationRequired},
		{"empty values", fmt.Sprintf("/%d/filters", leaf.ID), map[string]interface{}{"filterName": "Genre", "filterType": "checkbox", "filterValues": []string{}}, http.StatusBadRequest, apperrors.ValidationRequired},
		{"unknown type", fmt.Sprintf("/%d/filters", leaf.ID), map[string]interface{}{"filterName": "Genre", "filterType": "radio", "filterValues": []string{"a"}}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"unknown category", "/999/filters", map[string]interface{}{"filterName": "Genre", "filterType": "slider"}, http.StatusNotFound, apperrors.CategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doJSON(t, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			var resp apperrors.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestFilterController_ValueLifecycle(t *testing.T) {
	s := setupTestServer(t)
	leaf := s.leaf(t, "Shoes")

	option, err := s.filters.CreateFilter(context.Background(), service.CreateFilterInput{
		SubSubCategoryID: leaf.ID, Name: "Size", Type: "dropdown", Values: []string{"40"},
	})
	require.NoError(t, err)

	w := s.doJSON(t, http.MethodPost, "/filter-values", map[string]interface{}{"filterOptionId": option.ID, "filterValue": "41"})
	require.Equal(t, http.StatusCreated, w.Code)
	var value model.FilterValue
	decode(t, w, &value)
	assert.Equal(t, "41", value.Value)

	w = s.doJSON(t, http.MethodPost, "/filter-values", map[string]interface{}{"filterOptionId": option.ID, "filterValue": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.doJSON(t, http.MethodPost, "/filter-values", map[string]interface{}{"filterOptionId": 999, "filterValue": "42"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodGet, fmt.Sprintf("/filter-options/%d/values", option.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var values []model.FilterValue
	decode(t, w, &values)
	assert.Len(t, values, 2)

	w = s.doJSON(t, http.MethodPut, fmt.Sprintf("/filter-values/%d", value.ID), map[string]interface{}{"value": "41.5"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &value)
	assert.Equal(t, "41.5", value.Value)

	w = s.doJSON(t, http.MethodPut, "/filter-values/999", map[string]interface{}{"value": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/filter-values/%d", value.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.doJSON(t, http.MethodPut, fmt.Sprintf("/filter-options/%d", option.ID), map[string]interface{}{"type": "slider", "values": []string{"1", "2"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var rejected apperrors.ErrorResponse
	decode(t, w, &rejected)
	assert.Equal(t, apperrors.ValidationInvalidInput, rejected.Error)

	w = s.doJSON(t, http.MethodPut, fmt.Sprintf("/filter-options/%d", option.ID), map[string]interface{}{"name": "EU Size", "values": []string{"38", "39"}})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.FilterOption
	decode(t, w, &updated)
	assert.Equal(t, "EU Size", updated.Name)
	assert.Len(t, updated.Values, 2)

	w = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/filter-options/%d", option.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/filter-options/%d", option.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFilterController_CreateProductFilter(t *testing.T) {
	s := setupTestServer(t)
	ctx := context.Background()
	leaf := s.leaf(t, "Laptops")

	option, err := s.filters.CreateFilter(ctx, service.CreateFilterInput{SubSubCategoryID: leaf.ID, Name: "RAM", Type: "checkbox", Values: []string{"16GB"}})
	require.NoError(t, err)
	product, err := s.products.CreateProduct(ctx, service.ProductInput{Name: "Notebook", SubSubCategoryID: &leaf.ID})
	require.NoError(t, err)

	body := map[string]interface{}{"productId": product.ID, "filterValueId": option.Values[0].ID}
	w := s.doJSON(t, http.MethodPost, "/product-filters", body)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.doJSON(t, http.MethodPost, "/product-filters", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var n int64
	require.NoError(t, s.db.Model(&model.ProductFilter{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)

	w = s.doJSON(t, http.MethodPost, "/product-filters", map[string]interface{}{"productId": product.ID, "filterValueId": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	assert.Equal(t, apperrors.FilterValueNotFound, resp.Error)

	w = s.doJSON(t, http.MethodPost, "/product-filters", map[string]interface{}{"productId": product.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
