package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ikkim/catalog-backend/internal/app/model"
	apperrors "github.com/ikkim/catalog-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryController_CreateAndList(t *testing.T) {
	s := setupTestServer(t)

	w := s.doJSON(t, http.MethodPost, "/main-category", map[string]interface{}{"name": "Electronics"})
	require.Equal(t, http.StatusCreated, w.Code)
	var main model.MainCategory
	decode(t, w, &main)
	assert.Equal(t, "Electronics", main.Name)

	w = s.doJSON(t, http.MethodPost, "/sub-category", map[string]interface{}{"name": "Phones", "mainCategoryId": main.ID})
	require.Equal(t, http.StatusCreated, w.Code)
	var sub model.SubCategory
	decode(t, w, &sub)

	w = s.doJSON(t, http.MethodPost, "/sub-sub-category", map[string]interface{}{"name": "Smartphones", "subCategoryId": sub.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.doJSON(t, http.MethodGet, "/main-categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mains []model.MainCategory
	decode(t, w, &mains)
	require.Len(t, mains, 1)
	assert.Len(t, mains[0].SubCategories, 1)

	w = s.doJSON(t, http.MethodGet, "/sub-sub-categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var leaves []model.SubSubCategory
	decode(t, w, &leaves)
	require.Len(t, leaves, 1)
	require.NotNil(t, leaves[0].SubCategory)
	require.NotNil(t, leaves[0].SubCategory.MainCategory)
	assert.Equal(t, "Electronics", leaves[0].SubCategory.MainCategory.Name)
}

func TestCategoryController_Errors(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"missing name", http.MethodPost, "/main-category", map[string]interface{}{}, http.StatusBadRequest, apperrors.ValidationInvalidInput},
		{"blank name", http.MethodPost, "/main-category", map[string]interface{}{"name": "  "}, http.StatusBadRequest, apperrors.ValidationRequired},
		{"unknown parent", http.MethodPost, "/sub-category", map[string]interface{}{"name": "x", "mainCategoryId": 999}, http.StatusNotFound, apperrors.CategoryNotFound},
		{"bad id", http.MethodPut, "/main-category/abc", map[string]interface{}{"name": "x"}, http.StatusBadRequest, apperrors.ValidationInvalidID},
		{"update missing", http.MethodPut, "/main-category/999", map[string]interface{}{"name": "x"}, http.StatusNotFound, apperrors.CategoryNotFound},
		{"delete missing", http.MethodDelete, "/sub-sub-category/999", nil, http.StatusNotFound, apperrors.CategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.doJSON(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			var resp apperrors.ErrorResponse
			decode(t, w, &resp)
			assert.Equal(t, tt.wantCode, resp.Error)
		})
	}
}

func TestCategoryController_UpdateAndDelete(t *testing.T) {
	s := setupTestServer(t)
	leaf := s.leaf(t, "Home")

	w := s.doJSON(t, http.MethodPut, fmt.Sprintf("/sub-sub-category/%d", leaf.ID), map[string]interface{}{"name": "Lamps"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated model.SubSubCategory
	decode(t, w, &updated)
	assert.Equal(t, "Lamps", updated.Name)
	assert.Equal(t, leaf.SubCategoryID, updated.SubCategoryID)

	var sub model.SubCategory
	require.NoError(t, s.db.First(&sub, leaf.SubCategoryID).Error)

	w = s.doJSON(t, http.MethodDelete, fmt.Sprintf("/main-category/%d", sub.MainCategoryID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted model.MainCategory
	decode(t, w, &deleted)
	assert.Equal(t, sub.MainCategoryID, deleted.ID)

	var n int64
	require.NoError(t, s.db.Model(&model.SubSubCategory{}).Count(&n).Error)
	assert.Zero(t, n)
}
