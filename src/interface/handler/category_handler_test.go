package handler_test

import (
	"net/http"
	"testing"

	"resource-share/src/domain"
	"resource-share/src/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryHandler_ListAndGet(t *testing.T) {
	ts := newTestServer(t)
	ts.seedCategory(t, "电子书籍")
	ts.seedCategory(t, "Study Guides")

	w := ts.do(t, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list usecase.CategoryList
	decode(t, w, &list)
	assert.False(t, list.Degraded)
	require.Len(t, list.Categories, 2)

	w = ts.do(t, http.MethodGet, "/categories/study-guides", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Category domain.Category `json:"category"`
	}
	decode(t, w, &body)
	assert.Equal(t, "Study Guides", body.Category.Name)
	assert.Equal(t, "study-guides", body.Category.Slug)

	w = ts.do(t, http.MethodGet, "/categories/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "分类不存在", errorBody(t, w).Message)
}

func TestCategoryHandler_CreateUpdateDelete(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/categories", map[string]string{"name": "视频教程", "description": "<i>课程</i>"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Category domain.Category `json:"category"`
	}
	decode(t, w, &created)
	assert.NotEmpty(t, created.Category.ID)
	assert.Equal(t, "视频教程", created.Category.Name)
	assert.Equal(t, "i课程/i", created.Category.Description)

	w = ts.do(t, http.MethodPost, "/categories", map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", errorBody(t, w).Field)

	w = ts.do(t, http.MethodPost, "/categories", map[string]string{"name": "<script>alert(1)</script>"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Dangerous input", errorBody(t, w).Error)

	w = ts.do(t, http.MethodPut, "/categories/"+created.Category.ID, map[string]string{"name": "视频课程"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "视频课程")

	w = ts.do(t, http.MethodPut, "/categories/"+unknownID, map[string]string{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/categories/"+created.Category.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodDelete, "/categories/"+created.Category.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
