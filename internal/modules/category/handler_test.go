package category

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(newTestDB(t))

	router := gin.New()
	api := router.Group("/api")
	NewHandler(svc).RegisterRoutes(api)
	return router, svc
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateEndpointStatuses(t *testing.T) {
	router, svc := newRouter(t)

	rec := doJSON(router, http.MethodPost, "/api/categories", `{"name":"Home"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/categories", `{"name":"Home"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")

	rec = doJSON(router, http.MethodPost, "/api/categories", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(router, http.MethodPost, "/api/categories", `{"name":"Sub","parent_id":"missing"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	home, err := svc.Create(&CreateCategoryDTO{Name: "Base"})
	require.NoError(t, err)
	child, err := svc.Create(&CreateCategoryDTO{Name: "Child", ParentID: &home.ID})
	require.NoError(t, err)

	rec = doJSON(router, http.MethodPost, "/api/categories", `{"name":"Deep","parent_id":"`+child.ID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEndpointBlockedConflict(t *testing.T) {
	router, svc := newRouter(t)

	home, err := svc.Create(&CreateCategoryDTO{Name: "Home"})
	require.NoError(t, err)
	_, err = svc.Create(&CreateCategoryDTO{Name: "Repairs", ParentID: &home.ID})
	require.NoError(t, err)

	rec := doJSON(router, http.MethodDelete, "/api/categories/"+home.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "subcategories")

	rec = doJSON(router, http.MethodDelete, "/api/categories/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListEndpoints(t *testing.T) {
	router, svc := newRouter(t)

	home, err := svc.Create(&CreateCategoryDTO{Name: "Home"})
	require.NoError(t, err)
	_, err = svc.Create(&CreateCategoryDTO{Name: "Repairs", ParentID: &home.ID})
	require.NoError(t, err)

	rec := doJSON(router, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"children"`)

	rec = doJSON(router, http.MethodGet, "/api/categories/flat", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Home → Repairs")

	rec = doJSON(router, http.MethodGet, "/api/categories/main", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Repairs")

	rec = doJSON(router, http.MethodGet, "/api/categories/"+home.ID+"/subcategories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Repairs")
}
