package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSwaggerServer_New(t *testing.T) {
	assert.True(t, NewSwaggerServer(true).enabled)
	assert.False(t, NewSwaggerServer(false).enabled)
}

func TestSwaggerServer_RegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSwaggerServer(true).RegisterRoutes(router)

	w := serve(router, "/swagger")
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/swagger/index.html", w.Header().Get("Location"))

	w = serve(router, "/swagger/index.html")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger")
}

func TestSwaggerServer_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSwaggerServer(false).RegisterRoutes(router)

	assert.Equal(t, http.StatusNotFound, serve(router, "/swagger").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, "/swagger/index.html").Code)
}
