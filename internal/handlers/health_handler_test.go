package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/launcify/launcify-api/internal/handlers"
)

func performHealthcheck(dbReady func() bool) *httptest.ResponseRecorder {
	handler := handlers.NewHealthHandler(dbReady)

	router := gin.New()
	router.GET("/api/healthcheck", handler.Healthcheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_Healthcheck_OK(t *testing.T) {
	w := performHealthcheck(func() bool { return true })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestHealthHandler_Healthcheck_LeadStoreDown(t *testing.T) {
	w := performHealthcheck(func() bool { return false })

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "lead store unreachable")
}
