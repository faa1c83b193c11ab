package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports service liveness for deploy checks.
type HealthHandler struct {
	dbReady func() bool
}

// NewHealthHandler creates a health handler. dbReady reports lead-store
// reachability; when no store is configured it should always return true.
func NewHealthHandler(dbReady func() bool) *HealthHandler {
	return &HealthHandler{
		dbReady: dbReady,
	}
}

// Healthcheck handles GET /api/healthcheck
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	if !h.dbReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "lead store unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
