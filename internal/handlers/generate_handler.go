package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/launcify/launcify-api/internal/models"
	"github.com/launcify/launcify-api/internal/services"
	"github.com/launcify/launcify-api/pkg/llm"
)

// GenerateHandler serves the strategy and estimate generation endpoints.
type GenerateHandler struct {
	service services.GenerationServiceInterface
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(service services.GenerationServiceInterface) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// GenerateStrategy handles POST /api/v1/strategy
func (h *GenerateHandler) GenerateStrategy(c *gin.Context) {
	var req models.StrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	strategy, err := h.service.GenerateStrategy(c.Request.Context(), &req)
	if err != nil {
		respondGenerationError(c, err, "Failed to generate strategy. Please try again.")
		return
	}

	c.JSON(http.StatusOK, models.StrategyResponse{Strategy: strategy})
}

// GenerateEstimate handles POST /api/v1/estimate
func (h *GenerateHandler) GenerateEstimate(c *gin.Context) {
	var req models.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	estimate, err := h.service.GenerateEstimate(c.Request.Context(), &req)
	if err != nil {
		respondGenerationError(c, err, "Failed to generate estimate. Please try again.")
		return
	}

	c.JSON(http.StatusOK, models.EstimateResponse{Estimate: estimate})
}

// respondGenerationError maps pipeline errors to the fixed HTTP outcomes:
// invalid inputs 400, model timeout 504, anything else 500. Nothing from
// upstream leaks into the body.
func respondGenerationError(c *gin.Context, err error, genericMessage string) {
	switch {
	case errors.Is(err, services.ErrInvalidInputs):
		respondError(c, http.StatusBadRequest, "Invalid inputs", err)
	case errors.Is(err, llm.ErrTimeout):
		respondError(c, http.StatusGatewayTimeout, "Generation timed out. Please try again.", err)
	default:
		respondError(c, http.StatusInternalServerError, genericMessage, err)
	}
}
