package services

import (
	"context"

	"github.com/launcify/launcify-api/internal/models"
	"github.com/launcify/launcify-api/pkg/llm"
)

// CompletionClient is the outbound model gateway consumed by the pipeline.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string, opts llm.CallOptions) (string, error)
}

// LeadStore persists submissions as sales leads.
type LeadStore interface {
	Create(ctx context.Context, lead *models.Lead) error
}

// GenerationServiceInterface defines the interface for the two generation
// operations, for handler tests.
type GenerationServiceInterface interface {
	GenerateStrategy(ctx context.Context, req *models.StrategyRequest) (*models.StrategyResult, error)
	GenerateEstimate(ctx context.Context, req *models.EstimateRequest) (*models.EstimateResult, error)
}
