package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/launcify/launcify-api/internal/models"
	"github.com/launcify/launcify-api/pkg/logger"
	"github.com/launcify/launcify-api/pkg/metrics"
	"go.uber.org/zap"
)

// LeadRepository persists sales leads in PostgreSQL. This service only ever
// writes leads; follow-up tooling reads them.
type LeadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository creates a new lead repository
func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

// Create inserts a lead row.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) error {
	start := time.Now()

	query := `
		INSERT INTO leads (name, email, company_size, bottleneck, tech_stack,
			ai_response, ai_estimate, estimated_hours_saved, recommended_system, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		nilIfEmpty(lead.Name),
		lead.Email,
		lead.CompanySize,
		lead.Bottleneck,
		lead.TechStack,
		nilIfEmpty(lead.AIResponse),
		nilIfEmpty(lead.AIEstimate),
		lead.EstimatedHoursSaved,
		lead.RecommendedSystem,
		lead.Source,
	)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		logger.LogAPICall("postgres", "createLead", "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create lead: %w", err)
	}

	logger.LogAPICall("postgres", "createLead", "success", duration)
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
