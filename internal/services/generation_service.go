package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/launcify/launcify-api/internal/models"
	"github.com/launcify/launcify-api/pkg/llm"
	"github.com/launcify/launcify-api/pkg/logger"
	"github.com/launcify/launcify-api/pkg/metrics"
	"go.uber.org/zap"
)

// ErrInvalidInputs means companySize or bottleneck fell outside their
// enumerations. No model call is made for such requests.
var ErrInvalidInputs = errors.New("companySize or bottleneck is not an accepted value")

const leadWriteTimeout = 5 * time.Second

// GenerationService runs the generation pipeline: sanitize, prompt, one
// bounded model call, output validation with fallback, best-effort lead
// recording. One instance serves both flows.
type GenerationService struct {
	completions CompletionClient
	leads       LeadStore // nil when no lead store is configured
	validator   ResultValidator
	siteBaseURL string
	strategy    *Flow
	estimate    *Flow
}

// NewGenerationService creates the service. leads may be nil, which turns
// lead recording into a silent skip.
func NewGenerationService(completions CompletionClient, leads LeadStore, validator ResultValidator, siteBaseURL string) *GenerationService {
	return &GenerationService{
		completions: completions,
		leads:       leads,
		validator:   validator,
		siteBaseURL: siteBaseURL,
		strategy:    StrategyFlow(),
		estimate:    EstimateFlow(),
	}
}

// GenerateStrategy handles the strategy flow.
func (s *GenerationService) GenerateStrategy(ctx context.Context, req *models.StrategyRequest) (*models.StrategyResult, error) {
	sub, ok := req.Sanitize()
	if !ok {
		metrics.GenerationRequests.WithLabelValues(s.strategy.Name, "invalid_inputs").Inc()
		return nil, ErrInvalidInputs
	}

	result, err := s.generate(ctx, s.strategy, sub)
	if err != nil {
		return nil, err
	}
	return result.(*models.StrategyResult), nil
}

// GenerateEstimate handles the estimate flow.
func (s *GenerationService) GenerateEstimate(ctx context.Context, req *models.EstimateRequest) (*models.EstimateResult, error) {
	sub, ok := req.Sanitize()
	if !ok {
		metrics.GenerationRequests.WithLabelValues(s.estimate.Name, "invalid_inputs").Inc()
		return nil, ErrInvalidInputs
	}

	result, err := s.generate(ctx, s.estimate, sub)
	if err != nil {
		return nil, err
	}
	return result.(*models.EstimateResult), nil
}

// generate is the shared pipeline body. Errors from the model call propagate
// to the handler. Validation failures do not; they become the flow's
// fallback, trading strict correctness of generated content for
// availability.
func (s *GenerationService) generate(ctx context.Context, flow *Flow, sub *models.Submission) (any, error) {
	raw, err := s.completions.Complete(ctx, flow.SystemPrompt, flow.BuildUserMessage(sub), llm.CallOptions{
		Temperature: flow.Temperature,
		MaxTokens:   flow.MaxTokens,
		Timeout:     flow.Timeout,
	})
	if err != nil {
		status := "upstream_error"
		if errors.Is(err, llm.ErrTimeout) {
			status = "timeout"
		}
		metrics.GenerationRequests.WithLabelValues(flow.Name, status).Inc()
		return nil, err
	}

	result, err := s.validator.Validate(raw, flow)
	if err != nil {
		reason := "schema_mismatch"
		if errors.Is(err, ErrResultParse) {
			reason = "parse_error"
		}
		metrics.FallbacksServed.WithLabelValues(flow.Name, reason).Inc()
		metrics.GenerationRequests.WithLabelValues(flow.Name, "fallback").Inc()
		logger.Warn("Model output rejected, serving fallback",
			zap.String("flow", flow.Name),
			zap.String("reason", reason))
		result = flow.Fallback(sub, s.siteBaseURL)
	} else {
		metrics.GenerationRequests.WithLabelValues(flow.Name, "success").Inc()
	}

	s.recordLead(flow, sub, result)

	return result, nil
}

// recordLead persists the submission and result without touching the
// response path: it runs on its own goroutine with its own deadline, and
// failures are demoted to warnings.
func (s *GenerationService) recordLead(flow *Flow, sub *models.Submission, result any) {
	if s.leads == nil {
		metrics.LeadWrites.WithLabelValues(flow.Name, "skipped").Inc()
		return
	}

	serialized, err := json.Marshal(result)
	if err != nil {
		metrics.LeadWrites.WithLabelValues(flow.Name, "error").Inc()
		logger.Warn("Lead serialization failed", zap.String("flow", flow.Name), zap.Error(err))
		return
	}

	lead := flow.BuildLead(sub, string(serialized), result)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), leadWriteTimeout)
		defer cancel()

		if err := s.leads.Create(ctx, lead); err != nil {
			metrics.LeadWrites.WithLabelValues(flow.Name, "error").Inc()
			logger.Warn("Lead write failed",
				zap.String("flow", flow.Name),
				zap.Error(err))
			return
		}
		metrics.LeadWrites.WithLabelValues(flow.Name, "success").Inc()
	}()
}
