package services

import (
	"fmt"
	"math"
	"time"

	"github.com/launcify/launcify-api/internal/models"
)

// Flow parameterizes the generation pipeline: prompts, model call options,
// the expected result shape and the fallback factory. The strategy and
// estimate endpoints are the same pipeline instantiated with different
// flows.
type Flow struct {
	Name             string
	SystemPrompt     string
	Temperature      float64
	MaxTokens        int
	Timeout          time.Duration
	Schema           map[string]any
	CheckShape       func(v map[string]any) bool
	BuildUserMessage func(sub *models.Submission) string
	NewResult        func() any
	Fallback         func(sub *models.Submission, siteBaseURL string) any
	BuildLead        func(sub *models.Submission, serialized string, result any) *models.Lead
}

const strategySystemPrompt = `You are a Senior Enterprise AI Automation Consultant at Launcify.

Your task: Generate a concise, structured automation strategy based on the user's business inputs.

Output format (strict — return valid JSON only, no markdown, no explanation outside JSON):
{
  "diagnosis": "2-3 sentence operational diagnosis",
  "recommendedSystem": "Name and brief description of the specific automation system to build",
  "estimatedHoursSaved": "X–Y hours per week",
  "implementationPlan": [
    { "week": "Week 1", "task": "..." },
    { "week": "Week 2", "task": "..." },
    { "week": "Week 3", "task": "..." },
    { "week": "Week 4", "task": "..." }
  ],
  "topTools": ["Tool 1", "Tool 2", "Tool 3"],
  "nextStep": "One sentence CTA encouraging a strategy call"
}

Tone: Professional, enterprise-level, specific. No emojis. No hype language. No generic advice.`

const estimateSystemPrompt = `You are an expert AI automation estimator for a boutique engineering agency. ` +
	`Given a short business profile, return a strict JSON object with: ` +
	`{"weeks": number, "ballpark_usd": string, "note": string}. ` +
	`Keep estimates conservative and brief. Return JSON only.`

// StrategyFlow returns the strategy generation flow.
func StrategyFlow() *Flow {
	return &Flow{
		Name:         "strategy",
		SystemPrompt: strategySystemPrompt,
		Temperature:  0.35,
		MaxTokens:    800,
		Timeout:      25 * time.Second,
		Schema: map[string]any{
			"type": "object",
			"required": []string{
				"diagnosis", "recommendedSystem", "estimatedHoursSaved",
				"implementationPlan", "topTools", "nextStep",
			},
			"properties": map[string]any{
				"diagnosis":           map[string]any{"type": "string"},
				"recommendedSystem":   map[string]any{"type": "string"},
				"estimatedHoursSaved": map[string]any{"type": "string"},
				"implementationPlan": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":     "object",
						"required": []string{"week", "task"},
						"properties": map[string]any{
							"week": map[string]any{"type": "string"},
							"task": map[string]any{"type": "string"},
						},
					},
				},
				"topTools": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
				"nextStep": map[string]any{"type": "string"},
			},
		},
		CheckShape: checkStrategyShape,
		BuildUserMessage: func(sub *models.Submission) string {
			return fmt.Sprintf(`
Business Profile:
- Company Size: %s
- Primary Operational Bottleneck: %s
- Current Tech Stack: %s

Generate an automation strategy for this business.`,
				sub.CompanySize, sub.Bottleneck, sub.TechStackDisplay())
		},
		NewResult: func() any { return &models.StrategyResult{} },
		Fallback: func(_ *models.Submission, siteBaseURL string) any {
			return &models.StrategyResult{
				Diagnosis:           "We could not generate a tailored diagnosis right now.",
				RecommendedSystem:   "A Launcify consultant will map the right automation system for your operation on a short call.",
				EstimatedHoursSaved: "To be assessed",
				ImplementationPlan:  []models.PlanStep{},
				TopTools:            []string{},
				NextStep:            fmt.Sprintf("Book a free strategy call at %s/book-call to get a tailored plan.", siteBaseURL),
			}
		},
		BuildLead: func(sub *models.Submission, serialized string, result any) *models.Lead {
			r := result.(*models.StrategyResult)
			return &models.Lead{
				Name:                sub.Name,
				Email:               sub.Email,
				CompanySize:         sub.CompanySize,
				Bottleneck:          sub.Bottleneck,
				TechStack:           sub.TechStack,
				AIResponse:          serialized,
				EstimatedHoursSaved: &r.EstimatedHoursSaved,
				RecommendedSystem:   &r.RecommendedSystem,
				Source:              "strategy",
			}
		},
	}
}

// EstimateFlow returns the estimate generation flow.
func EstimateFlow() *Flow {
	return &Flow{
		Name:         "estimate",
		SystemPrompt: estimateSystemPrompt,
		Temperature:  0.15,
		MaxTokens:    200,
		Timeout:      20 * time.Second,
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"weeks", "ballpark_usd", "note"},
			"properties": map[string]any{
				"weeks":        map[string]any{"type": "number"},
				"ballpark_usd": map[string]any{"type": "string"},
				"note":         map[string]any{"type": "string"},
			},
		},
		CheckShape: checkEstimateShape,
		BuildUserMessage: func(sub *models.Submission) string {
			return fmt.Sprintf("Profile:\n- Company Size: %s\n- Bottleneck: %s\n- Tech Stack: %s",
				sub.CompanySize, sub.Bottleneck, sub.TechStackDisplay())
		},
		NewResult: func() any { return &models.EstimateResult{} },
		Fallback: func(sub *models.Submission, _ string) any {
			tier := models.CompanySizeIndex(sub.CompanySize)
			weeks := math.Max(2, math.Round(2+float64(tier+1)*1.5))
			return &models.EstimateResult{
				Weeks:       weeks,
				BallparkUSD: "$8k",
				Note:        "Fallback conservative estimate. Book a call for precision.",
			}
		},
		BuildLead: func(sub *models.Submission, serialized string, _ any) *models.Lead {
			return &models.Lead{
				CompanySize: sub.CompanySize,
				Bottleneck:  sub.Bottleneck,
				TechStack:   sub.TechStack,
				AIEstimate:  serialized,
				Source:      "estimate",
			}
		},
	}
}

func checkStrategyShape(v map[string]any) bool {
	for _, key := range []string{"diagnosis", "recommendedSystem", "estimatedHoursSaved", "nextStep"} {
		if _, ok := v[key].(string); !ok {
			return false
		}
	}

	plan, ok := v["implementationPlan"].([]any)
	if !ok {
		return false
	}
	for _, entry := range plan {
		step, ok := entry.(map[string]any)
		if !ok {
			return false
		}
		if _, ok := step["week"].(string); !ok {
			return false
		}
		if _, ok := step["task"].(string); !ok {
			return false
		}
	}

	tools, ok := v["topTools"].([]any)
	if !ok {
		return false
	}
	for _, tool := range tools {
		if _, ok := tool.(string); !ok {
			return false
		}
	}

	return true
}

func checkEstimateShape(v map[string]any) bool {
	if _, ok := v["weeks"].(float64); !ok {
		return false
	}
	if _, ok := v["ballpark_usd"].(string); !ok {
		return false
	}
	if _, ok := v["note"].(string); !ok {
		return false
	}
	return true
}
