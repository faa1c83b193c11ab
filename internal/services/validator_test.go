package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launcify/launcify-api/internal/models"
	"github.com/launcify/launcify-api/internal/services"
)

// Both validators must accept and reject the same documents; the config flag
// only picks the implementation.
func bothValidators() map[string]services.ResultValidator {
	return map[string]services.ResultValidator{
		"schema": services.NewResultValidator("schema"),
		"native": services.NewResultValidator("native"),
	}
}

func TestNewResultValidator(t *testing.T) {
	assert.IsType(t, &services.SchemaValidator{}, services.NewResultValidator("schema"))
	assert.IsType(t, &services.NativeValidator{}, services.NewResultValidator("native"))
	assert.IsType(t, &services.SchemaValidator{}, services.NewResultValidator(""), "schema is the default")
}

func TestResultValidator_ValidStrategyOutput(t *testing.T) {
	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			result, err := validator.Validate(validStrategyOutput, services.StrategyFlow())

			require.NoError(t, err)
			strategy, ok := result.(*models.StrategyResult)
			require.True(t, ok)
			assert.Equal(t, "10-15 hours per week", strategy.EstimatedHoursSaved)
			assert.Len(t, strategy.ImplementationPlan, 2)
		})
	}
}

func TestResultValidator_ValidEstimateOutput(t *testing.T) {
	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			result, err := validator.Validate(validEstimateOutput, services.EstimateFlow())

			require.NoError(t, err)
			estimate, ok := result.(*models.EstimateResult)
			require.True(t, ok)
			assert.Equal(t, float64(4), estimate.Weeks)
			assert.Equal(t, "$12k", estimate.BallparkUSD)
		})
	}
}

func TestResultValidator_RejectsNonJSON(t *testing.T) {
	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			_, err := validator.Validate("Here's your plan:\n1. Do things", services.StrategyFlow())
			assert.ErrorIs(t, err, services.ErrResultParse)
		})
	}
}

func TestResultValidator_RejectsMissingField(t *testing.T) {
	doc := `{"weeks": 4, "note": "missing the ballpark"}`

	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			_, err := validator.Validate(doc, services.EstimateFlow())
			assert.ErrorIs(t, err, services.ErrResultSchema)
		})
	}
}

func TestResultValidator_RejectsWrongType(t *testing.T) {
	doc := `{"weeks": "four", "ballpark_usd": "$8k", "note": "n"}`

	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			_, err := validator.Validate(doc, services.EstimateFlow())
			assert.ErrorIs(t, err, services.ErrResultSchema)
		})
	}
}

func TestResultValidator_RejectsMalformedPlanStep(t *testing.T) {
	doc := `{
		"diagnosis": "d",
		"recommendedSystem": "r",
		"estimatedHoursSaved": "h",
		"implementationPlan": [{"week": "Week 1"}],
		"topTools": [],
		"nextStep": "n"
	}`

	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			_, err := validator.Validate(doc, services.StrategyFlow())
			assert.ErrorIs(t, err, services.ErrResultSchema)
		})
	}
}

func TestResultValidator_DropsUnknownFields(t *testing.T) {
	doc := `{"weeks": 3, "ballpark_usd": "$6k", "note": "n", "confidence": 0.9}`

	for name, validator := range bothValidators() {
		t.Run(name, func(t *testing.T) {
			result, err := validator.Validate(doc, services.EstimateFlow())

			require.NoError(t, err)
			estimate := result.(*models.EstimateResult)
			assert.Equal(t, float64(3), estimate.Weeks)
		})
	}
}
