package models

// PlanStep is one entry of a strategy implementation plan.
type PlanStep struct {
	Week string `json:"week"`
	Task string `json:"task"`
}

// StrategyResult is the shape the strategy flow returns to the caller,
// whether produced by the model or by the fallback.
type StrategyResult struct {
	Diagnosis           string     `json:"diagnosis"`
	RecommendedSystem   string     `json:"recommendedSystem"`
	EstimatedHoursSaved string     `json:"estimatedHoursSaved"`
	ImplementationPlan  []PlanStep `json:"implementationPlan"`
	TopTools            []string   `json:"topTools"`
	NextStep            string     `json:"nextStep"`
}

// EstimateResult is the shape the estimate flow returns to the caller.
type EstimateResult struct {
	Weeks       float64 `json:"weeks"`
	BallparkUSD string  `json:"ballpark_usd"`
	Note        string  `json:"note"`
}

// StrategyResponse wraps a strategy result for the HTTP response body.
type StrategyResponse struct {
	Strategy *StrategyResult `json:"strategy"`
}

// EstimateResponse wraps an estimate result for the HTTP response body.
type EstimateResponse struct {
	Estimate *EstimateResult `json:"estimate"`
}
