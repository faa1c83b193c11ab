package models

// Lead is the persisted record of a submission and its generated result.
// Leads are written as a side effect of generation and never read back by
// this service.
type Lead struct {
	Name                string
	Email               *string
	CompanySize         string
	Bottleneck          string
	TechStack           []string
	AIResponse          string  // serialized strategy result
	AIEstimate          string  // serialized estimate result
	EstimatedHoursSaved *string // strategy flow only
	RecommendedSystem   *string // strategy flow only
	Source              string  // "strategy" or "estimate"
}
