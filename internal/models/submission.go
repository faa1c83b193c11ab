package models

import (
	"regexp"
	"strings"
)

// CompanySizes is the closed set of accepted companySize values. The form
// renders exactly these strings; anything else is rejected before a prompt
// is built, which is the injection defense for this field.
var CompanySizes = []string{
	"1–10 employees",
	"11–50 employees",
	"51–200 employees",
	"200+ employees",
}

// Bottlenecks is the closed set of accepted bottleneck values.
var Bottlenecks = []string{
	"Manual data entry and reporting",
	"Slow or broken sales pipeline",
	"Customer support overload",
	"Disconnected tools with no integrations",
	"Compliance and documentation overhead",
}

// KnownTools is the allow-list the strategy flow filters techStack against.
// Matches the options rendered by the strategy assistant form.
var KnownTools = []string{
	"HubSpot",
	"Slack",
	"Airtable",
	"Notion",
	"Shopify",
	"Salesforce",
	"Google Workspace",
	"Custom / Internal tools",
}

const maxTechStackEntries = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// StrategyRequest is the body of POST /api/v1/strategy. Optional fields carry
// no length bounds here: over-long values are clamped by Sanitize, never
// rejected, and the body-size limit middleware bounds the payload as a whole.
type StrategyRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	CompanySize string   `json:"companySize" binding:"required"`
	Bottleneck  string   `json:"bottleneck" binding:"required"`
	TechStack   []string `json:"techStack"`
}

// EstimateRequest is the body of POST /api/v1/estimate.
type EstimateRequest struct {
	CompanySize string   `json:"companySize" binding:"required"`
	Bottleneck  string   `json:"bottleneck" binding:"required"`
	TechStack   []string `json:"techStack"`
}

// Submission is a validated, sanitized form submission. Only Submission
// values reach the prompt builder and the lead store; raw request fields
// never do.
type Submission struct {
	CompanySize string
	Bottleneck  string
	TechStack   []string
	Name        string  // empty when not provided
	Email       *string // nil when missing or malformed
}

// CompanySizeIndex returns the position of a size in CompanySizes, or -1.
// The estimate fallback derives its week count from this tier.
func CompanySizeIndex(size string) int {
	for i, s := range CompanySizes {
		if s == size {
			return i
		}
	}
	return -1
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// ValidProfile reports whether companySize and bottleneck are members of
// their enumerations.
func ValidProfile(companySize, bottleneck string) bool {
	return contains(CompanySizes, companySize) && contains(Bottlenecks, bottleneck)
}

// FilterKnownTools keeps only allow-listed tool names, capped at
// maxTechStackEntries. Order is preserved.
func FilterKnownTools(stack []string) []string {
	filtered := make([]string, 0, len(stack))
	for _, tool := range stack {
		if contains(KnownTools, tool) {
			filtered = append(filtered, tool)
			if len(filtered) == maxTechStackEntries {
				break
			}
		}
	}
	return filtered
}

// CapTechStack truncates a free-text tech stack to maxTechStackEntries
// without filtering. The estimate flow accepts arbitrary tool names; this is
// observed behavior carried over from the site, not an oversight to fix here.
func CapTechStack(stack []string) []string {
	if len(stack) > maxTechStackEntries {
		return stack[:maxTechStackEntries]
	}
	return stack
}

// SanitizeName truncates to 100 characters and strips angle brackets.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "<", "")
	name = strings.ReplaceAll(name, ">", "")
	runes := []rune(name)
	if len(runes) > 100 {
		return string(runes[:100])
	}
	return name
}

// SanitizeEmail returns a pointer to the email when it looks like
// local@domain.tld, nil otherwise. A bad email never fails the request.
func SanitizeEmail(email string) *string {
	if email == "" || !emailPattern.MatchString(email) {
		return nil
	}
	return &email
}

// Sanitize validates a strategy request into a Submission. The boolean is
// false when companySize or bottleneck fall outside their enumerations.
func (r *StrategyRequest) Sanitize() (*Submission, bool) {
	if !ValidProfile(r.CompanySize, r.Bottleneck) {
		return nil, false
	}
	return &Submission{
		CompanySize: r.CompanySize,
		Bottleneck:  r.Bottleneck,
		TechStack:   FilterKnownTools(r.TechStack),
		Name:        SanitizeName(r.Name),
		Email:       SanitizeEmail(r.Email),
	}, true
}

// Sanitize validates an estimate request into a Submission.
func (r *EstimateRequest) Sanitize() (*Submission, bool) {
	if !ValidProfile(r.CompanySize, r.Bottleneck) {
		return nil, false
	}
	return &Submission{
		CompanySize: r.CompanySize,
		Bottleneck:  r.Bottleneck,
		TechStack:   CapTechStack(r.TechStack),
	}, true
}

// TechStackDisplay joins the tech stack for prompt interpolation.
func (s *Submission) TechStackDisplay() string {
	if len(s.TechStack) == 0 {
		return "Not specified"
	}
	return strings.Join(s.TechStack, ", ")
}
