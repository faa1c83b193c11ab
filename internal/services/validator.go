package services

import (
	"encoding/json"
	"errors"

	"github.com/xeipuuv/gojsonschema"
)

// Validation failure kinds. Callers only branch on these for metrics; both
// end in the same fallback substitution.
var (
	ErrResultParse  = errors.New("model output is not valid JSON")
	ErrResultSchema = errors.New("model output does not match the expected shape")
)

// ResultValidator turns raw model output into a typed, shape-checked result.
// It is the only component allowed to produce a result for the caller; the
// orchestrator never forwards raw model output.
type ResultValidator interface {
	Validate(raw string, flow *Flow) (any, error)
}

// NewResultValidator selects the validator implementation. mode is "schema"
// (gojsonschema) or "native" (hand-rolled checks); both are semantically
// equivalent and the choice is made once at startup.
func NewResultValidator(mode string) ResultValidator {
	if mode == "native" {
		return &NativeValidator{}
	}
	return &SchemaValidator{}
}

// SchemaValidator checks model output against the flow's JSON schema.
type SchemaValidator struct{}

// Validate implements ResultValidator.
func (v *SchemaValidator) Validate(raw string, flow *Flow) (any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, ErrResultParse
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(flow.Schema),
		gojsonschema.NewGoLoader(parsed),
	)
	if err != nil || !result.Valid() {
		return nil, ErrResultSchema
	}

	return decodeResult(raw, flow)
}

// NativeValidator is the hand-rolled equivalent of SchemaValidator, kept for
// deployments that prefer not to carry the schema library.
type NativeValidator struct{}

// Validate implements ResultValidator.
func (v *NativeValidator) Validate(raw string, flow *Flow) (any, error) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, ErrResultParse
	}

	if !flow.CheckShape(parsed) {
		return nil, ErrResultSchema
	}

	return decodeResult(raw, flow)
}

// decodeResult unmarshals validated output into the flow's typed result.
// Unknown extra fields are dropped by the decode, so the caller always sees
// exactly the target shape.
func decodeResult(raw string, flow *Flow) (any, error) {
	result := flow.NewResult()
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return nil, ErrResultSchema
	}
	return result, nil
}
