package compiler

import (
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// RuleSetSpec errors (E101-E109)
	ErrNoRules            = "E101" // at least one rule required
	ErrDivisorNotPositive = "E102" // divisor must be > 0
	ErrLabelEmpty         = "E103" // label is required
	ErrDuplicateLabel     = "E104" // two rules share a label
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports RuleSetSpec and CompiledRuleSet.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.RuleSetSpec:
		return validateRuleSetSpec(spec)
	case ir.RuleSetSpec:
		return validateRuleSetSpec(&spec)
	case *ir.CompiledRuleSet:
		return validateRuleSetSpec(&spec.Spec)
	case ir.CompiledRuleSet:
		return validateRuleSetSpec(&spec.Spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateRuleSetSpec validates a rule set configuration.
func validateRuleSetSpec(spec *ir.RuleSetSpec) []ValidationError {
	var errs []ValidationError

	// E101: at least one rule required
	if len(spec.Rules) == 0 {
		errs = append(errs, ValidationError{
			Field:   "rules",
			Message: "at least one rule is required",
			Code:    ErrNoRules,
		})
	}

	seen := make(map[string]int)
	for i, r := range spec.Rules {
		// E102: divisor must be positive
		if r.Divisor <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].divisor", i),
				Message: fmt.Sprintf("divisor must be positive, got %d", r.Divisor),
				Code:    ErrDivisorNotPositive,
			})
		}

		// E103: label is required
		if r.Label == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].label", i),
				Message: "label is required and must be non-empty",
				Code:    ErrLabelEmpty,
			})
			continue
		}

		// E104: duplicate label
		if first, ok := seen[r.Label]; ok {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules[%d].label", i),
				Message: fmt.Sprintf("duplicate label %q (first used by rules[%d])", r.Label, first),
				Code:    ErrDuplicateLabel,
			})
			continue
		}
		seen[r.Label] = i
	}

	return errs
}
