package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sieve/internal/ir"
)

// schemaSource is unified with every CUE rule configuration. Field types are
// enforced here; semantic checks (positive divisors, unique labels) are left
// to Validate so CUE and YAML configurations report the same codes.
const schemaSource = `
#Rule: {
	divisor: int
	label:   string
}

#RuleSet: {
	name?: string
	rules: [...#Rule]
}
`

// CompileRulesSource compiles CUE source into a RuleSetSpec.
// The top-level value is closed against #RuleSet, so unknown fields are
// reported as errors.
func CompileRulesSource(filename string, src []byte) (*ir.RuleSetSpec, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile rule schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#RuleSet")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	return CompileRules(unified)
}

// CompileRules parses a CUE value into a RuleSetSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value should be the rule set struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`rules: [{divisor: 3, label: "fizz"}]`)
//	spec, err := CompileRules(v)
func CompileRules(v cue.Value) (*ir.RuleSetSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.RuleSetSpec{}

	// Name is optional
	nameVal := v.LookupPath(cue.ParsePath("name"))
	if nameVal.Exists() {
		name, err := nameVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Name = name
	}

	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rules",
			Message: "rules is required",
			Pos:     v.Pos(),
		}
	}

	rules, err := parseRules(rulesVal)
	if err != nil {
		return nil, err
	}
	spec.Rules = rules

	return spec, nil
}

// parseRules extracts the ordered rule list.
func parseRules(v cue.Value) ([]ir.RuleSpec, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	rules := []ir.RuleSpec{}
	for i := 0; iter.Next(); i++ {
		r, err := parseRule(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func parseRule(v cue.Value, index int) (ir.RuleSpec, error) {
	var r ir.RuleSpec

	divisorVal := v.LookupPath(cue.ParsePath("divisor"))
	if !divisorVal.Exists() {
		return r, &CompileError{
			Field:   fmt.Sprintf("rules[%d].divisor", index),
			Message: "divisor is required",
			Pos:     v.Pos(),
		}
	}
	if k := divisorVal.IncompleteKind(); k != cue.IntKind {
		return r, &CompileError{
			Field:   fmt.Sprintf("rules[%d].divisor", index),
			Message: fmt.Sprintf("divisor must be an integer, got %v", k),
			Pos:     divisorVal.Pos(),
		}
	}
	divisor, err := divisorVal.Int64()
	if err != nil {
		return r, formatCUEError(err)
	}
	r.Divisor = divisor

	labelVal := v.LookupPath(cue.ParsePath("label"))
	if !labelVal.Exists() {
		return r, &CompileError{
			Field:   fmt.Sprintf("rules[%d].label", index),
			Message: "label is required",
			Pos:     v.Pos(),
		}
	}
	label, err := labelVal.String()
	if err != nil {
		return r, formatCUEError(err)
	}
	r.Label = label

	return r, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return &CompileError{Field: "cue", Message: firstErr.Error()}
}
