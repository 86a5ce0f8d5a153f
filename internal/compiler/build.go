package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/rule"
)

// Build turns a validated spec into a rule.Set, preserving rule order.
// Validation problems are joined into a single error.
func Build(spec *ir.RuleSetSpec) (rule.Set, error) {
	if verrs := Validate(spec); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return rule.Set{}, fmt.Errorf("invalid rule set: %w", errors.Join(errs...))
	}

	rules := make([]rule.Rule, 0, len(spec.Rules))
	for _, r := range spec.Rules {
		built, err := rule.DivisibleBy(r.Divisor, r.Label)
		if err != nil {
			return rule.Set{}, err
		}
		rules = append(rules, built)
	}
	return rule.NewSet(rules...)
}

// FromSet describes a divisor-only rule set as a spec. Rules without a
// divisor cannot be described and are reported by label.
func FromSet(name string, rs rule.Set) (*ir.RuleSetSpec, error) {
	spec := &ir.RuleSetSpec{Name: name, Rules: make([]ir.RuleSpec, 0, rs.Len())}
	for _, r := range rs.All() {
		d, ok := r.Divisor()
		if !ok {
			return nil, fmt.Errorf("rule %q has no divisor and cannot be serialized", r.Label())
		}
		spec.Rules = append(spec.Rules, ir.RuleSpec{Divisor: d, Label: r.Label()})
	}
	return spec, nil
}
