package rule

import "fmt"

// Predicate decides whether a rule matches a position.
// Predicates must be pure: the same position always yields the same answer,
// and evaluating one position never depends on any other.
type Predicate func(position int64) bool

// Rule is an immutable (predicate, label) pair.
// The zero Rule is invalid; build rules with New or DivisibleBy.
type Rule struct {
	label     string
	predicate Predicate
	divisor   int64 // 0 for opaque predicates
}

// New creates a rule from an arbitrary predicate.
// Returns an INVALID_RULE error if label is empty or predicate is nil.
func New(predicate Predicate, label string) (Rule, error) {
	if label == "" {
		return Rule{}, newInvalidRuleError("", "label must be non-empty")
	}
	if predicate == nil {
		return Rule{}, newInvalidRuleError(label, "predicate must be non-nil")
	}
	return Rule{label: label, predicate: predicate}, nil
}

// DivisibleBy creates a rule matching every position evenly divisible by
// divisor. Position 0 matches every divisor.
func DivisibleBy(divisor int64, label string) (Rule, error) {
	if divisor <= 0 {
		return Rule{}, newInvalidRuleError(label, fmt.Sprintf("divisor must be positive, got %d", divisor))
	}
	r, err := New(func(position int64) bool {
		return position%divisor == 0
	}, label)
	if err != nil {
		return Rule{}, err
	}
	r.divisor = divisor
	return r, nil
}

// MustDivisibleBy is like DivisibleBy but panics on error.
// Use only in tests or with constant inputs.
func MustDivisibleBy(divisor int64, label string) Rule {
	r, err := DivisibleBy(divisor, label)
	if err != nil {
		panic(err)
	}
	return r
}

// Label returns the label contributed when the rule matches.
func (r Rule) Label() string {
	return r.label
}

// Divisor returns the divisor of a rule built with DivisibleBy.
// The second result is false for rules with an opaque predicate.
func (r Rule) Divisor() (int64, bool) {
	return r.divisor, r.divisor > 0
}

// Matches evaluates the rule's predicate against position.
func (r Rule) Matches(position int64) bool {
	return r.predicate(position)
}

// WithPredicate returns a copy of r whose predicate is wrap(original).
// The copy keeps r's label but loses divisor introspection, since the
// wrapper is free to change what matches.
func (r Rule) WithPredicate(wrap func(Predicate) Predicate) (Rule, error) {
	return New(wrap(r.predicate), r.label)
}

// String returns "label%divisor" for divisor rules and "label(custom)"
// otherwise.
func (r Rule) String() string {
	if d, ok := r.Divisor(); ok {
		return fmt.Sprintf("%s%%%d", r.label, d)
	}
	return r.label + "(custom)"
}
