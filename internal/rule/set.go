package rule

import (
	"iter"
	"strings"
)

// Set is an ordered, immutable collection of rules with unique labels.
//
// Registration order is the concatenation order of labels when several
// rules match one position. It has no influence on which rules match.
// The zero Set is empty and valid.
type Set struct {
	rules []Rule
}

// NewSet creates a set from rules in registration order.
// Returns a DUPLICATE_LABEL error if two rules share a label, and an
// INVALID_RULE error for a zero Rule.
func NewSet(rules ...Rule) (Set, error) {
	seen := make(map[string]bool, len(rules))
	owned := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if r.predicate == nil {
			return Set{}, newInvalidRuleError(r.label, "rule was not built with New or DivisibleBy")
		}
		if seen[r.label] {
			return Set{}, newDuplicateLabelError(r.label)
		}
		seen[r.label] = true
		owned = append(owned, r)
	}
	return Set{rules: owned}, nil
}

// MustNewSet is like NewSet but panics on error.
func MustNewSet(rules ...Rule) Set {
	s, err := NewSet(rules...)
	if err != nil {
		panic(err)
	}
	return s
}

// Classic returns the {3: "fizz", 5: "buzz"} set.
func Classic() Set {
	return MustNewSet(
		MustDivisibleBy(3, "fizz"),
		MustDivisibleBy(5, "buzz"),
	)
}

// Len returns the number of rules.
func (s Set) Len() int {
	return len(s.rules)
}

// At returns the i-th rule in registration order.
func (s Set) At(i int) Rule {
	return s.rules[i]
}

// All iterates the rules in registration order.
func (s Set) All() iter.Seq2[int, Rule] {
	return func(yield func(int, Rule) bool) {
		for i, r := range s.rules {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Labels returns the labels in registration order.
func (s Set) Labels() []string {
	labels := make([]string, len(s.rules))
	for i, r := range s.rules {
		labels[i] = r.label
	}
	return labels
}

// Divisible reports whether every rule in the set is a divisor rule.
func (s Set) Divisible() bool {
	for _, r := range s.rules {
		if _, ok := r.Divisor(); !ok {
			return false
		}
	}
	return true
}

// With derives a new set with r appended.
func (s Set) With(r Rule) (Set, error) {
	rules := make([]Rule, 0, len(s.rules)+1)
	rules = append(rules, s.rules...)
	rules = append(rules, r)
	return NewSet(rules...)
}

// Without derives a new set with the rule labeled label removed.
// Returns an UNKNOWN_LABEL error if no rule carries that label.
func (s Set) Without(label string) (Set, error) {
	rules := make([]Rule, 0, len(s.rules))
	found := false
	for _, r := range s.rules {
		if r.label == label {
			found = true
			continue
		}
		rules = append(rules, r)
	}
	if !found {
		return Set{}, newUnknownLabelError(label)
	}
	return Set{rules: rules}, nil
}

// String renders the set as "[fizz%3 buzz%5]".
func (s Set) String() string {
	parts := make([]string, len(s.rules))
	for i, r := range s.rules {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
