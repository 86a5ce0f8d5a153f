// Package rule defines classification rules and the ordered sets they are
// registered in.
//
// A Rule pairs a pure predicate over positions with a non-empty label. A Set
// is an ordered, immutable collection of rules with unique labels. The order
// of a Set only decides how labels are concatenated when several rules match
// the same position; it never decides which rules match. Each predicate is
// evaluated on its own.
//
// Sets are never mutated. With and Without derive new sets:
//
//	classic := rule.MustNewSet(
//	    rule.MustDivisibleBy(3, "fizz"),
//	    rule.MustDivisibleBy(5, "buzz"),
//	)
//	extended, err := classic.With(rule.MustDivisibleBy(7, "bazz"))
//
// Divisor rules treat position 0 as divisible by every positive divisor.
package rule
