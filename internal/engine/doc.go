// Package engine classifies positions against a rule.Set.
//
// Two evaluators share one contract (Evaluator):
//
// Direct evaluates a single position in isolation. It costs one predicate
// evaluation per rule whatever the position, supports true random access,
// and is safe for concurrent use over the same immutable rule set.
//
// Overlay merges precomputed cyclic patterns positionally. It is correct but
// strictly sequential: reaching position P walks every position before it.
// It exists as a contrast strategy and as an independent oracle in tests.
//
// CLASSIFICATION:
//
// A position's classification is the concatenation, in registration order,
// of the labels of every matching rule, or the decimal form of the position
// when no rule matches. The fallback is implicit and never contributes to a
// concatenation. Classification is a pure function of (rule set, position):
// it does not depend on what was evaluated before or in which order.
//
// SEQUENCES:
//
// Produce and ProduceUnbounded return a Sequence, a pull-based cursor.
// Windows are addressed by offset into the counting sequence 1, 2, 3, ...,
// so offset k holds position k+1 and Produce(rules, 200, 5) covers positions
// 201 through 205. Values are computed only when the consumer asks for them,
// and a sequence owns nothing but its position counter. Stopping consumption
// is the only cancellation there is.
//
// The package performs no I/O and does not log. Errors are returned as
// *Error values carrying an ErrorCode.
package engine
