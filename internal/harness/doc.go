// Package harness runs conformance scenarios against the classification engine.
//
// A scenario is a YAML file naming a rule set and the values the engine must
// produce for it: bounded windows, unbounded windows cut to a length, and
// single positions (including rejected ones). Assertions check properties
// that hold for every rule set rather than listing values:
//   - cross_check: Direct and Overlay agree over a position range
//   - random_access: one classification evaluates each predicate once
//   - order_independent: results do not depend on request order
//   - replay: recorded windows reproduce exactly from the run log
//
// Each run produces a trace of windows and points. Traces serialize to
// canonical JSON and compare against golden files in testdata/golden.
package harness
