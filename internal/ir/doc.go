// Package ir provides the serializable representation of rule sets and
// recorded runs.
//
// The engine works on rule.Set values, which hold functions and cannot be
// written down. ir describes the subset that can: ordered divisor rules.
// Rule configuration compiles to RuleSetSpec, the run log stores Run
// records, and both are identified by content hashes over canonical JSON.
//
// This package imports nothing internal, so every other package can use it.
//
// Key design constraints:
//   - NO float types anywhere - positions and divisors are int64
//   - All JSON tags use snake_case
//   - Logical sequence numbers (seq) order runs, never wall-clock timestamps
package ir
