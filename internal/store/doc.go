// Package store provides SQLite-backed durable storage for sieve run logs.
//
// A run is a bounded window of classifications produced by one evaluator
// strategy under one rule set. The store keeps:
//   - Rule sets: canonical JSON keyed by content hash
//   - Runs: window bounds, strategy, output digest and engine version
//   - Outputs: one row per classified position
//
// Recorded runs can be replayed: the window is derived again from the stored
// rule set and compared value by value against the log. Classification is a
// pure function of (rule set, position), so any difference is a defect.
//
// # Ordering
//
// Runs are ordered by seq (logical clock), never by wall time. Outputs are
// ordered by position.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes come from internal/ir/hash.go using RFC 8785 canonical JSON
// and SHA-256 with domain separation.
package store
