package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/sieve/internal/ir"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// classicRuleSet returns the compiled fizz/buzz rule set.
func classicRuleSet(t *testing.T) ir.CompiledRuleSet {
	t.Helper()
	rs, err := ir.Compile(ir.RuleSetSpec{
		Name: "classic",
		Rules: []ir.RuleSpec{
			{Divisor: 3, Label: "fizz"},
			{Divisor: 5, Label: "buzz"},
		},
	})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	return rs
}

// createTestRun creates a run with a computed digest.
func createTestRun(t *testing.T, id, ruleSetHash string, start int64, outputs []string) ir.Run {
	t.Helper()
	digest, err := ir.OutputDigest(ruleSetHash, start, outputs)
	if err != nil {
		t.Fatalf("OutputDigest() failed: %v", err)
	}
	return ir.Run{
		ID:            id,
		RuleSetHash:   ruleSetHash,
		Strategy:      "direct",
		Start:         start,
		Count:         int64(len(outputs)),
		Outputs:       outputs,
		OutputDigest:  digest,
		EngineVersion: ir.EngineVersion,
	}
}
