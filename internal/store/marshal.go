package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// marshalSpec converts a RuleSetSpec to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON for deterministic serialization.
func marshalSpec(spec ir.RuleSetSpec) (string, error) {
	data, err := ir.MarshalCanonical(spec.ToIR())
	if err != nil {
		return "", fmt.Errorf("marshal spec: %w", err)
	}
	return string(data), nil
}

// unmarshalSpec parses canonical JSON TEXT to a RuleSetSpec.
// Divisors decode into int64 fields directly, so values above 2^53 keep
// their precision.
func unmarshalSpec(data string) (ir.RuleSetSpec, error) {
	var spec ir.RuleSetSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return ir.RuleSetSpec{}, fmt.Errorf("unmarshal spec: %w", err)
	}
	if spec.Rules == nil {
		spec.Rules = []ir.RuleSpec{}
	}
	return spec, nil
}
