package store

import (
	"context"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// Recorder appends produced windows to a store.
type Recorder struct {
	store *Store
	ids   IDGenerator
}

// NewRecorder creates a recorder. A nil generator defaults to UUIDv7.
func NewRecorder(s *Store, ids IDGenerator) *Recorder {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &Recorder{store: s, ids: ids}
}

// Record stores the rule set (if new) and one run holding outputs for the
// window starting at start. The output digest is computed here.
func (r *Recorder) Record(ctx context.Context, rs ir.CompiledRuleSet, strategy string, start int64, outputs []string) (ir.Run, error) {
	digest, err := ir.OutputDigest(rs.Hash, start, outputs)
	if err != nil {
		return ir.Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := r.store.WriteRuleSet(ctx, rs); err != nil {
		return ir.Run{}, fmt.Errorf("record run: %w", err)
	}

	run, err := r.store.WriteRun(ctx, ir.Run{
		ID:            r.ids.Generate(),
		RuleSetHash:   rs.Hash,
		Strategy:      strategy,
		Start:         start,
		Count:         int64(len(outputs)),
		Outputs:       outputs,
		OutputDigest:  digest,
		EngineVersion: ir.EngineVersion,
	})
	if err != nil {
		return ir.Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}
