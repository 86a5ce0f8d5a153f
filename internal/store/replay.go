package store

import (
	"context"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// Deriver produces a window again from a stored rule set.
// The store does not evaluate rules itself.
type Deriver func(ctx context.Context, spec ir.RuleSetSpec, strategy string, start, count int64) ([]string, error)

// ReplayResult reports whether a recorded run reproduces exactly.
type ReplayResult struct {
	RunID          string `json:"run_id"`
	Seq            int64  `json:"seq"`
	Strategy       string `json:"strategy"`
	Start          int64  `json:"start"`
	Count          int64  `json:"count"`
	RecordedDigest string `json:"recorded_digest"`
	ReplayedDigest string `json:"replayed_digest"`
	Match          bool   `json:"match"`

	// First differing position, set only when Match is false.
	MismatchPosition int64  `json:"mismatch_position,omitempty"`
	Recorded         string `json:"recorded,omitempty"`
	Replayed         string `json:"replayed,omitempty"`
}

// ReplayRun derives a recorded run again and compares outputs position by
// position, then digest against digest.
func (s *Store) ReplayRun(ctx context.Context, id string, derive Deriver) (ReplayResult, error) {
	run, err := s.ReadRun(ctx, id)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	rs, err := s.ReadRuleSet(ctx, run.RuleSetHash)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", id, err)
	}

	replayed, err := derive(ctx, rs.Spec, run.Strategy, run.Start, run.Count)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: derive: %w", id, err)
	}

	digest, err := ir.OutputDigest(run.RuleSetHash, run.Start, replayed)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", id, err)
	}

	result := ReplayResult{
		RunID:          run.ID,
		Seq:            run.Seq,
		Strategy:       run.Strategy,
		Start:          run.Start,
		Count:          run.Count,
		RecordedDigest: run.OutputDigest,
		ReplayedDigest: digest,
		Match:          digest == run.OutputDigest,
	}

	n := max(len(run.Outputs), len(replayed))
	for i := range n {
		recorded, got := valueAt(run.Outputs, i), valueAt(replayed, i)
		if recorded != got {
			result.Match = false
			result.MismatchPosition = run.Start + 1 + int64(i)
			result.Recorded = recorded
			result.Replayed = got
			break
		}
	}

	return result, nil
}

// ReplayAll replays every recorded run in seq order.
func (s *Store) ReplayAll(ctx context.Context, derive Deriver) ([]ReplayResult, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay all: %w", err)
	}

	results := make([]ReplayResult, 0, len(runs))
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.ReplayRun(ctx, run.ID, derive)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return "<missing>"
}
