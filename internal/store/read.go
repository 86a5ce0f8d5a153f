package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// ReadRuleSet retrieves a compiled rule set by hash.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRuleSet(ctx context.Context, hash string) (ir.CompiledRuleSet, error) {
	var (
		rs       ir.CompiledRuleSet
		name     string
		specJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT hash, name, spec, ir_version
		FROM rule_sets
		WHERE hash = ?
	`, hash).Scan(&rs.Hash, &name, &specJSON, &rs.IRVersion)
	if err != nil {
		return ir.CompiledRuleSet{}, fmt.Errorf("read rule set %s: %w", hash, err)
	}

	rs.Spec, err = unmarshalSpec(specJSON)
	if err != nil {
		return ir.CompiledRuleSet{}, fmt.Errorf("read rule set %s: %w", hash, err)
	}
	if rs.Spec.Name == "" {
		rs.Spec.Name = name
	}
	return rs, nil
}

// ReadRun retrieves a single run by ID, including its outputs.
// Returns an error wrapping sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, rule_set_hash, strategy, start_offset, count, output_digest, engine_version
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err != nil {
		return ir.Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	run.Outputs, err = s.readOutputs(ctx, run.ID)
	if err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

// ListRuns returns all runs ordered by seq, without their outputs.
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ListRuns(ctx context.Context) ([]ir.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, rule_set_hash, strategy, start_offset, count, output_digest, engine_version
		FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// GetLastSeq returns the highest run seq, or 0 for an empty log.
func (s *Store) GetLastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("get last seq: %w", err)
	}
	return seq, nil
}

// readOutputs returns a run's outputs ordered by position.
func (s *Store) readOutputs(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value
		FROM outputs
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	defer rows.Close()

	outputs := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		outputs = append(outputs, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outputs: %w", err)
	}

	return outputs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (ir.Run, error) {
	var run ir.Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.RuleSetHash,
		&run.Strategy,
		&run.Start,
		&run.Count,
		&run.OutputDigest,
		&run.EngineVersion,
	)
	if err != nil {
		return ir.Run{}, err
	}
	return run, nil
}

var _ scanner = (*sql.Row)(nil)
