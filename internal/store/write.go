package store

import (
	"context"
	"fmt"

	"github.com/roach88/sieve/internal/ir"
)

// WriteRuleSet inserts a compiled rule set into the store.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency - the same rules under a
// different name keep the first name recorded.
func (s *Store) WriteRuleSet(ctx context.Context, rs ir.CompiledRuleSet) error {
	specJSON, err := marshalSpec(rs.Spec)
	if err != nil {
		return fmt.Errorf("write rule set: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rule_sets
		(hash, name, spec, ir_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		rs.Hash,
		rs.Spec.Name,
		specJSON,
		rs.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write rule set: %w", err)
	}

	return nil
}

// WriteRun inserts a run and its outputs in a single transaction.
// Returns the run as stored, with Seq assigned when it was zero.
//
// Uses ON CONFLICT DO NOTHING for idempotency - writing a run whose ID
// already exists returns the stored run's seq and leaves the log unchanged.
//
// Note: The rule set referenced by RuleSetHash must exist (foreign key constraint).
func (s *Store) WriteRun(ctx context.Context, run ir.Run) (ir.Run, error) {
	if int64(len(run.Outputs)) != run.Count {
		return run, fmt.Errorf("write run: %d outputs for count %d", len(run.Outputs), run.Count)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if run.Seq == 0 {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
			return run, fmt.Errorf("write run: next seq: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, rule_set_hash, strategy, start_offset, count, output_digest, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.RuleSetHash,
		run.Strategy,
		run.Start,
		run.Count,
		run.OutputDigest,
		run.EngineVersion,
	)
	if err != nil {
		return run, fmt.Errorf("write run: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return run, fmt.Errorf("write run: rows affected: %w", err)
	}

	if rowsAffected == 0 {
		// Conflict - run already recorded, report the existing seq
		err = tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&run.Seq)
		if err != nil {
			return run, fmt.Errorf("write run: seq %d already taken: %w", run.Seq, err)
		}
		return run, tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outputs (run_id, position, value)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, position) DO NOTHING
	`)
	if err != nil {
		return run, fmt.Errorf("write run: prepare outputs: %w", err)
	}
	defer stmt.Close()

	for i, value := range run.Outputs {
		position := run.Start + 1 + int64(i)
		if _, err := stmt.ExecContext(ctx, run.ID, position, value); err != nil {
			return run, fmt.Errorf("write run: output at position %d: %w", position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return run, fmt.Errorf("write run: commit: %w", err)
	}

	return run, nil
}
