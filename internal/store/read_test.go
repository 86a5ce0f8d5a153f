package store

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/roach88/sieve/internal/ir"
)

func TestReadRuleSet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rs := classicRuleSet(t)
	if err := s.WriteRuleSet(ctx, rs); err != nil {
		t.Fatalf("WriteRuleSet() failed: %v", err)
	}

	got, err := s.ReadRuleSet(ctx, rs.Hash)
	if err != nil {
		t.Fatalf("ReadRuleSet() failed: %v", err)
	}
	if got.Hash != rs.Hash || got.IRVersion != rs.IRVersion || got.Spec.Name != "classic" {
		t.Errorf("ReadRuleSet() = %+v, want %+v", got, rs)
	}
	if !slices.Equal(got.Spec.Rules, rs.Spec.Rules) {
		t.Errorf("rules = %v, want %v", got.Spec.Rules, rs.Spec.Rules)
	}
}

func TestReadRuleSet_LargeDivisor(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rs, err := ir.Compile(ir.RuleSetSpec{Rules: []ir.RuleSpec{{Divisor: math.MaxInt64 - 1, Label: "huge"}}})
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if err := s.WriteRuleSet(ctx, rs); err != nil {
		t.Fatalf("WriteRuleSet() failed: %v", err)
	}

	got, err := s.ReadRuleSet(ctx, rs.Hash)
	if err != nil {
		t.Fatalf("ReadRuleSet() failed: %v", err)
	}
	if got.Spec.Rules[0].Divisor != math.MaxInt64-1 {
		t.Errorf("divisor = %d, lost precision", got.Spec.Rules[0].Divisor)
	}
}

func TestReadRuleSet_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRuleSet(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRuleSet() error = %v, want sql.ErrNoRows", err)
	}
}

func TestReadRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rs := classicRuleSet(t)
	if err := s.WriteRuleSet(ctx, rs); err != nil {
		t.Fatalf("WriteRuleSet() failed: %v", err)
	}

	want, err := s.WriteRun(ctx, createTestRun(t, "run-1", rs.Hash, 200, []string{"fizz", "202", "203", "fizz", "buzz"}))
	if err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}

	if got.ID != want.ID || got.Seq != want.Seq || got.Start != 200 || got.Count != 5 {
		t.Errorf("ReadRun() = %+v, want %+v", got, want)
	}
	if got.OutputDigest != want.OutputDigest || got.EngineVersion != ir.EngineVersion {
		t.Errorf("digest/version mismatch: %+v", got)
	}
	if !slices.Equal(got.Outputs, want.Outputs) {
		t.Errorf("outputs = %v, want %v", got.Outputs, want.Outputs)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	rs := classicRuleSet(t)
	if err := s.WriteRuleSet(ctx, rs); err != nil {
		t.Fatalf("WriteRuleSet() failed: %v", err)
	}

	// IDs deliberately sort opposite to seq
	for _, id := range []string{"c", "b", "a"} {
		if _, err := s.WriteRun(ctx, createTestRun(t, id, rs.Hash, 0, []string{"fizzbuzz"})); err != nil {
			t.Fatalf("WriteRun(%s) failed: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}

	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
		if r.Outputs != nil {
			t.Errorf("ListRuns() should not load outputs, got %v", r.Outputs)
		}
	}
	if !slices.Equal(ids, []string{"c", "b", "a"}) {
		t.Errorf("order = %v, want [c b a]", ids)
	}

	last, err := s.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq() failed: %v", err)
	}
	if last != 3 {
		t.Errorf("GetLastSeq() = %d, want 3", last)
	}
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil || len(runs) != 0 {
		t.Errorf("ListRuns() = %#v, want empty non-nil slice", runs)
	}

	last, err := s.GetLastSeq(context.Background())
	if err != nil || last != 0 {
		t.Errorf("GetLastSeq() = %d, %v, want 0, nil", last, err)
	}
}
