package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/store"
	"github.com/roach88/sieve/internal/testutil"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the harness rule set.
// Returns a slice of error messages for failed assertions.
func (h *Harness) EvaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: %v", i, err))
			break
		}

		var err error
		switch assertion.Type {
		case AssertCrossCheck:
			err = h.assertCrossCheck(ctx, assertion.From, assertion.To)
		case AssertRandomAccess:
			err = h.assertRandomAccess(assertion.Position)
		case AssertOrderIndependent:
			err = h.assertOrderIndependent(assertion.Positions)
		case AssertReplay:
			err = h.assertReplay(ctx)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

// assertCrossCheck checks that Direct and Overlay agree on every position
// in from..to.
func (h *Harness) assertCrossCheck(ctx context.Context, from, to int64) error {
	mismatch, err := CrossCheck(ctx, h.eval.Rules(), from, to)
	if err != nil {
		return err
	}
	if mismatch != nil {
		return &AssertionError{
			Type:     AssertCrossCheck,
			Expected: fmt.Sprintf("direct and overlay agree on %d..%d", from, to),
			Actual:   mismatch.String(),
		}
	}
	return nil
}

// assertRandomAccess checks that one classification evaluates every
// predicate exactly once and consults no other position.
func (h *Harness) assertRandomAccess(position int64) error {
	counter := testutil.NewCounter()
	instrumented, err := testutil.Instrument(h.rules, counter)
	if err != nil {
		return err
	}

	got, err := engine.NewDirect(instrumented).Classify(position)
	if err != nil {
		return err
	}
	want, err := engine.Classify(h.rules, position)
	if err != nil {
		return err
	}

	if evaluated := counter.Current(); evaluated != int64(h.rules.Len()) || got != want {
		return &AssertionError{
			Type:     AssertRandomAccess,
			Expected: fmt.Sprintf("%d predicate evaluations yielding %q", h.rules.Len(), want),
			Actual:   fmt.Sprintf("%d predicate evaluations yielding %q", evaluated, got),
		}
	}
	return nil
}

// assertOrderIndependent checks that positions classify identically when
// requested forward, backward, and each from a fresh evaluator.
func (h *Harness) assertOrderIndependent(positions []int64) error {
	classifyAll := func(ev engine.Evaluator, order []int64) (map[int64]string, error) {
		out := make(map[int64]string, len(order))
		for _, p := range order {
			v, err := ev.Classify(p)
			if err != nil {
				return nil, err
			}
			out[p] = v
		}
		return out, nil
	}

	forward, err := classifyAll(h.eval, positions)
	if err != nil {
		return err
	}

	reversed := slices.Clone(positions)
	slices.Reverse(reversed)
	backward, err := classifyAll(h.eval, reversed)
	if err != nil {
		return err
	}

	fresh := make(map[int64]string, len(positions))
	for _, p := range positions {
		ev, err := engine.New(h.strategy, h.rules)
		if err != nil {
			return err
		}
		if fresh[p], err = ev.Classify(p); err != nil {
			return err
		}
	}

	if diff := cmp.Diff(forward, backward); diff != "" {
		return &AssertionError{
			Type:     AssertOrderIndependent,
			Expected: "same results in reverse order",
			Actual:   fmt.Sprintf("diff (-forward +reverse):\n%s", diff),
		}
	}
	if diff := cmp.Diff(forward, fresh); diff != "" {
		return &AssertionError{
			Type:     AssertOrderIndependent,
			Expected: "same results from a fresh evaluator",
			Actual:   fmt.Sprintf("diff (-shared +fresh):\n%s", diff),
		}
	}
	return nil
}

// assertReplay records every produced window in an in-memory run log and
// replays the log.
func (h *Harness) assertReplay(ctx context.Context) error {
	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rec := store.NewRecorder(st, testutil.NewSequentialIDGenerator("replay"))
	for _, w := range h.produced {
		if _, err := rec.Record(ctx, h.compiled, string(h.strategy), w.start, w.values); err != nil {
			return err
		}
	}

	results, err := st.ReplayAll(ctx, Derive)
	if err != nil {
		return err
	}
	for _, r := range results {
		if !r.Match {
			return &AssertionError{
				Type:     AssertReplay,
				Expected: fmt.Sprintf("run %s reproduces digest %s", r.RunID, r.RecordedDigest),
				Actual:   fmt.Sprintf("position %d recorded %q replayed %q", r.MismatchPosition, r.Recorded, r.Replayed),
			}
		}
	}
	return nil
}
