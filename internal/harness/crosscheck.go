package harness

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/rule"
)

// crossCheckBlock bounds the values held in memory at once.
const crossCheckBlock = 4096

// Mismatch is the first position where Direct and Overlay disagree.
type Mismatch struct {
	Position int64  `json:"position"`
	Direct   string `json:"direct"`
	Overlay  string `json:"overlay"`
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("position %d: direct %q, overlay %q", m.Position, m.Direct, m.Overlay)
}

// CrossCheck compares the Direct and Overlay evaluators on every position in
// from..to (inclusive) and returns the first disagreement, or nil.
//
// The Overlay sequence is walked once, sequentially, and the walk stops
// with ctx.Err() when ctx is cancelled. Direct values are
// computed block by block across GOMAXPROCS workers. The rule set must be
// divisor-only.
func CrossCheck(ctx context.Context, rs rule.Set, from, to int64) (*Mismatch, error) {
	if from < 0 {
		return nil, engine.NewInvalidPositionError(from)
	}
	if to < from {
		return nil, fmt.Errorf("cross-check range %d..%d is empty", from, to)
	}
	if to-from == math.MaxInt64 {
		return nil, fmt.Errorf("cross-check range %d..%d is too large", from, to)
	}

	overlay, err := engine.NewOverlay(rs)
	if err != nil {
		return nil, err
	}
	direct := engine.NewDirect(rs)

	// Sequences start at position 1; position 0 is compared on its own.
	if from == 0 {
		m, err := compareAt(ctx, direct, overlay, 0)
		if m != nil || err != nil || to == 0 {
			return m, err
		}
		from = 1
	}

	seq, err := overlay.Produce(from-1, to-from+1)
	if err != nil {
		return nil, err
	}

	workers := int64(runtime.GOMAXPROCS(0))
	block := make([]string, crossCheckBlock)

	for start := from; ; {
		n := min(int64(crossCheckBlock), to-start+1)
		chunk := (n + workers - 1) / workers

		g, gctx := errgroup.WithContext(ctx)
		for lo := int64(0); lo < n; lo += chunk {
			hi := min(lo+chunk, n)
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					v, err := direct.Classify(start + i)
					if err != nil {
						return err
					}
					block[i] = v
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i := range n {
			got, ok, err := seq.NextContext(ctx)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("overlay sequence ended early at position %d", start+i)
			}
			if got != block[i] {
				return &Mismatch{Position: start + i, Direct: block[i], Overlay: got}, nil
			}
		}

		if start+n-1 == to {
			return nil, nil
		}
		start += n
	}
}

func compareAt(ctx context.Context, direct *engine.Direct, overlay *engine.Overlay, position int64) (*Mismatch, error) {
	d, err := direct.ClassifyContext(ctx, position)
	if err != nil {
		return nil, err
	}
	o, err := overlay.ClassifyContext(ctx, position)
	if err != nil {
		return nil, err
	}
	if d != o {
		return &Mismatch{Position: position, Direct: d, Overlay: o}, nil
	}
	return nil, nil
}
