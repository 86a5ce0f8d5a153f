package harness

import (
	"context"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
)

// Derive produces a bounded window from a rule set spec with the named
// strategy. It satisfies store.Deriver and checks ctx between values.
func Derive(ctx context.Context, spec ir.RuleSetSpec, strategy string, start, count int64) ([]string, error) {
	rs, err := compiler.Build(&spec)
	if err != nil {
		return nil, err
	}
	ev, err := engine.New(engine.Strategy(strategy), rs)
	if err != nil {
		return nil, err
	}
	seq, err := ev.Produce(start, count)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, min(count, 1<<16))
	for v := range seq.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
