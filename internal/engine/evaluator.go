package engine

import (
	"context"
	"fmt"

	"github.com/roach88/sieve/internal/rule"
)

// Evaluator classifies positions against a fixed rule set.
// Both Direct and Overlay implement it.
type Evaluator interface {
	// Classify returns the classification of one position.
	Classify(position int64) (string, error)

	// ClassifyContext is like Classify but stops with ctx.Err() once ctx
	// is done.
	ClassifyContext(ctx context.Context, position int64) (string, error)

	// Produce returns a sequence of exactly count values from offset
	// start. Offset k holds position k+1.
	Produce(start, count int64) (*Sequence, error)

	// ProduceUnbounded returns an infinite sequence from offset start.
	ProduceUnbounded(start int64) (*Sequence, error)

	// RandomAccess reports whether Classify costs the same for every
	// position.
	RandomAccess() bool

	// Rules returns the rule set.
	Rules() rule.Set
}

// Strategy names an evaluator.
type Strategy string

const (
	// StrategyDirect selects the Direct evaluator.
	StrategyDirect Strategy = "direct"

	// StrategyOverlay selects the Overlay evaluator.
	StrategyOverlay Strategy = "overlay"
)

// ValidStrategies lists the strategies New accepts.
var ValidStrategies = []Strategy{StrategyDirect, StrategyOverlay}

// New creates the evaluator named by strategy.
func New(strategy Strategy, rules rule.Set) (Evaluator, error) {
	switch strategy {
	case StrategyDirect:
		return NewDirect(rules), nil
	case StrategyOverlay:
		return NewOverlay(rules)
	default:
		return nil, &Error{
			Code:    ErrCodeUnknownStrategy,
			Message: fmt.Sprintf("unknown strategy %q: must be one of %v", strategy, ValidStrategies),
		}
	}
}

var (
	_ Evaluator = (*Direct)(nil)
	_ Evaluator = (*Overlay)(nil)
)
