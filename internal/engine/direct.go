package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/rule"
)

// Direct evaluates any position in isolation.
//
// Classifying a position costs one predicate evaluation per rule, whatever
// the magnitude of the position: position 10^9 costs the same as position 1.
// Direct holds no mutable state and is safe for concurrent use.
type Direct struct {
	rules rule.Set
}

// NewDirect creates a Direct evaluator over rules.
func NewDirect(rules rule.Set) *Direct {
	return &Direct{rules: rules}
}

// Classify returns the classification of position.
//
// Every predicate is evaluated exactly once, in registration order. Labels
// of matching rules are concatenated without a separator; when none match
// the decimal form of position is returned.
func (d *Direct) Classify(position int64) (string, error) {
	return Classify(d.rules, position)
}

// ClassifyContext is Classify after a ctx check. Direct never walks, so
// there is nothing else to interrupt.
func (d *Direct) ClassifyContext(ctx context.Context, position int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Classify(d.rules, position)
}

// Produce returns a finite sequence of count classifications from offset
// start, i.e. positions start+1 through start+count.
func (d *Direct) Produce(start, count int64) (*Sequence, error) {
	return Produce(d.rules, start, count)
}

// ProduceUnbounded returns an infinite sequence from offset start.
func (d *Direct) ProduceUnbounded(start int64) (*Sequence, error) {
	return ProduceUnbounded(d.rules, start)
}

// RandomAccess reports true: any position can be classified on its own.
func (d *Direct) RandomAccess() bool {
	return true
}

// Rules returns the rule set the evaluator was built over.
func (d *Direct) Rules() rule.Set {
	return d.rules
}

// Classify classifies a single position against rules.
// Returns an INVALID_POSITION error for negative positions.
func Classify(rules rule.Set, position int64) (string, error) {
	if position < 0 {
		return "", NewInvalidPositionError(position)
	}
	return classify(rules, position), nil
}

// classify folds the rule set over one position. position must be valid.
func classify(rules rule.Set, position int64) string {
	var b strings.Builder
	for _, r := range rules.All() {
		if r.Matches(position) {
			b.WriteString(r.Label())
		}
	}
	if b.Len() == 0 {
		return strconv.FormatInt(position, 10)
	}
	return b.String()
}

// directCursor classifies each requested position on its own, so skipped
// positions are never touched.
type directCursor struct {
	rules rule.Set
}

func (c directCursor) emit(position int64) string {
	return classify(c.rules, position)
}
