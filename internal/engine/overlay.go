package engine

import (
	"context"
	"strconv"
	"strings"

	"github.com/roach88/sieve/internal/rule"
)

// Overlay evaluates positions by merging precomputed cyclic patterns.
//
// For every rule with divisor N it builds an infinite cycle of N slots, all
// empty except the last, which holds the rule's label. The cycles are merged
// index by index with string concatenation, and the merged pattern is laid
// over the decimal positions: a position shows its merged element when that
// element is non-empty, its decimal form otherwise. Cycles are aligned so
// that position 0 falls on the label slot, as divisor rules treat 0 as
// divisible by everything.
//
// LIMITATION: Overlay is strictly sequential. Producing the classification
// of position P generates and discards the merged elements of positions
// 0..P-1 first, so Classify(P) costs O(P) and a sequence starting at P walks
// P elements before its first value. Skipping positions generates and
// discards their elements as well. Use Direct whenever random access or large
// offsets are needed; Overlay is kept as a contrast strategy and as an
// independent oracle for tests.
type Overlay struct {
	rules rule.Set
}

// NewOverlay creates an Overlay evaluator. Every rule must be a divisor
// rule; otherwise it fails with UNSUPPORTED_RULE.
func NewOverlay(rules rule.Set) (*Overlay, error) {
	for _, r := range rules.All() {
		if _, ok := r.Divisor(); !ok {
			return nil, newUnsupportedRuleError(r.Label())
		}
	}
	return &Overlay{rules: rules}, nil
}

// Classify returns the classification of position by walking the merged
// pattern from position 0. Cost is proportional to position.
func (o *Overlay) Classify(position int64) (string, error) {
	if position < 0 {
		return "", NewInvalidPositionError(position)
	}
	return o.newCursor().emit(position), nil
}

// ClassifyContext is like Classify but gives up with ctx.Err() when ctx is
// cancelled while walking.
func (o *Overlay) ClassifyContext(ctx context.Context, position int64) (string, error) {
	if position < 0 {
		return "", NewInvalidPositionError(position)
	}
	c := o.newCursor()
	if err := c.walkTo(ctx, position); err != nil {
		return "", err
	}
	return c.emit(position), nil
}

// Produce returns a finite sequence of count classifications from offset
// start (position start+1). The first pull walks positions 0..start.
func (o *Overlay) Produce(start, count int64) (*Sequence, error) {
	if err := checkWindow(start, count); err != nil {
		return nil, err
	}
	return newSequence(o.newCursor(), start, count), nil
}

// ProduceUnbounded returns an infinite sequence from offset start. The first
// pull walks positions 0..start.
func (o *Overlay) ProduceUnbounded(start int64) (*Sequence, error) {
	if err := checkOffset(start); err != nil {
		return nil, err
	}
	return newSequence(o.newCursor(), start, unbounded), nil
}

// RandomAccess reports false: positions are only reachable by walking.
func (o *Overlay) RandomAccess() bool {
	return false
}

// Rules returns the rule set the evaluator was built over.
func (o *Overlay) Rules() rule.Set {
	return o.rules
}

func (o *Overlay) newCursor() *overlayCursor {
	c := &overlayCursor{patterns: make([]*pattern, 0, o.rules.Len())}
	for _, r := range o.rules.All() {
		d, _ := r.Divisor()
		c.patterns = append(c.patterns, newPattern(r.Label(), d))
	}
	return c
}

// walkChunk is how many merged elements a walk generates between context
// checks.
const walkChunk = 1 << 16

// pattern is one rule's infinite cycle.
type pattern struct {
	label  string
	length int64
	slot   int64 // slot the next element is read from
}

func newPattern(label string, length int64) *pattern {
	return &pattern{label: label, length: length, slot: length - 1}
}

func (p *pattern) next() string {
	v := ""
	if p.slot == p.length-1 {
		v = p.label
	}
	p.slot++
	if p.slot == p.length {
		p.slot = 0
	}
	return v
}

// overlayCursor walks the merged pattern. It can only move forward.
type overlayCursor struct {
	patterns  []*pattern
	walked    int64 // position the next merged element belongs to
	generated int64 // merged elements produced so far, discarded ones included
}

// merged produces the next merged element. The empty string is the
// identity of the merge.
func (c *overlayCursor) merged() string {
	var b strings.Builder
	for _, p := range c.patterns {
		b.WriteString(p.next())
	}
	c.walked++
	c.generated++
	return b.String()
}

// walkTo generates and discards merged elements up to position, checking
// ctx every walkChunk elements. It stops early, with the cursor wherever it
// got to, when ctx is done.
func (c *overlayCursor) walkTo(ctx context.Context, position int64) error {
	for c.walked < position {
		if err := ctx.Err(); err != nil {
			return err
		}
		for range min(walkChunk, position-c.walked) {
			c.merged()
		}
	}
	return nil
}

func (c *overlayCursor) emit(position int64) string {
	for c.walked < position {
		c.merged()
	}
	if m := c.merged(); m != "" {
		return m
	}
	return strconv.FormatInt(position, 10)
}
