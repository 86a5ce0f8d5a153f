package engine

import (
	"context"
	"iter"
	"math"

	"github.com/roach88/sieve/internal/rule"
)

// unbounded marks a sequence without a count.
const unbounded = -1

// cursor turns positions into classifications for a Sequence.
// Positions passed to emit are strictly increasing but may have gaps
// where the consumer skipped.
type cursor interface {
	emit(position int64) string
}

// walker is a cursor that generates every earlier position before it can
// emit one. NextContext lets such a walk be cancelled.
type walker interface {
	walkTo(ctx context.Context, position int64) error
}

// Sequence is a lazy, pull-based view over classified positions.
//
// Windows are addressed by offset into the counting sequence 1, 2, 3, ...:
// offset k holds the classification of position k+1, so a window with
// start 200 begins at position 201 and an unbounded sequence from offset 0
// begins "1", "2", "fizz" under the classic rules. Position 0 is only
// reachable through Classify.
//
// Values are computed one at a time when the consumer asks for them; nothing
// runs ahead of demand and nothing runs in the background. A Sequence owns
// only its position counter, so independent sequences over the same rule set
// need no synchronization. A single Sequence is meant for one consumer and is
// not restartable: call Produce again for a fresh cursor.
//
// Cancellation is "stop pulling". There is nothing to close. NextContext
// also stops a single pull that would otherwise walk a long way, as the
// Overlay evaluator's first pull does.
type Sequence struct {
	cur       cursor
	next      int64
	remaining int64 // unbounded or >= 0
	exhausted bool  // position space ran out
}

// Produce returns a sequence of exactly count classifications for offsets
// start, start+1, ... (positions start+1, start+2, ...) using the Direct
// evaluator.
//
// count == 0 yields an empty sequence. A negative count fails with
// INVALID_ARGUMENT and a negative start with INVALID_POSITION, both before
// anything is produced.
func Produce(rules rule.Set, start, count int64) (*Sequence, error) {
	if err := checkWindow(start, count); err != nil {
		return nil, err
	}
	return newSequence(directCursor{rules: rules}, start, count), nil
}

// ProduceUnbounded returns an infinite sequence of classifications from
// offset start using the Direct evaluator. It only ends after position
// math.MaxInt64.
func ProduceUnbounded(rules rule.Set, start int64) (*Sequence, error) {
	if err := checkOffset(start); err != nil {
		return nil, err
	}
	return newSequence(directCursor{rules: rules}, start, unbounded), nil
}

// checkOffset validates the first offset of a sequence.
func checkOffset(start int64) error {
	if start < 0 {
		return NewInvalidPositionError(start)
	}
	if start == math.MaxInt64 {
		return errPastPositionSpace()
	}
	return nil
}

// checkWindow validates a bounded window. The last position, start+count,
// must be representable.
func checkWindow(start, count int64) error {
	if err := checkOffset(start); err != nil {
		return err
	}
	if count < 0 {
		return NewInvalidArgumentError("count", count)
	}
	if count > math.MaxInt64-start {
		return errPastPositionSpace()
	}
	return nil
}

func errPastPositionSpace() *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: "window extends past the largest representable position",
	}
}

// newSequence creates a sequence whose first value is offset start.
func newSequence(cur cursor, start, count int64) *Sequence {
	return &Sequence{cur: cur, next: start + 1, remaining: count}
}

// Next returns the next classification. The second result is false once the
// sequence is exhausted.
func (s *Sequence) Next() (string, bool) {
	if s.exhausted || s.remaining == 0 {
		return "", false
	}
	v := s.cur.emit(s.next)
	if s.remaining > 0 {
		s.remaining--
	}
	if s.next == math.MaxInt64 {
		s.exhausted = true
	} else {
		s.next++
	}
	return v, true
}

// NextContext is like Next but returns ctx.Err() instead of a value once ctx
// is done. A cancelled pull does not advance the sequence: Position still
// reports the position that was not produced, and a later pull resumes any
// walk already made.
func (s *Sequence) NextContext(ctx context.Context) (string, bool, error) {
	if s.exhausted || s.remaining == 0 {
		return "", false, nil
	}
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if w, ok := s.cur.(walker); ok {
		if err := w.walkTo(ctx, s.next); err != nil {
			return "", false, err
		}
	}
	v, ok := s.Next()
	return v, ok, nil
}

// Position returns the position the next call to Next will classify.
func (s *Sequence) Position() int64 {
	return s.next
}

// Remaining returns how many values are left. The second result is false
// for unbounded sequences.
func (s *Sequence) Remaining() (int64, bool) {
	if s.exhausted {
		return 0, true
	}
	if s.remaining == unbounded {
		return 0, false
	}
	return s.remaining, true
}

// Skip discards the next n values without returning them.
//
// Skipping only advances the position counter; skipped values are never
// retained. A Direct sequence never classifies skipped positions. Skipping
// past the end of a bounded sequence exhausts it.
func (s *Sequence) Skip(n int64) error {
	if n < 0 {
		return NewInvalidArgumentError("skip", n)
	}
	if s.exhausted {
		return nil
	}
	if s.remaining != unbounded {
		n = min(n, s.remaining)
		s.remaining -= n
	}
	if n > math.MaxInt64-s.next {
		s.exhausted = true
		return nil
	}
	s.next += n
	return nil
}

// Take limits the sequence to at most n more values.
func (s *Sequence) Take(n int64) error {
	if n < 0 {
		return NewInvalidArgumentError("take", n)
	}
	if s.remaining == unbounded || n < s.remaining {
		s.remaining = n
	}
	return nil
}

// All returns an iterator over the remaining values. Breaking out of the
// range loop leaves the sequence positioned after the last value yielded.
func (s *Sequence) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			v, ok := s.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Indexed is like All but also yields the position of each value.
func (s *Sequence) Indexed() iter.Seq2[int64, string] {
	return func(yield func(int64, string) bool) {
		for {
			p := s.next
			v, ok := s.Next()
			if !ok || !yield(p, v) {
				return
			}
		}
	}
}
