package testutil

import (
	"sync"

	"github.com/roach88/sieve/internal/rule"
)

// Counter counts predicate evaluations.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex,
// so one Counter can observe evaluators shared between goroutines.
type Counter struct {
	mu sync.Mutex
	n  int64
}

// NewCounter creates a counter starting at 0.
func NewCounter() *Counter {
	return &Counter{}
}

// Inc increments the counter and returns the new value.
func (c *Counter) Inc() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Current returns the count without incrementing.
func (c *Counter) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Reset sets the count back to 0.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}

// Instrument returns a copy of rules in which every predicate evaluation
// increments c. Labels and registration order are kept. Instrumented rules
// are opaque, so the copy is not accepted by the Overlay evaluator.
func Instrument(rules rule.Set, c *Counter) (rule.Set, error) {
	wrapped := make([]rule.Rule, 0, rules.Len())
	for _, r := range rules.All() {
		w, err := r.WithPredicate(func(p rule.Predicate) rule.Predicate {
			return func(position int64) bool {
				c.Inc()
				return p(position)
			}
		})
		if err != nil {
			return rule.Set{}, err
		}
		wrapped = append(wrapped, w)
	}
	return rule.NewSet(wrapped...)
}

// MustInstrument is like Instrument but panics on error.
func MustInstrument(rules rule.Set, c *Counter) rule.Set {
	s, err := Instrument(rules, c)
	if err != nil {
		panic(err)
	}
	return s
}
