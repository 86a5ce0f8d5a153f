package harness

// TraceEvent records one produced window or classified point.
type TraceEvent struct {
	Type     string   `json:"type"` // "window" or "point"
	Start    int64    `json:"start,omitempty"`
	Count    int64    `json:"count,omitempty"`
	Position int64    `json:"position,omitempty"`
	Values   []string `json:"values,omitempty"`
	Value    string   `json:"value,omitempty"`
	Error    string   `json:"error,omitempty"` // error code when production failed
}

// Trace event types.
const (
	EventWindow = "window"
	EventPoint  = "point"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation and assertion holds.
	Pass bool `json:"pass"`

	// Trace contains windows and points in scenario order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddWindowTrace adds a produced window to the trace.
func (r *Result) AddWindowTrace(start, count int64, values []string, errCode string) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventWindow,
		Start:  start,
		Count:  count,
		Values: values,
		Error:  errCode,
	})
}

// AddPointTrace adds a classified position to the trace.
func (r *Result) AddPointTrace(position int64, value, errCode string) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     EventPoint,
		Position: position,
		Value:    value,
		Error:    errCode,
	})
}
