package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/roach88/sieve/internal/compiler"
	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
	"github.com/roach88/sieve/internal/rule"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	spec     ir.RuleSetSpec
	compiled ir.CompiledRuleSet
	rules    rule.Set
	strategy engine.Strategy
	eval     engine.Evaluator
	logger   *slog.Logger

	// windows that produced values, kept for the replay assertion
	produced []producedWindow
}

type producedWindow struct {
	start  int64
	values []string
}

// Option configures a harness run.
type Option func(*Harness)

// WithLogger sets the logger for step-level debug output.
// Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Resolve the rule set (inline, rules_file, or classic)
// 2. Produce windows and compare with expectations
// 3. Classify points and compare with expectations
// 4. Evaluate assertions
//
// An error is returned only when the scenario cannot run at all; failed
// expectations are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is like Run but stops assertions when ctx is cancelled.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		strategy: engine.StrategyDirect,
	}
	for _, opt := range opts {
		opt(h)
	}

	if scenario.Strategy != "" {
		h.strategy = engine.Strategy(scenario.Strategy)
	}

	if err := h.loadRules(scenario); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	eval, err := engine.New(h.strategy, h.rules)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}
	h.eval = eval

	h.logger.Debug("scenario started",
		"scenario", scenario.Name,
		"rules", h.rules.String(),
		"rule_set_hash", h.compiled.Hash,
		"strategy", h.strategy,
	)

	result := NewResult()
	h.executeWindows(scenario.Windows, result)
	h.executePoints(scenario.Points, result)

	for _, msg := range h.EvaluateAssertions(ctx, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"errors", len(result.Errors),
	)

	return result, nil
}

// loadRules resolves the scenario's rule set.
func (h *Harness) loadRules(scenario *Scenario) error {
	var spec *ir.RuleSetSpec
	switch {
	case scenario.RulesFile != "":
		data, err := os.ReadFile(scenario.RulesFile)
		if err != nil {
			return fmt.Errorf("read rules file: %w", err)
		}
		spec, err = compiler.CompileFile(scenario.RulesFile, data)
		if err != nil {
			return err
		}
	case len(scenario.Rules) > 0:
		spec = &ir.RuleSetSpec{Name: scenario.Name, Rules: scenario.Rules}
	default:
		var err error
		spec, err = compiler.FromSet("classic", rule.Classic())
		if err != nil {
			return err
		}
	}

	rs, err := compiler.Build(spec)
	if err != nil {
		return err
	}
	compiled, err := ir.Compile(*spec)
	if err != nil {
		return err
	}

	h.spec = *spec
	h.rules = rs
	h.compiled = compiled
	return nil
}

// executeWindows produces each window and compares it with its expectation.
func (h *Harness) executeWindows(windows []Window, result *Result) {
	for i, w := range windows {
		seq, err := h.produce(w)
		if err != nil {
			code := errorCode(err)
			result.AddWindowTrace(w.Start, w.Count, nil, code)
			switch {
			case w.ExpectError == "":
				result.AddError(fmt.Sprintf("windows[%d]: unexpected error: %v", i, err))
			case w.ExpectError != code:
				result.AddError(fmt.Sprintf("windows[%d]: expected error %s, got %s", i, w.ExpectError, code))
			}
			continue
		}

		values := slices.Collect(seq.All())
		result.AddWindowTrace(w.Start, w.Count, values, "")
		h.produced = append(h.produced, producedWindow{start: w.Start, values: values})

		if w.ExpectError != "" {
			result.AddError(fmt.Sprintf("windows[%d]: expected error %s, got %d values", i, w.ExpectError, len(values)))
			continue
		}
		if diff := cmp.Diff(w.Expect, values, cmpopts.EquateEmpty()); diff != "" {
			result.AddError(fmt.Sprintf("windows[%d] (start %d, count %d) mismatch (-want +got):\n%s", i, w.Start, w.Count, diff))
		}

		h.logger.Debug("window produced", "step", i, "start", w.Start, "count", len(values))
	}
}

func (h *Harness) produce(w Window) (*engine.Sequence, error) {
	if !w.Unbounded {
		return h.eval.Produce(w.Start, w.Count)
	}
	seq, err := h.eval.ProduceUnbounded(w.Start)
	if err != nil {
		return nil, err
	}
	if err := seq.Take(w.Count); err != nil {
		return nil, err
	}
	return seq, nil
}

// executePoints classifies each point and compares it with its expectation.
func (h *Harness) executePoints(points []Point, result *Result) {
	for i, p := range points {
		value, err := h.eval.Classify(p.Position)
		if err != nil {
			code := errorCode(err)
			result.AddPointTrace(p.Position, "", code)
			switch {
			case p.ExpectError == "":
				result.AddError(fmt.Sprintf("points[%d]: unexpected error: %v", i, err))
			case p.ExpectError != code:
				result.AddError(fmt.Sprintf("points[%d]: expected error %s, got %s", i, p.ExpectError, code))
			}
			continue
		}

		result.AddPointTrace(p.Position, value, "")
		switch {
		case p.ExpectError != "":
			result.AddError(fmt.Sprintf("points[%d]: expected error %s, got %q", i, p.ExpectError, value))
		case p.Expect != value:
			result.AddError(fmt.Sprintf("points[%d]: position %d: expected %q, got %q", i, p.Position, p.Expect, value))
		}

		h.logger.Debug("point classified", "step", i, "position", p.Position, "value", value)
	}
}

// errorCode extracts the code of an engine or rule error.
func errorCode(err error) string {
	var engineErr *engine.Error
	if errors.As(err, &engineErr) {
		return string(engineErr.Code)
	}
	var ruleErr *rule.Error
	if errors.As(err, &ruleErr) {
		return string(ruleErr.Code)
	}
	return "ERROR"
}
