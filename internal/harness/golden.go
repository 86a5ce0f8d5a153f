package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sieve/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Strategy     string       `json:"strategy"`
	Trace        []TraceEvent `json:"trace"`
}

// toIR converts a TraceSnapshot to an IRObject for canonical serialization.
// Windows always carry start and count, points always carry position.
func (s *TraceSnapshot) toIR() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, event := range s.Trace {
		obj := ir.IRObject{"type": ir.IRString(event.Type)}
		switch event.Type {
		case EventWindow:
			obj["start"] = ir.IRInt(event.Start)
			obj["count"] = ir.IRInt(event.Count)
			if event.Error == "" {
				obj["values"] = ir.StringArray(event.Values)
			}
		case EventPoint:
			obj["position"] = ir.IRInt(event.Position)
			if event.Error == "" {
				obj["value"] = ir.IRString(event.Value)
			}
		}
		if event.Error != "" {
			obj["error"] = ir.IRString(event.Error)
		}
		trace[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"strategy":      ir.IRString(s.Strategy),
		"trace":         trace,
	}
}

// MarshalTrace serializes a scenario's trace to canonical JSON.
// This is the byte format of golden files.
func MarshalTrace(scenario *Scenario, result *Result) ([]byte, error) {
	strategy := scenario.Strategy
	if strategy == "" {
		strategy = "direct"
	}
	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Strategy:     strategy,
		Trace:        result.Trace,
	}
	return ir.MarshalCanonical(snapshot.toIR())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)

	return nil
}
