package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sieve/internal/engine"
	"github.com/roach88/sieve/internal/ir"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules lists the rule set inline, in registration order.
	// If both Rules and RulesFile are empty the classic fizz/buzz set is used.
	Rules []ir.RuleSpec `yaml:"rules,omitempty"`

	// RulesFile is a CUE or YAML rule configuration.
	// Relative paths resolve against the scenario file's directory.
	RulesFile string `yaml:"rules_file,omitempty"`

	// Strategy selects the evaluator for windows and points.
	// Defaults to "direct".
	Strategy string `yaml:"strategy,omitempty"`

	// Windows are produced in order and compared to their expectations.
	Windows []Window `yaml:"windows,omitempty"`

	// Points are classified individually, in the order given.
	Points []Point `yaml:"points,omitempty"`

	// Assertions check properties of the rule set.
	// Supported types: cross_check, random_access, order_independent, replay
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Window is a produced run of consecutive positions.
type Window struct {
	Start int64 `yaml:"start"`
	Count int64 `yaml:"count"`

	// Unbounded produces an infinite sequence from Start and takes Count
	// values from it.
	Unbounded bool `yaml:"unbounded,omitempty"`

	// Expect lists the exact values, one per position.
	Expect []string `yaml:"expect,omitempty"`

	// ExpectError is the error code production must fail with,
	// e.g. INVALID_POSITION.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Point is a single classification.
type Point struct {
	Position    int64  `yaml:"position"`
	Expect      string `yaml:"expect,omitempty"`
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion checks a property of the scenario's rule set.
type Assertion struct {
	// Type specifies the assertion type:
	// - "cross_check": Direct and Overlay agree on every position From..To
	// - "random_access": classifying Position evaluates each predicate once
	// - "order_independent": Positions classify the same in any order
	// - "replay": recorded windows reproduce from the run log
	Type string `yaml:"type"`

	// From and To bound cross_check, inclusive.
	From int64 `yaml:"from,omitempty"`
	To   int64 `yaml:"to,omitempty"`

	// Position is used by random_access.
	Position int64 `yaml:"position,omitempty"`

	// Positions is used by order_independent.
	Positions []int64 `yaml:"positions,omitempty"`
}

// Assertion type constants.
const (
	AssertCrossCheck       = "cross_check"
	AssertRandomAccess     = "random_access"
	AssertOrderIndependent = "order_independent"
	AssertReplay           = "replay"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative rules_file resolves against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.RulesFile != "" && !filepath.IsAbs(scenario.RulesFile) {
		scenario.RulesFile = filepath.Join(filepath.Dir(path), scenario.RulesFile)
	}
	if scenario.RulesFile != "" {
		if _, err := os.Stat(scenario.RulesFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: rules file not found: %s", scenario.RulesFile)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. rules_file is left unresolved.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Rules) > 0 && s.RulesFile != "" {
		return fmt.Errorf("rules and rules_file are mutually exclusive")
	}

	if s.Strategy != "" && !slices.Contains(engine.ValidStrategies, engine.Strategy(s.Strategy)) {
		return fmt.Errorf("unknown strategy %q: must be one of %v", s.Strategy, engine.ValidStrategies)
	}

	if len(s.Windows) == 0 && len(s.Points) == 0 && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one of windows, points or assertions is required")
	}

	for i, w := range s.Windows {
		if w.ExpectError != "" && len(w.Expect) > 0 {
			return fmt.Errorf("windows[%d]: expect and expect_error are mutually exclusive", i)
		}
		if w.ExpectError == "" && w.Count > 0 && len(w.Expect) == 0 {
			return fmt.Errorf("windows[%d]: expect or expect_error is required", i)
		}
	}

	for i, p := range s.Points {
		if p.Expect == "" && p.ExpectError == "" {
			return fmt.Errorf("points[%d]: expect or expect_error is required", i)
		}
		if p.Expect != "" && p.ExpectError != "" {
			return fmt.Errorf("points[%d]: expect and expect_error are mutually exclusive", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, s); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCrossCheck:
		if a.From < 0 || a.To < a.From {
			return fmt.Errorf("assertions[%d]: cross_check needs 0 <= from <= to, got %d..%d", index, a.From, a.To)
		}
	case AssertRandomAccess:
		if a.Position < 0 {
			return fmt.Errorf("assertions[%d]: position must be non-negative for random_access", index)
		}
	case AssertOrderIndependent:
		if len(a.Positions) == 0 {
			return fmt.Errorf("assertions[%d]: positions list is required for order_independent", index)
		}
	case AssertReplay:
		if len(s.Windows) == 0 {
			return fmt.Errorf("assertions[%d]: replay requires at least one window", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
