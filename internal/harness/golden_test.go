package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Classic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "classic.yaml"))
	require.NoError(t, err)

	// To regenerate:
	//   go test ./internal/harness -run TestRunWithGolden -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_BazzOverlay(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "bazz_overlay.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestScenarios_Pass(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "determinism",
		Description: "Same trace twice",
		Windows:     []Window{{Start: 0, Count: 3, Expect: []string{"1", "2", "fizz"}}},
		Points:      []Point{{Position: -2, ExpectError: "INVALID_POSITION"}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(scenario, first)
	require.NoError(t, err)
	b, err := MarshalTrace(scenario, second)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t,
		`{"scenario_name":"determinism","strategy":"direct","trace":[`+
			`{"count":3,"start":0,"type":"window","values":["1","2","fizz"]},`+
			`{"error":"INVALID_POSITION","position":-2,"type":"point"}]}`,
		string(a))
}
