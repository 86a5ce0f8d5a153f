package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: tiny
description: First five classic values
windows:
  - start: 0
    count: 5
    expect: ["1", "2", "fizz", "4", "buzz"]
points:
  - position: 30
    expect: fizzbuzz
`

const failingScenario = `name: wrong
description: Expects a value the engine never produces
points:
  - position: 3
    expect: buzz
`

func TestTest_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", passingScenario)

	out, _, err := execute(t, NewTestCommand(textOpts()), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tiny\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Failure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", passingScenario)
	writeFile(t, dir, "wrong.yml", failingScenario)

	out, _, err := execute(t, NewTestCommand(textOpts()), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_UpdateThenCompareGolden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", passingScenario)
	golden := filepath.Join(dir, "golden", "tiny.golden")

	out, _, err := execute(t, NewTestCommand(textOpts()), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tiny (golden updated)")
	require.FileExists(t, golden)

	_, _, err = execute(t, NewTestCommand(textOpts()), dir)
	require.NoError(t, err, "fresh golden must match")

	require.NoError(t, os.WriteFile(golden, []byte("{}"), 0644))
	out, _, err = execute(t, NewTestCommand(textOpts()), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_Filter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	out, _, err := execute(t, NewTestCommand(textOpts()), dir, "--filter", "ti*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
	assert.NotContains(t, out, "wrong")

	out, _, err = execute(t, NewTestCommand(textOpts()), dir, "--filter", "nothing*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTest_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\n")

	out, _, err := execute(t, NewTestCommand(textOpts()), dir)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}

func TestTest_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.yaml", passingScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	out, _, err := execute(t, NewTestCommand(jsonOpts()), dir)
	require.Error(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
}

func TestTest_MissingDirectory(t *testing.T) {
	_, _, err := execute(t, NewTestCommand(textOpts()), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}
