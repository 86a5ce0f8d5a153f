package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_Agree(t *testing.T) {
	out, _, err := execute(t, NewCheckCommand(textOpts()), "--to", "2000")
	require.NoError(t, err)
	assert.Equal(t, "✓ direct and overlay agree on 0..2000\n", out)
}

func TestCheck_RulesFileWindow(t *testing.T) {
	rules := writeFile(t, t.TempDir(), "bazz.cue", bazzCUE)

	out, _, err := execute(t, NewCheckCommand(jsonOpts()), "--rules", rules, "--from", "500", "--to", "1500")
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Agree)
	assert.Nil(t, resp.Data.Mismatch)
	assert.Equal(t, int64(500), resp.Data.From)
	assert.Equal(t, int64(1500), resp.Data.To)
	assert.Len(t, resp.Data.RuleSetHash, 64)
}

func TestCheck_InvalidRange(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"reversed", []string{"--from", "10", "--to", "5"}},
		{"negative", []string{"--from", "-1", "--to", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, NewCheckCommand(textOpts()), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestCheck_BadRules(t *testing.T) {
	rules := writeFile(t, t.TempDir(), "zero.yaml", "rules:\n  - {divisor: 0, label: nope}\n")

	out, _, err := execute(t, NewCheckCommand(textOpts()), "--rules", rules)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E102")
}

func TestCheck_OverlayWalkStopsOnCancel(t *testing.T) {
	_, _, err := executeContext(t, cancelSoon(t, 50*time.Millisecond), NewCheckCommand(textOpts()),
		"--from", "20000000000", "--to", "20000000001")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "cross-check interrupted")
}
