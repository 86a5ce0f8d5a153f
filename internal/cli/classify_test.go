package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Positions(t *testing.T) {
	out, _, err := execute(t, NewClassifyCommand(textOpts()), "15", "7", "0", "9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, "fizzbuzz\n7\nfizzbuzz\n9223372036854775807\n", out)
}

func TestClassify_OverlayMatchesDirect(t *testing.T) {
	rules := writeFile(t, t.TempDir(), "bazz.yaml", bazzYAML)

	direct, _, err := execute(t, NewClassifyCommand(textOpts()), "--rules", rules, "21", "35", "105", "106")
	require.NoError(t, err)
	overlay, _, err := execute(t, NewClassifyCommand(textOpts()), "--rules", rules, "--strategy", "overlay", "21", "35", "105", "106")
	require.NoError(t, err)

	assert.Equal(t, "fizzbazz\nbuzzbazz\nfizzbuzzbazz\n106\n", direct)
	assert.Equal(t, direct, overlay)
}

func TestClassify_JSON(t *testing.T) {
	out, _, err := execute(t, NewClassifyCommand(jsonOpts()), "3", "4")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   []Classification `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []Classification{{Position: 3, Value: "fizz"}, {Position: 4, Value: "4"}}, resp.Data)
}

func TestClassify_Errors(t *testing.T) {
	t.Run("not a number", func(t *testing.T) {
		_, _, err := execute(t, NewClassifyCommand(textOpts()), "fifteen")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), `invalid position "fifteen"`)
	})

	t.Run("negative position", func(t *testing.T) {
		out, _, err := execute(t, NewClassifyCommand(textOpts()), "--", "-3")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [INVALID_POSITION]")
	})

	t.Run("no positions", func(t *testing.T) {
		_, _, err := execute(t, NewClassifyCommand(textOpts()))
		require.Error(t, err)
	})
}

func TestClassify_OverlayStopsOnCancel(t *testing.T) {
	_, _, err := executeContext(t, cancelSoon(t, 50*time.Millisecond), NewClassifyCommand(textOpts()),
		"--strategy", "overlay", "20000000000")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "interrupted while classifying 20000000000")
}
