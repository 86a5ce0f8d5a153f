package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/rule"
)

func TestNew_Strategies(t *testing.T) {
	for _, s := range ValidStrategies {
		t.Run(string(s), func(t *testing.T) {
			ev, err := New(s, rule.Classic())
			require.NoError(t, err)

			v, err := ev.Classify(15)
			require.NoError(t, err)
			assert.Equal(t, "fizzbuzz", v)
			assert.Equal(t, s == StrategyDirect, ev.RandomAccess())
		})
	}
}

func TestNew_UnknownStrategy(t *testing.T) {
	_, err := New("parallel", rule.Classic())
	require.Error(t, err)

	var ee *Error
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeUnknownStrategy, ee.Code)
	assert.Contains(t, err.Error(), `"parallel"`)
}

func TestErrorHelpers(t *testing.T) {
	pos := NewInvalidPositionError(-4)
	assert.True(t, IsInvalidPosition(pos))
	assert.False(t, IsInvalidArgument(pos))
	assert.Equal(t, "INVALID_POSITION: position must be non-negative (position=-4)", pos.Error())

	arg := NewInvalidArgumentError("count", -1)
	assert.True(t, IsInvalidArgument(arg))
	assert.Equal(t, "INVALID_ARGUMENT: count must be non-negative, got -1", arg.Error())

	assert.False(t, IsInvalidPosition(nil))
}
