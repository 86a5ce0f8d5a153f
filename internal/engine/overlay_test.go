package engine

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sieve/internal/rule"
	"github.com/roach88/sieve/internal/testutil"
)

func TestOverlay_AgreesWithDirect(t *testing.T) {
	sets := map[string]rule.Set{
		"classic": rule.Classic(),
		"four": rule.MustNewSet(
			rule.MustDivisibleBy(2, "a"),
			rule.MustDivisibleBy(3, "b"),
			rule.MustDivisibleBy(5, "c"),
			rule.MustDivisibleBy(7, "d"),
		),
		"ones":  rule.MustNewSet(rule.MustDivisibleBy(1, "x")),
		"empty": {},
	}

	for name, rs := range sets {
		t.Run(name, func(t *testing.T) {
			overlay, err := NewOverlay(rs)
			require.NoError(t, err)

			zero, err := overlay.Classify(0)
			require.NoError(t, err)
			want, err := Classify(rs, 0)
			require.NoError(t, err)
			require.Equal(t, want, zero, "position 0")

			oseq, err := overlay.Produce(0, 300)
			require.NoError(t, err)

			for p, got := range oseq.Indexed() {
				want, err := Classify(rs, p)
				require.NoError(t, err)
				require.Equal(t, want, got, "position %d", p)
			}
		})
	}
}

func TestOverlay_Classify(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	tests := map[int64]string{
		0:   "fizzbuzz",
		1:   "1",
		3:   "fizz",
		5:   "buzz",
		15:  "fizzbuzz",
		202: "202",
	}
	for p, want := range tests {
		got, err := overlay.Classify(p)
		require.NoError(t, err)
		assert.Equal(t, want, got, "position %d", p)
	}

	_, err = overlay.Classify(-1)
	assert.True(t, IsInvalidPosition(err))
}

func TestOverlay_ProduceWindow(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	seq, err := overlay.Produce(200, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"fizz", "202", "203", "fizz", "buzz"}, slices.Collect(seq.All()))

	_, err = overlay.Produce(0, -1)
	assert.True(t, IsInvalidArgument(err))
}

func TestOverlay_WalksEveryEarlierPosition(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	c := overlay.newCursor()
	assert.Equal(t, "buzz", c.emit(1000))
	assert.Equal(t, int64(1001), c.generated, "positions 0..999 generated and discarded")

	assert.Equal(t, "fizz", c.emit(1002))
	assert.Equal(t, int64(1003), c.generated)
}

func TestOverlay_SkipGeneratesAndDiscards(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	seq, err := overlay.ProduceUnbounded(0)
	require.NoError(t, err)
	require.NoError(t, seq.Skip(29))

	v, ok := seq.Next()
	require.True(t, ok)
	assert.Equal(t, "fizzbuzz", v, "position 30")
	assert.Equal(t, int64(31), seq.cur.(*overlayCursor).generated, "positions 0..30")
}

func TestOverlay_RejectsOpaqueRules(t *testing.T) {
	rs := testutil.MustInstrument(rule.Classic(), testutil.NewCounter())

	_, err := NewOverlay(rs)
	require.Error(t, err)
	assert.True(t, IsUnsupportedRule(err))
	assert.Contains(t, err.Error(), `label="fizz"`)
}

func TestOverlay_Accessors(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)
	assert.False(t, overlay.RandomAccess())
	assert.Equal(t, []string{"fizz", "buzz"}, overlay.Rules().Labels())
}

func TestPattern_Cycle(t *testing.T) {
	p := newPattern("fizz", 3)
	var got []string
	for range 7 {
		got = append(got, p.next())
	}
	assert.Equal(t, []string{"fizz", "", "", "fizz", "", "", "fizz"}, got)
}

func TestOverlay_CancelledPullDoesNotWalk(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seq, err := overlay.ProduceUnbounded(20_000_000_000)
	require.NoError(t, err)

	_, ok, err := seq.NextContext(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Equal(t, int64(20_000_000_001), seq.Position(), "cancelled pull does not advance")
	assert.Zero(t, seq.cur.(*overlayCursor).generated)

	_, err = overlay.ClassifyContext(ctx, 20_000_000_000)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOverlay_CancelDuringWalk(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	defer cancel()

	c := overlay.newCursor()
	const far = int64(1) << 50
	err = c.walkTo(ctx, far)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, c.walked, far)
	assert.Zero(t, c.walked%walkChunk, "walks stop on chunk boundaries")
}

func TestOverlay_WalkResumesAfterCancel(t *testing.T) {
	overlay, err := NewOverlay(rule.Classic())
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	c := overlay.newCursor()
	require.ErrorIs(t, c.walkTo(cancelled, 10), context.Canceled)
	assert.Zero(t, c.walked)

	require.NoError(t, c.walkTo(context.Background(), 10))
	assert.Equal(t, int64(10), c.walked)
	assert.Equal(t, "buzz", c.emit(10))
	assert.Equal(t, int64(11), c.generated, "no element generated twice")
}

func TestSequence_NextContextMatchesNext(t *testing.T) {
	for _, strategy := range ValidStrategies {
		t.Run(string(strategy), func(t *testing.T) {
			ev, err := New(strategy, rule.Classic())
			require.NoError(t, err)

			seq, err := ev.Produce(99, 6)
			require.NoError(t, err)

			var got []string
			for {
				v, ok, err := seq.NextContext(context.Background())
				require.NoError(t, err)
				if !ok {
					break
				}
				got = append(got, v)
			}
			assert.Equal(t, []string{"buzz", "101", "fizz", "103", "104", "fizzbuzz"}, got)

			cancelled, cancel := context.WithCancel(context.Background())
			cancel()
			_, ok, err := seq.NextContext(cancelled)
			assert.NoError(t, err, "an exhausted sequence reports the end, not the cancellation")
			assert.False(t, ok)
		})
	}
}

func TestDirect_ClassifyContext(t *testing.T) {
	d := NewDirect(rule.Classic())

	v, err := d.ClassifyContext(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, "fizzbuzz", v)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.ClassifyContext(ctx, 15)
	assert.ErrorIs(t, err, context.Canceled)
}
