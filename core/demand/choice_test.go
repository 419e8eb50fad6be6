package demand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChoicePickBisectRight(t *testing.T) {
	c := NewChoice([]int{1, 3}, []float64{0.3, 0.7})
	require.NoError(t, c.Validate())

	// cumulative weights are [0.3, 1.0]
	assert.Equal(t, 1, c.Pick(NewReplaySource(0.0)))
	assert.Equal(t, 1, c.Pick(NewReplaySource(0.29)))
	assert.Equal(t, 3, c.Pick(NewReplaySource(0.3)))
	assert.Equal(t, 3, c.Pick(NewReplaySource(0.999)))
}

func TestChoiceUnnormalizedWeights(t *testing.T) {
	c := NewChoice([]string{"a", "b", "c"}, []float64{2, 0, 2})
	require.NoError(t, c.Validate())
	assert.Equal(t, "a", c.Pick(NewReplaySource(0.49)))
	// zero-weight entry is skipped
	assert.Equal(t, "c", c.Pick(NewReplaySource(0.5)))
}

func TestChoicePickConsumesOneDraw(t *testing.T) {
	src := NewReplaySource(0.1, 0.9)
	c := NewChoice([]float64{0.1, 0.25}, []float64{0.7, 0.3})
	c.Pick(src)
	assert.Equal(t, 1, src.Draws())
}

func TestChoiceValidate(t *testing.T) {
	cases := map[string]Choice[int]{
		"empty":    NewChoice[int](nil, nil),
		"mismatch": NewChoice([]int{1, 2}, []float64{1}),
		"negative": NewChoice([]int{1, 2}, []float64{1, -1}),
		"zero":     NewChoice([]int{1, 2}, []float64{0, 0}),
	}
	for name, c := range cases {
		assert.Error(t, c.Validate(), name)
	}
}

func TestChoiceFrequencies(t *testing.T) {
	c := NewChoice([]int{1, 2, 3}, []float64{0.4, 0.4, 0.2})
	src := NewSource(7)
	counts := map[int]int{}
	const n = 20000
	for i := 0; i < n; i++ {
		counts[c.Pick(src)]++
	}
	assert.InDelta(t, 0.4, float64(counts[1])/n, 0.02)
	assert.InDelta(t, 0.4, float64(counts[2])/n, 0.02)
	assert.InDelta(t, 0.2, float64(counts[3])/n, 0.02)
}

func TestReplaySourcePanicsWhenExhausted(t *testing.T) {
	src := NewReplaySource(0.5)
	src.Float64()
	assert.Equal(t, 0, src.Remaining())
	assert.Panics(t, func() { src.Float64() })
}

func TestNewSourceDeterministic(t *testing.T) {
	a, b := NewSource(42), NewSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}
