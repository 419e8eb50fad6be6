package demand

import (
	"fmt"
	"math/rand"
)

// Source supplies uniform draws in [0, 1). Every random decision of a run
// goes through one Source so that a seed fully determines the output.
type Source interface {
	Float64() float64
}

// NewSource returns a seeded pseudo-random source.
func NewSource(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// ReplaySource returns a fixed sequence of draws. It panics when the
// sequence is exhausted, which in tests means more draws were consumed
// than expected.
type ReplaySource struct {
	values []float64
	pos    int
}

// NewReplaySource builds a ReplaySource over values.
func NewReplaySource(values ...float64) *ReplaySource {
	return &ReplaySource{values: values}
}

// Float64 returns the next value of the sequence.
func (r *ReplaySource) Float64() float64 {
	if r.pos >= len(r.values) {
		panic(fmt.Sprintf("replay source exhausted after %d draws", r.pos))
	}
	v := r.values[r.pos]
	r.pos++
	return v
}

// Draws returns how many values were consumed.
func (r *ReplaySource) Draws() int { return r.pos }

// Remaining returns how many values are left.
func (r *ReplaySource) Remaining() int { return len(r.values) - r.pos }
