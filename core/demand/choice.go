package demand

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Choice is a discrete distribution over Values. Weights are relative and
// need not sum to one.
type Choice[T any] struct {
	Values  []T       `json:"values" yaml:"values"`
	Weights []float64 `json:"weights" yaml:"weights"`
}

// NewChoice pairs values with weights.
func NewChoice[T any](values []T, weights []float64) Choice[T] {
	return Choice[T]{Values: values, Weights: weights}
}

// Validate checks that the distribution can be sampled.
func (c Choice[T]) Validate() error {
	if len(c.Values) == 0 {
		return fmt.Errorf("no values")
	}
	if len(c.Values) != len(c.Weights) {
		return fmt.Errorf("%d values but %d weights", len(c.Values), len(c.Weights))
	}
	for i, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("weight %d is negative (%g)", i, w)
		}
	}
	if floats.Sum(c.Weights) <= 0 {
		return fmt.Errorf("weights sum to zero")
	}
	return nil
}

// Pick consumes exactly one draw from src and returns the selected value.
// The draw is scaled by the weight total and located in the cumulative
// weights with bisect-right semantics, so zero-weight entries are never
// selected.
func (c Choice[T]) Pick(src Source) T {
	cum := floats.CumSum(make([]float64, len(c.Weights)), c.Weights)
	total := cum[len(cum)-1]
	x := src.Float64() * total
	hi := len(cum) - 1
	i := sort.Search(hi, func(i int) bool { return cum[i] > x })
	return c.Values[i]
}
