package montecarlo

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestAveragedValueEmpty(t *testing.T) {
	is := is.New(t)
	var av AveragedValue
	is.Equal(av.Count(), 0)
	is.Equal(av.HasValues(), false)
	is.Equal(av.Average(), 0.0)
	is.Equal(av.StandardDeviation(), 0.0)
}

func TestAveragedValueIncorporate(t *testing.T) {
	is := is.New(t)
	var av AveragedValue
	for _, x := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		av.Incorporate(x)
	}
	is.Equal(av.Count(), 8)
	is.Equal(av.HasValues(), true)
	is.True(math.Abs(av.Average()-5.0) < 1e-9)
	is.True(math.Abs(av.StandardDeviation()-2.138089935) < 1e-6)
}

func TestAveragedValueSingleSample(t *testing.T) {
	is := is.New(t)
	var av AveragedValue
	av.Incorporate(3.5)
	is.Equal(av.Count(), 1)
	is.Equal(av.Average(), 3.5)
	is.Equal(av.StandardDeviation(), 0.0)
	is.Equal(av.StandardError(), 0.0)
}

func TestAveragedValueClear(t *testing.T) {
	is := is.New(t)
	var av AveragedValue
	av.Incorporate(1)
	av.Incorporate(2)
	av.Clear()
	is.Equal(av.Count(), 0)
	is.Equal(av.HasValues(), false)
}

// Naive-sum accumulation must be associative: incorporating the same
// samples split across two accumulators and summing their sums/counts
// directly must match incorporating them all into one.
func TestAveragedValueAssociative(t *testing.T) {
	is := is.New(t)
	samples := []float64{1, 2, 3, 4, 5, 6, 7}

	var whole AveragedValue
	for _, x := range samples {
		whole.Incorporate(x)
	}

	var a, b AveragedValue
	for _, x := range samples[:3] {
		a.Incorporate(x)
	}
	for _, x := range samples[3:] {
		b.Incorporate(x)
	}
	combinedSum := a.ValueSum() + b.ValueSum()
	combinedCount := a.Count() + b.Count()

	is.Equal(combinedSum, whole.ValueSum())
	is.Equal(combinedCount, whole.Count())
}
