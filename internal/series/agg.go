package series

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Agg names the method used to collapse all observations of one day into a
// single value.
type Agg string

const (
	AggNone   Agg = ""
	AggSum    Agg = "sum"
	AggMean   Agg = "mean"
	AggMedian Agg = "median"
	AggMin    Agg = "min"
	AggMax    Agg = "max"
	AggCount  Agg = "count"
	AggFirst  Agg = "first"
	AggLast   Agg = "last"
	AggStd    Agg = "std"
)

// ErrUnknownAgg is returned when an aggregation method is not recognised.
var ErrUnknownAgg = errors.New("unknown aggregation method")

// ParseAgg validates an aggregation name. The empty string and "none" both
// mean the data is already sampled by day.
func ParseAgg(name string) (Agg, error) {
	switch a := Agg(name); a {
	case AggNone, AggSum, AggMean, AggMedian, AggMin, AggMax, AggCount, AggFirst, AggLast, AggStd:
		return a, nil
	case "none":
		return AggNone, nil
	default:
		return AggNone, fmt.Errorf("%w: %q", ErrUnknownAgg, name)
	}
}

// emptyValue is the value a day without observations gets. Sum and count of
// nothing are zero; everything else is undefined.
func (a Agg) emptyValue() float64 {
	if a == AggSum || a == AggCount {
		return 0
	}
	return math.NaN()
}

// apply aggregates the non-missing values of one day, in observation order.
func (a Agg) apply(values []float64) float64 {
	if len(values) == 0 {
		return a.emptyValue()
	}

	switch a {
	case AggSum:
		return floats.Sum(values)
	case AggMean:
		return stat.Mean(values, nil)
	case AggMedian:
		return median(values)
	case AggMin:
		return floats.Min(values)
	case AggMax:
		return floats.Max(values)
	case AggCount:
		return float64(len(values))
	case AggFirst:
		return values[0]
	case AggLast:
		return values[len(values)-1]
	case AggStd:
		if len(values) < 2 {
			return math.NaN()
		}
		return stat.StdDev(values, nil)
	}
	return math.NaN()
}

// median averages the two middle values for even-length input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
