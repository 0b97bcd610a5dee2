package imagevideo

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// PercentileMethod selects how a percentile falls between ranks.
type PercentileMethod string

const (
	// PercentileNearest picks the data value at the rounded rank
	// p/100*(n-1), rounding half to even. Results are always values present
	// in the data.
	PercentileNearest PercentileMethod = "nearest"
	// PercentileEmpirical is the empirical CDF inverse from gonum/stat.
	PercentileEmpirical PercentileMethod = "empirical"
	// PercentileLinear interpolates between ranks (gonum/stat LinInterp).
	PercentileLinear PercentileMethod = "linear"
)

func (m PercentileMethod) Valid() bool {
	switch m {
	case "", PercentileNearest, PercentileEmpirical, PercentileLinear:
		return true
	}
	return false
}

// Percentiles returns the requested percentiles (0..100) of the finite
// values. NaN and infinite samples, used as fill values by some sources, are
// ignored. values is reordered in place.
func Percentiles(values []float64, method PercentileMethod, ps ...float64) ([]float64, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: unknown percentile method %q", ErrConfiguration, method)
	}
	for _, p := range ps {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return nil, fmt.Errorf("%w: percentile %g outside [0, 100]", ErrConfiguration, p)
		}
	}

	values = slices.DeleteFunc(values, func(v float64) bool { return !isFinite(v) })
	if len(values) == 0 {
		return nil, ErrEmptyWindow
	}
	slices.Sort(values)
	out := make([]float64, len(ps))
	for i, p := range ps {
		switch method {
		case PercentileEmpirical:
			out[i] = stat.Quantile(p/100, stat.Empirical, values, nil)
		case PercentileLinear:
			out[i] = stat.Quantile(p/100, stat.LinInterp, values, nil)
		default:
			rank := int(math.RoundToEven(p / 100 * float64(len(values)-1)))
			out[i] = values[rank]
		}
	}
	return out, nil
}
