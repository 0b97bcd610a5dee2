package imagevideo

import "fmt"

const (
	DefaultLowPercentile  = 5.0
	DefaultHighPercentile = 99.95
)

// ContrastWindower computes a robust contrast range from percentile
// statistics over a block of frames.
type ContrastWindower struct {
	Percentiles [2]float64       // low, high in [0, 100]
	Stride      int              // use every Stride-th frame of the window, <= 0 means 1
	Method      PercentileMethod // PercentileNearest when empty
}

func NewContrastWindower() ContrastWindower {
	return ContrastWindower{
		Percentiles: [2]float64{DefaultLowPercentile, DefaultHighPercentile},
		Stride:      1,
		Method:      PercentileNearest,
	}
}

func (w ContrastWindower) Validate() error {
	lo, hi := w.Percentiles[0], w.Percentiles[1]
	if lo < 0 || hi > 100 || lo > hi {
		return fmt.Errorf("%w: percentiles %v must satisfy 0 <= low <= high <= 100", ErrConfiguration, w.Percentiles)
	}
	if !w.Method.Valid() {
		return fmt.Errorf("%w: unknown percentile method %q", ErrConfiguration, w.Method)
	}
	return nil
}

// ComputeRange returns the low/high percentiles over the union of all samples
// of the (strided) window. A degenerate result is returned without error.
func (w ContrastWindower) ComputeRange(frames []Frame) (IntensityRange, error) {
	if err := w.Validate(); err != nil {
		return IntensityRange{}, err
	}
	stride := max(w.Stride, 1)

	total := 0
	for i := 0; i < len(frames); i += stride {
		total += len(frames[i].Pix)
	}
	if total == 0 {
		return IntensityRange{}, ErrEmptyWindow
	}

	values := make([]float64, 0, total)
	for i := 0; i < len(frames); i += stride {
		values = append(values, frames[i].Pix...)
	}

	prc, err := Percentiles(values, w.Method, w.Percentiles[0], w.Percentiles[1])
	if err != nil {
		return IntensityRange{}, err
	}
	return IntensityRange{Low: prc[0], High: prc[1]}, nil
}
