package imagevideo

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/stat"
)

const DefaultProbeStride = 60

// ProbeReport summarises sampled intensities to help pick a contrast range.
type ProbeReport struct {
	Percentiles  [2]float64
	Range        IntensityRange
	Min, Max     float64
	Mean, StdDev float64
	FramesRead   int
	FileBytes    int64
	BytesRead    float64 // approximate share of FileBytes the sample covers
}

func (p ProbeReport) String() string {
	return fmt.Sprintf("percentiles %v: %s (min %g max %g mean %.3f std %.3f over %d frames)",
		p.Percentiles, p.Range, p.Min, p.Max, p.Mean, p.StdDev, p.FramesRead)
}

// Probe samples every stride-th frame of src and reports the windower's
// percentiles along with basic statistics. fileBytes is the on-disk size of
// the source, used only for the report.
func Probe(src FrameSource, stride int, windower ContrastWindower, fileBytes int64) (ProbeReport, error) {
	stride = max(stride, 1)
	shape := src.Shape()
	frames, err := ReadWindow(src, 0, shape.Frames, stride)
	if err != nil {
		return ProbeReport{}, err
	}

	r, err := windower.ComputeRange(frames)
	if err != nil {
		return ProbeReport{}, err
	}

	var values []float64
	for _, f := range frames {
		for _, v := range f.Pix {
			if isFinite(v) {
				values = append(values, v)
			}
		}
	}
	mean, std := stat.MeanStdDev(values, nil)

	return ProbeReport{
		Percentiles: windower.Percentiles,
		Range:       r,
		Min:         slices.Min(values),
		Max:         slices.Max(values),
		Mean:        mean,
		StdDev:      std,
		FramesRead:  len(frames),
		FileBytes:   fileBytes,
		BytesRead:   float64(fileBytes) / float64(stride),
	}, nil
}
