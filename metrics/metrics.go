// Package metrics records conversion runs as Prometheus metrics on a private
// registry, to be written as a node exporter textfile at the end of a run.
package metrics

import (
	"github.com/gracefulearth/imagevideo"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder implements imagevideo.Observer.
type Recorder struct {
	registry *prometheus.Registry

	framesRescaled   prometheus.Counter
	recomputations   prometheus.Counter
	degenerateRanges prometheus.Counter
	rangeLow         prometheus.Gauge
	rangeHigh        prometheus.Gauge
	lastFrame        prometheus.Gauge
}

var _ imagevideo.Observer = (*Recorder)(nil)

// NewRecorder registers the run metrics, labelled with the run id, input
// and output.
func NewRecorder(runID, input, output string) *Recorder {
	labels := prometheus.Labels{"run_id": runID, "input": input, "output": output}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		framesRescaled: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "imagevideo_frames_rescaled_total",
			Help:        "Frames rescaled to 8 bits and queued for the sink",
			ConstLabels: labels,
		}),
		recomputations: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "imagevideo_range_computations_total",
			Help:        "Contrast ranges applied, including a fixed range",
			ConstLabels: labels,
		}),
		degenerateRanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "imagevideo_degenerate_ranges_total",
			Help:        "Contrast windows whose low and high percentiles were equal",
			ConstLabels: labels,
		}),
		rangeLow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "imagevideo_range_low",
			Help:        "Low bound of the active contrast range",
			ConstLabels: labels,
		}),
		rangeHigh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "imagevideo_range_high",
			Help:        "High bound of the active contrast range",
			ConstLabels: labels,
		}),
		lastFrame: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "imagevideo_last_frame_index",
			Help:        "Source index of the last frame rescaled",
			ConstLabels: labels,
		}),
	}
	r.registry.MustRegister(r.framesRescaled, r.recomputations, r.degenerateRanges,
		r.rangeLow, r.rangeHigh, r.lastFrame)
	return r
}

func (r *Recorder) RangeComputed(index int, rng imagevideo.IntensityRange) {
	r.recomputations.Inc()
	if rng.Degenerate() {
		r.degenerateRanges.Inc()
	}
	r.rangeLow.Set(rng.Low)
	r.rangeHigh.Set(rng.High)
}

func (r *Recorder) FrameRescaled(index int) {
	r.framesRescaled.Inc()
	r.lastFrame.Set(float64(index))
}

// Gatherer exposes the registry, e.g. for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the metrics in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
