package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gracefulearth/imagevideo"
)

func TestRecorder(t *testing.T) {
	r := NewRecorder("run-1", "in.h5", "out.avi")
	r.RangeComputed(0, imagevideo.IntensityRange{Low: 10, High: 90})
	r.RangeComputed(100, imagevideo.IntensityRange{Low: 7, High: 7})
	for i := range 3 {
		r.FrameRescaled(i)
	}

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatal(err)
	}
	values := map[string]float64{}
	for _, f := range families {
		m := f.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			values[f.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			values[f.GetName()] = m.GetGauge().GetValue()
		}
	}

	expected := map[string]float64{
		"imagevideo_frames_rescaled_total":    3,
		"imagevideo_range_computations_total": 2,
		"imagevideo_degenerate_ranges_total":  1,
		"imagevideo_range_low":                7,
		"imagevideo_range_high":               7,
		"imagevideo_last_frame_index":         2,
	}
	for name, want := range expected {
		if got, ok := values[name]; !ok || got != want {
			t.Errorf("%s = %v (present %v), want %v", name, got, ok, want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder("run-2", "in.pixi", "out.tif")
	r.FrameRescaled(0)

	path := filepath.Join(t.TempDir(), "imagevideo.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `imagevideo_frames_rescaled_total{input="in.pixi",output="out.tif",run_id="run-2"} 1`) {
		t.Errorf("textfile missing frame counter:\n%s", data)
	}
}
