package imagevideo

import "testing"

func TestProbe(t *testing.T) {
	src := &rampSource{frames: 130}
	report, err := Probe(src, DefaultProbeStride, ContrastWindower{Percentiles: [2]float64{0, 100}}, 1300)
	if err != nil {
		t.Fatal(err)
	}
	// frames 0, 60 and 120
	if report.FramesRead != 3 || src.reads != 3 {
		t.Errorf("FramesRead = %d, reads = %d, want 3", report.FramesRead, src.reads)
	}
	if report.Range != (IntensityRange{0, 120}) || report.Min != 0 || report.Max != 120 {
		t.Errorf("report = %s", report)
	}
	if report.Mean != 60 {
		t.Errorf("Mean = %v, want 60", report.Mean)
	}
	if report.BytesRead != 1300.0/60 {
		t.Errorf("BytesRead = %v", report.BytesRead)
	}
}
