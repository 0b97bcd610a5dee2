package sink

import (
	"bytes"
	"errors"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/gracefulearth/imagevideo"
)

var testSuffixes = []string{".mkv", ".ogv", ".avi", ".tif", ".tiff", ".pixi"}

func TestCheckOutput(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "taken.avi")
	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		path  string
		codec string
		err   error
	}{
		{"avi ok", filepath.Join(dir, "out.avi"), "FMP4", nil},
		{"upper case suffix", filepath.Join(dir, "out.MKV"), "FMP4", nil},
		{"tiff ignores codec", filepath.Join(dir, "out.tif"), "THEO", nil},
		{"theora in ogv", filepath.Join(dir, "out.ogv"), "THEO", nil},
		{"theora outside ogv", filepath.Join(dir, "out.avi"), "theo", imagevideo.ErrConfiguration},
		{"bad suffix", filepath.Join(dir, "out.gif"), "FMP4", imagevideo.ErrConfiguration},
		{"no suffix", filepath.Join(dir, "out"), "FMP4", imagevideo.ErrConfiguration},
		{"destination exists", existing, "FMP4", imagevideo.ErrDestinationExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOutput(tt.path, tt.codec, testSuffixes)
			if tt.err == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestContainerCodec(t *testing.T) {
	tests := map[string]string{
		"out.avi":  "FMP4",
		"out.MKV":  "H264",
		"out.ogv":  "THEO",
		"out.tif":  "",
		"out.pixi": "",
	}
	for path, want := range tests {
		if got := ContainerCodec(path); got != want {
			t.Errorf("ContainerCodec(%s) = %q, want %q", path, got, want)
		}
	}
}

func TestCreateRejects(t *testing.T) {
	dir := t.TempDir()
	if _, err := Create(filepath.Join(dir, "out.gif"), Spec{Width: 2, Height: 2}); !errors.Is(err, imagevideo.ErrConfiguration) {
		t.Errorf("gif: %v", err)
	}
	if _, err := Create(filepath.Join(dir, "out.tif"), Spec{}); !errors.Is(err, imagevideo.ErrConfiguration) {
		t.Errorf("empty frame size: %v", err)
	}
	if _, err := Create(filepath.Join(dir, "out.pixi"), Spec{Width: 2, Height: 2}); !errors.Is(err, imagevideo.ErrConfiguration) {
		t.Errorf("pixi without frame count: %v", err)
	}
	if _, err := Create(filepath.Join(dir, "out.pixi"), Spec{Width: 2, Height: 2, Frames: 1, Compression: "zstd"}); !errors.Is(err, imagevideo.ErrConfiguration) {
		t.Errorf("unknown compression: %v", err)
	}
}

func rampFrame(width, height, channels, seed int) imagevideo.OutputFrame {
	f := imagevideo.NewOutputFrame(width, height, channels)
	for i := range f.Pix {
		f.Pix[i] = uint8(seed*31 + i)
	}
	return f
}

func TestTIFFRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		color    bool
		channels int
	}{
		{"gray", false, 1},
		{"rgb", true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "stack.tif")
			dst, err := Create(path, Spec{Width: 5, Height: 3, Color: tt.color})
			if err != nil {
				t.Fatal(err)
			}
			var written []imagevideo.OutputFrame
			for i := range 4 {
				f := rampFrame(5, 3, tt.channels, i)
				if err := dst.WriteFrame(f); err != nil {
					t.Fatal(err)
				}
				written = append(written, f)
			}
			if err := dst.Close(); err != nil {
				t.Fatal(err)
			}

			pages, err := ReadMultipage(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(pages) != len(written) {
				t.Fatalf("got %d pages, want %d", len(pages), len(written))
			}
			for i, page := range pages {
				got := imagevideo.FrameFromImage(page)
				if got.Channels != tt.channels {
					t.Fatalf("page %d has %d channels", i, got.Channels)
				}
				for p, v := range got.Pix {
					if v != float64(written[i].Pix[p]) {
						t.Fatalf("page %d sample %d = %v, want %d", i, p, v, written[i].Pix[p])
					}
				}
			}
		})
	}
}

func TestDecodeMultipageKeepsInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.tif")
	dst, err := CreateTIFF(path, Spec{Width: 3, Height: 2})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 5 {
		if err := dst.WriteFrame(rampFrame(3, 2, 1, i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := dst.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	original := bytes.Clone(data)
	pages, err := DecodeMultipage(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 5 {
		t.Errorf("got %d pages, want 5", len(pages))
	}
	if !bytes.Equal(data, original) {
		t.Error("DecodeMultipage modified its input")
	}
	// the last page is decoded from its own IFD
	if got := imagevideo.FrameFromImage(pages[4]).Pix[0]; got != float64(rampFrame(3, 2, 1, 4).Pix[0]) {
		t.Errorf("page 4 first sample = %v", got)
	}
}

func TestTIFFRejectsGeometry(t *testing.T) {
	dst, err := CreateTIFF(filepath.Join(t.TempDir(), "stack.tif"), Spec{Width: 4, Height: 4})
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()
	if err := dst.WriteFrame(rampFrame(4, 4, 3, 0)); err == nil {
		t.Error("expected geometry error for RGB frame in gray sink")
	}
	if dst.Pages() != 0 {
		t.Errorf("Pages = %d after rejected frame", dst.Pages())
	}
}

func TestDecodeMultipageCorrupt(t *testing.T) {
	tests := [][]byte{
		nil,
		[]byte("GIF89a\x00\x00"),
		{'I', 'I', 42, 0, 0xff, 0xff, 0, 0},
	}
	for _, data := range tests {
		if _, err := DecodeMultipage(data); err == nil {
			t.Errorf("DecodeMultipage(%q) succeeded", data)
		}
	}
}

func TestPixiSinkFrameCount(t *testing.T) {
	dst, err := CreatePixi(filepath.Join(t.TempDir(), "short.pixi"), Spec{Width: 2, Height: 2, Frames: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := dst.WriteFrame(rampFrame(2, 2, 1, 0)); err != nil {
		t.Fatal(err)
	}
	if err := dst.Close(); err == nil {
		t.Error("closing after 1 of 3 frames succeeded")
	}
}

func TestVideoRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}

	path := filepath.Join(t.TempDir(), "clip.avi")
	dst, err := Create(path, Spec{Width: 32, Height: 16, FPS: 10, Codec: "FMP4"})
	if err != nil {
		t.Fatal(err)
	}
	for i := range 6 {
		if err := dst.WriteFrame(rampFrame(32, 16, 1, i)); err != nil {
			t.Fatal(err)
		}
	}
	if err := dst.Close(); err != nil {
		t.Fatal(err)
	}

	var bounds image.Rectangle
	summary, err := ReadVideo(path, func(_ int, f imagevideo.Frame) error {
		bounds = image.Rect(0, 0, f.Width, f.Height)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Frames != 6 || summary.Width != 32 || summary.Height != 16 {
		t.Errorf("summary = %+v", summary)
	}
	if bounds.Dx() != 32 || bounds.Dy() != 16 {
		t.Errorf("decoded frame bounds = %v", bounds)
	}
}
