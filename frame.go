package imagevideo

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/gracefulearth/go-colorext"
)

// FrameShape is the geometry of a frame source.
type FrameShape struct {
	Frames   int
	Height   int
	Width    int
	Channels int // 1 for gray, 3 for RGB
}

func (s FrameShape) String() string {
	return fmt.Sprintf("%d frames of %d x %d x %d", s.Frames, s.Width, s.Height, s.Channels)
}

// Frame is one 2-D array of samples, row-major with interleaved channels.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []float64
}

func NewFrame(width, height, channels int) Frame {
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]float64, width*height*channels),
	}
}

func (f Frame) At(x, y, c int) float64 {
	return f.Pix[(y*f.Width+x)*f.Channels+c]
}

func (f Frame) Set(x, y, c int, v float64) {
	f.Pix[(y*f.Width+x)*f.Channels+c] = v
}

// FrameFromImage converts a decoded still image into a frame. Gray images
// (8-bit, 16-bit and signed 16-bit) give one channel, anything else is
// read as RGB.
func FrameFromImage(img image.Image) Frame {
	bounds := img.Bounds()
	channels := 3
	if !bounds.Empty() {
		switch img.At(bounds.Min.X, bounds.Min.Y).(type) {
		case color.Gray, color.Gray16, colorext.GrayS16:
			channels = 1
		}
	}

	frame := NewFrame(bounds.Dx(), bounds.Dy(), channels)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fx, fy := x-bounds.Min.X, y-bounds.Min.Y
			switch c := img.At(x, y).(type) {
			case color.Gray:
				frame.Set(fx, fy, 0, float64(c.Y))
			case color.Gray16:
				frame.Set(fx, fy, 0, float64(c.Y))
			case colorext.GrayS16:
				frame.Set(fx, fy, 0, float64(c.Y))
			default:
				if channels == 1 {
					g := color.Gray16Model.Convert(c).(color.Gray16)
					frame.Set(fx, fy, 0, float64(g.Y))
					continue
				}
				r, g, b, _ := c.RGBA()
				frame.Set(fx, fy, 0, float64(r>>8))
				frame.Set(fx, fy, 1, float64(g>>8))
				frame.Set(fx, fy, 2, float64(b>>8))
			}
		}
	}
	return frame
}

// OutputFrame is an 8-bit frame ready for a sink.
type OutputFrame struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

func NewOutputFrame(width, height, channels int) OutputFrame {
	return OutputFrame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Image returns an *image.Gray for one channel and an opaque *image.RGBA
// for three.
func (o OutputFrame) Image() image.Image {
	rect := image.Rect(0, 0, o.Width, o.Height)
	if o.Channels == 1 {
		img := image.NewGray(rect)
		for y := 0; y < o.Height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+o.Width], o.Pix[y*o.Width:(y+1)*o.Width])
		}
		return img
	}

	img := image.NewRGBA(rect)
	for i := 0; i < o.Width*o.Height; i++ {
		img.Pix[i*4] = o.Pix[i*o.Channels]
		img.Pix[i*4+1] = o.Pix[i*o.Channels+1]
		img.Pix[i*4+2] = o.Pix[i*o.Channels+2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// IntensityRange is an ordered (Low, High) contrast window.
type IntensityRange struct {
	Low  float64
	High float64
}

// Degenerate reports a window with no contrast.
func (r IntensityRange) Degenerate() bool {
	return r.Low == r.High
}

func (r IntensityRange) String() string {
	return fmt.Sprintf("[%g %g]", r.Low, r.High)
}

// ParseIntensityRange reads "lo,hi" (spaces allowed).
func ParseIntensityRange(s string) (IntensityRange, error) {
	lo, hi, ok := strings.Cut(s, ",")
	if !ok {
		return IntensityRange{}, fmt.Errorf("%w: range %q must be lo,hi", ErrConfiguration, s)
	}
	low, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return IntensityRange{}, fmt.Errorf("%w: range low %q: %v", ErrConfiguration, lo, err)
	}
	high, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return IntensityRange{}, fmt.Errorf("%w: range high %q: %v", ErrConfiguration, hi, err)
	}
	if !isFinite(low) || !isFinite(high) {
		return IntensityRange{}, fmt.Errorf("%w: range %q must have finite bounds", ErrConfiguration, s)
	}
	if low > high {
		return IntensityRange{}, fmt.Errorf("%w: range low %g above high %g", ErrConfiguration, low, high)
	}
	return IntensityRange{Low: low, High: high}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
