package imagevideo

import (
	"image/color"
	"math"
)

// Normalize clips every sample of f to r and maps r.Low to 0 and r.High to 1.
// The arithmetic is done in float32. A degenerate range maps every sample
// to 0, as do NaN samples.
func Normalize(f Frame, r IntensityRange) []float32 {
	out := make([]float32, len(f.Pix))
	if r.Degenerate() {
		return out
	}

	low, high := float32(r.Low), float32(r.High)
	span := high - low
	for i, v := range f.Pix {
		if math.IsNaN(v) {
			continue
		}
		s := float32(v)
		if s < low {
			s = low
		} else if s > high {
			s = high
		}
		out[i] = (s - low) / span
	}
	return out
}

// ToEightBit stretches f into uint8 using r, truncating toward zero.
func ToEightBit(f Frame, r IntensityRange) OutputFrame {
	out := NewOutputFrame(f.Width, f.Height, f.Channels)
	for i, n := range Normalize(f, r) {
		out.Pix[i] = uint8(n * 255)
	}
	return out
}

// Tint expands a gray frame into RGB scaled by c. Frames that already have
// three channels are returned unchanged.
func Tint(o OutputFrame, c color.RGBA) OutputFrame {
	if o.Channels != 1 {
		return o
	}
	out := NewOutputFrame(o.Width, o.Height, 3)
	for i, v := range o.Pix {
		out.Pix[i*3] = uint8(uint16(v) * uint16(c.R) / 255)
		out.Pix[i*3+1] = uint8(uint16(v) * uint16(c.G) / 255)
		out.Pix[i*3+2] = uint8(uint16(v) * uint16(c.B) / 255)
	}
	return out
}
