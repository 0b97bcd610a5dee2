package imagevideo

import (
	"image/color"
	"math"
	"slices"
	"testing"
)

func frameOf(values ...float64) Frame {
	return Frame{Width: len(values), Height: 1, Channels: 1, Pix: values}
}

func TestToEightBit(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		r     IntensityRange
		want  []uint8
	}{
		{"stretch", frameOf(10, 50, 90), IntensityRange{10, 90}, []uint8{0, 127, 255}},
		{"clip both ends", frameOf(-5, 0, 200, 1000), IntensityRange{0, 200}, []uint8{0, 0, 255, 255}},
		{"degenerate maps to zero", frameOf(3, 7, 9), IntensityRange{7, 7}, []uint8{0, 0, 0}},
		{"NaN sample maps to zero", frameOf(math.NaN(), 10), IntensityRange{0, 10}, []uint8{0, 255}},
		{"truncates toward zero", frameOf(1, 2), IntensityRange{0, 3}, []uint8{85, 170}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToEightBit(tt.frame, tt.r)
			if !slices.Equal(got.Pix, tt.want) {
				t.Errorf("ToEightBit = %v, want %v", got.Pix, tt.want)
			}
		})
	}
}

func TestToEightBitIdentity(t *testing.T) {
	f := NewFrame(256, 1, 1)
	for i := range f.Pix {
		f.Pix[i] = float64(i)
	}
	out := ToEightBit(f, IntensityRange{0, 255})
	for i, v := range out.Pix {
		if int(v) != i {
			t.Fatalf("sample %d rescaled to %d", i, v)
		}
	}
}

func TestNormalizeBounds(t *testing.T) {
	f := frameOf(-100, 0, 0.5, 1, 100)
	for _, v := range Normalize(f, IntensityRange{0, 1}) {
		if v < 0 || v > 1 {
			t.Errorf("normalized sample %v outside [0, 1]", v)
		}
	}
}

func TestTint(t *testing.T) {
	gray := OutputFrame{Width: 2, Height: 1, Channels: 1, Pix: []uint8{255, 128}}
	got := Tint(gray, color.RGBA{R: 146, G: 0, B: 255, A: 255})
	want := []uint8{146, 0, 255, 73, 0, 128}
	if got.Channels != 3 || !slices.Equal(got.Pix, want) {
		t.Errorf("Tint = %v (%d channels), want %v", got.Pix, got.Channels, want)
	}

	rgb := NewOutputFrame(1, 1, 3)
	if Tint(rgb, color.RGBA{R: 1}).Channels != 3 {
		t.Error("Tint changed an RGB frame")
	}
}

func TestWavelengthRGB(t *testing.T) {
	tests := []struct {
		nm   float64
		want color.RGBA
	}{
		{720, color.RGBA{R: 146, A: 255}},
		{300, color.RGBA{A: 255}},
		{800, color.RGBA{A: 255}},
		{470, color.RGBA{G: 169, B: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := WavelengthRGB(tt.nm, 0.8); got != tt.want {
			t.Errorf("WavelengthRGB(%g) = %v, want %v", tt.nm, got, tt.want)
		}
	}
}
