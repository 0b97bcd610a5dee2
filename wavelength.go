package imagevideo

import (
	"image/color"
	"math"
)

// WavelengthRGB approximates the colour of visible light (380 to 750 nm)
// after Dan Bruton's piecewise model. Wavelengths outside the visible band
// are black.
func WavelengthRGB(nm, gamma float64) color.RGBA {
	var r, g, b float64
	switch {
	case nm >= 380 && nm <= 440:
		attenuation := 0.3 + 0.7*(nm-380)/(440-380)
		r = math.Pow(-(nm-440)/(440-380)*attenuation, gamma)
		b = math.Pow(attenuation, gamma)
	case nm >= 440 && nm <= 490:
		g = math.Pow((nm-440)/(490-440), gamma)
		b = 1
	case nm >= 490 && nm <= 510:
		g = 1
		b = math.Pow(-(nm-510)/(510-490), gamma)
	case nm >= 510 && nm <= 580:
		r = math.Pow((nm-510)/(580-510), gamma)
		g = 1
	case nm >= 580 && nm <= 645:
		r = 1
		g = math.Pow(-(nm-645)/(645-580), gamma)
	case nm >= 645 && nm <= 750:
		attenuation := 0.3 + 0.7*(750-nm)/(750-645)
		r = math.Pow(attenuation, gamma)
	}

	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}
