package multipage

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// GenerateDigits writes 0.png through 9.png into dir, each a black digit on
// white. Widths vary from 12 to 14 pixels so that assembling them exercises
// resizing.
func GenerateDigits(dir string) ([]string, error) {
	var files []string
	for i := range 10 {
		img := image.NewGray(image.Rect(0, 0, 12+i%3, 16))
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

		drawer := font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(color.Black),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(2, 13),
		}
		drawer.DrawString(strconv.Itoa(i))

		path := filepath.Join(dir, strconv.Itoa(i)+".png")
		if err := writePNG(path, img); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}
