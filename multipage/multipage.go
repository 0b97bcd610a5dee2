// Package multipage assembles still image series into multipage TIFF files.
package multipage

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/gracefulearth/image/tiff"
	"github.com/gracefulearth/imagevideo"
	"github.com/gracefulearth/imagevideo/sink"
	xdraw "golang.org/x/image/draw"
)

// Assemble writes the images in inDir matching the glob pattern, in sorted
// order, as pages of the multipage TIFF out. The first image fixes the page
// size; the others are resized to it. An empty inDir means the directory of
// out.
func Assemble(out, pattern, inDir string) error {
	if inDir == "" {
		inDir = filepath.Dir(out)
	}
	files, err := filepath.Glob(filepath.Join(inDir, pattern))
	if err != nil {
		return fmt.Errorf("%w: bad pattern %q: %v", imagevideo.ErrConfiguration, pattern, err)
	}
	files = slices.DeleteFunc(files, func(f string) bool { return f == out })
	if len(files) == 0 {
		return fmt.Errorf("%w: %s in %s", imagevideo.ErrNoInputFiles, pattern, inDir)
	}
	slices.Sort(files)
	return assembleFiles(out, files)
}

func assembleFiles(out string, files []string) error {
	first, err := decodeFile(files[0])
	if err != nil {
		return err
	}
	bounds := image.Rect(0, 0, first.Bounds().Dx(), first.Bounds().Dy())
	gray := isGray(first)

	dst, err := sink.CreateTIFF(out, sink.Spec{Width: bounds.Dx(), Height: bounds.Dy(), Color: !gray, Frames: len(files)})
	if err != nil {
		return err
	}

	for i, f := range files {
		img := first
		if i > 0 {
			if img, err = decodeFile(f); err != nil {
				dst.Close()
				return err
			}
		}
		if err := dst.WriteFrame(resize(img, bounds, gray)); err != nil {
			dst.Close()
			return fmt.Errorf("failed to write page for %s: %w", f, err)
		}
	}
	return dst.Close()
}

func isGray(img image.Image) bool {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return true
	}
	return false
}

// resize scales img to bounds (bilinear) and flattens it to 8 bits.
func resize(img image.Image, bounds image.Rectangle, gray bool) imagevideo.OutputFrame {
	if gray {
		dst := image.NewGray(bounds)
		xdraw.BiLinear.Scale(dst, bounds, img, img.Bounds(), xdraw.Src, nil)
		out := imagevideo.NewOutputFrame(bounds.Dx(), bounds.Dy(), 1)
		copy(out.Pix, dst.Pix)
		return out
	}

	dst := image.NewRGBA(bounds)
	xdraw.BiLinear.Scale(dst, bounds, img, img.Bounds(), xdraw.Src, nil)
	out := imagevideo.NewOutputFrame(bounds.Dx(), bounds.Dy(), 3)
	for i := 0; i < bounds.Dx()*bounds.Dy(); i++ {
		copy(out.Pix[i*3:i*3+3], dst.Pix[i*4:i*4+3])
	}
	return out
}

func decodeFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		img, err = png.Decode(file)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(file)
	case ".tif", ".tiff":
		img, err = tiff.Decode(file)
	default:
		img, _, err = image.Decode(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// AssembleSeries groups the files of dir named <stem>_t<digits><ext> by stem
// and writes each group to <stem>.tif in dir. It returns the outputs.
func AssembleSeries(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	pattern := regexp.MustCompile(`^(.*)_t\d+` + regexp.QuoteMeta(ext) + `$`)
	series := map[string][]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m := pattern.FindStringSubmatch(entry.Name()); m != nil {
			series[m[1]] = append(series[m[1]], filepath.Join(dir, entry.Name()))
		}
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: *_t<N>%s in %s", imagevideo.ErrNoInputFiles, ext, dir)
	}

	stems := make([]string, 0, len(series))
	for stem := range series {
		stems = append(stems, stem)
	}
	slices.Sort(stems)

	var outputs []string
	for _, stem := range stems {
		files := series[stem]
		slices.Sort(files)
		out := filepath.Join(dir, stem+".tif")
		if err := assembleFiles(out, files); err != nil {
			return outputs, fmt.Errorf("series %s: %w", stem, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}
