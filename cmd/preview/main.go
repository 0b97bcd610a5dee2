package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/gracefulearth/imagevideo"
	"github.com/gracefulearth/imagevideo/config"
	"github.com/gracefulearth/imagevideo/source"
	flag "github.com/spf13/pflag"
)

func main() {
	src := flag.String("src", "", "HDF5 or Pixi file to preview a frame of")
	key := flag.StringP("h5key", "k", "", "variable holding the video, detected when empty")
	index := flag.IntP("index", "i", 0, "frame to preview")
	factor := flag.Int("factor", 1, "amount the frame will be downscaled by (division)")
	minmax := flag.String("minmax", "", "fixed contrast range lo,hi, otherwise the frame's contrast window is used")
	dest := flag.String("dest", "./preview.png", "path of the image that will be created")
	flag.Parse()

	if *src == "" {
		fmt.Println("No source provided, please use --src flag.")
		os.Exit(2)
	}
	if *factor <= 0 {
		fmt.Printf("invalid factor argument: %d\n", *factor)
		os.Exit(2)
	}

	if err := preview(*src, *key, *index, *factor, *minmax, *dest); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func preview(path, key string, index, factor int, minmax, dest string) error {
	frames, err := source.Open(path, key)
	if err != nil {
		return err
	}
	defer frames.Close()

	shape := frames.Shape()
	if index < 0 || index >= shape.Frames {
		return fmt.Errorf("%w: frame %d not in [0, %d)", imagevideo.ErrConfiguration, index, shape.Frames)
	}

	var r imagevideo.IntensityRange
	if minmax != "" {
		if r, err = imagevideo.ParseIntensityRange(minmax); err != nil {
			return err
		}
	} else {
		cfg := config.Default()
		plan, err := imagevideo.PlanWindows(shape.Frames, cfg.PlanConfig(1, 0))
		if err != nil {
			return err
		}
		// the window the converter would use for this frame
		controller := imagevideo.NewContrastController(plan, cfg.Windower(), nil)
		if r, _, err = controller.RangeFor(index-index%plan.Window, frames); err != nil {
			return err
		}
	}
	fmt.Println("contrast range:", r)

	frame, err := frames.ReadFrame(index)
	if err != nil {
		return err
	}
	if factor > 1 {
		frame = downscale(frame, factor)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	if err := png.Encode(out, imagevideo.ToEightBit(frame, r).Image()); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return out.Close()
}

// downscale averages factor x factor blocks, dropping partial blocks at the
// right and bottom edges.
func downscale(f imagevideo.Frame, factor int) imagevideo.Frame {
	out := imagevideo.NewFrame(max(f.Width/factor, 1), max(f.Height/factor, 1), f.Channels)
	for yTile := 0; yTile < out.Height; yTile++ {
		for xTile := 0; xTile < out.Width; xTile++ {
			for c := 0; c < f.Channels; c++ {
				sum, n := 0.0, 0
				for y := yTile * factor; y < min((yTile+1)*factor, f.Height); y++ {
					for x := xTile * factor; x < min((xTile+1)*factor, f.Width); x++ {
						sum += f.At(x, y, c)
						n++
					}
				}
				out.Set(xTile, yTile, c, sum/float64(n))
			}
		}
	}
	return out
}
