package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gracefulearth/imagevideo"
	"github.com/gracefulearth/imagevideo/sink"
	"github.com/gracefulearth/imagevideo/source"
	flag "github.com/spf13/pflag"
)

var errMismatch = errors.New("output does not match source")

func main() {
	srcArg := flag.String("src", "", "HDF5 or Pixi source the output was converted from")
	keyArg := flag.StringP("h5key", "k", "", "variable holding the video, detected when empty")
	outArg := flag.String("out", "", "converted video, multipage TIFF or Pixi file to verify")
	stepArg := flag.IntP("step", "s", 1, "frame step used for the conversion")
	minmaxArg := flag.String("minmax", "", "fixed contrast range lo,hi used for the conversion, enables sample comparison")
	toleranceArg := flag.Int("tolerance", 0, "largest accepted per-sample difference (lossy codecs need more than 0)")
	flag.Parse()

	if *srcArg == "" || *outArg == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := verify(*srcArg, *keyArg, *outArg, *stepArg, *minmaxArg, *toleranceArg); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func verify(srcPath, key, outPath string, step int, minmax string, tolerance int) error {
	src, err := source.Open(srcPath, key)
	if err != nil {
		return err
	}
	defer src.Close()
	shape := src.Shape()

	var fixed *imagevideo.IntensityRange
	if minmax != "" {
		r, err := imagevideo.ParseIntensityRange(minmax)
		if err != nil {
			return err
		}
		fixed = &r
	}

	cfg := imagevideo.DefaultPlanConfig()
	cfg.Step = step
	plan, err := imagevideo.PlanWindows(shape.Frames, cfg)
	if err != nil {
		return err
	}

	count, err := eachOutputFrame(outPath, func(i int, got imagevideo.Frame) error {
		if got.Width != shape.Width || got.Height != shape.Height {
			return fmt.Errorf("%w: frame %d is %dx%d, source is %dx%d", errMismatch, i, got.Width, got.Height, shape.Width, shape.Height)
		}
		if i%100 == 0 {
			fmt.Println("Output frames verified:", i, "/", plan.OutputFrames())
		}
		if fixed == nil {
			return nil
		}

		index := i * plan.Step
		frame, err := src.ReadFrame(index)
		if err != nil {
			return err
		}
		expected := imagevideo.ToEightBit(frame, *fixed)
		for p, want := range expected.Pix {
			// gray output may come back as RGB from a video decoder
			pixel, c := p/expected.Channels, p%expected.Channels
			if got.Channels != expected.Channels {
				c = 0
			}
			have := got.Pix[pixel*got.Channels+c]
			if math.Abs(have-float64(want)) > float64(tolerance) {
				return fmt.Errorf("%w: source frame %d sample %d: output=%v expected=%d", errMismatch, index, p, have, want)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if count != plan.OutputFrames() {
		return fmt.Errorf("%w: %d frames, expected %d", errMismatch, count, plan.OutputFrames())
	}
	fmt.Printf("%s matches %s: %d frames\n", outPath, srcPath, count)
	return nil
}

// eachOutputFrame decodes the frames of a converted file in order.
func eachOutputFrame(path string, fn func(int, imagevideo.Frame) error) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		pages, err := sink.ReadMultipage(path)
		if err != nil {
			return 0, err
		}
		for i, page := range pages {
			if err := fn(i, imagevideo.FrameFromImage(page)); err != nil {
				return i, err
			}
		}
		return len(pages), nil
	case ".pixi":
		pixi, err := source.OpenPixi(path, sink.PixiLayerName)
		if err != nil {
			return 0, err
		}
		defer pixi.Close()
		frames := pixi.Shape().Frames
		for i := range frames {
			frame, err := pixi.ReadFrame(i)
			if err != nil {
				return i, err
			}
			if err := fn(i, frame); err != nil {
				return i, err
			}
		}
		return frames, nil
	}
	summary, err := sink.ReadVideo(path, fn)
	return summary.Frames, err
}
