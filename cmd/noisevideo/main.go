package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/exec"

	"github.com/gracefulearth/imagevideo"
	"github.com/gracefulearth/imagevideo/sink"
	flag "github.com/spf13/pflag"
)

// noiseSource yields uniform noise in [0, 256), the same for a given seed
// and frame.
type noiseSource struct {
	shape imagevideo.FrameShape
	seed  uint64
}

func (n noiseSource) Shape() imagevideo.FrameShape {
	return n.shape
}

func (n noiseSource) ReadFrame(i int) (imagevideo.Frame, error) {
	if i < 0 || i >= n.shape.Frames {
		return imagevideo.Frame{}, fmt.Errorf("frame %d out of range [0, %d)", i, n.shape.Frames)
	}
	rng := rand.New(rand.NewPCG(n.seed, uint64(i)))
	frame := imagevideo.NewFrame(n.shape.Width, n.shape.Height, n.shape.Channels)
	for p := range frame.Pix {
		frame.Pix[p] = float64(rng.IntN(256))
	}
	return frame, nil
}

func (n noiseSource) Close() error {
	return nil
}

func main() {
	outArg := flag.StringP("out", "o", "", "video to write (.avi .mkv .ogv)")
	framesArg := flag.Int("frames", 90, "number of frames")
	sizeArg := flag.Int("size", 256, "width and height in pixels")
	fpsArg := flag.Float64("fps", 10, "frame rate")
	colorArg := flag.Bool("color", false, "RGB noise instead of gray")
	seedArg := flag.Uint64("seed", 1, "noise seed")
	playArg := flag.Bool("play", false, "play the video with ffplay when done")
	flag.Parse()

	if *outArg == "" || *framesArg <= 0 || *sizeArg <= 0 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(*outArg, *framesArg, *sizeArg, *fpsArg, *colorArg, *seedArg); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if *playArg {
		cmd := exec.Command("ffplay", "-autoexit", "-loglevel", "warning", *outArg)
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Printf("failed to play %s: %v\n", *outArg, err)
			os.Exit(1)
		}
	}
}

func run(out string, frames, size int, fps float64, rgb bool, seed uint64) error {
	if err := sink.CheckOutput(out, "", []string{".avi", ".mkv", ".ogv"}); err != nil {
		return err
	}

	channels := 1
	if rgb {
		channels = 3
	}
	src := noiseSource{
		shape: imagevideo.FrameShape{Frames: frames, Height: size, Width: size, Channels: channels},
		seed:  seed,
	}

	cfg := imagevideo.DefaultPlanConfig()
	cfg.FPS = fps
	cfg.ShortClipFrames = 0 // keep the requested rate
	cfg.Fixed = true
	plan, err := imagevideo.PlanWindows(frames, cfg)
	if err != nil {
		return err
	}

	dst, err := sink.Create(out, sink.Spec{Width: size, Height: size, Frames: frames, Color: rgb, FPS: fps})
	if err != nil {
		return err
	}
	stats, err := imagevideo.Convert(context.Background(), src, dst, plan, imagevideo.ConvertOptions{
		Fixed:  &imagevideo.IntensityRange{Low: 0, High: 255},
		Logger: slog.Default(),
	})
	if err := errors.Join(err, dst.Close()); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d frames of %dx%d at %g fps\n", out, stats.FramesWritten, size, size, fps)
	return nil
}
