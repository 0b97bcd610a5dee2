package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gracefulearth/imagevideo"
	"github.com/gracefulearth/imagevideo/config"
	"github.com/gracefulearth/imagevideo/metrics"
	"github.com/gracefulearth/imagevideo/sink"
	"github.com/gracefulearth/imagevideo/source"
	flag "github.com/spf13/pflag"
)

const tintGamma = 0.8

func main() {
	keyArg := flag.StringP("h5key", "k", "", "variable holding the video, detected when empty")
	cc4Arg := flag.String("cc4", "", "video codec CC4 code (default from config, FMP4); only checked, THEO needs .ogv and the encoder follows the container: .avi FMP4, .mkv/.mp4 H264, .ogv THEO")
	minmaxArg := flag.String("minmax", "", "fixed contrast range lo,hi for the whole video")
	fpsArg := flag.Float64("fps", 0, "output frame rate (default from config, 20)")
	stepArg := flag.IntP("step", "s", 1, "take every Nth frame")
	strideArg := flag.Int("stride", 1, "use every Nth frame of a contrast window for the percentiles")
	prcArg := flag.Float64Slice("prc", nil, "low,high percentiles for automatic contrast (default from config, 5,99.95)")
	configArg := flag.String("config", "", "YAML file with conversion defaults")
	metricsArg := flag.String("metrics-file", "", "write run metrics in Prometheus text format to this file")
	tintArg := flag.Float64("tint", 0, "colour gray output like light of this wavelength in nm")
	compressionArg := flag.String("compression", "flate", "compression for Pixi output (none, flate, lzw-lsb, lzw-msb, rle8)")
	orderArg := flag.String("endian", "native", "byte order for Pixi output (big, little, native)")
	planarArg := flag.Bool("planar", false, "planar rather than interleaved channels in Pixi output")
	verboseArg := flag.BoolP("verbose", "v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: h5video infn [outfn] [flags]\n\n"+
			"Rescales an HDF5 or Pixi image stack to 8 bits with windowed contrast and\n"+
			"writes video (.avi .mkv .ogv), multipage TIFF or Pixi. Without outfn the\n"+
			"intensity percentiles of the input are reported.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verboseArg {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := config.Default()
	if *configArg != "" {
		var err error
		if cfg, err = config.Load(*configArg); err != nil {
			fmt.Printf("failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	if len(*prcArg) > 0 {
		cfg.Percentiles = *prcArg
	}
	if *cc4Arg != "" {
		cfg.Codec = *cc4Arg
	}
	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	args := runArgs{
		input:       flag.Arg(0),
		output:      flag.Arg(1),
		key:         *keyArg,
		minmax:      *minmaxArg,
		fps:         *fpsArg,
		step:        *stepArg,
		stride:      *strideArg,
		metricsFile: *metricsArg,
		tint:        *tintArg,
		compression: *compressionArg,
		endian:      *orderArg,
		planar:      *planarArg,
	}
	if err := run(cfg, args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

type runArgs struct {
	input, output string
	key           string
	minmax        string
	fps           float64
	step, stride  int
	metricsFile   string
	tint          float64
	compression   string
	endian        string
	planar        bool
}

func run(cfg config.Config, args runArgs) error {
	// validate the destination before touching the source
	if args.output != "" {
		if err := sink.CheckOutput(args.output, cfg.Codec, cfg.Suffixes); err != nil {
			return err
		}
	}

	if args.key == "" {
		key, err := source.FindVideoVariable(args.input)
		if err != nil {
			return err
		}
		slog.Info("h5video: using detected variable", "key", key)
		args.key = key
	}

	src, err := source.Open(args.input, args.key)
	if err != nil {
		return err
	}
	defer src.Close()

	shape := src.Shape()
	fmt.Printf("%s: %s is %s\n", args.input, args.key, shape)

	windower := cfg.Windower()
	windower.Stride = args.stride

	if args.output == "" {
		return probe(src, args.input, cfg, windower)
	}

	var fixed *imagevideo.IntensityRange
	if args.minmax != "" {
		r, err := imagevideo.ParseIntensityRange(args.minmax)
		if err != nil {
			return err
		}
		fixed = &r
	}

	planConfig := cfg.PlanConfig(args.step, args.fps)
	planConfig.Fixed = fixed != nil
	plan, err := imagevideo.PlanWindows(shape.Frames, planConfig)
	if err != nil {
		return err
	}
	if plan.Short {
		slog.Info("h5video: short clip, forcing frame rate", "frames", shape.Frames, "fps", plan.FPS, "window", plan.Window)
	}
	if plan.FPS <= cfg.LowFPSWarn {
		slog.Warn("h5video: low frame rate, some players cannot play such files", "fps", plan.FPS)
	}

	var tint *color.RGBA
	if args.tint != 0 {
		c := imagevideo.WavelengthRGB(args.tint, tintGamma)
		tint = &c
	}

	var order binary.ByteOrder
	switch args.endian {
	case "big":
		order = binary.BigEndian
	case "little":
		order = binary.LittleEndian
	case "native":
		order = binary.NativeEndian
	default:
		return fmt.Errorf("%w: invalid endianness argument: %s", imagevideo.ErrConfiguration, args.endian)
	}

	runID := uuid.NewString()
	logger := slog.With("run_id", runID)
	tags := map[string]string{
		"run_id":   runID,
		"source":   args.input,
		"variable": args.key,
		"step":     strconv.Itoa(plan.Step),
		"created":  time.Now().UTC().Format(time.RFC3339),
	}
	if fixed != nil {
		tags["contrast"] = fixed.String()
	} else {
		tags["contrast"] = fmt.Sprintf("percentiles %v every %d frames", windower.Percentiles, plan.Window)
	}

	dst, err := sink.Create(args.output, sink.Spec{
		Width:       shape.Width,
		Height:      shape.Height,
		Frames:      plan.OutputFrames(),
		Color:       shape.Channels == 3 || tint != nil,
		FPS:         plan.FPS,
		Codec:       cfg.Codec,
		Tags:        tags,
		Compression: args.compression,
		ByteOrder:   order,
		Planar:      args.planar,
	})
	if err != nil {
		return err
	}

	var recorder *metrics.Recorder
	opts := imagevideo.ConvertOptions{
		Windower: windower,
		Fixed:    fixed,
		Tint:     tint,
		Queue:    cfg.WriteQueue,
		Logger:   logger,
	}
	if args.metricsFile != "" {
		recorder = metrics.NewRecorder(runID, args.input, args.output)
		opts.Observer = recorder
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	stats, err := imagevideo.Convert(ctx, src, dst, plan, opts)
	err = errors.Join(err, dst.Close())
	if recorder != nil {
		if merr := recorder.WriteTextfile(args.metricsFile); merr != nil {
			logger.Error("h5video: failed to write metrics", "path", args.metricsFile, "err", merr)
		}
	}
	if err != nil {
		return fmt.Errorf("conversion of %s stopped after %d frames: %w", args.input, stats.FramesWritten, err)
	}

	fmt.Printf("wrote %s: %d frames at %g fps, %d contrast ranges (%d without contrast) in %s\n",
		args.output, stats.FramesWritten, plan.FPS, len(stats.Ranges), stats.DegenerateRanges,
		time.Since(start).Round(time.Millisecond))
	return nil
}

func probe(src imagevideo.FrameSource, input string, cfg config.Config, windower imagevideo.ContrastWindower) error {
	var size int64
	if info, err := os.Stat(input); err == nil {
		size = info.Size()
	}
	report, err := imagevideo.Probe(src, cfg.ProbeStride, windower, size)
	if err != nil {
		return err
	}
	fmt.Println(report)
	fmt.Printf("sampled every %d frames, about %.1f MB of %.1f MB\n",
		cfg.ProbeStride, report.BytesRead/1e6, float64(report.FileBytes)/1e6)
	return nil
}
