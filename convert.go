package imagevideo

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
)

// Observer receives per-run events, e.g. to export metrics.
type Observer interface {
	RangeComputed(index int, r IntensityRange)
	FrameRescaled(index int)
}

type ConvertOptions struct {
	Windower ContrastWindower
	Fixed    *IntensityRange // bypasses windowed recomputation for the whole run
	Tint     *color.RGBA     // colourise gray output
	Queue    int             // frames buffered ahead of the sink
	Observer Observer
	Logger   *slog.Logger
}

// RangeEvent is one contrast range applied from source frame Index on.
type RangeEvent struct {
	Index int
	Range IntensityRange
}

type Stats struct {
	FramesWritten    int
	Recomputations   int
	DegenerateRanges int
	Ranges           []RangeEvent
}

// Convert rescales every plan.Step-th frame of src into dst. A degenerate
// contrast window is logged and processing continues, all samples of the
// affected frames mapping to 0.
func Convert(ctx context.Context, src FrameSource, dst FrameSink, plan WindowPlan, opts ConvertOptions) (Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	controller := NewContrastController(plan, opts.Windower, opts.Fixed)
	if controller.Fixed() {
		logger.Info("imagevideo: using fixed contrast range", "range", opts.Fixed.String())
	}

	var stats Stats
	iterator := NewFrameWriteIterator(dst, controller.plan, opts.Queue)
	err := func() error {
		for iterator.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			i := iterator.Index()

			r, recomputed, err := controller.RangeFor(i, src)
			if err != nil {
				return err
			}
			if recomputed || len(stats.Ranges) == 0 {
				stats.Ranges = append(stats.Ranges, RangeEvent{Index: i, Range: r})
				if recomputed {
					stats.Recomputations++
				}
				percent := float64(i) / float64(plan.Total) * 100
				if r.Degenerate() {
					stats.DegenerateRanges++
					logger.Warn("imagevideo: min == max, no input image contrast",
						"percent", fmt.Sprintf("%.1f", percent), "frame", i, "range", r.String())
				} else {
					logger.Info("imagevideo: contrast range",
						"percent", fmt.Sprintf("%.1f", percent), "frame", i, "range", r.String())
				}
				if opts.Observer != nil {
					opts.Observer.RangeComputed(i, r)
				}
			}

			frame, err := controller.Frame(i, src)
			if err != nil {
				return err
			}
			out := ToEightBit(frame, r)
			if opts.Tint != nil {
				out = Tint(out, *opts.Tint)
			}
			iterator.SetFrame(out)
			if opts.Observer != nil {
				opts.Observer.FrameRescaled(i)
			}
		}
		return nil
	}()
	iterator.Done()
	stats.FramesWritten = iterator.Written()

	if err != nil {
		return stats, err
	}
	if err := iterator.Error(); err != nil {
		return stats, err
	}
	return stats, nil
}
