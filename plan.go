package imagevideo

import (
	"fmt"
	"iter"
)

// PlanConfig holds the knobs that decide how often contrast is recomputed
// and what frame rate the output gets.
type PlanConfig struct {
	Step                   int     // take every Step-th source frame
	FPS                    float64 // requested output rate, 0 uses DefaultFPS
	WindowFrames           int     // output frames per contrast window
	ShortClipFrames        int     // sources with fewer frames are short clips
	ShortClipFPS           float64 // forced output rate for short clips
	RecomputesPerShortClip int     // contrast windows across a short clip
	DefaultFPS             float64
	Fixed                  bool // a fixed range was supplied, never recompute
}

func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Step:                   1,
		WindowFrames:           100,
		ShortClipFrames:        100,
		ShortClipFPS:           4,
		RecomputesPerShortClip: 10,
		DefaultFPS:             20,
	}
}

// WindowPlan is the frame-index policy of a conversion run.
type WindowPlan struct {
	Total  int     // frames in the source
	Step   int     // source frames advanced per output frame
	Window int     // source frames between contrast recomputations
	FPS    float64 // output frame rate
	Short  bool    // the short-clip branch forced FPS and shrank Window
	Fixed  bool    // contrast is fixed for the whole run
}

// PlanWindows builds the recomputation policy for a source of total frames.
func PlanWindows(total int, cfg PlanConfig) (WindowPlan, error) {
	if total <= 0 {
		return WindowPlan{}, fmt.Errorf("%w: source has no frames", ErrPrecondition)
	}
	if cfg.Step <= 0 {
		return WindowPlan{}, fmt.Errorf("%w: step %d must be positive", ErrConfiguration, cfg.Step)
	}
	if cfg.WindowFrames <= 0 || cfg.RecomputesPerShortClip <= 0 {
		return WindowPlan{}, fmt.Errorf("%w: window frames and short clip recomputes must be positive", ErrConfiguration)
	}
	if cfg.FPS < 0 {
		return WindowPlan{}, fmt.Errorf("%w: fps %g must not be negative", ErrConfiguration, cfg.FPS)
	}

	plan := WindowPlan{
		Total:  total,
		Step:   cfg.Step,
		Window: cfg.Step * cfg.WindowFrames,
		FPS:    cfg.FPS,
		Fixed:  cfg.Fixed,
	}

	if total < cfg.ShortClipFrames {
		plan.Short = true
		plan.FPS = cfg.ShortClipFPS
		outputFrames := total / cfg.Step
		plan.Window = max(cfg.Step*(outputFrames/cfg.RecomputesPerShortClip), cfg.Step)
	} else if plan.FPS == 0 {
		plan.FPS = cfg.DefaultFPS
	}
	return plan, nil
}

// OutputFrames is the number of frames the run writes.
func (p WindowPlan) OutputFrames() int {
	if p.Step <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Step - 1) / p.Step
}

// Recompute reports whether the contrast range is recomputed at source
// frame i. A plan without a window recomputes only at frame 0.
func (p WindowPlan) Recompute(i int) bool {
	if p.Fixed {
		return false
	}
	if p.Window <= 0 {
		return i == 0
	}
	return i%p.Window == 0
}

// WindowBounds returns the source frames [start, end) sampled every step
// that feed the contrast range computed at frame i.
func (p WindowPlan) WindowBounds(i int) (start, end, step int) {
	end = p.Total
	if p.Window > 0 {
		end = min(i+p.Window, p.Total)
	}
	return i, end, max(p.Step, 1)
}

// Indices yields the source frame indices the run visits, none when Step
// is not positive.
func (p WindowPlan) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		if p.Step <= 0 {
			return
		}
		for i := 0; i < p.Total; i += p.Step {
			if !yield(i) {
				return
			}
		}
	}
}
