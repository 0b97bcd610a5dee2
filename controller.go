package imagevideo

import "fmt"

// FrameSource supplies frames addressable by index.
type FrameSource interface {
	Shape() FrameShape
	ReadFrame(i int) (Frame, error)
	Close() error
}

// FrameSink accepts 8-bit frames of the geometry it was opened with.
type FrameSink interface {
	WriteFrame(OutputFrame) error
	Close() error
}

// ReadWindow reads frames [start, end) every step.
func ReadWindow(src FrameSource, start, end, step int) ([]Frame, error) {
	frames := make([]Frame, 0, (end-start+step-1)/step)
	for i := start; i < end; i += step {
		frame, err := src.ReadFrame(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read frame %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// ContrastController tracks the active contrast range of a run. It either
// holds a fixed range for the whole run or recomputes the range from the
// source at the window boundaries of its plan, never both.
type ContrastController struct {
	plan     WindowPlan
	windower ContrastWindower
	current  IntensityRange
	primed   bool

	// frames read for the last window, every windowStep-th from windowStart
	window      []Frame
	windowStart int
	windowStep  int
}

// NewContrastController returns a controller in windowed mode, or in fixed
// mode when fixed is not nil.
func NewContrastController(plan WindowPlan, windower ContrastWindower, fixed *IntensityRange) *ContrastController {
	c := &ContrastController{plan: plan, windower: windower}
	if fixed != nil {
		c.plan.Fixed = true
		c.current = *fixed
		c.primed = true
	}
	return c
}

func (c *ContrastController) Fixed() bool {
	return c.plan.Fixed
}

// RangeFor returns the range to apply at source frame i, recomputing it from
// src at window boundaries.
func (c *ContrastController) RangeFor(i int, src FrameSource) (IntensityRange, bool, error) {
	if !c.plan.Recompute(i) && c.primed {
		return c.current, false, nil
	}

	// only the frames the windower uses are read
	start, end, step := c.plan.WindowBounds(i)
	step *= max(c.windower.Stride, 1)
	frames, err := ReadWindow(src, start, end, step)
	if err != nil {
		return IntensityRange{}, false, err
	}
	windower := c.windower
	windower.Stride = 1
	r, err := windower.ComputeRange(frames)
	if err != nil {
		return IntensityRange{}, false, fmt.Errorf("contrast window at frame %d: %w", i, err)
	}
	c.current = r
	c.primed = true
	c.window, c.windowStart, c.windowStep = frames, start, step
	return r, true, nil
}

// Frame returns source frame i, from the last window when it was read for
// the range computation.
func (c *ContrastController) Frame(i int, src FrameSource) (Frame, error) {
	if k := i - c.windowStart; c.windowStep > 0 && k >= 0 && k%c.windowStep == 0 && k/c.windowStep < len(c.window) {
		return c.window[k/c.windowStep], nil
	}
	frame, err := src.ReadFrame(i)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to read frame %d: %w", i, err)
	}
	return frame, nil
}
