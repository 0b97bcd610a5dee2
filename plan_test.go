package imagevideo

import (
	"errors"
	"slices"
	"testing"
)

func recomputePoints(p WindowPlan) []int {
	var points []int
	for i := range p.Indices() {
		if p.Recompute(i) {
			points = append(points, i)
		}
	}
	return points
}

func TestPlanWindows(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		configure  func(*PlanConfig)
		wantFPS    float64
		wantWindow int
		wantShort  bool
		wantFrames int
		wantPoints []int
	}{
		{
			name:       "long clip",
			total:      1000,
			wantFPS:    20,
			wantWindow: 100,
			wantFrames: 1000,
			wantPoints: []int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900},
		},
		{
			name:       "long clip with step",
			total:      1000,
			configure:  func(c *PlanConfig) { c.Step = 2; c.FPS = 30 },
			wantFPS:    30,
			wantWindow: 200,
			wantFrames: 500,
			wantPoints: []int{0, 200, 400, 600, 800},
		},
		{
			name:       "short clip",
			total:      50,
			configure:  func(c *PlanConfig) { c.FPS = 30 },
			wantFPS:    4,
			wantWindow: 5,
			wantShort:  true,
			wantFrames: 50,
			wantPoints: []int{0, 5, 10, 15, 20, 25, 30, 35, 40, 45},
		},
		{
			name:       "tiny clip recomputes every frame",
			total:      5,
			wantFPS:    4,
			wantWindow: 1,
			wantShort:  true,
			wantFrames: 5,
			wantPoints: []int{0, 1, 2, 3, 4},
		},
		{
			name:       "fixed range",
			total:      1000,
			configure:  func(c *PlanConfig) { c.Fixed = true },
			wantFPS:    20,
			wantWindow: 100,
			wantFrames: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultPlanConfig()
			if tt.configure != nil {
				tt.configure(&cfg)
			}
			plan, err := PlanWindows(tt.total, cfg)
			if err != nil {
				t.Fatal(err)
			}
			if plan.FPS != tt.wantFPS {
				t.Errorf("FPS = %v, want %v", plan.FPS, tt.wantFPS)
			}
			if plan.Window != tt.wantWindow {
				t.Errorf("Window = %v, want %v", plan.Window, tt.wantWindow)
			}
			if plan.Short != tt.wantShort {
				t.Errorf("Short = %v, want %v", plan.Short, tt.wantShort)
			}
			if plan.OutputFrames() != tt.wantFrames {
				t.Errorf("OutputFrames = %v, want %v", plan.OutputFrames(), tt.wantFrames)
			}
			if got := recomputePoints(plan); !slices.Equal(got, tt.wantPoints) {
				t.Errorf("recompute points = %v, want %v", got, tt.wantPoints)
			}
		})
	}
}

func TestPlanWindowsErrors(t *testing.T) {
	cfg := DefaultPlanConfig()
	if _, err := PlanWindows(0, cfg); !errors.Is(err, ErrPrecondition) {
		t.Errorf("empty source: got %v, want ErrPrecondition", err)
	}
	cfg.Step = 0
	if _, err := PlanWindows(10, cfg); !errors.Is(err, ErrConfiguration) {
		t.Errorf("zero step: got %v, want ErrConfiguration", err)
	}
}

func TestHandBuiltPlan(t *testing.T) {
	noWindow := WindowPlan{Total: 5, Step: 1}
	if !noWindow.Recompute(0) || noWindow.Recompute(3) {
		t.Error("plan without a window should recompute only at frame 0")
	}
	if start, end, step := noWindow.WindowBounds(0); start != 0 || end != 5 || step != 1 {
		t.Errorf("WindowBounds(0) = %d, %d, %d, want 0, 5, 1", start, end, step)
	}

	noStep := WindowPlan{Total: 5, Window: 2}
	if noStep.OutputFrames() != 0 {
		t.Errorf("OutputFrames = %d, want 0", noStep.OutputFrames())
	}
	for i := range noStep.Indices() {
		t.Fatalf("plan without a step yielded %d", i)
	}
	if _, _, step := noStep.WindowBounds(0); step != 1 {
		t.Errorf("WindowBounds step = %d, want 1", step)
	}
	var zero WindowPlan
	if !zero.Recompute(0) {
		t.Error("zero plan should recompute at frame 0")
	}
}

func TestWindowBounds(t *testing.T) {
	plan, err := PlanWindows(1050, DefaultPlanConfig())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		index, start, end int
	}{
		{0, 0, 100},
		{900, 900, 1000},
		{1000, 1000, 1050},
	}
	for _, tt := range tests {
		start, end, step := plan.WindowBounds(tt.index)
		if start != tt.start || end != tt.end || step != 1 {
			t.Errorf("WindowBounds(%d) = %d, %d, %d, want %d, %d, 1", tt.index, start, end, step, tt.start, tt.end)
		}
	}
}
