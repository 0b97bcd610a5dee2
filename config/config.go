// Package config loads conversion defaults from YAML. Zero fields fall back
// to the documented defaults below, command line flags override the result.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/gracefulearth/imagevideo"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable default of the conversion tools.
type Config struct {
	// Percentiles is the low/high percentile pair used for automatic contrast.
	// Default [5, 99.95].
	Percentiles []float64 `yaml:"percentiles"`
	// PercentileMethod is nearest (default), empirical or linear.
	PercentileMethod string `yaml:"percentile_method"`
	// WindowFrames is the number of output frames sharing one contrast range.
	// Default 100.
	WindowFrames int `yaml:"window_frames"`
	// ShortClipFrames marks sources with fewer frames as short clips.
	// Default 100.
	ShortClipFrames int `yaml:"short_clip_frames"`
	// ShortClipFPS is the output rate forced on short clips. Default 4.
	ShortClipFPS float64 `yaml:"short_clip_fps"`
	// ShortClipRecomputes is the number of contrast windows across a short
	// clip. Default 10.
	ShortClipRecomputes int `yaml:"short_clip_recomputes"`
	// DefaultFPS is the output rate when none is requested. Default 20.
	DefaultFPS float64 `yaml:"default_fps"`
	// LowFPSWarn warns when the output rate is at or below it, some players
	// (VLC) fail on such files. Default 3.
	LowFPSWarn float64 `yaml:"low_fps_warn"`
	// Codec is the CC4 code handed to the video sink. Default FMP4.
	Codec string `yaml:"codec"`
	// Suffixes are the accepted output suffixes.
	// Default .mkv .ogv .avi .tif .tiff .pixi
	Suffixes []string `yaml:"suffixes"`
	// ProbeStride samples every Nth frame when probing. Default 60.
	ProbeStride int `yaml:"probe_stride"`
	// WriteQueue is the number of frames buffered ahead of the sink.
	// Default 8.
	WriteQueue int `yaml:"write_queue"`
}

var defaultSuffixes = []string{".mkv", ".ogv", ".avi", ".tif", ".tiff", ".pixi"}

func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads a YAML file and applies defaults to unset fields.
func Load(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse config file: %v", imagevideo.ErrConfiguration, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if len(c.Percentiles) == 0 {
		c.Percentiles = []float64{imagevideo.DefaultLowPercentile, imagevideo.DefaultHighPercentile}
	}
	if c.PercentileMethod == "" {
		c.PercentileMethod = string(imagevideo.PercentileNearest)
	}
	plan := imagevideo.DefaultPlanConfig()
	if c.WindowFrames == 0 {
		c.WindowFrames = plan.WindowFrames
	}
	if c.ShortClipFrames == 0 {
		c.ShortClipFrames = plan.ShortClipFrames
	}
	if c.ShortClipFPS == 0 {
		c.ShortClipFPS = plan.ShortClipFPS
	}
	if c.ShortClipRecomputes == 0 {
		c.ShortClipRecomputes = plan.RecomputesPerShortClip
	}
	if c.DefaultFPS == 0 {
		c.DefaultFPS = plan.DefaultFPS
	}
	if c.LowFPSWarn == 0 {
		c.LowFPSWarn = 3
	}
	if c.Codec == "" {
		c.Codec = "FMP4"
	}
	if len(c.Suffixes) == 0 {
		c.Suffixes = slices.Clone(defaultSuffixes)
	}
	if c.ProbeStride == 0 {
		c.ProbeStride = imagevideo.DefaultProbeStride
	}
	if c.WriteQueue == 0 {
		c.WriteQueue = 8
	}
}

func (c Config) Validate() error {
	if len(c.Percentiles) != 2 {
		return fmt.Errorf("%w: percentiles needs exactly two values, got %d", imagevideo.ErrConfiguration, len(c.Percentiles))
	}
	if err := c.Windower().Validate(); err != nil {
		return err
	}
	if c.WindowFrames < 0 || c.ShortClipFrames < 0 || c.ShortClipRecomputes < 0 || c.ProbeStride < 0 || c.WriteQueue < 0 {
		return fmt.Errorf("%w: frame counts must not be negative", imagevideo.ErrConfiguration)
	}
	if c.ShortClipFPS < 0 || c.DefaultFPS < 0 {
		return fmt.Errorf("%w: frame rates must not be negative", imagevideo.ErrConfiguration)
	}
	for _, s := range c.Suffixes {
		if !strings.HasPrefix(s, ".") {
			return fmt.Errorf("%w: suffix %q must start with a dot", imagevideo.ErrConfiguration, s)
		}
	}
	return nil
}

// Windower builds the contrast windower described by the config.
func (c Config) Windower() imagevideo.ContrastWindower {
	w := imagevideo.NewContrastWindower()
	if len(c.Percentiles) == 2 {
		w.Percentiles = [2]float64{c.Percentiles[0], c.Percentiles[1]}
	}
	w.Method = imagevideo.PercentileMethod(c.PercentileMethod)
	return w
}

// PlanConfig builds the window policy config for a run taking every step-th
// frame at the requested fps (0 for the default).
func (c Config) PlanConfig(step int, fps float64) imagevideo.PlanConfig {
	return imagevideo.PlanConfig{
		Step:                   step,
		FPS:                    fps,
		WindowFrames:           c.WindowFrames,
		ShortClipFrames:        c.ShortClipFrames,
		ShortClipFPS:           c.ShortClipFPS,
		RecomputesPerShortClip: c.ShortClipRecomputes,
		DefaultFPS:             c.DefaultFPS,
	}
}
