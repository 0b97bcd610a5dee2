package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/gracefulearth/gopixi"
	"github.com/gracefulearth/imagevideo"
)

const (
	pixiCacheTiles = 8
)

// Pixi reads frames from a Pixi layer with dimensions x, y, frame and one
// (gray) or three (RGB) channels.
type Pixi struct {
	file       *os.File
	layer      gopixi.Layer
	shape      imagevideo.FrameShape
	sampleInto func(coord []int, sample gopixi.Sample) error
}

// OpenPixi opens the layer named key, or the detected video layer when key
// is empty.
func OpenPixi(path, key string) (*Pixi, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", imagevideo.ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("failed to open Pixi file: %w", err)
	}

	summary, err := gopixi.ReadPixi(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read Pixi file header: %w", err)
	}

	if key == "" {
		vars := make([]imagevideo.Variable, len(summary.Layers))
		for i, layer := range summary.Layers {
			vars[i] = pixiVariable(layer)
		}
		if key, err = imagevideo.DetectVideoVariable(vars); err != nil {
			file.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	for _, layer := range summary.Layers {
		if layer.Name != key {
			continue
		}
		if len(layer.Dimensions) != 3 {
			file.Close()
			return nil, fmt.Errorf("%w: layer %q has %d dimensions, want x, y, frame", imagevideo.ErrConfiguration, key, len(layer.Dimensions))
		}
		if n := len(layer.Channels); n != 1 && n != 3 {
			file.Close()
			return nil, fmt.Errorf("%w: layer %q has %d channels, want 1 or 3", imagevideo.ErrConfiguration, key, n)
		}

		cache := gopixi.NewFifoCacheReadLayer(file, summary.Header, layer, pixiCacheTiles)
		return &Pixi{
			file:  file,
			layer: layer,
			shape: imagevideo.FrameShape{
				Frames:   int(layer.Dimensions[2].Size),
				Height:   int(layer.Dimensions[1].Size),
				Width:    int(layer.Dimensions[0].Size),
				Channels: len(layer.Channels),
			},
			sampleInto: func(coord []int, sample gopixi.Sample) error {
				return gopixi.SampleInto(cache, coord, sample)
			},
		}, nil
	}

	file.Close()
	return nil, fmt.Errorf("%w: layer %q in %s", imagevideo.ErrVariableNotFound, key, path)
}

// ListPixiVariables lists the layers of a Pixi file. The channel count is the
// trailing dimension of layers with more than one channel.
func ListPixiVariables(path string) ([]imagevideo.Variable, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", imagevideo.ErrSourceMissing, path)
		}
		return nil, fmt.Errorf("failed to open Pixi file: %w", err)
	}
	defer file.Close()

	summary, err := gopixi.ReadPixi(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read Pixi file header: %w", err)
	}
	vars := make([]imagevideo.Variable, len(summary.Layers))
	for i, layer := range summary.Layers {
		vars[i] = pixiVariable(layer)
	}
	return vars, nil
}

func pixiVariable(layer gopixi.Layer) imagevideo.Variable {
	v := imagevideo.Variable{Name: layer.Name}
	for i := len(layer.Dimensions) - 1; i >= 0; i-- {
		v.Dims = append(v.Dims, int(layer.Dimensions[i].Size))
	}
	if len(layer.Channels) > 1 {
		v.Dims = append(v.Dims, len(layer.Channels))
	}
	return v
}

func (p *Pixi) Shape() imagevideo.FrameShape {
	return p.shape
}

func (p *Pixi) ReadFrame(i int) (imagevideo.Frame, error) {
	if i < 0 || i >= p.shape.Frames {
		return imagevideo.Frame{}, fmt.Errorf("frame %d out of range [0, %d)", i, p.shape.Frames)
	}

	frame := imagevideo.NewFrame(p.shape.Width, p.shape.Height, p.shape.Channels)
	sample := make(gopixi.Sample, p.shape.Channels)
	coord := []int{0, 0, i}
	for y := 0; y < p.shape.Height; y++ {
		for x := 0; x < p.shape.Width; x++ {
			coord[0], coord[1] = x, y
			if err := p.sampleInto(coord, sample); err != nil {
				return imagevideo.Frame{}, fmt.Errorf("failed to read sample at coordinate %v: %w", coord, err)
			}
			for c, value := range sample {
				v, err := sampleFloat(value)
				if err != nil {
					return imagevideo.Frame{}, fmt.Errorf("channel %q: %w", p.layer.Channels[c].Name, err)
				}
				frame.Set(x, y, c, v)
			}
		}
	}
	return frame, nil
}

func (p *Pixi) Close() error {
	return p.file.Close()
}

func sampleFloat(value any) (float64, error) {
	switch v := value.(type) {
	case uint8:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("%w: unsupported sample type %T", imagevideo.ErrConfiguration, value)
}
