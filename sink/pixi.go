package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/gracefulearth/gopixi"
	"github.com/gracefulearth/imagevideo"
)

const (
	PixiLayerName = "frames"
)

// Pixi stores frames as one Pixi layer with dimensions x, y, frame and a
// uint8 channel per colour component. The layer is written by gopixi's tile
// order iterator running on its own goroutine, pulling frames as it reaches
// them.
type Pixi struct {
	spec   Spec
	file   *os.File
	frames chan imagevideo.OutputFrame
	done   chan struct{}

	wg  sync.WaitGroup
	err error
}

func CreatePixi(path string, spec Spec) (*Pixi, error) {
	if spec.Frames <= 0 {
		return nil, fmt.Errorf("%w: Pixi output needs the frame count up front", imagevideo.ErrConfiguration)
	}

	compression := gopixi.CompressionFlate
	switch spec.Compression {
	case "", "flate":
	case "none":
		compression = gopixi.CompressionNone
	case "lzw-lsb":
		compression = gopixi.CompressionLzwLsb
	case "lzw-msb":
		compression = gopixi.CompressionLzwMsb
	case "rle8":
		compression = gopixi.CompressionRle8
	default:
		return nil, fmt.Errorf("%w: unknown Pixi compression %q", imagevideo.ErrConfiguration, spec.Compression)
	}
	order := spec.ByteOrder
	if order == nil {
		order = binary.NativeEndian
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Pixi file: %w", err)
	}

	summary := &gopixi.Pixi{
		Header: gopixi.NewHeader(order, gopixi.OffsetSize8),
	}
	if err := summary.Header.WriteHeader(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write Pixi header: %w", err)
	}
	if len(spec.Tags) > 0 {
		if err := summary.AppendTags(file, spec.Tags); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write Pixi tags: %w", err)
		}
	}

	channels := gopixi.ChannelSet{{Name: "intensity", Type: gopixi.ChannelUint8}}
	if spec.Color {
		channels = gopixi.ChannelSet{
			{Name: "red", Type: gopixi.ChannelUint8},
			{Name: "green", Type: gopixi.ChannelUint8},
			{Name: "blue", Type: gopixi.ChannelUint8},
		}
	}
	opts := []gopixi.LayerOption{gopixi.WithCompression(compression)}
	if spec.Planar {
		opts = append(opts, gopixi.WithPlanar())
	}
	layer := gopixi.NewLayer(PixiLayerName,
		gopixi.DimensionSet{
			{Name: "x", TileSize: spec.Width, Size: spec.Width},
			{Name: "y", TileSize: spec.Height, Size: spec.Height},
			{Name: "frame", TileSize: 1, Size: spec.Frames}},
		channels,
		opts...,
	)

	p := &Pixi{
		spec:   spec,
		file:   file,
		frames: make(chan imagevideo.OutputFrame),
		done:   make(chan struct{}),
	}

	iterator := gopixi.NewTileOrderWriteIterator(file, summary.Header, layer)
	p.wg.Go(func() {
		defer close(p.done)
		p.err = summary.AppendIterativeLayer(file, layer, iterator, p.fill)
	})
	return p, nil
}

func (p *Pixi) fill(dstIterator gopixi.IterativeLayerWriter) error {
	channels := p.spec.channels()
	current := -1
	var frame imagevideo.OutputFrame
	for dstIterator.Next() {
		coord := dstIterator.Coordinate()
		if coord[2] != current {
			next, ok := <-p.frames
			if !ok {
				return fmt.Errorf("sink closed after %d of %d frames", current+1, p.spec.Frames)
			}
			frame, current = next, coord[2]
		}

		base := (coord[1]*frame.Width + coord[0]) * channels
		sample := make(gopixi.Sample, channels)
		for c := range channels {
			sample[c] = frame.Pix[base+c]
		}
		dstIterator.SetSample(sample)
	}
	return nil
}

func (p *Pixi) WriteFrame(frame imagevideo.OutputFrame) error {
	if err := p.spec.check(frame); err != nil {
		return err
	}
	select {
	case p.frames <- frame:
		return nil
	case <-p.done:
		if p.err != nil {
			return fmt.Errorf("failed to write Pixi layer: %w", p.err)
		}
		return fmt.Errorf("more than %d frames written", p.spec.Frames)
	}
}

func (p *Pixi) Close() error {
	close(p.frames)
	p.wg.Wait()
	var err error
	if p.err != nil {
		err = fmt.Errorf("failed to write Pixi layer: %w", p.err)
	}
	return errors.Join(err, p.file.Close())
}
