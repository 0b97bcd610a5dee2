// Package source opens frame sources: HDF5 datasets, Pixi layers and
// in-memory image stacks.
package source

import (
	"fmt"
	"image"

	"github.com/gracefulearth/imagevideo"
)

// Stack is an in-memory frame source.
type Stack struct {
	shape  imagevideo.FrameShape
	frames []imagevideo.Frame
}

// NewStack wraps frames that all share the geometry of the first one.
func NewStack(frames ...imagevideo.Frame) (*Stack, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: empty frame stack", imagevideo.ErrPrecondition)
	}
	first := frames[0]
	for i, f := range frames {
		if f.Width != first.Width || f.Height != first.Height || f.Channels != first.Channels {
			return nil, fmt.Errorf("frame %d is %dx%dx%d, want %dx%dx%d",
				i, f.Width, f.Height, f.Channels, first.Width, first.Height, first.Channels)
		}
	}
	return &Stack{
		shape: imagevideo.FrameShape{
			Frames:   len(frames),
			Height:   first.Height,
			Width:    first.Width,
			Channels: first.Channels,
		},
		frames: frames,
	}, nil
}

// NewImageStack converts decoded images into a stack.
func NewImageStack(images ...image.Image) (*Stack, error) {
	frames := make([]imagevideo.Frame, len(images))
	for i, img := range images {
		frames[i] = imagevideo.FrameFromImage(img)
	}
	return NewStack(frames...)
}

func (s *Stack) Shape() imagevideo.FrameShape {
	return s.shape
}

func (s *Stack) ReadFrame(i int) (imagevideo.Frame, error) {
	if i < 0 || i >= len(s.frames) {
		return imagevideo.Frame{}, fmt.Errorf("frame %d out of range [0, %d)", i, len(s.frames))
	}
	return s.frames[i], nil
}

func (s *Stack) Close() error {
	return nil
}
