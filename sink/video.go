package sink

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gracefulearth/imagevideo"
	"github.com/unixpickle/ffmpego"
)

// Video encodes frames through ffmpeg. The encoder comes from the container
// suffix (see ContainerCodec); a different Codec is logged as a warning.
type Video struct {
	spec   Spec
	writer *ffmpego.VideoWriter
}

func CreateVideo(path string, spec Spec) (*Video, error) {
	writer, err := ffmpego.NewVideoWriter(path, spec.Width, spec.Height, spec.FPS)
	if err != nil {
		return nil, fmt.Errorf("failed to open video writer %s: %w", path, err)
	}
	codec := ContainerCodec(path)
	if spec.Codec != "" && !strings.EqualFold(spec.Codec, codec) {
		slog.Warn("sink: requested codec not available, encoder follows the container",
			"path", path, "requested", spec.Codec, "codec", codec)
	}
	slog.Info("sink: video writer opened", "path", path, "codec", codec,
		"width", spec.Width, "height", spec.Height, "fps", spec.FPS, "color", spec.Color)
	return &Video{spec: spec, writer: writer}, nil
}

func (v *Video) WriteFrame(frame imagevideo.OutputFrame) error {
	if err := v.spec.check(frame); err != nil {
		return err
	}
	return v.writer.WriteFrame(frame.Image())
}

func (v *Video) Close() error {
	return v.writer.Close()
}

// VideoSummary is what a decoder sees in a written video.
type VideoSummary struct {
	Width  int
	Height int
	FPS    float64
	Frames int
}

// ReadVideo decodes every frame of a video, calling fn for each when it is
// not nil.
func ReadVideo(path string, fn func(index int, frame imagevideo.Frame) error) (VideoSummary, error) {
	reader, err := ffmpego.NewVideoReader(path)
	if err != nil {
		return VideoSummary{}, fmt.Errorf("failed to open video reader %s: %w", path, err)
	}
	defer reader.Close()

	info := reader.VideoInfo()
	summary := VideoSummary{Width: info.Width, Height: info.Height, FPS: info.FPS}
	for {
		img, err := reader.ReadFrame()
		if err == io.EOF {
			return summary, nil
		} else if err != nil {
			return summary, fmt.Errorf("failed to decode frame %d: %w", summary.Frames, err)
		}
		if fn != nil {
			if err := fn(summary.Frames, imagevideo.FrameFromImage(img)); err != nil {
				return summary, err
			}
		}
		summary.Frames++
	}
}
