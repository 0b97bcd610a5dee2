// Package sink writes 8-bit frames to video containers, multipage TIFF and
// Pixi stacks.
package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gracefulearth/imagevideo"
)

// Spec is the geometry and encoding settings fixed when a sink is opened.
type Spec struct {
	Width  int
	Height int
	Frames int // expected frame count, required by Pixi sinks
	Color  bool
	FPS    float64
	Codec  string // CC4 code, handed to the video encoder opaquely
	Tags   map[string]string

	// Pixi only
	Compression string           // none, flate (default), lzw-lsb, lzw-msb or rle8
	ByteOrder   binary.ByteOrder // native when nil
	Planar      bool             // separated rather than interleaved channels
}

func (s Spec) channels() int {
	if s.Color {
		return 3
	}
	return 1
}

func (s Spec) check(frame imagevideo.OutputFrame) error {
	if frame.Width != s.Width || frame.Height != s.Height || frame.Channels != s.channels() {
		return fmt.Errorf("frame is %dx%dx%d, sink was opened for %dx%dx%d",
			frame.Width, frame.Height, frame.Channels, s.Width, s.Height, s.channels())
	}
	return nil
}

// codecContainers pins codecs that only work in one container.
var codecContainers = map[string]string{
	"THEO": ".ogv",
}

// containerCodecs is the encoder ffmpeg picks for each video container, as
// CC4 codes. The video sink cannot choose another one.
var containerCodecs = map[string]string{
	".avi": "FMP4",
	".mkv": "H264",
	".mp4": "H264",
	".ogv": "THEO",
}

// ContainerCodec reports the CC4 code of the encoder used for a video path,
// empty for paths that are not video.
func ContainerCodec(path string) string {
	return containerCodecs[strings.ToLower(filepath.Ext(path))]
}

// CheckOutput validates an output path before anything is written: the
// suffix must be one of suffixes, the codec must suit the container and the
// destination must not exist.
func CheckOutput(path, codec string, suffixes []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(suffixes, ext) {
		return fmt.Errorf("%w: output filename should have suffix of %v", imagevideo.ErrConfiguration, suffixes)
	}
	if want, ok := codecContainers[strings.ToUpper(codec)]; ok && isVideo(ext) && ext != want {
		return fmt.Errorf("%w: codec %s requires %s, got %s", imagevideo.ErrConfiguration, codec, want, ext)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", imagevideo.ErrDestinationExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check destination: %w", err)
	}
	return nil
}

func isVideo(ext string) bool {
	switch ext {
	case ".avi", ".mkv", ".ogv", ".mp4":
		return true
	}
	return false
}

// Create opens the sink matching the suffix of path.
func Create(path string, spec Spec) (imagevideo.FrameSink, error) {
	if spec.Width <= 0 || spec.Height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", imagevideo.ErrConfiguration, spec.Width, spec.Height)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case isVideo(ext):
		return CreateVideo(path, spec)
	case ext == ".tif" || ext == ".tiff":
		return CreateTIFF(path, spec)
	case ext == ".pixi":
		return CreatePixi(path, spec)
	}
	return nil, fmt.Errorf("%w: unsupported output format %q", imagevideo.ErrConfiguration, ext)
}
