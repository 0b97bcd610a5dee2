package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gracefulearth/imagevideo"
)

// Open dispatches on the file suffix: .h5, .hdf5 and .he5 open an HDF5
// dataset, .pixi a Pixi layer. An empty key selects the detected video
// variable.
func Open(path, key string) (imagevideo.FrameSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h5", ".hdf5", ".he5":
		return OpenHDF5(path, key)
	case ".pixi":
		return OpenPixi(path, key)
	}
	return nil, fmt.Errorf("%w: unsupported source format %q", imagevideo.ErrConfiguration, filepath.Ext(path))
}

// ListVariables lists the N-D arrays stored in a source file.
func ListVariables(path string) ([]imagevideo.Variable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".h5", ".hdf5", ".he5":
		return ListHDF5Variables(path)
	case ".pixi":
		return ListPixiVariables(path)
	}
	return nil, fmt.Errorf("%w: unsupported source format %q", imagevideo.ErrConfiguration, filepath.Ext(path))
}

// FindVideoVariable names the variable holding the video.
func FindVideoVariable(path string) (string, error) {
	vars, err := ListVariables(path)
	if err != nil {
		return "", err
	}
	name, err := imagevideo.DetectVideoVariable(vars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return name, nil
}
