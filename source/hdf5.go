package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/gracefulearth/imagevideo"
	"gonum.org/v1/hdf5"
)

// HDF5 reads frames from a dataset shaped frames x y x x (gray) or
// frames x y x x x 3 (RGB). Each frame is one hyperslab read converted to
// float64 by the HDF5 library.
type HDF5 struct {
	file    *hdf5.File
	dataset *hdf5.Dataset
	dims    []uint
	shape   imagevideo.FrameShape
}

// OpenHDF5 opens dataset key, or the detected video dataset when key is
// empty.
func OpenHDF5(path, key string) (*HDF5, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", imagevideo.ErrSourceMissing, path)
	}

	file, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("failed to open HDF5 file %s: %w", path, err)
	}

	if key == "" {
		vars, err := listHDF5(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		if key, err = imagevideo.DetectVideoVariable(vars); err != nil {
			file.Close()
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	dataset, err := file.OpenDataset(key)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %q in %s: %v", imagevideo.ErrVariableNotFound, key, path, err)
	}

	space := dataset.Space()
	dims, _, err := space.SimpleExtentDims()
	space.Close()
	if err != nil {
		dataset.Close()
		file.Close()
		return nil, fmt.Errorf("failed to read extent of %q: %w", key, err)
	}

	shape := imagevideo.FrameShape{Channels: 1}
	switch {
	case len(dims) == 3:
	case len(dims) == 4 && dims[3] == 3:
		shape.Channels = 3
	default:
		dataset.Close()
		file.Close()
		return nil, fmt.Errorf("%w: %q has shape %v, want frames x y x x [x 3]", imagevideo.ErrConfiguration, key, dims)
	}
	shape.Frames, shape.Height, shape.Width = int(dims[0]), int(dims[1]), int(dims[2])

	return &HDF5{file: file, dataset: dataset, dims: dims, shape: shape}, nil
}

// ListHDF5Variables lists the root datasets of an HDF5 file.
func ListHDF5Variables(path string) ([]imagevideo.Variable, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", imagevideo.ErrSourceMissing, path)
	}
	file, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("failed to open HDF5 file %s: %w", path, err)
	}
	defer file.Close()
	return listHDF5(file)
}

func listHDF5(file *hdf5.File) ([]imagevideo.Variable, error) {
	n, err := file.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("failed to count HDF5 objects: %w", err)
	}

	var vars []imagevideo.Variable
	for i := uint(0); i < n; i++ {
		kind, err := file.ObjectTypeByIndex(i)
		if err != nil {
			return nil, err
		}
		if kind != hdf5.H5G_DATASET {
			continue
		}
		name, err := file.ObjectNameByIndex(i)
		if err != nil {
			return nil, err
		}

		dataset, err := file.OpenDataset(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset %q: %w", name, err)
		}
		space := dataset.Space()
		dims, _, err := space.SimpleExtentDims()
		space.Close()
		dataset.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read extent of %q: %w", name, err)
		}

		v := imagevideo.Variable{Name: name}
		for _, d := range dims {
			v.Dims = append(v.Dims, int(d))
		}
		vars = append(vars, v)
	}
	return vars, nil
}

func (h *HDF5) Shape() imagevideo.FrameShape {
	return h.shape
}

func (h *HDF5) ReadFrame(i int) (imagevideo.Frame, error) {
	if i < 0 || i >= h.shape.Frames {
		return imagevideo.Frame{}, fmt.Errorf("frame %d out of range [0, %d)", i, h.shape.Frames)
	}

	offset := make([]uint, len(h.dims))
	offset[0] = uint(i)
	count := append([]uint{1}, h.dims[1:]...)

	filespace := h.dataset.Space()
	defer filespace.Close()
	if err := filespace.SelectHyperslab(offset, nil, count, nil); err != nil {
		return imagevideo.Frame{}, fmt.Errorf("failed to select frame %d: %w", i, err)
	}
	memspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return imagevideo.Frame{}, err
	}
	defer memspace.Close()

	frame := imagevideo.NewFrame(h.shape.Width, h.shape.Height, h.shape.Channels)
	if err := h.dataset.ReadSubset(&frame.Pix, memspace, filespace); err != nil {
		return imagevideo.Frame{}, fmt.Errorf("failed to read frame %d: %w", i, err)
	}
	return frame, nil
}

func (h *HDF5) Close() error {
	return errors.Join(h.dataset.Close(), h.file.Close())
}
