package imagevideo

import "fmt"

// Variable is one N-D array stored in a source file.
type Variable struct {
	Name string
	Dims []int
}

func (v Variable) Size() int {
	if len(v.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// DetectVideoVariable guesses which variable holds the video: the 3-D or
// 4-D variable with the most elements, the first listed on ties.
func DetectVideoVariable(vars []Variable) (string, error) {
	best := -1
	for i, v := range vars {
		if len(v.Dims) != 3 && len(v.Dims) != 4 {
			continue
		}
		if best < 0 || v.Size() > vars[best].Size() {
			best = i
		}
	}
	if best < 0 {
		return "", fmt.Errorf("%w: no 3-D or 4-D variable among %d", ErrVariableNotFound, len(vars))
	}
	return vars[best].Name, nil
}
