package imagevideo

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration covers unsupported output containers, codec/container
	// mismatches and invalid conversion parameters.
	ErrConfiguration = errors.New("configuration error")

	// ErrPrecondition is wrapped by every structural precondition failure so
	// callers can test for the whole class with errors.Is.
	ErrPrecondition = errors.New("precondition failed")

	ErrDestinationExists = fmt.Errorf("%w: destination already exists", ErrPrecondition)
	ErrSourceMissing     = fmt.Errorf("%w: source not found", ErrPrecondition)
	ErrVariableNotFound  = fmt.Errorf("%w: variable not found", ErrPrecondition)
	ErrNoInputFiles      = fmt.Errorf("%w: no input files matched", ErrPrecondition)

	ErrEmptyWindow = errors.New("no frames in contrast window")
)
