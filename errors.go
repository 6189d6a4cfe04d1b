package wheelpack

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrPathNotFound is returned when the root or a traversed path is missing.
	ErrPathNotFound = errors.New("wheelpack: path not found")

	// ErrPermissionDenied is returned when a read or write is blocked.
	ErrPermissionDenied = errors.New("wheelpack: permission denied")

	// ErrIOFailure is returned for any other read or write failure.
	ErrIOFailure = errors.New("wheelpack: i/o failure")

	// ErrInvalidRoot is returned when the root path is not a directory.
	ErrInvalidRoot = errors.New("wheelpack: root is not a directory")

	// ErrInvalidLevel is returned when a DEFLATE level is out of range.
	ErrInvalidLevel = errors.New("wheelpack: invalid compression level")
)

// PathError records a failed walk or pack operation on a path.
//
// Kind is one of the sentinel errors above; Err is the underlying cause.
// errors.Is matches either of them.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both the error kind and the underlying cause.
func (e *PathError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// classify wraps err in a PathError whose Kind matches the failure.
// Errors that are already classified and context errors pass through.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PathError
	if errors.As(err, &pe) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	kind := ErrIOFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrPathNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	}
	return &PathError{Op: op, Path: path, Kind: kind, Err: err}
}
