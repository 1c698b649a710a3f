package store

import (
	"fmt"
	"path/filepath"

	"tabproc/datatable"
)

// LoadError describes a data file that was recognised but could not be read.
// It matches both datatable.ErrLoad and the underlying cause with errors.Is.
type LoadError struct {
	Path   string
	Format FileFormat
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s file %q: %v", e.Format, filepath.Base(e.Path), e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{datatable.ErrLoad, e.Err}
}

func newLoadError(path string, format FileFormat, err error) *LoadError {
	return &LoadError{Path: path, Format: format, Err: err}
}
