package project

import "fmt"

// PersistenceError describes a failure to write the outputs of a compilation run to disk.
type PersistenceError struct {
	// Op describes what was being written, e.g. "write artifacts".
	Op string

	// Path is the file or directory being written.
	Path string

	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s to %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
