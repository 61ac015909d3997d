package compilers

import (
	"fmt"
	"strings"
)

// InvocationErrorKind classifies an InvocationError.
type InvocationErrorKind string

const (
	// InvocationErrorSpawn indicates the compiler process could not be started.
	InvocationErrorSpawn InvocationErrorKind = "Spawn"
	// InvocationErrorExit indicates the compiler process exited with a non-zero exit code.
	InvocationErrorExit InvocationErrorKind = "Exit"
	// InvocationErrorEncoding indicates the compiler input could not be encoded, or its output was not valid UTF-8.
	InvocationErrorEncoding InvocationErrorKind = "Encoding"
	// InvocationErrorDecode indicates the compiler output was not a valid standard JSON document.
	InvocationErrorDecode InvocationErrorKind = "Decode"
)

// InvocationError describes a failed compiler invocation.
type InvocationError struct {
	// Path is the path of the compiler binary.
	Path string

	// Version is the version of the compiler.
	Version string

	Kind InvocationErrorKind

	// Output holds what the compiler wrote before failing, if anything.
	Output []byte

	// Err is the underlying error.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvocationError) Error() string {
	var msg string
	switch e.Kind {
	case InvocationErrorSpawn:
		msg = fmt.Sprintf("failed to start compiler %s (%s)", e.Path, e.Version)
	case InvocationErrorExit:
		msg = fmt.Sprintf("compiler %s (%s) exited with an error", e.Path, e.Version)
	case InvocationErrorEncoding:
		msg = fmt.Sprintf("invalid encoding in compiler %s (%s) input or output", e.Path, e.Version)
	default:
		msg = fmt.Sprintf("failed to decode the output of compiler %s (%s)", e.Path, e.Version)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if output := strings.TrimSpace(string(e.Output)); output != "" {
		msg += "\n" + output
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *InvocationError) Unwrap() error {
	return e.Err
}

// IsSpawnError reports whether the error is an InvocationError of kind InvocationErrorSpawn.
func (e *InvocationError) IsSpawnError() bool {
	return e.Kind == InvocationErrorSpawn
}
