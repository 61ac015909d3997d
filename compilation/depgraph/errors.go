package depgraph

import (
	"fmt"
	"strings"
)

// GraphErrorKind classifies a GraphError.
type GraphErrorKind string

const (
	// UnresolvableVersion indicates no available compiler version satisfies a file and all of its imports.
	UnresolvableVersion GraphErrorKind = "UnresolvableVersion"
	// CyclicImport indicates files importing each other require disjoint compiler versions.
	CyclicImport GraphErrorKind = "CyclicImport"
	// UnresolvedImport indicates an import statement refers to a file which is not part of the project.
	UnresolvedImport GraphErrorKind = "UnresolvedImport"
	// NoCompiler indicates no compiler is available for the language of a file.
	NoCompiler GraphErrorKind = "NoCompiler"
	// InvalidSource indicates a file could not be parsed, or has an invalid version requirement.
	InvalidSource GraphErrorKind = "InvalidSource"
)

// GraphError describes a failure to resolve the dependency graph of a project or to partition it by compiler version.
// It is raised before any compiler is invoked.
type GraphError struct {
	Kind GraphErrorKind

	// Path is the file the error was raised for.
	Path string

	// Details lists additional lines describing the failure, e.g. the requirements of every file involved.
	Details []string

	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *GraphError) Error() string {
	var msg string
	switch e.Kind {
	case UnresolvableVersion:
		msg = fmt.Sprintf("no available compiler version satisfies %q and all of its imports", e.Path)
	case CyclicImport:
		msg = fmt.Sprintf("files importing each other through %q require incompatible compiler versions", e.Path)
	case UnresolvedImport:
		msg = fmt.Sprintf("failed to resolve an import of %q", e.Path)
	case NoCompiler:
		msg = fmt.Sprintf("no compiler is available to compile %q", e.Path)
	default:
		msg = fmt.Sprintf("invalid source %q", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(e.Details) > 0 {
		msg += "\n  " + strings.Join(e.Details, "\n  ")
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *GraphError) Unwrap() error {
	return e.Err
}
