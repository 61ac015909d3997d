// Package compilers provides access to the external compilers invoked during a compilation run. Compilers are
// discovered from configured binaries, identified by the version they report, and invoked through the standard JSON
// protocol.
package compilers

import (
	"context"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/types"
)

// Compiler describes a single compiler binary of a given language and version.
type Compiler interface {
	// Language returns the language the compiler compiles.
	Language() types.Language

	// Version returns the short version of the compiler, used to match version requirements.
	Version() *semver.Version

	// LongVersion returns the full version of the compiler, including build metadata.
	LongVersion() string

	// Compile runs the compiler on the provided input. It returns the decoded output along with the raw output as
	// emitted by the compiler. Failures to invoke the compiler or to decode its output are returned as an
	// *InvocationError, diagnostics reported by the compiler are returned within the output. Once started, an
	// invocation runs to completion even if ctx is cancelled.
	Compile(ctx context.Context, input *types.Input) (*types.CompilerOutput, []byte, error)
}
