package project

import (
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
)

// ProjectCompileOutput describes the result of a compilation run.
type ProjectCompileOutput struct {
	// Output holds the aggregated output of every compiler invocation of the run. Files which were not recompiled are
	// not part of it.
	Output *types.AggregatedCompilerOutput

	// Artifacts lists the artifacts of the project, compiled and cached, ordered by path.
	Artifacts []*types.ArtifactFile

	// Builds maps the build id of every invocation that ran, or whose outputs were reused, to its BuildContext.
	Builds map[string]*types.BuildContext

	// Invocations is the number of compiler invocations of the run.
	Invocations int

	// InvocationErrors lists the errors of the failed compiler invocations.
	InvocationErrors []error

	filter types.ErrorFilter
}

// HasCompilerErrors reports whether a compiler reported a diagnostic failing the run.
func (o *ProjectCompileOutput) HasCompilerErrors() bool {
	return o.Output.HasError(o.filter)
}

// Failed reports whether the run has compiler errors or failed invocations.
func (o *ProjectCompileOutput) Failed() bool {
	return o.HasCompilerErrors() || len(o.InvocationErrors) > 0
}

// Diagnostics returns the diagnostics of the run which are not ignored.
func (o *ProjectCompileOutput) Diagnostics() []types.Diagnostic {
	return o.Output.Diagnostics(o.filter)
}

// CompiledArtifacts returns the artifacts produced by this run.
func (o *ProjectCompileOutput) CompiledArtifacts() []*types.ArtifactFile {
	return utils.SliceWhere(o.Artifacts, func(a *types.ArtifactFile) bool { return !a.Cached })
}

// CachedArtifacts returns the artifacts reused from a previous run.
func (o *ProjectCompileOutput) CachedArtifacts() []*types.ArtifactFile {
	return utils.SliceWhere(o.Artifacts, func(a *types.ArtifactFile) bool { return a.Cached })
}

// FindArtifact returns the first artifact of the named contract defined in file, or nil if none exists.
func (o *ProjectCompileOutput) FindArtifact(file string, contract string) *types.ArtifactFile {
	for _, artifact := range o.Artifacts {
		if artifact.File == file && artifact.Contract == contract {
			return artifact
		}
	}
	return nil
}
