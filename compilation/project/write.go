package project

import (
	"github.com/crytic/solbuild/compilation/artifacts"
	"github.com/crytic/solbuild/compilation/cache"
	"github.com/crytic/solbuild/compilation/types"
)

// ArtifactsWritten is the state of a run once its artifacts are converted and, unless disabled, written.
type ArtifactsWritten struct {
	compiled  *Compiled
	hasErrors bool

	// artifacts holds the artifacts converted in this run, with their content. Cached ones are excluded.
	artifacts []*types.ArtifactFile
}

// WriteArtifacts converts the aggregated output into artifacts. When the run has compiler errors, every output is
// written as emitted by the compiler and build infos are not written. When artifact writing is disabled, artifacts are
// only converted in memory.
func (c *Compiled) WriteArtifacts() (*ArtifactsWritten, error) {
	project := c.project
	compilation := project.config.Compilation
	hasErrors := c.output.HasError(project.errorFilter())

	var converter artifacts.Converter
	if hasErrors {
		converter = artifacts.NewRawConverter()
	} else {
		var err error
		converter, err = artifacts.GetConverter(compilation.ArtifactFormat)
		if err != nil {
			return nil, err
		}
	}

	built, err := artifacts.Build(c.output, c.cache.ExistingArtifacts(), converter)
	if err != nil {
		return nil, err
	}
	written := &ArtifactsWritten{compiled: c, hasErrors: hasErrors, artifacts: built}
	if compilation.NoArtifacts {
		return written, nil
	}

	count, err := artifacts.Write(project.paths.Artifacts, built)
	if err != nil {
		return nil, &PersistenceError{Op: "write artifacts", Path: project.paths.Artifacts, Err: err}
	}
	project.logger.Debug("Wrote ", count, " ", converter.Format(), " artifacts to ", project.paths.Artifacts)

	if compilation.BuildInfo && !hasErrors {
		count, err = artifacts.WriteBuildInfos(project.paths, c.output.BuildInfos)
		if err != nil {
			return nil, &PersistenceError{Op: "write build infos", Path: project.paths.BuildInfo, Err: err}
		}
		project.logger.Debug("Wrote ", count, " build infos to ", project.paths.BuildInfo)
	}
	return written, nil
}

// WriteCache merges the artifacts of the run with the cached artifacts of clean files and, unless the cache is
// disabled or the run has compiler errors, writes the files cache. Returns the final output of the run.
func (a *ArtifactsWritten) WriteCache() (*ProjectCompileOutput, error) {
	compiled := a.compiled
	project := compiled.project

	write := project.cacheEnabled() && !a.hasErrors
	result, err := compiled.cache.Consume(compiled.sets, a.artifacts, compiled.output.BuildInfos, write)
	if err != nil {
		return nil, &PersistenceError{Op: "write cache", Path: cache.FilesCachePath(project.paths.Cache), Err: err}
	}

	return &ProjectCompileOutput{
		Output:           compiled.output,
		Artifacts:        result.Artifacts,
		Builds:           result.Builds,
		Invocations:      compiled.invocations,
		InvocationErrors: compiled.invocationErrors,
		filter:           project.errorFilter(),
	}, nil
}
