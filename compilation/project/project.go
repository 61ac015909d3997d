// Package project drives a compilation run. A run moves through a fixed sequence of states, each represented by its
// own type and consuming the previous one: Preprocessed, Compiled, ArtifactsWritten and finally the
// ProjectCompileOutput produced once the cache is written.
package project

import (
	"context"
	"runtime"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/depgraph"
	"github.com/crytic/solbuild/compilation/depgraph/parsers"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/config"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/utils"
	"github.com/pkg/errors"
)

// Project describes a configured project together with the compilers available to compile it.
type Project struct {
	// Reporter emits progress events of the runs of the project.
	Reporter *Reporter

	config   *config.ProjectConfig
	paths    types.ProjectPaths
	registry *compilers.Registry
	logger   *logging.Logger
}

// NewProject creates a Project from a validated config. Relative paths of the config are resolved against the
// working directory.
func NewProject(projectConfig *config.ProjectConfig, registry *compilers.Registry, logger *logging.Logger) (*Project, error) {
	if err := projectConfig.Validate(); err != nil {
		return nil, err
	}
	paths, err := projectConfig.Paths.ProjectPaths()
	if err != nil {
		return nil, err
	}
	return &Project{
		Reporter: &Reporter{},
		config:   projectConfig,
		paths:    paths,
		registry: registry,
		logger:   logger.NewSubLogger("module", logging.COMPILATION_SERVICE),
	}, nil
}

// Paths returns the resolved directories of the project.
func (p *Project) Paths() types.ProjectPaths {
	return p.paths
}

// Config returns the config of the project.
func (p *Project) Config() *config.ProjectConfig {
	return p.config
}

// Compile runs a full compilation of the project: it compiles what changed since the last run, writes the artifacts
// and updates the cache.
func (p *Project) Compile(ctx context.Context) (*ProjectCompileOutput, error) {
	preprocessed, err := p.Preprocess(ctx)
	if err != nil {
		return nil, err
	}
	compiled, err := preprocessed.Compile(ctx)
	if err != nil {
		return nil, err
	}
	written, err := compiled.WriteArtifacts()
	if err != nil {
		return nil, err
	}
	return written.WriteCache()
}

// ResolveGraph reads the sources of the project and resolves their dependency graph.
func (p *Project) ResolveGraph() (*depgraph.Graph, error) {
	sources, err := ReadSources(p.paths.Root, p.config.Paths.Sources)
	if err != nil {
		return nil, err
	}
	remappings, err := p.config.Paths.ParsedRemappings()
	if err != nil {
		return nil, err
	}
	return depgraph.Resolve(sources, depgraph.Options{
		Parsers:      parsers.DefaultParsers(),
		Remappings:   remappings,
		LibraryPaths: p.config.Paths.Libraries,
		Loader:       sourceLoader(p.paths.Root),
	})
}

// profiles returns the settings profiles of the project, the default profile first.
func (p *Project) profiles() []depgraph.Profile {
	profiles := []depgraph.Profile{{Name: depgraph.DefaultProfile}}
	for i := range p.config.Compilation.Profiles {
		profile := &p.config.Compilation.Profiles[i]
		profiles = append(profiles, depgraph.Profile{Name: profile.Name, Include: profile.Matches})
	}
	return profiles
}

// profileSettings returns the compiler settings of the named profile.
func (p *Project) profileSettings(name string) types.Settings {
	for _, profile := range p.config.Compilation.Profiles {
		if profile.Name == name {
			return profile.Settings.Clone()
		}
	}
	return p.config.Compilation.Settings.Clone()
}

// profileFingerprints returns the settings fingerprint of every profile. The sparse output globs are part of it, as
// they decide which artifacts a compilation produces.
func (p *Project) profileFingerprints() map[string]string {
	fingerprints := make(map[string]string)
	for _, profile := range p.profiles() {
		fingerprint := p.profileSettings(profile.Name).Fingerprint()
		if sparse := p.config.Compilation.SparseOutput; len(sparse) > 0 {
			fingerprint = utils.Keccak256Hex([]byte(fingerprint + "\n" + strings.Join(sparse, "\n")))
		}
		fingerprints[profile.Name] = fingerprint
	}
	return fingerprints
}

// pinnedVersion returns the pinned compiler version, or nil if none is configured.
func (p *Project) pinnedVersion() (*semver.Version, error) {
	if p.config.Compilation.CompilerVersion == "" {
		return nil, nil
	}
	version, err := semver.NewVersion(p.config.Compilation.CompilerVersion)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid compiler version '%s'", p.config.Compilation.CompilerVersion)
	}
	return version, nil
}

// jobCount returns the maximum number of concurrent compiler invocations.
func (p *Project) jobCount() int {
	if p.config.Compilation.Jobs == 0 {
		return runtime.NumCPU()
	}
	return p.config.Compilation.Jobs
}

// cacheEnabled reports whether the files cache is read and written.
func (p *Project) cacheEnabled() bool {
	return p.config.Compilation.Cache && !p.config.Compilation.NoArtifacts
}

// errorFilter returns the filter deciding which diagnostics fail the run.
func (p *Project) errorFilter() types.ErrorFilter {
	return p.config.Compilation.ErrorFilter()
}
