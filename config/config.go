package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/crytic/solbuild/compilation/artifacts"
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/depgraph"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultConfigFileName is the name of the project config file looked up when none is provided.
const DefaultConfigFileName = "solbuild.json"

// ProjectConfig describes the configuration of a project.
type ProjectConfig struct {
	// Paths describes where sources are read from and where outputs are written to.
	Paths PathsConfig `json:"paths"`

	// Compilation describes how the project is compiled.
	Compilation CompilationConfig `json:"compilation"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`
}

// PathsConfig describes the directories of a project. Relative paths are relative to Root, which is itself relative
// to the working directory.
type PathsConfig struct {
	// Root is the project root every source path is relative to.
	Root string `json:"root"`

	// Sources lists the directories whose source files are compiled.
	Sources []string `json:"sources"`

	// Libraries lists the directories non-relative imports are looked up in. Library files are only compiled when
	// imported.
	Libraries []string `json:"libraries"`

	// Artifacts is the directory artifacts are written to.
	Artifacts string `json:"artifacts"`

	// BuildInfo is the directory build info documents are written to.
	BuildInfo string `json:"buildInfo"`

	// Cache is the directory holding the files cache.
	Cache string `json:"cache"`

	// Remappings rewrite import prefixes, in the `[context:]prefix=target` form.
	Remappings []string `json:"remappings"`
}

// CompilationConfig describes how a project is compiled.
type CompilationConfig struct {
	// Compilers lists the compiler binaries available to the project.
	Compilers []compilers.BinaryConfig `json:"compilers"`

	// CompilerVersion pins the Solidity compiler version. Every installed version is used when empty.
	CompilerVersion string `json:"compilerVersion"`

	// Jobs is the maximum number of concurrent compiler invocations. Zero uses one job per CPU.
	Jobs int `json:"jobs"`

	// Cache describes whether files compiled by a previous run are skipped when unchanged.
	Cache bool `json:"cache"`

	// NoArtifacts disables writing artifacts and the cache.
	NoArtifacts bool `json:"noArtifacts"`

	// BuildInfo enables writing a build info document per compiler invocation.
	BuildInfo bool `json:"buildInfo"`

	// SparseOutput lists path globs. When set, contract outputs are only requested for dirty files matching one of
	// them.
	SparseOutput []string `json:"sparseOutput"`

	// IgnoredErrorCodes lists compiler error codes which never fail a compilation.
	IgnoredErrorCodes []string `json:"ignoredErrorCodes"`

	// IgnoredFilePaths lists path prefixes whose diagnostics never fail a compilation.
	IgnoredFilePaths []string `json:"ignoredFilePaths"`

	// SeverityFilter is the lowest diagnostic severity which fails a compilation.
	SeverityFilter types.Severity `json:"severityFilter"`

	// ArtifactFormat is the format artifacts are written in.
	ArtifactFormat string `json:"artifactFormat"`

	// Settings are the compiler settings of the default profile.
	Settings types.Settings `json:"settings"`

	// Profiles lists additional named settings profiles.
	Profiles []ProfileConfig `json:"profiles"`
}

// ProfileConfig describes an additional settings profile. Files matching one of its paths are compiled with its
// settings, in addition to the default profile.
type ProfileConfig struct {
	Name     string         `json:"name"`
	Settings types.Settings `json:"settings"`

	// Paths lists path globs selecting the files compiled with this profile.
	Paths []string `json:"paths"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`

	// NoColor disables colored console output.
	NoColor bool `json:"noColor"`
}

// ReadProjectConfigFromFile reads a ProjectConfig from a provided file path. Files with an `.hcl` extension are read
// as HCL, every other file as JSON. Values absent from the file keep their defaults.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	projectConfig := GetDefaultProjectConfig()
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		if err := decodeHCLFile(path, projectConfig); err != nil {
			return nil, err
		}
		return projectConfig, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse project config %s", path)
	}
	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	if len(p.Paths.Sources) == 0 {
		return errors.Errorf("at least one source directory must be provided")
	}
	if p.Paths.Artifacts == "" || p.Paths.Cache == "" {
		return errors.Errorf("the artifacts and cache directories must be provided")
	}
	for _, remapping := range p.Paths.Remappings {
		if _, err := depgraph.ParseRemapping(remapping); err != nil {
			return errors.WithStack(err)
		}
	}

	if len(p.Compilation.Compilers) == 0 {
		return errors.Errorf("at least one compiler binary must be provided")
	}
	for _, binary := range p.Compilation.Compilers {
		if _, ok := types.ParseLanguage(string(binary.Language)); !ok {
			return errors.Errorf("unknown compiler language '%s'", binary.Language)
		}
		if binary.Path == "" {
			return errors.Errorf("the %s compiler path must be provided", binary.Language)
		}
	}
	if p.Compilation.CompilerVersion != "" {
		if _, err := semver.NewVersion(p.Compilation.CompilerVersion); err != nil {
			return errors.Wrapf(err, "invalid compiler version '%s'", p.Compilation.CompilerVersion)
		}
	}
	if p.Compilation.Jobs < 0 {
		return errors.Errorf("jobs cannot be negative")
	}
	if _, err := types.ParseSeverity(string(p.Compilation.SeverityFilter)); err != nil {
		return errors.WithStack(err)
	}
	if !artifacts.IsSupportedFormat(p.Compilation.ArtifactFormat) {
		return errors.Errorf("unsupported artifact format '%s', expected one of %v", p.Compilation.ArtifactFormat, artifacts.GetSupportedFormats())
	}
	if err := validatePatterns(p.Compilation.SparseOutput); err != nil {
		return errors.Wrap(err, "invalid sparse output")
	}

	names := map[string]bool{depgraph.DefaultProfile: true}
	for _, profile := range p.Compilation.Profiles {
		if profile.Name == "" {
			return errors.Errorf("profile names cannot be empty")
		}
		if names[profile.Name] {
			return errors.Errorf("profile '%s' is defined more than once", profile.Name)
		}
		names[profile.Name] = true
		if err := validatePatterns(profile.Paths); err != nil {
			return errors.Wrapf(err, "invalid paths of profile '%s'", profile.Name)
		}
	}
	return nil
}

// ProjectPaths resolves the configured directories to absolute paths.
func (p *PathsConfig) ProjectPaths() (types.ProjectPaths, error) {
	root, err := filepath.Abs(p.Root)
	if err != nil {
		return types.ProjectPaths{}, errors.WithStack(err)
	}
	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(root, dir)
	}

	paths := types.ProjectPaths{
		Root:      root,
		Artifacts: resolve(p.Artifacts),
		BuildInfo: resolve(p.BuildInfo),
		Cache:     resolve(p.Cache),
	}
	if p.BuildInfo == "" {
		paths.BuildInfo = filepath.Join(paths.Artifacts, "build-info")
	}
	return paths, nil
}

// ParsedRemappings returns the configured remappings.
func (p *PathsConfig) ParsedRemappings() ([]depgraph.Remapping, error) {
	remappings := make([]depgraph.Remapping, 0, len(p.Remappings))
	for _, r := range p.Remappings {
		remapping, err := depgraph.ParseRemapping(r)
		if err != nil {
			return nil, err
		}
		remappings = append(remappings, remapping)
	}
	return remappings, nil
}

// ErrorFilter returns the filter deciding which diagnostics fail a compilation.
func (c *CompilationConfig) ErrorFilter() types.ErrorFilter {
	return types.ErrorFilter{
		IgnoredErrorCodes: c.IgnoredErrorCodes,
		IgnoredFilePaths:  c.IgnoredFilePaths,
		SeverityFilter:    c.SeverityFilter,
	}
}

// SparseFilter returns a function reporting whether contract outputs are requested for a path. Every path is selected
// when no sparse output globs are configured.
func (c *CompilationConfig) SparseFilter() func(path string) bool {
	if len(c.SparseOutput) == 0 {
		return func(string) bool { return true }
	}
	return matcher(c.SparseOutput)
}

// Matches reports whether a path is selected by the profile's path globs. A profile without paths selects nothing.
func (p *ProfileConfig) Matches(path string) bool {
	return matcher(p.Paths)(path)
}

// matcher returns a function reporting whether a path matches one of the globs. A glob also matches every path
// below a matching directory.
func matcher(patterns []string) func(path string) bool {
	return func(path string) bool {
		for _, pattern := range patterns {
			pattern = strings.TrimSuffix(pattern, "/")
			if ok, _ := doublestar.Match(pattern, path); ok {
				return true
			}
			if ok, _ := doublestar.Match(pattern+"/**", path); ok {
				return true
			}
		}
		return false
	}
}

// validatePatterns verifies every glob is well-formed.
func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("malformed glob '%s'", pattern)
		}
	}
	return nil
}
