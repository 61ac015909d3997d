package config

import (
	"fmt"

	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
)

// hclConfigFile represents the top-level structure of an HCL project config file for decoding. Every field is
// optional, absent values keep their defaults.
type hclConfigFile struct {
	Paths       *hclPaths       `hcl:"paths,block"`
	Compilation *hclCompilation `hcl:"compilation,block"`
	Logging     *hclLogging     `hcl:"logging,block"`
}

type hclPaths struct {
	Root       *string  `hcl:"root,optional"`
	Sources    []string `hcl:"sources,optional"`
	Libraries  []string `hcl:"libraries,optional"`
	Artifacts  *string  `hcl:"artifacts,optional"`
	BuildInfo  *string  `hcl:"build_info,optional"`
	Cache      *string  `hcl:"cache,optional"`
	Remappings []string `hcl:"remappings,optional"`
}

type hclCompilation struct {
	Compilers         []*hclCompiler `hcl:"compiler,block"`
	CompilerVersion   *string        `hcl:"compiler_version,optional"`
	Jobs              *int           `hcl:"jobs,optional"`
	Cache             *bool          `hcl:"cache,optional"`
	NoArtifacts       *bool          `hcl:"no_artifacts,optional"`
	BuildInfo         *bool          `hcl:"build_info,optional"`
	SparseOutput      []string       `hcl:"sparse_output,optional"`
	IgnoredErrorCodes []string       `hcl:"ignored_error_codes,optional"`
	IgnoredFilePaths  []string       `hcl:"ignored_file_paths,optional"`
	SeverityFilter    *string        `hcl:"severity_filter,optional"`
	ArtifactFormat    *string        `hcl:"artifact_format,optional"`
	Settings          *hclSettings   `hcl:"settings,block"`
	Profiles          []*hclProfile  `hcl:"profile,block"`
}

type hclCompiler struct {
	Language string   `hcl:"language,label"`
	Path     string   `hcl:"path"`
	Args     []string `hcl:"args,optional"`
}

type hclSettings struct {
	Optimizer  *hclOptimizer `hcl:"optimizer,block"`
	EVMVersion *string       `hcl:"evm_version,optional"`
	ViaIR      *bool         `hcl:"via_ir,optional"`
	Remappings []string      `hcl:"remappings,optional"`
	Outputs    []string      `hcl:"outputs,optional"`
}

type hclOptimizer struct {
	Enabled bool `hcl:"enabled"`
	Runs    *int `hcl:"runs,optional"`
}

type hclProfile struct {
	Name     string       `hcl:"name,label"`
	Paths    []string     `hcl:"paths"`
	Settings *hclSettings `hcl:"settings,block"`
}

type hclLogging struct {
	Level        *string `hcl:"level,optional"`
	LogDirectory *string `hcl:"log_directory,optional"`
	NoColor      *bool   `hcl:"no_color,optional"`
}

// decodeHCLFile parses an HCL project config file and applies its values over projectConfig.
func decodeHCLFile(path string, projectConfig *ProjectConfig) error {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsedFile hclConfigFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsedFile)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if parsedFile.Paths != nil {
		parsedFile.Paths.apply(&projectConfig.Paths)
	}
	if parsedFile.Compilation != nil {
		if err := parsedFile.Compilation.apply(&projectConfig.Compilation); err != nil {
			return fmt.Errorf("invalid compilation block in %s: %w", path, err)
		}
	}
	if parsedFile.Logging != nil {
		if err := parsedFile.Logging.apply(&projectConfig.Logging); err != nil {
			return fmt.Errorf("invalid logging block in %s: %w", path, err)
		}
	}
	return nil
}

func (h *hclPaths) apply(c *PathsConfig) {
	setIfPresent(&c.Root, h.Root)
	setIfPresent(&c.Artifacts, h.Artifacts)
	setIfPresent(&c.BuildInfo, h.BuildInfo)
	setIfPresent(&c.Cache, h.Cache)
	if h.Sources != nil {
		c.Sources = h.Sources
	}
	if h.Libraries != nil {
		c.Libraries = h.Libraries
	}
	if h.Remappings != nil {
		c.Remappings = h.Remappings
	}
}

func (h *hclCompilation) apply(c *CompilationConfig) error {
	if len(h.Compilers) > 0 {
		c.Compilers = make([]compilers.BinaryConfig, 0, len(h.Compilers))
		for _, compiler := range h.Compilers {
			language, ok := types.ParseLanguage(compiler.Language)
			if !ok {
				return fmt.Errorf("unknown compiler language %q", compiler.Language)
			}
			c.Compilers = append(c.Compilers, compilers.BinaryConfig{Language: language, Path: compiler.Path, Args: compiler.Args})
		}
	}
	setIfPresent(&c.CompilerVersion, h.CompilerVersion)
	setIfPresent(&c.Jobs, h.Jobs)
	setIfPresent(&c.Cache, h.Cache)
	setIfPresent(&c.NoArtifacts, h.NoArtifacts)
	setIfPresent(&c.BuildInfo, h.BuildInfo)
	setIfPresent(&c.ArtifactFormat, h.ArtifactFormat)
	if h.SeverityFilter != nil {
		c.SeverityFilter = types.Severity(*h.SeverityFilter)
	}
	if h.SparseOutput != nil {
		c.SparseOutput = h.SparseOutput
	}
	if h.IgnoredErrorCodes != nil {
		c.IgnoredErrorCodes = h.IgnoredErrorCodes
	}
	if h.IgnoredFilePaths != nil {
		c.IgnoredFilePaths = h.IgnoredFilePaths
	}
	if h.Settings != nil {
		h.Settings.apply(&c.Settings)
	}
	for _, profile := range h.Profiles {
		settings := c.Settings.Clone()
		if profile.Settings != nil {
			profile.Settings.apply(&settings)
		}
		c.Profiles = append(c.Profiles, ProfileConfig{Name: profile.Name, Settings: settings, Paths: profile.Paths})
	}
	return nil
}

func (h *hclSettings) apply(s *types.Settings) {
	if h.Optimizer != nil {
		optimizer := &types.Optimizer{Enabled: h.Optimizer.Enabled, Runs: 200}
		if s.Optimizer != nil {
			optimizer.Runs = s.Optimizer.Runs
		}
		setIfPresent(&optimizer.Runs, h.Optimizer.Runs)
		s.Optimizer = optimizer
	}
	setIfPresent(&s.EVMVersion, h.EVMVersion)
	setIfPresent(&s.ViaIR, h.ViaIR)
	if h.Remappings != nil {
		s.Remappings = h.Remappings
	}
	if h.Outputs != nil {
		selection := types.DefaultOutputSelection()
		selection["*"]["*"] = h.Outputs
		s.OutputSelection = selection
	}
}

func (h *hclLogging) apply(c *LoggingConfig) error {
	if h.Level != nil {
		level, err := zerolog.ParseLevel(*h.Level)
		if err != nil {
			return err
		}
		c.Level = level
	}
	setIfPresent(&c.LogDirectory, h.LogDirectory)
	setIfPresent(&c.NoColor, h.NoColor)
	return nil
}

// setIfPresent overwrites target with value when value is set.
func setIfPresent[T any](target *T, value *T) {
	if value != nil {
		*target = *value
	}
}
