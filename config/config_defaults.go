package config

import (
	"github.com/crytic/solbuild/compilation/artifacts"
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/rs/zerolog"
)

// GetDefaultProjectConfig obtains a default configuration for a project: sources under `src`, libraries under `lib`,
// artifacts under `out`, and the `solc` and `vyper` binaries found in PATH.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Root:       ".",
			Sources:    []string{"src"},
			Libraries:  []string{"lib"},
			Artifacts:  "out",
			BuildInfo:  "",
			Cache:      "cache",
			Remappings: []string{},
		},
		Compilation: CompilationConfig{
			Compilers: []compilers.BinaryConfig{
				{Language: types.LanguageSolidity, Path: "solc"},
				{Language: types.LanguageVyper, Path: "vyper"},
			},
			CompilerVersion:   "",
			Jobs:              0,
			Cache:             true,
			NoArtifacts:       false,
			BuildInfo:         false,
			SparseOutput:      []string{},
			IgnoredErrorCodes: []string{},
			IgnoredFilePaths:  []string{},
			SeverityFilter:    types.SeverityError,
			ArtifactFormat:    artifacts.DefaultFormat,
			Settings:          types.DefaultSettings(),
			Profiles:          []ProfileConfig{},
		},
		Logging: LoggingConfig{
			Level:        zerolog.InfoLevel,
			LogDirectory: "",
			NoColor:      false,
		},
	}
}
