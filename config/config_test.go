package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultProjectConfigIsValid ensures the default config passes validation.
func TestDefaultProjectConfigIsValid(t *testing.T) {
	projectConfig := GetDefaultProjectConfig()
	require.NoError(t, projectConfig.Validate())
	assert.Equal(t, "standard", projectConfig.Compilation.ArtifactFormat)
	assert.True(t, projectConfig.Compilation.Cache)
	assert.Equal(t, zerolog.InfoLevel, projectConfig.Logging.Level)
}

// TestReadJSONConfig verifies values of a JSON config overlay the defaults.
func TestReadJSONConfig(t *testing.T) {
	path := writeConfigFile(t, "solbuild.json", `{
		"paths": {"sources": ["contracts"], "remappings": ["@oz/=lib/openzeppelin/"]},
		"compilation": {
			"jobs": 4,
			"compilerVersion": "0.8.20",
			"ignoredErrorCodes": ["1878"],
			"severityFilter": "warning",
			"settings": {"optimizer": {"enabled": true, "runs": 1000}, "outputSelection": {"*": {"*": ["abi"]}}},
			"profiles": [{"name": "optimized", "paths": ["contracts/core/**"], "settings": {"viaIR": true}}]
		},
		"logging": {"level": "debug", "noColor": true}
	}`)

	projectConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	require.NoError(t, projectConfig.Validate())

	assert.Equal(t, []string{"contracts"}, projectConfig.Paths.Sources)
	assert.Equal(t, []string{"lib"}, projectConfig.Paths.Libraries)
	assert.Equal(t, "out", projectConfig.Paths.Artifacts)
	assert.Equal(t, 4, projectConfig.Compilation.Jobs)
	assert.Equal(t, "0.8.20", projectConfig.Compilation.CompilerVersion)
	assert.Equal(t, types.SeverityWarning, projectConfig.Compilation.SeverityFilter)
	assert.Equal(t, 1000, projectConfig.Compilation.Settings.Optimizer.Runs)
	assert.Equal(t, []string{"abi"}, projectConfig.Compilation.Settings.OutputSelection["*"]["*"])
	require.Len(t, projectConfig.Compilation.Profiles, 1)
	assert.True(t, projectConfig.Compilation.Profiles[0].Settings.ViaIR)
	assert.Equal(t, zerolog.DebugLevel, projectConfig.Logging.Level)
	assert.True(t, projectConfig.Logging.NoColor)
	assert.Len(t, projectConfig.Compilation.Compilers, 2)
}

// TestReadHCLConfig verifies HCL configs are decoded and overlay the defaults.
func TestReadHCLConfig(t *testing.T) {
	path := writeConfigFile(t, "solbuild.hcl", `
paths {
  sources    = ["contracts"]
  artifacts  = "artifacts"
  remappings = ["@oz/=lib/openzeppelin/"]
}

compilation {
  jobs            = 2
  build_info      = true
  artifact_format = "compact"
  sparse_output   = ["contracts/**"]

  compiler "solidity" {
    path = "/usr/local/bin/solc"
  }
  compiler "vyper" {
    path = "vyper"
    args = ["--experimental-codegen"]
  }

  settings {
    evm_version = "paris"
    optimizer {
      enabled = true
    }
  }

  profile "optimized" {
    paths = ["contracts/core"]
    settings {
      via_ir = true
      optimizer {
        enabled = true
        runs    = 10000
      }
    }
  }
}

logging {
  level    = "warn"
  no_color = true
}
`)

	projectConfig, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	require.NoError(t, projectConfig.Validate())

	assert.Equal(t, []string{"contracts"}, projectConfig.Paths.Sources)
	assert.Equal(t, "artifacts", projectConfig.Paths.Artifacts)
	assert.Equal(t, "cache", projectConfig.Paths.Cache)
	assert.Equal(t, 2, projectConfig.Compilation.Jobs)
	assert.True(t, projectConfig.Compilation.BuildInfo)
	assert.True(t, projectConfig.Compilation.Cache)
	assert.Equal(t, "compact", projectConfig.Compilation.ArtifactFormat)
	assert.Equal(t, []compilers.BinaryConfig{
		{Language: types.LanguageSolidity, Path: "/usr/local/bin/solc"},
		{Language: types.LanguageVyper, Path: "vyper", Args: []string{"--experimental-codegen"}},
	}, projectConfig.Compilation.Compilers)

	settings := projectConfig.Compilation.Settings
	assert.Equal(t, "paris", settings.EVMVersion)
	assert.True(t, settings.Optimizer.Enabled)
	assert.Equal(t, 200, settings.Optimizer.Runs)

	require.Len(t, projectConfig.Compilation.Profiles, 1)
	profile := projectConfig.Compilation.Profiles[0]
	assert.Equal(t, "optimized", profile.Name)
	assert.True(t, profile.Settings.ViaIR)
	assert.Equal(t, "paris", profile.Settings.EVMVersion)
	assert.Equal(t, 10000, profile.Settings.Optimizer.Runs)

	assert.Equal(t, zerolog.WarnLevel, projectConfig.Logging.Level)
	assert.True(t, projectConfig.Logging.NoColor)
}

// TestReadInvalidConfig ensures malformed config files are reported.
func TestReadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "invalid json", file: "solbuild.json", content: `{"paths": `},
		{name: "invalid hcl", file: "solbuild.hcl", content: `paths {`},
		{name: "unknown hcl language", file: "solbuild.hcl", content: "compilation {\n  compiler \"fe\" {\n    path = \"fe\"\n  }\n}\n"},
		{name: "invalid hcl level", file: "solbuild.hcl", content: "logging {\n  level = \"loud\"\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadProjectConfigFromFile(writeConfigFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := ReadProjectConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestValidate verifies invalid configs are rejected.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *ProjectConfig)
	}{
		{name: "no sources", modify: func(c *ProjectConfig) { c.Paths.Sources = nil }},
		{name: "no artifacts directory", modify: func(c *ProjectConfig) { c.Paths.Artifacts = "" }},
		{name: "invalid remapping", modify: func(c *ProjectConfig) { c.Paths.Remappings = []string{"@oz/"} }},
		{name: "no compilers", modify: func(c *ProjectConfig) { c.Compilation.Compilers = nil }},
		{name: "unknown language", modify: func(c *ProjectConfig) {
			c.Compilation.Compilers = []compilers.BinaryConfig{{Language: "Fe", Path: "fe"}}
		}},
		{name: "empty compiler path", modify: func(c *ProjectConfig) {
			c.Compilation.Compilers = []compilers.BinaryConfig{{Language: types.LanguageSolidity}}
		}},
		{name: "invalid compiler version", modify: func(c *ProjectConfig) { c.Compilation.CompilerVersion = "latest" }},
		{name: "negative jobs", modify: func(c *ProjectConfig) { c.Compilation.Jobs = -1 }},
		{name: "unknown severity", modify: func(c *ProjectConfig) { c.Compilation.SeverityFilter = "fatal" }},
		{name: "unknown artifact format", modify: func(c *ProjectConfig) { c.Compilation.ArtifactFormat = "truffle" }},
		{name: "malformed sparse output", modify: func(c *ProjectConfig) { c.Compilation.SparseOutput = []string{"src/[a"} }},
		{name: "default profile redefined", modify: func(c *ProjectConfig) {
			c.Compilation.Profiles = []ProfileConfig{{Name: "default"}}
		}},
		{name: "duplicate profile", modify: func(c *ProjectConfig) {
			c.Compilation.Profiles = []ProfileConfig{{Name: "fast"}, {Name: "fast"}}
		}},
		{name: "unnamed profile", modify: func(c *ProjectConfig) {
			c.Compilation.Profiles = []ProfileConfig{{Paths: []string{"src"}}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			projectConfig := GetDefaultProjectConfig()
			tt.modify(projectConfig)
			assert.Error(t, projectConfig.Validate())
		})
	}
}

// TestWriteToFile verifies a written config is read back with the same values.
func TestWriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	projectConfig := GetDefaultProjectConfig()
	projectConfig.Compilation.Jobs = 3
	projectConfig.Compilation.Profiles = []ProfileConfig{{Name: "optimized", Settings: types.DefaultSettings(), Paths: []string{"src/core"}}}
	require.NoError(t, projectConfig.WriteToFile(path))

	read, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, projectConfig, read)
}

// TestProjectPaths verifies configured directories resolve against the project root.
func TestProjectPaths(t *testing.T) {
	root := t.TempDir()
	pathsConfig := GetDefaultProjectConfig().Paths
	pathsConfig.Root = root

	paths, err := pathsConfig.ProjectPaths()
	require.NoError(t, err)
	assert.Equal(t, root, paths.Root)
	assert.Equal(t, filepath.Join(root, "out"), paths.Artifacts)
	assert.Equal(t, filepath.Join(root, "out", "build-info"), paths.BuildInfo)
	assert.Equal(t, filepath.Join(root, "cache"), paths.Cache)

	pathsConfig.BuildInfo = "build-info"
	paths, err = pathsConfig.ProjectPaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "build-info"), paths.BuildInfo)
}

// TestPathMatching verifies sparse output and profile globs.
func TestPathMatching(t *testing.T) {
	compilation := GetDefaultProjectConfig().Compilation
	assert.True(t, compilation.SparseFilter()("lib/forge-std/Test.sol"))

	compilation.SparseOutput = []string{"src/**/*.sol", "lib/oz/"}
	filter := compilation.SparseFilter()
	assert.True(t, filter("src/A.sol"))
	assert.True(t, filter("src/nested/B.sol"))
	assert.True(t, filter("lib/oz/token/ERC20.sol"))
	assert.False(t, filter("lib/forge-std/Test.sol"))
	assert.False(t, filter("src/Math.vy"))

	profile := ProfileConfig{Name: "core", Paths: []string{"src/core"}}
	assert.True(t, profile.Matches("src/core/Vault.sol"))
	assert.False(t, profile.Matches("src/periphery/Router.sol"))
	assert.False(t, (&ProfileConfig{Name: "empty"}).Matches("src/A.sol"))
}

// Helper functions

func writeConfigFile(t *testing.T, name string, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
