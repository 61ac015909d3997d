package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/solbuild/compilation/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAssignPaths verifies the naming policy for versions, profiles and collisions.
func TestAssignPaths(t *testing.T) {
	type compilation struct {
		file     string
		contract string
		version  string
		profile  string
	}
	tests := []struct {
		name         string
		compilations []compilation
		cached       []*types.ArtifactFile
		expected     []string
	}{
		{
			name:         "single compilation",
			compilations: []compilation{{"src/A.sol", "A", "0.8.20", "default"}},
			expected:     []string{"A.sol/A.json"},
		},
		{
			name: "several versions",
			compilations: []compilation{
				{"src/A.sol", "A", "0.8.20", "default"},
				{"src/A.sol", "A", "0.7.6", "default"},
			},
			expected: []string{"A.sol/A.0.7.6.json", "A.sol/A.0.8.20.json"},
		},
		{
			name: "several profiles",
			compilations: []compilation{
				{"src/A.sol", "A", "0.8.20", "default"},
				{"src/A.sol", "A", "0.8.20", "optimized"},
			},
			expected: []string{"A.sol/A.default.json", "A.sol/A.optimized.json"},
		},
		{
			name: "case-insensitive collision",
			compilations: []compilation{
				{"src/a/token.sol", "token", "0.8.20", "default"},
				{"src/b/Token.sol", "Token", "0.8.20", "default"},
			},
			expected: []string{"token.sol/token.json", "b/Token.sol/Token.json"},
		},
		{
			name: "parents exhausted",
			compilations: []compilation{
				{"Token.sol", "Token", "0.8.20", "default"},
				{"a/Token.sol", "Token", "0.8.20", "default"},
			},
			cached: []*types.ArtifactFile{
				{File: "lib/a/Token.sol", Contract: "Token", Version: mustParseVersion(t, "0.8.20"), Profile: "default", Path: "a/Token.sol/Token.json", Cached: true},
			},
			expected: []string{"Token.sol/Token.json", "a/Token.sol/Token.1.json"},
		},
		{
			name:         "cached versions count",
			compilations: []compilation{{"src/A.sol", "A", "0.8.20", "default"}},
			cached: []*types.ArtifactFile{
				{File: "src/A.sol", Contract: "A", Version: mustParseVersion(t, "0.7.6"), Profile: "default", Path: "A.sol/A.json", Cached: true},
			},
			expected: []string{"A.sol/A.0.8.20.json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := types.NewAggregatedCompilerOutput()
			for _, c := range tt.compilations {
				compiled := types.NewCompilerOutput()
				compiled.Contracts[c.file] = map[string]types.Contract{c.contract: {}}
				output.Extend(mustParseVersion(t, c.version), &types.RawBuildInfo{ID: "build"}, c.profile, compiled)
			}

			artifacts := AssignPaths(output, tt.cached)
			paths := make([]string, len(artifacts))
			for i, artifact := range artifacts {
				paths[i] = artifact.Path
			}
			assert.Equal(t, tt.expected, paths)
		})
	}
}

// TestAssignPathsUnique verifies distinct compilations always get case-insensitively distinct paths.
func TestAssignPathsUnique(t *testing.T) {
	output := types.NewAggregatedCompilerOutput()
	for _, version := range []string{"0.8.19", "0.8.20"} {
		for _, profile := range []string{"default", "Default"} {
			compiled := types.NewCompilerOutput()
			compiled.Contracts["src/Token.sol"] = map[string]types.Contract{"Token": {}, "TOKEN": {}}
			compiled.Contracts["lib/src/token.sol"] = map[string]types.Contract{"Token": {}}
			output.Extend(mustParseVersion(t, version), &types.RawBuildInfo{ID: "build"}, profile, compiled)
		}
	}

	artifacts := AssignPaths(output, nil)
	require.Len(t, artifacts, 12)
	seen := make(map[string]bool)
	for _, artifact := range artifacts {
		lower := strings.ToLower(artifact.Path)
		assert.False(t, seen[lower], artifact.Path)
		seen[lower] = true
	}
}

// TestStandaloneArtifacts verifies files without contracts get a standalone artifact only if they have an AST.
func TestStandaloneArtifacts(t *testing.T) {
	compiled := types.NewCompilerOutput()
	compiled.Contracts["src/A.sol"] = map[string]types.Contract{"A": {}}
	compiled.Sources["src/A.sol"] = types.SourceUnit{ID: 0, AST: testAST(t, "A")}
	compiled.Sources["src/Types.sol"] = types.SourceUnit{ID: 1, AST: testAST(t)}
	compiled.Sources["src/NoAST.sol"] = types.SourceUnit{ID: 2}

	output := types.NewAggregatedCompilerOutput()
	output.Extend(mustParseVersion(t, "0.8.20"), &types.RawBuildInfo{ID: "build"}, "default", compiled)

	artifacts := AssignPaths(output, nil)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "A.sol/A.json", artifacts[0].Path)
	assert.False(t, artifacts[0].Standalone)
	assert.Equal(t, "Types.sol/Types.json", artifacts[1].Path)
	assert.Equal(t, "Types", artifacts[1].Contract)
	assert.True(t, artifacts[1].Standalone)
}

// TestBuildAndWrite verifies artifacts are converted, written under their paths, and that build infos are only
// written when they carry a document.
func TestBuildAndWrite(t *testing.T) {
	dir := t.TempDir()
	paths := types.ProjectPaths{Root: dir, Artifacts: filepath.Join(dir, "out"), BuildInfo: filepath.Join(dir, "out", "build-info")}

	compiled := types.NewCompilerOutput()
	compiled.Contracts["src/A.sol"] = map[string]types.Contract{"A": {ABI: json.RawMessage("[]")}}
	output := types.NewAggregatedCompilerOutput()
	output.Extend(mustParseVersion(t, "0.8.20"), &types.RawBuildInfo{ID: "build"}, "default", compiled)

	cached := []*types.ArtifactFile{{File: "src/B.sol", Contract: "B", Version: mustParseVersion(t, "0.8.20"), Profile: "default", Path: "B.sol/B.json", Cached: true}}
	artifacts, err := Build(output, cached, NewCompactConverter())
	require.NoError(t, err)
	require.Len(t, artifacts, 1)

	written, err := Write(paths.Artifacts, append(artifacts, cached...))
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	data, err := os.ReadFile(filepath.Join(paths.Artifacts, "A.sol", "A.json"))
	require.NoError(t, err)
	assert.Equal(t, string(artifacts[0].Content), string(data))
	assert.NoFileExists(t, filepath.Join(paths.Artifacts, "B.sol", "B.json"))

	buildInfos := []*types.RawBuildInfo{
		{ID: "full", Build: &types.BuildInfo{ID: "full", Format: types.BuildInfoFormat}},
		{ID: "context-only"},
	}
	written, err = WriteBuildInfos(paths, buildInfos)
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	assert.FileExists(t, paths.BuildInfoPath("full"))
	assert.NoFileExists(t, paths.BuildInfoPath("context-only"))
}

// Helper functions

// testAST returns a Solidity source unit AST defining the given contracts.
func testAST(t *testing.T, contracts ...string) json.RawMessage {
	nodes := []map[string]any{{"nodeType": "PragmaDirective"}}
	for _, name := range contracts {
		nodes = append(nodes, map[string]any{"nodeType": "ContractDefinition", "name": name, "contractKind": "contract"})
	}
	data, err := json.Marshal(map[string]any{"nodeType": "SourceUnit", "nodes": nodes})
	require.NoError(t, err)
	return data
}
