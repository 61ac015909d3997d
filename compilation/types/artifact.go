package types

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver"
)

// ArtifactFile describes a compiled contract materialized (or to be materialized) in the artifacts directory.
type ArtifactFile struct {
	// File is the source path the contract is defined in.
	File string

	// Contract is the name of the contract. Standalone artifacts are named after the source file stem.
	Contract string

	Version *semver.Version
	Profile string
	BuildID string

	// Path is the slash-separated path of the artifact, relative to the artifacts directory.
	Path string

	// Standalone reports whether the artifact was synthesized for a file without contracts.
	Standalone bool

	// Cached reports whether the artifact was reused from a previous run rather than compiled in this one.
	Cached bool

	// Content holds the converted artifact. It is nil for cached artifacts, which are only read from disk on demand.
	Content json.RawMessage
}

// AbsolutePath returns the location of the artifact within the given artifacts directory.
func (a *ArtifactFile) AbsolutePath(artifactsDir string) string {
	return filepath.Join(artifactsDir, filepath.FromSlash(a.Path))
}

// ProjectPaths describes the directories a compilation run reads from and writes to. All paths are absolute.
type ProjectPaths struct {
	// Root is the project root every source path is relative to.
	Root string

	// Artifacts is the directory artifacts are written to.
	Artifacts string

	// BuildInfo is the directory build info documents are written to.
	BuildInfo string

	// Cache is the directory holding the files cache.
	Cache string
}

// BuildInfoPath returns the path of the build info document with the given id.
func (p ProjectPaths) BuildInfoPath(id string) string {
	return filepath.Join(p.BuildInfo, id+".json")
}

// BuildInfoID returns the build id of a build info document path, or false if the path does not name one.
func BuildInfoID(path string) (string, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") || name == ".json" {
		return "", false
	}
	return strings.TrimSuffix(name, ".json"), true
}
