package artifacts

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
)

// pendingArtifact binds an artifact to the compiler output it is converted from. Exactly one of contract and source
// is set.
type pendingArtifact struct {
	artifact *types.ArtifactFile
	contract *types.VersionedContract
	source   *types.VersionedSourceFile
}

// AssignPaths assigns an artifact path to every contract of the output, and to a standalone artifact for every file
// which was compiled but defines no contract. Paths never collide, case-insensitively, with each other or with the
// paths of the cached artifacts. Artifacts are returned in assignment order and have no content yet.
func AssignPaths(output *types.AggregatedCompilerOutput, cached []*types.ArtifactFile) []*types.ArtifactFile {
	pending := assignPaths(output, cached)
	artifacts := make([]*types.ArtifactFile, len(pending))
	for i, p := range pending {
		artifacts[i] = p.artifact
	}
	return artifacts
}

// assignPaths implements AssignPaths, keeping track of the output each artifact comes from.
func assignPaths(output *types.AggregatedCompilerOutput, cached []*types.ArtifactFile) []*pendingArtifact {
	pending := collectArtifacts(output)

	// Count the versions and profiles each (file, contract) is compiled with, cached artifacts included.
	versions := make(map[string]map[string]struct{})
	profiles := make(map[string]map[string]struct{})
	count := func(artifact *types.ArtifactFile) {
		key := artifact.File + "\x00" + artifact.Contract
		if _, ok := versions[key]; !ok {
			versions[key] = make(map[string]struct{})
			profiles[key] = make(map[string]struct{})
		}
		versions[key][artifact.Version.String()] = struct{}{}
		profiles[key][artifact.Profile] = struct{}{}
	}

	taken := make(map[string]struct{}, len(cached)+len(pending))
	for _, artifact := range cached {
		count(artifact)
		taken[strings.ToLower(artifact.Path)] = struct{}{}
	}
	for _, p := range pending {
		count(p.artifact)
	}

	for _, p := range pending {
		artifact := p.artifact
		key := artifact.File + "\x00" + artifact.Contract

		name := artifact.Contract
		if len(versions[key]) > 1 {
			name += "." + artifact.Version.String()
		}
		if len(profiles[key]) > 1 {
			name += "." + artifact.Profile
		}
		artifact.Path = uniquePath(artifact.File, name, taken)
		taken[strings.ToLower(artifact.Path)] = struct{}{}
	}
	return pending
}

// collectArtifacts returns an artifact for every compiled contract and every standalone file of the output, ordered
// by file path depth, file path, name, version and profile.
func collectArtifacts(output *types.AggregatedCompilerOutput) []*pendingArtifact {
	pending := make([]*pendingArtifact, 0)
	for file, contracts := range output.Contracts {
		for name, compilations := range contracts {
			for i := range compilations {
				compilation := &compilations[i]
				pending = append(pending, &pendingArtifact{
					artifact: &types.ArtifactFile{
						File:     file,
						Contract: name,
						Version:  compilation.Version,
						Profile:  compilation.Profile,
						BuildID:  compilation.BuildID,
					},
					contract: compilation,
				})
			}
		}
	}

	for file, compilations := range output.Sources {
		for i := range compilations {
			compilation := &compilations[i]
			if !isStandalone(output, file, compilation) {
				continue
			}
			pending = append(pending, &pendingArtifact{
				artifact: &types.ArtifactFile{
					File:       file,
					Contract:   utils.GetFileNameWithoutExtension(file),
					Version:    compilation.Version,
					Profile:    compilation.Profile,
					BuildID:    compilation.BuildID,
					Standalone: true,
				},
				source: compilation,
			})
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i].artifact, pending[j].artifact
		if a.File != b.File {
			da, db := utils.PathDepth(a.File), utils.PathDepth(b.File)
			if da != db {
				return da < db
			}
			return a.File < b.File
		}
		if a.Contract != b.Contract {
			return a.Contract < b.Contract
		}
		if a.Version.String() != b.Version.String() {
			return a.Version.LessThan(b.Version)
		}
		return a.Profile < b.Profile
	})
	return pending
}

// isStandalone reports whether a compiled file needs a standalone artifact: it has an AST, defines no contract and
// produced no contract output with the same version and profile.
func isStandalone(output *types.AggregatedCompilerOutput, file string, compilation *types.VersionedSourceFile) bool {
	if !compilation.Source.HasAST() || len(compilation.Source.ContractDefinitions()) > 0 {
		return false
	}
	for _, contracts := range output.Contracts[file] {
		for _, contract := range contracts {
			if contract.Profile == compilation.Profile && contract.Version.Equal(compilation.Version) {
				return false
			}
		}
	}
	return true
}

// uniquePath returns the first path of `<file name>/<name>.json` not taken, case-insensitively. On collision, the
// parent directories of the file are prepended one at a time, then a numeric suffix is appended to the name.
func uniquePath(file string, name string, taken map[string]struct{}) string {
	isTaken := func(p string) bool {
		_, ok := taken[strings.ToLower(p)]
		return ok
	}

	dir := path.Base(file)
	candidate := path.Join(dir, name+".json")
	if !isTaken(candidate) {
		return candidate
	}

	parents := strings.Split(path.Dir(file), "/")
	if path.Dir(file) == "." {
		parents = nil
	}
	for i := len(parents) - 1; i >= 0; i-- {
		if parents[i] == "" || parents[i] == ".." {
			continue
		}
		dir = path.Join(parents[i], dir)
		candidate = path.Join(dir, name+".json")
		if !isTaken(candidate) {
			return candidate
		}
	}

	for suffix := 1; ; suffix++ {
		candidate = path.Join(dir, fmt.Sprintf("%s.%d.json", name, suffix))
		if !isTaken(candidate) {
			return candidate
		}
	}
}
