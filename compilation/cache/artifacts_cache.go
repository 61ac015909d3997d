package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crytic/solbuild/compilation/depgraph"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/utils"
	"golang.org/x/exp/slices"
)

// cacheState describes the lifecycle stage of an ArtifactsCache.
type cacheState int

const (
	// stateLoaded indicates the previous cache was read and no set was filtered yet.
	stateLoaded cacheState = iota
	// stateFiltering indicates at least one set was filtered.
	stateFiltering
	// stateConsumed indicates the cache was consumed. It cannot be used anymore.
	stateConsumed
)

// ArtifactsCache decides which files of a run need to be compiled, based on the files cache of the previous run, and
// produces the files cache of the current run.
type ArtifactsCache struct {
	paths  types.ProjectPaths
	graph  *depgraph.Graph
	logger *logging.Logger
	state  cacheState

	// previous is the files cache of the previous run, without the entries of profiles whose settings changed.
	previous *FilesCache

	// fingerprints maps each profile of the run to the fingerprint of its settings.
	fingerprints map[string]string

	// seen maps a path to a version to a profile to whether the file is dirty, for every compilation of the run.
	seen map[string]map[string]map[string]bool

	// existing holds the cached artifacts of clean files.
	existing []*types.ArtifactFile
}

// CompiledSet describes the outcome of the compilation of a filtered set.
type CompiledSet struct {
	Key types.SetKey

	// Dirty lists the dirty files of the set.
	Dirty []string

	// BuildID is the build id of the invocation. It is empty if the invocation failed.
	BuildID string

	// Failed reports whether the compiler invocation failed. Entries of the dirty files of failed sets are dropped.
	Failed bool
}

// Result is the outcome of a run once merged with the cache.
type Result struct {
	// Artifacts holds the compiled artifacts of the run and the cached artifacts of clean files, sorted by path.
	Artifacts []*types.ArtifactFile

	// Builds maps the id of every build referenced by the run, fresh or cached, to its context.
	Builds map[string]*types.BuildContext

	// Cache is the files cache of the run. It was written to disk only if requested.
	Cache *FilesCache
}

// Load reads the files cache of the previous run from the cache directory. A missing, unreadable or outdated cache is
// never fatal: the run starts with an empty cache instead. fingerprints maps each profile of the run to the
// fingerprint of its settings. Entries of profiles whose settings changed are discarded.
func Load(paths types.ProjectPaths, graph *depgraph.Graph, fingerprints map[string]string, logger *logging.Logger) *ArtifactsCache {
	c := Empty(paths, graph, fingerprints, logger)

	cachePath := FilesCachePath(paths.Cache)
	previous, err := ReadFilesCache(cachePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Ignoring the files cache at ", cachePath, ", all files will be recompiled", err)
		}
		return c
	}

	if dropped := previous.dropProfiles(fingerprints); len(dropped) > 0 {
		sort.Strings(dropped)
		logger.Info("Compiler settings changed for profile(s) ", strings.Join(dropped, ", "), ", recompiling their files")
	}
	c.previous = previous
	logger.Debug("Loaded ", previous.EntryCount(), " cache entries from ", cachePath)
	return c
}

// Empty returns an ArtifactsCache which ignores the previous run: every file is dirty.
func Empty(paths types.ProjectPaths, graph *depgraph.Graph, fingerprints map[string]string, logger *logging.Logger) *ArtifactsCache {
	return &ArtifactsCache{
		paths:        paths,
		graph:        graph,
		logger:       logger,
		state:        stateLoaded,
		previous:     NewFilesCache(),
		fingerprints: fingerprints,
		seen:         make(map[string]map[string]map[string]bool),
		existing:     make([]*types.ArtifactFile, 0),
	}
}

// Filter returns the part of the set which needs to be compiled: its dirty files, plus every file they require. The
// dirty files are marked as such on the returned set. A file is dirty if it has no entry for the set's version and
// profile, if its content or imports changed, if one of its artifacts is missing, or if a file it requires is dirty.
// The cached artifacts of clean files are remembered, see ExistingArtifacts.
func (c *ArtifactsCache) Filter(set *types.VersionedSourceSet) *types.VersionedSourceSet {
	if c.state == stateConsumed {
		panic("artifacts cache filtered after being consumed")
	}
	c.state = stateFiltering

	version := set.Version.String()
	own := make(map[string]bool, len(set.Sources))
	for p := range set.Sources {
		own[p] = c.isOwnDirty(p, version, set.Profile)
	}

	filtered := types.NewVersionedSourceSet(set.Language, set.Version, set.Profile)
	filtered.MarkClean()
	for _, p := range set.Sources.Paths() {
		required := c.graph.RequiredSet(p)
		dirty := false
		for _, r := range required {
			if own[r] {
				dirty = true
				break
			}
		}
		c.markSeen(p, version, set.Profile, dirty)

		if !dirty {
			c.existing = append(c.existing, c.cachedArtifacts(p, set)...)
			continue
		}
		filtered.MarkDirty(p)
		for _, r := range required {
			if source, ok := set.Sources[r]; ok {
				filtered.Add(source)
			}
		}
	}

	c.logger.Debug(set.Key(), ": ", len(filtered.DirtyFiles()), " of ", set.Len(), " files need compilation")
	return filtered
}

// isOwnDirty reports whether the file itself changed since its last compilation with the given version and profile,
// regardless of the files it requires.
func (c *ArtifactsCache) isOwnDirty(p string, version string, profile string) bool {
	node, ok := c.graph.Node(p)
	if !ok {
		return true
	}
	entry := c.previous.Entry(p, version, profile)
	if entry == nil || entry.Fingerprint != node.Source.Fingerprint {
		return true
	}
	if !slices.Equal(entry.Imports, node.Imports) {
		return true
	}
	if _, ok := c.previous.Builds[entry.BuildID]; !ok {
		return true
	}
	for _, artifactPath := range entry.Artifacts {
		if _, err := os.Stat(filepath.Join(c.paths.Artifacts, filepath.FromSlash(artifactPath))); err != nil {
			return true
		}
	}
	return false
}

// markSeen records a compilation of the run.
func (c *ArtifactsCache) markSeen(p string, version string, profile string, dirty bool) {
	if _, ok := c.seen[p]; !ok {
		c.seen[p] = make(map[string]map[string]bool)
	}
	if _, ok := c.seen[p][version]; !ok {
		c.seen[p][version] = make(map[string]bool)
	}
	c.seen[p][version][profile] = dirty
}

// cachedArtifacts returns the artifacts recorded for a clean file of the set.
func (c *ArtifactsCache) cachedArtifacts(p string, set *types.VersionedSourceSet) []*types.ArtifactFile {
	entry := c.previous.Entry(p, set.Version.String(), set.Profile)
	artifacts := make([]*types.ArtifactFile, 0, len(entry.Artifacts))
	for _, contract := range utils.SortedKeys(entry.Artifacts) {
		artifacts = append(artifacts, &types.ArtifactFile{
			File:     p,
			Contract: contract,
			Version:  set.Version,
			Profile:  set.Profile,
			BuildID:  entry.BuildID,
			Path:     entry.Artifacts[contract],
			Cached:   true,
		})
	}
	return artifacts
}

// ExistingArtifacts returns the cached artifacts of every clean file filtered so far.
func (c *ArtifactsCache) ExistingArtifacts() []*types.ArtifactFile {
	return c.existing
}

// DirtyCount returns the number of dirty compilations (file, version and profile) filtered so far.
func (c *ArtifactsCache) DirtyCount() int {
	count := 0
	for _, versions := range c.seen {
		for _, profiles := range versions {
			for _, dirty := range profiles {
				if dirty {
					count++
				}
			}
		}
	}
	return count
}

// Consume merges the compiled artifacts with the cached artifacts of clean files and computes the files cache of
// the run. Clean entries are kept, dirty entries are replaced by their new compilation, and entries of files whose
// invocation failed are dropped, as are entries of files, versions or profiles which are not part of the run
// anymore. If write is true, the files cache is written atomically and build info documents no build references are
// deleted. The cache cannot be used after it was consumed.
func (c *ArtifactsCache) Consume(sets []CompiledSet, compiled []*types.ArtifactFile, buildInfos []*types.RawBuildInfo, write bool) (*Result, error) {
	if c.state == stateConsumed {
		return nil, errors.New("artifacts cache was already consumed")
	}
	c.state = stateConsumed

	failed := make(map[types.SetKey]map[string]bool)
	buildIDs := make(map[types.SetKey]string)
	for _, set := range sets {
		if !set.Failed {
			buildIDs[set.Key] = set.BuildID
			continue
		}
		failed[set.Key] = make(map[string]bool, len(set.Dirty))
		for _, p := range set.Dirty {
			failed[set.Key][p] = true
		}
	}

	compiledArtifacts := make(map[string]map[string]map[string]map[string]string)
	for _, artifact := range compiled {
		version := artifact.Version.String()
		if _, ok := compiledArtifacts[artifact.File]; !ok {
			compiledArtifacts[artifact.File] = make(map[string]map[string]map[string]string)
		}
		if _, ok := compiledArtifacts[artifact.File][version]; !ok {
			compiledArtifacts[artifact.File][version] = make(map[string]map[string]string)
		}
		if _, ok := compiledArtifacts[artifact.File][version][artifact.Profile]; !ok {
			compiledArtifacts[artifact.File][version][artifact.Profile] = make(map[string]string)
		}
		compiledArtifacts[artifact.File][version][artifact.Profile][artifact.Contract] = artifact.Path
	}

	builds := make(map[string]*types.BuildContext, len(buildInfos))
	for _, buildInfo := range buildInfos {
		builds[buildInfo.ID] = buildInfo.Context
	}

	next := NewFilesCache()
	for profile, fingerprint := range c.fingerprints {
		next.Profiles[profile] = fingerprint
	}
	for p, versions := range c.seen {
		node, ok := c.graph.Node(p)
		if !ok {
			continue
		}
		for version, profiles := range versions {
			for profile, dirty := range profiles {
				if !dirty {
					entry := c.previous.Entry(p, version, profile)
					next.SetEntry(p, version, profile, entry)
					next.Builds[entry.BuildID] = c.previous.Builds[entry.BuildID]
					continue
				}

				key := types.SetKey{Language: node.Language, Version: version, Profile: profile}
				buildID, compiledOK := buildIDs[key]
				if failed[key][p] || !compiledOK {
					continue
				}
				buildContext, ok := builds[buildID]
				if !ok {
					continue
				}
				artifacts := compiledArtifacts[p][version][profile]
				if artifacts == nil {
					artifacts = make(map[string]string)
				}
				next.SetEntry(p, version, profile, &CacheEntry{
					Fingerprint: node.Source.Fingerprint,
					Imports:     slices.Clone(node.Imports),
					Artifacts:   artifacts,
					BuildID:     buildID,
				})
				next.Builds[buildID] = buildContext
			}
		}
	}

	// Fresh builds are part of the result even when none of their files could be cached.
	for id, buildContext := range next.Builds {
		builds[id] = buildContext
	}

	all := append(slices.Clone(compiled), c.existing...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Path < all[j].Path
	})
	result := &Result{Artifacts: all, Builds: builds, Cache: next}

	if !write {
		return result, nil
	}
	cachePath := FilesCachePath(c.paths.Cache)
	if err := next.WriteToFile(cachePath); err != nil {
		return nil, err
	}
	c.logger.Debug("Wrote ", next.EntryCount(), " cache entries to ", cachePath)
	if err := c.pruneBuildInfos(next); err != nil {
		return nil, err
	}
	return result, nil
}

// pruneBuildInfos deletes the build info documents of builds the files cache does not reference.
func (c *ArtifactsCache) pruneBuildInfos(next *FilesCache) error {
	if c.paths.BuildInfo == "" {
		return nil
	}
	entries, err := os.ReadDir(c.paths.BuildInfo)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := types.BuildInfoID(entry.Name())
		if !ok {
			continue
		}
		if _, referenced := next.Builds[id]; referenced {
			continue
		}
		if err = os.Remove(filepath.Join(c.paths.BuildInfo, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove build info %s: %w", entry.Name(), err)
		}
	}
	return nil
}
