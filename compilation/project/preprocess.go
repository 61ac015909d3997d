package project

import (
	"context"
	"sort"

	"github.com/crytic/solbuild/compilation/cache"
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/depgraph"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
	"github.com/pkg/errors"
)

// CompileJob describes a single compiler invocation of a run.
type CompileJob struct {
	// Set holds the files sent to the compiler: the dirty files of a VersionedSourceSet and everything they require.
	Set *types.VersionedSourceSet

	Compiler compilers.Compiler

	// Dirty lists the files whose outputs are kept, ordered by path depth.
	Dirty []string

	// Selected lists the dirty files contract outputs are requested for.
	Selected []string

	// Input is the standard JSON document sent to the compiler.
	Input *types.Input
}

// Preprocessed is the state of a run once sources are read, partitioned and filtered through the cache.
type Preprocessed struct {
	project *Project
	graph   *depgraph.Graph
	cache   *cache.ArtifactsCache
	jobs    []*CompileJob
}

// Preprocess reads the sources of the project, resolves their dependency graph and partitions them into
// VersionedSourceSets. Every set is narrowed to the files which need compilation, and one CompileJob is created per
// set left with any. Returns a GraphError if the sources cannot be partitioned, before any compiler is invoked.
func (p *Project) Preprocess(ctx context.Context) (*Preprocessed, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	graph, err := p.ResolveGraph()
	if err != nil {
		return nil, err
	}
	pinned, err := p.pinnedVersion()
	if err != nil {
		return nil, err
	}
	sets, err := graph.Partition(p.registry.Available(pinned), p.profiles())
	if err != nil {
		return nil, err
	}

	fingerprints := p.profileFingerprints()
	var artifactsCache *cache.ArtifactsCache
	if p.cacheEnabled() {
		artifactsCache = cache.Load(p.paths, graph, fingerprints, p.logger)
	} else {
		artifactsCache = cache.Empty(p.paths, graph, fingerprints, p.logger)
	}

	sparseFilter := p.config.Compilation.SparseFilter()
	jobs := make([]*CompileJob, 0, len(sets))
	for _, set := range sets {
		filtered := artifactsCache.Filter(set)
		dirty := filtered.DirtyFiles()
		if len(dirty) == 0 {
			continue
		}

		compiler, ok := p.registry.Get(set.Language, set.Version)
		if !ok {
			return nil, errors.Errorf("no compiler is available for %s", set.Key())
		}
		selected := utils.SliceWhere(dirty, sparseFilter)

		settings := p.profileSettings(set.Profile)
		settings.OutputSelection = settings.OutputSelection.Sparse(selected)
		jobs = append(jobs, &CompileJob{
			Set:      filtered,
			Compiler: compiler,
			Dirty:    dirty,
			Selected: selected,
			Input:    types.NewInput(filtered, settings),
		})
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		a, b := jobs[i].Set, jobs[j].Set
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		if !a.Version.Equal(b.Version) {
			return a.Version.LessThan(b.Version)
		}
		return a.Profile < b.Profile
	})

	p.logger.Info("Resolved ", graph.Len(), " files into ", len(sets), " sets, ", artifactsCache.DirtyCount(), " compilations are out of date")
	return &Preprocessed{
		project: p,
		graph:   graph,
		cache:   artifactsCache,
		jobs:    jobs,
	}, nil
}

// Jobs returns the compiler invocations of the run, in the order they are dispatched.
func (p *Preprocessed) Jobs() []*CompileJob {
	return p.jobs
}

// Graph returns the resolved dependency graph of the run.
func (p *Preprocessed) Graph() *depgraph.Graph {
	return p.graph
}
