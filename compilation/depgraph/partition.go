package depgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
)

// DefaultProfile is the name of the profile every file is compiled with.
const DefaultProfile = "default"

// Profile selects the files compiled with a named set of compiler settings.
type Profile struct {
	Name string

	// Include reports whether a file is compiled with this profile. A nil Include selects every file.
	Include func(path string) bool
}

// compatibility holds, for one language, the available versions and which of them each file may use.
type compatibility struct {
	versions   []*semver.Version
	compatible map[string][]bool
}

// Partition groups the files of the graph into sets keyed by language, compiler version and profile. Every set
// contains the required set of each of its files. available lists the installed compiler versions per language;
// profiles are processed in order and the default profile is used when none are provided.
func (g *Graph) Partition(available map[types.Language][]*semver.Version, profiles []Profile) ([]*types.VersionedSourceSet, error) {
	if len(profiles) == 0 {
		profiles = []Profile{{Name: DefaultProfile}}
	}

	sets := make([]*types.VersionedSourceSet, 0)
	for _, language := range g.Languages() {
		compat, err := g.resolveCompatibility(language, available[language])
		if err != nil {
			return nil, err
		}
		for _, profile := range profiles {
			sets = append(sets, g.assignVersions(language, compat, profile)...)
		}
	}
	return sets, nil
}

// resolveCompatibility computes, for every file of the language, the versions satisfying the file and everything it
// imports.
func (g *Graph) resolveCompatibility(language types.Language, available []*semver.Version) (*compatibility, error) {
	versions := append([]*semver.Version(nil), available...)
	sort.Sort(semver.Collection(versions))

	paths := make([]string, 0)
	for _, p := range g.Paths() {
		if g.nodes[p].Language == language {
			paths = append(paths, p)
		}
	}
	if len(paths) > 0 && len(versions) == 0 {
		return nil, &GraphError{Kind: NoCompiler, Path: paths[0], Details: []string{fmt.Sprintf("no %s compiler is installed", language)}}
	}

	own := make(map[string][]bool, len(paths))
	for _, p := range paths {
		own[p] = make([]bool, len(versions))
		for i, v := range versions {
			own[p][i] = g.nodes[p].Requirement.Check(v)
		}
	}

	compat := &compatibility{versions: versions, compatible: make(map[string][]bool, len(paths))}
	for _, p := range paths {
		allowed := make([]bool, len(versions))
		for i := range allowed {
			allowed[i] = true
		}
		for _, required := range g.RequiredSet(p) {
			requiredOwn, ok := own[required]
			if !ok {
				continue
			}
			for i := range allowed {
				allowed[i] = allowed[i] && requiredOwn[i]
			}
		}
		if !anyTrue(allowed) {
			return nil, g.versionError(p, own, versions)
		}
		compat.compatible[p] = allowed
	}
	return compat, nil
}

// versionError explains why no version satisfies the required set of a file.
func (g *Graph) versionError(p string, own map[string][]bool, versions []*semver.Version) error {
	details := make([]string, 0)
	for _, required := range g.RequiredSet(p) {
		if node, ok := g.nodes[required]; ok {
			details = append(details, fmt.Sprintf("%q requires %s", required, node.Requirement))
		}
	}
	details = append(details, "available versions: "+strings.Join(utils.SliceSelect(versions, func(v *semver.Version) string {
		return v.String()
	}), ", "))

	// A cycle whose members cannot agree on a version is reported as such, unless the file itself is unsatisfiable.
	if anyTrue(own[p]) {
		cycles, err := g.cycles()
		if err != nil {
			return err
		}
		for _, cycle := range cycles {
			if !containsPath(cycle, p) {
				continue
			}
			shared := make([]bool, len(versions))
			for i := range shared {
				shared[i] = true
			}
			for _, member := range cycle {
				for i := range shared {
					shared[i] = shared[i] && own[member][i]
				}
			}
			if !anyTrue(shared) {
				cycleDetails := make([]string, 0, len(cycle))
				for i, member := range cycle {
					next := cycle[(i+1)%len(cycle)]
					cycleDetails = append(cycleDetails, fmt.Sprintf("%q (%s) is in an import cycle with %q", member, g.nodes[member].Requirement, next))
				}
				return &GraphError{Kind: CyclicImport, Path: p, Details: append(cycleDetails, details[len(details)-1])}
			}
		}
	}
	return &GraphError{Kind: UnresolvableVersion, Path: p, Details: details}
}

// assignVersions greedily picks the version compatible with the most unassigned files of the profile, preferring
// the newest version on ties, until every file is assigned.
func (g *Graph) assignVersions(language types.Language, compat *compatibility, profile Profile) []*types.VersionedSourceSet {
	unassigned := make([]string, 0)
	for _, p := range g.Paths() {
		if _, ok := compat.compatible[p]; !ok {
			continue
		}
		if profile.Include == nil || profile.Include(p) {
			unassigned = append(unassigned, p)
		}
	}

	setsByVersion := make(map[int]*types.VersionedSourceSet)
	for len(unassigned) > 0 {
		best, bestCount := -1, 0
		for i := len(compat.versions) - 1; i >= 0; i-- {
			count := 0
			for _, p := range unassigned {
				if compat.compatible[p][i] {
					count++
				}
			}
			if count > bestCount {
				best, bestCount = i, count
			}
		}

		set, ok := setsByVersion[best]
		if !ok {
			set = types.NewVersionedSourceSet(language, compat.versions[best], profile.Name)
			setsByVersion[best] = set
		}
		remaining := make([]string, 0, len(unassigned)-bestCount)
		for _, p := range unassigned {
			if !compat.compatible[p][best] {
				remaining = append(remaining, p)
				continue
			}
			for _, required := range g.RequiredSet(p) {
				set.Add(g.nodes[required].Source)
			}
		}
		unassigned = remaining
	}

	indexes := make([]int, 0, len(setsByVersion))
	for i := range setsByVersion {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	sets := make([]*types.VersionedSourceSet, 0, len(indexes))
	for _, i := range indexes {
		sets = append(sets, setsByVersion[i])
	}
	return sets
}

func anyTrue(values []bool) bool {
	for _, v := range values {
		if v {
			return true
		}
	}
	return false
}

func containsPath(paths []string, p string) bool {
	for _, candidate := range paths {
		if candidate == p {
			return true
		}
	}
	return false
}
