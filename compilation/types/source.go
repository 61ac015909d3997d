package types

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/utils"
)

// Source describes a single source file of a project, read once per compilation run.
type Source struct {
	// Path is the normalized, forward-slash, project-root-relative path of the file.
	Path string

	// Content is the raw text of the file.
	Content string

	// Fingerprint is the keccak256 hex digest of Content.
	Fingerprint string
}

// NewSource creates a Source for the given path and content, computing its fingerprint.
func NewSource(path string, content []byte) *Source {
	return &Source{
		Path:        utils.NormalizePath(path),
		Content:     string(content),
		Fingerprint: utils.Keccak256Hex(content),
	}
}

// Sources maps normalized source paths to their Source.
type Sources map[string]*Source

// Paths returns the source paths ordered by ascending path depth, then lexicographically.
func (s Sources) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	SortPathsByDepth(paths)
	return paths
}

// SortPathsByDepth sorts paths so shallow paths come before deep ones, breaking ties lexicographically.
func SortPathsByDepth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		di, dj := utils.PathDepth(paths[i]), utils.PathDepth(paths[j])
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
}

// SetKey identifies a VersionedSourceSet.
type SetKey struct {
	Language Language
	Version  string
	Profile  string
}

// String returns a human-readable representation of the key.
func (k SetKey) String() string {
	return fmt.Sprintf("%s %s (%s)", k.Language, k.Version, k.Profile)
}

// VersionedSourceSet is a group of sources compiled together by a single compiler invocation, with one language,
// compiler version and settings profile. A set is closed under imports.
type VersionedSourceSet struct {
	Language Language
	Version  *semver.Version
	Profile  string
	Sources  Sources

	// dirty tracks the files of the set which need recompilation. A nil map means dirtiness was never computed, in
	// which case every file is considered dirty.
	dirty map[string]struct{}
}

// NewVersionedSourceSet creates an empty set for the given language, version and profile.
func NewVersionedSourceSet(language Language, version *semver.Version, profile string) *VersionedSourceSet {
	return &VersionedSourceSet{
		Language: language,
		Version:  version,
		Profile:  profile,
		Sources:  make(Sources),
	}
}

// Key returns the SetKey of the set.
func (s *VersionedSourceSet) Key() SetKey {
	return SetKey{Language: s.Language, Version: s.Version.String(), Profile: s.Profile}
}

// Add adds a source to the set.
func (s *VersionedSourceSet) Add(source *Source) {
	s.Sources[source.Path] = source
}

// Len returns the number of sources in the set.
func (s *VersionedSourceSet) Len() int {
	return len(s.Sources)
}

// MarkDirty flags the given path as requiring recompilation.
func (s *VersionedSourceSet) MarkDirty(path string) {
	if s.dirty == nil {
		s.dirty = make(map[string]struct{})
	}
	s.dirty[path] = struct{}{}
}

// MarkClean records that dirtiness was computed for the set, without flagging any file.
func (s *VersionedSourceSet) MarkClean() {
	if s.dirty == nil {
		s.dirty = make(map[string]struct{})
	}
}

// IsDirty reports whether the given path requires recompilation.
func (s *VersionedSourceSet) IsDirty(path string) bool {
	if s.dirty == nil {
		_, ok := s.Sources[path]
		return ok
	}
	_, ok := s.dirty[path]
	return ok
}

// DirtyFiles returns the dirty paths of the set, ordered by path depth.
func (s *VersionedSourceSet) DirtyFiles() []string {
	files := make([]string, 0)
	for p := range s.Sources {
		if s.IsDirty(p) {
			files = append(files, p)
		}
	}
	SortPathsByDepth(files)
	return files
}
