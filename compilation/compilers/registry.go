package compilers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/utils"
	"github.com/pkg/errors"
)

// BinaryConfig describes a compiler binary made available to a project.
type BinaryConfig struct {
	// Language is the language the binary compiles.
	Language types.Language `json:"language"`

	// Path is the path of the binary. Relative paths are resolved through the PATH environment variable.
	Path string `json:"path"`

	// Args are extra arguments passed to the binary after `--standard-json`.
	Args []string `json:"args,omitempty"`
}

// Registry holds the compilers available to a compilation run, keyed by language and version.
type Registry struct {
	compilers map[types.Language]map[string]Compiler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		compilers: make(map[types.Language]map[string]Compiler),
	}
}

// Add registers a compiler. If a compiler of the same language and version is already registered, the first one is
// kept and false is returned.
func (r *Registry) Add(compiler Compiler) bool {
	byVersion, ok := r.compilers[compiler.Language()]
	if !ok {
		byVersion = make(map[string]Compiler)
		r.compilers[compiler.Language()] = byVersion
	}
	key := compiler.Version().String()
	if _, exists := byVersion[key]; exists {
		return false
	}
	byVersion[key] = compiler
	return true
}

// Get returns the compiler of the given language and version.
func (r *Registry) Get(language types.Language, version *semver.Version) (Compiler, bool) {
	compiler, ok := r.compilers[language][version.String()]
	return compiler, ok
}

// Versions returns the available versions of the given language in ascending order.
func (r *Registry) Versions(language types.Language) []*semver.Version {
	versions := make([]*semver.Version, 0, len(r.compilers[language]))
	for _, compiler := range r.compilers[language] {
		versions = append(versions, compiler.Version())
	}
	sort.Sort(semver.Collection(versions))
	return versions
}

// Available returns the available versions of every language. If pinned is not nil, only that version is offered
// for Solidity.
func (r *Registry) Available(pinned *semver.Version) map[types.Language][]*semver.Version {
	available := make(map[types.Language][]*semver.Version, len(r.compilers))
	for _, language := range utils.SortedKeys(r.compilers) {
		versions := r.Versions(language)
		if pinned != nil && language == types.LanguageSolidity {
			versions = utils.SliceWhere(versions, func(v *semver.Version) bool {
				return v.Equal(pinned)
			})
		}
		available[language] = versions
	}
	return available
}

// DiscoverCompilers determines the version of every configured binary and returns a Registry holding them. Versions
// are looked up in the provided cache first, which may be nil.
func DiscoverCompilers(ctx context.Context, binaries []BinaryConfig, cache *VersionCache, logger *logging.Logger) (*Registry, error) {
	registry := NewRegistry()
	for _, binary := range binaries {
		language, ok := types.ParseLanguage(string(binary.Language))
		if !ok {
			return nil, fmt.Errorf("unsupported language %q for compiler %s", binary.Language, binary.Path)
		}
		path, err := resolveBinaryPath(binary.Path)
		if err != nil {
			return nil, err
		}

		var version *semver.Version
		var longVersion string
		cached := false
		if cache != nil {
			version, longVersion, cached = cache.Lookup(path)
		}
		if !cached {
			version, longVersion, err = DiscoverVersion(ctx, path)
			if err != nil {
				return nil, err
			}
			if cache != nil {
				if err = cache.Store(path, version, longVersion); err != nil {
					logger.Warn("Failed to cache the version of compiler ", path, err)
				}
			}
		}

		compiler := NewStandardJSONCompiler(path, language, version, longVersion, binary.Args)
		if !registry.Add(compiler) {
			logger.Warn("Ignoring compiler ", path, ": ", language, " ", version.String(), " is already provided by another binary")
			continue
		}
		logger.Debug("Found ", language, " compiler ", longVersion, " at ", path)
	}
	return registry, nil
}

// resolveBinaryPath returns the absolute path of a compiler binary, searching the PATH environment variable for bare
// names.
func resolveBinaryPath(binaryPath string) (string, error) {
	resolved, err := exec.LookPath(binaryPath)
	if err != nil {
		return "", errors.Wrapf(err, "compiler %s not found", binaryPath)
	}
	return filepath.Abs(resolved)
}
