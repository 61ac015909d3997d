// Package depgraph resolves the import graph of a project's sources and partitions them into sets which can each be
// compiled by a single compiler invocation.
package depgraph

import (
	"errors"
	"path"
	"sort"
	"strings"

	"github.com/crytic/solbuild/compilation/depgraph/parsers"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
	graphlib "github.com/dominikbraun/graph"
)

// Node is a source file in the dependency graph.
type Node struct {
	Path     string
	Language types.Language
	Source   *types.Source

	// Requirement is the compiler version requirement of the file, or nil if it declares none.
	Requirement *VersionRequirement

	// Imports lists the resolved paths of the files this file imports, sorted.
	Imports []string
}

// Remapping rewrites import paths starting with Prefix to start with Target instead.
type Remapping struct {
	Prefix string
	Target string
}

// ParseRemapping parses a remapping of the form `[context:]prefix=target`. The context is ignored.
func ParseRemapping(s string) (Remapping, error) {
	eq := strings.Index(s, "=")
	if eq <= 0 {
		return Remapping{}, errors.New("invalid remapping " + s + ": expected prefix=target")
	}
	prefix := s[:eq]
	if colon := strings.Index(prefix, ":"); colon >= 0 {
		prefix = prefix[colon+1:]
	}
	return Remapping{Prefix: prefix, Target: s[eq+1:]}, nil
}

// Options configures graph resolution.
type Options struct {
	// Parsers maps each language to the parser extracting its imports. Sources of a language without a parser are
	// treated as having no imports and no version requirement.
	Parsers map[types.Language]parsers.Parser

	// Remappings rewrite non-relative import paths before they are looked up.
	Remappings []Remapping

	// LibraryPaths are project-relative directories searched for non-relative imports.
	LibraryPaths []string

	// Loader reads a project-relative path which is not among the provided sources, e.g. a library file. It returns
	// false if no such file exists.
	Loader func(path string) (*types.Source, bool)
}

// Graph is the resolved import graph of a set of sources.
type Graph struct {
	nodes     map[string]*Node
	importers map[string][]string
	graph     graphlib.Graph[string, *Node]

	requiredSets map[string][]string
}

// Resolve parses every source and resolves its imports against the other sources. Imports which refer to no
// provided source are read through the options' Loader, if any.
func Resolve(sources types.Sources, options Options) (*Graph, error) {
	g := &Graph{
		nodes:        make(map[string]*Node, len(sources)),
		importers:    make(map[string][]string),
		graph:        graphlib.New(func(n *Node) string { return n.Path }, graphlib.Directed()),
		requiredSets: make(map[string][]string),
	}

	// Longest prefixes are applied first.
	remappings := append([]Remapping(nil), options.Remappings...)
	sort.SliceStable(remappings, func(i, j int) bool {
		return len(remappings[i].Prefix) > len(remappings[j].Prefix)
	})

	pending := make([]*parsedNode, 0, len(sources))
	for _, p := range sources.Paths() {
		pn, err := g.addSource(sources[p], options.Parsers)
		if err != nil {
			return nil, err
		}
		if pn != nil {
			pending = append(pending, pn)
		}
	}

	// Loaded files are appended to pending, so their imports are resolved as well.
	for i := 0; i < len(pending); i++ {
		pn := pending[i]
		for _, imp := range pn.parsed.Imports {
			lookups := g.importLookups(pn.node, imp, remappings, options.LibraryPaths)
			target, ok := g.findNode(lookups)
			if !ok && options.Loader != nil {
				loaded, err := g.load(lookups, options)
				if err != nil {
					return nil, err
				}
				if loaded != nil {
					pending = append(pending, loaded)
					target, ok = loaded.node.Path, true
				}
			}
			if !ok {
				return nil, &GraphError{
					Kind:    UnresolvedImport,
					Path:    pn.node.Path,
					Details: []string{"import " + strings.Join(imp.Candidates, " or ") + " does not refer to a project source"},
				}
			}
			// A file importing itself adds nothing to its closure.
			if target == pn.node.Path {
				continue
			}
			err := g.graph.AddEdge(pn.node.Path, target)
			if errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				continue
			} else if err != nil {
				return nil, err
			}
			pn.node.Imports = append(pn.node.Imports, target)
			g.importers[target] = append(g.importers[target], pn.node.Path)
		}
		sort.Strings(pn.node.Imports)
	}
	for target := range g.importers {
		sort.Strings(g.importers[target])
	}
	return g, nil
}

// parsedNode binds a node to the imports parsed from its source.
type parsedNode struct {
	node   *Node
	parsed *parsers.ParsedSource
}

// addSource parses a source and adds it to the graph. Sources of unknown languages are skipped and yield nil.
func (g *Graph) addSource(source *types.Source, parserSet map[types.Language]parsers.Parser) (*parsedNode, error) {
	p := source.Path
	language, ok := types.LanguageFromPath(p)
	if !ok {
		return nil, nil
	}

	node := &Node{Path: p, Language: language, Source: source, Imports: make([]string, 0)}
	parsed := &parsers.ParsedSource{}
	if parser, ok := parserSet[language]; ok {
		var err error
		parsed, err = parser.Parse(p, []byte(source.Content))
		if err != nil {
			return nil, &GraphError{Kind: InvalidSource, Path: p, Err: err}
		}
	}
	if parsed.VersionRequirement != "" {
		requirement, err := ParseVersionRequirement(parsed.VersionRequirement)
		if err != nil {
			return nil, &GraphError{Kind: InvalidSource, Path: p, Err: err}
		}
		node.Requirement = requirement
	}

	g.nodes[p] = node
	if err := g.graph.AddVertex(node); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return nil, err
	}
	return &parsedNode{node: node, parsed: parsed}, nil
}

// importLookups returns the paths an import statement may refer to, in order of precedence.
func (g *Graph) importLookups(importer *Node, imp parsers.Import, remappings []Remapping, libraries []string) []string {
	lookups := make([]string, 0)
	add := func(lookup string) {
		lookup = utils.NormalizePath(lookup)
		lookups = append(lookups, lookup)
		if path.Ext(lookup) == "" {
			for _, ext := range importer.Language.Extensions() {
				lookups = append(lookups, lookup+ext)
			}
		}
	}

	for _, candidate := range imp.Candidates {
		if strings.HasPrefix(candidate, "./") || strings.HasPrefix(candidate, "../") {
			add(path.Join(path.Dir(importer.Path), candidate))
			continue
		}
		for _, remapping := range remappings {
			if strings.HasPrefix(candidate, remapping.Prefix) {
				add(remapping.Target + strings.TrimPrefix(candidate, remapping.Prefix))
				break
			}
		}
		add(candidate)
		for _, library := range libraries {
			add(path.Join(library, candidate))
		}
	}
	return lookups
}

// findNode returns the first lookup which is a node of the graph.
func (g *Graph) findNode(lookups []string) (string, bool) {
	for _, lookup := range lookups {
		if _, ok := g.nodes[lookup]; ok {
			return lookup, true
		}
	}
	return "", false
}

// load reads the first lookup the loader knows of and adds it to the graph. Nil is returned if no lookup could be
// loaded.
func (g *Graph) load(lookups []string, options Options) (*parsedNode, error) {
	for _, lookup := range lookups {
		if _, ok := types.LanguageFromPath(lookup); !ok || strings.HasPrefix(lookup, "../") {
			continue
		}
		source, ok := options.Loader(lookup)
		if !ok {
			continue
		}
		return g.addSource(source, options.Parsers)
	}
	return nil, nil
}

// Node returns the node of the given path.
func (g *Graph) Node(p string) (*Node, bool) {
	node, ok := g.nodes[p]
	return node, ok
}

// Len returns the number of files in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Paths returns every path of the graph ordered by ascending path depth.
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.nodes))
	for p := range g.nodes {
		paths = append(paths, p)
	}
	types.SortPathsByDepth(paths)
	return paths
}

// Imports returns the paths directly imported by the given path.
func (g *Graph) Imports(p string) []string {
	if node, ok := g.nodes[p]; ok {
		return node.Imports
	}
	return nil
}

// Importers returns the paths directly importing the given path.
func (g *Graph) Importers(p string) []string {
	return g.importers[p]
}

// RequiredSet returns the given path together with every path reachable from it through imports, ordered by
// ascending path depth.
func (g *Graph) RequiredSet(p string) []string {
	if required, ok := g.requiredSets[p]; ok {
		return required
	}
	if _, ok := g.nodes[p]; !ok {
		return nil
	}

	required := make([]string, 0)
	_ = graphlib.DFS(g.graph, p, func(visited string) bool {
		required = append(required, visited)
		return false
	})
	types.SortPathsByDepth(required)
	g.requiredSets[p] = required
	return required
}

// Languages returns the languages of the files in the graph, sorted.
func (g *Graph) Languages() []types.Language {
	seen := make(map[types.Language]struct{})
	for _, node := range g.nodes {
		seen[node.Language] = struct{}{}
	}
	return utils.SortedKeys(seen)
}

// cycles returns the strongly connected components of the graph with more than one file.
func (g *Graph) cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(g.graph)
	if err != nil {
		return nil, err
	}
	cycles := make([][]string, 0)
	for _, component := range components {
		if len(component) > 1 {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}
	return cycles, nil
}
