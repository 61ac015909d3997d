package parsers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/crytic/solbuild/compilation/types"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// vyperPragmaRegex matches `# pragma version <req>` and the legacy `# @version <req>` comments.
var vyperPragmaRegex = regexp.MustCompile(`^#\s*(?:pragma\s+version|@version)\s+(.+?)\s*$`)

// vyperBuiltinModules lists module prefixes which ship with the compiler and have no source file in a project.
var vyperBuiltinModules = []string{"ethereum", "vyper"}

// VyperParser extracts imports and version pragmas from Vyper sources. Vyper shares Python's syntax, so sources are
// parsed with the tree-sitter Python grammar.
type VyperParser struct{}

// NewVyperParser returns a new VyperParser.
func NewVyperParser() *VyperParser {
	return &VyperParser{}
}

// Language returns types.LanguageVyper.
func (p *VyperParser) Language() types.Language {
	return types.LanguageVyper
}

// Parse extracts the imports and version requirement of a Vyper source.
func (p *VyperParser) Parse(path string, content []byte) (*ParsedSource, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()

	parsed := &ParsedSource{Imports: make([]Import, 0)}
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "comment":
			if parsed.VersionRequirement == "" {
				if match := vyperPragmaRegex.FindStringSubmatch(strings.TrimSpace(n.Content(content))); match != nil {
					parsed.VersionRequirement = match[1]
				}
			}
			return
		case "import_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				if module := vyperModuleName(n.NamedChild(i), content); module != "" && !isVyperBuiltin(module) {
					parsed.Imports = append(parsed.Imports, Import{Candidates: []string{vyperModulePath(module)}})
				}
			}
			return
		case "import_from_statement":
			parsed.Imports = append(parsed.Imports, vyperFromImports(n, content)...)
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return parsed, nil
}

// vyperFromImports handles `from <module> import a, b as c`. Each imported name may be a module of its own or a
// member of <module>, so both are offered as candidates.
func vyperFromImports(n *sitter.Node, content []byte) []Import {
	moduleNode := n.ChildByFieldName("module_name")
	if moduleNode == nil {
		return nil
	}
	module := strings.TrimSpace(moduleNode.Content(content))
	if isVyperBuiltin(module) {
		return nil
	}

	imports := make([]Import, 0)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.StartByte() == moduleNode.StartByte() {
			continue
		}
		name := vyperModuleName(child, content)
		if name == "" {
			continue
		}

		candidates := []string{vyperModulePath(joinVyperModule(module, name))}
		if strings.Trim(module, ".") != "" {
			candidates = append(candidates, vyperModulePath(module))
		}
		imports = append(imports, Import{Candidates: candidates})
	}
	return imports
}

// vyperModuleName returns the module name of a dotted name or aliased import node.
func vyperModuleName(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "dotted_name", "identifier", "relative_import":
		return strings.TrimSpace(n.Content(content))
	case "aliased_import":
		if name := n.ChildByFieldName("name"); name != nil {
			return strings.TrimSpace(name.Content(content))
		}
	}
	return ""
}

// joinVyperModule appends a name to a module, respecting relative prefixes ("." + "x" is ".x", "a" + "x" is "a.x").
func joinVyperModule(module string, name string) string {
	if strings.Trim(module, ".") == "" {
		return module + name
	}
	return module + "." + name
}

// vyperModulePath converts a dotted module name into a slash path without extension. Leading dots become "./" and
// "../" segments.
func vyperModulePath(module string) string {
	dots := len(module) - len(strings.TrimLeft(module, "."))
	rest := strings.ReplaceAll(strings.TrimLeft(module, "."), ".", "/")
	switch dots {
	case 0:
		return rest
	case 1:
		return "./" + rest
	default:
		return strings.Repeat("../", dots-1) + rest
	}
}

func isVyperBuiltin(module string) bool {
	for _, builtin := range vyperBuiltinModules {
		if module == builtin || strings.HasPrefix(module, builtin+".") {
			return true
		}
	}
	return false
}
