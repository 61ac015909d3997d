package depgraph

import (
	"fmt"
	"io"
)

// WriteTree renders the import graph as a tree rooted at every file no other file imports. Files already rendered
// are printed once more with a "(*)" marker instead of their imports. Files only reachable through cycles are
// rendered as roots after the others.
func (g *Graph) WriteTree(w io.Writer) error {
	visited := make(map[string]bool, len(g.nodes))

	roots := make([]string, 0)
	for _, p := range g.Paths() {
		if len(g.importers[p]) == 0 {
			roots = append(roots, p)
		}
	}

	writeRoot := func(p string) error {
		if _, err := fmt.Fprintf(w, "%s %s\n", p, g.nodes[p].Requirement); err != nil {
			return err
		}
		visited[p] = true
		return g.writeChildren(w, p, "", visited)
	}
	for _, root := range roots {
		if err := writeRoot(root); err != nil {
			return err
		}
	}
	for _, p := range g.Paths() {
		if !visited[p] {
			if err := writeRoot(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeChildren renders the imports of p below it, using prefix for the indentation of the current depth.
func (g *Graph) writeChildren(w io.Writer, p string, prefix string, visited map[string]bool) error {
	imports := g.nodes[p].Imports
	for i, child := range imports {
		branch, indent := "├── ", "│   "
		if i == len(imports)-1 {
			branch, indent = "└── ", "    "
		}

		if visited[child] {
			if _, err := fmt.Fprintf(w, "%s%s%s (*)\n", prefix, branch, child); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s%s %s\n", prefix, branch, child, g.nodes[child].Requirement); err != nil {
			return err
		}
		visited[child] = true
		if err := g.writeChildren(w, child, prefix+indent, visited); err != nil {
			return err
		}
	}
	return nil
}
