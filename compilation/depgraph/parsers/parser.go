// Package parsers extracts the import statements and compiler version requirements of source files. It does not
// build syntax trees of its own: only what the dependency graph needs is recovered.
package parsers

import (
	"github.com/crytic/solbuild/compilation/types"
)

// Import describes one import statement of a source file.
type Import struct {
	// Candidates lists the paths the import may refer to, most likely first. Paths starting with "./" or "../" are
	// relative to the importing file. Paths without an extension may refer to any file of the importing language.
	Candidates []string
}

// ParsedSource holds what was extracted from a single source file.
type ParsedSource struct {
	// Imports lists the import statements of the file, in order of appearance.
	Imports []Import

	// VersionRequirement is the compiler version requirement of the file, or an empty string if it declares none.
	VersionRequirement string
}

// Parser extracts imports and version requirements from source files of one language.
type Parser interface {
	// Language returns the language the parser handles.
	Language() types.Language

	// Parse extracts the imports and version requirement of the provided source.
	Parse(path string, content []byte) (*ParsedSource, error)
}

// DefaultParsers returns a parser for every supported language.
func DefaultParsers() map[types.Language]Parser {
	return map[types.Language]Parser{
		types.LanguageSolidity: NewSolidityParser(),
		types.LanguageVyper:    NewVyperParser(),
	}
}
