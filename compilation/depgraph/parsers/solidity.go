package parsers

import (
	"regexp"
	"strings"

	"github.com/crytic/solbuild/compilation/types"
)

var (
	solidityPragmaRegex = regexp.MustCompile(`\bpragma\s+solidity\s+([^;]+);`)
	solidityImportRegex = regexp.MustCompile(`\bimport\s+(?:[^;"']*?\bfrom\s+)?["']([^"']+)["'][^;]*;`)
)

// SolidityParser extracts `import` directives and `pragma solidity` requirements from Solidity sources.
type SolidityParser struct{}

// NewSolidityParser returns a new SolidityParser.
func NewSolidityParser() *SolidityParser {
	return &SolidityParser{}
}

// Language returns types.LanguageSolidity.
func (p *SolidityParser) Language() types.Language {
	return types.LanguageSolidity
}

// Parse extracts the imports and version requirement of a Solidity source. Multiple pragmas must all hold, so they
// are joined into a single requirement.
func (p *SolidityParser) Parse(path string, content []byte) (*ParsedSource, error) {
	code := stripSolidityComments(string(content))
	parsed := &ParsedSource{Imports: make([]Import, 0)}

	pragmas := make([]string, 0)
	for _, match := range solidityPragmaRegex.FindAllStringSubmatch(code, -1) {
		pragmas = append(pragmas, strings.TrimSpace(match[1]))
	}
	parsed.VersionRequirement = strings.Join(pragmas, " ")

	for _, match := range solidityImportRegex.FindAllStringSubmatch(code, -1) {
		parsed.Imports = append(parsed.Imports, Import{Candidates: []string{match[1]}})
	}
	return parsed, nil
}

// stripSolidityComments removes line and block comments, leaving string literals untouched. Newlines are kept so
// offsets into lines stay meaningful.
func stripSolidityComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	var quote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			b.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				b.WriteByte(src[i+1])
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			b.WriteString(strings.Repeat("\n", strings.Count(src[i:i+2+end], "\n")))
			b.WriteByte(' ')
			i += 2 + end + 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
