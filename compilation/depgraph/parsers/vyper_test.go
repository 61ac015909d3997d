package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVyperParser verifies module imports are converted to paths and builtin modules are skipped.
func TestVyperParser(t *testing.T) {
	source := `# pragma version ^0.4.0
# some other comment

import ethereum.ercs.IERC20 as IERC20
from ethereum.ercs import IERC721
import lib.math
from . import ownable
from .interfaces import IFoo
from .. import utils as u

initializes: ownable

@external
def foo() -> uint256:
    return 1
`
	parsed, err := NewVyperParser().Parse("src/Token.vy", []byte(source))
	require.NoError(t, err)

	assert.Equal(t, "^0.4.0", parsed.VersionRequirement)
	assert.Equal(t, []Import{
		{Candidates: []string{"lib/math"}},
		{Candidates: []string{"./ownable"}},
		{Candidates: []string{"./interfaces/IFoo", "./interfaces"}},
		{Candidates: []string{"../utils"}},
	}, parsed.Imports)
}

// TestVyperParserLegacyPragma ensures the legacy `@version` comment is recognized.
func TestVyperParserLegacyPragma(t *testing.T) {
	parsed, err := NewVyperParser().Parse("src/Old.vy", []byte("# @version 0.3.10\n\n@external\ndef f():\n    pass\n"))
	require.NoError(t, err)

	assert.Equal(t, "0.3.10", parsed.VersionRequirement)
	assert.Empty(t, parsed.Imports)
}

// TestVyperModulePath verifies dotted module names are converted into relative slash paths.
func TestVyperModulePath(t *testing.T) {
	assert.Equal(t, "a/b/c", vyperModulePath("a.b.c"))
	assert.Equal(t, "./a", vyperModulePath(".a"))
	assert.Equal(t, "../a/b", vyperModulePath("..a.b"))
	assert.Equal(t, "../../a", vyperModulePath("...a"))
}

// TestVyperParserReuse ensures a single parser can parse many sources, each with its own native parser.
func TestVyperParserReuse(t *testing.T) {
	parser := NewVyperParser()
	for i := 0; i < 50; i++ {
		parsed, err := parser.Parse("src/Loop.vy", []byte("# pragma version ^0.4.0\nimport lib.math\n"))
		require.NoError(t, err)
		assert.Equal(t, []Import{{Candidates: []string{"lib/math"}}}, parsed.Imports)
	}
}
