package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSortPathsByDepth verifies shallow paths come first and ties are ordered lexicographically.
func TestSortPathsByDepth(t *testing.T) {
	paths := []string{"src/nested/B.sol", "lib/x/y/C.sol", "src/Z.sol", "A.sol", "src/A.sol"}
	SortPathsByDepth(paths)
	assert.Equal(t, []string{"A.sol", "src/A.sol", "src/Z.sol", "src/nested/B.sol", "lib/x/y/C.sol"}, paths)
}

// TestVersionedSourceSetDirtiness verifies every file is dirty until dirtiness is computed.
func TestVersionedSourceSetDirtiness(t *testing.T) {
	set := NewVersionedSourceSet(LanguageSolidity, mustParseVersion(t, "0.8.20"), "default")
	set.Add(NewSource("./src/A.sol", []byte("contract A {}")))
	set.Add(NewSource("src/B.sol", []byte("contract B {}")))

	assert.Equal(t, "Solidity 0.8.20 (default)", set.Key().String())
	assert.Equal(t, []string{"src/A.sol", "src/B.sol"}, set.DirtyFiles())

	set.MarkClean()
	assert.Empty(t, set.DirtyFiles())

	set.MarkDirty("src/B.sol")
	assert.True(t, set.IsDirty("src/B.sol"))
	assert.False(t, set.IsDirty("src/A.sol"))
	assert.Equal(t, []string{"src/B.sol"}, set.DirtyFiles())
}

// TestLanguageFromPath verifies languages are detected by file extension.
func TestLanguageFromPath(t *testing.T) {
	language, ok := LanguageFromPath("src/Token.sol")
	assert.True(t, ok)
	assert.Equal(t, LanguageSolidity, language)

	language, ok = LanguageFromPath("src/IToken.vyi")
	assert.True(t, ok)
	assert.Equal(t, LanguageVyper, language)

	_, ok = LanguageFromPath("README.md")
	assert.False(t, ok)
}
