package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{input: "./src/A.sol", expected: "src/A.sol"},
		{input: "src//lib/../A.sol", expected: "src/A.sol"},
		{input: "A.sol", expected: "A.sol"},
		{input: ".", expected: "."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePath(tt.input))
		})
	}
}

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	root := filepath.Join("project", "root")
	assert.Equal(t, "src/A.sol", RelativeSlashPath(root, filepath.Join(root, "src", "A.sol")))

	assert.Equal(t, 0, PathDepth("."))
	assert.Equal(t, 1, PathDepth("A.sol"))
	assert.Equal(t, 3, PathDepth("./lib/oz/Token.sol"))

	assert.True(t, HasPathPrefix("lib/oz/Token.sol", "lib"))
	assert.True(t, HasPathPrefix("lib/oz/Token.sol", "lib/oz/"))
	assert.True(t, HasPathPrefix("lib", "lib"))
	assert.True(t, HasPathPrefix("src/A.sol", "."))
	assert.False(t, HasPathPrefix("library/A.sol", "lib"))
}

func TestSliceHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{2, 4}, SliceWhere([]int{1, 2, 3, 4}, func(x int) bool { return x%2 == 0 }))
	assert.Equal(t, []string{"1", "2"}, SliceSelect([]int{1, 2}, func(x int) string { return string(rune('0' + x)) }))
	assert.Equal(t, []string{"b", "a", "c"}, SliceUnique([]string{"b", "a", "b", "c", "a"}))
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}

func TestKeccak256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470", Keccak256Hex(nil))
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "cache", "files.json")
	require.NoError(t, WriteFileAtomic(filePath, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(filePath, []byte("second"), 0644))

	content, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	// No temporary file is left behind
	entries, err := os.ReadDir(filepath.Dir(filePath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCopyAndDeleteDirectory(t *testing.T) {
	t.Parallel()

	source := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(source, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "A.sol"), []byte("contract A {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(source, "nested", "B.sol"), []byte("contract B {}"), 0644))

	flatTarget := filepath.Join(t.TempDir(), "flat")
	require.NoError(t, CopyDirectory(source, flatTarget, false))
	assert.True(t, FileExists(filepath.Join(flatTarget, "A.sol")))
	assert.False(t, IsDirectory(filepath.Join(flatTarget, "nested")))

	target := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyDirectory(source, target, true))
	assert.True(t, FileExists(filepath.Join(target, "nested", "B.sol")))
	assert.True(t, IsDirectory(target))
	assert.False(t, FileExists(target))

	require.NoError(t, DeleteDirectory(target))
	assert.False(t, IsDirectory(target))

	// Deleting a missing directory is not an error, deleting a file is
	require.NoError(t, DeleteDirectory(target))
	assert.Error(t, DeleteDirectory(filepath.Join(source, "A.sol")))
}

func TestGetFileNameWithoutExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Token", GetFileNameWithoutExtension(filepath.Join("src", "Token.sol")))
	assert.Equal(t, "module", GetFileNameWithoutExtension("module.vyi"))
}
