package compilers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseVersionOutput verifies versions are extracted from the output of several compilers.
func TestParseVersionOutput(t *testing.T) {
	tests := []struct {
		name        string
		output      string
		version     string
		longVersion string
	}{
		{
			name:        "solc",
			output:      "solc, the solidity compiler commandline interface\nVersion: 0.8.20+commit.a1b79de6.Linux.g++\n",
			version:     "0.8.20",
			longVersion: "0.8.20+commit.a1b79de6.Linux.g++",
		},
		{
			name:        "vyper",
			output:      "0.4.0+commit.e9db8d9\n",
			version:     "0.4.0",
			longVersion: "0.4.0+commit.e9db8d9",
		},
		{
			name:        "resolc",
			output:      "Solidity frontend for the revive compiler version 0.1.0-dev.12+commit.7dd6d40.llvm-18.1.8\n",
			version:     "0.1.0-dev.12",
			longVersion: "0.1.0-dev.12+commit.7dd6d40.llvm-18.1.8",
		},
		{
			name:        "leading v",
			output:      "\n\ncompiler version v0.3.10\n",
			version:     "0.3.10",
			longVersion: "0.3.10",
		},
		{
			name:        "prefers 0.x tokens",
			output:      "toolchain 1.2.3 version 0.8.9+commit.e5eed63a\n",
			version:     "0.8.9",
			longVersion: "0.8.9+commit.e5eed63a",
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			version, longVersion, err := ParseVersionOutput(test.output)
			require.NoError(t, err)
			assert.Equal(t, test.version, version.String())
			assert.Equal(t, test.longVersion, longVersion)
		})
	}

	_, _, err := ParseVersionOutput("usage: compiler [options]\n")
	assert.Error(t, err)
}

// TestVersionCache verifies entries are invalidated when the binary changes.
func TestVersionCache(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "solc")
	require.NoError(t, os.WriteFile(binary, []byte("binary"), 0755))

	cache, err := OpenVersionCache(filepath.Join(dir, "versions.db"))
	require.NoError(t, err)

	_, _, ok := cache.Lookup(binary)
	assert.False(t, ok)

	require.NoError(t, cache.Store(binary, mustParseVersion(t, "0.8.20"), "0.8.20+commit.a1b79de6"))
	version, longVersion, ok := cache.Lookup(binary)
	require.True(t, ok)
	assert.Equal(t, "0.8.20", version.String())
	assert.Equal(t, "0.8.20+commit.a1b79de6", longVersion)

	// Entries survive reopening the database.
	require.NoError(t, cache.Close())
	cache, err = OpenVersionCache(filepath.Join(dir, "versions.db"))
	require.NoError(t, err)
	defer cache.Close()
	_, _, ok = cache.Lookup(binary)
	assert.True(t, ok)

	// Replacing the binary invalidates its entry.
	require.NoError(t, os.WriteFile(binary, []byte("a different binary"), 0755))
	_, _, ok = cache.Lookup(binary)
	assert.False(t, ok)

	_, _, ok = cache.Lookup(filepath.Join(dir, "missing"))
	assert.False(t, ok)
}
