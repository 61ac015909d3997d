package compilers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/logging"
	"github.com/crytic/solbuild/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompilerEnv is the environment variable which turns the test binary into a fake compiler process.
const fakeCompilerEnv = "SOLBUILD_FAKE_COMPILER"

// TestMain runs the fake compiler instead of the tests when the test binary is executed as a compiler.
func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeCompilerEnv); mode != "" {
		os.Exit(runFakeCompiler(mode, os.Args[1:]))
	}
	os.Exit(m.Run())
}

// TestStandardJSONCompiler verifies the input is written to the process and its output decoded.
func TestStandardJSONCompiler(t *testing.T) {
	t.Setenv(fakeCompilerEnv, "compile")
	compiler := NewStandardJSONCompiler(testExecutable(t), types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "0.8.20+commit.a1b79de6", nil)

	output, raw, err := compiler.Compile(context.Background(), testInput(t, "src/Token.sol", "src/lib/Math.sol"))
	require.NoError(t, err)

	assert.Contains(t, output.Contracts, "src/Token.sol")
	assert.Contains(t, output.Contracts["src/lib/Math.sol"], "Math")
	assert.Len(t, output.Sources, 2)
	assert.Equal(t, "0.8.20", output.Version)
	assert.Equal(t, "0.8.20+commit.a1b79de6", output.LongVersion)
	assert.True(t, json.Valid(raw))
	assert.False(t, output.HasError(types.ErrorFilter{}))
}

// TestStandardJSONCompilerExtraArgs verifies extra arguments are passed after `--standard-json`.
func TestStandardJSONCompilerExtraArgs(t *testing.T) {
	t.Setenv(fakeCompilerEnv, "args")
	compiler := NewStandardJSONCompiler(testExecutable(t), types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "0.8.20", []string{"--base-path", "."})

	output, _, err := compiler.Compile(context.Background(), testInput(t, "src/A.sol"))
	require.NoError(t, err)
	require.Len(t, output.Errors, 1)
	assert.Equal(t, "--standard-json --base-path .", output.Errors[0].Message)
	assert.Equal(t, types.SeverityInfo, output.Errors[0].Severity)
}

// TestStandardJSONCompilerFailures verifies each kind of invocation failure is reported.
func TestStandardJSONCompilerFailures(t *testing.T) {
	tests := []struct {
		mode   string
		kind   InvocationErrorKind
		output string
	}{
		{mode: "exit", kind: InvocationErrorExit, output: "fatal: out of memory"},
		{mode: "garbage", kind: InvocationErrorDecode, output: "not json"},
		{mode: "invalid-utf8", kind: InvocationErrorEncoding},
	}

	for _, test := range tests {
		t.Run(test.mode, func(t *testing.T) {
			t.Setenv(fakeCompilerEnv, test.mode)
			compiler := NewStandardJSONCompiler(testExecutable(t), types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "0.8.20", nil)

			_, _, err := compiler.Compile(context.Background(), testInput(t, "src/A.sol"))
			var invocationErr *InvocationError
			require.True(t, errors.As(err, &invocationErr))
			assert.Equal(t, test.kind, invocationErr.Kind)
			assert.False(t, invocationErr.IsSpawnError())
			assert.Contains(t, string(invocationErr.Output), test.output)
		})
	}
}

// TestStandardJSONCompilerRunsToCompletion ensures cancelling the context does not interrupt a running compiler.
func TestStandardJSONCompilerRunsToCompletion(t *testing.T) {
	t.Setenv(fakeCompilerEnv, "slow")
	compiler := NewStandardJSONCompiler(testExecutable(t), types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "0.8.20", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	timer := time.AfterFunc(100*time.Millisecond, cancel)
	defer timer.Stop()

	output, _, err := compiler.Compile(ctx, testInput(t, "src/A.sol"))
	require.NoError(t, err)
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Contains(t, output.Contracts["src/A.sol"], "A")
}

// TestStandardJSONCompilerSpawnFailure verifies a missing binary is reported as a spawn failure.
func TestStandardJSONCompilerSpawnFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "solc-missing")
	compiler := NewStandardJSONCompiler(missing, types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "0.8.20", nil)

	_, _, err := compiler.Compile(context.Background(), testInput(t, "src/A.sol"))
	var invocationErr *InvocationError
	require.True(t, errors.As(err, &invocationErr))
	assert.True(t, invocationErr.IsSpawnError())
	assert.Contains(t, err.Error(), missing)
}

// TestDiscoverCompilers verifies binaries are identified by the version they report and memoized.
func TestDiscoverCompilers(t *testing.T) {
	t.Setenv(fakeCompilerEnv, "compile")
	binary := testExecutable(t)
	cache, err := OpenVersionCache(filepath.Join(t.TempDir(), "cache", "compilers.db"))
	require.NoError(t, err)
	defer cache.Close()

	binaries := []BinaryConfig{
		{Language: "solidity", Path: binary},
		{Language: types.LanguageSolidity, Path: binary, Args: []string{"--via-ir"}},
	}
	registry, err := DiscoverCompilers(context.Background(), binaries, cache, logging.NewLogger(zerolog.Disabled))
	require.NoError(t, err)

	versions := registry.Versions(types.LanguageSolidity)
	require.Len(t, versions, 1)
	assert.Equal(t, "0.8.20", versions[0].String())

	compiler, ok := registry.Get(types.LanguageSolidity, versions[0])
	require.True(t, ok)
	assert.Equal(t, "0.8.20+commit.a1b79de6.Linux.g++", compiler.LongVersion())

	version, longVersion, ok := cache.Lookup(binary)
	require.True(t, ok)
	assert.Equal(t, "0.8.20", version.String())
	assert.Equal(t, compiler.LongVersion(), longVersion)

	_, err = DiscoverCompilers(context.Background(), []BinaryConfig{{Language: "fortran", Path: binary}}, nil, logging.NewLogger(zerolog.Disabled))
	assert.Error(t, err)
}

// TestRegistryAvailable verifies pinning only restricts Solidity versions.
func TestRegistryAvailable(t *testing.T) {
	registry := NewRegistry()
	for _, v := range []string{"0.8.20", "0.7.6", "0.8.19"} {
		assert.True(t, registry.Add(NewStandardJSONCompiler("solc-"+v, types.LanguageSolidity, mustParseVersion(t, v), v, nil)))
	}
	assert.True(t, registry.Add(NewStandardJSONCompiler("vyper", types.LanguageVyper, mustParseVersion(t, "0.4.0"), "0.4.0", nil)))
	assert.False(t, registry.Add(NewStandardJSONCompiler("solc", types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "0.8.20", nil)))

	available := registry.Available(nil)
	assert.Equal(t, []string{"0.7.6", "0.8.19", "0.8.20"}, versionStrings(available[types.LanguageSolidity]))
	assert.Equal(t, []string{"0.4.0"}, versionStrings(available[types.LanguageVyper]))

	pinned := registry.Available(mustParseVersion(t, "0.8.19"))
	assert.Equal(t, []string{"0.8.19"}, versionStrings(pinned[types.LanguageSolidity]))
	assert.Equal(t, []string{"0.4.0"}, versionStrings(pinned[types.LanguageVyper]))
}

// Helper functions

// runFakeCompiler behaves like a compiler binary in the given mode and returns its exit code.
func runFakeCompiler(mode string, args []string) int {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Println("solc, the solidity compiler commandline interface")
		fmt.Println("Version: 0.8.20+commit.a1b79de6.Linux.g++")
		return 0
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return 1
	}

	switch mode {
	case "exit":
		fmt.Fprintln(os.Stderr, "fatal: out of memory")
		return 1
	case "garbage":
		fmt.Print("not json")
		return 0
	case "invalid-utf8":
		_, _ = os.Stdout.Write([]byte{0xff, 0xfe, 0xfd})
		return 0
	case "slow":
		time.Sleep(time.Second)
	}

	var input types.Input
	if err = json.Unmarshal(data, &input); err != nil {
		return 1
	}

	output := types.NewCompilerOutput()
	if mode == "args" {
		output.Errors = append(output.Errors, types.Diagnostic{Severity: types.SeverityInfo, Message: strings.Join(args, " ")})
	}
	id := uint32(0)
	paths := make([]string, 0, len(input.Sources))
	for p := range input.Sources {
		paths = append(paths, p)
	}
	types.SortPathsByDepth(paths)
	for _, p := range paths {
		name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
		output.Contracts[p] = map[string]types.Contract{name: {ABI: json.RawMessage("[]")}}
		output.Sources[p] = types.SourceUnit{ID: id}
		id++
	}

	encoded, err := json.Marshal(output)
	if err != nil {
		return 1
	}
	_, _ = os.Stdout.Write(encoded)
	return 0
}

func testExecutable(t *testing.T) string {
	executable, err := os.Executable()
	require.NoError(t, err)
	return executable
}

func testInput(t *testing.T, paths ...string) *types.Input {
	set := types.NewVersionedSourceSet(types.LanguageSolidity, mustParseVersion(t, "0.8.20"), "default")
	for _, p := range paths {
		set.Add(types.NewSource(p, []byte("contract X {}")))
	}
	return types.NewInput(set, types.DefaultSettings())
}

func versionStrings(versions []*semver.Version) []string {
	return utils.SliceSelect(versions, func(v *semver.Version) string {
		return v.String()
	})
}

func mustParseVersion(t *testing.T, v string) *semver.Version {
	version, err := semver.NewVersion(v)
	require.NoError(t, err)
	return version
}
