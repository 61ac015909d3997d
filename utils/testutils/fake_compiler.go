package testutils

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/compilers"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
)

// contractDefinitionRegex matches Solidity contract, library and interface definitions.
var contractDefinitionRegex = regexp.MustCompile(`(?m)^\s*(?:abstract\s+)?(contract|library|interface)\s+([A-Za-z_][A-Za-z0-9_]*)`)

// FakeCompiler is an in-process compilers.Compiler. It "compiles" every contract definition it finds in its input
// sources to deterministic bytecode, and records every input it receives. Solidity files without definitions yield
// no contracts, Vyper files yield one contract named after the file.
type FakeCompiler struct {
	language types.Language
	version  *semver.Version

	// Err, when set, is returned by every invocation.
	Err error

	// Diagnostics are reported by every successful invocation.
	Diagnostics []types.Diagnostic

	// Hook, when set, is called at the start of every invocation.
	Hook func(input *types.Input)

	inputsLock sync.Mutex
	inputs     []*types.Input
}

// NewFakeCompiler returns a FakeCompiler of the given language and version. It panics if version is invalid.
func NewFakeCompiler(language types.Language, version string) *FakeCompiler {
	v, err := semver.NewVersion(version)
	if err != nil {
		panic(err)
	}
	return &FakeCompiler{language: language, version: v}
}

// NewFakeRegistry returns a Registry holding the provided compilers.
func NewFakeRegistry(fakeCompilers ...*FakeCompiler) *compilers.Registry {
	registry := compilers.NewRegistry()
	for _, compiler := range fakeCompilers {
		registry.Add(compiler)
	}
	return registry
}

// Language returns the language the compiler compiles.
func (c *FakeCompiler) Language() types.Language {
	return c.language
}

// Version returns the short version of the compiler.
func (c *FakeCompiler) Version() *semver.Version {
	return c.version
}

// LongVersion returns the full version of the compiler.
func (c *FakeCompiler) LongVersion() string {
	return c.version.String() + "+commit.fake"
}

// Invocations returns the number of times the compiler was invoked.
func (c *FakeCompiler) Invocations() int {
	c.inputsLock.Lock()
	defer c.inputsLock.Unlock()
	return len(c.inputs)
}

// Inputs returns the inputs of every invocation, in the order they were received.
func (c *FakeCompiler) Inputs() []*types.Input {
	c.inputsLock.Lock()
	defer c.inputsLock.Unlock()
	return append([]*types.Input(nil), c.inputs...)
}

// Compile produces an output for the provided input.
func (c *FakeCompiler) Compile(ctx context.Context, input *types.Input) (*types.CompilerOutput, []byte, error) {
	c.inputsLock.Lock()
	c.inputs = append(c.inputs, input)
	c.inputsLock.Unlock()

	if c.Hook != nil {
		c.Hook(input)
	}
	if c.Err != nil {
		return nil, nil, c.Err
	}

	output := types.NewCompilerOutput()
	output.Version = c.version.String()
	output.LongVersion = c.LongVersion()
	output.Errors = append(output.Errors, c.Diagnostics...)

	paths := utils.SortedKeys(input.Sources)
	for i, path := range paths {
		names, ast := c.compileSource(path, input.Sources[path].Content)
		output.Sources[path] = types.SourceUnit{ID: uint32(i), AST: ast}
		if !contractsSelected(input.Settings.OutputSelection, path) || len(names) == 0 {
			continue
		}

		output.Contracts[path] = make(map[string]types.Contract, len(names))
		for _, name := range names {
			bytecode := "6080604052" + utils.Keccak256Hex([]byte(fmt.Sprintf("%s:%s:%s", path, name, c.version)))[:16] + "0000"
			output.Contracts[path][name] = types.Contract{
				ABI: json.RawMessage(`[]`),
				EVM: &types.EVM{
					Bytecode:         &types.Bytecode{Object: bytecode},
					DeployedBytecode: &types.Bytecode{Object: bytecode[10:]},
				},
			}
		}
	}

	rawOutput, err := json.Marshal(output)
	if err != nil {
		return nil, nil, err
	}
	return output, rawOutput, nil
}

// compileSource returns the contract names defined in a source and its AST.
func (c *FakeCompiler) compileSource(path string, content string) ([]string, json.RawMessage) {
	if c.language == types.LanguageVyper {
		return []string{utils.GetFileNameWithoutExtension(path)}, json.RawMessage(`{"ast_type":"Module"}`)
	}

	names := make([]string, 0)
	nodes := make([]types.ContractDefinition, 0)
	for _, match := range contractDefinitionRegex.FindAllStringSubmatch(content, -1) {
		names = append(names, match[2])
		nodes = append(nodes, types.ContractDefinition{NodeType: "ContractDefinition", Name: match[2], Kind: types.ContractKind(match[1])})
	}
	sort.Strings(names)

	ast, _ := json.Marshal(map[string]any{"nodeType": "SourceUnit", "absolutePath": path, "nodes": nodes})
	return names, ast
}

// contractsSelected reports whether the output selection requests contract outputs for the path.
func contractsSelected(selection types.OutputSelection, path string) bool {
	for _, key := range []string{path, "*"} {
		if outputs, ok := selection[key]["*"]; ok && len(outputs) > 0 {
			return true
		}
	}
	return false
}
