package types

import (
	"encoding/json"
	"strings"
)

// CompilerOutput describes the standard JSON document a compiler writes to its standard output.
type CompilerOutput struct {
	// Errors lists the diagnostics emitted by the compiler, of every severity.
	Errors []Diagnostic `json:"errors,omitempty"`

	// Contracts maps a source path to a contract name to the compiled contract.
	Contracts map[string]map[string]Contract `json:"contracts,omitempty"`

	// Sources maps a source path to its source id and AST.
	Sources map[string]SourceUnit `json:"sources,omitempty"`

	// Version is the short compiler version, when the compiler reports one.
	Version string `json:"version,omitempty"`

	// LongVersion is the full compiler version, when the compiler reports one.
	LongVersion string `json:"long_version,omitempty"`
}

// NewCompilerOutput returns an empty CompilerOutput.
func NewCompilerOutput() *CompilerOutput {
	return &CompilerOutput{
		Errors:    make([]Diagnostic, 0),
		Contracts: make(map[string]map[string]Contract),
		Sources:   make(map[string]SourceUnit),
	}
}

// HasError reports whether any diagnostic fails the compilation under the given filter.
func (o *CompilerOutput) HasError(filter ErrorFilter) bool {
	for _, d := range o.Errors {
		if filter.IsError(d) {
			return true
		}
	}
	return false
}

// RetainFiles drops contracts and sources of every file not in files. Paths are compared case-insensitively.
func (o *CompilerOutput) RetainFiles(files []string) {
	retained := make(map[string]struct{}, len(files))
	for _, f := range files {
		retained[strings.ToLower(f)] = struct{}{}
	}
	for p := range o.Contracts {
		if _, ok := retained[strings.ToLower(p)]; !ok {
			delete(o.Contracts, p)
		}
	}
	for p := range o.Sources {
		if _, ok := retained[strings.ToLower(p)]; !ok {
			delete(o.Sources, p)
		}
	}
}

// SourceUnit describes the per-file output of a compilation.
type SourceUnit struct {
	// ID is the source id the compiler assigned to the file. Source maps refer to files through it.
	ID uint32 `json:"id"`

	// AST is the abstract syntax tree of the file, if it was requested.
	AST json.RawMessage `json:"ast,omitempty"`
}

// HasAST reports whether the compiler produced an AST for the file.
func (s SourceUnit) HasAST() bool {
	trimmed := strings.TrimSpace(string(s.AST))
	return trimmed != "" && trimmed != "null"
}

// Contract describes a single compiled contract as emitted by the compiler.
type Contract struct {
	ABI                 json.RawMessage   `json:"abi,omitempty"`
	Metadata            json.RawMessage   `json:"metadata,omitempty"`
	UserDoc             json.RawMessage   `json:"userdoc,omitempty"`
	DevDoc              json.RawMessage   `json:"devdoc,omitempty"`
	StorageLayout       json.RawMessage   `json:"storageLayout,omitempty"`
	EVM                 *EVM              `json:"evm,omitempty"`
	IROptimized         string            `json:"irOptimized,omitempty"`
	FactoryDependencies map[string]string `json:"factoryDependencies,omitempty"`
	MissingLibraries    []string          `json:"missingLibraries,omitempty"`

	// Raw holds the contract object exactly as the compiler emitted it.
	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the contract and keeps a copy of the raw object.
func (c *Contract) UnmarshalJSON(data []byte) error {
	type contractAlias Contract
	var decoded contractAlias
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*c = Contract(decoded)
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// EVM describes the EVM specific outputs of a contract.
type EVM struct {
	Bytecode          *Bytecode         `json:"bytecode,omitempty"`
	DeployedBytecode  *Bytecode         `json:"deployedBytecode,omitempty"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers,omitempty"`
	GasEstimates      json.RawMessage   `json:"gasEstimates,omitempty"`
}

// Bytecode describes creation or runtime bytecode of a contract.
type Bytecode struct {
	Object         string          `json:"object"`
	Opcodes        string          `json:"opcodes,omitempty"`
	SourceMap      string          `json:"sourceMap,omitempty"`
	LinkReferences json.RawMessage `json:"linkReferences,omitempty"`
}
