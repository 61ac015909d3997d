package types

import (
	"encoding/json"

	"github.com/crytic/solbuild/utils"
	"golang.org/x/exp/slices"
)

// Input is the standard JSON document written to a compiler's standard input.
type Input struct {
	Language Language               `json:"language"`
	Sources  map[string]InputSource `json:"sources"`
	Settings Settings               `json:"settings"`
}

// InputSource holds the content of a single source in an Input.
type InputSource struct {
	Content string `json:"content"`
}

// NewInput creates an Input for the sources of a set, with the given settings.
func NewInput(set *VersionedSourceSet, settings Settings) *Input {
	input := &Input{
		Language: set.Language,
		Sources:  make(map[string]InputSource, len(set.Sources)),
		Settings: settings.ForLanguage(set.Language),
	}
	for p, source := range set.Sources {
		input.Sources[p] = InputSource{Content: source.Content}
	}
	return input
}

// Optimizer describes the optimizer settings of a Solidity compilation.
type Optimizer struct {
	Enabled bool `json:"enabled"`
	Runs    int  `json:"runs"`
}

// OutputSelection maps a file (or "*") to a contract name (or "*", or "" for file level outputs) to requested outputs.
type OutputSelection map[string]map[string][]string

// DefaultContractOutputs are the per-contract outputs requested unless configured otherwise.
var DefaultContractOutputs = []string{
	"abi",
	"evm.bytecode",
	"evm.deployedBytecode",
	"evm.methodIdentifiers",
	"metadata",
}

// DefaultOutputSelection returns the output selection requested unless configured otherwise.
func DefaultOutputSelection() OutputSelection {
	return OutputSelection{
		"*": {
			"*": slices.Clone(DefaultContractOutputs),
			"":  {"ast"},
		},
	}
}

// Sparse returns a selection requesting contract outputs only for the provided files. File level outputs are still
// requested for every file so source ids and ASTs are always available.
func (o OutputSelection) Sparse(files []string) OutputSelection {
	contractOutputs := DefaultContractOutputs
	fileOutputs := []string{"ast"}
	if wildcard, ok := o["*"]; ok {
		if outputs, ok := wildcard["*"]; ok {
			contractOutputs = outputs
		}
		if outputs, ok := wildcard[""]; ok && len(outputs) > 0 {
			fileOutputs = outputs
		}
	}

	sparse := OutputSelection{"*": {"": slices.Clone(fileOutputs)}}
	for _, file := range files {
		sparse[file] = map[string][]string{
			"*": slices.Clone(contractOutputs),
			"":  slices.Clone(fileOutputs),
		}
	}
	return sparse
}

// Settings describes the "settings" object of a standard JSON compiler input.
type Settings struct {
	Optimizer       *Optimizer                   `json:"optimizer,omitempty"`
	OutputSelection OutputSelection              `json:"outputSelection"`
	EVMVersion      string                       `json:"evmVersion,omitempty"`
	ViaIR           bool                         `json:"viaIR,omitempty"`
	Remappings      []string                     `json:"remappings,omitempty"`
	Libraries       map[string]map[string]string `json:"libraries,omitempty"`
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{
		Optimizer:       &Optimizer{Enabled: false, Runs: 200},
		OutputSelection: DefaultOutputSelection(),
	}
}

// Clone returns a deep copy of the settings.
func (s Settings) Clone() Settings {
	clone := s
	if s.Optimizer != nil {
		optimizer := *s.Optimizer
		clone.Optimizer = &optimizer
	}
	if s.OutputSelection != nil {
		clone.OutputSelection = make(OutputSelection, len(s.OutputSelection))
		for file, contracts := range s.OutputSelection {
			clone.OutputSelection[file] = make(map[string][]string, len(contracts))
			for contract, outputs := range contracts {
				clone.OutputSelection[file][contract] = slices.Clone(outputs)
			}
		}
	}
	clone.Remappings = slices.Clone(s.Remappings)
	if s.Libraries != nil {
		clone.Libraries = make(map[string]map[string]string, len(s.Libraries))
		for file, libs := range s.Libraries {
			clone.Libraries[file] = make(map[string]string, len(libs))
			for name, address := range libs {
				clone.Libraries[file][name] = address
			}
		}
	}
	return clone
}

// ForLanguage returns a copy of the settings with the fields the given language does not understand removed.
func (s Settings) ForLanguage(language Language) Settings {
	clone := s.Clone()
	if language == LanguageVyper {
		clone.Optimizer = nil
		clone.ViaIR = false
		clone.Remappings = nil
		clone.Libraries = nil
	}
	if clone.OutputSelection == nil {
		clone.OutputSelection = DefaultOutputSelection()
	}
	return clone
}

// Fingerprint returns a digest of the settings, used to invalidate cached artifacts when settings change.
func (s Settings) Fingerprint() string {
	// Settings only contain maps, slices and scalars, so encoding cannot fail and map keys are sorted.
	data, _ := json.Marshal(s)
	return utils.Keccak256Hex(data)
}
