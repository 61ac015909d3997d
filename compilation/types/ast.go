package types

import "encoding/json"

// ContractKind represents the kind of contract definition represented by an AST node
type ContractKind string

const (
	// ContractKindContract represents a contract node
	ContractKindContract ContractKind = "contract"
	// ContractKindLibrary represents a library node
	ContractKindLibrary ContractKind = "library"
	// ContractKindInterface represents an interface node
	ContractKindInterface ContractKind = "interface"
)

// ContractDefinition is the contract definition node of a Solidity AST.
type ContractDefinition struct {
	// NodeType is always "ContractDefinition".
	NodeType string `json:"nodeType"`
	// Name is the name of the contract definition
	Name string `json:"name"`
	// Kind is a ContractKind that represents what type of contract definition this is (contract, interface, or library)
	Kind ContractKind `json:"contractKind,omitempty"`
}

// sourceUnitNode is the top-level node of a Solidity AST. Only the top-level nodes are decoded, everything below
// them is skipped.
type sourceUnitNode struct {
	NodeType string            `json:"nodeType"`
	Nodes    []json.RawMessage `json:"nodes"`
}

// ContractDefinitions returns the contract definitions at the top level of the file's AST. ASTs which are not
// Solidity source units (e.g. Vyper modules) yield no definitions.
func (s SourceUnit) ContractDefinitions() []ContractDefinition {
	definitions := make([]ContractDefinition, 0)
	if !s.HasAST() {
		return definitions
	}

	var root sourceUnitNode
	if err := json.Unmarshal(s.AST, &root); err != nil || root.NodeType != "SourceUnit" {
		return definitions
	}
	for _, nodeData := range root.Nodes {
		var definition ContractDefinition
		if err := json.Unmarshal(nodeData, &definition); err != nil {
			continue
		}
		if definition.NodeType == "ContractDefinition" {
			definitions = append(definitions, definition)
		}
	}
	return definitions
}
