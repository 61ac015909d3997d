package artifacts

import (
	"encoding/json"

	"github.com/crytic/solbuild/compilation/types"
)

// CompactArtifact is a minimal artifact document holding only what is needed to deploy and call a contract.
type CompactArtifact struct {
	ContractName     string          `json:"contractName"`
	SourceName       string          `json:"sourceName"`
	ABI              json.RawMessage `json:"abi"`
	Bytecode         string          `json:"bytecode"`
	DeployedBytecode string          `json:"deployedBytecode"`
}

// CompactStandaloneArtifact is the compact artifact document of a file which defines no contract.
type CompactStandaloneArtifact struct {
	SourceName string `json:"sourceName"`
	ID         uint32 `json:"id"`
}

// CompactConverter produces CompactArtifact documents.
type CompactConverter struct{}

// NewCompactConverter returns a new CompactConverter.
func NewCompactConverter() *CompactConverter {
	return &CompactConverter{}
}

// Format implements Converter.
func (c *CompactConverter) Format() string {
	return "compact"
}

// Convert implements Converter.
func (c *CompactConverter) Convert(file string, name string, contract types.VersionedContract) (json.RawMessage, error) {
	artifact := CompactArtifact{
		ContractName: name,
		SourceName:   file,
		ABI:          mapABI(contract.Contract.ABI),
	}
	if evm := contract.Contract.EVM; evm != nil {
		artifact.Bytecode = mapBytecodeObject(evm.Bytecode)
		artifact.DeployedBytecode = mapBytecodeObject(evm.DeployedBytecode)
	}
	return marshalArtifact(artifact)
}

// ConvertStandalone implements Converter.
func (c *CompactConverter) ConvertStandalone(file string, source types.VersionedSourceFile) (json.RawMessage, error) {
	return marshalArtifact(CompactStandaloneArtifact{SourceName: file, ID: source.Source.ID})
}

// mapBytecodeObject returns the hex object of the bytecode, or an empty string.
func mapBytecodeObject(bytecode *types.Bytecode) string {
	if bytecode == nil {
		return ""
	}
	return bytecode.Object
}
