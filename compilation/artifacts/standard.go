package artifacts

import (
	"bytes"
	"encoding/hex"
	"encoding/json"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/solbuild/compilation/types"
)

// StandardArtifactFormat is the format identifier written to standard artifacts.
const StandardArtifactFormat = "solbuild-artifact-1"

// StandardArtifact is the full artifact document of a compiled contract.
type StandardArtifact struct {
	Format          string `json:"_format"`
	ContractName    string `json:"contractName"`
	SourceName      string `json:"sourceName"`
	CompilerVersion string `json:"compilerVersion"`
	Profile         string `json:"profile"`
	BuildID         string `json:"buildId"`

	ABI               json.RawMessage   `json:"abi"`
	Bytecode          *ArtifactBytecode `json:"bytecode,omitempty"`
	DeployedBytecode  *ArtifactBytecode `json:"deployedBytecode,omitempty"`
	MethodIdentifiers map[string]string `json:"methodIdentifiers"`

	// BytecodeMetadata is decoded from the CBOR tail of the deployed bytecode, if present.
	BytecodeMetadata *BytecodeMetadata `json:"bytecodeMetadata,omitempty"`

	Metadata      json.RawMessage `json:"metadata,omitempty"`
	UserDoc       json.RawMessage `json:"userdoc,omitempty"`
	DevDoc        json.RawMessage `json:"devdoc,omitempty"`
	StorageLayout json.RawMessage `json:"storageLayout,omitempty"`
}

// ArtifactBytecode describes creation or runtime bytecode in an artifact.
type ArtifactBytecode struct {
	Object         string          `json:"object"`
	SourceMap      string          `json:"sourceMap,omitempty"`
	LinkReferences json.RawMessage `json:"linkReferences,omitempty"`
}

// BytecodeMetadata describes the metadata the compiler appended to the deployed bytecode.
type BytecodeMetadata struct {
	// Hash is the hex encoded metadata hash (ipfs or swarm).
	Hash string `json:"hash,omitempty"`

	// CompilerVersion is the compiler version recorded in the metadata.
	CompilerVersion string `json:"compilerVersion,omitempty"`
}

// StandaloneArtifact is the artifact document of a file which defines no contract.
type StandaloneArtifact struct {
	Format          string          `json:"_format"`
	SourceName      string          `json:"sourceName"`
	CompilerVersion string          `json:"compilerVersion"`
	Profile         string          `json:"profile"`
	BuildID         string          `json:"buildId"`
	ID              uint32          `json:"id"`
	AST             json.RawMessage `json:"ast"`
}

// StandardConverter produces StandardArtifact documents.
type StandardConverter struct{}

// NewStandardConverter returns a new StandardConverter.
func NewStandardConverter() *StandardConverter {
	return &StandardConverter{}
}

// Format implements Converter.
func (c *StandardConverter) Format() string {
	return "standard"
}

// Convert implements Converter.
func (c *StandardConverter) Convert(file string, name string, contract types.VersionedContract) (json.RawMessage, error) {
	compiled := contract.Contract
	artifact := StandardArtifact{
		Format:            StandardArtifactFormat,
		ContractName:      name,
		SourceName:        file,
		CompilerVersion:   versionString(contract),
		Profile:           contract.Profile,
		BuildID:           contract.BuildID,
		ABI:               mapABI(compiled.ABI),
		MethodIdentifiers: mapMethodIdentifiers(compiled),
		Metadata:          compiled.Metadata,
		UserDoc:           compiled.UserDoc,
		DevDoc:            compiled.DevDoc,
		StorageLayout:     compiled.StorageLayout,
	}
	if compiled.EVM != nil {
		artifact.Bytecode = mapBytecode(compiled.EVM.Bytecode)
		artifact.DeployedBytecode = mapBytecode(compiled.EVM.DeployedBytecode)
		artifact.BytecodeMetadata = mapBytecodeMetadata(compiled.EVM.DeployedBytecode)
	}
	return marshalArtifact(artifact)
}

// ConvertStandalone implements Converter.
func (c *StandardConverter) ConvertStandalone(file string, source types.VersionedSourceFile) (json.RawMessage, error) {
	version := ""
	if source.Version != nil {
		version = source.Version.String()
	}
	return marshalArtifact(StandaloneArtifact{
		Format:          StandardArtifactFormat,
		SourceName:      file,
		CompilerVersion: version,
		Profile:         source.Profile,
		BuildID:         source.BuildID,
		ID:              source.Source.ID,
		AST:             source.Source.AST,
	})
}

// mapABI returns the ABI of a contract, or an empty ABI if the compiler did not emit one.
func mapABI(data json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("[]")
	}
	return data
}

// mapBytecode maps compiler bytecode output to artifact bytecode. Nil is returned if the compiler emitted none.
func mapBytecode(bytecode *types.Bytecode) *ArtifactBytecode {
	if bytecode == nil {
		return nil
	}
	return &ArtifactBytecode{
		Object:         bytecode.Object,
		SourceMap:      bytecode.SourceMap,
		LinkReferences: bytecode.LinkReferences,
	}
}

// mapMethodIdentifiers returns the method identifiers emitted by the compiler. If the compiler did not emit any (e.g.
// because they were not requested), they are derived from the ABI instead.
func mapMethodIdentifiers(contract types.Contract) map[string]string {
	if contract.EVM != nil && len(contract.EVM.MethodIdentifiers) > 0 {
		identifiers := make(map[string]string, len(contract.EVM.MethodIdentifiers))
		for signature, selector := range contract.EVM.MethodIdentifiers {
			identifiers[signature] = selector
		}
		return identifiers
	}

	identifiers := make(map[string]string)
	if len(bytes.TrimSpace(contract.ABI)) == 0 {
		return identifiers
	}
	contractAbi, err := abi.JSON(bytes.NewReader(contract.ABI))
	if err != nil {
		return identifiers
	}
	for _, method := range contractAbi.Methods {
		identifiers[method.Sig] = hex.EncodeToString(method.ID)
	}
	return identifiers
}

// mapBytecodeMetadata extracts the metadata appended to deployed bytecode. Nil is returned if the bytecode carries
// none, or if it cannot be decoded (e.g. unlinked library placeholders).
func mapBytecodeMetadata(bytecode *types.Bytecode) *BytecodeMetadata {
	if bytecode == nil {
		return nil
	}
	metadata := types.ExtractContractMetadataFromHex(bytecode.Object)
	if metadata == nil {
		return nil
	}

	result := &BytecodeMetadata{CompilerVersion: metadata.CompilerVersion()}
	if hash := metadata.ExtractBytecodeHash(); hash != nil {
		result.Hash = hex.EncodeToString(hash)
	}
	if result.Hash == "" && result.CompilerVersion == "" {
		return nil
	}
	return result
}
