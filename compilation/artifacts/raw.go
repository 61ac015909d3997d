package artifacts

import (
	"bytes"
	"encoding/json"

	"github.com/crytic/solbuild/compilation/types"
)

// RawConverter writes contracts exactly as the compiler emitted them. It is used for every output of a run with
// compiler errors, when the configured format may be unable to represent partial output.
type RawConverter struct{}

// NewRawConverter returns a new RawConverter.
func NewRawConverter() *RawConverter {
	return &RawConverter{}
}

// Format implements Converter.
func (c *RawConverter) Format() string {
	return "raw"
}

// Convert implements Converter.
func (c *RawConverter) Convert(file string, name string, contract types.VersionedContract) (json.RawMessage, error) {
	if len(contract.Contract.Raw) == 0 {
		return marshalArtifact(contract.Contract)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, contract.Contract.Raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ConvertStandalone implements Converter.
func (c *RawConverter) ConvertStandalone(file string, source types.VersionedSourceFile) (json.RawMessage, error) {
	return marshalArtifact(source.Source)
}
