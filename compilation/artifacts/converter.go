// Package artifacts turns aggregated compiler output into the artifact files written to the artifacts directory.
package artifacts

import (
	"encoding/json"

	"github.com/crytic/solbuild/compilation/types"
)

// Converter describes the interface every artifact format must implement.
type Converter interface {
	// Format returns the identifier of the format, as used in the project config.
	Format() string

	// Convert returns the artifact document of a compiled contract.
	Convert(file string, name string, contract types.VersionedContract) (json.RawMessage, error)

	// ConvertStandalone returns the artifact document of a file which defines no contract.
	ConvertStandalone(file string, source types.VersionedSourceFile) (json.RawMessage, error)
}

// marshalArtifact encodes an artifact document. Artifacts are indented and end with a newline so that unchanged
// artifacts are byte-identical across runs.
func marshalArtifact(v any) (json.RawMessage, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// versionString returns the version of a compilation, or an empty string if unknown.
func versionString(contract types.VersionedContract) string {
	if contract.Version == nil {
		return ""
	}
	return contract.Version.String()
}
