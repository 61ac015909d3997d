package types

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"github.com/Masterminds/semver"
	"github.com/pkg/errors"
)

// BuildInfoFormat is the format identifier of build info documents. It is part of every build id, so changing it
// invalidates all build ids.
const BuildInfoFormat = "solbuild-build-info-1"

// BuildContext holds what is needed to interpret the output of one compiler invocation after the fact.
type BuildContext struct {
	// SourceIDToPath maps the source ids assigned by the compiler to source paths.
	SourceIDToPath map[uint32]string `json:"sourceIdToPath"`

	// Language is the language of the compiled sources.
	Language Language `json:"language"`
}

// NewBuildContext creates the BuildContext of an invocation. Only sources which were part of the input are mapped.
func NewBuildContext(input *Input, output *CompilerOutput) *BuildContext {
	ctx := &BuildContext{
		SourceIDToPath: make(map[uint32]string),
		Language:       input.Language,
	}
	for p, source := range output.Sources {
		if _, ok := input.Sources[p]; ok {
			ctx.SourceIDToPath[source.ID] = p
		}
	}
	return ctx
}

// BuildInfo is the self-contained document persisted for an invocation when build info persistence is enabled.
type BuildInfo struct {
	ID                  string          `json:"id"`
	Format              string          `json:"format"`
	CompilerVersion     string          `json:"compilerVersion"`
	CompilerLongVersion string          `json:"compilerLongVersion"`
	Input               *Input          `json:"input"`
	Output              json.RawMessage `json:"output"`
}

// RawBuildInfo binds an invocation's build id to its context and, if requested, to its full build info document.
type RawBuildInfo struct {
	ID      string
	Context *BuildContext

	// Build is nil unless full build info persistence is enabled.
	Build *BuildInfo
}

// ComputeBuildID derives the build id of an invocation from the format, the compiler versions and the input.
func ComputeBuildID(version *semver.Version, longVersion string, input *Input) (string, error) {
	encodedInput, err := json.Marshal(input)
	if err != nil {
		return "", errors.WithStack(err)
	}

	hasher := md5.New()
	hasher.Write([]byte(BuildInfoFormat))
	hasher.Write([]byte(version.String()))
	hasher.Write([]byte(longVersion))
	hasher.Write(encodedInput)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// NewRawBuildInfo creates the RawBuildInfo of an invocation. rawOutput is the compiler's standard output and is only
// retained when full is true.
func NewRawBuildInfo(version *semver.Version, longVersion string, input *Input, output *CompilerOutput, rawOutput []byte, full bool) (*RawBuildInfo, error) {
	id, err := ComputeBuildID(version, longVersion, input)
	if err != nil {
		return nil, err
	}

	info := &RawBuildInfo{
		ID:      id,
		Context: NewBuildContext(input, output),
	}
	if full {
		info.Build = &BuildInfo{
			ID:                  id,
			Format:              BuildInfoFormat,
			CompilerVersion:     version.String(),
			CompilerLongVersion: longVersion,
			Input:               input,
			Output:              append(json.RawMessage(nil), rawOutput...),
		}
	}
	return info, nil
}
