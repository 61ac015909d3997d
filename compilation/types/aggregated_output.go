package types

import (
	"fmt"

	"github.com/Masterminds/semver"
)

// VersionedContract is a compiled contract together with the compilation it came from.
type VersionedContract struct {
	Contract Contract
	Version  *semver.Version
	BuildID  string
	Profile  string
}

// VersionedContracts maps a source path to a contract name to every compilation of that contract in a run.
type VersionedContracts map[string]map[string][]VersionedContract

// VersionedSourceFile is a per-file compiler output together with the compilation it came from.
type VersionedSourceFile struct {
	Source  SourceUnit
	Version *semver.Version
	BuildID string
	Profile string
}

// VersionedSourceFiles maps a source path to every compilation of that file in a run.
type VersionedSourceFiles map[string][]VersionedSourceFile

// AggregatedCompilerOutput merges the outputs of every compiler invocation of a run.
type AggregatedCompilerOutput struct {
	// Errors lists every diagnostic of every invocation, plus one entry per failed invocation.
	Errors []Diagnostic

	// Contracts holds the compiled contracts, keyed by path and name.
	Contracts VersionedContracts

	// Sources holds the per-file outputs, keyed by path.
	Sources VersionedSourceFiles

	// BuildInfos holds one build info per successful invocation.
	BuildInfos []*RawBuildInfo
}

// NewAggregatedCompilerOutput returns an empty AggregatedCompilerOutput.
func NewAggregatedCompilerOutput() *AggregatedCompilerOutput {
	return &AggregatedCompilerOutput{
		Errors:     make([]Diagnostic, 0),
		Contracts:  make(VersionedContracts),
		Sources:    make(VersionedSourceFiles),
		BuildInfos: make([]*RawBuildInfo, 0),
	}
}

// Extend adds the output of one invocation. Contracts already present under the same path and name are kept, the
// new compilation is added next to them.
func (a *AggregatedCompilerOutput) Extend(version *semver.Version, buildInfo *RawBuildInfo, profile string, output *CompilerOutput) {
	buildID := ""
	if buildInfo != nil {
		buildID = buildInfo.ID
		a.BuildInfos = append(a.BuildInfos, buildInfo)
	}
	a.Errors = append(a.Errors, output.Errors...)

	for p, source := range output.Sources {
		a.Sources[p] = append(a.Sources[p], VersionedSourceFile{
			Source:  source,
			Version: version,
			BuildID: buildID,
			Profile: profile,
		})
	}
	for p, contracts := range output.Contracts {
		if _, ok := a.Contracts[p]; !ok {
			a.Contracts[p] = make(map[string][]VersionedContract)
		}
		for name, contract := range contracts {
			a.Contracts[p][name] = append(a.Contracts[p][name], VersionedContract{
				Contract: contract,
				Version:  version,
				BuildID:  buildID,
				Profile:  profile,
			})
		}
	}
}

// AddInvocationFailure records a failed compiler invocation as an error diagnostic.
func (a *AggregatedCompilerOutput) AddInvocationFailure(key SetKey, err error) {
	a.Errors = append(a.Errors, Diagnostic{
		Type:      "InvocationError",
		Component: InvocationComponent,
		Severity:  SeverityError,
		Message:   fmt.Sprintf("compiler invocation for %s failed: %v", key, err),
	})
}

// HasError reports whether any compiler diagnostic fails the run under the given filter. Failed invocations are
// reported separately and are not considered here.
func (a *AggregatedCompilerOutput) HasError(filter ErrorFilter) bool {
	for _, d := range a.Errors {
		if !d.IsInvocationFailure() && filter.IsError(d) {
			return true
		}
	}
	return false
}

// Diagnostics returns the diagnostics which are not ignored by the filter's error codes and paths.
func (a *AggregatedCompilerOutput) Diagnostics(filter ErrorFilter) []Diagnostic {
	diagnostics := make([]Diagnostic, 0, len(a.Errors))
	for _, d := range a.Errors {
		if d.IsInvocationFailure() || !filter.IsIgnored(d) {
			diagnostics = append(diagnostics, d)
		}
	}
	return diagnostics
}

// ContractCount returns the number of compiled contracts, counting each version and profile separately.
func (a *AggregatedCompilerOutput) ContractCount() int {
	count := 0
	for _, contracts := range a.Contracts {
		for _, versions := range contracts {
			count += len(versions)
		}
	}
	return count
}
