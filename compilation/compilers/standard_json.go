package compilers

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"unicode/utf8"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
)

// StandardJSONCompiler invokes a compiler binary through its standard JSON interface: the input document is written
// to the process' standard input and the output document is read from its standard output.
type StandardJSONCompiler struct {
	path        string
	language    types.Language
	version     *semver.Version
	longVersion string

	// args are passed to the binary after `--standard-json`.
	args []string
}

// NewStandardJSONCompiler returns a StandardJSONCompiler for the binary at the given path.
func NewStandardJSONCompiler(path string, language types.Language, version *semver.Version, longVersion string, args []string) *StandardJSONCompiler {
	return &StandardJSONCompiler{
		path:        path,
		language:    language,
		version:     version,
		longVersion: longVersion,
		args:        args,
	}
}

// Path returns the path of the compiler binary.
func (c *StandardJSONCompiler) Path() string {
	return c.path
}

// Language returns the language the compiler compiles.
func (c *StandardJSONCompiler) Language() types.Language {
	return c.language
}

// Version returns the short version of the compiler.
func (c *StandardJSONCompiler) Version() *semver.Version {
	return c.version
}

// LongVersion returns the full version of the compiler.
func (c *StandardJSONCompiler) LongVersion() string {
	return c.longVersion
}

// Compile runs the compiler binary on the provided input. A started compiler process is never killed: cancelling ctx
// does not interrupt it.
func (c *StandardJSONCompiler) Compile(ctx context.Context, input *types.Input) (*types.CompilerOutput, []byte, error) {
	encodedInput, err := json.Marshal(input)
	if err != nil {
		return nil, nil, c.invocationError(InvocationErrorEncoding, nil, err)
	}

	args := append([]string{"--standard-json"}, c.args...)
	cmd := exec.Command(c.path, args...)
	stdout, _, combined, err := utils.RunCommandWithInput(cmd, encodedInput)
	if err != nil {
		var startErr *utils.CommandStartError
		if errors.As(err, &startErr) {
			return nil, nil, c.invocationError(InvocationErrorSpawn, nil, startErr.Err)
		}
		return nil, nil, c.invocationError(InvocationErrorExit, combined, err)
	}

	if !utf8.Valid(stdout) {
		return nil, nil, c.invocationError(InvocationErrorEncoding, nil, errors.New("compiler output is not valid UTF-8"))
	}
	output := types.NewCompilerOutput()
	if err = json.Unmarshal(stdout, output); err != nil {
		return nil, nil, c.invocationError(InvocationErrorDecode, combined, err)
	}
	if output.Version == "" {
		output.Version = c.version.String()
	}
	if output.LongVersion == "" {
		output.LongVersion = c.longVersion
	}
	return output, stdout, nil
}

func (c *StandardJSONCompiler) invocationError(kind InvocationErrorKind, output []byte, err error) *InvocationError {
	return &InvocationError{
		Path:    c.path,
		Version: c.version.String(),
		Kind:    kind,
		Output:  output,
		Err:     err,
	}
}
