package utils

import (
	"bytes"
	"io"
	"os/exec"
	"sync"
)

// CommandStartError indicates a command could not be started at all, as opposed to a command which started and
// later failed.
type CommandStartError struct {
	Err error
}

// Error returns the error message string, implementing the `error` interface.
func (e *CommandStartError) Error() string {
	return "failed to start command: " + e.Err.Error()
}

// Unwrap returns the underlying start error.
func (e *CommandStartError) Unwrap() error {
	return e.Err
}

// RunCommandWithOutputAndError runs a given exec.Cmd and returns the stdout, stderr, and
// combined output as bytes, or an error if one occurred.
func RunCommandWithOutputAndError(command *exec.Cmd) ([]byte, []byte, []byte, error) {
	return RunCommandWithInput(command, nil)
}

// RunCommandWithInput runs a given exec.Cmd, writing input to its standard input, and returns the stdout, stderr, and
// combined output as bytes. If the command could not be started, the error is a *CommandStartError.
func RunCommandWithInput(command *exec.Cmd, input []byte) ([]byte, []byte, []byte, error) {
	var bStdout, bStderr, bCombined bytes.Buffer

	// stdout and stderr are copied by separate goroutines, so the combined buffer needs a lock.
	var combinedWriter io.Writer = &synchronizedWriter{writer: &bCombined}
	command.Stdout = io.MultiWriter(&bStdout, combinedWriter)
	command.Stderr = io.MultiWriter(&bStderr, combinedWriter)
	if input != nil {
		command.Stdin = bytes.NewReader(input)
	}

	if err := command.Start(); err != nil {
		return nil, nil, nil, &CommandStartError{Err: err}
	}
	err := command.Wait()
	return bStdout.Bytes(), bStderr.Bytes(), bCombined.Bytes(), err
}

// synchronizedWriter wraps an io.Writer to avoid a data race when writing.
type synchronizedWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

func (s *synchronizedWriter) Write(p []byte) (n int, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.writer.Write(p)
}
