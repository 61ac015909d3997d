package exitcodes

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGetInnerErrorAndExitCode(t *testing.T) {
	t.Parallel()

	inner := errors.New("compilation failed")
	tests := []struct {
		name         string
		err          error
		expectedErr  error
		expectedCode int
	}{
		{name: "nil", err: nil, expectedErr: nil, expectedCode: ExitCodeSuccess},
		{name: "generic", err: inner, expectedErr: inner, expectedCode: ExitCodeGeneralError},
		{
			name:         "with exit code",
			err:          NewErrorWithExitCode(inner, ExitCodeCompilationFailed),
			expectedErr:  inner,
			expectedCode: ExitCodeCompilationFailed,
		},
		{
			name:         "wrapped with exit code",
			err:          fmt.Errorf("build: %w", NewErrorWithExitCode(inner, ExitCodeHandledError)),
			expectedErr:  inner,
			expectedCode: ExitCodeHandledError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err, code := GetInnerErrorAndExitCode(tt.err)
			assert.Equal(t, tt.expectedErr, err)
			assert.Equal(t, tt.expectedCode, code)
		})
	}
}
