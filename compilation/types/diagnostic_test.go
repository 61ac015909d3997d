package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrorFilter verifies severity thresholds and ignored codes and paths.
func TestErrorFilter(t *testing.T) {
	location := &SourceLocation{File: "lib/forge-std/src/Test.sol"}
	tests := []struct {
		name       string
		filter     ErrorFilter
		diagnostic Diagnostic
		isError    bool
	}{
		{
			name:       "error fails by default",
			diagnostic: Diagnostic{Severity: SeverityError, ErrorCode: "1234"},
			isError:    true,
		},
		{
			name:       "warning passes by default",
			diagnostic: Diagnostic{Severity: SeverityWarning, ErrorCode: "5667"},
			isError:    false,
		},
		{
			name:       "warning fails with warning threshold",
			filter:     ErrorFilter{SeverityFilter: SeverityWarning},
			diagnostic: Diagnostic{Severity: SeverityWarning, ErrorCode: "5667"},
			isError:    true,
		},
		{
			name:       "ignored error code",
			filter:     ErrorFilter{IgnoredErrorCodes: []string{"1234"}},
			diagnostic: Diagnostic{Severity: SeverityError, ErrorCode: "1234"},
			isError:    false,
		},
		{
			name:       "ignored path",
			filter:     ErrorFilter{IgnoredFilePaths: []string{"lib"}},
			diagnostic: Diagnostic{Severity: SeverityError, SourceLocation: location},
			isError:    false,
		},
		{
			name:       "partial path segment is not ignored",
			filter:     ErrorFilter{IgnoredFilePaths: []string{"li"}},
			diagnostic: Diagnostic{Severity: SeverityError, SourceLocation: location},
			isError:    true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.isError, test.filter.IsError(test.diagnostic))
		})
	}
}

// TestParseSeverity verifies severity names are parsed case-insensitively and default to error.
func TestParseSeverity(t *testing.T) {
	severity, err := ParseSeverity("")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, severity)

	severity, err = ParseSeverity("Warning")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, severity)

	_, err = ParseSeverity("fatal")
	assert.Error(t, err)
}

// TestDiagnosticString verifies the formatted message is preferred over the short rendition.
func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		SourceLocation: &SourceLocation{File: "src/A.sol", Start: 42},
		Type:           "TypeError",
		ErrorCode:      "7576",
		Message:        "Undeclared identifier.",
	}
	assert.Equal(t, "src/A.sol:42: TypeError (7576): Undeclared identifier.", d.String())

	d.FormattedMessage = "TypeError: Undeclared identifier.\n"
	assert.Equal(t, "TypeError: Undeclared identifier.", d.String())
}
