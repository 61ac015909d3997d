package types

import (
	"fmt"
	"strings"

	"github.com/crytic/solbuild/utils"
)

// Severity describes the severity of a compiler diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// rank orders severities so they can be compared against a filter.
func (s Severity) rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.rank() >= other.rank()
}

// ParseSeverity parses a severity name. An empty string yields SeverityError.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case "", SeverityError:
		return SeverityError, nil
	case SeverityWarning:
		return SeverityWarning, nil
	case SeverityInfo:
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q (expected error, warning or info)", s)
}

// InvocationComponent is the component name of diagnostics recording a failed compiler invocation rather than a
// problem reported by the compiler itself.
const InvocationComponent = "invocation"

// SourceLocation describes a span within a source file.
type SourceLocation struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Diagnostic describes an error, warning or informational message emitted by a compiler.
type Diagnostic struct {
	SourceLocation   *SourceLocation `json:"sourceLocation,omitempty"`
	Type             string          `json:"type"`
	Component        string          `json:"component"`
	Severity         Severity        `json:"severity"`
	ErrorCode        string          `json:"errorCode,omitempty"`
	Message          string          `json:"message"`
	FormattedMessage string          `json:"formattedMessage,omitempty"`
}

// IsError reports whether the diagnostic has error severity.
func (d Diagnostic) IsError() bool {
	return d.Severity.AtLeast(SeverityError)
}

// IsInvocationFailure reports whether the diagnostic records a failed compiler invocation.
func (d Diagnostic) IsInvocationFailure() bool {
	return d.Component == InvocationComponent
}

// String returns the formatted message if the compiler provided one, or a short rendition otherwise.
func (d Diagnostic) String() string {
	if d.FormattedMessage != "" {
		return strings.TrimRight(d.FormattedMessage, "\n")
	}
	location := ""
	if d.SourceLocation != nil {
		location = fmt.Sprintf("%s:%d: ", d.SourceLocation.File, d.SourceLocation.Start)
	}
	code := ""
	if d.ErrorCode != "" {
		code = fmt.Sprintf(" (%s)", d.ErrorCode)
	}
	return fmt.Sprintf("%s%s%s: %s", location, d.Type, code, d.Message)
}

// ErrorFilter decides which diagnostics make a compilation run fail.
type ErrorFilter struct {
	// IgnoredErrorCodes lists compiler error codes which never fail a run.
	IgnoredErrorCodes []string

	// IgnoredFilePaths lists path prefixes whose diagnostics never fail a run.
	IgnoredFilePaths []string

	// SeverityFilter is the lowest severity which fails a run. Defaults to SeverityError when empty.
	SeverityFilter Severity
}

// IsIgnored reports whether the diagnostic is ignored by error code or file path.
func (f ErrorFilter) IsIgnored(d Diagnostic) bool {
	for _, code := range f.IgnoredErrorCodes {
		if d.ErrorCode != "" && d.ErrorCode == code {
			return true
		}
	}
	if d.SourceLocation != nil {
		for _, prefix := range f.IgnoredFilePaths {
			if utils.HasPathPrefix(d.SourceLocation.File, prefix) {
				return true
			}
		}
	}
	return false
}

// IsError reports whether the diagnostic fails a run under this filter.
func (f ErrorFilter) IsError(d Diagnostic) bool {
	threshold := f.SeverityFilter
	if threshold == "" {
		threshold = SeverityError
	}
	return d.Severity.AtLeast(threshold) && !f.IsIgnored(d)
}
