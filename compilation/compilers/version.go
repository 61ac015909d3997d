package compilers

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/solbuild/utils"
	"github.com/pkg/errors"
)

// versionTokenRegex matches a version token such as `0.8.20+commit.a1b79de6` or `v0.4.0`.
var versionTokenRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+\S*$`)

// ParseVersionOutput extracts the version from the output of `<compiler> --version`. The first non-empty line
// containing "version" is searched for a version token, tokens starting with "0." being preferred. Compilers which
// only print the version (e.g. vyper) are supported by falling back to the first line holding a version token. It
// returns the short version (without a leading "v" or build metadata) and the long version (the full token).
func ParseVersionOutput(output string) (*semver.Version, string, error) {
	lines := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	token := ""
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "version") {
			if token = findVersionToken(line); token != "" {
				break
			}
		}
	}
	if token == "" {
		for _, line := range lines {
			if token = findVersionToken(line); token != "" {
				break
			}
		}
	}
	if token == "" {
		return nil, "", fmt.Errorf("could not find a compiler version in output:\n%s", output)
	}

	longVersion := strings.TrimPrefix(token, "v")
	short := longVersion
	if idx := strings.Index(short, "+"); idx >= 0 {
		short = short[:idx]
	}
	version, err := semver.NewVersion(short)
	if err != nil {
		return nil, "", errors.Wrapf(err, "invalid compiler version %q", token)
	}
	return version, longVersion, nil
}

// findVersionToken returns the version token of a line, or an empty string if it holds none.
func findVersionToken(line string) string {
	candidates := make([]string, 0)
	for _, field := range strings.Fields(line) {
		field = strings.Trim(field, ",;()")
		if versionTokenRegex.MatchString(field) {
			candidates = append(candidates, field)
		}
	}
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, "0.") || strings.HasPrefix(candidate, "v0.") {
			return candidate
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return ""
}

// DiscoverVersion runs `<path> --version` and parses the version it reports.
func DiscoverVersion(ctx context.Context, path string) (*semver.Version, string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	stdout, _, combined, err := utils.RunCommandWithOutputAndError(cmd)
	if err != nil {
		return nil, "", fmt.Errorf("error while executing %s --version:\n%s\nERROR: %v", path, string(combined), err)
	}
	return ParseVersionOutput(string(stdout))
}
