// Package version provides build and version information for solbuild, along with the versions of the on-disk
// formats it reads and writes. VCS metadata is taken from runtime/debug.ReadBuildInfo unless set via ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/crytic/solbuild/compilation/cache"
	"github.com/crytic/solbuild/compilation/types"
)

// These variables can be set via ldflags at build time for explicit versioning.
var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
	// GitCommitTime is the RFC3339 timestamp of the git commit.
	GitCommitTime = ""
	// GitTreeDirty is "true" if the git tree was modified at build time.
	GitTreeDirty = ""
)

// Info contains the full version information for the build.
type Info struct {
	Version       string
	GitCommit     string
	GitCommitTime string
	GitTreeDirty  bool
	GoVersion     string
	Platform      string

	// CacheFormat and BuildInfoFormat identify the formats of the files cache and build info documents. A files
	// cache of another format is discarded on load.
	CacheFormat     string
	BuildInfoFormat string
}

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	settings := make(map[string]string, len(info.Settings))
	for _, kv := range info.Settings {
		settings[kv.Key] = kv.Value
	}
	setDefault(&GitCommit, settings["vcs.revision"])
	setDefault(&GitCommitTime, settings["vcs.time"])
	setDefault(&GitTreeDirty, settings["vcs.modified"])
}

// setDefault sets target to value unless it was already set via ldflags.
func setDefault(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

// GetInfo returns the complete version information.
func GetInfo() Info {
	return Info{
		Version:         Version,
		GitCommit:       GitCommit,
		GitCommitTime:   GitCommitTime,
		GitTreeDirty:    GitTreeDirty == "true",
		GoVersion:       runtime.Version(),
		Platform:        runtime.GOOS + "/" + runtime.GOARCH,
		CacheFormat:     cache.FilesCacheFormat,
		BuildInfoFormat: types.BuildInfoFormat,
	}
}

// commit returns the first 7 characters of the git commit hash, suffixed with "-dirty" for modified trees.
func (i Info) commit() string {
	commit := i.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if commit != "" && i.GitTreeDirty {
		commit += "-dirty"
	}
	return commit
}

// String returns a formatted multi-line version string.
func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("solbuild version %s\n", i.Version))

	if commit := i.commit(); commit != "" {
		sb.WriteString(fmt.Sprintf("  Commit:      %s\n", commit))
	}
	if i.GitCommitTime != "" {
		built := i.GitCommitTime
		if t, err := time.Parse(time.RFC3339, i.GitCommitTime); err == nil {
			built = t.UTC().Format("2006-01-02 15:04:05 MST")
		}
		sb.WriteString(fmt.Sprintf("  Built:       %s\n", built))
	}
	sb.WriteString(fmt.Sprintf("  Go version:  %s (%s)\n", i.GoVersion, i.Platform))
	sb.WriteString(fmt.Sprintf("  Cache:       %s\n", i.CacheFormat))
	sb.WriteString(fmt.Sprintf("  Build info:  %s\n", i.BuildInfoFormat))
	return sb.String()
}

// Short returns a single-line version string suitable for --short output.
func (i Info) Short() string {
	if commit := i.commit(); commit != "" {
		return i.Version + "+" + commit
	}
	return i.Version
}
