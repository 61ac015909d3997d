package utils

import (
	"path"
	"path/filepath"
	"strings"
)

// NormalizePath converts a path to forward slashes and cleans it. Leading "./" segments are removed.
func NormalizePath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	return strings.TrimPrefix(p, "./")
}

// RelativeSlashPath returns target relative to root in normalized form. If target cannot be made relative to root,
// the normalized target is returned.
func RelativeSlashPath(root string, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return NormalizePath(target)
	}
	return NormalizePath(rel)
}

// PathDepth returns the number of segments of a normalized path. "A.sol" has a depth of 1, "src/A.sol" of 2.
func PathDepth(p string) int {
	p = NormalizePath(p)
	if p == "" || p == "." {
		return 0
	}
	return strings.Count(strings.Trim(p, "/"), "/") + 1
}

// HasPathPrefix reports whether p equals prefix or lives underneath it, comparing whole path segments.
func HasPathPrefix(p string, prefix string) bool {
	p, prefix = NormalizePath(p), NormalizePath(prefix)
	if prefix == "." || prefix == "" {
		return true
	}
	return p == prefix || strings.HasPrefix(p, strings.TrimSuffix(prefix, "/")+"/")
}
