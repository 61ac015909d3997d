package depgraph

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
)

// operatorSpacingRegex matches a comparison operator followed by whitespace, e.g. ">= 0.8.0".
var operatorSpacingRegex = regexp.MustCompile(`(\^|~|>=|<=|>|<|=)\s+`)

// VersionRequirement is a compiler version constraint as written in a source file (e.g. a Solidity pragma).
type VersionRequirement struct {
	raw         string
	constraints *semver.Constraints
}

// ParseVersionRequirement parses a pragma-style version requirement. Clauses separated by whitespace must all hold,
// alternatives are separated by "||". Caret, tilde, hyphen ranges and partial versions follow npm semantics.
func ParseVersionRequirement(raw string) (*VersionRequirement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty version requirement")
	}

	alternatives := make([]string, 0)
	for _, alternative := range strings.Split(raw, "||") {
		clauses, err := translateAlternative(alternative)
		if err != nil {
			return nil, fmt.Errorf("invalid version requirement %q: %w", raw, err)
		}
		alternatives = append(alternatives, strings.Join(clauses, ", "))
	}

	constraints, err := semver.NewConstraint(strings.Join(alternatives, " || "))
	if err != nil {
		return nil, fmt.Errorf("invalid version requirement %q: %w", raw, err)
	}
	return &VersionRequirement{raw: raw, constraints: constraints}, nil
}

// Check reports whether the version satisfies the requirement. A nil requirement is satisfied by every version.
func (r *VersionRequirement) Check(v *semver.Version) bool {
	if r == nil {
		return true
	}
	return r.constraints.Check(v)
}

// String returns the requirement as written in the source.
func (r *VersionRequirement) String() string {
	if r == nil {
		return "*"
	}
	return r.raw
}

// translateAlternative converts one whitespace separated clause list into comparisons Masterminds understands.
func translateAlternative(alternative string) ([]string, error) {
	fields := strings.Fields(operatorSpacingRegex.ReplaceAllString(alternative, "$1"))
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty alternative")
	}

	clauses := make([]string, 0)
	for i := 0; i < len(fields); i++ {
		// Hyphen range: "a - b".
		if i+2 < len(fields) && fields[i+1] == "-" {
			low, err := padVersion(fields[i])
			if err != nil {
				return nil, err
			}
			high, err := padVersion(fields[i+2])
			if err != nil {
				return nil, err
			}
			if upper, ok := partialUpperBound(high, versionParts(fields[i+2])); ok {
				clauses = append(clauses, ">="+low.String(), "<"+upper.String())
			} else {
				clauses = append(clauses, ">="+low.String(), "<="+high.String())
			}
			i += 2
			continue
		}

		translated, err := translateClause(fields[i])
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, translated...)
	}
	return clauses, nil
}

// translateClause expands a single comparison into explicit bounds.
func translateClause(clause string) ([]string, error) {
	operator := ""
	for _, op := range []string{">=", "<=", "^", "~", ">", "<", "="} {
		if strings.HasPrefix(clause, op) {
			operator = op
			break
		}
	}
	versionText := strings.TrimPrefix(strings.TrimPrefix(clause, operator), "v")
	if versionText == "*" || versionText == "x" {
		return []string{">=0.0.0"}, nil
	}
	parts := versionParts(versionText)
	version, err := padVersion(versionText)
	if err != nil {
		return nil, err
	}

	switch operator {
	case "^":
		return []string{">=" + version.String(), "<" + caretUpperBound(version).String()}, nil
	case "~":
		upper := version.IncMinor()
		if parts == 1 {
			upper = version.IncMajor()
		}
		return []string{">=" + version.String(), "<" + upper.String()}, nil
	case "", "=":
		// A partial exact version matches every version it is a prefix of.
		if upper, ok := partialUpperBound(version, parts); ok {
			return []string{">=" + version.String(), "<" + upper.String()}, nil
		}
		return []string{"=" + version.String()}, nil
	case "<=":
		// "<=0.8" includes every 0.8.x version.
		if upper, ok := partialUpperBound(version, parts); ok {
			return []string{"<" + upper.String()}, nil
		}
		return []string{"<=" + version.String()}, nil
	case ">":
		// ">0.7" excludes every 0.7.x version.
		if upper, ok := partialUpperBound(version, parts); ok {
			return []string{">=" + upper.String()}, nil
		}
		return []string{">" + version.String()}, nil
	default:
		return []string{operator + version.String()}, nil
	}
}

// caretUpperBound returns the exclusive upper bound of a caret range: the next version bumping the left-most
// non-zero component.
func caretUpperBound(v *semver.Version) *semver.Version {
	var upper semver.Version
	switch {
	case v.Major() > 0:
		upper = v.IncMajor()
	case v.Minor() > 0:
		upper = v.IncMinor()
	default:
		upper = v.IncPatch()
	}
	return &upper
}

// versionParts returns the number of dot separated components of the version core of text.
func versionParts(text string) int {
	core := strings.TrimPrefix(text, "v")
	if idx := strings.IndexAny(core, "-+"); idx >= 0 {
		core = core[:idx]
	}
	return len(strings.Split(core, "."))
}

// partialUpperBound returns the first version past every version a partial version with the given number of
// components is a prefix of. Full versions have no such bound.
func partialUpperBound(v *semver.Version, parts int) (*semver.Version, bool) {
	var upper semver.Version
	switch parts {
	case 1:
		upper = v.IncMajor()
	case 2:
		upper = v.IncMinor()
	default:
		return nil, false
	}
	return &upper, true
}

// padVersion parses a possibly partial version ("0.8" or "0") as a full version.
func padVersion(text string) (*semver.Version, error) {
	core := text
	suffix := ""
	if idx := strings.IndexAny(text, "-+"); idx >= 0 {
		core, suffix = text[:idx], text[idx:]
	}
	parts := strings.Split(core, ".")
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return semver.NewVersion(strings.Join(parts, ".") + suffix)
}
