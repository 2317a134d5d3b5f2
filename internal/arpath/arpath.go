// Package arpath implements AUTOSAR short-name path handling: parsing,
// building, relative reference resolution and ancestry queries. All functions
// are pure; malformed input is reported through return values, never panics.
package arpath

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentPattern is the AUTOSAR short-name identifier form: a letter followed
// by letters, digits or underscores.
var segmentPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Parse splits an AUTOSAR path into its segments. Empty segments are
// discarded, so a missing leading slash and duplicated slashes are tolerated.
func Parse(path string) []string {
	if path == "" || path == "/" {
		return nil
	}
	var segments []string
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Build joins segments into an absolute path. Build(nil) yields "" (the
// document root).
func Build(segments []string) string {
	if len(segments) == 0 {
		return ""
	}
	return "/" + strings.Join(segments, "/")
}

// ResolveReference resolves a reference value against a base path. Absolute
// references are returned unchanged. Relative references are appended to the
// base, with each ".." segment popping one trailing segment from the
// accumulated result; popping an already-empty result is a no-op.
func ResolveReference(ref, base string) string {
	if ref == "" {
		return base
	}
	if strings.HasPrefix(ref, "/") {
		return ref
	}
	if base == "" {
		return "/" + ref
	}
	resolved := Parse(base)
	for _, part := range Parse(ref) {
		if part == ".." {
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
		} else {
			resolved = append(resolved, part)
		}
	}
	return Build(resolved)
}

// ParentOf returns the path of the nearest ancestor, or "" for a root path.
func ParentOf(path string) string {
	segments := Parse(path)
	if len(segments) == 0 {
		return ""
	}
	return Build(segments[:len(segments)-1])
}

// NameOf returns the final segment of the path, or "" for the root.
func NameOf(path string) string {
	segments := Parse(path)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// IsAncestorOf reports whether ancestor is a strict prefix of descendant.
// A path is not its own ancestor.
func IsAncestorOf(ancestor, descendant string) bool {
	if ancestor == "" || descendant == "" {
		return false
	}
	ancestorSegs := Parse(ancestor)
	descendantSegs := Parse(descendant)
	if len(ancestorSegs) >= len(descendantSegs) {
		return false
	}
	for i, seg := range ancestorSegs {
		if descendantSegs[i] != seg {
			return false
		}
	}
	return true
}

// Depth returns the number of segments in the path.
func Depth(path string) int {
	return len(Parse(path))
}

// CommonAncestor returns the deepest path shared by all inputs, or "" when
// they share none.
func CommonAncestor(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return ParentOf(paths[0])
	}
	common := Parse(paths[0])
	for _, path := range paths[1:] {
		segments := Parse(path)
		n := 0
		for n < len(common) && n < len(segments) && common[n] == segments[n] {
			n++
		}
		common = common[:n]
	}
	return Build(common)
}

// Normalize rewrites a path into canonical form: leading slash, no duplicate
// or trailing separators.
func Normalize(path string) string {
	return Build(Parse(path))
}

// ValidSegment reports whether name is a well-formed short name.
func ValidSegment(name string) bool {
	return segmentPattern.MatchString(name)
}

// Validate checks every segment of the path against the short-name pattern.
// It returns false and a message naming the first violating segment.
func Validate(path string) (bool, string) {
	if path == "" {
		return true, ""
	}
	if !strings.HasPrefix(path, "/") {
		return false, "path must start with '/'"
	}
	for _, seg := range Parse(path) {
		if !ValidSegment(seg) {
			return false, fmt.Sprintf("invalid path segment %q (must start with a letter and contain only letters, digits and underscores)", seg)
		}
	}
	return true, ""
}
