// Package strings provides small string and slice helpers
package strings

import (
	std "strings"

	"golang.org/x/text/cases"
)

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Contains reports whether sub is within s
func Contains(s, sub string) bool { return std.Contains(s, sub) }

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes and asserts a root path like /timeline or /vitals
// ensures a single leading slash and no trailing slash except for the root itself
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}

// Fold returns the Unicode case-folded form of s with surrounding space removed
// use it to compare account handles across platforms
func Fold(s string) string {
	return cases.Fold().String(std.TrimSpace(s))
}

// SameHandle reports whether two account handles refer to the same account
func SameHandle(a, b string) bool {
	return a != "" && Fold(a) == Fold(b)
}
