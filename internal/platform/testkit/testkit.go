// Package testkit holds assertions and seam helpers shared by tests
package testkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// MustPanic fails t unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	if !panics(fn) {
		t.Fatal("expected panic, got none")
	}
}

// MustNotPanic fails t if fn panics
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if v := recover(); v != nil {
			t.Fatalf("unexpected panic: %v", v)
		}
	}()
	fn()
}

func panics(fn func()) (did bool) {
	defer func() { did = recover() != nil }()
	fn()
	return false
}

// MustContain fails t when s lacks sub. Long output goes to a temp file
// named in the failure instead of the test log.
func MustContain(t *testing.T, s, sub string) {
	t.Helper()
	if strings.Contains(s, sub) {
		return
	}
	if len(s) <= 512 {
		t.Fatalf("%q does not contain %q", s, sub)
	}
	path := filepath.Join(t.TempDir(), "output.txt")
	_ = os.WriteFile(path, []byte(s), 0o600)
	t.Fatalf("output does not contain %q, full output in %s", sub, path)
}
