package strings

import (
	"testing"

	"pulse/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	in := []int{1, 2, 3}
	if got := IfEmpty(in, []int{9}); len(got) != 3 || got[0] != 1 {
		t.Fatalf("IfEmpty returned wrong slice: %#v", got)
	}

	var empty []string
	if got := IfEmpty(empty, []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("IfEmpty did not return default: %#v", got)
	}
}

func TestMustPrefix(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"timeline":    "/timeline",
		"/timeline/":  "/timeline",
		"  /vitals  ": "/vitals",
		"a/b":         "/a/b",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q want %q", in, got, want)
		}
	}
	testkit.MustPanic(t, func() { _ = MustPrefix(" / ") })
}

func TestMustString(t *testing.T) {
	t.Parallel()

	if MustString("x", "name") != "x" {
		t.Fatalf("MustString changed input")
	}
	testkit.MustPanic(t, func() { _ = MustString("  ", "name") })
}

func TestFold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want bool
	}{
		{"Octocat", "octocat", true},
		{" octocat ", "OCTOCAT", true},
		{"Straße", "STRASSE", true},
		{"alice", "bob", false},
		{"", "", false},
	}
	for _, c := range cases {
		if got := SameHandle(c.a, c.b); got != c.want {
			t.Fatalf("SameHandle(%q,%q) = %v want %v", c.a, c.b, got, c.want)
		}
	}
}
