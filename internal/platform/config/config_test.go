package config

import (
	"reflect"
	"testing"
	"time"

	kit "pulse/internal/platform/testkit"
)

func TestPrefix(t *testing.T) {
	tl := New().Prefix("CORE_").Prefix("TIMELINE_")
	if got := tl.key("GAP"); got != "CORE_TIMELINE_GAP" {
		t.Fatalf("key() = %q", got)
	}
}

func TestMustString(t *testing.T) {
	c := New().Prefix("CORE_TIMELINE_")
	t.Setenv("CORE_TIMELINE_GITHUB_LOGIN", "  octocat ")
	t.Setenv("CORE_TIMELINE_TABLE", "   ")

	if got := c.MustString("GITHUB_LOGIN"); got != "octocat" {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MustString("TABLE") })
	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMayScalars(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_PAGES", " 5 ")
	t.Setenv("T_BAD_INT", "five")
	t.Setenv("T_TEMP", "0.25")
	t.Setenv("T_DRY", "1")
	t.Setenv("T_BAD_BOOL", "maybe")
	t.Setenv("T_TTL", "90s")
	t.Setenv("T_BAD_TTL", "soon")

	if got := c.MayString("MISSING", "./data"); got != "./data" {
		t.Fatalf("MayString default = %q", got)
	}
	if c.MayInt("PAGES", 3) != 5 || c.MayInt("BAD_INT", 3) != 3 || c.MayInt("MISSING", 3) != 3 {
		t.Fatal("MayInt")
	}
	if c.MayFloat64("TEMP", 0) != 0.25 {
		t.Fatal("MayFloat64")
	}
	if !c.MayBool("DRY", false) || !c.MayBool("BAD_BOOL", true) {
		t.Fatal("MayBool")
	}
	if c.MayDuration("TTL", 0) != 90*time.Second || c.MayDuration("BAD_TTL", time.Hour) != time.Hour {
		t.Fatal("MayDuration")
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"15m":   15 * time.Minute,
		"1d":    24 * time.Hour,
		"1d12h": 36 * time.Hour,
		"7d":    7 * 24 * time.Hour,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		if err != nil || got != want {
			t.Fatalf("ParseDuration(%q) = %v, %v", in, got, err)
		}
	}
	for _, bad := range []string{"d", "1dx", "-1d", "soon"} {
		if _, err := ParseDuration(bad); err == nil {
			t.Fatalf("ParseDuration(%q) should fail", bad)
		}
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_ROOTS", " push , ,watch,")
	t.Setenv("T_BLANK", " , ")

	if got := c.MayCSV("ROOTS", nil); !reflect.DeepEqual(got, []string{"push", "watch"}) {
		t.Fatalf("MayCSV = %v", got)
	}
	def := []string{"tag"}
	if got := c.MayCSV("BLANK", def); !reflect.DeepEqual(got, def) {
		t.Fatalf("blank MayCSV = %v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("T_")
	t.Setenv("T_BACKEND", "PG")
	t.Setenv("T_BAD", "s3")

	if got := c.MayEnum("BACKEND", "file", "file", "pg", "redis"); got != "PG" {
		t.Fatalf("MayEnum = %q", got)
	}
	if got := c.MayEnum("MISSING", "file", "file", "pg"); got != "file" {
		t.Fatalf("MayEnum default = %q", got)
	}
	if got := c.MayEnum("MISSING", "", "file"); got != "" {
		t.Fatalf("empty default = %q", got)
	}
	kit.MustPanic(t, func() { _ = c.MayEnum("BAD", "file", "file", "pg", "redis") })
}
