package activity

import (
	"testing"
	"time"
)

func at(platform string, hh, mm int) Activity {
	ts := time.Date(2024, 1, 1, hh, mm, 0, 0, time.UTC)
	return WatchActivity{Base: MustBase(platform, ts), Username: "u", URL: "https://x", Repository: "r"}
}

func TestSort_NewestFirst(t *testing.T) {
	t.Parallel()

	a, b, c := at("gh", 10, 0), at("gh", 9, 50), at("gh", 9, 40)
	perms := [][]Activity{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}
	for _, p := range perms {
		xs := append([]Activity(nil), p...)
		Sort(xs)
		if xs[0] != a || xs[1] != b || xs[2] != c {
			t.Fatalf("sort produced %v", xs)
		}
		if !IsSorted(xs) {
			t.Fatalf("IsSorted false after Sort")
		}
	}
	if Compare(a, b) >= 0 || Compare(b, a) <= 0 || Compare(a, a) != 0 {
		t.Fatalf("compare is not a strict ordering")
	}
}

func TestSame_IgnoresPayload(t *testing.T) {
	t.Parallel()

	x := at("gh", 10, 0)
	y := PushActivity{Base: MustBase("gh", x.Timestamp()), Username: "other", CommitRef: "zz"}
	if !Same(x, y) {
		t.Fatalf("platform+timestamp should define identity")
	}
	if Same(x, at("gl", 10, 0)) {
		t.Fatalf("different platform should differ")
	}
}

func TestMergeAndDedupe(t *testing.T) {
	t.Parallel()

	fresh := []Activity{at("gh", 9, 0), at("gh", 11, 0)}
	stored := []Activity{at("gh", 11, 0), at("gh", 10, 0)}
	out := Merge(fresh, stored)
	if len(out) != 3 {
		t.Fatalf("len %d want 3", len(out))
	}
	if out[0].Timestamp().Hour() != 11 || out[2].Timestamp().Hour() != 9 {
		t.Fatalf("merge order wrong: %v", out)
	}

	since := Since(out, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	if len(since) != 2 {
		t.Fatalf("Since len %d want 2", len(since))
	}
}
