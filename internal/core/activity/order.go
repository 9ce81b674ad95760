package activity

import (
	"slices"
	"time"
)

// Compare orders activities newest first: negative when a is more recent than b
func Compare(a, b Activity) int { return b.Timestamp().Compare(a.Timestamp()) }

// Sort orders xs newest first in place; ties keep their relative order
func Sort(xs []Activity) { slices.SortStableFunc(xs, Compare) }

// IsSorted reports whether xs is ordered newest first
func IsSorted(xs []Activity) bool { return slices.IsSortedFunc(xs, Compare) }

// Same reports whether a and b share platform and timestamp
// identity deliberately ignores every other field
func Same(a, b Activity) bool {
	return a.Platform() == b.Platform() && a.Timestamp().Equal(b.Timestamp())
}

type identity struct {
	platform string
	at       int64
}

func keyOf(a Activity) identity { return identity{a.Platform(), a.Timestamp().UnixNano()} }

// Dedupe drops later duplicates by identity, keeping the first occurrence
func Dedupe(xs []Activity) []Activity {
	seen := make(map[identity]struct{}, len(xs))
	out := make([]Activity, 0, len(xs))
	for _, a := range xs {
		k := keyOf(a)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Merge concatenates the inputs, dedupes by identity and sorts newest first
// earlier inputs win on identity clashes
func Merge(sets ...[]Activity) []Activity {
	var all []Activity
	for _, s := range sets {
		all = append(all, s...)
	}
	out := Dedupe(all)
	Sort(out)
	return out
}

// Filter returns the activities for which keep reports true
func Filter(xs []Activity, keep func(Activity) bool) []Activity {
	out := make([]Activity, 0, len(xs))
	for _, a := range xs {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// Since returns the activities at or after t
func Since(xs []Activity, t time.Time) []Activity {
	return Filter(xs, func(a Activity) bool { return !a.Timestamp().Before(t) })
}
