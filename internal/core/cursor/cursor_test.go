package cursor

import (
	"testing"

	"pulse/internal/platform/testkit"
)

func TestWalkForward(t *testing.T) {
	t.Parallel()

	c := New([]string{"a", "b", "c"})
	var got []string
	for c.InRange() {
		got = append(got, c.Current())
		c.Advance()
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("got %v", got)
	}
	if c.Position() != 3 || c.Remaining() != 0 {
		t.Fatalf("pos %d remaining %d", c.Position(), c.Remaining())
	}
}

func TestCurrentOutOfRangePanics(t *testing.T) {
	t.Parallel()

	c := New([]int{1})
	c.Advance()
	testkit.MustPanic(t, func() { _ = c.Current() })

	c.Seek(-1)
	if c.InRange() {
		t.Fatalf("negative position reported in range")
	}
	testkit.MustPanic(t, func() { _ = c.Current() })

	empty := New[int](nil)
	if empty.InRange() {
		t.Fatalf("empty cursor in range")
	}
}

func TestSeek(t *testing.T) {
	t.Parallel()

	c := New([]int{10, 20, 30})
	c.Seek(2)
	testkit.MustNotPanic(t, func() {
		if c.Current() != 30 {
			t.Fatalf("Current = %d", c.Current())
		}
	})
	if c.Remaining() != 1 {
		t.Fatalf("Remaining = %d", c.Remaining())
	}
	c.Seek(0)
	if c.Current() != 10 || c.Len() != 3 {
		t.Fatalf("seek back failed")
	}
}
