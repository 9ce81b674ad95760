package testkit

import "testing"

func TestAssertions(t *testing.T) {
	MustPanic(t, func() { panic("boom") })
	MustNotPanic(t, func() {})
	MustContain(t, "push create-tag watch", "create-tag")
	if panics(func() {}) {
		t.Fatal("panics reported a clean call")
	}
}
