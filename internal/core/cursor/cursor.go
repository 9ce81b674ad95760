// Package cursor provides a forward-only position over an immutable ordered slice
package cursor

import "fmt"

// Cursor is a caller-owned position into items
// the backing slice is never modified through the cursor
type Cursor[T any] struct {
	items []T
	pos   int
}

// New returns a cursor at position 0 over items
func New[T any](items []T) *Cursor[T] { return &Cursor[T]{items: items} }

// Len returns the length of the backing sequence
func (c *Cursor[T]) Len() int { return len(c.items) }

// Position returns the zero-based position
func (c *Cursor[T]) Position() int { return c.pos }

// Seek sets the position; no clamping is applied
func (c *Cursor[T]) Seek(pos int) { c.pos = pos }

// InRange reports whether Current may be called
func (c *Cursor[T]) InRange() bool { return c.pos >= 0 && c.pos < len(c.items) }

// Current returns the element at the position
// calling it out of range is a programming error and panics
func (c *Cursor[T]) Current() T {
	if !c.InRange() {
		panic(fmt.Sprintf("cursor: position %d out of range [0,%d)", c.pos, len(c.items)))
	}
	return c.items[c.pos]
}

// Advance moves one step forward
func (c *Cursor[T]) Advance() { c.pos++ }

// Remaining returns how many elements are left from the position onward
func (c *Cursor[T]) Remaining() int {
	if c.pos >= len(c.items) {
		return 0
	}
	if c.pos < 0 {
		return len(c.items)
	}
	return len(c.items) - c.pos
}
