// Package collector groups temporally adjacent activities of the same kind
package collector

import (
	"time"

	"pulse/internal/core/activity"
	"pulse/internal/core/cursor"
	"pulse/internal/core/timespan"
)

// Cursor is the position type the collector scans with
type Cursor = cursor.Cursor[activity.Activity]

// Collector holds the registered root kinds and the adjacency gap
// it keeps no position state; every scan position lives in the caller's cursor
type Collector struct {
	roots []activity.Kind
	gap   timespan.Timespan
}

// New returns a collector with the given gap and initial roots
func New(gap timespan.Timespan, roots ...activity.Kind) *Collector {
	c := &Collector{gap: gap}
	for _, r := range roots {
		c.Register(r)
	}
	return c
}

// Register adds a root kind; registering a kind twice is a no-op
func (c *Collector) Register(k activity.Kind) {
	if k == activity.None {
		return
	}
	for _, r := range c.roots {
		if r == k {
			return
		}
	}
	c.roots = append(c.roots, k)
}

// Roots returns the registered kinds in registration order
func (c *Collector) Roots() []activity.Kind {
	return append([]activity.Kind(nil), c.roots...)
}

// Gap returns the adjacency threshold
func (c *Collector) Gap() timespan.Timespan { return c.gap }

// FindRoot returns the first registered kind a belongs to, or activity.None
func (c *Collector) FindRoot(a activity.Activity) activity.Kind {
	for _, r := range c.roots {
		if a.Kind() == r {
			return r
		}
	}
	return activity.None
}

// FindGroup consumes the maximal run of root activities starting at the cursor
// each member must be within the gap of the previous accepted member
// the cursor is left at the first element that did not join
// a None root returns nil without touching the cursor
func (c *Collector) FindGroup(cur *Cursor, root activity.Kind) []activity.Activity {
	if root == activity.None {
		return nil
	}

	prev := cur.Current()
	group := []activity.Activity{prev}
	cur.Advance()

	for cur.InRange() {
		next := cur.Current()
		if next.Kind() != root {
			break
		}
		if !timespan.Between(prev.Timestamp(), next.Timestamp()).Within(c.gap) {
			break
		}
		group = append(group, next)
		prev = next
		cur.Advance()
	}
	return group
}

// Group is one cluster produced by Partition
type Group struct {
	Root  activity.Kind
	Items []activity.Activity
}

// Len returns the member count
func (g Group) Len() int { return len(g.Items) }

// Newest returns the first member's timestamp
func (g Group) Newest() time.Time {
	if len(g.Items) == 0 {
		return time.Time{}
	}
	return g.Items[0].Timestamp()
}

// Oldest returns the last member's timestamp
func (g Group) Oldest() time.Time {
	if len(g.Items) == 0 {
		return time.Time{}
	}
	return g.Items[len(g.Items)-1].Timestamp()
}

// Span returns the distance between the newest and oldest member
func (g Group) Span() timespan.Timespan { return timespan.Between(g.Newest(), g.Oldest()) }

// Partition splits a newest-first sequence into consecutive groups
// activities whose kind is not registered are skipped
func (c *Collector) Partition(xs []activity.Activity) []Group {
	cur := cursor.New(xs)
	var out []Group
	for cur.InRange() {
		root := c.FindRoot(cur.Current())
		if root == activity.None {
			cur.Advance()
			continue
		}
		out = append(out, Group{Root: root, Items: c.FindGroup(cur, root)})
	}
	return out
}
