// Package coreir is the typed functional Core IR that the PARC pass rewrites
// in place: type/value lambdas, applications, lets and pattern matches, each
// carrying a types.TypeID from an external front end.
//
// The IR is deliberately small compared to internal/hir — PARC operates on
// the normalized core a real front end would lower HIR into, not on HIR
// itself.
package coreir

import (
	"fmt"

	"fortio.org/safecast"

	"surge/internal/types"
)

// TypeID aliases the teacher's own type interner ID so a real front end can
// hand PARC types produced by internal/types directly.
type TypeID = types.TypeID

// Name is a qualified Core identifier: a module-qualified string plus the
// type it was assigned by the front end. Two Names are the same binding iff
// both fields compare equal — Core IR has no separate symbol table.
type Name struct {
	Qualified string
	Type      TypeID
}

// NoName is the zero-value sentinel for an absent Name.
var NoName = Name{}

// IsValid reports whether n names a real binding.
func (n Name) IsValid() bool {
	return n.Qualified != ""
}

func (n Name) String() string {
	return n.Qualified
}

// tempCounter produces fresh, collision-free local names within a single
// pass invocation. Mirrors normCtx.nextTemp in internal/hir/normalize.go.
type tempCounter struct {
	next uint32
}

// Fresh returns the next counter value and a display name built from hint.
func (c *tempCounter) Fresh(hint string) (uint32, string) {
	n := c.next
	c.next++
	if hint == "" {
		hint = "x"
	}
	return n, fmt.Sprintf("%s.%d", hint, n)
}

// FreshChecked is Fresh but panics if the counter would overflow a uint32 —
// the same overflow discipline internal/types/interner.go applies to its own
// monotonic ID counter via fortio.org/safecast.
func (c *tempCounter) FreshChecked(hint string) (uint32, string) {
	next, err := safecast.Conv[uint32](int64(c.next) + 1)
	if err != nil {
		panic(fmt.Errorf("coreir: fresh name counter overflow: %w", err))
	}
	_ = next
	return c.Fresh(hint)
}
