// Package parc implements precise automatic reference counting: a single
// pass over internal/coreir that rewrites each definition so every
// consumption of an owned value is matched, at exactly the right program
// point, by either a transfer of ownership or an explicit dup/drop.
package parc

import (
	"fmt"

	"surge/internal/coreir"
	"surge/internal/types"
)

// RCKind classifies whether a type's values are reference counted at runtime.
type RCKind uint8

const (
	// NoRC values carry no reference count — copying them is free and
	// dropping them is a no-op.
	NoRC RCKind = iota
	// RC values carry a reference count — duplicating a binding needs a
	// dup, and letting one go needs a drop.
	RC
)

func (r RCKind) String() string {
	if r == RC {
		return "rc"
	}
	return "no-rc"
}

// Classifier classifies coreir.TypeIDs into RC/NoRC using a type interner
// for structural types and an external Newtypes registry for named types.
// Grounded on the same split internal/hir/borrow_build.go uses for
// moveInfoForType: structural recursion for kinds the interner encodes
// directly (array/pointer/reference/own), registry lookup for everything
// else.
type Classifier struct {
	Interner *types.Interner
	Registry coreir.Newtypes
	Resolve  coreir.NameResolver
}

// Classify decides whether ty's values are reference counted. Recurses
// through Own transparently (an owned pointer is not itself an independent
// heap cell; its referent is). References and raw pointers are never
// themselves reference counted — they borrow, they do not own.
//
// An unresolvable type variable (no nominal name, not one of the concrete
// kinds below) defaults to RC: spec.md treats an unknown type conservatively
// so a generic function never under-counts a value it cannot see the shape
// of.
func (c *Classifier) Classify(ty coreir.TypeID) RCKind {
	if c == nil || c.Interner == nil || ty == types.NoTypeID {
		return RC
	}
	t, ok := c.Interner.Lookup(ty)
	if !ok {
		return RC
	}
	switch t.Kind {
	case types.KindOwn:
		return c.Classify(t.Elem)
	case types.KindReference, types.KindPointer:
		return NoRC
	case types.KindUnit:
		return c.lookupByKindName("Unit")
	case types.KindNothing:
		return c.lookupByKindName("Nothing")
	case types.KindBool:
		return c.lookupByKindName("Bool")
	case types.KindInt:
		return c.lookupByKindName("Int")
	case types.KindUint:
		return c.lookupByKindName("Uint")
	case types.KindFloat:
		return c.lookupByKindName("Float")
	case types.KindString:
		return c.lookupByKindName("String")
	case types.KindArray:
		// Arrays are always heap-allocated and reference counted; handled
		// structurally rather than through the registry (see
		// coreir.DefaultBuiltins's doc comment).
		return RC
	default:
		return c.classifyNominal(ty)
	}
}

func (c *Classifier) lookupByKindName(name string) RCKind {
	if c.Registry == nil {
		return RC
	}
	d, ok := c.Registry.Lookup(name)
	if !ok {
		panic(fmt.Errorf("parc: classify: no newtype registered for builtin %q", name))
	}
	return dataKindToRC(d.Kind)
}

// classifyNominal handles struct/union/alias/generic types — none of which
// internal/types.Kind declares constants for in this snapshot of the
// registry, so resolution goes through the injected NameResolver rather
// than a Kind switch arm that does not exist.
func (c *Classifier) classifyNominal(ty coreir.TypeID) RCKind {
	if c.Resolve == nil {
		return RC
	}
	name, ok := c.Resolve.NominalName(ty)
	if !ok {
		// Unresolvable type variable: default to RC (spec.md §4.1).
		return RC
	}
	if c.Registry == nil {
		panic(fmt.Errorf("parc: classify: nominal type %q has no registry to resolve against", name))
	}
	d, ok := c.Registry.Lookup(name)
	if !ok {
		panic(fmt.Errorf("parc: classify: no newtype registered for %q", name))
	}
	return dataKindToRC(d.Kind)
}

func dataKindToRC(k coreir.DataKind) RCKind {
	if k == coreir.DataValue {
		return NoRC
	}
	return RC
}

// FieldSize returns the (raw, scan) word counts for a named data type, as
// registered in Newtypes. Fatal if the type is not registered — spec.md
// §4.1 treats a missing registry entry as an internal compiler error, not a
// recoverable condition, since by construction every Con/ConPat names a
// real, already-checked data type.
func (c *Classifier) FieldSize(typeName string) (raw, scan int) {
	d := c.fieldData(typeName)
	return d.Raw, d.Scan
}

// fieldData looks up typeName's registry entry, panicking (spec.md §4.1: a
// missing registry entry is an internal compiler error, never recoverable)
// if the registry is unset or the name is unregistered.
func (c *Classifier) fieldData(typeName string) coreir.DataDef {
	if c.Registry == nil {
		panic(fmt.Errorf("parc: field size: no registry configured"))
	}
	d, ok := c.Registry.Lookup(typeName)
	if !ok {
		panic(fmt.Errorf("parc: field size: no newtype registered for %q", typeName))
	}
	return d
}

// ConstructorSize sums each field's contribution to the constructor's
// reuse-budget size (spec.md §4.1): a value-typed field is not its own heap
// cell, so it contributes its own raw/scan footprint directly; any other
// field is a reference-counted pointer at this word, one scan word
// regardless of what it points to.
func (c *Classifier) ConstructorSize(fieldTypeNames []string) (raw, scan int) {
	for _, name := range fieldTypeNames {
		d := c.fieldData(name)
		if d.Kind == coreir.DataValue {
			raw += d.Raw
			scan += d.Scan
			continue
		}
		scan++
	}
	return raw, scan
}
