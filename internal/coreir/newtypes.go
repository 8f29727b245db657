package coreir

// DataKind distinguishes a value type (unboxed, no reference count — e.g.
// Int, Bool, a struct of only value fields) from a normal type (heap
// allocated, reference counted).
type DataKind uint8

const (
	// DataValue marks an unboxed, non-reference-counted representation.
	DataValue DataKind = iota
	// DataNormal marks a heap-allocated, reference-counted representation.
	DataNormal
)

func (k DataKind) String() string {
	if k == DataValue {
		return "value"
	}
	return "normal"
}

// DataDef is one registry entry: how a named data type is represented at
// runtime. Raw is the number of non-scannable (raw) machine words its
// representation occupies; Scan is the number of scannable (reference
// counted, or further recursively-scanned) fields — exactly spec.md's
// "ValueType(raw, scan)" pairing.
type DataDef struct {
	Kind DataKind
	Raw  int
	Scan int
}

// Newtypes is the external, read-only data-type registry PARC consults to
// classify named types and size constructors. It is supplied by a real front
// end; internal/parcconfig provides a concrete TOML-backed implementation so
// the pass is runnable standalone.
type Newtypes interface {
	Lookup(typeName string) (DataDef, bool)
}

// NameResolver supplies the registered type-constructor name for a TypeID
// that does not resolve to one of the few built-in kinds Classify handles
// directly (array, pointer, reference, own). A real front end's type
// interner implements this for struct/union/alias types; PARC treats an
// unresolved TypeID as an unresolvable type variable.
type NameResolver interface {
	NominalName(ty TypeID) (string, bool)
}

// staticNewtypes is a fixed, in-memory Newtypes useful for tests and for
// seeding defaults before a real registry is loaded.
type staticNewtypes struct {
	entries map[string]DataDef
}

// NewStaticNewtypes builds a Newtypes backed by the given map. Callers own
// the map; it is not copied.
func NewStaticNewtypes(entries map[string]DataDef) Newtypes {
	return &staticNewtypes{entries: entries}
}

func (s *staticNewtypes) Lookup(typeName string) (DataDef, bool) {
	d, ok := s.entries[typeName]
	return d, ok
}

// DefaultBuiltins is the minimal registry entries every front end is
// expected to provide for the primitive named types Classify looks up by
// kind (Int, Uint, Float, Bool, Unit, Nothing, String). Arrays have no
// entry: Classify handles them structurally, not through the registry.
func DefaultBuiltins() map[string]DataDef {
	return map[string]DataDef{
		"Int":     {Kind: DataValue, Raw: 1, Scan: 0},
		"Uint":    {Kind: DataValue, Raw: 1, Scan: 0},
		"Float":   {Kind: DataValue, Raw: 1, Scan: 0},
		"Bool":    {Kind: DataValue, Raw: 1, Scan: 0},
		"Unit":    {Kind: DataValue, Raw: 0, Scan: 0},
		"Nothing": {Kind: DataValue, Raw: 0, Scan: 0},
		"String":  {Kind: DataNormal, Raw: 0, Scan: 0},
	}
}
