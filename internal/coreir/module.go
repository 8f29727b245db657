package coreir

// Module is a whole Core program: a name plus a sequence of top-level
// definition groups, processed in order. Mirrors the Module/Func split of
// internal/hir/module.go, minus everything that module tracks for later
// compiler stages (imports, symbol tables) — those belong to the front end,
// not to PARC's input.
type Module struct {
	Name   string
	Groups []DefGroup
}

// FindDef returns the first Def in the module bound to name, searching
// groups in order.
func (m *Module) FindDef(name Name) (*Def, bool) {
	if m == nil {
		return nil, false
	}
	for _, g := range m.Groups {
		for _, d := range g.Defs {
			if d.Name == name {
				return d, true
			}
		}
	}
	return nil, false
}
