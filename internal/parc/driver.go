package parc

import (
	"errors"
	"fmt"

	"surge/internal/coreir"
)

// ParcModule is the Definition Driver (spec.md §4.6): it runs PARC over
// every definition group in m, in reverse program order, and, within a
// recursive group, over the defs themselves in reverse. Each definition is
// analyzed with its own fresh State, so this order does not change the
// result of any single definition.
//
// Each top-level definition's analysis starts isolated (spec.md §4.3): no
// liveness threads between unrelated top-level definitions. A panic while
// processing one definition (an *ICE, or a recovered runtime panic) is
// caught at that definition's own boundary and folded into the returned
// error via errors.Join, so one malformed definition does not prevent the
// rest of the module from being reported on in the same pass — the same
// reasoning behind internal/mir/validate.go's errors.Join-accumulating walk.
func ParcModule(c *Classifier, m *coreir.Module) error {
	if m == nil {
		return nil
	}
	if Disabled() {
		// spec.md §6's enable flag: with it off, the pass returns the input
		// unchanged (the "Disabled idempotence" property in §8).
		return nil
	}
	groups := make([]coreir.DefGroup, len(m.Groups))
	copy(groups, m.Groups)

	var errs []error
	for i := len(groups) - 1; i >= 0; i-- {
		g, err := parcDefGroup(c, groups[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		groups[i] = g
	}
	m.Groups = groups
	return errors.Join(errs...)
}

// parcDefGroup runs PARC over every Def in g. Within a recursive group,
// every def's body may reference every other def in the group (including
// itself), so all def names in the group are owned for the whole group's
// duration; in a non-recursive group each def is independent and starts
// with no owned names at all.
func parcDefGroup(c *Classifier, g coreir.DefGroup) (coreir.DefGroup, error) {
	defs := make([]*coreir.Def, len(g.Defs))
	copy(defs, g.Defs)

	var errs []error
	if g.Recursive {
		groupNames := make([]coreir.Name, len(defs))
		for i, d := range defs {
			groupNames[i] = d.Name
		}
		for i := len(defs) - 1; i >= 0; i-- {
			nd, err := parcDefWithOwned(c, defs[i], groupNames)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			defs[i] = nd
		}
	} else {
		for i := len(defs) - 1; i >= 0; i-- {
			nd, err := parcDef(c, defs[i])
			if err != nil {
				errs = append(errs, err)
				continue
			}
			defs[i] = nd
		}
	}

	g.Defs = defs
	return g, errors.Join(errs...)
}

// parcDef analyzes a single, isolated top-level definition.
func parcDef(c *Classifier, d *coreir.Def) (nd *coreir.Def, err error) {
	return parcDefWithOwned(c, d, nil)
}

// parcDefWithOwned is parcDef generalized with an extra set of names owned
// for the duration of this def's analysis — used by parcDefGroup to make a
// recursive group's sibling names available to every def in the group.
func parcDefWithOwned(c *Classifier, d *coreir.Def, extraOwned []coreir.Name) (nd *coreir.Def, err error) {
	if d == nil {
		return nil, nil
	}
	defer recoverICE(defLabel(d), &err)

	st := NewState(extraOwned)
	st.Isolated(func() {
		d.Expr = Transform(c, st, d.Expr)
	})
	return d, nil
}

func defLabel(d *coreir.Def) string {
	if d == nil || d.Name.Qualified == "" {
		return "<anonymous>"
	}
	return d.Name.Qualified
}

// ParcModuleNamed is ParcModule, wrapping any returned error with the
// module's own name — used by the CLI (cmd/parcc/run.go, dump.go) so each
// reported error names the module it came from.
func ParcModuleNamed(c *Classifier, m *coreir.Module) error {
	if err := ParcModule(c, m); err != nil {
		name := "<module>"
		if m != nil && m.Name != "" {
			name = m.Name
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
