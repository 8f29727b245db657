package parc

import "surge/internal/coreir"

// freeLocals computes spec.md §4.5's `caps = free_locals(expr)`: every
// ordinary (non-primitive) variable name reachable from e without first
// passing through a binding form that shadows it — a lambda's own
// parameters, a let group's own definitions, or a branch's pattern
// variables. These are the names a lambda must capture and own at runtime.
//
// Grounded on the same structural, one-arm-per-ExprKind walk
// internal/parc/casenorm.go's substituteExpr uses, applied to collection
// instead of substitution.
func freeLocals(e *coreir.Expr) []coreir.Name {
	w := &freeVarWalker{bound: map[coreir.Name]struct{}{}, seen: map[coreir.Name]struct{}{}}
	w.walk(e)
	return w.out
}

type freeVarWalker struct {
	bound map[coreir.Name]struct{}
	seen  map[coreir.Name]struct{}
	out   []coreir.Name
}

func (w *freeVarWalker) use(n coreir.Name) {
	if _, ok := w.bound[n]; ok {
		return
	}
	if _, ok := w.seen[n]; ok {
		return
	}
	w.seen[n] = struct{}{}
	w.out = append(w.out, n)
}

// withBound runs f with names added to the bound set, then restores it —
// shadowing is scoped to exactly the subexpression names are bound over.
func (w *freeVarWalker) withBound(names []coreir.Name, f func()) {
	added := make([]coreir.Name, 0, len(names))
	for _, n := range names {
		if _, already := w.bound[n]; already {
			continue
		}
		w.bound[n] = struct{}{}
		added = append(added, n)
	}
	f()
	for _, n := range added {
		delete(w.bound, n)
	}
}

func (w *freeVarWalker) walk(e *coreir.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case coreir.ExprVar:
		d := e.Data.(coreir.VarData)
		if d.Info.Kind == coreir.VarInfoNone {
			w.use(d.Name)
		}
	case coreir.ExprLit:
	case coreir.ExprTypeApp:
		d := e.Data.(coreir.TypeAppData)
		w.walk(d.Func)
	case coreir.ExprTypeLambda:
		d := e.Data.(coreir.TypeLambdaData)
		w.walk(d.Body)
	case coreir.ExprLambda:
		d := e.Data.(coreir.LambdaData)
		names := make([]coreir.Name, len(d.Params))
		for i, p := range d.Params {
			names[i] = p.Name
		}
		w.withBound(names, func() { w.walk(d.Body) })
	case coreir.ExprCon:
		d := e.Data.(coreir.ConData)
		for _, a := range d.Args {
			w.walk(a)
		}
	case coreir.ExprApp:
		d := e.Data.(coreir.AppData)
		w.walk(d.Func)
		for _, a := range d.Args {
			w.walk(a)
		}
	case coreir.ExprLet:
		d := e.Data.(coreir.LetData)
		names := make([]coreir.Name, len(d.Group.Defs))
		for i, def := range d.Group.Defs {
			names[i] = def.Name
		}
		w.withBound(names, func() {
			for _, def := range d.Group.Defs {
				w.walk(def.Expr)
			}
			w.walk(d.Body)
		})
	case coreir.ExprCase:
		d := e.Data.(coreir.CaseData)
		for _, s := range d.Scrutinees {
			w.walk(s)
		}
		for _, br := range d.Branches {
			pvs := collectPatternVars(br.Patterns)
			w.withBound(pvs, func() {
				for _, g := range br.Guards {
					w.walk(g.Test)
					w.walk(g.Result)
				}
			})
		}
	}
}
