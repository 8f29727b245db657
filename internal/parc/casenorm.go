package parc

import (
	"fmt"

	"surge/internal/coreir"
)

// CaseNormCtx threads a fresh-name counter through case normalization, the
// same way normCtx.nextTemp threads through internal/hir/normalize.go.
type CaseNormCtx struct {
	next uint32
}

// newMatchTemp produces the next "match<k>" fresh name (spec.md §6).
func (ctx *CaseNormCtx) newMatchTemp(ty coreir.TypeID) coreir.Name {
	ctx.next++
	return coreir.Name{Qualified: fmt.Sprintf("match%d", ctx.next), Type: ty}
}

// isNormalizedCase reports whether e (an ExprCase node) is already in
// normal form per spec.md §4.4: every scrutinee is a bare Var and no
// branch has a top-level PatVar pattern. transformCase calls NormalizeCase
// first whenever this is false.
func isNormalizedCase(e *coreir.Expr) bool {
	d := e.Data.(coreir.CaseData)
	for _, scr := range d.Scrutinees {
		if scr.Kind != coreir.ExprVar {
			return false
		}
	}
	for _, br := range d.Branches {
		for _, p := range br.Patterns {
			if p != nil && p.Kind == coreir.PatVar {
				return false
			}
		}
	}
	return true
}

// NormalizeCase rewrites e (an ExprCase node) into normal form:
//
//  1. every scrutinee that is not already a bare variable reference is
//     hoisted into a fresh `let`, so the case's scrutinees are always
//     variables;
//  2. every PatVar wrapper pattern ("bind this subtree to a name, then keep
//     matching Sub against it") is eliminated by substituting the bound
//     name, wherever it occurs in a guard or result expression, with a
//     direct reference to whatever the pattern position is already known
//     to equal — the scrutinee variable at the top level, or a field
//     projection of it for a nested PatVar.
//
// Returns the rewritten expression (an ExprLet wrapping the now-normalized
// ExprCase if any scrutinee needed hoisting, or the case itself unchanged
// in shape otherwise).
func NormalizeCase(ctx *CaseNormCtx, e *coreir.Expr) *coreir.Expr {
	if e == nil || e.Kind != coreir.ExprCase {
		return e
	}
	data := e.Data.(coreir.CaseData)

	lets := make([]*coreir.Def, 0, len(data.Scrutinees))
	scrutineeVars := make([]*coreir.Expr, len(data.Scrutinees))
	for i, scr := range data.Scrutinees {
		if scr.Kind == coreir.ExprVar {
			scrutineeVars[i] = scr
			continue
		}
		tmp := ctx.newMatchTemp(scr.Type)
		lets = append(lets, &coreir.Def{Name: tmp, Expr: scr})
		scrutineeVars[i] = &coreir.Expr{
			Kind: coreir.ExprVar,
			Type: scr.Type,
			Data: coreir.VarData{Name: tmp},
		}
	}

	branches := make([]coreir.Branch, len(data.Branches))
	for i, br := range data.Branches {
		branches[i] = normalizeBranch(br, scrutineeVars)
	}

	caseExpr := &coreir.Expr{
		Kind: coreir.ExprCase,
		Type: e.Type,
		Data: coreir.CaseData{Scrutinees: scrutineeVars, Branches: branches},
	}

	if len(lets) == 0 {
		return caseExpr
	}

	result := caseExpr
	// Wrap innermost-first so the lets end up nested in the order the
	// scrutinees were hoisted.
	for i := len(lets) - 1; i >= 0; i-- {
		result = &coreir.Expr{
			Kind: coreir.ExprLet,
			Type: result.Type,
			Data: coreir.LetData{
				Group: coreir.DefGroup{Defs: []*coreir.Def{lets[i]}},
				Body:  result,
			},
		}
	}
	return result
}

func normalizeBranch(br coreir.Branch, scrutineeVars []*coreir.Expr) coreir.Branch {
	patterns := make([]*coreir.Pattern, len(br.Patterns))
	subst := map[coreir.Name]*coreir.Expr{}
	for i, p := range br.Patterns {
		var eq *coreir.Expr
		if i < len(scrutineeVars) {
			eq = scrutineeVars[i]
		}
		patterns[i] = eliminatePatVar(p, eq, subst)
	}

	guards := make([]coreir.Guard, len(br.Guards))
	for i, g := range br.Guards {
		guards[i] = coreir.Guard{
			Test:   substituteExpr(g.Test, subst),
			Result: substituteExpr(g.Result, subst),
		}
	}
	return coreir.Branch{Patterns: patterns, Guards: guards}
}

// eliminatePatVar strips PatVar wrappers out of p, recording a substitution
// for each bound name in subst. eq is an expression known to equal p's
// value at this position (nil if unknown, e.g. a field of a pattern that
// arrived without a tracked access path — such a binding cannot be
// substituted away and is left as a PatVar so the Expression Transformer
// still sees a name to bind).
func eliminatePatVar(p *coreir.Pattern, eq *coreir.Expr, subst map[coreir.Name]*coreir.Expr) *coreir.Pattern {
	if p == nil {
		return nil
	}
	switch p.Kind {
	case coreir.PatVar:
		d := p.Data.(coreir.VarPatData)
		if eq != nil {
			subst[d.Name] = eq
			return eliminatePatVar(d.Sub, eq, subst)
		}
		// No tracked access path: keep the wrapper, but still normalize
		// beneath it in case Sub itself contains an eliminable PatVar.
		return &coreir.Pattern{
			Kind: coreir.PatVar,
			Type: p.Type,
			Data: coreir.VarPatData{Name: d.Name, Sub: eliminatePatVar(d.Sub, nil, subst)},
		}
	case coreir.PatCon:
		d := p.Data.(coreir.ConPatData)
		fields := make([]*coreir.Pattern, len(d.Fields))
		for i, f := range d.Fields {
			var fieldEq *coreir.Expr
			if eq != nil {
				fieldEq = fieldProjection(eq, d.TypeName, d.ConName, i, f.Type)
			}
			fields[i] = eliminatePatVar(f, fieldEq, subst)
		}
		return &coreir.Pattern{
			Kind: coreir.PatCon,
			Type: p.Type,
			Data: coreir.ConPatData{TypeName: d.TypeName, ConName: d.ConName, Fields: fields},
		}
	default:
		return p
	}
}

// fieldProjection builds a field-extraction expression for substitution
// purposes only: a call to the "field_at" runtime primitive, the same way
// primitives.go builds dup/drop calls, naming the constructor and field
// index it projects. The Expression Transformer never has to interpret
// this — it is a plain Core expression like any other.
func fieldProjection(parent *coreir.Expr, typeName, conName string, idx int, fieldTy coreir.TypeID) *coreir.Expr {
	idxLit := &coreir.Expr{
		Kind: coreir.ExprLit,
		Type: coreir.TypeID(0),
		Data: coreir.LitData{Kind: coreir.LitInt, Int: int64(idx)},
	}
	conLit := &coreir.Expr{
		Kind: coreir.ExprLit,
		Type: coreir.TypeID(0),
		Data: coreir.LitData{Kind: coreir.LitString, String: typeName + "." + conName},
	}
	return primCall("field_at", fieldTy, parent, conLit, idxLit)
}

// substituteExpr replaces every ExprVar reference to a name in subst with
// its recorded expression. Leaves everything else structurally unchanged —
// this runs once, immediately after case normalization produces the
// substitution map, well before the Expression Transformer's own traversal.
func substituteExpr(e *coreir.Expr, subst map[coreir.Name]*coreir.Expr) *coreir.Expr {
	if e == nil || len(subst) == 0 {
		return e
	}
	switch e.Kind {
	case coreir.ExprVar:
		d := e.Data.(coreir.VarData)
		if repl, ok := subst[d.Name]; ok {
			return repl
		}
		return e
	case coreir.ExprApp:
		d := e.Data.(coreir.AppData)
		args := make([]*coreir.Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = substituteExpr(a, subst)
		}
		return &coreir.Expr{Kind: e.Kind, Type: e.Type, Data: coreir.AppData{
			Func: substituteExpr(d.Func, subst), Args: args,
		}}
	case coreir.ExprCon:
		d := e.Data.(coreir.ConData)
		args := make([]*coreir.Expr, len(d.Args))
		for i, a := range d.Args {
			args[i] = substituteExpr(a, subst)
		}
		return &coreir.Expr{Kind: e.Kind, Type: e.Type, Data: coreir.ConData{
			TypeName: d.TypeName, ConName: d.ConName, Args: args,
		}}
	case coreir.ExprLambda:
		d := e.Data.(coreir.LambdaData)
		return &coreir.Expr{Kind: e.Kind, Type: e.Type, Data: coreir.LambdaData{
			Params: d.Params, Body: substituteExpr(d.Body, subst),
		}}
	case coreir.ExprLet:
		d := e.Data.(coreir.LetData)
		defs := make([]*coreir.Def, len(d.Group.Defs))
		for i, def := range d.Group.Defs {
			defs[i] = &coreir.Def{Name: def.Name, Expr: substituteExpr(def.Expr, subst)}
		}
		return &coreir.Expr{Kind: e.Kind, Type: e.Type, Data: coreir.LetData{
			Group: coreir.DefGroup{Recursive: d.Group.Recursive, Defs: defs},
			Body:  substituteExpr(d.Body, subst),
		}}
	default:
		return e
	}
}
