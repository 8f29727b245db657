package parc

import (
	"testing"

	"surge/internal/coreir"
)

func wildPattern() *coreir.Pattern {
	return &coreir.Pattern{Kind: coreir.PatWild, Data: coreir.WildData{}}
}

func TestTransformBranchDropsDeadPatternVar(t *testing.T) {
	c, in := newTestClassifier(t)
	v := coreir.Name{Qualified: "v", Type: in.Builtins().String}
	st := NewState(nil)

	br := coreir.Branch{
		Patterns: []*coreir.Pattern{{
			Kind: coreir.PatVar,
			Data: coreir.VarPatData{Name: v, Sub: wildPattern()},
		}},
		Guards: []coreir.Guard{{Result: litInt(0)}},
	}

	res := transformBranch(c, st, br, nil)
	result := res.Branch.Guards[0].Result
	if result.Kind != coreir.ExprLet {
		t.Fatalf("expected the unused pattern var to be dropped before the guard result, got %v", result.Kind)
	}
	dropCall := result.Data.(coreir.LetData).Group.Defs[0].Expr.Data.(coreir.AppData)
	if dropCall.Func.Data.(coreir.VarData).Info.Template != PrimDrop {
		t.Fatalf("expected the sequenced expression to be a drop call")
	}
	if st.IsLive(v) {
		t.Fatalf("a branch-local pattern var should not leak into the enclosing live set")
	}
}

func TestTransformBranchNoDropForUsedPatternVar(t *testing.T) {
	c, in := newTestClassifier(t)
	v := coreir.Name{Qualified: "v", Type: in.Builtins().String}
	st := NewState(nil)

	br := coreir.Branch{
		Patterns: []*coreir.Pattern{{
			Kind: coreir.PatVar,
			Data: coreir.VarPatData{Name: v, Sub: wildPattern()},
		}},
		Guards: []coreir.Guard{{Result: varNamed(v)}},
	}

	res := transformBranch(c, st, br, nil)
	result := res.Branch.Guards[0].Result
	if result.Kind != coreir.ExprVar {
		t.Fatalf("a pattern var consumed by its own branch result needs no drop, got %v", result.Kind)
	}
}

func TestTransformCaseMergesBranchLivenessByUnion(t *testing.T) {
	c, in := newTestClassifier(t)
	shared := coreir.Name{Qualified: "shared", Type: in.Builtins().String}
	st := NewState([]coreir.Name{shared})

	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{varNamed(coreir.Name{Qualified: "disc"})},
			Branches: []coreir.Branch{
				{
					Patterns: []*coreir.Pattern{wildPattern()},
					Guards:   []coreir.Guard{{Result: varNamed(shared)}},
				},
				{
					Patterns: []*coreir.Pattern{wildPattern()},
					Guards:   []coreir.Guard{{Result: litInt(0)}},
				},
			},
		},
	}

	Transform(c, st, e)
	if !st.IsLive(shared) {
		t.Fatalf("shared should be live after the case: at least one branch needs it, so every path must keep it alive")
	}
}

// TestTransformCaseNormalizesNonVarScrutinee pins the wiring spec.md §4.5's
// case rule requires: a scrutinee that is not already a bare variable must
// be normalized (hoisted into a let) before Transform's own case analysis
// ever sees it, not processed as if it were already in normal form.
func TestTransformCaseNormalizesNonVarScrutinee(t *testing.T) {
	c, _ := newTestClassifier(t)
	st := NewState(nil)

	scrutinee := &coreir.Expr{Kind: coreir.ExprApp, Data: coreir.AppData{Func: varNamed(coreir.Name{Qualified: "f"})}}
	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{scrutinee},
			Branches: []coreir.Branch{{
				Patterns: []*coreir.Pattern{wildPattern()},
				Guards:   []coreir.Guard{{Result: litInt(1)}},
			}},
		},
	}

	got := Transform(c, st, e)
	if got.Kind != coreir.ExprLet {
		t.Fatalf("expected the non-var scrutinee to be hoisted into a let before case analysis, got %v", got.Kind)
	}
	body := got.Data.(coreir.LetData).Body
	if body.Kind != coreir.ExprCase {
		t.Fatalf("expected the let body to be the normalized, transformed case, got %v", body.Kind)
	}
	caseScrutinee := body.Data.(coreir.CaseData).Scrutinees[0]
	if caseScrutinee.Kind != coreir.ExprVar {
		t.Fatalf("expected the case's own scrutinee to now be a bare variable, got %v", caseScrutinee.Kind)
	}
}

// TestTransformBranchGuardsAnalyzedIndependently pins spec.md §4.5.1:
// guards within one branch are mutually exclusive, exactly like sibling
// branches, so one guard's result referencing a name must not make a
// different guard's own last use of an unrelated name get dup'd.
func TestTransformBranchGuardsAnalyzedIndependently(t *testing.T) {
	c, in := newTestClassifier(t)
	a := coreir.Name{Qualified: "a", Type: in.Builtins().String}
	b := coreir.Name{Qualified: "b", Type: in.Builtins().String}
	st := NewState([]coreir.Name{a, b})

	br := coreir.Branch{
		Patterns: []*coreir.Pattern{wildPattern()},
		Guards: []coreir.Guard{
			{Test: varNamed(a), Result: litInt(0)},
			{Test: varNamed(b), Result: litInt(1)},
		},
	}

	res := transformBranch(c, st, br, nil)
	if res.Branch.Guards[0].Test.Kind != coreir.ExprVar {
		t.Fatalf("guard 0's last use of a should not be dup'd just because guard 1 also uses b, got %v", res.Branch.Guards[0].Test.Kind)
	}
	if res.Branch.Guards[1].Test.Kind != coreir.ExprVar {
		t.Fatalf("guard 1's last use of b should not be dup'd just because guard 0 also uses a, got %v", res.Branch.Guards[1].Test.Kind)
	}
	if !res.Live.has(a) || !res.Live.has(b) {
		t.Fatalf("the branch's observed entry liveness should union both guards' independent results")
	}
}

func TestTransformBranchIndependentAnalysisNoCrossTalk(t *testing.T) {
	c, in := newTestClassifier(t)
	a := coreir.Name{Qualified: "a", Type: in.Builtins().String}
	b := coreir.Name{Qualified: "b", Type: in.Builtins().String}
	st := NewState([]coreir.Name{a, b})

	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{varNamed(coreir.Name{Qualified: "disc"})},
			Branches: []coreir.Branch{
				{Patterns: []*coreir.Pattern{wildPattern()}, Guards: []coreir.Guard{{Result: varNamed(a)}}},
				{Patterns: []*coreir.Pattern{wildPattern()}, Guards: []coreir.Guard{{Result: varNamed(b)}}},
			},
		},
	}

	got := Transform(c, st, e)
	branches := got.Data.(coreir.CaseData).Branches
	if branches[0].Guards[0].Result.Kind != coreir.ExprVar {
		t.Fatalf("branch 0's last use of a should not be dup'd just because branch 1 also uses b")
	}
	if branches[1].Guards[0].Result.Kind != coreir.ExprVar {
		t.Fatalf("branch 1's last use of b should not be dup'd just because branch 0 also uses a")
	}
}
