package parc

import (
	"testing"

	"surge/internal/coreir"
)

func litInt(n int64) *coreir.Expr {
	return &coreir.Expr{Kind: coreir.ExprLit, Data: coreir.LitData{Kind: coreir.LitInt, Int: n}}
}

func TestNormalizeCaseHoistsNonVarScrutinee(t *testing.T) {
	ctx := &CaseNormCtx{}
	scrutinee := &coreir.Expr{Kind: coreir.ExprApp, Data: coreir.AppData{Func: varNamed(coreir.Name{Qualified: "f"})}}
	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{scrutinee},
			Branches: []coreir.Branch{{
				Patterns: []*coreir.Pattern{{Kind: coreir.PatWild, Data: coreir.WildData{}}},
				Guards:   []coreir.Guard{{Result: litInt(1)}},
			}},
		},
	}

	got := NormalizeCase(ctx, e)
	if got.Kind != coreir.ExprLet {
		t.Fatalf("expected the non-var scrutinee to be hoisted into a let, got %v", got.Kind)
	}
	let := got.Data.(coreir.LetData)
	if len(let.Group.Defs) != 1 || let.Group.Defs[0].Expr != scrutinee {
		t.Fatalf("expected the hoisted let to bind the original scrutinee expression")
	}
	if let.Body.Kind != coreir.ExprCase {
		t.Fatalf("expected the let body to be the normalized case, got %v", let.Body.Kind)
	}
	caseScrutinee := let.Body.Data.(coreir.CaseData).Scrutinees[0]
	if caseScrutinee.Kind != coreir.ExprVar {
		t.Fatalf("expected the case's scrutinee to now be a bare variable, got %v", caseScrutinee.Kind)
	}
}

func TestNormalizeCaseLeavesVarScrutineeUnwrapped(t *testing.T) {
	ctx := &CaseNormCtx{}
	scrutinee := varNamed(coreir.Name{Qualified: "x"})
	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{scrutinee},
			Branches: []coreir.Branch{{
				Patterns: []*coreir.Pattern{{Kind: coreir.PatWild, Data: coreir.WildData{}}},
				Guards:   []coreir.Guard{{Result: litInt(1)}},
			}},
		},
	}

	got := NormalizeCase(ctx, e)
	if got.Kind != coreir.ExprCase {
		t.Fatalf("a case whose scrutinee is already a variable should not be wrapped in a let, got %v", got.Kind)
	}
}

func TestNormalizeCaseEliminatesTopLevelPatVar(t *testing.T) {
	ctx := &CaseNormCtx{}
	scrutinee := varNamed(coreir.Name{Qualified: "x", Type: 9})
	bound := coreir.Name{Qualified: "y", Type: 9}
	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{scrutinee},
			Branches: []coreir.Branch{{
				Patterns: []*coreir.Pattern{{
					Kind: coreir.PatVar,
					Type: 9,
					Data: coreir.VarPatData{Name: bound, Sub: &coreir.Pattern{Kind: coreir.PatWild, Data: coreir.WildData{}}},
				}},
				Guards: []coreir.Guard{{Result: varNamed(bound)}},
			}},
		},
	}

	got := NormalizeCase(ctx, e)
	branch := got.Data.(coreir.CaseData).Branches[0]
	if branch.Patterns[0].Kind != coreir.PatWild {
		t.Fatalf("expected the PatVar wrapper to be eliminated, got %v", branch.Patterns[0].Kind)
	}
	result := branch.Guards[0].Result
	if result.Kind != coreir.ExprVar || result.Data.(coreir.VarData).Name != scrutinee.Data.(coreir.VarData).Name {
		t.Fatalf("expected references to the bound name to be substituted with the scrutinee, got %+v", result)
	}
}

func TestNormalizeCaseProjectsNestedPatVarField(t *testing.T) {
	ctx := &CaseNormCtx{}
	scrutinee := varNamed(coreir.Name{Qualified: "pair", Type: 9})
	fieldName := coreir.Name{Qualified: "first", Type: 4}
	e := &coreir.Expr{
		Kind: coreir.ExprCase,
		Data: coreir.CaseData{
			Scrutinees: []*coreir.Expr{scrutinee},
			Branches: []coreir.Branch{{
				Patterns: []*coreir.Pattern{{
					Kind: coreir.PatCon,
					Type: 9,
					Data: coreir.ConPatData{
						TypeName: "Pair",
						ConName:  "Pair",
						Fields: []*coreir.Pattern{{
							Kind: coreir.PatVar,
							Type: 4,
							Data: coreir.VarPatData{Name: fieldName, Sub: &coreir.Pattern{Kind: coreir.PatWild, Data: coreir.WildData{}}},
						}},
					},
				}},
				Guards: []coreir.Guard{{Result: varNamed(fieldName)}},
			}},
		},
	}

	got := NormalizeCase(ctx, e)
	result := got.Data.(coreir.CaseData).Branches[0].Guards[0].Result
	if result.Kind != coreir.ExprApp {
		t.Fatalf("expected the nested PatVar field reference to be substituted with a field_at projection, got %v", result.Kind)
	}
	app := result.Data.(coreir.AppData)
	if app.Func.Data.(coreir.VarData).Name.Qualified != "field_at" {
		t.Fatalf("expected a field_at call, got %q", app.Func.Data.(coreir.VarData).Name.Qualified)
	}
}
