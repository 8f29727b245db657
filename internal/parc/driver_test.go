package parc

import (
	"strings"
	"testing"

	"surge/internal/coreir"
)

func TestParcModuleRewritesNonRecursiveDef(t *testing.T) {
	t.Setenv(EnableEnvVar, "1")
	c, in := newTestClassifier(t)
	p := coreir.Name{Qualified: "p", Type: in.Builtins().String}

	m := &coreir.Module{
		Name: "m",
		Groups: []coreir.DefGroup{{Defs: []*coreir.Def{{
			Name: coreir.Name{Qualified: "identity", Type: p.Type},
			Expr: &coreir.Expr{
				Kind: coreir.ExprLambda,
				Data: coreir.LambdaData{
					Params: []coreir.Param{{Name: p, Owned: true}},
					Body:   varNamed(p),
				},
			},
		}}}},
	}

	if err := ParcModule(c, m); err != nil {
		t.Fatalf("ParcModule: %v", err)
	}
	body := m.Groups[0].Defs[0].Expr.Data.(coreir.LambdaData).Body
	if body.Kind != coreir.ExprVar {
		t.Fatalf("identity's parameter is its own last use, needs no drop; got %v", body.Kind)
	}
}

func TestParcModuleRecoversPerDefinitionICE(t *testing.T) {
	t.Setenv(EnableEnvVar, "1")
	c, _ := newTestClassifier(t)
	good := &coreir.Def{
		Name: coreir.Name{Qualified: "good"},
		Expr: &coreir.Expr{Kind: coreir.ExprLit, Data: coreir.LitData{Kind: coreir.LitInt, Int: 1}},
	}
	bad := &coreir.Def{
		Name: coreir.Name{Qualified: "bad"},
		Expr: &coreir.Expr{
			Kind: coreir.ExprLet,
			Data: coreir.LetData{
				Group: coreir.DefGroup{Recursive: true},
				Body:  &coreir.Expr{Kind: coreir.ExprLit, Data: coreir.LitData{Kind: coreir.LitInt, Int: 0}},
			},
		},
	}
	m := &coreir.Module{
		Name:   "mixed",
		Groups: []coreir.DefGroup{{Defs: []*coreir.Def{good}}, {Defs: []*coreir.Def{bad}}},
	}

	err := ParcModule(c, m)
	if err == nil {
		t.Fatalf("expected an error from the malformed definition")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected the error to name the failing definition, got %v", err)
	}
	// The sibling group's good definition should still have been rewritten
	// despite bad's failure.
	if m.Groups[0].Defs[0].Expr.Kind != coreir.ExprLit {
		t.Fatalf("good definition should be unaffected by bad's failure")
	}
}

func TestParcModuleNamedWrapsModuleName(t *testing.T) {
	t.Setenv(EnableEnvVar, "1")
	c, _ := newTestClassifier(t)
	m := &coreir.Module{
		Name: "widgets",
		Groups: []coreir.DefGroup{{Defs: []*coreir.Def{{
			Name: coreir.Name{Qualified: "bad"},
			Expr: &coreir.Expr{
				Kind: coreir.ExprLet,
				Data: coreir.LetData{Group: coreir.DefGroup{Recursive: true}},
			},
		}}}},
	}
	err := ParcModuleNamed(c, m)
	if err == nil || !strings.Contains(err.Error(), "widgets") {
		t.Fatalf("expected error to name the module, got %v", err)
	}
}

// TestParcModuleDisabledLeavesModuleUnchanged pins spec.md §8's "Disabled
// idempotence" property: with the enable flag off (its default, unset
// state), ParcModule must not touch the module at all.
func TestParcModuleDisabledLeavesModuleUnchanged(t *testing.T) {
	c, in := newTestClassifier(t)
	p := coreir.Name{Qualified: "p", Type: in.Builtins().String}

	lambda := &coreir.Expr{
		Kind: coreir.ExprLambda,
		Data: coreir.LambdaData{
			Params: []coreir.Param{{Name: p, Owned: true}},
			Body:   litInt(0), // p is dead: if the pass ran, this would grow a drop
		},
	}
	m := &coreir.Module{
		Name:   "m",
		Groups: []coreir.DefGroup{{Defs: []*coreir.Def{{Name: coreir.Name{Qualified: "f"}, Expr: lambda}}}},
	}

	if err := ParcModule(c, m); err != nil {
		t.Fatalf("ParcModule: %v", err)
	}
	body := m.Groups[0].Defs[0].Expr.Data.(coreir.LambdaData).Body
	if body.Kind != coreir.ExprLit {
		t.Fatalf("disabled pass must return the module unchanged, got rewritten body %v", body.Kind)
	}
}

func TestParcModuleRecursiveGroupOwnsSiblingNames(t *testing.T) {
	t.Setenv(EnableEnvVar, "1")
	c, in := newTestClassifier(t)
	selfName := coreir.Name{Qualified: "loop", Type: in.Builtins().String}

	m := &coreir.Module{
		Name: "rec",
		Groups: []coreir.DefGroup{{
			Recursive: true,
			Defs: []*coreir.Def{{
				Name: selfName,
				Expr: varNamed(selfName), // references itself: owned through the group, so no dup
			}},
		}},
	}

	if err := ParcModule(c, m); err != nil {
		t.Fatalf("ParcModule: %v", err)
	}
	if got := m.Groups[0].Defs[0].Expr.Kind; got != coreir.ExprVar {
		t.Fatalf("the group's own name is owned inside its body, so its single use needs no dup; got %v", got)
	}
}
