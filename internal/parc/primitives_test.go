package parc

import (
	"testing"

	"surge/internal/coreir"
	"surge/internal/types"
)

func TestGenDupSkipsNoRCTypes(t *testing.T) {
	c, in := newTestClassifier(t)
	n := coreir.Name{Qualified: "n", Type: in.Builtins().Int}
	if _, ok := GenDup(c, n); ok {
		t.Fatalf("expected no dup for a NoRC (Int) binding")
	}
}

func TestGenDupEmitsForRCTypes(t *testing.T) {
	c, in := newTestClassifier(t)
	s := coreir.Name{Qualified: "s", Type: in.Builtins().String}
	e, ok := GenDup(c, s)
	if !ok {
		t.Fatalf("expected a dup for a String (RC) binding")
	}
	app := e.Data.(coreir.AppData)
	fn := app.Func.Data.(coreir.VarData)
	if fn.Info.Template != PrimDup {
		t.Fatalf("expected dup primitive, got %q", fn.Info.Template)
	}
	if len(app.Args) != 1 || app.Args[0].Data.(coreir.VarData).Name != s {
		t.Fatalf("expected dup(s), got %+v", app.Args)
	}
}

func TestGenDropSkipsNoRCTypes(t *testing.T) {
	c, in := newTestClassifier(t)
	n := coreir.Name{Qualified: "n", Type: in.Builtins().Bool}
	if _, ok := GenDrop(c, n); ok {
		t.Fatalf("expected no drop for a NoRC (Bool) binding")
	}
}

func TestGenDropEmitsForRCTypes(t *testing.T) {
	c, in := newTestClassifier(t)
	s := coreir.Name{Qualified: "s", Type: in.Builtins().String}
	e, ok := GenDrop(c, s)
	if !ok {
		t.Fatalf("expected a drop for a String (RC) binding")
	}
	fn := e.Data.(coreir.AppData).Func.Data.(coreir.VarData)
	if fn.Info.Template != PrimDrop {
		t.Fatalf("expected drop primitive, got %q", fn.Info.Template)
	}
}

func TestNoReuseBuildsZeroArgCall(t *testing.T) {
	e := NoReuse(types.NoTypeID)
	app := e.Data.(coreir.AppData)
	if len(app.Args) != 0 {
		t.Fatalf("no_reuse should take no arguments, got %d", len(app.Args))
	}
	if app.Func.Data.(coreir.VarData).Info.Template != PrimNoReuse {
		t.Fatalf("expected no_reuse primitive")
	}
}

func TestAllocAtWrapsTokenAndConstructor(t *testing.T) {
	token := NoReuse(types.NoTypeID)
	con := &coreir.Expr{Kind: coreir.ExprCon, Type: 7, Data: coreir.ConData{TypeName: "Box", ConName: "Box"}}
	e := AllocAt(token, con)
	app := e.Data.(coreir.AppData)
	if len(app.Args) != 2 || app.Args[0] != token || app.Args[1] != con {
		t.Fatalf("expected alloc_at(token, con), got %+v", app.Args)
	}
	if e.Type != con.Type {
		t.Fatalf("alloc_at should carry the constructor's result type")
	}
}
