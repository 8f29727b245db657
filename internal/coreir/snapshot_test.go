package coreir

import (
	"reflect"
	"testing"
)

func sampleModule() *Module {
	xName := Name{Qualified: "x", Type: 1}
	return &Module{
		Name: "demo",
		Groups: []DefGroup{
			{
				Recursive: false,
				Defs: []*Def{
					{
						Name: Name{Qualified: "identity", Type: 2},
						Expr: &Expr{
							Kind: ExprLambda,
							Type: 2,
							Data: LambdaData{
								Params: []Param{{Name: xName, Owned: true}},
								Body: &Expr{
									Kind: ExprVar,
									Type: 1,
									Data: VarData{Name: xName},
								},
							},
						},
					},
				},
			},
		},
	}
}

func TestSnapshotRoundTripsNonCaseExprs(t *testing.T) {
	m := sampleModule()
	raw, err := EncodeSnapshot(m)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	got := ModuleFromSnapshot(snap)
	if !reflect.DeepEqual(got, m) {
		t.Fatalf("round trip mismatch:\n got  %#v\n want %#v", got, m)
	}
}

func TestSnapshotRoundTripsPrimitiveVar(t *testing.T) {
	m := &Module{
		Name: "prims",
		Groups: []DefGroup{{Defs: []*Def{{
			Name: Name{Qualified: "unit_def"},
			Expr: &Expr{
				Kind: ExprApp,
				Data: AppData{
					Func: &Expr{Kind: ExprVar, Data: VarData{
						Name: Name{Qualified: "drop"},
						Info: VarInfo{Kind: VarInfoPrimitive, Template: "drop"},
					}},
					Args: []*Expr{{Kind: ExprVar, Data: VarData{Name: Name{Qualified: "v", Type: 5}}}},
				},
			},
		}}}},
	}
	raw, err := EncodeSnapshot(m)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	got := ModuleFromSnapshot(snap)
	fn := got.Groups[0].Defs[0].Expr.Data.(AppData).Func
	info := fn.Data.(VarData).Info
	if info.Kind != VarInfoPrimitive || info.Template != "drop" {
		t.Fatalf("primitive var info lost in round trip: %+v", info)
	}
}

func TestSnapshotDoesNotRoundTripCaseBranches(t *testing.T) {
	m := &Module{
		Name: "cases",
		Groups: []DefGroup{{Defs: []*Def{{
			Name: Name{Qualified: "f"},
			Expr: &Expr{
				Kind: ExprCase,
				Data: CaseData{
					Scrutinees: []*Expr{{Kind: ExprVar, Data: VarData{Name: Name{Qualified: "x"}}}},
					Branches: []Branch{{
						Patterns: []*Pattern{{Kind: PatWild, Data: WildData{}}},
						Guards:   []Guard{{Result: &Expr{Kind: ExprLit, Data: LitData{Kind: LitInt, Int: 1}}}},
					}},
				},
			},
		}}}},
	}
	raw, err := EncodeSnapshot(m)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	got := ModuleFromSnapshot(snap)
	caseData := got.Groups[0].Defs[0].Expr.Data.(CaseData)
	if len(caseData.Scrutinees) != 1 {
		t.Fatalf("expected scrutinee to survive round trip, got %d", len(caseData.Scrutinees))
	}
	if len(caseData.Branches) != 0 {
		t.Fatalf("expected branches to be dropped by the snapshot codec, got %d", len(caseData.Branches))
	}
}
