package coreir

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a flattened, msgpack-encodable mirror of a Module. The CLI
// uses it two ways: as the on-disk form of a Core module fed into `parcc
// run` (standing in for a real front end's emitter, which this repo does
// not have), and as the `--emit-snapshot` output pinning the post-PARC
// (dup/drop-annotated) tree as a regression fixture. Case branches are not
// round-tripped (see toExprWire) — a Module decoded back from a Snapshot
// has empty ExprCase.Branches, which is fine for exercising the
// non-pattern-matching parts of the pass end-to-end but not a substitute
// for real case-normalized fixtures built directly in Go (see
// internal/parc's own tests). Char literals are not carried either:
// ExprWire has no field for LitData.Char, so a decoded char literal has
// Char 0.
type Snapshot struct {
	Name   string      `msgpack:"name"`
	Groups []GroupWire `msgpack:"groups"`
}

// GroupWire mirrors DefGroup.
type GroupWire struct {
	Recursive bool      `msgpack:"rec"`
	Defs      []DefWire `msgpack:"defs"`
}

// DefWire mirrors Def.
type DefWire struct {
	Name string    `msgpack:"name"`
	Type TypeID    `msgpack:"type"`
	Expr *ExprWire `msgpack:"expr"`
}

// ExprWire mirrors Expr with ExprData flattened into per-kind optional
// fields — msgpack has no native sum-type support, so the wire form spells
// out the tag explicitly, the same way internal/vm's bytecode encoder keeps
// one flat struct per instruction kind rather than an interface.
type ExprWire struct {
	Kind ExprKind `msgpack:"kind"`
	Type TypeID   `msgpack:"type"`

	// ExprTypeLambda / ExprTypeApp
	TypeParams []string  `msgpack:"type_params,omitempty"`
	TypeArgs   []TypeID  `msgpack:"type_args,omitempty"`
	Func       *ExprWire `msgpack:"func,omitempty"`

	// ExprLambda
	Params []ParamWire `msgpack:"params,omitempty"`
	Body   *ExprWire   `msgpack:"body,omitempty"`

	// ExprVar
	VarName     string `msgpack:"var_name,omitempty"`
	VarType     TypeID `msgpack:"var_type,omitempty"`
	PrimTmpl    string `msgpack:"prim_tmpl,omitempty"`
	IsPrimitive bool   `msgpack:"is_prim,omitempty"`

	// ExprLit
	LitKind   LitKind `msgpack:"lit_kind,omitempty"`
	LitInt    int64   `msgpack:"lit_int,omitempty"`
	LitFloat  float64 `msgpack:"lit_float,omitempty"`
	LitBool   bool    `msgpack:"lit_bool,omitempty"`
	LitString string  `msgpack:"lit_string,omitempty"`

	// ExprCon / ExprApp
	TypeName string      `msgpack:"type_name,omitempty"`
	ConName  string      `msgpack:"con_name,omitempty"`
	Args     []*ExprWire `msgpack:"args,omitempty"`

	// ExprLet
	Group *GroupWire `msgpack:"group,omitempty"`

	// ExprCase
	Scrutinees []*ExprWire `msgpack:"scrutinees,omitempty"`
}

// ParamWire mirrors Param.
type ParamWire struct {
	Name  string `msgpack:"name"`
	Type  TypeID `msgpack:"type"`
	Owned bool   `msgpack:"owned"`
}

// EncodeSnapshot converts m to its wire form and msgpack-encodes it.
func EncodeSnapshot(m *Module) ([]byte, error) {
	return msgpack.Marshal(toSnapshot(m))
}

// DecodeSnapshot msgpack-decodes a Snapshot. The CLI turns the result into
// the module it runs the pass over (see ModuleFromSnapshot).
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func toSnapshot(m *Module) *Snapshot {
	if m == nil {
		return &Snapshot{}
	}
	s := &Snapshot{Name: m.Name}
	for _, g := range m.Groups {
		s.Groups = append(s.Groups, toGroupWire(&g))
	}
	return s
}

func toGroupWire(g *DefGroup) GroupWire {
	gw := GroupWire{Recursive: g.Recursive}
	for _, d := range g.Defs {
		gw.Defs = append(gw.Defs, DefWire{
			Name: d.Name.Qualified,
			Type: d.Name.Type,
			Expr: toExprWire(d.Expr),
		})
	}
	return gw
}

func toExprWire(e *Expr) *ExprWire {
	if e == nil {
		return nil
	}
	w := &ExprWire{Kind: e.Kind, Type: e.Type}
	switch e.Kind {
	case ExprTypeLambda:
		d := e.Data.(TypeLambdaData)
		for _, tp := range d.Params {
			w.TypeParams = append(w.TypeParams, tp.Name)
		}
		w.Body = toExprWire(d.Body)
	case ExprTypeApp:
		d := e.Data.(TypeAppData)
		w.Func = toExprWire(d.Func)
		w.TypeArgs = d.TypeArgs
	case ExprLambda:
		d := e.Data.(LambdaData)
		for _, p := range d.Params {
			w.Params = append(w.Params, ParamWire{Name: p.Name.Qualified, Type: p.Name.Type, Owned: p.Owned})
		}
		w.Body = toExprWire(d.Body)
	case ExprVar:
		d := e.Data.(VarData)
		w.VarName = d.Name.Qualified
		w.VarType = d.Name.Type
		w.IsPrimitive = d.Info.Kind == VarInfoPrimitive
		w.PrimTmpl = d.Info.Template
	case ExprLit:
		d := e.Data.(LitData)
		w.LitKind = d.Kind
		w.LitInt = d.Int
		w.LitFloat = d.Float
		w.LitBool = d.Bool
		w.LitString = d.String
	case ExprCon:
		d := e.Data.(ConData)
		w.TypeName = d.TypeName
		w.ConName = d.ConName
		for _, a := range d.Args {
			w.Args = append(w.Args, toExprWire(a))
		}
	case ExprApp:
		d := e.Data.(AppData)
		w.Func = toExprWire(d.Func)
		for _, a := range d.Args {
			w.Args = append(w.Args, toExprWire(a))
		}
	case ExprLet:
		d := e.Data.(LetData)
		gw := toGroupWire(&d.Group)
		w.Group = &gw
		w.Body = toExprWire(d.Body)
	case ExprCase:
		d := e.Data.(CaseData)
		for _, s := range d.Scrutinees {
			w.Scrutinees = append(w.Scrutinees, toExprWire(s))
		}
		// Branches are not round-tripped, so any dup/drop code PARC
		// inserts inside branch guards is not captured by a snapshot
		// either.
	}
	return w
}

// ModuleFromSnapshot reconstructs a *Module from a decoded Snapshot, the
// inverse of toSnapshot minus case branches (see the Snapshot doc comment).
func ModuleFromSnapshot(s *Snapshot) *Module {
	if s == nil {
		return nil
	}
	m := &Module{Name: s.Name}
	for _, gw := range s.Groups {
		m.Groups = append(m.Groups, fromGroupWire(gw))
	}
	return m
}

func fromGroupWire(gw GroupWire) DefGroup {
	g := DefGroup{Recursive: gw.Recursive}
	for _, dw := range gw.Defs {
		g.Defs = append(g.Defs, &Def{
			Name: Name{Qualified: dw.Name, Type: dw.Type},
			Expr: fromExprWire(dw.Expr),
		})
	}
	return g
}

func fromExprWire(w *ExprWire) *Expr {
	if w == nil {
		return nil
	}
	e := &Expr{Kind: w.Kind, Type: w.Type}
	switch w.Kind {
	case ExprTypeLambda:
		params := make([]TypeParam, len(w.TypeParams))
		for i, n := range w.TypeParams {
			params[i] = TypeParam{Name: n}
		}
		e.Data = TypeLambdaData{Params: params, Body: fromExprWire(w.Body)}
	case ExprTypeApp:
		e.Data = TypeAppData{Func: fromExprWire(w.Func), TypeArgs: w.TypeArgs}
	case ExprLambda:
		params := make([]Param, len(w.Params))
		for i, p := range w.Params {
			params[i] = Param{Name: Name{Qualified: p.Name, Type: p.Type}, Owned: p.Owned}
		}
		e.Data = LambdaData{Params: params, Body: fromExprWire(w.Body)}
	case ExprVar:
		info := VarInfo{}
		if w.IsPrimitive {
			info = VarInfo{Kind: VarInfoPrimitive, Template: w.PrimTmpl}
		}
		e.Data = VarData{Name: Name{Qualified: w.VarName, Type: w.VarType}, Info: info}
	case ExprLit:
		e.Data = LitData{Kind: w.LitKind, Int: w.LitInt, Float: w.LitFloat, Bool: w.LitBool, String: w.LitString}
	case ExprCon:
		args := make([]*Expr, len(w.Args))
		for i, a := range w.Args {
			args[i] = fromExprWire(a)
		}
		e.Data = ConData{TypeName: w.TypeName, ConName: w.ConName, Args: args}
	case ExprApp:
		args := make([]*Expr, len(w.Args))
		for i, a := range w.Args {
			args[i] = fromExprWire(a)
		}
		e.Data = AppData{Func: fromExprWire(w.Func), Args: args}
	case ExprLet:
		var group DefGroup
		if w.Group != nil {
			group = fromGroupWire(*w.Group)
		}
		e.Data = LetData{Group: group, Body: fromExprWire(w.Body)}
	case ExprCase:
		scrutinees := make([]*Expr, len(w.Scrutinees))
		for i, s := range w.Scrutinees {
			scrutinees[i] = fromExprWire(s)
		}
		e.Data = CaseData{Scrutinees: scrutinees}
	}
	return e
}
