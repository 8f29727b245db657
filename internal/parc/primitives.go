package parc

import "surge/internal/coreir"

// Primitive names the runtime operations PARC emits calls to. None of these
// are implemented by this pass — per spec.md §1, the runtime primitives are
// external collaborators named here only as call targets.
const (
	PrimDup       = "dup"
	PrimDrop      = "drop"
	PrimIsUnique  = "is_unique"
	PrimFree      = "free"
	PrimDropReuse = "drop_reuse"
	PrimNoReuse   = "no_reuse"
	PrimAllocAt   = "alloc_at"
)

// primRef builds a reference to a runtime primitive, tagged the way
// internal/coreir's VarData carries a VarInfoPrimitive template.
func primRef(name string, ty coreir.TypeID) *coreir.Expr {
	return &coreir.Expr{
		Kind: coreir.ExprVar,
		Type: ty,
		Data: coreir.VarData{
			Name: coreir.Name{Qualified: name},
			Info: coreir.VarInfo{Kind: coreir.VarInfoPrimitive, Template: name},
		},
	}
}

func primCall(name string, resultType coreir.TypeID, args ...*coreir.Expr) *coreir.Expr {
	return &coreir.Expr{
		Kind: coreir.ExprApp,
		Type: resultType,
		Data: coreir.AppData{
			Func: primRef(name, coreir.TypeID(0)),
			Args: args,
		},
	}
}

func varExpr(n coreir.Name) *coreir.Expr {
	return &coreir.Expr{
		Kind: coreir.ExprVar,
		Type: n.Type,
		Data: coreir.VarData{Name: n},
	}
}

// Dup builds `dup(v)`, incrementing v's reference count. Callers never call
// Dup on a NoRC binding — GenDup is the gated entry point for that check.
func Dup(v coreir.Name) *coreir.Expr {
	return primCall(PrimDup, v.Type, varExpr(v))
}

// Drop builds `drop(v)`, decrementing v's reference count and freeing it at
// zero.
func Drop(v coreir.Name) *coreir.Expr {
	unitTy := coreir.TypeID(0)
	return primCall(PrimDrop, unitTy, varExpr(v))
}

// IsUnique builds `is_unique(v)`, a boolean test of whether v's reference
// count is exactly one — the condition a reuse decision branches on.
func IsUnique(v coreir.Name, boolTy coreir.TypeID) *coreir.Expr {
	return primCall(PrimIsUnique, boolTy, varExpr(v))
}

// Free builds `free(v)`, deallocating v's heap cell without touching its
// fields' reference counts — used only once the caller has already dropped
// or reused every scanned field itself.
func Free(v coreir.Name) *coreir.Expr {
	unitTy := coreir.TypeID(0)
	return primCall(PrimFree, unitTy, varExpr(v))
}

// DropReuse builds `drop_reuse(v)`, a drop that, on reaching a reference
// count of zero, yields the doomed cell as a reusable token instead of
// freeing it outright.
func DropReuse(v coreir.Name, tokenTy coreir.TypeID) *coreir.Expr {
	return primCall(PrimDropReuse, tokenTy, varExpr(v))
}

// NoReuse builds the reuse-token constant meaning "no cell is available for
// reuse at this allocation site" — the value DropReuse degrades to when v's
// count was above one.
func NoReuse(tokenTy coreir.TypeID) *coreir.Expr {
	return primCall(PrimNoReuse, tokenTy)
}

// AllocAt builds `alloc_at(token, con)`, constructing con's value, reusing
// token's backing storage when it is not NoReuse and allocating fresh
// storage otherwise.
func AllocAt(token *coreir.Expr, con *coreir.Expr) *coreir.Expr {
	return primCall(PrimAllocAt, con.Type, token, con)
}

// GenDup returns a dup expression for v, or nil if v's type is NoRC and no
// dup is needed at all — the `Some`/`None` choice of spec.md §4.2 realized
// as a (*Expr, bool) pair in Go.
func GenDup(c *Classifier, v coreir.Name) (*coreir.Expr, bool) {
	if c.Classify(v.Type) == NoRC {
		return nil, false
	}
	return Dup(v), true
}

// GenDrop returns a drop expression for v, or nil if v's type is NoRC.
func GenDrop(c *Classifier, v coreir.Name) (*coreir.Expr, bool) {
	if c.Classify(v.Type) == NoRC {
		return nil, false
	}
	return Drop(v), true
}

// GenKeepMatch is a named, callable reuse-token emitter for the case where a
// match scrutinee's constructor cell could be kept (rather than freed or
// reused for a different constructor) because the matched branch
// reconstructs a value of the same shape. Not yet invoked by the
// Expression Transformer — spec.md §9 Open Question (b) defers the
// keep-vs-reuse-vs-drop decision to a follow-on pass; this stub exists so
// that pass has something to call.
func GenKeepMatch(scrutinee coreir.Name, tokenTy coreir.TypeID) *coreir.Expr {
	return primCall(PrimNoReuse, tokenTy, varExpr(scrutinee))
}

// GenReuseMatch is GenKeepMatch's counterpart for the case where the
// scrutinee's cell should be handed to drop_reuse instead of an ordinary
// drop, making it available for a same-shape allocation later in the
// branch. Also unwired, for the same reason as GenKeepMatch.
func GenReuseMatch(scrutinee coreir.Name, tokenTy coreir.TypeID) *coreir.Expr {
	return DropReuse(scrutinee, tokenTy)
}
