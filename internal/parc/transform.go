package parc

import "surge/internal/coreir"

// Transform is the Expression Transformer (spec.md §4.5): it rewrites e in
// place into an equivalent expression where every owned binding's uses are
// matched by dup/drop so that, at runtime, each value is freed exactly
// once, exactly when its last owner lets go of it.
//
// Traversal order is post-order and right-to-left (spec.md §9): children
// are visited after building up liveness information from what follows
// them in program order, and — within a node that has several children
// evaluated left to right at runtime (an application's arguments, a
// def-group's definitions, a branch's guards) — Transform visits them in
// reverse, since liveness is a backward analysis: whether a binding is
// still needed depends on what comes after it, which this pass discovers
// before it discovers what comes before it.
func Transform(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case coreir.ExprVar:
		return transformVar(c, st, e)
	case coreir.ExprLit:
		return e
	case coreir.ExprTypeApp:
		d := e.Data.(coreir.TypeAppData)
		d.Func = Transform(c, st, d.Func)
		e.Data = d
		return e
	case coreir.ExprTypeLambda:
		d := e.Data.(coreir.TypeLambdaData)
		d.Body = Transform(c, st, d.Body)
		e.Data = d
		return e
	case coreir.ExprLambda:
		return transformLambda(c, st, e)
	case coreir.ExprCon:
		return transformCon(c, st, e)
	case coreir.ExprApp:
		return transformApp(c, st, e)
	case coreir.ExprLet:
		return transformLet(c, st, e)
	case coreir.ExprCase:
		return transformCase(c, st, e)
	default:
		return e
	}
}

// transformVar implements the one rule everything else in this pass exists
// to serve: a variable occurrence either dups the binding (because it is
// needed again later, i.e. already live) or consumes it outright (because
// this is its last use, reading right to left — so reaching it here is
// exactly the moment liveness for it starts).
func transformVar(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	d := e.Data.(coreir.VarData)
	if d.Info.Kind == coreir.VarInfoPrimitive {
		return e
	}
	n := d.Name
	wasLive := st.IsLive(n)
	notOwned := !st.IsOwned(n)
	st.MarkLive(n)
	if wasLive || notOwned {
		// A later use already claimed this binding stays alive past this
		// point, or this occurrence only borrows it rather than owning it —
		// either way, a fresh reference must be produced without disturbing
		// whatever already owns the binding.
		dup, ok := GenDup(c, n)
		if !ok {
			return e
		}
		return sequence(dup, e)
	}
	// Last use (rightmost) of an owned name: consume directly, transferring
	// ownership into the consumer.
	return e
}

// transformLambda implements spec.md §4.5's lambda rule in full:
//
//  1. caps = free_locals(expr) — the names this lambda captures from its
//     enclosing scope; these become its owned resources at runtime.
//  2. The body is analyzed under isolate_with(∅, with_owned(caps,
//     scoped(pars_as_set, …))): nothing outside the lambda is live across
//     its boundary except caps and the parameters; caps and the owned
//     (non-borrowed) parameters start owned. Owned parameters found dead
//     at the end of the body are given an
//     explicit drop right at the top of the (rewritten) body, then
//     forgotten — pars_as_set never leaks into caps' own liveness.
//  3. Back in the outer scope, each captured name is dup'd (the closure
//     retains its own reference every time it's constructed) and marked
//     live, the same way a borrowed variable occurrence always dups.
//  4. Assertion: the live set observed inside the lambda, once its own
//     parameters are forgotten, must equal caps exactly — any mismatch
//     means free_locals and the liveness analysis disagree, a fatal
//     internal error.
func transformLambda(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	d := e.Data.(coreir.LambdaData)
	allParams := make([]coreir.Name, len(d.Params))
	for i, p := range d.Params {
		allParams[i] = p.Name
	}
	caps := freeLocals(e)

	var body *coreir.Expr
	var innerLive nameSet
	st.WithOwned(caps, func() {
		innerLive = st.IsolateWith(nil, func() {
			st.ExtendOwned(ownedParams(d.Params), func() {
				body = Transform(c, st, d.Body)
				for i := len(d.Params) - 1; i >= 0; i-- {
					p := d.Params[i]
					if !p.Owned {
						continue
					}
					if st.IsDead(p.Name) {
						if drop, ok := GenDrop(c, p.Name); ok {
							body = sequenceBefore(drop, body)
						}
					}
				}
			})
			// Every parameter — owned or borrowed — stops being "downstream"
			// once the lambda boundary is reached, whether or not it was
			// ever added to owned.
			st.ForgetAll(allParams)
		})
	})

	if !sameNames(innerLive, caps) {
		panic(&ICE{
			Op:  "transformLambda",
			Msg: "free-variable computation disagreed with liveness analysis",
		})
	}

	d.Body = body
	e.Data = d

	wrapped := e
	for i := len(caps) - 1; i >= 0; i-- {
		n := caps[i]
		st.MarkLive(n)
		if dup, ok := GenDup(c, n); ok {
			wrapped = sequence(dup, wrapped)
		}
	}
	return wrapped
}

// sameNames reports whether live contains exactly the names in caps, no
// more and no fewer — the equality spec.md §4.5 step 4 demands.
func sameNames(live nameSet, caps []coreir.Name) bool {
	if len(live) != len(caps) {
		return false
	}
	for _, n := range caps {
		if !live.has(n) {
			return false
		}
	}
	return true
}

func ownedParams(params []coreir.Param) []coreir.Name {
	out := make([]coreir.Name, 0, len(params))
	for _, p := range params {
		if p.Owned {
			out = append(out, p.Name)
		}
	}
	return out
}

// transformCon transforms a saturated constructor application's arguments
// right to left, the same traversal order as transformApp.
func transformCon(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	d := e.Data.(coreir.ConData)
	args := make([]*coreir.Expr, len(d.Args))
	copy(args, d.Args)
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = Transform(c, st, args[i])
	}
	d.Args = args
	e.Data = d
	return e
}

// transformApp transforms a function application's arguments, then its
// callee, right to left — args are evaluated left to right at runtime, so
// processing them in reverse during this backward analysis visits the
// rightmost (last-evaluated, so last-to-become-live) argument first.
func transformApp(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	d := e.Data.(coreir.AppData)
	args := make([]*coreir.Expr, len(d.Args))
	copy(args, d.Args)
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = Transform(c, st, args[i])
	}
	d.Args = args
	d.Func = Transform(c, st, d.Func)
	e.Data = d
	return e
}

// transformLet transforms a let-bound definition group and its body.
// Recursive `let`s at expression level are unreachable by construction
// (spec.md §9 Open Question (c)) — earlier lowering is expected to have
// turned any genuinely recursive binding into a DefGroup at the module
// level, handled by the Definition Driver, not by this expression-level
// rule.
func transformLet(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	d := e.Data.(coreir.LetData)
	if d.Group.Recursive {
		panic(&ICE{Op: "transformLet", Msg: "recursive let at expression level is unreachable"})
	}

	boundNames := make([]coreir.Name, len(d.Group.Defs))
	for i, def := range d.Group.Defs {
		boundNames[i] = def.Name
	}

	// rest (the body) is analyzed under scoped(bound_vars(def), …): the
	// bindings are owned while the body sees them, and forgotten again once
	// the body has been walked — spec.md §4.5's Let rule.
	var body *coreir.Expr
	bodyLive := st.Scoped(boundNames, func() {
		body = Transform(c, st, d.Body)
	})

	defs := make([]*coreir.Def, len(d.Group.Defs))
	copy(defs, d.Group.Defs)
	for i := len(defs) - 1; i >= 0; i-- {
		def := defs[i]
		wasDead := !bodyLive.has(def.Name)
		def.Expr = Transform(c, st, def.Expr)
		if wasDead {
			if drop, ok := GenDrop(c, def.Name); ok {
				body = sequenceBefore(drop, body)
			}
		}
		defs[i] = def
	}

	d.Group.Defs = defs
	d.Body = body
	e.Data = d
	return e
}

// sequence builds `let _ = pre in e`, running pre purely for its side
// effect (a dup call) before evaluating e.
func sequence(pre *coreir.Expr, e *coreir.Expr) *coreir.Expr {
	return &coreir.Expr{
		Kind: coreir.ExprLet,
		Type: e.Type,
		Data: coreir.LetData{
			Group: coreir.DefGroup{Defs: []*coreir.Def{{Name: coreir.Name{Qualified: "_"}, Expr: pre}}},
			Body:  e,
		},
	}
}

// sequenceBefore is sequence with a conventional name for call sites that
// are prepending a drop rather than a dup — same shape, different intent.
func sequenceBefore(pre *coreir.Expr, e *coreir.Expr) *coreir.Expr {
	return sequence(pre, e)
}
