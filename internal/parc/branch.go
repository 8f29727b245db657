package parc

import "surge/internal/coreir"

// transformCase implements spec.md §4.5's case rule: each branch is
// analyzed independently against the same continuation liveness (branches
// are mutually exclusive, so a binding dead in one branch says nothing
// about whether it's dead in another), then the branches' liveness results
// are merged by union — a scrutinee component is only safe to treat as
// dead going into the match if every branch agrees it's dead.
func transformCase(c *Classifier, st *State, e *coreir.Expr) *coreir.Expr {
	if !isNormalizedCase(e) {
		// spec.md §4.5: "If not normalized, normalize first then recurse."
		return Transform(c, st, NormalizeCase(st.caseNorm, e))
	}

	d := e.Data.(coreir.CaseData)
	contLive := st.LiveNames()

	branches := make([]coreir.Branch, len(d.Branches))
	merged := newNameSet()
	for i := len(d.Branches) - 1; i >= 0; i-- {
		res := transformBranch(c, st, d.Branches[i], contLive)
		branches[i] = res.Branch
		for n := range res.Live {
			merged[n] = struct{}{}
		}
	}
	st.MarkLives(setToSlice(merged))

	scrutinees := make([]*coreir.Expr, len(d.Scrutinees))
	copy(scrutinees, d.Scrutinees)
	for i := len(scrutinees) - 1; i >= 0; i-- {
		scrutinees[i] = Transform(c, st, scrutinees[i])
	}

	d.Scrutinees = scrutinees
	d.Branches = branches
	e.Data = d
	return e
}

func setToSlice(s nameSet) []coreir.Name {
	out := make([]coreir.Name, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	return out
}

// branchResult is transformBranch's output: the rewritten branch plus the
// liveness it observed at its own entry point (i.e. which names outside
// the branch's own pattern bindings it still needed).
type branchResult struct {
	Branch coreir.Branch
	Live   nameSet
}

// transformBranch analyzes one case arm's guards independently (spec.md
// §4.5.1): guards within a branch are mutually exclusive alternatives,
// exactly like sibling branches, so each guard's Result is analyzed under
// its own isolate_with(live_in, …) seeded fresh from the case's
// continuation liveness, never threaded from a sibling guard's result.
// Guards are visited in reverse (the last guard in source order is tried
// last at runtime but, being textually last, is visited first here) purely
// to build the closures in the order parcBranch expects; it has no effect
// on isolation, since each guard gets its own independent seed. The branch's
// pattern variables start owned for every guard, and any pattern variable
// left dead across every guard is dropped before the branch's own bindings
// are forgotten.
//
// Open Question (a): the per-guard closures built here (see parcBranch)
// capture only already-computed Test/Result expressions, not *State
// itself — so nothing about one guard's closure can observe a later
// mutation of the shared analysis state performed while processing a
// different guard or a sibling branch.
func transformBranch(c *Classifier, st *State, br coreir.Branch, contLive []coreir.Name) branchResult {
	pvs := collectPatternVars(br.Patterns)

	closures := make([]func() coreir.Guard, len(br.Guards))
	merged := newNameSet()
	for i := len(br.Guards) - 1; i >= 0; i-- {
		guardLive := st.IsolateWith(contLive, func() {
			st.ExtendOwned(pvs, func() {
				closures[i] = parcBranch(c, st, br.Guards[i])
			})
		})
		for n := range guardLive {
			merged[n] = struct{}{}
		}
	}

	guards := make([]coreir.Guard, len(br.Guards))
	for i, mk := range closures {
		guards[i] = mk()
	}

	liveAtEntry := st.IsolateWith(setToSlice(merged), func() {
		for i := len(pvs) - 1; i >= 0; i-- {
			n := pvs[i]
			if st.IsDead(n) {
				if drop, ok := GenDrop(c, n); ok {
					// The drop is attached to the first guard's result,
					// which runs first at runtime among this branch's
					// alternatives.
					if len(guards) > 0 {
						guards[0].Result = sequenceBefore(drop, guards[0].Result)
					}
				}
			}
			st.Forget(n)
		}
	})

	patterns := make([]*coreir.Pattern, len(br.Patterns))
	copy(patterns, br.Patterns)

	return branchResult{
		Branch: coreir.Branch{Patterns: patterns, Guards: guards},
		Live:   liveAtEntry,
	}
}

// parcBranch transforms a single guard's Test and Result, then returns a
// thunk that hands back the finished coreir.Guard. The thunk's captured
// variables (test, result below) are plain *coreir.Expr values copied out
// of the transform at the point parcBranch returns — never the *State
// pointer — so invoking the thunk later, after forget(pvs) has already run
// for this branch, cannot observe any liveness change that happened after
// the guard itself was transformed.
func parcBranch(c *Classifier, st *State, g coreir.Guard) func() coreir.Guard {
	result := Transform(c, st, g.Result)
	var test *coreir.Expr
	if g.Test != nil {
		test = Transform(c, st, g.Test)
	}
	testCopy, resultCopy := test, result
	return func() coreir.Guard {
		return coreir.Guard{Test: testCopy, Result: resultCopy}
	}
}

// collectPatternVars gathers every still-bound PatVar name across a
// branch's patterns (patterns whose PatVar wrapper the Case Normalizer
// could not eliminate for lack of a tracked access path — see
// casenorm.go's eliminatePatVar). These are the only names a branch
// introduces that Transform needs to own and, eventually, drop if unused.
func collectPatternVars(patterns []*coreir.Pattern) []coreir.Name {
	var out []coreir.Name
	var walk func(p *coreir.Pattern)
	walk = func(p *coreir.Pattern) {
		if p == nil {
			return
		}
		switch p.Kind {
		case coreir.PatVar:
			d := p.Data.(coreir.VarPatData)
			out = append(out, d.Name)
			walk(d.Sub)
		case coreir.PatCon:
			d := p.Data.(coreir.ConPatData)
			for _, f := range d.Fields {
				walk(f)
			}
		}
	}
	for _, p := range patterns {
		walk(p)
	}
	return out
}
