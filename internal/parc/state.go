package parc

import "surge/internal/coreir"

// nameSet is a small, copy-on-write set of coreir.Names. owned is treated as
// persistent/immutable (spec.md §4.3 calls it "a read-mostly context
// variable") — WithOwned/ExtendOwned never mutate a caller's set in place,
// they build a new one.
type nameSet map[coreir.Name]struct{}

func newNameSet(names ...coreir.Name) nameSet {
	s := make(nameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s nameSet) has(n coreir.Name) bool {
	_, ok := s[n]
	return ok
}

// union returns a new set containing every name in s and extra, without
// mutating either.
func (s nameSet) union(extra []coreir.Name) nameSet {
	out := make(nameSet, len(s)+len(extra))
	for n := range s {
		out[n] = struct{}{}
	}
	for _, n := range extra {
		out[n] = struct{}{}
	}
	return out
}

// State is PARC's analysis state (spec.md §4.3): owned is the set of
// bindings this point in the program is authorized to consume (a linear
// capability, threaded by value); live is the set of bindings some
// downstream use still needs (a running liveness set, threaded by
// reference and mutated in place as the pass walks right to left);
// caseNorm is the fresh-name counter the Case Normalizer consumes to name
// hoisted scrutinees — spec.md §5's "two pieces of mutable state" besides
// the live set.
//
// Single-threaded and synchronous by construction (spec.md §5) — every
// mutator here is a plain method call, never a goroutine or channel.
type State struct {
	owned    nameSet
	live     *nameSet
	caseNorm *CaseNormCtx
}

// NewState creates an analysis state with the given initially owned names,
// an empty liveness set, and a fresh case-normalization counter.
func NewState(owned []coreir.Name) *State {
	live := make(nameSet)
	return &State{owned: newNameSet(owned...), live: &live, caseNorm: &CaseNormCtx{}}
}

// IsOwned reports whether n is in the current owned set.
func (s *State) IsOwned(n coreir.Name) bool {
	return s.owned.has(n)
}

// IsLive reports whether n is still needed by some not-yet-processed use
// downstream (to the right, in program order, since liveness is computed
// by a reverse-post-order walk — spec.md §9).
func (s *State) IsLive(n coreir.Name) bool {
	return (*s.live).has(n)
}

// IsDead is the negation of IsLive: n has no remaining downstream use, so
// if it's also owned here it can be dropped rather than dup'd for sharing.
func (s *State) IsDead(n coreir.Name) bool {
	return !s.IsLive(n)
}

// MarkLive adds n to the live set. Mutates in place — live is the one piece
// of State that is not copy-on-write.
func (s *State) MarkLive(n coreir.Name) {
	(*s.live)[n] = struct{}{}
}

// MarkLives marks every name in ns live.
func (s *State) MarkLives(ns []coreir.Name) {
	for _, n := range ns {
		s.MarkLive(n)
	}
}

// Forget removes n from the live set — used once a binding site (a lambda
// parameter, a let, a branch pattern variable) is reached walking backwards,
// since nothing further left in program order can still be "downstream" of
// it.
func (s *State) Forget(n coreir.Name) {
	delete(*s.live, n)
}

// ForgetAll removes every name in ns from the live set.
func (s *State) ForgetAll(ns []coreir.Name) {
	for _, n := range ns {
		s.Forget(n)
	}
}

// WithOwned runs f with the owned set replaced (not extended) by names,
// then restores the caller's owned set — used when entering a lambda body,
// whose captured names are its only owned bindings before its parameters
// are added.
func (s *State) WithOwned(names []coreir.Name, f func()) {
	saved := s.owned
	s.owned = newNameSet(names...)
	defer func() { s.owned = saved }()
	f()
}

// ExtendOwned runs f with names added to the current owned set, then
// restores the caller's owned set.
func (s *State) ExtendOwned(names []coreir.Name, f func()) {
	saved := s.owned
	s.owned = s.owned.union(names)
	defer func() { s.owned = saved }()
	f()
}

// Scoped implements spec.md §5's `scoped(S, action)` combinator: extend_owned
// with S for the duration of action, then forget every name in S from the
// live set once action returns. Returns the live set as action left it,
// taken just before the forget — callers (like the Let rule) need to know
// whether a name in S was still live at that point, which forgetting it
// would otherwise erase.
func (s *State) Scoped(names []coreir.Name, f func()) nameSet {
	var observed nameSet
	defer s.ForgetAll(names)
	s.ExtendOwned(names, func() {
		f()
		observed = make(nameSet, len(*s.live))
		for n := range *s.live {
			observed[n] = struct{}{}
		}
	})
	return observed
}

// Isolated runs f with a completely empty live set (no inherited downstream
// demand), then restores the caller's live set — used by the Definition
// Driver at the top of each definition, so no liveness carries over from
// another definition.
func (s *State) Isolated(f func()) nameSet {
	saved := *s.live
	empty := make(nameSet)
	s.live = &empty
	defer func() { s.live = &saved }()
	f()
	return *s.live
}

// IsolateWith is Isolated seeded with an initial live set instead of an
// empty one — used when a lambda or branch body starts with some names
// already known to be needed (e.g. names captured by a later sibling arm).
func (s *State) IsolateWith(initial []coreir.Name, f func()) nameSet {
	saved := *s.live
	seeded := newNameSet(initial...)
	s.live = &seeded
	defer func() { s.live = &saved }()
	f()
	return *s.live
}

// LiveNames returns the current live set as a slice, in no particular
// order — for callers building a sorted/stable diagnostic or free-variable
// list.
func (s *State) LiveNames() []coreir.Name {
	out := make([]coreir.Name, 0, len(*s.live))
	for n := range *s.live {
		out = append(out, n)
	}
	return out
}
