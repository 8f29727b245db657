package parc

import "fmt"

// ICE ("internal compiler error") is the typed fatal error this package
// panics with for IR shapes that are unreachable by construction: a
// recursive expression-level let, or a lambda whose captures disagree with
// its body's liveness. These are invariant violations, not user-facing
// diagnostics — by the time Core IR reaches PARC, the front end has already
// checked the program; anything ICE reports means PARC's own assumptions
// about its input were wrong. The Type Classifier's missing-registry
// failures panic with a plain error instead; recoverICE handles both.
//
// ICE carries the current definition-name chain (spec.md §7.1: "aborts
// with a message naming the current definition chain") so a panic can be
// traced back to the top-level definition it happened inside, the way
// internal/mir/lower.go's panics name the function being lowered.
type ICE struct {
	Op    string
	Msg   string
	Chain []string
}

func (e *ICE) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("parc: %s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("parc: %s: %s (in %v)", e.Op, e.Msg, e.Chain)
}

// withChain returns a copy of e with name prepended to its chain — called
// by recoverICE at a definition's boundary.
func (e *ICE) withChain(name string) *ICE {
	chain := make([]string, 0, len(e.Chain)+1)
	chain = append(chain, name)
	chain = append(chain, e.Chain...)
	return &ICE{Op: e.Op, Msg: e.Msg, Chain: chain}
}

// recoverICE turns a panic raised by this package (an *ICE, or any error
// panic — internal/mir/lower.go's own idiom is to panic with
// fmt.Errorf("mir: ...: %w", err) rather than a typed error, so both forms
// are handled) into a returned error, annotated with defName. Call only at
// a definition boundary (parcDefWithOwned defers it once per definition) —
// never inside the recursive
// Transform walk itself, so one bad definition does not corrupt the state
// a sibling definition's own pass is using.
func recoverICE(defName string, errOut *error) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case *ICE:
		*errOut = v.withChain(defName)
	case error:
		*errOut = fmt.Errorf("parc: %s: %w", defName, v)
	default:
		*errOut = fmt.Errorf("parc: %s: %v", defName, v)
	}
}
