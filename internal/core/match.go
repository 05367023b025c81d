package core

import "fmt"

// MatchResult is the outcome of matching terms against patterns.
type MatchResult int

const (
	Matched MatchResult = iota
	Mismatch
	Stuck
)

func (r MatchResult) String() string {
	switch r {
	case Matched:
		return "matched"
	case Mismatch:
		return "mismatch"
	case Stuck:
		return "stuck"
	}
	return fmt.Sprintf("MatchResult(%d)", int(r))
}

// merge combines the outcomes of sibling positions: any mismatch wins over
// stuck, and stuck wins over a match.
func (r MatchResult) merge(o MatchResult) MatchResult {
	if r == Mismatch || o == Mismatch {
		return Mismatch
	}
	if r == Stuck || o == Stuck {
		return Stuck
	}
	return Matched
}

// Matcher matches arguments against clause patterns, recording bindings in Subst.
type Matcher struct {
	Whnf  func(Term) Term
	Subst Subst
}

func NewMatcher(whnf func(Term) Term) *Matcher {
	return &Matcher{Whnf: whnf, Subst: make(Subst)}
}

// MatchMany matches args against pats position by position.
func (m *Matcher) MatchMany(pats []Pat, args []Arg) MatchResult {
	if len(pats) != len(args) {
		return Stuck
	}
	res := Matched
	for i, p := range pats {
		res = res.merge(m.Match(p, args[i].Term))
	}
	return res
}

func (m *Matcher) Match(p Pat, t Term) MatchResult {
	switch p := p.(type) {
	case BindPat:
		m.Subst[p.Var] = t
		return Matched
	case MetaPat:
		if p.Slot.Solution != nil {
			return m.Match(p.Slot.Solution, t)
		}
		m.Subst[p.Slot.FakeBind] = t
		return Matched
	case AbsurdPat:
		return Stuck
	case TuplePat:
		res := Matched
		w := m.Whnf(t)
		tup, isTup := w.(TupTerm)
		if isTup && len(tup.Items) != len(p.Pats) {
			return Mismatch
		}
		for i, sub := range p.Pats {
			var item Term
			if isTup {
				item = tup.Items[i]
			} else {
				item = ProjTerm{Tup: w, Ix: i + 1}
			}
			res = res.merge(m.Match(sub, item))
		}
		return res
	case ShapedIntPat:
		switch w := m.Whnf(t).(type) {
		case IntLitTerm:
			if w.Value == p.Value {
				return Matched
			}
			return Mismatch
		case ConCall:
			return m.Match(p.ConstructorForm(), w)
		}
		return Stuck
	case CtorPat:
		switch w := m.Whnf(t).(type) {
		case ConCall:
			if w.Ref != p.Ref {
				return Mismatch
			}
			return m.MatchMany(p.Params, w.Args)
		case IntLitTerm:
			return m.Match(p, w.ConstructorForm())
		}
		return Stuck
	}
	panic(fmt.Sprintf("unknown pattern %T", p))
}
