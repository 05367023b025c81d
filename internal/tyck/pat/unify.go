// Package pat implements coverage and confluence checking of pattern clauses.
package pat

import (
	"fmt"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
)

// unifier relates two overlapping pattern lists. This is not pattern
// unification of metas: it computes how each side instantiates to the
// common refinement of both.
type unifier struct {
	lhsSubst core.Subst
	rhsSubst core.Subst
	ctx      *core.Telescope
}

// Unify relates lhs and rhs, which the classifier has placed in one class.
// lhsSubst turns lhs's variables into the common instance, rhsSubst does the
// same for rhs, and ctx binds the variables that remain. Calling it on pattern
// lists of different shapes is an internal error.
func Unify(lhs, rhs []core.Pat) (lhsSubst, rhsSubst core.Subst, ctx core.Telescope) {
	if len(lhs) != len(rhs) {
		panic(diagnostics.Internalf("unifying %d patterns with %d", len(lhs), len(rhs)))
	}
	lhsSubst, rhsSubst = make(core.Subst), make(core.Subst)
	lhs, rhs = core.InlineAll(lhs), core.InlineAll(rhs)
	for i := range lhs {
		unifyPat(lhs[i], rhs[i], lhsSubst, rhsSubst, &ctx)
	}
	return lhsSubst, rhsSubst, ctx
}

// unifyPat keeps binds on the left so that a bind meeting anything records the
// other side.
func unifyPat(lhs, rhs core.Pat, lhsSubst, rhsSubst core.Subst, ctx *core.Telescope) {
	if _, ok := rhs.(core.BindPat); ok {
		(&unifier{lhsSubst: rhsSubst, rhsSubst: lhsSubst, ctx: ctx}).unify(rhs, lhs)
		return
	}
	(&unifier{lhsSubst: lhsSubst, rhsSubst: rhsSubst, ctx: ctx}).unify(lhs, rhs)
}

func (u *unifier) list(lhs, rhs []core.Pat) {
	if len(lhs) != len(rhs) {
		panic(diagnostics.Internalf("unifying %d sub-patterns with %d", len(lhs), len(rhs)))
	}
	for i := range lhs {
		unifyPat(lhs[i], rhs[i], u.lhsSubst, u.rhsSubst, u.ctx)
	}
}

func (u *unifier) unify(lhs, rhs core.Pat) {
	switch l := lhs.(type) {
	case core.BindPat:
		u.visitAs(l.Var, rhs)
	case core.TuplePat:
		r, ok := rhs.(core.TuplePat)
		if !ok {
			u.mismatch(lhs, rhs)
		}
		u.list(l.Pats, r.Pats)
	case core.CtorPat:
		switch r := rhs.(type) {
		case core.CtorPat:
			u.list(l.Params, r.Params)
		case core.ShapedIntPat:
			u.unify(l, r.ConstructorForm())
		default:
			u.mismatch(lhs, rhs)
		}
	case core.ShapedIntPat:
		switch r := rhs.(type) {
		case core.ShapedIntPat:
			if r.Value != l.Value {
				u.mismatch(lhs, rhs)
			}
		case core.CtorPat:
			u.unify(l.ConstructorForm(), r)
		default:
			u.unify(l.ConstructorForm(), rhs)
		}
	default:
		u.mismatch(lhs, rhs)
	}
}

// visitAs records as := rhs and brings rhs's variables into the context.
func (u *unifier) visitAs(as *core.LocalVar, rhs core.Pat) {
	if b, ok := rhs.(core.BindPat); ok {
		*u.ctx = append(*u.ctx, core.Param{Var: b.Var, Type: b.Type, Explicit: b.Explicit})
	} else {
		*u.ctx = append(*u.ctx, core.PatBindings(rhs)...)
	}
	u.lhsSubst[as] = core.PatToTerm(rhs)
}

func (u *unifier) mismatch(lhs, rhs core.Pat) {
	panic(diagnostics.Internalf("%s and %s are patterns of different types", describe(lhs), describe(rhs)))
}

func describe(p core.Pat) string {
	return fmt.Sprintf("%s (%T)", p, p)
}
