package pat

import (
	"fmt"
	"strings"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
	"github.com/samber/lo"
)

// Class is a set of clauses that all match one region of the argument space,
// given by clause index in declaration order.
type Class struct {
	Contents []int
}

// Equal decides definitional equality of two clause bodies in ctx.
type Equal func(lhs, rhs core.Term, ctx core.Telescope) bool

// row is what is left of one clause at the current split position.
type row struct {
	ix   int
	pats []core.Pat
}

// Classifier partitions the clauses of one function into classes by splitting
// the argument space on the constructors the clauses mention.
type Classifier struct {
	whnf     func(core.Term) core.Term
	reporter diagnostics.Reporter
	pos      source.Pos
	covered  bool
}

func NewClassifier(whnf func(core.Term) core.Term, reporter diagnostics.Reporter, pos source.Pos) *Classifier {
	return &Classifier{whnf: whnf, reporter: reporter, pos: pos, covered: true}
}

// Covered reports whether the last Classify found every case handled.
func (c *Classifier) Covered() bool { return c.covered }

// Classify splits on tele and returns the classes in case order. Every case no
// clause matches is reported as P001, unless it is uninhabited.
func (c *Classifier) Classify(clauses []core.Clause, tele core.Telescope) []Class {
	c.covered = true
	rows := make([]row, len(clauses))
	for i, cl := range clauses {
		rows[i] = row{ix: i, pats: core.InlineAll(cl.Patterns)}
	}
	skeleton := make([]core.Pat, len(tele))
	for i, p := range tele {
		skeleton[i] = core.BindPat{Var: p.Var, Type: p.Type, Explicit: p.Explicit}
	}
	return c.classify(tele, rows, skeleton)
}

func (c *Classifier) classify(tele core.Telescope, rows []row, skeleton []core.Pat) []Class {
	if len(rows) == 0 {
		c.uncovered(tele, skeleton)
		return nil
	}
	if len(tele) == 0 {
		class := Class{Contents: make([]int, len(rows))}
		for i, r := range rows {
			class.Contents[i] = r.ix
		}
		return []Class{class}
	}

	param, rest := tele[0], tele[1:]
	if !needsSplit(rows) {
		next := make([]row, len(rows))
		for i, r := range rows {
			next[i] = row{ix: r.ix, pats: r.pats[1:]}
		}
		return c.classify(rest, next, skeleton)
	}

	switch ty := c.whnf(param.Type).(type) {
	case core.SigmaTerm:
		return c.splitTuple(param, ty, rest, rows, skeleton)
	case core.DataCall:
		var classes []Class
		for _, ctor := range ty.Ref.Members {
			classes = append(classes, c.splitCtor(param, ty, ctor, rest, rows, skeleton)...)
		}
		return classes
	default:
		panic(diagnostics.Internalf("cannot split on %s : %s", param.Var.Name, ty))
	}
}

func needsSplit(rows []row) bool {
	for _, r := range rows {
		switch r.pats[0].(type) {
		case core.CtorPat, core.ShapedIntPat, core.TuplePat, core.AbsurdPat:
			return true
		}
	}
	return false
}

func (c *Classifier) splitTuple(param core.Param, sigma core.SigmaTerm, rest core.Telescope, rows []row, skeleton []core.Pat) []Class {
	items, _ := core.RenameTele(sigma.Params)
	tup := core.TuplePat{Pats: bindsOf(items), Type: param.Type, Explicit: param.Explicit}
	next := make([]row, 0, len(rows))
	for _, r := range rows {
		var sub []core.Pat
		switch head := r.pats[0].(type) {
		case core.TuplePat:
			sub = head.Pats
		case core.BindPat:
			sub = freshBinds(items)
		default:
			panic(diagnostics.Internalf("pattern %s against sigma type", head))
		}
		next = append(next, row{ix: r.ix, pats: concatPats(sub, r.pats[1:])})
	}
	return c.classify(c.refine(param, tup, items, rest), next, fillSkeleton(skeleton, param.Var, tup))
}

func (c *Classifier) splitCtor(param core.Param, call core.DataCall, ctor *core.DefVar, rest core.Telescope, rows []row, skeleton []core.Pat) []Class {
	sig := ctor.Signature()
	s := make(core.Subst, sig.Owner)
	for i, p := range sig.Telescope[:sig.Owner] {
		s[p.Var] = call.Args[i].Term
	}
	self, _ := core.RenameTele(core.SubstTele(sig.SelfTelescope(), s))
	split := core.CtorPat{Ref: ctor, Params: bindsOf(self), Type: call, Explicit: param.Explicit}

	var next []row
	for _, r := range rows {
		if sub, ok := c.specialize(r.pats[0], ctor, self); ok {
			next = append(next, row{ix: r.ix, pats: concatPats(sub, r.pats[1:])})
		}
	}
	return c.classify(c.refine(param, split, self, rest), next, fillSkeleton(skeleton, param.Var, split))
}

// specialize returns the sub-patterns of head under ctor, or false when head
// cannot match ctor.
func (c *Classifier) specialize(head core.Pat, ctor *core.DefVar, self core.Telescope) ([]core.Pat, bool) {
	switch head := head.(type) {
	case core.BindPat:
		return freshBinds(self), true
	case core.CtorPat:
		return head.Params, head.Ref == ctor
	case core.ShapedIntPat:
		return c.specialize(head.ConstructorForm(), ctor, self)
	case core.AbsurdPat:
		return nil, false
	}
	panic(diagnostics.Internalf("pattern %s against data type", head))
}

// refine replaces param in the remaining telescope by the pattern it was split
// into and puts the pattern's variables in front.
func (c *Classifier) refine(param core.Param, split core.Pat, vars, rest core.Telescope) core.Telescope {
	s := core.Subst{param.Var: core.PatToTerm(split)}
	return concatTele(vars, core.SubstTele(rest, s))
}

// uncovered reports the case given by skeleton unless its remaining
// parameters include an empty type.
func (c *Classifier) uncovered(tele core.Telescope, skeleton []core.Pat) {
	for _, p := range tele {
		if call, ok := c.whnf(p.Type).(core.DataCall); ok && len(call.Ref.Members) == 0 {
			return
		}
	}
	c.covered = false
	c.reporter.Report(diagnostics.NewError(diagnostics.ErrP001, c.pos, SkeletonString(skeleton)))
}

// Confluence checks that overlapping clauses agree. Each class is compared
// against its first non-absurd clause.
func Confluence(clauses []core.Clause, classes []Class, equal Equal, reporter diagnostics.Reporter) bool {
	ok := true
	seen := make(map[[2]int]bool)
	for _, class := range classes {
		first := -1
		for _, ix := range class.Contents {
			if clauses[ix].IsAbsurd() {
				continue
			}
			if first < 0 {
				first = ix
				continue
			}
			if seen[[2]int{first, ix}] {
				continue
			}
			seen[[2]int{first, ix}] = true
			lhs, rhs := clauses[first], clauses[ix]
			lhsSubst, rhsSubst, ctx := Unify(lhs.Patterns, rhs.Patterns)
			l := core.Substitute(lhs.Body, lhsSubst)
			r := core.Substitute(rhs.Body, rhsSubst)
			if !equal(l, r, ctx) {
				ok = false
				reporter.Report(diagnostics.NewError(diagnostics.ErrP002, rhs.Pos,
					fmt.Sprintf("%s and %s compute %s and %s", clauseHead(lhs), clauseHead(rhs), l, r)))
			}
		}
	}
	return ok
}

// Dominated lists the non-absurd clauses that belong to no class.
func Dominated(clauses []core.Clause, classes []Class) []int {
	used := make([]bool, len(clauses))
	for _, class := range classes {
		for _, ix := range class.Contents {
			used[ix] = true
		}
	}
	var out []int
	for i, cl := range clauses {
		if !used[i] && !cl.IsAbsurd() {
			out = append(out, i)
		}
	}
	return out
}

// SkeletonString prints a case with `_` for every position left unsplit.
func SkeletonString(pats []core.Pat) string {
	return strings.Join(lo.Map(pats, func(p core.Pat, _ int) string { return skeleton(p, false) }), ", ")
}

func skeleton(p core.Pat, nested bool) string {
	var s string
	switch p := p.(type) {
	case core.BindPat:
		s = "_"
	case core.CtorPat:
		parts := []string{p.Ref.Name}
		for _, sub := range p.Params {
			parts = append(parts, skeleton(sub, true))
		}
		s = strings.Join(parts, " ")
		if nested && p.Explicit && len(p.Params) > 0 {
			s = "(" + s + ")"
		}
	case core.TuplePat:
		s = "(" + SkeletonString(p.Pats) + ")"
	default:
		s = p.String()
	}
	if !p.IsExplicit() {
		return "{" + s + "}"
	}
	return s
}

func clauseHead(c core.Clause) string {
	return strings.Join(lo.Map(c.Patterns, func(p core.Pat, _ int) string { return p.String() }), ", ")
}

// fillSkeleton replaces the hole bound to v by split.
func fillSkeleton(pats []core.Pat, v *core.LocalVar, split core.Pat) []core.Pat {
	return lo.Map(pats, func(p core.Pat, _ int) core.Pat { return fillPat(p, v, split) })
}

func fillPat(p core.Pat, v *core.LocalVar, split core.Pat) core.Pat {
	switch p := p.(type) {
	case core.BindPat:
		if p.Var == v {
			return split
		}
	case core.CtorPat:
		return core.CtorPat{Ref: p.Ref, Params: fillSkeleton(p.Params, v, split), Type: p.Type, Explicit: p.Explicit}
	case core.TuplePat:
		return core.TuplePat{Pats: fillSkeleton(p.Pats, v, split), Type: p.Type, Explicit: p.Explicit}
	}
	return p
}

func bindsOf(tele core.Telescope) []core.Pat {
	return lo.Map(tele, func(p core.Param, _ int) core.Pat {
		return core.BindPat{Var: p.Var, Type: p.Type, Explicit: p.Explicit}
	})
}

func freshBinds(tele core.Telescope) []core.Pat {
	return lo.Map(tele, func(p core.Param, _ int) core.Pat {
		return core.BindPat{Var: p.Var.Rename(), Type: p.Type, Explicit: p.Explicit}
	})
}

func concatPats(a, b []core.Pat) []core.Pat {
	out := make([]core.Pat, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func concatTele(a, b core.Telescope) core.Telescope {
	out := make(core.Telescope, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
