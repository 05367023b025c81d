package tyck

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/source"
)

// Ordering is the relation a comparison establishes between its left and right
// sides. Lt lets the left side be a subtype of the right one.
type Ordering int

const (
	Eq Ordering = iota
	Lt
	Gt
)

func (o Ordering) Flip() Ordering {
	switch o {
	case Lt:
		return Gt
	case Gt:
		return Lt
	}
	return Eq
}

func (o Ordering) String() string {
	switch o {
	case Lt:
		return "<="
	case Gt:
		return ">="
	}
	return "=="
}

// FailureData describes the innermost pair of subterms a comparison failed on.
type FailureData struct {
	Lhs, Rhs core.Term
	Reason   string
}

func (f *FailureData) String() string {
	if f.Reason != "" {
		return fmt.Sprintf("%s vs %s (%s)", f.Lhs, f.Rhs, f.Reason)
	}
	return fmt.Sprintf("%s vs %s", f.Lhs, f.Rhs)
}

// DefEq decides definitional equality and subtyping, solving metas on the way.
type DefEq struct {
	state         *MetaState
	ctx           *LocalCtx
	norm          *core.Normalizer
	pos           source.Pos
	allowPostpone bool
	failure       *FailureData
}

func NewDefEq(state *MetaState, ctx *LocalCtx, norm *core.Normalizer, pos source.Pos) *DefEq {
	return &DefEq{state: state, ctx: ctx, norm: norm, pos: pos, allowPostpone: true}
}

// Failure returns why the last comparison failed, or nil.
func (u *DefEq) Failure() *FailureData { return u.failure }

// Compare checks lhs against rhs under order. It never reports: callers turn a
// false result and Failure() into a diagnostic.
func (u *DefEq) Compare(lhs, rhs core.Term, order Ordering) bool {
	u.failure = nil
	return u.compare(lhs, rhs, order)
}

func (u *DefEq) fail(lhs, rhs core.Term, reason string) bool {
	if u.failure == nil {
		u.failure = &FailureData{Lhs: u.state.Freeze(lhs), Rhs: u.state.Freeze(rhs), Reason: reason}
	}
	return false
}

func (u *DefEq) compare(lhs, rhs core.Term, ord Ordering) bool {
	lhs, rhs = u.norm.Whnf(lhs), u.norm.Whnf(rhs)
	if _, ok := lhs.(core.ErrorTerm); ok {
		return true
	}
	if _, ok := rhs.(core.ErrorTerm); ok {
		return true
	}

	if m, ok := lhs.(core.MetaTerm); ok {
		if r, ok := rhs.(core.MetaTerm); ok && r.Meta == m.Meta &&
			u.compareArgs(m.ContextArgs, r.ContextArgs) && u.compareArgs(m.Args, r.Args) {
			return true
		}
		return u.solveMeta(m, rhs, ord)
	}
	if m, ok := rhs.(core.MetaTerm); ok {
		return u.solveMeta(m, lhs, ord.Flip())
	}

	if lam, ok := lhs.(core.LamTerm); ok {
		if _, ok := rhs.(core.LamTerm); !ok {
			return u.etaLam(lam, rhs)
		}
	}
	if lam, ok := rhs.(core.LamTerm); ok {
		if _, ok := lhs.(core.LamTerm); !ok {
			return u.etaLam(lam, lhs)
		}
	}
	if tup, ok := lhs.(core.TupTerm); ok {
		if _, ok := rhs.(core.TupTerm); !ok {
			return u.etaTup(tup, rhs)
		}
	}
	if tup, ok := rhs.(core.TupTerm); ok {
		if _, ok := lhs.(core.TupTerm); !ok {
			return u.etaTup(tup, lhs)
		}
	}

	if !u.compareHead(lhs, rhs, ord) {
		return u.fail(lhs, rhs, "")
	}
	return true
}

// etaLam compares a lambda with a term of pi type by applying both to the
// lambda's variable.
func (u *DefEq) etaLam(lam core.LamTerm, other core.Term) bool {
	u.ctx.Put(lam.Param.Var, lam.Param.Type)
	defer u.ctx.Remove(lam.Param.Var)
	return u.compare(lam.Body, core.MakeApp(other, lam.Param.ToArg()), Eq)
}

func (u *DefEq) etaTup(tup core.TupTerm, other core.Term) bool {
	for i, item := range tup.Items {
		if !u.compare(item, core.ProjTerm{Tup: other, Ix: i + 1}, Eq) {
			return false
		}
	}
	return true
}

func (u *DefEq) compareArgs(lhs, rhs []core.Arg) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	for i := range lhs {
		if lhs[i].Explicit != rhs[i].Explicit || !u.compare(lhs[i].Term, rhs[i].Term, Eq) {
			return false
		}
	}
	return true
}

func (u *DefEq) compareTerms(lhs, rhs []core.Term) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	for i := range lhs {
		if !u.compare(lhs[i], rhs[i], Eq) {
			return false
		}
	}
	return true
}

// withParams binds params for the duration of f.
func (u *DefEq) withParams(params core.Telescope, f func() bool) bool {
	u.ctx.PutTele(params)
	defer u.ctx.Remove(params.Vars()...)
	return f()
}

func (u *DefEq) compareHead(lhs, rhs core.Term, ord Ordering) bool {
	switch l := lhs.(type) {
	case core.RefTerm:
		r, ok := rhs.(core.RefTerm)
		return ok && r.Var == l.Var
	case core.FieldRefTerm:
		r, ok := rhs.(core.FieldRefTerm)
		return ok && r.Field == l.Field
	case core.UnivTerm:
		r, ok := rhs.(core.UnivTerm)
		if !ok {
			return false
		}
		switch ord {
		case Lt:
			return l.Lift <= r.Lift
		case Gt:
			return l.Lift >= r.Lift
		}
		return l.Lift == r.Lift
	case core.PiTerm:
		r, ok := rhs.(core.PiTerm)
		if !ok || l.Param.Explicit != r.Param.Explicit || !u.compare(l.Param.Type, r.Param.Type, ord.Flip()) {
			return false
		}
		body := core.Substitute(r.Body, core.Subst{r.Param.Var: l.Param.ToTerm()})
		return u.withParams(core.Telescope{l.Param}, func() bool { return u.compare(l.Body, body, ord) })
	case core.SigmaTerm:
		r, ok := rhs.(core.SigmaTerm)
		if !ok || len(l.Params) != len(r.Params) {
			return false
		}
		s := make(core.Subst, len(r.Params))
		return u.withParams(l.Params, func() bool {
			for i, lp := range l.Params {
				rp := r.Params[i]
				if lp.Explicit != rp.Explicit || !u.compare(lp.Type, core.Substitute(rp.Type, s), ord) {
					return false
				}
				s[rp.Var] = lp.ToTerm()
			}
			return true
		})
	case core.LamTerm:
		r := rhs.(core.LamTerm)
		body := core.Substitute(r.Body, core.Subst{r.Param.Var: l.Param.ToTerm()})
		return u.withParams(core.Telescope{l.Param}, func() bool { return u.compare(l.Body, body, Eq) })
	case core.TupTerm:
		return u.compareTerms(l.Items, rhs.(core.TupTerm).Items)
	case core.AppTerm:
		r, ok := rhs.(core.AppTerm)
		return ok && l.Arg.Explicit == r.Arg.Explicit && u.compare(l.Fn, r.Fn, Eq) && u.compare(l.Arg.Term, r.Arg.Term, Eq)
	case core.ProjTerm:
		r, ok := rhs.(core.ProjTerm)
		return ok && l.Ix == r.Ix && u.compare(l.Tup, r.Tup, Eq)
	case core.FnCall:
		r, ok := rhs.(core.FnCall)
		return ok && r.Ref == l.Ref && u.compareArgs(l.Args, r.Args)
	case core.DataCall:
		r, ok := rhs.(core.DataCall)
		return ok && r.Ref == l.Ref && u.compareArgs(l.Args, r.Args)
	case core.StructCall:
		r, ok := rhs.(core.StructCall)
		return ok && r.Ref == l.Ref && u.compareArgs(l.Args, r.Args)
	case core.PrimCall:
		r, ok := rhs.(core.PrimCall)
		return ok && r.Ref == l.Ref && u.compareArgs(l.Args, r.Args)
	case core.ConCall:
		switch r := rhs.(type) {
		case core.ConCall:
			return r.Ref == l.Ref && u.compareArgs(l.Args, r.Args)
		case core.IntLitTerm:
			return u.compare(l, r.ConstructorForm(), Eq)
		}
		return false
	case core.IntLitTerm:
		switch r := rhs.(type) {
		case core.IntLitTerm:
			return r.Value == l.Value
		case core.ConCall:
			return u.compare(l.ConstructorForm(), r, Eq)
		}
		return false
	case core.AccessTerm:
		r, ok := rhs.(core.AccessTerm)
		return ok && r.Field == l.Field && u.compare(l.Of, r.Of, Eq) && u.compareArgs(l.FieldArgs, r.FieldArgs)
	case core.NewTerm:
		r, ok := rhs.(core.NewTerm)
		if !ok || r.Struct.Ref != l.Struct.Ref || len(l.Fields) != len(r.Fields) {
			return false
		}
		for _, lf := range l.Fields {
			found := false
			for _, rf := range r.Fields {
				if rf.Field == lf.Field {
					if !u.compare(lf.Value, rf.Value, Eq) {
						return false
					}
					found = true
				}
			}
			if !found {
				return false
			}
		}
		return true
	case core.FormulaTerm:
		r, ok := rhs.(core.FormulaTerm)
		return ok && r.Op == l.Op && u.compareTerms(l.Args, r.Args)
	case core.PartialTerm:
		r, ok := rhs.(core.PartialTerm)
		return ok && u.comparePartial(l, r)
	case core.PathTerm:
		r, ok := rhs.(core.PathTerm)
		if !ok || len(l.Dims) != len(r.Dims) {
			return false
		}
		s := dimSubst(r.Dims, l.Dims)
		r = core.Substitute(r, s).(core.PathTerm)
		return u.compare(l.Type, r.Type, ord) && u.comparePartial(l.Partial, r.Partial)
	case core.PLamTerm:
		r, ok := rhs.(core.PLamTerm)
		if !ok || len(l.Dims) != len(r.Dims) {
			return false
		}
		return u.compare(l.Body, core.Substitute(r.Body, dimSubst(r.Dims, l.Dims)), Eq)
	case core.PAppTerm:
		r, ok := rhs.(core.PAppTerm)
		return ok && u.compare(l.Of, r.Of, Eq) && u.compareTerms(l.Args, r.Args)
	case core.CoeTerm:
		r, ok := rhs.(core.CoeTerm)
		return ok && u.compare(l.Type, r.Type, Eq) && u.compare(l.Restr, r.Restr, Eq)
	}
	return false
}

func (u *DefEq) comparePartial(l, r core.PartialTerm) bool {
	if len(l.Clauses) != len(r.Clauses) {
		return false
	}
	for i := range l.Clauses {
		if !u.compare(l.Clauses[i].Cond, r.Clauses[i].Cond, Eq) || !u.compare(l.Clauses[i].Value, r.Clauses[i].Value, Eq) {
			return false
		}
	}
	return true
}

func dimSubst(from, to []*core.LocalVar) core.Subst {
	s := make(core.Subst, len(from))
	for i, d := range from {
		s[d] = core.RefTerm{Var: to[i]}
	}
	return s
}

// solveMeta assigns m := rhs when m's spine is a list of distinct variables,
// abstracting rhs over that spine. Other equations are postponed.
func (u *DefEq) solveMeta(m core.MetaTerm, rhs core.Term, ord Ordering) bool {
	meta := m.Meta
	spine := make([]core.Arg, 0, len(m.ContextArgs)+len(m.Args))
	spine = append(spine, m.ContextArgs...)
	spine = append(spine, m.Args...)

	seen := set.New[*core.LocalVar](len(spine))
	vars := make([]*core.LocalVar, len(spine))
	for i, a := range spine {
		ref, ok := u.norm.Whnf(a.Term).(core.RefTerm)
		if !ok || !seen.Insert(ref.Var) {
			return u.postpone(m, rhs, ord)
		}
		vars[i] = ref.Var
	}

	// Extra parameters are committed to the meta only once the solution is accepted.
	full := meta.FullTelescope()
	var extra core.Telescope
	if len(vars) > len(full) {
		for i, a := range spine[len(full):] {
			ty, ok := u.ctx.Get(vars[len(full)+i])
			if !ok {
				return u.postpone(m, rhs, ord)
			}
			fresh := vars[len(full)+i].Rename()
			extra = append(extra, core.Param{Var: fresh, Type: ty, Explicit: a.Explicit})
		}
		full = append(full, extra...)
	}

	s := make(core.Subst, len(vars))
	for i, v := range vars {
		s[v] = core.RefTerm{Var: full[i].Var}
	}
	frozen := u.state.Freeze(rhs)
	for _, other := range core.Metas(frozen) {
		if other == meta {
			return u.fail(m, rhs, "occurs check on "+core.MetaName(meta))
		}
	}
	for v := range core.FreeVars(frozen).Items() {
		if !seen.Contains(v) {
			if u.state.InScope(meta, v) {
				return u.fail(m, rhs, fmt.Sprintf("%s is not an argument of %s", v.Name, core.MetaName(meta)))
			}
			return u.fail(m, rhs, fmt.Sprintf("%s is not in scope of %s", v.Name, core.MetaName(meta)))
		}
	}
	if len(extra) > 0 {
		meta.Telescope = append(meta.Telescope, extra...)
	}
	u.state.Solve(meta, core.Substitute(frozen, s))
	return true
}

func (u *DefEq) postpone(m core.MetaTerm, rhs core.Term, ord Ordering) bool {
	if !u.allowPostpone {
		return u.fail(m, rhs, "not a pattern")
	}
	u.state.Postpone(Equation{Order: ord, Lhs: m, Rhs: rhs, Ctx: u.ctx.Clone(), Pos: u.pos})
	return true
}
