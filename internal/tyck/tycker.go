package tyck

import (
	"fmt"
	"strings"

	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
)

// Result pairs an elaborated term with its type in the current context.
type Result struct {
	Term core.Term
	Type core.Term
}

// FatalError stops the checking of the current declaration. It is returned up
// through the elaborator and reported at the declaration boundary.
type FatalError struct {
	Problem *diagnostics.DiagnosticError
}

func (e *FatalError) Error() string { return e.Problem.Error() }

func fatalf(pos source.Pos, format string, args ...interface{}) error {
	return &FatalError{Problem: diagnostics.NewError(diagnostics.ErrR001, pos, fmt.Sprintf(format, args...))}
}

// Options configures an ExprTycker.
type Options struct {
	Prims       *core.PrimFactory
	UnfoldLimit int
	ShowGoals   bool
}

type goal struct {
	meta core.MetaTerm
	ctx  core.Telescope
	pos  source.Pos
}

// ExprTycker elaborates the expressions of exactly one declaration. Its local
// context and meta state must not outlive that declaration.
type ExprTycker struct {
	reporter diagnostics.Reporter
	ctx      *LocalCtx
	state    *MetaState
	norm     *core.Normalizer
	opts     Options
	goals    []goal
	shown    []*core.Meta
}

func NewExprTycker(reporter diagnostics.Reporter, opts Options) *ExprTycker {
	state := NewMetaState()
	return &ExprTycker{
		reporter: reporter,
		ctx:      NewLocalCtx(),
		state:    state,
		norm:     core.NewNormalizer(state, opts.Prims, opts.UnfoldLimit),
		opts:     opts,
	}
}

func (t *ExprTycker) Ctx() *LocalCtx               { return t.ctx }
func (t *ExprTycker) State() *MetaState            { return t.state }
func (t *ExprTycker) Normalizer() *core.Normalizer { return t.norm }

// Overlay lets the normalizer unfold def before its slot is filled.
func (t *ExprTycker) Overlay(def core.Def) {
	if t.norm.Overlay == nil {
		t.norm.Overlay = make(map[*core.DefVar]core.Def)
	}
	t.norm.Overlay[def.Ref()] = def
}

func (t *ExprTycker) whnf(term core.Term) core.Term { return t.norm.Whnf(term) }

// Unifier returns a comparison engine over the current context.
func (t *ExprTycker) Unifier(pos source.Pos) *DefEq {
	return NewDefEq(t.state, t.ctx, t.norm, pos)
}

func (t *ExprTycker) report(code diagnostics.ErrorCode, pos source.Pos, args ...interface{}) {
	t.reporter.Report(diagnostics.NewError(code, pos, args...))
}

// fail reports a problem and stands in an error term of type ty for expr.
func (t *ExprTycker) fail(expr ast.Node, ty core.Term, code diagnostics.ErrorCode, format string, args ...interface{}) Result {
	t.report(code, expr.GetPos(), fmt.Sprintf(format, args...))
	return Result{Term: core.ErrorTerm{Desc: expr.String(), Really: true}, Type: ty}
}

func errorType(expr ast.Node) core.Term {
	return core.ErrorTerm{Desc: "type of " + expr.String()}
}

func isError(term core.Term) bool {
	_, ok := term.(core.ErrorTerm)
	return ok
}

// unifyTy checks lower <= upper and returns the failure, or nil on success.
func (t *ExprTycker) unifyTy(upper, lower core.Term, pos source.Pos) *FailureData {
	u := t.Unifier(pos)
	if u.Compare(lower, upper, Lt) {
		return nil
	}
	if f := u.Failure(); f != nil {
		return f
	}
	return &FailureData{Lhs: t.state.Freeze(lower), Rhs: t.state.Freeze(upper)}
}

// unifyTyReported is unifyTy with the failure reported as a type mismatch.
func (t *ExprTycker) unifyTyReported(upper, lower core.Term, expr ast.Node) bool {
	if f := t.unifyTy(upper, lower, expr.GetPos()); f != nil {
		t.reportMismatch(expr, upper, lower, f)
		return false
	}
	return true
}

func (t *ExprTycker) reportMismatch(expr ast.Node, upper, lower core.Term, f *FailureData) {
	msg := fmt.Sprintf("expected %s, got %s for %s", t.state.Freeze(upper), t.state.Freeze(lower), expr)
	d := diagnostics.NewError(diagnostics.ErrT001, expr.GetPos(), msg)
	if f.Lhs != nil {
		d = d.WithHint("cannot unify %s", f)
	}
	t.reporter.Report(d)
}

// unifyTyMaybeInsert applies implicit arguments to a synthesized result until its
// type is not an implicit pi, then checks it against upper.
func (t *ExprTycker) unifyTyMaybeInsert(upper core.Term, res Result, expr ast.Expr) Result {
	lower, term := res.Type, res.Term
	for {
		pi, ok := t.whnf(lower).(core.PiTerm)
		if !ok || pi.Param.Explicit {
			break
		}
		mock := t.mockArg(pi.Param, expr.GetPos())
		term = core.MakeApp(term, mock)
		lower = core.Substitute(pi.Body, core.Subst{pi.Param.Var: mock.Term})
	}
	if f := t.unifyTy(upper, lower, expr.GetPos()); f != nil {
		t.reportMismatch(expr, upper, lower, f)
		return Result{Term: core.ErrorTerm{Desc: t.state.Freeze(term).String(), Really: true}, Type: upper}
	}
	return Result{Term: term, Type: lower}
}

// ensureUniv returns the level of a universe type.
func (t *ExprTycker) ensureUniv(expr ast.Node, ty core.Term) int {
	switch w := t.whnf(ty).(type) {
	case core.UnivTerm:
		return w.Lift
	case core.MetaTerm:
		// TODO(lift-meta): a meta standing for a lifted universe is fixed to Type 0.
		t.unifyTyReported(w, core.UnivTerm{Lift: 0}, expr)
		return 0
	case core.ErrorTerm:
		return 0
	default:
		t.report(diagnostics.ErrT002, expr.GetPos(), fmt.Sprintf("%s is not a universe (type of %s)", t.state.Freeze(w), expr))
		return 0
	}
}

func (t *ExprTycker) freshMeta(name string, ty core.Term, pos source.Pos) core.MetaTerm {
	return t.state.FreshMeta(t.ctx, name, ty, pos)
}

func (t *ExprTycker) mockArg(param core.Param, pos source.Pos) core.Arg {
	m := t.freshMeta(generatedName(param.Var.Name), param.Type, pos)
	return core.Arg{Term: m, Explicit: param.Explicit}
}

// generatePi builds ?dom -> ?cod for a lambda checked without a known type.
func (t *ExprTycker) generatePi(lam *ast.LamExpr) core.Term {
	name := generatedName(lam.Param.Var.Name)
	dom := t.freshMeta(name+"ty", core.UnivTerm{Lift: 0}, lam.Pos)
	cod := t.freshMeta(name+"cod", core.UnivTerm{Lift: 0}, lam.Pos)
	return core.PiTerm{Param: core.Param{Var: core.NewLocalVar(name, lam.Pos), Type: dom, Explicit: lam.Param.Explicit}, Body: cod}
}

// asPi forces an unsolved meta type into ?dom -> ?cod, with both new metas
// living in the meta's own context.
func (t *ExprTycker) asPi(hole core.MetaTerm, explicit bool, pos source.Pos) core.PiTerm {
	spine := append(append([]core.Arg{}, hole.ContextArgs...), hole.Args...)
	full := hole.Meta.FullTelescope()
	n := min(len(spine), len(full))
	spine, full = spine[:n], full[:n]

	holeCtx := NewLocalCtx()
	holeCtx.PutTele(full)
	name := generatedName(hole.Meta.Name)
	dom := t.state.FreshMeta(holeCtx, name+"dom", core.UnivTerm{Lift: 0}, pos)
	dom.ContextArgs = spine

	param := core.Param{Var: core.NewLocalVar(name, pos), Explicit: explicit}
	param.Type = dom
	holeCtx.Put(param.Var, core.MetaTerm{Meta: dom.Meta, ContextArgs: full.Args()})
	cod := t.state.FreshMeta(holeCtx, name+"cod", core.UnivTerm{Lift: 0}, pos)
	cod.ContextArgs = append(append([]core.Arg{}, spine...), param.ToArg())
	return core.PiTerm{Param: param, Body: cod}
}

// instImplicits applies metas for leading implicit parameters of res.Type.
func (t *ExprTycker) instImplicits(res Result, pos source.Pos) Result {
	ty := t.whnf(res.Type)
	term := res.Term
	for {
		pi, ok := ty.(core.PiTerm)
		if !ok || pi.Param.Explicit {
			break
		}
		mock := t.mockArg(pi.Param, pos)
		term = core.MakeApp(term, mock)
		ty = t.whnf(core.Substitute(pi.Body, core.Subst{pi.Param.Var: mock.Term}))
	}
	return Result{Term: term, Type: ty}
}

// instImplicitsTerm applies metas to leading implicit lambdas of a type-level term.
func (t *ExprTycker) instImplicitsTerm(term core.Term, pos source.Pos) core.Term {
	term = t.whnf(term)
	for {
		lam, ok := term.(core.LamTerm)
		if !ok || lam.Param.Explicit {
			return term
		}
		term = t.whnf(core.MakeApp(lam, t.mockArg(lam.Param, pos)))
	}
}

// SolveMetas retries postponed equations until no more progress is made, then
// reports the ones left.
func (t *ExprTycker) SolveMetas() {
	for {
		eqs := t.state.TakePostponed()
		if len(eqs) == 0 {
			return
		}
		progress := false
		for _, eq := range eqs {
			before := len(t.state.postponed)
			u := NewDefEq(t.state, eq.Ctx, t.norm, eq.Pos)
			if !u.Compare(eq.Lhs, eq.Rhs, eq.Order) {
				f := u.Failure()
				if f == nil {
					f = &FailureData{Lhs: eq.Lhs, Rhs: eq.Rhs}
				}
				t.report(diagnostics.ErrT001, eq.Pos, f.String())
				progress = true
				continue
			}
			if len(t.state.postponed) == before {
				progress = true
			}
		}
		if !progress {
			for _, eq := range t.state.TakePostponed() {
				t.report(diagnostics.ErrT007, eq.Pos,
					fmt.Sprintf("%s %s %s", t.state.Freeze(eq.Lhs), eq.Order, t.state.Freeze(eq.Rhs)))
			}
			return
		}
	}
}

// ReportGoals reports the explicit holes met so far, with their solved types.
func (t *ExprTycker) ReportGoals() {
	if !t.opts.ShowGoals {
		t.goals = nil
		return
	}
	for _, g := range t.goals {
		d := diagnostics.NewError(diagnostics.ErrG001, g.pos,
			fmt.Sprintf("%s : %s", core.MetaName(g.meta.Meta), t.state.Freeze(g.meta.Meta.Result)))
		if len(g.ctx) > 0 {
			parts := make([]string, len(g.ctx))
			for i, p := range g.ctx {
				parts[i] = fmt.Sprintf("%s : %s", p.Var.Name, t.state.Freeze(p.Type))
			}
			d = d.WithHint("context: %s", strings.Join(parts, ", "))
		}
		if sol, ok := t.state.Solution(g.meta.Meta); ok {
			d = d.WithHint("solved as %s", t.state.Freeze(sol))
		}
		t.reporter.Report(d)
		t.shown = append(t.shown, g.meta.Meta)
	}
	t.goals = nil
}

// Zonker returns a zonker reporting through this tycker's reporter. Goals
// already reported are not reported again as unsolved metas.
func (t *ExprTycker) Zonker() *Zonker {
	return NewZonker(t.state, t.reporter).SkipGoals(t.shown...)
}
