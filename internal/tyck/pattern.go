package tyck

import (
	"errors"
	"fmt"

	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
)

// errBadPattern marks a clause whose patterns were rejected. The problem has
// already been reported.
var errBadPattern = errors.New("ill-typed pattern")

// PatTycker checks the clauses of one function. It shares the context and
// meta state of its ExprTycker.
type PatTycker struct {
	t     *ExprTycker
	bound []*core.LocalVar
}

func NewPatTycker(t *ExprTycker) *PatTycker {
	return &PatTycker{t: t}
}

// CheckClause elaborates one clause against a function signature. ok is false
// when the patterns were rejected; the returned error is always a *FatalError.
func (p *PatTycker) CheckClause(c *ast.Clause, sig *core.Signature) (clause core.Clause, ok bool, err error) {
	p.bound = p.bound[:0]
	defer func() { p.t.ctx.Remove(p.bound...) }()

	pats, s, err := p.visitPatterns(sig.Telescope, c.Patterns, c.Pos)
	if errors.Is(err, errBadPattern) {
		return core.Clause{}, false, nil
	}
	if err != nil {
		return core.Clause{}, false, err
	}

	hasAbsurd := containsAbsurd(pats)
	if c.Body == nil {
		if !hasAbsurd {
			p.t.report(diagnostics.ErrP004, c.Pos, fmt.Sprintf("absurd clause %s has no absurd pattern", c))
			return core.Clause{}, false, nil
		}
		return core.Clause{Pos: c.Pos, Patterns: pats}, true, nil
	}
	if hasAbsurd {
		p.t.report(diagnostics.ErrP004, c.Pos, fmt.Sprintf("clause %s has an absurd pattern and a body", c))
		return core.Clause{}, false, nil
	}

	res, err := p.t.Inherit(c.Body, core.Substitute(sig.Result, s))
	if err != nil {
		return core.Clause{}, false, err
	}
	return core.Clause{Pos: c.Pos, Patterns: pats, Body: res.Term}, true, nil
}

func (p *PatTycker) bind(v *core.LocalVar, ty core.Term) {
	p.t.ctx.Put(v, ty)
	p.bound = append(p.bound, v)
}

// visitPatterns lines patterns up with tele. An implicit parameter without an
// implicit pattern gets a generated one; an implicit pattern for an explicit
// parameter is rejected.
func (p *PatTycker) visitPatterns(tele core.Telescope, pats []ast.Pattern, pos source.Pos) ([]core.Pat, core.Subst, error) {
	s := make(core.Subst, len(tele))
	out := make([]core.Pat, 0, len(tele))
	i := 0
	for _, param := range tele {
		ty := core.Substitute(param.Type, s)
		var pat core.Pat
		switch {
		case i < len(pats) && pats[i].IsExplicit() == param.Explicit:
			checked, err := p.checkPat(pats[i], ty)
			if err != nil {
				return nil, nil, err
			}
			pat = checked
			i++
		case !param.Explicit:
			v := core.NewLocalVar(generatedName(param.Var.Name), pos)
			p.bind(v, ty)
			pat = core.MetaPat{Slot: &core.MetaPatSlot{FakeBind: v, Type: ty}, Explicit: false}
		case i < len(pats):
			p.t.report(diagnostics.ErrT003, pats[i].GetPos(), fmt.Sprintf("unexpected implicit pattern %s", pats[i]))
			return nil, nil, errBadPattern
		default:
			p.t.report(diagnostics.ErrT009, pos, fmt.Sprintf("expected a pattern for %s : %s", param.Var.Name, p.t.state.Freeze(ty)))
			return nil, nil, errBadPattern
		}
		out = append(out, pat)
		s[param.Var] = core.PatToTerm(pat)
	}
	if i < len(pats) {
		p.t.report(diagnostics.ErrT009, pats[i].GetPos(), fmt.Sprintf("too many patterns, starting at %s", pats[i]))
		return nil, nil, errBadPattern
	}
	return out, s, nil
}

func (p *PatTycker) checkPat(pat ast.Pattern, ty core.Term) (core.Pat, error) {
	switch pat := pat.(type) {
	case *ast.BindPattern:
		p.bind(pat.Var, ty)
		return core.BindPat{Var: pat.Var, Type: ty, Explicit: pat.Explicit}, nil
	case *ast.CalmFacePattern:
		v := core.NewLocalVar(generatedName("_"), pat.Pos)
		p.bind(v, ty)
		return core.BindPat{Var: v, Type: ty, Explicit: pat.Explicit}, nil
	case *ast.CtorPattern:
		return p.checkCtor(pat, ty)
	case *ast.TuplePattern:
		sigma, ok := p.t.whnf(ty).(core.SigmaTerm)
		if !ok {
			return nil, p.reject(diagnostics.ErrT002, pat, "%s is not a sigma type (matching %s)", p.t.state.Freeze(ty), pat)
		}
		if len(sigma.Params) != len(pat.Pats) {
			return nil, p.reject(diagnostics.ErrT009, pat, "%s has %d components, pattern %s has %d", p.t.state.Freeze(ty), len(sigma.Params), pat, len(pat.Pats))
		}
		items, _, err := p.visitPatterns(sigma.Params, pat.Pats, pat.Pos)
		if err != nil {
			return nil, err
		}
		return core.TuplePat{Pats: items, Type: ty, Explicit: pat.Explicit}, nil
	case *ast.NumberPattern:
		if call, ok := p.t.whnf(ty).(core.DataCall); ok {
			if shape, ok := core.RecognizeNat(call.Ref); ok {
				return core.ShapedIntPat{Value: pat.Value, Shape: shape, Type: call, Explicit: pat.Explicit}, nil
			}
		}
		return nil, p.reject(diagnostics.ErrT008, pat, "literal pattern %d cannot have type %s", pat.Value, p.t.state.Freeze(ty))
	case *ast.AbsurdPattern:
		if call, ok := p.t.whnf(ty).(core.DataCall); ok && len(call.Ref.Members) == 0 {
			return core.AbsurdPat{Type: ty, Explicit: pat.Explicit}, nil
		}
		return nil, p.reject(diagnostics.ErrP004, pat, "%s is not an empty type", p.t.state.Freeze(ty))
	}
	panic(diagnostics.Internalf("unknown pattern %T", pat))
}

func (p *PatTycker) checkCtor(pat *ast.CtorPattern, ty core.Term) (core.Pat, error) {
	call, ok := p.t.whnf(ty).(core.DataCall)
	if !ok {
		return nil, p.reject(diagnostics.ErrT002, pat, "%s is not a data type (matching %s)", p.t.state.Freeze(ty), pat)
	}
	if pat.Ctor.Owner != call.Ref {
		return nil, p.reject(diagnostics.ErrT001, pat, "constructor %s does not belong to %s", pat.Ctor.Name, call.Ref.Name)
	}
	sig := pat.Ctor.Signature()
	if sig == nil {
		return nil, fatalf(pat.Pos, "constructor %s has no checked signature", pat.Ctor.Name)
	}
	s := make(core.Subst, sig.Owner)
	for i, param := range sig.Telescope[:sig.Owner] {
		s[param.Var] = call.Args[i].Term
	}
	params, _, err := p.visitPatterns(core.SubstTele(sig.SelfTelescope(), s), pat.Params, pat.Pos)
	if err != nil {
		return nil, err
	}
	return core.CtorPat{Ref: pat.Ctor, Params: params, Type: call, Explicit: pat.Explicit}, nil
}

func (p *PatTycker) reject(code diagnostics.ErrorCode, pat ast.Pattern, format string, args ...interface{}) error {
	p.t.report(code, pat.GetPos(), fmt.Sprintf(format, args...))
	return errBadPattern
}

func containsAbsurd(pats []core.Pat) bool {
	for _, pat := range pats {
		switch pat := pat.(type) {
		case core.AbsurdPat:
			return true
		case core.CtorPat:
			if containsAbsurd(pat.Params) {
				return true
			}
		case core.TuplePat:
			if containsAbsurd(pat.Pats) {
				return true
			}
		}
	}
	return false
}
