package core

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"
	"github.com/samber/lo"
)

// Subst maps variables (locals, or fields inside a struct literal) to terms.
type Subst map[Var]Term

// Add records v := t and returns the substitution for chaining.
func (s Subst) Add(v Var, t Term) Subst {
	s[v] = t
	return s
}

// Copy returns an independent copy.
func (s Subst) Copy() Subst {
	out := make(Subst, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// MapTerm rebuilds t with f applied to each immediate subterm. Binders are kept;
// callers that need capture-avoidance rename before mapping.
func MapTerm(t Term, f func(Term) Term) Term {
	mapArgs := func(args []Arg) []Arg {
		return lo.Map(args, func(a Arg, _ int) Arg { return Arg{Term: f(a.Term), Explicit: a.Explicit} })
	}
	mapParam := func(p Param) Param { return Param{Var: p.Var, Type: f(p.Type), Explicit: p.Explicit} }
	mapPartial := func(p PartialTerm) PartialTerm {
		clauses := lo.Map(p.Clauses, func(c PartialClause, _ int) PartialClause {
			return PartialClause{Cond: f(c.Cond), Value: f(c.Value)}
		})
		var rhs Term
		if p.RhsType != nil {
			rhs = f(p.RhsType)
		}
		return PartialTerm{Clauses: clauses, RhsType: rhs}
	}

	switch t := t.(type) {
	case RefTerm, FieldRefTerm, UnivTerm, ErrorTerm, IntLitTerm:
		return t
	case LamTerm:
		return LamTerm{Param: mapParam(t.Param), Body: f(t.Body)}
	case PiTerm:
		return PiTerm{Param: mapParam(t.Param), Body: f(t.Body)}
	case AppTerm:
		return AppTerm{Fn: f(t.Fn), Arg: Arg{Term: f(t.Arg.Term), Explicit: t.Arg.Explicit}}
	case TupTerm:
		return TupTerm{Items: lo.Map(t.Items, func(it Term, _ int) Term { return f(it) })}
	case SigmaTerm:
		return SigmaTerm{Params: lo.Map(t.Params, func(p Param, _ int) Param { return mapParam(p) })}
	case ProjTerm:
		return ProjTerm{Tup: f(t.Tup), Ix: t.Ix}
	case FnCall:
		return FnCall{Ref: t.Ref, Args: mapArgs(t.Args)}
	case DataCall:
		return DataCall{Ref: t.Ref, Args: mapArgs(t.Args)}
	case ConCall:
		return ConCall{Ref: t.Ref, DataRef: t.DataRef, DataArgs: mapArgs(t.DataArgs), Args: mapArgs(t.Args)}
	case StructCall:
		return StructCall{Ref: t.Ref, Args: mapArgs(t.Args)}
	case PrimCall:
		return PrimCall{Ref: t.Ref, Args: mapArgs(t.Args)}
	case AccessTerm:
		return AccessTerm{Of: f(t.Of), Field: t.Field, StructArgs: mapArgs(t.StructArgs), FieldArgs: mapArgs(t.FieldArgs)}
	case NewTerm:
		return NewTerm{
			Struct: StructCall{Ref: t.Struct.Ref, Args: mapArgs(t.Struct.Args)},
			Fields: lo.Map(t.Fields, func(fv FieldValue, _ int) FieldValue { return FieldValue{Field: fv.Field, Value: f(fv.Value)} }),
		}
	case MetaTerm:
		return MetaTerm{Meta: t.Meta, ContextArgs: mapArgs(t.ContextArgs), Args: mapArgs(t.Args)}
	case FormulaTerm:
		return FormulaTerm{Op: t.Op, Args: lo.Map(t.Args, func(a Term, _ int) Term { return f(a) })}
	case PartialTerm:
		return mapPartial(t)
	case PathTerm:
		return PathTerm{Dims: t.Dims, Type: f(t.Type), Partial: mapPartial(t.Partial)}
	case PLamTerm:
		return PLamTerm{Dims: t.Dims, Body: f(t.Body)}
	case PAppTerm:
		cube := PathTerm{Dims: t.Cube.Dims, Type: t.Cube.Type, Partial: t.Cube.Partial}
		if cube.Type != nil {
			cube = MapTerm(cube, f).(PathTerm)
		}
		return PAppTerm{Of: f(t.Of), Args: lo.Map(t.Args, func(a Term, _ int) Term { return f(a) }), Cube: cube}
	case CoeTerm:
		return CoeTerm{Type: f(t.Type), Restr: f(t.Restr)}
	}
	panic(fmt.Sprintf("unknown term %T", t))
}

// Substitute replaces the variables of s in t. Binders are unique, so no
// variable bound inside t can occur in s.
func Substitute(t Term, s Subst) Term {
	if len(s) == 0 {
		return t
	}
	switch t := t.(type) {
	case RefTerm:
		if r, ok := s[t.Var]; ok {
			return r
		}
		return t
	case FieldRefTerm:
		if r, ok := s[t.Field]; ok {
			return r
		}
		return t
	}
	return MapTerm(t, func(c Term) Term { return Substitute(c, s) })
}

// SubstTele substitutes into every parameter type of tele.
func SubstTele(tele Telescope, s Subst) Telescope {
	return lo.Map(tele, func(p Param, _ int) Param {
		return Param{Var: p.Var, Type: Substitute(p.Type, s), Explicit: p.Explicit}
	})
}

// RenameTele gives every parameter a fresh variable, rewriting later types to
// refer to the new ones. The returned substitution maps old to new.
func RenameTele(tele Telescope) (Telescope, Subst) {
	s := make(Subst, len(tele))
	out := make(Telescope, len(tele))
	for i, p := range tele {
		fresh := p.Var.Rename()
		out[i] = Param{Var: fresh, Type: Substitute(p.Type, s), Explicit: p.Explicit}
		s[p.Var] = RefTerm{Var: fresh}
	}
	return out, s
}

// Visit calls f on t and every subterm, outermost first.
func Visit(t Term, f func(Term)) {
	f(t)
	MapTerm(t, func(c Term) Term {
		Visit(c, f)
		return c
	})
}

// FreeVars returns the local variables t refers to but does not bind.
func FreeVars(t Term) *set.Set[*LocalVar] {
	refs := set.New[*LocalVar](0)
	bound := set.New[*LocalVar](0)
	Visit(t, func(c Term) {
		switch c := c.(type) {
		case RefTerm:
			refs.Insert(c.Var)
		case LamTerm:
			bound.Insert(c.Param.Var)
		case PiTerm:
			bound.Insert(c.Param.Var)
		case SigmaTerm:
			for _, p := range c.Params {
				bound.Insert(p.Var)
			}
		case PathTerm:
			for _, d := range c.Dims {
				bound.Insert(d)
			}
		case PLamTerm:
			for _, d := range c.Dims {
				bound.Insert(d)
			}
		}
	})
	free := set.New[*LocalVar](refs.Size())
	for v := range refs.Items() {
		if !bound.Contains(v) {
			free.Insert(v)
		}
	}
	return free
}

// Metas returns the metavariables occurring in t, in order of first occurrence.
func Metas(t Term) []*Meta {
	seen := set.New[*Meta](0)
	var out []*Meta
	Visit(t, func(c Term) {
		if m, ok := c.(MetaTerm); ok && seen.Insert(m.Meta) {
			out = append(out, m.Meta)
		}
	})
	return out
}

// Lift raises every universe in t by n levels.
func Lift(t Term, n int) Term {
	if n == 0 {
		return t
	}
	if u, ok := t.(UnivTerm); ok {
		return UnivTerm{Lift: u.Lift + n}
	}
	// TODO(lift-meta): metas are not lifted; solving a lifted meta needs level variables.
	return MapTerm(t, func(c Term) Term { return Lift(c, n) })
}
