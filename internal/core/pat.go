package core

import (
	"fmt"

	"github.com/funvibe/tyck/internal/source"
)

// Pat is a checked pattern. The set of implementations is closed.
type Pat interface {
	fmt.Stringer
	IsExplicit() bool
	isPat()
}

// BindPat captures the scrutinee in a fresh variable.
type BindPat struct {
	Var      *LocalVar
	Type     Term
	Explicit bool
}

type CtorPat struct {
	Ref      *DefVar
	Params   []Pat
	Type     DataCall
	Explicit bool
}

type TuplePat struct {
	Pats     []Pat
	Type     Term
	Explicit bool
}

// ShapedIntPat is an integer literal of a Nat-shaped type; it stands for the
// constructor chain suc^Value(zero).
type ShapedIntPat struct {
	Value    int
	Shape    NatShape
	Type     DataCall
	Explicit bool
}

// MetaPatSlot is a placeholder pattern awaiting refinement. Until Solution is
// set it behaves as a bind of FakeBind.
type MetaPatSlot struct {
	FakeBind *LocalVar
	Type     Term
	Solution Pat
}

type MetaPat struct {
	Slot     *MetaPatSlot
	Explicit bool
}

// AbsurdPat marks a position whose type has no inhabitants.
type AbsurdPat struct {
	Type     Term
	Explicit bool
}

func (p BindPat) IsExplicit() bool      { return p.Explicit }
func (p CtorPat) IsExplicit() bool      { return p.Explicit }
func (p TuplePat) IsExplicit() bool     { return p.Explicit }
func (p ShapedIntPat) IsExplicit() bool { return p.Explicit }
func (p MetaPat) IsExplicit() bool      { return p.Explicit }
func (p AbsurdPat) IsExplicit() bool    { return p.Explicit }

func (BindPat) isPat()      {}
func (CtorPat) isPat()      {}
func (TuplePat) isPat()     {}
func (ShapedIntPat) isPat() {}
func (MetaPat) isPat()      {}
func (AbsurdPat) isPat()    {}

// Clause is a checked clause. A nil Body marks an absurd clause.
type Clause struct {
	Pos      source.Pos
	Patterns []Pat
	Body     Term
}

func (c Clause) IsAbsurd() bool { return c.Body == nil }

// ConstructorForm rewrites a shaped literal into one constructor step.
func (p ShapedIntPat) ConstructorForm() CtorPat {
	if p.Value == 0 {
		return CtorPat{Ref: p.Shape.Zero, Type: p.Type, Explicit: p.Explicit}
	}
	pred := ShapedIntPat{Value: p.Value - 1, Shape: p.Shape, Type: p.Type, Explicit: true}
	return CtorPat{Ref: p.Shape.Suc, Params: []Pat{pred}, Type: p.Type, Explicit: p.Explicit}
}

// Inline replaces solved meta patterns by their solution and unsolved ones by
// binds of their placeholder variable.
func Inline(p Pat) Pat {
	switch p := p.(type) {
	case MetaPat:
		if p.Slot.Solution != nil {
			return Inline(p.Slot.Solution)
		}
		return BindPat{Var: p.Slot.FakeBind, Type: p.Slot.Type, Explicit: p.Explicit}
	case CtorPat:
		return CtorPat{Ref: p.Ref, Params: InlineAll(p.Params), Type: p.Type, Explicit: p.Explicit}
	case TuplePat:
		return TuplePat{Pats: InlineAll(p.Pats), Type: p.Type, Explicit: p.Explicit}
	}
	return p
}

func InlineAll(pats []Pat) []Pat {
	out := make([]Pat, len(pats))
	for i, p := range pats {
		out[i] = Inline(p)
	}
	return out
}

// PatToTerm is the term a pattern matches.
func PatToTerm(p Pat) Term {
	switch p := p.(type) {
	case BindPat:
		return RefTerm{Var: p.Var}
	case MetaPat:
		if p.Slot.Solution != nil {
			return PatToTerm(p.Slot.Solution)
		}
		return RefTerm{Var: p.Slot.FakeBind}
	case CtorPat:
		return ConCall{Ref: p.Ref, DataRef: p.Type.Ref, DataArgs: implicitArgs(p.Type.Args), Args: patArgs(p.Params)}
	case TuplePat:
		items := make([]Term, len(p.Pats))
		for i, sub := range p.Pats {
			items[i] = PatToTerm(sub)
		}
		return TupTerm{Items: items}
	case ShapedIntPat:
		return IntLitTerm{Value: p.Value, Shape: p.Shape, Type: p.Type}
	case AbsurdPat:
		return ErrorTerm{Desc: "()"}
	}
	panic(fmt.Sprintf("unknown pattern %T", p))
}

func patArgs(pats []Pat) []Arg {
	out := make([]Arg, len(pats))
	for i, p := range pats {
		out[i] = Arg{Term: PatToTerm(p), Explicit: p.IsExplicit()}
	}
	return out
}

func implicitArgs(args []Arg) []Arg {
	out := make([]Arg, len(args))
	for i, a := range args {
		out[i] = Arg{Term: a.Term, Explicit: false}
	}
	return out
}

// PatBindings lists the variables a pattern binds, with their types, left to right.
func PatBindings(p Pat) Telescope {
	var out Telescope
	var walk func(Pat)
	walk = func(p Pat) {
		switch p := p.(type) {
		case BindPat:
			out = append(out, Param{Var: p.Var, Type: p.Type, Explicit: p.Explicit})
		case MetaPat:
			if p.Slot.Solution != nil {
				walk(p.Slot.Solution)
			} else {
				out = append(out, Param{Var: p.Slot.FakeBind, Type: p.Slot.Type, Explicit: p.Explicit})
			}
		case CtorPat:
			for _, sub := range p.Params {
				walk(sub)
			}
		case TuplePat:
			for _, sub := range p.Pats {
				walk(sub)
			}
		}
	}
	walk(p)
	return out
}
