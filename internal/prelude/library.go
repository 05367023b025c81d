package prelude

import (
	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
)

// Library is the standard set of declarations, with handles on the slots
// callers usually need.
type Library struct {
	Builder *Builder

	Interval, Left, Right, Min *core.DefVar

	Nat, Zero, Suc *core.DefVar
	Add, Max, Pred *core.DefVar
	Even, Odd      *core.DefVar

	Empty, Absurd *core.DefVar
	Swap, Fst, ID *core.DefVar

	Point, X, Y *core.DefVar
	Origin      *core.DefVar
}

// Program returns the library as a resolved program.
func (l *Library) Program() *ast.Program { return l.Builder.Program() }

// NewLibrary builds the standard declarations into a fresh builder. More
// declarations may be added to l.Builder afterwards.
func NewLibrary(file string) *Library {
	b := NewBuilder(file)
	l := &Library{Builder: b}

	l.Interval = b.Prim(config.PrimIntervalName)
	l.Left = b.Prim(config.PrimLeftName)
	l.Right = b.Prim(config.PrimRightName)
	l.Min = b.Prim(config.PrimMinName)
	b.Prim(config.PrimMaxName)
	b.Prim(config.PrimInvName)

	nat := b.Data("Nat", nil)
	l.Nat = nat.Ref()
	l.Zero = nat.Ctor("zero")
	l.Suc = nat.Ctor("suc", b.Param(b.Var("n"), b.Ref(l.Nat)))

	l.Add = l.binaryNat("add", core.ModOverlap, func(self *core.DefVar, a, b2 func() *core.LocalVar) []*ast.Clause {
		x, y, p, q, r, u := a(), b2(), a(), a(), b2(), b2()
		return []*ast.Clause{
			b.Clause(b.Ref(y), b.PCtor(l.Zero), b.PVar(y)),
			b.Clause(b.Ref(x), b.PVar(x), b.PCtor(l.Zero)),
			b.Clause(b.App(b.Ref(l.Suc), b.App(b.Ref(self), b.Ref(p), b.Ref(r))), b.PCtor(l.Suc, b.PVar(p)), b.PVar(r)),
			b.Clause(b.App(b.Ref(l.Suc), b.App(b.Ref(self), b.Ref(q), b.Ref(u))), b.PVar(q), b.PCtor(l.Suc, b.PVar(u))),
		}
	})
	l.Max = l.binaryNat("max", 0, func(self *core.DefVar, a, b2 func() *core.LocalVar) []*ast.Clause {
		x, y, p, q := a(), b2(), a(), b2()
		return []*ast.Clause{
			b.Clause(b.Ref(y), b.PCtor(l.Zero), b.PVar(y)),
			b.Clause(b.Ref(x), b.PVar(x), b.PCtor(l.Zero)),
			b.Clause(b.App(b.Ref(l.Suc), b.App(b.Ref(self), b.Ref(p), b.Ref(q))), b.PCtor(l.Suc, b.PVar(p)), b.PCtor(l.Suc, b.PVar(q))),
		}
	})

	m := b.Var("m")
	l.Pred = b.Fn("pred", 0).Signature(b.Ref(l.Nat), b.Param(b.Var("n"), b.Ref(l.Nat))).Clauses(
		b.Clause(b.Lit(0), b.PLit(0)),
		b.Clause(b.Ref(m), b.PCtor(l.Suc, b.PVar(m))),
	).Ref()

	even := b.Fn("even", 0)
	odd := b.Fn("odd", 0)
	l.Even, l.Odd = even.Ref(), odd.Ref()
	for _, f := range []struct {
		fn    *FnBuilder
		base  int
		other *core.DefVar
	}{{even, 1, l.Odd}, {odd, 0, l.Even}} {
		k := b.Var("k")
		f.fn.Signature(b.Ref(l.Nat), b.Param(b.Var("n"), b.Ref(l.Nat))).Clauses(
			b.Clause(b.Lit(f.base), b.PCtor(l.Zero)),
			b.Clause(b.App(b.Ref(f.other), b.Ref(k)), b.PCtor(l.Suc, b.PVar(k))),
		)
	}

	l.Empty = b.Data("Empty", nil).Ref()
	tyA := b.Var("A")
	l.Absurd = b.Fn("absurd", 0).Signature(b.Ref(tyA),
		b.Implicit(tyA, b.Univ(0)), b.Param(b.Var("x"), b.Ref(l.Empty)),
	).Clauses(b.Clause(nil, b.PAbsurd())).Ref()

	fstV, sndV := b.Var("a"), b.Var("b")
	l.Swap = b.Fn("swap", 0).Signature(b.Pair(b.Ref(l.Nat), b.Ref(l.Nat)),
		b.Param(b.Var("p"), b.Pair(b.Ref(l.Nat), b.Ref(l.Nat))),
	).Clauses(b.Clause(b.Tup(b.Ref(sndV), b.Ref(fstV)), b.PTup(b.PVar(fstV), b.PVar(sndV)))).Ref()

	tA, tB, p := b.Var("A"), b.Var("B"), b.Var("p")
	l.Fst = b.Fn("fst", 0).Signature(b.Ref(tA),
		b.Implicit(tA, b.Univ(0)), b.Implicit(tB, b.Univ(0)), b.Param(p, b.Pair(b.Ref(tA), b.Ref(tB))),
	).Body(b.Proj(b.Ref(p), 1)).Ref()

	iA, ia := b.Var("A"), b.Var("a")
	l.ID = b.Fn("id", 0).Signature(b.Ref(iA), b.Implicit(iA, b.Univ(0)), b.Param(ia, b.Ref(iA))).Body(b.Ref(ia)).Ref()

	point := b.Struct("Point", nil)
	l.Point = point.Ref()
	l.X = point.Field("x", b.Ref(l.Nat), nil)
	l.Y = point.Field("y", b.Ref(l.Nat), b.Ref(l.X))
	l.Origin = b.Fn("origin", 0).Signature(b.Ref(l.Point)).Body(b.New(b.Ref(l.Point), b.Assign(l.X, b.Lit(0)))).Ref()
	b.Fn("originY", 0).Signature(b.Ref(l.Nat)).Body(b.Access(b.Ref(l.Origin), l.Y))

	b.Fn("two", 0).Signature(b.Ref(l.Nat)).Body(b.App(b.Ref(l.Add), b.Lit(1), b.Lit(1)))
	x := b.Var("x")
	b.Fn("idNat", 0).Signature(b.Arrow(b.Ref(l.Nat), b.Ref(l.Nat))).Body(b.Fun(x, b.App(b.Ref(l.ID), b.Ref(x))))
	b.Fn("NatType", 0).Signature(b.Univ(1)).Body(b.Ref(l.Nat))
	b.Fn("minEnd", 0).Signature(b.Ref(l.Interval)).Body(b.App(b.Ref(l.Min), b.Ref(l.Left), b.Ref(l.Right)))
	return l
}

// binaryNat declares a function Nat -> Nat -> Nat defined by clauses. mk
// receives the function's slot and two binder supplies.
func (l *Library) binaryNat(name string, mods core.Modifier, mk func(self *core.DefVar, a, b func() *core.LocalVar) []*ast.Clause) *core.DefVar {
	b := l.Builder
	fn := b.Fn(name, mods)
	fn.Signature(b.Ref(l.Nat), b.Param(b.Var("a"), b.Ref(l.Nat)), b.Param(b.Var("b"), b.Ref(l.Nat)))
	fn.Clauses(mk(fn.Ref(), func() *core.LocalVar { return b.Var("a") }, func() *core.LocalVar { return b.Var("b") })...)
	return fn.Ref()
}
