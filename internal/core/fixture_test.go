package core

import "github.com/funvibe/tyck/internal/source"

// natFixture holds a hand-built Nat with an overlapping add.
type natFixture struct {
	table *DefTable
	nat   *DefVar
	zero  *DefVar
	suc   *DefVar
	add   *DefVar
	shape NatShape
}

func newNatFixture() *natFixture {
	f := &natFixture{table: &DefTable{}}
	f.nat = f.table.Declare("Nat", KindData, nil)
	f.zero = f.table.DeclareMember(f.nat, "zero", KindCtor, nil)
	f.suc = f.table.DeclareMember(f.nat, "suc", KindCtor, nil)
	natT := DataCall{Ref: f.nat}

	zeroDef := &CtorDef{Var: f.zero, DataRef: f.nat, Result: natT}
	sucDef := &CtorDef{Var: f.suc, DataRef: f.nat, SelfTele: Telescope{{Var: v("n"), Type: natT, Explicit: true}}, Result: natT}
	f.nat.Fill(&DataDef{Var: f.nat, Result: UnivTerm{}, Ctors: []*CtorDef{zeroDef, sucDef}})
	f.zero.Fill(zeroDef)
	f.suc.Fill(sucDef)
	f.shape, _ = RecognizeNat(f.nat)

	f.add = f.table.Declare("add", KindFn, nil)
	a, b := v("a"), v("b")
	tele := Telescope{{Var: a, Type: natT, Explicit: true}, {Var: b, Type: natT, Explicit: true}}
	clause := func(p, q Pat, body Term) Clause { return Clause{Patterns: []Pat{p, q}, Body: body} }
	bind := func(x *LocalVar) Pat { return BindPat{Var: x, Type: natT, Explicit: true} }
	sucP := func(x *LocalVar) Pat {
		return CtorPat{Ref: f.suc, Params: []Pat{bind(x)}, Type: natT, Explicit: true}
	}
	zeroP := CtorPat{Ref: f.zero, Type: natT, Explicit: true}
	a1, b1, a2, b2, a3, b3 := v("a"), v("b"), v("a"), v("b"), v("a"), v("b")
	recur := func(x, y *LocalVar) Term {
		return f.sucOf(FnCall{Ref: f.add, Args: []Arg{{Term: RefTerm{Var: x}, Explicit: true}, {Term: RefTerm{Var: y}, Explicit: true}}})
	}
	f.add.Fill(&FnDef{
		Var: f.add, Tele: tele, Result: natT, Modifiers: ModOverlap,
		Clauses: []Clause{
			clause(zeroP, bind(b1), RefTerm{Var: b1}),
			clause(bind(a1), zeroP, RefTerm{Var: a1}),
			clause(sucP(a2), bind(b2), recur(a2, b2)),
			clause(bind(a3), sucP(b3), recur(a3, b3)),
		},
	})
	return f
}

func v(name string) *LocalVar { return NewLocalVar(name, source.None) }

func (f *natFixture) sucOf(t Term) Term {
	return ConCall{Ref: f.suc, DataRef: f.nat, Args: []Arg{{Term: t, Explicit: true}}}
}

func (f *natFixture) lit(n int) Term {
	return IntLitTerm{Value: n, Shape: f.shape, Type: DataCall{Ref: f.nat}}
}

func (f *natFixture) addCall(x, y Term) Term {
	return FnCall{Ref: f.add, Args: []Arg{{Term: x, Explicit: true}, {Term: y, Explicit: true}}}
}

// toInt reads a closed numeral built from literals and constructors.
func toInt(t Term) (int, bool) {
	switch t := t.(type) {
	case IntLitTerm:
		return t.Value, true
	case ConCall:
		if len(t.Args) == 0 {
			return 0, true
		}
		n, ok := toInt(t.Args[0].Term)
		return n + 1, ok
	}
	return 0, false
}
