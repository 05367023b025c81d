package core

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func TestAddReducesOnLiterals(t *testing.T) {
	f := newNatFixture()
	n := NewNormalizer(nil, nil, 0)

	tests := []struct {
		x, y, want int
	}{
		{0, 0, 0},
		{2, 0, 2},
		{0, 3, 3},
		{2, 1, 3},
		{1, 4, 5},
	}
	for _, tt := range tests {
		got := n.Normalize(f.addCall(f.lit(tt.x), f.lit(tt.y)))
		if v, ok := toInt(got); !ok || v != tt.want {
			t.Errorf("add %d %d = %s, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestOverlapSkipsStuckClauses(t *testing.T) {
	f := newNatFixture()
	n := NewNormalizer(nil, nil, 0)
	x := v("x")

	got := n.Whnf(f.addCall(RefTerm{Var: x}, f.lit(0)))
	if ref, ok := got.(RefTerm); !ok || ref.Var != x {
		t.Fatalf("add x 0 = %s, want x", got)
	}

	got = n.Whnf(f.addCall(RefTerm{Var: x}, f.lit(1)))
	if _, ok := got.(ConCall); !ok {
		t.Fatalf("add x 1 = %s, want a constructor", got)
	}
}

func TestClausesWithoutOverlapGetStuck(t *testing.T) {
	f := newNatFixture()
	pred := f.table.Declare("pred", KindFn, nil)
	natT := DataCall{Ref: f.nat}
	m := v("m")
	pred.Fill(&FnDef{
		Var:    pred,
		Tele:   Telescope{{Var: v("n"), Type: natT, Explicit: true}},
		Result: natT,
		Clauses: []Clause{
			{Patterns: []Pat{CtorPat{Ref: f.zero, Type: natT, Explicit: true}}, Body: f.lit(0)},
			{Patterns: []Pat{CtorPat{Ref: f.suc, Params: []Pat{BindPat{Var: m, Type: natT, Explicit: true}}, Type: natT, Explicit: true}}, Body: RefTerm{Var: m}},
		},
	})
	n := NewNormalizer(nil, nil, 0)
	stuck := FnCall{Ref: pred, Args: []Arg{{Term: RefTerm{Var: v("x")}, Explicit: true}}}
	if _, ok := n.Whnf(stuck).(FnCall); !ok {
		t.Errorf("pred x should be stuck, got %s", n.Whnf(stuck))
	}
	got := n.Whnf(FnCall{Ref: pred, Args: []Arg{{Term: f.lit(3), Explicit: true}}})
	if v, ok := toInt(got); !ok || v != 2 {
		t.Errorf("pred 3 = %s, want 2", got)
	}
}

func TestMismatchWinsOverStuck(t *testing.T) {
	f := newNatFixture()
	natT := DataCall{Ref: f.nat}
	zeroP := CtorPat{Ref: f.zero, Type: natT, Explicit: true}
	m := NewMatcher(NewNormalizer(nil, nil, 0).Whnf)

	args := []Arg{{Term: RefTerm{Var: v("x")}, Explicit: true}, {Term: f.lit(1), Explicit: true}}
	if got := m.MatchMany([]Pat{zeroP, zeroP}, args); got != Mismatch {
		t.Errorf("got %s, want mismatch", got)
	}
	args[1] = Arg{Term: f.lit(0), Explicit: true}
	if got := m.MatchMany([]Pat{zeroP, zeroP}, args); got != Stuck {
		t.Errorf("got %s, want stuck", got)
	}
}

func TestTuplePatternAgainstShorterTuple(t *testing.T) {
	f := newNatFixture()
	natT := DataCall{Ref: f.nat}
	x, y := v("x"), v("y")
	pair := TuplePat{Pats: []Pat{BindPat{Var: x, Type: natT, Explicit: true}, BindPat{Var: y, Type: natT, Explicit: true}}, Explicit: true}
	m := NewMatcher(NewNormalizer(nil, nil, 0).Whnf)

	if got := m.Match(pair, TupTerm{Items: []Term{f.lit(1)}}); got != Mismatch {
		t.Errorf("got %s, want mismatch", got)
	}
	if got := m.Match(pair, TupTerm{Items: []Term{f.lit(1), f.lit(2)}}); got != Matched {
		t.Errorf("got %s, want matched; subst %s", got, spew.Sdump(m.Subst))
	}
}

func TestUnfoldLimitStopsLoops(t *testing.T) {
	f := newNatFixture()
	loop := f.table.Declare("loop", KindFn, nil)
	x := v("x")
	natT := DataCall{Ref: f.nat}
	loop.Fill(&FnDef{
		Var:    loop,
		Tele:   Telescope{{Var: x, Type: natT, Explicit: true}},
		Result: natT,
		Body:   FnCall{Ref: loop, Args: []Arg{{Term: RefTerm{Var: x}, Explicit: true}}},
	})
	n := NewNormalizer(nil, nil, 16)
	got := n.Whnf(FnCall{Ref: loop, Args: []Arg{{Term: f.lit(0), Explicit: true}}})
	if call, ok := got.(FnCall); !ok || call.Ref != loop {
		t.Errorf("loop 0 = %s, want a residual call", got)
	}
	if n.depth != 0 {
		t.Errorf("depth not restored: %d", n.depth)
	}
}

func TestOverlayIsPreferred(t *testing.T) {
	f := newNatFixture()
	id := f.table.Declare("id", KindFn, nil)
	x := v("x")
	natT := DataCall{Ref: f.nat}
	n := NewNormalizer(nil, nil, 0)
	n.Overlay = map[*DefVar]Def{id: &FnDef{Var: id, Tele: Telescope{{Var: x, Type: natT, Explicit: true}}, Result: natT, Body: RefTerm{Var: x}}}

	got := n.Whnf(FnCall{Ref: id, Args: []Arg{{Term: f.lit(7), Explicit: true}}})
	if v, ok := toInt(got); !ok || v != 7 {
		t.Errorf("id 7 = %s", got)
	}
}

func TestBetaAndProjection(t *testing.T) {
	x, y := v("x"), v("y")
	n := NewNormalizer(nil, nil, 0)
	lam := LamTerm{Param: Param{Var: x, Type: UnivTerm{}, Explicit: true}, Body: TupTerm{Items: []Term{RefTerm{Var: x}, UnivTerm{Lift: 1}}}}
	app := AppTerm{Fn: lam, Arg: Arg{Term: RefTerm{Var: y}, Explicit: true}}

	got := n.Whnf(ProjTerm{Tup: app, Ix: 1})
	if ref, ok := got.(RefTerm); !ok || ref.Var != y {
		t.Errorf("got %s, want y", got)
	}
	got = n.Whnf(ProjTerm{Tup: app, Ix: 2})
	if u, ok := got.(UnivTerm); !ok || u.Lift != 1 {
		t.Errorf("got %s, want Type 1", got)
	}
}

func TestAccessOfStructLiteral(t *testing.T) {
	table := &DefTable{}
	s := table.Declare("Point", KindStruct, nil)
	fx := table.DeclareMember(s, "x", KindField, nil)
	lit := NewTerm{Struct: StructCall{Ref: s}, Fields: []FieldValue{{Field: fx, Value: UnivTerm{Lift: 3}}}}
	n := NewNormalizer(nil, nil, 0)
	got := n.Whnf(AccessTerm{Of: lit, Field: fx})
	if u, ok := got.(UnivTerm); !ok || u.Lift != 3 {
		t.Errorf("got %s", spew.Sdump(got))
	}
}

type fixedSolutions map[*Meta]Term

func (s fixedSolutions) Solution(m *Meta) (Term, bool) {
	t, ok := s[m]
	return t, ok
}

func TestSolvedMetaInstantiates(t *testing.T) {
	a, b := v("a"), v("b")
	m := &Meta{ID: 1, Name: "m", ContextTele: Telescope{{Var: a, Type: UnivTerm{}, Explicit: true}}}
	m.Telescope = Telescope{{Var: b, Type: UnivTerm{}, Explicit: true}}
	sol := TupTerm{Items: []Term{RefTerm{Var: b}, RefTerm{Var: a}}}

	p, q := v("p"), v("q")
	term := MetaTerm{Meta: m, ContextArgs: []Arg{{Term: RefTerm{Var: p}, Explicit: true}}, Args: []Arg{{Term: RefTerm{Var: q}, Explicit: true}}}
	n := NewNormalizer(fixedSolutions{m: sol}, nil, 0)
	got, ok := n.Whnf(term).(TupTerm)
	if !ok {
		t.Fatalf("got %s", n.Whnf(term))
	}
	if got.Items[0].(RefTerm).Var != q || got.Items[1].(RefTerm).Var != p {
		t.Errorf("got %s, want (q, p)", got)
	}
}

func TestIntervalPrimitives(t *testing.T) {
	table := &DefTable{}
	prims := NewPrimFactory()
	decl := func(name string) *PrimDef {
		def, err := prims.Create(table.Declare(name, KindPrim, nil))
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		return def
	}
	if _, err := prims.Create(table.Declare("left", KindPrim, nil)); err == nil {
		t.Fatal("left before I should fail")
	}
	decl("I")
	left, right := decl("left"), decl("right")
	minD, maxD, inv := decl("intervalMin"), decl("intervalMax"), decl("intervalInv")

	n := NewNormalizer(nil, prims, 0)
	l := PrimCall{Ref: left.Var}
	r := PrimCall{Ref: right.Var}
	i := RefTerm{Var: v("i")}
	apply := func(d *PrimDef, args ...Term) Term {
		out := PrimCall{Ref: d.Var}
		for _, a := range args {
			out.Args = append(out.Args, Arg{Term: a, Explicit: true})
		}
		return out
	}

	tests := []struct {
		name string
		term Term
		want string
	}{
		{"inv left", apply(inv, l), "right"},
		{"inv inv", apply(inv, apply(inv, i)), "i"},
		{"min left", apply(minD, i, l), "left"},
		{"min right", apply(minD, r, i), "i"},
		{"max right", apply(maxD, i, r), "right"},
		{"max left", apply(maxD, l, i), "i"},
		{"stuck", apply(minD, i, i), "intervalMin i i"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Whnf(tt.term).String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
