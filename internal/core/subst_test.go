package core

import (
	"testing"

	"github.com/funvibe/tyck/internal/config"
)

func TestFreeVarsExcludesBinders(t *testing.T) {
	x, y, z := v("x"), v("y"), v("z")
	term := LamTerm{
		Param: Param{Var: x, Type: RefTerm{Var: z}, Explicit: true},
		Body:  AppTerm{Fn: RefTerm{Var: x}, Arg: Arg{Term: RefTerm{Var: y}, Explicit: true}},
	}
	free := FreeVars(term)
	if free.Contains(x) || !free.Contains(y) || !free.Contains(z) || free.Size() != 2 {
		t.Errorf("free vars of %s: %v", term, free)
	}
}

func TestRenameTeleRewritesLaterTypes(t *testing.T) {
	a, b := v("A"), v("x")
	tele := Telescope{
		{Var: a, Type: UnivTerm{}, Explicit: false},
		{Var: b, Type: RefTerm{Var: a}, Explicit: true},
	}
	renamed, s := RenameTele(tele)
	if renamed[0].Var == a || renamed[1].Var == b {
		t.Fatal("variables were not renamed")
	}
	if ref := renamed[1].Type.(RefTerm); ref.Var != renamed[0].Var {
		t.Errorf("second type refers to %s, want the renamed A", ref.Var.Name)
	}
	if s[a].(RefTerm).Var != renamed[0].Var {
		t.Error("substitution does not map old to new")
	}
}

func TestLiftRaisesUniverses(t *testing.T) {
	x := v("x")
	pi := PiTerm{Param: Param{Var: x, Type: UnivTerm{Lift: 0}, Explicit: true}, Body: UnivTerm{Lift: 2}}
	got := Lift(pi, 1).(PiTerm)
	if got.Param.Type.(UnivTerm).Lift != 1 || got.Body.(UnivTerm).Lift != 3 {
		t.Errorf("lift 1 of %s = %s", pi, got)
	}
}

func TestMetasInOrder(t *testing.T) {
	m1, m2 := &Meta{ID: 1, Name: "a"}, &Meta{ID: 2, Name: "b"}
	term := TupTerm{Items: []Term{MetaTerm{Meta: m2}, MetaTerm{Meta: m1}, MetaTerm{Meta: m2}}}
	got := Metas(term)
	if len(got) != 2 || got[0] != m2 || got[1] != m1 {
		t.Errorf("metas of %s = %v", term, got)
	}
}

func TestPrinting(t *testing.T) {
	config.IsTestMode = true
	defer func() { config.IsTestMode = false }()

	f := newNatFixture()
	natT := DataCall{Ref: f.nat}
	x, a := v("x"), v("A")
	m := &Meta{ID: 4, Name: "hole"}

	tests := []struct {
		term Term
		want string
	}{
		{PiTerm{Param: Param{Var: x, Type: natT, Explicit: true}, Body: natT}, "Nat -> Nat"},
		{PiTerm{Param: Param{Var: a, Type: UnivTerm{}, Explicit: false}, Body: RefTerm{Var: a}}, "Pi {A : Type 0} -> A"},
		{f.sucOf(f.sucOf(f.lit(0))), "suc (suc 0)"},
		{f.addCall(RefTerm{Var: x}, f.lit(1)), "add x 1"},
		{SigmaTerm{Params: Telescope{{Var: x, Type: natT, Explicit: true}, {Var: a, Type: natT, Explicit: true}}}, "Sig (x : Nat) ** Nat"},
		{ProjTerm{Tup: TupTerm{Items: []Term{natT, natT}}, Ix: 2}, "(Nat, Nat).2"},
		{MetaTerm{Meta: m}, "?hole"},
		{ErrorTerm{Desc: "oops"}, "<oops>"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}

	pat := CtorPat{Ref: f.suc, Params: []Pat{BindPat{Var: x, Type: natT, Explicit: true}}, Type: natT, Explicit: true}
	clause := Clause{Patterns: []Pat{pat, BindPat{Var: a, Type: natT, Explicit: false}}, Body: RefTerm{Var: x}}
	if got := clause.String(); got != "| suc x, {A} => x" {
		t.Errorf("clause printed as %q", got)
	}
}
