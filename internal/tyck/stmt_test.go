package tyck

import (
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/prelude"
)

// checkLib adds declarations to a fresh library and checks the whole program.
func checkLib(t *testing.T, extend func(l *prelude.Library)) (*prelude.Library, *StmtTycker, *diagnostics.CollectingReporter) {
	t.Helper()
	l := prelude.NewLibrary("test.tyck")
	if extend != nil {
		extend(l)
	}
	rep := &diagnostics.CollectingReporter{}
	st := NewStmtTycker(rep, nil, nil)
	st.CheckProgram(l.Program())
	return l, st, rep
}

func expectCodes(t *testing.T, rep *diagnostics.CollectingReporter, code diagnostics.ErrorCode, n int) []*diagnostics.DiagnosticError {
	t.Helper()
	got := rep.WithCode(code)
	if len(got) != n {
		t.Fatalf("got %d %s diagnostics, want %d; all: %v", len(got), code, n, rep.Sorted())
	}
	return got
}

func TestLibraryChecksCleanly(t *testing.T) {
	l, st, rep := checkLib(t, nil)
	if len(rep.Problems) != 0 {
		t.Fatalf("unexpected problems:\n%v", rep.Sorted())
	}
	for _, slot := range l.Builder.Table.Slots() {
		if !slot.IsChecked() {
			t.Errorf("%s was not filled", slot.Name)
		}
	}
	for _, v := range st.Verdicts() {
		if !v.Covered || !v.Confluent || len(v.Dominated) != 0 {
			t.Errorf("verdict of %s: %s", v.Fn.Name, spew.Sdump(v))
		}
	}
}

func TestLibraryDefinitionsCompute(t *testing.T) {
	l, _, _ := checkLib(t, nil)
	norm := core.NewNormalizer(nil, nil, 0)
	two := core.IntLitTerm{Value: 2}
	if shape, ok := core.RecognizeNat(l.Nat); ok {
		two.Shape, two.Type = shape, core.DataCall{Ref: l.Nat}
	} else {
		t.Fatalf("Nat is not recognized as Nat-shaped")
	}
	got := norm.Normalize(core.FnCall{Ref: l.Max, Args: []core.Arg{{Term: two, Explicit: true}, {Term: two, Explicit: true}}})
	if got.String() != "suc (suc 0)" {
		t.Errorf("max 2 2 = %s", got)
	}
}

func TestMissingCaseReportsSkeleton(t *testing.T) {
	_, st, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		y := b.Var("b")
		b.Fn("partial", 0).Signature(b.Ref(l.Nat), b.Param(b.Var("a"), b.Ref(l.Nat)), b.Param(b.Var("b"), b.Ref(l.Nat))).
			Clauses(b.Clause(b.Ref(y), b.PCtor(l.Zero), b.PVar(y)))
	})
	got := expectCodes(t, rep, diagnostics.ErrP001, 1)
	if want := "unhandled case: suc _, _"; got[0].Message != want {
		t.Errorf("message %q, want %q", got[0].Message, want)
	}
	verdicts := st.Verdicts()
	last := verdicts[len(verdicts)-1]
	if last.Fn.Name != "partial" || last.Covered {
		t.Errorf("last verdict %s", spew.Sdump(last))
	}
}

func TestDisagreeingClauses(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		y, x, p, q := b.Var("b"), b.Var("a"), b.Var("a"), b.Var("b")
		b.Fn("bad", 0).Signature(b.Ref(l.Nat), b.Param(b.Var("a"), b.Ref(l.Nat)), b.Param(b.Var("b"), b.Ref(l.Nat))).Clauses(
			b.Clause(b.Ref(y), b.PCtor(l.Zero), b.PVar(y)),
			b.Clause(b.App(b.Ref(l.Suc), b.Ref(x)), b.PVar(x), b.PCtor(l.Zero)),
			b.Clause(b.Ref(p), b.PCtor(l.Suc, b.PVar(p)), b.PCtor(l.Suc, b.PVar(q))),
		)
	})
	expectCodes(t, rep, diagnostics.ErrP002, 1)
}

func TestMissingStructField(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		st := b.Struct("Two", nil)
		a := st.Field("a", b.Ref(l.Nat), nil)
		st.Field("b", b.Ref(l.Nat), nil)
		b.Fn("half", 0).Signature(b.Ref(st.Ref())).Body(b.New(b.Ref(st.Ref()), b.Assign(a, b.Lit(0))))
	})
	got := expectCodes(t, rep, diagnostics.ErrT004, 1)
	if want := "field error: missing fields: b"; got[0].Message != want {
		t.Errorf("message %q, want %q", got[0].Message, want)
	}
}

func TestStructDefaultUsesEarlierField(t *testing.T) {
	l, _, rep := checkLib(t, nil)
	if len(rep.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", rep.Problems)
	}
	origin := l.Origin.Core().(*core.FnDef)
	n, ok := origin.Body.(core.NewTerm)
	if !ok || len(n.Fields) != 2 {
		t.Fatalf("origin body %s", origin.Body)
	}
	if got := n.Fields[1].Value.String(); got != "0" {
		t.Errorf("default y = %s, want 0", got)
	}
}

func TestUnknownImplicitName(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		b.Fn("named", 0).Signature(b.Ref(l.Nat)).Body(b.App(b.AppNamed(b.Ref(l.ID), "B", b.Ref(l.Nat)), b.Lit(0)))
	})
	got := expectCodes(t, rep, diagnostics.ErrT003, 1)
	if !strings.Contains(got[0].Message, "no implicit parameter named B") {
		t.Errorf("message %q", got[0].Message)
	}
}

func TestImplicitArgumentByName(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		b.Fn("named", 0).Signature(b.Ref(l.Nat)).Body(b.App(b.AppNamed(b.Ref(l.ID), "A", b.Ref(l.Nat)), b.Lit(0)))
	})
	if len(rep.Problems) != 0 {
		t.Fatalf("unexpected problems: %v", rep.Sorted())
	}
}

func TestConstructorAboveDataLevel(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		a := b.Var("A")
		box := b.Data("Box", b.Univ(0), b.Param(a, b.Univ(1)))
		box.Ctor("box", b.Param(b.Var("x"), b.Univ(0)))
	})
	expectCodes(t, rep, diagnostics.ErrT005, 1)
}

func TestUniverseDoesNotContainItself(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		b.Fn("typeInType", 0).Signature(b.Univ(0)).Body(b.Univ(0))
	})
	expectCodes(t, rep, diagnostics.ErrT005, 1)
}

func TestLambdaAnnotationMustMatch(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		x := b.Var("x")
		b.Fn("annotated", 0).Signature(b.Arrow(b.Ref(l.Nat), b.Ref(l.Nat))).
			Body(b.Lam(b.Param(x, b.Ref(l.Empty)), b.Lit(0)))
	})
	got := expectCodes(t, rep, diagnostics.ErrT002, 1)
	if !strings.Contains(got[0].Message, "lambda parameter x") {
		t.Errorf("message %q", got[0].Message)
	}
}

func TestGoalIsReported(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		n := b.Var("n")
		b.Fn("todo", 0).Signature(b.Ref(l.Nat), b.Param(n, b.Ref(l.Nat))).Body(b.Goal(nil))
	})
	got := expectCodes(t, rep, diagnostics.ErrG001, 1)
	if !strings.Contains(got[0].Message, ": Nat") || !strings.Contains(got[0].Hint, "n : Nat") {
		t.Errorf("goal %q with hint %q", got[0].Message, got[0].Hint)
	}
	if got[0].IsError() {
		t.Errorf("goals are not errors")
	}
	expectCodes(t, rep, diagnostics.ErrT006, 0)
	if rep.HasErrors() {
		t.Errorf("unexpected errors: %v", rep.Sorted())
	}
}

func TestHiddenGoalIsUnsolved(t *testing.T) {
	l := prelude.NewLibrary("test.tyck")
	b := l.Builder
	b.Fn("todo", 0).Signature(b.Ref(l.Nat)).Body(b.Goal(nil))
	cfg := config.DefaultConfig()
	hide := false
	cfg.ShowGoals = &hide
	rep := &diagnostics.CollectingReporter{}
	NewStmtTycker(rep, cfg, nil).CheckProgram(l.Program())
	expectCodes(t, rep, diagnostics.ErrG001, 0)
	expectCodes(t, rep, diagnostics.ErrT006, 1)
}

func TestUnsolvedHoleIsReported(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		b.Fn("vague", 0).Signature(b.Ref(l.Nat)).Body(b.App(b.Ref(l.ID), b.Hole()))
	})
	expectCodes(t, rep, diagnostics.ErrT006, 1)
}

func TestFatalErrorSkipsOnlyItsDeclaration(t *testing.T) {
	var after *core.DefVar
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		stray := b.Var("stray")
		b.Fn("broken", 0).Signature(b.Ref(l.Nat)).Body(b.Ref(stray))
		after = b.Fn("fine", 0).Signature(b.Ref(l.Nat)).Body(b.Lit(3)).Ref()
	})
	got := expectCodes(t, rep, diagnostics.ErrR001, 1)
	if !strings.Contains(got[0].Hint, "def broken") {
		t.Errorf("hint %q", got[0].Hint)
	}
	if !after.IsChecked() {
		t.Errorf("fine was not checked")
	}
}

func TestReferenceToFailedHeaderIsFatal(t *testing.T) {
	var user *core.DefVar
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		stray := b.Var("stray")
		failed := b.Fn("failed", 0).Signature(b.Ref(stray)).Body(b.Lit(0)).Ref()
		user = b.Fn("user", 0).Signature(b.Ref(l.Nat)).Body(b.Ref(failed)).Ref()
	})
	expectCodes(t, rep, diagnostics.ErrR001, 2)
	if user.IsChecked() {
		t.Errorf("user should not be checked")
	}
}

func TestBadPatterns(t *testing.T) {
	tests := []struct {
		name string
		code diagnostics.ErrorCode
		pats func(l *prelude.Library) []ast.Pattern
	}{
		{"too many", diagnostics.ErrT009, func(l *prelude.Library) []ast.Pattern {
			return []ast.Pattern{l.Builder.PAny(), l.Builder.PAny()}
		}},
		{"too few", diagnostics.ErrT009, func(l *prelude.Library) []ast.Pattern { return nil }},
		{"implicit on explicit", diagnostics.ErrT003, func(l *prelude.Library) []ast.Pattern {
			return []ast.Pattern{l.Builder.PImplicit(l.Builder.Var("n"))}
		}},
		{"literal of non-Nat", diagnostics.ErrT008, func(l *prelude.Library) []ast.Pattern {
			return []ast.Pattern{l.Builder.PTup(l.Builder.PLit(1))}
		}},
		{"absurd on inhabited", diagnostics.ErrP004, func(l *prelude.Library) []ast.Pattern {
			return []ast.Pattern{l.Builder.PAbsurd()}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, rep := checkLib(t, func(l *prelude.Library) {
				b := l.Builder
				ty := b.Ref(l.Nat)
				if tt.code == diagnostics.ErrT008 {
					ty = b.Sigma(b.Param(b.Var("u"), b.Univ(0)))
				}
				b.Fn("f", 0).Signature(b.Ref(l.Nat), b.Param(b.Var("n"), ty)).
					Clauses(b.Clause(b.Lit(0), tt.pats(l)...))
			})
			expectCodes(t, rep, tt.code, 1)
			expectCodes(t, rep, diagnostics.ErrP001, 0)
		})
	}
}

func TestConfluenceOnlyForOverlapWhenConfigured(t *testing.T) {
	l := prelude.NewLibrary("test.tyck")
	b := l.Builder
	y, x, p := b.Var("b"), b.Var("a"), b.Var("a")
	b.Fn("bad", 0).Signature(b.Ref(l.Nat), b.Param(b.Var("a"), b.Ref(l.Nat)), b.Param(b.Var("b"), b.Ref(l.Nat))).Clauses(
		b.Clause(b.Ref(y), b.PCtor(l.Zero), b.PVar(y)),
		b.Clause(b.App(b.Ref(l.Suc), b.Ref(x)), b.PVar(x), b.PCtor(l.Zero)),
		b.Clause(b.Ref(p), b.PCtor(l.Suc, b.PVar(p)), b.PCtor(l.Suc, b.PAny())),
	)
	cfg := config.DefaultConfig()
	cfg.Confluence = "overlap"
	rep := &diagnostics.CollectingReporter{}
	NewStmtTycker(rep, cfg, nil).CheckProgram(l.Program())
	expectCodes(t, rep, diagnostics.ErrP002, 0)
}
