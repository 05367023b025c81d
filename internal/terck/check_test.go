package terck

import (
	"strings"
	"testing"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/prelude"
	"github.com/funvibe/tyck/internal/tyck"
)

// checkLib elaborates the library plus extra declarations, then checks
// termination.
func checkLib(t *testing.T, extend func(l *prelude.Library)) (*prelude.Library, map[*core.DefVar]bool, *diagnostics.CollectingReporter) {
	t.Helper()
	l := prelude.NewLibrary("terck.tyck")
	if extend != nil {
		extend(l)
	}
	rep := &diagnostics.CollectingReporter{}
	defs := tyck.NewStmtTycker(rep, nil, nil).CheckProgram(l.Program())
	if rep.HasErrors() {
		t.Fatalf("elaboration failed:\n%v", rep.Sorted())
	}
	verdicts := make(map[*core.DefVar]bool)
	for _, v := range Check(defs, rep) {
		verdicts[v.Fn] = v.Terminates
	}
	return l, verdicts, rep
}

func TestLibraryTerminates(t *testing.T) {
	l, verdicts, rep := checkLib(t, nil)
	if n := len(rep.WithCode(diagnostics.ErrN001)); n != 0 {
		t.Fatalf("unexpected termination errors:\n%v", rep.Sorted())
	}
	for _, fn := range []*core.DefVar{l.Add, l.Max, l.Even, l.Odd, l.Pred} {
		if terminates, ok := verdicts[fn]; !ok || !terminates {
			t.Errorf("%s: terminates = %v, present = %v", fn.Name, terminates, ok)
		}
	}
}

func TestSelfLoopIsReported(t *testing.T) {
	var loop *core.DefVar
	_, verdicts, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		n := b.Var("n")
		f := b.Fn("loop", 0)
		loop = f.Ref()
		f.Signature(b.Ref(l.Nat), b.Param(n, b.Ref(l.Nat))).Body(b.App(b.Ref(loop), b.Ref(n)))
	})
	errs := rep.WithCode(diagnostics.ErrN001)
	if len(errs) != 1 {
		t.Fatalf("got %d N001, want 1:\n%v", len(errs), rep.Sorted())
	}
	if !strings.Contains(errs[0].Message, "loop") || !strings.Contains(errs[0].Hint, "loop -> loop [=]") {
		t.Errorf("unexpected diagnostic %q / %q", errs[0].Message, errs[0].Hint)
	}
	if errs[0].Stage != diagnostics.StageTerck {
		t.Errorf("stage = %s", errs[0].Stage)
	}
	if verdicts[loop] {
		t.Errorf("loop should not terminate")
	}
}

func TestNonDecreasingClauseIsReported(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		k := b.Var("k")
		f := b.Fn("grow", 0)
		f.Signature(b.Ref(l.Nat), b.Param(b.Var("n"), b.Ref(l.Nat))).Clauses(
			b.Clause(b.Lit(0), b.PCtor(l.Zero)),
			b.Clause(b.App(b.Ref(f.Ref()), b.App(b.Ref(l.Suc), b.Ref(k))), b.PCtor(l.Suc, b.PVar(k))),
		)
	})
	if n := len(rep.WithCode(diagnostics.ErrN001)); n != 1 {
		t.Fatalf("got %d N001, want 1:\n%v", n, rep.Sorted())
	}
}

func TestMutualLoopReportsEachFunction(t *testing.T) {
	var ping, pong *core.DefVar
	_, verdicts, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		pi, po := b.Fn("ping", 0), b.Fn("pong", 0)
		ping, pong = pi.Ref(), po.Ref()
		n, m := b.Var("n"), b.Var("m")
		pi.Signature(b.Ref(l.Nat), b.Param(n, b.Ref(l.Nat))).Body(b.App(b.Ref(pong), b.Ref(n)))
		po.Signature(b.Ref(l.Nat), b.Param(m, b.Ref(l.Nat))).Body(b.App(b.Ref(ping), b.Ref(m)))
	})
	if n := len(rep.WithCode(diagnostics.ErrN001)); n != 2 {
		t.Fatalf("got %d N001, want 2:\n%v", n, rep.Sorted())
	}
	if verdicts[ping] || verdicts[pong] {
		t.Errorf("ping and pong should not terminate")
	}
}

func TestLiteralArgumentDecreases(t *testing.T) {
	_, _, rep := checkLib(t, func(l *prelude.Library) {
		b := l.Builder
		f := b.Fn("down", 0)
		f.Signature(b.Ref(l.Nat), b.Param(b.Var("n"), b.Ref(l.Nat))).Clauses(
			b.Clause(b.App(b.Ref(f.Ref()), b.Lit(1)), b.PLit(2)),
			b.Clause(b.Lit(0), b.PAny()),
		)
	})
	if n := len(rep.WithCode(diagnostics.ErrN001)); n != 0 {
		t.Fatalf("unexpected termination errors:\n%v", rep.Sorted())
	}
}

func TestComposeAndIdempotence(t *testing.T) {
	f := &core.DefVar{Name: "f", Kind: core.KindFn}
	swap := NewCallMatrix(f, f, 2, 2)
	swap.Set(0, 1, RelEq)
	swap.Set(1, 0, RelLt)
	if swap.Idempotent() {
		t.Fatalf("%s should not be idempotent", swap)
	}
	twice := Compose(swap, swap)
	if twice.Get(0, 0) != RelLt || twice.Get(1, 1) != RelLt || twice.Get(0, 1) != RelUnk {
		t.Fatalf("unexpected composition %s", twice)
	}
	if !twice.Idempotent() || !twice.Decreases() {
		t.Errorf("%s should be idempotent and decreasing", twice)
	}

	g := NewCallGraph()
	g.Put(swap)
	g.Closure()
	if len(g.BadRecursion()) != 0 {
		t.Errorf("argument swapping with one decrease terminates")
	}
}
