package pipeline

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/prelude"
	"github.com/funvibe/tyck/internal/reportdb"
)

// loopingLibrary adds a function that calls itself unchanged.
func loopingLibrary() *prelude.Library {
	l := prelude.NewLibrary("pipeline.tyck")
	b := l.Builder
	n := b.Var("n")
	f := b.Fn("loop", 0)
	f.Signature(b.Ref(l.Nat), b.Param(n, b.Ref(l.Nat))).Body(b.App(b.Ref(f.Ref()), b.Ref(n)))
	return l
}

func TestDefaultPipelineChecksLibrary(t *testing.T) {
	l := prelude.NewLibrary("pipeline.tyck")
	ctx := Default().Run(NewPipelineContext(l.Program(), nil, nil))
	if ctx.Failed() {
		t.Fatalf("unexpected failure: %v %v", ctx.Problems.Sorted(), ctx.Errors)
	}
	if ctx.RunID == uuid.Nil {
		t.Errorf("run id not set")
	}
	if len(ctx.Defs) == 0 || len(ctx.Verdicts) == 0 || len(ctx.Termination) == 0 {
		t.Errorf("stages did not run: %d defs, %d verdicts, %d termination verdicts",
			len(ctx.Defs), len(ctx.Verdicts), len(ctx.Termination))
	}
}

// failingStage fails the run itself.
type failingStage struct{}

func (failingStage) Name() string { return "failing" }

func (failingStage) Process(ctx *PipelineContext) *PipelineContext {
	ctx.Errors = append(ctx.Errors, errors.New("disk full"))
	return ctx
}

func TestStagesAreReported(t *testing.T) {
	ctx := Default().Run(NewPipelineContext(loopingLibrary().Program(), nil, nil))
	if len(ctx.Stages) != 3 || len(ctx.Skipped) != 0 {
		t.Fatalf("stages %s, skipped %v", spew.Sdump(ctx.Stages), ctx.Skipped)
	}
	want := []string{"tyck", "terck", "store"}
	total := 0
	for i, st := range ctx.Stages {
		if st.Stage != want[i] {
			t.Errorf("stage %d is %s, want %s", i, st.Stage, want[i])
		}
		total += st.Problems
	}
	if ctx.Stages[1].Problems != 1 || total != len(ctx.Problems.Problems) {
		t.Errorf("terck added %d of %d diagnostics", ctx.Stages[1].Problems, total)
	}
}

func TestRunFailureStopsLaterStages(t *testing.T) {
	p := New(&TyckProcessor{}, failingStage{}, &TerckProcessor{}, &StoreProcessor{})
	ctx := p.Run(NewPipelineContext(loopingLibrary().Program(), nil, nil))
	if len(ctx.Stages) != 2 || ctx.Stages[1].Errors != 1 {
		t.Fatalf("stages %s", spew.Sdump(ctx.Stages))
	}
	if len(ctx.Skipped) != 2 || ctx.Skipped[0] != "terck" || ctx.Skipped[1] != "store" {
		t.Errorf("skipped %v", ctx.Skipped)
	}
	if ctx.Termination != nil || !ctx.Failed() {
		t.Errorf("termination ran after a run failure")
	}
}

func TestTerminationCanBeDisabled(t *testing.T) {
	cfg, err := config.ParseConfig([]byte("termination: false\n"), "tyck.yaml")
	if err != nil {
		t.Fatal(err)
	}
	ctx := Default().Run(NewPipelineContext(loopingLibrary().Program(), cfg, nil))
	if ctx.Failed() || ctx.Termination != nil {
		t.Errorf("termination checker should not run: %v", ctx.Problems.Sorted())
	}

	ctx = Default().Run(NewPipelineContext(loopingLibrary().Program(), nil, nil))
	if len(ctx.Problems.WithCode(diagnostics.ErrN001)) != 1 {
		t.Errorf("expected one termination error: %v", ctx.Problems.Sorted())
	}
}

func TestOutputReporterSeesEveryDiagnostic(t *testing.T) {
	out := &diagnostics.CollectingReporter{}
	ctx := Default().Run(NewPipelineContext(loopingLibrary().Program(), nil, out))
	if len(out.Problems) != len(ctx.Problems.Problems) || len(out.Problems) == 0 {
		t.Errorf("forwarded %d of %d diagnostics", len(out.Problems), len(ctx.Problems.Problems))
	}
}

func TestRunIsStored(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReportDB = filepath.Join(t.TempDir(), "runs.db")
	ctx := Default().Run(NewPipelineContext(loopingLibrary().Program(), cfg, nil))
	if len(ctx.Errors) != 0 {
		t.Fatalf("store failed: %v", ctx.Errors)
	}

	store, err := reportdb.Open(cfg.ReportDB)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	problems, err := store.Diagnostics(ctx.RunID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) != len(ctx.Problems.Problems) {
		t.Errorf("stored %d diagnostics, want %d", len(problems), len(ctx.Problems.Problems))
	}
	verdicts, err := store.Verdicts(ctx.RunID.String())
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, v := range verdicts {
		if v.Fn == "loop" {
			found = true
			if v.Terminates {
				t.Errorf("loop stored as terminating")
			}
		}
		if v.Fn == "add" && (!v.Terminates || !v.Covered || !v.Confluent) {
			t.Errorf("add stored with a failed check: %+v", v)
		}
	}
	if !found {
		t.Errorf("no verdict for loop in %+v", verdicts)
	}
}

func TestUnopenableStoreIsARunError(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ReportDB = filepath.Join(t.TempDir(), "missing", "dir", "runs.db")
	ctx := Default().Run(NewPipelineContext(prelude.NewLibrary("pipeline.tyck").Program(), cfg, nil))
	if len(ctx.Errors) != 1 || !ctx.Failed() {
		t.Errorf("expected one run error, got %v", ctx.Errors)
	}
}
