package reportdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestSaveAndLoadRun(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	pos := source.Pos{File: "lib.tyck", Line: 4, Column: 2}
	run := Run{
		ID:      "run-1",
		File:    "lib.tyck",
		Started: time.Unix(100, 0),
		Problems: []*diagnostics.DiagnosticError{
			diagnostics.NewError(diagnostics.ErrP001, pos, "suc _, _").WithHint("while checking def max"),
			diagnostics.NewError(diagnostics.ErrP003, pos, "clause 2 of max is never reached"),
		},
		Verdicts: []Verdict{
			{Fn: "max", Covered: false, Confluent: true, Terminates: true},
			{Fn: "loop", Covered: true, Confluent: true, Terminates: false},
		},
	}
	if err := s.SaveRun(run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	problems, err := s.Diagnostics("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) != 2 {
		t.Fatalf("got %d diagnostics: %s", len(problems), spew.Sdump(problems))
	}
	first := problems[0]
	if first.Code != diagnostics.ErrP001 || first.Severity != diagnostics.SeverityError ||
		first.Message != "unhandled case: suc _, _" || first.Hint != "while checking def max" || first.Pos != pos {
		t.Errorf("unexpected first diagnostic: %s", spew.Sdump(first))
	}
	if problems[1].Severity != diagnostics.SeverityWarn {
		t.Errorf("P003 should come back as a warning")
	}

	verdicts, err := s.Verdicts("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(verdicts) != 2 || verdicts[0].Fn != "loop" || verdicts[0].Terminates || verdicts[1].Covered {
		t.Errorf("unexpected verdicts: %s", spew.Sdump(verdicts))
	}
}

func TestRunsAreListedNewestFirst(t *testing.T) {
	s, path := openTemp(t)
	pos := source.Pos{File: "a.tyck", Line: 1, Column: 1}
	for i, id := range []string{"old", "new"} {
		run := Run{ID: id, File: "a.tyck", Started: time.Unix(int64(i), 0)}
		if id == "new" {
			run.Problems = []*diagnostics.DiagnosticError{
				diagnostics.NewError(diagnostics.ErrN001, pos, "no argument of f decreases"),
				diagnostics.NewError(diagnostics.ErrG001, pos, ": Nat"),
			}
		}
		if err := s.SaveRun(run); err != nil {
			t.Fatal(err)
		}
	}
	s.Close()

	// Reopening keeps the data and the schema.
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runs, err := s.Runs()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "new" || runs[0].Errors != 1 || runs[1].Errors != 0 {
		t.Errorf("unexpected runs: %s", spew.Sdump(runs))
	}
}

func TestDuplicateRunIsRolledBack(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	run := Run{ID: "dup", File: "a.tyck", Started: time.Unix(1, 0), Verdicts: []Verdict{{Fn: "f"}}}
	if err := s.SaveRun(run); err != nil {
		t.Fatal(err)
	}
	run.Verdicts = []Verdict{{Fn: "g"}}
	if err := s.SaveRun(run); err == nil {
		t.Fatalf("expected an error for a duplicate run id")
	}
	verdicts, err := s.Verdicts("dup")
	if err != nil {
		t.Fatal(err)
	}
	if len(verdicts) != 1 || verdicts[0].Fn != "f" {
		t.Errorf("failed save left rows behind: %s", spew.Sdump(verdicts))
	}
}
