package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/funvibe/tyck/internal/source"
)

func TestNewErrorUsesCatalog(t *testing.T) {
	pos := source.Pos{File: "a.aya", Line: 3, Column: 7}
	d := NewError(ErrP001, pos, "suc _, _")
	if d.Severity != SeverityError || d.Stage != StageTyck {
		t.Errorf("unexpected severity/stage: %v %v", d.Severity, d.Stage)
	}
	if d.Message != "unhandled case: suc _, _" {
		t.Errorf("message = %q", d.Message)
	}
	if got := d.Error(); got != "a.aya:3:7: ERROR[P001]: unhandled case: suc _, _" {
		t.Errorf("Error() = %q", got)
	}
	if w := NewError(ErrP003, pos, "x"); w.IsError() {
		t.Errorf("P003 should be a warning")
	}
	if n := NewError(ErrN001, pos, "f"); n.Stage != StageTerck {
		t.Errorf("N001 stage = %v", n.Stage)
	}
}

func TestUnknownCodePanicsWithInternalError(t *testing.T) {
	defer func() {
		r := recover()
		if _, ok := r.(*InternalError); !ok {
			t.Fatalf("expected *InternalError panic, got %v", r)
		}
	}()
	NewError(ErrorCode("Z999"), source.None)
}

func TestCollectingReporter(t *testing.T) {
	r := &CollectingReporter{}
	r.Report(NewError(ErrP003, source.Pos{Line: 9}, "c"))
	r.Report(NewError(ErrG001, source.Pos{Line: 2}, "?"))
	if r.HasErrors() {
		t.Errorf("warnings and goals are not errors")
	}
	r.Report(NewError(ErrT001, source.Pos{Line: 1}, "A vs B"))
	if !r.HasErrors() || r.Count(SeverityError) != 1 {
		t.Errorf("expected one error")
	}
	sorted := r.Sorted()
	if sorted[0].Code != ErrT001 || sorted[2].Code != ErrP003 {
		t.Errorf("unexpected order: %v", sorted)
	}
	if len(r.WithCode(ErrG001)) != 1 {
		t.Errorf("WithCode failed")
	}
}

func TestPrintReporter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrintReporter(&buf, "never")
	p.Report(NewError(ErrT005, source.Pos{Line: 1, Column: 2}, "Type 1 is not below Type 1").WithHint("use a higher universe"))
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("colour must be disabled: %q", out)
	}
	if !strings.Contains(out, "ERROR[T005]") || !strings.Contains(out, "note: use a higher universe") {
		t.Errorf("unexpected output: %q", out)
	}

	buf.Reset()
	NewPrintReporter(&buf, "always").Report(NewError(ErrG001, source.None, "?"))
	if !strings.Contains(buf.String(), ansiGreen) {
		t.Errorf("expected coloured goal: %q", buf.String())
	}
}
