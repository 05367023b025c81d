package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/terck"
	"github.com/funvibe/tyck/internal/tyck"
)

// PipelineContext carries one run through the stages.
type PipelineContext struct {
	RunID   uuid.UUID
	Started time.Time
	Program *ast.Program
	Config  *config.Config

	// Problems collects every diagnostic of the run. Reporter also forwards
	// them to the reporter given at creation, if any.
	Problems *diagnostics.CollectingReporter
	Reporter diagnostics.Reporter

	Defs        []core.Def
	Verdicts    []tyck.Verdict
	Termination []terck.Verdict

	// Errors are failures of the run itself, such as an unwritable report
	// store. They are not diagnostics of the program.
	Errors []error

	Stages  []StageReport
	Skipped []string
}

// NewPipelineContext prepares a run of prog. A nil cfg means the defaults.
func NewPipelineContext(prog *ast.Program, cfg *config.Config, out diagnostics.Reporter) *PipelineContext {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	problems := &diagnostics.CollectingReporter{}
	var reporter diagnostics.Reporter = problems
	if out != nil {
		reporter = diagnostics.MultiReporter{problems, out}
	}
	return &PipelineContext{
		RunID:    uuid.New(),
		Started:  time.Now(),
		Program:  prog,
		Config:   cfg,
		Problems: problems,
		Reporter: reporter,
	}
}

// Failed reports whether the run produced an ERROR diagnostic or failed itself.
func (ctx *PipelineContext) Failed() bool {
	return ctx.Problems.HasErrors() || len(ctx.Errors) > 0
}
