package pipeline

import (
	"fmt"

	"github.com/funvibe/tyck/internal/reportdb"
	"github.com/funvibe/tyck/internal/terck"
	"github.com/funvibe/tyck/internal/tyck"
)

// TyckProcessor elaborates the program.
type TyckProcessor struct{}

func (tp *TyckProcessor) Name() string { return "tyck" }

func (tp *TyckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	st := tyck.NewStmtTycker(ctx.Reporter, ctx.Config, nil)
	ctx.Defs = st.CheckProgram(ctx.Program)
	ctx.Verdicts = st.Verdicts()
	return ctx
}

// TerckProcessor checks termination of the elaborated functions when the
// configuration enables it.
type TerckProcessor struct{}

func (tp *TerckProcessor) Name() string { return "terck" }

func (tp *TerckProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if !ctx.Config.TerminationEnabled() || len(ctx.Defs) == 0 {
		return ctx
	}
	ctx.Termination = terck.Check(ctx.Defs, ctx.Reporter)
	return ctx
}

// StoreProcessor saves the run to the report database named by the
// configuration, if any.
type StoreProcessor struct{}

func (sp *StoreProcessor) Name() string { return "store" }

func (sp *StoreProcessor) Process(ctx *PipelineContext) *PipelineContext {
	if ctx.Config.ReportDB == "" {
		return ctx
	}
	store, err := reportdb.Open(ctx.Config.ReportDB)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	defer store.Close()
	if err := store.SaveRun(ctx.Record()); err != nil {
		ctx.Errors = append(ctx.Errors, fmt.Errorf("run %s: %w", ctx.RunID, err))
	}
	return ctx
}

// Record converts the run into its stored form. Functions without a clause
// verdict count as covered and confluent; functions the termination checker
// did not see count as terminating.
func (ctx *PipelineContext) Record() reportdb.Run {
	run := reportdb.Run{ID: ctx.RunID.String(), Started: ctx.Started, Problems: ctx.Problems.Problems}
	if ctx.Program != nil {
		run.File = ctx.Program.File
	}

	index := make(map[string]int)
	get := func(name string) *reportdb.Verdict {
		i, ok := index[name]
		if !ok {
			i = len(run.Verdicts)
			index[name] = i
			run.Verdicts = append(run.Verdicts, reportdb.Verdict{Fn: name, Covered: true, Confluent: true, Terminates: true})
		}
		return &run.Verdicts[i]
	}
	for _, v := range ctx.Verdicts {
		rec := get(v.Fn.Name)
		rec.Covered, rec.Confluent = v.Covered, v.Confluent
	}
	for _, v := range ctx.Termination {
		get(v.Fn.Name).Terminates = v.Terminates
	}
	return run
}
