// Package pipeline runs the checking stages over one program: elaboration,
// termination checking and the report store.
package pipeline

import "time"

// Processor is one stage of the pipeline.
type Processor interface {
	Name() string
	Process(ctx *PipelineContext) *PipelineContext
}

// StageReport records what one stage added to the run.
type StageReport struct {
	Stage    string
	Problems int
	Errors   int
	Elapsed  time.Duration
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Default is the full checking pipeline.
func Default() *Pipeline {
	return New(&TyckProcessor{}, &TerckProcessor{}, &StoreProcessor{})
}

// Run executes the pipeline. A stage that fails the run itself stops it; the
// remaining stages are listed in ctx.Skipped.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for i, processor := range p.processors {
		start := time.Now()
		problems, errs := len(ctx.Problems.Problems), len(ctx.Errors)
		ctx = processor.Process(ctx)
		report := StageReport{
			Stage:    processor.Name(),
			Problems: len(ctx.Problems.Problems) - problems,
			Errors:   len(ctx.Errors) - errs,
			Elapsed:  time.Since(start),
		}
		ctx.Stages = append(ctx.Stages, report)
		// Diagnostics do not stop the run, so later stages still see the
		// declarations that did check.
		if report.Errors > 0 {
			for _, rest := range p.processors[i+1:] {
				ctx.Skipped = append(ctx.Skipped, rest.Name())
			}
			break
		}
	}
	return ctx
}
