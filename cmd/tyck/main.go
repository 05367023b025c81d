package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/pipeline"
	"github.com/funvibe/tyck/internal/prelude"
	"github.com/funvibe/tyck/internal/reportdb"
)

const (
	exitOK       = 0
	exitProblems = 1
	exitInternal = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	// Catch internal errors and show them as bugs, not as user problems.
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r) // Re-panic to get stack trace
			}
			if ie, ok := r.(*diagnostics.InternalError); ok {
				fmt.Fprintf(os.Stderr, "%s\n", ie)
			} else {
				fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			}
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			code = exitInternal
		}
	}()

	fs := flag.NewFlagSet("tyck", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a tyck.yaml configuration file")
	verbose := fs.Bool("v", false, "log progress to stderr")
	listRuns := fs.Bool("runs", false, "list the runs stored in the report database and exit")
	if err := fs.Parse(args); err != nil {
		return exitProblems
	}

	log.SetFlags(0)          // Disable timestamp in logs
	log.SetOutput(os.Stderr) // Diagnostics go to stdout
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return exitProblems
		}
		cfg = loaded
	}

	if *listRuns {
		return printRuns(cfg)
	}

	lib := prelude.NewLibrary("prelude.tyck")
	log.Printf("checking %s (%d declarations)", lib.Program().File, len(lib.Program().Decls))

	printer := diagnostics.NewPrintReporter(os.Stdout, cfg.Color)
	ctx := pipeline.NewPipelineContext(lib.Program(), cfg, printer)
	ctx = pipeline.Default().Run(ctx)

	log.Printf("run %s: %d definitions, %d errors, %d warnings, %d goals",
		ctx.RunID, len(ctx.Defs),
		ctx.Problems.Count(diagnostics.SeverityError),
		ctx.Problems.Count(diagnostics.SeverityWarn),
		ctx.Problems.Count(diagnostics.SeverityGoal))
	for _, st := range ctx.Stages {
		log.Printf("  stage %s: %d diagnostics, %d run errors in %s", st.Stage, st.Problems, st.Errors, st.Elapsed)
	}
	for _, name := range ctx.Skipped {
		log.Printf("  stage %s skipped", name)
	}
	for _, v := range ctx.Termination {
		log.Printf("  %s terminates: %v", v.Fn.Name, v.Terminates)
	}
	if cfg.ReportDB != "" && len(ctx.Errors) == 0 {
		log.Printf("saved run %s to %s", ctx.RunID, cfg.ReportDB)
	}

	for _, err := range ctx.Errors {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	if ctx.Failed() {
		return exitProblems
	}
	return exitOK
}

func printRuns(cfg *config.Config) int {
	if cfg.ReportDB == "" {
		fmt.Fprintln(os.Stderr, "Error: no report_db configured")
		return exitProblems
	}
	store, err := reportdb.Open(cfg.ReportDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return exitProblems
	}
	defer store.Close()
	runs, err := store.Runs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return exitProblems
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s  %d errors\n", r.ID, r.Started.Format("2006-01-02 15:04:05"), r.File, r.Errors)
	}
	return exitOK
}
