package terck

import (
	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
	"github.com/samber/lo"
)

// Verdict is the termination verdict of one function.
type Verdict struct {
	Fn         *core.DefVar
	Terminates bool
}

// Check builds the call graph of the function definitions in defs, closes it
// and reports every function with a self call that never decreases. Verdicts
// follow the order of defs.
func Check(defs []core.Def, reporter diagnostics.Reporter) []Verdict {
	fns := lo.FilterMap(defs, func(d core.Def, _ int) (*core.FnDef, bool) {
		fn, ok := d.(*core.FnDef)
		return fn, ok
	})
	targets := lo.SliceToMap(fns, func(fn *core.FnDef) (*core.DefVar, bool) { return fn.Var, true })

	g := NewCallGraph()
	for _, fn := range fns {
		for _, m := range callSites(fn, targets) {
			g.Put(m)
		}
	}
	g.Closure()
	bad := g.BadRecursion()

	verdicts := make([]Verdict, len(fns))
	for i, fn := range fns {
		m, loops := bad[fn.Var]
		verdicts[i] = Verdict{Fn: fn.Var, Terminates: !loops}
		if loops {
			reporter.Report(diagnostics.NewError(diagnostics.ErrN001, posOf(fn.Var),
				"no argument of "+fn.Var.Name+" decreases").WithHint("call %s", m))
		}
	}
	return verdicts
}

func posOf(v *core.DefVar) source.Pos {
	if n, ok := v.Concrete.(ast.Node); ok {
		return n.GetPos()
	}
	return source.Pos{}
}
