package tyck

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
)

// Freeze replaces every solved meta in t by its solution. Unsolved metas stay.
func (s *MetaState) Freeze(t core.Term) core.Term {
	if m, ok := t.(core.MetaTerm); ok {
		frozen := core.MapTerm(m, s.Freeze).(core.MetaTerm)
		if sol, ok := s.Solution(m.Meta); ok {
			return s.Freeze(core.InstantiateMeta(sol, frozen))
		}
		return frozen
	}
	return core.MapTerm(t, s.Freeze)
}

// Zonker freezes terms at the end of a declaration and reports the metas that
// remain unsolved, each once, replacing them by error terms.
type Zonker struct {
	state    *MetaState
	reporter diagnostics.Reporter
	reported *set.Set[*core.Meta]
	goals    *set.Set[*core.Meta]
}

func NewZonker(state *MetaState, reporter diagnostics.Reporter) *Zonker {
	return &Zonker{state: state, reporter: reporter, reported: set.New[*core.Meta](0), goals: set.New[*core.Meta](0)}
}

// SkipGoals marks metas already reported as goals. They are left open without
// an unsolved-meta error.
func (z *Zonker) SkipGoals(metas ...*core.Meta) *Zonker {
	z.goals.InsertSlice(metas)
	return z
}

func (z *Zonker) Zonk(t core.Term, pos source.Pos) core.Term {
	if m, ok := t.(core.MetaTerm); ok {
		if sol, ok := z.state.Solution(m.Meta); ok {
			frozen := core.MapTerm(m, func(c core.Term) core.Term { return z.Zonk(c, pos) }).(core.MetaTerm)
			return z.Zonk(core.InstantiateMeta(sol, frozen), pos)
		}
		if z.goals.Contains(m.Meta) {
			return core.ErrorTerm{Desc: core.MetaName(m.Meta)}
		}
		if z.reported.Insert(m.Meta) {
			at := m.Meta.Pos
			if at.IsNone() {
				at = pos
			}
			z.reporter.Report(diagnostics.NewError(diagnostics.ErrT006, at, core.MetaName(m.Meta)+" : "+z.state.Freeze(m.Meta.Result).String()))
		}
		return core.ErrorTerm{Desc: core.MetaName(m.Meta), Really: true}
	}
	return core.MapTerm(t, func(c core.Term) core.Term { return z.Zonk(c, pos) })
}

// ZonkTele zonks every parameter type.
func (z *Zonker) ZonkTele(tele core.Telescope, pos source.Pos) core.Telescope {
	out := make(core.Telescope, len(tele))
	for i, p := range tele {
		out[i] = core.Param{Var: p.Var, Type: z.Zonk(p.Type, pos), Explicit: p.Explicit}
	}
	return out
}
