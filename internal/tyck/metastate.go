package tyck

import (
	"sync/atomic"

	"github.com/hashicorp/go-set/v3"

	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
)

var stateCounter atomic.Int64

// Equation is a postponed comparison whose meta side was not a pattern.
type Equation struct {
	Order    Ordering
	Lhs, Rhs core.Term
	Ctx      *LocalCtx
	Pos      source.Pos
}

// MetaState stores the metavariables of one declaration and their solutions.
type MetaState struct {
	id        int
	metas     []*core.Meta
	solutions map[*core.Meta]core.Term
	scopes    map[core.ScopeID]*set.Set[*core.LocalVar]
	postponed []Equation
}

func NewMetaState() *MetaState {
	return &MetaState{
		id:        int(stateCounter.Add(1)),
		solutions: make(map[*core.Meta]core.Term),
		scopes:    make(map[core.ScopeID]*set.Set[*core.LocalVar]),
	}
}

// Solution implements core.MetaSolutions.
func (s *MetaState) Solution(m *core.Meta) (core.Term, bool) {
	t, ok := s.solutions[m]
	return t, ok
}

// FreshMeta creates a metavariable over the current context and returns its
// application to the context variables.
func (s *MetaState) FreshMeta(ctx *LocalCtx, name string, result core.Term, pos source.Pos) core.MetaTerm {
	scope := core.ScopeID(len(s.scopes))
	vars := set.New[*core.LocalVar](ctx.Len())
	tele := ctx.Telescope()
	for _, p := range tele {
		vars.Insert(p.Var)
	}
	s.scopes[scope] = vars
	m := &core.Meta{
		ID:          len(s.metas) + 1,
		Name:        name,
		Owner:       s.id,
		Scope:       scope,
		ContextTele: tele,
		Result:      result,
		Pos:         pos,
	}
	s.metas = append(s.metas, m)
	return core.MetaTerm{Meta: m, ContextArgs: tele.Args()}
}

func (s *MetaState) own(m *core.Meta) {
	if m.Owner != s.id {
		panic(diagnostics.Internalf("meta %s used outside the declaration that created it", m.Name))
	}
}

// InScope reports whether v was visible where m was created.
func (s *MetaState) InScope(m *core.Meta, v *core.LocalVar) bool {
	s.own(m)
	return s.scopes[m.Scope].Contains(v)
}

// Solve records the solution of m, a term over m's full telescope.
func (s *MetaState) Solve(m *core.Meta, solution core.Term) {
	s.own(m)
	if _, ok := s.solutions[m]; ok {
		panic(diagnostics.Internalf("meta %s solved twice", m.Name))
	}
	s.solutions[m] = solution
}

func (s *MetaState) IsSolved(m *core.Meta) bool {
	_, ok := s.solutions[m]
	return ok
}

func (s *MetaState) Postpone(eq Equation) {
	s.postponed = append(s.postponed, eq)
}

// TakePostponed removes and returns the postponed equations.
func (s *MetaState) TakePostponed() []Equation {
	eqs := s.postponed
	s.postponed = nil
	return eqs
}

// Unsolved returns the metas without a solution, in creation order.
func (s *MetaState) Unsolved() []*core.Meta {
	var out []*core.Meta
	for _, m := range s.metas {
		if !s.IsSolved(m) {
			out = append(out, m)
		}
	}
	return out
}

// generatedName marks a name as invented by the elaborator.
func generatedName(base string) string {
	return base + config.GeneratedPostfix
}
