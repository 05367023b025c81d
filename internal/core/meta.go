package core

import "github.com/funvibe/tyck/internal/source"

// ScopeID names the LocalCtx snapshot a metavariable was created in. The owning
// MetaState maps it to the set of variables visible at creation.
type ScopeID int

// Meta is a metavariable. Its solution, if any, is kept by the MetaState that
// created it and is a term over FullTelescope.
type Meta struct {
	ID    int
	Name  string
	Owner int
	Scope ScopeID
	// ContextTele is the local context at creation; MetaTerm.ContextArgs line up with it.
	ContextTele Telescope
	// Telescope holds extra parameters added when the meta is forced to be a function.
	Telescope Telescope
	Result    Term
	Pos       source.Pos
}

func (m *Meta) FullTelescope() Telescope {
	out := make(Telescope, 0, len(m.ContextTele)+len(m.Telescope))
	out = append(out, m.ContextTele...)
	return append(out, m.Telescope...)
}

// MetaSolutions gives read access to solved metavariables.
type MetaSolutions interface {
	Solution(m *Meta) (Term, bool)
}

// InstantiateMeta plugs the spine of a meta application into its solution.
func InstantiateMeta(solution Term, m MetaTerm) Term {
	full := m.Meta.FullTelescope()
	spine := make([]Arg, 0, len(m.ContextArgs)+len(m.Args))
	spine = append(spine, m.ContextArgs...)
	spine = append(spine, m.Args...)
	n := min(len(full), len(spine))
	s := make(Subst, n)
	for i := 0; i < n; i++ {
		s[full[i].Var] = spine[i].Term
	}
	body := solution
	if n < len(full) {
		body = MakeLam(full[n:], body)
	}
	return MakeApps(Substitute(body, s), spine[n:])
}
