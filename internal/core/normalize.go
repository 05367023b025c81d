package core

import "github.com/funvibe/tyck/internal/config"

// Normalizer reduces terms. Unfolding of definitions is limited in depth so
// that non-terminating definitions do not hang the checker; past the limit a
// call is left as is.
type Normalizer struct {
	Metas MetaSolutions
	Prims *PrimFactory
	// Overlay holds definitions that are being checked and not yet filled.
	Overlay     map[*DefVar]Def
	UnfoldLimit int

	depth int
}

func NewNormalizer(metas MetaSolutions, prims *PrimFactory, limit int) *Normalizer {
	if limit <= 0 {
		limit = config.DefaultUnfoldLimit
	}
	return &Normalizer{Metas: metas, Prims: prims, UnfoldLimit: limit}
}

func (n *Normalizer) lookup(ref *DefVar) Def {
	if def, ok := n.Overlay[ref]; ok {
		return def
	}
	return ref.Core()
}

// Whnf reduces t until its head is no longer reducible.
func (n *Normalizer) Whnf(t Term) Term {
	switch t := t.(type) {
	case AppTerm:
		fn := n.Whnf(t.Fn)
		switch fn.(type) {
		case LamTerm, MetaTerm:
			return n.Whnf(MakeApp(fn, t.Arg))
		}
		return AppTerm{Fn: fn, Arg: t.Arg}
	case ProjTerm:
		tup := n.Whnf(t.Tup)
		if items, ok := tup.(TupTerm); ok && t.Ix >= 1 && t.Ix <= len(items.Items) {
			return n.Whnf(items.Items[t.Ix-1])
		}
		return ProjTerm{Tup: tup, Ix: t.Ix}
	case MetaTerm:
		if n.Metas != nil {
			if sol, ok := n.Metas.Solution(t.Meta); ok {
				return n.Whnf(InstantiateMeta(sol, t))
			}
		}
		return t
	case FnCall:
		if r := n.unfold(t); r != nil {
			return r
		}
		return t
	case AccessTerm:
		of := n.Whnf(t.Of)
		if lit, ok := of.(NewTerm); ok {
			for _, fv := range lit.Fields {
				if fv.Field == t.Field {
					return n.Whnf(MakeApps(fv.Value, t.FieldArgs))
				}
			}
		}
		return AccessTerm{Of: of, Field: t.Field, StructArgs: t.StructArgs, FieldArgs: t.FieldArgs}
	case PrimCall:
		if n.Prims != nil {
			if r := n.Prims.ReducePrim(t, n.Whnf); r != nil {
				return n.Whnf(r)
			}
		}
		return t
	case FormulaTerm:
		if n.Prims != nil {
			if r := n.Prims.ReduceFormula(t, n.Whnf); r != nil {
				return n.Whnf(r)
			}
		}
		return t
	case PAppTerm:
		of := n.Whnf(t.Of)
		if lam, ok := of.(PLamTerm); ok && len(lam.Dims) == len(t.Args) {
			s := make(Subst, len(lam.Dims))
			for i, d := range lam.Dims {
				s[d] = t.Args[i]
			}
			return n.Whnf(Substitute(lam.Body, s))
		}
		return PAppTerm{Of: of, Args: t.Args, Cube: t.Cube}
	}
	return t
}

// unfold reduces one function call, or returns nil when the call is stuck or
// the unfolding limit is reached.
func (n *Normalizer) unfold(call FnCall) Term {
	fn, ok := n.lookup(call.Ref).(*FnDef)
	if !ok || len(call.Args) != len(fn.Tele) || n.depth >= n.UnfoldLimit {
		return nil
	}
	n.depth++
	defer func() { n.depth-- }()

	if fn.Body != nil {
		s := make(Subst, len(fn.Tele))
		for i, p := range fn.Tele {
			s[p.Var] = call.Args[i].Term
		}
		return n.Whnf(Substitute(fn.Body, s))
	}
	for _, clause := range fn.Clauses {
		if clause.IsAbsurd() {
			continue
		}
		m := NewMatcher(n.Whnf)
		switch m.MatchMany(clause.Patterns, call.Args) {
		case Matched:
			return n.Whnf(Substitute(clause.Body, m.Subst))
		case Stuck:
			if !fn.Modifiers.Has(ModOverlap) {
				return nil
			}
		}
	}
	return nil
}

// Normalize reduces t everywhere, including under binders.
func (n *Normalizer) Normalize(t Term) Term {
	return MapTerm(n.Whnf(t), n.Normalize)
}

// InlineCalls unfolds every reducible call to an inline function in t.
func (n *Normalizer) InlineCalls(t Term) Term {
	t = MapTerm(t, n.InlineCalls)
	if call, ok := t.(FnCall); ok {
		if fn, ok := n.lookup(call.Ref).(*FnDef); ok && fn.Modifiers.Has(ModInline) {
			if r := n.unfold(call); r != nil {
				return r
			}
		}
	}
	return t
}
