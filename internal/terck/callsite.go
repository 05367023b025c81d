package terck

import "github.com/funvibe/tyck/internal/core"

// callSites returns one matrix per call in def to a function of targets.
func callSites(def *core.FnDef, targets map[*core.DefVar]bool) []*CallMatrix {
	var out []*CallMatrix
	collect := func(pats []core.Pat, body core.Term) {
		core.Visit(body, func(t core.Term) {
			call, ok := t.(core.FnCall)
			if !ok || !targets[call.Ref] {
				return
			}
			m := NewCallMatrix(def.Var, call.Ref, len(call.Args), len(pats))
			for i, arg := range call.Args {
				for j, p := range pats {
					m.Set(i, j, relate(arg.Term, p))
				}
			}
			out = append(out, m)
		})
	}
	if def.Body != nil {
		pats := make([]core.Pat, len(def.Tele))
		for i, p := range def.Tele {
			pats[i] = core.BindPat{Var: p.Var, Type: p.Type, Explicit: p.Explicit}
		}
		collect(pats, def.Body)
		return out
	}
	for _, c := range def.Clauses {
		if !c.IsAbsurd() {
			collect(core.InlineAll(c.Patterns), c.Body)
		}
	}
	return out
}

// relate compares an argument with the pattern a parameter was matched by.
// Strict subterms of a constructor pattern are smaller.
func relate(t core.Term, p core.Pat) Relation {
	if matches(t, p) {
		return RelEq
	}
	switch p := p.(type) {
	case core.CtorPat:
		for _, sub := range p.Params {
			if relate(t, sub) != RelUnk {
				return RelLt
			}
		}
	case core.ShapedIntPat:
		if p.Value > 0 {
			return relate(t, p.ConstructorForm())
		}
	case core.TuplePat:
		rel := RelUnk
		for _, sub := range p.Pats {
			rel = rel.Add(relate(t, sub))
		}
		return rel
	}
	return RelUnk
}

// matches reports whether t is exactly the term p matched.
func matches(t core.Term, p core.Pat) bool {
	switch p := p.(type) {
	case core.BindPat:
		ref, ok := t.(core.RefTerm)
		return ok && ref.Var == p.Var
	case core.CtorPat:
		switch t := t.(type) {
		case core.ConCall:
			if t.Ref != p.Ref || len(t.Args) != len(p.Params) {
				return false
			}
			for i, sub := range p.Params {
				if !matches(t.Args[i].Term, sub) {
					return false
				}
			}
			return true
		case core.IntLitTerm:
			return matches(t.ConstructorForm(), p)
		}
	case core.ShapedIntPat:
		if lit, ok := t.(core.IntLitTerm); ok {
			return lit.Value == p.Value
		}
		if _, ok := t.(core.ConCall); ok {
			return matches(t, p.ConstructorForm())
		}
	case core.TuplePat:
		tup, ok := t.(core.TupTerm)
		if !ok || len(tup.Items) != len(p.Pats) {
			return false
		}
		for i, sub := range p.Pats {
			if !matches(tup.Items[i], sub) {
				return false
			}
		}
		return true
	}
	return false
}
