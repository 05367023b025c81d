package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/funvibe/tyck/internal/config"
)

// atom wraps compound terms in parentheses for use in argument position.
func atom(t Term) string {
	switch t := t.(type) {
	case RefTerm, FieldRefTerm, TupTerm, ProjTerm, IntLitTerm, ErrorTerm:
		return t.String()
	case FnCall:
		if len(explicitArgs(t.Args)) == 0 {
			return t.String()
		}
	case DataCall:
		if len(explicitArgs(t.Args)) == 0 {
			return t.String()
		}
	case StructCall:
		if len(explicitArgs(t.Args)) == 0 {
			return t.String()
		}
	case PrimCall:
		if len(explicitArgs(t.Args)) == 0 {
			return t.String()
		}
	case ConCall:
		if len(explicitArgs(t.Args)) == 0 {
			return t.String()
		}
	case MetaTerm:
		if len(explicitArgs(t.Args)) == 0 {
			return t.String()
		}
	case FormulaTerm:
		if t.Op == FormulaLeft || t.Op == FormulaRight {
			return t.String()
		}
	case AccessTerm:
		if len(t.FieldArgs) == 0 {
			return t.String()
		}
	}
	return "(" + t.String() + ")"
}

func explicitArgs(args []Arg) []Arg {
	return lo.Filter(args, func(a Arg, _ int) bool { return a.Explicit })
}

func argString(a Arg) string {
	if a.Explicit {
		return atom(a.Term)
	}
	return "{" + a.Term.String() + "}"
}

// call prints a head with its explicit arguments; implicit ones are elided.
func call(head string, args []Arg) string {
	parts := append([]string{head}, lo.Map(explicitArgs(args), func(a Arg, _ int) string { return atom(a.Term) })...)
	return strings.Join(parts, " ")
}

func (p Param) String() string {
	if p.Explicit {
		return fmt.Sprintf("(%s : %s)", p.Var.Name, p.Type)
	}
	return fmt.Sprintf("{%s : %s}", p.Var.Name, p.Type)
}

func (t Telescope) String() string {
	return strings.Join(lo.Map(t, func(p Param, _ int) string { return p.String() }), " ")
}

func (t RefTerm) String() string      { return t.Var.Name }
func (t FieldRefTerm) String() string { return t.Field.Name }

func (t LamTerm) String() string {
	name := t.Param.Var.Name
	if !t.Param.Explicit {
		name = "{" + name + "}"
	}
	return fmt.Sprintf("\\%s => %s", name, t.Body)
}

func (t PiTerm) String() string {
	if t.Param.Explicit && !FreeVars(t.Body).Contains(t.Param.Var) {
		dom := t.Param.Type.String()
		switch t.Param.Type.(type) {
		case PiTerm, SigmaTerm, LamTerm:
			dom = "(" + dom + ")"
		}
		return fmt.Sprintf("%s -> %s", dom, t.Body)
	}
	return fmt.Sprintf("Pi %s -> %s", t.Param, t.Body)
}

func (t AppTerm) String() string {
	return t.Fn.String() + " " + argString(t.Arg)
}

func (t TupTerm) String() string {
	return "(" + strings.Join(lo.Map(t.Items, func(it Term, _ int) string { return it.String() }), ", ") + ")"
}

func (t SigmaTerm) String() string {
	if len(t.Params) == 0 {
		return "Sig"
	}
	last := t.Params[len(t.Params)-1]
	init := lo.Map(t.Params[:len(t.Params)-1], func(p Param, _ int) string { return p.String() })
	return fmt.Sprintf("Sig %s ** %s", strings.Join(init, " "), last.Type)
}

func (t ProjTerm) String() string { return fmt.Sprintf("%s.%d", atom(t.Tup), t.Ix) }
func (t UnivTerm) String() string { return fmt.Sprintf("Type %d", t.Lift) }

func (t FnCall) String() string     { return call(t.Ref.Name, t.Args) }
func (t DataCall) String() string   { return call(t.Ref.Name, t.Args) }
func (t StructCall) String() string { return call(t.Ref.Name, t.Args) }
func (t PrimCall) String() string   { return call(t.Ref.Name, t.Args) }
func (t ConCall) String() string    { return call(t.Ref.Name, t.Args) }

func (t AccessTerm) String() string {
	return call(atom(t.Of)+"."+t.Field.Name, t.FieldArgs)
}

func (t NewTerm) String() string {
	fields := lo.Map(t.Fields, func(f FieldValue, _ int) string {
		return fmt.Sprintf("| %s => %s", f.Field.Name, f.Value)
	})
	return fmt.Sprintf("new %s { %s }", atom(t.Struct), strings.Join(fields, " "))
}

// MetaName is how m is displayed. Under test the creation counter is omitted.
func MetaName(m *Meta) string {
	if config.IsTestMode {
		return "?" + m.Name
	}
	return "?" + m.Name + config.GeneratedPostfix + strconv.Itoa(m.ID)
}

func (t MetaTerm) String() string { return call(MetaName(t.Meta), t.Args) }

func (t ErrorTerm) String() string { return "<" + t.Desc + ">" }

func (t IntLitTerm) String() string { return strconv.Itoa(t.Value) }

func (t FormulaTerm) String() string {
	switch t.Op {
	case FormulaLeft:
		return "0"
	case FormulaRight:
		return "1"
	case FormulaMin:
		return fmt.Sprintf("%s /\\ %s", atom(t.Args[0]), atom(t.Args[1]))
	case FormulaMax:
		return fmt.Sprintf("%s \\/ %s", atom(t.Args[0]), atom(t.Args[1]))
	case FormulaInv:
		return "~ " + atom(t.Args[0])
	}
	return "<formula>"
}

func (t PartialTerm) String() string {
	clauses := lo.Map(t.Clauses, func(c PartialClause, _ int) string {
		return fmt.Sprintf("| %s := %s", c.Cond, c.Value)
	})
	return "{| " + strings.Join(clauses, " ") + " |}"
}

func dimNames(dims []*LocalVar) string {
	return strings.Join(lo.Map(dims, func(d *LocalVar, _ int) string { return d.Name }), " ")
}

func (t PathTerm) String() string {
	return fmt.Sprintf("[| %s |] %s %s", dimNames(t.Dims), atom(t.Type), t.Partial)
}

func (t PLamTerm) String() string {
	return fmt.Sprintf("\\%s => %s", dimNames(t.Dims), t.Body)
}

func (t PAppTerm) String() string {
	parts := append([]string{atom(t.Of)}, lo.Map(t.Args, func(a Term, _ int) string { return atom(a) })...)
	return strings.Join(parts, " ")
}

func (t CoeTerm) String() string {
	return fmt.Sprintf("coe %s %s", atom(t.Type), atom(t.Restr))
}

// patAtom wraps compound patterns in parentheses in argument position.
func patAtom(p Pat) string {
	if !p.IsExplicit() {
		return p.String()
	}
	if c, ok := p.(CtorPat); ok && len(c.Params) > 0 {
		return "(" + c.String() + ")"
	}
	return p.String()
}

func braced(explicit bool, s string) string {
	if explicit {
		return s
	}
	return "{" + s + "}"
}

func (p BindPat) String() string { return braced(p.Explicit, p.Var.Name) }

func (p CtorPat) String() string {
	parts := append([]string{p.Ref.Name}, lo.Map(p.Params, func(sub Pat, _ int) string { return patAtom(sub) })...)
	return braced(p.Explicit, strings.Join(parts, " "))
}

func (p TuplePat) String() string {
	return braced(p.Explicit, "("+strings.Join(lo.Map(p.Pats, func(sub Pat, _ int) string { return sub.String() }), ", ")+")")
}

func (p ShapedIntPat) String() string { return braced(p.Explicit, strconv.Itoa(p.Value)) }

func (p MetaPat) String() string {
	if p.Slot.Solution != nil {
		return p.Slot.Solution.String()
	}
	return braced(p.Explicit, p.Slot.FakeBind.Name)
}

func (p AbsurdPat) String() string { return braced(p.Explicit, "()") }

func (c Clause) String() string {
	pats := strings.Join(lo.Map(c.Patterns, func(p Pat, _ int) string { return p.String() }), ", ")
	if c.IsAbsurd() {
		return "| " + pats
	}
	return fmt.Sprintf("| %s => %s", pats, c.Body)
}

// DefString prints the header of a checked definition.
func DefString(def Def) string {
	sig := def.Signature()
	head := def.Ref().Kind.String() + " " + def.Ref().Name
	if len(sig.Telescope) > 0 {
		head += " " + sig.Telescope.String()
	}
	return head + " : " + sig.Result.String()
}
