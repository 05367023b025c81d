package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/source"
)

// Param is a binder with an optional type (nil means "infer").
type Param struct {
	Pos      source.Pos
	Var      *core.LocalVar
	Type     Expr
	Explicit bool
}

func (p *Param) String() string {
	ty := "_"
	if p.Type != nil {
		ty = p.Type.String()
	}
	if p.Explicit {
		return fmt.Sprintf("(%s : %s)", p.Var.Name, ty)
	}
	return fmt.Sprintf("{%s : %s}", p.Var.Name, ty)
}

// RefExpr refers to a local binder (*core.LocalVar) or a definition slot (*core.DefVar).
type RefExpr struct {
	Pos source.Pos
	Var core.Var
}

func (e *RefExpr) GetPos() source.Pos { return e.Pos }
func (e *RefExpr) String() string     { return e.Var.VarName() }
func (e *RefExpr) exprNode()          {}

type LamExpr struct {
	Pos   source.Pos
	Param *Param
	Body  Expr
}

func (e *LamExpr) GetPos() source.Pos { return e.Pos }
func (e *LamExpr) exprNode()          {}
func (e *LamExpr) String() string {
	name := e.Param.Var.Name
	if !e.Param.Explicit {
		name = "{" + name + "}"
	}
	return fmt.Sprintf("\\%s => %s", name, e.Body)
}

type PiExpr struct {
	Pos   source.Pos
	Param *Param
	Body  Expr
}

func (e *PiExpr) GetPos() source.Pos { return e.Pos }
func (e *PiExpr) exprNode()          {}
func (e *PiExpr) String() string     { return fmt.Sprintf("Pi %s -> %s", e.Param, e.Body) }

// SigmaExpr is Sig p1 ... ** last; the last parameter's name is usually anonymous.
type SigmaExpr struct {
	Pos    source.Pos
	Params []*Param
}

func (e *SigmaExpr) GetPos() source.Pos { return e.Pos }
func (e *SigmaExpr) exprNode()          {}
func (e *SigmaExpr) String() string {
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		parts[i] = p.String()
	}
	return "Sig " + strings.Join(parts, " ** ")
}

// NamedArg is an application argument. Name is set for {x := e} style arguments.
type NamedArg struct {
	Expr     Expr
	Explicit bool
	Name     string
}

type AppExpr struct {
	Pos source.Pos
	Fn  Expr
	Arg NamedArg
}

func (e *AppExpr) GetPos() source.Pos { return e.Pos }
func (e *AppExpr) exprNode()          {}
func (e *AppExpr) String() string {
	if e.Arg.Explicit {
		return fmt.Sprintf("%s (%s)", e.Fn, e.Arg.Expr)
	}
	return fmt.Sprintf("%s {%s}", e.Fn, e.Arg.Expr)
}

type TupExpr struct {
	Pos   source.Pos
	Items []Expr
}

func (e *TupExpr) GetPos() source.Pos { return e.Pos }
func (e *TupExpr) exprNode()          {}
func (e *TupExpr) String() string {
	parts := make([]string, len(e.Items))
	for i, it := range e.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ProjExpr is either a numeric projection (Ix > 0) or a field access by name.
// The resolver fills ResolvedField when the name denotes a known field slot.
type ProjExpr struct {
	Pos           source.Pos
	Tup           Expr
	Ix            int
	Field         string
	ResolvedField *core.DefVar
}

func (e *ProjExpr) GetPos() source.Pos { return e.Pos }
func (e *ProjExpr) exprNode()          {}
func (e *ProjExpr) String() string {
	if e.Ix > 0 {
		return fmt.Sprintf("%s.%d", e.Tup, e.Ix)
	}
	return fmt.Sprintf("%s.%s", e.Tup, e.Field)
}

type UnivExpr struct {
	Pos  source.Pos
	Lift int
}

func (e *UnivExpr) GetPos() source.Pos { return e.Pos }
func (e *UnivExpr) exprNode()          {}
func (e *UnivExpr) String() string     { return "Type " + strconv.Itoa(e.Lift) }

// HoleExpr is `_` (Explicit false) or an interactive goal `{? e ?}` (Explicit true).
type HoleExpr struct {
	Pos      source.Pos
	Explicit bool
	Filling  Expr
}

func (e *HoleExpr) GetPos() source.Pos { return e.Pos }
func (e *HoleExpr) exprNode()          {}
func (e *HoleExpr) String() string {
	if !e.Explicit {
		return "_"
	}
	if e.Filling != nil {
		return "{? " + e.Filling.String() + " ?}"
	}
	return "{??}"
}

// FieldAssign is `| name bindings => body` inside a `new` expression.
type FieldAssign struct {
	Pos      source.Pos
	Name     string
	Bindings []*core.LocalVar
	Body     Expr
}

type NewExpr struct {
	Pos    source.Pos
	Struct Expr
	Fields []*FieldAssign
}

func (e *NewExpr) GetPos() source.Pos { return e.Pos }
func (e *NewExpr) exprNode()          {}
func (e *NewExpr) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("| %s => %s", f.Name, f.Body)
	}
	return fmt.Sprintf("new %s { %s }", e.Struct, strings.Join(parts, " "))
}

type LitIntExpr struct {
	Pos   source.Pos
	Value int
}

func (e *LitIntExpr) GetPos() source.Pos { return e.Pos }
func (e *LitIntExpr) exprNode()          {}
func (e *LitIntExpr) String() string     { return strconv.Itoa(e.Value) }

// LiftExpr raises the universe levels of its operand.
type LiftExpr struct {
	Pos    source.Pos
	Levels int
	Expr   Expr
}

func (e *LiftExpr) GetPos() source.Pos { return e.Pos }
func (e *LiftExpr) exprNode()          {}
func (e *LiftExpr) String() string     { return fmt.Sprintf("%s%s", strings.Repeat("ulift ", e.Levels), e.Expr) }
