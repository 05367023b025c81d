package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/source"
)

func braced(explicit bool, s string) string {
	if explicit {
		return s
	}
	return "{" + s + "}"
}

type BindPattern struct {
	Pos      source.Pos
	Var      *core.LocalVar
	Explicit bool
}

func (p *BindPattern) GetPos() source.Pos { return p.Pos }
func (p *BindPattern) IsExplicit() bool   { return p.Explicit }
func (p *BindPattern) String() string     { return braced(p.Explicit, p.Var.Name) }
func (p *BindPattern) patternNode()       {}

// CalmFacePattern is `_`: matches anything without binding.
type CalmFacePattern struct {
	Pos      source.Pos
	Explicit bool
}

func (p *CalmFacePattern) GetPos() source.Pos { return p.Pos }
func (p *CalmFacePattern) IsExplicit() bool   { return p.Explicit }
func (p *CalmFacePattern) String() string     { return braced(p.Explicit, "_") }
func (p *CalmFacePattern) patternNode()       {}

type CtorPattern struct {
	Pos      source.Pos
	Ctor     *core.DefVar
	Params   []Pattern
	Explicit bool
}

func (p *CtorPattern) GetPos() source.Pos { return p.Pos }
func (p *CtorPattern) IsExplicit() bool   { return p.Explicit }
func (p *CtorPattern) patternNode()       {}
func (p *CtorPattern) String() string {
	parts := []string{p.Ctor.Name}
	for _, sub := range p.Params {
		s := sub.String()
		if c, ok := sub.(*CtorPattern); ok && c.Explicit && len(c.Params) > 0 {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return braced(p.Explicit, strings.Join(parts, " "))
}

type TuplePattern struct {
	Pos      source.Pos
	Pats     []Pattern
	Explicit bool
}

func (p *TuplePattern) GetPos() source.Pos { return p.Pos }
func (p *TuplePattern) IsExplicit() bool   { return p.Explicit }
func (p *TuplePattern) patternNode()       {}
func (p *TuplePattern) String() string {
	parts := make([]string, len(p.Pats))
	for i, sub := range p.Pats {
		parts[i] = sub.String()
	}
	return braced(p.Explicit, "("+strings.Join(parts, ", ")+")")
}

type NumberPattern struct {
	Pos      source.Pos
	Value    int
	Explicit bool
}

func (p *NumberPattern) GetPos() source.Pos { return p.Pos }
func (p *NumberPattern) IsExplicit() bool   { return p.Explicit }
func (p *NumberPattern) String() string     { return braced(p.Explicit, strconv.Itoa(p.Value)) }
func (p *NumberPattern) patternNode()       {}

// AbsurdPattern is `()`: the position's type has no constructors.
type AbsurdPattern struct {
	Pos      source.Pos
	Explicit bool
}

func (p *AbsurdPattern) GetPos() source.Pos { return p.Pos }
func (p *AbsurdPattern) IsExplicit() bool   { return p.Explicit }
func (p *AbsurdPattern) String() string     { return braced(p.Explicit, "()") }
func (p *AbsurdPattern) patternNode()       {}

// Clause is one pattern-matching clause. A nil Body is an absurd clause.
type Clause struct {
	Pos      source.Pos
	Patterns []Pattern
	Body     Expr
}

func (c *Clause) String() string {
	parts := make([]string, len(c.Patterns))
	for i, p := range c.Patterns {
		parts[i] = p.String()
	}
	if c.Body == nil {
		return "| " + strings.Join(parts, ", ")
	}
	return "| " + strings.Join(parts, ", ") + " => " + c.Body.String()
}
