package ast

import (
	"fmt"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/source"
)

// DataDecl declares an inductive type. Result nil means Type 0.
type DataDecl struct {
	Pos    source.Pos
	Ref    *core.DefVar
	Tele   []*Param
	Result Expr
	Ctors  []*DataCtor
}

// DataCtor is one constructor. Its telescope may mention the data parameters.
type DataCtor struct {
	Pos  source.Pos
	Ref  *core.DefVar
	Tele []*Param
}

// StructDecl declares a record type with named, possibly defaulted, fields.
type StructDecl struct {
	Pos    source.Pos
	Ref    *core.DefVar
	Tele   []*Param
	Result Expr
	Fields []*StructField
}

// StructField may refer to earlier fields through their slots. Body is the
// default value, or nil.
type StructField struct {
	Pos    source.Pos
	Ref    *core.DefVar
	Tele   []*Param
	Result Expr
	Body   Expr
}

// FnDecl is a function defined either by an expression Body or by Clauses.
type FnDecl struct {
	Pos       source.Pos
	Ref       *core.DefVar
	Modifiers core.Modifier
	Tele      []*Param
	Result    Expr
	Body      Expr
	Clauses   []*Clause
}

// PrimDecl brings a built-in primitive into scope.
type PrimDecl struct {
	Pos source.Pos
	Ref *core.DefVar
}

func (d *DataDecl) GetPos() source.Pos   { return d.Pos }
func (d *StructDecl) GetPos() source.Pos { return d.Pos }
func (d *FnDecl) GetPos() source.Pos     { return d.Pos }
func (d *PrimDecl) GetPos() source.Pos   { return d.Pos }

func (d *DataDecl) String() string   { return "data " + d.Ref.Name }
func (d *StructDecl) String() string { return "struct " + d.Ref.Name }
func (d *FnDecl) String() string     { return "def " + d.Ref.Name }
func (d *PrimDecl) String() string   { return fmt.Sprintf("prim %s", d.Ref.Name) }

func (d *DataDecl) declNode()   {}
func (d *StructDecl) declNode() {}
func (d *FnDecl) declNode()     {}
func (d *PrimDecl) declNode()   {}

// DeclRef returns the slot a declaration defines.
func DeclRef(d Decl) *core.DefVar {
	switch d := d.(type) {
	case *DataDecl:
		return d.Ref
	case *StructDecl:
		return d.Ref
	case *FnDecl:
		return d.Ref
	case *PrimDecl:
		return d.Ref
	}
	return nil
}
