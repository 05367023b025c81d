// Package prelude builds resolved programs: the standard library checked by
// the command line tool, and the fixtures of the checker's tests.
package prelude

import (
	"github.com/funvibe/tyck/internal/ast"
	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/source"
)

// Builder assembles a resolved program. Every node gets its own line so that
// diagnostics can be told apart.
type Builder struct {
	Table *core.DefTable
	file  string
	line  int
	decls []ast.Decl
}

func NewBuilder(file string) *Builder {
	return &Builder{Table: &core.DefTable{}, file: file}
}

// Pos returns the next position.
func (b *Builder) Pos() source.Pos {
	b.line++
	return source.Pos{File: b.file, Line: b.line, Column: 1}
}

// Program returns the declarations added so far.
func (b *Builder) Program() *ast.Program {
	return &ast.Program{File: b.file, Decls: b.decls}
}

// Var makes a fresh local binder.
func (b *Builder) Var(name string) *core.LocalVar {
	return core.NewLocalVar(name, b.Pos())
}

func (b *Builder) Param(v *core.LocalVar, ty ast.Expr) *ast.Param {
	return &ast.Param{Pos: v.Pos, Var: v, Type: ty, Explicit: true}
}

func (b *Builder) Implicit(v *core.LocalVar, ty ast.Expr) *ast.Param {
	return &ast.Param{Pos: v.Pos, Var: v, Type: ty, Explicit: false}
}

func (b *Builder) Ref(v core.Var) ast.Expr {
	return &ast.RefExpr{Pos: b.Pos(), Var: v}
}

// App applies fn to explicit arguments.
func (b *Builder) App(fn ast.Expr, args ...ast.Expr) ast.Expr {
	for _, a := range args {
		fn = &ast.AppExpr{Pos: b.Pos(), Fn: fn, Arg: ast.NamedArg{Expr: a, Explicit: true}}
	}
	return fn
}

// AppImplicit applies fn to one implicit argument.
func (b *Builder) AppImplicit(fn, arg ast.Expr) ast.Expr {
	return &ast.AppExpr{Pos: b.Pos(), Fn: fn, Arg: ast.NamedArg{Expr: arg}}
}

// AppNamed applies fn to the implicit argument called name.
func (b *Builder) AppNamed(fn ast.Expr, name string, arg ast.Expr) ast.Expr {
	return &ast.AppExpr{Pos: b.Pos(), Fn: fn, Arg: ast.NamedArg{Expr: arg, Name: name}}
}

func (b *Builder) Lam(p *ast.Param, body ast.Expr) ast.Expr {
	return &ast.LamExpr{Pos: b.Pos(), Param: p, Body: body}
}

// Fun is an explicit lambda with an unannotated parameter.
func (b *Builder) Fun(v *core.LocalVar, body ast.Expr) ast.Expr {
	return b.Lam(&ast.Param{Pos: v.Pos, Var: v, Explicit: true}, body)
}

func (b *Builder) Pi(p *ast.Param, body ast.Expr) ast.Expr {
	return &ast.PiExpr{Pos: b.Pos(), Param: p, Body: body}
}

// Arrow is a non-dependent function type.
func (b *Builder) Arrow(dom, cod ast.Expr) ast.Expr {
	return b.Pi(b.Param(b.Var(config.AnonymousPrefix), dom), cod)
}

func (b *Builder) Sigma(params ...*ast.Param) ast.Expr {
	return &ast.SigmaExpr{Pos: b.Pos(), Params: params}
}

// Pair is the non-dependent sigma of two types.
func (b *Builder) Pair(fst, snd ast.Expr) ast.Expr {
	return b.Sigma(b.Param(b.Var(config.AnonymousPrefix), fst), b.Param(b.Var(config.AnonymousPrefix), snd))
}

func (b *Builder) Tup(items ...ast.Expr) ast.Expr {
	return &ast.TupExpr{Pos: b.Pos(), Items: items}
}

// Proj is the numeric projection e.ix, counting from 1.
func (b *Builder) Proj(e ast.Expr, ix int) ast.Expr {
	return &ast.ProjExpr{Pos: b.Pos(), Tup: e, Ix: ix}
}

// Access is the field projection e.field.
func (b *Builder) Access(e ast.Expr, field *core.DefVar) ast.Expr {
	return &ast.ProjExpr{Pos: b.Pos(), Tup: e, Field: field.Name, ResolvedField: field}
}

func (b *Builder) Univ(lift int) ast.Expr {
	return &ast.UnivExpr{Pos: b.Pos(), Lift: lift}
}

// Hole is `_`, left to the unifier.
func (b *Builder) Hole() ast.Expr {
	return &ast.HoleExpr{Pos: b.Pos()}
}

// Goal is `{??}`, reported with its type.
func (b *Builder) Goal(filling ast.Expr) ast.Expr {
	return &ast.HoleExpr{Pos: b.Pos(), Explicit: true, Filling: filling}
}

func (b *Builder) Lit(n int) ast.Expr {
	return &ast.LitIntExpr{Pos: b.Pos(), Value: n}
}

func (b *Builder) Lift(levels int, e ast.Expr) ast.Expr {
	return &ast.LiftExpr{Pos: b.Pos(), Levels: levels, Expr: e}
}

func (b *Builder) New(st ast.Expr, fields ...*ast.FieldAssign) ast.Expr {
	return &ast.NewExpr{Pos: b.Pos(), Struct: st, Fields: fields}
}

// Assign is `| name bindings => body` of a new expression.
func (b *Builder) Assign(field *core.DefVar, body ast.Expr, bindings ...*core.LocalVar) *ast.FieldAssign {
	return &ast.FieldAssign{Pos: b.Pos(), Name: field.Name, Bindings: bindings, Body: body}
}

func (b *Builder) PVar(v *core.LocalVar) ast.Pattern {
	return &ast.BindPattern{Pos: v.Pos, Var: v, Explicit: true}
}

func (b *Builder) PImplicit(v *core.LocalVar) ast.Pattern {
	return &ast.BindPattern{Pos: v.Pos, Var: v}
}

func (b *Builder) PAny() ast.Pattern {
	return &ast.CalmFacePattern{Pos: b.Pos(), Explicit: true}
}

func (b *Builder) PCtor(ctor *core.DefVar, params ...ast.Pattern) ast.Pattern {
	return &ast.CtorPattern{Pos: b.Pos(), Ctor: ctor, Params: params, Explicit: true}
}

func (b *Builder) PLit(n int) ast.Pattern {
	return &ast.NumberPattern{Pos: b.Pos(), Value: n, Explicit: true}
}

func (b *Builder) PTup(pats ...ast.Pattern) ast.Pattern {
	return &ast.TuplePattern{Pos: b.Pos(), Pats: pats, Explicit: true}
}

func (b *Builder) PAbsurd() ast.Pattern {
	return &ast.AbsurdPattern{Pos: b.Pos(), Explicit: true}
}

// Clause builds `| pats => body`; a nil body makes an absurd clause.
func (b *Builder) Clause(body ast.Expr, pats ...ast.Pattern) *ast.Clause {
	return &ast.Clause{Pos: b.Pos(), Patterns: pats, Body: body}
}

// DataBuilder adds constructors to a data declaration.
type DataBuilder struct {
	b    *Builder
	Decl *ast.DataDecl
}

// Data declares a data type. A nil result means Type 0.
func (b *Builder) Data(name string, result ast.Expr, tele ...*ast.Param) *DataBuilder {
	decl := &ast.DataDecl{Pos: b.Pos(), Tele: tele, Result: result}
	decl.Ref = b.Table.Declare(name, core.KindData, decl)
	b.decls = append(b.decls, decl)
	return &DataBuilder{b: b, Decl: decl}
}

func (d *DataBuilder) Ref() *core.DefVar { return d.Decl.Ref }

// Ctor adds a constructor and returns its slot.
func (d *DataBuilder) Ctor(name string, tele ...*ast.Param) *core.DefVar {
	ctor := &ast.DataCtor{Pos: d.b.Pos(), Tele: tele}
	ctor.Ref = d.b.Table.DeclareMember(d.Decl.Ref, name, core.KindCtor, ctor)
	d.Decl.Ctors = append(d.Decl.Ctors, ctor)
	return ctor.Ref
}

// StructBuilder adds fields to a struct declaration.
type StructBuilder struct {
	b    *Builder
	Decl *ast.StructDecl
}

func (b *Builder) Struct(name string, result ast.Expr, tele ...*ast.Param) *StructBuilder {
	decl := &ast.StructDecl{Pos: b.Pos(), Tele: tele, Result: result}
	decl.Ref = b.Table.Declare(name, core.KindStruct, decl)
	b.decls = append(b.decls, decl)
	return &StructBuilder{b: b, Decl: decl}
}

func (s *StructBuilder) Ref() *core.DefVar { return s.Decl.Ref }

// Field adds a field with an optional default body.
func (s *StructBuilder) Field(name string, result, body ast.Expr, tele ...*ast.Param) *core.DefVar {
	field := &ast.StructField{Pos: s.b.Pos(), Tele: tele, Result: result, Body: body}
	field.Ref = s.b.Table.DeclareMember(s.Decl.Ref, name, core.KindField, field)
	s.Decl.Fields = append(s.Decl.Fields, field)
	return field.Ref
}

// FnBuilder fills in a function declared ahead of its body, so that the body
// may refer to the function itself.
type FnBuilder struct {
	b    *Builder
	Decl *ast.FnDecl
}

func (b *Builder) Fn(name string, mods core.Modifier) *FnBuilder {
	decl := &ast.FnDecl{Pos: b.Pos(), Modifiers: mods}
	decl.Ref = b.Table.Declare(name, core.KindFn, decl)
	b.decls = append(b.decls, decl)
	return &FnBuilder{b: b, Decl: decl}
}

func (f *FnBuilder) Ref() *core.DefVar { return f.Decl.Ref }

func (f *FnBuilder) Signature(result ast.Expr, tele ...*ast.Param) *FnBuilder {
	f.Decl.Tele, f.Decl.Result = tele, result
	return f
}

func (f *FnBuilder) Body(body ast.Expr) *FnBuilder {
	f.Decl.Body = body
	return f
}

func (f *FnBuilder) Clauses(clauses ...*ast.Clause) *FnBuilder {
	f.Decl.Clauses = clauses
	return f
}

// Prim declares a primitive by name.
func (b *Builder) Prim(name string) *core.DefVar {
	decl := &ast.PrimDecl{Pos: b.Pos()}
	decl.Ref = b.Table.Declare(name, core.KindPrim, decl)
	b.decls = append(b.decls, decl)
	return decl.Ref
}
