package core

import "fmt"

// Term is a checked core expression. The set of implementations is closed:
// every consumer switches over the variants below.
type Term interface {
	fmt.Stringer
	isTerm()
}

// RefTerm references a local variable.
type RefTerm struct {
	Var *LocalVar
}

// FieldRefTerm references a struct field while the struct's own fields are being
// checked; `new` substitutes it by the field's value.
type FieldRefTerm struct {
	Field *DefVar
}

type LamTerm struct {
	Param Param
	Body  Term
}

type PiTerm struct {
	Param Param
	Body  Term
}

// AppTerm is an application whose head is neutral (not a lambda, not a meta).
type AppTerm struct {
	Fn  Term
	Arg Arg
}

type TupTerm struct {
	Items []Term
}

type SigmaTerm struct {
	Params Telescope
}

// ProjTerm projects the Ix-th component (1-based) of a tuple.
type ProjTerm struct {
	Tup Term
	Ix  int
}

// UnivTerm is the universe Type(Lift).
type UnivTerm struct {
	Lift int
}

// Definition calls carry the referenced slot and the full argument list.
type FnCall struct {
	Ref  *DefVar
	Args []Arg
}

type DataCall struct {
	Ref  *DefVar
	Args []Arg
}

// ConCall is a constructor applied to the data type's parameters (DataArgs,
// implicit) and its own arguments.
type ConCall struct {
	Ref      *DefVar
	DataRef  *DefVar
	DataArgs []Arg
	Args     []Arg
}

type StructCall struct {
	Ref  *DefVar
	Args []Arg
}

type PrimCall struct {
	Ref  *DefVar
	Args []Arg
}

// AccessTerm reads Field out of a struct value.
type AccessTerm struct {
	Of         Term
	Field      *DefVar
	StructArgs []Arg
	FieldArgs  []Arg
}

// FieldValue is one field of a struct literal. Values of fields with a
// non-empty self telescope are lambdas over that telescope.
type FieldValue struct {
	Field *DefVar
	Value Term
}

// NewTerm is a struct literal.
type NewTerm struct {
	Struct StructCall
	Fields []FieldValue
}

// MetaTerm is a metavariable applied to the variables of its creation scope
// (ContextArgs) and to further arguments.
type MetaTerm struct {
	Meta        *Meta
	ContextArgs []Arg
	Args        []Arg
}

// ErrorTerm stands in for a term that failed to elaborate.
type ErrorTerm struct {
	Desc string
	// Really is false for placeholders that do not correspond to a reported error.
	Really bool
}

// IntLitTerm is an integer literal of a Nat-shaped data type.
type IntLitTerm struct {
	Value int
	Shape NatShape
	Type  DataCall
}

// FormulaOp is an interval formula operator.
type FormulaOp int

const (
	FormulaLeft FormulaOp = iota
	FormulaRight
	FormulaMin
	FormulaMax
	FormulaInv
)

type FormulaTerm struct {
	Op   FormulaOp
	Args []Term
}

// PartialClause is one face of a partial element: Value under condition Cond.
type PartialClause struct {
	Cond  Term
	Value Term
}

type PartialTerm struct {
	Clauses []PartialClause
	RhsType Term
}

// PathTerm is the (possibly multi-dimensional) path type.
type PathTerm struct {
	Dims    []*LocalVar
	Type    Term
	Partial PartialTerm
}

type PLamTerm struct {
	Dims []*LocalVar
	Body Term
}

type PAppTerm struct {
	Of   Term
	Args []Term
	Cube PathTerm
}

type CoeTerm struct {
	Type  Term
	Restr Term
}

func (RefTerm) isTerm()      {}
func (FieldRefTerm) isTerm() {}
func (LamTerm) isTerm()      {}
func (PiTerm) isTerm()       {}
func (AppTerm) isTerm()      {}
func (TupTerm) isTerm()      {}
func (SigmaTerm) isTerm()    {}
func (ProjTerm) isTerm()     {}
func (UnivTerm) isTerm()     {}
func (FnCall) isTerm()       {}
func (DataCall) isTerm()     {}
func (ConCall) isTerm()      {}
func (StructCall) isTerm()   {}
func (PrimCall) isTerm()     {}
func (AccessTerm) isTerm()   {}
func (NewTerm) isTerm()      {}
func (MetaTerm) isTerm()     {}
func (ErrorTerm) isTerm()    {}
func (IntLitTerm) isTerm()   {}
func (FormulaTerm) isTerm()  {}
func (PartialTerm) isTerm()  {}
func (PathTerm) isTerm()     {}
func (PLamTerm) isTerm()     {}
func (PAppTerm) isTerm()     {}
func (CoeTerm) isTerm()      {}

// Arg is an argument with its explicitness.
type Arg struct {
	Term     Term
	Explicit bool
}

// Param is a telescope entry.
type Param struct {
	Var      *LocalVar
	Type     Term
	Explicit bool
}

func (p Param) ToTerm() Term { return RefTerm{Var: p.Var} }
func (p Param) ToArg() Arg   { return Arg{Term: p.ToTerm(), Explicit: p.Explicit} }

// Telescope is a dependency-ordered parameter list: the type of entry i may
// mention only the variables of entries 0..i-1.
type Telescope []Param

// Args turns the telescope into references to its own variables.
func (t Telescope) Args() []Arg {
	out := make([]Arg, len(t))
	for i, p := range t {
		out[i] = p.ToArg()
	}
	return out
}

func (t Telescope) Vars() []*LocalVar {
	out := make([]*LocalVar, len(t))
	for i, p := range t {
		out[i] = p.Var
	}
	return out
}

// Implicit returns a copy with every parameter marked implicit.
func (t Telescope) Implicit() Telescope {
	out := make(Telescope, len(t))
	for i, p := range t {
		out[i] = Param{Var: p.Var, Type: p.Type, Explicit: false}
	}
	return out
}

// MakePi folds the telescope into nested pi types ending in result.
func MakePi(tele Telescope, result Term) Term {
	for i := len(tele) - 1; i >= 0; i-- {
		result = PiTerm{Param: tele[i], Body: result}
	}
	return result
}

// MakeLam folds the telescope into nested lambdas around body.
func MakeLam(tele Telescope, body Term) Term {
	for i := len(tele) - 1; i >= 0; i-- {
		body = LamTerm{Param: tele[i], Body: body}
	}
	return body
}

// MakeApp applies f to arg, beta-reducing lambdas and extending meta spines so
// that AppTerm heads are always neutral.
func MakeApp(f Term, arg Arg) Term {
	switch fn := f.(type) {
	case LamTerm:
		return Substitute(fn.Body, Subst{fn.Param.Var: arg.Term})
	case MetaTerm:
		args := make([]Arg, len(fn.Args), len(fn.Args)+1)
		copy(args, fn.Args)
		return MetaTerm{Meta: fn.Meta, ContextArgs: fn.ContextArgs, Args: append(args, arg)}
	}
	return AppTerm{Fn: f, Arg: arg}
}

// MakeApps applies f to every argument in order.
func MakeApps(f Term, args []Arg) Term {
	for _, a := range args {
		f = MakeApp(f, a)
	}
	return f
}
