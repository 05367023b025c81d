package core

import "github.com/funvibe/tyck/internal/diagnostics"

// DefKind is what a DefVar slot stands for.
type DefKind int

const (
	KindFn DefKind = iota
	KindData
	KindCtor
	KindStruct
	KindField
	KindPrim
)

func (k DefKind) String() string {
	switch k {
	case KindFn:
		return "function"
	case KindData:
		return "data"
	case KindCtor:
		return "constructor"
	case KindStruct:
		return "struct"
	case KindField:
		return "field"
	case KindPrim:
		return "primitive"
	}
	return "unknown"
}

// Signature is the checked header of a definition. For constructors and fields
// the first Owner parameters are the (implicit) parameters of the enclosing
// data or struct.
type Signature struct {
	Telescope Telescope
	Result    Term
	Owner     int
}

// Type is the pi type of the definition.
func (s *Signature) Type() Term {
	return MakePi(s.Telescope, s.Result)
}

// SelfTelescope drops the owner parameters.
func (s *Signature) SelfTelescope() Telescope {
	return s.Telescope[s.Owner:]
}

// DefVar is the slot shared by every reference to one top-level declaration.
// It starts unchecked, holding the resolved declaration (and, once its header
// is checked, a signature) and is filled with the checked definition exactly
// once.
type DefVar struct {
	Name  string
	Kind  DefKind
	Index int
	// Concrete is the resolved declaration, opaque to the core.
	Concrete any
	// Owner is the data type of a constructor or the struct of a field.
	Owner *DefVar
	// Members are the constructors of a data type or the fields of a struct, in order.
	Members []*DefVar

	signature *Signature
	core      Def
}

func (v *DefVar) VarName() string { return v.Name }
func (v *DefVar) String() string  { return v.Name }

// Core returns the checked definition, or nil while unchecked.
func (v *DefVar) Core() Def { return v.core }

func (v *DefVar) IsChecked() bool { return v.core != nil }

// Signature returns the checked header, or nil if the header was not checked.
func (v *DefVar) Signature() *Signature {
	if v.core != nil {
		return v.core.Signature()
	}
	return v.signature
}

// SetSignature records the checked header of an unchecked slot.
func (v *DefVar) SetSignature(sig *Signature) {
	if v.core != nil {
		panic(diagnostics.Internalf("signature of %s set after it was checked", v.Name))
	}
	v.signature = sig
}

// Fill transitions the slot to checked. Filling twice is an internal error.
func (v *DefVar) Fill(def Def) {
	if v.core != nil {
		panic(diagnostics.Internalf("definition %s filled twice", v.Name))
	}
	if def.Ref() != v {
		panic(diagnostics.Internalf("definition %s filled into slot %s", def.Ref().Name, v.Name))
	}
	v.core = def
}

// DefTable is the arena of definition slots of one checking run. Slots are
// addressed by their stable index.
type DefTable struct {
	slots []*DefVar
}

// Declare allocates a new unchecked slot.
func (t *DefTable) Declare(name string, kind DefKind, concrete any) *DefVar {
	v := &DefVar{Name: name, Kind: kind, Index: len(t.slots), Concrete: concrete}
	t.slots = append(t.slots, v)
	return v
}

// DeclareMember allocates a constructor or field slot owned by owner.
func (t *DefTable) DeclareMember(owner *DefVar, name string, kind DefKind, concrete any) *DefVar {
	v := t.Declare(name, kind, concrete)
	v.Owner = owner
	owner.Members = append(owner.Members, v)
	return v
}

func (t *DefTable) Get(index int) *DefVar { return t.slots[index] }
func (t *DefTable) Len() int              { return len(t.slots) }

// Slots returns every slot in declaration order.
func (t *DefTable) Slots() []*DefVar { return t.slots }

// Modifier flags of function definitions.
type Modifier int

const (
	ModInline Modifier = 1 << iota
	ModOverlap
)

func (m Modifier) Has(flag Modifier) bool { return m&flag != 0 }

// Def is a checked definition.
type Def interface {
	Ref() *DefVar
	Signature() *Signature
	isDef()
}

type FnDef struct {
	Var       *DefVar
	Tele      Telescope
	Result    Term
	Modifiers Modifier
	// Exactly one of Body and Clauses is used.
	Body    Term
	Clauses []Clause
}

type DataDef struct {
	Var    *DefVar
	Tele   Telescope
	Result Term
	Ctors  []*CtorDef
}

type CtorDef struct {
	Var       *DefVar
	DataRef   *DefVar
	OwnerTele Telescope
	SelfTele  Telescope
	Result    Term
}

type StructDef struct {
	Var    *DefVar
	Tele   Telescope
	Result Term
	Fields []*FieldDef
}

type FieldDef struct {
	Var       *DefVar
	StructRef *DefVar
	OwnerTele Telescope
	SelfTele  Telescope
	Result    Term
	// Body is the default value (a lambda over SelfTele when it is non-empty), or nil.
	Body Term
}

type PrimDef struct {
	Var    *DefVar
	Tele   Telescope
	Result Term
	ID     PrimID
}

func (d *FnDef) Ref() *DefVar     { return d.Var }
func (d *DataDef) Ref() *DefVar   { return d.Var }
func (d *CtorDef) Ref() *DefVar   { return d.Var }
func (d *StructDef) Ref() *DefVar { return d.Var }
func (d *FieldDef) Ref() *DefVar  { return d.Var }
func (d *PrimDef) Ref() *DefVar   { return d.Var }

func (d *FnDef) Signature() *Signature     { return &Signature{Telescope: d.Tele, Result: d.Result} }
func (d *DataDef) Signature() *Signature   { return &Signature{Telescope: d.Tele, Result: d.Result} }
func (d *StructDef) Signature() *Signature { return &Signature{Telescope: d.Tele, Result: d.Result} }
func (d *PrimDef) Signature() *Signature   { return &Signature{Telescope: d.Tele, Result: d.Result} }

func (d *CtorDef) Signature() *Signature {
	return &Signature{Telescope: concatTele(d.OwnerTele.Implicit(), d.SelfTele), Result: d.Result, Owner: len(d.OwnerTele)}
}

func (d *FieldDef) Signature() *Signature {
	return &Signature{Telescope: concatTele(d.OwnerTele.Implicit(), d.SelfTele), Result: d.Result, Owner: len(d.OwnerTele)}
}

func (*FnDef) isDef()     {}
func (*DataDef) isDef()   {}
func (*CtorDef) isDef()   {}
func (*StructDef) isDef() {}
func (*FieldDef) isDef()  {}
func (*PrimDef) isDef()   {}

func concatTele(a, b Telescope) Telescope {
	out := make(Telescope, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
