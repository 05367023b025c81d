package core

import (
	"fmt"

	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/source"
)

// PrimID identifies a built-in primitive.
type PrimID int

const (
	PrimInterval PrimID = iota
	PrimLeft
	PrimRight
	PrimMin
	PrimMax
	PrimInv
)

var primNames = map[string]PrimID{
	config.PrimIntervalName: PrimInterval,
	config.PrimLeftName:     PrimLeft,
	config.PrimRightName:    PrimRight,
	config.PrimMinName:      PrimMin,
	config.PrimMaxName:      PrimMax,
	config.PrimInvName:      PrimInv,
}

func (id PrimID) String() string {
	for name, v := range primNames {
		if v == id {
			return name
		}
	}
	return fmt.Sprintf("prim#%d", int(id))
}

// PrimFactory builds the definitions of declared primitives. Every primitive
// except I itself mentions I, so I must be declared first.
type PrimFactory struct {
	defs map[PrimID]*PrimDef
}

func NewPrimFactory() *PrimFactory {
	return &PrimFactory{defs: make(map[PrimID]*PrimDef)}
}

// IsPrim reports whether name is a known primitive.
func IsPrim(name string) bool {
	_, ok := primNames[name]
	return ok
}

// Lookup returns a previously created primitive.
func (f *PrimFactory) Lookup(id PrimID) (*PrimDef, bool) {
	def, ok := f.defs[id]
	return def, ok
}

// Create builds the definition for slot v and fills it.
func (f *PrimFactory) Create(v *DefVar) (*PrimDef, error) {
	id, ok := primNames[v.Name]
	if !ok {
		return nil, fmt.Errorf("unknown primitive %s", v.Name)
	}
	if _, dup := f.defs[id]; dup {
		return nil, fmt.Errorf("primitive %s declared twice", v.Name)
	}
	def := &PrimDef{Var: v, ID: id}
	if id == PrimInterval {
		def.Result = UnivTerm{Lift: 0}
	} else {
		interval, ok := f.defs[PrimInterval]
		if !ok {
			return nil, fmt.Errorf("primitive %s requires %s", v.Name, config.PrimIntervalName)
		}
		iType := PrimCall{Ref: interval.Var}
		def.Result = iType
		switch id {
		case PrimMin, PrimMax:
			def.Tele = Telescope{
				{Var: NewLocalVar("i", source.None), Type: iType, Explicit: true},
				{Var: NewLocalVar("j", source.None), Type: iType, Explicit: true},
			}
		case PrimInv:
			def.Tele = Telescope{{Var: NewLocalVar("i", source.None), Type: iType, Explicit: true}}
		}
	}
	f.defs[id] = def
	v.Fill(def)
	return def, nil
}

// ReducePrim computes a saturated primitive call, or returns nil when it is stuck.
// whnf is applied to arguments before inspecting them.
func (f *PrimFactory) ReducePrim(call PrimCall, whnf func(Term) Term) Term {
	def, ok := call.Ref.Core().(*PrimDef)
	if !ok || len(call.Args) != len(def.Tele) {
		return nil
	}
	switch def.ID {
	case PrimInv:
		switch f.endpoint(whnf(call.Args[0].Term)) {
		case PrimLeft:
			return f.endpointTerm(PrimRight)
		case PrimRight:
			return f.endpointTerm(PrimLeft)
		}
		if inner, ok := whnf(call.Args[0].Term).(PrimCall); ok && f.idOf(inner) == PrimInv {
			return whnf(inner.Args[0].Term)
		}
	case PrimMin, PrimMax:
		absorb, unit := PrimLeft, PrimRight
		if def.ID == PrimMax {
			absorb, unit = PrimRight, PrimLeft
		}
		i, j := whnf(call.Args[0].Term), whnf(call.Args[1].Term)
		switch {
		case f.endpoint(i) == absorb || f.endpoint(j) == absorb:
			return f.endpointTerm(absorb)
		case f.endpoint(i) == unit:
			return j
		case f.endpoint(j) == unit:
			return i
		}
	}
	return nil
}

func (f *PrimFactory) idOf(call PrimCall) PrimID {
	if def, ok := call.Ref.Core().(*PrimDef); ok {
		return def.ID
	}
	return -1
}

// endpoint returns PrimLeft or PrimRight for interval endpoints, -1 otherwise.
func (f *PrimFactory) endpoint(t Term) PrimID {
	switch t := t.(type) {
	case PrimCall:
		if id := f.idOf(t); id == PrimLeft || id == PrimRight {
			return id
		}
	case FormulaTerm:
		switch t.Op {
		case FormulaLeft:
			return PrimLeft
		case FormulaRight:
			return PrimRight
		}
	}
	return -1
}

func (f *PrimFactory) endpointTerm(id PrimID) Term {
	if def, ok := f.defs[id]; ok {
		return PrimCall{Ref: def.Var}
	}
	if id == PrimLeft {
		return FormulaTerm{Op: FormulaLeft}
	}
	return FormulaTerm{Op: FormulaRight}
}

// ReduceFormula applies the interval laws to a formula, or returns nil when stuck.
func (f *PrimFactory) ReduceFormula(t FormulaTerm, whnf func(Term) Term) Term {
	switch t.Op {
	case FormulaInv:
		switch f.endpoint(whnf(t.Args[0])) {
		case PrimLeft:
			return FormulaTerm{Op: FormulaRight}
		case PrimRight:
			return FormulaTerm{Op: FormulaLeft}
		}
	case FormulaMin, FormulaMax:
		absorb, unit := PrimLeft, PrimRight
		if t.Op == FormulaMax {
			absorb, unit = PrimRight, PrimLeft
		}
		i, j := whnf(t.Args[0]), whnf(t.Args[1])
		switch {
		case f.endpoint(i) == absorb || f.endpoint(j) == absorb:
			if absorb == PrimLeft {
				return FormulaTerm{Op: FormulaLeft}
			}
			return FormulaTerm{Op: FormulaRight}
		case f.endpoint(i) == unit:
			return j
		case f.endpoint(j) == unit:
			return i
		}
	}
	return nil
}
