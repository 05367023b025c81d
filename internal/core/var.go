package core

import (
	"sync/atomic"

	"github.com/funvibe/tyck/internal/config"
	"github.com/funvibe/tyck/internal/source"
)

// Var is anything a term can refer to by identity: local binders and
// top-level definition slots.
type Var interface {
	VarName() string
}

var localCounter atomic.Uint64

// LocalVar is a bound variable. Two references denote the same variable iff they
// point to the same LocalVar; the name is only for display.
type LocalVar struct {
	Name string
	Pos  source.Pos
	id   uint64
}

func NewLocalVar(name string, pos source.Pos) *LocalVar {
	return &LocalVar{Name: name, Pos: pos, id: localCounter.Add(1)}
}

// Anonymous returns a fresh variable the user did not name.
func Anonymous() *LocalVar {
	return NewLocalVar(config.AnonymousPrefix, source.None)
}

func (v *LocalVar) VarName() string { return v.Name }
func (v *LocalVar) String() string  { return v.Name }

// Rename returns a fresh variable with the same name and position.
func (v *LocalVar) Rename() *LocalVar {
	return NewLocalVar(v.Name, v.Pos)
}

func (v *LocalVar) IsAnonymous() bool {
	return v.Name == config.AnonymousPrefix
}
