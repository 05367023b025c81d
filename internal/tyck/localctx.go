package tyck

import "github.com/funvibe/tyck/internal/core"

// LocalCtx maps the local variables in scope to their types, in binding order.
// It is owned by one ExprTycker.
type LocalCtx struct {
	vars  []*core.LocalVar
	types map[*core.LocalVar]core.Term
}

func NewLocalCtx() *LocalCtx {
	return &LocalCtx{types: make(map[*core.LocalVar]core.Term)}
}

// Get returns the type of v.
func (c *LocalCtx) Get(v *core.LocalVar) (core.Term, bool) {
	t, ok := c.types[v]
	return t, ok
}

// Put binds v. Rebinding an existing variable only updates its type.
func (c *LocalCtx) Put(v *core.LocalVar, ty core.Term) {
	if _, ok := c.types[v]; !ok {
		c.vars = append(c.vars, v)
	}
	c.types[v] = ty
}

// PutTele binds every parameter of tele in order.
func (c *LocalCtx) PutTele(tele core.Telescope) {
	for _, p := range tele {
		c.Put(p.Var, p.Type)
	}
}

// Remove unbinds the given variables.
func (c *LocalCtx) Remove(vars ...*core.LocalVar) {
	for _, v := range vars {
		delete(c.types, v)
	}
	kept := c.vars[:0]
	for _, v := range c.vars {
		if _, ok := c.types[v]; ok {
			kept = append(kept, v)
		}
	}
	c.vars = kept
}

// With runs f with p bound, unbinding it afterwards.
func (c *LocalCtx) With(p core.Param, f func() (Result, error)) (Result, error) {
	c.Put(p.Var, p.Type)
	defer c.Remove(p.Var)
	return f()
}

// Telescope returns the context as explicit parameters in binding order.
func (c *LocalCtx) Telescope() core.Telescope {
	tele := make(core.Telescope, len(c.vars))
	for i, v := range c.vars {
		tele[i] = core.Param{Var: v, Type: c.types[v], Explicit: true}
	}
	return tele
}

func (c *LocalCtx) Len() int { return len(c.vars) }

// Clone returns an independent snapshot.
func (c *LocalCtx) Clone() *LocalCtx {
	out := NewLocalCtx()
	for _, v := range c.vars {
		out.Put(v, c.types[v])
	}
	return out
}
