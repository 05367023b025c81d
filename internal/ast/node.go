package ast

import "github.com/funvibe/tyck/internal/source"

// Node is the base interface for all resolved syntax nodes.
type Node interface {
	GetPos() source.Pos
	String() string
}

// Expr is a resolved expression. Names already point at binders or slots.
type Expr interface {
	Node
	exprNode()
}

// Pattern is a resolved clause pattern.
type Pattern interface {
	Node
	IsExplicit() bool
	patternNode()
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// Program is a resolved list of declarations in source order.
type Program struct {
	File  string
	Decls []Decl
}
