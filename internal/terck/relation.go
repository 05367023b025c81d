package terck

// Relation is how the argument of a call relates to a parameter of the caller.
type Relation int

const (
	RelUnk Relation = iota
	RelEq
	RelLt
)

func (r Relation) String() string {
	switch r {
	case RelLt:
		return "<"
	case RelEq:
		return "="
	}
	return "?"
}

// Mul chains two relations along a path of calls.
func (r Relation) Mul(o Relation) Relation {
	switch {
	case r == RelUnk || o == RelUnk:
		return RelUnk
	case r == RelLt || o == RelLt:
		return RelLt
	}
	return RelEq
}

// Add keeps the better of two alternative relations.
func (r Relation) Add(o Relation) Relation {
	if o > r {
		return o
	}
	return r
}

// weakness ranks relations by how little they promise.
func (r Relation) weakness() int {
	switch r {
	case RelLt:
		return 0
	case RelEq:
		return 1
	}
	return 2
}

// Compare answers Gt when r promises less than o.
func (r Relation) Compare(o Relation) PartialOrd {
	return CompareInt(r.weakness(), o.weakness())
}
