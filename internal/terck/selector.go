// Package terck decides termination of recursive functions from the
// size-change behaviour of their call sites.
package terck

// PartialOrd is the outcome of comparing two candidates. Unk means the two are
// incomparable.
type PartialOrd int

const (
	Lt PartialOrd = iota
	Eq
	Gt
	Unk
)

func (o PartialOrd) String() string {
	switch o {
	case Lt:
		return "Lt"
	case Eq:
		return "Eq"
	case Gt:
		return "Gt"
	}
	return "Unk"
}

func CompareInt(l, r int) PartialOrd {
	switch {
	case l < r:
		return Lt
	case l > r:
		return Gt
	}
	return Eq
}

func CompareBool(l, r bool) PartialOrd {
	switch {
	case !l && r:
		return Lt
	case l && !r:
		return Gt
	}
	return Eq
}

// And combines the comparisons of two components that must agree.
func (o PartialOrd) And(r PartialOrd) PartialOrd {
	switch {
	case o == Unk:
		return Unk
	case o == Eq:
		return r
	case r == Eq, r == o:
		return o
	}
	return Unk
}

// Candidate is anything the selector can keep. Compare answers Gt when the
// receiver dominates other.
type Candidate[T any] interface {
	Compare(other T) PartialOrd
}

// Selection is the verdict on one new candidate. When Useless is set, Better
// is an existing candidate at least as good and nothing changes. Otherwise the
// new candidate evicts Junks and joins Betters.
type Selection[T any] struct {
	Useless bool
	Better  T
	Junks   []T
	Betters []T
}

// Select compares a against the antichain had.
func Select[T Candidate[T]](a T, had []T) Selection[T] {
	var sel Selection[T]
	for _, b := range had {
		switch a.Compare(b) {
		case Lt, Eq:
			return Selection[T]{Useless: true, Better: b}
		case Gt:
			sel.Junks = append(sel.Junks, b)
		default:
			sel.Betters = append(sel.Betters, b)
		}
	}
	return sel
}

// SelectAll folds Select over news against old. It returns the new candidates
// that were kept and the resulting antichain, which holds the survivors of old
// followed by the winners.
func SelectAll[T Candidate[T]](news, old []T) (winners, survivors []T) {
	survivors = append([]T(nil), old...)
	for _, a := range news {
		sel := Select(a, survivors)
		if sel.Useless {
			continue
		}
		winners = append(winners, a)
		survivors = append(sel.Betters, a)
	}
	return winners, survivors
}
