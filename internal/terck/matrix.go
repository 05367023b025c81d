package terck

import (
	"strings"

	"github.com/funvibe/tyck/internal/core"
	"github.com/funvibe/tyck/internal/diagnostics"
)

// CallMatrix describes one call from Caller to Callee. The cell in row i and
// column j relates the i-th argument of the call to the j-th parameter of the
// caller.
type CallMatrix struct {
	Caller, Callee *core.DefVar
	rows, cols     int
	cells          []Relation
}

// NewCallMatrix returns a matrix with every cell unknown.
func NewCallMatrix(caller, callee *core.DefVar, rows, cols int) *CallMatrix {
	return &CallMatrix{Caller: caller, Callee: callee, rows: rows, cols: cols, cells: make([]Relation, rows*cols)}
}

func (m *CallMatrix) Rows() int { return m.rows }
func (m *CallMatrix) Cols() int { return m.cols }

func (m *CallMatrix) Get(i, j int) Relation { return m.cells[i*m.cols+j] }

func (m *CallMatrix) Set(i, j int, r Relation) { m.cells[i*m.cols+j] = r }

// Compare orders matrices of the same edge cell by cell. The result is Gt when
// m promises less than other everywhere.
func (m *CallMatrix) Compare(other *CallMatrix) PartialOrd {
	if m.Caller != other.Caller || m.Callee != other.Callee || m.rows != other.rows || m.cols != other.cols {
		panic(diagnostics.Internalf("comparing call matrices %s and %s of different edges", m, other))
	}
	ord := Eq
	for i, r := range m.cells {
		ord = ord.And(r.Compare(other.cells[i]))
		if ord == Unk {
			return Unk
		}
	}
	return ord
}

// Compose returns the matrix of calling first then next.
func Compose(first, next *CallMatrix) *CallMatrix {
	if first.Callee != next.Caller || first.rows != next.cols {
		panic(diagnostics.Internalf("cannot compose %s with %s", first, next))
	}
	out := NewCallMatrix(first.Caller, next.Callee, next.rows, first.cols)
	for i := 0; i < next.rows; i++ {
		for j := 0; j < first.cols; j++ {
			rel := RelUnk
			for k := 0; k < next.cols; k++ {
				rel = rel.Add(next.Get(i, k).Mul(first.Get(k, j)))
			}
			out.Set(i, j, rel)
		}
	}
	return out
}

func (m *CallMatrix) equal(other *CallMatrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i, r := range m.cells {
		if other.cells[i] != r {
			return false
		}
	}
	return true
}

// Idempotent reports whether a self call composed with itself stays the same.
func (m *CallMatrix) Idempotent() bool {
	return m.Caller == m.Callee && Compose(m, m).equal(m)
}

// Decreases reports whether some parameter strictly decreases along the
// diagonal of a self call.
func (m *CallMatrix) Decreases() bool {
	for i := 0; i < m.rows && i < m.cols; i++ {
		if m.Get(i, i) == RelLt {
			return true
		}
	}
	return false
}

func (m *CallMatrix) String() string {
	var sb strings.Builder
	sb.WriteString(m.Caller.Name + " -> " + m.Callee.Name + " ")
	for i := 0; i < m.rows; i++ {
		sb.WriteByte('[')
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(m.Get(i, j).String())
		}
		sb.WriteByte(']')
	}
	return sb.String()
}
