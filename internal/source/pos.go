package source

import "fmt"

// Pos is a position in a source file. The zero value means "no position".
type Pos struct {
	File   string
	Line   int
	Column int
}

// None is the position of generated terms.
var None = Pos{}

func (p Pos) IsNone() bool {
	return p.Line == 0 && p.Column == 0 && p.File == ""
}

func (p Pos) String() string {
	if p.IsNone() {
		return "<generated>"
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}
