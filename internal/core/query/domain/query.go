package domain

import "strings"

// Piece is one token of a compiled query: either literal SQL text or a placeholder.
type Piece struct {
	// Text holds the literal text. Empty for placeholders.
	Text string
	// Placeholder is set when the piece stands for a parameter.
	Placeholder bool
}

// Literal returns a literal text piece.
func Literal(text string) Piece { return Piece{Text: text} }

// Param returns a placeholder piece.
func Param() Piece { return Piece{Placeholder: true} }

// CompiledQuery is the immutable token stream produced from query text.
// Names is aligned with the placeholders in Pieces; an empty entry marks a
// positional (?) placeholder.
type CompiledQuery struct {
	Pieces []Piece
	Names  []string
}

// ParamCount returns the number of placeholders.
func (q *CompiledQuery) ParamCount() int {
	return len(q.Names)
}

// ParamIndex returns every placeholder position bound to the given name.
func (q *CompiledQuery) ParamIndex(name string) []int {
	var idx []int
	for i, n := range q.Names {
		if n != "" && n == name {
			idx = append(idx, i)
		}
	}
	return idx
}

// Source reassembles the text the query was compiled from, writing each
// placeholder back as ? or :name.
func (q *CompiledQuery) Source() string {
	var b strings.Builder
	p := 0
	for _, piece := range q.Pieces {
		if !piece.Placeholder {
			b.WriteString(piece.Text)
			continue
		}
		if name := q.Names[p]; name != "" {
			b.WriteByte(':')
			b.WriteString(name)
		} else {
			b.WriteByte('?')
		}
		p++
	}
	return b.String()
}
