// Package compiler turns SQL text with ? and :name placeholders into a
// domain.CompiledQuery.
//
// The scanner is a single forward pass. Placeholder characters inside quoted
// text, block comments and line comments are copied verbatim. Unterminated
// quotes and comments run to the end of the input without error.
package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/satishbabariya/tds-go/internal/core/query/domain"
)

// lexical states
const (
	sText = iota
	sQuote
	sBlockComment
	sLineComment
)

// Compile scans text once and returns its pieces and placeholder names.
func Compile(text string) *domain.CompiledQuery {
	q := &domain.CompiledQuery{}

	var run strings.Builder
	run.Grow(len(text))

	flush := func() {
		if run.Len() > 0 {
			q.Pieces = append(q.Pieces, domain.Literal(run.String()))
			run.Reset()
		}
	}

	state := sText
	var quote byte

	for i := 0; i < len(text); {
		c := text[i]

		switch state {
		case sQuote:
			run.WriteByte(c)
			i++
			if c == quote {
				state = sText
			}
			continue

		case sBlockComment:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				run.WriteString("*/")
				i += 2
				state = sText
				continue
			}
			run.WriteByte(c)
			i++
			continue

		case sLineComment:
			run.WriteByte(c)
			i++
			if c == '\n' {
				state = sText
			}
			continue
		}

		switch {
		case c == '\'' || c == '"':
			quote = c
			state = sQuote
			run.WriteByte(c)
			i++

		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			state = sBlockComment
			run.WriteString("/*")
			i += 2

		case c == '-' && i+1 < len(text) && text[i+1] == '-':
			state = sLineComment
			run.WriteString("--")
			i += 2

		case c == '?':
			flush()
			q.Pieces = append(q.Pieces, domain.Param())
			q.Names = append(q.Names, "")
			i++

		case c == ':':
			end := scanName(text, i+1)
			if end == i+1 {
				// bare colon, e.g. a trailing ':' or a '::' cast prefix
				run.WriteByte(c)
				i++
				continue
			}
			flush()
			q.Pieces = append(q.Pieces, domain.Param())
			q.Names = append(q.Names, text[i+1:end])
			i = end

		default:
			run.WriteByte(c)
			i++
		}
	}

	flush()
	return q
}

// scanName returns the end offset of the maximal identifier run starting at i.
func scanName(text string, i int) int {
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += size
	}
	return i
}
