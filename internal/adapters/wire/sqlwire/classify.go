package sqlwire

import (
	"strings"
	"unicode"
)

var rowKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"TABLE":    true,
	"SHOW":     true,
	"PRAGMA":   true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"CALL":     true,
	"EXEC":     true,
	"EXECUTE":  true,
}

// returnsRows guesses whether a statement produces result sets, from its
// leading keyword or a RETURNING clause.
func returnsRows(sql string) bool {
	if rowKeywords[leadingKeyword(sql)] {
		return true
	}
	return containsWord(strings.ToUpper(sql), "RETURNING")
}

// leadingKeyword returns the first word of sql, upper cased, skipping
// whitespace, comments and opening parentheses.
func leadingKeyword(sql string) string {
	s := sql
	for {
		s = strings.TrimLeftFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == '(' || r == ';' })
		switch {
		case strings.HasPrefix(s, "--"):
			if i := strings.IndexByte(s, '\n'); i >= 0 {
				s = s[i+1:]
				continue
			}
			return ""
		case strings.HasPrefix(s, "/*"):
			if i := strings.Index(s, "*/"); i >= 0 {
				s = s[i+2:]
				continue
			}
			return ""
		}
		break
	}

	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(s)
	}
	return strings.ToUpper(s[:end])
}

func containsWord(s, word string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		j += i
		before := j == 0 || !isWordByte(s[j-1])
		after := j+len(word) == len(s) || !isWordByte(s[j+len(word)])
		if before && after {
			return true
		}
		i = j + len(word)
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

// splitStatements cuts a batch at top level semicolons. Semicolons inside
// quotes, comments and CREATE ... BEGIN ... END bodies do not split.
// Statements holding only whitespace and comments are dropped.
func splitStatements(batch string) []string {
	const (
		sText = iota
		sQuote
		sBlockComment
		sLineComment
	)

	var stmts []string
	add := func(stmt string) {
		if strings.TrimSpace(stripComments(stmt)) != "" {
			stmts = append(stmts, stmt)
		}
	}

	state, start := sText, 0
	var quote byte
	for i := 0; i < len(batch); i++ {
		c := batch[i]
		switch state {
		case sQuote:
			if c == quote {
				state = sText
			}
		case sBlockComment:
			if c == '*' && i+1 < len(batch) && batch[i+1] == '/' {
				state = sText
				i++
			}
		case sLineComment:
			if c == '\n' {
				state = sText
			}
		default:
			switch {
			case c == '\'' || c == '"' || c == '`':
				state, quote = sQuote, c
			case c == '/' && i+1 < len(batch) && batch[i+1] == '*':
				state = sBlockComment
				i++
			case c == '-' && i+1 < len(batch) && batch[i+1] == '-':
				state = sLineComment
				i++
			case c == ';':
				if inBlockBody(batch[start:i]) {
					continue
				}
				add(batch[start:i])
				start = i + 1
			}
		}
	}
	add(batch[start:])
	return stmts
}

// inBlockBody reports whether stmt is a CREATE statement whose BEGIN has not
// been closed by a trailing END yet.
func inBlockBody(stmt string) bool {
	if leadingKeyword(stmt) != "CREATE" {
		return false
	}
	upper := strings.ToUpper(stripComments(stmt))
	if !containsWord(upper, "BEGIN") {
		return false
	}
	fields := strings.Fields(upper)
	return fields[len(fields)-1] != "END"
}

// stripComments removes -- and /* */ comments outside quotes.
func stripComments(sql string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				return b.String()
			}
			i += j
			c = '\n'
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				return b.String()
			}
			i += j + 3
			c = ' '
		}
		b.WriteByte(c)
	}
	return b.String()
}
