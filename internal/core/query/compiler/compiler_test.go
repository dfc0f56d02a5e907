package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/internal/core/query/compiler"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
)

func TestCompile_PlaceholderCounting(t *testing.T) {
	q := compiler.Compile("?, '?', ?, \"?\", ? /* que? */, ? -- ?no?")

	require.Equal(t, 4, q.ParamCount())
	assert.Equal(t, []domain.Piece{
		domain.Param(),
		domain.Literal(", '?', "),
		domain.Param(),
		domain.Literal(", \"?\", "),
		domain.Param(),
		domain.Literal(" /* que? */, "),
		domain.Param(),
		domain.Literal(" -- ?no?"),
	}, q.Pieces)
	assert.Equal(t, []string{"", "", "", ""}, q.Names)
}

func TestCompile_NamedPlaceholders(t *testing.T) {
	q := compiler.Compile(":owner, :name, :name")

	require.Equal(t, 3, q.ParamCount())
	assert.Equal(t, []string{"owner", "name", "name"}, q.Names)
	assert.Equal(t, []int{1, 2}, q.ParamIndex("name"))
	assert.Equal(t, []int{0}, q.ParamIndex("owner"))
	assert.Empty(t, q.ParamIndex("missing"))
}

func TestCompile_Edges(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		pieces []domain.Piece
		names  []string
	}{
		{
			name:  "empty",
			input: "",
		},
		{
			name:   "trailing colon is literal",
			input:  "select a:",
			pieces: []domain.Piece{domain.Literal("select a:")},
		},
		{
			name:   "colon followed by space is literal",
			input:  "a : b",
			pieces: []domain.Piece{domain.Literal("a : b")},
		},
		{
			name:   "unterminated quote consumes the rest",
			input:  "select 'abc ? :x",
			pieces: []domain.Piece{domain.Literal("select 'abc ? :x")},
		},
		{
			name:   "unterminated block comment consumes the rest",
			input:  "select /* ? ",
			pieces: []domain.Piece{domain.Literal("select /* ? ")},
		},
		{
			name:   "line comment ends at newline",
			input:  "-- ?\n?",
			pieces: []domain.Piece{domain.Literal("-- ?\n"), domain.Param()},
			names:  []string{""},
		},
		{
			name:   "doubled quote reopens quoting",
			input:  "'it''s ?' ?",
			pieces: []domain.Piece{domain.Literal("'it''s ?' "), domain.Param()},
			names:  []string{""},
		},
		{
			name:   "double colon cast",
			input:  "x::int",
			pieces: []domain.Piece{domain.Literal("x:"), domain.Param()},
			names:  []string{"int"},
		},
		{
			name:   "mixed named and positional",
			input:  "where a = :a_1 and b = ?",
			pieces: []domain.Piece{domain.Literal("where a = "), domain.Param(), domain.Literal(" and b = "), domain.Param()},
			names:  []string{"a_1", ""},
		},
		{
			name:   "unicode name",
			input:  ":größe",
			pieces: []domain.Piece{domain.Param()},
			names:  []string{"größe"},
		},
		{
			name:   "single dash and slash are plain",
			input:  "a - b / c",
			pieces: []domain.Piece{domain.Literal("a - b / c")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := compiler.Compile(tt.input)
			assert.Equal(t, tt.pieces, q.Pieces)
			assert.Equal(t, tt.names, q.Names)
		})
	}
}

func TestCompile_RoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"select 1",
		"?, '?', ?, \"?\", ? /* que? */, ? -- ?no?",
		":owner, :name, :name",
		"insert into t values (?, :v, 'a''b', \"q\") -- tail",
		"select ':', a: , b:",
		"/* unterminated ? :x",
		"'unterminated ? :x",
		"x::numeric(10, 2) = :val\n-- ?\n?",
		"select * from t where name like '%?%' and id in (?, ?, ?)",
		"héllo :wörld ?",
	}

	for _, in := range inputs {
		q := compiler.Compile(in)
		assert.Equal(t, in, q.Source(), "round trip of %q", in)
	}
}
