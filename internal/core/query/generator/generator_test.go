package generator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/internal/core/query/compiler"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/query/generator"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		params   []domain.Value
		expected string
	}{
		{
			name:     "mixed kinds",
			query:    "?, ?, ?, ?",
			params:   []domain.Value{domain.String("foo"), domain.Int32(42), domain.Float64(42.1), domain.Null()},
			expected: "'foo', 42, 42.1, null",
		},
		{
			name:     "quoted placeholders untouched",
			query:    "select ?, '?' -- ?",
			params:   []domain.Value{domain.String("dead'beef")},
			expected: "select 'dead''beef', '?' -- ?",
		},
		{
			name:     "missing params become null",
			query:    "select ?, ?, ?",
			params:   []domain.Value{domain.Int32(1)},
			expected: "select 1, null, null",
		},
		{
			name:     "no params at all",
			query:    "select ?",
			expected: "select null",
		},
		{
			name:     "extra params ignored",
			query:    "select ?",
			params:   []domain.Value{domain.Int32(1), domain.Int32(2)},
			expected: "select 1",
		},
		{
			name:     "end to end scenario",
			query:    "select ?, ?",
			params:   []domain.Value{domain.Int32(1), domain.String("a")},
			expected: "select 1, 'a'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generator.Generate(compiler.Compile(tt.query), tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
