package commands

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/pkg/client"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in       string
		expected any
	}{
		{"null", nil},
		{"NULL", nil},
		{"true", true},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"10.50", decimal.RequireFromString("10.50")},
		{"1e3", float64(1000)},
		{"0x00ff", []byte{0x00, 0xff}},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02 15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"'42'", "42"},
		{"''", ""},
		{"business", "business"},
		{"it's", "it's"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseValue(tt.in)
			require.NoError(t, err)
			if d, ok := tt.expected.(decimal.Decimal); ok {
				require.IsType(t, decimal.Decimal{}, got)
				assert.True(t, d.Equal(got.(decimal.Decimal)))
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := parseValue("0xzz")
	assert.Error(t, err)
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"1", "type=business", "'a=b'", "type=mod_cook", "n=null"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "a=b"}, p.positional)
	assert.Equal(t, []string{"type", "n"}, p.order)
	assert.Equal(t, "mod_cook", p.named["type"])
	assert.Nil(t, p.named["n"])

	_, err = parseParams([]string{"blob=0x1"})
	assert.ErrorContains(t, err, "parameter blob")
}

func TestBind(t *testing.T) {
	p, err := parseParams([]string{"10", "type=O'Reilly"})
	require.NoError(t, err)

	st, err := p.bind("select * from titles where price > ? and type = :type and pub = :type")
	require.NoError(t, err)
	sql, err := st.SQL()
	require.NoError(t, err)
	assert.Equal(t, "select * from titles where price > 10 and type = 'O''Reilly' and pub = 'O''Reilly'", sql)

	p, err = parseParams([]string{"1", "2"})
	require.NoError(t, err)
	_, err = p.bind("select ?")
	assert.ErrorIs(t, err, client.ErrParameterCount)

	p, err = parseParams([]string{"missing=1"})
	require.NoError(t, err)
	_, err = p.bind("select :id")
	assert.ErrorIs(t, err, client.ErrUnknownParameter)
}
