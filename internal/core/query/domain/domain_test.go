package domain

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
)

func TestFrom(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	s := "ptr"
	var nilPtr *int

	tests := []struct {
		name     string
		in       any
		expected Value
	}{
		{"nil", nil, Null()},
		{"string", "abc", String("abc")},
		{"bytes", []byte{1, 2}, Blob([]byte{1, 2})},
		{"nil bytes", []byte(nil), Null()},
		{"bool", true, Int32(1)},
		{"int16", int16(-5), Int32(-5)},
		{"int", 7, Int64(7)},
		{"uint32", uint32(math.MaxUint32), Int64(math.MaxUint32)},
		{"float32", float32(0.5), Float64(0.5)},
		{"decimal", decimal.RequireFromString("1.25"), Decimal(decimal.RequireFromString("1.25"))},
		{"null decimal", decimal.NullDecimal{}, Null()},
		{"time", now, DateTime(now)},
		{"valuer", sql.NullString{String: "v", Valid: true}, String("v")},
		{"null valuer", sql.NullInt64{}, Null()},
		{"pointer", &s, String("ptr")},
		{"nil pointer", nilPtr, Null()},
		{"value", Int32(3), Int32(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFromErrors(t *testing.T) {
	_, err := From(uint64(math.MaxUint64))
	assert.ErrorContains(t, err, "overflows int64")

	_, err = From(struct{}{})
	assert.ErrorIs(t, err, errdefs.ErrUnsupportedType)

	assert.Panics(t, func() { MustFrom(make(chan int)) })
}

func TestDateAndTime(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 10, time.UTC)
	assert.Equal(t, KindDate, Date(ts).Kind())
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), Date(ts).Time())
	assert.Equal(t, KindTime, Time(ts).Kind())
	assert.Equal(t, time.Date(0, time.January, 1, 7, 8, 9, 10, time.UTC), Time(ts).Time())
	assert.Equal(t, "null", Null().Kind().String())
	assert.True(t, Null().IsNull())
	assert.Nil(t, Null().Interface())
	assert.Equal(t, int32(4), Int32(4).Interface())
}

func TestCompiledQuery(t *testing.T) {
	q := &CompiledQuery{
		Pieces: []Piece{Literal("select "), Param(), Literal(", "), Param(), Literal(", "), Param()},
		Names:  []string{"", "id", "id"},
	}
	assert.Equal(t, 3, q.ParamCount())
	assert.Equal(t, []int{1, 2}, q.ParamIndex("id"))
	assert.Nil(t, q.ParamIndex("missing"))
	assert.Equal(t, "select ?, :id, :id", q.Source())
}
