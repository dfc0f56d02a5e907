package result

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/convert"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// get reads one cell of the current row through fn. ok is false for NULL.
func get[T any](rs *ResultSet, id ColumnID, fn func(wire.Converter, wire.DataFormat, []byte) (T, error)) (v T, ok bool, err error) {
	f, cell, err := rs.cell(id)
	if err != nil || cell == nil {
		return v, false, err
	}
	v, err = fn(rs.conv, f, cell.data)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}

// GetInt32 reads a column of the current row as a 32-bit integer.
func (rs *ResultSet) GetInt32(id ColumnID) (sql.NullInt32, error) {
	v, ok, err := get(rs, id, convert.Int32)
	return sql.NullInt32{Int32: v, Valid: ok}, err
}

// GetInt64 reads a column of the current row as a 64-bit integer.
func (rs *ResultSet) GetInt64(id ColumnID) (sql.NullInt64, error) {
	v, ok, err := get(rs, id, convert.Int64)
	return sql.NullInt64{Int64: v, Valid: ok}, err
}

// GetFloat64 reads a column of the current row as a float.
func (rs *ResultSet) GetFloat64(id ColumnID) (sql.NullFloat64, error) {
	v, ok, err := get(rs, id, convert.Float64)
	return sql.NullFloat64{Float64: v, Valid: ok}, err
}

// GetBool reads a column of the current row as a boolean.
func (rs *ResultSet) GetBool(id ColumnID) (sql.NullBool, error) {
	v, ok, err := get(rs, id, convert.Bool)
	return sql.NullBool{Bool: v, Valid: ok}, err
}

// GetString reads a column of the current row as text.
func (rs *ResultSet) GetString(id ColumnID) (sql.NullString, error) {
	v, ok, err := get(rs, id, convert.String)
	return sql.NullString{String: v, Valid: ok}, err
}

// GetBlob reads a column of the current row as bytes. NULL reads as nil. The
// returned slice is a copy.
func (rs *ResultSet) GetBlob(id ColumnID) ([]byte, error) {
	v, _, err := get(rs, id, convert.Blob)
	return v, err
}

// GetDecimal reads a column of the current row as an exact decimal.
func (rs *ResultSet) GetDecimal(id ColumnID) (decimal.NullDecimal, error) {
	v, ok, err := get(rs, id, convert.Decimal)
	return decimal.NullDecimal{Decimal: v, Valid: ok}, err
}

// GetDate reads the calendar date of a column, at midnight UTC.
func (rs *ResultSet) GetDate(id ColumnID) (sql.NullTime, error) {
	return getTime(rs, id, convert.Date)
}

// GetTime reads the time of day of a column, on 0000-01-01 UTC.
func (rs *ResultSet) GetTime(id ColumnID) (sql.NullTime, error) {
	return getTime(rs, id, convert.Time)
}

// GetDateTime reads a column as a UTC timestamp.
func (rs *ResultSet) GetDateTime(id ColumnID) (sql.NullTime, error) {
	return getTime(rs, id, convert.DateTime)
}

func getTime(rs *ResultSet, id ColumnID, fn func(wire.Converter, wire.DataFormat, []byte) (time.Time, error)) (sql.NullTime, error) {
	v, ok, err := get(rs, id, fn)
	return sql.NullTime{Time: v, Valid: ok}, err
}

// Value reads a column as the domain value matching its wire type. NULL
// reads as domain.Null.
func (rs *ResultSet) Value(id ColumnID) (domain.Value, error) {
	v, ok, err := get(rs, id, convert.Value)
	if err != nil || !ok {
		return domain.Null(), err
	}
	return v, nil
}
