// Package domain contains the value and query types shared by the compiler,
// encoder and generator.
package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
)

// Kind identifies the variant held by a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindInt32
	KindInt64
	KindFloat64
	KindDecimal
	KindDate
	KindTime
	KindDateTime
	KindBlob
)

var kindNames = [...]string{
	KindNull:     "null",
	KindString:   "string",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindFloat64:  "float64",
	KindDecimal:  "decimal",
	KindDate:     "date",
	KindTime:     "time",
	KindDateTime: "datetime",
	KindBlob:     "blob",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is a closed tagged union of the parameter and column values the
// driver understands. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	dec  decimal.Decimal
	tm   time.Time
	blob []byte
}

// Null returns the SQL NULL value.
func Null() Value { return Value{} }

// String returns a character value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int32 returns a 32-bit integer value.
func Int32(v int32) Value { return Value{kind: KindInt32, num: int64(v)} }

// Int64 returns a 64-bit integer value.
func Int64(v int64) Value { return Value{kind: KindInt64, num: v} }

// Float64 returns a floating point value.
func Float64(v float64) Value { return Value{kind: KindFloat64, flt: v} }

// Decimal returns an arbitrary precision decimal value.
func Decimal(d decimal.Decimal) Value { return Value{kind: KindDecimal, dec: d} }

// Date returns a calendar date value. Only the year, month and day of t are used.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, tm: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Time returns a time of day value. Only the clock fields of t are used.
func Time(t time.Time) Value {
	return Value{kind: KindTime, tm: time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// DateTime returns a date and time value.
func DateTime(t time.Time) Value { return Value{kind: KindDateTime, tm: t} }

// Blob returns a binary value. The slice is retained, not copied.
func Blob(b []byte) Value { return Value{kind: KindBlob, blob: b} }

// Bool returns the integer 1 or 0, the representation used for bit columns.
func Bool(b bool) Value {
	if b {
		return Int32(1)
	}
	return Int32(0)
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the character payload.
func (v Value) Str() string { return v.str }

// Int returns the integer payload of an Int32 or Int64 value.
func (v Value) Int() int64 { return v.num }

// Float returns the floating point payload.
func (v Value) Float() float64 { return v.flt }

// Dec returns the decimal payload.
func (v Value) Dec() decimal.Decimal { return v.dec }

// Time returns the payload of a Date, Time or DateTime value.
func (v Value) Time() time.Time { return v.tm }

// Bytes returns the binary payload.
func (v Value) Bytes() []byte { return v.blob }

// Interface returns the payload as a plain Go value, nil for NULL.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt32:
		return int32(v.num)
	case KindInt64:
		return v.num
	case KindFloat64:
		return v.flt
	case KindDecimal:
		return v.dec
	case KindDate, KindTime, KindDateTime:
		return v.tm
	case KindBlob:
		return v.blob
	default:
		return nil
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	if v.kind == KindNull {
		return "domain.Null()"
	}
	return fmt.Sprintf("domain.%s(%#v)", v.kind, v.Interface())
}

// From converts a native Go value into a Value.
func From(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case []byte:
		if t == nil {
			return Null(), nil
		}
		return Blob(t), nil
	case bool:
		return Bool(t), nil
	case int8:
		return Int32(int32(t)), nil
	case int16:
		return Int32(int32(t)), nil
	case int32:
		return Int32(t), nil
	case uint8:
		return Int32(int32(t)), nil
	case uint16:
		return Int32(int32(t)), nil
	case int:
		return Int64(int64(t)), nil
	case int64:
		return Int64(t), nil
	case uint32:
		return Int64(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, fmt.Errorf("unsigned value %d overflows int64", t)
		}
		return Int64(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("unsigned value %d overflows int64", t)
		}
		return Int64(int64(t)), nil
	case float32:
		return Float64(float64(t)), nil
	case float64:
		return Float64(t), nil
	case decimal.Decimal:
		return Decimal(t), nil
	case decimal.NullDecimal:
		if !t.Valid {
			return Null(), nil
		}
		return Decimal(t.Decimal), nil
	case time.Time:
		return DateTime(t), nil
	case driver.Valuer:
		inner, err := callValuer(t)
		if err != nil {
			return Value{}, fmt.Errorf("failed to read driver value: %w", err)
		}
		return From(inner)
	}

	rv := reflect.ValueOf(x)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return Null(), nil
		}
		return From(rv.Elem().Interface())
	}
	return Value{}, fmt.Errorf("%w: parameter type %T", errdefs.ErrUnsupportedType, x)
}

// callValuer guards against typed nil pointers implementing driver.Valuer.
func callValuer(v driver.Valuer) (driver.Value, error) {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	return v.Value()
}

// MustFrom is like From but panics on unsupported types. It is intended for
// literals in tests and examples.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}
	return v
}
