// Package convert turns materialized cell buffers into Go values.
//
// Each accessor first tries a fast path that reads the buffer directly when
// the column's wire type already has the requested layout. Otherwise it asks
// the session's converter to produce that layout and reads the result.
package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

const (
	// DefaultStringWidth bounds text converted from non-binary columns.
	DefaultStringWidth = 128

	// DecimalTextWidth bounds the text form of exact numerics.
	DecimalTextWidth = 1024
)

var le = binary.LittleEndian

func lengthMismatch(f wire.DataFormat, want int, got int) error {
	return &errdefs.ConversionError{
		From:   f.Type.String(),
		To:     f.Type.String(),
		Reason: fmt.Sprintf("buffer holds %d bytes, layout needs %d", got, want),
	}
}

// Int32 reads a 32-bit integer.
func Int32(c wire.Converter, f wire.DataFormat, b []byte) (int32, error) {
	if f.Type == wire.Int {
		if len(b) != 4 {
			return 0, lengthMismatch(f, 4, len(b))
		}
		return int32(le.Uint32(b)), nil
	}
	return int32Slow(c, f, b)
}

func int32Slow(c wire.Converter, f wire.DataFormat, b []byte) (int32, error) {
	out, err := c.Convert(f, b, wire.DataFormat{Type: wire.Int, MaxLength: 4})
	if err != nil {
		return 0, err
	}
	if len(out) != 4 {
		return 0, lengthMismatch(wire.DataFormat{Type: wire.Int}, 4, len(out))
	}
	return int32(le.Uint32(out)), nil
}

// Int64 reads a 64-bit integer.
func Int64(c wire.Converter, f wire.DataFormat, b []byte) (int64, error) {
	if f.Type == wire.BigInt || f.Type == wire.Long {
		if len(b) != 8 {
			return 0, lengthMismatch(f, 8, len(b))
		}
		return int64(le.Uint64(b)), nil
	}
	return int64Slow(c, f, b)
}

func int64Slow(c wire.Converter, f wire.DataFormat, b []byte) (int64, error) {
	out, err := c.Convert(f, b, wire.DataFormat{Type: wire.BigInt, MaxLength: 8})
	if err != nil {
		return 0, err
	}
	if len(out) != 8 {
		return 0, lengthMismatch(wire.DataFormat{Type: wire.BigInt}, 8, len(out))
	}
	return int64(le.Uint64(out)), nil
}

// Float64 reads a floating point number. REAL columns are widened.
func Float64(c wire.Converter, f wire.DataFormat, b []byte) (float64, error) {
	switch f.Type {
	case wire.Float:
		if len(b) != 8 {
			return 0, lengthMismatch(f, 8, len(b))
		}
		return math.Float64frombits(le.Uint64(b)), nil
	case wire.Real:
		if len(b) != 4 {
			return 0, lengthMismatch(f, 4, len(b))
		}
		return float64(math.Float32frombits(le.Uint32(b))), nil
	}
	return float64Slow(c, f, b)
}

func float64Slow(c wire.Converter, f wire.DataFormat, b []byte) (float64, error) {
	out, err := c.Convert(f, b, wire.DataFormat{Type: wire.Float, MaxLength: 8})
	if err != nil {
		return 0, err
	}
	if len(out) != 8 {
		return 0, lengthMismatch(wire.DataFormat{Type: wire.Float}, 8, len(out))
	}
	return math.Float64frombits(le.Uint64(out)), nil
}

// Bool reads any integer-convertible value; non-zero is true.
func Bool(c wire.Converter, f wire.DataFormat, b []byte) (bool, error) {
	n, err := Int64(c, f, b)
	if err != nil {
		return false, err
	}
	return n != 0, nil
}

func isPlainText(t wire.DataType) bool {
	switch t {
	case wire.Char, wire.VarChar, wire.LongChar, wire.Text, wire.XML:
		return true
	}
	return false
}

// String reads character data. Invalid UTF-8 is replaced, not rejected.
func String(c wire.Converter, f wire.DataFormat, b []byte) (string, error) {
	if isPlainText(f.Type) {
		return strings.ToValidUTF8(string(b), "�"), nil
	}
	return stringSlow(c, f, b)
}

func stringSlow(c wire.Converter, f wire.DataFormat, b []byte) (string, error) {
	out, err := c.Convert(f, b, wire.DataFormat{Type: wire.Char, Format: wire.FmtUnused, MaxLength: stringWidth(f, b)})
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(bytes.TrimRight(out, "\x00")), "�"), nil
}

// stringWidth sizes the text destination for a conversion.
func stringWidth(f wire.DataFormat, b []byte) int {
	switch {
	case f.Type.IsBinary():
		return 2*len(b) + 16
	case f.Type == wire.UniChar || f.Type == wire.UniText:
		return 3*len(b)/2 + 16
	case isPlainText(f.Type):
		return len(b) + 16
	}
	return DefaultStringWidth
}

// Blob reads binary data. The result is a copy owned by the caller.
func Blob(c wire.Converter, f wire.DataFormat, b []byte) ([]byte, error) {
	if f.Type.IsBinary() {
		return bytes.Clone(b), nil
	}
	return blobSlow(c, f, b)
}

func blobSlow(c wire.Converter, f wire.DataFormat, b []byte) ([]byte, error) {
	return c.Convert(f, b, wire.DataFormat{Type: wire.Binary, MaxLength: f.MaxLength})
}

// Decimal reads an exact decimal through its text form.
func Decimal(c wire.Converter, f wire.DataFormat, b []byte) (decimal.Decimal, error) {
	var text string
	if isPlainText(f.Type) {
		text = string(b)
	} else {
		out, err := c.Convert(f, b, wire.DataFormat{
			Type:      wire.Char,
			MaxLength: DecimalTextWidth,
			Precision: wire.SrcValue,
			Scale:     wire.SrcValue,
		})
		if err != nil {
			return decimal.Decimal{}, err
		}
		text = string(bytes.TrimRight(out, "\x00"))
	}

	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Decimal{}, &errdefs.ConversionError{From: f.Type.String(), To: "decimal", Reason: err.Error()}
	}
	return d, nil
}

// Crack returns the calendar fields of a value. Date-family columns are
// cracked directly; anything else is converted to DATETIME first.
func Crack(c wire.Converter, f wire.DataFormat, b []byte) (wire.DateRec, error) {
	if f.Type.IsDate() {
		return c.CrackDate(f.Type, b)
	}
	out, err := c.Convert(f, b, wire.DataFormat{Type: wire.DateTime, MaxLength: 8})
	if err != nil {
		return wire.DateRec{}, err
	}
	return c.CrackDate(wire.DateTime, out)
}

// assemble builds a time from cracked fields. Month is zero based in rec.
func assemble(rec wire.DateRec) time.Time {
	ns := rec.Millisecond*1_000_000 + rec.Microsecond*1_000
	return time.Date(rec.Year, time.Month(rec.Month+1), rec.Day, rec.Hour, rec.Minute, rec.Second, ns, time.UTC)
}

// Date reads the calendar date of a value, at midnight UTC.
func Date(c wire.Converter, f wire.DataFormat, b []byte) (time.Time, error) {
	rec, err := Crack(c, f, b)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(rec.Year, time.Month(rec.Month+1), rec.Day, 0, 0, 0, 0, time.UTC), nil
}

// Time reads the time of day of a value, on 0000-01-01 UTC.
func Time(c wire.Converter, f wire.DataFormat, b []byte) (time.Time, error) {
	rec, err := Crack(c, f, b)
	if err != nil {
		return time.Time{}, err
	}
	t := assemble(rec)
	return time.Date(0, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
}

// DateTime reads a full timestamp in UTC.
func DateTime(c wire.Converter, f wire.DataFormat, b []byte) (time.Time, error) {
	rec, err := Crack(c, f, b)
	if err != nil {
		return time.Time{}, err
	}
	return assemble(rec), nil
}
