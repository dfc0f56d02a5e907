// Package cslib implements the byte-level conversion and date cracking
// primitives of a client library in pure Go.
//
// Buffers use the layouts below, all little endian:
//
//	TINYINT, BIT            1 byte (unsigned)
//	SMALLINT, USMALLINT     2 bytes
//	INT, UINT               4 bytes
//	BIGINT, LONG, UBIGINT   8 bytes
//	REAL, FLOAT             IEEE 754, 4 and 8 bytes
//	MONEY4, MONEY           int32 and int64 scaled by 10^4
//	NUMERIC, DECIMAL        precision, scale, sign, big endian magnitude
//	DATETIME                int32 days since 1900-01-01, int32 1/300 s ticks
//	DATETIME4               uint16 days since 1900-01-01, uint16 minutes
//	DATE, TIME              int32 days, int32 ticks
//	BIGDATETIME, BIGTIME    uint64 microseconds since 0000-01-01 / midnight
//	CHAR family             UTF-8 bytes
//	UNICHAR, UNITEXT        UTF-16LE
package cslib

import (
	"bytes"
	"fmt"
	"time"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Context carries conversion settings.
type Context struct {
	// Location is applied to date text without a zone.
	Location *time.Location
}

var _ wire.Converter = (*Context)(nil)

// New returns a Context that reads zone-less date text as UTC.
func New() *Context {
	return &Context{Location: time.UTC}
}

// Convert converts src from srcFmt's layout to dstFmt's layout. A positive
// dstFmt.MaxLength bounds the result; longer results fail with an overflow.
func (c *Context) Convert(srcFmt wire.DataFormat, src []byte, dstFmt wire.DataFormat) ([]byte, error) {
	var out []byte
	if rawCopy(srcFmt.Type, dstFmt.Type) {
		out = bytes.Clone(src)
		if out == nil {
			out = []byte{}
		}
	} else {
		v, err := Decode(srcFmt, src)
		if err != nil {
			return nil, err
		}
		out, err = c.encode(dstFmt, srcFmt, v)
		if err != nil {
			return nil, err
		}
	}

	if dstFmt.MaxLength > 0 && len(out) > dstFmt.MaxLength {
		return nil, &errdefs.ConversionError{
			From:   srcFmt.Type.String(),
			To:     dstFmt.Type.String(),
			Reason: fmt.Sprintf("result of %d bytes overflows destination of %d", len(out), dstFmt.MaxLength),
		}
	}
	return out, nil
}

// CrackDate decomposes a date-family value. Time-only values report the
// date 1900-01-01.
func (c *Context) CrackDate(t wire.DataType, src []byte) (wire.DateRec, error) {
	if !t.IsDate() {
		return wire.DateRec{}, fmt.Errorf("%w: cannot crack %s", errdefs.ErrUnsupportedType, t)
	}
	m, err := decodeMoment(t, src)
	if err != nil {
		return wire.DateRec{}, err
	}

	tm := m.Time
	ns := tm.Nanosecond()
	return wire.DateRec{
		Year:        tm.Year(),
		Month:       int(tm.Month()) - 1,
		Day:         tm.Day(),
		DayOfYear:   tm.YearDay(),
		WeekDay:     int(tm.Weekday()),
		Hour:        tm.Hour(),
		Minute:      tm.Minute(),
		Second:      tm.Second(),
		Millisecond: ns / 1_000_000,
		Microsecond: (ns / 1_000) % 1_000,
	}, nil
}

// Encode renders a Go value into the layout of f. Accepted values are
// string, []byte, bool, integers, float32, float64, decimal.Decimal,
// time.Time and Moment.
func (c *Context) Encode(f wire.DataFormat, v any) ([]byte, error) {
	return c.encode(f, wire.DataFormat{Type: wire.IllegalType}, normalize(v))
}

// rawCopy reports whether a conversion copies the source bytes unchanged.
func rawCopy(src, dst wire.DataType) bool {
	if !dst.IsBinary() {
		return false
	}
	switch src {
	case wire.Char, wire.VarChar, wire.LongChar, wire.Text, wire.XML:
		return false
	}
	return true
}

func lengthError(t wire.DataType, want, got int) error {
	return &errdefs.ConversionError{
		From:   t.String(),
		To:     "value",
		Reason: fmt.Sprintf("expected %d bytes, got %d", want, got),
	}
}
