package cslib

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// normalize maps native Go values onto the decoded value set.
func normalize(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint:
		return uint64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case time.Time:
		return Moment{Time: t, Type: wire.BigDateTime}
	}
	return v
}

// encode renders a decoded value into the layout of dst. src describes where
// the value came from and supplies precision and scale for SrcValue.
func (c *Context) encode(dst, src wire.DataFormat, v any) ([]byte, error) {
	le := binary.LittleEndian
	from := src.Type.String()
	if src.Type == wire.IllegalType {
		from = fmt.Sprintf("%T", v)
	}
	overflow := func(reason string) error {
		return &errdefs.ConversionError{From: from, To: dst.Type.String(), Reason: reason}
	}

	switch dst.Type {
	case wire.Char, wire.VarChar, wire.LongChar, wire.Text, wire.XML:
		s, err := formatText(v)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil

	case wire.UniChar, wire.UniText:
		s, err := formatText(v)
		if err != nil {
			return nil, err
		}
		return encodeUTF16(s)

	case wire.Binary, wire.VarBinary, wire.LongBinary, wire.Image, wire.Blob, wire.Unique:
		switch t := v.(type) {
		case []byte:
			return append([]byte{}, t...), nil
		case string:
			return parseHex(t)
		}
		return nil, overflow("no binary representation")

	case wire.Bit:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if n != 0 {
			n = 1
		}
		return []byte{byte(n)}, nil

	case wire.TinyInt:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > math.MaxUint8 {
			return nil, overflow(fmt.Sprintf("%d is out of range", n))
		}
		return []byte{byte(n)}, nil

	case wire.SmallInt:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt16 || n > math.MaxInt16 {
			return nil, overflow(fmt.Sprintf("%d is out of range", n))
		}
		return le.AppendUint16(nil, uint16(int16(n))), nil

	case wire.USmallInt, wire.UShort:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > math.MaxUint16 {
			return nil, overflow(fmt.Sprintf("%d is out of range", n))
		}
		return le.AppendUint16(nil, uint16(n)), nil

	case wire.Int:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, overflow(fmt.Sprintf("%d is out of range", n))
		}
		return le.AppendUint32(nil, uint32(int32(n))), nil

	case wire.UInt:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if n < 0 || n > math.MaxUint32 {
			return nil, overflow(fmt.Sprintf("%d is out of range", n))
		}
		return le.AppendUint32(nil, uint32(n)), nil

	case wire.BigInt, wire.Long:
		n, err := toInt(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		return le.AppendUint64(nil, uint64(n)), nil

	case wire.UBigInt:
		n, err := toUint(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		return le.AppendUint64(nil, n), nil

	case wire.Real:
		f, err := toFloat(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		if math.Abs(f) > math.MaxFloat32 && !math.IsInf(f, 0) {
			return nil, overflow(fmt.Sprintf("%g is out of range", f))
		}
		return le.AppendUint32(nil, math.Float32bits(float32(f))), nil

	case wire.Float:
		if f32, ok := v.(float32); ok {
			return le.AppendUint64(nil, math.Float64bits(float64(f32))), nil
		}
		f, err := toFloat(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		return le.AppendUint64(nil, math.Float64bits(f)), nil

	case wire.Money, wire.Money4:
		d, err := toDecimal(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		units := d.Round(moneyScale).Shift(moneyScale).BigInt()
		if dst.Type == wire.Money4 {
			if !units.IsInt64() || units.Int64() < math.MinInt32 || units.Int64() > math.MaxInt32 {
				return nil, overflow(fmt.Sprintf("%s is out of range", d))
			}
			return le.AppendUint32(nil, uint32(int32(units.Int64()))), nil
		}
		if !units.IsInt64() {
			return nil, overflow(fmt.Sprintf("%s is out of range", d))
		}
		return le.AppendUint64(nil, uint64(units.Int64())), nil

	case wire.Numeric, wire.Decimal:
		d, err := toDecimal(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		precision, scale := numericShape(dst, src, d)
		return encodeNumeric(d, precision, scale)

	case wire.Date, wire.Time, wire.DateTime, wire.DateTime4, wire.BigDateTime, wire.BigTime:
		m, err := c.toMoment(v, from, dst.Type)
		if err != nil {
			return nil, err
		}
		return encodeMoment(dst.Type, m)
	}

	return nil, fmt.Errorf("%w: cannot convert to %s", errdefs.ErrUnsupportedType, dst.Type)
}

// numericShape resolves the destination precision and scale, honoring
// SrcValue and falling back to the digits of d.
func numericShape(dst, src wire.DataFormat, d decimal.Decimal) (int, int) {
	p, s := digits(d)

	precision := dst.Precision
	switch {
	case precision == wire.SrcValue && src.Type.IsExactNumeric() && src.Precision > 0:
		precision = src.Precision
	case precision == wire.SrcValue:
		precision = max(p, wire.DefaultPrecision)
	case precision <= 0:
		precision = wire.DefaultPrecision
	}

	scale := dst.Scale
	switch {
	case scale == wire.SrcValue && src.Type.IsExactNumeric() && src.Type != wire.Money && src.Type != wire.Money4:
		scale = src.Scale
		if scale < s {
			scale = s
		}
	case scale == wire.SrcValue:
		scale = s
	case scale < 0:
		scale = wire.DefaultScale
	}

	return min(precision, wire.MaxPrecision), scale
}

func toInt(v any, from string, to wire.DataType) (int64, error) {
	bad := func(reason string) error {
		return &errdefs.ConversionError{From: from, To: to.String(), Reason: reason}
	}

	switch t := v.(type) {
	case int64:
		return t, nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, bad(fmt.Sprintf("%d is out of range", t))
		}
		return int64(t), nil
	case float32:
		return floatToInt(float64(t), bad)
	case float64:
		return floatToInt(t, bad)
	case decimal.Decimal:
		n := t.Truncate(0).BigInt()
		if !n.IsInt64() {
			return 0, bad(fmt.Sprintf("%s is out of range", t))
		}
		return n.Int64(), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, bad(fmt.Sprintf("%q is not a number", s))
		}
		return toInt(d, from, to)
	}
	return 0, bad(fmt.Sprintf("no integer representation for %T", v))
}

func floatToInt(f float64, bad func(string) error) (int64, error) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, bad(fmt.Sprintf("%g is out of range", f))
	}
	return int64(f), nil
}

func toUint(v any, from string, to wire.DataType) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case decimal.Decimal:
		n := t.Truncate(0).BigInt()
		if n.Sign() < 0 || !n.IsUint64() {
			break
		}
		return n.Uint64(), nil
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(t), 10, 64); err == nil {
			return n, nil
		}
	}

	n, err := toInt(v, from, to)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &errdefs.ConversionError{From: from, To: to.String(), Reason: fmt.Sprintf("%d is out of range", n)}
	}
	return uint64(n), nil
}

func toFloat(v any, from string, to wire.DataType) (float64, error) {
	switch t := v.(type) {
	case int64:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case decimal.Decimal:
		return t.InexactFloat64(), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, &errdefs.ConversionError{From: from, To: to.String(), Reason: fmt.Sprintf("%q is not a number", t)}
		}
		return f, nil
	}
	return 0, &errdefs.ConversionError{From: from, To: to.String(), Reason: fmt.Sprintf("no float representation for %T", v)}
}

func toDecimal(v any, from string, to wire.DataType) (decimal.Decimal, error) {
	bad := func(reason string) error {
		return &errdefs.ConversionError{From: from, To: to.String(), Reason: reason}
	}

	switch t := v.(type) {
	case decimal.Decimal:
		return t, nil
	case int64:
		return decimal.NewFromInt(t), nil
	case uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(t), 0), nil
	case float32:
		if math.IsNaN(float64(t)) || math.IsInf(float64(t), 0) {
			return decimal.Decimal{}, bad("value is not finite")
		}
		return decimal.NewFromFloat32(t), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Decimal{}, bad("value is not finite")
		}
		return decimal.NewFromFloat(t), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return decimal.Decimal{}, bad(fmt.Sprintf("%q is not a number", t))
		}
		return d, nil
	}
	return decimal.Decimal{}, bad(fmt.Sprintf("no decimal representation for %T", v))
}

func (c *Context) toMoment(v any, from string, to wire.DataType) (Moment, error) {
	switch t := v.(type) {
	case Moment:
		return t, nil
	case string:
		return parseMoment(t, c.Location)
	}
	return Moment{}, &errdefs.ConversionError{From: from, To: to.String(), Reason: fmt.Sprintf("no date representation for %T", v)}
}
