package cslib

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Decode reads a buffer laid out per f into a Go value. The result is one
// of string, []byte, int64, uint64, float32, float64, decimal.Decimal or
// Moment. Binary results alias b.
func Decode(f wire.DataFormat, b []byte) (any, error) {
	le := binary.LittleEndian

	switch f.Type {
	case wire.Char, wire.VarChar, wire.LongChar, wire.Text, wire.XML:
		return string(bytes.TrimRight(b, "\x00")), nil

	case wire.UniChar, wire.UniText:
		return decodeUTF16(b)

	case wire.Binary, wire.VarBinary, wire.LongBinary, wire.Image, wire.Blob, wire.Unique:
		return b, nil

	case wire.Bit, wire.TinyInt:
		if len(b) != 1 {
			return nil, lengthError(f.Type, 1, len(b))
		}
		return int64(b[0]), nil

	case wire.SmallInt:
		if len(b) != 2 {
			return nil, lengthError(f.Type, 2, len(b))
		}
		return int64(int16(le.Uint16(b))), nil

	case wire.USmallInt, wire.UShort:
		if len(b) != 2 {
			return nil, lengthError(f.Type, 2, len(b))
		}
		return int64(le.Uint16(b)), nil

	case wire.Int:
		if len(b) != 4 {
			return nil, lengthError(f.Type, 4, len(b))
		}
		return int64(int32(le.Uint32(b))), nil

	case wire.UInt:
		if len(b) != 4 {
			return nil, lengthError(f.Type, 4, len(b))
		}
		return int64(le.Uint32(b)), nil

	case wire.BigInt, wire.Long:
		if len(b) != 8 {
			return nil, lengthError(f.Type, 8, len(b))
		}
		return int64(le.Uint64(b)), nil

	case wire.UBigInt:
		if len(b) != 8 {
			return nil, lengthError(f.Type, 8, len(b))
		}
		return le.Uint64(b), nil

	case wire.Real:
		if len(b) != 4 {
			return nil, lengthError(f.Type, 4, len(b))
		}
		return math.Float32frombits(le.Uint32(b)), nil

	case wire.Float:
		if len(b) != 8 {
			return nil, lengthError(f.Type, 8, len(b))
		}
		return math.Float64frombits(le.Uint64(b)), nil

	case wire.Money:
		if len(b) != 8 {
			return nil, lengthError(f.Type, 8, len(b))
		}
		return decimal.New(int64(le.Uint64(b)), -moneyScale), nil

	case wire.Money4:
		if len(b) != 4 {
			return nil, lengthError(f.Type, 4, len(b))
		}
		return decimal.New(int64(int32(le.Uint32(b))), -moneyScale), nil

	case wire.Numeric, wire.Decimal:
		return decodeNumeric(b)

	case wire.Date, wire.Time, wire.DateTime, wire.DateTime4, wire.BigDateTime, wire.BigTime:
		return decodeMoment(f.Type, b)
	}

	return nil, fmt.Errorf("%w: %s", errdefs.ErrUnsupportedType, f.Type)
}

const moneyScale = 4

// numericBytes returns the magnitude width for a numeric of precision p.
func numericBytes(p int) int {
	bits := int(math.Ceil(float64(p) * math.Log2(10)))
	return (bits + 7) / 8
}

func decodeNumeric(b []byte) (decimal.Decimal, error) {
	if len(b) < 3 {
		return decimal.Decimal{}, lengthError(wire.Numeric, 3, len(b))
	}
	scale := int32(b[1])
	mag := new(big.Int).SetBytes(b[3:])
	if b[2] != 0 {
		mag.Neg(mag)
	}
	return decimal.NewFromBigInt(mag, -scale), nil
}

func encodeNumeric(d decimal.Decimal, precision, scale int) ([]byte, error) {
	if precision < 1 || precision > wire.MaxPrecision || scale < 0 || scale > precision {
		return nil, &errdefs.ConversionError{
			From:   "decimal",
			To:     wire.Numeric.String(),
			Reason: fmt.Sprintf("invalid precision %d or scale %d", precision, scale),
		}
	}

	unscaled := d.Round(int32(scale)).Shift(int32(scale)).BigInt()
	neg := unscaled.Sign() < 0
	unscaled.Abs(unscaled)
	if unscaled.Sign() != 0 && len(unscaled.String()) > precision {
		return nil, &errdefs.ConversionError{
			From:   "decimal",
			To:     wire.Numeric.String(),
			Reason: fmt.Sprintf("%s does not fit numeric(%d,%d)", d, precision, scale),
		}
	}

	out := make([]byte, 3+numericBytes(precision))
	out[0] = byte(precision)
	out[1] = byte(scale)
	if neg {
		out[2] = 1
	}
	unscaled.FillBytes(out[3:])
	return out, nil
}

// digits returns the number of significant integer and fraction digits of d.
func digits(d decimal.Decimal) (precision, scale int) {
	n := len(new(big.Int).Abs(d.Coefficient()).String())
	exp := int(d.Exponent())
	if exp >= 0 {
		return n + exp, 0
	}
	scale = -exp
	if n < scale+1 {
		n = scale + 1
	}
	return n, scale
}
