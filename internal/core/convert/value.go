package convert

import (
	"fmt"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Value reads a cell into the domain value matching its wire type.
func Value(c wire.Converter, f wire.DataFormat, b []byte) (domain.Value, error) {
	switch f.Type {
	case wire.Binary, wire.VarBinary, wire.LongBinary, wire.Image, wire.Blob:
		v, err := Blob(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Blob(v), nil

	case wire.Char, wire.VarChar, wire.LongChar, wire.Text, wire.XML, wire.UniChar, wire.UniText:
		v, err := String(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.String(v), nil

	case wire.Date:
		v, err := Date(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Date(v), nil

	case wire.Time, wire.BigTime:
		v, err := Time(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Time(v), nil

	case wire.DateTime, wire.DateTime4, wire.BigDateTime:
		v, err := DateTime(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.DateTime(v), nil

	case wire.Int, wire.Bit, wire.TinyInt, wire.SmallInt, wire.USmallInt:
		v, err := Int32(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Int32(v), nil

	case wire.BigInt, wire.Long, wire.UInt:
		v, err := Int64(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Int64(v), nil

	case wire.Money, wire.Money4, wire.Numeric, wire.Decimal, wire.UBigInt:
		if f.Type.IsExactNumeric() && f.Precision == wire.DefaultPrecision && f.Scale == 0 {
			v, err := Int64(c, f, b)
			if err != nil {
				return domain.Value{}, err
			}
			return domain.Int64(v), nil
		}
		v, err := Decimal(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Decimal(v), nil

	case wire.Real, wire.Float:
		v, err := Float64(c, f, b)
		if err != nil {
			return domain.Value{}, err
		}
		return domain.Float64(v), nil
	}

	return domain.Value{}, fmt.Errorf("%w: %s", errdefs.ErrUnsupportedType, f.Type)
}
