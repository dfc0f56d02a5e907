package sqlwire

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/wire"
)

var typeNames = map[string]wire.DataType{
	"BOOL":    wire.Bit,
	"BOOLEAN": wire.Bit,

	"TINYINT":   wire.SmallInt,
	"SMALLINT":  wire.SmallInt,
	"INT2":      wire.SmallInt,
	"YEAR":      wire.SmallInt,
	"MEDIUMINT": wire.Int,
	"INT":       wire.Int,
	"INT4":      wire.Int,
	"SERIAL":    wire.Int,
	"INTEGER":   wire.BigInt,
	"BIGINT":    wire.BigInt,
	"INT8":      wire.BigInt,
	"BIGSERIAL": wire.BigInt,

	"FLOAT4":           wire.Real,
	"REAL":             wire.Float,
	"FLOAT":            wire.Float,
	"FLOAT8":           wire.Float,
	"DOUBLE":           wire.Float,
	"DOUBLE PRECISION": wire.Float,

	"DECIMAL": wire.Numeric,
	"NUMERIC": wire.Numeric,

	"CHAR":              wire.Char,
	"BPCHAR":            wire.Char,
	"NCHAR":             wire.Char,
	"CHARACTER":         wire.Char,
	"VARCHAR":           wire.VarChar,
	"NVARCHAR":          wire.VarChar,
	"CHARACTER VARYING": wire.VarChar,
	"NAME":              wire.VarChar,
	"UUID":              wire.VarChar,
	"ENUM":              wire.VarChar,
	"SET":               wire.VarChar,
	"INET":              wire.VarChar,
	"TEXT":              wire.Text,
	"TINYTEXT":          wire.Text,
	"MEDIUMTEXT":        wire.Text,
	"LONGTEXT":          wire.Text,
	"CLOB":              wire.Text,
	"JSON":              wire.Text,
	"JSONB":             wire.Text,
	"XML":               wire.XML,

	"BIT":        wire.VarBinary,
	"BINARY":     wire.Binary,
	"VARBINARY":  wire.VarBinary,
	"BLOB":       wire.Image,
	"TINYBLOB":   wire.Image,
	"MEDIUMBLOB": wire.Image,
	"LONGBLOB":   wire.Image,
	"BYTEA":      wire.Image,

	"DATE":        wire.Date,
	"TIME":        wire.BigTime,
	"TIMETZ":      wire.BigTime,
	"DATETIME":    wire.BigDateTime,
	"TIMESTAMP":   wire.BigDateTime,
	"TIMESTAMPTZ": wire.BigDateTime,
}

// unsignedTypes widens MySQL unsigned integers so every value fits.
var unsignedTypes = map[string]wire.DataType{
	"TINYINT":   wire.SmallInt,
	"SMALLINT":  wire.Int,
	"MEDIUMINT": wire.Int,
	"INT":       wire.BigInt,
	"BIGINT":    wire.UBigInt,
}

// typeFromName maps a driver's database type name to a wire type.
func typeFromName(p Provider, name string) (wire.DataType, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	if name == "" {
		return wire.IllegalType, false
	}

	if base, ok := strings.CutPrefix(name, "UNSIGNED "); ok {
		t, ok := unsignedTypes[base]
		return t, ok
	}
	if base, ok := strings.CutSuffix(name, " UNSIGNED"); ok {
		t, ok := unsignedTypes[base]
		return t, ok
	}

	t, ok := typeNames[name]
	if !ok {
		return wire.IllegalType, false
	}
	// SQLite stores every integer affinity column as 64 bits.
	if p == SQLite && (t == wire.SmallInt || t == wire.Int) {
		t = wire.BigInt
	}
	return t, true
}

// inferType picks a wire type from scanned values when the driver reports no
// type name. Mixed columns fall back to text.
func inferType(values []any) wire.DataType {
	t := wire.IllegalType
	for _, v := range values {
		var next wire.DataType
		switch v.(type) {
		case nil:
			continue
		case int64:
			next = wire.BigInt
		case float64:
			next = wire.Float
		case bool:
			next = wire.Bit
		case time.Time:
			next = wire.BigDateTime
		case []byte:
			next = wire.VarBinary
		default:
			next = wire.VarChar
		}

		switch {
		case t == wire.IllegalType || t == next:
			t = next
		case (t == wire.BigInt && next == wire.Float) || (t == wire.Float && next == wire.BigInt):
			t = wire.Float
		default:
			return wire.VarChar
		}
	}
	if t == wire.IllegalType {
		return wire.VarChar
	}
	return t
}

// inferNumeric returns a precision and scale wide enough for every value.
func inferNumeric(values []any) (precision, scale int) {
	intDigits := 1
	for _, v := range values {
		d, ok := toDecimal(v)
		if !ok {
			continue
		}
		exp := int(d.Exponent())
		n := len(d.Coefficient().String())
		if d.Sign() < 0 {
			n--
		}
		if exp < 0 {
			scale = max(scale, -exp)
		}
		intDigits = max(intDigits, n+exp)
	}
	precision = min(max(intDigits+scale, wire.DefaultPrecision), wire.MaxPrecision)
	return precision, min(scale, precision)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case int64:
		return decimal.NewFromInt(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	case []byte:
		d, err := decimal.NewFromString(strings.TrimSpace(string(t)))
		return d, err == nil
	}
	return decimal.Decimal{}, false
}
