package wiretest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/core/wire/cslib"
)

var codec = cslib.New()

func encode(f wire.DataFormat, v any) Cell {
	b, err := codec.Encode(f, v)
	if err != nil {
		panic(err)
	}
	return Cell{Data: b}
}

// Column returns a column format with the natural length of t.
func Column(name string, t wire.DataType) wire.DataFormat {
	f := wire.DataFormat{Name: name, Type: t, Nullable: true, MaxLength: t.FixedLength()}
	switch {
	case t == wire.Numeric || t == wire.Decimal:
		f.Precision = wire.DefaultPrecision
		f.MaxLength = 35
	case f.MaxLength == 0:
		f.MaxLength = 255
	}
	return f
}

// CharColumn returns a character column of the given width.
func CharColumn(name string, width int) wire.DataFormat {
	f := Column(name, wire.VarChar)
	f.MaxLength = width
	return f
}

// NumericColumn returns a numeric column of the given shape.
func NumericColumn(name string, precision, scale int) wire.DataFormat {
	f := Column(name, wire.Numeric)
	f.Precision = precision
	f.Scale = scale
	return f
}

// Value encodes v in the layout of f.
func Value(f wire.DataFormat, v any) Cell { return encode(f, v) }

// Null returns a NULL cell.
func Null() Cell { return Cell{Null: true} }

// Int returns an INT cell.
func Int(v int32) Cell { return encode(wire.DataFormat{Type: wire.Int}, v) }

// BigInt returns a BIGINT cell.
func BigInt(v int64) Cell { return encode(wire.DataFormat{Type: wire.BigInt}, v) }

// Float returns a FLOAT cell.
func Float(v float64) Cell { return encode(wire.DataFormat{Type: wire.Float}, v) }

// Char returns a character cell.
func Char(s string) Cell { return Cell{Data: []byte(s)} }

// Binary returns a binary cell.
func Binary(b []byte) Cell { return Cell{Data: b} }

// DateTime returns a DATETIME cell.
func DateTime(t time.Time) Cell { return encode(wire.DataFormat{Type: wire.DateTime}, t) }

// Numeric returns a NUMERIC cell with the given shape.
func Numeric(d decimal.Decimal, precision, scale int) Cell {
	return encode(wire.DataFormat{Type: wire.Numeric, Precision: precision, Scale: scale}, d)
}

// Truncated returns a cell the session reports as truncated.
func Truncated(data []byte) Cell { return Cell{Data: data, Truncated: true} }

// Rows returns a row result.
func Rows(cols []wire.DataFormat, rows ...[]Cell) Result {
	return Result{Kind: wire.ResultRows, Columns: cols, Rows: rows}
}

// Status returns a status result carrying code.
func Status(code int32) Result {
	return Result{
		Kind:    wire.ResultStatus,
		Columns: []wire.DataFormat{Column("", wire.Int)},
		Rows:    [][]Cell{{Int(code)}},
	}
}

// Done returns a CS_CMD_DONE result with the given affected row count.
func Done(count int64) Result {
	return Result{Kind: wire.ResultCmdDone, Count: count}
}

// Succeed returns a CS_CMD_SUCCEED result with the given affected row count.
func Succeed(count int64) Result {
	return Result{Kind: wire.ResultCmdSucceed, Count: count}
}

// Fail returns a CS_CMD_FAIL result queuing msgs.
func Fail(msgs ...wire.Message) Result {
	return Result{Kind: wire.ResultCmdFail, Count: wire.NoCount, Messages: msgs}
}

// ServerMessage returns a server diagnostic.
func ServerMessage(code, severity int, text string) wire.Message {
	return wire.Message{Origin: wire.OriginServer, Code: code, Severity: severity, Text: text}
}
