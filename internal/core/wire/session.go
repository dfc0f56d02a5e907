package wire

import "context"

// Indicator values written into a Binding on fetch.
const (
	IndicatorNull int16 = -1
	IndicatorOK   int16 = 0
)

// Binding receives one column of the current row. The session writes the
// column bytes into Buffer, the number of bytes written into DataLength and
// the cell status into Indicator. A positive Indicator is the number of
// bytes that did not fit. For a FmtNullTerm binding DataLength includes the
// terminator byte, which the reader drops.
type Binding struct {
	Buffer     []byte
	DataLength int
	Indicator  int16
}

// DateRec holds the calendar fields of a cracked date value. Month is zero
// based.
type DateRec struct {
	Year        int
	Month       int
	Day         int
	DayOfYear   int
	WeekDay     int
	Hour        int
	Minute      int
	Second      int
	Millisecond int
	Microsecond int
}

// Converter holds the byte-level conversion primitives.
type Converter interface {
	// Convert converts src, laid out per srcFmt, into the layout of dstFmt.
	Convert(srcFmt DataFormat, src []byte, dstFmt DataFormat) ([]byte, error)

	// CrackDate decomposes a date-family value into calendar fields.
	CrackDate(t DataType, src []byte) (DateRec, error)
}

// Session is a single connection able to run one command at a time.
type Session interface {
	Converter

	// Submit sends literal SQL text for execution.
	Submit(ctx context.Context, sql string) error

	// NextResult advances to the next result. more is false once the
	// command has no results left.
	NextResult(ctx context.Context) (more bool, kind ResultKind, err error)

	// Cancel discards the current result or the whole command.
	Cancel(ctx context.Context, kind CancelKind) error

	// ColumnCount returns the number of columns of the current result.
	ColumnCount() (int, error)

	// DescribeColumn returns the format of column i (zero based).
	DescribeColumn(i int) (DataFormat, error)

	// BindColumn registers the destination for column i. The format may
	// differ from the described one in MaxLength and Format.
	BindColumn(i int, f DataFormat, b *Binding) error

	// FetchRow fills every binding with the next row. It returns false at
	// the end of data.
	FetchRow(ctx context.Context) (bool, error)

	// AffectedRowCount returns the row count of the current result, or
	// NoCount when the server did not send one.
	AffectedRowCount() (int64, error)

	// DrainDiagnostics returns and clears the queued messages. Sessions may
	// drop queued messages when advancing.
	DrainDiagnostics() []Message
}

// Pinger is implemented by sessions that can check liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Closer is implemented by sessions owning a network connection.
type Closer interface {
	Close() error
}
