// Package wire defines the contract between the execution engine and a
// wire session: native type tags, column formats, result kinds and
// diagnostics.
package wire

import "fmt"

// DataType is the native tag describing a buffer's on-the-wire layout.
type DataType int32

// Native data types. Values match the client library's CS_*_TYPE constants.
const (
	IllegalType DataType = -1
	Char        DataType = 0
	Binary      DataType = 1
	LongChar    DataType = 2
	LongBinary  DataType = 3
	Text        DataType = 4
	Image       DataType = 5
	TinyInt     DataType = 6
	SmallInt    DataType = 7
	Int         DataType = 8
	Real        DataType = 9
	Float       DataType = 10
	Bit         DataType = 11
	DateTime    DataType = 12
	DateTime4   DataType = 13
	Money       DataType = 14
	Money4      DataType = 15
	Numeric     DataType = 16
	Decimal     DataType = 17
	VarChar     DataType = 18
	VarBinary   DataType = 19
	Long        DataType = 20
	Sensitivity DataType = 21
	Boundary    DataType = 22
	Void        DataType = 23
	UShort      DataType = 24
	UniChar     DataType = 25
	Blob        DataType = 26
	Date        DataType = 27
	Time        DataType = 28
	UniText     DataType = 29
	BigInt      DataType = 30
	USmallInt   DataType = 31
	UInt        DataType = 32
	UBigInt     DataType = 33
	XML         DataType = 34
	BigDateTime DataType = 35
	BigTime     DataType = 36
	Unique      DataType = 40
)

var typeNames = map[DataType]string{
	IllegalType: "CS_ILLEGAL_TYPE",
	Char:        "CS_CHAR_TYPE",
	Binary:      "CS_BINARY_TYPE",
	LongChar:    "CS_LONGCHAR_TYPE",
	LongBinary:  "CS_LONGBINARY_TYPE",
	Text:        "CS_TEXT_TYPE",
	Image:       "CS_IMAGE_TYPE",
	TinyInt:     "CS_TINYINT_TYPE",
	SmallInt:    "CS_SMALLINT_TYPE",
	Int:         "CS_INT_TYPE",
	Real:        "CS_REAL_TYPE",
	Float:       "CS_FLOAT_TYPE",
	Bit:         "CS_BIT_TYPE",
	DateTime:    "CS_DATETIME_TYPE",
	DateTime4:   "CS_DATETIME4_TYPE",
	Money:       "CS_MONEY_TYPE",
	Money4:      "CS_MONEY4_TYPE",
	Numeric:     "CS_NUMERIC_TYPE",
	Decimal:     "CS_DECIMAL_TYPE",
	VarChar:     "CS_VARCHAR_TYPE",
	VarBinary:   "CS_VARBINARY_TYPE",
	Long:        "CS_LONG_TYPE",
	Sensitivity: "CS_SENSITIVITY_TYPE",
	Boundary:    "CS_BOUNDARY_TYPE",
	Void:        "CS_VOID_TYPE",
	UShort:      "CS_USHORT_TYPE",
	UniChar:     "CS_UNICHAR_TYPE",
	Blob:        "CS_BLOB_TYPE",
	Date:        "CS_DATE_TYPE",
	Time:        "CS_TIME_TYPE",
	UniText:     "CS_UNITEXT_TYPE",
	BigInt:      "CS_BIGINT_TYPE",
	USmallInt:   "CS_USMALLINT_TYPE",
	UInt:        "CS_UINT_TYPE",
	UBigInt:     "CS_UBIGINT_TYPE",
	XML:         "CS_XML_TYPE",
	BigDateTime: "CS_BIGDATETIME_TYPE",
	BigTime:     "CS_BIGTIME_TYPE",
	Unique:      "CS_UNIQUE_TYPE",
}

// String returns the native type name.
func (t DataType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("CS_UNKNOWN_TYPE(%d)", int32(t))
}

// IsCharacter reports whether the type is fetched as null-terminated text.
func (t DataType) IsCharacter() bool {
	switch t {
	case Char, LongChar, VarChar, UniChar, Text, UniText:
		return true
	}
	return false
}

// IsBinary reports whether the type holds raw bytes.
func (t DataType) IsBinary() bool {
	switch t {
	case Binary, LongBinary, VarBinary, Image, Blob:
		return true
	}
	return false
}

// IsDate reports whether the type can be cracked into calendar fields.
func (t DataType) IsDate() bool {
	switch t {
	case Date, Time, DateTime, DateTime4, BigDateTime, BigTime:
		return true
	}
	return false
}

// IsExactNumeric reports whether the type is a scaled decimal representation.
func (t DataType) IsExactNumeric() bool {
	switch t {
	case Money, Money4, Numeric, Decimal:
		return true
	}
	return false
}

// FixedLength returns the byte width of fixed-size types, or 0 for types
// whose width depends on the value.
func (t DataType) FixedLength() int {
	switch t {
	case Bit, TinyInt:
		return 1
	case SmallInt, USmallInt:
		return 2
	case Int, UInt, Real, Money4, DateTime4, Date, Time:
		return 4
	case BigInt, Long, UBigInt, Float, Money, DateTime, BigDateTime, BigTime:
		return 8
	}
	return 0
}

// Format holds fetch formatting flags.
type Format int32

// Format flags.
const (
	FmtUnused       Format = 0x0
	FmtNullTerm     Format = 0x1
	FmtPadNull      Format = 0x2
	FmtPadBlank     Format = 0x4
	FmtJustifyRight Format = 0x8
)

// Precision and scale markers.
const (
	// DefaultPrecision is the precision of a numeric declared without one.
	DefaultPrecision = 18

	// DefaultScale is the scale of a numeric declared without one.
	DefaultScale = 0

	// MaxPrecision is the widest numeric the wire format carries.
	MaxPrecision = 77

	// SrcValue asks a conversion to keep the source precision or scale.
	SrcValue = -2562
)

// DataFormat describes a column or conversion buffer.
type DataFormat struct {
	Name      string
	Type      DataType
	Format    Format
	MaxLength int
	Precision int
	Scale     int
	Nullable  bool
	Count     int
}

// String returns a short description for logs.
func (f DataFormat) String() string {
	if f.Name != "" {
		return fmt.Sprintf("%s %s(%d)", f.Name, f.Type, f.MaxLength)
	}
	return fmt.Sprintf("%s(%d)", f.Type, f.MaxLength)
}
