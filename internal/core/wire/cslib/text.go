package cslib

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

func decodeUTF16(b []byte) (string, error) {
	if len(b)%2 != 0 {
		b = b[:len(b)-1]
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", &errdefs.ConversionError{From: wire.UniChar.String(), To: wire.Char.String(), Reason: err.Error()}
	}
	return strings.TrimRight(string(out), "\x00"), nil
}

func encodeUTF16(s string) ([]byte, error) {
	out, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &errdefs.ConversionError{From: wire.Char.String(), To: wire.UniChar.String(), Reason: err.Error()}
	}
	return out, nil
}

// formatText renders a decoded value as character data. Floats use the
// shortest form, switching to exponent notation for large and small
// magnitudes so they fit a default width string.
func formatText(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return hex.EncodeToString(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil
	case decimal.Decimal:
		return formatDecimal(t), nil
	case Moment:
		return formatMoment(t), nil
	}
	return "", fmt.Errorf("%w: cannot format %T as text", errdefs.ErrUnsupportedType, v)
}

// formatDecimal keeps trailing zeros up to the value's own scale.
func formatDecimal(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

// parseHex accepts an optional 0x prefix and an odd digit count.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, &errdefs.ConversionError{From: wire.Char.String(), To: wire.Binary.String(), Reason: err.Error()}
	}
	return b, nil
}
