// Package encoder renders parameter values as SQL literal text.
//
// This is the only path by which caller data reaches generated SQL. Strings
// are single quoted with embedded quotes doubled; every other kind renders
// from typed data and never copies caller text unescaped.
package encoder

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
)

// Writer is the sink literals are rendered into.
type Writer interface {
	io.Writer
	io.StringWriter
	io.ByteWriter
}

const (
	dateLayout = "2006/01/02"
	timeLayout = "15:04:05"
)

var errNotFinite = errors.New("value is not finite")

// Encode writes the literal form of v to w.
func Encode(w Writer, v domain.Value) error {
	var err error
	switch v.Kind() {
	case domain.KindNull:
		_, err = w.WriteString("null")
	case domain.KindString:
		err = writeQuoted(w, v.Str())
	case domain.KindInt32, domain.KindInt64:
		_, err = w.WriteString(strconv.FormatInt(v.Int(), 10))
	case domain.KindFloat64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return &errdefs.EncodeError{Kind: v.Kind().String(), Cause: errNotFinite}
		}
		_, err = w.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	case domain.KindDecimal:
		_, err = w.WriteString(v.Dec().String())
	case domain.KindDate:
		err = writeQuoted(w, v.Time().Format(dateLayout))
	case domain.KindTime:
		err = writeQuoted(w, formatClock(v.Time()))
	case domain.KindDateTime:
		err = writeQuoted(w, v.Time().Format(dateLayout)+" "+formatClock(v.Time()))
	case domain.KindBlob:
		_, err = w.WriteString("0x")
		if err == nil {
			_, err = w.WriteString(strings.ToUpper(hex.EncodeToString(v.Bytes())))
		}
	default:
		return &errdefs.EncodeError{Kind: v.Kind().String(), Cause: fmt.Errorf("unknown value kind")}
	}

	if err != nil {
		return &errdefs.EncodeError{Kind: v.Kind().String(), Cause: err}
	}
	return nil
}

// String returns the literal form of v.
func String(v domain.Value) (string, error) {
	var b strings.Builder
	if err := Encode(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeQuoted(w Writer, s string) error {
	if err := w.WriteByte('\''); err != nil {
		return err
	}
	for {
		i := strings.IndexByte(s, '\'')
		if i < 0 {
			break
		}
		if _, err := w.WriteString(s[:i+1]); err != nil {
			return err
		}
		if err := w.WriteByte('\''); err != nil {
			return err
		}
		s = s[i+1:]
	}
	if _, err := w.WriteString(s); err != nil {
		return err
	}
	return w.WriteByte('\'')
}

// formatClock renders HH:MM:SS with a fractional part only when the value has
// one, using 3, 6 or 9 digits.
func formatClock(t time.Time) string {
	s := t.Format(timeLayout)
	ns := t.Nanosecond()
	switch {
	case ns == 0:
		return s
	case ns%1_000_000 == 0:
		return fmt.Sprintf("%s.%03d", s, ns/1_000_000)
	case ns%1_000 == 0:
		return fmt.Sprintf("%s.%06d", s, ns/1_000)
	default:
		return fmt.Sprintf("%s.%09d", s, ns)
	}
}
