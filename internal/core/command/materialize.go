package command

import (
	"context"
	"fmt"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/result"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// column is one bound receive buffer.
type column struct {
	format  wire.DataFormat
	binding wire.Binding
	text    bool
}

// Materialize describes, binds and fetches every row of the current
// row-bearing result. A truncated cell fails the whole result.
func Materialize(ctx context.Context, s wire.Session) (*result.Rows, error) {
	n, err := s.ColumnCount()
	if err != nil {
		return nil, err
	}

	cols := make([]column, n)
	formats := make([]wire.DataFormat, n)
	for i := range cols {
		f, err := s.DescribeColumn(i)
		if err != nil {
			return nil, err
		}
		formats[i] = f

		c := &cols[i]
		c.format = f
		c.format.Format = wire.FmtUnused
		c.format.Count = 1
		if f.Type.IsCharacter() {
			// Text is fetched null terminated, so it needs one more byte.
			c.text = true
			c.format.MaxLength++
			c.format.Format = wire.FmtNullTerm
		}
		c.binding.Buffer = make([]byte, max(c.format.MaxLength, 0))

		if err := s.BindColumn(i, c.format, &c.binding); err != nil {
			return nil, err
		}
	}

	var rows []result.Row
	for {
		ok, err := s.FetchRow(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		row := make(result.Row, n)
		for i := range cols {
			cell, err := cols[i].take()
			if err != nil {
				return nil, fmt.Errorf("column %d (%s): %w", i, formats[i].Name, err)
			}
			row[i] = cell
		}
		rows = append(rows, row)
	}

	return result.NewRows(formats, rows), nil
}

// take copies the fetched value out of the receive buffer.
func (c *column) take() (*result.Cell, error) {
	b := &c.binding
	switch {
	case b.Indicator == wire.IndicatorNull:
		return nil, nil
	case b.Indicator != wire.IndicatorOK, b.DataLength > len(b.Buffer), b.DataLength < 0:
		return nil, errdefs.ErrDataTruncation
	}

	data := b.Buffer[:b.DataLength]
	if c.text && len(data) > 0 {
		// DataLength counts the terminator.
		data = data[:len(data)-1]
	}
	out := make([]byte, len(data))
	copy(out, data)
	return result.NewCell(out), nil
}
