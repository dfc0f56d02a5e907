package commands

import (
	"encoding/hex"
	"strconv"

	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/result"
	"github.com/satishbabariya/tds-go/internal/ui"
	"github.com/satishbabariya/tds-go/pkg/client"
)

const nullText = "NULL"

// render prints every item of rs in order, then its diagnostics.
func render(rs *client.ResultSet) error {
	for rs.NextResults() {
		switch rs.ResultType() {
		case result.ItemRows:
			headers, rows, err := table(rs)
			if err != nil {
				return err
			}
			if err := ui.PrintTable(headers, rows); err != nil {
				return err
			}
			ui.PrintInfo("(%d %s)", len(rows), plural(len(rows), "row", "rows"))
		case result.ItemStatus:
			status, err := rs.Status()
			if err != nil {
				return err
			}
			ui.PrintInfo("return status = %d", status)
		case result.ItemUpdateCount:
			n, err := rs.UpdateCount()
			if err != nil {
				return err
			}
			ui.PrintInfo("(%d %s affected)", n, plural(int(n), "row", "rows"))
		}
	}
	printMessages(rs.Messages())
	return nil
}

// table drains the current row item.
func table(rs *client.ResultSet) ([]string, [][]string, error) {
	n, err := rs.ColumnCount()
	if err != nil {
		return nil, nil, err
	}
	headers := make([]string, n)
	for i := range headers {
		if headers[i], err = rs.ColumnName(i); err != nil {
			return nil, nil, err
		}
	}

	var rows [][]string
	for rs.Next() {
		row := make([]string, n)
		for i := range row {
			v, err := rs.Value(client.Index(i))
			if err != nil {
				return nil, nil, err
			}
			row[i] = formatValue(v)
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func formatValue(v domain.Value) string {
	switch v.Kind() {
	case domain.KindNull:
		return nullText
	case domain.KindString:
		return v.Str()
	case domain.KindInt32, domain.KindInt64:
		return strconv.FormatInt(v.Int(), 10)
	case domain.KindFloat64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case domain.KindDecimal:
		return v.Dec().String()
	case domain.KindDate:
		return v.Time().Format("2006-01-02")
	case domain.KindTime:
		return v.Time().Format("15:04:05.000")
	case domain.KindDateTime:
		return v.Time().Format("2006-01-02 15:04:05.000")
	case domain.KindBlob:
		return "0x" + hex.EncodeToString(v.Bytes())
	}
	return v.GoString()
}

func printMessages(msgs []client.Message) {
	for _, m := range msgs {
		ui.ColorPrint(ui.SeverityColor(m.Severity), "%s\n", m.String())
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
