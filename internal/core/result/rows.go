// Package result holds the materialized results of one command and the
// cursor callers walk them with.
package result

import (
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Cell is an immutable materialized column value. Accessors read the same
// buffer on every call.
type Cell struct {
	data []byte
}

// NewCell wraps b. The cell takes ownership of b.
func NewCell(b []byte) *Cell {
	return &Cell{data: b}
}

// Bytes returns the raw buffer. Callers must not modify it.
func (c *Cell) Bytes() []byte {
	return c.data
}

// Len returns the buffer length.
func (c *Cell) Len() int {
	return len(c.data)
}

// Row is one fetched row, aligned with the columns. A nil cell is NULL.
type Row []*Cell

// cursor is an optional index. The zero value is "not started".
type cursor struct {
	idx     int
	started bool
}

func (c cursor) get() (int, bool) {
	return c.idx, c.started
}

func (c *cursor) set(i int) {
	c.idx = i
	c.started = true
}

// advance moves to the next index, clamped at limit, and reports whether it
// is still below limit.
func (c *cursor) advance(limit int) bool {
	switch {
	case !c.started:
		c.set(0)
	case c.idx < limit:
		c.idx++
	}
	return c.idx < limit
}

// Rows is one row-bearing result.
type Rows struct {
	Columns []wire.DataFormat
	Data    []Row

	pos cursor
}

// NewRows returns a row set positioned before its first row.
func NewRows(columns []wire.DataFormat, data []Row) *Rows {
	return &Rows{Columns: columns, Data: data}
}

// Len returns the number of rows.
func (r *Rows) Len() int {
	return len(r.Data)
}

func (r *Rows) next() bool {
	if len(r.Data) == 0 {
		r.pos.set(0)
		return false
	}
	return r.pos.advance(len(r.Data))
}

func (r *Rows) columnIndex(id ColumnID) (int, bool) {
	i, ok := id.resolve(r.Columns)
	if !ok || i < 0 || i >= len(r.Columns) {
		return 0, false
	}
	return i, true
}

// ItemKind classifies a result item.
type ItemKind int

// Result item kinds. ItemNone is reported when no item is current.
const (
	ItemNone ItemKind = iota
	ItemRows
	ItemStatus
	ItemUpdateCount
)

// String returns the kind name.
func (k ItemKind) String() string {
	switch k {
	case ItemRows:
		return "rows"
	case ItemStatus:
		return "status"
	case ItemUpdateCount:
		return "update count"
	default:
		return "none"
	}
}

// Item is one result of a command.
type Item struct {
	Kind   ItemKind
	Rows   *Rows
	Status int32
	Count  uint64
}

// RowsItem returns a row-bearing item.
func RowsItem(r *Rows) Item { return Item{Kind: ItemRows, Rows: r} }

// StatusItem returns a status item.
func StatusItem(code int32) Item { return Item{Kind: ItemStatus, Status: code} }

// UpdateCountItem returns an update count item.
func UpdateCountItem(n uint64) Item { return Item{Kind: ItemUpdateCount, Count: n} }

// ColumnID addresses a column by position or by name.
type ColumnID interface {
	resolve(cols []wire.DataFormat) (int, bool)
}

// Index addresses a column by zero-based position.
type Index int

func (i Index) resolve([]wire.DataFormat) (int, bool) {
	return int(i), true
}

// Name addresses a column by its name. The first matching column wins.
type Name string

func (n Name) resolve(cols []wire.DataFormat) (int, bool) {
	for i := range cols {
		if cols[i].Name == string(n) {
			return i, true
		}
	}
	return 0, false
}
