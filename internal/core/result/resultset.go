package result

import (
	"fmt"
	"slices"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// ResultSet is a two level cursor over the results of one command. The outer
// cursor walks items, the inner cursor walks the rows of the current item.
//
// Before the first NextResults or Next call the outer cursor is unset. Row and
// column accessors then seek the first item of the kind they need. Once the
// outer cursor reaches len(items) the set is exhausted.
//
// A ResultSet is not safe for concurrent use.
type ResultSet struct {
	conv     wire.Converter
	items    []Item
	messages []wire.Message

	pos cursor
}

// New returns a result set over items. conv converts cell buffers on access.
func New(conv wire.Converter, items []Item, messages []wire.Message) *ResultSet {
	return &ResultSet{conv: conv, items: items, messages: messages}
}

// Len returns the number of result items.
func (rs *ResultSet) Len() int {
	return len(rs.items)
}

// NextResults moves to the next result item and reports whether one exists.
func (rs *ResultSet) NextResults() bool {
	if len(rs.items) == 0 {
		return false
	}
	return rs.pos.advance(len(rs.items))
}

// NextResultsOfType moves to the next result item of the given kind.
func (rs *ResultSet) NextResultsOfType(kind ItemKind) bool {
	for rs.NextResults() {
		if rs.items[rs.pos.idx].Kind == kind {
			return true
		}
	}
	return false
}

// HasMoreResultsOfType reports whether an item of kind follows the current
// one. The cursor does not move.
func (rs *ResultSet) HasMoreResultsOfType(kind ItemKind) bool {
	start := 0
	if i, ok := rs.pos.get(); ok {
		start = min(i+1, len(rs.items))
	}
	for _, it := range rs.items[start:] {
		if it.Kind == kind {
			return true
		}
	}
	return false
}

// ResultType returns the kind of the current item, or ItemNone.
func (rs *ResultSet) ResultType() ItemKind {
	i, ok := rs.pos.get()
	if !ok || i >= len(rs.items) {
		return ItemNone
	}
	return rs.items[i].Kind
}

// seek positions the unset outer cursor on the first item of kind. On a miss
// the cursor is left exhausted.
func (rs *ResultSet) seek(kind ItemKind) bool {
	for i := range rs.items {
		if rs.items[i].Kind == kind {
			rs.pos.set(i)
			return true
		}
	}
	rs.pos.set(len(rs.items))
	return false
}

// peek returns the item the outer cursor points at, treating unset as the
// first item.
func (rs *ResultSet) peek() *Item {
	i, _ := rs.pos.get()
	if i >= len(rs.items) {
		return nil
	}
	return &rs.items[i]
}

// Next moves the row cursor of the current item. If no item is current yet it
// first seeks the first row-bearing item. It returns false on a non-row item.
func (rs *ResultSet) Next() bool {
	if _, ok := rs.pos.get(); !ok && !rs.seek(ItemRows) {
		return false
	}
	item := rs.peek()
	if item == nil || item.Kind != ItemRows {
		return false
	}
	return item.Rows.next()
}

// IsRows reports whether the current item is row-bearing.
func (rs *ResultSet) IsRows() bool { return rs.is(ItemRows) }

// IsStatus reports whether the current item is a status.
func (rs *ResultSet) IsStatus() bool { return rs.is(ItemStatus) }

// IsUpdateCount reports whether the current item is an update count.
func (rs *ResultSet) IsUpdateCount() bool { return rs.is(ItemUpdateCount) }

func (rs *ResultSet) is(kind ItemKind) bool {
	item := rs.peek()
	return item != nil && item.Kind == kind
}

func (rs *ResultSet) currentRows() (*Rows, error) {
	if _, ok := rs.pos.get(); !ok && !rs.seek(ItemRows) {
		return nil, fmt.Errorf("%w: query did not return rows", errdefs.ErrInvalidState)
	}
	item := rs.peek()
	if item == nil {
		return nil, fmt.Errorf("%w: no more results", errdefs.ErrExhausted)
	}
	if item.Kind != ItemRows {
		return nil, fmt.Errorf("%w: current results do not contain rows", errdefs.ErrInvalidState)
	}
	return item.Rows, nil
}

// ColumnCount returns the column count of the current row-bearing item.
func (rs *ResultSet) ColumnCount() (int, error) {
	rows, err := rs.currentRows()
	if err != nil {
		return 0, err
	}
	return len(rows.Columns), nil
}

// Columns returns the column descriptors of the current row-bearing item.
func (rs *ResultSet) Columns() ([]wire.DataFormat, error) {
	rows, err := rs.currentRows()
	if err != nil {
		return nil, err
	}
	return slices.Clone(rows.Columns), nil
}

// Column returns the descriptor of one column of the current item.
func (rs *ResultSet) Column(id ColumnID) (wire.DataFormat, error) {
	rows, err := rs.currentRows()
	if err != nil {
		return wire.DataFormat{}, err
	}
	i, ok := rows.columnIndex(id)
	if !ok {
		return wire.DataFormat{}, fmt.Errorf("%w: %v", errdefs.ErrInvalidColumn, id)
	}
	return rows.Columns[i], nil
}

// ColumnName returns the name of column i of the current item.
func (rs *ResultSet) ColumnName(i int) (string, error) {
	f, err := rs.Column(Index(i))
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

// cell returns the format and cell of a column in the current row. A nil cell
// is NULL.
func (rs *ResultSet) cell(id ColumnID) (wire.DataFormat, *Cell, error) {
	i, ok := rs.pos.get()
	if !ok {
		return wire.DataFormat{}, nil, fmt.Errorf("%w: no current result", errdefs.ErrInvalidState)
	}
	if i >= len(rs.items) {
		return wire.DataFormat{}, nil, errdefs.ErrExhausted
	}
	item := &rs.items[i]
	if item.Kind != ItemRows {
		return wire.DataFormat{}, nil, fmt.Errorf("%w: current results do not contain rows", errdefs.ErrInvalidState)
	}

	rows := item.Rows
	col, ok := rows.columnIndex(id)
	if !ok {
		return wire.DataFormat{}, nil, fmt.Errorf("%w: %v", errdefs.ErrInvalidColumn, id)
	}
	row, ok := rows.pos.get()
	if !ok {
		return wire.DataFormat{}, nil, fmt.Errorf("%w: no current row", errdefs.ErrInvalidState)
	}
	if row >= len(rows.Data) {
		return wire.DataFormat{}, nil, errdefs.ErrExhausted
	}
	return rows.Columns[col], rows.Data[row][col], nil
}

// Status returns the code of the current status item. If no item is current
// it seeks the first status item.
func (rs *ResultSet) Status() (int32, error) {
	item, err := rs.scalar(ItemStatus)
	if err != nil {
		return 0, err
	}
	return item.Status, nil
}

// UpdateCount returns the count of the current update count item. If no item
// is current it seeks the first update count item.
func (rs *ResultSet) UpdateCount() (uint64, error) {
	item, err := rs.scalar(ItemUpdateCount)
	if err != nil {
		return 0, err
	}
	return item.Count, nil
}

func (rs *ResultSet) scalar(kind ItemKind) (*Item, error) {
	if _, ok := rs.pos.get(); !ok && !rs.seek(kind) {
		return nil, fmt.Errorf("%w: results do not contain any %s", errdefs.ErrInvalidState, kind)
	}
	item := rs.peek()
	if item == nil {
		return nil, fmt.Errorf("%w: no more results", errdefs.ErrExhausted)
	}
	if item.Kind != kind {
		return nil, fmt.Errorf("%w: current results are not a %s", errdefs.ErrInvalidState, kind)
	}
	return item, nil
}

// TotalUpdateCount sums every update count item.
func (rs *ResultSet) TotalUpdateCount() uint64 {
	var n uint64
	for i := range rs.items {
		if rs.items[i].Kind == ItemUpdateCount {
			n += rs.items[i].Count
		}
	}
	return n
}

// Messages returns every diagnostic collected while the command ran.
func (rs *ResultSet) Messages() []wire.Message {
	return slices.Clone(rs.messages)
}

// Error returns the first error-level diagnostic, falling back to the first
// diagnostic of any severity. It returns nil when there are none.
func (rs *ResultSet) Error() *wire.Message {
	if m := wire.FirstError(rs.messages); m != nil {
		return m
	}
	if len(rs.messages) > 0 {
		return &rs.messages[0]
	}
	return nil
}
