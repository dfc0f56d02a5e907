// Package wiretest provides a scripted in-memory wire.Session for tests.
package wiretest

import (
	"context"
	"fmt"

	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/core/wire/cslib"
)

// Cell is one scripted column value.
type Cell struct {
	Data []byte
	Null bool
	// Truncated forces a positive indicator even if the data fits.
	Truncated bool
}

// Result is one scripted result of a command.
type Result struct {
	Kind    wire.ResultKind
	Columns []wire.DataFormat
	Rows    [][]Cell
	// Count is reported by AffectedRowCount. Use wire.NoCount for none.
	Count int64
	// Messages are queued when the result becomes current.
	Messages []wire.Message
	// Err is returned by NextResult instead of advancing to this result.
	Err error
}

// Response scripts everything that happens after one Submit.
type Response struct {
	SubmitErr error
	Messages  []wire.Message
	Results   []Result
}

// Session replays Responses, one per submitted command. Messages left
// undrained when the session advances are moved to Dropped, the way a
// native driver clears its queue.
type Session struct {
	*cslib.Context

	Responses []Response
	Submitted []string
	Cancels   []wire.CancelKind
	Dropped   []wire.Message
	Closed    bool

	results  []Result
	pos      int
	row      int
	queue    []wire.Message
	bindings map[int]*binding
}

type binding struct {
	format wire.DataFormat
	dest   *wire.Binding
}

var (
	_ wire.Session = (*Session)(nil)
	_ wire.Pinger  = (*Session)(nil)
	_ wire.Closer  = (*Session)(nil)
)

// NewSession returns a session that answers with the given responses.
func NewSession(responses ...Response) *Session {
	return &Session{Context: cslib.New(), Responses: responses, pos: -1}
}

// Submit starts the next scripted response.
func (s *Session) Submit(_ context.Context, sql string) error {
	s.Submitted = append(s.Submitted, sql)
	if len(s.Responses) == 0 {
		return &wire.DriverError{Op: "ct_send", Code: 0, Cause: fmt.Errorf("no scripted response for %q", sql)}
	}
	resp := s.Responses[0]
	s.Responses = s.Responses[1:]
	if resp.SubmitErr != nil {
		return resp.SubmitErr
	}

	s.results = resp.Results
	s.pos = -1
	s.row = 0
	s.bindings = nil
	s.queue = append(s.queue, resp.Messages...)
	return nil
}

// NextResult advances to the next scripted result.
func (s *Session) NextResult(_ context.Context) (bool, wire.ResultKind, error) {
	s.Dropped = append(s.Dropped, s.queue...)
	s.queue = nil

	if s.pos+1 >= len(s.results) {
		s.pos = len(s.results)
		return false, wire.ResultUnknown, nil
	}
	next := s.results[s.pos+1]
	if next.Err != nil {
		s.queue = append(s.queue, next.Messages...)
		s.pos++
		return false, wire.ResultUnknown, next.Err
	}

	s.pos++
	s.row = 0
	s.bindings = nil
	s.queue = append(s.queue, next.Messages...)
	return true, next.Kind, nil
}

// Cancel discards the current result or the rest of the command.
func (s *Session) Cancel(_ context.Context, kind wire.CancelKind) error {
	s.Cancels = append(s.Cancels, kind)
	switch kind {
	case wire.CancelAll:
		s.pos = len(s.results)
	case wire.CancelCurrent:
		if cur := s.current(); cur != nil {
			s.row = len(cur.Rows)
		}
	}
	return nil
}

func (s *Session) current() *Result {
	if s.pos < 0 || s.pos >= len(s.results) {
		return nil
	}
	return &s.results[s.pos]
}

// ColumnCount returns the column count of the current result.
func (s *Session) ColumnCount() (int, error) {
	cur := s.current()
	if cur == nil {
		return 0, &wire.DriverError{Op: "ct_res_info", Cause: fmt.Errorf("no current result")}
	}
	return len(cur.Columns), nil
}

// DescribeColumn returns the scripted format of column i.
func (s *Session) DescribeColumn(i int) (wire.DataFormat, error) {
	cur := s.current()
	if cur == nil || i < 0 || i >= len(cur.Columns) {
		return wire.DataFormat{}, &wire.DriverError{Op: "ct_describe", Cause: fmt.Errorf("no column %d", i)}
	}
	return cur.Columns[i], nil
}

// BindColumn records the destination for column i.
func (s *Session) BindColumn(i int, f wire.DataFormat, b *wire.Binding) error {
	cur := s.current()
	if cur == nil || i < 0 || i >= len(cur.Columns) {
		return &wire.DriverError{Op: "ct_bind", Cause: fmt.Errorf("no column %d", i)}
	}
	if s.bindings == nil {
		s.bindings = make(map[int]*binding)
	}
	s.bindings[i] = &binding{format: f, dest: b}
	return nil
}

// FetchRow copies the next scripted row into the bindings.
func (s *Session) FetchRow(_ context.Context) (bool, error) {
	cur := s.current()
	if cur == nil {
		return false, &wire.DriverError{Op: "ct_fetch", Cause: fmt.Errorf("no current result")}
	}
	if s.row >= len(cur.Rows) {
		return false, nil
	}

	row := cur.Rows[s.row]
	s.row++
	for i, cell := range row {
		b, ok := s.bindings[i]
		if !ok {
			continue
		}
		fill(b, cell)
	}
	return true, nil
}

func fill(b *binding, cell Cell) {
	dst := b.dest
	if cell.Null {
		dst.Indicator = wire.IndicatorNull
		dst.DataLength = 0
		return
	}

	data := cell.Data
	if b.format.Format&wire.FmtNullTerm != 0 {
		data = append(append([]byte{}, data...), 0)
	}
	n := copy(dst.Buffer, data)
	dst.DataLength = n
	dst.Indicator = wire.IndicatorOK
	if n < len(data) {
		dst.Indicator = int16(len(data) - n)
	} else if cell.Truncated {
		dst.Indicator = 1
	}
}

// AffectedRowCount returns the scripted count of the current result.
func (s *Session) AffectedRowCount() (int64, error) {
	cur := s.current()
	if cur == nil {
		return wire.NoCount, nil
	}
	return cur.Count, nil
}

// DrainDiagnostics returns and clears queued messages.
func (s *Session) DrainDiagnostics() []wire.Message {
	out := s.queue
	s.queue = nil
	return out
}

// Queue adds messages as if the server had just sent them.
func (s *Session) Queue(msgs ...wire.Message) {
	s.queue = append(s.queue, msgs...)
}

// Ping always succeeds while the session is open.
func (s *Session) Ping(context.Context) error {
	if s.Closed {
		return &wire.DriverError{Op: "ct_con_props", Cause: fmt.Errorf("session closed")}
	}
	return nil
}

// Close marks the session closed.
func (s *Session) Close() error {
	s.Closed = true
	return nil
}
