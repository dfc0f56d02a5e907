package command

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/result"
	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/core/wire/wiretest"
)

func TestExecuteClassificationOrder(t *testing.T) {
	cols := []wire.DataFormat{wiretest.Column("id", wire.Int), wiretest.CharColumn("name", 16)}
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		wiretest.Rows(cols,
			[]wiretest.Cell{wiretest.Int(1), wiretest.Char("one")},
			[]wiretest.Cell{wiretest.Int(2), wiretest.Char("two")},
			[]wiretest.Cell{wiretest.Int(3), wiretest.Null()},
		),
		wiretest.Succeed(3),
		wiretest.Status(0),
		wiretest.Done(wire.NoCount),
	}})

	rs, err := Execute(context.Background(), s, "exec sp_things")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec sp_things"}, s.Submitted)
	assert.Equal(t, 3, rs.Len())

	require.True(t, rs.NextResults())
	assert.True(t, rs.IsRows())
	var names []string
	rows := 0
	for rs.Next() {
		rows++
		name, err := rs.GetString(result.Name("name"))
		require.NoError(t, err)
		if name.Valid {
			names = append(names, name.String)
		}
	}
	assert.Equal(t, 3, rows)
	assert.Equal(t, []string{"one", "two"}, names)

	require.True(t, rs.NextResults())
	assert.True(t, rs.IsUpdateCount())
	n, err := rs.UpdateCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	require.True(t, rs.NextResults())
	assert.True(t, rs.IsStatus())
	code, err := rs.Status()
	require.NoError(t, err)
	assert.Equal(t, int32(0), code)

	assert.False(t, rs.NextResults())
	assert.Empty(t, s.Cancels)
}

func TestExecuteNullAcrossAccessors(t *testing.T) {
	cols := []wire.DataFormat{wiretest.Column("v", wire.Int)}
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		wiretest.Rows(cols, []wiretest.Cell{wiretest.Null()}),
	}})

	rs, err := Execute(context.Background(), s, "select null")
	require.NoError(t, err)
	require.True(t, rs.Next())

	i, err := rs.GetInt32(result.Index(0))
	require.NoError(t, err)
	assert.False(t, i.Valid)
	str, err := rs.GetString(result.Index(0))
	require.NoError(t, err)
	assert.False(t, str.Valid)
	d, err := rs.GetDecimal(result.Index(0))
	require.NoError(t, err)
	assert.False(t, d.Valid)
	b, err := rs.GetBlob(result.Index(0))
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestExecuteTruncationFailsCommand(t *testing.T) {
	cols := []wire.DataFormat{wiretest.CharColumn("s", 4)}

	t.Run("indicator", func(t *testing.T) {
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
			wiretest.Rows(cols, []wiretest.Cell{wiretest.Char("ok")}, []wiretest.Cell{wiretest.Truncated([]byte("ab"))}),
			wiretest.Done(2),
		}})
		rs, err := Execute(context.Background(), s, "select s")
		assert.Nil(t, rs)
		assert.ErrorIs(t, err, errdefs.ErrDataTruncation)
		assert.True(t, errdefs.IsTruncation(err))
		assert.Equal(t, []wire.CancelKind{wire.CancelAll}, s.Cancels)
	})

	t.Run("overflowing buffer", func(t *testing.T) {
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
			wiretest.Rows(cols, []wiretest.Cell{wiretest.Char("too long")}),
		}})
		_, err := Execute(context.Background(), s, "select s")
		assert.ErrorIs(t, err, errdefs.ErrDataTruncation)
	})
}

func TestExecuteTextBufferHoldsDeclaredWidth(t *testing.T) {
	cols := []wire.DataFormat{wiretest.CharColumn("s", 4)}
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		wiretest.Rows(cols, []wiretest.Cell{wiretest.Char("abcd")}, []wiretest.Cell{wiretest.Char("")}),
	}})

	rs, err := Execute(context.Background(), s, "select s")
	require.NoError(t, err)
	require.True(t, rs.Next())
	v, err := rs.GetString(result.Index(0))
	require.NoError(t, err)
	assert.Equal(t, "abcd", v.String)

	require.True(t, rs.Next())
	v, err = rs.GetString(result.Index(0))
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, "", v.String)

	f, err := rs.Column(result.Index(0))
	require.NoError(t, err)
	assert.Equal(t, 4, f.MaxLength)
}

// stampedSession overwrites the terminator slot of every null terminated
// binding so the reader cannot rely on its value.
type stampedSession struct {
	*wiretest.Session
	bindings map[int]*wire.Binding
}

func (s *stampedSession) BindColumn(i int, f wire.DataFormat, b *wire.Binding) error {
	if f.Format&wire.FmtNullTerm != 0 {
		s.bindings[i] = b
	}
	return s.Session.BindColumn(i, f, b)
}

func (s *stampedSession) FetchRow(ctx context.Context) (bool, error) {
	ok, err := s.Session.FetchRow(ctx)
	if ok {
		for _, b := range s.bindings {
			if b.Indicator == wire.IndicatorOK && b.DataLength > 0 {
				b.Buffer[b.DataLength-1] = 'X'
			}
		}
	}
	return ok, err
}

func TestExecuteDropsTextTerminator(t *testing.T) {
	cols := []wire.DataFormat{
		wiretest.CharColumn("s", 8),
		wiretest.Column("u", wire.UniChar),
	}
	s := &stampedSession{
		Session: wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
			wiretest.Rows(cols, []wiretest.Cell{wiretest.Char("abc"), wiretest.Binary([]byte{'A', 0, 'B', 0})}),
		}}),
		bindings: map[int]*wire.Binding{},
	}

	rs, err := Execute(context.Background(), s, "select s, u")
	require.NoError(t, err)
	require.True(t, rs.Next())

	v, err := rs.GetString(result.Index(0))
	require.NoError(t, err)
	assert.Equal(t, "abc", v.String)

	u, err := rs.GetString(result.Index(1))
	require.NoError(t, err)
	assert.Equal(t, "AB", u.String)
}

func TestExecuteFailure(t *testing.T) {
	t.Run("most severe message wins", func(t *testing.T) {
		s := wiretest.NewSession(wiretest.Response{
			Messages: []wire.Message{wiretest.ServerMessage(5701, 0, "Changed database context")},
			Results: []wiretest.Result{
				wiretest.Fail(
					wiretest.ServerMessage(208, 16, "Invalid object name 'nope'."),
					wiretest.ServerMessage(3621, 10, "The statement has been terminated."),
				),
				wiretest.Done(wire.NoCount),
			},
		})
		_, err := Execute(context.Background(), s, "select * from nope")
		require.Error(t, err)
		assert.Equal(t, "Invalid object name 'nope'.", err.Error())
		assert.True(t, errdefs.IsExecutionFailed(err))

		var exec *ExecutionError
		require.ErrorAs(t, err, &exec)
		assert.Len(t, exec.Messages, 3)

		var msg *wire.Message
		require.ErrorAs(t, err, &msg)
		assert.Equal(t, 208, msg.Code)
	})

	t.Run("no messages", func(t *testing.T) {
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{wiretest.Fail()}})
		_, err := Execute(context.Background(), s, "x")
		assert.ErrorIs(t, err, errdefs.ErrExecutionFailed)
		assert.Equal(t, errdefs.ErrExecutionFailed.Error(), err.Error())
	})

	t.Run("later results are still drained", func(t *testing.T) {
		late := wiretest.ServerMessage(50000, 16, "late error")
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
			wiretest.Fail(),
			{Kind: wire.ResultCmdDone, Count: wire.NoCount, Messages: []wire.Message{late}},
		}})
		_, err := Execute(context.Background(), s, "x")
		assert.EqualError(t, err, "late error")
		assert.Empty(t, s.Dropped)
		assert.Empty(t, s.Cancels)
	})

	t.Run("non-zero status", func(t *testing.T) {
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
			wiretest.Status(-6),
			wiretest.Done(wire.NoCount),
		}})
		_, err := Execute(context.Background(), s, "exec sp_fails")
		assert.ErrorIs(t, err, errdefs.ErrExecutionFailed)
	})
}

func TestExecuteInformationalMessagesDoNotFail(t *testing.T) {
	info := wiretest.ServerMessage(5701, 0, "Changed database context to 'master'.")
	s := wiretest.NewSession(wiretest.Response{
		Messages: []wire.Message{info},
		Results:  []wiretest.Result{wiretest.Done(1)},
	})

	rs, err := Execute(context.Background(), s, "use master")
	require.NoError(t, err)
	assert.Equal(t, []wire.Message{info}, rs.Messages())
	require.NotNil(t, rs.Error())
	assert.Equal(t, 5701, rs.Error().Code)
	assert.Empty(t, s.Dropped)
}

func TestExecuteCancelsUnconsumedResults(t *testing.T) {
	cols := []wire.DataFormat{wiretest.Column("v", wire.Int)}
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		{Kind: wire.ResultCompute, Columns: cols, Rows: [][]wiretest.Cell{{wiretest.Int(1)}}},
		{Kind: wire.ResultParam, Columns: cols, Rows: [][]wiretest.Cell{{wiretest.Int(2)}}},
		{Kind: wire.ResultCursor},
		wiretest.Rows(cols, []wiretest.Cell{wiretest.Int(3)}),
		wiretest.Done(1),
	}})

	rs, err := Execute(context.Background(), s, "select v compute sum(v)")
	require.NoError(t, err)
	assert.Equal(t, []wire.CancelKind{wire.CancelCurrent, wire.CancelCurrent, wire.CancelCurrent}, s.Cancels)
	assert.Equal(t, 2, rs.Len())

	require.True(t, rs.Next())
	v, err := rs.GetInt32(result.Index(0))
	require.NoError(t, err)
	assert.Equal(t, int32(3), v.Int32)
}

func TestExecuteDriverErrors(t *testing.T) {
	t.Run("submit", func(t *testing.T) {
		cause := errors.New("connection reset")
		s := wiretest.NewSession(wiretest.Response{SubmitErr: &wire.DriverError{Op: "ct_send", Cause: cause}})
		s.Queue(wiretest.ServerMessage(20006, 9, "Write to the server failed"))

		_, err := Execute(context.Background(), s, "select 1")
		assert.ErrorIs(t, err, cause)
		var de *wire.DriverError
		require.ErrorAs(t, err, &de)
		require.NotNil(t, de.Message)
		assert.Equal(t, 20006, de.Message.Code)
	})

	t.Run("next result", func(t *testing.T) {
		boom := &wire.DriverError{Op: "ct_results", Code: -1}
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
			wiretest.Done(1),
			{Err: boom},
		}})
		_, err := Execute(context.Background(), s, "select 1")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []wire.CancelKind{wire.CancelAll}, s.Cancels)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{wiretest.Done(1)}})
		_, err := Execute(ctx, s, "select 1")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, []wire.CancelKind{wire.CancelAll}, s.Cancels)
	})
}

func TestExecuteMessageHandler(t *testing.T) {
	s := wiretest.NewSession(wiretest.Response{
		Messages: []wire.Message{
			wiretest.ServerMessage(5701, 0, "Changed database context"),
			wiretest.ServerMessage(5703, 0, "Changed language setting"),
		},
		Results: []wiretest.Result{wiretest.Done(wire.NoCount)},
	})

	var seen []int
	rs, err := Execute(context.Background(), s, "use master", WithMessageHandler(func(m wire.Message) bool {
		seen = append(seen, m.Code)
		return m.Code != 5703
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{5701, 5703}, seen)
	require.Len(t, rs.Messages(), 1)
	assert.Equal(t, 5701, rs.Messages()[0].Code)
	assert.Equal(t, 0, rs.Len())
}

func TestExecuteDecimalAndDates(t *testing.T) {
	cols := []wire.DataFormat{wiretest.NumericColumn("amount", 10, 2), wiretest.Column("n", wire.Numeric)}
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		wiretest.Rows(cols, []wiretest.Cell{
			wiretest.Numeric(decimal.RequireFromString("1234.56"), 10, 2),
			wiretest.Numeric(decimal.NewFromInt(77), wire.DefaultPrecision, 0),
		}),
	}})

	rs, err := Execute(context.Background(), s, "select amount, n")
	require.NoError(t, err)
	require.True(t, rs.Next())

	d, err := rs.GetDecimal(result.Name("amount"))
	require.NoError(t, err)
	assert.Equal(t, "1234.56", d.Decimal.String())

	v, err := rs.Value(result.Name("n"))
	require.NoError(t, err)
	assert.Equal(t, int64(77), v.Int())
}
