// Package command drives one command through a wire session and collects
// its results.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/satishbabariya/tds-go/internal/core/convert"
	"github.com/satishbabariya/tds-go/internal/core/errdefs"
	"github.com/satishbabariya/tds-go/internal/core/result"
	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/debug"
)

// MessageHandler sees every diagnostic as it is drained. Returning false
// drops the message from the result set.
type MessageHandler func(wire.Message) bool

// Option configures an execution.
type Option func(*execution)

// WithMessageHandler installs h for the execution.
func WithMessageHandler(h MessageHandler) Option {
	return func(x *execution) {
		x.handler = h
	}
}

// WithLogger replaces the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(x *execution) {
		if l != nil {
			x.log = l
		}
	}
}

// ExecutionError reports a command the server marked as failed.
type ExecutionError struct {
	// Message is the most severe diagnostic, or nil if none arrived.
	Message *wire.Message
	// Messages holds every diagnostic collected before the failure.
	Messages []wire.Message
}

// Error returns the server wording of the most severe diagnostic.
func (e *ExecutionError) Error() string {
	if e.Message != nil {
		return e.Message.Text
	}
	return errdefs.ErrExecutionFailed.Error()
}

// Unwrap exposes ErrExecutionFailed and the diagnostic itself.
func (e *ExecutionError) Unwrap() []error {
	if e.Message != nil {
		return []error{errdefs.ErrExecutionFailed, e.Message}
	}
	return []error{errdefs.ErrExecutionFailed}
}

type execution struct {
	session  wire.Session
	handler  MessageHandler
	log      *slog.Logger
	items    []result.Item
	messages []wire.Message
	failed   bool
}

// Execute submits sql and classifies every result until the session reports
// no more. Diagnostics are drained after each step because the session clears
// them as it advances.
func Execute(ctx context.Context, s wire.Session, sql string, opts ...Option) (*result.ResultSet, error) {
	x := &execution{session: s, log: debug.Logger()}
	for _, opt := range opts {
		opt(x)
	}
	x.log.Debug("submitting command", "sql", sql)

	if err := s.Submit(ctx, sql); err != nil {
		x.drain()
		return nil, x.attach(err)
	}
	x.drain()

	for {
		if err := ctx.Err(); err != nil {
			return nil, x.abort(ctx, err)
		}

		more, kind, err := s.NextResult(ctx)
		x.drain()
		if err != nil {
			return nil, x.abort(ctx, x.attach(err))
		}
		if !more {
			break
		}

		x.log.Debug("result", "kind", kind)
		if err := x.dispatch(ctx, kind); err != nil {
			return nil, x.abort(ctx, err)
		}
		x.drain()
	}

	if x.failed {
		failure := &ExecutionError{Message: wire.MostSevere(x.messages), Messages: x.messages}
		x.log.Debug("command failed", "error", failure.Error(), "messages", len(x.messages))
		return nil, failure
	}

	x.log.Debug("command done", "results", len(x.items), "messages", len(x.messages))
	return result.New(s, x.items, x.messages), nil
}

func (x *execution) dispatch(ctx context.Context, kind wire.ResultKind) error {
	switch kind {
	case wire.ResultRows:
		rows, err := Materialize(ctx, x.session)
		if err != nil {
			return err
		}
		x.items = append(x.items, result.RowsItem(rows))

	case wire.ResultStatus:
		code, err := x.status(ctx)
		if err != nil {
			return err
		}
		x.items = append(x.items, result.StatusItem(code))
		if code != 0 {
			x.failed = true
		}

	case wire.ResultCompute, wire.ResultCursor, wire.ResultParam:
		return x.session.Cancel(ctx, wire.CancelCurrent)

	case wire.ResultCmdFail:
		x.failed = true

	case wire.ResultCmdSucceed, wire.ResultCmdDone:
		n, err := x.session.AffectedRowCount()
		if err != nil {
			return err
		}
		if n != wire.NoCount && n >= 0 {
			x.items = append(x.items, result.UpdateCountItem(uint64(n)))
		}
	}
	return nil
}

// status reads the code carried by a status result.
func (x *execution) status(ctx context.Context) (int32, error) {
	rows, err := Materialize(ctx, x.session)
	if err != nil {
		return 0, err
	}
	if rows.Len() == 0 || len(rows.Columns) == 0 || rows.Data[0][0] == nil {
		return 0, fmt.Errorf("%w: status result carried no value", errdefs.ErrInvalidState)
	}
	return convert.Int32(x.session, rows.Columns[0], rows.Data[0][0].Bytes())
}

func (x *execution) drain() {
	for _, m := range x.session.DrainDiagnostics() {
		if x.handler != nil && !x.handler(m) {
			continue
		}
		x.messages = append(x.messages, m)
	}
}

// attach fills in the diagnostic of a driver error that arrived without one.
func (x *execution) attach(err error) error {
	var de *wire.DriverError
	if errors.As(err, &de) && de.Message == nil {
		de.Message = wire.MostSevere(x.messages)
	}
	return err
}

// abort discards whatever the command still has pending.
func (x *execution) abort(ctx context.Context, err error) error {
	if cerr := x.session.Cancel(context.WithoutCancel(ctx), wire.CancelAll); cerr != nil {
		x.log.Warn("cancel after failure", "error", cerr)
	}
	x.log.Debug("command aborted", "error", err)
	return err
}
