package sqlwire

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/satishbabariya/tds-go/internal/core/wire"
)

// Severity assigned to statement errors from drivers without a severity.
const errorSeverity = 16

// diagnose turns a driver error into a diagnostic message.
func diagnose(err error) wire.Message {
	var (
		myErr *mysql.MySQLError
		pgErr *pq.Error
		ltErr sqlite3.Error
	)
	switch {
	case errors.As(err, &myErr):
		return wire.Message{
			Origin:   wire.OriginServer,
			Severity: errorSeverity,
			Code:     int(myErr.Number),
			SQLState: strings.TrimRight(string(myErr.SQLState[:]), "\x00"),
			Server:   string(MySQL),
			Text:     myErr.Message,
		}
	case errors.As(err, &pgErr):
		return postgresMessage(pgErr)
	case errors.As(err, &ltErr):
		return wire.Message{
			Origin:   wire.OriginServer,
			Severity: errorSeverity,
			Code:     int(ltErr.Code),
			State:    int(ltErr.ExtendedCode),
			Server:   string(SQLite),
			Text:     ltErr.Error(),
		}
	}
	return wire.Message{Origin: wire.OriginClient, Severity: errorSeverity, Text: err.Error()}
}

// postgresMessage maps a server error or notice. Notices carry severities
// below the error threshold so they never fail a command on their own.
func postgresMessage(e *pq.Error) wire.Message {
	severity := errorSeverity
	switch e.Severity {
	case pq.Efatal:
		severity = 20
	case pq.Epanic:
		severity = 21
	case pq.Ewarning:
		severity = 10
	case pq.Enotice, pq.Edebug, pq.Einfo, pq.Elog:
		severity = 0
	}

	text := e.Message
	if e.Detail != "" {
		text += "\n" + e.Detail
	}
	return wire.Message{
		Origin:   wire.OriginServer,
		Severity: severity,
		SQLState: string(e.Code),
		Server:   string(Postgres),
		Proc:     e.Routine,
		Text:     text,
	}
}

// fatal reports errors that mean the connection itself is gone or the call
// was interrupted, as opposed to a statement the server rejected.
func fatal(err error) bool {
	return errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
