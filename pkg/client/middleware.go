// Package client provides middleware support.
package client

import (
	"context"
	"log/slog"
	"time"
)

// ExecFunc runs generated SQL on the connection's session.
type ExecFunc func(ctx context.Context, sql string) (*ResultSet, error)

// Middleware wraps command execution.
type Middleware func(next ExecFunc) ExecFunc

func chain(exec ExecFunc, mws []Middleware) ExecFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		exec = mws[i](exec)
	}
	return exec
}

// LogMiddleware creates a middleware that logs commands.
func LogMiddleware(logger *slog.Logger) Middleware {
	return func(next ExecFunc) ExecFunc {
		return func(ctx context.Context, sql string) (*ResultSet, error) {
			start := time.Now()
			rs, err := next(ctx, sql)
			if err != nil {
				logger.Error("command failed", "sql", sql, "duration", time.Since(start), "error", err)
				return nil, err
			}
			logger.Info("command completed", "sql", sql, "duration", time.Since(start), "results", rs.Len())
			return rs, nil
		}
	}
}

// TimeoutMiddleware creates a middleware that enforces timeouts.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next ExecFunc) ExecFunc {
		return func(ctx context.Context, sql string) (*ResultSet, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, sql)
		}
	}
}
