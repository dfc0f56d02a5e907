// Package client provides the public connection API: compile a query
// template, bind parameters as literals, execute it and walk the results.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/satishbabariya/tds-go/internal/adapters/wire/sqlwire"
	"github.com/satishbabariya/tds-go/internal/core/command"
	"github.com/satishbabariya/tds-go/internal/core/query/compiler"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/query/generator"
	"github.com/satishbabariya/tds-go/internal/core/result"
	"github.com/satishbabariya/tds-go/internal/core/statement"
	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/debug"
)

// Types shared with the engine.
type (
	// ResultSet holds every result item of one command.
	ResultSet = result.ResultSet
	// ColumnID selects a column by Index or Name.
	ColumnID = result.ColumnID
	// Index selects a column by zero based position.
	Index = result.Index
	// Name selects a column by name.
	Name = result.Name
	// Value is a parameter or cell value.
	Value = domain.Value
	// CompiledQuery is a query template split into literal text and placeholders.
	CompiledQuery = domain.CompiledQuery
	// Statement is a compiled query with parameter slots.
	Statement = statement.Statement
	// Message is a server or client diagnostic.
	Message = wire.Message
	// MessageHandler sees each diagnostic; returning false drops it.
	MessageHandler = command.MessageHandler
	// Session is the connection a Connection drives.
	Session = wire.Session
)

// Compile splits text into literal pieces and placeholders.
func Compile(text string) *CompiledQuery {
	return compiler.Compile(text)
}

// Generate renders q with params substituted as SQL literals. Missing
// parameters are rendered as null.
func Generate(q *CompiledQuery, params ...any) (string, error) {
	values, err := toValues(params)
	if err != nil {
		return "", err
	}
	return generator.Generate(q, values)
}

// NewStatement compiles text into a reusable statement.
func NewStatement(text string) *Statement {
	return statement.New(text)
}

// Connection runs one command at a time on a session.
type Connection struct {
	mu      sync.Mutex
	session wire.Session
	config  *Config
	handler MessageHandler
	exec    ExecFunc
	closed  bool
}

// Open connects with the given options.
func Open(ctx context.Context, opts ...Option) (*Connection, error) {
	cfg := DefaultConfig()
	ApplyOptions(cfg, opts...)

	sc, err := cfg.sessionConfig()
	if err != nil {
		return nil, err
	}
	s, err := sqlwire.Open(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return newConnection(s, cfg), nil
}

// NewConnection wraps an open session.
func NewConnection(s Session, opts ...Option) *Connection {
	cfg := DefaultConfig()
	ApplyOptions(cfg, opts...)
	return newConnection(s, cfg)
}

func newConnection(s wire.Session, cfg *Config) *Connection {
	c := &Connection{session: s, config: cfg, handler: cfg.MessageHandler}
	c.exec = chain(c.run, cfg.Middleware)
	return c
}

// Config returns the connection's options.
func (c *Connection) Config() Config {
	return *c.config
}

// SetMessageHandler replaces the diagnostic handler. A nil handler keeps
// every message.
func (c *Connection) SetMessageHandler(h MessageHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

// Execute compiles text, binds params positionally and runs the command.
// The number of params must match the placeholders.
func (c *Connection) Execute(ctx context.Context, text string, params ...any) (*ResultSet, error) {
	q := compiler.Compile(text)
	if len(params) != q.ParamCount() {
		return nil, fmt.Errorf("%w: query has %d placeholders, got %d parameters", ErrParameterCount, q.ParamCount(), len(params))
	}
	values, err := toValues(params)
	if err != nil {
		return nil, err
	}
	sql, err := generator.Generate(q, values)
	if err != nil {
		return nil, err
	}
	return c.ExecuteSQL(ctx, sql)
}

// ExecuteStatement runs st with its current bindings.
func (c *Connection) ExecuteStatement(ctx context.Context, st *Statement) (*ResultSet, error) {
	sql, err := st.SQL()
	if err != nil {
		return nil, err
	}
	return c.ExecuteSQL(ctx, sql)
}

// ExecuteSQL runs sql verbatim.
func (c *Connection) ExecuteSQL(ctx context.Context, sql string) (*ResultSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	return c.exec(ctx, sql)
}

// run is the innermost ExecFunc. The caller holds mu.
func (c *Connection) run(ctx context.Context, sql string) (*ResultSet, error) {
	opts := []command.Option{command.WithLogger(c.config.Logger)}
	if c.handler != nil {
		opts = append(opts, command.WithMessageHandler(c.handler))
	}
	return command.Execute(ctx, c.session, sql, opts...)
}

// IsConnected reports whether the session answers a ping. Sessions that
// cannot ping are assumed connected until closed.
func (c *Connection) IsConnected(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	p, ok := c.session.(wire.Pinger)
	if !ok {
		return true
	}
	if err := p.Ping(ctx); err != nil {
		debug.Debug("ping failed", "error", err)
		return false
	}
	return true
}

type dbNameQuerier interface {
	DBNameQuery() string
}

// DBName returns the current database name.
func (c *Connection) DBName(ctx context.Context) (string, error) {
	query := "select db_name()"
	if q, ok := c.session.(dbNameQuerier); ok {
		query = q.DBNameQuery()
	}

	rs, err := c.ExecuteSQL(ctx, query)
	if err != nil {
		return "", err
	}
	if !rs.Next() {
		return "", fmt.Errorf("%w: %s returned no rows", ErrInvalidState, query)
	}
	name, err := rs.GetString(Index(0))
	if err != nil {
		return "", err
	}
	return name.String, nil
}

// Close closes the session. Further commands fail with ErrClosed.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if cl, ok := c.session.(wire.Closer); ok {
		return cl.Close()
	}
	return nil
}

func toValues(params []any) ([]domain.Value, error) {
	values := make([]domain.Value, len(params))
	for i, p := range params {
		v, err := domain.From(p)
		if err != nil {
			return nil, fmt.Errorf("failed to bind parameter %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
