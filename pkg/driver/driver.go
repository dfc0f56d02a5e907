// Package driver registers the "tds" database/sql driver. Queries are
// compiled and their arguments rendered as SQL literals before being sent,
// so ? and :name placeholders work on every provider.
//
//	db, err := sql.Open("tds", "sqlite3://app.db")
//	rows, err := db.Query("select * from t where id = :id", sql.Named("id", 7))
package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/adapters/wire/sqlwire"
	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/result"
	"github.com/satishbabariya/tds-go/pkg/client"
)

const driverName = "tds"

// ErrTxNotSupported is returned by Begin.
var ErrTxNotSupported = errors.New("tds: transactions are not supported")

func init() {
	sql.Register(driverName, &Driver{})
}

// --- Driver implementation ---

// Driver opens connections from provider URLs such as sqlite3://file.db or
// mysql://user:pw@host:3306/db.
type Driver struct{}

var (
	_ driver.Driver        = (*Driver)(nil)
	_ driver.DriverContext = (*Driver)(nil)
)

// Open returns a new connection to the database.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	c, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return c.Connect(context.Background())
}

// OpenConnector parses dsn once for every connection of a pool.
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	cfg, err := sqlwire.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("tds: %w", err)
	}
	return &Connector{cfg: cfg, driver: d}, nil
}

// Connector opens sessions for one configuration.
type Connector struct {
	cfg    sqlwire.Config
	driver *Driver
	opts   []client.Option
}

// NewConnector returns a connector for sql.OpenDB. The options configure
// each client connection, for example a message handler.
func NewConnector(dsn string, opts ...client.Option) (*Connector, error) {
	cfg, err := sqlwire.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("tds: %w", err)
	}
	return &Connector{cfg: cfg, driver: &Driver{}, opts: opts}, nil
}

// Connect opens a session.
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	s, err := sqlwire.Open(ctx, c.cfg)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: client.NewConnection(s, c.opts...)}, nil
}

// Driver returns the underlying driver.
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// --- Connection implementation ---

// Conn implements driver.Conn over a client connection.
type Conn struct {
	conn *client.Connection
}

var (
	_ driver.QueryerContext     = (*Conn)(nil)
	_ driver.ExecerContext      = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.Pinger             = (*Conn)(nil)
	_ driver.NamedValueChecker  = (*Conn)(nil)
)

// Prepare compiles query.
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext compiles query. Nothing is sent until execution.
func (c *Conn) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return &Stmt{conn: c, query: query}, nil
}

// Close closes the session.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Begin is not supported.
func (c *Conn) Begin() (driver.Tx, error) {
	return nil, ErrTxNotSupported
}

// BeginTx is not supported.
func (c *Conn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return nil, ErrTxNotSupported
}

// Ping reports a lost session as driver.ErrBadConn.
func (c *Conn) Ping(ctx context.Context) error {
	if !c.conn.IsConnected(ctx) {
		return driver.ErrBadConn
	}
	return nil
}

// CheckNamedValue passes decimals and values through unchanged and leaves
// everything else to the default converter.
func (c *Conn) CheckNamedValue(nv *driver.NamedValue) error {
	switch nv.Value.(type) {
	case decimal.Decimal, domain.Value:
		return nil
	}
	return driver.ErrSkip
}

// QueryContext runs query and returns its row results.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	rs, err := c.run(ctx, client.NewStatement(query), args)
	if err != nil {
		return nil, err
	}
	return newRows(rs), nil
}

// ExecContext runs query and sums its update counts.
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	rs, err := c.run(ctx, client.NewStatement(query), args)
	if err != nil {
		return nil, err
	}
	return execResult(rs.TotalUpdateCount()), nil
}

func (c *Conn) run(ctx context.Context, st *client.Statement, args []driver.NamedValue) (*client.ResultSet, error) {
	if err := bind(st, args); err != nil {
		return nil, err
	}
	rs, err := c.conn.ExecuteStatement(ctx, st)
	if errors.Is(err, client.ErrClosed) {
		return nil, driver.ErrBadConn
	}
	return rs, err
}

// bind sets named arguments by name and the rest by position. Without named
// arguments the count must match the placeholders.
func bind(st *client.Statement, args []driver.NamedValue) error {
	positional := 0
	for _, a := range args {
		if a.Name == "" {
			positional++
		}
	}
	if positional == len(args) && positional != st.ParamCount() {
		return fmt.Errorf("%w: query has %d placeholders, got %d arguments", client.ErrParameterCount, st.ParamCount(), positional)
	}

	for _, a := range args {
		var err error
		if a.Name != "" {
			err = st.SetNamed(a.Name, a.Value)
		} else {
			err = st.SetParam(a.Ordinal-1, a.Value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// --- Statement implementation ---

// Stmt is a compiled query. Each execution renders a fresh statement so
// concurrent executions never share bindings.
type Stmt struct {
	conn  *Conn
	query string
}

var (
	_ driver.StmtQueryContext = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
)

// Close is a no-op.
func (s *Stmt) Close() error {
	return nil
}

// NumInput returns the placeholder count, or -1 when the query uses named
// placeholders that may repeat.
func (s *Stmt) NumInput() int {
	q := client.Compile(s.query)
	for _, name := range q.Names {
		if name != "" {
			return -1
		}
	}
	return q.ParamCount()
}

// Exec runs the statement.
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), named(args))
}

// Query runs the statement.
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), named(args))
}

// ExecContext runs the statement and sums its update counts.
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.query, args)
}

// QueryContext runs the statement and returns its row results.
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

func named(args []driver.Value) []driver.NamedValue {
	out := make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

// --- Result implementation ---

type execResult uint64

// LastInsertId is not supported.
func (r execResult) LastInsertId() (int64, error) {
	return 0, errors.New("tds: LastInsertId is not supported")
}

// RowsAffected returns the total of every update count.
func (r execResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

// --- Rows implementation ---

// Rows walks the row results of one command.
type Rows struct {
	rs      *client.ResultSet
	columns []string
}

var (
	_ driver.RowsNextResultSet              = (*Rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
)

func newRows(rs *client.ResultSet) *Rows {
	r := &Rows{rs: rs}
	if rs.NextResultsOfType(result.ItemRows) {
		r.load()
	}
	return r
}

func (r *Rows) load() {
	cols, err := r.rs.Columns()
	if err != nil {
		r.columns = nil
		return
	}
	r.columns = make([]string, len(cols))
	for i, c := range cols {
		r.columns[i] = c.Name
	}
}

// Columns returns the column names of the current result.
func (r *Rows) Columns() []string {
	return r.columns
}

// Close is a no-op; results are fully buffered.
func (r *Rows) Close() error {
	return nil
}

// Next copies the next row into dest.
func (r *Rows) Next(dest []driver.Value) error {
	if r.columns == nil || !r.rs.Next() {
		return io.EOF
	}
	for i := range dest {
		v, err := r.rs.Value(client.Index(i))
		if err != nil {
			return err
		}
		dest[i] = driverValue(v)
	}
	return nil
}

// HasNextResultSet reports whether another row result follows.
func (r *Rows) HasNextResultSet() bool {
	return r.rs.HasMoreResultsOfType(result.ItemRows)
}

// NextResultSet moves to the next row result.
func (r *Rows) NextResultSet() error {
	if !r.rs.NextResultsOfType(result.ItemRows) {
		return io.EOF
	}
	r.load()
	return nil
}

// ColumnTypeDatabaseTypeName returns the native type name.
func (r *Rows) ColumnTypeDatabaseTypeName(i int) string {
	f, err := r.rs.Column(client.Index(i))
	if err != nil {
		return ""
	}
	return f.Type.String()
}

// ColumnTypeNullable reports the column's nullability.
func (r *Rows) ColumnTypeNullable(i int) (nullable, ok bool) {
	f, err := r.rs.Column(client.Index(i))
	if err != nil {
		return false, false
	}
	return f.Nullable, true
}

// driverValue narrows a Value to the types database/sql accepts.
func driverValue(v domain.Value) driver.Value {
	switch v.Kind() {
	case domain.KindNull:
		return nil
	case domain.KindString:
		return v.Str()
	case domain.KindInt32, domain.KindInt64:
		return v.Int()
	case domain.KindFloat64:
		return v.Float()
	case domain.KindDecimal:
		return v.Dec().String()
	case domain.KindDate, domain.KindTime, domain.KindDateTime:
		return v.Time()
	case domain.KindBlob:
		return v.Bytes()
	}
	return nil
}
