package sqlwire

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/core/wire/cslib"
	"github.com/satishbabariya/tds-go/internal/debug"
)

var errClosed = errors.New("session is closed")

type cell struct {
	data []byte
	null bool
}

// pending is one buffered result of the current command.
type pending struct {
	kind    wire.ResultKind
	columns []wire.DataFormat
	rows    [][]cell
	count   int64
}

type bound struct {
	format wire.DataFormat
	dest   *wire.Binding
}

// Session is a wire.Session over one pinned database/sql connection.
type Session struct {
	*cslib.Context

	cfg     Config
	charset charset
	db      *sql.DB
	conn    *sql.Conn

	mu    sync.Mutex
	queue []wire.Message

	results []*pending
	pos     int
	row     int
	binds   map[int]bound
}

var (
	_ wire.Session = (*Session)(nil)
	_ wire.Pinger  = (*Session)(nil)
	_ wire.Closer  = (*Session)(nil)
)

// Open connects and pins one connection for the session's lifetime.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	s := &Session{Context: cslib.New(), cfg: cfg, pos: -1}

	if cfg.Charset != "" {
		cs, err := lookupCharset(cfg.Charset)
		if err != nil {
			return nil, err
		}
		s.charset = cs
	}

	db, err := s.openDB()
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if cfg.LoginTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.LoginTimeout)
		defer cancel()
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, &wire.DriverError{Op: "ct_connect", Cause: err}
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, &wire.DriverError{Op: "ct_connect", Message: s.messageFor(err), Cause: err}
	}

	s.db, s.conn = db, conn
	debug.Debug("session opened", "provider", cfg.Provider, "host", cfg.Host, "database", cfg.Database)
	return s, nil
}

func (s *Session) messageFor(err error) *wire.Message {
	m := diagnose(err)
	return &m
}

func (s *Session) openDB() (*sql.DB, error) {
	switch s.cfg.Provider {
	case MySQL:
		mc, err := s.cfg.mysqlConfig()
		if err != nil {
			return nil, err
		}
		connector, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, fmt.Errorf("failed to create mysql connector: %w", err)
		}
		return sql.OpenDB(connector), nil

	case Postgres:
		dsn, err := s.cfg.postgresDSN()
		if err != nil {
			return nil, err
		}
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connector: %w", err)
		}
		return sql.OpenDB(pq.ConnectorWithNoticeHandler(connector, s.notice)), nil

	case SQLite:
		dsn, err := s.cfg.sqliteDSN()
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return db, nil
	}
	return nil, fmt.Errorf("unsupported provider %q", s.cfg.Provider)
}

// notice queues a server notice sent while a command runs.
func (s *Session) notice(e *pq.Error) {
	s.push(postgresMessage(e))
}

func (s *Session) push(m wire.Message) {
	s.mu.Lock()
	s.queue = append(s.queue, m)
	s.mu.Unlock()
}

// Provider returns the backing database kind.
func (s *Session) Provider() Provider {
	return s.cfg.Provider
}

// DBNameQuery returns the statement that selects the current database name.
func (s *Session) DBNameQuery() string {
	switch s.cfg.Provider {
	case MySQL:
		return "select database()"
	case Postgres:
		return "select current_database()"
	}
	return "select name from pragma_database_list where seq = 0"
}

// Submit runs sql to completion and buffers every result it produces. The
// batch is split into statements, each run as a query or an exec, so a mixed
// batch yields its row sets and update counts in order. A statement the
// server rejects becomes a CS_CMD_FAIL result with its diagnostic queued and
// ends the batch; only connection failures are returned.
func (s *Session) Submit(ctx context.Context, query string) error {
	if s.conn == nil {
		return &wire.DriverError{Op: "ct_send", Cause: errClosed}
	}
	s.results, s.pos, s.row, s.binds = nil, -1, 0, nil

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	stmts := splitStatements(query)
	if len(stmts) == 0 {
		stmts = []string{query}
	}
	for _, stmt := range stmts {
		var err error
		if returnsRows(stmt) {
			err = s.query(ctx, stmt)
		} else {
			err = s.exec(ctx, stmt)
		}
		if err == nil {
			continue
		}
		if fatal(err) {
			return &wire.DriverError{Op: "ct_send", Cause: err}
		}

		// The rest of the batch is not run.
		s.push(diagnose(err))
		s.results = append(s.results, &pending{kind: wire.ResultCmdFail, count: wire.NoCount})
		return nil
	}
	return nil
}

func (s *Session) exec(ctx context.Context, query string) error {
	res, err := s.conn.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		n = wire.NoCount
	}
	s.results = append(s.results, &pending{kind: wire.ResultCmdDone, count: n})
	return nil
}

func (s *Session) query(ctx context.Context, query string) error {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for {
		res, err := s.collect(rows)
		if err != nil {
			return err
		}
		s.results = append(s.results, res)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	s.results = append(s.results, &pending{kind: wire.ResultCmdDone, count: wire.NoCount})
	return nil
}

// collect reads one result set and encodes it into wire layouts.
func (s *Session) collect(rows *sql.Rows) (*pending, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	n := len(types)

	var raw [][]any
	for rows.Next() {
		vals := make([]any, n)
		ptrs := make([]any, n)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		raw = append(raw, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res := &pending{kind: wire.ResultRows, columns: make([]wire.DataFormat, n), rows: make([][]cell, len(raw)), count: wire.NoCount}
	for r := range raw {
		res.rows[r] = make([]cell, n)
	}
	for i, ct := range types {
		column := make([]any, len(raw))
		for r := range raw {
			column[r] = raw[r][i]
		}

		f := s.describe(ct, column)
		for r, v := range column {
			if v == nil {
				res.rows[r][i] = cell{null: true}
				continue
			}
			b, err := s.encode(f, v)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", f.Name, err)
			}
			f.MaxLength = max(f.MaxLength, len(b))
			res.rows[r][i] = cell{data: b}
		}
		res.columns[i] = f
	}
	return res, nil
}

func (s *Session) describe(ct *sql.ColumnType, values []any) wire.DataFormat {
	t, ok := typeFromName(s.cfg.Provider, ct.DatabaseTypeName())
	if !ok {
		t = inferType(values)
	}

	f := wire.DataFormat{Name: ct.Name(), Type: t, Nullable: true, MaxLength: t.FixedLength()}
	if nullable, ok := ct.Nullable(); ok {
		f.Nullable = nullable
	}

	switch {
	case t.IsExactNumeric():
		p, sc, ok := ct.DecimalSize()
		if ok && p > 0 && p <= wire.MaxPrecision {
			f.Precision, f.Scale = int(p), int(sc)
		} else {
			f.Precision, f.Scale = inferNumeric(values)
		}
		if z, err := s.Encode(f, decimal.Zero); err == nil {
			f.MaxLength = len(z)
		}
	case t.IsCharacter() || t.IsBinary():
		if l, ok := ct.Length(); ok && l > 0 && l <= int64(s.cfg.TextSize) {
			f.MaxLength = int(l)
		}
	}
	return f
}

// encode renders one scanned value in the column's layout. Large text and
// image values are cut at TextSize.
func (s *Session) encode(f wire.DataFormat, v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		if !f.Type.IsBinary() {
			text, err := s.charset.decodeText(x)
			if err != nil {
				return nil, err
			}
			v = text
		}
	case string:
		if f.Type.IsBinary() {
			v = []byte(x)
		}
	}

	b, err := s.Encode(f, v)
	if err != nil {
		return nil, err
	}
	if isLarge(f.Type) && len(b) > s.cfg.TextSize {
		b = b[:s.cfg.TextSize]
	}
	return b, nil
}

func isLarge(t wire.DataType) bool {
	switch t {
	case wire.Text, wire.UniText, wire.LongChar, wire.XML, wire.Image, wire.LongBinary, wire.Blob:
		return true
	}
	return false
}

// NextResult advances to the next buffered result. Undrained messages are
// discarded.
func (s *Session) NextResult(context.Context) (bool, wire.ResultKind, error) {
	if dropped := s.DrainDiagnostics(); len(dropped) > 0 {
		debug.Debug("dropping undrained messages", "count", len(dropped))
	}
	if s.pos+1 >= len(s.results) {
		s.pos = len(s.results)
		return false, wire.ResultUnknown, nil
	}
	s.pos++
	s.row = 0
	s.binds = nil
	return true, s.results[s.pos].kind, nil
}

// Cancel discards the current result or every remaining result.
func (s *Session) Cancel(_ context.Context, kind wire.CancelKind) error {
	switch kind {
	case wire.CancelAll:
		s.pos = len(s.results)
	case wire.CancelCurrent:
		if cur := s.current(); cur != nil {
			s.row = len(cur.rows)
		}
	}
	return nil
}

func (s *Session) current() *pending {
	if s.pos < 0 || s.pos >= len(s.results) {
		return nil
	}
	return s.results[s.pos]
}

// ColumnCount returns the column count of the current result.
func (s *Session) ColumnCount() (int, error) {
	cur := s.current()
	if cur == nil {
		return 0, &wire.DriverError{Op: "ct_res_info", Cause: errors.New("no current result")}
	}
	return len(cur.columns), nil
}

// DescribeColumn returns the format of column i.
func (s *Session) DescribeColumn(i int) (wire.DataFormat, error) {
	cur := s.current()
	if cur == nil || i < 0 || i >= len(cur.columns) {
		return wire.DataFormat{}, &wire.DriverError{Op: "ct_describe", Cause: fmt.Errorf("no column %d", i)}
	}
	return cur.columns[i], nil
}

// BindColumn registers the destination of column i.
func (s *Session) BindColumn(i int, f wire.DataFormat, b *wire.Binding) error {
	cur := s.current()
	if cur == nil || i < 0 || i >= len(cur.columns) {
		return &wire.DriverError{Op: "ct_bind", Cause: fmt.Errorf("no column %d", i)}
	}
	if s.binds == nil {
		s.binds = make(map[int]bound)
	}
	s.binds[i] = bound{format: f, dest: b}
	return nil
}

// FetchRow copies the next row into the bindings, converting when a binding
// asks for another type.
func (s *Session) FetchRow(context.Context) (bool, error) {
	cur := s.current()
	if cur == nil {
		return false, &wire.DriverError{Op: "ct_fetch", Cause: errors.New("no current result")}
	}
	if s.row >= len(cur.rows) {
		return false, nil
	}

	row := cur.rows[s.row]
	s.row++
	for i, b := range s.binds {
		if err := s.fill(cur.columns[i], b, row[i]); err != nil {
			return false, &wire.DriverError{Op: "ct_fetch", Cause: err}
		}
	}
	return true, nil
}

func (s *Session) fill(src wire.DataFormat, b bound, c cell) error {
	dst := b.dest
	if c.null {
		dst.Indicator = wire.IndicatorNull
		dst.DataLength = 0
		return nil
	}

	data := c.data
	if b.format.Type != src.Type {
		out, err := s.Convert(src, data, wire.DataFormat{Type: b.format.Type, Precision: b.format.Precision, Scale: b.format.Scale})
		if err != nil {
			return err
		}
		data = out
	}
	if b.format.Format&wire.FmtNullTerm != 0 {
		data = append(append(make([]byte, 0, len(data)+1), data...), 0)
	}

	n := copy(dst.Buffer, data)
	dst.DataLength = n
	dst.Indicator = wire.IndicatorOK
	if n < len(data) {
		dst.Indicator = int16(min(len(data)-n, 1<<15-1))
	}
	return nil
}

// AffectedRowCount returns the row count of the current result.
func (s *Session) AffectedRowCount() (int64, error) {
	cur := s.current()
	if cur == nil {
		return wire.NoCount, nil
	}
	return cur.count, nil
}

// DrainDiagnostics returns and clears the queued messages.
func (s *Session) DrainDiagnostics() []wire.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.queue
	s.queue = nil
	return out
}

// Ping checks the pinned connection.
func (s *Session) Ping(ctx context.Context) error {
	if s.conn == nil {
		return &wire.DriverError{Op: "ct_con_props", Cause: errClosed}
	}
	if err := s.conn.PingContext(ctx); err != nil {
		return &wire.DriverError{Op: "ct_con_props", Cause: err}
	}
	return nil
}

// Close releases the connection and its pool.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := errors.Join(s.conn.Close(), s.db.Close())
	s.conn, s.db = nil, nil
	debug.Debug("session closed", "provider", s.cfg.Provider)
	return err
}
