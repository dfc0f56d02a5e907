package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/tds-go/internal/core/wire"
	"github.com/satishbabariya/tds-go/internal/core/wire/wiretest"
	"github.com/satishbabariya/tds-go/pkg/client"
)

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open(driverName, "sqlite3://:memory:")
	require.NoError(t, err)
	// every connection would get its own in-memory database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDatabaseSQL(t *testing.T) {
	db := openDB(t)
	require.NoError(t, db.Ping())

	_, err := db.Exec("create table stand (id integer primary key, name varchar(32), owner text, power numeric(6,2))")
	require.NoError(t, err)

	res, err := db.Exec("insert into stand (id, name, owner, power) values (?, ?, ?, ?)", 1, "ZA WARUDO", "DIO", decimal.RequireFromString("9.5"))
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stmt, err := db.Prepare("insert into stand (id, name, owner) values (?, ?, ?)")
	require.NoError(t, err)
	_, err = stmt.Exec(2, "Star Platinum", "Jotaro")
	require.NoError(t, err)
	_, err = stmt.Exec(3, "Hermit Purple's", nil)
	require.NoError(t, err)
	require.NoError(t, stmt.Close())

	var (
		name  string
		owner sql.NullString
		power sql.NullFloat64
	)
	err = db.QueryRow("select name, owner, power from stand where id = :id or (id = :id and owner is null)", sql.Named("id", 1)).Scan(&name, &owner, &power)
	require.NoError(t, err)
	assert.Equal(t, "ZA WARUDO", name)
	assert.Equal(t, "DIO", owner.String)
	assert.Equal(t, 9.5, power.Float64)

	rows, err := db.Query("select id, name, owner from stand order by id")
	require.NoError(t, err)
	cols, err := rows.Columns()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "owner"}, cols)
	types, err := rows.ColumnTypes()
	require.NoError(t, err)
	assert.Equal(t, wire.BigInt.String(), types[0].DatabaseTypeName())

	var ids []int64
	var owners []sql.NullString
	for rows.Next() {
		var id int64
		var n string
		var o sql.NullString
		require.NoError(t, rows.Scan(&id, &n, &o))
		ids = append(ids, id)
		owners = append(owners, o)
	}
	require.NoError(t, rows.Err())
	require.NoError(t, rows.Close())
	assert.Equal(t, []int64{1, 2, 3}, ids)
	assert.False(t, owners[2].Valid)

	res, err = db.Exec("update stand set owner = 'unknown' where owner is null or id = ?", 2)
	require.NoError(t, err)
	n, err = res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDatabaseSQLErrors(t *testing.T) {
	db := openDB(t)

	_, err := db.Exec("insert into missing values (1)")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrExecutionFailed)
	assert.Contains(t, err.Error(), "no such table")

	_, err = db.Exec("select ?, ?", 1)
	assert.ErrorIs(t, err, client.ErrParameterCount)

	_, err = db.Exec("select :a", sql.Named("b", 1))
	assert.ErrorIs(t, err, client.ErrUnknownParameter)

	_, err = db.Begin()
	assert.ErrorIs(t, err, ErrTxNotSupported)

	_, err = sql.Open(driverName, "oracle://nowhere")
	assert.Error(t, err)
}

func TestStmtNumInput(t *testing.T) {
	assert.Equal(t, 2, (&Stmt{query: "select ?, '?', ?"}).NumInput())
	assert.Equal(t, -1, (&Stmt{query: "select :a, :a"}).NumInput())
	assert.Equal(t, 0, (&Stmt{query: "select 1"}).NumInput())
}

func TestRowsNextResultSet(t *testing.T) {
	cols := []wire.DataFormat{wiretest.Column("n", wire.Int)}
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		wiretest.Rows(cols, []wiretest.Cell{wiretest.Int(1)}),
		wiretest.Succeed(4),
		wiretest.Rows([]wire.DataFormat{wiretest.CharColumn("s", 8)}, []wiretest.Cell{wiretest.Char("x")}, []wiretest.Cell{wiretest.Null()}),
		wiretest.Done(wire.NoCount),
	}})
	conn := &Conn{conn: client.NewConnection(s)}

	dr, err := conn.QueryContext(context.Background(), "exec sp_two", nil)
	require.NoError(t, err)
	rows := dr.(*Rows)

	assert.Equal(t, []string{"n"}, rows.Columns())
	dest := make([]driver.Value, 1)
	require.NoError(t, rows.Next(dest))
	assert.Equal(t, int64(1), dest[0])
	assert.Equal(t, io.EOF, rows.Next(dest))

	require.True(t, rows.HasNextResultSet())
	require.NoError(t, rows.NextResultSet())
	assert.Equal(t, []string{"s"}, rows.Columns())
	nullable, ok := rows.ColumnTypeNullable(0)
	assert.True(t, ok)
	assert.True(t, nullable)
	require.NoError(t, rows.Next(dest))
	assert.Equal(t, "x", dest[0])
	require.NoError(t, rows.Next(dest))
	assert.Nil(t, dest[0])
	assert.Equal(t, io.EOF, rows.Next(dest))

	assert.False(t, rows.HasNextResultSet())
	assert.Equal(t, io.EOF, rows.NextResultSet())
	require.NoError(t, rows.Close())
}

func TestExecSumsUpdateCounts(t *testing.T) {
	s := wiretest.NewSession(wiretest.Response{Results: []wiretest.Result{
		wiretest.Succeed(2),
		wiretest.Status(0),
		wiretest.Done(3),
	}})
	conn := &Conn{conn: client.NewConnection(s)}

	res, err := conn.ExecContext(context.Background(), "exec sp_batch @n = ?", []driver.NamedValue{{Ordinal: 1, Value: int64(5)}})
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.Equal(t, []string{"exec sp_batch @n = 5"}, s.Submitted)

	_, err = res.LastInsertId()
	assert.Error(t, err)

	require.NoError(t, conn.Close())
	assert.Equal(t, driver.ErrBadConn, conn.Ping(context.Background()))
	_, err = conn.ExecContext(context.Background(), "select 1", nil)
	assert.Equal(t, driver.ErrBadConn, err)
}
