package dbengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
)

// newSQLiteFixture writes a small sales table into a temp database file and
// returns a data source pointing at it.
func newSQLiteFixture(t *testing.T) *config.DataSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := sql.Open(SQLiteDriverName, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE sales (
			month TEXT NOT NULL,
			region TEXT,
			amount INTEGER NOT NULL DEFAULT 0
		);
		INSERT INTO sales (month, region, amount) VALUES
			('jan', 'west', 10),
			('jan', 'east', 20),
			('feb', 'west', 30);
	`)
	require.NoError(t, err)

	return &config.DataSource{
		Name: "fixture",
		Kind: common.EngineSQLite,
		Path: path,
	}
}

func TestExecute_SQLite(t *testing.T) {
	ds := newSQLiteFixture(t)

	res, err := Execute(context.Background(), ds, "SELECT month, amount FROM sales ORDER BY amount")
	require.NoError(t, err)

	require.Len(t, res.Fields, 2)
	assert.Equal(t, "month", res.Fields[0].Name)
	assert.Equal(t, "amount", res.Fields[1].Name)

	require.Len(t, res.Rows, 3)
	for _, row := range res.Rows {
		// Rectangularity: every row has exactly one cell per field.
		assert.Len(t, row, len(res.Fields))
	}
	assert.Equal(t, []any{"jan", float64(10)}, res.Rows[0])
	assert.Equal(t, []any{"feb", float64(30)}, res.Rows[2])

	assert.GreaterOrEqual(t, res.RuntimeMillis, int64(0))
}

func TestExecute_QueryError(t *testing.T) {
	ds := newSQLiteFixture(t)

	_, err := Execute(context.Background(), ds, "SELECT nope FROM no_such_table")
	require.Error(t, err)

	var queryErr *common.QueryError
	assert.ErrorAs(t, err, &queryErr)
	assert.Equal(t, common.EngineSQLite, queryErr.Engine)
}

func TestExecute_ConnectionError(t *testing.T) {
	ds := &config.DataSource{
		Name: "broken",
		Kind: common.EngineSQLite,
		Path: filepath.Join("/nonexistent-dir-vizsql", "missing", "db.sqlite"),
	}

	_, err := Execute(context.Background(), ds, "SELECT 1")
	require.Error(t, err)

	var connErr *common.ConnectionError
	assert.ErrorAs(t, err, &connErr)
}

func TestExecute_ContextCancellation(t *testing.T) {
	ds := newSQLiteFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Execute(ctx, ds, "SELECT * FROM sales")
	assert.Error(t, err)
}

func TestExecute_UnknownKind(t *testing.T) {
	_, err := Execute(context.Background(), &config.DataSource{Kind: "oracle"}, "SELECT 1")
	assert.Error(t, err)
}

func TestEngineRegistry(t *testing.T) {
	for _, kind := range []common.EngineKind{common.EngineMySQL, common.EnginePostgres, common.EngineSQLite} {
		eng, err := New(&config.DataSource{Kind: kind})
		require.NoError(t, err)
		assert.Equal(t, kind, eng.Kind())
	}
}

func TestIsMySQLConnErr(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"db access denied", &mysql.MySQLError{Number: 1044, Message: "access denied"}, true},
		{"bad credentials", &mysql.MySQLError{Number: 1045, Message: "access denied for user"}, true},
		{"unknown database", &mysql.MySQLError{Number: 1049, Message: "unknown database"}, true},
		{"syntax error", &mysql.MySQLError{Number: 1064, Message: "syntax error"}, false},
		{"missing table", &mysql.MySQLError{Number: 1146, Message: "table doesn't exist"}, false},
		{"wrapped", fmt.Errorf("query: %w", &mysql.MySQLError{Number: 1045}), true},
		{"not a driver error", errors.New("broken pipe"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isMySQLConnErr(tc.err))
		})
	}
}

func TestIsPostgresConnErr(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"invalid password", &pq.Error{Code: "28P01"}, true},
		{"invalid authorization", &pq.Error{Code: "28000"}, true},
		{"invalid catalog name", &pq.Error{Code: "3D000"}, true},
		{"syntax error", &pq.Error{Code: "42601"}, false},
		{"undefined table", &pq.Error{Code: "42P01"}, false},
		{"wrapped", fmt.Errorf("query: %w", &pq.Error{Code: "28000"}), true},
		{"not a driver error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isPostgresConnErr(tc.err))
		})
	}
}

func TestQuoteMySQLIdent(t *testing.T) {
	assert.Equal(t, "`sales`", quoteMySQLIdent("sales"))
	assert.Equal(t, "`shop`.`sales`", quoteMySQLIdent("shop.sales"))
	assert.Equal(t, "`sa``les`", quoteMySQLIdent("sa`les"))
}

func TestQuotePostgresIdent(t *testing.T) {
	assert.Equal(t, `"sales"`, quotePostgresIdent("sales"))
	assert.Equal(t, `"public"."sales"`, quotePostgresIdent("public.sales"))
	assert.Equal(t, `"sa""les"`, quotePostgresIdent(`sa"les`))
}
