package dbengine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
)

// See https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlErrDBAccessDenied = 1044 // Access denied for user to database
	mysqlErrAccessDenied   = 1045 // Access denied for user (bad credentials)
	mysqlErrUnknownDB      = 1049 // Unknown database
)

type mysqlEngine struct {
	ds *config.DataSource
}

func init() {
	Register(common.EngineMySQL, func(ds *config.DataSource) Engine {
		return &mysqlEngine{ds: ds}
	})
}

var _ Engine = &mysqlEngine{}

func (e *mysqlEngine) Kind() common.EngineKind {
	return common.EngineMySQL
}

func (e *mysqlEngine) dsn() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = e.ds.Addr()
	cfg.User = e.ds.User
	cfg.Passwd = e.ds.Password
	cfg.DBName = e.ds.Database
	cfg.ParseTime = true
	if e.ds.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(e.ds.TimeoutSeconds) * time.Second
	}
	return cfg.FormatDSN()
}

func (e *mysqlEngine) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	return runQuery(ctx, common.EngineMySQL, "mysql", e.dsn(), isMySQLConnErr, query, args...)
}

func isMySQLConnErr(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrDBAccessDenied, mysqlErrAccessDenied, mysqlErrUnknownDB:
			return true
		}
	}
	return false
}

func (e *mysqlEngine) TablesQuery() (string, []any) {
	return `SELECT table_schema, table_name, table_type
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		ORDER BY table_name`, nil
}

func (e *mysqlEngine) TableSummaryQuery(table string) (string, []any) {
	// SHOW FULL COLUMNS does not support placeholders, so the identifier is
	// backtick-quoted instead. Output: Field, Type, Collation, Null, Key,
	// Default, Extra, Privileges, Comment.
	return "SHOW FULL COLUMNS FROM " + quoteMySQLIdent(table), nil
}

func quoteMySQLIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}
