package dbengine

import (
	"context"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
)

// sqliteEngine runs queries against a local SQLite file. Mainly useful for
// local analysis and for exercising the full pipeline in tests without a
// database server.
type sqliteEngine struct {
	ds *config.DataSource
}

func init() {
	Register(common.EngineSQLite, func(ds *config.DataSource) Engine {
		return &sqliteEngine{ds: ds}
	})
}

var _ Engine = &sqliteEngine{}

func (e *sqliteEngine) Kind() common.EngineKind {
	return common.EngineSQLite
}

func (e *sqliteEngine) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	return runQuery(ctx, common.EngineSQLite, SQLiteDriverName, e.ds.Path, nil, query, args...)
}

func (e *sqliteEngine) TablesQuery() (string, []any) {
	return `SELECT name, type FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name`, nil
}

func (e *sqliteEngine) TableSummaryQuery(table string) (string, []any) {
	return `SELECT name, type,
			CASE WHEN "notnull" = 0 THEN 'YES' ELSE 'NO' END AS nullable,
			dflt_value AS "default",
			'' AS description
		FROM pragma_table_info(?)
		ORDER BY cid`, []any{table}
}
