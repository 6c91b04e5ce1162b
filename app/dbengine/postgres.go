package dbengine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
)

type postgresEngine struct {
	ds *config.DataSource
}

func init() {
	Register(common.EnginePostgres, func(ds *config.DataSource) Engine {
		return &postgresEngine{ds: ds}
	})
}

var _ Engine = &postgresEngine{}

func (e *postgresEngine) Kind() common.EngineKind {
	return common.EnginePostgres
}

func (e *postgresEngine) dsn() string {
	kv := []string{
		"host=" + pqQuoteValue(e.ds.Host),
		fmt.Sprintf("port=%d", e.ds.Port),
		"user=" + pqQuoteValue(e.ds.User),
		"dbname=" + pqQuoteValue(e.ds.Database),
		"sslmode=disable",
	}
	if e.ds.Password != "" {
		kv = append(kv, "password="+pqQuoteValue(e.ds.Password))
	}
	if e.ds.TimeoutSeconds > 0 {
		kv = append(kv, fmt.Sprintf("connect_timeout=%d", e.ds.TimeoutSeconds))
	}
	return strings.Join(kv, " ")
}

func pqQuoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (e *postgresEngine) Execute(ctx context.Context, query string, args ...any) (*Result, error) {
	return runQuery(ctx, common.EnginePostgres, "postgres", e.dsn(), isPostgresConnErr, query, args...)
}

// Error class 28 is invalid authorization, 3D is invalid catalog name.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
func isPostgresConnErr(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "28", "3D":
			return true
		}
	}
	return false
}

func (e *postgresEngine) TablesQuery() (string, []any) {
	return `SELECT n.nspname AS table_schema, c.relname AS table_name,
			CASE c.relkind
				WHEN 'r' THEN 'table'
				WHEN 'p' THEN 'table'
				WHEN 'v' THEN 'view'
				WHEN 'm' THEN 'materialized view'
				ELSE c.relkind::text
			END AS table_type
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p', 'v', 'm')
			AND n.nspname NOT IN ('pg_catalog', 'information_schema')
			AND n.nspname NOT LIKE 'pg_toast%'
		ORDER BY n.nspname, c.relname`, nil
}

func (e *postgresEngine) TableSummaryQuery(table string) (string, []any) {
	// The table reference is bound as a parameter and cast to regclass, so
	// untrusted names cannot alter the query text.
	return `SELECT a.attname AS name,
			pg_catalog.format_type(a.atttypid, a.atttypmod) AS type,
			CASE WHEN a.attnotnull THEN 'NO' ELSE 'YES' END AS nullable,
			pg_catalog.pg_get_expr(d.adbin, d.adrelid) AS "default",
			pg_catalog.col_description(a.attrelid, a.attnum) AS description
		FROM pg_catalog.pg_attribute a
		LEFT JOIN pg_catalog.pg_attrdef d
			ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE a.attrelid = $1::regclass
			AND a.attnum > 0 AND NOT a.attisdropped
		ORDER BY a.attnum`, []any{quotePostgresIdent(table)}
}

func quotePostgresIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
