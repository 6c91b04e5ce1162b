package dbengine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/config"
)

// Engine is the capability set every supported database provides: run a
// query, and supply the catalog queries schema introspection needs. One
// implementation per engine kind; adding an engine means implementing this
// interface and registering a factory, no call site changes.
type Engine interface {
	Kind() common.EngineKind

	// Execute opens a connection, runs exactly one query, and releases the
	// connection before returning on every path. Calls are fully independent;
	// there is no pooling or other shared state between them. ctx carries the
	// caller's deadline and is propagated to the driver.
	Execute(ctx context.Context, query string, args ...any) (*Result, error)

	// TablesQuery lists user-visible tables: (schema,) name, kind.
	TablesQuery() (query string, args []any)

	// TableSummaryQuery describes the columns of one table: name, type,
	// nullability, default, description. The table identifier must be bound
	// or quoted by the implementation, never spliced raw.
	TableSummaryQuery(table string) (query string, args []any)
}

// Factory builds an engine for one data source.
type Factory func(ds *config.DataSource) Engine

var registry = map[common.EngineKind]Factory{}

// Register makes an engine available under the given kind. Engine
// implementations call this from init.
func Register(kind common.EngineKind, f Factory) {
	registry[kind] = f
}

// New returns an engine for the data source's kind.
func New(ds *config.DataSource) (Engine, error) {
	f, ok := registry[ds.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported engine kind: %q", ds.Kind)
	}
	return f(ds), nil
}

// Execute dispatches a single query to the data source's engine.
func Execute(ctx context.Context, ds *config.DataSource, query string, args ...any) (*Result, error) {
	eng, err := New(ds)
	if err != nil {
		return nil, err
	}
	return eng.Execute(ctx, query, args...)
}

// runQuery is the shared per-call lifecycle for database/sql based engines:
// open handle, take one dedicated connection (the connection phase), time and
// run the query, materialize rows, release everything. isConnErr classifies
// post-connect errors that are really authentication/reachability failures.
func runQuery(ctx context.Context, kind common.EngineKind, driverName, dsn string,
	isConnErr func(error) bool, query string, args ...any) (*Result, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, &common.ConnectionError{Engine: kind, Err: err}
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, &common.ConnectionError{Engine: kind, Err: err}
	}
	defer conn.Close()

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		if isConnErr != nil && isConnErr(err) {
			return nil, &common.ConnectionError{Engine: kind, Err: err}
		}
		return nil, &common.QueryError{Engine: kind, Err: err}
	}
	defer rows.Close()

	res, err := collectRows(rows)
	if err != nil {
		return nil, &common.QueryError{Engine: kind, Err: err}
	}
	res.RuntimeMillis = time.Since(start).Milliseconds()
	return res, nil
}
