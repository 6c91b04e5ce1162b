package schema

import (
	"context"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/mahesh-hegde/vizsql/app/config"
	"github.com/mahesh-hegde/vizsql/app/dbengine"
)

// Introspector lists tables and describes columns through the engine's
// catalog queries. Results pass through unchanged; consumers read them as
// ordinary query results. Table listings are cached with a TTL since
// schemas change rarely compared to how often they are browsed.
type Introspector struct {
	tables *cache.Cache
}

// NewIntrospector builds an introspector caching table listings for ttl.
// A non-positive ttl disables caching.
func NewIntrospector(ttl time.Duration) *Introspector {
	in := &Introspector{}
	if ttl > 0 {
		in.tables = cache.New(ttl, 2*ttl)
	}
	return in
}

// FetchTables lists user-visible tables of the data source.
func (in *Introspector) FetchTables(ctx context.Context, ds *config.DataSource) (*dbengine.Result, error) {
	key := ds.CacheKey()
	if in.tables != nil {
		if cached, found := in.tables.Get(key); found {
			return cached.(*dbengine.Result), nil
		}
	}

	eng, err := dbengine.New(ds)
	if err != nil {
		return nil, err
	}
	query, args := eng.TablesQuery()
	res, err := eng.Execute(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	slog.Info("fetched table list", "source", ds.Name, "tables", len(res.Rows))
	if in.tables != nil {
		in.tables.Set(key, res, cache.DefaultExpiration)
	}
	return res, nil
}

// FetchTableSummary describes the columns of one table: name, type,
// nullability, default and comment. A nonexistent table surfaces as an
// empty result or the backend's own error, whichever the catalog query
// naturally produces.
func (in *Introspector) FetchTableSummary(ctx context.Context, table string, ds *config.DataSource) (*dbengine.Result, error) {
	eng, err := dbengine.New(ds)
	if err != nil {
		return nil, err
	}
	query, args := eng.TableSummaryQuery(table)
	return eng.Execute(ctx, query, args...)
}
