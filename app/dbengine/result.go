package dbengine

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Field describes one result column.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Result is the engine-agnostic shape every query execution returns.
// All rows have exactly len(Fields) cells; cell values are string, float64
// or nil after normalization. RuntimeMillis covers the query phase only,
// connection setup excluded.
type Result struct {
	Fields        []Field `json:"fields"`
	Rows          [][]any `json:"rows"`
	RuntimeMillis int64   `json:"runtime_millis"`
}

// ColumnIndex returns the index of the named field, or -1.
func (r *Result) ColumnIndex(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Column returns all values of the named field in row order.
func (r *Result) Column(name string) ([]any, bool) {
	idx := r.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	col := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		col[i] = row[idx]
	}
	return col, true
}

func collectRows(rows *sql.Rows) (*Result, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column metadata: %w", err)
	}

	res := &Result{Fields: make([]Field, len(colTypes))}
	for i, ct := range colTypes {
		res.Fields[i] = Field{
			Name: ct.Name(),
			Type: strings.ToLower(ct.DatabaseTypeName()),
		}
	}

	dest := make([]any, len(colTypes))
	ptrs := make([]any, len(colTypes))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]any, len(dest))
		for i, v := range dest {
			row[i] = normalizeValue(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// normalizeValue flattens driver-specific scan results to string/float64/nil.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case string:
		return x
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int32:
		return float64(x)
	case int:
		return float64(x)
	case uint64:
		return float64(x)
	case bool:
		if x {
			return float64(1)
		}
		return float64(0)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
