package series

import (
	"fmt"
	"sort"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/dbengine"
)

// ChartSpec describes how to reshape a query result into series. Type and
// Stacking are interpreted by the plot package; Generate only reads the
// axis fields, the optional group-by field and the row data.
type ChartSpec struct {
	Type     string   `json:"type"`
	Stacking string   `json:"stacking"`
	GroupBy  string   `json:"groupBy,omitempty"`
	X        string   `json:"x"`
	Y        []string `json:"y"`

	Fields []dbengine.Field `json:"fields"`
	Rows   [][]any          `json:"rows"`
}

// FromResult fills the spec's data from a query result.
func (s *ChartSpec) FromResult(res *dbengine.Result) {
	s.Fields = res.Fields
	s.Rows = res.Rows
}

func (s *ChartSpec) columnIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Series is a named pair of equal-length x/y value sequences, ready for a
// renderer.
type Series struct {
	Name string `json:"name"`
	X    []any  `json:"x"`
	Y    []any  `json:"y"`
}

// Generate reshapes the spec's rows into series, one per y field. With a
// valid group-by field, each y field instead yields one series per distinct
// group value (ascending), named "<y> (<group>)", over exactly the rows of
// that group. Row order is preserved throughout; for a fixed y field the
// group subsets partition the full row set. A pure function: same spec in,
// same series out.
func Generate(spec *ChartSpec) ([]Series, error) {
	xIdx := spec.columnIndex(spec.X)
	if xIdx < 0 {
		return nil, fmt.Errorf("x field %q is not in the result", spec.X)
	}
	yIdxs := make([]int, len(spec.Y))
	for i, y := range spec.Y {
		yIdxs[i] = spec.columnIndex(y)
		if yIdxs[i] < 0 {
			return nil, fmt.Errorf("y field %q is not in the result", y)
		}
	}

	groupIdx := -1
	if spec.GroupBy != "" {
		// A group-by naming an undeclared field degrades to the ungrouped
		// case rather than failing.
		groupIdx = spec.columnIndex(spec.GroupBy)
	}

	if groupIdx < 0 {
		out := make([]Series, 0, len(spec.Y))
		for i, y := range spec.Y {
			out = append(out, Series{
				Name: y,
				X:    columnValues(spec.Rows, xIdx),
				Y:    columnValues(spec.Rows, yIdxs[i]),
			})
		}
		return out, nil
	}

	// Single pass: group key -> row indices, in first-seen order per group.
	rowsByGroup := make(map[string][]int)
	groupValues := make([]any, 0)
	for rowIdx, row := range spec.Rows {
		key := common.FormatScalar(row[groupIdx])
		if _, seen := rowsByGroup[key]; !seen {
			groupValues = append(groupValues, row[groupIdx])
		}
		rowsByGroup[key] = append(rowsByGroup[key], rowIdx)
	}
	sort.Slice(groupValues, func(i, j int) bool {
		return common.LessScalar(groupValues[i], groupValues[j])
	})

	out := make([]Series, 0, len(spec.Y)*len(groupValues))
	for i, y := range spec.Y {
		for _, g := range groupValues {
			rowIdxs := rowsByGroup[common.FormatScalar(g)]
			s := Series{
				Name: fmt.Sprintf("%s (%s)", y, common.FormatScalar(g)),
				X:    make([]any, 0, len(rowIdxs)),
				Y:    make([]any, 0, len(rowIdxs)),
			}
			for _, rowIdx := range rowIdxs {
				s.X = append(s.X, spec.Rows[rowIdx][xIdx])
				s.Y = append(s.Y, spec.Rows[rowIdx][yIdxs[i]])
			}
			out = append(out, s)
		}
	}
	return out, nil
}

func columnValues(rows [][]any, idx int) []any {
	col := make([]any, len(rows))
	for i, row := range rows {
		col[i] = row[idx]
	}
	return col
}
