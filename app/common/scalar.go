package common

import (
	"fmt"
	"strconv"
	"strings"
)

// Cell values are either string, float64 or nil once a result has been
// normalized. These helpers cover the conversions downstream transforms need.

// AsFloat converts a cell value to float64. String cells are parsed, so
// fractional values in text columns are preserved.
func AsFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("not a numeric value: %q", x)
		}
		return f, nil
	case nil:
		return 0, fmt.Errorf("nil value is not numeric")
	default:
		return 0, fmt.Errorf("unsupported cell type %T", v)
	}
}

// FormatScalar renders a cell value the way it would appear in a label.
func FormatScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// LessScalar orders cell values ascending: numerics numerically, everything
// else by string form. Used for sorting distinct group-by values.
func LessScalar(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	// Numeric strings compare numerically so "10" sorts after "9".
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			if an, err := strconv.ParseFloat(as, 64); err == nil {
				if bn, err := strconv.ParseFloat(bs, 64); err == nil {
					return an < bn
				}
			}
		}
	}
	return FormatScalar(a) < FormatScalar(b)
}
