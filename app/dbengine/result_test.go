package dbengine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	testCases := []struct {
		name     string
		in       any
		expected any
	}{
		{"nil", nil, nil},
		{"bytes", []byte("hello"), "hello"},
		{"string", "world", "world"},
		{"int64", int64(42), float64(42)},
		{"int32", int32(7), float64(7)},
		{"float64", 1.5, 1.5},
		{"float32", float32(2), float64(2)},
		{"bool true", true, float64(1)},
		{"bool false", false, float64(0)},
		{"time", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), "2024-03-01T12:00:00Z"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizeValue(tc.in))
		})
	}
}

func TestResult_Column(t *testing.T) {
	res := &Result{
		Fields: []Field{{Name: "a", Type: "text"}, {Name: "b", Type: "bigint"}},
		Rows: [][]any{
			{"x", float64(1)},
			{"y", float64(2)},
		},
	}

	assert.Equal(t, 1, res.ColumnIndex("b"))
	assert.Equal(t, -1, res.ColumnIndex("missing"))

	col, ok := res.Column("b")
	assert.True(t, ok)
	assert.Equal(t, []any{float64(1), float64(2)}, col)

	_, ok = res.Column("missing")
	assert.False(t, ok)
}
