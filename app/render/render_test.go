package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahesh-hegde/vizsql/app/plot"
)

func lineDescriptors() []plot.Descriptor {
	return []plot.Descriptor{
		{
			Type: "scatter", Mode: "lines", Name: "sales",
			X: []any{float64(1), float64(2), float64(3)},
			Y: []any{float64(10), float64(20), float64(15)},
		},
	}
}

func TestExport_LineSVG(t *testing.T) {
	var buf bytes.Buffer
	err := Export(lineDescriptors(), &plot.Layout{}, FormatSVG, &buf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "<svg"))
	assert.Contains(t, buf.String(), `width="1100"`)
	assert.Contains(t, buf.String(), `height="300"`)
}

func TestExport_CategoricalXFallsBackToIndices(t *testing.T) {
	descs := []plot.Descriptor{
		{
			Type: "scatter", Mode: "lines", Name: "sales",
			X: []any{"jan", "feb", "mar"},
			Y: []any{float64(10), float64(20), float64(15)},
		},
	}
	var buf bytes.Buffer
	err := Export(descs, &plot.Layout{}, FormatSVG, &buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestExport_Pie(t *testing.T) {
	descs := []plot.Descriptor{
		{
			Type:      "pie",
			Labels:    []any{"east", "west"},
			Values:    []any{float64(60), float64(40)},
			Direction: "clockwise",
		},
	}
	var buf bytes.Buffer
	err := Export(descs, &plot.Layout{}, FormatSVG, &buf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "<svg"))
}

func TestExport_Bar(t *testing.T) {
	descs := []plot.Descriptor{
		{
			Type: "bar", Name: "sales",
			X: []any{"jan", "feb"},
			Y: []any{float64(10), float64(20)},
		},
	}
	var buf bytes.Buffer
	err := Export(descs, &plot.Layout{}, FormatSVG, &buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestExport_Errors(t *testing.T) {
	var buf bytes.Buffer

	t.Run("no descriptors", func(t *testing.T) {
		assert.Error(t, Export(nil, &plot.Layout{}, FormatSVG, &buf))
	})

	t.Run("bad format", func(t *testing.T) {
		assert.Error(t, Export(lineDescriptors(), &plot.Layout{}, Format("bmp"), &buf))
	})

	t.Run("non-numeric y", func(t *testing.T) {
		descs := lineDescriptors()
		descs[0].Y = []any{"oops", "nope", "bad"}
		assert.Error(t, Export(descs, &plot.Layout{}, FormatSVG, &buf))
	})
}
