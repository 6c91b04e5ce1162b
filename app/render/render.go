// Package render converts plot descriptors to a fixed-size image. It is the
// thin collaborator-facing export surface; anything beyond turning
// descriptors into pixels (styling heuristics, legend placement) stays with
// the real renderer.
package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/mahesh-hegde/vizsql/app/common"
	"github.com/mahesh-hegde/vizsql/app/plot"
)

// Exported charts are always this size.
const (
	ImageWidth  = 1100
	ImageHeight = 300
)

// Format selects the image encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

func (f Format) provider() (chart.RendererProvider, error) {
	switch f {
	case FormatSVG:
		return chart.SVG, nil
	case FormatPNG:
		return chart.PNG, nil
	}
	return nil, fmt.Errorf("unsupported image format: %q", f)
}

// Export renders descriptors into w as a 1100×300 image.
func Export(descs []plot.Descriptor, layout *plot.Layout, format Format, w io.Writer) error {
	provider, err := format.provider()
	if err != nil {
		return err
	}
	if len(descs) == 0 {
		return fmt.Errorf("nothing to render")
	}

	switch descs[0].Type {
	case "pie":
		return renderPie(descs[0], provider, w)
	case "bar":
		return renderBar(descs[0], provider, w)
	default:
		return renderXY(descs, provider, w)
	}
}

func renderXY(descs []plot.Descriptor, provider chart.RendererProvider, w io.Writer) error {
	seriesList := make([]chart.Series, 0, len(descs))
	for _, d := range descs {
		xs, err := floatValues(d.X)
		if err != nil {
			// Categorical x axis: fall back to row positions.
			xs = indexValues(len(d.X))
		}
		ys, err := floatValues(d.Y)
		if err != nil {
			return fmt.Errorf("series %q: %w", d.Name, err)
		}
		if len(xs) != len(ys) {
			return fmt.Errorf("series %q: x/y length mismatch", d.Name)
		}
		seriesList = append(seriesList, chart.ContinuousSeries{
			Name:    d.Name,
			XValues: xs,
			YValues: ys,
			Style:   styleFor(d),
		})
	}

	ch := chart.Chart{
		Width:  ImageWidth,
		Height: ImageHeight,
		Series: seriesList,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(provider, w)
}

func styleFor(d plot.Descriptor) chart.Style {
	st := chart.Style{}
	if d.Mode == "markers" {
		st.StrokeWidth = chart.Disabled
		st.DotWidth = 5
	}
	if d.Fill == "tozeroy" {
		st.FillColor = chart.GetDefaultColor(0).WithAlpha(64)
	}
	return st
}

// renderBar draws the first bar series only; cumulative (stacked) rendering
// belongs to the full renderer, not this export path.
func renderBar(d plot.Descriptor, provider chart.RendererProvider, w io.Writer) error {
	values, err := chartValues(d.X, d.Y)
	if err != nil {
		return err
	}
	ch := chart.BarChart{
		Width:  ImageWidth,
		Height: ImageHeight,
		Bars:   values,
	}
	return ch.Render(provider, w)
}

func renderPie(d plot.Descriptor, provider chart.RendererProvider, w io.Writer) error {
	values, err := chartValues(d.Labels, d.Values)
	if err != nil {
		return err
	}
	ch := chart.PieChart{
		Width:  ImageWidth,
		Height: ImageHeight,
		Values: values,
	}
	return ch.Render(provider, w)
}

func chartValues(labels, values []any) ([]chart.Value, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("label/value length mismatch")
	}
	out := make([]chart.Value, len(values))
	for i := range values {
		f, err := common.AsFloat(values[i])
		if err != nil {
			return nil, err
		}
		out[i] = chart.Value{
			Label: common.FormatScalar(labels[i]),
			Value: f,
		}
	}
	return out, nil
}

func floatValues(vals []any) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := common.AsFloat(v)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func indexValues(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
