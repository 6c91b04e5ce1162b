package plot

import (
	"fmt"

	"github.com/mahesh-hegde/vizsql/app/series"
)

// Chart types and stacking modes accepted in a ChartSpec.
const (
	TypeLine    = "line"
	TypeScatter = "scatter"
	TypeBar     = "bar"
	TypeArea    = "area"
	TypePie     = "pie"

	StackingOff     = "off"
	StackingEnable  = "enable"
	StackingPercent = "percent"
)

const scatterMarkerSize = 6

// Descriptor is one renderable trace. The field set follows the plotly
// trace shape so an external renderer can consume it directly.
type Descriptor struct {
	Type      string  `json:"type"`
	Name      string  `json:"name,omitempty"`
	X         []any   `json:"x,omitempty"`
	Y         []any   `json:"y,omitempty"`
	Mode      string  `json:"mode,omitempty"`
	Marker    *Marker `json:"marker,omitempty"`
	Fill      string  `json:"fill,omitempty"`
	Labels    []any   `json:"labels,omitempty"`
	Values    []any   `json:"values,omitempty"`
	Direction string  `json:"direction,omitempty"`
}

type Marker struct {
	Size int `json:"size"`
}

// Layout is the shared per-chart metadata, independent of trace type.
type Layout struct {
	ShowLegend bool       `json:"showlegend"`
	Margin     Margin     `json:"margin"`
	HoverLabel HoverLabel `json:"hoverlabel"`
	XAxis      Axis       `json:"xaxis"`
	YAxis      Axis       `json:"yaxis"`
	BarMode    string     `json:"barmode,omitempty"`
	BarNorm    string     `json:"barnorm,omitempty"`
}

type Margin struct {
	L   int `json:"l"`
	R   int `json:"r"`
	T   int `json:"t"`
	B   int `json:"b"`
	Pad int `json:"pad"`
}

type HoverLabel struct {
	// -1 shows hover text at full length.
	NameLength int `json:"namelength"`
}

type Axis struct {
	AutoMargin bool `json:"automargin"`
}

// Build maps series to plot descriptors for the spec's chart type and
// attaches the shared layout. Stacking only affects bar charts. Pie charts
// produce a single descriptor from the raw x column and first y column,
// ignoring groupBy and any further y fields; that mirrors how pie data is
// consumed and is a documented limitation rather than something to patch
// around here.
func Build(spec *series.ChartSpec, list []series.Series) ([]Descriptor, *Layout, error) {
	layout := newLayout(spec)

	if spec.Type == TypePie {
		desc, err := pieDescriptor(spec)
		if err != nil {
			return nil, nil, err
		}
		return []Descriptor{desc}, layout, nil
	}

	descs := make([]Descriptor, 0, len(list))
	for _, s := range list {
		d, err := seriesDescriptor(spec.Type, s)
		if err != nil {
			return nil, nil, err
		}
		descs = append(descs, d)
	}
	return descs, layout, nil
}

func seriesDescriptor(chartType string, s series.Series) (Descriptor, error) {
	switch chartType {
	case TypeLine:
		return Descriptor{Type: "scatter", Mode: "lines", Name: s.Name, X: s.X, Y: s.Y}, nil
	case TypeScatter:
		return Descriptor{
			Type: "scatter", Mode: "markers", Name: s.Name, X: s.X, Y: s.Y,
			Marker: &Marker{Size: scatterMarkerSize},
		}, nil
	case TypeBar:
		return Descriptor{Type: "bar", Name: s.Name, X: s.X, Y: s.Y}, nil
	case TypeArea:
		return Descriptor{Type: "scatter", Mode: "lines", Fill: "tozeroy", Name: s.Name, X: s.X, Y: s.Y}, nil
	default:
		return Descriptor{}, fmt.Errorf("unsupported chart type: %q", chartType)
	}
}

func pieDescriptor(spec *series.ChartSpec) (Descriptor, error) {
	if len(spec.Y) == 0 {
		return Descriptor{}, fmt.Errorf("pie chart needs at least one y field")
	}
	labels, values, err := rawColumns(spec)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{
		Type:      "pie",
		Labels:    labels,
		Values:    values,
		Direction: "clockwise",
	}, nil
}

func rawColumns(spec *series.ChartSpec) (labels []any, values []any, err error) {
	xIdx, yIdx := -1, -1
	for i, f := range spec.Fields {
		if f.Name == spec.X {
			xIdx = i
		}
		if f.Name == spec.Y[0] {
			yIdx = i
		}
	}
	if xIdx < 0 {
		return nil, nil, fmt.Errorf("x field %q is not in the result", spec.X)
	}
	if yIdx < 0 {
		return nil, nil, fmt.Errorf("y field %q is not in the result", spec.Y[0])
	}
	labels = make([]any, len(spec.Rows))
	values = make([]any, len(spec.Rows))
	for i, row := range spec.Rows {
		labels[i] = row[xIdx]
		values[i] = row[yIdx]
	}
	return labels, values, nil
}

func newLayout(spec *series.ChartSpec) *Layout {
	l := &Layout{
		ShowLegend: true,
		Margin:     Margin{L: 50, R: 50, T: 10, B: 10, Pad: 4},
		HoverLabel: HoverLabel{NameLength: -1},
		XAxis:      Axis{AutoMargin: true},
		YAxis:      Axis{AutoMargin: true},
	}
	// barmode only has an effect on bar traces, so it is safe to set it
	// whenever stacking is requested.
	switch spec.Stacking {
	case StackingEnable:
		l.BarMode = "stack"
	case StackingPercent:
		l.BarMode = "stack"
		l.BarNorm = "percent"
	}
	return l
}
