// Package visualizer turns simulation results into chart descriptions that a browser
// front end can draw directly. All lengths are converted to millimetres.
package visualizer

const (
	KindScatter = "scatter"
	KindContour = "contour"
	KindHeatmap = "heatmap"
	KindSurface = "surface"
	KindBar     = "bar"
)

// Chart is a self-contained, JSON-serialisable chart.
type Chart struct {
	Kind        string       `json:"kind"`
	Title       string       `json:"title"`
	XLabel      string       `json:"x_label,omitempty"`
	YLabel      string       `json:"y_label,omitempty"`
	ZLabel      string       `json:"z_label,omitempty"`
	XRange      []float64    `json:"x_range,omitempty"`
	YRange      []float64    `json:"y_range,omitempty"`
	Series      []Series     `json:"series,omitempty"`
	Heatmap     *Heatmap     `json:"heatmap,omitempty"`
	Surface     *Surface     `json:"surface,omitempty"`
	Isolines    []Isoline    `json:"isolines,omitempty"`
	RefLines    []RefLine    `json:"ref_lines,omitempty"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Series is a line, filled polygon or bar set. Bars use Labels for their categories.
type Series struct {
	Name        string    `json:"name"`
	Mode        string    `json:"mode,omitempty"` // lines, markers, lines+markers
	X           []float64 `json:"x,omitempty"`
	Y           []float64 `json:"y,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	Fill        bool      `json:"fill,omitempty"`
	Color       string    `json:"color,omitempty"`
	Orientation string    `json:"orientation,omitempty"`
}

// Heatmap is a value grid with Z[row][col]; rows follow Y (or YLabels), columns X (or XLabels).
type Heatmap struct {
	X          []float64   `json:"x,omitempty"`
	Y          []float64   `json:"y,omitempty"`
	XLabels    []string    `json:"x_labels,omitempty"`
	YLabels    []string    `json:"y_labels,omitempty"`
	Z          [][]float64 `json:"z"`
	ColorScale string      `json:"color_scale"`
	ZMid       *float64    `json:"z_mid,omitempty"`
}

// Surface is a parametric 3D mesh.
type Surface struct {
	X          [][]float64 `json:"x"`
	Y          [][]float64 `json:"y"`
	Z          [][]float64 `json:"z"`
	ColorScale string      `json:"color_scale"`
}

// RefLine is a horizontal reference line at Value.
type RefLine struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color,omitempty"`
	Dash  string  `json:"dash,omitempty"`
}

type Annotation struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Text string  `json:"text"`
}

func mm(v float64) float64 { return v * 1000 }

func mmAxis(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = mm(v)
	}
	return out
}
