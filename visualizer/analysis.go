package visualizer

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"weldsim/simulator"
)

// ParamLabel is the axis label of a sweep parameter in display units.
func ParamLabel(p simulator.Param) string {
	switch p {
	case simulator.ParamCurrent:
		return "Current (A)"
	case simulator.ParamVoltage:
		return "Voltage (V)"
	case simulator.ParamTravelSpeed:
		return "Travel Speed (mm/s)"
	case simulator.ParamArcEfficiency:
		return "Arc Efficiency"
	}
	return string(p)
}

// DisplayValue converts a parameter value to the unit of its label.
func DisplayValue(p simulator.Param, v float64) float64 {
	if p == simulator.ParamTravelSpeed {
		return mm(v)
	}
	return v
}

func title(p simulator.Param) string {
	words := strings.Fields(strings.ReplaceAll(string(p), "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParameterEffects plots pool width, depth and length against a swept parameter.
func ParameterEffects(p simulator.Param, points []simulator.SweepPoint) Chart {
	width := Series{Name: "Pool Width", Mode: "lines+markers", Color: "blue"}
	depth := Series{Name: "Penetration", Mode: "lines+markers", Color: "red"}
	length := Series{Name: "Pool Length", Mode: "lines+markers", Color: "green"}
	for _, pt := range points {
		x := DisplayValue(p, pt.Value)
		width.X, width.Y = append(width.X, x), append(width.Y, mm(pt.Geometry.Width))
		depth.X, depth.Y = append(depth.X, x), append(depth.Y, mm(pt.Geometry.Depth))
		length.X, length.Y = append(length.X, x), append(length.Y, mm(pt.Geometry.Length))
	}
	return Chart{
		Kind:   KindScatter,
		Title:  fmt.Sprintf("Effect of %s on Weld Pool Geometry", title(p)),
		XLabel: ParamLabel(p),
		YLabel: "Size (mm)",
		Series: []Series{width, depth, length},
	}
}

var sensitivityOutputs = []string{"Pool Width", "Penetration", "Pool Length"}

// SensitivityHeatmap lays out coefficients with outputs as rows and inputs as columns.
func SensitivityHeatmap(rows []simulator.SensitivityRow) Chart {
	z := make([][]float64, len(sensitivityOutputs))
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = title(r.Param)
		z[0] = append(z[0], r.Width)
		z[1] = append(z[1], r.Depth)
		z[2] = append(z[2], r.Length)
	}
	mid := 0.0
	return Chart{
		Kind:   KindHeatmap,
		Title:  "Parameter Sensitivity Analysis",
		XLabel: "Input Parameters",
		YLabel: "Output Characteristics",
		ZLabel: "Sensitivity Coefficient",
		Heatmap: &Heatmap{
			XLabels:    labels,
			YLabels:    sensitivityOutputs,
			Z:          z,
			ColorScale: "RdBu",
			ZMid:       &mid,
		},
	}
}

// Tornado draws absolute coefficients as horizontal bars, the most influential input first.
func Tornado(rows []simulator.SensitivityRow) Chart {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b simulator.SensitivityRow) int {
		return cmp.Compare(influence(b), influence(a))
	})

	width := Series{Name: "Pool Width", Orientation: "h", Color: "lightblue"}
	depth := Series{Name: "Penetration", Orientation: "h", Color: "lightcoral"}
	for _, r := range sorted {
		label := title(r.Param)
		width.Labels, width.X = append(width.Labels, label), append(width.X, math.Abs(r.Width))
		depth.Labels, depth.X = append(depth.Labels, label), append(depth.X, math.Abs(r.Depth))
	}
	return Chart{
		Kind:   KindBar,
		Title:  "Tornado Diagram - Parameter Sensitivity",
		XLabel: "Absolute Sensitivity Coefficient",
		YLabel: "Parameters",
		Series: []Series{width, depth},
	}
}

func influence(r simulator.SensitivityRow) float64 {
	return max(math.Abs(r.Width), math.Abs(r.Depth))
}
