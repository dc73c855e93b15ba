package visualizer

import (
	"math"

	"weldsim/material"
	"weldsim/simulator"
)

// Plane is a 2D cut through a field, Values[row][col] with rows along V and columns along U.
type Plane struct {
	Name   string
	U, V   []float64 // m
	Values [][]float64
}

// SurfacePlane is the top surface, rows along y and columns along x.
func SurfacePlane(f *simulator.Field) Plane {
	iz := f.SurfaceIndex()
	g := f.Grid
	vals := make([][]float64, len(g.Y))
	for iy := range g.Y {
		row := make([]float64, len(g.X))
		for ix := range g.X {
			row[ix] = f.At(ix, iy, iz)
		}
		vals[iy] = row
	}
	return Plane{Name: "surface", U: g.X, V: g.Y, Values: vals}
}

// LongitudinalPlane is the vertical cut along the weld centreline, rows along z.
func LongitudinalPlane(f *simulator.Field) Plane {
	iy := f.CenterlineIndex()
	g := f.Grid
	vals := make([][]float64, len(g.Z))
	for iz := range g.Z {
		row := make([]float64, len(g.X))
		for ix := range g.X {
			row[ix] = f.At(ix, iy, iz)
		}
		vals[iz] = row
	}
	return Plane{Name: "longitudinal", U: g.X, V: g.Z, Values: vals}
}

// TransversePlane is the vertical cut across the weld through the arc, rows along z.
func TransversePlane(f *simulator.Field) Plane {
	ix := arcIndex(f.Grid.X)
	g := f.Grid
	vals := make([][]float64, len(g.Z))
	for iz := range g.Z {
		row := make([]float64, len(g.Y))
		for iy := range g.Y {
			row[iy] = f.At(ix, iy, iz)
		}
		vals[iz] = row
	}
	return Plane{Name: "transverse", U: g.Y, V: g.Z, Values: vals}
}

func arcIndex(xs []float64) int {
	best := 0
	for i, x := range xs {
		if math.Abs(x) < math.Abs(xs[best]) {
			best = i
		}
	}
	return best
}

// TemperatureContour maps the surface temperature with the melting and solidus isotherms.
func TemperatureContour(f *simulator.Field, rec material.Record) Chart {
	p := SurfacePlane(f)
	xs, ys := mmAxis(p.U), mmAxis(p.V)
	return Chart{
		Kind:   KindContour,
		Title:  "Temperature Distribution",
		XLabel: "Distance along travel direction (mm)",
		YLabel: "Distance perpendicular to travel (mm)",
		ZLabel: "Temperature (K)",
		Heatmap: &Heatmap{
			X:          xs,
			Y:          ys,
			Z:          p.Values,
			ColorScale: "plasma",
		},
		Isolines: []Isoline{
			{Name: "Solidus Line", Level: rec.SolidusTemperature, Color: "red", Segments: Isotherm(xs, ys, p.Values, rec.SolidusTemperature)},
			{Name: "Melting Line", Level: rec.MeltingTemperature, Color: "blue", Segments: Isotherm(xs, ys, p.Values, rec.MeltingTemperature)},
		},
	}
}

// CenterlineProfile plots the surface temperature along y = 0 against reference temperatures.
func CenterlineProfile(f *simulator.Field, rec material.Record) Chart {
	iy, iz := f.CenterlineIndex(), f.SurfaceIndex()
	temps := make([]float64, len(f.Grid.X))
	for ix := range f.Grid.X {
		temps[ix] = f.At(ix, iy, iz)
	}
	return Chart{
		Kind:   KindScatter,
		Title:  "Temperature Profile Along Weld Centerline",
		XLabel: "Distance along travel direction (mm)",
		YLabel: "Temperature (K)",
		Series: []Series{{
			Name:  "Centerline Temperature",
			Mode:  "lines",
			X:     mmAxis(f.Grid.X),
			Y:     temps,
			Color: "red",
		}},
		RefLines: []RefLine{
			{Value: rec.SolidusTemperature, Label: "Solidus Temperature", Color: "blue", Dash: "dash"},
			{Value: rec.MeltingTemperature, Label: "Melting Temperature", Color: "green", Dash: "dash"},
			{Value: f.Ambient, Label: "Ambient Temperature", Color: "gray", Dash: "dot"},
		},
	}
}

// Sections renders the surface, longitudinal and transverse planes as heatmaps.
func Sections(f *simulator.Field) []Chart {
	labels := map[string][3]string{
		"surface":      {"Surface Temperature", "x (mm)", "y (mm)"},
		"longitudinal": {"Longitudinal Section (y = 0)", "x (mm)", "z (mm)"},
		"transverse":   {"Transverse Section (x = 0)", "y (mm)", "z (mm)"},
	}
	var charts []Chart
	for _, p := range []Plane{SurfacePlane(f), LongitudinalPlane(f), TransversePlane(f)} {
		l := labels[p.Name]
		charts = append(charts, Chart{
			Kind:   KindHeatmap,
			Title:  l[0],
			XLabel: l[1],
			YLabel: l[2],
			ZLabel: "Temperature (K)",
			Heatmap: &Heatmap{
				X:          mmAxis(p.U),
				Y:          mmAxis(p.V),
				Z:          p.Values,
				ColorScale: "plasma",
			},
		})
	}
	return charts
}
