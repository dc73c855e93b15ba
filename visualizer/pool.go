package visualizer

import (
	"fmt"
	"math"

	"weldsim/simulator"
)

const (
	profileSamples = 100
	meshAngles     = 50
	meshLevels     = 20
)

// CrossSection draws the transverse pool profile as a parabola of the pool width and depth,
// set into a block of base metal. Depth points down (negative y).
func CrossSection(geom simulator.Geometry) Chart {
	w, d := mm(geom.Width), mm(geom.Depth)
	chart := Chart{
		Kind:   KindScatter,
		Title:  "Weld Pool Cross-Section",
		XLabel: "Width (mm)",
		YLabel: "Depth (mm)",
	}
	if !geom.Fused || w == 0 {
		chart.Annotations = []Annotation{{X: 0, Y: 0, Text: "No fusion"}}
		return chart
	}

	base := Series{Name: "Base Metal", Mode: "lines", Fill: true, Color: "rgba(128, 128, 128, 0.3)"}
	for _, p := range [][2]float64{{-1.5 * w, 0}, {1.5 * w, 0}, {1.5 * w, -2 * d}, {-1.5 * w, -2 * d}, {-1.5 * w, 0}} {
		base.X = append(base.X, p[0])
		base.Y = append(base.Y, p[1])
	}

	pool := Series{Name: "Weld Pool", Mode: "lines", Fill: true, Color: "rgba(255, 165, 0, 0.6)"}
	for i := 0; i < profileSamples; i++ {
		y := -w/2 + w*float64(i)/float64(profileSamples-1)
		pool.X = append(pool.X, y)
		pool.Y = append(pool.Y, -d*(1-math.Pow(2*y/w, 2)))
	}
	// close along the surface
	pool.X = append(pool.X, -w/2)
	pool.Y = append(pool.Y, 0)

	chart.Series = []Series{base, pool}
	chart.XRange = []float64{-0.8 * w, 0.8 * w}
	chart.YRange = []float64{-1.2 * d, 0.2 * d}
	chart.Annotations = []Annotation{
		{X: w / 4, Y: 0, Text: fmt.Sprintf("Width: %.2f mm", w)},
		{X: 0, Y: -d / 2, Text: fmt.Sprintf("Penetration: %.2f mm", d)},
	}
	return chart
}

// Pool3D builds a tapered elliptical mesh of the pool: the radius shrinks with the square root
// of the remaining depth and the section is stretched along x by length/width.
func Pool3D(geom simulator.Geometry) Chart {
	chart := Chart{
		Kind:   KindSurface,
		Title:  "3D Weld Pool",
		XLabel: "Length Direction (mm)",
		YLabel: "Width Direction (mm)",
		ZLabel: "Depth (mm)",
	}
	w, l, d := mm(geom.Width), mm(geom.Length), mm(geom.Depth)
	if !geom.Fused || w == 0 || d == 0 {
		return chart
	}

	s := &Surface{ColorScale: "Hot"}
	rMax := w / 2
	stretch := l / w
	for i := 0; i < meshLevels; i++ {
		z := -d * float64(i) / float64(meshLevels-1)
		r := rMax * math.Sqrt(max(0, 1-math.Abs(z)/d))
		xs := make([]float64, meshAngles)
		ys := make([]float64, meshAngles)
		zs := make([]float64, meshAngles)
		for j := range xs {
			theta := 2 * math.Pi * float64(j) / float64(meshAngles-1)
			xs[j] = r * math.Cos(theta) * stretch
			ys[j] = r * math.Sin(theta)
			zs[j] = z
		}
		s.X = append(s.X, xs)
		s.Y = append(s.Y, ys)
		s.Z = append(s.Z, zs)
	}
	chart.Surface = s
	return chart
}
